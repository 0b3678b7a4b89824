package models

import "time"

// Order statuses on the wire. Transitions between them are not enforced here:
// any authorized update may set any valid value.
const (
	StatutEnAttente = "en_attente"
	StatutPayee     = "payée"
	StatutExpediee  = "expédiée"
	StatutLivree    = "livrée"
	StatutAnnulee   = "annulée"
)

func StatutValide(s string) bool {
	switch s {
	case StatutEnAttente, StatutPayee, StatutExpediee, StatutLivree, StatutAnnulee:
		return true
	default:
		return false
	}
}

type Produit struct {
	ProduitID    string  `json:"produitId"`
	Quantite     int     `json:"quantite"`
	PrixUnitaire float64 `json:"prixUnitaire"`
}

// Commande is the order resource. Total is caller-supplied, never recomputed
// from the product lines.
type Commande struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"clientId"`
	Produits     []Produit `json:"produits"`
	Total        float64   `json:"total"`
	Statut       string    `json:"statut"`
	DateCommande time.Time `json:"dateCommande"`
	RevendeurID  string    `json:"revendeurId,omitempty"`
	WebshopID    string    `json:"webshopId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CommandePatch carries a partial update; nil fields are left untouched.
type CommandePatch struct {
	ClientID     *string    `json:"clientId"`
	Produits     *[]Produit `json:"produits"`
	Total        *float64   `json:"total"`
	Statut       *string    `json:"statut"`
	DateCommande *time.Time `json:"dateCommande"`
	RevendeurID  *string    `json:"revendeurId"`
	WebshopID    *string    `json:"webshopId"`
}
