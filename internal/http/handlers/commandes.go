package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"commande-service/internal/events"
	"commande-service/internal/models"
	"commande-service/internal/repo"
)

const (
	msgNotFound    = "Commande non trouvée"
	msgDeleted     = "Commande supprimée"
	msgServerError = "Erreur serveur"
)

// OrderStore is the persistence seam, satisfied by repo.OrdersPG.
type OrderStore interface {
	Insert(ctx context.Context, c *models.Commande) error
	Get(ctx context.Context, id string) (*models.Commande, error)
	List(ctx context.Context) ([]models.Commande, error)
	ListByRevendeur(ctx context.Context, revendeurID string) ([]models.Commande, error)
	ListByWebshop(ctx context.Context, webshopID string) ([]models.Commande, error)
	Update(ctx context.Context, id string, p models.CommandePatch) (*models.Commande, error)
	Delete(ctx context.Context, id string) (*models.Commande, error)
}

type Commandes struct {
	Store OrderStore
	Log   zerolog.Logger
}

type commandeReq struct {
	ClientID     string           `json:"clientId"`
	Produits     []models.Produit `json:"produits"`
	Total        *float64         `json:"total"`
	Statut       string           `json:"statut"`
	DateCommande *time.Time       `json:"dateCommande"`
	RevendeurID  string           `json:"revendeurId"`
	WebshopID    string           `json:"webshopId"`
}

func (h *Commandes) Create(w http.ResponseWriter, r *http.Request) {
	var req commandeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON invalide")
		return
	}
	if req.ClientID == "" {
		writeMessage(w, http.StatusBadRequest, "clientId requis")
		return
	}
	if req.Total == nil || *req.Total < 0 {
		writeMessage(w, http.StatusBadRequest, "total requis")
		return
	}
	if !produitsValides(req.Produits) {
		writeMessage(w, http.StatusBadRequest, "produits invalides")
		return
	}
	statut := req.Statut
	if statut == "" {
		statut = models.StatutEnAttente
	} else if !models.StatutValide(statut) {
		writeMessage(w, http.StatusBadRequest, "statut invalide")
		return
	}

	now := time.Now()
	dateCommande := now
	if req.DateCommande != nil {
		dateCommande = *req.DateCommande
	}
	produits := req.Produits
	if produits == nil {
		produits = []models.Produit{}
	}
	c := models.Commande{
		ID:           uuid.NewString(),
		ClientID:     req.ClientID,
		Produits:     produits,
		Total:        *req.Total,
		Statut:       statut,
		DateCommande: dateCommande,
		RevendeurID:  req.RevendeurID,
		WebshopID:    req.WebshopID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Store.Insert(r.Context(), &c); err != nil {
		h.Log.Error().Err(err).Msg("insert commande failed")
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}

	writeJSON(w, http.StatusCreated, c)
	events.Stage(r.Context(), events.TypeCree, c)
}

func (h *Commandes) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("list commandes failed")
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Commandes) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repo.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("get commande failed")
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Commandes) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.CommandePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON invalide")
		return
	}
	if patch.ClientID != nil && *patch.ClientID == "" {
		writeMessage(w, http.StatusBadRequest, "clientId requis")
		return
	}
	if patch.Total != nil && *patch.Total < 0 {
		writeMessage(w, http.StatusBadRequest, "total invalide")
		return
	}
	if patch.Produits != nil && !produitsValides(*patch.Produits) {
		writeMessage(w, http.StatusBadRequest, "produits invalides")
		return
	}
	if patch.Statut != nil && !models.StatutValide(*patch.Statut) {
		writeMessage(w, http.StatusBadRequest, "statut invalide")
		return
	}

	c, err := h.Store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if errors.Is(err, repo.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("update commande failed")
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}

	writeJSON(w, http.StatusOK, c)
	events.Stage(r.Context(), events.TypeModifie, *c)
}

func (h *Commandes) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repo.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("delete commande failed")
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}

	writeMessage(w, http.StatusOK, msgDeleted)
	events.Stage(r.Context(), events.TypeSupprime, *c)
}

func (h *Commandes) ListByRevendeur(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListByRevendeur(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Log.Error().Err(err).Msg("list commandes by revendeur failed")
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Commandes) ListByWebshop(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListByWebshop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Log.Error().Err(err).Msg("list commandes by webshop failed")
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func produitsValides(produits []models.Produit) bool {
	for _, p := range produits {
		if p.ProduitID == "" || p.Quantite <= 0 || p.PrixUnitaire < 0 {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
