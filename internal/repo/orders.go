package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"commande-service/internal/models"
)

// ErrNotFound distinguishes an absent commande from any other store fault.
var ErrNotFound = errors.New("commande non trouvée")

const commandeCols = `id, client_id, produits::text, total, statut, date_commande, revendeur_id, webshop_id, created_at, updated_at`

type OrdersPG struct{ DB *pgxpool.Pool }

func (r *OrdersPG) Insert(ctx context.Context, c *models.Commande) error {
	produits, err := json.Marshal(c.Produits)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		insert into commandes(id, client_id, produits, total, statut, date_commande, revendeur_id, webshop_id, created_at, updated_at)
		values ($1, $2, $3::jsonb, $4, $5, $6, nullif($7, ''), nullif($8, ''), $9, $10)
	`, c.ID, c.ClientID, string(produits), c.Total, c.Statut, c.DateCommande, c.RevendeurID, c.WebshopID, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *OrdersPG) Get(ctx context.Context, id string) (*models.Commande, error) {
	row := r.DB.QueryRow(ctx, `select `+commandeCols+` from commandes where id = $1`, id)
	return scanCommande(row)
}

func (r *OrdersPG) List(ctx context.Context) ([]models.Commande, error) {
	return r.list(ctx, `select `+commandeCols+` from commandes order by created_at`)
}

func (r *OrdersPG) ListByRevendeur(ctx context.Context, revendeurID string) ([]models.Commande, error) {
	return r.list(ctx, `select `+commandeCols+` from commandes where revendeur_id = $1 order by created_at`, revendeurID)
}

func (r *OrdersPG) ListByWebshop(ctx context.Context, webshopID string) ([]models.Commande, error) {
	return r.list(ctx, `select `+commandeCols+` from commandes where webshop_id = $1 order by created_at`, webshopID)
}

// Update applies the non-nil patch fields and returns the updated row.
// Last write wins: there is no version column and no compare-and-swap.
func (r *OrdersPG) Update(ctx context.Context, id string, p models.CommandePatch) (*models.Commande, error) {
	query, args, err := buildUpdate(id, p)
	if err != nil {
		return nil, err
	}
	return scanCommande(r.DB.QueryRow(ctx, query, args...))
}

func buildUpdate(id string, p models.CommandePatch) (string, []any, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	set := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if p.ClientID != nil {
		set("client_id = $%d", *p.ClientID)
	}
	if p.Produits != nil {
		b, err := json.Marshal(*p.Produits)
		if err != nil {
			return "", nil, err
		}
		set("produits = $%d::jsonb", string(b))
	}
	if p.Total != nil {
		set("total = $%d", *p.Total)
	}
	if p.Statut != nil {
		set("statut = $%d", *p.Statut)
	}
	if p.DateCommande != nil {
		set("date_commande = $%d", *p.DateCommande)
	}
	// ownership tags store NULL for "", same as Insert, so the partial
	// indexes and scoped lists see one representation
	if p.RevendeurID != nil {
		set("revendeur_id = nullif($%d, '')", *p.RevendeurID)
	}
	if p.WebshopID != nil {
		set("webshop_id = nullif($%d, '')", *p.WebshopID)
	}

	query := `update commandes set ` + strings.Join(sets, ", ") + ` where id = $1 returning ` + commandeCols
	return query, args, nil
}

// Delete removes the commande and returns the removed row so the caller can
// publish it downstream.
func (r *OrdersPG) Delete(ctx context.Context, id string) (*models.Commande, error) {
	row := r.DB.QueryRow(ctx, `delete from commandes where id = $1 returning `+commandeCols, id)
	return scanCommande(row)
}

func (r *OrdersPG) list(ctx context.Context, query string, args ...any) ([]models.Commande, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Commande, 0)
	for rows.Next() {
		c, err := scanCommande(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCommande(row pgx.Row) (*models.Commande, error) {
	var c models.Commande
	var produits string
	var revendeur, webshop *string
	err := row.Scan(&c.ID, &c.ClientID, &produits, &c.Total, &c.Statut, &c.DateCommande, &revendeur, &webshop, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(produits), &c.Produits); err != nil {
		return nil, err
	}
	if revendeur != nil {
		c.RevendeurID = *revendeur
	}
	if webshop != nil {
		c.WebshopID = *webshop
	}
	return &c, nil
}
