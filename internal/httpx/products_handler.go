package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"order-backend/internal/auth"
	"order-backend/internal/orders"
)

type ProductStore interface {
	List(ctx context.Context) ([]orders.Product, error)
	Get(ctx context.Context, id int64) (orders.Product, error)
	Create(ctx context.Context, p orders.Product) (orders.Product, error)
	Update(ctx context.Context, id int64, patch orders.ProductPatch) (orders.Product, error)
	Delete(ctx context.Context, id int64) error
}

// InventoryLedger covers manual stock corrections; the order workflow reserves
// through its own transaction.
type InventoryLedger interface {
	Reserve(ctx context.Context, productID int64, quantity int) error
	Release(ctx context.Context, productID int64, quantity int) error
}

type ProductsHandler struct {
	Store    ProductStore
	Ledger   InventoryLedger
	Sessions auth.SessionReader
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(h.Sessions))
			r.Post("/", h.create)
			r.Patch("/{id}", h.update)
			r.Delete("/{id}", h.delete)
			r.Post("/{id}/reserve", h.adjust(h.reserve))
			r.Post("/{id}/release", h.adjust(h.release))
		})
	})
}

type adjustReq struct {
	Quantity int `json:"quantity"`
}

func (h *ProductsHandler) reserve(ctx context.Context, id int64, qty int) error {
	return h.Ledger.Reserve(ctx, id, qty)
}

func (h *ProductsHandler) release(ctx context.Context, id int64, qty int) error {
	return h.Ledger.Release(ctx, id, qty)
}

func (h *ProductsHandler) adjust(fn func(ctx context.Context, id int64, qty int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
			return
		}
		var req adjustReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
			return
		}
		if err := fn(r.Context(), id, req.Quantity); err != nil {
			writeError(w, err)
			return
		}
		p, err := h.Store.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	p, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var p orders.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if p.Name == "" || p.Weight < 0 || p.Price < 0 || p.Inventory < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product"})
		return
	}
	created, err := h.Store.Create(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var patch orders.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if patch.Weight != nil && *patch.Weight < 0 ||
		patch.Price != nil && *patch.Price < 0 ||
		patch.Inventory != nil && *patch.Inventory < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product"})
		return
	}
	p, err := h.Store.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
