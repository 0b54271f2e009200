package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"order-backend/internal/auth"
	"order-backend/internal/orders"
	"order-backend/internal/redisx"
)

// OrderService is the slice of the workflow engine the handlers need.
type OrderService interface {
	CreateOrder(ctx context.Context, addressID int64, items []orders.ItemInput) (orders.Order, error)
	UpdateStatus(ctx context.Context, id int64, status orders.Status) (orders.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	Order(ctx context.Context, id int64) (orders.Order, error)
	Orders(ctx context.Context) ([]orders.Order, error)
	OrdersByStatus(ctx context.Context, status orders.Status) ([]orders.Order, error)
}

type OrdersHandler struct {
	Svc      OrderService
	Redis    *redis.Client
	Sessions auth.SessionReader
}

type createOrderReq struct {
	AddressID int64              `json:"address_id"`
	Items     []orders.ItemInput `json:"productitems"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.RequireUser(h.Sessions))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/status/{status}", h.listByStatus)
		r.Get("/{id}", h.get)
		r.Get("/{id}/status", h.getStatus)
		r.Patch("/{id}/status", h.updateStatus)
		r.With(auth.RequireAdmin(h.Sessions)).Delete("/{id}", h.delete)
	})
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.AddressID <= 0 || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	o, err := h.Svc.CreateOrder(r.Context(), req.AddressID, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r, o.ID, o.Status)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.Svc.UpdateStatus(r.Context(), id, orders.Status(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r, o.ID, o.Status)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	o, err := h.Svc.Order(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus serves from the redis cache first and falls back to the store.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, id)
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Svc.Order(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r, o.ID, o.Status)
	writeJSON(w, http.StatusOK, map[string]orders.Status{"status": o.Status})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.Orders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) listByStatus(w http.ResponseWriter, r *http.Request) {
	status := orders.Status(chi.URLParam(r, "status"))
	out, err := h.Svc.OrdersByStatus(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.Svc.DeleteOrder(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeyOrderStatus, id)).Err()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) cacheStatus(r *http.Request, id int64, status orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	val, _ := json.Marshal(map[string]orders.Status{"status": status})
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	_ = h.Redis.Set(ctx, key, val, redisx.TTLStatusCache).Err()
}
