package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"order-backend/internal/auth"
	"order-backend/internal/orders"
)

type UserStore interface {
	Get(ctx context.Context, id int64) (orders.User, error)
	GetByUsername(ctx context.Context, username string) (orders.User, error)
	Create(ctx context.Context, username, passwordHash string, isAdmin bool) (orders.User, error)
	Update(ctx context.Context, id int64, patch orders.UserPatch) (orders.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	Store    UserStore
	Sessions auth.SessionReader
}

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPatchReq struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
}

func (h *UsersHandler) Register(r *chi.Mux) {
	r.Post("/users", h.create)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(h.Sessions))
		r.Get("/users/{id}", h.get)
		r.Patch("/users/{id}", h.update)
		r.Delete("/users/{id}", h.delete)
	})
}

func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	u, err := h.Store.Create(r.Context(), req.Username, hash, false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	u, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req userPatchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	patch := orders.UserPatch{Username: req.Username, IsAdmin: req.IsAdmin}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.PasswordHash = &hash
	}
	u, err := h.Store.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) delete(w http.ResponseWriter, r *http.Request) {
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
