package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-backend/internal/auth"
	"order-backend/internal/orders"
)

type fakeSessions struct{}

func (fakeSessions) Get(_ context.Context, token string) (auth.Session, error) {
	switch token {
	case "tok-user":
		return auth.Session{UserID: 1, Username: "alice"}, nil
	case "tok-admin":
		return auth.Session{UserID: 2, Username: "root", IsAdmin: true}, nil
	}
	return auth.Session{}, auth.ErrNoSession
}

type fakeOrderSvc struct {
	created orders.Order
	err     error
	deleted []int64
}

func (f *fakeOrderSvc) CreateOrder(_ context.Context, addressID int64, items []orders.ItemInput) (orders.Order, error) {
	if f.err != nil {
		return orders.Order{}, f.err
	}
	o := orders.Order{ID: 1, Status: orders.StatusPending, AddressID: addressID}
	for i, it := range items {
		o.Items = append(o.Items, orders.OrderItem{
			ID: int64(i + 1), OrderID: 1, ProductID: it.ProductID, Quantity: it.Quantity,
		})
	}
	f.created = o
	return o, nil
}

func (f *fakeOrderSvc) UpdateStatus(_ context.Context, id int64, status orders.Status) (orders.Order, error) {
	if f.err != nil {
		return orders.Order{}, f.err
	}
	return orders.Order{ID: id, Status: status, AddressID: 1}, nil
}

func (f *fakeOrderSvc) DeleteOrder(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeOrderSvc) Order(_ context.Context, id int64) (orders.Order, error) {
	if f.err != nil {
		return orders.Order{}, f.err
	}
	return orders.Order{ID: id, Status: orders.StatusPending, AddressID: 1}, nil
}

func (f *fakeOrderSvc) Orders(_ context.Context) ([]orders.Order, error) { return nil, f.err }

func (f *fakeOrderSvc) OrdersByStatus(_ context.Context, status orders.Status) ([]orders.Order, error) {
	if !status.Valid() {
		return nil, orders.ErrInvalidStatus
	}
	return []orders.Order{{ID: 3, Status: status, AddressID: 1}}, f.err
}

func newServer(svc OrderService) http.Handler {
	r := NewRouter()
	h := &OrdersHandler{Svc: svc, Sessions: fakeSessions{}}
	h.Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder_Created(t *testing.T) {
	svc := &fakeOrderSvc{}
	h := newServer(svc)

	rec := do(t, h, http.MethodPost, "/orders/", "tok-user", map[string]any{
		"address_id":   1,
		"productitems": []map[string]any{{"product_id": 10, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, orders.StatusPending, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(10), got.Items[0].ProductID)
}

func TestCreateOrder_RequiresLogin(t *testing.T) {
	h := newServer(&fakeOrderSvc{})
	rec := do(t, h, http.MethodPost, "/orders/", "", map[string]any{"address_id": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrder_InsufficientStockMapsToConflict(t *testing.T) {
	svc := &fakeOrderSvc{err: &orders.StockError{ProductID: 10, Err: orders.ErrInsufficientStock}}
	h := newServer(svc)

	rec := do(t, h, http.MethodPost, "/orders/", "tok-user", map[string]any{
		"address_id":   1,
		"productitems": []map[string]any{{"product_id": 10, "quantity": 9}},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "product 10")
}

func TestCreateOrder_MissingFields(t *testing.T) {
	h := newServer(&fakeOrderSvc{})
	rec := do(t, h, http.MethodPost, "/orders/", "tok-user", map[string]any{"address_id": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_OK(t *testing.T) {
	h := newServer(&fakeOrderSvc{})
	rec := do(t, h, http.MethodPatch, "/orders/7/status", "tok-user", map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	var got orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, orders.StatusCompleted, got.Status)
}

func TestUpdateStatus_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{orders.ErrOrderNotFound, http.StatusNotFound},
		{orders.ErrInvalidStatus, http.StatusBadRequest},
		{orders.ErrInvalidTransition, http.StatusBadRequest},
	}
	for _, c := range cases {
		h := newServer(&fakeOrderSvc{err: c.err})
		rec := do(t, h, http.MethodPatch, "/orders/7/status", "tok-user", map[string]string{"status": "completed"})
		assert.Equal(t, c.code, rec.Code, "for %v", c.err)
	}
}

func TestDeleteOrder_AdminOnly(t *testing.T) {
	svc := &fakeOrderSvc{}
	h := newServer(svc)

	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodDelete, "/orders/3", "tok-user", nil).Code)

	rec := do(t, h, http.MethodDelete, "/orders/3", "tok-admin", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{3}, svc.deleted)
}

func TestListByStatus(t *testing.T) {
	h := newServer(&fakeOrderSvc{})

	rec := do(t, h, http.MethodGet, "/orders/status/pending", "tok-user", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/orders/status/shipped", "tok-user", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	h := newServer(&fakeOrderSvc{})

	rec := do(t, h, http.MethodGet, "/orders/5", "tok-user", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/orders/abc", "tok-user", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderStatus_FallsBackToStore(t *testing.T) {
	h := newServer(&fakeOrderSvc{})

	rec := do(t, h, http.MethodGet, "/orders/5/status", "tok-user", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "pending", got["status"])
}
