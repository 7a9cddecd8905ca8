package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/medsupply/internal/controller"
	"github.com/sakif/medsupply/internal/handler"
	"github.com/sakif/medsupply/internal/model"
	"github.com/sakif/medsupply/internal/repository/sqlite"
)

type fixture struct {
	db       *sqlite.DB
	state    *controller.OrderState
	composer *controller.RequestComposer
	profile  *controller.ProfileController

	orders   *handler.OrderHandler
	requests *handler.RequestHandler
	profiles *handler.ProfileHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	db, err := sqlite.New(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:       db,
		state:    controller.NewOrderState(ctx, db, logger),
		composer: controller.NewRequestComposer(db, logger),
		profile:  controller.NewProfileController(ctx, db, logger),
	}
	f.state.Wait()
	f.profile.Wait()

	f.orders = handler.NewOrderHandler(f.state, db, logger)
	f.requests = handler.NewRequestHandler(f.composer, f.state, logger)
	f.profiles = handler.NewProfileHandler(f.profile, logger)
	return f
}

// withID attaches the {id} URL parameter the router would normally set.
func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestCatalog(t *testing.T) {
	rr := httptest.NewRecorder()
	handler.HandleCatalog(rr, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[handler.CatalogResponse](t, rr)
	assert.Equal(t, model.Supplies(), resp.Supplies)
	assert.Equal(t, model.Priorities(), resp.Priorities)
	assert.Len(t, resp.Statuses, 4)
}

func TestSubmitThenList(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.requests.HandleSubmit(rr, jsonRequest(http.MethodPost, "/api/requests",
		`{"supply":"Insulin","quantity":"10 units","priority":"Urgent"}`))

	require.Equal(t, http.StatusCreated, rr.Code)
	sub := decode[handler.SubmitResponse](t, rr)
	assert.True(t, sub.Submitted)
	assert.True(t, sub.ConfirmationVisible)
	assert.Equal(t, controller.MsgOrderSubmitted, sub.Message)

	assert.Equal(t, "", f.composer.Supply.Get(), "form cleared after submit")
	assert.False(t, f.composer.ConfirmationVisible.Get())

	rr = httptest.NewRecorder()
	f.orders.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	list := decode[[]handler.OrderResponse](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, "Insulin", list[0].Supply)
	assert.Equal(t, model.StatusPending, list[0].Status)
	assert.Equal(t, "Pending", list[0].StatusLabel)
}

func TestSubmit_DefaultPriority(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.requests.HandleSubmit(rr, jsonRequest(http.MethodPost, "/api/requests",
		`{"supply":"Gauze","quantity":"2 packs"}`))
	require.Equal(t, http.StatusCreated, rr.Code)

	orders, err := f.db.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.DefaultPriority, orders[0].Priority)
}

func TestSubmit_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing supply", `{"quantity":"1"}`, "supply"},
		{"blank quantity", `{"supply":"Gloves","quantity":"  "}`, "quantity"},
		{"bad json", `{"supply":`, "body"},
		{"unknown field", `{"supply":"Gloves","quantity":"1","colour":"red"}`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rr := httptest.NewRecorder()
			f.requests.HandleSubmit(rr, jsonRequest(http.MethodPost, "/api/requests", tt.body))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decode[handler.ErrorResponse](t, rr)
			assert.Equal(t, "validation_error", resp.Error)
			assert.Equal(t, tt.field, resp.Field)

			orders, err := f.db.ListOrders(context.Background())
			require.NoError(t, err)
			assert.Empty(t, orders)
		})
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Close())

	rr := httptest.NewRecorder()
	f.requests.HandleSubmit(rr, jsonRequest(http.MethodPost, "/api/requests",
		`{"supply":"Gauze","quantity":"2"}`))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decode[handler.ErrorResponse](t, rr)
	assert.Equal(t, controller.MsgOrderSubmitFailed, resp.Message)
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, err := f.db.CreateOrder(ctx, "Needles", "20", "Scheduled")
	require.NoError(t, err)

	t.Run("cache miss falls back to store", func(t *testing.T) {
		_, cached := f.state.FindCached(o.ID)
		require.False(t, cached)

		rr := httptest.NewRecorder()
		f.orders.HandleGet(rr, withID(httptest.NewRequest(http.MethodGet, "/api/orders/1", nil), "1"))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Needles", decode[handler.OrderResponse](t, rr).Supply)
	})

	t.Run("not found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		f.orders.HandleGet(rr, withID(httptest.NewRequest(http.MethodGet, "/api/orders/99", nil), "99"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rr).Error)
	})

	t.Run("bad id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		f.orders.HandleGet(rr, withID(httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil), "abc"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	o, err := f.db.CreateOrder(context.Background(), "Gloves", "1 box", "Urgent")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := withID(jsonRequest(http.MethodPut, "/api/orders/1/status", `{"status":"IN_DELIVERY"}`), "1")
	f.orders.HandleUpdateStatus(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	cached, ok := f.state.FindCached(o.ID)
	require.True(t, ok, "snapshot refreshed after the write")
	assert.Equal(t, model.StatusInDelivery, cached.Status)

	rr = httptest.NewRecorder()
	req = withID(jsonRequest(http.MethodPut, "/api/orders/1/status", `{"status":"LOST"}`), "1")
	f.orders.HandleUpdateStatus(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	req = withID(jsonRequest(http.MethodPut, "/api/orders/42/status", `{"status":"DELIVERED"}`), "42")
	f.orders.HandleUpdateStatus(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.db.CreateOrder(context.Background(), "Alcohol", "1", "Scheduled")
	require.NoError(t, err)
	require.NoError(t, f.state.Refresh(context.Background()))

	rr := httptest.NewRecorder()
	f.orders.HandleDelete(rr, withID(httptest.NewRequest(http.MethodDelete, "/api/orders/1", nil), "1"))
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, f.state.Orders.Get())

	rr = httptest.NewRecorder()
	f.orders.HandleDelete(rr, withID(httptest.NewRequest(http.MethodDelete, "/api/orders/1", nil), "1"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListOrders_StoreFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Close())

	rr := httptest.NewRecorder()
	f.orders.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "An internal error occurred", decode[handler.ErrorResponse](t, rr).Message)
}

func TestProfile_GetAndUpdate(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.profiles.HandleGet(rr, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[handler.ProfileResponse](t, rr)
	assert.True(t, model.DefaultProfile().SameFields(got.Profile))

	updated := got.Profile
	updated.Phone = "+56 2 2222 2222"
	body, err := json.Marshal(updated)
	require.NoError(t, err)

	rr = httptest.NewRecorder()
	f.profiles.HandleUpdate(rr, jsonRequest(http.MethodPut, "/api/profile", string(body)))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[handler.ProfileResponse](t, rr)
	assert.Equal(t, "+56 2 2222 2222", resp.Profile.Phone)
	assert.False(t, resp.Editing)
	assert.Equal(t, controller.MsgProfileUpdated, resp.Message)

	stored, err := f.db.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+56 2 2222 2222", stored.Phone)
}

func TestProfile_UpdateFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Close())

	body, err := json.Marshal(model.DefaultProfile())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	f.profiles.HandleUpdate(rr, jsonRequest(http.MethodPut, "/api/profile", string(body)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, controller.MsgProfileUpdateFailed, decode[handler.ErrorResponse](t, rr).Message)
}

func TestProfile_Attachments(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.profiles.HandleAttachPhoto(rr, jsonRequest(http.MethodPost, "/api/profile/photo", `{"ref":"file://x.jpg"}`))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[handler.ProfileResponse](t, rr)
	require.NotNil(t, resp.Profile.PhotoRef)
	assert.Equal(t, "file://x.jpg", *resp.Profile.PhotoRef)
	assert.Equal(t, controller.MsgPhotoSaved, resp.Message)

	rr = httptest.NewRecorder()
	f.profiles.HandleAttachLocation(rr, jsonRequest(http.MethodPost, "/api/profile/location", `{"label":"Santiago"}`))
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[handler.ProfileResponse](t, rr)
	require.NotNil(t, resp.Profile.Location)
	assert.Equal(t, "Santiago", *resp.Profile.Location)
	require.NotNil(t, resp.Profile.PhotoRef, "photo kept")

	rr = httptest.NewRecorder()
	f.profiles.HandleAttachPhoto(rr, jsonRequest(http.MethodPost, "/api/profile/photo", `{"ref":""}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProfile_AttachFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Close())

	rr := httptest.NewRecorder()
	f.profiles.HandleAttachLocation(rr, jsonRequest(http.MethodPost, "/api/profile/location", `{"label":"Santiago"}`))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, controller.MsgLocationFailed, decode[handler.ErrorResponse](t, rr).Message)
}

func TestProfile_ConcurrentGetAndAttach(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	codes := make(chan int, 400)
	for range 200 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			f.profiles.HandleAttachPhoto(rr, jsonRequest(http.MethodPost, "/api/profile/photo", `{"ref":"file://x.jpg"}`))
			codes <- rr.Code
		}()
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			f.profiles.HandleGet(rr, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
			codes <- rr.Code
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	require.NotNil(t, f.profile.Profile.Get().PhotoRef)
}
