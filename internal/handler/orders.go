package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/medsupply/internal/apperror"
	"github.com/sakif/medsupply/internal/controller"
	"github.com/sakif/medsupply/internal/model"
	"github.com/sakif/medsupply/internal/repository"
)

// OrderResponse is an order plus its display label.
type OrderResponse struct {
	model.Order
	StatusLabel string `json:"statusLabel"`
}

func toOrderResponse(o model.Order) OrderResponse {
	return OrderResponse{Order: o, StatusLabel: o.Status.Label()}
}

// OrderHandler serves the tracking and detail views.
//
// Reads go through the OrderState snapshot. Status changes and deletions
// go to the store and are followed by a refresh so the snapshot catches up.
type OrderHandler struct {
	state  *controller.OrderState
	store  repository.OrderRepository
	logger *slog.Logger
}

func NewOrderHandler(state *controller.OrderState, store repository.OrderRepository, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{state: state, store: store, logger: logger}
}

// HandleList refreshes the snapshot and returns it, newest first.
//
// HTTP: GET /api/orders
func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	orders := h.state.Orders.Get()
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet returns one order. A cache miss falls through to the store, so
// an order created since the last refresh is still found.
//
// HTTP: GET /api/orders/{id}
func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if o, ok := h.state.FindCached(id); ok {
		writeJSON(w, http.StatusOK, toOrderResponse(o))
		return
	}

	o, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*o))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus moves an order to any status. Transitions are not
// restricted.
//
// HTTP: PUT /api/orders/{id}/status
// REQUEST BODY: {"status": "IN_DELIVERY"}
func (h *OrderHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status, ok := model.ParseStatus(req.Status)
	if !ok {
		writeError(w, apperror.ValidationFailed("status", "unknown status "+req.Status))
		return
	}

	if err := h.store.UpdateStatus(r.Context(), id, status); err != nil {
		writeError(w, err)
		return
	}
	h.refresh(r)

	h.logger.Info("order status updated", slog.Int64("id", id), slog.String("status", string(status)))
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes an order.
//
// HTTP: DELETE /api/orders/{id}
func (h *OrderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.DeleteOrder(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.refresh(r)

	h.logger.Info("order deleted", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// refresh runs after a successful write; its failure does not undo the
// write, so it is only logged.
func (h *OrderHandler) refresh(r *http.Request) {
	if err := h.state.Refresh(r.Context()); err != nil {
		h.logger.Warn("refresh after write failed", slog.String("error", err.Error()))
	}
}
