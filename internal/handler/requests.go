package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/sakif/medsupply/internal/apperror"
	"github.com/sakif/medsupply/internal/controller"
)

// RequestHandler drives the RequestComposer for the new-request form.
//
// The composer holds one draft, so requests are handled one at a time.
type RequestHandler struct {
	mu       sync.Mutex
	composer *controller.RequestComposer
	state    *controller.OrderState
	logger   *slog.Logger
}

func NewRequestHandler(composer *controller.RequestComposer, state *controller.OrderState, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{composer: composer, state: state, logger: logger}
}

type createRequest struct {
	Supply   string `json:"supply"`
	Quantity string `json:"quantity"`
	Priority string `json:"priority"`
}

// SubmitResponse carries the composer's signals after a submission.
type SubmitResponse struct {
	Submitted           bool   `json:"submitted"`
	ConfirmationVisible bool   `json:"confirmationVisible"`
	Message             string `json:"message"`
}

// HandleSubmit files a new supply request.
//
// HTTP: POST /api/requests
// REQUEST BODY: {"supply": "Insulin", "quantity": "10 units", "priority": "Urgent"}
//
// An omitted priority falls back to the composer default. After a
// successful submission the form is cleared and the orders snapshot is
// refreshed.
func (h *RequestHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	switch {
	case strings.TrimSpace(req.Supply) == "":
		writeError(w, apperror.ValidationFailed("supply", "supply is required"))
		return
	case strings.TrimSpace(req.Quantity) == "":
		writeError(w, apperror.ValidationFailed("quantity", "quantity is required"))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.composer.Reset()
	h.composer.SetSupply(req.Supply)
	h.composer.SetQuantity(req.Quantity)
	if req.Priority != "" {
		h.composer.SetPriority(req.Priority)
	}

	if !h.composer.Submit(r.Context()) {
		writeFailure(w, h.composer.StatusMessage.Get())
		return
	}

	resp := SubmitResponse{
		Submitted:           true,
		ConfirmationVisible: h.composer.ConfirmationVisible.Get(),
		Message:             h.composer.StatusMessage.Get(),
	}
	h.composer.DismissConfirmation()
	h.composer.Reset()

	if err := h.state.Refresh(r.Context()); err != nil {
		h.logger.Warn("refresh after submit failed", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusCreated, resp)
}
