package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/sakif/medsupply/internal/apperror"
	"github.com/sakif/medsupply/internal/controller"
	"github.com/sakif/medsupply/internal/model"
)

// ProfileHandler drives the ProfileController.
type ProfileHandler struct {
	mu     sync.Mutex
	ctl    *controller.ProfileController
	logger *slog.Logger
}

func NewProfileHandler(ctl *controller.ProfileController, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{ctl: ctl, logger: logger}
}

// ProfileResponse is the profile screen state.
type ProfileResponse struct {
	Profile model.UserProfile `json:"profile"`
	Editing bool              `json:"editing"`
	Message string            `json:"message,omitempty"`
}

func (h *ProfileHandler) current() ProfileResponse {
	return ProfileResponse{
		Profile: h.ctl.Profile.Get(),
		Editing: h.ctl.Editing.Get(),
		Message: h.ctl.StatusMessage.Get(),
	}
}

// HandleGet returns the profile once background work has settled.
//
// HTTP: GET /api/profile
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ctl.Wait()
	writeJSON(w, http.StatusOK, h.current())
}

// HandleUpdate replaces every profile field. The id in the body, if any,
// is ignored.
//
// HTTP: PUT /api/profile
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var p model.UserProfile
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.ctl.Save(r.Context(), p) {
		writeFailure(w, h.ctl.StatusMessage.Get())
		return
	}
	writeJSON(w, http.StatusOK, h.current())
}

type photoRequest struct {
	Ref string `json:"ref"`
}

type locationRequest struct {
	Label string `json:"label"`
}

// HandleAttachPhoto stores a photo reference handed over by the camera.
//
// HTTP: POST /api/profile/photo
// REQUEST BODY: {"ref": "file:///photos/me.jpg"}
func (h *ProfileHandler) HandleAttachPhoto(w http.ResponseWriter, r *http.Request) {
	var req photoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Ref) == "" {
		writeError(w, apperror.ValidationFailed("ref", "photo reference is required"))
		return
	}

	h.attach(w, func() { h.ctl.AttachPhoto(r.Context(), req.Ref) }, controller.MsgPhotoFailed)
}

// HandleAttachLocation stores a location label handed over by the
// geolocation collaborator.
//
// HTTP: POST /api/profile/location
// REQUEST BODY: {"label": "Lat: -33.45, Lon: -70.66"}
func (h *ProfileHandler) HandleAttachLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		writeError(w, apperror.ValidationFailed("label", "location label is required"))
		return
	}

	h.attach(w, func() { h.ctl.AttachLocation(r.Context(), req.Label) }, controller.MsgLocationFailed)
}

// attach fires the controller call and waits for it, so the response
// reflects what was persisted.
func (h *ProfileHandler) attach(w http.ResponseWriter, start func(), failMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	start()
	h.ctl.Wait()

	if msg := h.ctl.StatusMessage.Get(); msg == failMsg {
		writeFailure(w, msg)
		return
	}
	writeJSON(w, http.StatusOK, h.current())
}
