package controller

import (
	"context"
	"log/slog"

	"github.com/sakif/medsupply/internal/model"
	"github.com/sakif/medsupply/internal/observable"
	"github.com/sakif/medsupply/internal/repository"
)

const (
	MsgProfileLoadFailed   = "Failed to load profile"
	MsgProfileUpdated      = "Profile updated successfully"
	MsgProfileUpdateFailed = "Failed to update profile"
	MsgPhotoSaved          = "Photo saved"
	MsgPhotoFailed         = "Failed to save photo"
	MsgLocationSaved       = "Location saved"
	MsgLocationFailed      = "Failed to save location"
)

// ProfileController backs the profile screen.
type ProfileController struct {
	Profile              *observable.Value[model.UserProfile]
	Editing              *observable.Value[bool]
	ConfirmLogoutVisible *observable.Value[bool]
	StatusMessage        *observable.Value[string]

	// OnLogout, if set, is called by ConfirmLogout. Tearing the session
	// down is up to the caller.
	OnLogout func()

	repo   repository.ProfileRepository
	logger *slog.Logger
	queue  dispatcher
}

// NewProfileController starts loading the stored profile in the
// background. Until that finishes, or if it fails, Profile holds
// model.DefaultProfile().
func NewProfileController(ctx context.Context, repo repository.ProfileRepository, logger *slog.Logger) *ProfileController {
	c := &ProfileController{
		Profile:              observable.New(model.DefaultProfile()),
		Editing:              observable.New(false),
		ConfirmLogoutVisible: observable.New(false),
		StatusMessage:        observable.New(""),
		repo:                 repo,
		logger:               logger,
	}

	c.queue.Go(func() {
		p, err := c.repo.GetProfile(ctx)
		if err != nil {
			c.logger.Error("failed to load profile", slog.String("error", err.Error()))
			c.StatusMessage.Set(MsgProfileLoadFailed)
			return
		}
		c.Profile.Set(p)
	})
	return c
}

// ToggleEditing flips edit mode. Nothing typed so far is discarded.
func (c *ProfileController) ToggleEditing() {
	c.Editing.Update(func(b bool) bool { return !b })
}

// Save persists updated and blocks until the store answers.
//
// On success Profile becomes updated and edit mode ends. On failure only
// StatusMessage changes.
func (c *ProfileController) Save(ctx context.Context, updated model.UserProfile) bool {
	updated.ID = model.ProfileID

	var ok bool
	c.queue.Do(func() {
		if err := c.repo.UpdateProfile(ctx, updated); err != nil {
			c.logger.Error("failed to update profile", slog.String("error", err.Error()))
			c.StatusMessage.Set(MsgProfileUpdateFailed)
			return
		}
		c.Profile.Set(updated)
		c.Editing.Set(false)
		c.StatusMessage.Set(MsgProfileUpdated)
		ok = true
	})
	return ok
}

// AttachPhoto stores ref as the profile photo. It returns immediately;
// call Wait before treating Profile as authoritative.
func (c *ProfileController) AttachPhoto(ctx context.Context, ref string) {
	c.attach(ctx, "photo", func(p model.UserProfile) model.UserProfile {
		return p.WithPhoto(ref)
	}, MsgPhotoSaved, MsgPhotoFailed)
}

// AttachLocation stores label as the last known location. Same contract
// as AttachPhoto.
func (c *ProfileController) AttachLocation(ctx context.Context, label string) {
	c.attach(ctx, "location", func(p model.UserProfile) model.UserProfile {
		return p.WithLocation(label)
	}, MsgLocationSaved, MsgLocationFailed)
}

// attach merges into whatever Profile holds when the job runs, so queued
// attachments build on each other instead of overwriting.
func (c *ProfileController) attach(ctx context.Context, what string, merge func(model.UserProfile) model.UserProfile, okMsg, failMsg string) {
	ctx = context.WithoutCancel(ctx)

	c.queue.Go(func() {
		updated := merge(c.Profile.Get())
		if err := c.repo.UpdateProfile(ctx, updated); err != nil {
			c.logger.Error("failed to attach to profile",
				slog.String("field", what),
				slog.String("error", err.Error()),
			)
			c.StatusMessage.Set(failMsg)
			return
		}
		c.Profile.Set(updated)
		c.StatusMessage.Set(okMsg)
	})
}

func (c *ProfileController) RequestLogout() { c.ConfirmLogoutVisible.Set(true) }
func (c *ProfileController) DismissLogout() { c.ConfirmLogoutVisible.Set(false) }

// ConfirmLogout closes the dialog and hands over to OnLogout.
func (c *ProfileController) ConfirmLogout() {
	c.ConfirmLogoutVisible.Set(false)
	if c.OnLogout != nil {
		c.OnLogout()
	}
}

// ClearMessage drops the status message once it has been shown.
func (c *ProfileController) ClearMessage() {
	c.StatusMessage.Set("")
}

// Wait blocks until the initial load and any queued attachments are done.
func (c *ProfileController) Wait() {
	c.queue.Wait()
}
