// Package repository declares the store contracts the controllers depend on.
//
// A nil error means the operation succeeded. A missing row is reported as
// an error wrapping apperror.ErrNotFound, never as a panic or a zero value
// mistaken for data.
package repository

import (
	"context"

	"github.com/sakif/medsupply/internal/model"
)

// OrderRepository owns the read/write path of the orders table.
type OrderRepository interface {
	// ListOrders returns every order, newest first. An empty table yields
	// an empty slice.
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	// CreateOrder stores a new Pending order dated today.
	CreateOrder(ctx context.Context, supply, quantity, priority string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) error
	DeleteOrder(ctx context.Context, id int64) error
}

// ProfileRepository owns the single-row user_profile table.
type ProfileRepository interface {
	GetProfile(ctx context.Context) (model.UserProfile, error)
	UpdateProfile(ctx context.Context, profile model.UserProfile) error
}
