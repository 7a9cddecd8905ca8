package controller

import (
	"context"
	"log/slog"

	"github.com/sakif/medsupply/internal/model"
	"github.com/sakif/medsupply/internal/observable"
	"github.com/sakif/medsupply/internal/repository"
)

// OrderState is the tracking screen's view of the orders table.
//
// Orders is a snapshot taken by the last Refresh. It is not kept in sync
// with the store; callers refresh after every mutation they make.
type OrderState struct {
	Orders  *observable.Value[[]model.Order]
	Loading *observable.Value[bool]

	repo   repository.OrderRepository
	logger *slog.Logger
	queue  dispatcher
}

// NewOrderState returns a controller with an empty snapshot and starts the
// first Refresh in the background.
func NewOrderState(ctx context.Context, repo repository.OrderRepository, logger *slog.Logger) *OrderState {
	c := &OrderState{
		Orders:  observable.New([]model.Order{}),
		Loading: observable.New(false),
		repo:    repo,
		logger:  logger,
	}
	c.queue.Go(func() { c.refresh(ctx) })
	return c
}

// Refresh reloads the snapshot from the store and blocks until done.
//
// Loading goes true for the duration of the call. If the store fails the
// snapshot becomes empty and the error is returned.
func (c *OrderState) Refresh(ctx context.Context) error {
	var err error
	c.queue.Do(func() { err = c.refresh(ctx) })
	return err
}

func (c *OrderState) refresh(ctx context.Context) error {
	c.Loading.Set(true)
	defer c.Loading.Set(false)

	orders, err := c.repo.ListOrders(ctx)
	if err != nil {
		c.logger.Error("failed to load orders", slog.String("error", err.Error()))
		c.Orders.Set([]model.Order{})
		return err
	}

	c.Orders.Set(orders)
	return nil
}

// FindCached looks id up in the current snapshot only. An order created
// after the last Refresh is not found here even though the store has it.
func (c *OrderState) FindCached(id int64) (model.Order, bool) {
	for _, o := range c.Orders.Get() {
		if o.ID == id {
			return o, true
		}
	}
	return model.Order{}, false
}

// Wait blocks until background loads issued so far have finished.
func (c *OrderState) Wait() {
	c.queue.Wait()
}
