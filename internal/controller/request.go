package controller

import (
	"context"
	"log/slog"

	"github.com/sakif/medsupply/internal/model"
	"github.com/sakif/medsupply/internal/observable"
	"github.com/sakif/medsupply/internal/repository"
)

// Messages shown after a submission.
const (
	MsgOrderSubmitted    = "Order submitted successfully"
	MsgOrderSubmitFailed = "Failed to submit order"
)

// RequestComposer holds the draft of a new supply request.
//
// The setters store whatever they are given. Submit is the only place the
// draft is checked, and only for presence of a supply and a quantity.
type RequestComposer struct {
	Supply   *observable.Value[string]
	Quantity *observable.Value[string]
	Priority *observable.Value[string]

	ConfirmationVisible *observable.Value[bool]
	// StatusMessage is empty when there is nothing to show.
	StatusMessage *observable.Value[string]

	repo   repository.OrderRepository
	logger *slog.Logger
	queue  dispatcher
}

// NewRequestComposer returns a composer with an empty draft.
func NewRequestComposer(repo repository.OrderRepository, logger *slog.Logger) *RequestComposer {
	return &RequestComposer{
		Supply:              observable.New(""),
		Quantity:            observable.New(""),
		Priority:            observable.New(model.DefaultPriority),
		ConfirmationVisible: observable.New(false),
		StatusMessage:       observable.New(""),
		repo:                repo,
		logger:              logger,
	}
}

func (c *RequestComposer) SetSupply(v string)   { c.Supply.Set(v) }
func (c *RequestComposer) SetQuantity(v string) { c.Quantity.Set(v) }
func (c *RequestComposer) SetPriority(v string) { c.Priority.Set(v) }

// Submit stores the draft as a new order and blocks until the store
// answers. It reports whether an order was created.
//
// With an empty supply or quantity nothing is written and no signal
// changes. Values are stored exactly as entered; whitespace is not
// trimmed.
func (c *RequestComposer) Submit(ctx context.Context) bool {
	supply := c.Supply.Get()
	quantity := c.Quantity.Get()
	if supply == "" || quantity == "" {
		return false
	}
	priority := c.Priority.Get()

	var ok bool
	c.queue.Do(func() {
		order, err := c.repo.CreateOrder(ctx, supply, quantity, priority)
		if err != nil {
			c.logger.Error("failed to submit order",
				slog.String("supply", supply),
				slog.String("error", err.Error()),
			)
			c.StatusMessage.Set(MsgOrderSubmitFailed)
			return
		}

		c.logger.Info("order submitted",
			slog.Int64("id", order.ID),
			slog.String("supply", order.Supply),
			slog.String("priority", order.Priority),
		)
		c.ConfirmationVisible.Set(true)
		c.StatusMessage.Set(MsgOrderSubmitted)
		ok = true
	})
	return ok
}

// DismissConfirmation hides the confirmation dialog.
func (c *RequestComposer) DismissConfirmation() {
	c.ConfirmationVisible.Set(false)
}

// Reset puts the draft back to its defaults. Signals are left alone.
func (c *RequestComposer) Reset() {
	c.Supply.Set("")
	c.Quantity.Set("")
	c.Priority.Set(model.DefaultPriority)
}

// Supplies and Priorities expose the fixed catalog the draft picks from.
func (c *RequestComposer) Supplies() []string   { return model.Supplies() }
func (c *RequestComposer) Priorities() []string { return model.Priorities() }
