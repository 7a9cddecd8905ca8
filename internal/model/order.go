// Package model defines the data structures used throughout the application.
package model

import "time"

// CreatedDateLayout is the day/month/year layout stored in orders.created_date.
const CreatedDateLayout = "02/01/2006"

// Order is a request for a medical supply.
//
// ID and CreatedDate are assigned by the store when the order is created
// and never change afterwards. Quantity and Priority are free text.
type Order struct {
	ID          int64  `json:"id"`
	Supply      string `json:"supply"`
	Quantity    string `json:"quantity"`
	Status      Status `json:"status"`
	CreatedDate string `json:"createdDate"`
	Priority    string `json:"priority"`
}

// FormatCreatedDate renders t the way orders.created_date stores it.
func FormatCreatedDate(t time.Time) string {
	return t.Format(CreatedDateLayout)
}
