package handler

import (
	"net/http"

	"github.com/sakif/medsupply/internal/model"
)

type statusOption struct {
	Value model.Status `json:"value"`
	Label string       `json:"label"`
}

// CatalogResponse lists every choice the request and tracking forms offer.
type CatalogResponse struct {
	Supplies   []string       `json:"supplies"`
	Priorities []string       `json:"priorities"`
	Statuses   []statusOption `json:"statuses"`
}

// HandleCatalog serves the fixed lookup tables.
//
// HTTP: GET /api/catalog
func HandleCatalog(w http.ResponseWriter, r *http.Request) {
	statuses := model.Statuses()
	opts := make([]statusOption, 0, len(statuses))
	for _, s := range statuses {
		opts = append(opts, statusOption{Value: s, Label: s.Label()})
	}

	writeJSON(w, http.StatusOK, CatalogResponse{
		Supplies:   model.Supplies(),
		Priorities: model.Priorities(),
		Statuses:   opts,
	})
}
