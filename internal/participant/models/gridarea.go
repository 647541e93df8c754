package models

import "markpart/pkg/domain"

// GridArea is one row version of a grid area as stored in the temporal
// grid_areas table.
type GridArea struct {
	ID   domain.GridAreaID
	Code string
	Name string
}

// GridAreaAuditedChange names one tracked grid-area property.
type GridAreaAuditedChange string

const (
	GridAreaChangeName GridAreaAuditedChange = "name"
)
