package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/velobase/jobsheet-tracker/constants"
)

// JobSheet represents a persisted service job sheet for data transfer between layers.
// The textual fields mirror the extracted draft; TotalCost is always derived.
type JobSheet struct {
	ID            uuid.UUID             `json:"id"`
	ClientID      *uuid.UUID            `json:"client_id,omitempty"`
	BikeID        *uuid.UUID            `json:"bike_id,omitempty"`
	CustomerName  string                `json:"customer_name"`
	CustomerPhone string                `json:"customer_phone"`
	BikeModel     string                `json:"bike_model"`
	WorkRequired  string                `json:"work_required"`
	WorkDone      string                `json:"work_done"`
	LaborCost     float64               `json:"labor_cost"`
	PartsCost     float64               `json:"parts_cost"`
	TotalCost     float64               `json:"total_cost"`
	Notes         string                `json:"notes"`
	Status        constants.DraftStatus `json:"status"`
	NeedsReview   bool                  `json:"needs_review"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}
