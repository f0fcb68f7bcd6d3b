package entity

import (
	"time"

	"github.com/google/uuid"
)

// Sale represents a bike sale for data transfer between layers.
type Sale struct {
	ID        uuid.UUID  `json:"id"`
	ClientID  *uuid.UUID `json:"client_id,omitempty"`
	BikeID    *uuid.UUID `json:"bike_id,omitempty"`
	Amount    float64    `json:"amount"`
	SoldAt    time.Time  `json:"sold_at"`
	CreatedAt time.Time  `json:"created_at"`
}
