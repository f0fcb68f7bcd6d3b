package entity

import (
	"time"

	"github.com/google/uuid"
)

// Bike represents a client's bicycle for data transfer between layers.
type Bike struct {
	ID        uuid.UUID  `json:"id"`
	ClientID  *uuid.UUID `json:"client_id,omitempty"`
	Model     string     `json:"model"`
	Color     *string    `json:"color,omitempty"`
	SerialNo  *string    `json:"serial_no,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
