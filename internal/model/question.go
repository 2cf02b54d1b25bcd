package model

import "github.com/google/uuid"

// Question is read-only once assigned to a room. OrderIndex is the position
// within the room's fixed sequence, not within the global bank.
type Question struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Category   string    `json:"category"`
	OrderIndex int       `json:"order_index"`
}
