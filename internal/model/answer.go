package model

import "github.com/google/uuid"

// Answer is keyed by (PlayerID, QuestionID); a later submission for the same
// key replaces the value.
type Answer struct {
	PlayerID   uuid.UUID `json:"player_id"`
	PlayerName string    `json:"player_name"`
	QuestionID uuid.UUID `json:"question_id"`
	Value      string    `json:"answer"`
}
