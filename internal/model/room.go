package model

// RoomInfo is a read-only projection of a live room for listing endpoints.
type RoomInfo struct {
	ID            RoomID     `json:"room_id"`
	Status        RoomStatus `json:"status"`
	PlayerCount   int        `json:"player_count"`
	QuestionCount int        `json:"question_count"`

	// QuestionNumber is 1-based; 0 until the game has started.
	QuestionNumber int `json:"question_number"`
}
