package ws_game

import (
	"encoding/json"

	"github.com/bortnikau/quizparty/core/internal/model"
	"github.com/google/uuid"
)

// Inbound event types.
const (
	EventJoin         = "join"
	EventStartGame    = "start_game"
	EventNextQuestion = "next_question"
	EventSubmitAnswer = "submit_answer"
)

// Outbound event types.
const (
	EventConnected       = "connection_response"
	EventJoinSuccess     = "join_success"
	EventPlayerJoined    = "player_joined"
	EventGameStarted     = "game_started"
	EventNewQuestion     = "new_question"
	EventGameOver        = "game_over"
	EventAnswerSubmitted = "answer_submitted"
	EventPlayerLeft      = "player_left"
	EventRoomClosed      = "room_closed"
	EventError           = "error"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// inboundEvent defers payload decoding until the type is known.
type inboundEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type JoinPayload struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

type SubmitAnswerPayload struct {
	QuestionID uuid.UUID `json:"question_id"`
	Answer     string    `json:"answer"`
}

type JoinSuccessPayload struct {
	RoomID  model.RoomID   `json:"room_id"`
	Player  model.Player   `json:"player"`
	Players []model.Player `json:"players"`
	IsHost  bool           `json:"is_host"`
}

type PlayerJoinedPayload struct {
	Player  model.Player   `json:"player"`
	Players []model.Player `json:"players"`
}

type QuestionPayload struct {
	Question       model.Question `json:"question"`
	QuestionNumber int            `json:"question_number"`
	TotalQuestions int            `json:"total_questions"`
}

type AnswerSubmittedPayload struct {
	PlayerID   uuid.UUID      `json:"player_id"`
	PlayerName string         `json:"player_name"`
	QuestionID uuid.UUID      `json:"question_id"`
	Answer     string         `json:"answer"`
	AllAnswers []model.Answer `json:"all_answers"`
}

type PlayerLeftPayload struct {
	PlayerName string         `json:"player_name"`
	Players    []model.Player `json:"players"`
}

type RoomClosedPayload struct {
	RoomID model.RoomID `json:"room_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
