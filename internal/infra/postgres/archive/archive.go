package infra_postgres_archive

import (
	"context"

	"github.com/bortnikau/quizparty/core/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Driver writes answers through to postgres so a finished game can be
// inspected after the room is gone. The in-memory ledger stays authoritative
// for the room's lifetime.
type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type answerDTO struct {
	RoomID     string    `db:"room_id"`
	PlayerID   uuid.UUID `db:"player_id"`
	PlayerName string    `db:"player_name"`
	QuestionID uuid.UUID `db:"question_id"`
	Answer     string    `db:"answer"`
}

func (d *Driver) SaveAnswer(ctx context.Context, roomID model.RoomID, answer model.Answer) error {
	dto := answerDTO{
		RoomID:     string(roomID),
		PlayerID:   answer.PlayerID,
		PlayerName: answer.PlayerName,
		QuestionID: answer.QuestionID,
		Answer:     answer.Value,
	}

	query := `
		INSERT INTO answers (room_id, player_id, player_name, question_id, answer)
		VALUES (:room_id, :player_id, :player_name, :question_id, :answer)
		ON CONFLICT (room_id, player_id, question_id)
		DO UPDATE SET answer = EXCLUDED.answer
	`

	_, err := d.db.NamedExecContext(ctx, query, dto)
	return err
}

func (d *Driver) DropRoom(ctx context.Context, roomID model.RoomID) error {
	query := `
		DELETE FROM answers
		WHERE room_id = $1
	`

	_, err := d.db.ExecContext(ctx, query, string(roomID))
	return err
}
