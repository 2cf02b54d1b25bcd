package usecase_answer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bortnikau/quizparty/core/internal/model"
	"github.com/google/uuid"
)

// RoomDirectory resolves submitted ids against the owning room. Implemented
// by the room usecase. Lookup failures pass through as the directory's own
// errors.
type RoomDirectory interface {
	PlayerByID(ctx context.Context, roomID model.RoomID, playerID uuid.UUID) (model.Player, error)
	QuestionByID(ctx context.Context, roomID model.RoomID, questionID uuid.UUID) (model.Question, error)
}

// Archiver writes answers through to a durable store. Optional; the ledger
// itself is fully in-memory and failures here never fail a submission.
//
//go:generate mockery --name=Archiver --output=./mocks/archiver --filename=archiver.go
type Archiver interface {
	SaveAnswer(ctx context.Context, roomID model.RoomID, answer model.Answer) error
	DropRoom(ctx context.Context, roomID model.RoomID) error
}

type answerKey struct {
	playerID   uuid.UUID
	questionID uuid.UUID
}

// ledger holds one room's answers. entries carries the latest value per key,
// order preserves first-submission order for stable broadcasts.
type ledger struct {
	entries map[answerKey]model.Answer
	order   []answerKey
}

type Usecase struct {
	directory RoomDirectory
	archive   Archiver
	logger    *slog.Logger

	mu     sync.Mutex
	byRoom map[model.RoomID]*ledger
}

type UsecaseOption func(*Usecase)

func WithLogger(logger *slog.Logger) UsecaseOption {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithArchiver(archive Archiver) UsecaseOption {
	return func(u *Usecase) {
		u.archive = archive
	}
}

func New(directory RoomDirectory, opts ...UsecaseOption) *Usecase {
	u := &Usecase{
		directory: directory,
		logger:    slog.Default(),
		byRoom:    make(map[model.RoomID]*ledger),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Submit upserts the player's answer and returns the full current answer set
// for the question, first-submission order.
func (u *Usecase) Submit(ctx context.Context, roomID model.RoomID, playerID, questionID uuid.UUID, value string) (model.Answer, []model.Answer, error) {
	player, err := u.directory.PlayerByID(ctx, roomID, playerID)
	if err != nil {
		return model.Answer{}, nil, err
	}
	if _, err := u.directory.QuestionByID(ctx, roomID, questionID); err != nil {
		return model.Answer{}, nil, err
	}

	answer := model.Answer{
		PlayerID:   playerID,
		PlayerName: player.Name,
		QuestionID: questionID,
		Value:      value,
	}

	u.mu.Lock()
	l, ok := u.byRoom[roomID]
	if !ok {
		l = &ledger{entries: make(map[answerKey]model.Answer)}
		u.byRoom[roomID] = l
	}
	key := answerKey{playerID: playerID, questionID: questionID}
	if _, exists := l.entries[key]; !exists {
		l.order = append(l.order, key)
	}
	l.entries[key] = answer
	all := l.forQuestion(questionID)
	u.mu.Unlock()

	if u.archive != nil {
		if err := u.archive.SaveAnswer(ctx, roomID, answer); err != nil {
			u.logger.Error("failed to archive answer",
				"room_id", roomID,
				"player_id", playerID,
				"error", err)
		}
	}

	return answer, all, nil
}

// ForQuestion returns the current answer set for a question.
func (u *Usecase) ForQuestion(ctx context.Context, roomID model.RoomID, questionID uuid.UUID) ([]model.Answer, error) {
	if _, err := u.directory.QuestionByID(ctx, roomID, questionID); err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	l, ok := u.byRoom[roomID]
	if !ok {
		return []model.Answer{}, nil
	}
	return l.forQuestion(questionID), nil
}

// DropRoom clears a destroyed room's answers.
func (u *Usecase) DropRoom(ctx context.Context, roomID model.RoomID) {
	u.mu.Lock()
	delete(u.byRoom, roomID)
	u.mu.Unlock()

	if u.archive != nil {
		if err := u.archive.DropRoom(ctx, roomID); err != nil {
			u.logger.Error("failed to drop archived room", "room_id", roomID, "error", err)
		}
	}
}

func (l *ledger) forQuestion(questionID uuid.UUID) []model.Answer {
	answers := make([]model.Answer, 0, len(l.order))
	for _, key := range l.order {
		if key.questionID == questionID {
			answers = append(answers, l.entries[key])
		}
	}
	return answers
}
