package usecase_answer

import (
	"context"
	"errors"
	"testing"

	"github.com/bortnikau/quizparty/core/internal/model"
	usecase_room "github.com/bortnikau/quizparty/core/internal/usecase/room"
	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UsecaseAnswerUnitSuite struct {
	suite.Suite
}

type stubBank struct {
	questions []model.Question
}

func (b *stubBank) Questions() []model.Question {
	return b.questions
}

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) SaveAnswer(ctx context.Context, roomID model.RoomID, answer model.Answer) error {
	args := m.Called(ctx, roomID, answer)
	return args.Error(0)
}

func (m *mockArchiver) DropRoom(ctx context.Context, roomID model.RoomID) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type fixture struct {
	ctx       context.Context
	rooms     *usecase_room.Usecase
	answers   *Usecase
	roomID    model.RoomID
	players   []model.Player
	questions []model.Question
}

// newFixture builds a live room with two players as the ledger's directory.
func newFixture(t provider.T, opts ...UsecaseOption) *fixture {
	ctx := context.Background()

	bank := &stubBank{}
	for i := 0; i < 5; i++ {
		bank.questions = append(bank.questions, model.Question{
			ID:       uuid.New(),
			Text:     "question " + uuid.NewString(),
			Category: "general",
		})
	}

	rooms := usecase_room.New(bank, usecase_room.Options{SampleSize: 3, AllowLateJoin: true})
	roomID, err := rooms.Create(ctx)
	require.NoError(t, err)

	players := make([]model.Player, 0, 2)
	for _, name := range []string{"P1", "P2"} {
		p, _, err := rooms.Join(ctx, roomID, name, "conn-"+name)
		require.NoError(t, err)
		players = append(players, p)
	}

	questions, err := rooms.Questions(ctx, roomID)
	require.NoError(t, err)

	return &fixture{
		ctx:       ctx,
		rooms:     rooms,
		answers:   New(rooms, opts...),
		roomID:    roomID,
		players:   players,
		questions: questions,
	}
}

func (s *UsecaseAnswerUnitSuite) TestSubmit(t provider.T) {
	t.Run("Should record an answer and return the full set", func(t provider.T) {
		f := newFixture(t)
		q := f.questions[0]

		answer, all, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, q.ID, "yes")

		require.NoError(t, err)
		assert.Equal(t, "P1", answer.PlayerName)
		assert.Equal(t, "yes", answer.Value)
		require.Len(t, all, 1)
		assert.Equal(t, answer, all[0])
	})

	t.Run("Should overwrite on resubmission", func(t provider.T) {
		f := newFixture(t)
		q := f.questions[0]

		_, _, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, q.ID, "yes")
		require.NoError(t, err)

		_, all, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, q.ID, "no")

		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "no", all[0].Value)
	})

	t.Run("Should keep first-submission order across players", func(t provider.T) {
		f := newFixture(t)
		q := f.questions[0]

		_, _, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, q.ID, "yes")
		require.NoError(t, err)
		_, _, err = f.answers.Submit(f.ctx, f.roomID, f.players[1].ID, q.ID, "no")
		require.NoError(t, err)

		// P1 resubmits; the set keeps P1 first.
		_, all, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, q.ID, "maybe")

		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "P1", all[0].PlayerName)
		assert.Equal(t, "maybe", all[0].Value)
		assert.Equal(t, "P2", all[1].PlayerName)
	})

	t.Run("Should scope answer sets per question", func(t provider.T) {
		f := newFixture(t)

		_, _, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, f.questions[0].ID, "yes")
		require.NoError(t, err)
		_, all, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, f.questions[1].ID, "no")

		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, f.questions[1].ID, all[0].QuestionID)
	})

	t.Run("Should fail for a player outside the room", func(t provider.T) {
		f := newFixture(t)

		_, _, err := f.answers.Submit(f.ctx, f.roomID, uuid.New(), f.questions[0].ID, "yes")

		assert.ErrorIs(t, err, usecase_room.ErrUnknownPlayer)
	})

	t.Run("Should fail for a question outside the room", func(t provider.T) {
		f := newFixture(t)

		_, _, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, uuid.New(), "yes")

		assert.ErrorIs(t, err, usecase_room.ErrUnknownQuestion)
	})

	t.Run("Should archive each upsert", func(t provider.T) {
		archive := &mockArchiver{}
		f := newFixture(t, WithArchiver(archive))
		q := f.questions[0]

		archive.On("SaveAnswer", f.ctx, f.roomID, mock.AnythingOfType("model.Answer")).Return(nil).Twice()

		_, _, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, q.ID, "yes")
		require.NoError(t, err)
		_, _, err = f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, q.ID, "no")
		require.NoError(t, err)

		archive.AssertExpectations(t)
	})

	t.Run("Should not fail the submission when archiving fails", func(t provider.T) {
		archive := &mockArchiver{}
		f := newFixture(t, WithArchiver(archive))
		q := f.questions[0]

		archive.On("SaveAnswer", f.ctx, f.roomID, mock.AnythingOfType("model.Answer")).
			Return(errors.New("connection refused")).Once()

		_, all, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, q.ID, "yes")

		require.NoError(t, err)
		assert.Len(t, all, 1)
		archive.AssertExpectations(t)
	})
}

func (s *UsecaseAnswerUnitSuite) TestForQuestion(t provider.T) {
	t.Run("Should return an empty set before any submission", func(t provider.T) {
		f := newFixture(t)

		all, err := f.answers.ForQuestion(f.ctx, f.roomID, f.questions[0].ID)

		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Should fail for an unknown question", func(t provider.T) {
		f := newFixture(t)

		_, err := f.answers.ForQuestion(f.ctx, f.roomID, uuid.New())

		assert.ErrorIs(t, err, usecase_room.ErrUnknownQuestion)
	})
}

func (s *UsecaseAnswerUnitSuite) TestDropRoom(t provider.T) {
	t.Run("Should clear the room's answers", func(t provider.T) {
		f := newFixture(t)
		q := f.questions[0]

		_, _, err := f.answers.Submit(f.ctx, f.roomID, f.players[0].ID, q.ID, "yes")
		require.NoError(t, err)

		f.answers.DropRoom(f.ctx, f.roomID)

		all, err := f.answers.ForQuestion(f.ctx, f.roomID, q.ID)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Should drop the archived room as well", func(t provider.T) {
		archive := &mockArchiver{}
		f := newFixture(t, WithArchiver(archive))

		archive.On("DropRoom", f.ctx, f.roomID).Return(nil).Once()

		f.answers.DropRoom(f.ctx, f.roomID)

		archive.AssertExpectations(t)
	})
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseAnswerUnitSuite))
}
