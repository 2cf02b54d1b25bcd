package usecase_room

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	"github.com/bortnikau/quizparty/core/internal/model"
	"github.com/google/uuid"
)

var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrNotHost               = errors.New("only the host can do that")
	ErrNoQuestions           = errors.New("room has no questions")
	ErrInsufficientQuestions = errors.New("not enough questions in the bank")
	ErrUnknownPlayer         = errors.New("player does not belong to the room")
	ErrUnknownQuestion       = errors.New("question does not belong to the room")
	ErrGameStarted           = errors.New("game already started")
	ErrInternal              = errors.New("internal error")
)

// QuestionBank is the read-only source rooms sample their questions from.
// Loaded once at process start.
type QuestionBank interface {
	Questions() []model.Question
}

// CodeSet mirrors the set of live room codes in an external store so a code
// cannot be handed out twice, across restarts included. Optional.
//
//go:generate mockery --name=CodeSet --output=./mocks/codeset --filename=codeset.go
type CodeSet interface {
	Add(ctx context.Context, roomID model.RoomID) error
	Remove(ctx context.Context, roomID model.RoomID) error
	Contains(ctx context.Context, roomID model.RoomID) (bool, error)
}

type member struct {
	conn   string
	player model.Player
}

// room is the per-room state machine. All mutations go through mu so
// concurrent events for the same room serialize while distinct rooms
// stay fully parallel.
type room struct {
	mu sync.Mutex

	id        model.RoomID
	status    model.RoomStatus
	roster    []member
	questions []model.Question
	cursor    int
	destroyed bool
}

type Options struct {
	SampleSize    int
	AllowLateJoin bool
}

// Usecase owns the registry of live rooms. It is an injected object, never a
// package-level singleton, so tests can run isolated instances.
type Usecase struct {
	bank   QuestionBank
	codes  CodeSet
	opts   Options
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[model.RoomID]*room
}

type UsecaseOption func(*Usecase)

func WithLogger(logger *slog.Logger) UsecaseOption {
	return func(u *Usecase) {
		u.logger = logger
	}
}

// WithCodeSet plugs an external live-code set (redis-backed in production).
func WithCodeSet(codes CodeSet) UsecaseOption {
	return func(u *Usecase) {
		u.codes = codes
	}
}

func New(bank QuestionBank, opts Options, ucOpts ...UsecaseOption) *Usecase {
	u := &Usecase{
		bank:   bank,
		opts:   opts,
		logger: slog.Default(),
		rooms:  make(map[model.RoomID]*room),
	}
	for _, opt := range ucOpts {
		opt(u)
	}
	return u
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (u *Usecase) buildRoomID() model.RoomID {
	const codeLen = 6
	var builder strings.Builder
	builder.Grow(codeLen)

	for i := 0; i < codeLen; i++ {
		builder.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}

	return model.RoomID(builder.String())
}

// Create samples a fixed question sequence from the bank and registers a new
// lobby under a freshly generated, non-colliding code.
func (u *Usecase) Create(ctx context.Context) (model.RoomID, error) {
	questions, err := u.sampleQuestions()
	if err != nil {
		return model.EmptyRoomID, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	var id model.RoomID
	for {
		id = u.buildRoomID()
		if _, exists := u.rooms[id]; exists {
			continue
		}
		if u.codes != nil {
			// A code still held externally belongs to a room from a
			// previous process life. Skip it.
			held, err := u.codes.Contains(ctx, id)
			if err != nil {
				return model.EmptyRoomID, errors.Join(ErrInternal, err)
			}
			if held {
				continue
			}
		}
		break
	}

	u.rooms[id] = &room{
		id:        id,
		status:    model.StatusLobby,
		questions: questions,
	}

	if u.codes != nil {
		if err := u.codes.Add(ctx, id); err != nil {
			delete(u.rooms, id)
			return model.EmptyRoomID, errors.Join(ErrInternal, err)
		}
	}

	u.logger.Info("room created", "room_id", id, "questions", len(questions))
	return id, nil
}

func (u *Usecase) sampleQuestions() ([]model.Question, error) {
	bank := u.bank.Questions()
	n := u.opts.SampleSize
	if len(bank) < n {
		return nil, ErrInsufficientQuestions
	}

	sample := make([]model.Question, 0, n)
	for i, idx := range rand.Perm(len(bank))[:n] {
		q := bank[idx]
		q.OrderIndex = i
		sample = append(sample, q)
	}
	return sample, nil
}

func (u *Usecase) lookup(id model.RoomID) (*room, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	r, ok := u.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Join appends a player to the roster. The first player to enter an empty
// room becomes the host; host authority is never reassigned afterwards.
func (u *Usecase) Join(ctx context.Context, id model.RoomID, name string, connID string) (model.Player, []model.Player, error) {
	r, err := u.lookup(id)
	if err != nil {
		return model.Player{}, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return model.Player{}, nil, ErrRoomNotFound
	}
	if r.status != model.StatusLobby && !u.opts.AllowLateJoin {
		return model.Player{}, nil, ErrGameStarted
	}

	player := model.Player{
		ID:     uuid.New(),
		Name:   name,
		IsHost: len(r.roster) == 0,
	}
	r.roster = append(r.roster, member{conn: connID, player: player})

	u.logger.Info("player joined",
		"room_id", id,
		"player", player.Name,
		"is_host", player.IsHost)

	return player, r.rosterSnapshot(), nil
}

// Leave removes the player owning connID. An emptied room is torn down and
// its code released; the second return reports that teardown.
func (u *Usecase) Leave(ctx context.Context, id model.RoomID, connID string) (left model.Player, roster []model.Player, destroyed bool, err error) {
	r, lookupErr := u.lookup(id)
	if lookupErr != nil {
		return model.Player{}, nil, false, lookupErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, m := range r.roster {
		if m.conn == connID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Player{}, nil, false, ErrUnknownPlayer
	}

	left = r.roster[idx].player
	r.roster = append(r.roster[:idx], r.roster[idx+1:]...)

	if len(r.roster) > 0 {
		return left, r.rosterSnapshot(), false, nil
	}

	r.destroyed = true
	u.mu.Lock()
	delete(u.rooms, id)
	u.mu.Unlock()

	if u.codes != nil {
		if err := u.codes.Remove(ctx, id); err != nil {
			u.logger.Error("failed to release room code", "room_id", id, "error", err)
		}
	}

	u.logger.Info("room destroyed", "room_id", id)
	return left, nil, true, nil
}

// Start resets the cursor and emits the first question. Safe to call again
// on an already running room (the quiz restarts from the top).
func (u *Usecase) Start(ctx context.Context, id model.RoomID, playerID uuid.UUID) (model.Question, int, error) {
	r, err := u.lookup(id)
	if err != nil {
		return model.Question{}, 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(playerID); err != nil {
		return model.Question{}, 0, err
	}
	if len(r.questions) == 0 {
		return model.Question{}, 0, ErrNoQuestions
	}

	r.cursor = 0
	r.status = model.StatusActive

	return r.questions[0], len(r.questions), nil
}

// Advance moves the cursor to the next question. Past the last question the
// room finishes and a terminal signal (nil question) is returned; advancing
// a finished room re-emits that signal without touching the cursor.
func (u *Usecase) Advance(ctx context.Context, id model.RoomID, playerID uuid.UUID) (*model.Question, int, error) {
	r, err := u.lookup(id)
	if err != nil {
		return nil, 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(playerID); err != nil {
		return nil, 0, err
	}

	if r.status == model.StatusFinished {
		return nil, len(r.questions), nil
	}

	if r.cursor+1 < len(r.questions) {
		r.cursor++
		r.status = model.StatusActive
		q := r.questions[r.cursor]
		return &q, len(r.questions), nil
	}

	r.cursor = len(r.questions)
	r.status = model.StatusFinished
	u.logger.Info("game over", "room_id", id)
	return nil, len(r.questions), nil
}

func (r *room) requireHost(playerID uuid.UUID) error {
	for _, m := range r.roster {
		if m.player.ID == playerID {
			if !m.player.IsHost {
				return ErrNotHost
			}
			return nil
		}
	}
	return ErrUnknownPlayer
}

func (r *room) rosterSnapshot() []model.Player {
	players := make([]model.Player, 0, len(r.roster))
	for _, m := range r.roster {
		players = append(players, m.player)
	}
	return players
}

// PlayerByID implements the answer ledger's room directory.
func (u *Usecase) PlayerByID(ctx context.Context, id model.RoomID, playerID uuid.UUID) (model.Player, error) {
	r, err := u.lookup(id)
	if err != nil {
		return model.Player{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.roster {
		if m.player.ID == playerID {
			return m.player, nil
		}
	}
	return model.Player{}, ErrUnknownPlayer
}

// QuestionByID implements the answer ledger's room directory.
func (u *Usecase) QuestionByID(ctx context.Context, id model.RoomID, questionID uuid.UUID) (model.Question, error) {
	r, err := u.lookup(id)
	if err != nil {
		return model.Question{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, q := range r.questions {
		if q.ID == questionID {
			return q, nil
		}
	}
	return model.Question{}, ErrUnknownQuestion
}

// Players returns the roster in join order.
func (u *Usecase) Players(ctx context.Context, id model.RoomID) ([]model.Player, error) {
	r, err := u.lookup(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterSnapshot(), nil
}

// Questions returns the room's fixed question sequence.
func (u *Usecase) Questions(ctx context.Context, id model.RoomID) ([]model.Question, error) {
	r, err := u.lookup(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	questions := make([]model.Question, len(r.questions))
	copy(questions, r.questions)
	return questions, nil
}

func (u *Usecase) Info(ctx context.Context, id model.RoomID) (model.RoomInfo, error) {
	r, err := u.lookup(id)
	if err != nil {
		return model.RoomInfo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info(), nil
}

func (u *Usecase) List(ctx context.Context) []model.RoomInfo {
	u.mu.RLock()
	live := make([]*room, 0, len(u.rooms))
	for _, r := range u.rooms {
		live = append(live, r)
	}
	u.mu.RUnlock()

	infos := make([]model.RoomInfo, 0, len(live))
	for _, r := range live {
		r.mu.Lock()
		if !r.destroyed {
			infos = append(infos, r.info())
		}
		r.mu.Unlock()
	}
	return infos
}

func (r *room) info() model.RoomInfo {
	number := 0
	if r.status != model.StatusLobby {
		number = min(r.cursor+1, len(r.questions))
	}
	return model.RoomInfo{
		ID:             r.id,
		Status:         r.status,
		PlayerCount:    len(r.roster),
		QuestionCount:  len(r.questions),
		QuestionNumber: number,
	}
}
