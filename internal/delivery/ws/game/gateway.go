package ws_game

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bortnikau/quizparty/core/internal/model"
	usecase_answer "github.com/bortnikau/quizparty/core/internal/usecase/answer"
	usecase_room "github.com/bortnikau/quizparty/core/internal/usecase/room"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// session ties a connection to the room/player it acts as. The table below
// is the sole "who am I" source for events after join.
type session struct {
	roomID   model.RoomID
	playerID uuid.UUID
}

// Controller is the session gateway: it owns the connection-to-identity
// table, routes inbound events into the usecases and fans resulting state
// changes out through the hub.
//
// Every handler runs under the per-room ordering mutex across both the
// mutation and its broadcast, so subscribers observe room events in exactly
// the order the mutations were applied. Distinct rooms do not contend.
type Controller struct {
	hub     *Hub
	rooms   *usecase_room.Usecase
	answers *usecase_answer.Usecase

	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[*Client]session
	order    map[model.RoomID]*sync.Mutex
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func NewController(hub *Hub, rooms *usecase_room.Usecase, answers *usecase_answer.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		hub:     hub,
		rooms:   rooms,
		answers: answers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:   slog.Default(),
		sessions: make(map[*Client]session),
		order:    make(map[model.RoomID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", c.serve)
}

func (c *Controller) serve(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  c.hub,
		conn: conn,
		send: make(chan Event, sendBuffer),
		id:   uuid.New().String(),
	}
	c.hub.Register(client)
	go c.hub.StartClientWriting(client)

	c.hub.SendTo(client, Event{
		Type:    EventConnected,
		Payload: map[string]string{"status": "connected"},
	})

	c.readLoop(client)
}

func (c *Controller) readLoop(client *Client) {
	defer c.onDisconnect(client)

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var event inboundEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.fail(client, "malformed event")
			continue
		}
		c.dispatch(client, event)
	}
}

func (c *Controller) dispatch(client *Client, event inboundEvent) {
	ctx := context.Background()

	switch event.Type {
	case EventJoin:
		var p JoinPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.fail(client, "malformed join payload")
			return
		}
		c.onJoin(ctx, client, p)

	case EventStartGame:
		c.onStart(ctx, client)

	case EventNextQuestion:
		c.onAdvance(ctx, client)

	case EventSubmitAnswer:
		var p SubmitAnswerPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.fail(client, "malformed answer payload")
			return
		}
		c.onSubmitAnswer(ctx, client, p)

	default:
		c.fail(client, "unknown event type: "+event.Type)
	}
}

func (c *Controller) onJoin(ctx context.Context, client *Client, p JoinPayload) {
	if p.PlayerName == "" {
		c.fail(client, "player name is required")
		return
	}
	if _, ok := c.session(client); ok {
		c.fail(client, "already joined a room")
		return
	}

	roomID := model.RoomID(p.RoomID)
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	player, roster, err := c.rooms.Join(ctx, roomID, p.PlayerName, client.id)
	if err != nil {
		c.fail(client, err.Error())
		return
	}

	c.setSession(client, session{roomID: roomID, playerID: player.ID})
	c.hub.Subscribe(client, roomID)

	c.hub.BroadcastToRoom(roomID, Event{
		Type: EventPlayerJoined,
		Payload: PlayerJoinedPayload{
			Player:  player,
			Players: roster,
		},
	})
	c.hub.SendTo(client, Event{
		Type: EventJoinSuccess,
		Payload: JoinSuccessPayload{
			RoomID:  roomID,
			Player:  player,
			Players: roster,
			IsHost:  player.IsHost,
		},
	})
}

func (c *Controller) onStart(ctx context.Context, client *Client) {
	sess, ok := c.session(client)
	if !ok {
		c.fail(client, "not joined to any room")
		return
	}

	lock := c.roomLock(sess.roomID)
	lock.Lock()
	defer lock.Unlock()

	question, total, err := c.rooms.Start(ctx, sess.roomID, sess.playerID)
	if err != nil {
		c.fail(client, err.Error())
		return
	}

	c.hub.BroadcastToRoom(sess.roomID, Event{
		Type: EventGameStarted,
		Payload: QuestionPayload{
			Question:       question,
			QuestionNumber: 1,
			TotalQuestions: total,
		},
	})
}

func (c *Controller) onAdvance(ctx context.Context, client *Client) {
	sess, ok := c.session(client)
	if !ok {
		c.fail(client, "not joined to any room")
		return
	}

	lock := c.roomLock(sess.roomID)
	lock.Lock()
	defer lock.Unlock()

	question, total, err := c.rooms.Advance(ctx, sess.roomID, sess.playerID)
	if err != nil {
		c.fail(client, err.Error())
		return
	}

	if question == nil {
		c.hub.BroadcastToRoom(sess.roomID, Event{Type: EventGameOver})
		return
	}
	c.hub.BroadcastToRoom(sess.roomID, Event{
		Type: EventNewQuestion,
		Payload: QuestionPayload{
			Question:       *question,
			QuestionNumber: question.OrderIndex + 1,
			TotalQuestions: total,
		},
	})
}

func (c *Controller) onSubmitAnswer(ctx context.Context, client *Client, p SubmitAnswerPayload) {
	sess, ok := c.session(client)
	if !ok {
		c.fail(client, "not joined to any room")
		return
	}

	lock := c.roomLock(sess.roomID)
	lock.Lock()
	defer lock.Unlock()

	answer, all, err := c.answers.Submit(ctx, sess.roomID, sess.playerID, p.QuestionID, p.Answer)
	if err != nil {
		c.fail(client, err.Error())
		return
	}

	c.hub.BroadcastToRoom(sess.roomID, Event{
		Type: EventAnswerSubmitted,
		Payload: AnswerSubmittedPayload{
			PlayerID:   answer.PlayerID,
			PlayerName: answer.PlayerName,
			QuestionID: answer.QuestionID,
			Answer:     answer.Value,
			AllAnswers: all,
		},
	})
}

// onDisconnect treats a dropped connection as an implicit leave.
func (c *Controller) onDisconnect(client *Client) {
	ctx := context.Background()

	sess, ok := c.session(client)
	if ok {
		lock := c.roomLock(sess.roomID)
		lock.Lock()

		left, roster, destroyed, err := c.rooms.Leave(ctx, sess.roomID, client.id)
		switch {
		case err != nil:
			c.logger.Error("leave failed on disconnect",
				"room_id", sess.roomID,
				"conn_id", client.id,
				"error", err)
		case destroyed:
			c.answers.DropRoom(ctx, sess.roomID)
			c.hub.BroadcastToRoom(sess.roomID, Event{
				Type:    EventRoomClosed,
				Payload: RoomClosedPayload{RoomID: sess.roomID},
			})
			c.dropRoomLock(sess.roomID)
		default:
			c.hub.BroadcastToRoom(sess.roomID, Event{
				Type: EventPlayerLeft,
				Payload: PlayerLeftPayload{
					PlayerName: left.Name,
					Players:    roster,
				},
			})
		}

		lock.Unlock()
		c.clearSession(client)
	}

	c.hub.Unregister(client)
}

func (c *Controller) fail(client *Client, message string) {
	c.hub.SendTo(client, Event{
		Type:    EventError,
		Payload: ErrorPayload{Message: message},
	})
}

func (c *Controller) session(client *Client) (session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[client]
	return sess, ok
}

func (c *Controller) setSession(client *Client, sess session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[client] = sess
}

func (c *Controller) clearSession(client *Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, client)
}

func (c *Controller) roomLock(roomID model.RoomID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.order[roomID]
	if !ok {
		lock = &sync.Mutex{}
		c.order[roomID] = lock
	}
	return lock
}

func (c *Controller) dropRoomLock(roomID model.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.order, roomID)
}
