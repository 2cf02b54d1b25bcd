package http_room

import (
	"errors"
	"log/slog"
	"net/http"

	http_common "github.com/bortnikau/quizparty/core/internal/delivery/http/common"
	"github.com/bortnikau/quizparty/core/internal/model"
	usecase_answer "github.com/bortnikau/quizparty/core/internal/usecase/answer"
	usecase_room "github.com/bortnikau/quizparty/core/internal/usecase/room"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller exposes room creation plus read-only projections over live
// rooms. Everything real-time goes over the websocket gateway instead.
type Controller struct {
	rooms   *usecase_room.Usecase
	answers *usecase_answer.Usecase
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(rooms *usecase_room.Usecase, answers *usecase_answer.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		rooms:   rooms,
		answers: answers,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.create)
		rooms.GET("", c.list)
		rooms.GET("/:room_id", c.info)
		rooms.GET("/:room_id/questions", c.questions)
		rooms.GET("/:room_id/questions/:question_id/answers", c.questionAnswers)
	}
}

type CreateResponseDTO struct {
	RoomID model.RoomID `json:"room_id"`
}

// create builds a new lobby with a freshly sampled question sequence
// @Summary Create a room
// @Tags Rooms
// @Produce json
// @Success 201 {object} CreateResponseDTO
// @Failure 503 {object} http_common.ErrorResponse "Question bank too small"
// @Router /rooms [post]
func (c *Controller) create(ctx *gin.Context) {
	roomID, err := c.rooms.Create(ctx)
	if err != nil {
		c.logger.Error("failed to create room", slog.String("error", err.Error()))
		if errors.Is(err, usecase_room.ErrInsufficientQuestions) {
			ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
				Message: "not enough questions to create a room",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusCreated, CreateResponseDTO{RoomID: roomID})
}

type ListResponseDTO struct {
	Rooms []model.RoomInfo `json:"rooms"`
}

// list returns every live room with its player count
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Success 200 {object} ListResponseDTO
// @Router /rooms [get]
func (c *Controller) list(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, ListResponseDTO{Rooms: c.rooms.List(ctx)})
}

// info returns a single room projection
// @Summary Room status
// @Tags Rooms
// @Param room_id path string true "Room code"
// @Success 200 {object} model.RoomInfo
// @Failure 404 {object} http_common.ErrorResponse
// @Router /rooms/{room_id} [get]
func (c *Controller) info(ctx *gin.Context) {
	id := model.RoomID(ctx.Param("room_id"))

	info, err := c.rooms.Info(ctx, id)
	if err != nil {
		c.notFoundOrInternal(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, info)
}

type QuestionsResponseDTO struct {
	Questions []model.Question `json:"questions"`
}

// questions returns the room's fixed question sequence
// @Summary Room questions
// @Tags Rooms
// @Param room_id path string true "Room code"
// @Success 200 {object} QuestionsResponseDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Router /rooms/{room_id}/questions [get]
func (c *Controller) questions(ctx *gin.Context) {
	id := model.RoomID(ctx.Param("room_id"))

	questions, err := c.rooms.Questions(ctx, id)
	if err != nil {
		c.notFoundOrInternal(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, QuestionsResponseDTO{Questions: questions})
}

type AnswersResponseDTO struct {
	Answers []model.Answer `json:"answers"`
}

// questionAnswers returns the current answer set for one question
// @Summary Question answers
// @Tags Rooms
// @Param room_id path string true "Room code"
// @Param question_id path string true "Question id"
// @Success 200 {object} AnswersResponseDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Router /rooms/{room_id}/questions/{question_id}/answers [get]
func (c *Controller) questionAnswers(ctx *gin.Context) {
	id := model.RoomID(ctx.Param("room_id"))

	questionID, err := uuid.Parse(ctx.Param("question_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid question id",
		})
		return
	}

	answers, err := c.answers.ForQuestion(ctx, id, questionID)
	if err != nil {
		if errors.Is(err, usecase_room.ErrRoomNotFound) ||
			errors.Is(err, usecase_room.ErrUnknownQuestion) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
			return
		}
		c.logger.Error("failed to load answers", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}
	ctx.JSON(http.StatusOK, AnswersResponseDTO{Answers: answers})
}

func (c *Controller) notFoundOrInternal(ctx *gin.Context, err error) {
	if errors.Is(err, usecase_room.ErrRoomNotFound) {
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Message: "not found",
		})
		return
	}
	c.logger.Error("room lookup failed", slog.String("error", err.Error()))
	ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
		Message: "internal error",
	})
}
