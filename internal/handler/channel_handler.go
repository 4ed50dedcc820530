package handler

import (
	"net/http"

	"nebula-chat/internal/services"
	"nebula-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChannelHandler struct {
	service *services.ChannelService
	chat    *services.ChatService
}

func NewChannelHandler(service *services.ChannelService, chat *services.ChatService) *ChannelHandler {
	return &ChannelHandler{service: service, chat: chat}
}

func (h *ChannelHandler) Create(c *gin.Context) {
	var req httpdto.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	participants := make([]uuid.UUID, 0, len(req.Participants))
	for _, raw := range req.Participants {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid participant id", "INVALID_REQUEST"))
			return
		}
		participants = append(participants, id)
	}

	ch, err := h.service.Create(c.Request.Context(), services.CreateChannelInput{
		Name:           req.Name,
		IsDM:           req.IsDM,
		ParticipantIDs: participants,
	})
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(ch))
}

func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(channels))
}

func (h *ChannelHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid channel id", "INVALID_REQUEST"))
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(detail))
}

// Messages returns a channel's full history ordered by timestamp ascending.
func (h *ChannelHandler) Messages(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid channel id", "INVALID_REQUEST"))
		return
	}

	messages, err := h.chat.GetChannelMessages(c.Request.Context(), id)
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(messages))
}
