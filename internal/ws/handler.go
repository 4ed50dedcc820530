package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nebula-chat/internal/events"
	"nebula-chat/internal/redis"
	"nebula-chat/internal/services"
	"nebula-chat/internal/transport/httpdto"
	"nebula-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades authenticated connections and drives the inbound event
// loop: joinChannel/leaveChannel room changes and sendMessage submissions.
type Handler struct {
	auth     *services.AuthService
	chat     *services.ChatService
	hub      *Hub
	presence *redis.PresenceStore
	log      *logger.Logger
}

func NewHandler(auth *services.AuthService, chat *services.ChatService, hub *Hub, presence *redis.PresenceStore, log *logger.Logger) *Handler {
	return &Handler{auth: auth, chat: chat, hub: hub, presence: presence, log: log}
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID.String())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	h.hub.Join(client, events.PresenceRoom)
	go client.WriteLoop(ctx)

	if h.presence != nil {
		if err := h.presence.SetOnline(ctx, userID.String()); err != nil && h.log != nil {
			h.log.Warnf("presence online for %s: %v", userID, err)
		}
	}

	h.readLoop(ctx, conn, client, userID)

	if h.presence != nil {
		if err := h.presence.SetOffline(context.Background(), userID.String()); err != nil && h.log != nil {
			h.log.Warnf("presence offline for %s: %v", userID, err)
		}
	}
	h.hub.Unregister(client)
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, client *Client, userID uuid.UUID) {
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			if h.log != nil {
				h.log.Warnf("malformed frame from %s: %v", userID, err)
			}
			continue
		}

		switch env.Event {
		case events.JoinChannel:
			var req ChannelRequest
			if err := json.Unmarshal(env.Data, &req); err == nil && req.ChannelID != "" {
				h.hub.Join(client, req.ChannelID)
			}
		case events.LeaveChannel:
			var req ChannelRequest
			if err := json.Unmarshal(env.Data, &req); err == nil && req.ChannelID != "" {
				h.hub.Leave(client, req.ChannelID)
			}
		case events.SendMessage:
			var req SendMessageRequest
			if err := json.Unmarshal(env.Data, &req); err != nil {
				continue
			}
			// Each send runs independently so a slow AI reply never
			// stalls this connection's other events.
			go h.submit(userID, req)
		default:
			if h.log != nil {
				h.log.Warnf("unknown event %q from %s", env.Event, userID)
			}
		}
	}
}

func (h *Handler) submit(userID uuid.UUID, req SendMessageRequest) {
	channelID, err := uuid.Parse(req.ChannelID)
	if err != nil {
		if h.log != nil {
			h.log.Errorf("sendMessage from %s: bad channel id %q", userID, req.ChannelID)
		}
		return
	}

	in := services.SubmitMessageInput{
		SenderID:  userID,
		Content:   req.Content,
		ChannelID: channelID,
	}
	if req.Attachment != nil {
		att := *req.Attachment
		in.Attachment = &att
	}
	if req.ParentMessageID != "" {
		parentID, err := uuid.Parse(req.ParentMessageID)
		if err != nil {
			return
		}
		in.ParentMessageID = uuid.NullUUID{UUID: parentID, Valid: true}
	}

	if req.ParentMessageID != "" {
		_, err = h.chat.CreateThreadReply(context.Background(), in.ParentMessageID.UUID, in)
	} else {
		_, err = h.chat.SubmitMessage(context.Background(), in)
	}
	if err != nil && h.log != nil {
		h.log.Errorf("sendMessage from %s failed: %v", userID, err)
	}
}
