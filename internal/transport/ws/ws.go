package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quizparty-games/quizparty/internal/logging"
	"github.com/quizparty-games/quizparty/internal/quiz"
	"github.com/quizparty-games/quizparty/internal/quiz/event"
	"github.com/quizparty-games/quizparty/internal/quiz/room"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func NewHandler(manager *quiz.Manager) *Handler {
	return &Handler{manager: manager}
}

// Handler upgrades connections onto the room message channel.
type Handler struct {
	manager *quiz.Manager
}

func (h *Handler) Handle(ctx context.Context) http.Handler {
	logger := logging.FromContext(ctx).Named("ws.Handle")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorf("upgrade: %v", err)
			return
		}

		c := &client{
			manager: h.manager,
			conn:    conn,
			send:    make(chan event.Envelope, sendBuffer),
			logger:  logger,
		}

		go c.writePump()
		c.readPump()
	})
}

// client is one websocket connection. It implements room.Subscriber; a
// full send buffer drops the event rather than blocking the room.
type client struct {
	manager *quiz.Manager
	conn    *websocket.Conn
	send    chan event.Envelope
	logger  *zap.SugaredLogger

	roomID   string
	playerID string
	token    string
}

func (c *client) Notify(env event.Envelope) {
	select {
	case c.send <- env:
	default:
	}
}

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
}

type submitAnswerPayload struct {
	RoomID      string  `json:"roomId"`
	PlayerID    string  `json:"playerId"`
	QuestionID  string  `json:"questionId"`
	Value       *string `json:"value"`
	AutoTimeout bool    `json:"autoTimeout,omitempty"`
}

type useExtraPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	ExtraID  string `json:"extraId"`
	TargetID string `json:"targetId,omitempty"`
}

type tiebreakPayload struct {
	RoomID   string  `json:"roomId"`
	PlayerID string  `json:"playerId"`
	Value    float64 `json:"value"`
}

type hostPayload struct {
	RoomID   string   `json:"roomId"`
	PlayerID string   `json:"playerId"`
	Winners  []string `json:"winners,omitempty"`
	Message  string   `json:"message,omitempty"`
}

type joinAck struct {
	Token    string         `json:"token"`
	Snapshot *room.Snapshot `json:"snapshot"`
}

func (c *client) readPump() {
	defer func() {
		if c.roomID != "" {
			c.manager.Disconnect(c.roomID, c.playerID, c.token)
		}
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(32 << 10)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("validation", "malformed message")
			continue
		}

		c.dispatch(msg)
	}
}

func (c *client) dispatch(msg inbound) {
	switch msg.Type {
	case "join_and_recover":
		var p joinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("validation", "malformed payload")
			return
		}
		token, snap, err := c.manager.JoinAndRecover(p.RoomID, p.PlayerID, p.Name, c)
		if err != nil {
			c.replyError(err)
			return
		}
		c.roomID, c.playerID, c.token = p.RoomID, p.PlayerID, token
		c.Notify(event.Envelope{Kind: event.KindJoinAck, Payload: joinAck{Token: token, Snapshot: snap}})

	case "submit_answer":
		var p submitAnswerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("validation", "malformed payload")
			return
		}
		c.replyError(c.manager.SubmitAnswer(p.RoomID, p.PlayerID, c.token, p.QuestionID, p.Value, p.AutoTimeout))

	case "use_extra":
		var p useExtraPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("validation", "malformed payload")
			return
		}
		c.replyError(c.manager.UseExtra(p.RoomID, p.PlayerID, c.token, room.ExtraID(p.ExtraID), p.TargetID))

	case "tiebreak_answer":
		var p tiebreakPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("validation", "malformed payload")
			return
		}
		c.replyError(c.manager.SubmitTiebreak(p.RoomID, p.PlayerID, c.token, p.Value))

	case "advance_phase":
		var p hostPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("validation", "malformed payload")
			return
		}
		c.replyError(c.manager.AdvancePhase(p.RoomID, p.PlayerID, c.token))

	case "declare_winners":
		var p hostPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("validation", "malformed payload")
			return
		}
		c.replyError(c.manager.DeclareWinners(p.RoomID, p.PlayerID, c.token, p.Winners))

	case "cancel_quiz":
		var p hostPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("validation", "malformed payload")
			return
		}
		c.replyError(c.manager.CancelQuiz(p.RoomID, p.PlayerID, c.token, p.Message))

	case "request_snapshot":
		var p joinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("validation", "malformed payload")
			return
		}
		snap, err := c.manager.Snapshot(p.RoomID, p.PlayerID)
		if err != nil {
			c.replyError(err)
			return
		}
		c.Notify(event.Envelope{Kind: event.KindSnapshot, Payload: snap})

	default:
		c.sendError("validation", "unknown message type")
	}
}

func (c *client) replyError(err error) {
	if err == nil {
		return
	}
	c.sendError(errorCode(err), err.Error())
}

func (c *client) sendError(code, message string) {
	c.Notify(event.Envelope{Kind: event.KindQuizError, Payload: event.Error{
		Code:    code,
		Message: message,
	}})
}

// errorCode folds engine errors into the wire taxonomy.
func errorCode(err error) string {
	var rej *room.RejectionError
	if errors.As(err, &rej) {
		switch rej.Reason {
		case room.RejectAlreadyUsed:
			return "conflict"
		case room.RejectCapExceeded:
			return "capacity"
		default:
			return "validation"
		}
	}

	switch {
	case errors.Is(err, quiz.ErrRoomNotFound),
		errors.Is(err, room.ErrUnknownQuestion),
		errors.Is(err, room.ErrUnknownPlayer):
		return "not-found"
	case errors.Is(err, quiz.ErrStaleSession),
		errors.Is(err, room.ErrAlreadyAnswered),
		errors.Is(err, room.ErrPlayerFrozen):
		return "conflict"
	default:
		return "validation"
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
