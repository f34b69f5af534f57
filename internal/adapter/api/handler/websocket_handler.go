package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"campuslink/internal/infrastructure/firebase"
	"campuslink/internal/usecase"
	"campuslink/pkg/errors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 4096
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

type WebSocketHandler struct {
	sessions     *usecase.SessionManager
	userUseCase  *usecase.UserUseCase
	firebaseAuth *firebase.FirebaseAuthClient
}

func NewWebSocketHandler(sessions *usecase.SessionManager, userUseCase *usecase.UserUseCase, firebaseAuth *firebase.FirebaseAuthClient) *WebSocketHandler {
	return &WebSocketHandler{
		sessions:     sessions,
		userUseCase:  userUseCase,
		firebaseAuth: firebaseAuth,
	}
}

type wsEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type wsCommand struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// HandleWebSocket authenticates the connection, attaches a messaging session
// for the identity and bridges session events to the socket until it closes.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := h.extractToken(c)
	if token == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	uid, email, err := h.firebaseAuth.EmailFromToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	user, err := h.userUseCase.EnsureUser(c.Request().Context(), uid, email)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	session, loadErr := h.sessions.Attach(c.Request().Context(), user)
	if loadErr != nil {
		log.Printf("WebSocket Warning: initial load failed for user %s: %v", uid, loadErr)
	}

	send := make(chan []byte, 256)
	session.SetNotifier(func(event string, data interface{}) {
		payload, err := json.Marshal(wsEvent{
			Type:      event,
			Data:      data,
			Timestamp: time.Now().Unix(),
		})
		if err != nil {
			return
		}
		select {
		case send <- payload:
		default:
			// Slow consumer; the client can refetch state over REST.
		}
	})

	// Initial snapshot so the client renders without a REST round trip.
	h.queue(send, "conversations", map[string]interface{}{
		"conversations": session.Conversations(),
		"total_unread":  session.UnreadTotal(),
	})
	h.queue(send, "presence_sync", session.OnlineUsers())

	go h.writePump(conn, send)
	h.readPump(c, conn, session, send)

	return nil
}

func (h *WebSocketHandler) readPump(c echo.Context, conn *gorillaws.Conn, session *usecase.MessagingSession, send chan []byte) {
	defer func() {
		h.sessions.Detach(session.User().ID, session)
		conn.Close()
	}()

	conn.SetReadLimit(maxInboundSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				log.Printf("WebSocket read error for user %s: %v", session.User().ID, err)
			}
			return
		}

		var cmd wsCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			h.queue(send, "error", map[string]string{"message": "malformed command"})
			continue
		}

		h.dispatch(c, session, send, cmd)
	}
}

func (h *WebSocketHandler) dispatch(c echo.Context, session *usecase.MessagingSession, send chan []byte, cmd wsCommand) {
	ctx := c.Request().Context()

	switch cmd.Type {
	case "send_message":
		var req struct {
			Content     string `json:"content"`
			RecipientID string `json:"recipient_id"`
			CourseID    string `json:"course_id"`
		}
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			h.queue(send, "error", map[string]string{"message": "malformed command"})
			return
		}
		if _, err := session.Send(ctx, req.Content, req.RecipientID, req.CourseID); err != nil {
			h.queue(send, "error", map[string]string{"message": err.Error()})
		}

	case "select_conversation":
		var req struct {
			CounterpartID string `json:"counterpart_id"`
		}
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			h.queue(send, "error", map[string]string{"message": "malformed command"})
			return
		}
		if err := session.SelectConversation(ctx, req.CounterpartID); err != nil {
			h.queue(send, "error", map[string]string{"message": err.Error()})
			return
		}
		h.queue(send, "messages", map[string]interface{}{
			"active":   session.ActiveConversation(),
			"messages": session.Messages(),
		})

	case "mark_read":
		var req struct {
			CounterpartID string `json:"counterpart_id"`
		}
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			h.queue(send, "error", map[string]string{"message": "malformed command"})
			return
		}
		session.MarkRead(ctx, req.CounterpartID)
		h.queue(send, "unread_total", session.UnreadTotal())

	case "search":
		var req struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			h.queue(send, "error", map[string]string{"message": "malformed command"})
			return
		}
		h.queue(send, "search_results", session.Search(req.Query))

	case "get_conversations":
		h.queue(send, "conversations", map[string]interface{}{
			"conversations": session.Conversations(),
			"total_unread":  session.UnreadTotal(),
		})

	default:
		h.queue(send, "error", map[string]string{"message": "unknown command type"})
	}
}

func (h *WebSocketHandler) writePump(conn *gorillaws.Conn, send chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(gorillaws.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(gorillaws.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(gorillaws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) queue(send chan []byte, event string, data interface{}) {
	payload, err := json.Marshal(wsEvent{
		Type:      event,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return
	}
	select {
	case send <- payload:
	default:
	}
}

func (h *WebSocketHandler) extractToken(c echo.Context) string {
	if token := c.QueryParam("token"); token != "" {
		return token
	}
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
