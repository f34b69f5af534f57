package handler

import (
	"log"

	"github.com/labstack/echo/v4"

	"campuslink/internal/usecase"
	"campuslink/pkg/response"
)

type MessagingHandler struct {
	sessions    *usecase.SessionManager
	userUseCase *usecase.UserUseCase
}

func NewMessagingHandler(sessions *usecase.SessionManager, userUseCase *usecase.UserUseCase) *MessagingHandler {
	return &MessagingHandler{
		sessions:    sessions,
		userUseCase: userUseCase,
	}
}

type sendMessageRequest struct {
	Content     string `json:"content" validate:"required,max=2000"`
	RecipientID string `json:"recipient_id"`
	CourseID    string `json:"course_id"`
}

// GetConversations returns the conversation list with live presence merged in.
func (h *MessagingHandler) GetConversations(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"conversations": session.Conversations(),
		"total_unread":  session.UnreadTotal(),
	})
}

// SelectConversation makes a counterpart active, loads its history and marks
// it read.
func (h *MessagingHandler) SelectConversation(c echo.Context) error {
	counterpartID := c.Param("id")

	session, err := h.session(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := session.SelectConversation(c.Request().Context(), counterpartID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"active":   session.ActiveConversation(),
		"messages": session.Messages(),
	})
}

// GetMessages returns the loaded history of the active conversation.
func (h *MessagingHandler) GetMessages(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"active":   session.ActiveConversation(),
		"messages": session.Messages(),
	})
}

func (h *MessagingHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	session, err := h.session(c)
	if err != nil {
		return response.Error(c, err)
	}

	message, err := session.Send(c.Request().Context(), req.Content, req.RecipientID, req.CourseID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *MessagingHandler) MarkConversationRead(c echo.Context) error {
	counterpartID := c.Param("id")

	session, err := h.session(c)
	if err != nil {
		return response.Error(c, err)
	}

	session.MarkRead(c.Request().Context(), counterpartID)

	return response.Success(c, map[string]interface{}{
		"total_unread": session.UnreadTotal(),
	})
}

// SearchMessages filters the loaded history of the active conversation.
func (h *MessagingHandler) SearchMessages(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"messages": session.Search(c.QueryParam("q")),
	})
}

func (h *MessagingHandler) GetPresence(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"online": session.OnlineUsers(),
	})
}

// session finds the caller's live messaging session, opening one on first
// use so the REST surface works without a WebSocket connection.
func (h *MessagingHandler) session(c echo.Context) (*usecase.MessagingSession, error) {
	userID := c.Get("uid").(string)

	session, err := h.sessions.Get(userID)
	if err == nil {
		return session, nil
	}

	user, err := h.userUseCase.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return nil, err
	}

	session, loadErr := h.sessions.Attach(c.Request().Context(), user)
	if loadErr != nil {
		log.Printf("MessagingHandler Warning: initial load failed for user %s: %v", userID, loadErr)
	}
	return session, nil
}
