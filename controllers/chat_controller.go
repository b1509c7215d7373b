package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"pawhome_server/models"
	"pawhome_server/services"
	"pawhome_server/socket"

	"github.com/gorilla/mux"
)

// ChatController struct
type ChatController struct {
	ChatService    *services.ChatService
	SessionService *services.SessionService
	Hub            *socket.Hub
}

// NewChatController initializes the chat controller
func NewChatController(chatService *services.ChatService, sessionService *services.SessionService, hub *socket.Hub) *ChatController {
	return &ChatController{ChatService: chatService, SessionService: sessionService, Hub: hub}
}

// HandleGetHistory returns the full conversation between the caller and
// the user in the path, oldest first, and marks messages addressed to the
// caller as read.
func (c *ChatController) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	principal, err := c.SessionService.ValidateSession(r.Context(), sessionToken(r))
	if err != nil {
		writeGuardError(w, err)
		return
	}

	otherUserID := mux.Vars(r)["otherUserId"]
	if otherUserID == "" {
		writeError(w, http.StatusBadRequest, "otherUserId is required")
		return
	}

	messages, err := c.ChatService.GetConversation(r.Context(), principal.UserID, otherUserID)
	if err != nil {
		writeGuardError(w, err)
		return
	}

	// The recipient viewing history is the read transition; flip flags
	// before the response so unread counts elsewhere stay consistent.
	if err := c.ChatService.MarkConversationRead(r.Context(), principal.UserID, otherUserID); err != nil {
		log.Printf("Failed to mark conversation read for user %s: %v", principal.UserID, err)
	} else {
		for i := range messages {
			if messages[i].RecipientID == principal.UserID {
				messages[i].IsRead = true
			}
		}
	}

	writeJSON(w, http.StatusOK, messages)
}

// HandleGetConversations returns the caller's conversation directory.
func (c *ChatController) HandleGetConversations(w http.ResponseWriter, r *http.Request) {
	principal, err := c.SessionService.ValidateSession(r.Context(), sessionToken(r))
	if err != nil {
		writeGuardError(w, err)
		return
	}

	conversations, err := c.ChatService.GetConversations(r.Context(), principal.UserID)
	if err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// HandleUnreadCount returns the caller's total unread message count.
func (c *ChatController) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	principal, err := c.SessionService.ValidateSession(r.Context(), sessionToken(r))
	if err != nil {
		writeGuardError(w, err)
		return
	}

	count, err := c.ChatService.GetUnreadCount(r.Context(), principal.UserID)
	if err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unreadCount": count})
}

// HandleMarkRead marks every message the other user sent the caller in
// this conversation as read. Kept for clients that receive over the
// socket instead of fetching history.
func (c *ChatController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	principal, err := c.SessionService.ValidateSession(r.Context(), sessionToken(r))
	if err != nil {
		writeGuardError(w, err)
		return
	}

	otherUserID := mux.Vars(r)["otherUserId"]
	if err := c.ChatService.MarkConversationRead(r.Context(), principal.UserID, otherUserID); err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleSendMessage is the request/response publish path, mirroring the
// socket's: stamp, persist, then broadcast. Persist failure means no
// broadcast; broadcast reaches only currently-connected subscribers.
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	principal, err := c.SessionService.ValidateSession(r.Context(), sessionToken(r))
	if err != nil {
		writeGuardError(w, err)
		return
	}

	var payload struct {
		RecipientID string          `json:"recipientId"`
		Content     string          `json:"content"`
		PetContext  json.RawMessage `json:"petContext,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.RecipientID == "" || payload.Content == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: recipientId or content")
		return
	}

	message := models.ChatMessage{
		SenderID:    principal.UserID,
		RecipientID: payload.RecipientID,
		Content:     payload.Content,
		PetContext:  models.ParsePetContext(payload.PetContext),
	}

	stored, err := c.ChatService.SendMessage(r.Context(), message)
	if err != nil {
		writeGuardError(w, err)
		return
	}

	c.Hub.Publish(socket.TopicMessages, *stored)
	writeJSON(w, http.StatusOK, stored)
}
