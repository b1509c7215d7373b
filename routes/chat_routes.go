package routes

import (
	"pawhome_server/controllers"
	"pawhome_server/services"
	"pawhome_server/socket"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat-related operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, sessionService *services.SessionService, hub *socket.Hub) {
	controller := controllers.NewChatController(chatService, sessionService, hub)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()
	chatRouter.HandleFunc("/message", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/history/{otherUserId}", controller.HandleGetHistory).Methods("GET")
	chatRouter.HandleFunc("/conversations", controller.HandleGetConversations).Methods("GET")
	chatRouter.HandleFunc("/unread-count", controller.HandleUnreadCount).Methods("GET")
	chatRouter.HandleFunc("/mark-read/{otherUserId}", controller.HandleMarkRead).Methods("PUT")
}
