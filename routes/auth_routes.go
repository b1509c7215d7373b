package routes

import (
	"pawhome_server/controllers"
	"pawhome_server/services"

	"github.com/gorilla/mux"
)

// RegisterAuthRoutes sets up routes for account and session operations under /api/auth
func RegisterAuthRoutes(r *mux.Router, userService *services.UserService, sessionService *services.SessionService,
	emailService *services.EmailService, resetTokens *services.ResetTokenService) {
	controller := controllers.NewAuthController(userService, sessionService, emailService, resetTokens)

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", controller.HandleRegister).Methods("POST")
	authRouter.HandleFunc("/login", controller.HandleLogin).Methods("POST")
	authRouter.HandleFunc("/logout", controller.HandleLogout).Methods("POST")
	authRouter.HandleFunc("/forgot-password", controller.HandleForgotPassword).Methods("POST")
	authRouter.HandleFunc("/reset-password", controller.HandleResetPassword).Methods("POST")
}
