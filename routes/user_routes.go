package routes

import (
	"pawhome_server/controllers"
	"pawhome_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserRoutes sets up routes for profile operations under /api/users
func RegisterUserRoutes(r *mux.Router, userService *services.UserService, sessionService *services.SessionService) {
	controller := controllers.NewUserController(userService, sessionService)

	userRouter := r.PathPrefix("/api/users").Subrouter()
	userRouter.HandleFunc("/me", controller.HandleGetMe).Methods("GET")
	userRouter.HandleFunc("/me", controller.HandleUpdateMe).Methods("PUT")
	userRouter.HandleFunc("/{userId}", controller.HandleGetUser).Methods("GET")
}
