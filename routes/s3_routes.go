package routes

import (
	"pawhome_server/controllers"
	"pawhome_server/services"

	"github.com/gorilla/mux"
)

// RegisterS3Routes sets up routes for photo storage operations
func RegisterS3Routes(r *mux.Router, sessionService *services.SessionService) {
	controller := controllers.NewS3Controller(sessionService)

	r.HandleFunc("/api/photos/upload-url", controller.HandleGenerateUploadURL).Methods("POST")
	r.HandleFunc("/api/photos/read-url", controller.HandleGenerateReadURL).Methods("POST")
}
