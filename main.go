package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"pawhome_server/routes"
	"pawhome_server/services"
	"pawhome_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// .env is optional; deployed environments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	sessionService := &services.SessionService{Dynamo: dynamoService}
	userService := &services.UserService{Dynamo: dynamoService}
	chatService := &services.ChatService{Dynamo: dynamoService, Users: userService}
	emailService := services.NewEmailService()
	resetTokens := &services.ResetTokenService{Secret: []byte(os.Getenv("RESET_TOKEN_SECRET"))}

	// Initialize the broadcast hub and socket endpoint
	hub := socket.NewHub()
	chatSocket := &socket.ChatSocket{Hub: hub, Chat: chatService, Sessions: sessionService}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to PawHome")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Persistent connection endpoint for realtime chat
	r.HandleFunc("/ws-chat", chatSocket.ServeWS)

	// Register routes
	routes.RegisterAuthRoutes(r, userService, sessionService, emailService, resetTokens)
	routes.RegisterUserRoutes(r, userService, sessionService)
	routes.RegisterChatRoutes(r, chatService, sessionService, hub)
	routes.RegisterS3Routes(r, sessionService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Session-Token"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
