package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pawhome_server/models"
	"pawhome_server/services"
)

// AuthController struct
type AuthController struct {
	UserService    *services.UserService
	SessionService *services.SessionService
	EmailService   *services.EmailService
	ResetTokens    *services.ResetTokenService
}

// NewAuthController initializes the auth controller
func NewAuthController(userService *services.UserService, sessionService *services.SessionService,
	emailService *services.EmailService, resetTokens *services.ResetTokenService) *AuthController {
	return &AuthController{
		UserService:    userService,
		SessionService: sessionService,
		EmailService:   emailService,
		ResetTokens:    resetTokens,
	}
}

// HandleRegister creates a new adopter or adoption-center account.
func (c *AuthController) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email              string      `json:"email"`
		Password           string      `json:"password"`
		Role               models.Role `json:"role"`
		FirstName          string      `json:"firstName"`
		LastName           string      `json:"lastName"`
		AdoptionCenterName string      `json:"adoptionCenterName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: email or password")
		return
	}

	user, err := c.UserService.Register(r.Context(), payload.Email, payload.Password,
		payload.Role, payload.FirstName, payload.LastName, payload.AdoptionCenterName)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		writeGuardError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin verifies credentials and opens a session.
func (c *AuthController) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := c.UserService.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeGuardError(w, err)
		return
	}

	session, err := c.SessionService.CreateSession(r.Context(), user)
	if err != nil {
		writeGuardError(w, err)
		return
	}

	log.Printf("User %s logged in", user.UserID)
	writeJSON(w, http.StatusOK, session)
}

// HandleLogout destroys the caller's session. Idempotent.
func (c *AuthController) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := c.SessionService.DestroySession(r.Context(), sessionToken(r)); err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleForgotPassword emails a signed reset token. The response does not
// reveal whether the address has an account.
func (c *AuthController) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Email == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := c.UserService.FindByEmail(r.Context(), payload.Email)
	if err == nil {
		token, terr := c.ResetTokens.Issue(user.UserID)
		if terr != nil {
			log.Printf("Failed to issue reset token for %s: %v", user.UserID, terr)
		} else if merr := c.EmailService.SendPasswordReset(user.Email, token); merr != nil {
			log.Printf("Failed to send reset email: %v", merr)
		}
	} else if !errors.Is(err, services.ErrNotFound) {
		writeGuardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If that email has an account, a reset link is on its way.",
	})
}

// HandleResetPassword verifies the emailed token and sets the new password.
func (c *AuthController) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Token == "" || payload.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := c.ResetTokens.Verify(payload.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired reset token")
		return
	}

	if err := c.UserService.SetPassword(r.Context(), userID, payload.NewPassword); err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
