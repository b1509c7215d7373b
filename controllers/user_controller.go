package controllers

import (
	"encoding/json"
	"net/http"

	"pawhome_server/services"

	"github.com/gorilla/mux"
)

// UserController struct
type UserController struct {
	UserService    *services.UserService
	SessionService *services.SessionService
}

// NewUserController initializes the user controller
func NewUserController(userService *services.UserService, sessionService *services.SessionService) *UserController {
	return &UserController{UserService: userService, SessionService: sessionService}
}

// HandleGetMe returns the caller's own account.
func (c *UserController) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	principal, err := c.SessionService.ValidateSession(r.Context(), sessionToken(r))
	if err != nil {
		writeGuardError(w, err)
		return
	}

	user, err := c.UserService.GetUser(r.Context(), principal.UserID)
	if err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateMe updates the caller's display fields, then re-puts the
// session snapshot so subsequent guarded calls see the new attributes.
func (c *UserController) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	principal, err := c.SessionService.ValidateSession(r.Context(), token)
	if err != nil {
		writeGuardError(w, err)
		return
	}

	var payload struct {
		FirstName          string `json:"firstName"`
		LastName           string `json:"lastName"`
		AdoptionCenterName string `json:"adoptionCenterName"`
		ProfilePhoto       string `json:"profilePhoto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := c.UserService.UpdateProfile(r.Context(), principal.UserID,
		payload.FirstName, payload.LastName, payload.AdoptionCenterName, payload.ProfilePhoto)
	if err != nil {
		writeGuardError(w, err)
		return
	}

	if err := c.SessionService.RefreshPrincipal(r.Context(), token, user); err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGetUser returns the public card for any user: id, display name,
// role, photo. Requires an authenticated session of either role.
func (c *UserController) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	_, err := c.SessionService.ValidateSession(r.Context(), sessionToken(r))
	if err != nil {
		writeGuardError(w, err)
		return
	}

	user, err := c.UserService.GetUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeGuardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"userId":       user.UserID,
		"name":         user.DisplayName(),
		"role":         string(user.Role),
		"profilePhoto": user.ProfilePhoto,
	})
}
