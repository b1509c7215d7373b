package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"pawhome_server/services"
)

// S3Controller hands out presigned URLs for profile photo storage.
type S3Controller struct {
	SessionService *services.SessionService
}

func NewS3Controller(sessionService *services.SessionService) *S3Controller {
	return &S3Controller{SessionService: sessionService}
}

// HandleGenerateUploadURL generates a presigned URL for photo uploads.
func (c *S3Controller) HandleGenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	if _, err := c.SessionService.ValidateSession(r.Context(), sessionToken(r)); err != nil {
		writeGuardError(w, err)
		return
	}

	var payload struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.FileName == "" || payload.FileType == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	url, key, err := services.GenerateUploadURL(payload.FileName, payload.FileType)
	if err != nil {
		log.Printf("Error generating pre-signed URL: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate pre-signed URL")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url, "key": key})
}

// HandleGenerateReadURL generates a presigned URL for reading a stored photo.
func (c *S3Controller) HandleGenerateReadURL(w http.ResponseWriter, r *http.Request) {
	if _, err := c.SessionService.ValidateSession(r.Context(), sessionToken(r)); err != nil {
		writeGuardError(w, err)
		return
	}

	var payload struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Key == "" {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	url, err := services.GenerateReadURL(payload.Key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate read pre-signed URL")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
