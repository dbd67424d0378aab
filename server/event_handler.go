package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"KaraFM/apperr"
	"KaraFM/model"
)

type eventRequest struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Venue       string `json:"venue"`
	City        string `json:"city"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	StartsAt    string `json:"startsAt"` // RFC 3339
}

// CreateEventHandler adds a concert listing.
func (h *APIHandler) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, apperr.Validation("event title is required"))
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		writeError(w, apperr.Validation("startsAt must be an RFC 3339 timestamp"))
		return
	}

	event := &model.Event{
		Title:       strings.TrimSpace(req.Title),
		Artist:      req.Artist,
		Venue:       req.Venue,
		City:        req.City,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		StartsAt:    startsAt,
		CreatedBy:   userID,
	}
	if err := h.eventRepo.Create(event); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "event": event})
}

// ListEventsHandler lists upcoming events, optionally filtered by artist.
func (h *APIHandler) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	if artist := strings.TrimSpace(r.URL.Query().Get("artist")); artist != "" {
		events, err := h.eventRepo.ListByArtist(artist)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "events": events})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.eventRepo.ListUpcoming(limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "events": events})
}

// GetEventHandler returns one event.
func (h *APIHandler) GetEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.eventRepo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if event == nil {
		writeError(w, apperr.NotFound("event not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "event": event})
}

// UpdateEventHandler updates a listing. Only its creator may change it.
func (h *APIHandler) UpdateEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.eventRepo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if event == nil {
		writeError(w, apperr.NotFound("event not found"))
		return
	}
	if event.CreatedBy != userID {
		writeError(w, apperr.Forbidden("only the creator can modify an event"))
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	if strings.TrimSpace(req.Title) != "" {
		event.Title = strings.TrimSpace(req.Title)
	}
	if req.Artist != "" {
		event.Artist = req.Artist
	}
	if req.Venue != "" {
		event.Venue = req.Venue
	}
	if req.City != "" {
		event.City = req.City
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.ImageURL != "" {
		event.ImageURL = req.ImageURL
	}
	if req.StartsAt != "" {
		startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			writeError(w, apperr.Validation("startsAt must be an RFC 3339 timestamp"))
			return
		}
		event.StartsAt = startsAt
	}

	if err := h.eventRepo.Update(event); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "event": event})
}

// DeleteEventHandler removes a listing. Only its creator may delete it.
func (h *APIHandler) DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.eventRepo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if event == nil {
		writeError(w, apperr.NotFound("event not found"))
		return
	}
	if event.CreatedBy != userID {
		writeError(w, apperr.Forbidden("only the creator can delete an event"))
		return
	}

	if err := h.eventRepo.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "event deleted"})
}
