package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"KaraFM/apperr"
	"KaraFM/core/auth"
	"KaraFM/logger"
	"KaraFM/model"
	"KaraFM/storage"
)

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest 用户登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterHandler creates a new account and returns a signed token.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, apperr.Validation("username, email and password are required"))
		return
	}
	if len(req.Password) < 6 {
		writeError(w, apperr.Validation("password must be at least 6 characters"))
		return
	}

	if existing, err := h.userRepo.GetUserByUsername(req.Username); err != nil {
		writeError(w, err)
		return
	} else if existing != nil {
		writeError(w, apperr.Validation("username already taken"))
		return
	}
	if existing, err := h.userRepo.GetUserByEmail(req.Email); err != nil {
		writeError(w, err)
		return
	} else if existing != nil {
		writeError(w, apperr.Validation("email already registered"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	user := &model.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	id, err := h.userRepo.CreateUser(user)
	if err != nil {
		writeError(w, err)
		return
	}
	user.ID = id

	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("user registered", logger.Int64("userId", user.ID), logger.String("username", user.Username))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// LoginHandler verifies credentials and returns a signed token.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	user, err := h.userRepo.GetUserByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		writeError(w, apperr.Unauthenticated("invalid username or password"))
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// ProfileHandler returns the caller's account.
func (h *APIHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeError(w, apperr.NotFound("user not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

// UpdateProfileHandler updates bio and, when an avatar file is attached,
// replaces the avatar image.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeError(w, apperr.NotFound("user not found"))
		return
	}

	if err := h.uploader.CheckRequestSize(w, r, storage.KindImage); err != nil {
		writeError(w, err)
		return
	}

	// FormValue parses the multipart body; the avatar check below relies on
	// the parsed form being populated.
	bio := user.Bio
	if v := r.FormValue("bio"); v != "" {
		bio = v
	}

	avatarURL := user.AvatarURL
	if r.MultipartForm != nil && len(r.MultipartForm.File["avatar"]) > 0 {
		stored, err := h.uploader.FromRequest(r, "avatar", storage.KindImage)
		if err != nil {
			writeError(w, err)
			return
		}
		old := user.AvatarURL
		avatarURL = h.store.ResolveURL(stored)
		if old != "" {
			if err := h.store.Delete(r.Context(), old); err != nil {
				logger.Warn("failed to delete old avatar", logger.String("url", old), logger.ErrorField(err))
			}
		}
	}

	if err := h.userRepo.UpdateProfile(userID, avatarURL, bio); err != nil {
		writeError(w, err)
		return
	}

	user.AvatarURL = avatarURL
	user.Bio = bio
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}
