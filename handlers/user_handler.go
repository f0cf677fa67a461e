package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"

	"github.com/ShinAdam/Badminton-Elo-App/middleware"
	"github.com/ShinAdam/Badminton-Elo-App/services"
	"github.com/go-chi/chi/v5"
)

const maxAvatarSize = 5 << 20

type UserHandler struct {
	userService      services.UserService
	matchService     services.MatchService
	statisticService services.StatisticService
}

func NewUserHandler(us services.UserService, ms services.MatchService, ss services.StatisticService) *UserHandler {
	return &UserHandler{
		userService:      us,
		matchService:     ms,
		statisticService: ss,
	}
}

// Ranking godoc
// @Summary Leaderboard ordered by rating
// @Tags users
// @Produce json
// @Success 200 {array} models.UserRanking
// @Router /users/ranking [get]
func (h *UserHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.userService.Ranking(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, ranking, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		badRequestResponse(w, r, errors.New("username is required"))
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.UpdateUserInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), currentUserID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.userService.Delete(r.Context(), currentUserID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar expects a multipart form with the image in the "avatar" field.
// The content type is sniffed from the file itself.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+1024)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("avatar must be a multipart upload of at most %d bytes", maxAvatarSize))
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		badRequestResponse(w, r, errors.New("missing avatar file"))
		return
	}
	defer file.Close()

	buffered := bufio.NewReader(file)
	head, _ := buffered.Peek(512)
	contentType := http.DetectContentType(head)

	user, err := h.userService.UploadAvatar(r.Context(), currentUserID, userID, contentType, buffered)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) ListUserMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByParticipant(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, matches, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) MatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	history, err := h.statisticService.UserMatchHistory(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, history, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
