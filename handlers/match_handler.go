package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ShinAdam/Badminton-Elo-App/middleware"
	"github.com/ShinAdam/Badminton-Elo-App/services"
)

const defaultRecentLimit = 10

type MatchHandler struct {
	matchService     services.MatchService
	statisticService services.StatisticService
}

func NewMatchHandler(ms services.MatchService, ss services.StatisticService) *MatchHandler {
	return &MatchHandler{
		matchService:     ms,
		statisticService: ss,
	}
}

// SubmitMatch godoc
// @Summary Record a finished doubles match
// @Description Validates the line-up, stores the match and moves the rating of all four players.
// @Description Not idempotent: posting the same body twice records two matches.
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body services.SubmitMatchInput true "Match result"
// @Success 201 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matches [post]
func (h *MatchHandler) SubmitMatch(w http.ResponseWriter, r *http.Request) {
	creatorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.SubmitMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SubmitMatch(r.Context(), creatorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatches godoc
// @Summary Full match history, newest first
// @Tags matches
// @Produce json
// @Success 200 {array} models.Match
// @Router /matches [get]
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, matches, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequestResponse(w, r, errors.New("limit must be an integer"))
			return
		}
		limit = n
	}

	matches, err := h.matchService.ListRecent(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, matches, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type projectionInput struct {
	Winners []int `json:"winners"`
	Losers  []int `json:"losers"`
}

// ProjectRating godoc
// @Summary Preview the rating change of a match without recording it
// @Tags matches
// @Accept json
// @Produce json
// @Success 200 {object} models.RatingProjection
// @Router /matches/projection [post]
func (h *MatchHandler) ProjectRating(w http.ResponseWriter, r *http.Request) {
	var input projectionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	projection, err := h.statisticService.ProjectRatingChange(r.Context(), input.Winners, input.Losers)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, projection, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
