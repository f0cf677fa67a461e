package handlers

import (
	"net/http"

	"github.com/ShinAdam/Badminton-Elo-App/services"
)

type StatisticHandler struct {
	matchService     services.MatchService
	statisticService services.StatisticService
}

func NewStatisticHandler(ms services.MatchService, ss services.StatisticService) *StatisticHandler {
	return &StatisticHandler{matchService: ms, statisticService: ss}
}

// FullMatchHistory returns every match with its stored snapshot. An empty ladder
// is an empty list, not an error.
func (h *StatisticHandler) FullMatchHistory(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, matches, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatisticHandler) WinPercentage(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pct, err := h.statisticService.WinPercentage(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	resp := jsonResponse{"user_id": userID, "win_percentage": pct}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
