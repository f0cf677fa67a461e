package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ShinAdam/Badminton-Elo-App/handlers"
	"github.com/ShinAdam/Badminton-Elo-App/live"
	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/ShinAdam/Badminton-Elo-App/services"
	"github.com/ShinAdam/Badminton-Elo-App/services/mockservices"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestRouter(auth *mockservices.AuthService, users *mockservices.UserService, matches *mockservices.MatchService) *chi.Mux {
	stats := &mockservices.StatisticService{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := live.NewHub(users.Ranking, logger)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Auth:      handlers.NewAuthHandler(auth, users),
		User:      handlers.NewUserHandler(users, matches, stats),
		Match:     handlers.NewMatchHandler(matches, stats),
		Statistic: handlers.NewStatisticHandler(matches, stats),
		WebSocket: handlers.NewWebSocketHandler(hub, []string{"*"}),
	}, auth, []string{"*"}, logger)
	return router
}

func TestSubmitMatchRequiresToken(t *testing.T) {
	auth := &mockservices.AuthService{}
	matches := &mockservices.MatchService{}
	router := newTestRouter(auth, &mockservices.UserService{}, matches)

	req := httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	matches.AssertNotCalled(t, "SubmitMatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitMatchWithToken(t *testing.T) {
	auth := &mockservices.AuthService{}
	matches := &mockservices.MatchService{}
	router := newTestRouter(auth, &mockservices.UserService{}, matches)

	auth.On("Authenticate", mock.Anything, "good").Return(&services.AccessToken{ID: "j", UserID: 3}, nil)
	matches.On("SubmitMatch", mock.Anything, 3, mock.Anything).Return(&models.Match{ID: 1, CreatorID: 3}, nil)

	req := httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader(`{"winners":[1,2],"losers":[4,5],"winner_score":21,"loser_score":19}`))
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	matches.AssertExpectations(t)
}

func TestPublicReadRoutes(t *testing.T) {
	users := &mockservices.UserService{}
	matches := &mockservices.MatchService{}
	router := newTestRouter(&mockservices.AuthService{}, users, matches)

	users.On("Ranking", mock.Anything).Return([]models.UserRanking{}, nil)
	matches.On("ListAll", mock.Anything).Return([]*models.Match{}, nil)

	for _, path := range []string{"/users/ranking", "/matches", "/statistics/full_match_history"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "[]\n", rec.Body.String(), path)
	}
}

func TestSwaggerDocIsServed(t *testing.T) {
	router := newTestRouter(&mockservices.AuthService{}, &mockservices.UserService{}, &mockservices.MatchService{})

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Record a finished doubles match")
}
