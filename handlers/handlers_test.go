package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ShinAdam/Badminton-Elo-App/middleware"
	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/ShinAdam/Badminton-Elo-App/services"
	"github.com/ShinAdam/Badminton-Elo-App/services/mockservices"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *chi.Mux
	auth   *mockservices.AuthService
	users  *mockservices.UserService
	match  *mockservices.MatchService
	stats  *mockservices.StatisticService
}

// asUser stands in for middleware.Authenticate.
func asUser(userID int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := &services.AccessToken{ID: "test-jti", UserID: userID}
			next.ServeHTTP(w, r.WithContext(middleware.WithAccessToken(r.Context(), token)))
		})
	}
}

func newTestEnv(currentUser int) *testEnv {
	env := &testEnv{
		router: chi.NewRouter(),
		auth:   &mockservices.AuthService{},
		users:  &mockservices.UserService{},
		match:  &mockservices.MatchService{},
		stats:  &mockservices.StatisticService{},
	}

	authH := NewAuthHandler(env.auth, env.users)
	userH := NewUserHandler(env.users, env.match, env.stats)
	matchH := NewMatchHandler(env.match, env.stats)
	statH := NewStatisticHandler(env.match, env.stats)

	r := env.router
	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)
	r.Get("/users/ranking", userH.Ranking)
	r.Get("/users/{userID}", userH.GetUserByID)
	r.Get("/users/{userID}/history", userH.MatchHistory)
	r.Get("/matches/recent", matchH.ListRecent)
	r.Get("/matches/{matchID}", matchH.GetMatch)
	r.Get("/statistics/users/{userID}/win_percentage", statH.WinPercentage)
	r.Group(func(r chi.Router) {
		r.Use(asUser(currentUser))
		r.Get("/auth/self", authH.Self)
		r.Post("/auth/logout", authH.Logout)
		r.Post("/matches", matchH.SubmitMatch)
		r.Delete("/users/{userID}", userH.DeleteUser)
		r.Post("/users/{userID}/avatar", userH.UploadAvatar)
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestSubmitMatch_Created(t *testing.T) {
	env := newTestEnv(7)
	input := services.SubmitMatchInput{Winners: []int{1, 2}, Losers: []int{3, 4}, WinnerScore: 21, LoserScore: 15}
	env.match.On("SubmitMatch", mock.Anything, 7, input).
		Return(&models.Match{ID: 5, CreatorID: 7, EloChangeWinner: 16, EloChangeLoser: -16}, nil).Once()

	rec := env.do(t, http.MethodPost, "/matches", input)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 5, got.ID)
	assert.Equal(t, 16.0, got.EloChangeWinner)
	env.match.AssertExpectations(t)
}

func TestSubmitMatch_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: winner score must exceed loser score", services.ErrValidationFailed), http.StatusBadRequest},
		{"unknown player", services.ErrUserNotFound, http.StatusNotFound},
		{"conflict", services.ErrConflict, http.StatusConflict},
		{"storage", services.ErrStorage, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(7)
			env.match.On("SubmitMatch", mock.Anything, 7, mock.Anything).Return(nil, tt.err)

			rec := env.do(t, http.MethodPost, "/matches", services.SubmitMatchInput{Winners: []int{1, 2}, Losers: []int{3, 4}})
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSubmitMatch_StorageDetailsAreHidden(t *testing.T) {
	env := newTestEnv(7)
	env.match.On("SubmitMatch", mock.Anything, 7, mock.Anything).
		Return(nil, errors.Join(services.ErrStorage, errors.New("pq: password authentication failed")))

	rec := env.do(t, http.MethodPost, "/matches", services.SubmitMatchInput{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSubmitMatch_RejectsUnknownFields(t *testing.T) {
	env := newTestEnv(7)
	rec := env.do(t, http.MethodPost, "/matches", `{"winners":[1,2],"losers":[3,4],"elo_change_winner":99}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "unknown key")
	env.match.AssertNotCalled(t, "SubmitMatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestListRecent_Limit(t *testing.T) {
	env := newTestEnv(0)
	env.match.On("ListRecent", mock.Anything, defaultRecentLimit).Return([]*models.Match{}, nil).Once()
	env.match.On("ListRecent", mock.Anything, 3).Return([]*models.Match{{ID: 1}}, nil).Once()

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/matches/recent", nil).Code)
	rec := env.do(t, http.MethodGet, "/matches/recent?limit=3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/matches/recent?limit=abc", nil).Code)
	env.match.AssertExpectations(t)
}

func TestGetMatch(t *testing.T) {
	env := newTestEnv(0)
	env.match.On("GetByID", mock.Anything, 4).Return(nil, services.ErrMatchNotFound)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/matches/4", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/matches/abc", nil).Code)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(0)
	reg := services.RegisterInput{Username: "ann", Password: "secret1"}
	env.auth.On("Register", mock.Anything, reg).Return(&models.User{ID: 1, Username: "ann", Rating: 1000, PasswordHash: "h"}, nil)
	env.auth.On("Login", mock.Anything, services.LoginInput{Username: "ann", Password: "nope"}).Return(nil, services.ErrAuthInvalidCredentials)

	rec := env.do(t, http.MethodPost, "/auth/register", reg)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = env.do(t, http.MethodPost, "/auth/login", services.LoginInput{Username: "ann", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSelfAndLogout(t *testing.T) {
	env := newTestEnv(3)
	env.users.On("GetProfile", mock.Anything, 3).Return(&models.UserProfile{User: models.User{ID: 3, Username: "cat"}}, nil)
	env.auth.On("Logout", mock.Anything, mock.MatchedBy(func(at *services.AccessToken) bool { return at.ID == "test-jti" })).Return(nil).Once()

	rec := env.do(t, http.MethodGet, "/auth/self", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"cat"`)

	rec = env.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	env.auth.AssertExpectations(t)
}

func TestRankingAndProfile(t *testing.T) {
	env := newTestEnv(0)
	env.users.On("Ranking", mock.Anything).Return([]models.UserRanking{{Rank: 1, ID: 2, Username: "ben", Rating: 1016}}, nil)
	env.users.On("GetProfile", mock.Anything, 99).Return(nil, services.ErrUserNotFound)

	rec := env.do(t, http.MethodGet, "/users/ranking", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ranking []models.UserRanking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))
	assert.Equal(t, "ben", ranking[0].Username)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/users/99", nil).Code)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(5)
	env.users.On("Delete", mock.Anything, 5, 5).Return(services.ErrUserHasMatches)
	env.users.On("Delete", mock.Anything, 5, 6).Return(services.ErrForbiddenOperation)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodDelete, "/users/5", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, "/users/6", nil).Code)
}

func TestUploadAvatar_SniffsContentType(t *testing.T) {
	env := newTestEnv(5)
	avatarKey := "avatars/5/a.png"
	env.users.On("UploadAvatar", mock.Anything, 5, 5, "image/png", mock.Anything).
		Return(&models.User{ID: 5, AvatarKey: &avatarKey}, nil).Once()

	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/5/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.users.AssertExpectations(t)
}

func TestStatistics(t *testing.T) {
	env := newTestEnv(0)
	env.stats.On("WinPercentage", mock.Anything, 2).Return(75.0, nil)
	env.stats.On("UserMatchHistory", mock.Anything, 2).Return([]models.MatchHistoryEntry{{MatchID: 1, IsWinner: true, EloChange: 16}}, nil)

	rec := env.do(t, http.MethodGet, "/statistics/users/2/win_percentage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pct struct {
		UserID        int     `json:"user_id"`
		WinPercentage float64 `json:"win_percentage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pct))
	assert.Equal(t, 75.0, pct.WinPercentage)

	rec = env.do(t, http.MethodGet, "/users/2/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"elo_change":16`)
}
