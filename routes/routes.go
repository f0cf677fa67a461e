package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/ShinAdam/Badminton-Elo-App/docs"
	"github.com/ShinAdam/Badminton-Elo-App/handlers"
	"github.com/ShinAdam/Badminton-Elo-App/middleware"
	"github.com/ShinAdam/Badminton-Elo-App/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Match     *handlers.MatchHandler
	Statistic *handlers.StatisticHandler
	WebSocket *handlers.WebSocketHandler
}

// SetupRoutes mounts the whole HTTP API on router.
func SetupRoutes(router chi.Router, h Handlers, authService services.AuthService, allowedOrigins []string, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(authService, logger)

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/self", h.Auth.Self)
			r.Post("/logout", h.Auth.Logout)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/ranking", h.User.Ranking)
		r.Get("/by-username/{username}", h.User.GetUserByUsername)

		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", h.User.GetUserByID)
			r.Get("/matches", h.User.ListUserMatches)
			r.Get("/history", h.User.MatchHistory)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Put("/", h.User.UpdateUser)
				r.Delete("/", h.User.DeleteUser)
				r.Post("/avatar", h.User.UploadAvatar)
			})
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.ListMatches)
		r.Get("/recent", h.Match.ListRecent)
		r.Post("/projection", h.Match.ProjectRating)
		r.Get("/{matchID}", h.Match.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(chiMiddleware.Timeout(15 * time.Second))
			r.Post("/", h.Match.SubmitMatch)
		})
	})

	router.Route("/statistics", func(r chi.Router) {
		r.Get("/full_match_history", h.Statistic.FullMatchHistory)
		r.Get("/users/{userID}/win_percentage", h.Statistic.WinPercentage)
	})

	router.Route("/ws", func(r chi.Router) {
		r.Get("/ranking", h.WebSocket.ServeRanking)
		r.Get("/users/{userID}", h.WebSocket.ServeUser)
	})
}
