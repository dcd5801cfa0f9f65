package routes

import (
	"github.com/courtside/league-system/handlers"
	"github.com/courtside/league-system/middleware"
	"github.com/courtside/league-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes mounts every HTTP endpoint on the router. Read-only league
// data is public, anything that mutates state requires a token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clubHandler *handlers.ClubHandler,
	leagueHandler *handlers.LeagueHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{userID}/avatar", userHandler.UploadAvatar)
		})
	})

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/", clubHandler.List)
		r.Get("/{clubID}", clubHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleClubAdmin))
			r.Post("/", clubHandler.Create)
			r.Post("/{clubID}/emblem", clubHandler.UploadEmblem)
		})
	})

	router.Route("/leagues", func(r chi.Router) {
		r.Get("/", leagueHandler.List)
		r.Get("/{leagueID}", leagueHandler.GetByID)
		r.Get("/{leagueID}/standings", leagueHandler.Standings)
		r.Get("/{leagueID}/rankings/players", leagueHandler.PlayerRankings)
		r.Get("/{leagueID}/matches", leagueHandler.Matches)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", leagueHandler.Create)
			r.Delete("/{leagueID}", leagueHandler.Delete)
			r.Post("/{leagueID}/players", leagueHandler.EnrollPlayer)
			r.Delete("/{leagueID}/players/{userID}", leagueHandler.RemovePlayer)
			r.Post("/{leagueID}/teams", leagueHandler.CreateTeam)
			r.Post("/{leagueID}/start", leagueHandler.Start)
			r.Post("/{leagueID}/complete", leagueHandler.Complete)
			r.Post("/{leagueID}/fixtures", leagueHandler.GenerateFixtures)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdmin, models.RoleClubAdmin))
				r.Post("/{leagueID}/rankings/recompute", leagueHandler.RecomputeRankings)
			})
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{matchID}/result", matchHandler.RecordResult)
			r.Patch("/{matchID}/schedule", matchHandler.Reschedule)
		})
	})

	router.Get("/ws/leagues/{leagueID}", webSocketHandler.ServeWs)
}
