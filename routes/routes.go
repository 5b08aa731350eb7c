package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	participantHandler *handlers.ParticipantHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// WebSocket без авторизации: только чтение событий турнира
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/overview", tournamentHandler.OverviewHandler)
		r.Get("/{tournamentID}/standings", tournamentHandler.StandingsHandler)
		r.Get("/{tournamentID}/rounds", tournamentHandler.ListRoundsHandler)
		r.Get("/{tournamentID}/rounds/{round}", tournamentHandler.GetRoundHandler)
		r.Get("/{tournamentID}/participants", participantHandler.ListHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			// запись себя в турнир доступна любому авторизованному пользователю
			r.Post("/{tournamentID}/participants", participantHandler.AddHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(middleware.RoleOrganizer, middleware.RoleAdmin))

				r.Post("/", tournamentHandler.CreateHandler)
				r.Patch("/{tournamentID}", tournamentHandler.UpdateConfigHandler)
				r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
				r.Put("/{tournamentID}/state", tournamentHandler.UpdateStateHandler)
				r.Post("/{tournamentID}/rounds", tournamentHandler.GenerateRoundHandler)
				r.Delete("/{tournamentID}/rounds/current", tournamentHandler.DeleteCurrentRoundHandler)
			})
		})
	})

	router.With(authenticate).Delete("/participants/{participantID}", participantHandler.RemoveHandler)

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Put("/first-player", matchHandler.FirstPlayerHandler)
			r.Put("/result", matchHandler.ResultHandler)
			r.Post("/confirm", matchHandler.ConfirmHandler)
			r.Delete("/confirm", matchHandler.UnconfirmHandler)
		})
	})
}
