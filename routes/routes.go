package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/orya-live/padel-engine/handlers"
	"github.com/orya-live/padel-engine/middleware"
	"github.com/orya-live/padel-engine/models"
)

// SetupRoutes собирает все маршруты движка. Просмотр открыт всем, мутации
// защищены JWT и ролями панели организатора.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	generationHandler *handlers.GenerationHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	lifecycleHandler *handlers.LifecycleHandler,
	disputeHandler *handlers.DisputeHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	staffOrAbove := middleware.Authorize(
		string(models.RoleOwner), string(models.RoleOrganizer), string(models.RoleStaff),
	)
	privileged := middleware.Authorize(
		string(models.RoleOwner), string(models.RoleOrganizer),
	)

	router.Post("/auth/login", authHandler.LoginHandler)

	router.Route("/events/{eventID}", func(r chi.Router) {
		// Публичные маршруты для просмотра
		r.Get("/tournament", lifecycleHandler.GetTournamentHandler)
		r.Get("/tournament/transitions", lifecycleHandler.AllowedTransitionsHandler)
		r.Get("/matches", matchHandler.ListEventMatchesHandler)
		r.Get("/disputes", disputeHandler.ListEventDisputesHandler)

		// Жизненный цикл меняют только владелец и организатор
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(privileged)
			r.Post("/tournament/transitions", lifecycleHandler.TransitionHandler)
		})
	})

	router.Route("/categories/{categoryID}", func(r chi.Router) {
		r.Get("/matches", matchHandler.ListCategoryMatchesHandler)
		r.Get("/standings", standingsHandler.GetStandingsHandler)
		r.Get("/seed-preview", generationHandler.PreviewSeedsHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(privileged)
			r.Post("/groups", generationHandler.GenerateGroupsHandler)
			r.Post("/knockout", generationHandler.GenerateKnockoutHandler)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatchHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(staffOrAbove)
			r.Post("/score", matchHandler.ReportScoreHandler)
			r.Post("/dispute", disputeHandler.OpenDisputeHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(privileged)
			r.Post("/slots", matchHandler.AssignSlotsHandler)
			r.Post("/dispute/resolve", disputeHandler.ResolveDisputeHandler)
		})
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
