package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/janlemon/chytrejim/internal/config"
	"github.com/janlemon/chytrejim/internal/handlers"
	"github.com/janlemon/chytrejim/internal/middleware"
	"github.com/janlemon/chytrejim/internal/onboarding"
	"github.com/janlemon/chytrejim/internal/repository"
	"github.com/janlemon/chytrejim/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	preferencesRepo := repository.NewPreferencesRepository(db)
	targetsRepo := repository.NewTargetsRepository(db)

	drafts := onboarding.NewStore()
	targetsService := services.NewTargetsService(profileRepo, targetsRepo)
	onboardingService := services.NewOnboardingService(
		drafts,
		userRepo,
		profileRepo,
		preferencesRepo,
		targetsService,
		cfg.DefaultStepsTarget,
	)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingService)
	profileHandler := handlers.NewProfileHandler(profileRepo, preferencesRepo)
	targetsHandler := handlers.NewTargetsHandler(targetsRepo, targetsService, cfg.DefaultStepsTarget)
	catalogHandler := handlers.NewCatalogHandler()

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	ob := authProtected.Group("/onboarding")
	ob.Get("/draft", onboardingHandler.GetDraft)
	ob.Put("/draft", onboardingHandler.UpdateDraft)
	ob.Delete("/draft", onboardingHandler.ResetDraft)
	ob.Get("/review", onboardingHandler.Review)
	ob.Post("/finish", onboardingHandler.Finish)
	ob.Post("/gender", onboardingHandler.SaveGender)
	ob.Post("/activity", onboardingHandler.SaveActivity)
	ob.Post("/goal", onboardingHandler.SaveGoal)
	ob.Post("/activity/suggest", onboardingHandler.SuggestActivity)

	authProtected.Get("/profile", profileHandler.GetProfile)
	authProtected.Get("/preferences", profileHandler.GetPreferences)

	authProtected.Get("/targets", targetsHandler.GetTargets)
	authProtected.Post("/targets/recompute", targetsHandler.RecomputeTargets)

	catalogs := authProtected.Group("/catalog")
	catalogs.Get("/:kind", catalogHandler.List)
	catalogs.Get("/:kind/suggest", catalogHandler.Suggest)
}
