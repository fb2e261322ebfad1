package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/yukikurage/listing-api/internal/config"
	"github.com/yukikurage/listing-api/internal/constants"
	"github.com/yukikurage/listing-api/internal/handlers"
	"github.com/yukikurage/listing-api/internal/middleware"
	"github.com/yukikurage/listing-api/internal/notify"
	"github.com/yukikurage/listing-api/internal/repository"
	"github.com/yukikurage/listing-api/internal/services"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type app struct {
	repos   *repository.Repositories
	rdb     *redis.Client
	handler http.Handler
}

func (a *app) Close() {
	if err := a.rdb.Close(); err != nil {
		log.Printf("WARN: closing redis client: %v", err)
	}
}

func newApp(cfg *config.Config, db *gorm.DB) (*app, error) {
	gin.SetMode(cfg.GinMode)

	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: cfg.RedisPassword,
	})

	repos := repository.NewRepositories(db)
	sender := notify.NewSender(cfg)
	unsubscribed := notify.NewCachedUnsubscribeProvider(rdb, repos.Unsubscribes, constants.UnsubscribedCacheKey, constants.UnsubscribedCacheTTL)
	fanout := notify.NewFanout(constants.MaxConcurrentDeliveries, unsubscribed, notify.TemplateDeadlineExtended)

	authService := services.NewAuthService(repos.Users, cfg.JWTSecret)
	reconciler := services.NewListingReconciler(repos.Hackathons, repos.Sponsors)
	payments := services.NewPaymentRecorder(repos, sender)
	listingService := services.NewListingService(
		repos,
		services.NewSlugAllocator(repos.Listings),
		reconciler,
		payments,
		fanout,
		sender,
		services.ListingServiceOptions{
			Production: cfg.IsProduction(),
			SiteURL:    cfg.SiteURL,
		},
	)
	submissionService := services.NewSubmissionService(repos)
	subscriptionService := services.NewSubscriptionService(repos, unsubscribed)
	sponsorService := services.NewSponsorService(repos.Sponsors, repos.Users)
	hackathonService := services.NewHackathonService(repos.Hackathons)
	aiService := services.NewAIService(cfg.OpenAIAPIKey)

	r := gin.Default()

	store, err := redisStore.NewStore(
		10, // Redis pool size
		"tcp",
		redisAddr,
		"", // username (empty for default user)
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis store: %w", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(rate.Limit(constants.RequestsPerSecond), constants.RequestBurst)))

	registerRoutes(r, routeHandlers{
		auth:         handlers.NewAuthHandler(authService),
		sponsor:      handlers.NewSponsorHandler(sponsorService),
		hackathon:    handlers.NewHackathonHandler(hackathonService),
		listing:      handlers.NewListingHandler(listingService, aiService),
		submission:   handlers.NewSubmissionHandler(listingService, submissionService),
		subscription: handlers.NewSubscriptionHandler(subscriptionService),
		tokens:       authService,
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return &app{
		repos:   repos,
		rdb:     rdb,
		handler: corsMiddleware.Handler(r),
	}, nil
}

type routeHandlers struct {
	auth         *handlers.AuthHandler
	sponsor      *handlers.SponsorHandler
	hackathon    *handlers.HackathonHandler
	listing      *handlers.ListingHandler
	submission   *handlers.SubmissionHandler
	subscription *handlers.SubscriptionHandler
	tokens       middleware.TokenParser
}

func registerRoutes(r *gin.Engine, h routeHandlers) {
	requireAuth := middleware.RequireAuth(h.tokens)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Listing API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.auth.Signup)
			auth.POST("/login", h.auth.Login)
			auth.POST("/token", h.auth.IssueToken)
			auth.POST("/logout", h.auth.Logout)
			auth.GET("/me", requireAuth, h.auth.GetCurrentUser)
		}

		sponsors := api.Group("/sponsors")
		sponsors.Use(requireAuth)
		{
			sponsors.POST("", h.sponsor.CreateSponsor)
			sponsors.GET("", h.sponsor.ListSponsors)
			sponsors.POST("/join", h.sponsor.JoinSponsor)
			sponsors.POST("/:id/select", middleware.RequireSponsorAccess(), h.sponsor.SelectSponsor)
			sponsors.POST("/:id/regenerate-code", middleware.RequireSponsorAccess(), middleware.RequireSponsorOwner(), h.sponsor.RegenerateInviteCode)
		}

		api.POST("/hackathons", requireAuth, h.hackathon.CreateHackathon)
		api.GET("/hackathons/:slug", h.hackathon.GetHackathon)

		// Sponsor-side listing management, addressed by id
		manage := api.Group("/sponsor/listings")
		manage.Use(requireAuth)
		{
			manage.GET("", h.listing.ListListings)
			manage.POST("", h.listing.CreateListing)
			manage.POST("/draft", h.listing.DraftListing)
			manage.PATCH("/:id", h.listing.UpdateListing)
			manage.DELETE("/:id", h.listing.DeactivateListing)
		}

		// Public listing routes, addressed by slug
		listings := api.Group("/listings/:slug")
		{
			listings.GET("", h.listing.GetListing)
			listings.POST("/subscribe", requireAuth, middleware.LoadActiveListing(), h.subscription.Subscribe)
			listings.DELETE("/subscribe", requireAuth, middleware.LoadActiveListing(), h.subscription.Unsubscribe)
			listings.POST("/submissions", requireAuth, middleware.LoadActiveListing(), h.submission.Submit)
			listings.GET("/submissions", requireAuth, middleware.LoadActiveListing(), h.submission.ListSubmissions)
		}

		submissions := api.Group("/submissions")
		submissions.Use(requireAuth)
		{
			submissions.POST("/:id/payment", h.submission.RecordPayment)
			submissions.POST("/:id/winner", h.submission.SelectWinner)
		}

		api.POST("/emails/unsubscribe", requireAuth, h.subscription.OptOut)
	}
}
