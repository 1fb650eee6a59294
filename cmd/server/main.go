package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"speechtrack/internal/config"
	"speechtrack/internal/database"
	"speechtrack/internal/handlers"
	"speechtrack/internal/live"
	"speechtrack/internal/repository"
	"speechtrack/internal/security"
	"speechtrack/internal/service"

	"github.com/go-redis/redis/v8"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Change notifications: Redis when configured, in-process otherwise
	notifier := buildNotifier(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	rubricRepo := repository.NewRubricRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, patientRepo, notifier, cfg.Namespace, cfg.SessionDuration, cfg.TokenSigningKey)
	emailService, err := service.NewEmailService(cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	practiceService := service.NewPracticeService(historyRepo, notifier, cfg.Namespace)
	feedbackService := service.NewFeedbackService(feedbackRepo, userRepo, emailService, notifier, cfg.Namespace)
	exerciseService := service.NewExerciseService(exerciseRepo, notifier, cfg.Namespace)
	dashboardService := service.NewDashboardService(patientRepo, historyRepo, feedbackRepo, exerciseRepo)
	rubricService := service.NewRubricService(rubricRepo)
	reportService := service.NewReportService(patientRepo, historyRepo, feedbackRepo, exerciseRepo, nil)
	liveService := service.NewLiveService(notifier, cfg.Namespace, practiceService, feedbackService, exerciseService, dashboardService)

	// Seed the default doctor account
	if err := authService.SeedDoctor(cfg.DoctorEmail, cfg.DoctorPassword, cfg.DoctorName); err != nil {
		log.Printf("Warning: Failed to seed doctor account: %v", err)
	}

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(20, time.Minute)
	middleware := handlers.NewMiddleware(authService, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService)
	patientHandler := handlers.NewPatientHandler(practiceService, feedbackService, exerciseService)
	doctorHandler := handlers.NewDoctorHandler(dashboardService, practiceService, feedbackService, exerciseService, rubricService, reportService)
	liveHandler := handlers.NewLiveHandler(liveService)

	// Setup routes
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/anonymous", middleware.RateLimit(authHandler.LoginAnonymously))
	mux.HandleFunc("POST /api/auth/token", middleware.RateLimit(authHandler.LoginWithToken))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))

	// Patient routes
	mux.HandleFunc("POST /api/practice/results", middleware.RequireAuth(patientHandler.SubmitResult))
	mux.HandleFunc("GET /api/practice/history", middleware.RequireAuth(patientHandler.History))
	mux.HandleFunc("GET /api/practice/streak", middleware.RequireAuth(patientHandler.Streak))
	mux.HandleFunc("GET /api/practice/sentences", middleware.RequireAuth(patientHandler.Sentences))
	mux.HandleFunc("GET /api/feedback", middleware.RequireAuth(patientHandler.Feedback))
	mux.HandleFunc("POST /api/feedback/{id}/read", middleware.RequireAuth(patientHandler.MarkFeedbackRead))
	mux.HandleFunc("GET /api/exercises", middleware.RequireAuth(patientHandler.Exercises))
	mux.HandleFunc("GET /api/live/{collection}", middleware.RequireAuth(liveHandler.Watch))

	// Doctor routes
	mux.HandleFunc("GET /api/doctor/dashboard", middleware.RequireDoctor(doctorHandler.Dashboard))
	mux.HandleFunc("GET /api/doctor/patients", middleware.RequireDoctor(doctorHandler.Patients))
	mux.HandleFunc("GET /api/doctor/patients/{id}/history", middleware.RequireDoctor(doctorHandler.PatientHistory))
	mux.HandleFunc("POST /api/doctor/patients/{id}/feedback", middleware.RequireDoctor(doctorHandler.SendFeedback))
	mux.HandleFunc("POST /api/doctor/patients/{id}/exercises", middleware.RequireDoctor(doctorHandler.AssignExercise))
	mux.HandleFunc("GET /api/doctor/patients/{id}/report", middleware.RequireDoctor(doctorHandler.ExportReport))
	mux.HandleFunc("GET /api/doctor/exercises", middleware.RequireDoctor(doctorHandler.ExerciseCatalog))
	mux.HandleFunc("GET /api/doctor/rubric", middleware.RequireDoctor(doctorHandler.GetRubric))
	mux.HandleFunc("PUT /api/doctor/rubric", middleware.RequireDoctor(doctorHandler.SaveRubric))
	mux.HandleFunc("GET /api/doctor/live/patients", middleware.RequireDoctor(liveHandler.WatchDirectory))
	mux.HandleFunc("GET /api/doctor/live/patients/{id}/{collection}", middleware.RequireDoctor(liveHandler.WatchPatient))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// buildNotifier selects the change-notification transport. With Redis every
// server instance observes every write; the in-process notifier only covers
// single-instance deployments.
func buildNotifier(cfg *config.Config) live.Notifier {
	if cfg.RedisAddr == "" {
		log.Println("Change notifications: in-process (REDIS_ADDR not configured)")
		return live.NewMemoryNotifier()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	log.Printf("Change notifications: redis (%s)", cfg.RedisAddr)
	return live.NewRedisNotifier(client)
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
