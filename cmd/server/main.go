package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/api"
	"github.com/CarlJazper/PSPWEB/internal/config"
	"github.com/CarlJazper/PSPWEB/internal/payment"
	"github.com/CarlJazper/PSPWEB/internal/repository/mongo"
	"github.com/CarlJazper/PSPWEB/internal/service"
	"github.com/CarlJazper/PSPWEB/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting PSP Gym Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureEngagementIndexes(ctx, appDB.Collection("engagements"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureTransactionIndexes(ctx, appDB.Collection("transactions"))
		mongo.EnsureAttendanceIndexes(ctx, appDB.Collection("attendance_logs"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing storage services...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}
	imageStorage, err := storage.NewCloudinaryStorage(cfg.Cloudinary)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Cloudinary storage: %v", err)
	}

	// --- Initialize Payment Gateway ---
	gateway, err := payment.NewStripeGateway(cfg.Payment)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize payment gateway: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	engagementRepo := mongo.NewMongoEngagementRepository(appDB)
	branchRepo := mongo.NewMongoBranchRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	transactionRepo := mongo.NewMongoTransactionRepository(appDB)
	attendanceRepo := mongo.NewMongoAttendanceRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	engagementService := service.NewEngagementService(engagementRepo, userRepo, imageStorage)
	paymentService := service.NewPaymentService(userRepo, gateway, cfg.Payment.Currency)
	catalogService := service.NewCatalogService(branchRepo, exerciseRepo, fileStorage)
	membershipService := service.NewMembershipService(transactionRepo, attendanceRepo, userRepo)
	reportingService, err := service.NewReportingService(engagementRepo, transactionRepo, attendanceRepo, userRepo, cfg.Reporting.Timezone)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize reporting service: %v", err)
	}

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default()

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, engagementService, paymentService, catalogService, reportingService, membershipService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
