package main

import (
	"classroomlive/config"
	"classroomlive/internal/cache"
	"classroomlive/internal/repository"
	"classroomlive/internal/service"
	"classroomlive/internal/storage"
	"classroomlive/internal/transport/rest"
	"classroomlive/internal/transport/ws"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	classroomRepo := repository.NewClassroomRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	handRaiseRepo := repository.NewHandRaiseRepo(db)
	roundRepo := repository.NewRoundRepo(db)
	contentRepo := repository.NewContentRepo(db)
	directoryRepo := repository.NewDirectoryRepo(db)

	// Initialize caches
	contextCache := cache.NewContextCache(rdb)
	presenceCache := cache.NewPresenceCache(rdb)

	// Blob store for uploaded content
	blobStore, err := storage.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		log.Fatal("Failed to initialize media store:", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	guard := service.NewAccessGuard(classroomRepo, directoryRepo, contextCache)
	locks := service.NewClassroomLocks()
	classroomSvc := service.NewClassroomService(classroomRepo, seatRepo, roundRepo, handRaiseRepo, directoryRepo, guard, presenceCache, locks, cfg.DefaultRows, cfg.DefaultCols)
	handSvc := service.NewHandService(seatRepo, handRaiseRepo, guard, locks)
	roundSvc := service.NewRoundService(seatRepo, roundRepo, guard, locks)
	contentSvc := service.NewContentService(contentRepo, seatRepo, guard, blobStore)

	// Inject publisher (wsHub implements service.Publisher)
	classroomSvc.SetPublisher(wsHub)
	handSvc.SetPublisher(wsHub)
	roundSvc.SetPublisher(wsHub)
	contentSvc.SetPublisher(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:      authSvc,
		ClassroomService: classroomSvc,
		HandService:      handSvc,
		RoundService:     roundSvc,
		ContentService:   contentSvc,
		Guard:            guard,
		Presence:         presenceCache,
		WSHub:            wsHub,
		MediaDir:         cfg.MediaDir,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  GET  /v1/classrooms/{sessionId}")
		log.Println("  POST /v1/classrooms/{classroomId}/seats/select")
		log.Println("  POST /v1/hand")
		log.Println("  POST /v1/hand-raises/{id}/start-speaking")
		log.Println("  POST /v1/classrooms/{classroomId}/update-rounds")
		log.Println("  POST /v1/update-turns/{id}/end")
		log.Println("  POST /v1/seats/{seatId}/content")
		log.Println("  GET  /v1/content/{id}")
		log.Println("  GET  /v1/classrooms/{classroomId}/raised-hands")
		log.Println("  GET  /v1/classrooms/{classroomId}/participants")
		log.Println("  WS   /v1/ws/classrooms/{classroomId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
