package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sujalbistaa/polls/internal/config"
	"github.com/sujalbistaa/polls/internal/db"
	routes "github.com/sujalbistaa/polls/internal/http"
	"github.com/sujalbistaa/polls/internal/polls"
	"github.com/sujalbistaa/polls/internal/repository"
)

func main() {
	// Environment variables set directly still work without a .env file.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	database, err := db.Open(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(database)

	log.Println("Running database migrations...")
	if err := db.Migrate(database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations complete.")

	store := repository.NewQuestions(database)
	env := &routes.Env{
		Polls: polls.NewService(store, nil),
		DB:    store,
	}

	// gin.New rather than gin.Default: SetupRoutes installs the logger and recovery.
	router := gin.New()
	if err := routes.SetupRoutes(router, env, cfg); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}
	if cfg.AdminToken == "" {
		log.Println("X_ADMIN_TOKEN not set, admin API disabled")
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
