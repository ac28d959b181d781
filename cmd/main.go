package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eduforge/eduforge-backend/internal/badges"
	"github.com/eduforge/eduforge-backend/internal/db"
	"github.com/eduforge/eduforge-backend/internal/handlers"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/server"
	"github.com/eduforge/eduforge-backend/internal/services"
	"github.com/eduforge/eduforge-backend/internal/utils"
)

func main() {
	log, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("postgres connection failed", "error", err.Error())
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("migration failed", "error", err.Error())
	}
	gormDB := pg.DB()

	userRepo := repos.NewUserRepo(gormDB, log)
	tokenRepo := repos.NewUserTokenRepo(gormDB, log)
	courseRepo := repos.NewCourseRepo(gormDB, log)
	lessonRepo := repos.NewLessonRepo(gormDB, log)
	progressRepo := repos.NewProgressRepo(gormDB, log)
	taskRepo := repos.NewAiTaskRepo(gormDB, log)
	badgeRepo := repos.NewBadgeRepo(gormDB, log)
	callLogRepo := repos.NewAICallLogRepo(gormDB, log)

	dispatcher := badges.NewDispatcher(userRepo, badgeRepo, nil, log)
	aiClient := services.NewAIClient(callLogRepo, log)

	authService := services.NewAuthService(gormDB, userRepo, tokenRepo, log)
	courseService := services.NewCourseService(gormDB, courseRepo, log)
	lessonService := services.NewLessonService(gormDB, lessonRepo, courseRepo, log)
	progressService := services.NewProgressService(
		gormDB, progressRepo, lessonRepo, courseRepo, userRepo, dispatcher, log)
	tutorService := services.NewTutorService(
		gormDB, aiClient, taskRepo, lessonRepo, userRepo, dispatcher, log)
	userService := services.NewUserService(gormDB, userRepo, progressRepo, badgeRepo, log)

	router := server.NewRouter(server.Handlers{
		Auth:   handlers.NewAuthHandler(authService, log),
		Course: handlers.NewCourseHandler(courseService, progressService, log),
		Lesson: handlers.NewLessonHandler(lessonService, progressService, log),
		Tutor:  handlers.NewTutorHandler(tutorService, log),
		User:   handlers.NewUserHandler(userService, log),
	}, authService, log)

	port := utils.GetEnv("PORT", "8080", log)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info("server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", "error", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
}
