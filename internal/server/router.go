package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eduforge/eduforge-backend/internal/handlers"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/middleware"
	"github.com/eduforge/eduforge-backend/internal/services"
	"github.com/eduforge/eduforge-backend/internal/utils"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Course *handlers.CourseHandler
	Lesson *handlers.LessonHandler
	Tutor  *handlers.TutorHandler
	User   *handlers.UserHandler
}

func NewRouter(h Handlers, authService services.AuthService, baseLog *logger.Logger) *gin.Engine {
	log := baseLog.With("component", "Router")

	mode := utils.GetEnv("GIN_MODE", gin.ReleaseMode, log)
	gin.SetMode(mode)

	router := gin.New()
	router.Use(gin.Recovery())

	origins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000", log)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(origins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	protected := v1.Group("")
	protected.Use(middleware.Auth(authService, baseLog))
	{
		protected.POST("/auth/refresh", h.Auth.Refresh)
		protected.POST("/auth/logout", h.Auth.Logout)

		course := protected.Group("/course")
		{
			course.POST("/addCourse", h.Course.AddCourse)
			course.GET("/getCourse", h.Course.GetCourse)
			course.POST("/sign", h.Course.Sign)
		}

		lesson := protected.Group("/lesson")
		{
			lesson.POST("/addLesson", h.Lesson.AddLesson)
			lesson.GET("/:id", h.Lesson.GetLesson)
			lesson.POST("/sign", h.Lesson.Sign)
			lesson.POST("/completeLesson", h.Lesson.CompleteLesson)
			lesson.POST("/answerLesson", h.Lesson.AnswerLesson)
		}

		tutor := protected.Group("/tutor")
		{
			tutor.POST("/ask", h.Tutor.Ask)
			tutor.POST("/generateTask", h.Tutor.GenerateTask)
			tutor.POST("/answerTask", h.Tutor.AnswerTask)
		}

		protected.GET("/progress/:materialId", h.Lesson.GetProgress)

		protected.GET("/badge/myBadges", h.User.MyBadges)

		user := protected.Group("/user")
		{
			user.GET("/me", h.User.Me)
			user.GET("/stats", h.User.Stats)
		}
	}

	return router
}
