package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/internal/handler"
	"github.com/noah-isme/course-feedback-api/internal/middleware"
	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/internal/service"
	"github.com/noah-isme/course-feedback-api/pkg/config"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
	"github.com/noah-isme/course-feedback-api/pkg/logger"
	reqidmiddleware "github.com/noah-isme/course-feedback-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-feedback-api/pkg/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Student     *handler.StudentHandler
	Teacher     *handler.TeacherHandler
	Stats       *handler.StatsHandler
	StatsStream *handler.StatsStreamHandler
	Codes       *handler.CodeHandler
	Subjects    *handler.SubjectHandler
	Enrollments *handler.EnrollmentHandler
	Metrics     *handler.MetricsHandler
}

// Setup builds the engine with global middleware and every route group.
func Setup(cfg *config.Config, tokens middleware.TokenValidator, metrics *service.MetricsService, h *Handlers, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := middleware.JWT(tokens)
	bounded := middleware.QueryTimeout(cfg.Database.QueryTimeout)

	authGroup := api.Group("/auth", bounded)
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/me", auth, h.Auth.Me)
	}

	student := api.Group("/student", auth, middleware.RequireRoles(models.RoleStudent), bounded)
	{
		student.GET("/subjects", h.Student.Subjects)
		student.POST("/subjects/:subjectId/feedback", h.Student.SubmitFeedback)
	}

	teacher := api.Group("/teacher", auth, middleware.RequireRoles(models.RoleTeacher), bounded)
	{
		teacher.GET("/subjects", h.Teacher.Subjects)
		teacher.GET("/feedback", h.Teacher.Feedback)
		teacher.GET("/feedback/export", h.Teacher.Export)
	}

	api.GET("/subjects/:subjectId/average", auth, middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), bounded, h.Stats.SubjectAverage)

	admin := api.Group("/admin", auth, middleware.RequireRoles(models.RoleAdmin))
	// The stream outlives any query deadline.
	admin.GET("/stats/stream", h.StatsStream.Stream)
	adminBounded := admin.Group("", bounded, middleware.Audit(logr))
	{
		adminBounded.GET("/stats", h.Stats.System)
		adminBounded.POST("/codes", h.Codes.Generate)
		adminBounded.GET("/codes", h.Codes.List)
		adminBounded.POST("/users", h.Codes.ProvisionUser)
		adminBounded.GET("/users", h.Enrollments.Users)
		adminBounded.POST("/subjects", h.Subjects.Create)
		adminBounded.PUT("/subjects/:subjectId/teacher", h.Subjects.Reassign)
		adminBounded.DELETE("/subjects/:subjectId", h.Subjects.Delete)
		adminBounded.POST("/enrollments", h.Enrollments.Enroll)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	return r
}

// corsConfig restricts origins when a list is configured and allows all otherwise.
func corsConfig(allowedOrigins []string) cors.Config {
	conf := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		conf.AllowOrigins = allowedOrigins
	} else {
		conf.AllowAllOrigins = true
	}
	conf.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	conf.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	conf.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	conf.MaxAge = 12 * time.Hour
	return conf
}
