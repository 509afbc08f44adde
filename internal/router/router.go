package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/config"
	"github.com/zeroclasses/zero-backend/internal/handler"
	"github.com/zeroclasses/zero-backend/internal/middleware"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/response"
	"github.com/zeroclasses/zero-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	AdminUser  *handler.AdminUserHandler
	Course     *handler.CourseHandler
	Quiz       *handler.QuizHandler
	Attempt    *handler.AttemptHandler
	Assignment *handler.AssignmentHandler
	Media      *handler.MediaHandler
	Setting    *handler.SettingHandler
	Dashboard  *handler.DashboardHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	authLimiter *middleware.RateLimiter,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// ─── 0. Public (no auth) ───────────────────────────────────────────
	api.GET("/public/settings", handlers.Setting.GetPublicSettings)

	auth := api.Group("/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/otp/send", handlers.Auth.SendOTP)
		auth.POST("/otp/verify", handlers.Auth.VerifyOTP)
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── 1. Authenticated (any role) ───────────────────────────────────
	authed := api.Group("")
	authed.Use(
		middleware.RequireJWT(authService),
		middleware.CheckSessionRevocation(authService),
	)
	{
		authed.POST("/auth/logout", handlers.Auth.Logout)
		authed.GET("/auth/me", handlers.Auth.Me)
		authed.PATCH("/auth/me", handlers.Auth.UpdateMe)
		authed.PUT("/auth/me/password", handlers.Auth.ChangePassword)

		authed.GET("/dashboard", handlers.Dashboard.Get)
		authed.POST("/media/upload", handlers.Media.UploadMedia)

		// Courses: visibility and ownership are checked per course.
		authed.GET("/courses", handlers.Course.List)
		authed.GET("/courses/:id", handlers.Course.Get)
		authed.GET("/courses/:id/quizzes", handlers.Quiz.ListByCourse)
		authed.GET("/courses/:id/assignments", handlers.Assignment.ListByCourse)
		authed.GET("/quizzes/:id", handlers.Quiz.Get)
		authed.GET("/assignments/:id/submissions", handlers.Assignment.ListSubmissions)
	}

	// ─── 2. Students ───────────────────────────────────────────────────
	student := authed.Group("")
	student.Use(middleware.RequireStudent())
	{
		student.POST("/courses/:id/enroll", handlers.Course.Enroll)
		student.POST("/courses/:id/schedules/:schedule_id/attend", handlers.Course.Attend)
		student.GET("/me/courses", handlers.Course.MyCourses)
		student.GET("/me/results", handlers.Quiz.MyResults)

		student.POST("/assignments/:id/submissions", handlers.Assignment.Submit)
		student.PUT("/submissions/:id/reaction", handlers.Assignment.React)

		student.POST("/quizzes/:id/attempts", handlers.Attempt.Start)
		attempts := student.Group("/attempts/:id")
		attempts.Use(middleware.NoStore())
		{
			attempts.GET("", handlers.Attempt.Get)
			attempts.PUT("/answers/:index", handlers.Attempt.Answer)
			attempts.POST("/flags/:index", handlers.Attempt.ToggleFlag)
			attempts.POST("/navigate", handlers.Attempt.Navigate)
			attempts.POST("/submit", handlers.Attempt.Submit)
			attempts.POST("/save", handlers.Attempt.SaveResult)
			attempts.GET("/review", handlers.Attempt.Review)
			attempts.DELETE("", handlers.Attempt.Abandon)
		}
	}

	// ─── 3. Staff ──────────────────────────────────────────────────────
	staff := authed.Group("")
	staff.Use(middleware.RequireStaff())
	{
		staff.POST("/courses", middleware.RequirePermission(model.PermCoursesCreate), handlers.Course.Create)
		staff.PUT("/courses/:id", handlers.Course.Update)
		staff.DELETE("/courses/:id", handlers.Course.Delete)
		staff.POST("/courses/:id/submit", handlers.Course.SubmitForReview)
		staff.POST("/courses/:id/publish", middleware.RequireAnyPermission(model.PermCoursesApprove, model.PermCoursesPublish), handlers.Course.Publish)

		staff.POST("/courses/:id/materials", handlers.Course.AddMaterial)
		staff.DELETE("/courses/:id/materials/:material_id", handlers.Course.DeleteMaterial)
		staff.POST("/courses/:id/schedules", handlers.Course.CreateSchedule)
		staff.PUT("/courses/:id/schedules/:schedule_id", handlers.Course.UpdateSchedule)
		staff.DELETE("/courses/:id/schedules/:schedule_id", handlers.Course.DeleteSchedule)

		staff.POST("/courses/:id/quizzes", handlers.Quiz.Create)
		staff.PUT("/quizzes/:id", handlers.Quiz.Update)
		staff.DELETE("/quizzes/:id", handlers.Quiz.Delete)
		staff.GET("/quizzes/:id/results", handlers.Quiz.QuizResults)

		staff.POST("/courses/:id/assignments", handlers.Assignment.Create)
		staff.DELETE("/assignments/:id", handlers.Assignment.Delete)
		staff.PUT("/submissions/:id/grade", handlers.Assignment.Grade)
	}

	// ─── 4. Admin ──────────────────────────────────────────────────────
	admin := authed.Group("/admin")
	{
		admin.GET("/users", middleware.RequirePermission(model.PermUsersView), handlers.AdminUser.List)
		admin.PATCH("/users/:id/role", middleware.RequirePermission(model.PermUsersEdit), handlers.AdminUser.UpdateRole)
		admin.DELETE("/users/:id", middleware.RequirePermission(model.PermUsersDelete), handlers.AdminUser.Delete)

		admin.GET("/settings", middleware.RequirePermission(model.PermSettingsView), handlers.Setting.GetAllSettings)
		admin.PUT("/settings", middleware.RequirePermission(model.PermSettingsEdit), handlers.Setting.UpdateSettings)
	}

	// ─── 5. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireWSAuth(authService),
		middleware.CheckSessionRevocation(authService),
		middleware.RequireStudent(),
	)
	{
		ws.GET("/attempts/:id/stream", handlers.WS.AttemptStream)
	}

	return router
}
