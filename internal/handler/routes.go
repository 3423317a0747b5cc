package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/campus-portal-api/internal/middleware"
	"github.com/campushub/campus-portal-api/internal/models"
	"github.com/campushub/campus-portal-api/internal/repository"
	"github.com/campushub/campus-portal-api/internal/service"
)

// Dependencies bundles everything route registration needs.
type Dependencies struct {
	Auth        *service.AuthService
	Cookie      CookieConfig
	Achievement *service.AchievementService
	Institute   *service.InstituteService
	Analytics   *service.AnalyticsService
	Audit       *repository.AuditRepository
}

// RegisterRoutes mounts the API surface on the given group.
func RegisterRoutes(api *gin.RouterGroup, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth, deps.Cookie)
	achievementHandler := NewAchievementHandler(deps.Achievement)
	instituteHandler := NewInstituteHandler(deps.Institute)
	analyticsHandler := NewAnalyticsHandler(deps.Analytics)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/status", middleware.OptionalJWT(deps.Auth), authHandler.Status)
		auth.GET("/me", middleware.JWT(deps.Auth), authHandler.Me)
	}

	institutes := api.Group("/institutes")
	{
		institutes.POST("/register", instituteHandler.Register)

		requests := institutes.Group("/requests", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleSuperAdmin))
		{
			requests.GET("", instituteHandler.List)
			requests.POST("/:id/approve", middleware.Audit(deps.Audit, models.AuditActionInstituteReview, "institute_request"), instituteHandler.Approve)
			requests.POST("/:id/reject", middleware.Audit(deps.Audit, models.AuditActionInstituteReview, "institute_request"), instituteHandler.Reject)
		}
	}

	achievements := api.Group("/achievements", middleware.JWT(deps.Auth))
	{
		achievements.POST("", middleware.RequireRoles(models.RoleStudent), achievementHandler.Submit)
		achievements.GET("/:id", achievementHandler.Get)
		achievements.DELETE("/:id", middleware.RequireRoles(models.RoleStudent), achievementHandler.Delete)
		achievements.POST("/review/:achievementId",
			middleware.RequireRoles(models.RoleSuperAdmin, models.RoleInstitute, models.RoleFaculty),
			achievementHandler.Review)
	}

	students := api.Group("/students", middleware.JWT(deps.Auth))
	{
		students.GET("/:id/achievements", achievementHandler.ListByStudent)
	}

	analytics := api.Group("/analytics", middleware.JWT(deps.Auth))
	{
		overview := analytics.Group("", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleInstitute))
		{
			overview.GET("/achievements", analyticsHandler.Achievements)
			overview.GET("/reviewers", analyticsHandler.Reviewers)
			overview.GET("/institute-requests", analyticsHandler.InstituteRequests)
		}
		analytics.GET("/system", middleware.RequireRoles(models.RoleSuperAdmin), analyticsHandler.System)
		analytics.GET("/reviewers/:id/history/export", analyticsHandler.ExportReviewHistory)
	}
}
