package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvarela/uniregistro/internal/app/controllers"
	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	subjectController *controllers.SubjectController,
	studentController *controllers.StudentController,
	userController *controllers.UserController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh-token", authController.RefreshToken)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.POST("/auth/logout", authController.Logout)

	adminOnly := authMiddleware.RoleRequired(string(models.RoleAdmin))

	// Subject catalog routes. Reads are open to any authenticated user;
	// catalog mutations are admin only.
	subjects := authenticated.Group("/subjects")
	{
		subjects.GET("", subjectController.GetAllSubjects)
		subjects.GET("/order", subjectController.GetStudyOrder)
		subjects.GET("/:id", subjectController.GetSubject)

		subjectsAdmin := subjects.Group("")
		subjectsAdmin.Use(adminOnly)
		{
			subjectsAdmin.POST("", subjectController.CreateSubject)
			subjectsAdmin.DELETE("/:id", subjectController.DeleteSubject)
			subjectsAdmin.POST("/:id/prerequisites", subjectController.AddPrerequisite)
			subjectsAdmin.DELETE("/:id/prerequisites/:prerequisiteId", subjectController.RemovePrerequisite)
		}
	}

	// Student record routes. Every mutation after creation runs through the
	// checkout guard, so the write endpoints expect a checkout token in the
	// request body.
	students := authenticated.Group("/students")
	{
		students.GET("", studentController.GetAllStudents)
		students.GET("/:id", studentController.GetStudent)
		students.GET("/enrollment/:enrollmentNumber", studentController.GetStudentByEnrollmentNumber)
		students.GET("/:id/lock", studentController.Checkout)
		students.GET("/:id/subjects", studentController.GetCompletedSubjects)
		students.GET("/:id/eligible-subjects", studentController.GetEligibleSubjects)

		studentsAdmin := students.Group("")
		studentsAdmin.Use(adminOnly)
		{
			studentsAdmin.POST("", studentController.CreateStudent)
			studentsAdmin.PUT("/:id", studentController.UpdateStudent)
			studentsAdmin.PUT("/:id/withdraw", studentController.WithdrawStudent)
			studentsAdmin.POST("/:id/subjects", studentController.CompleteSubject)
		}
	}

	// User management routes, admin only
	users := authenticated.Group("/users")
	users.Use(adminOnly)
	{
		users.POST("", userController.CreateUser)
		users.GET("", userController.GetAllUsers)
		users.GET("/:id", userController.GetUser)
		users.PUT("/:id", userController.UpdateUser)
		users.DELETE("/:id", userController.DeactivateUser)
	}
}
