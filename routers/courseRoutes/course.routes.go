package courseRoutes

import (
	controllers "edupay/controllers/course"
	"edupay/middleware"
	validators "edupay/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up public and admin course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/api/courses")

	// Admin CRUD. Registered before "/:id" so "/admin" is not swallowed by
	// the detail route.
	adminGroup := courseGroup.Group("/admin", middleware.JWTMiddleware, middleware.AdminMiddleware)
	adminGroup.Get("/", validators.CourseList(), controllers.AdminListCourses)
	adminGroup.Post("/", validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Patch("/:id", validators.UpdateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", controllers.AdminDeleteCourse)

	// Public catalog
	courseGroup.Get("/list", validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:id", validators.GetCourseDetail(), controllers.GetCourseDetails)

	// The authenticated user's purchases
	userGroup := app.Group("/api/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollments)
}
