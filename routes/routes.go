package routes

import (
	"schooldesk_go/controllers"
	"schooldesk_go/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Initialize controllers
	streamController := &controllers.StreamController{}
	teacherController := &controllers.TeacherController{}
	subjectController := &controllers.SubjectController{}
	slotController := &controllers.ScheduleSlotController{}
	importController := &controllers.TimetableImportController{}
	logController := &controllers.LogController{}
	healthController := controllers.NewHealthController(services.NewHealthService("", ""))

	// API group
	api := app.Group("/api")

	// Health
	api.Get("/health", healthController.GetHealthStatus)

	// Stream management routes
	streams := api.Group("/streams")
	streams.Get("/", streamController.GetStreams)
	streams.Get("/:id", streamController.GetStream)
	streams.Post("/", streamController.CreateStream)
	streams.Put("/:id", streamController.UpdateStream)
	streams.Delete("/:id", streamController.DeleteStream)

	// Teacher management routes
	teachers := api.Group("/teachers")
	teachers.Get("/", teacherController.GetTeachers)
	teachers.Get("/:id", teacherController.GetTeacher)
	teachers.Get("/:id/schedule", teacherController.GetTeacherSchedule)
	teachers.Post("/", teacherController.CreateTeacher)
	teachers.Put("/:id", teacherController.UpdateTeacher)
	teachers.Delete("/:id", teacherController.DeleteTeacher)

	// Subject management routes
	subjects := api.Group("/subjects")
	subjects.Get("/", subjectController.GetSubjects)
	subjects.Get("/:id", subjectController.GetSubject)
	subjects.Post("/", subjectController.CreateSubject)
	subjects.Put("/:id", subjectController.UpdateSubject)
	subjects.Delete("/:id", subjectController.DeleteSubject)

	// Schedule slot routes. Validate is the dry-run endpoint; create and
	// update run the same rules before persisting.
	slots := api.Group("/schedule-slots")
	slots.Get("/", slotController.GetScheduleSlots)
	slots.Post("/validate", slotController.ValidateScheduleSlot)
	slots.Get("/:id", slotController.GetScheduleSlot)
	slots.Post("/", slotController.CreateScheduleSlot)
	slots.Put("/:id", slotController.UpdateScheduleSlot)
	slots.Patch("/:id/deactivate", slotController.DeactivateScheduleSlot)
	slots.Delete("/:id", slotController.DeleteScheduleSlot)

	// Bulk timetable import
	api.Post("/timetable/import", importController.Import)

	// Activity logs
	logs := api.Group("/logs")
	logs.Get("/", logController.GetLogs)
	logs.Get("/archives", logController.GetLogArchives)
	logs.Get("/archives/:id/download", logController.DownloadLogArchive)
}
