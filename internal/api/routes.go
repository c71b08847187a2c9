package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", handler.Metrics)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Get("/csrf", handler.CSRFToken)
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)
	auth.Post("/password", handler.AuthRequired, handler.ChangePassword)

	intakes := api.Group("/intakes", handler.AuthRequired, handler.PatientOnly)
	intakes.Get("", handler.ListIntakes)
	intakes.Post("/:date", handler.ScheduleIntake)
	intakes.Post("/:date/taken", handler.MarkIntakeTaken)
	intakes.Delete("/:date", handler.RemoveIntake)

	api.Get("/dashboard", handler.AuthRequired, handler.PatientOnly, handler.Dashboard)
	api.Get("/calendar", handler.AuthRequired, handler.PatientOnly, handler.Calendar)

	links := api.Group("/links", handler.AuthRequired, handler.CaretakerOnly)
	links.Get("", handler.ListLinks)
	links.Post("", handler.CreateLink)

	patients := api.Group("/patients", handler.AuthRequired, handler.CaretakerOnly)
	patients.Get("/:id/dashboard", handler.PatientDashboard)
	patients.Get("/:id/calendar", handler.PatientCalendar)

	api.Get("/photos/:owner/:name", handler.AuthRequired, handler.GetPhoto)
	api.Get("/events", handler.AuthRequired, handler.Events)
}
