package routes

import (
	"github.com/go-chi/chi/v5"

	"leadcapture/formbridge/internal/api"
	"leadcapture/formbridge/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, limiter *middleware.RateLimiter, adminSecret []byte) {
	r.Route("/api/v1", func(v1 chi.Router) {
		// Public: rendered forms and the WordPress render bridge
		v1.Group(func(public chi.Router) {
			public.With(limiter.Middleware).Post("/submit/{id}", handlers.Submit())

			public.Group(func(render chi.Router) {
				render.Use(middleware.OptionalAdminMiddleware(adminSecret))
				render.Get("/forms/{id}/render", handlers.RenderForm())
				render.Post("/render/shortcode", handlers.RenderShortcode())
				render.Post("/render/content", handlers.RenderContent())
			})
		})

		// Admin: requires a manage_options token
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminAuthMiddleware(adminSecret))

			admin.Post("/generate", handlers.GenerateForm())
			admin.Post("/refine", handlers.RefineForm())

			admin.Get("/forms", handlers.ListForms())
			admin.Post("/forms", handlers.CreateForm())
			admin.Get("/forms/{id}", handlers.GetForm())
			admin.Put("/forms/{id}", handlers.UpdateForm())
			admin.Delete("/forms/{id}", handlers.DeleteForm())

			admin.Post("/test-connection", handlers.TestConnection())
			admin.Get("/fields", handlers.ListFields())

			admin.Get("/submissions", handlers.ListSubmissions())
			admin.Get("/submissions/stats", handlers.SubmissionStats())
			admin.Get("/submissions/{id}", handlers.GetSubmission())

			admin.Get("/import/sources", handlers.ListImportSources())
			admin.Post("/import", handlers.ImportForm())
			admin.Get("/import/mappings", handlers.ListImportMappings())
			admin.Post("/import/mappings/cleanup", handlers.CleanupImportMappings())
			admin.Post("/deactivate-plugin", handlers.DeactivatePlugin())

			admin.Get("/settings", handlers.GetSettings())
			admin.Post("/settings", handlers.UpdateSettings())

			admin.Post("/admin/jobs/retention", handlers.RunRetention())
			admin.Get("/admin/jobs/status", handlers.RetentionStatus())
		})
	})
}
