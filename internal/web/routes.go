package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/trungnq/frontdesk/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	recognizeHandler := handlers.NewRecognizeHandler(s.service)
	idCardHandler := handlers.NewIDCardHandler(s.service)
	customersHandler := handlers.NewCustomersHandler(s.service, s.store)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/recognize", recognizeHandler.Recognize)
		r.Post("/extract-id", idCardHandler.Extract)

		r.Get("/customers", customersHandler.List)
		r.Get("/customers/{id}", customersHandler.Get)
		r.Put("/customers/{id}", customersHandler.Update)
		r.Post("/customers/identity", customersHandler.SaveIdentity)
	})
}
