package web

import (
	"github.com/jjaoguedes/facegate/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	faceHandler := handlers.NewFaceHandler(s.service)
	identitiesHandler := handlers.NewIdentitiesHandler(s.service, s.store.Identities())
	reportsHandler := handlers.NewReportsHandler(s.reports)
	healthHandler := handlers.NewHealthHandler(s.store)

	s.router.Get("/health", healthHandler.Check)

	s.router.Post("/face", faceHandler.Recognize)

	s.router.Get("/identities", identitiesHandler.List)
	s.router.Post("/identities", identitiesHandler.Enroll)
	s.router.Post("/identities/reload", identitiesHandler.Reload)

	s.router.Get("/report/weekly", reportsHandler.Weekly)
	s.router.Get("/report/monthly", reportsHandler.Monthly)
}
