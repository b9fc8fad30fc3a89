package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/dashboard-engine/internal/handlers"
	"github.com/GregMSThompson/dashboard-engine/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(middleware.Session)

	dh := handlers.NewDashboardHandlers(deps)

	r.Mount("/dashboard", dh.DashboardRoutes())
	r.Get("/widget-types", dh.GetWidgetTypes)
	return r
}
