package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/dashboard-engine/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
}
