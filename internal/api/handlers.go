package api

import (
	"log/slog"
	"net/http"

	"github.com/dailyreason/dailyreason/internal/api/common"
	"github.com/dailyreason/dailyreason/internal/auth"
	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/service"
	"github.com/dailyreason/dailyreason/internal/versions"
)

// healthHandler handles GET /health
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, HealthResponse{Status: "healthy"}, http.StatusOK)
}

// readinessHandler handles GET /readiness
func readinessHandler(svc service.DailyReasonService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			slog.Warn("Readiness check failed", "error", err)
			common.WriteErrorResponse(w, "Service not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, ReadinessResponse{Status: "ready"}, http.StatusOK)
	}
}

// versionHandler handles GET /version
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}

// invokeHandler runs the pipeline for an authenticated caller
func invokeHandler(svc service.DailyReasonService, schedulerMode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trigger := auth.TriggerFromContext(r.Context())

		if trigger == auth.TriggerScheduler && schedulerMode == config.SchedulerTriggerWarm {
			slog.Debug("Scheduler ping answered without running")
			common.WriteJSONResponse(w, WarmResponse{Success: true, Message: "warm ping"}, http.StatusOK)
			return
		}

		result, err := svc.Run(r.Context(), string(trigger))
		if err != nil {
			common.WriteErrorResponse(w, err.Error(), http.StatusInternalServerError)
			return
		}

		common.WriteJSONResponse(w, InvokeResponse{Success: true, Data: result.Record}, http.StatusOK)
	}
}
