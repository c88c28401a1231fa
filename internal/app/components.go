package app

import (
	"github.com/dailyreason/dailyreason/internal/db"
	"github.com/dailyreason/dailyreason/internal/scheduler"
	"github.com/dailyreason/dailyreason/internal/service"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Service runs the daily pipeline
	Service service.DailyReasonService

	// Scheduler triggers runs in-process; nil when no rule is configured
	Scheduler *scheduler.Scheduler

	// Database is the database connection; nil when a store was injected
	Database *db.Connection
}
