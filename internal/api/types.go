// Package api provides common API types and responses.
package api

import "github.com/dailyreason/dailyreason/internal/storage"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string `json:"status"`
}

// InvokeResponse is returned after a successful pipeline run
type InvokeResponse struct {
	Success bool            `json:"success"`
	Data    *storage.Record `json:"data"`
}

// WarmResponse is returned for scheduler pings in warm mode
type WarmResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
