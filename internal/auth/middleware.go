// Package auth identifies who invoked the pipeline: the platform scheduler or an operator holding the shared secret.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Request headers that identify the caller
const (
	HeaderScheduler    = "x-supabase-cron"
	HeaderInvokeSecret = "x-invoke-secret"
)

// Trigger identifies the kind of caller
type Trigger string

const (
	// TriggerNone means the request carried no valid credential
	TriggerNone Trigger = ""
	// TriggerScheduler means the scheduler marker header was set to "true"
	TriggerScheduler Trigger = "scheduler"
	// TriggerManual means the request carried the shared invoke secret
	TriggerManual Trigger = "manual"
	// TriggerInternal is used for runs started inside the process (scheduler loop, CLI)
	TriggerInternal Trigger = "internal"
)

// Detect returns the trigger for r. A matching secret wins over the scheduler marker.
// An empty secret never matches.
func Detect(r *http.Request, secret string) Trigger {
	if secret != "" {
		provided := r.Header.Get(HeaderInvokeSecret)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1 {
			return TriggerManual
		}
	}
	if r.Header.Get(HeaderScheduler) == "true" {
		return TriggerScheduler
	}
	return TriggerNone
}

type triggerKey struct{}

// WithTrigger returns a copy of ctx carrying t
func WithTrigger(ctx context.Context, t Trigger) context.Context {
	return context.WithValue(ctx, triggerKey{}, t)
}

// TriggerFromContext returns the trigger stored by Middleware, or TriggerNone
func TriggerFromContext(ctx context.Context) Trigger {
	t, _ := ctx.Value(triggerKey{}).(Trigger)
	return t
}

// unauthorizedBody is the fixed 401 payload
type unauthorizedBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Middleware rejects requests that are neither scheduler nor manual invocations.
// Accepted requests carry their Trigger in the context.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			trigger := Detect(r, secret)
			if trigger == TriggerNone {
				slog.Warn("Unauthorized invocation",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path)
				writeUnauthorized(w)
				return
			}

			slog.Debug("Invocation authenticated", "trigger", trigger, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(WithTrigger(r.Context(), trigger)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(unauthorizedBody{
		Code:    http.StatusUnauthorized,
		Message: "Unauthorized",
	}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
