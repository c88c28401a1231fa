package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dailyreason/dailyreason/internal/api"
	"github.com/dailyreason/dailyreason/internal/auth"
	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/contentful"
	cmsmocks "github.com/dailyreason/dailyreason/internal/contentful/mocks"
	genmocks "github.com/dailyreason/dailyreason/internal/generation/mocks"
	"github.com/dailyreason/dailyreason/internal/service"
	"github.com/dailyreason/dailyreason/internal/service/mocks"
	"github.com/dailyreason/dailyreason/internal/storage"
	storemocks "github.com/dailyreason/dailyreason/internal/storage/mocks"
	"github.com/dailyreason/dailyreason/internal/sync/coordinator"
)

const testSecret = "invoke-secret"

var testNow = time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)

func doRequest(t *testing.T, h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	// No expectations needed - health check doesn't call service
	server := api.NewServer(mocks.NewMockDailyReasonService(ctrl), testSecret)

	rr := doRequest(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())
}

func TestReadinessEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setupMock      func(*mocks.MockDailyReasonService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "service ready",
			setupMock: func(m *mocks.MockDailyReasonService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "ready",
		},
		{
			name: "service not ready",
			setupMock: func(m *mocks.MockDailyReasonService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(errors.New("database not ready: refused"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "database not ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockDailyReasonService(ctrl)
			tt.setupMock(svc)

			rr := doRequest(t, api.NewServer(svc, testSecret), http.MethodGet, "/readiness", nil)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	rr := doRequest(t, api.NewServer(mocks.NewMockDailyReasonService(ctrl), testSecret), http.MethodGet, "/version", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	for _, key := range []string{"version", "commit", "build_date", "go_version", "platform"} {
		assert.Contains(t, body, key)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockDailyReasonService(ctrl)

	t.Run("not mounted by default", func(t *testing.T) {
		t.Parallel()
		rr := doRequest(t, api.NewServer(svc, testSecret), http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("served when configured", func(t *testing.T) {
		t.Parallel()
		metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# HELP up\n"))
		})
		rr := doRequest(t, api.NewServer(svc, testSecret, api.WithMetricsHandler(metrics)), http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "# HELP")
	})
}

func TestInvokeEndpoint(t *testing.T) {
	t.Parallel()

	record := &storage.Record{
		Key:         storage.DailyReasonKey,
		Reason:      "Ships carefully.",
		GeneratedAt: testNow,
		UpdatedAt:   testNow,
	}

	tests := []struct {
		name           string
		path           string
		mode           string
		headers        map[string]string
		setupMock      func(*mocks.MockDailyReasonService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "anonymous request is rejected without running",
			path:           "/",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"code":401,"message":"Unauthorized"}`,
		},
		{
			name:           "wrong secret is rejected",
			path:           "/daily-reason",
			headers:        map[string]string{auth.HeaderInvokeSecret: "guess"},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"code":401,"message":"Unauthorized"}`,
		},
		{
			name:    "manual invocation returns the stored record",
			path:    "/",
			headers: map[string]string{auth.HeaderInvokeSecret: testSecret},
			setupMock: func(m *mocks.MockDailyReasonService) {
				m.EXPECT().Run(gomock.Any(), string(auth.TriggerManual)).Return(&service.RunResult{Record: record}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"success":true,"data":{"key":"daily_reason","reason":"Ships carefully.",` +
				`"generated_at":"2026-03-14T06:00:00Z","updated_at":"2026-03-14T06:00:00Z"}}`,
		},
		{
			name:    "cms failure is invisible to the caller",
			path:    "/daily-reason",
			headers: map[string]string{auth.HeaderInvokeSecret: testSecret},
			setupMock: func(m *mocks.MockDailyReasonService) {
				m.EXPECT().Run(gomock.Any(), string(auth.TriggerManual)).
					Return(&service.RunResult{Record: record, CMSErr: errors.New("publish failed")}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"success":true,"data":{"key":"daily_reason","reason":"Ships carefully.",` +
				`"generated_at":"2026-03-14T06:00:00Z","updated_at":"2026-03-14T06:00:00Z"}}`,
		},
		{
			name:    "relational failure returns 500",
			path:    "/",
			headers: map[string]string{auth.HeaderInvokeSecret: testSecret},
			setupMock: func(m *mocks.MockDailyReasonService) {
				m.EXPECT().Run(gomock.Any(), string(auth.TriggerManual)).
					Return(nil, errors.New("sync failed: failed to upsert reason: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"sync failed: failed to upsert reason: connection refused"}`,
		},
		{
			name:    "scheduler invocation runs in run mode",
			path:    "/",
			mode:    config.SchedulerTriggerRun,
			headers: map[string]string{auth.HeaderScheduler: "true"},
			setupMock: func(m *mocks.MockDailyReasonService) {
				m.EXPECT().Run(gomock.Any(), string(auth.TriggerScheduler)).Return(&service.RunResult{Record: record}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"success":true,"data":{"key":"daily_reason","reason":"Ships carefully.",` +
				`"generated_at":"2026-03-14T06:00:00Z","updated_at":"2026-03-14T06:00:00Z"}}`,
		},
		{
			name:           "scheduler invocation is a ping in warm mode",
			path:           "/",
			mode:           config.SchedulerTriggerWarm,
			headers:        map[string]string{auth.HeaderScheduler: "true"},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"message":"warm ping"}`,
		},
		{
			name:    "manual invocation runs even in warm mode",
			path:    "/",
			mode:    config.SchedulerTriggerWarm,
			headers: map[string]string{auth.HeaderScheduler: "true", auth.HeaderInvokeSecret: testSecret},
			setupMock: func(m *mocks.MockDailyReasonService) {
				m.EXPECT().Run(gomock.Any(), string(auth.TriggerManual)).Return(&service.RunResult{Record: record}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"success":true,"data":{"key":"daily_reason","reason":"Ships carefully.",` +
				`"generated_at":"2026-03-14T06:00:00Z","updated_at":"2026-03-14T06:00:00Z"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockDailyReasonService(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			var opts []api.ServerOption
			if tt.mode != "" {
				opts = append(opts, api.WithSchedulerTriggerMode(tt.mode))
			}
			server := api.NewServer(svc, testSecret, opts...)

			rr := doRequest(t, server, http.MethodPost, tt.path, tt.headers)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}

func TestInvokeEndpoint_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	rr := doRequest(t, api.NewServer(mocks.NewMockDailyReasonService(ctrl), testSecret),
		http.MethodGet, "/daily-reason", map[string]string{auth.HeaderInvokeSecret: testSecret})
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

// TestInvokeEndpoint_FullPipeline wires the real service and coordinator over mocked sinks.
func TestInvokeEndpoint_FullPipeline(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	generator := genmocks.NewMockGenerator(ctrl)
	store := storemocks.NewMockReasonStore(ctrl)
	cms := cmsmocks.NewMockEntryClient(ctrl)

	coord := coordinator.New(store, cms,
		coordinator.WithClock(func() time.Time { return testNow }),
		coordinator.WithCMSRetry(1, time.Millisecond))
	svc, err := service.New(generator, coord, store, "prompt", "fallback")
	require.NoError(t, err)

	generator.EXPECT().Generate(gomock.Any(), "prompt").Return("Generated.", nil)
	store.EXPECT().UpsertReason(gomock.Any(), storage.DailyReasonKey, "Generated.", testNow).
		Return(&storage.Record{Key: storage.DailyReasonKey, Reason: "Generated.", GeneratedAt: testNow, UpdatedAt: testNow}, nil)
	store.EXPECT().GetEntryLink(gomock.Any(), storage.DailyReasonKey).Return(nil, storage.ErrNotFound)
	cms.EXPECT().CreateEntry(gomock.Any(), contentful.Fields{Title: "#2026-03-14", Body: "Generated."}).
		Return(&contentful.Entry{Sys: contentful.Sys{ID: "created-1", Version: 1}}, nil)
	store.EXPECT().SaveEntryLink(gomock.Any(), storage.DailyReasonKey, "created-1").Return(nil).Times(1)
	cms.EXPECT().PublishEntry(gomock.Any(), "created-1", 1).
		Return(&contentful.Entry{Sys: contentful.Sys{ID: "created-1", Version: 2, PublishedVersion: 1}}, nil)

	server := api.NewServer(svc, testSecret, api.WithMiddlewares(api.DefaultMiddlewares(api.DefaultRequestTimeout)...))

	req := httptest.NewRequestWithContext(context.Background(), http.MethodPost, "/daily-reason", strings.NewReader(""))
	req.Header.Set(auth.HeaderInvokeSecret, testSecret)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body api.InvokeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Data)
	assert.Equal(t, "Generated.", body.Data.Reason)
}
