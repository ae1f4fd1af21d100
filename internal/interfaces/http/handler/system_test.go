package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/scheduler"
	"github.com/sitestock/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type fakeJobs struct {
	states []scheduler.JobState
	runErr error
	ran    []string
}

func (f *fakeJobs) States() []scheduler.JobState { return f.states }

func (f *fakeJobs) RunNow(name string) error {
	f.ran = append(f.ran, name)
	return f.runErr
}

func systemClient(t *testing.T, h *SystemHandler) *apiClient {
	return newClient(t, nil, func(r gin.IRouter) {
		r.GET("/health", h.Health)
		r.GET("/system/info", h.Info)
		r.GET("/system/jobs", h.Jobs)
		r.POST("/system/jobs/:name/run", h.RunJob)
	})
}

func TestSystemHandler_Health(t *testing.T) {
	var down bool
	db := pingFunc(func(context.Context) error {
		if down {
			return errors.New("connection refused")
		}
		return nil
	})
	api := systemClient(t, NewSystemHandler("sitestock", "1.0.0", db, nil))

	w := api.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "up", body["database"])

	down = true
	w = api.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "down", body["database"])
}

func TestSystemHandler_Info(t *testing.T) {
	api := systemClient(t, NewSystemHandler("sitestock", "1.0.0", nil, nil))

	w := api.do(http.MethodGet, "/system/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	decodeInto(t, w, &info)
	assert.Equal(t, "sitestock", info.Name)
	assert.Equal(t, "1.0.0", info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestSystemHandler_Jobs(t *testing.T) {
	last := time.Date(2026, 5, 1, 2, 0, 0, 0, time.UTC)
	jobs := &fakeJobs{states: []scheduler.JobState{{Name: "reconcile-pending", Schedule: "0 2 * * *", LastRunAt: &last}}}
	api := systemClient(t, NewSystemHandler("sitestock", "1.0.0", nil, jobs))

	w := api.do(http.MethodGet, "/system/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var states []scheduler.JobState
	decodeInto(t, w, &states)
	require.Len(t, states, 1)
	assert.Equal(t, "reconcile-pending", states[0].Name)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"runs", nil, http.StatusOK, ""},
		{"unknown job", scheduler.ErrJobNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"already running", scheduler.ErrJobRunning, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"job fails", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs.runErr = tt.err
			w := api.do(http.MethodPost, "/system/jobs/reconcile-pending/run", nil)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeInto(t, w, nil).Error.Code)
			}
		})
	}
	assert.Len(t, jobs.ran, len(tests))
}

func TestSystemHandler_JobsWithoutScheduler(t *testing.T) {
	api := systemClient(t, NewSystemHandler("sitestock", "1.0.0", nil, nil))

	w := api.do(http.MethodGet, "/system/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/system/jobs/reconcile-pending/run", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decodeInto(t, w, nil).Error.Code)
}

type fakeSigner struct {
	kind, number string
}

func (s *fakeSigner) DownloadURL(_ context.Context, kind, number string) (string, time.Time, error) {
	if number == "PO-404" {
		return "", time.Time{}, shared.NewNotFoundError("document", number)
	}
	s.kind, s.number = kind, number
	return "https://storage.test/" + kind + "/" + number + ".pdf?sig=abc", time.Now().Add(time.Hour), nil
}

func TestDocumentHandler_Download(t *testing.T) {
	signer := &fakeSigner{}
	h := NewDocumentHandler(signer)
	api := newClient(t, nil, func(r gin.IRouter) {
		r.GET("/documents/:kind/:number", h.Download)
	})

	w := api.do(http.MethodGet, "/documents/PO/PO-0007.pdf", nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "https://storage.test/po/PO-0007.pdf?sig=abc", w.Header().Get("Location"))
	assert.Equal(t, "po", signer.kind)
	assert.Equal(t, "PO-0007", signer.number)

	w = api.do(http.MethodGet, "/documents/invoice/INV-1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/documents/po/PO-404", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
