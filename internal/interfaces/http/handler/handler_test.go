package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/interfaces/http/dto"
	"github.com/sitestock/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// asUser stores the caller the way JWTAuth does
func asUser(u *identity.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u == nil {
			c.Next()
			return
		}
		c.Set(middleware.JWTUserIDKey, u.ID.String())
		c.Set(middleware.JWTRoleKey, string(u.Role))
		if u.SiteID != nil {
			c.Set(middleware.JWTSiteIDKey, u.SiteID.String())
		}
		c.Next()
	}
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

// newClient builds an engine whose routes are added by mount; every request
// is made as user
func newClient(t *testing.T, user *identity.User, mount func(r gin.IRouter)) *apiClient {
	t.Helper()
	engine := gin.New()
	engine.Use(middleware.RequestID(), asUser(user))
	mount(engine)
	return &apiClient{t: t, engine: engine}
}

func (a *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// decodeInto unmarshals the response envelope, and its data into out when
// out is non-nil
func decodeInto(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out), string(raw.Data))
	}
	return raw.Response
}
