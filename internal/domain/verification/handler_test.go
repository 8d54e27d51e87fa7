package verification

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	gate := NewGate(NewProfileRepository(db), NewBankAccountRepository(db), NewKYCRepository(db), 0, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	})

	v1 := r.Group("/api/v1")
	RegisterRoutes(v1, NewHandler(gate))
	v1.POST("/gigs/:id/apply", RequireVerified(gate, false), func(c *gin.Context) {
		_, ok := c.Get(ContextState)
		c.JSON(http.StatusCreated, gin.H{"state_set": ok})
	})
	return r, db
}

func doJSONRequest(r http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User-ID", userID)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestHandler_Status(t *testing.T) {
	r, db := setupTestRouter(t)
	require.NoError(t, db.Create(&Profile{UserID: "client-1", Role: "CLIENT"}).Error)

	rr := doJSONRequest(r, http.MethodGet, "/api/v1/verification/status", "client-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &resp))
	assert.Equal(t, StatusNotApplicable, resp.Status)
	assert.Len(t, resp.Steps, 4)

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/verification/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_Check(t *testing.T) {
	r, db := setupTestRouter(t)
	require.NoError(t, db.Create(&Profile{UserID: "m1", Role: "MUSICIAN", IsVerified: true}).Error)

	rr := doJSONRequest(r, http.MethodPost, "/api/v1/verification/check", "m1", CheckRequest{Action: "withdraw", Strict: true})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp CheckResponse
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &resp))
	assert.True(t, resp.Allowed)
	assert.Equal(t, StatusVerified, resp.Status)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/verification/check", "m2", CheckRequest{Action: "withdraw"})
	require.Equal(t, http.StatusForbidden, rr.Code)
	env := decode(t, rr)
	assert.Equal(t, "VERIFICATION_REQUIRED", env.Error.Code)

	var blocked BlockedError
	require.NoError(t, json.Unmarshal(env.Error.Details, &blocked))
	assert.Equal(t, "withdraw", blocked.Label)
	require.NotNil(t, blocked.NextStep)
	assert.Equal(t, StepProfileComplete, blocked.NextStep.Key)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/verification/check", "m1", map[string]any{"strict": true})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequireVerified(t *testing.T) {
	r, db := setupTestRouter(t)
	require.NoError(t, db.Create(&Profile{UserID: "ok", Role: "MUSICIAN", IsVerified: true}).Error)
	require.NoError(t, db.Create(&Profile{UserID: "new", Role: "MUSICIAN"}).Error)

	rr := doJSONRequest(r, http.MethodPost, "/api/v1/gigs/7/apply", "ok", nil)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state_set":true`)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/gigs/7/apply", "new", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "/gigs/:id/apply")

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/gigs/7/apply", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
