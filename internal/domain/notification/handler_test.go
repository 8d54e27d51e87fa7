package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEnqueuer struct {
	events []Event
	err    error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, ev Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *fakeEnqueuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	svc := NewService(NewPreferencesRepository(db), NewDeviceTokenRepository(db), NewInAppRepository(db))
	queue := &fakeEnqueuer{}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	})

	v1 := r.Group("/api/v1")
	RegisterRoutes(v1, NewHandler(svc), NewPreferencesHandler(svc), NewDeviceTokensHandler(svc), nil)
	RegisterInternalRoutes(v1.Group("/internal"), NewInternalHandler(queue))
	return r, db, queue
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

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.True(t, env.Success, rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func TestHandler_RequiresUser(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	for _, path := range []string{"/api/v1/notifications", "/api/v1/notifications/unread-count", "/api/v1/notifications/preferences", "/api/v1/notifications/device-tokens"} {
		rr := doJSONRequest(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestHandler_InAppLifecycle(t *testing.T) {
	r, db, _ := setupTestRouter(t)
	repo := NewInAppRepository(db)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newInApp(Event{UserID: "u1", Type: TypeBookingConfirmed, Title: fmt.Sprintf("n%d", i)})))
	}

	rr := doJSONRequest(r, http.MethodGet, "/api/v1/notifications?limit=2", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list NotificationListResponse
	decodeData(t, rr, &list)
	assert.Len(t, list.Notifications, 2)
	assert.EqualValues(t, 3, list.Total)
	assert.EqualValues(t, 3, list.UnreadCount)
	assert.Equal(t, "✅", list.Notifications[0].Icon)

	id := list.Notifications[0].ID
	rr = doJSONRequest(r, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d/read", id), "u1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSONRequest(r, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d/read", id), "intruder", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSONRequest(r, http.MethodPatch, "/api/v1/notifications/abc/read", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/notifications/unread-count", "u1", nil)
	var count UnreadCountResponse
	decodeData(t, rr, &count)
	assert.EqualValues(t, 2, count.UnreadCount)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/notifications/read-all", "u1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"updated":2`)

	rr = doJSONRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/%d", id), "u1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = doJSONRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/%d", id), "u1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPreferencesHandler(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodGet, "/api/v1/notifications/preferences", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var prefs PreferencesResponse
	decodeData(t, rr, &prefs)
	assert.True(t, prefs.EmailEnabled)
	assert.True(t, prefs.PushEnabled)
	assert.False(t, prefs.SMSEnabled)

	rr = doJSONRequest(r, http.MethodPatch, "/api/v1/notifications/preferences", "u1", map[string]any{
		"sms_enabled":           true,
		"phone_number":          "+15550000001",
		"booking_notifications": map[string]bool{"email": false},
		"quiet_hours_enabled":   true,
		"quiet_hours_start":     "22:00",
		"quiet_hours_end":       "08:00",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeData(t, rr, &prefs)
	assert.True(t, prefs.SMSEnabled)
	assert.True(t, prefs.EmailEnabled)
	assert.Equal(t, ChannelOverrides{ChannelEmail: false}, prefs.BookingNotifications)
	assert.Equal(t, "22:00", prefs.QuietHoursStart)

	rr = doJSONRequest(r, http.MethodPatch, "/api/v1/notifications/preferences", "u1", map[string]any{"phone_number": "555-1234"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_ERROR")

	rr = doJSONRequest(r, http.MethodPatch, "/api/v1/notifications/preferences", "u1", map[string]any{"quiet_hours_end": "8pm"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodPatch, "/api/v1/notifications/preferences", "u1", map[string]any{"job_notifications": map[string]bool{"in_app": false}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/notifications/preferences/reset", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &prefs)
	assert.False(t, prefs.SMSEnabled)
	assert.False(t, prefs.QuietHoursEnabled)
}

func TestDeviceTokensHandler(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodPost, "/api/v1/notifications/device-tokens", "u1", RegisterDeviceTokenRequest{Token: "fcm-1", Platform: "web", DeviceName: "Chrome"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var dt DeviceTokenResponse
	decodeData(t, rr, &dt)
	assert.True(t, dt.IsActive)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/notifications/device-tokens", "u1", RegisterDeviceTokenRequest{Token: "fcm-2", Platform: "blackberry"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/notifications/device-tokens", "u1", nil)
	var list []DeviceTokenResponse
	decodeData(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Chrome", list[0].DeviceName)

	rr = doJSONRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/device-tokens/%d", dt.ID), "u2", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSONRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/device-tokens/%d", dt.ID), "u1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestInternalHandler_Send(t *testing.T) {
	r, _, queue := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodPost, "/api/v1/internal/notifications", "", SendRequest{
		UserID: "u1",
		Type:   TypeBookingConfirmed,
		Title:  "Booking Confirmed",
		Body:   "See you there",
	})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "queued")
	require.Len(t, queue.events, 1)
	assert.Equal(t, PriorityNormal, queue.events[0].Priority)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/internal/notifications", "", map[string]any{"user_id": "u1", "type": "nope", "title": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/internal/notifications", "", map[string]any{"user_id": "u1", "type": "booking_confirmed"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	queue.err = errors.New("redis down")
	rr = doJSONRequest(r, http.MethodPost, "/api/v1/internal/notifications", "", SendRequest{UserID: "u1", Type: TypeMessageReceived, Title: "Hi"})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Len(t, queue.events, 1)
}
