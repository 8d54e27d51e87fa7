package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:notification_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Preferences{}, &DeviceToken{}, &LogEntry{}, &InAppNotification{}))
	return db
}

func TestPreferencesRepository_SaveAndReplace(t *testing.T) {
	repo := NewPreferencesRepository(setupTestDB(t))
	ctx := context.Background()

	got, err := repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	p := DefaultPreferences("u1")
	p.BookingNotifications = ChannelOverrides{ChannelEmail: false}
	require.NoError(t, repo.Save(ctx, p))
	firstID := p.ID

	again := DefaultPreferences("u1")
	again.SMSEnabled = true
	again.PhoneNumber = "+15550000001"
	require.NoError(t, repo.Save(ctx, again))
	assert.Equal(t, firstID, again.ID)

	got, err = repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.SMSEnabled)
	assert.Equal(t, "+15550000001", got.PhoneNumber)
	assert.Nil(t, got.BookingNotifications)

	require.NoError(t, repo.Delete(ctx, "u1"))
	got, err = repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPreferencesRepository_OverridesRoundTrip(t *testing.T) {
	repo := NewPreferencesRepository(setupTestDB(t))
	ctx := context.Background()

	p := DefaultPreferences("u1")
	p.PaymentNotifications = ChannelOverrides{ChannelPush: false, ChannelEmail: true}
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, ChannelOverrides{ChannelPush: false, ChannelEmail: true}, got.PaymentNotifications)
	assert.Equal(t, []Channel{ChannelEmail}, got.EnabledChannels(CategoryPayment))
}

func TestDeviceTokenRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceTokenRepository(db)
	ctx := context.Background()

	a := &DeviceToken{UserID: "u1", Token: "tok-a", Platform: "web"}
	require.NoError(t, repo.Register(ctx, a))
	require.NotZero(t, a.ID)

	// same token from another account moves over
	moved := &DeviceToken{UserID: "u2", Token: "tok-a", Platform: "android"}
	require.NoError(t, repo.Register(ctx, moved))
	assert.Equal(t, a.ID, moved.ID)
	assert.Equal(t, "u2", moved.UserID)

	list, err := repo.ListActive(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.ListActive(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "android", list[0].Platform)

	assert.ErrorIs(t, repo.Deactivate(ctx, "u1", moved.ID), ErrDeviceTokenNotFound)
	require.NoError(t, repo.Deactivate(ctx, "u2", moved.ID))
	list, err = repo.ListActive(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, list)

	// re-registering reactivates
	require.NoError(t, repo.Register(ctx, &DeviceToken{UserID: "u2", Token: "tok-a", Platform: "android"}))
	require.NoError(t, repo.DeactivateToken(ctx, "tok-a"))
	list, err = repo.ListActive(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeviceTokenRepository_DeleteInactive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceTokenRepository(db)
	ctx := context.Background()

	for _, tok := range []string{"fresh", "stale", "off"} {
		require.NoError(t, repo.Register(ctx, &DeviceToken{UserID: "u1", Token: tok, Platform: "web"}))
	}
	require.NoError(t, db.Model(&DeviceToken{}).Where("token = ?", "stale").
		Update("last_used_at", time.Now().AddDate(0, 0, -200)).Error)
	require.NoError(t, repo.DeactivateToken(ctx, "off"))

	n, err := repo.DeleteInactive(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, err := repo.ListActive(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fresh", list[0].Token)
}

func TestLogRepository(t *testing.T) {
	repo := NewLogRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()
	msg := "boom"

	require.NoError(t, repo.Append(ctx, &LogEntry{UserID: "u1", Type: TypeBookingCreated, Channel: ChannelEmail, Status: LogStatusSent, SentAt: &now}))
	require.NoError(t, repo.Append(ctx, &LogEntry{UserID: "u1", Type: TypeBookingCreated, Channel: ChannelSMS, Status: LogStatusFailed, FailedAt: &now, ErrorMessage: &msg, Data: map[string]any{"k": "v"}}))
	require.NoError(t, repo.Append(ctx, &LogEntry{UserID: "u2", Type: TypeBookingCreated, Channel: ChannelEmail, Status: LogStatusSent}))

	entries, err := repo.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ChannelSMS, entries[0].Channel)
	assert.Equal(t, "boom", *entries[0].ErrorMessage)
	assert.Equal(t, "v", entries[0].Data["k"])

	entries, err = repo.ListByUser(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInAppRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInAppRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newInApp(Event{UserID: "u1", Type: TypeMessageReceived, Title: fmt.Sprintf("m%d", i)})))
	}
	require.NoError(t, repo.Create(ctx, newInApp(Event{UserID: "u2", Type: TypeMessageReceived, Title: "other"})))

	list, total, err := repo.List(ctx, "u1", false, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "m2", list[0].Title)
	assert.Equal(t, "💬", list[0].Icon)

	now := time.Now()
	require.NoError(t, repo.MarkAsRead(ctx, "u1", list[0].ID, now))
	assert.ErrorIs(t, repo.MarkAsRead(ctx, "u2", list[0].ID, now), ErrNotificationNotFound)

	unread, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	_, total, err = repo.List(ctx, "u1", true, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	n, err := repo.MarkAllAsRead(ctx, "u1", now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	assert.ErrorIs(t, repo.Delete(ctx, "u2", list[1].ID), ErrNotificationNotFound)
	require.NoError(t, repo.Delete(ctx, "u1", list[1].ID))

	_, total, err = repo.List(ctx, "u1", false, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestInAppRepository_DeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInAppRepository(db)
	ctx := context.Background()
	old := time.Now().AddDate(0, 0, -120)

	oldRead := newInApp(Event{UserID: "u1", Type: TypeMessageReceived, Title: "old read"})
	oldRead.CreatedAt = old
	oldRead.IsRead = true
	oldUnread := newInApp(Event{UserID: "u1", Type: TypeMessageReceived, Title: "old unread"})
	oldUnread.CreatedAt = old
	recent := newInApp(Event{UserID: "u1", Type: TypeMessageReceived, Title: "recent"})
	for _, n := range []*InAppNotification{oldRead, oldUnread, recent} {
		require.NoError(t, repo.Create(ctx, n))
	}

	cutoff := time.Now().AddDate(0, 0, -90)
	deleted, err := repo.DeleteOlderThan(ctx, cutoff, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = repo.DeleteOlderThan(ctx, cutoff, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, total, err := repo.List(ctx, "u1", false, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
