package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferencesRepository stores notification preferences.
type PreferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetPreferences returns nil, nil when the user has no row.
func (r *PreferencesRepository) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	var p Preferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save inserts or fully replaces the user's preferences.
func (r *PreferencesRepository) Save(ctx context.Context, p *Preferences) error {
	existing, err := r.GetPreferences(ctx, p.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		err = r.db.WithContext(ctx).Create(p).Error
		if err == nil || !isUniqueViolation(err) {
			return err
		}
		// lost a race with a concurrent insert
		if existing, err = r.GetPreferences(ctx, p.UserID); err != nil {
			return err
		}
		if existing == nil {
			return gorm.ErrRecordNotFound
		}
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete removes the row so that defaults apply again.
func (r *PreferencesRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Preferences{}).Error
}

// DeviceTokenRepository stores push subscriptions.
type DeviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Register upserts a token. A token re-registered from another account moves
// to that account and is reactivated.
func (r *DeviceTokenRepository) Register(ctx context.Context, dt *DeviceToken) error {
	now := time.Now()
	dt.IsActive = true
	dt.LastUsedAt = now

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "device_name", "is_active", "last_used_at"}),
	}).Create(dt).Error
	if err != nil {
		return err
	}

	// ON CONFLICT does not report the existing id on every driver.
	dt.ID = 0
	return r.db.WithContext(ctx).Where("token = ?", dt.Token).First(dt).Error
}

// ListActive returns the user's active tokens, newest first.
func (r *DeviceTokenRepository) ListActive(ctx context.Context, userID string) ([]DeviceToken, error) {
	var out []DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("last_used_at DESC").
		Find(&out).Error
	return out, err
}

// Deactivate disables one of the user's tokens.
func (r *DeviceTokenRepository) Deactivate(ctx context.Context, userID string, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&DeviceToken{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDeviceTokenNotFound
	}
	return nil
}

// DeactivateToken disables a token by value, used when the push provider
// reports it as unregistered.
func (r *DeviceTokenRepository) DeactivateToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&DeviceToken{}).
		Where("token = ?", token).
		Update("is_active", false).Error
}

// DeleteInactive removes tokens that are inactive or unused since before.
func (r *DeviceTokenRepository) DeleteInactive(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_active = ? OR last_used_at < ?", false, before).
		Delete(&DeviceToken{})
	return res.RowsAffected, res.Error
}

// LogRepository is the append-only delivery log.
type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) Append(ctx context.Context, entry *LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *LogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]LogEntry, error) {
	var out []LogEntry
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// InAppRepository stores in-app notifications.
type InAppRepository struct {
	db *gorm.DB
}

func NewInAppRepository(db *gorm.DB) *InAppRepository {
	return &InAppRepository{db: db}
}

func (r *InAppRepository) Create(ctx context.Context, n *InAppNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// List returns a page of the user's notifications and the total count.
func (r *InAppRepository) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]InAppNotification, int64, error) {
	q := r.db.WithContext(ctx).Model(&InAppNotification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []InAppNotification
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *InAppRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&InAppNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *InAppRepository) MarkAsRead(ctx context.Context, userID string, id int64, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&InAppNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *InAppRepository) MarkAllAsRead(ctx context.Context, userID string, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&InAppNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

func (r *InAppRepository) Delete(ctx context.Context, userID string, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&InAppNotification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteOlderThan removes notifications created before cutoff. When readOnly
// is set, unread notifications are kept.
func (r *InAppRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, readOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Where("created_at < ?", cutoff)
	if readOnly {
		q = q.Where("is_read = ?", true)
	}
	res := q.Delete(&InAppNotification{})
	return res.RowsAffected, res.Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
