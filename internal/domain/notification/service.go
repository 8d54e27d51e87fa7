package notification

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service backs the user-facing notification API.
type Service struct {
	prefs  *PreferencesRepository
	tokens *DeviceTokenRepository
	inApp  *InAppRepository
	now    func() time.Time
}

func NewService(prefs *PreferencesRepository, tokens *DeviceTokenRepository, inApp *InAppRepository) *Service {
	return &Service{prefs: prefs, tokens: tokens, inApp: inApp, now: time.Now}
}

// GetPreferences returns the stored preferences, or the defaults when the
// user never saved any.
func (s *Service) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	p, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if p == nil {
		return DefaultPreferences(userID), nil
	}
	return p, nil
}

// UpdatePreferences applies a partial update on top of the current
// preferences.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*Preferences, error) {
	p, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.prefs.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	return p, nil
}

// ResetPreferences drops the stored row; defaults apply from then on.
func (s *Service) ResetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	if err := s.prefs.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("reset preferences: %w", err)
	}
	return DefaultPreferences(userID), nil
}

var validPlatforms = map[string]bool{"web": true, "ios": true, "android": true}

func (s *Service) RegisterDeviceToken(ctx context.Context, userID, token, platform, deviceName string) (*DeviceToken, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if !validPlatforms[platform] {
		return nil, ErrInvalidPlatform
	}

	dt := &DeviceToken{
		UserID:     userID,
		Token:      strings.TrimSpace(token),
		Platform:   platform,
		DeviceName: deviceName,
	}
	if err := s.tokens.Register(ctx, dt); err != nil {
		return nil, fmt.Errorf("register device token: %w", err)
	}
	return dt, nil
}

func (s *Service) ListDeviceTokens(ctx context.Context, userID string) ([]DeviceToken, error) {
	return s.tokens.ListActive(ctx, userID)
}

func (s *Service) DeactivateDeviceToken(ctx context.Context, userID string, id int64) error {
	return s.tokens.Deactivate(ctx, userID, id)
}

// List returns a page of in-app notifications with total and unread counts.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]InAppNotification, int64, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	list, total, err := s.inApp.List(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}

	unread, err := s.inApp.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return list, unread, total, nil
}

func (s *Service) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.inApp.CountUnread(ctx, userID)
}

func (s *Service) MarkAsRead(ctx context.Context, userID string, id int64) error {
	return s.inApp.MarkAsRead(ctx, userID, id, s.now())
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.inApp.MarkAllAsRead(ctx, userID, s.now())
}

func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	return s.inApp.Delete(ctx, userID, id)
}
