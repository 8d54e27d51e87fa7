package verification

import (
	"context"
	"errors"

	"gigbook/internal/domain/notification"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) find(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile returns nil, nil when the user has no profile yet.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*ProfileFacts, error) {
	p, err := r.find(ctx, userID)
	if err != nil || p == nil {
		return nil, err
	}
	return p.facts(), nil
}

// GetContact implements notification.ContactReader.
func (r *ProfileRepository) GetContact(ctx context.Context, userID string) (notification.Contact, error) {
	p, err := r.find(ctx, userID)
	if err != nil || p == nil {
		return notification.Contact{}, err
	}
	return notification.Contact{Email: p.Email, Phone: p.Phone}, nil
}

type BankAccountRepository struct {
	db *gorm.DB
}

func NewBankAccountRepository(db *gorm.DB) *BankAccountRepository {
	return &BankAccountRepository{db: db}
}

func (r *BankAccountRepository) CountActiveBankAccounts(ctx context.Context, userID string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&BankAccount{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&n).Error
	return int(n), err
}

type KYCRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) *KYCRepository {
	return &KYCRepository{db: db}
}

// GetVerificationRecord returns the most recent record, or nil, nil.
func (r *KYCRepository) GetVerificationRecord(ctx context.Context, userID string) (*KYCFacts, error) {
	var rec VerificationRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &KYCFacts{
		IDFrontImageURL: rec.IDFrontImageURL,
		SelfieImageURL:  rec.SelfieImageURL,
		Status:          rec.Status,
	}, nil
}
