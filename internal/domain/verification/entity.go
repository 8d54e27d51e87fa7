package verification

import "time"

// Profile is the marketplace profile row. Only the columns this service
// reads are mapped.
type Profile struct {
	UserID        string    `gorm:"primaryKey;size:64" json:"user_id"`
	Role          string    `gorm:"size:20;index" json:"role"`
	Bio           string    `gorm:"type:text" json:"bio"`
	PrimaryRole   string    `gorm:"size:100" json:"primary_role"`
	Genres        []string  `gorm:"serializer:json" json:"genres"`
	AvatarURL     string    `gorm:"size:500" json:"avatar_url"`
	Email         string    `gorm:"size:255" json:"email"`
	Phone         string    `gorm:"size:32" json:"phone"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`
	IsVerified    bool      `gorm:"default:false" json:"is_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) facts() *ProfileFacts {
	return &ProfileFacts{
		Bio:           p.Bio,
		PrimaryRole:   p.PrimaryRole,
		Genres:        p.Genres,
		AvatarURL:     p.AvatarURL,
		EmailVerified: p.EmailVerified,
		IsVerified:    p.IsVerified,
		Role:          ParseRole(p.Role),
	}
}

// BankAccount is a payout account. Removed accounts keep their row with
// IsActive=false.
type BankAccount struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;index;not null" json:"user_id"`
	LastFour  string    `gorm:"size:4" json:"last_four"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (BankAccount) TableName() string { return "bank_accounts" }

// VerificationRecord is one identity verification submission.
type VerificationRecord struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	UserID          string          `gorm:"size:64;index;not null" json:"user_id"`
	IDFrontImageURL string          `gorm:"size:500" json:"id_front_image_url"`
	SelfieImageURL  string          `gorm:"size:500" json:"selfie_image_url"`
	Status          KYCRecordStatus `gorm:"size:20;default:'not_started'" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (VerificationRecord) TableName() string { return "verification_records" }
