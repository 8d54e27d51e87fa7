package verification

import "strings"

// Role is the marketplace role of a user.
type Role string

const (
	// RoleUnknown means the profile has not been loaded (or has no role).
	// It is treated as applicable so that nothing is unlocked by accident.
	RoleUnknown  Role = ""
	RoleMusician Role = "MUSICIAN"
	RoleClient   Role = "CLIENT"
	RoleVenue    Role = "VENUE"
	RolePartner  Role = "PARTNER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole normalises a stored role value.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// Applicable reports whether the gate applies to the role.
func (r Role) Applicable() bool {
	return r == RoleUnknown || r == RoleMusician
}

// KYCRecordStatus is the review status of an identity verification record.
type KYCRecordStatus string

const (
	KYCNotStarted  KYCRecordStatus = "not_started"
	KYCUnderReview KYCRecordStatus = "under_review"
	KYCPending     KYCRecordStatus = "pending"
	KYCApproved    KYCRecordStatus = "approved"
	KYCRejected    KYCRecordStatus = "rejected"
)

// ProfileFacts are the profile fields the gate looks at.
type ProfileFacts struct {
	Bio           string
	PrimaryRole   string
	Genres        []string
	AvatarURL     string
	EmailVerified bool
	IsVerified    bool
	Role          Role
}

// KYCFacts are the fields of the latest identity verification record.
type KYCFacts struct {
	IDFrontImageURL string
	SelfieImageURL  string
	Status          KYCRecordStatus
}

// Facts is one snapshot of the three sources. A nil Profile or KYC with a
// nil error means the record does not exist; a non-nil error means it could
// not be loaded.
type Facts struct {
	Profile      *ProfileFacts
	BankAccounts int
	KYC          *KYCFacts

	ProfileErr error
	BankErr    error
	KYCErr     error
}

// FetchFailed reports whether any source could not be loaded.
func (f Facts) FetchFailed() bool {
	return f.ProfileErr != nil || f.BankErr != nil || f.KYCErr != nil
}
