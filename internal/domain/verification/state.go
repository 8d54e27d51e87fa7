package verification

import "strings"

// Status is the derived verification status.
type Status string

const (
	StatusVerified      Status = "verified"
	StatusPendingReview Status = "pending_review"
	StatusUnverified    Status = "unverified"
	StatusNotApplicable Status = "not_applicable"
)

// KYCStatus refines the identity check for display. Exactly one field is
// true.
type KYCStatus struct {
	NotStarted bool `json:"not_started"`
	InProgress bool `json:"in_progress"`
	Submitted  bool `json:"submitted"`
	Approved   bool `json:"approved"`
	Rejected   bool `json:"rejected"`
}

// State is the verification state derived from one Facts snapshot.
type State struct {
	Role        Role             `json:"role"`
	Status      Status           `json:"status"`
	Checks      map[StepKey]bool `json:"checks"`
	KYCStatus   KYCStatus        `json:"kyc_status"`
	NextStep    *Step            `json:"next_step,omitempty"`
	FetchFailed bool             `json:"fetch_failed,omitempty"`
}

// Derive computes the state. It is a pure function of its input.
func Derive(f Facts) State {
	p := f.Profile
	if p == nil || f.ProfileErr != nil {
		p = &ProfileFacts{}
	}
	k := f.KYC
	if k == nil || f.KYCErr != nil {
		k = &KYCFacts{}
	}
	banks := f.BankAccounts
	if f.BankErr != nil {
		banks = 0
	}

	status := k.Status
	hasFront := strings.TrimSpace(k.IDFrontImageURL) != ""
	hasSelfie := strings.TrimSpace(k.SelfieImageURL) != ""

	checks := map[StepKey]bool{
		StepProfileComplete: strings.TrimSpace(p.Bio) != "" &&
			strings.TrimSpace(p.PrimaryRole) != "" &&
			hasGenre(p.Genres) &&
			strings.TrimSpace(p.AvatarURL) != "",
		StepEmailVerified:    p.EmailVerified,
		StepBankAccountAdded: banks > 0,
		StepKYCSubmitted:     hasFront || status == KYCUnderReview || status == KYCApproved || p.IsVerified,
	}

	ks := deriveKYCStatus(k, p.IsVerified, hasFront, hasSelfie)

	st := State{
		Role:        p.Role,
		Checks:      checks,
		KYCStatus:   ks,
		FetchFailed: f.FetchFailed(),
	}

	switch {
	case p.Role != RoleUnknown && !p.Role.Applicable():
		st.Status = StatusNotApplicable
	case st.FetchFailed:
		st.Status = StatusUnverified
	case p.IsVerified || status == KYCApproved:
		st.Status = StatusVerified
	case ks.Submitted || ks.InProgress:
		st.Status = StatusPendingReview
	default:
		st.Status = StatusUnverified
	}

	for i := range Steps {
		if !checks[Steps[i].Key] {
			step := Steps[i]
			st.NextStep = &step
			break
		}
	}
	return st
}

func deriveKYCStatus(k *KYCFacts, isVerified, hasFront, hasSelfie bool) KYCStatus {
	switch {
	case k.Status == KYCApproved || isVerified:
		return KYCStatus{Approved: true}
	case k.Status == KYCRejected:
		return KYCStatus{Rejected: true}
	case k.Status == KYCUnderReview || k.Status == KYCPending:
		return KYCStatus{Submitted: true}
	case hasFront && !hasSelfie:
		return KYCStatus{InProgress: true}
	default:
		return KYCStatus{NotStarted: true}
	}
}

func hasGenre(genres []string) bool {
	for _, g := range genres {
		if strings.TrimSpace(g) != "" {
			return true
		}
	}
	return false
}

// Blocks reports whether a gated action must be stopped. Strict mode also
// blocks users whose verification is still under review.
func (s State) Blocks(strict bool) bool {
	switch s.Status {
	case StatusUnverified:
		return true
	case StatusPendingReview:
		return strict
	default:
		return false
	}
}

const pendingReviewMessage = "Your verification is under review. This usually takes 1-2 business days; we'll notify you as soon as it's done."

// Message is the user-facing explanation for the current status. It names
// the next step for unverified users and is informational while in review.
func (s State) Message() string {
	switch s.Status {
	case StatusPendingReview:
		return pendingReviewMessage
	case StatusUnverified:
		switch {
		case s.FetchFailed:
			return "We couldn't load your verification status. Please try again in a moment."
		case s.NextStep != nil:
			return s.NextStep.Label + ": " + s.NextStep.Description
		case s.KYCStatus.Rejected:
			return "Your identity verification was not approved. Please upload new documents."
		default:
			return "Verification is required before you can continue."
		}
	}
	return ""
}
