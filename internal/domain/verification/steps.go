package verification

// StepKey identifies one verification prerequisite.
type StepKey string

const (
	StepProfileComplete  StepKey = "profile_complete"
	StepEmailVerified    StepKey = "email_verified"
	StepBankAccountAdded StepKey = "bank_account_added"
	StepKYCSubmitted     StepKey = "kyc_submitted"
)

// Step is a prerequisite a musician completes before taking gated actions.
type Step struct {
	Key         StepKey `json:"key"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Route       string  `json:"route"`
}

// Steps in the order they are presented. The first unmet one is the next
// step shown to the user.
var Steps = []Step{
	{
		Key:         StepProfileComplete,
		Label:       "Complete your profile",
		Description: "Add a bio, your primary role, at least one genre and a profile photo.",
		Route:       "/profile/edit",
	},
	{
		Key:         StepEmailVerified,
		Label:       "Verify your email",
		Description: "Confirm your email address using the link we sent you.",
		Route:       "/settings/account",
	},
	{
		Key:         StepBankAccountAdded,
		Label:       "Add a bank account",
		Description: "Add a bank account so you can receive payouts.",
		Route:       "/settings/payouts",
	},
	{
		Key:         StepKYCSubmitted,
		Label:       "Verify your identity",
		Description: "Upload a photo of your ID and a selfie for identity verification.",
		Route:       "/verification/identity",
	},
}

// StepByKey returns the step with key k.
func StepByKey(k StepKey) (Step, bool) {
	for _, s := range Steps {
		if s.Key == k {
			return s, true
		}
	}
	return Step{}, false
}
