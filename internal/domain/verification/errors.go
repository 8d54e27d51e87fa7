package verification

import (
	"errors"
	"fmt"
)

var (
	ErrBlocked      = errors.New("action blocked by verification")
	ErrStateLoading = errors.New("verification state is still loading")
)

// BlockedError is returned by a guarded action that was not allowed to run.
type BlockedError struct {
	Label    string `json:"action"`
	Status   Status `json:"status"`
	NextStep *Step  `json:"next_step,omitempty"`
	Message  string `json:"message"`
}

func newBlockedError(label string, st State) *BlockedError {
	return &BlockedError{
		Label:    label,
		Status:   st.Status,
		NextStep: st.NextStep,
		Message:  st.Message(),
	}
}

func (e *BlockedError) Error() string {
	if e.NextStep != nil {
		return fmt.Sprintf("%s: blocked (%s), next step %s", e.Label, e.Status, e.NextStep.Key)
	}
	return fmt.Sprintf("%s: blocked (%s)", e.Label, e.Status)
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}
