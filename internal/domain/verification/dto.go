package verification

// StatusResponse is the body of the status endpoint.
type StatusResponse struct {
	State
	Message string `json:"message,omitempty"`
	Steps   []Step `json:"steps"`
}

func newStatusResponse(st State) *StatusResponse {
	return &StatusResponse{State: st, Message: st.Message(), Steps: Steps}
}

// CheckRequest asks whether an action may run now.
type CheckRequest struct {
	Action string `json:"action" validate:"required,max=100"`
	Strict bool   `json:"strict"`
}

// CheckResponse is returned when the action is allowed.
type CheckResponse struct {
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
	Status  Status `json:"status"`
}
