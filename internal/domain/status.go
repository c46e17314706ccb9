package domain

// StatusState is a GitHub commit status state
type StatusState string

const (
	StatePending StatusState = "pending"
	StateSuccess StatusState = "success"
	StateFailure StatusState = "failure"
)

// StatusUpdate is the payload posted to the commit status API
type StatusUpdate struct {
	State       StatusState
	TargetURL   string
	Description string
	Context     string
}

// CommentPayload is the payload posted to the commit comment API
type CommentPayload struct {
	CommitID string
	Position int
	Body     string
}
