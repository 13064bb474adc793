package events

// Lifecycle tags carried by progress records. Every activity emits a started
// record before its side effect and exactly one of completed/failed after.
const (
	EventActivityStarted   = "activity_started"
	EventActivityCompleted = "activity_completed"
	EventActivityFailed    = "activity_failed"
)

// Record is one immutable progress message for a workflow run. Records flow
// from the worker through Kafka into the in-memory store; the same shape is
// accepted on the direct-push HTTP path.
type Record struct {
	WorkflowID string `json:"workflowId"`
	RunID      string `json:"runId"`
	Event      string `json:"event"`
	Step       string `json:"step"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}
