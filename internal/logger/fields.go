package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID).
	FieldRequestID = "request_id"

	// FieldJobID is the rendering backend's prompt id for a job.
	FieldJobID = "job_id"

	// FieldComponent is the component/module name.
	FieldComponent = "component"
)

// Metric fields attached to individual entries.
const (
	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldStatus is the operation or HTTP status.
	FieldStatus = "status"

	// FieldCount is a generic count field.
	FieldCount = "count"
)
