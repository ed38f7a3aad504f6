package constants

const (
	// ContextKeyIdentity is the gin context key holding the RequestIdentity.
	ContextKeyIdentity = "identity"
	// ContextKeyRequestID is the gin context key holding the request id.
	ContextKeyRequestID = "request_id"
	// ContextKeyResourceID is the gin context key holding the parsed :id path parameter.
	ContextKeyResourceID = "resource_id"
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"

	// Pagination defaults for task listing
	MinPage         = 1
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// DateLayout is the wire format of calendar dates.
	DateLayout = "2006-01-02"

	// DigestJobName identifies the overdue summary job and its run-lock.
	DigestJobName = "daily-overdue-summary"
)
