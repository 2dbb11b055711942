package constants

// Session and context keys
const (
	SessionCookieName   = "task_session"
	ContextKeyUserID    = "user_id"
	ContextKeyRoles     = "roles"
	ContextKeyRequestID = "request_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

const MinPasswordLength = 8

// Push delivery
const (
	PushNotificationTitle = "New Notification"
	DefaultPushWorkers    = 2
	DefaultPushQueueSize  = 256
)
