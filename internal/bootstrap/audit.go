package bootstrap

import "context"

// AuditLog is one operational audit entry, distinct from request logging:
// startup, shutdown and other lifecycle events land here.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
