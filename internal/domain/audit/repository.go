package audit

import "context"

type AuditRepository interface {
	Log(ctx context.Context, e Entry) error
}
