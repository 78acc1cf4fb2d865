// Package audit writes best-effort audit log entries after a change has
// committed. Failures are logged and never surface to the caller.
package audit

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
)

type Recorder struct {
	repo audit.AuditRepository
}

// NewRecorder returns a recorder; a nil repo makes every call a no-op.
func NewRecorder(repo audit.AuditRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record attributes the entry to the authenticated caller, if any.
func (r *Recorder) Record(ctx context.Context, action audit.Action, table string, recordID string) {
	var userID string
	if claims, err := jwt.ClaimsFromContext(ctx); err == nil {
		userID = claims.UserID
	}
	r.RecordAs(ctx, userID, action, table, recordID)
}

// RecordAs is Record for flows that run before a token exists, like login.
func (r *Recorder) RecordAs(ctx context.Context, userID string, action audit.Action, table string, recordID string) {
	if r == nil || r.repo == nil {
		return
	}

	e := audit.Entry{
		UserID:    nonEmpty(userID),
		Action:    action,
		TableName: table,
		RecordID:  nonEmpty(recordID),
	}
	if ip, ok := audit.ClientIPFromContext(ctx); ok {
		e.IPAddress = &ip
	}

	if err := r.repo.Log(context.WithoutCancel(ctx), e); err != nil {
		slog.Warn("audit log write failed", "action", action, "record_id", recordID, "error", err)
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
