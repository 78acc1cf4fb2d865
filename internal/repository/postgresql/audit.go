package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepositoryImpl{db: db}
}

// Log implements audit.AuditRepository.
func (r *auditRepositoryImpl) Log(ctx context.Context, e audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_logs (id, user_id, action, table_name, record_id, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := q.Exec(ctx, query, newID(), e.UserID, string(e.Action), e.TableName, e.RecordID, e.IPAddress); err != nil {
		return fmt.Errorf("failed to write audit log %s: %w", e.Action, err)
	}
	return nil
}
