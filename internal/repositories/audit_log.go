package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"online-bookstore/internal/models"
)

// AuditLogRepository records administrative actions. Entries are append-only.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create creates a new audit log entry
func (r *AuditLogRepository) Create(req *models.AuditLogCreateRequest) (*models.AuditLog, error) {
	entry := &models.AuditLog{}
	err := r.db.QueryRow(`
		INSERT INTO audit_log (user_id, action, target_type, target_id, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, action, target_type, target_id, details, ip_address, created_at`,
		req.UserID, req.Action, req.TargetType, req.TargetID, req.Details, req.IPAddress, time.Now(),
	).Scan(
		&entry.ID, &entry.UserID, &entry.Action, &entry.TargetType,
		&entry.TargetID, &entry.Details, &entry.IPAddress, &entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log entry: %w", err)
	}

	return entry, nil
}

// GetRecent retrieves the most recent audit entries
func (r *AuditLogRepository) GetRecent(limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, user_id, action, target_type, target_id, details, ip_address, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Action, &entry.TargetType,
			&entry.TargetID, &entry.Details, &entry.IPAddress, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
