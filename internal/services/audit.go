package services

import (
	"log"

	"online-bookstore/internal/models"
)

// AuditStore provides audit log persistence
type AuditStore interface {
	Create(req *models.AuditLogCreateRequest) (*models.AuditLog, error)
	GetRecent(limit int) ([]*models.AuditLog, error)
}

// AuditService records administrative actions. Recording failures are
// logged and swallowed so an audit write never fails the action itself.
type AuditService struct {
	store AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// Record logs an administrative action
func (s *AuditService) Record(userID int, action, targetType string, targetID int, details, ipAddress string) {
	_, err := s.store.Create(&models.AuditLogCreateRequest{
		UserID:     userID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IPAddress:  ipAddress,
	})
	if err != nil {
		log.Printf("failed to record audit entry %s %s/%d by user %d: %v", action, targetType, targetID, userID, err)
	}
}

// GetRecent retrieves the most recent audit entries
func (s *AuditService) GetRecent(limit int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.GetRecent(limit)
}
