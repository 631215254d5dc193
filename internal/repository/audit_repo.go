package repository

import (
	"context"

	"gymledger/internal/model"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append records a successful save. Informational only: nothing reads the
// trail back to enforce invariants, so a write here rides along in the
// caller's transaction and never fails one on its own terms.
func (r *AuditRepository) Append(ctx context.Context, tx *gorm.DB, entry *model.AuditEntry) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]*model.AuditEntry, error) {
	var entries []*model.AuditEntry
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
