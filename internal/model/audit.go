package model

import (
	"time"
)

// AuditEntry records each successful mutating save, keyed by entity type
// and id. Informational only: no business rule reads it back.
type AuditEntry struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string    `gorm:"type:varchar(32);index:idx_audit_entity;not null" json:"entity_type"`
	EntityID   int64     `gorm:"index:idx_audit_entity;not null" json:"entity_id"`
	Action     string    `gorm:"type:varchar(64);not null" json:"action"`
	Detail     string    `gorm:"type:varchar(512)" json:"detail"`
	ActorID    *int64    `json:"actor_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_log"
}
