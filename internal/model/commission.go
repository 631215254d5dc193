package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CommissionSourceActivation = "ACTIVATION"
	CommissionSourceRenewal    = "RENEWAL"
)

// Commission is the trainer's cut of a membership revenue event.
// The composite unique index enforces at most one row per
// (membership, source); a duplicate insert is a benign no-op.
type Commission struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CommissionNo     string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"commission_no"`
	TrainerID        int64           `gorm:"index;not null" json:"trainer_id"`
	MembershipID     int64           `gorm:"not null;uniqueIndex:idx_membership_source" json:"membership_id"`
	Source           string          `gorm:"type:varchar(16);not null;uniqueIndex:idx_membership_source" json:"source"`
	BranchID         *int64          `gorm:"index" json:"branch_id"`
	Percentage       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	CalculatedAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"calculated_amount"`
	IsPaid           bool            `gorm:"not null;default:false" json:"is_paid"`
	PaidAt           *time.Time      `json:"paid_at"`
	PaidByAdminID    *int64          `json:"paid_by_admin_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Commission) TableName() string {
	return "commission"
}
