package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MembershipStatusPendingPayment = "PENDING_PAYMENT"
	MembershipStatusActive         = "ACTIVE"
	MembershipStatusFrozen         = "FROZEN"
	MembershipStatusExpired        = "EXPIRED"
	MembershipStatusCancelled      = "CANCELLED"
)

const (
	MembershipSourceOnline = "ONLINE"
	MembershipSourceInGym  = "IN_GYM"
)

// ValidMembershipTransitions enumerates the allowed status moves.
// ACTIVE -> ACTIVE covers renewal and upgrade (same status, new period).
var ValidMembershipTransitions = map[string][]string{
	MembershipStatusPendingPayment: {MembershipStatusActive, MembershipStatusCancelled},
	MembershipStatusActive:         {MembershipStatusActive, MembershipStatusFrozen, MembershipStatusExpired},
	MembershipStatusFrozen:         {MembershipStatusActive},
	MembershipStatusExpired:        {MembershipStatusActive},
}

func CanTransitionMembership(currentStatus, targetStatus string) bool {
	allowed, exists := ValidMembershipTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// Membership is a member's subscription to a plan for a time window.
// Mutated only through the lifecycle service; Version is the optimistic
// lock column, every guarded update bumps it.
type Membership struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MembershipNo     string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"membership_no"`
	RequestID        string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"request_id"` // caller idempotency key
	MemberID         int64           `gorm:"index;not null" json:"member_id"`
	PlanID           int64           `gorm:"index;not null" json:"plan_id"`
	BranchID         *int64          `gorm:"index" json:"branch_id"`
	TrainerID        *int64          `gorm:"index" json:"trainer_id"`
	Source           string          `gorm:"type:varchar(16);not null" json:"source"`
	Status           string          `gorm:"type:varchar(20);index;not null" json:"status"`
	StartDate        time.Time       `gorm:"not null" json:"start_date"`
	EndDate          time.Time       `gorm:"index;not null" json:"end_date"`
	AutoRenewEnabled bool            `gorm:"not null;default:false" json:"auto_renew_enabled"`
	FreezeStart      *time.Time      `json:"freeze_start"`
	FreezeEnd        *time.Time      `json:"freeze_end"`
	TotalPaid        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_paid"`
	WalletAmountUsed decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"wallet_amount_used"`
	Version          int             `gorm:"not null;default:0" json:"version"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Membership) TableName() string {
	return "membership"
}

// IsTerminal reports whether the membership can no longer change status.
func (m *Membership) IsTerminal() bool {
	return m.Status == MembershipStatusCancelled
}
