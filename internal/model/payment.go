package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPendingProof  = "PENDING_PROOF"
	PaymentStatusPendingReview = "PENDING_REVIEW"
	PaymentStatusConfirmed     = "CONFIRMED"
	PaymentStatusRejected      = "REJECTED"
)

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
	PaymentMethodGateway  = "GATEWAY"
)

// CONFIRMED and REJECTED are terminal: they map to nothing.
var ValidPaymentTransitions = map[string][]string{
	PaymentStatusPendingProof:  {PaymentStatusPendingReview},
	PaymentStatusPendingReview: {PaymentStatusConfirmed, PaymentStatusRejected},
}

func CanTransitionPayment(currentStatus, targetStatus string) bool {
	allowed, exists := ValidPaymentTransitions[currentStatus]
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

// Payment tracks a proof-based payment attached to a membership.
// ConfirmedAmount is only ever set on CONFIRMED.
type Payment struct {
	ID                 int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentNo          string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"payment_no"`
	MembershipID       int64            `gorm:"index;not null" json:"membership_id"`
	Amount             decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method             string           `gorm:"type:varchar(16);not null" json:"method"`
	Status             string           `gorm:"type:varchar(20);index;not null" json:"status"`
	ProofURL           *string          `gorm:"type:varchar(512)" json:"proof_url"`
	ConfirmedAmount    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"confirmed_amount"`
	RejectionReason    *string          `gorm:"type:varchar(256)" json:"rejection_reason"`
	ConfirmedByAdminID *int64           `json:"confirmed_by_admin_id"`
	PaidAt             *time.Time       `json:"paid_at"`
	CreatedAt          time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}

// IsTerminal reports whether the payment has reached a final decision.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusConfirmed || p.Status == PaymentStatusRejected
}
