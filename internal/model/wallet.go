package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a member's prepaid balance.
// Balance is the cached running total of the member's transaction log; the
// two are written inside one store transaction so they never diverge.
// Version is the optimistic lock column.
type Wallet struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID  int64           `gorm:"uniqueIndex;not null" json:"member_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"balance"`
	Version   int             `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallet"
}

const (
	WalletTxTypeOverpayment       = "OVERPAYMENT"
	WalletTxTypeSessionBooking    = "SESSION_BOOKING"
	WalletTxTypeManualAdjustment  = "MANUAL_ADJUSTMENT"
	WalletTxTypeMembershipRenewal = "MEMBERSHIP_RENEWAL"
	WalletTxTypeRefund            = "REFUND"
	WalletTxTypeMembershipUpgrade = "MEMBERSHIP_UPGRADE"
	WalletTxTypeAddOnPurchase     = "ADDON_PURCHASE"
)

// WalletTransaction is the wallet ledger: append only, never updated or deleted.
// BalanceBefore/BalanceAfter are recorded for reconciliation: the sum of
// Amount over a member's rows must always equal the cached wallet balance.
type WalletTransaction struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo   string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"`
	MemberID        int64           `gorm:"index;not null" json:"member_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"` // signed: credit > 0, debit < 0
	Type            string          `gorm:"type:varchar(32);not null" json:"type"`
	ReferenceID     *string         `gorm:"type:varchar(64);index" json:"reference_id"`
	Description     string          `gorm:"type:varchar(256)" json:"description"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"balance_before"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"balance_after"`
	CreatedByUserID *int64          `json:"created_by_user_id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transaction"
}
