package model

import (
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// Event types published through the outbox. Downstream consumers build
// invoices and member notifications from these.
const (
	EventMembershipActivated = "membership.activated"
	EventMembershipCancelled = "membership.cancelled"
	EventMembershipFrozen    = "membership.frozen"
	EventMembershipResumed   = "membership.resumed"
	EventMembershipRenewed   = "membership.renewed"
	EventMembershipUpgraded  = "membership.upgraded"
	EventMembershipExpired   = "membership.expired"
	EventPaymentReviewed     = "payment.reviewed"
)

// OutboxMessage is written in the same store transaction as the business
// change it describes, then shipped to Kafka by the outbox sender job.
type OutboxMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageKey string    `gorm:"type:varchar(64);not null" json:"message_key"`
	EventType  string    `gorm:"type:varchar(64);index;not null" json:"event_type"`
	Topic      string    `gorm:"type:varchar(64);not null" json:"topic"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	Status     string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_message"
}
