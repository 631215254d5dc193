package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipPlan is immutable once referenced by a membership, except for
// the IsActive flag used to stop selling it.
type MembershipPlan struct {
	ID                       int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                     string          `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	Price                    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationDays             int             `gorm:"not null" json:"duration_days"`
	CommissionRate           decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"commission_rate"`     // percent
	DiscountPercentage       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percentage"` // percent
	IncludedSessionsPerMonth int             `gorm:"not null;default:0" json:"included_sessions_per_month"`
	IsActive                 bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt                time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MembershipPlan) TableName() string {
	return "membership_plan"
}

// FinalPrice applies the plan discount: price * (1 - discount/100).
func (p *MembershipPlan) FinalPrice() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	factor := hundred.Sub(p.DiscountPercentage).Div(hundred)
	return p.Price.Mul(factor).Round(2)
}
