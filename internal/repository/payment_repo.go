package repository

import (
	"context"
	"errors"

	"gymledger/internal/model"

	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentStateInvalid = errors.New("payment status transition not allowed")
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// UpdateStatus moves the payment from one status to another, applying any
// extra column updates in the same statement. The conditional WHERE on the
// current status makes concurrent reviewers single-winner: the loser sees
// zero rows affected and gets ErrPaymentStateInvalid.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id int64, fromStatus, toStatus string, extra map[string]interface{}) error {
	if !model.CanTransitionPayment(fromStatus, toStatus) {
		return ErrPaymentStateInvalid
	}

	if tx == nil {
		tx = r.db
	}

	updates := map[string]interface{}{
		"status": toStatus,
	}
	for k, v := range extra {
		updates[k] = v
	}

	result := tx.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrPaymentStateInvalid
	}

	return nil
}

func (r *PaymentRepository) ListByMembershipID(ctx context.Context, membershipID int64) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Where("membership_id = ?", membershipID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}
