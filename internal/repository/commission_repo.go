package repository

import (
	"context"
	"errors"

	"gymledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCommissionNotFound    = errors.New("commission not found")
	ErrCommissionAlreadyPaid = errors.New("commission already marked paid")
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

// Create inserts the commission row unless one already exists for the same
// (membership, source). The unique index does the real enforcement; the
// conflict clause turns a duplicate key into a zero-row insert. Returns
// false when the row already existed, which callers treat as success.
func (r *CommissionRepository) Create(ctx context.Context, tx *gorm.DB, commission *model.Commission) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "membership_id"}, {Name: "source"}},
			DoNothing: true,
		}).
		Create(commission)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *CommissionRepository) GetByID(ctx context.Context, id int64) (*model.Commission, error) {
	var commission model.Commission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&commission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, err
	}
	return &commission, nil
}

func (r *CommissionRepository) GetByMembershipAndSource(ctx context.Context, membershipID int64, source string) (*model.Commission, error) {
	var commission model.Commission
	err := r.db.WithContext(ctx).
		Where("membership_id = ? AND source = ?", membershipID, source).
		First(&commission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, err
	}
	return &commission, nil
}

// MarkPaid flips is_paid false -> true exactly once. A second call loses
// the conditional update and reports the row as already paid.
func (r *CommissionRepository) MarkPaid(ctx context.Context, id int64, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Commission{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrCommissionAlreadyPaid
	}
	return nil
}

func (r *CommissionRepository) ListByTrainerID(ctx context.Context, trainerID int64, page, pageSize int) ([]*model.Commission, int64, error) {
	var commissions []*model.Commission
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Commission{}).Where("trainer_id = ?", trainerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&commissions).Error

	return commissions, total, err
}
