package repository

import (
	"context"
	"errors"
	"time"

	"gymledger/internal/model"

	"gorm.io/gorm"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrInvalidTransition  = errors.New("membership status transition not allowed")
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Create(ctx context.Context, tx *gorm.DB, m *model.Membership) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(m).Error
}

func (r *MembershipRepository) GetByID(ctx context.Context, id int64) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByRequestID returns nil, nil when no membership carries the key.
// Used for caller idempotency on create.
func (r *MembershipRepository) GetByRequestID(ctx context.Context, requestID string) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// UpdateGuarded applies the given column updates only when the row still
// holds the expected status and version. The status machine is enforced
// here: a target status outside ValidMembershipTransitions never reaches
// the store. RowsAffected disambiguation decides which failure to report.
func (r *MembershipRepository) UpdateGuarded(ctx context.Context, tx *gorm.DB, id int64, fromStatus string, expectedVersion int, updates map[string]interface{}) error {
	if target, ok := updates["status"].(string); ok {
		if !model.CanTransitionMembership(fromStatus, target) {
			return ErrInvalidTransition
		}
	}

	if tx == nil {
		tx = r.db
	}

	updates["version"] = gorm.Expr("version + 1")

	result := tx.WithContext(ctx).
		Model(&model.Membership{}).
		Where("id = ? AND status = ? AND version = ?", id, fromStatus, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != fromStatus {
			return ErrInvalidTransition
		}
		return ErrVersionConflict
	}

	return nil
}

// ListDueForExpiration returns active memberships whose end date has passed.
// Frozen memberships are exempt by status until resumed.
func (r *MembershipRepository) ListDueForExpiration(ctx context.Context, now time.Time, limit int) ([]*model.Membership, error) {
	var memberships []*model.Membership
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", model.MembershipStatusActive, now).
		Limit(limit).
		Find(&memberships).Error
	return memberships, err
}

func (r *MembershipRepository) ListByMemberID(ctx context.Context, memberID int64, page, pageSize int) ([]*model.Membership, int64, error) {
	var memberships []*model.Membership
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Membership{}).Where("member_id = ?", memberID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&memberships).Error

	return memberships, total, err
}
