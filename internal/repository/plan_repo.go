package repository

import (
	"context"
	"errors"

	"gymledger/internal/model"

	"gorm.io/gorm"
)

var (
	ErrPlanNotFound = errors.New("membership plan not found")
	ErrPlanInactive = errors.New("membership plan is not active")
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, plan *model.MembershipPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*model.MembershipPlan, error) {
	var plan model.MembershipPlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetActiveByID is the lookup for new sales: retired plans cannot back a
// new membership, but existing memberships keep referencing them.
func (r *PlanRepository) GetActiveByID(ctx context.Context, id int64) (*model.MembershipPlan, error) {
	plan, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}
	return plan, nil
}

func (r *PlanRepository) ListActive(ctx context.Context) ([]*model.MembershipPlan, error) {
	var plans []*model.MembershipPlan
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&plans).Error
	return plans, err
}
