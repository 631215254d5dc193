package service

import (
	"context"
	"testing"

	"gymledger/internal/model"
	"gymledger/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommissionDuplicateInsertIsNoOp(t *testing.T) {
	db := newTestDB(t)
	cs := NewCommissionService(db)
	ctx := context.Background()

	trainerID := int64(21)
	plan := &model.MembershipPlan{
		Price:          dec("100.00"),
		DurationDays:   30,
		CommissionRate: dec("8.00"),
	}
	membership := &model.Membership{ID: 501, TrainerID: &trainerID, MemberID: 1}

	// a retried activation event computes the same commission twice
	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return cs.CalculateInTx(ctx, tx, membership, plan, model.CommissionSourceActivation)
		})
		require.NoError(t, err)
	}

	var n int64
	require.NoError(t, db.Model(&model.Commission{}).Where("membership_id = ?", 501).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	commission, err := repository.NewCommissionRepository(db).GetByMembershipAndSource(ctx, 501, model.CommissionSourceActivation)
	require.NoError(t, err)
	assert.True(t, dec("8.00").Equal(commission.CalculatedAmount))
	assert.False(t, commission.IsPaid)
}

func TestCommissionActivationAndRenewalAreSeparate(t *testing.T) {
	db := newTestDB(t)
	cs := NewCommissionService(db)
	ctx := context.Background()

	trainerID := int64(22)
	plan := &model.MembershipPlan{
		Price:          dec("100.00"),
		DurationDays:   30,
		CommissionRate: dec("10.00"),
	}
	membership := &model.Membership{ID: 502, TrainerID: &trainerID, MemberID: 1}

	for _, source := range []string{model.CommissionSourceActivation, model.CommissionSourceRenewal} {
		err := db.Transaction(func(tx *gorm.DB) error {
			return cs.CalculateInTx(ctx, tx, membership, plan, source)
		})
		require.NoError(t, err)
	}

	var n int64
	require.NoError(t, db.Model(&model.Commission{}).Where("membership_id = ?", 502).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestCommissionSkippedWithoutTrainerOrRate(t *testing.T) {
	db := newTestDB(t)
	cs := NewCommissionService(db)
	ctx := context.Background()

	trainerID := int64(23)
	withRate := &model.MembershipPlan{Price: dec("100.00"), CommissionRate: dec("5.00")}
	zeroRate := &model.MembershipPlan{Price: dec("100.00")}

	noTrainer := &model.Membership{ID: 503, MemberID: 1}
	withTrainer := &model.Membership{ID: 504, TrainerID: &trainerID, MemberID: 1}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return cs.CalculateInTx(ctx, tx, noTrainer, withRate, model.CommissionSourceActivation)
	}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return cs.CalculateInTx(ctx, tx, withTrainer, zeroRate, model.CommissionSourceActivation)
	}))

	var n int64
	require.NoError(t, db.Model(&model.Commission{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestCommissionAmountUsesDiscountedPrice(t *testing.T) {
	db := newTestDB(t)
	cs := NewCommissionService(db)
	ctx := context.Background()

	trainerID := int64(24)
	plan := &model.MembershipPlan{
		Price:              dec("200.00"),
		DiscountPercentage: dec("25.00"), // final 150.00
		CommissionRate:     dec("10.00"),
	}
	membership := &model.Membership{ID: 505, TrainerID: &trainerID, MemberID: 1}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return cs.CalculateInTx(ctx, tx, membership, plan, model.CommissionSourceActivation)
	}))

	var commission model.Commission
	require.NoError(t, db.Where("membership_id = ?", 505).First(&commission).Error)
	assert.True(t, dec("15.00").Equal(commission.CalculatedAmount))
	assert.True(t, dec("10.00").Equal(commission.Percentage))
}

func TestMarkPaidExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	cs := NewCommissionService(db)
	ctx := context.Background()

	trainerID := int64(25)
	plan := &model.MembershipPlan{Price: dec("100.00"), CommissionRate: dec("10.00")}
	membership := &model.Membership{ID: 506, TrainerID: &trainerID, MemberID: 1}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return cs.CalculateInTx(ctx, tx, membership, plan, model.CommissionSourceActivation)
	}))

	var commission model.Commission
	require.NoError(t, db.Where("membership_id = ?", 506).First(&commission).Error)

	require.NoError(t, cs.MarkPaid(ctx, commission.ID, 42))

	var paid model.Commission
	require.NoError(t, db.Where("id = ?", commission.ID).First(&paid).Error)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaidByAdminID)
	assert.EqualValues(t, 42, *paid.PaidByAdminID)

	err := cs.MarkPaid(ctx, commission.ID, 43)
	assert.ErrorIs(t, err, repository.ErrCommissionAlreadyPaid)

	err = cs.MarkPaid(ctx, 99999, 42)
	assert.ErrorIs(t, err, repository.ErrCommissionNotFound)
}
