package job

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gymledger/internal/config"
	"gymledger/internal/infrastructure/database"
	"gymledger/internal/model"
	"gymledger/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{
				MembershipEvents: "gymledger.membership.events",
				PaymentEvents:    "gymledger.payment.events",
			},
		},
		Business: config.BusinessConfig{
			SweepBatchSize: 100,
			OutboxMaxRetry: 5,
		},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// activeMembership creates an active membership on the plan and backdates
// its end date so the sweeper sees it as due.
func activeMembership(t *testing.T, db *gorm.DB, cfg *config.Config, memberID int64, plan *model.MembershipPlan, autoRenew bool) *model.Membership {
	t.Helper()
	ms := service.NewMembershipService(db, cfg)
	ws := service.NewWalletService(db)
	ctx := context.Background()

	price := plan.FinalPrice()
	_, err := ws.Credit(ctx, memberID, price, model.WalletTxTypeManualAdjustment, nil, "test funding", nil)
	require.NoError(t, err)

	result, err := ms.CreateMembership(ctx, &service.CreateMembershipRequest{
		RequestID:         fmt.Sprintf("req-sweep-%s-%d", t.Name(), memberID),
		MemberID:          memberID,
		PlanID:            plan.ID,
		Source:            model.MembershipSourceOnline,
		WalletAmountToUse: price,
		PaymentMethod:     model.PaymentMethodCash,
		AutoRenewEnabled:  autoRenew,
	})
	require.NoError(t, err)
	require.Equal(t, model.MembershipStatusActive, result.Membership.Status)

	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Model(&model.Membership{}).
		Where("id = ?", result.Membership.ID).
		Update("end_date", yesterday).Error)
	result.Membership.EndDate = yesterday
	return result.Membership
}

func TestSweepExpiresPastDueMembership(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	sweeper := NewExpirationSweeper(db, cfg)
	ctx := context.Background()

	plan := &model.MembershipPlan{Name: "expire plan", Price: dec("60.00"), DurationDays: 30, IsActive: true}
	require.NoError(t, db.Create(plan).Error)

	m := activeMembership(t, db, cfg, 601, plan, false)

	result, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExpiredCount)
	assert.Equal(t, 0, result.AutoRenewedCount)
	assert.Equal(t, 0, result.AutoRenewSkippedCount)

	var updated model.Membership
	require.NoError(t, db.Where("id = ?", m.ID).First(&updated).Error)
	assert.Equal(t, model.MembershipStatusExpired, updated.Status)

	// no wallet movement on plain expiration
	var n int64
	require.NoError(t, db.Model(&model.WalletTransaction{}).
		Where("member_id = ? AND type = ?", 601, model.WalletTxTypeMembershipRenewal).
		Count(&n).Error)
	assert.EqualValues(t, 0, n)

	// a second sweep finds nothing
	result, err = sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExpiredCount)
}

func TestSweepAutoRenewsFundedWallet(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	sweeper := NewExpirationSweeper(db, cfg)
	ws := service.NewWalletService(db)
	ctx := context.Background()

	trainerID := int64(31)
	plan := &model.MembershipPlan{Name: "renew plan", Price: dec("60.00"), DurationDays: 30, CommissionRate: dec("10.00"), IsActive: true}
	require.NoError(t, db.Create(plan).Error)

	m := activeMembership(t, db, cfg, 602, plan, true)
	require.NoError(t, db.Model(&model.Membership{}).
		Where("id = ?", m.ID).
		Update("trainer_id", trainerID).Error)

	// fund the renewal
	_, err := ws.Credit(ctx, 602, dec("60.00"), model.WalletTxTypeManualAdjustment, nil, "renewal funds", nil)
	require.NoError(t, err)

	result, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AutoRenewedCount)
	assert.Equal(t, 0, result.ExpiredCount)
	assert.Equal(t, 0, result.AutoRenewSkippedCount)

	var updated model.Membership
	require.NoError(t, db.Where("id = ?", m.ID).First(&updated).Error)
	assert.Equal(t, model.MembershipStatusActive, updated.Status)
	// end date was in the past, so the new period runs from today
	expectedEnd := time.Now().AddDate(0, 0, plan.DurationDays)
	assert.WithinDuration(t, expectedEnd, updated.EndDate, 24*time.Hour)

	balance, err := ws.GetBalance(ctx, 602)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	var renewals int64
	require.NoError(t, db.Model(&model.WalletTransaction{}).
		Where("member_id = ? AND type = ? AND amount < 0", 602, model.WalletTxTypeMembershipRenewal).
		Count(&renewals).Error)
	assert.EqualValues(t, 2, renewals, "activation debit plus renewal debit")

	var commission model.Commission
	require.NoError(t, db.Where("membership_id = ? AND source = ?", m.ID, model.CommissionSourceRenewal).First(&commission).Error)
	assert.True(t, dec("6.00").Equal(commission.CalculatedAmount))

	var events int64
	require.NoError(t, db.Model(&model.OutboxMessage{}).
		Where("event_type = ?", model.EventMembershipRenewed).
		Count(&events).Error)
	assert.EqualValues(t, 1, events)
}

func TestSweepExpiresWhenRenewalUnderfunded(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	sweeper := NewExpirationSweeper(db, cfg)
	ctx := context.Background()

	plan := &model.MembershipPlan{Name: "underfunded plan", Price: dec("60.00"), DurationDays: 30, IsActive: true}
	require.NoError(t, db.Create(plan).Error)

	// wallet was drained by the activation, nothing left for renewal
	m := activeMembership(t, db, cfg, 603, plan, true)

	result, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AutoRenewSkippedCount)
	assert.Equal(t, 1, result.ExpiredCount)
	assert.Equal(t, 0, result.AutoRenewedCount)

	var updated model.Membership
	require.NoError(t, db.Where("id = ?", m.ID).First(&updated).Error)
	assert.Equal(t, model.MembershipStatusExpired, updated.Status)
}

func TestSweepExpiresWhenPlanRetired(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	sweeper := NewExpirationSweeper(db, cfg)
	ws := service.NewWalletService(db)
	ctx := context.Background()

	plan := &model.MembershipPlan{Name: "soon retired", Price: dec("60.00"), DurationDays: 30, IsActive: true}
	require.NoError(t, db.Create(plan).Error)

	m := activeMembership(t, db, cfg, 604, plan, true)
	_, err := ws.Credit(ctx, 604, dec("100.00"), model.WalletTxTypeManualAdjustment, nil, "funds", nil)
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.MembershipPlan{}).
		Where("id = ?", plan.ID).
		Update("is_active", false).Error)

	result, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AutoRenewSkippedCount)
	assert.Equal(t, 1, result.ExpiredCount)

	var updated model.Membership
	require.NoError(t, db.Where("id = ?", m.ID).First(&updated).Error)
	assert.Equal(t, model.MembershipStatusExpired, updated.Status)
}

func TestSweepIgnoresFrozenMemberships(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	sweeper := NewExpirationSweeper(db, cfg)
	ms := service.NewMembershipService(db, cfg)
	ctx := context.Background()

	plan := &model.MembershipPlan{Name: "frozen plan", Price: dec("60.00"), DurationDays: 30, IsActive: true}
	require.NoError(t, db.Create(plan).Error)

	m := activeMembership(t, db, cfg, 605, plan, false)

	_, err := ms.Freeze(ctx, m.ID, time.Now(), nil)
	require.NoError(t, err)

	result, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExpiredCount)

	var updated model.Membership
	require.NoError(t, db.Where("id = ?", m.ID).First(&updated).Error)
	assert.Equal(t, model.MembershipStatusFrozen, updated.Status)
}

// A backlog larger than one page must be fully drained in a single cycle.
func TestSweepDrainsBacklogBeyondBatchSize(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.Business.SweepBatchSize = 2
	sweeper := NewExpirationSweeper(db, cfg)
	ctx := context.Background()

	plan := &model.MembershipPlan{Name: "backlog plan", Price: dec("60.00"), DurationDays: 30, IsActive: true}
	require.NoError(t, db.Create(plan).Error)

	for i := 0; i < 5; i++ {
		activeMembership(t, db, cfg, int64(650+i), plan, false)
	}

	result, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, result.ExpiredCount)

	var remaining int64
	require.NoError(t, db.Model(&model.Membership{}).
		Where("status = ?", model.MembershipStatusActive).
		Count(&remaining).Error)
	assert.EqualValues(t, 0, remaining)
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	sweeper := NewExpirationSweeper(db, cfg)

	plan := &model.MembershipPlan{Name: "cancel plan", Price: dec("60.00"), DurationDays: 30, IsActive: true}
	require.NoError(t, db.Create(plan).Error)
	activeMembership(t, db, cfg, 606, plan, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sweeper.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
