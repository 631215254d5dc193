package service

import (
	"context"
	"path/filepath"
	"testing"

	"gymledger/internal/config"
	"gymledger/internal/infrastructure/database"
	"gymledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the full schema. WAL
// lets reads on pooled connections proceed while a write transaction is
// open, matching the MySQL behavior the services assume.
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
			SweepBatchSize:    100,
			ReviewLockSeconds: 30,
			OutboxMaxRetry:    5,
		},
	}
}

func createTestPlan(t *testing.T, db *gorm.DB, plan *model.MembershipPlan) *model.MembershipPlan {
	t.Helper()
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func fundWallet(t *testing.T, db *gorm.DB, memberID int64, amount decimal.Decimal) {
	t.Helper()
	ws := NewWalletService(db)
	_, err := ws.Credit(context.Background(), memberID, amount, model.WalletTxTypeManualAdjustment, nil, "test funding", nil)
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func countOutboxEvents(t *testing.T, db *gorm.DB, eventType string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.OutboxMessage{}).Where("event_type = ?", eventType).Count(&n).Error)
	return n
}
