package repository

import (
	"context"
	"path/filepath"
	"testing"

	"gymledger/internal/infrastructure/database"
	"gymledger/internal/model"

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

func TestOutboxRetryBookkeeping(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	msg := &model.OutboxMessage{
		MessageKey: "MEM-1",
		EventType:  model.EventMembershipActivated,
		Topic:      "gymledger.membership.events",
		Payload:    `{"event":"membership.activated"}`,
		Status:     model.OutboxStatusPending,
	}
	require.NoError(t, repo.Create(ctx, nil, msg))

	pending, err := repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.IncrementRetryCount(ctx, msg.ID))
	require.NoError(t, repo.IncrementRetryCount(ctx, msg.ID))

	var reloaded model.OutboxMessage
	require.NoError(t, db.Where("id = ?", msg.ID).First(&reloaded).Error)
	assert.Equal(t, 2, reloaded.RetryCount)
	assert.Equal(t, model.OutboxStatusPending, reloaded.Status)

	require.NoError(t, repo.MarkFailed(ctx, msg.ID))
	require.NoError(t, db.Where("id = ?", msg.ID).First(&reloaded).Error)
	assert.Equal(t, model.OutboxStatusFailed, reloaded.Status)
	assert.Equal(t, 3, reloaded.RetryCount)

	// failed messages drop out of the pending scan
	pending, err = repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxMarkSent(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	msg := &model.OutboxMessage{
		MessageKey: "PAY-1",
		EventType:  model.EventPaymentReviewed,
		Topic:      "gymledger.payment.events",
		Payload:    `{"event":"payment.reviewed"}`,
		Status:     model.OutboxStatusPending,
	}
	require.NoError(t, repo.Create(ctx, nil, msg))
	require.NoError(t, repo.MarkSent(ctx, msg.ID))

	pending, err := repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
