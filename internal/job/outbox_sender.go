package job

import (
	"context"
	"log"
	"time"

	"gymledger/internal/config"
	"gymledger/internal/infrastructure/mq"
	"gymledger/internal/model"
	"gymledger/internal/repository"

	"gorm.io/gorm"
)

// OutboxSender drains pending outbox rows to Kafka. Events are written in
// the same store transaction as the business change they describe, so this
// job is the only thing standing between the ledger and the notification/
// invoice consumers downstream.
type OutboxSender struct {
	db         *gorm.DB
	outboxRepo *repository.OutboxRepository
	cfg        *config.Config
	stopCh     chan struct{}
	interval   time.Duration
	batchSize  int
}

func NewOutboxSender(db *gorm.DB, cfg *config.Config) *OutboxSender {
	return &OutboxSender{
		db:         db,
		outboxRepo: repository.NewOutboxRepository(db),
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		interval:   200 * time.Millisecond,
		batchSize:  100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	log.Println("[OutboxSender] started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OutboxSender] shutdown signal received, exiting")
			return
		case <-s.stopCh:
			log.Println("[OutboxSender] stopped")
			return
		case <-ticker.C:
			s.processPendingMessages(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

func (s *OutboxSender) processPendingMessages(ctx context.Context) {
	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		log.Printf("[OutboxSender] failed to fetch pending messages: %v", err)
		return
	}

	for _, msg := range messages {
		s.sendMessage(ctx, msg)
	}
}

func (s *OutboxSender) sendMessage(ctx context.Context, msg *model.OutboxMessage) {
	err := mq.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)
	if err == nil {
		if updateErr := s.outboxRepo.MarkSent(ctx, msg.ID); updateErr != nil {
			log.Printf("[OutboxSender] failed to mark message sent: id=%d err=%v", msg.ID, updateErr)
		}
		return
	}

	log.Printf("[OutboxSender] failed to send message: id=%d event=%s err=%v", msg.ID, msg.EventType, err)

	if msg.RetryCount+1 >= s.cfg.Business.OutboxMaxRetry {
		if err := s.outboxRepo.MarkFailed(ctx, msg.ID); err != nil {
			log.Printf("[OutboxSender] failed to mark message failed: id=%d err=%v", msg.ID, err)
		} else {
			log.Printf("[OutboxSender] message exceeded retry limit, marked failed: id=%d", msg.ID)
		}
		return
	}

	if err := s.outboxRepo.IncrementRetryCount(ctx, msg.ID); err != nil {
		log.Printf("[OutboxSender] failed to bump retry count: id=%d err=%v", msg.ID, err)
	}
}
