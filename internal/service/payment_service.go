package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gymledger/internal/config"
	"gymledger/internal/infrastructure/lock"
	"gymledger/internal/model"
	"gymledger/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProofURLRequired        = errors.New("proof url must not be empty")
	ErrRejectionReasonRequired = errors.New("rejection reason must not be empty")
)

// PaymentService drives the proof-based payment lifecycle:
// PENDING_PROOF -> PENDING_REVIEW -> CONFIRMED or REJECTED. Review outcomes
// activate or cancel the owning membership in the same store transaction.
type PaymentService struct {
	db                *gorm.DB
	redisClient       *redis.Client
	cfg               *config.Config
	paymentRepo       *repository.PaymentRepository
	outboxRepo        *repository.OutboxRepository
	auditRepo         *repository.AuditRepository
	membershipService *MembershipService
}

func NewPaymentService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *PaymentService {
	return &PaymentService{
		db:                db,
		redisClient:       redisClient,
		cfg:               cfg,
		paymentRepo:       repository.NewPaymentRepository(db),
		outboxRepo:        repository.NewOutboxRepository(db),
		auditRepo:         repository.NewAuditRepository(db),
		membershipService: NewMembershipService(db, cfg),
	}
}

// UploadProof attaches a receipt to a payment awaiting proof and moves it
// to PENDING_REVIEW. Any other starting status is rejected.
func (s *PaymentService) UploadProof(ctx context.Context, paymentID int64, proofURL string) (*model.Payment, error) {
	if proofURL == "" {
		return nil, ErrProofURLRequired
	}

	err := s.paymentRepo.UpdateStatus(ctx, nil, paymentID, model.PaymentStatusPendingProof, model.PaymentStatusPendingReview, map[string]interface{}{
		"proof_url": proofURL,
	})
	if err != nil {
		return nil, err
	}

	if err := s.auditRepo.Append(ctx, nil, &model.AuditEntry{
		EntityType: "payment",
		EntityID:   paymentID,
		Action:     "proof_uploaded",
		Detail:     proofURL,
	}); err != nil {
		return nil, err
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

type ReviewPaymentRequest struct {
	PaymentID       int64
	Approve         bool
	ConfirmedAmount *decimal.Decimal // approve only; defaults to the original amount
	RejectionReason string           // reject only; required
	AdminID         int64
}

// Review settles a payment under admin review. Approval confirms the
// payment and activates the pending membership; rejection cancels it.
// Confirmed and rejected are terminal: reviewing again fails, and two
// concurrent approvals of the same payment have exactly one winner (the
// loser trips the status guard and sees an invalid-state error).
func (s *PaymentService) Review(ctx context.Context, req *ReviewPaymentRequest) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsTerminal() {
		return nil, repository.ErrPaymentStateInvalid
	}
	if !req.Approve && req.RejectionReason == "" {
		return nil, ErrRejectionReasonRequired
	}

	// The DB status guard alone is correct; the lock just keeps a
	// double-submitted review from burning a transaction on the loser.
	if s.redisClient != nil {
		reviewLock := lock.NewPaymentReviewLock(s.redisClient, req.PaymentID, uuid.NewString(), time.Duration(s.cfg.Business.ReviewLockSeconds)*time.Second)
		if err := reviewLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			return nil, fmt.Errorf("review busy, try again: %w", err)
		}
		defer reviewLock.Unlock(ctx)
	}

	if req.Approve {
		err = s.approve(ctx, payment, req)
	} else {
		err = s.reject(ctx, payment, req)
	}
	if err != nil {
		return nil, err
	}

	return s.paymentRepo.GetByID(ctx, req.PaymentID)
}

func (s *PaymentService) approve(ctx context.Context, payment *model.Payment, req *ReviewPaymentRequest) error {
	confirmed := payment.Amount
	if req.ConfirmedAmount != nil {
		confirmed = *req.ConfirmedAmount
	}
	if confirmed.IsNegative() {
		return ErrInvalidAmount
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"confirmed_amount":      confirmed,
			"confirmed_by_admin_id": req.AdminID,
			"paid_at":               &now,
		}
		if err := s.paymentRepo.UpdateStatus(ctx, tx, payment.ID, model.PaymentStatusPendingReview, model.PaymentStatusConfirmed, updates); err != nil {
			return err
		}

		adminID := req.AdminID
		if err := s.membershipService.ActivateFromPayment(ctx, tx, payment, confirmed, &adminID); err != nil {
			return err
		}

		if err := s.enqueueReviewEvent(ctx, tx, payment, model.PaymentStatusConfirmed, confirmed.String()); err != nil {
			return err
		}

		return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
			EntityType: "payment",
			EntityID:   payment.ID,
			Action:     "confirmed",
			Detail:     fmt.Sprintf("confirmed_amount=%s", confirmed),
			ActorID:    &adminID,
		})
	})
	if err != nil {
		return err
	}

	log.Printf("[PaymentService] payment confirmed: no=%s amount=%s", payment.PaymentNo, confirmed)
	return nil
}

func (s *PaymentService) reject(ctx context.Context, payment *model.Payment, req *ReviewPaymentRequest) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"rejection_reason":      req.RejectionReason,
			"confirmed_by_admin_id": req.AdminID,
		}
		if err := s.paymentRepo.UpdateStatus(ctx, tx, payment.ID, model.PaymentStatusPendingReview, model.PaymentStatusRejected, updates); err != nil {
			return err
		}

		adminID := req.AdminID
		if err := s.membershipService.CancelPendingFromRejection(ctx, tx, payment.MembershipID, req.RejectionReason, &adminID); err != nil {
			return err
		}

		if err := s.enqueueReviewEvent(ctx, tx, payment, model.PaymentStatusRejected, req.RejectionReason); err != nil {
			return err
		}

		return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
			EntityType: "payment",
			EntityID:   payment.ID,
			Action:     "rejected",
			Detail:     req.RejectionReason,
			ActorID:    &adminID,
		})
	})
	if err != nil {
		return err
	}

	log.Printf("[PaymentService] payment rejected: no=%s reason=%s", payment.PaymentNo, req.RejectionReason)
	return nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *PaymentService) ListByMembership(ctx context.Context, membershipID int64) ([]*model.Payment, error) {
	return s.paymentRepo.ListByMembershipID(ctx, membershipID)
}

func (s *PaymentService) enqueueReviewEvent(ctx context.Context, tx *gorm.DB, payment *model.Payment, outcome, detail string) error {
	payload := map[string]interface{}{
		"event":         model.EventPaymentReviewed,
		"payment_no":    payment.PaymentNo,
		"membership_id": payment.MembershipID,
		"outcome":       outcome,
		"detail":        detail,
		"occurred_at":   time.Now().Format(time.RFC3339),
	}
	payloadBytes, _ := json.Marshal(payload)

	msg := &model.OutboxMessage{
		MessageKey: payment.PaymentNo,
		EventType:  model.EventPaymentReviewed,
		Topic:      s.cfg.Kafka.Topic.PaymentEvents,
		Payload:    string(payloadBytes),
	}
	return s.outboxRepo.Create(ctx, tx, msg)
}
