package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gymledger/internal/config"
	"gymledger/internal/model"
	"gymledger/internal/repository"
	"gymledger/pkg/idgen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrFreezeDateInvalid   = errors.New("freeze start date must not be in the past")
	ErrPaymentShortfall    = errors.New("confirmed amount plus wallet usage does not cover the plan price")
	ErrInvalidPlanDuration = errors.New("plan duration must be at least one day")
)

// MembershipService is the state machine governing membership creation,
// activation, freeze/resume, upgrade and renewal. Every transition commits
// together with its wallet and payment effects in one store transaction.
type MembershipService struct {
	db                *gorm.DB
	cfg               *config.Config
	membershipRepo    *repository.MembershipRepository
	planRepo          *repository.PlanRepository
	paymentRepo       *repository.PaymentRepository
	outboxRepo        *repository.OutboxRepository
	auditRepo         *repository.AuditRepository
	walletService     *WalletService
	commissionService *CommissionService
}

func NewMembershipService(db *gorm.DB, cfg *config.Config) *MembershipService {
	return &MembershipService{
		db:                db,
		cfg:               cfg,
		membershipRepo:    repository.NewMembershipRepository(db),
		planRepo:          repository.NewPlanRepository(db),
		paymentRepo:       repository.NewPaymentRepository(db),
		outboxRepo:        repository.NewOutboxRepository(db),
		auditRepo:         repository.NewAuditRepository(db),
		walletService:     NewWalletService(db),
		commissionService: NewCommissionService(db),
	}
}

type CreateMembershipRequest struct {
	RequestID         string
	MemberID          int64
	PlanID            int64
	BranchID          *int64
	TrainerID         *int64
	Source            string
	StartDate         time.Time // zero value means today
	WalletAmountToUse decimal.Decimal
	PaymentMethod     string
	PaidInFull        bool // in-gym sale with the cash portion collected at the desk
	AutoRenewEnabled  bool
	CreatedByUserID   *int64
}

type CreateMembershipResult struct {
	Membership *model.Membership
	Payment    *model.Payment // nil when no cash portion is owed
}

// CreateMembership creates a membership in PENDING_PAYMENT when part of the
// price still needs proof-based confirmation, or directly ACTIVE when
// wallet plus cash covers the discounted plan price at creation time.
// The request id makes the call idempotent: a replay returns the
// membership created the first time.
func (s *MembershipService) CreateMembership(ctx context.Context, req *CreateMembershipRequest) (*CreateMembershipResult, error) {
	existing, err := s.membershipRepo.GetByRequestID(ctx, req.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to check request id: %w", err)
	}
	if existing != nil {
		return &CreateMembershipResult{Membership: existing}, nil
	}

	plan, err := s.planRepo.GetActiveByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.DurationDays < 1 {
		return nil, ErrInvalidPlanDuration
	}
	if req.WalletAmountToUse.IsNegative() {
		return nil, ErrInvalidAmount
	}

	startDate := dateOnly(req.StartDate)
	if req.StartDate.IsZero() {
		startDate = dateOnly(time.Now())
	}
	endDate := startDate.AddDate(0, 0, plan.DurationDays)

	finalPrice := plan.FinalPrice()

	balance, err := s.walletService.GetBalance(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	walletUse := decimal.Min(req.WalletAmountToUse, balance, finalPrice)
	cashDue := finalPrice.Sub(walletUse)

	membership := &model.Membership{
		MembershipNo:     idgen.GenerateMembershipNo(),
		RequestID:        req.RequestID,
		MemberID:         req.MemberID,
		PlanID:           plan.ID,
		BranchID:         req.BranchID,
		TrainerID:        req.TrainerID,
		Source:           req.Source,
		StartDate:        startDate,
		EndDate:          endDate,
		AutoRenewEnabled: req.AutoRenewEnabled,
		TotalPaid:        decimal.Zero,
		WalletAmountUsed: decimal.Zero,
	}

	paidInFull := cashDue.IsZero() || (req.Source == model.MembershipSourceInGym && req.PaidInFull)
	if paidInFull {
		return s.createActive(ctx, req, membership, plan, walletUse, cashDue)
	}
	return s.createPending(ctx, req, membership, walletUse, cashDue)
}

// createActive builds the fully settled membership: wallet debit, payment
// record, activation and commission commit as one unit or not at all.
func (s *MembershipService) createActive(ctx context.Context, req *CreateMembershipRequest, membership *model.Membership, plan *model.MembershipPlan, walletUse, cashDue decimal.Decimal) (*CreateMembershipResult, error) {
	membership.Status = model.MembershipStatusActive
	membership.TotalPaid = cashDue
	membership.WalletAmountUsed = walletUse

	var payment *model.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepo.Create(ctx, tx, membership); err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}

		if walletUse.IsPositive() {
			ref := membership.MembershipNo
			if _, err := s.walletService.DebitInTx(ctx, tx, req.MemberID, walletUse, model.WalletTxTypeMembershipRenewal, &ref, "wallet payment for membership activation", req.CreatedByUserID); err != nil {
				return err
			}
		}

		if cashDue.IsPositive() {
			now := time.Now()
			confirmed := cashDue
			payment = &model.Payment{
				PaymentNo:          idgen.GeneratePaymentNo(),
				MembershipID:       membership.ID,
				Amount:             cashDue,
				Method:             req.PaymentMethod,
				Status:             model.PaymentStatusConfirmed,
				ConfirmedAmount:    &confirmed,
				ConfirmedByAdminID: req.CreatedByUserID,
				PaidAt:             &now,
			}
			if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}
		}

		if err := s.commissionService.CalculateInTx(ctx, tx, membership, plan, model.CommissionSourceActivation); err != nil {
			return err
		}

		if err := s.enqueueMembershipEvent(ctx, tx, membership, model.EventMembershipActivated); err != nil {
			return err
		}

		return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
			EntityType: "membership",
			EntityID:   membership.ID,
			Action:     "created_active",
			Detail:     fmt.Sprintf("no=%s plan=%d cash=%s wallet=%s", membership.MembershipNo, membership.PlanID, cashDue, walletUse),
			ActorID:    req.CreatedByUserID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[MembershipService] membership activated at creation: no=%s memberID=%d", membership.MembershipNo, membership.MemberID)
	return &CreateMembershipResult{Membership: membership, Payment: payment}, nil
}

// createPending records the intent: the wallet portion is reserved on the
// membership row but only debited when the payment is confirmed, so a
// rejected payment leaves the wallet untouched.
func (s *MembershipService) createPending(ctx context.Context, req *CreateMembershipRequest, membership *model.Membership, walletUse, cashDue decimal.Decimal) (*CreateMembershipResult, error) {
	membership.Status = model.MembershipStatusPendingPayment
	membership.WalletAmountUsed = walletUse

	paymentStatus := model.PaymentStatusPendingProof
	if req.Source == model.MembershipSourceInGym {
		paymentStatus = model.PaymentStatusPendingReview
	}

	payment := &model.Payment{
		PaymentNo: idgen.GeneratePaymentNo(),
		Amount:    cashDue,
		Method:    req.PaymentMethod,
		Status:    paymentStatus,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepo.Create(ctx, tx, membership); err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}

		payment.MembershipID = membership.ID
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
			EntityType: "membership",
			EntityID:   membership.ID,
			Action:     "created_pending",
			Detail:     fmt.Sprintf("no=%s plan=%d cash_due=%s wallet_reserved=%s", membership.MembershipNo, membership.PlanID, cashDue, walletUse),
			ActorID:    req.CreatedByUserID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[MembershipService] membership pending payment: no=%s paymentNo=%s cashDue=%s", membership.MembershipNo, payment.PaymentNo, cashDue)
	return &CreateMembershipResult{Membership: membership, Payment: payment}, nil
}

// ActivateFromPayment moves a pending membership to ACTIVE after its
// payment is confirmed. Runs inside the payment review transaction: the
// wallet debit and the status change commit together or not at all.
func (s *MembershipService) ActivateFromPayment(ctx context.Context, tx *gorm.DB, payment *model.Payment, confirmedAmount decimal.Decimal, adminID *int64) error {
	membership, err := s.membershipRepo.GetByID(ctx, payment.MembershipID)
	if err != nil {
		return err
	}
	if membership.Status != model.MembershipStatusPendingPayment {
		return repository.ErrInvalidTransition
	}

	plan, err := s.planRepo.GetByID(ctx, membership.PlanID)
	if err != nil {
		return err
	}

	finalPrice := plan.FinalPrice()
	walletUse := membership.WalletAmountUsed
	if confirmedAmount.Add(walletUse).LessThan(finalPrice) {
		return ErrPaymentShortfall
	}

	if walletUse.IsPositive() {
		ref := membership.MembershipNo
		if _, err := s.walletService.DebitInTx(ctx, tx, membership.MemberID, walletUse, model.WalletTxTypeMembershipRenewal, &ref, "wallet payment for membership activation", adminID); err != nil {
			return err
		}
	}

	// Cash received beyond the due amount goes back to the wallet.
	cashDue := finalPrice.Sub(walletUse)
	if excess := confirmedAmount.Sub(cashDue); excess.IsPositive() {
		ref := payment.PaymentNo
		if _, err := s.walletService.CreditInTx(ctx, tx, membership.MemberID, excess, model.WalletTxTypeOverpayment, &ref, "overpayment credited to wallet", adminID); err != nil {
			return err
		}
	}

	endDate := membership.StartDate.AddDate(0, 0, plan.DurationDays)
	updates := map[string]interface{}{
		"status":             model.MembershipStatusActive,
		"total_paid":         confirmedAmount,
		"wallet_amount_used": walletUse,
		"end_date":           endDate,
	}
	if err := s.membershipRepo.UpdateGuarded(ctx, tx, membership.ID, model.MembershipStatusPendingPayment, membership.Version, updates); err != nil {
		return err
	}

	membership.Status = model.MembershipStatusActive
	membership.EndDate = endDate
	if err := s.commissionService.CalculateInTx(ctx, tx, membership, plan, model.CommissionSourceActivation); err != nil {
		return err
	}

	if err := s.enqueueMembershipEvent(ctx, tx, membership, model.EventMembershipActivated); err != nil {
		return err
	}

	return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
		EntityType: "membership",
		EntityID:   membership.ID,
		Action:     "activated",
		Detail:     fmt.Sprintf("payment=%s confirmed=%s wallet=%s", payment.PaymentNo, confirmedAmount, walletUse),
		ActorID:    adminID,
	})
}

// CancelPendingFromRejection cancels a pending membership after its
// payment is rejected. The reserved wallet portion was never debited, so
// there is nothing to restore.
func (s *MembershipService) CancelPendingFromRejection(ctx context.Context, tx *gorm.DB, membershipID int64, reason string, adminID *int64) error {
	membership, err := s.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"status": model.MembershipStatusCancelled,
	}
	if err := s.membershipRepo.UpdateGuarded(ctx, tx, membership.ID, model.MembershipStatusPendingPayment, membership.Version, updates); err != nil {
		return err
	}

	membership.Status = model.MembershipStatusCancelled
	if err := s.enqueueMembershipEvent(ctx, tx, membership, model.EventMembershipCancelled); err != nil {
		return err
	}

	return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
		EntityType: "membership",
		EntityID:   membership.ID,
		Action:     "cancelled",
		Detail:     "payment rejected: " + reason,
		ActorID:    adminID,
	})
}

// Freeze suspends an active membership starting at the given date. The end
// date is not touched here; the extension is computed at resume time from
// the actual frozen span.
func (s *MembershipService) Freeze(ctx context.Context, membershipID int64, freezeStart time.Time, actorID *int64) (*model.Membership, error) {
	membership, err := s.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	start := dateOnly(freezeStart)
	if start.Before(dateOnly(time.Now())) {
		return nil, ErrFreezeDateInvalid
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       model.MembershipStatusFrozen,
			"freeze_start": start,
		}
		if err := s.membershipRepo.UpdateGuarded(ctx, tx, membership.ID, model.MembershipStatusActive, membership.Version, updates); err != nil {
			return err
		}

		membership.Status = model.MembershipStatusFrozen
		membership.FreezeStart = &start
		if err := s.enqueueMembershipEvent(ctx, tx, membership, model.EventMembershipFrozen); err != nil {
			return err
		}

		return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
			EntityType: "membership",
			EntityID:   membership.ID,
			Action:     "frozen",
			Detail:     "freeze_start=" + start.Format("2006-01-02"),
			ActorID:    actorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// Resume reactivates a frozen membership and gives the frozen days back:
// the end date moves out by the whole days between freeze start and now,
// date-only arithmetic so repeated freeze/resume cycles cannot drift.
func (s *MembershipService) Resume(ctx context.Context, membershipID int64, actorID *int64) (*model.Membership, error) {
	membership, err := s.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership.Status != model.MembershipStatusFrozen || membership.FreezeStart == nil {
		return nil, repository.ErrInvalidTransition
	}

	// A future-dated freeze that never began gives no days back: the
	// span is clamped at zero so resuming early cannot move the end date
	// backwards.
	freezeEnd := dateOnly(time.Now())
	frozenDays := 0
	if freezeStart := dateOnly(*membership.FreezeStart); freezeEnd.After(freezeStart) {
		frozenDays = daysBetween(freezeStart, freezeEnd)
	}
	newEndDate := membership.EndDate.AddDate(0, 0, frozenDays)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       model.MembershipStatusActive,
			"end_date":     newEndDate,
			"freeze_start": nil,
			"freeze_end":   nil,
		}
		if err := s.membershipRepo.UpdateGuarded(ctx, tx, membership.ID, model.MembershipStatusFrozen, membership.Version, updates); err != nil {
			return err
		}

		membership.Status = model.MembershipStatusActive
		membership.EndDate = newEndDate
		membership.FreezeStart = nil
		membership.FreezeEnd = nil
		if err := s.enqueueMembershipEvent(ctx, tx, membership, model.EventMembershipResumed); err != nil {
			return err
		}

		return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
			EntityType: "membership",
			EntityID:   membership.ID,
			Action:     "resumed",
			Detail:     fmt.Sprintf("frozen_days=%d end_date=%s", frozenDays, newEndDate.Format("2006-01-02")),
			ActorID:    actorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

type UpgradeMembershipRequest struct {
	MembershipID    int64
	NewPlanID       int64
	PaymentMethod   string
	CreatedByUserID *int64
}

// Upgrade moves an active or expired membership onto a new plan for the
// full new-plan price, wallet first and the remainder as a settled cash
// payment. The new period extends from whichever is later, now or the
// current end date, so remaining days are never lost.
func (s *MembershipService) Upgrade(ctx context.Context, req *UpgradeMembershipRequest) (*model.Membership, error) {
	membership, err := s.membershipRepo.GetByID(ctx, req.MembershipID)
	if err != nil {
		return nil, err
	}
	if membership.Status != model.MembershipStatusActive && membership.Status != model.MembershipStatusExpired {
		return nil, repository.ErrInvalidTransition
	}

	plan, err := s.planRepo.GetActiveByID(ctx, req.NewPlanID)
	if err != nil {
		return nil, err
	}

	finalPrice := plan.FinalPrice()
	balance, err := s.walletService.GetBalance(ctx, membership.MemberID)
	if err != nil {
		return nil, err
	}
	walletUse := decimal.Min(balance, finalPrice)
	cashDue := finalPrice.Sub(walletUse)

	extendFrom := membership.EndDate
	if now := dateOnly(time.Now()); now.After(extendFrom) {
		extendFrom = now
	}
	newEndDate := extendFrom.AddDate(0, 0, plan.DurationDays)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if walletUse.IsPositive() {
			ref := membership.MembershipNo
			if _, err := s.walletService.DebitInTx(ctx, tx, membership.MemberID, walletUse, model.WalletTxTypeMembershipUpgrade, &ref, "wallet payment for membership upgrade", req.CreatedByUserID); err != nil {
				return err
			}
		}

		if cashDue.IsPositive() {
			now := time.Now()
			confirmed := cashDue
			payment := &model.Payment{
				PaymentNo:          idgen.GeneratePaymentNo(),
				MembershipID:       membership.ID,
				Amount:             cashDue,
				Method:             req.PaymentMethod,
				Status:             model.PaymentStatusConfirmed,
				ConfirmedAmount:    &confirmed,
				ConfirmedByAdminID: req.CreatedByUserID,
				PaidAt:             &now,
			}
			if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
				return fmt.Errorf("failed to create upgrade payment: %w", err)
			}
		}

		updates := map[string]interface{}{
			"status":             model.MembershipStatusActive,
			"plan_id":            plan.ID,
			"end_date":           newEndDate,
			"total_paid":         membership.TotalPaid.Add(cashDue),
			"wallet_amount_used": membership.WalletAmountUsed.Add(walletUse),
		}
		if err := s.membershipRepo.UpdateGuarded(ctx, tx, membership.ID, membership.Status, membership.Version, updates); err != nil {
			return err
		}

		membership.Status = model.MembershipStatusActive
		membership.PlanID = plan.ID
		membership.EndDate = newEndDate
		membership.TotalPaid = membership.TotalPaid.Add(cashDue)
		membership.WalletAmountUsed = membership.WalletAmountUsed.Add(walletUse)

		if err := s.commissionService.CalculateInTx(ctx, tx, membership, plan, model.CommissionSourceRenewal); err != nil {
			return err
		}

		if err := s.enqueueMembershipEvent(ctx, tx, membership, model.EventMembershipUpgraded); err != nil {
			return err
		}

		return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
			EntityType: "membership",
			EntityID:   membership.ID,
			Action:     "upgraded",
			Detail:     fmt.Sprintf("plan=%d cash=%s wallet=%s end_date=%s", plan.ID, cashDue, walletUse, newEndDate.Format("2006-01-02")),
			ActorID:    req.CreatedByUserID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[MembershipService] membership upgraded: no=%s plan=%d", membership.MembershipNo, plan.ID)
	return membership, nil
}

// RenewInTx renews an active membership on its current plan from wallet
// funds. Used by the expiration sweeper's auto-renew path.
func (s *MembershipService) RenewInTx(ctx context.Context, tx *gorm.DB, membership *model.Membership, plan *model.MembershipPlan) error {
	finalPrice := plan.FinalPrice()

	ref := membership.MembershipNo
	if _, err := s.walletService.DebitInTx(ctx, tx, membership.MemberID, finalPrice, model.WalletTxTypeMembershipRenewal, &ref, "auto renewal from wallet", nil); err != nil {
		return err
	}

	extendFrom := membership.EndDate
	if now := dateOnly(time.Now()); now.After(extendFrom) {
		extendFrom = now
	}
	newEndDate := extendFrom.AddDate(0, 0, plan.DurationDays)

	updates := map[string]interface{}{
		"status":             model.MembershipStatusActive,
		"end_date":           newEndDate,
		"wallet_amount_used": membership.WalletAmountUsed.Add(finalPrice),
	}
	if err := s.membershipRepo.UpdateGuarded(ctx, tx, membership.ID, model.MembershipStatusActive, membership.Version, updates); err != nil {
		return err
	}

	membership.EndDate = newEndDate
	membership.WalletAmountUsed = membership.WalletAmountUsed.Add(finalPrice)

	if err := s.commissionService.CalculateInTx(ctx, tx, membership, plan, model.CommissionSourceRenewal); err != nil {
		return err
	}

	if err := s.enqueueMembershipEvent(ctx, tx, membership, model.EventMembershipRenewed); err != nil {
		return err
	}

	return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
		EntityType: "membership",
		EntityID:   membership.ID,
		Action:     "auto_renewed",
		Detail:     fmt.Sprintf("price=%s end_date=%s", finalPrice, newEndDate.Format("2006-01-02")),
	})
}

// ExpireInTx transitions an active membership past its end date to EXPIRED.
func (s *MembershipService) ExpireInTx(ctx context.Context, tx *gorm.DB, membership *model.Membership) error {
	updates := map[string]interface{}{
		"status": model.MembershipStatusExpired,
	}
	if err := s.membershipRepo.UpdateGuarded(ctx, tx, membership.ID, model.MembershipStatusActive, membership.Version, updates); err != nil {
		return err
	}

	membership.Status = model.MembershipStatusExpired
	if err := s.enqueueMembershipEvent(ctx, tx, membership, model.EventMembershipExpired); err != nil {
		return err
	}

	return s.auditRepo.Append(ctx, tx, &model.AuditEntry{
		EntityType: "membership",
		EntityID:   membership.ID,
		Action:     "expired",
	})
}

func (s *MembershipService) GetMembership(ctx context.Context, id int64) (*model.Membership, error) {
	return s.membershipRepo.GetByID(ctx, id)
}

func (s *MembershipService) ListByMember(ctx context.Context, memberID int64, page, pageSize int) ([]*model.Membership, int64, error) {
	return s.membershipRepo.ListByMemberID(ctx, memberID, page, pageSize)
}

func (s *MembershipService) enqueueMembershipEvent(ctx context.Context, tx *gorm.DB, m *model.Membership, eventType string) error {
	payload := map[string]interface{}{
		"event":         eventType,
		"membership_no": m.MembershipNo,
		"member_id":     m.MemberID,
		"plan_id":       m.PlanID,
		"status":        m.Status,
		"start_date":    m.StartDate.Format(time.RFC3339),
		"end_date":      m.EndDate.Format(time.RFC3339),
		"occurred_at":   time.Now().Format(time.RFC3339),
	}
	payloadBytes, _ := json.Marshal(payload)

	msg := &model.OutboxMessage{
		MessageKey: m.MembershipNo,
		EventType:  eventType,
		Topic:      s.cfg.Kafka.Topic.MembershipEvents,
		Payload:    string(payloadBytes),
	}
	return s.outboxRepo.Create(ctx, tx, msg)
}

// dateOnly truncates to midnight in local time; all lifecycle date
// arithmetic is whole-day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from one date to the next. Both ends
// are normalized to UTC midnight so a DST transition in the local zone
// cannot shorten the span by an hour and truncate away a day.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}
