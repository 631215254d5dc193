package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gymledger/internal/model"
	"gymledger/internal/repository"
	"gymledger/pkg/idgen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService derives trainer commission rows from membership
// activation and renewal events.
type CommissionService struct {
	db             *gorm.DB
	commissionRepo *repository.CommissionRepository
	auditRepo      *repository.AuditRepository
}

func NewCommissionService(db *gorm.DB) *CommissionService {
	return &CommissionService{
		db:             db,
		commissionRepo: repository.NewCommissionRepository(db),
		auditRepo:      repository.NewAuditRepository(db),
	}
}

// CalculateInTx inserts the commission row for a membership revenue event.
// Memberships without a trainer assignment or on a zero-rate plan earn
// nothing. A row already present for the same (membership, source) means a
// retried event: that is a harmless no-op, not an error.
func (s *CommissionService) CalculateInTx(ctx context.Context, tx *gorm.DB, m *model.Membership, plan *model.MembershipPlan, source string) error {
	if m.TrainerID == nil {
		return nil
	}
	if plan.CommissionRate.IsZero() {
		return nil
	}

	amount := plan.FinalPrice().Mul(plan.CommissionRate).DivRound(decimal.NewFromInt(100), 2)

	commission := &model.Commission{
		CommissionNo:     idgen.GenerateCommissionNo(),
		TrainerID:        *m.TrainerID,
		MembershipID:     m.ID,
		Source:           source,
		BranchID:         m.BranchID,
		Percentage:       plan.CommissionRate,
		CalculatedAmount: amount,
	}

	created, err := s.commissionRepo.Create(ctx, tx, commission)
	if err != nil {
		return fmt.Errorf("failed to insert commission: %w", err)
	}
	if !created {
		log.Printf("[CommissionService] commission already exists: membershipID=%d source=%s", m.ID, source)
		return nil
	}

	entry := &model.AuditEntry{
		EntityType: "commission",
		EntityID:   commission.ID,
		Action:     "calculated",
		Detail:     fmt.Sprintf("no=%s membership=%d source=%s amount=%s", commission.CommissionNo, m.ID, source, amount),
	}
	return s.auditRepo.Append(ctx, tx, entry)
}

// MarkPaid flips an unpaid commission to paid. Paying twice fails with
// ErrCommissionAlreadyPaid.
func (s *CommissionService) MarkPaid(ctx context.Context, id int64, adminID int64) error {
	now := time.Now()
	err := s.commissionRepo.MarkPaid(ctx, id, map[string]interface{}{
		"is_paid":          true,
		"paid_at":          &now,
		"paid_by_admin_id": &adminID,
	})
	if err != nil {
		return err
	}

	return s.auditRepo.Append(ctx, nil, &model.AuditEntry{
		EntityType: "commission",
		EntityID:   id,
		Action:     "marked_paid",
		ActorID:    &adminID,
	})
}

func (s *CommissionService) ListByTrainer(ctx context.Context, trainerID int64, page, pageSize int) ([]*model.Commission, int64, error) {
	return s.commissionRepo.ListByTrainerID(ctx, trainerID, page, pageSize)
}
