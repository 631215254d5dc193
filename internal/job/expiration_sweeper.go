package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"gymledger/internal/config"
	"gymledger/internal/model"
	"gymledger/internal/repository"
	"gymledger/internal/service"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ExpirationSweeper periodically transitions active memberships past their
// end date. Memberships with auto-renew enabled and a funded wallet are
// renewed in place; everything else expires. Frozen memberships never show
// up in the scan: they are exempt until resumed.
//
// The sweeper is idempotent: it only acts on rows still matching the
// expiration predicate, so a failed cycle is simply retried in full on the
// next tick.
type ExpirationSweeper struct {
	db                *gorm.DB
	cfg               *config.Config
	membershipRepo    *repository.MembershipRepository
	planRepo          *repository.PlanRepository
	membershipService *service.MembershipService
	walletService     *service.WalletService
	batchSize         int
}

type SweepResult struct {
	ExpiredCount          int
	AutoRenewedCount      int
	AutoRenewSkippedCount int
}

func NewExpirationSweeper(db *gorm.DB, cfg *config.Config) *ExpirationSweeper {
	batchSize := cfg.Business.SweepBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExpirationSweeper{
		db:                db,
		cfg:               cfg,
		membershipRepo:    repository.NewMembershipRepository(db),
		planRepo:          repository.NewPlanRepository(db),
		membershipService: service.NewMembershipService(db, cfg),
		walletService:     service.NewWalletService(db),
		batchSize:         batchSize,
	}
}

// Schedule registers the sweep on the given cron spec and starts the
// scheduler. The caller owns stopping it on shutdown.
func (s *ExpirationSweeper) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		result, err := s.RunOnce(ctx)
		if err != nil {
			log.Printf("[ExpirationSweeper] sweep failed: %v", err)
			return
		}
		log.Printf("[ExpirationSweeper] sweep done: expired=%d renewed=%d skipped=%d",
			result.ExpiredCount, result.AutoRenewedCount, result.AutoRenewSkippedCount)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep cron spec %q: %w", spec, err)
	}
	c.Start()
	log.Printf("[ExpirationSweeper] scheduled: %s", spec)
	return c, nil
}

// RunOnce drains every due membership, page by page, until the scan
// comes up short. The shutdown signal is checked between rows; each
// row's transition is its own store transaction, so stopping mid-scan
// never leaves a membership half-updated.
func (s *ExpirationSweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	for {
		memberships, err := s.membershipRepo.ListDueForExpiration(ctx, time.Now(), s.batchSize)
		if err != nil {
			return result, fmt.Errorf("failed to scan due memberships: %w", err)
		}
		if len(memberships) == 0 {
			return result, nil
		}

		log.Printf("[ExpirationSweeper] found %d due memberships", len(memberships))

		progressed := false
		for _, m := range memberships {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}
			if s.processOne(ctx, m, &result) {
				progressed = true
			}
		}

		// Rows whose transition failed stay in the scan window; without
		// progress the next page would return the same rows, so they are
		// left for the next tick.
		if len(memberships) < s.batchSize || !progressed {
			return result, nil
		}
	}
}

// processOne reports whether the membership left the expiration
// predicate (renewed or expired).
func (s *ExpirationSweeper) processOne(ctx context.Context, m *model.Membership, result *SweepResult) bool {
	if m.AutoRenewEnabled {
		if s.tryRenew(ctx, m) {
			result.AutoRenewedCount++
			return true
		}
		result.AutoRenewSkippedCount++
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.membershipService.ExpireInTx(ctx, tx, m)
	})
	if err != nil {
		log.Printf("[ExpirationSweeper] failed to expire membership: no=%s err=%v", m.MembershipNo, err)
		return false
	}
	result.ExpiredCount++
	log.Printf("[ExpirationSweeper] membership expired: no=%s memberID=%d", m.MembershipNo, m.MemberID)
	return true
}

// tryRenew attempts a wallet-funded renewal. Any failure (retired plan,
// insufficient balance, concurrent update) falls back to expiration.
func (s *ExpirationSweeper) tryRenew(ctx context.Context, m *model.Membership) bool {
	plan, err := s.planRepo.GetByID(ctx, m.PlanID)
	if err != nil {
		log.Printf("[ExpirationSweeper] plan lookup failed: no=%s err=%v", m.MembershipNo, err)
		return false
	}
	if !plan.IsActive {
		return false
	}

	balance, err := s.walletService.GetBalance(ctx, m.MemberID)
	if err != nil {
		log.Printf("[ExpirationSweeper] balance lookup failed: no=%s err=%v", m.MembershipNo, err)
		return false
	}
	if balance.LessThan(plan.FinalPrice()) {
		return false
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.membershipService.RenewInTx(ctx, tx, m, plan)
	})
	if err != nil {
		log.Printf("[ExpirationSweeper] auto renew failed: no=%s err=%v", m.MembershipNo, err)
		return false
	}

	log.Printf("[ExpirationSweeper] membership auto renewed: no=%s endDate=%s", m.MembershipNo, m.EndDate.Format("2006-01-02"))
	return true
}
