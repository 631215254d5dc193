package service

import (
	"context"
	"errors"
	"fmt"

	"gymledger/internal/model"
	"gymledger/internal/repository"
	"gymledger/pkg/idgen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
)

// WalletService applies signed balance deltas to member wallets. Every
// successful call appends exactly one immutable ledger row; the cached
// balance and the ledger are written in one store transaction under the
// wallet's version token, so they cannot diverge.
type WalletService struct {
	db         *gorm.DB
	walletRepo *repository.WalletRepository
	auditRepo  *repository.AuditRepository
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{
		db:         db,
		walletRepo: repository.NewWalletRepository(db),
		auditRepo:  repository.NewAuditRepository(db),
	}
}

func (s *WalletService) GetBalance(ctx context.Context, memberID int64) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByMemberID(ctx, nil, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// Credit adds funds to the member's wallet. Always succeeds for a positive
// amount.
func (s *WalletService) Credit(ctx context.Context, memberID int64, amount decimal.Decimal, txType string, referenceID *string, description string, createdBy *int64) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if _, err := s.walletRepo.GetOrCreate(ctx, memberID); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		newBalance, err = s.CreditInTx(ctx, tx, memberID, amount, txType, referenceID, description, createdBy)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// Debit removes funds from the member's wallet. A debit exceeding the
// balance records nothing and fails with ErrInsufficientBalance. On a
// version conflict the debit is retried once from a fresh read before the
// conflict is surfaced to the caller.
func (s *WalletService) Debit(ctx context.Context, memberID int64, amount decimal.Decimal, txType string, referenceID *string, description string, createdBy *int64) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	newBalance, err := s.debitOnce(ctx, memberID, amount, txType, referenceID, description, createdBy)
	if errors.Is(err, repository.ErrVersionConflict) {
		newBalance, err = s.debitOnce(ctx, memberID, amount, txType, referenceID, description, createdBy)
	}
	return newBalance, err
}

func (s *WalletService) debitOnce(ctx context.Context, memberID int64, amount decimal.Decimal, txType string, referenceID *string, description string, createdBy *int64) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		newBalance, err = s.DebitInTx(ctx, tx, memberID, amount, txType, referenceID, description, createdBy)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// CreditInTx is the transactional form used when the credit must commit
// together with other aggregate changes.
func (s *WalletService) CreditInTx(ctx context.Context, tx *gorm.DB, memberID int64, amount decimal.Decimal, txType string, referenceID *string, description string, createdBy *int64) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	wallet, err := s.walletRepo.GetByMemberID(ctx, tx, memberID)
	if err != nil {
		if !errors.Is(err, repository.ErrWalletNotFound) {
			return decimal.Zero, err
		}
		if err := s.walletRepo.Create(ctx, tx, &model.Wallet{MemberID: memberID, Balance: decimal.Zero}); err != nil {
			return decimal.Zero, err
		}
		wallet, err = s.walletRepo.GetByMemberID(ctx, tx, memberID)
		if err != nil {
			return decimal.Zero, err
		}
	}

	return s.applyDelta(ctx, tx, wallet, amount, txType, referenceID, description, createdBy)
}

// DebitInTx is the transactional form used when the debit must commit
// together with other aggregate changes (membership activation, renewal).
// A version conflict inside the enclosing transaction is not retried here;
// it rolls the whole unit back.
func (s *WalletService) DebitInTx(ctx context.Context, tx *gorm.DB, memberID int64, amount decimal.Decimal, txType string, referenceID *string, description string, createdBy *int64) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	wallet, err := s.walletRepo.GetByMemberID(ctx, tx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return decimal.Zero, repository.ErrInsufficientBalance
		}
		return decimal.Zero, err
	}
	if wallet.Balance.LessThan(amount) {
		return decimal.Zero, repository.ErrInsufficientBalance
	}

	return s.applyDelta(ctx, tx, wallet, amount.Neg(), txType, referenceID, description, createdBy)
}

// applyDelta writes the new cached balance under the version token and
// appends the matching ledger row in the same transaction.
func (s *WalletService) applyDelta(ctx context.Context, tx *gorm.DB, wallet *model.Wallet, delta decimal.Decimal, txType string, referenceID *string, description string, createdBy *int64) (decimal.Decimal, error) {
	newBalance := wallet.Balance.Add(delta)

	if err := s.walletRepo.UpdateBalance(ctx, tx, wallet.MemberID, newBalance, wallet.Version); err != nil {
		return decimal.Zero, err
	}

	trans := &model.WalletTransaction{
		TransactionNo:   idgen.GenerateTransactionNo(),
		MemberID:        wallet.MemberID,
		Amount:          delta,
		Type:            txType,
		ReferenceID:     referenceID,
		Description:     description,
		BalanceBefore:   wallet.Balance,
		BalanceAfter:    newBalance,
		CreatedByUserID: createdBy,
	}
	if err := s.walletRepo.CreateTransaction(ctx, tx, trans); err != nil {
		return decimal.Zero, fmt.Errorf("failed to record wallet transaction: %w", err)
	}

	entry := &model.AuditEntry{
		EntityType: "wallet",
		EntityID:   wallet.ID,
		Action:     "balance_changed",
		Detail:     fmt.Sprintf("txn=%s type=%s delta=%s balance=%s", trans.TransactionNo, txType, delta, newBalance),
		ActorID:    createdBy,
	}
	if err := s.auditRepo.Append(ctx, tx, entry); err != nil {
		return decimal.Zero, err
	}

	return newBalance, nil
}

// Adjust applies a signed manual correction: positive credits, negative
// debits. Zero is rejected.
func (s *WalletService) Adjust(ctx context.Context, memberID int64, amount decimal.Decimal, description string, adminID *int64) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.IsPositive() {
		return s.Credit(ctx, memberID, amount, model.WalletTxTypeManualAdjustment, nil, description, adminID)
	}
	return s.Debit(ctx, memberID, amount.Neg(), model.WalletTxTypeManualAdjustment, nil, description, adminID)
}

// UseForSession debits the wallet for a session booking.
func (s *WalletService) UseForSession(ctx context.Context, memberID int64, amount decimal.Decimal, sessionRef string, userID *int64) (decimal.Decimal, error) {
	ref := sessionRef
	return s.Debit(ctx, memberID, amount, model.WalletTxTypeSessionBooking, &ref, "wallet payment for session booking", userID)
}

func (s *WalletService) ListTransactions(ctx context.Context, memberID int64, page, pageSize int) ([]*model.WalletTransaction, int64, error) {
	return s.walletRepo.ListTransactions(ctx, memberID, page, pageSize)
}
