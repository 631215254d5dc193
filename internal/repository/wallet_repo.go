package repository

import (
	"context"
	"errors"

	"gymledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrVersionConflict     = errors.New("optimistic lock conflict, reload and retry")
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByMemberID(ctx context.Context, tx *gorm.DB, memberID int64) (*model.Wallet, error) {
	if tx == nil {
		tx = r.db
	}
	var wallet model.Wallet
	err := tx.WithContext(ctx).Where("member_id = ?", memberID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *WalletRepository) Create(ctx context.Context, tx *gorm.DB, wallet *model.Wallet) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}},
			DoNothing: true,
		}).
		Create(wallet).Error
}

// GetOrCreate returns the member's wallet, creating an empty one on first
// touch. The insert is conflict-tolerant so concurrent first touches are safe.
func (r *WalletRepository) GetOrCreate(ctx context.Context, memberID int64) (*model.Wallet, error) {
	wallet, err := r.GetByMemberID(ctx, nil, memberID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return nil, err
	}

	newWallet := &model.Wallet{
		MemberID: memberID,
		Balance:  decimal.Zero,
	}
	if err := r.Create(ctx, nil, newWallet); err != nil {
		return nil, err
	}

	return r.GetByMemberID(ctx, nil, memberID)
}

// UpdateBalance writes the new balance guarded by the version read at load
// time. A stale version means a concurrent writer won; the caller must
// reload and retry, nothing is silently overwritten.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx *gorm.DB, memberID int64, newBalance decimal.Decimal, expectedVersion int) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Wallet{}).
		Where("member_id = ? AND version = ?", memberID, expectedVersion).
		Updates(map[string]interface{}{
			"balance": newBalance,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByMemberID(ctx, tx, memberID); err != nil {
			return err
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *WalletRepository) CreateTransaction(ctx context.Context, tx *gorm.DB, trans *model.WalletTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(trans).Error
}

func (r *WalletRepository) ListTransactions(ctx context.Context, memberID int64, page, pageSize int) ([]*model.WalletTransaction, int64, error) {
	var transactions []*model.WalletTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.WalletTransaction{}).Where("member_id = ?", memberID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}

// SumTransactions recomputes the balance from the ledger. Used for
// reconciliation checks against the cached wallet balance.
func (r *WalletRepository) SumTransactions(ctx context.Context, memberID int64) (decimal.Decimal, error) {
	var transactions []*model.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Find(&transactions).Error
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range transactions {
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}
