package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/shopspring/decimal"
)

// maxAmountExponent деньги хранятся с точностью до копеек.
const maxAmountExponent = -2

type WalletService struct {
	uow        uow.UOW
	userRepo   UserRepository
	walletRepo WalletTransactionRepository
}

func NewWalletService(u uow.UOW) (*WalletService, error) {
	userRepo, err := connRepo[UserRepository](u, repoargs.UserRepoName)
	if err != nil {
		return nil, err
	}
	walletRepo, err := connRepo[WalletTransactionRepository](u, repoargs.WalletTransactionRepoName)
	if err != nil {
		return nil, err
	}
	return &WalletService{
		uow:        u,
		userRepo:   userRepo,
		walletRepo: walletRepo,
	}, nil
}

type WalletOperationResult struct {
	Transaction  *domain.WalletTransaction
	BalanceAfter decimal.Decimal
}

func (s *WalletService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err //nolint:wrapcheck
	}
	return user.WalletBalance, nil
}

// Deposit пополняет кошелек юзера.
func (s *WalletService) Deposit(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
) (*WalletOperationResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	var result *WalletOperationResult
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		balance, t, err := applyWalletChange(c, tx, userID, domain.WalletTransactionDeposit, amount)
		if err != nil {
			return err
		}
		result = &WalletOperationResult{Transaction: t, BalanceAfter: balance}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("deposit: %w", txErr)
	}
	return result, nil
}

// Withdraw выводит средства с кошелька. Если средств недостаточно - domain.ErrInsufficientFunds.
func (s *WalletService) Withdraw(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
) (*WalletOperationResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}
	var result *WalletOperationResult
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := txRepo[UserRepository](tx, repoargs.UserRepoName)
		if repoErr != nil {
			return repoErr
		}
		balance, lockErr := userRepo.LockBalance(c, userID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}
		balanceAfter, t, err := applyWalletChange(c, tx, userID, domain.WalletTransactionWithdraw, amount)
		if err != nil {
			return err
		}
		result = &WalletOperationResult{Transaction: t, BalanceAfter: balanceAfter}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("withdraw: %w", txErr)
	}
	return result, nil
}

// History история операций кошелька, новые первыми.
func (s *WalletService) History(ctx context.Context, userID int64) ([]domain.WalletTransaction, error) {
	return s.walletRepo.GetByUserID(ctx, userID) //nolint:wrapcheck
}

// applyWalletChange меняет баланс на amount в направлении txType и записывает ровно одну запись
// wallet_transactions в той же транзакции. Возвращает баланс после операции.
func applyWalletChange(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	txType domain.WalletTransactionType,
	amount decimal.Decimal,
) (decimal.Decimal, *domain.WalletTransaction, error) {
	if amount.IsNegative() {
		return decimal.Zero, nil, validationErr("negative wallet amount %s", amount)
	}
	userRepo, repoErr := txRepo[UserRepository](tx, repoargs.UserRepoName)
	if repoErr != nil {
		return decimal.Zero, nil, repoErr
	}
	walletRepo, repoErr := txRepo[WalletTransactionRepository](tx, repoargs.WalletTransactionRepoName)
	if repoErr != nil {
		return decimal.Zero, nil, repoErr
	}

	var balance decimal.Decimal
	var err error
	if txType.IsIncome() {
		balance, err = userRepo.IncreaseBalance(ctx, userID, amount)
	} else {
		balance, err = userRepo.DecreaseBalance(ctx, userID, amount)
	}
	if err != nil {
		return decimal.Zero, nil, err //nolint:wrapcheck
	}

	t, err := walletRepo.Create(ctx, repoargs.WalletTransactionCreate{
		UserID: userID,
		Type:   txType,
		Amount: amount,
	})
	if err != nil {
		return decimal.Zero, nil, err //nolint:wrapcheck
	}
	return balance, t, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return validationErr("amount must be positive")
	}
	if amount.Exponent() < maxAmountExponent && !amount.Equal(amount.Round(-maxAmountExponent)) {
		return validationErr("amount must have at most 2 decimal places")
	}
	if amount.GreaterThan(domain.MaxMoney) {
		return validationErr("amount must not exceed %s", domain.MaxMoney)
	}
	return nil
}

// isDuplicate сообщает о нарушении уникальности в слое репозитория.
func isDuplicate(err error) bool {
	return errors.Is(err, domain.ErrDuplicateKey)
}
