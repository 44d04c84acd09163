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

type CheckoutService struct {
	uow       uow.UOW
	discounts *DiscountService
}

func NewCheckoutService(u uow.UOW, discounts *DiscountService) *CheckoutService {
	return &CheckoutService{
		uow:       u,
		discounts: discounts,
	}
}

type CheckoutArgs struct {
	UserID int64
	// DiscountCode пустая строка - без скидки.
	DiscountCode string
}

type CheckoutResult struct {
	CartID          int64
	DiscountApplied string
	DiscountValue   decimal.Decimal
	TotalBefore     decimal.Decimal
	TotalAfter      decimal.Decimal
	BalanceAfter    decimal.Decimal
	GamesPurchased  []string
}

// Checkout оплачивает активную корзину юзера одной транзакцией.
//
// Алгоритм работы:
//  1. Блокирует активную корзину и читает ее позиции с ценами.
//  2. Если передан код скидки - проверяет и резервирует его (DiscountService.ValidateAndReserve).
//  3. Блокирует кошелек и списывает итоговую сумму с записью debit.
//  4. Записывает покупки, очищает корзину и переводит ее в статус paid.
//
// Любая ошибка откатывает транзакцию целиком: корзина остается активной, резерв скидки и списание не сохраняются.
// Порядок блокировок: корзина, код скидки, кошелек.
func (s *CheckoutService) Checkout(ctx context.Context, args CheckoutArgs) (*CheckoutResult, error) {
	var result *CheckoutResult
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		cartRepo, err := txRepo[CartRepository](tx, repoargs.CartRepoName)
		if err != nil {
			return err
		}
		userRepo, err := txRepo[UserRepository](tx, repoargs.UserRepoName)
		if err != nil {
			return err
		}

		cart, lines, err := s.lockCartLines(c, cartRepo, args.UserID)
		if err != nil {
			return err
		}

		res := &CheckoutResult{
			CartID:        cart.ID(),
			DiscountValue: decimal.Zero,
			TotalBefore:   domain.CartTotal(lines),
		}
		res.TotalAfter = res.TotalBefore

		if args.DiscountCode != "" {
			code, reserveErr := s.discounts.ValidateAndReserve(c, tx, args.UserID, args.DiscountCode)
			if reserveErr != nil {
				return reserveErr //nolint:wrapcheck
			}
			res.DiscountApplied = code.Name
			res.DiscountValue = code.Value
			res.TotalAfter = code.Apply(res.TotalBefore)
		}

		balance, err := userRepo.LockBalance(c, args.UserID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if balance.LessThan(res.TotalAfter) {
			return domain.ErrInsufficientFunds
		}

		res.BalanceAfter, _, err = applyWalletChange(c, tx, args.UserID, domain.WalletTransactionDebit, res.TotalAfter)
		if err != nil {
			return err
		}

		if err = s.recordPurchases(c, tx, args.UserID, lines); err != nil {
			return err
		}

		if _, err = cartRepo.DeleteItems(c, cart.ID()); err != nil {
			return err //nolint:wrapcheck
		}
		if err = cartRepo.SavePaid(c, cart.Pay()); err != nil {
			return err //nolint:wrapcheck
		}

		res.GamesPurchased = make([]string, len(lines))
		for i, line := range lines {
			res.GamesPurchased[i] = line.GameName
		}
		result = res
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("checkout: %w", txErr)
	}
	return result, nil
}

// lockCartLines блокирует активную корзину и возвращает ее позиции. Нет корзины или она пуста - domain.ErrEmptyCart.
func (s *CheckoutService) lockCartLines(
	ctx context.Context,
	cartRepo CartRepository,
	userID int64,
) (domain.ActiveCart, []domain.CartLine, error) {
	cart, err := cartRepo.LockActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ActiveCart{}, nil, domain.ErrEmptyCart
		}
		return domain.ActiveCart{}, nil, err //nolint:wrapcheck
	}
	lines, err := cartRepo.GetLines(ctx, cart.ID())
	if err != nil {
		return domain.ActiveCart{}, nil, err //nolint:wrapcheck
	}
	if len(lines) == 0 {
		return domain.ActiveCart{}, nil, domain.ErrEmptyCart
	}
	return cart, lines, nil
}

// recordPurchases записывает покупку каждой позиции. Конфликт с уже существующей покупкой -
// domain.ErrDuplicateOwnership.
func (s *CheckoutService) recordPurchases(ctx context.Context, tx uow.TX, userID int64, lines []domain.CartLine) error {
	purchaseRepo, err := txRepo[PurchaseRepository](tx, repoargs.PurchaseRepoName)
	if err != nil {
		return err
	}

	purchases := make([]repoargs.PurchaseCreate, len(lines))
	for i, line := range lines {
		purchases[i] = repoargs.PurchaseCreate{UserID: userID, GameID: line.GameID}
	}

	var batchErr error
	purchaseRepo.BatchCreate(ctx, purchases, func(_ int, err error) {
		// после первой ошибки транзакция в postgres уже прервана, остальные ошибки - ее следствие.
		if err != nil && batchErr == nil {
			batchErr = err
		}
	})
	if batchErr != nil {
		if isDuplicate(batchErr) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateOwnership, batchErr.Error())
		}
		return batchErr
	}
	return nil
}

type BuyNowResult struct {
	GameID        int64
	GameName      string
	Price         decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// BuyNow покупает одну игру напрямую, минуя корзину. Уже купленная игра - domain.ErrAlreadyOwned.
func (s *CheckoutService) BuyNow(ctx context.Context, userID, gameID int64) (*BuyNowResult, error) {
	var result *BuyNowResult
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		gameRepo, err := txRepo[GameRepository](tx, repoargs.GameRepoName)
		if err != nil {
			return err
		}
		userRepo, err := txRepo[UserRepository](tx, repoargs.UserRepoName)
		if err != nil {
			return err
		}
		purchaseRepo, err := txRepo[PurchaseRepository](tx, repoargs.PurchaseRepoName)
		if err != nil {
			return err
		}

		game, err := gameRepo.FindByID(c, gameID)
		if err != nil {
			return err //nolint:wrapcheck
		}

		balance, err := userRepo.LockBalance(c, userID)
		if err != nil {
			return err //nolint:wrapcheck
		}

		owned, err := purchaseRepo.Exists(c, userID, gameID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if owned {
			return domain.ErrAlreadyOwned
		}
		if balance.LessThan(game.Price) {
			return domain.ErrInsufficientFunds
		}

		balanceAfter, _, err := applyWalletChange(c, tx, userID, domain.WalletTransactionDebit, game.Price)
		if err != nil {
			return err
		}

		if _, err = purchaseRepo.Create(c, repoargs.PurchaseCreate{UserID: userID, GameID: gameID}); err != nil {
			if isDuplicate(err) {
				return domain.ErrAlreadyOwned
			}
			return err //nolint:wrapcheck
		}

		result = &BuyNowResult{
			GameID:        game.ID,
			GameName:      game.Name,
			Price:         game.Price,
			BalanceBefore: balance,
			BalanceAfter:  balanceAfter,
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("buy game: %w", txErr)
	}
	return result, nil
}
