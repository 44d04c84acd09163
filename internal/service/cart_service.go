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

type CartService struct {
	uow      uow.UOW
	cartRepo CartRepository
}

func NewCartService(u uow.UOW) (*CartService, error) {
	cartRepo, err := connRepo[CartRepository](u, repoargs.CartRepoName)
	if err != nil {
		return nil, err
	}
	return &CartService{
		uow:      u,
		cartRepo: cartRepo,
	}, nil
}

type AddCartItemArgs struct {
	UserID   int64
	GameID   int64
	Quantity int32
}

type CartItemAdded struct {
	CartID   int64
	GameID   int64
	GameName string
	Price    decimal.Decimal
	// Quantity итоговое количество позиции в корзине.
	Quantity int32
}

// AddItem кладет игру в активную корзину юзера, создавая корзину при необходимости.
// Повторное добавление увеличивает количество. Уже купленная игра - domain.ErrAlreadyOwned,
// несуществующая - domain.ErrRecordNotFound.
func (s *CartService) AddItem(ctx context.Context, args AddCartItemArgs) (*CartItemAdded, error) {
	if args.Quantity == 0 {
		args.Quantity = 1
	}
	if args.Quantity < 0 {
		return nil, fmt.Errorf("add cart item: %w", validationErr("quantity must be positive"))
	}

	var added *CartItemAdded
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		purchaseRepo, err := txRepo[PurchaseRepository](tx, repoargs.PurchaseRepoName)
		if err != nil {
			return err
		}
		gameRepo, err := txRepo[GameRepository](tx, repoargs.GameRepoName)
		if err != nil {
			return err
		}
		cartRepo, err := txRepo[CartRepository](tx, repoargs.CartRepoName)
		if err != nil {
			return err
		}

		game, err := gameRepo.FindByID(c, args.GameID)
		if err != nil {
			return err //nolint:wrapcheck
		}

		// корзина блокируется до проверки владения: checkout, державший ее, к этому моменту
		// уже закоммитил покупки
		cart, err := cartRepo.GetOrCreateActive(c, args.UserID)
		if err != nil {
			return err //nolint:wrapcheck
		}

		owned, err := purchaseRepo.Exists(c, args.UserID, args.GameID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if owned {
			return domain.ErrAlreadyOwned
		}

		quantity, err := cartRepo.UpsertItem(c, repoargs.UpsertCartItem{
			CartID:   cart.ID(),
			GameID:   game.ID,
			Quantity: args.Quantity,
		})
		if err != nil {
			return err //nolint:wrapcheck
		}

		added = &CartItemAdded{
			CartID:   cart.ID(),
			GameID:   game.ID,
			GameName: game.Name,
			Price:    game.Price,
			Quantity: quantity,
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("add cart item: %w", txErr)
	}
	return added, nil
}

// RemoveItem убирает игру из активной корзины. Отсутствие позиции или корзины не ошибка.
// Удаление ждет блокировку корзины, поэтому не пересекается с идущим checkout.
func (s *CartService) RemoveItem(ctx context.Context, userID, gameID int64) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		cartRepo, err := txRepo[CartRepository](tx, repoargs.CartRepoName)
		if err != nil {
			return err
		}
		cart, found, err := lockActiveCart(c, cartRepo, userID)
		if err != nil || !found {
			return err
		}
		_, err = cartRepo.RemoveItem(c, cart.ID(), gameID)
		return err //nolint:wrapcheck
	})
	if txErr != nil {
		return fmt.Errorf("remove cart item: %w", txErr)
	}
	return nil
}

type CartView struct {
	// CartID 0, если активной корзины нет.
	CartID int64
	Lines  []domain.CartLine
	Total  decimal.Decimal
}

// View возвращает содержимое активной корзины и ее сумму. Отсутствие корзины - пустой результат.
func (s *CartService) View(ctx context.Context, userID int64) (*CartView, error) {
	view := &CartView{Lines: []domain.CartLine{}, Total: decimal.Zero}

	cart, err := s.cartRepo.FindActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return view, nil
		}
		return nil, fmt.Errorf("view cart: %w", err)
	}
	view.CartID = cart.ID()

	lines, err := s.cartRepo.GetLines(ctx, cart.ID())
	if err != nil {
		return nil, fmt.Errorf("view cart: %w", err)
	}
	if len(lines) > 0 {
		view.Lines = lines
	}
	view.Total = domain.CartTotal(lines)
	return view, nil
}

// Clear удаляет все позиции активной корзины, не затрагивая покупки. Возвращает количество удаленных позиций.
func (s *CartService) Clear(ctx context.Context, userID int64) (int64, error) {
	var removed int64
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		cartRepo, err := txRepo[CartRepository](tx, repoargs.CartRepoName)
		if err != nil {
			return err
		}
		cart, found, err := lockActiveCart(c, cartRepo, userID)
		if err != nil || !found {
			return err
		}
		removed, err = cartRepo.DeleteItems(c, cart.ID())
		return err //nolint:wrapcheck
	})
	if txErr != nil {
		return 0, fmt.Errorf("clear cart: %w", txErr)
	}
	return removed, nil
}

// lockActiveCart блокирует активную корзину юзера. found false, если корзины нет.
func lockActiveCart(ctx context.Context, cartRepo CartRepository, userID int64) (domain.ActiveCart, bool, error) {
	cart, err := cartRepo.LockActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ActiveCart{}, false, nil
		}
		return domain.ActiveCart{}, false, err //nolint:wrapcheck
	}
	return cart, true, nil
}
