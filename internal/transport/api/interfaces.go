package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	Activity(ctx context.Context, userID int64) (*service.UserActivity, error)
}

type CatalogServicer interface {
	CreateGame(ctx context.Context, args service.CreateGameArgs) (*domain.Game, error)
	GetPricing(ctx context.Context, gameID int64) (*domain.Game, error)
	OwnedGames(ctx context.Context, userID int64) ([]domain.Purchase, error)
}

type CartServicer interface {
	AddItem(ctx context.Context, args service.AddCartItemArgs) (*service.CartItemAdded, error)
	RemoveItem(ctx context.Context, userID int64, gameID int64) error
	View(ctx context.Context, userID int64) (*service.CartView, error)
	Clear(ctx context.Context, userID int64) (int64, error)
}

type CheckoutServicer interface {
	Checkout(ctx context.Context, args service.CheckoutArgs) (*service.CheckoutResult, error)
	BuyNow(ctx context.Context, userID int64, gameID int64) (*service.BuyNowResult, error)
}

type DiscountServicer interface {
	Create(ctx context.Context, args service.DiscountArgs) (*domain.DiscountCode, error)
	Update(ctx context.Context, id int64, args service.DiscountArgs) (*domain.DiscountCode, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.DiscountCodeStats, error)
	ListAvailable(ctx context.Context) ([]domain.DiscountCodeStats, error)
}

type WalletServicer interface {
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*service.WalletOperationResult, error)
	Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*service.WalletOperationResult, error)
	History(ctx context.Context, userID int64) ([]domain.WalletTransaction, error)
}

type RankingServicer interface {
	Rebuild(ctx context.Context, args service.RankingArgs) (*service.RankingRebuildResult, error)
	Preview(ctx context.Context, args service.RankingArgs) ([]domain.RankingEntry, error)
	Get(ctx context.Context, date *time.Time) (*service.RankingSnapshot, error)
}
