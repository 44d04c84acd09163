package service

import (
	"context"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type UserRepository interface {
	CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	LockBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	IncreaseBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	DecreaseBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

type GameRepository interface {
	Create(ctx context.Context, args repoargs.CreateGame) (*domain.Game, error)
	FindByID(ctx context.Context, id int64) (*domain.Game, error)
}

type CartRepository interface {
	GetOrCreateActive(ctx context.Context, userID int64) (domain.ActiveCart, error)
	FindActive(ctx context.Context, userID int64) (domain.ActiveCart, error)
	LockActive(ctx context.Context, userID int64) (domain.ActiveCart, error)
	UpsertItem(ctx context.Context, args repoargs.UpsertCartItem) (int32, error)
	RemoveItem(ctx context.Context, cartID int64, gameID int64) (bool, error)
	GetLines(ctx context.Context, cartID int64) ([]domain.CartLine, error)
	DeleteItems(ctx context.Context, cartID int64) (int64, error)
	SavePaid(ctx context.Context, cart domain.PaidCart) error
}

type DiscountRepository interface {
	Create(ctx context.Context, args repoargs.DiscountCodeSave) (*domain.DiscountCode, error)
	Update(ctx context.Context, id int64, args repoargs.DiscountCodeSave) (*domain.DiscountCode, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, onlyAvailable bool) ([]domain.DiscountCodeStats, error)
	LockByName(ctx context.Context, name string) (*domain.DiscountCode, error)
	HasUsage(ctx context.Context, userID int64, codeID int64) (bool, error)
	CountUsages(ctx context.Context, codeID int64) (int64, error)
	CreateUsage(ctx context.Context, userID int64, codeID int64) (*domain.DiscountUsage, error)
}

type PurchaseRepository interface {
	Exists(ctx context.Context, userID int64, gameID int64) (bool, error)
	Create(ctx context.Context, args repoargs.PurchaseCreate) (*domain.Purchase, error)
	BatchCreate(ctx context.Context, purchases []repoargs.PurchaseCreate, fn repoargs.BatchExecQueryRow)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Purchase, error)
}

type WalletTransactionRepository interface {
	Create(ctx context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.WalletTransaction, error)
}

type RankingRepository interface {
	LockDate(ctx context.Context, date time.Time) error
	DeleteByDate(ctx context.Context, date time.Time) (int64, error)
	InsertSnapshot(ctx context.Context, date time.Time, args repoargs.RankingCompute) (int64, error)
	Preview(ctx context.Context, args repoargs.RankingCompute) ([]domain.RankingEntry, error)
	GetByDate(ctx context.Context, date time.Time) ([]domain.RankingEntry, error)
}

// RankingCache кэш сохраненных снапшотов рейтинга. Промах кэша - (nil, false, nil).
type RankingCache interface {
	Get(ctx context.Context, date time.Time) ([]domain.RankingEntry, bool, error)
	Set(ctx context.Context, date time.Time, entries []domain.RankingEntry) error
	SetIfAbsent(ctx context.Context, date time.Time, entries []domain.RankingEntry) error
	Invalidate(ctx context.Context, date time.Time) error
}
