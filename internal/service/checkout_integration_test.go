package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/pgrepo"
	"github.com/fsdevblog/gamestore/internal/repository/pgrepo/pgtest"
	"github.com/fsdevblog/gamestore/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type storeEnv struct {
	pool     *pgxpool.Pool
	services *service.AppServices
}

func newStoreEnv(t *testing.T) *storeEnv {
	t.Helper()
	pool := pgtest.NewPool(t)

	u, err := pgrepo.NewUnitOfWork(pool)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	services, err := service.Factory(u, service.FactoryArgs{JWTSecret: []byte("secret"), Logger: logger})
	require.NoError(t, err)

	return &storeEnv{pool: pool, services: services}
}

func (e *storeEnv) user(t *testing.T, balance string) int64 {
	t.Helper()
	user, _, err := e.services.UserService.Register(t.Context(), service.RegisterUserArgs{
		Username: fmt.Sprintf("%s_%d", gofakeit.Username(), gofakeit.Number(1, 1_000_000)),
		Password: "password",
	})
	require.NoError(t, err)

	if amount := decimal.RequireFromString(balance); amount.IsPositive() {
		_, err = e.services.WalletService.Deposit(t.Context(), user.ID, amount)
		require.NoError(t, err)
	}
	return user.ID
}

func (e *storeEnv) game(t *testing.T, name, price string) int64 {
	t.Helper()
	game, err := e.services.CatalogService.CreateGame(t.Context(), service.CreateGameArgs{
		Name:  name,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return game.ID
}

func (e *storeEnv) discount(t *testing.T, name, value string, maxUsage int32) {
	t.Helper()
	_, err := e.services.DiscountService.Create(t.Context(), service.DiscountArgs{
		Name:     name,
		Value:    decimal.RequireFromString(value),
		MaxUsage: maxUsage,
	})
	require.NoError(t, err)
}

func (e *storeEnv) addToCart(t *testing.T, userID, gameID int64, quantity int32) {
	t.Helper()
	_, err := e.services.CartService.AddItem(t.Context(), service.AddCartItemArgs{
		UserID:   userID,
		GameID:   gameID,
		Quantity: quantity,
	})
	require.NoError(t, err)
}

func (e *storeEnv) usageCount(t *testing.T, codeName string) int64 {
	t.Helper()
	var count int64
	err := e.pool.QueryRow(t.Context(), `
		SELECT count(*) FROM discount_usages du JOIN discount_codes dc ON dc.id = du.code_id WHERE dc.name = $1`,
		codeName,
	).Scan(&count)
	require.NoError(t, err)
	return count
}

func (e *storeEnv) balance(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()
	balance, err := e.services.WalletService.GetBalance(t.Context(), userID)
	require.NoError(t, err)
	return balance
}

func TestCheckout_Integration(t *testing.T) {
	env := newStoreEnv(t)

	userID := env.user(t, "100.00")
	gameA := env.game(t, "Game A", "20.00")
	gameB := env.game(t, "Game B", "15.00")
	env.discount(t, "SAVE10", "10.00", 5)

	env.addToCart(t, userID, gameA, 1)
	env.addToCart(t, userID, gameB, 2)

	result, err := env.services.CheckoutService.Checkout(t.Context(), service.CheckoutArgs{
		UserID:       userID,
		DiscountCode: "SAVE10",
	})
	require.NoError(t, err)

	assert.True(t, result.TotalBefore.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.TotalAfter.Equal(decimal.NewFromInt(40)))
	assert.True(t, result.BalanceAfter.Equal(decimal.NewFromInt(60)))
	assert.ElementsMatch(t, []string{"Game A", "Game B"}, result.GamesPurchased)
	assert.True(t, env.balance(t, userID).Equal(decimal.NewFromInt(60)))
	assert.Equal(t, int64(1), env.usageCount(t, "SAVE10"))

	view, err := env.services.CartService.View(t.Context(), userID)
	require.NoError(t, err)
	assert.Zero(t, view.CartID, "paid cart must not be active")

	owned, err := env.services.CatalogService.OwnedGames(t.Context(), userID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	history, err := env.services.WalletService.History(t.Context(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.WalletTransactionDebit, history[0].Type)
	assert.True(t, history[0].Amount.Equal(decimal.NewFromInt(40)))

	t.Run("code is redeemed once per user", func(t *testing.T) {
		gameC := env.game(t, "Game C", "5.00")
		env.addToCart(t, userID, gameC, 1)

		_, err = env.services.CheckoutService.Checkout(t.Context(), service.CheckoutArgs{
			UserID:       userID,
			DiscountCode: "SAVE10",
		})
		require.ErrorIs(t, err, domain.ErrDiscountAlreadyRedeemed)
	})

	t.Run("owned game cannot be added again", func(t *testing.T) {
		_, err = env.services.CartService.AddItem(t.Context(), service.AddCartItemArgs{UserID: userID, GameID: gameA})
		require.ErrorIs(t, err, domain.ErrAlreadyOwned)
	})
}

func TestCheckout_InsufficientFundsRollsBack(t *testing.T) {
	env := newStoreEnv(t)

	userID := env.user(t, "30.00")
	gameA := env.game(t, "Game A", "20.00")
	gameB := env.game(t, "Game B", "15.00")
	env.discount(t, "SAVE10", "10.00", 5)

	env.addToCart(t, userID, gameA, 1)
	env.addToCart(t, userID, gameB, 2)

	_, err := env.services.CheckoutService.Checkout(t.Context(), service.CheckoutArgs{
		UserID:       userID,
		DiscountCode: "SAVE10",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, int64(0), env.usageCount(t, "SAVE10"))
	assert.True(t, env.balance(t, userID).Equal(decimal.NewFromInt(30)))

	view, err := env.services.CartService.View(t.Context(), userID)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(50)))
}

func TestCheckout_LastDiscountSlot(t *testing.T) {
	env := newStoreEnv(t)

	const buyers = 8
	gameID := env.game(t, "Game A", "20.00")
	env.discount(t, "LAST", "5.00", 1)

	users := make([]int64, buyers)
	for i := range users {
		users[i] = env.user(t, "100.00")
		env.addToCart(t, users[i], gameID, 1)
	}

	var succeeded, capped atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for _, userID := range users {
		g.Go(func() error {
			_, err := env.services.CheckoutService.Checkout(ctx, service.CheckoutArgs{
				UserID:       userID,
				DiscountCode: "LAST",
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrDiscountCapExceeded):
				capped.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(buyers-1), capped.Load())
	assert.Equal(t, int64(1), env.usageCount(t, "LAST"))
}

func TestCheckout_ConcurrentSameUser(t *testing.T) {
	env := newStoreEnv(t)

	userID := env.user(t, "25.00")
	gameID := env.game(t, "Game A", "20.00")
	env.addToCart(t, userID, gameID, 1)

	const attempts = 4
	var succeeded atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for range attempts {
		g.Go(func() error {
			_, err := env.services.CheckoutService.Checkout(ctx, service.CheckoutArgs{UserID: userID})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrEmptyCart):
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded.Load())
	assert.True(t, env.balance(t, userID).Equal(decimal.NewFromInt(5)))
}

func TestRankingRebuild_Idempotent(t *testing.T) {
	env := newStoreEnv(t)

	gameA := env.game(t, "Game A", "20.00")
	gameB := env.game(t, "Game B", "15.00")
	for i := range 3 {
		userID := env.user(t, "100.00")
		env.addToCart(t, userID, gameA, 1)
		if i == 0 {
			env.addToCart(t, userID, gameB, 1)
		}
		_, err := env.services.CheckoutService.Checkout(t.Context(), service.CheckoutArgs{UserID: userID})
		require.NoError(t, err)
	}

	first, err := env.services.RankingService.Rebuild(t.Context(), service.RankingArgs{})
	require.NoError(t, err)
	second, err := env.services.RankingService.Rebuild(t.Context(), service.RankingArgs{})
	require.NoError(t, err)
	assert.Equal(t, first.InsertedRows, second.InsertedRows)

	snapshot, err := env.services.RankingService.Get(t.Context(), nil)
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 2)
	assert.Equal(t, gameA, snapshot.Entries[0].GameID)
	assert.Equal(t, int64(3), snapshot.Entries[0].TotalSales)
	assert.Equal(t, int32(2), snapshot.Entries[1].RankPosition)
}

func TestWalletDeposit_BalanceOverflow(t *testing.T) {
	env := newStoreEnv(t)
	userID := env.user(t, domain.MaxMoney.String())

	_, err := env.services.WalletService.Deposit(t.Context(), userID, decimal.RequireFromString("0.01"))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, env.balance(t, userID).Equal(domain.MaxMoney))
}
