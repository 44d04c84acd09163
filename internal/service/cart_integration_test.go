package service_test

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// lockedCartWait время, за которое операция с корзиной, не ждущая блокировку, точно бы завершилась.
const lockedCartWait = 300 * time.Millisecond

func (e *storeEnv) owns(t *testing.T, userID, gameID int64) bool {
	t.Helper()
	owned, err := e.services.CatalogService.OwnedGames(t.Context(), userID)
	require.NoError(t, err)
	return slices.ContainsFunc(owned, func(p domain.Purchase) bool { return p.GameID == gameID })
}

func (e *storeEnv) inActiveCart(t *testing.T, userID, gameID int64) bool {
	t.Helper()
	view, err := e.services.CartService.View(t.Context(), userID)
	require.NoError(t, err)
	return slices.ContainsFunc(view.Lines, func(l domain.CartLine) bool { return l.GameID == gameID })
}

// payCartInTx блокирует активную корзину юзера так же, как checkout, и возвращает функцию,
// которая переводит корзину в paid и коммитит транзакцию.
func (e *storeEnv) payCartInTx(t *testing.T, userID int64) func() {
	t.Helper()
	tx, err := e.pool.Begin(t.Context())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })

	var cartID int64
	require.NoError(t, tx.QueryRow(t.Context(),
		`SELECT id FROM carts WHERE user_id = $1 AND status = 'active' FOR UPDATE`, userID,
	).Scan(&cartID))

	return func() {
		_, execErr := tx.Exec(t.Context(), `UPDATE carts SET status = 'paid' WHERE id = $1`, cartID)
		require.NoError(t, execErr)
		require.NoError(t, tx.Commit(t.Context()))
	}
}

func TestCartAddItem_DuringCheckout(t *testing.T) {
	env := newStoreEnv(t)
	gameA := env.game(t, "Game A", "20.00")

	for round := range 5 {
		userID := env.user(t, "100.00")
		gameB := env.game(t, fmt.Sprintf("Game B %d", round), "15.00")
		env.addToCart(t, userID, gameA, 1)

		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			_, err := env.services.CheckoutService.Checkout(ctx, service.CheckoutArgs{UserID: userID})
			return err
		})
		g.Go(func() error {
			_, err := env.services.CartService.AddItem(ctx, service.AddCartItemArgs{UserID: userID, GameID: gameB})
			return err
		})
		require.NoError(t, g.Wait())

		owned, inCart := env.owns(t, userID, gameB), env.inActiveCart(t, userID, gameB)
		assert.NotEqual(t, owned, inCart, "round %d: game must be either bought or left in the active cart", round)

		spent := decimal.NewFromInt(20)
		if owned {
			spent = spent.Add(decimal.NewFromInt(15))
		}
		assert.True(t, env.balance(t, userID).Equal(decimal.NewFromInt(100).Sub(spent)), "round %d", round)
	}
}

func TestCartAddItem_WaitsForLockedCart(t *testing.T) {
	env := newStoreEnv(t)
	userID := env.user(t, "0")
	gameA := env.game(t, "Game A", "20.00")
	gameB := env.game(t, "Game B", "15.00")
	env.addToCart(t, userID, gameA, 1)

	view, err := env.services.CartService.View(t.Context(), userID)
	require.NoError(t, err)
	paidCartID := view.CartID

	commit := env.payCartInTx(t, userID)

	done := make(chan *service.CartItemAdded, 1)
	var g errgroup.Group
	g.Go(func() error {
		added, addErr := env.services.CartService.AddItem(context.Background(), service.AddCartItemArgs{
			UserID: userID,
			GameID: gameB,
		})
		done <- added
		return addErr
	})

	require.Never(t, func() bool { return len(done) > 0 }, lockedCartWait, 20*time.Millisecond)
	commit()
	require.NoError(t, g.Wait())

	added := <-done
	assert.NotEqual(t, paidCartID, added.CartID)
	assert.True(t, env.inActiveCart(t, userID, gameB))
	assert.False(t, env.inActiveCart(t, userID, gameA))
}

func TestCartRemoveItem_WaitsForLockedCart(t *testing.T) {
	env := newStoreEnv(t)
	userID := env.user(t, "0")
	gameA := env.game(t, "Game A", "20.00")
	env.addToCart(t, userID, gameA, 1)

	view, err := env.services.CartService.View(t.Context(), userID)
	require.NoError(t, err)
	paidCartID := view.CartID

	commit := env.payCartInTx(t, userID)

	done := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		return env.services.CartService.RemoveItem(context.Background(), userID, gameA)
	})

	require.Never(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, lockedCartWait, 20*time.Millisecond)
	commit()
	require.NoError(t, g.Wait())

	// позиция осталась в оплаченной корзине: удаление встало в очередь за оплатой
	var lines int64
	require.NoError(t, env.pool.QueryRow(t.Context(),
		`SELECT count(*) FROM cart_items WHERE cart_id = $1`, paidCartID,
	).Scan(&lines))
	assert.Equal(t, int64(1), lines)

	removed, err := env.services.CartService.Clear(t.Context(), userID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
