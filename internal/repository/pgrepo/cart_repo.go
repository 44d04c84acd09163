package pgrepo

import (
	"context"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const cartColumns = "id, created_at, updated_at, user_id, status"

type CartRepository struct {
	conn uow.DBTX
}

func NewCartRepository(conn uow.DBTX) *CartRepository {
	return &CartRepository{conn: conn}
}

// GetOrCreateActive возвращает активную корзину юзера, создавая ее при отсутствии, и блокирует ее строку
// до конца транзакции. Если корзину держит checkout, вставка ждет его коммита и после оплаты
// заводит новую активную корзину.
func (r *CartRepository) GetOrCreateActive(ctx context.Context, userID int64) (domain.ActiveCart, error) {
	cart, err := scanCart(r.conn.QueryRow(ctx,
		`INSERT INTO carts (user_id, status) VALUES ($1, 'active')
		ON CONFLICT (user_id) WHERE status = 'active' DO UPDATE SET updated_at = now()
		RETURNING `+cartColumns,
		userID,
	))
	if err != nil {
		return domain.ActiveCart{}, convertErr(err, "creating active cart for user %d", userID)
	}
	active, activeErr := domain.NewActiveCart(*cart)
	if activeErr != nil {
		return domain.ActiveCart{}, convertErr(activeErr, "creating active cart for user %d", userID)
	}
	return active, nil
}

// FindActive возвращает активную корзину без блокировки. domain.ErrRecordNotFound если ее нет.
func (r *CartRepository) FindActive(ctx context.Context, userID int64) (domain.ActiveCart, error) {
	return r.findActive(ctx, userID, false)
}

// LockActive возвращает активную корзину, блокируя ее строку до конца транзакции.
func (r *CartRepository) LockActive(ctx context.Context, userID int64) (domain.ActiveCart, error) {
	return r.findActive(ctx, userID, true)
}

func (r *CartRepository) findActive(ctx context.Context, userID int64, forUpdate bool) (domain.ActiveCart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 AND status = 'active'`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	cart, err := scanCart(r.conn.QueryRow(ctx, query, userID))
	if err != nil {
		return domain.ActiveCart{}, convertErr(err, "finding active cart of user %d", userID)
	}
	active, activeErr := domain.NewActiveCart(*cart)
	if activeErr != nil {
		return domain.ActiveCart{}, convertErr(activeErr, "finding active cart of user %d", userID)
	}
	return active, nil
}

// UpsertItem добавляет игру в корзину. Если позиция уже есть - увеличивает количество.
// Возвращает итоговое количество.
func (r *CartRepository) UpsertItem(ctx context.Context, args repoargs.UpsertCartItem) (int32, error) {
	var quantity int32
	err := r.conn.QueryRow(ctx,
		`INSERT INTO cart_items (cart_id, game_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, game_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING quantity`,
		args.CartID, args.GameID, args.Quantity,
	).Scan(&quantity)
	if err != nil {
		return 0, convertErr(err, "upserting cart item %d/%d", args.CartID, args.GameID)
	}
	tag, touchErr := r.conn.Exec(ctx,
		`UPDATE carts SET updated_at = now() WHERE id = $1 AND status = 'active'`, args.CartID)
	if touchErr != nil {
		return 0, convertErr(touchErr, "touching cart %d", args.CartID)
	}
	// оплаченная корзина не меняется
	if tag.RowsAffected() == 0 {
		return 0, convertErr(pgx.ErrNoRows, "touching cart %d", args.CartID)
	}
	return quantity, nil
}

// RemoveItem удаляет позицию из корзины. Отсутствие позиции ошибкой не считается.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID, gameID int64) (bool, error) {
	tag, err := r.conn.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND game_id = $2`,
		cartID, gameID,
	)
	if err != nil {
		return false, convertErr(err, "removing game %d from cart %d", gameID, cartID)
	}
	return tag.RowsAffected() > 0, nil
}

// GetLines возвращает позиции корзины вместе с названием и текущей ценой игры.
func (r *CartRepository) GetLines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT ci.game_id, g.name, g.price, ci.quantity
		FROM cart_items ci JOIN games g ON g.id = ci.game_id
		WHERE ci.cart_id = $1
		ORDER BY ci.game_id`,
		cartID,
	)
	if err != nil {
		return nil, convertErr(err, "getting lines of cart %d", cartID)
	}
	lines, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CartLine, error) {
		var line domain.CartLine
		scanErr := row.Scan(&line.GameID, &line.GameName, &line.Price, &line.Quantity)
		return line, scanErr //nolint:wrapcheck
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "scanning lines of cart %d", cartID)
	}
	return lines, nil
}

// DeleteItems удаляет все позиции корзины и возвращает их количество.
func (r *CartRepository) DeleteItems(ctx context.Context, cartID int64) (int64, error) {
	tag, err := r.conn.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, convertErr(err, "deleting items of cart %d", cartID)
	}
	return tag.RowsAffected(), nil
}

// SavePaid сохраняет переход корзины в статус paid. Корзина, уже оплаченная другой транзакцией,
// даст domain.ErrRecordNotFound.
func (r *CartRepository) SavePaid(ctx context.Context, cart domain.PaidCart) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE carts SET status = 'paid', updated_at = now() WHERE id = $1 AND status = 'active'`,
		cart.ID(),
	)
	if err != nil {
		return convertErr(err, "marking cart %d as paid", cart.ID())
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "marking cart %d as paid", cart.ID())
	}
	return nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	var status string
	if err := row.Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt, &cart.UserID, &status); err != nil {
		return nil, err //nolint:wrapcheck
	}
	cart.Status = domain.CartStatusType(status)
	return &cart, nil
}
