package pgrepo

import (
	"context"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const createPurchaseQuery = `INSERT INTO purchases (user_id, game_id) VALUES ($1, $2)
	RETURNING id, user_id, game_id, purchase_date`

type PurchaseRepository struct {
	conn uow.DBTX
}

func NewPurchaseRepository(conn uow.DBTX) *PurchaseRepository {
	return &PurchaseRepository{conn: conn}
}

func (p *PurchaseRepository) Exists(ctx context.Context, userID, gameID int64) (bool, error) {
	var exists bool
	err := p.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchases WHERE user_id = $1 AND game_id = $2)`,
		userID, gameID,
	).Scan(&exists)
	if err != nil {
		return false, convertErr(err, "checking purchase of game %d by user %d", gameID, userID)
	}
	return exists, nil
}

// Create записывает покупку. Если игра уже куплена - domain.ErrDuplicateKey.
func (p *PurchaseRepository) Create(ctx context.Context, args repoargs.PurchaseCreate) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := p.conn.QueryRow(ctx, createPurchaseQuery, args.UserID, args.GameID).
		Scan(&purchase.ID, &purchase.UserID, &purchase.GameID, &purchase.PurchaseDate)
	if err != nil {
		return nil, convertErr(err, "creating purchase of game %d by user %d", args.GameID, args.UserID)
	}
	return &purchase, nil
}

// BatchCreate записывает покупки одним батчем. fn вызывается для каждой покупки с результатом ее вставки.
func (p *PurchaseRepository) BatchCreate(
	ctx context.Context,
	purchases []repoargs.PurchaseCreate,
	fn repoargs.BatchExecQueryRow,
) {
	batch := new(pgx.Batch)
	for _, purchase := range purchases {
		batch.Queue(createPurchaseQuery, purchase.UserID, purchase.GameID)
	}
	results := p.conn.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()

	for i, purchase := range purchases {
		_, err := results.Exec()
		fn(i, convertErr(err, "creating purchase of game %d by user %d", purchase.GameID, purchase.UserID))
	}
}

// GetByUserID возвращает купленные юзером игры, новые первыми.
func (p *PurchaseRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Purchase, error) {
	rows, err := p.conn.Query(ctx,
		`SELECT p.id, p.user_id, p.game_id, g.name, g.price, g.category, p.purchase_date
		FROM purchases p JOIN games g ON g.id = p.game_id
		WHERE p.user_id = $1
		ORDER BY p.purchase_date DESC, p.id DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting purchases of user %d", userID)
	}
	purchases, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Purchase, error) {
		var pr domain.Purchase
		scanErr := row.Scan(&pr.ID, &pr.UserID, &pr.GameID, &pr.GameName, &pr.Price, &pr.Category, &pr.PurchaseDate)
		return pr, scanErr //nolint:wrapcheck
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "scanning purchases of user %d", userID)
	}
	return purchases, nil
}
