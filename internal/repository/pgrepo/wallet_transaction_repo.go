package pgrepo

import (
	"context"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/jackc/pgx/v5"
)

type WalletTransactionRepository struct {
	conn uow.DBTX
}

func NewWalletTransactionRepository(conn uow.DBTX) *WalletTransactionRepository {
	return &WalletTransactionRepository{conn: conn}
}

func (w *WalletTransactionRepository) Create(
	ctx context.Context,
	args repoargs.WalletTransactionCreate,
) (*domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	var txType string
	err := w.conn.QueryRow(ctx,
		`INSERT INTO wallet_transactions (user_id, type, amount) VALUES ($1, $2, $3)
		RETURNING id, created_at, user_id, type, amount`,
		args.UserID, string(args.Type), args.Amount,
	).Scan(&t.ID, &t.CreatedAt, &t.UserID, &txType, &t.Amount)
	if err != nil {
		return nil, convertErr(err, "creating %s wallet transaction for user %d", args.Type, args.UserID)
	}
	t.Type = domain.WalletTransactionType(txType)
	return &t, nil
}

// GetByUserID возвращает историю кошелька юзера, новые записи первыми.
func (w *WalletTransactionRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.WalletTransaction, error) {
	rows, err := w.conn.Query(ctx,
		`SELECT id, created_at, user_id, type, amount FROM wallet_transactions
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting wallet transactions of user %d", userID)
	}
	transactions, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WalletTransaction, error) {
		var t domain.WalletTransaction
		var txType string
		scanErr := row.Scan(&t.ID, &t.CreatedAt, &t.UserID, &txType, &t.Amount)
		t.Type = domain.WalletTransactionType(txType)
		return t, scanErr //nolint:wrapcheck
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "scanning wallet transactions of user %d", userID)
	}
	return transactions, nil
}
