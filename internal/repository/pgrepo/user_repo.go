package pgrepo

import (
	"context"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = "id, created_at, updated_at, username, encrypted_password, role, wallet_balance"

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

// CreateUser создает юзера. В случае конфликта юзернейма возвращает ошибку domain.ErrDuplicateKey.
func (u *UserRepository) CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error) {
	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}
	row := u.conn.QueryRow(ctx,
		`INSERT INTO users (username, encrypted_password, role) VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		user.Username, user.Password, string(role),
	)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return dbUser, nil
}

// FindUserByUsername ищет юзера по его юзернейму. Возвращает domain.ErrRecordNotFound если запись не найдена.
func (u *UserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by username %s", username)
	}
	return dbUser, nil
}

func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return dbUser, nil
}

// LockBalance возвращает баланс кошелька, блокируя строку юзера до конца транзакции.
// Имеет смысл только внутри транзакции.
func (u *UserRepository) LockBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := u.conn.QueryRow(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1 FOR UPDATE`, userID,
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, convertErr(err, "locking wallet of user %d", userID)
	}
	return balance, nil
}

// IncreaseBalance увеличивает баланс и возвращает новое значение.
func (u *UserRepository) IncreaseBalance(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := u.conn.QueryRow(ctx,
		`UPDATE users SET wallet_balance = wallet_balance + $2, updated_at = now()
		WHERE id = $1 RETURNING wallet_balance`,
		userID, amount,
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, convertErr(err, "increasing balance of user %d", userID)
	}
	return balance, nil
}

// DecreaseBalance списывает amount с баланса и возвращает новое значение. Если средств недостаточно
// (или юзера нет) - domain.ErrInsufficientFunds.
func (u *UserRepository) DecreaseBalance(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := u.conn.QueryRow(ctx,
		`UPDATE users SET wallet_balance = wallet_balance - $2, updated_at = now()
		WHERE id = $1 AND wallet_balance >= $2 RETURNING wallet_balance`,
		userID, amount,
	).Scan(&balance)
	if err != nil {
		if isNoRows(err) {
			return decimal.Zero, domain.ErrInsufficientFunds
		}
		return decimal.Zero, convertErr(err, "decreasing balance of user %d", userID)
	}
	return balance, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role string
	if err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Username,
		&user.Password,
		&role,
		&user.WalletBalance,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	user.Role = domain.RoleType(role)
	return &user, nil
}
