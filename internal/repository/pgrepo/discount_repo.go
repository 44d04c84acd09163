package pgrepo

import (
	"context"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const discountColumns = "id, created_at, updated_at, name, discount_value, max_usage"

type DiscountRepository struct {
	conn uow.DBTX
}

func NewDiscountRepository(conn uow.DBTX) *DiscountRepository {
	return &DiscountRepository{conn: conn}
}

// Create создает код скидки. Занятое имя - domain.ErrDuplicateKey.
func (d *DiscountRepository) Create(ctx context.Context, args repoargs.DiscountCodeSave) (*domain.DiscountCode, error) {
	row := d.conn.QueryRow(ctx,
		`INSERT INTO discount_codes (name, discount_value, max_usage) VALUES ($1, $2, $3)
		RETURNING `+discountColumns,
		args.Name, args.Value, args.MaxUsage,
	)
	code, err := scanDiscount(row)
	if err != nil {
		return nil, convertErr(err, "creating discount code %s", args.Name)
	}
	return code, nil
}

func (d *DiscountRepository) Update(
	ctx context.Context,
	id int64,
	args repoargs.DiscountCodeSave,
) (*domain.DiscountCode, error) {
	row := d.conn.QueryRow(ctx,
		`UPDATE discount_codes SET name = $2, discount_value = $3, max_usage = $4, updated_at = now()
		WHERE id = $1 RETURNING `+discountColumns,
		id, args.Name, args.Value, args.MaxUsage,
	)
	code, err := scanDiscount(row)
	if err != nil {
		return nil, convertErr(err, "updating discount code %d", id)
	}
	return code, nil
}

// Delete удаляет код вместе с записями о его погашении.
func (d *DiscountRepository) Delete(ctx context.Context, id int64) error {
	tag, err := d.conn.Exec(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting discount code %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting discount code %d", id)
	}
	return nil
}

// List возвращает коды скидок с количеством погашений. onlyAvailable оставляет только коды с
// положительным лимитом и неисчерпанным остатком.
func (d *DiscountRepository) List(ctx context.Context, onlyAvailable bool) ([]domain.DiscountCodeStats, error) {
	query := `SELECT dc.id, dc.created_at, dc.updated_at, dc.name, dc.discount_value, dc.max_usage,
			COUNT(du.id) AS used_count
		FROM discount_codes dc
		LEFT JOIN discount_usages du ON du.code_id = dc.id
		GROUP BY dc.id`
	if onlyAvailable {
		query += ` HAVING dc.max_usage > 0 AND dc.max_usage - COUNT(du.id) > 0`
	}
	query += ` ORDER BY dc.id DESC`

	rows, err := d.conn.Query(ctx, query)
	if err != nil {
		return nil, convertErr(err, "listing discount codes")
	}
	codes, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DiscountCodeStats, error) {
		var s domain.DiscountCodeStats
		scanErr := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.Name, &s.Value, &s.MaxUsage, &s.UsedCount)
		return s, scanErr //nolint:wrapcheck
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "scanning discount codes")
	}
	return codes, nil
}

// LockByName находит код по имени и блокирует его строку до конца транзакции. Пока блокировка
// удерживается, параллельные резервирования того же кода ждут, поэтому подсчет погашений
// и вставка резерва выполняются без гонки.
func (d *DiscountRepository) LockByName(ctx context.Context, name string) (*domain.DiscountCode, error) {
	row := d.conn.QueryRow(ctx,
		`SELECT `+discountColumns+` FROM discount_codes WHERE name = $1 FOR UPDATE`, name,
	)
	code, err := scanDiscount(row)
	if err != nil {
		return nil, convertErr(err, "locking discount code %s", name)
	}
	return code, nil
}

func (d *DiscountRepository) HasUsage(ctx context.Context, userID, codeID int64) (bool, error) {
	var exists bool
	err := d.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM discount_usages WHERE user_id = $1 AND code_id = $2)`,
		userID, codeID,
	).Scan(&exists)
	if err != nil {
		return false, convertErr(err, "checking usage of code %d by user %d", codeID, userID)
	}
	return exists, nil
}

func (d *DiscountRepository) CountUsages(ctx context.Context, codeID int64) (int64, error) {
	var count int64
	err := d.conn.QueryRow(ctx, `SELECT COUNT(*) FROM discount_usages WHERE code_id = $1`, codeID).Scan(&count)
	if err != nil {
		return 0, convertErr(err, "counting usages of code %d", codeID)
	}
	return count, nil
}

// CreateUsage записывает погашение кода. Повторное погашение тем же юзером - domain.ErrDuplicateKey.
func (d *DiscountRepository) CreateUsage(ctx context.Context, userID, codeID int64) (*domain.DiscountUsage, error) {
	var usage domain.DiscountUsage
	err := d.conn.QueryRow(ctx,
		`INSERT INTO discount_usages (user_id, code_id) VALUES ($1, $2)
		RETURNING id, user_id, code_id, used_at`,
		userID, codeID,
	).Scan(&usage.ID, &usage.UserID, &usage.CodeID, &usage.UsedAt)
	if err != nil {
		return nil, convertErr(err, "creating usage of code %d by user %d", codeID, userID)
	}
	return &usage, nil
}

func scanDiscount(row pgx.Row) (*domain.DiscountCode, error) {
	var code domain.DiscountCode
	if err := row.Scan(
		&code.ID,
		&code.CreatedAt,
		&code.UpdatedAt,
		&code.Name,
		&code.Value,
		&code.MaxUsage,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &code, nil
}
