package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/jackc/pgx/v5"
)

// topSalesQuery топ игр по количеству покупок. При равенстве выше игра с меньшим id.
// $1 - лимит, $2 - нижняя граница даты покупки (NULL - без ограничения).
const topSalesQuery = `SELECT s.game_id, s.total_sales,
		ROW_NUMBER() OVER (ORDER BY s.total_sales DESC, s.game_id ASC) AS rank_position
	FROM (
		SELECT p.game_id, COUNT(*) AS total_sales
		FROM purchases p
		WHERE ($2::timestamptz IS NULL OR p.purchase_date >= $2::timestamptz)
		GROUP BY p.game_id
		ORDER BY total_sales DESC, p.game_id ASC
		LIMIT $1
	) s`

type RankingRepository struct {
	conn uow.DBTX
}

func NewRankingRepository(conn uow.DBTX) *RankingRepository {
	return &RankingRepository{conn: conn}
}

// LockDate берет транзакционную advisory блокировку на дату снапшота, сериализуя параллельные
// пересборки одной и той же даты.
func (r *RankingRepository) LockDate(ctx context.Context, date time.Time) error {
	_, err := r.conn.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext('game_rankings:' || $1::date::text))`, date,
	)
	if err != nil {
		return convertErr(err, "locking ranking date %s", date.Format(time.DateOnly))
	}
	return nil
}

func (r *RankingRepository) DeleteByDate(ctx context.Context, date time.Time) (int64, error) {
	tag, err := r.conn.Exec(ctx, `DELETE FROM game_rankings WHERE rank_date = $1::date`, date)
	if err != nil {
		return 0, convertErr(err, "deleting ranking for %s", date.Format(time.DateOnly))
	}
	return tag.RowsAffected(), nil
}

// InsertSnapshot вычисляет рейтинг и сохраняет его на дату date. Возвращает количество вставленных строк.
func (r *RankingRepository) InsertSnapshot(
	ctx context.Context,
	date time.Time,
	args repoargs.RankingCompute,
) (int64, error) {
	tag, err := r.conn.Exec(ctx,
		`INSERT INTO game_rankings (rank_date, rank_position, game_id, total_sales)
		SELECT $3::date, t.rank_position, t.game_id, t.total_sales FROM (`+topSalesQuery+`) t`,
		args.Limit, args.Since, date,
	)
	if err != nil {
		return 0, convertErr(err, "inserting ranking for %s", date.Format(time.DateOnly))
	}
	return tag.RowsAffected(), nil
}

// Preview вычисляет рейтинг без сохранения.
func (r *RankingRepository) Preview(ctx context.Context, args repoargs.RankingCompute) ([]domain.RankingEntry, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT t.rank_position, t.game_id, g.name, g.price, t.total_sales
		FROM (`+topSalesQuery+`) t JOIN games g ON g.id = t.game_id
		ORDER BY t.rank_position`,
		args.Limit, args.Since,
	)
	if err != nil {
		return nil, convertErr(err, "previewing ranking")
	}
	return collectRanking(rows, time.Time{})
}

// GetByDate возвращает сохраненный снапшот за дату. Пустой срез, если снапшота нет.
func (r *RankingRepository) GetByDate(ctx context.Context, date time.Time) ([]domain.RankingEntry, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT gr.rank_position, gr.game_id, g.name, g.price, gr.total_sales
		FROM game_rankings gr JOIN games g ON g.id = gr.game_id
		WHERE gr.rank_date = $1::date
		ORDER BY gr.rank_position`,
		date,
	)
	if err != nil {
		return nil, convertErr(err, "getting ranking for %s", date.Format(time.DateOnly))
	}
	return collectRanking(rows, date)
}

func collectRanking(rows pgx.Rows, date time.Time) ([]domain.RankingEntry, error) {
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RankingEntry, error) {
		e := domain.RankingEntry{RankDate: date}
		var position int64
		scanErr := row.Scan(&position, &e.GameID, &e.GameName, &e.Price, &e.TotalSales)
		e.RankPosition = int32(position) //nolint:gosec
		return e, scanErr                //nolint:wrapcheck
	})
	if err != nil {
		return nil, convertErr(err, "scanning ranking")
	}
	return entries, nil
}
