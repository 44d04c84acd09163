package pgrepo

import (
	"context"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const gameColumns = "id, created_at, name, price, category"

type GameRepository struct {
	conn uow.DBTX
}

func NewGameRepository(conn uow.DBTX) *GameRepository {
	return &GameRepository{conn: conn}
}

func (g *GameRepository) Create(ctx context.Context, args repoargs.CreateGame) (*domain.Game, error) {
	row := g.conn.QueryRow(ctx,
		`INSERT INTO games (name, price, category) VALUES ($1, $2, $3) RETURNING `+gameColumns,
		args.Name, args.Price, args.Category,
	)
	game, err := scanGame(row)
	if err != nil {
		return nil, convertErr(err, "creating game")
	}
	return game, nil
}

// FindByID возвращает игру с ценой. Цена читается один раз и дальше используется в рамках транзакции.
func (g *GameRepository) FindByID(ctx context.Context, id int64) (*domain.Game, error) {
	row := g.conn.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	game, err := scanGame(row)
	if err != nil {
		return nil, convertErr(err, "finding game by id %d", id)
	}
	return game, nil
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var game domain.Game
	if err := row.Scan(&game.ID, &game.CreatedAt, &game.Name, &game.Price, &game.Category); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &game, nil
}
