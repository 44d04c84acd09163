package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/shopspring/decimal"
)

type CatalogService struct {
	gameRepo     GameRepository
	purchaseRepo PurchaseRepository
}

func NewCatalogService(u uow.UOW) (*CatalogService, error) {
	gameRepo, err := connRepo[GameRepository](u, repoargs.GameRepoName)
	if err != nil {
		return nil, err
	}
	purchaseRepo, err := connRepo[PurchaseRepository](u, repoargs.PurchaseRepoName)
	if err != nil {
		return nil, err
	}
	return &CatalogService{
		gameRepo:     gameRepo,
		purchaseRepo: purchaseRepo,
	}, nil
}

type CreateGameArgs struct {
	Name     string
	Price    decimal.Decimal
	Category string
}

func (s *CatalogService) CreateGame(ctx context.Context, args CreateGameArgs) (*domain.Game, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, fmt.Errorf("create game: %w", validationErr("game name is required"))
	}
	if args.Price.IsNegative() {
		return nil, fmt.Errorf("create game: %w", validationErr("price must not be negative"))
	}
	if args.Price.GreaterThan(domain.MaxMoney) {
		return nil, fmt.Errorf("create game: %w", validationErr("price must not exceed %s", domain.MaxMoney))
	}
	game, err := s.gameRepo.Create(ctx, repoargs.CreateGame{
		Name:     name,
		Price:    args.Price,
		Category: strings.TrimSpace(args.Category),
	})
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return game, nil
}

// GetPricing возвращает игру с ценой. Нет игры - domain.ErrRecordNotFound.
func (s *CatalogService) GetPricing(ctx context.Context, gameID int64) (*domain.Game, error) {
	return s.gameRepo.FindByID(ctx, gameID) //nolint:wrapcheck
}

// OwnedGames игры, купленные юзером.
func (s *CatalogService) OwnedGames(ctx context.Context, userID int64) ([]domain.Purchase, error) {
	return s.purchaseRepo.GetByUserID(ctx, userID) //nolint:wrapcheck
}
