package service

import (
	"fmt"

	"github.com/fsdevblog/gamestore/internal/service/psswd"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	UserService     *UserService
	CatalogService  *CatalogService
	CartService     *CartService
	CheckoutService *CheckoutService
	DiscountService *DiscountService
	WalletService   *WalletService
	RankingService  *RankingService
}

type FactoryArgs struct {
	JWTSecret []byte
	// RankingCache nil - без кэша.
	RankingCache RankingCache
	Logger       logrus.FieldLogger
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	userService, err := NewUserService(unitOfWork, args.JWTSecret, psswd.PasswordHash(""))
	if err != nil {
		return nil, fmt.Errorf("service factory: %s", err.Error())
	}

	catalogService, err := NewCatalogService(unitOfWork)
	if err != nil {
		return nil, fmt.Errorf("service factory: %s", err.Error())
	}

	cartService, err := NewCartService(unitOfWork)
	if err != nil {
		return nil, fmt.Errorf("service factory: %s", err.Error())
	}

	discountService, err := NewDiscountService(unitOfWork)
	if err != nil {
		return nil, fmt.Errorf("service factory: %s", err.Error())
	}

	walletService, err := NewWalletService(unitOfWork)
	if err != nil {
		return nil, fmt.Errorf("service factory: %s", err.Error())
	}

	rankingService, err := NewRankingService(unitOfWork, args.RankingCache, args.Logger)
	if err != nil {
		return nil, fmt.Errorf("service factory: %s", err.Error())
	}

	return &AppServices{
		UserService:     userService,
		CatalogService:  catalogService,
		CartService:     cartService,
		CheckoutService: NewCheckoutService(unitOfWork, discountService),
		DiscountService: discountService,
		WalletService:   walletService,
		RankingService:  rankingService,
	}, nil
}
