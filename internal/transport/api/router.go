package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/gamestore/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 5 * time.Second
)

const (
	RouteGroup    = "/api"
	RegisterRoute = "/user/register"
	LoginRoute    = "/user/login"

	GameRoute               = "/games/:id"
	RankingRoute            = "/ranking"
	RankingPreviewRoute     = "/ranking/preview"
	RankingRebuildRoute     = "/ranking/rebuild"
	AvailableDiscountsRoute = "/discounts/available"

	CartRoute          = "/user/cart"
	CartItemsRoute     = "/user/cart/items"
	CartItemRoute      = "/user/cart/items/:game_id"
	CheckoutRoute      = "/user/cart/checkout"
	BalanceRoute       = "/user/balance"
	DepositRoute       = "/user/balance/deposit"
	WithdrawRoute      = "/user/balance/withdraw"
	WalletHistoryRoute = "/user/wallet/history"
	PurchasesRoute     = "/user/purchases"

	AdminGamesRoute       = "/admin/games"
	AdminDiscountsRoute   = "/admin/discounts"
	AdminDiscountRoute    = "/admin/discounts/:id"
	AdminUserHistoryRoute = "/admin/users/:id/history"
)

type RouterArgs struct {
	Logger          logrus.FieldLogger
	UserService     UserServicer
	CatalogService  CatalogServicer
	CartService     CartServicer
	CheckoutService CheckoutServicer
	DiscountService DiscountServicer
	WalletService   WalletServicer
	RankingService  RankingServicer
	JWTSecretKey    []byte
	// RateLimitRPS 0 - без ограничения частоты запросов.
	RateLimitRPS   float64
	RateLimitBurst int
}

var registerValidatorsOnce = sync.OnceValue(registerValidators)

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidatorsOnce(); err != nil {
		return nil, fmt.Errorf("new router: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())
	r.Use(middlewares.RateLimit(args.RateLimitRPS, args.RateLimitBurst))

	authHandler := NewAuthHandler(args.UserService)
	catalogHandler := NewCatalogHandler(args.CatalogService)
	cartHandler := NewCartHandler(args.CartService, args.CheckoutService)
	balanceHandler := NewBalanceHandler(args.WalletService)
	purchasesHandler := NewPurchasesHandler(args.CheckoutService, args.CatalogService)
	discountHandler := NewDiscountHandler(args.DiscountService)
	rankingHandler := NewRankingHandler(args.RankingService)
	adminHandler := NewAdminHandler(args.UserService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.GET(GameRoute, catalogHandler.Show)
	api.GET(RankingRoute, rankingHandler.Show)
	api.GET(RankingPreviewRoute, rankingHandler.Preview)
	api.GET(AvailableDiscountsRoute, discountHandler.Available)

	authed := api.Group("", middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	authed.GET(CartRoute, cartHandler.View)
	authed.DELETE(CartRoute, cartHandler.Clear)
	authed.POST(CartItemsRoute, cartHandler.AddItem)
	authed.DELETE(CartItemRoute, cartHandler.RemoveItem)
	authed.POST(CheckoutRoute, cartHandler.Checkout)

	authed.GET(BalanceRoute, balanceHandler.Index)
	authed.POST(DepositRoute, balanceHandler.Deposit)
	authed.POST(WithdrawRoute, balanceHandler.Withdraw)
	authed.GET(WalletHistoryRoute, balanceHandler.History)

	authed.POST(PurchasesRoute, purchasesHandler.Create)
	authed.GET(PurchasesRoute, purchasesHandler.Index)

	authed.POST(RankingRebuildRoute, rankingHandler.Rebuild)

	admin := authed.Group("", middlewares.AdminRequired(args.UserService))
	admin.POST(AdminGamesRoute, catalogHandler.Create)
	admin.GET(AdminDiscountsRoute, discountHandler.Index)
	admin.POST(AdminDiscountsRoute, discountHandler.Create)
	admin.PUT(AdminDiscountRoute, discountHandler.Update)
	admin.DELETE(AdminDiscountRoute, discountHandler.Delete)
	admin.GET(AdminUserHistoryRoute, adminHandler.UserHistory)

	return r, nil
}
