package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/internal/service/mocks"
	"github.com/fsdevblog/gamestore/pkg/uow"
	uowmocks "github.com/fsdevblog/gamestore/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// repoMocksSuite общая часть тестов сервисов: моки UOW, транзакции и всех репозиториев.
// Любой репозиторий можно получить как из UOW, так и из транзакции, а Do выполняет функцию с мок-транзакцией.
type repoMocksSuite struct {
	suite.Suite
	mockCtrl         *gomock.Controller
	mockUOW          *uowmocks.MockUOW
	mockTX           *uowmocks.MockTX
	mockUserRepo     *mocks.MockUserRepository
	mockGameRepo     *mocks.MockGameRepository
	mockCartRepo     *mocks.MockCartRepository
	mockDiscountRepo *mocks.MockDiscountRepository
	mockPurchaseRepo *mocks.MockPurchaseRepository
	mockWalletRepo   *mocks.MockWalletTransactionRepository
	mockRankingRepo  *mocks.MockRankingRepository
}

func (s *repoMocksSuite) setupMocks() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockGameRepo = mocks.NewMockGameRepository(s.mockCtrl)
	s.mockCartRepo = mocks.NewMockCartRepository(s.mockCtrl)
	s.mockDiscountRepo = mocks.NewMockDiscountRepository(s.mockCtrl)
	s.mockPurchaseRepo = mocks.NewMockPurchaseRepository(s.mockCtrl)
	s.mockWalletRepo = mocks.NewMockWalletTransactionRepository(s.mockCtrl)
	s.mockRankingRepo = mocks.NewMockRankingRepository(s.mockCtrl)

	repos := map[repoargs.RepositoryName]uow.Repository{
		repoargs.UserRepoName:              s.mockUserRepo,
		repoargs.GameRepoName:              s.mockGameRepo,
		repoargs.CartRepoName:              s.mockCartRepo,
		repoargs.DiscountRepoName:          s.mockDiscountRepo,
		repoargs.PurchaseRepoName:          s.mockPurchaseRepo,
		repoargs.WalletTransactionRepoName: s.mockWalletRepo,
		repoargs.RankingRepoName:           s.mockRankingRepo,
	}
	for name, repo := range repos {
		s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(name)).Return(repo, nil).AnyTimes()
		s.mockTX.EXPECT().Get(uow.RepositoryName(name)).Return(repo, nil).AnyTimes()
	}

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	).AnyTimes()
}

func (s *repoMocksSuite) activeCart(id, userID int64) domain.ActiveCart {
	cart, err := domain.NewActiveCart(domain.Cart{ID: id, UserID: userID, Status: domain.CartStatusActive})
	s.Require().NoError(err)
	return cart
}

// decimalEq сравнивает decimal по значению, а не по внутреннему представлению.
type decimalEq struct {
	want decimal.Decimal
}

func eqDecimal(v string) gomock.Matcher {
	return decimalEq{want: decimal.RequireFromString(v)}
}

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string {
	return fmt.Sprintf("is equal to decimal %s", m.want)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
