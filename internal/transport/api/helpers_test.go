package api

import (
	"time"

	"github.com/fsdevblog/gamestore/internal/service/tokens"
	"github.com/fsdevblog/gamestore/internal/transport/api/mocks"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
)

const (
	testUserID  int64 = 1
	testAdminID int64 = 2
)

// handlersSuite роутер с моками всех сервисов и токены обычного юзера и администратора.
type handlersSuite struct {
	suite.Suite
	router          *gin.Engine
	jwtSecret       []byte
	userToken       string
	adminToken      string
	mockUserSvs     *mocks.MockUserServicer
	mockCatalogSvs  *mocks.MockCatalogServicer
	mockCartSvs     *mocks.MockCartServicer
	mockCheckoutSvs *mocks.MockCheckoutServicer
	mockDiscountSvs *mocks.MockDiscountServicer
	mockWalletSvs   *mocks.MockWalletServicer
	mockRankingSvs  *mocks.MockRankingServicer
}

func (s *handlersSuite) setupRouter() {
	gin.SetMode(gin.TestMode)
	mockCtrl := gomock.NewController(s.T())

	s.mockUserSvs = mocks.NewMockUserServicer(mockCtrl)
	s.mockCatalogSvs = mocks.NewMockCatalogServicer(mockCtrl)
	s.mockCartSvs = mocks.NewMockCartServicer(mockCtrl)
	s.mockCheckoutSvs = mocks.NewMockCheckoutServicer(mockCtrl)
	s.mockDiscountSvs = mocks.NewMockDiscountServicer(mockCtrl)
	s.mockWalletSvs = mocks.NewMockWalletServicer(mockCtrl)
	s.mockRankingSvs = mocks.NewMockRankingServicer(mockCtrl)

	s.jwtSecret = []byte("super secret key")

	var err error
	s.userToken, err = tokens.GenerateUserJWT(testUserID, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	s.adminToken, err = tokens.GenerateUserJWT(testAdminID, time.Hour, s.jwtSecret)
	s.Require().NoError(err)

	// Проверка роли выполняется в middlewares.AdminRequired для всех admin роутов.
	s.mockUserSvs.EXPECT().IsAdmin(gomock.Any(), testUserID).Return(false, nil).AnyTimes()
	s.mockUserSvs.EXPECT().IsAdmin(gomock.Any(), testAdminID).Return(true, nil).AnyTimes()

	logger, _ := test.NewNullLogger()
	s.router, err = New(RouterArgs{
		Logger:          logger,
		UserService:     s.mockUserSvs,
		CatalogService:  s.mockCatalogSvs,
		CartService:     s.mockCartSvs,
		CheckoutService: s.mockCheckoutSvs,
		DiscountService: s.mockDiscountSvs,
		WalletService:   s.mockWalletSvs,
		RankingService:  s.mockRankingSvs,
		JWTSecretKey:    s.jwtSecret,
	})
	s.Require().NoError(err)
}
