package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/service"
	"github.com/fsdevblog/gamestore/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CartHandlerTestSuite struct {
	handlersSuite
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}

func (s *CartHandlerTestSuite) SetupTest() {
	s.setupRouter()
}

func (s *CartHandlerTestSuite) TestView() {
	s.mockCartSvs.EXPECT().View(gomock.Any(), testUserID).Return(&service.CartView{
		CartID: 7,
		Lines: []domain.CartLine{
			{GameID: 10, GameName: "Game A", Price: decimal.RequireFromString("20"), Quantity: 1},
			{GameID: 11, GameName: "Game B", Price: decimal.RequireFromString("15"), Quantity: 2},
		},
		Total: decimal.RequireFromString("50"),
	}, nil)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + CartRoute,
	}, testutils.WithBearer(s.userToken))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body CartResponse
	s.Require().NoError(testutils.DecodeJSON(resp, &body))
	s.Equal("50.00", body.Total)
	s.Require().Len(body.Items, 2)
	s.Equal("30.00", body.Items[1].Subtotal)
}

func (s *CartHandlerTestSuite) TestView_Unauthorized() {
	s.mockCartSvs.EXPECT().View(gomock.Any(), gomock.Any()).Times(0)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + CartRoute,
	}, testutils.WithBearer("garbage"))
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *CartHandlerTestSuite) TestAddItem() {
	s.mockCartSvs.EXPECT().
		AddItem(gomock.Any(), service.AddCartItemArgs{UserID: testUserID, GameID: 10, Quantity: 2}).
		Return(&service.CartItemAdded{CartID: 7, GameID: 10, GameName: "Game A", Price: decimal.RequireFromString("20"), Quantity: 2}, nil)
	s.mockCartSvs.EXPECT().
		AddItem(gomock.Any(), service.AddCartItemArgs{UserID: testUserID, GameID: 11}).
		Return(nil, fmt.Errorf("add cart item: %w", domain.ErrAlreadyOwned))
	s.mockCartSvs.EXPECT().
		AddItem(gomock.Any(), service.AddCartItemArgs{UserID: testUserID, GameID: 404}).
		Return(nil, fmt.Errorf("add cart item: %w", domain.ErrRecordNotFound))

	cases := []struct {
		name       string
		body       gin.H
		wantStatus int
	}{
		{name: "ok", body: gin.H{"game_id": 10, "quantity": 2}, wantStatus: http.StatusCreated},
		{name: "already owned", body: gin.H{"game_id": 11}, wantStatus: http.StatusConflict},
		{name: "unknown game", body: gin.H{"game_id": 404}, wantStatus: http.StatusNotFound},
		{name: "missing game", body: gin.H{"quantity": 1}, wantStatus: http.StatusUnprocessableEntity},
		{name: "negative quantity", body: gin.H{"game_id": 10, "quantity": -3}, wantStatus: http.StatusUnprocessableEntity},
		{name: "game id as string", body: gin.H{"game_id": "10"}, wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			resp := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + CartItemsRoute,
				Body:   testutils.JSONBody(t.body),
			}, testutils.WithBearer(s.userToken))
			defer resp.Body.Close()
			s.Equal(t.wantStatus, resp.StatusCode)
		})
	}
}

func (s *CartHandlerTestSuite) TestRemoveAndClear() {
	s.mockCartSvs.EXPECT().RemoveItem(gomock.Any(), testUserID, int64(10)).Return(nil)
	s.mockCartSvs.EXPECT().Clear(gomock.Any(), testUserID).Return(int64(0), nil)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodDelete,
		URL:    RouteGroup + "/user/cart/items/10",
	}, testutils.WithBearer(s.userToken))
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp = testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodDelete,
		URL:    RouteGroup + "/user/cart/items/abc",
	}, testutils.WithBearer(s.userToken))
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodDelete,
		URL:    RouteGroup + CartRoute,
	}, testutils.WithBearer(s.userToken))
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *CartHandlerTestSuite) TestCheckout() {
	s.mockCheckoutSvs.EXPECT().
		Checkout(gomock.Any(), service.CheckoutArgs{UserID: testUserID, DiscountCode: "SAVE10"}).
		Return(&service.CheckoutResult{
			CartID:          7,
			DiscountApplied: "SAVE10",
			DiscountValue:   decimal.RequireFromString("10"),
			TotalBefore:     decimal.RequireFromString("50"),
			TotalAfter:      decimal.RequireFromString("40"),
			BalanceAfter:    decimal.RequireFromString("60"),
			GamesPurchased:  []string{"Game A", "Game B"},
		}, nil)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CheckoutRoute,
		Body:   testutils.JSONBody(gin.H{"discount_code": "SAVE10"}),
	}, testutils.WithBearer(s.userToken))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body CheckoutResponse
	s.Require().NoError(testutils.DecodeJSON(resp, &body))
	s.Require().NotNil(body.DiscountApplied)
	s.Equal("SAVE10", *body.DiscountApplied)
	s.Equal("10.00", body.DiscountValue)
	s.Equal("50.00", body.TotalBefore)
	s.Equal("40.00", body.TotalAfter)
	s.Equal("60.00", body.BalanceAfter)
	s.Equal([]string{"Game A", "Game B"}, body.GamesPurchased)
}

func (s *CartHandlerTestSuite) TestCheckout_Errors() {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "empty cart", err: domain.ErrEmptyCart, wantStatus: http.StatusBadRequest},
		{name: "invalid code", err: domain.ErrInvalidDiscountCode, wantStatus: http.StatusNotFound},
		{name: "already redeemed", err: domain.ErrDiscountAlreadyRedeemed, wantStatus: http.StatusConflict},
		{name: "cap exceeded", err: domain.ErrDiscountCapExceeded, wantStatus: http.StatusConflict},
		{name: "insufficient funds", err: domain.ErrInsufficientFunds, wantStatus: http.StatusPaymentRequired},
		{name: "duplicate ownership", err: domain.ErrDuplicateOwnership, wantStatus: http.StatusConflict},
		{name: "store fault", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockCheckoutSvs.EXPECT().
				Checkout(gomock.Any(), service.CheckoutArgs{UserID: testUserID}).
				Return(nil, fmt.Errorf("checkout: %w", t.err))

			resp := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + CheckoutRoute,
			}, testutils.WithBearer(s.userToken))
			s.Equal(t.wantStatus, resp.StatusCode)

			var body struct {
				Error string `json:"error"`
			}
			s.Require().NoError(testutils.DecodeJSON(resp, &body))
			s.NotEmpty(body.Error)
			s.NotContains(body.Error, "connection reset")
		})
	}
}
