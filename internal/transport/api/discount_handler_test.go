package api

import (
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

type DiscountHandlerTestSuite struct {
	handlersSuite
}

func TestDiscountHandlerSuite(t *testing.T) {
	suite.Run(t, new(DiscountHandlerTestSuite))
}

func (s *DiscountHandlerTestSuite) SetupTest() {
	s.setupRouter()
}

func (s *DiscountHandlerTestSuite) TestAdminRoutes_Forbidden() {
	s.mockDiscountSvs.EXPECT().List(gomock.Any()).Times(0)
	s.mockDiscountSvs.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + AdminDiscountsRoute,
	}, testutils.WithBearer(s.userToken))
	resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp = testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + AdminDiscountsRoute,
		Body:   testutils.JSONBody(gin.H{"name": "SAVE10", "value": "10", "max_usage": 5}),
	})
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *DiscountHandlerTestSuite) TestCreate() {
	s.mockDiscountSvs.EXPECT().
		Create(gomock.Any(), service.DiscountArgs{Name: "SAVE10", Value: decimal.RequireFromString("10"), MaxUsage: 5}).
		Return(&domain.DiscountCode{ID: 1, Name: "SAVE10", Value: decimal.RequireFromString("10"), MaxUsage: 5}, nil)
	s.mockDiscountSvs.EXPECT().
		Create(gomock.Any(), service.DiscountArgs{Name: "TAKEN", Value: decimal.RequireFromString("10"), MaxUsage: 0}).
		Return(nil, fmt.Errorf("create discount code: %w", domain.ErrDuplicateKey))

	cases := []struct {
		name       string
		body       gin.H
		wantStatus int
	}{
		{name: "ok", body: gin.H{"name": "SAVE10", "value": "10", "max_usage": 5}, wantStatus: http.StatusCreated},
		{name: "duplicate name", body: gin.H{"name": "TAKEN", "value": "10", "max_usage": 0}, wantStatus: http.StatusConflict},
		{name: "missing max usage", body: gin.H{"name": "SAVE10", "value": "10"}, wantStatus: http.StatusUnprocessableEntity},
		{name: "negative max usage", body: gin.H{"name": "SAVE10", "value": "10", "max_usage": -1}, wantStatus: http.StatusUnprocessableEntity},
		{name: "negative value", body: gin.H{"name": "SAVE10", "value": "-1", "max_usage": 5}, wantStatus: http.StatusUnprocessableEntity},
		{name: "missing name", body: gin.H{"value": "10", "max_usage": 5}, wantStatus: http.StatusUnprocessableEntity},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			resp := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + AdminDiscountsRoute,
				Body:   testutils.JSONBody(t.body),
			}, testutils.WithBearer(s.adminToken))
			defer resp.Body.Close()
			s.Equal(t.wantStatus, resp.StatusCode)
		})
	}
}

func (s *DiscountHandlerTestSuite) TestUpdateAndDelete() {
	s.mockDiscountSvs.EXPECT().
		Update(gomock.Any(), int64(1), service.DiscountArgs{Name: "SAVE15", Value: decimal.RequireFromString("15"), MaxUsage: 3}).
		Return(&domain.DiscountCode{ID: 1, Name: "SAVE15", Value: decimal.RequireFromString("15"), MaxUsage: 3}, nil)
	s.mockDiscountSvs.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)
	s.mockDiscountSvs.EXPECT().Delete(gomock.Any(), int64(2)).Return(fmt.Errorf("delete discount code: %w", domain.ErrRecordNotFound))

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPut,
		URL:    RouteGroup + "/admin/discounts/1",
		Body:   testutils.JSONBody(gin.H{"name": "SAVE15", "value": "15", "max_usage": 3}),
	}, testutils.WithBearer(s.adminToken))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var updated DiscountResponse
	s.Require().NoError(testutils.DecodeJSON(resp, &updated))
	s.Equal("15.00", updated.Value)
	s.Equal(int32(3), updated.MaxUsage)

	resp = testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodDelete,
		URL:    RouteGroup + "/admin/discounts/1",
	}, testutils.WithBearer(s.adminToken))
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp = testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodDelete,
		URL:    RouteGroup + "/admin/discounts/2",
	}, testutils.WithBearer(s.adminToken))
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *DiscountHandlerTestSuite) TestIndexAndAvailable() {
	stats := []domain.DiscountCodeStats{
		{
			DiscountCode: domain.DiscountCode{ID: 1, Name: "SAVE10", Value: decimal.RequireFromString("10"), MaxUsage: 5},
			UsedCount:    2,
		},
	}
	s.mockDiscountSvs.EXPECT().List(gomock.Any()).Return(stats, nil)
	s.mockDiscountSvs.EXPECT().ListAvailable(gomock.Any()).Return(stats, nil)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + AdminDiscountsRoute,
	}, testutils.WithBearer(s.adminToken))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body []DiscountStatsResponse
	s.Require().NoError(testutils.DecodeJSON(resp, &body))
	s.Require().Len(body, 1)
	s.Equal(int64(2), body[0].UsedCount)
	s.Equal(int64(3), body[0].RemainingUses)

	// доступные коды видны без авторизации.
	resp = testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + AvailableDiscountsRoute,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body = nil
	s.Require().NoError(testutils.DecodeJSON(resp, &body))
	s.Require().Len(body, 1)
	s.Equal("SAVE10", body[0].Name)
}
