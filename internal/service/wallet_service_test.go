package service

import (
	"context"
	"testing"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WalletServiceTestSuite struct {
	repoMocksSuite
	service *WalletService
}

func TestWalletServiceSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.setupMocks()
	service, err := NewWalletService(s.mockUOW)
	s.Require().NoError(err)
	s.service = service
}

func (s *WalletServiceTestSuite) expectTransaction(userID int64, txType domain.WalletTransactionType, amount string) {
	s.mockWalletRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error) {
			s.Equal(userID, args.UserID)
			s.Equal(txType, args.Type)
			s.True(args.Amount.Equal(dec(amount)))
			return &domain.WalletTransaction{ID: 1, UserID: userID, Type: txType, Amount: args.Amount}, nil
		})
}

func (s *WalletServiceTestSuite) TestDeposit() {
	s.mockUserRepo.EXPECT().IncreaseBalance(gomock.Any(), int64(1), eqDecimal("25.50")).Return(dec("125.50"), nil)
	s.expectTransaction(1, domain.WalletTransactionDeposit, "25.50")

	result, err := s.service.Deposit(s.T().Context(), 1, dec("25.50"))
	s.Require().NoError(err)
	s.True(result.BalanceAfter.Equal(dec("125.5")))
	s.Equal(domain.WalletTransactionDeposit, result.Transaction.Type)
}

func (s *WalletServiceTestSuite) TestDeposit_InvalidAmount() {
	s.mockUserRepo.EXPECT().IncreaseBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	for _, amount := range []string{"0", "-5", "1.001", "10000000000.00", "1e15"} {
		s.Run(amount, func() {
			_, err := s.service.Deposit(s.T().Context(), 1, dec(amount))
			s.Require().ErrorIs(err, domain.ErrValidation)
		})
	}
}

func (s *WalletServiceTestSuite) TestWithdraw() {
	cases := []struct {
		name    string
		balance string
		amount  string
		wantErr error
	}{
		{name: "ok", balance: "100", amount: "40"},
		{name: "whole balance", balance: "40", amount: "40"},
		{name: "insufficient funds", balance: "39.99", amount: "40", wantErr: domain.ErrInsufficientFunds},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockUserRepo.EXPECT().LockBalance(gomock.Any(), int64(1)).Return(dec(t.balance), nil)
			if t.wantErr == nil {
				after := dec(t.balance).Sub(dec(t.amount))
				s.mockUserRepo.EXPECT().DecreaseBalance(gomock.Any(), int64(1), eqDecimal(t.amount)).Return(after, nil)
				s.expectTransaction(1, domain.WalletTransactionWithdraw, t.amount)
			}

			result, err := s.service.Withdraw(s.T().Context(), 1, dec(t.amount))
			s.Require().ErrorIs(err, t.wantErr)
			if t.wantErr == nil {
				s.False(result.BalanceAfter.IsNegative())
			}
		})
	}
}

func (s *WalletServiceTestSuite) TestGetBalance() {
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.User{ID: 1, WalletBalance: dec("12.34")}, nil)

	balance, err := s.service.GetBalance(s.T().Context(), 1)
	s.Require().NoError(err)
	s.True(balance.Equal(dec("12.34")))
}

func (s *WalletServiceTestSuite) TestApplyWalletChange_Negative() {
	_, _, err := applyWalletChange(s.T().Context(), s.mockTX, 1, domain.WalletTransactionDebit, decimal.NewFromInt(-1))
	s.Require().ErrorIs(err, domain.ErrValidation)
}
