package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/internal/service/mocks"
	"github.com/fsdevblog/gamestore/pkg/uow"
	uowmocks "github.com/fsdevblog/gamestore/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
)

type RankingServiceTestSuite struct {
	repoMocksSuite
	mockCache *mocks.MockRankingCache
	logHook   *test.Hook
	service   *RankingService
	now       time.Time
	today     time.Time
}

func TestRankingServiceSuite(t *testing.T) {
	suite.Run(t, new(RankingServiceTestSuite))
}

func (s *RankingServiceTestSuite) SetupTest() {
	s.setupMocks()
	s.mockCache = mocks.NewMockRankingCache(s.mockCtrl)

	logger, hook := test.NewNullLogger()
	s.logHook = hook

	service, err := NewRankingService(s.mockUOW, s.mockCache, logger)
	s.Require().NoError(err)

	// 23:30 по Москве - еще 20:30 UTC того же дня.
	msk := time.FixedZone("MSK", 3*60*60)
	s.now = time.Date(2025, 3, 15, 23, 30, 0, 0, msk)
	s.today = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return s.now }
	s.service = service
}

func (s *RankingServiceTestSuite) TestRebuild() {
	days := 7
	since := s.now.UTC().AddDate(0, 0, -days)
	entries := []domain.RankingEntry{
		{RankDate: s.today, RankPosition: 1, GameID: 10, GameName: "Game A", TotalSales: 4},
	}

	gomock.InOrder(
		s.mockRankingRepo.EXPECT().LockDate(gomock.Any(), s.today).Return(nil),
		s.mockRankingRepo.EXPECT().DeleteByDate(gomock.Any(), s.today).Return(int64(3), nil),
		s.mockRankingRepo.EXPECT().
			InsertSnapshot(gomock.Any(), s.today, repoargs.RankingCompute{Limit: 5, Since: &since}).
			Return(int64(3), nil),
		s.mockRankingRepo.EXPECT().GetByDate(gomock.Any(), s.today).Return(entries, nil),
		s.mockCache.EXPECT().Set(gomock.Any(), s.today, entries).Return(nil),
	)
	s.mockCache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Times(0)

	result, err := s.service.Rebuild(s.T().Context(), RankingArgs{Limit: 5, Days: &days})
	s.Require().NoError(err)
	s.Equal(s.today, result.RankDate)
	s.Equal(int64(3), result.InsertedRows)
	s.Equal(5, result.Limit)
}

// Снапшот, прочитанный из базы до пересборки, не должен перетереть кэш после нее.
func (s *RankingServiceTestSuite) TestRebuild_StaleReadDoesNotOverwriteCache() {
	stale := []domain.RankingEntry{
		{RankDate: s.today, RankPosition: 1, GameID: 10, GameName: "Game A", TotalSales: 4},
	}
	fresh := []domain.RankingEntry{
		{RankDate: s.today, RankPosition: 1, GameID: 11, GameName: "Game B", TotalSales: 9},
	}

	gomock.InOrder(
		s.mockCache.EXPECT().Get(gomock.Any(), s.today).Return(nil, false, nil),
		s.mockRankingRepo.EXPECT().GetByDate(gomock.Any(), s.today).
			DoAndReturn(func(ctx context.Context, _ time.Time) ([]domain.RankingEntry, error) {
				// пересборка успевает закоммитить новый снапшот, пока читатель держит старый
				s.mockRankingRepo.EXPECT().LockDate(gomock.Any(), s.today).Return(nil)
				s.mockRankingRepo.EXPECT().DeleteByDate(gomock.Any(), s.today).Return(int64(1), nil)
				s.mockRankingRepo.EXPECT().InsertSnapshot(gomock.Any(), s.today, gomock.Any()).Return(int64(1), nil)
				s.mockRankingRepo.EXPECT().GetByDate(gomock.Any(), s.today).Return(fresh, nil)
				s.mockCache.EXPECT().Set(gomock.Any(), s.today, fresh).Return(nil)

				_, err := s.service.Rebuild(ctx, RankingArgs{})
				s.Require().NoError(err)
				return stale, nil
			}),
		s.mockCache.EXPECT().SetIfAbsent(gomock.Any(), s.today, stale).Return(nil),
	)
	s.mockCache.EXPECT().Set(gomock.Any(), s.today, stale).Times(0)

	snapshot, err := s.service.Get(s.T().Context(), nil)
	s.Require().NoError(err)
	s.Equal(stale, snapshot.Entries)
}

func (s *RankingServiceTestSuite) TestRebuild_InvalidArgs() {
	zero := 0
	cases := []struct {
		name string
		args RankingArgs
	}{
		{name: "limit too big", args: RankingArgs{Limit: MaxRankingLimit + 1}},
		{name: "negative limit", args: RankingArgs{Limit: -1}},
		{name: "zero days", args: RankingArgs{Days: &zero}},
	}

	s.mockRankingRepo.EXPECT().LockDate(gomock.Any(), gomock.Any()).Times(0)

	for _, t := range cases {
		s.Run(t.name, func() {
			_, err := s.service.Rebuild(s.T().Context(), t.args)
			s.Require().ErrorIs(err, domain.ErrValidation)
		})
	}
}

func (s *RankingServiceTestSuite) TestRebuild_CacheFailureIsNotFatal() {
	s.mockRankingRepo.EXPECT().LockDate(gomock.Any(), s.today).Return(nil)
	s.mockRankingRepo.EXPECT().DeleteByDate(gomock.Any(), s.today).Return(int64(0), nil)
	s.mockRankingRepo.EXPECT().
		InsertSnapshot(gomock.Any(), s.today, repoargs.RankingCompute{Limit: DefaultRankingLimit}).
		Return(int64(0), nil)
	s.mockRankingRepo.EXPECT().GetByDate(gomock.Any(), s.today).Return(nil, nil)
	gomock.InOrder(
		s.mockCache.EXPECT().Set(gomock.Any(), s.today, []domain.RankingEntry{}).Return(errors.New("connection refused")),
		s.mockCache.EXPECT().Invalidate(gomock.Any(), s.today).Return(errors.New("connection refused")),
	)

	_, err := s.service.Rebuild(s.T().Context(), RankingArgs{})
	s.Require().NoError(err)
	s.Require().NotNil(s.logHook.LastEntry())
	s.Equal(logrus.WarnLevel, s.logHook.LastEntry().Level)
	s.Len(s.logHook.AllEntries(), 2)
}

func (s *RankingServiceTestSuite) TestRebuild_RollbackDropsCachedSnapshot() {
	ctrl := gomock.NewController(s.T())
	mockUOW := uowmocks.NewMockUOW(ctrl)
	mockCache := mocks.NewMockRankingCache(ctrl)
	mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.RankingRepoName)).Return(s.mockRankingRepo, nil)

	service, err := NewRankingService(mockUOW, mockCache, nil)
	s.Require().NoError(err)
	service.now = func() time.Time { return s.now }

	commitErr := errors.New("commit failed")
	mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			s.Require().NoError(fn(ctx, s.mockTX))
			return commitErr
		},
	)
	s.mockRankingRepo.EXPECT().LockDate(gomock.Any(), s.today).Return(nil)
	s.mockRankingRepo.EXPECT().DeleteByDate(gomock.Any(), s.today).Return(int64(0), nil)
	s.mockRankingRepo.EXPECT().InsertSnapshot(gomock.Any(), s.today, gomock.Any()).Return(int64(1), nil)
	s.mockRankingRepo.EXPECT().GetByDate(gomock.Any(), s.today).Return([]domain.RankingEntry{{GameID: 10}}, nil)
	gomock.InOrder(
		mockCache.EXPECT().Set(gomock.Any(), s.today, gomock.Any()).Return(nil),
		mockCache.EXPECT().Invalidate(gomock.Any(), s.today).Return(nil),
	)

	_, err = service.Rebuild(s.T().Context(), RankingArgs{})
	s.Require().ErrorIs(err, commitErr)
}

func (s *RankingServiceTestSuite) TestGet() {
	entries := []domain.RankingEntry{
		{RankDate: s.today, RankPosition: 1, GameID: 10, GameName: "Game A", TotalSales: 4},
	}

	s.Run("cache hit", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), s.today).Return(entries, true, nil)

		snapshot, err := s.service.Get(s.T().Context(), nil)
		s.Require().NoError(err)
		s.Equal(entries, snapshot.Entries)
	})

	s.Run("cache miss reads db and fills cache", func() {
		date := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
		day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		s.mockCache.EXPECT().Get(gomock.Any(), day).Return(nil, false, nil)
		s.mockRankingRepo.EXPECT().GetByDate(gomock.Any(), day).Return(entries, nil)
		s.mockCache.EXPECT().SetIfAbsent(gomock.Any(), day, entries).Return(nil)

		snapshot, err := s.service.Get(s.T().Context(), &date)
		s.Require().NoError(err)
		s.Equal(day, snapshot.RankDate)
		s.Equal(entries, snapshot.Entries)
	})

	s.Run("empty snapshot", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), s.today).Return(nil, false, errors.New("timeout"))
		s.mockRankingRepo.EXPECT().GetByDate(gomock.Any(), s.today).Return(nil, nil)
		s.mockCache.EXPECT().SetIfAbsent(gomock.Any(), s.today, []domain.RankingEntry{}).Return(nil)

		snapshot, err := s.service.Get(s.T().Context(), nil)
		s.Require().NoError(err)
		s.NotNil(snapshot.Entries)
		s.Empty(snapshot.Entries)
	})
}

func (s *RankingServiceTestSuite) TestPreview() {
	entries := []domain.RankingEntry{{RankPosition: 1, GameID: 10, TotalSales: 2}}
	s.mockRankingRepo.EXPECT().Preview(gomock.Any(), repoargs.RankingCompute{Limit: 3}).Return(entries, nil)

	got, err := s.service.Preview(s.T().Context(), RankingArgs{Limit: 3})
	s.Require().NoError(err)
	s.Equal(entries, got)
}

func (s *RankingServiceTestSuite) TestNilCache() {
	service, err := NewRankingService(s.mockUOW, nil, nil)
	s.Require().NoError(err)

	s.mockRankingRepo.EXPECT().GetByDate(gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err = service.Get(s.T().Context(), nil)
	s.Require().NoError(err)
}
