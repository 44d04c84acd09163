package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
)

type RankingService struct {
	uow         uow.UOW
	rankingRepo RankingRepository
	cache       RankingCache
	logger      logrus.FieldLogger
	now         func() time.Time
}

// NewRankingService создает сервис рейтинга. cache может быть nil - тогда снапшоты всегда читаются из базы.
func NewRankingService(u uow.UOW, cache RankingCache, l logrus.FieldLogger) (*RankingService, error) {
	rankingRepo, err := connRepo[RankingRepository](u, repoargs.RankingRepoName)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = noopRankingCache{}
	}
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &RankingService{
		uow:         u,
		rankingRepo: rankingRepo,
		cache:       cache,
		logger:      l,
		now:         time.Now,
	}, nil
}

type RankingArgs struct {
	// Limit 0 - DefaultRankingLimit.
	Limit int
	// Days учитывать покупки только за последние Days дней. nil - за все время.
	Days *int
}

type RankingRebuildResult struct {
	RankDate     time.Time
	InsertedRows int64
	Limit        int
	Days         *int
}

type RankingSnapshot struct {
	RankDate time.Time
	Entries  []domain.RankingEntry
}

// Today текущая дата снапшота (UTC, без времени).
func (s *RankingService) Today() time.Time {
	return truncateToDate(s.now())
}

// Rebuild пересобирает снапшот рейтинга за сегодня: удаляет строки даты и вставляет новый топ.
// Повторная пересборка на тех же данных дает тот же результат.
// Новый снапшот записывается в кэш под advisory lock даты.
func (s *RankingService) Rebuild(ctx context.Context, args RankingArgs) (*RankingRebuildResult, error) {
	compute, err := s.computeArgs(args)
	if err != nil {
		return nil, fmt.Errorf("rebuild ranking: %w", err)
	}
	date := s.Today()

	var (
		inserted int64
		cached   bool
	)
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		rankingRepo, repoErr := txRepo[RankingRepository](tx, repoargs.RankingRepoName)
		if repoErr != nil {
			return repoErr
		}
		if lockErr := rankingRepo.LockDate(c, date); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if _, delErr := rankingRepo.DeleteByDate(c, date); delErr != nil {
			return delErr //nolint:wrapcheck
		}
		var insErr error
		inserted, insErr = rankingRepo.InsertSnapshot(c, date, compute)
		if insErr != nil {
			return insErr //nolint:wrapcheck
		}

		entries, getErr := rankingRepo.GetByDate(c, date)
		if getErr != nil {
			return getErr //nolint:wrapcheck
		}
		if entries == nil {
			entries = []domain.RankingEntry{}
		}
		if setErr := s.cache.Set(c, date, entries); setErr != nil {
			s.logger.WithError(setErr).Warn("ranking cache write failed")
			s.invalidate(ctx, date)
			return nil
		}
		cached = true
		return nil
	})
	if txErr != nil {
		if cached {
			s.invalidate(ctx, date)
		}
		return nil, fmt.Errorf("rebuild ranking: %w", txErr)
	}

	return &RankingRebuildResult{
		RankDate:     date,
		InsertedRows: inserted,
		Limit:        compute.Limit,
		Days:         args.Days,
	}, nil
}

func (s *RankingService) invalidate(ctx context.Context, date time.Time) {
	if err := s.cache.Invalidate(ctx, date); err != nil {
		s.logger.WithError(err).Warn("ranking cache invalidation failed")
	}
}

// Preview вычисляет рейтинг без сохранения.
func (s *RankingService) Preview(ctx context.Context, args RankingArgs) ([]domain.RankingEntry, error) {
	compute, err := s.computeArgs(args)
	if err != nil {
		return nil, fmt.Errorf("preview ranking: %w", err)
	}
	entries, err := s.rankingRepo.Preview(ctx, compute)
	if err != nil {
		return nil, fmt.Errorf("preview ranking: %w", err)
	}
	return entries, nil
}

// Get возвращает сохраненный снапшот за дату date (nil - сегодня). Снапшот кэшируется.
// При промахе прочитанное из базы кладется в кэш, только если ключ еще пуст: запись Rebuild
// всегда свежее.
func (s *RankingService) Get(ctx context.Context, date *time.Time) (*RankingSnapshot, error) {
	rankDate := s.Today()
	if date != nil {
		rankDate = truncateToDate(*date)
	}

	entries, hit, cacheErr := s.cache.Get(ctx, rankDate)
	if cacheErr != nil {
		s.logger.WithError(cacheErr).Warn("ranking cache read failed")
	}
	if hit {
		return &RankingSnapshot{RankDate: rankDate, Entries: entries}, nil
	}

	entries, err := s.rankingRepo.GetByDate(ctx, rankDate)
	if err != nil {
		return nil, fmt.Errorf("get ranking: %w", err)
	}
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	if setErr := s.cache.SetIfAbsent(ctx, rankDate, entries); setErr != nil {
		s.logger.WithError(setErr).Warn("ranking cache write failed")
	}
	return &RankingSnapshot{RankDate: rankDate, Entries: entries}, nil
}

func (s *RankingService) computeArgs(args RankingArgs) (repoargs.RankingCompute, error) {
	limit := args.Limit
	if limit == 0 {
		limit = DefaultRankingLimit
	}
	if limit < 1 || limit > MaxRankingLimit {
		return repoargs.RankingCompute{}, validationErr("limit must be between 1 and %d", MaxRankingLimit)
	}
	compute := repoargs.RankingCompute{Limit: limit}
	if args.Days != nil {
		if *args.Days < 1 {
			return repoargs.RankingCompute{}, validationErr("days must be positive")
		}
		since := s.now().UTC().AddDate(0, 0, -*args.Days)
		compute.Since = &since
	}
	return compute, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type noopRankingCache struct{}

func (noopRankingCache) Get(context.Context, time.Time) ([]domain.RankingEntry, bool, error) {
	return nil, false, nil
}

func (noopRankingCache) Set(context.Context, time.Time, []domain.RankingEntry) error {
	return nil
}

func (noopRankingCache) SetIfAbsent(context.Context, time.Time, []domain.RankingEntry) error {
	return nil
}

func (noopRankingCache) Invalidate(context.Context, time.Time) error {
	return nil
}
