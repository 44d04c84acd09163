package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/pkg/uow"
	"github.com/shopspring/decimal"
)

type DiscountService struct {
	uow          uow.UOW
	discountRepo DiscountRepository
}

func NewDiscountService(u uow.UOW) (*DiscountService, error) {
	discountRepo, err := connRepo[DiscountRepository](u, repoargs.DiscountRepoName)
	if err != nil {
		return nil, err
	}
	return &DiscountService{
		uow:          u,
		discountRepo: discountRepo,
	}, nil
}

type DiscountArgs struct {
	Name     string
	Value    decimal.Decimal
	MaxUsage int32
}

func (a DiscountArgs) validate() (repoargs.DiscountCodeSave, error) {
	name := strings.TrimSpace(a.Name)
	switch {
	case name == "":
		return repoargs.DiscountCodeSave{}, validationErr("discount name is required")
	case a.Value.IsNegative():
		return repoargs.DiscountCodeSave{}, validationErr("discount value must not be negative")
	case a.Value.GreaterThan(domain.MaxMoney):
		return repoargs.DiscountCodeSave{}, validationErr("discount value must not exceed %s", domain.MaxMoney)
	case a.MaxUsage < 0:
		return repoargs.DiscountCodeSave{}, validationErr("max usage must not be negative")
	}
	return repoargs.DiscountCodeSave{Name: name, Value: a.Value, MaxUsage: a.MaxUsage}, nil
}

// Create создает код скидки. Занятое имя - domain.ErrDuplicateKey.
func (s *DiscountService) Create(ctx context.Context, args DiscountArgs) (*domain.DiscountCode, error) {
	save, err := args.validate()
	if err != nil {
		return nil, fmt.Errorf("create discount: %w", err)
	}
	code, err := s.discountRepo.Create(ctx, save)
	if err != nil {
		return nil, fmt.Errorf("create discount: %w", err)
	}
	return code, nil
}

func (s *DiscountService) Update(ctx context.Context, id int64, args DiscountArgs) (*domain.DiscountCode, error) {
	save, err := args.validate()
	if err != nil {
		return nil, fmt.Errorf("update discount: %w", err)
	}
	code, err := s.discountRepo.Update(ctx, id, save)
	if err != nil {
		return nil, fmt.Errorf("update discount: %w", err)
	}
	return code, nil
}

func (s *DiscountService) Delete(ctx context.Context, id int64) error {
	if err := s.discountRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete discount: %w", err)
	}
	return nil
}

// List все коды скидок с количеством погашений.
func (s *DiscountService) List(ctx context.Context) ([]domain.DiscountCodeStats, error) {
	return s.discountRepo.List(ctx, false) //nolint:wrapcheck
}

// ListAvailable коды, которые еще можно погасить.
func (s *DiscountService) ListAvailable(ctx context.Context) ([]domain.DiscountCodeStats, error) {
	return s.discountRepo.List(ctx, true) //nolint:wrapcheck
}

// ValidateAndReserve проверяет код codeName для юзера и сразу записывает его погашение в транзакции tx.
// Строка кода блокируется до конца транзакции, поэтому параллельные резервы одного кода выполняются
// по очереди и лимит max_usage не может быть превышен.
//
// Ошибки:
//   - domain.ErrInvalidDiscountCode: кода нет.
//   - domain.ErrDiscountAlreadyRedeemed: юзер уже погашал этот код.
//   - domain.ErrDiscountCapExceeded: лимит погашений исчерпан или равен нулю.
func (s *DiscountService) ValidateAndReserve(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	codeName string,
) (*domain.DiscountCode, error) {
	discountRepo, err := txRepo[DiscountRepository](tx, repoargs.DiscountRepoName)
	if err != nil {
		return nil, err
	}

	code, err := discountRepo.LockByName(ctx, strings.TrimSpace(codeName))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrInvalidDiscountCode
		}
		return nil, err //nolint:wrapcheck
	}

	used, err := discountRepo.HasUsage(ctx, userID, code.ID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if used {
		return nil, domain.ErrDiscountAlreadyRedeemed
	}

	count, err := discountRepo.CountUsages(ctx, code.ID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if code.Exhausted(count) {
		return nil, domain.ErrDiscountCapExceeded
	}

	if _, err = discountRepo.CreateUsage(ctx, userID, code.ID); err != nil {
		if isDuplicate(err) {
			return nil, domain.ErrDiscountAlreadyRedeemed
		}
		return nil, err //nolint:wrapcheck
	}
	return code, nil
}
