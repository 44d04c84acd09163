package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/repository/repoargs"
	"github.com/fsdevblog/gamestore/internal/service/tokens"
	"github.com/fsdevblog/gamestore/pkg/uow"
)

const JWTTokenExpire = 24 * time.Hour

type UserService struct {
	uow            uow.UOW
	userRepo       UserRepository
	walletRepo     WalletTransactionRepository
	purchaseRepo   PurchaseRepository
	jwtTokenSecret []byte
	psswd          PasswordHasher
}

func NewUserService(u uow.UOW, jwtTokenSecret []byte, psswd PasswordHasher) (*UserService, error) {
	userRepo, err := connRepo[UserRepository](u, repoargs.UserRepoName)
	if err != nil {
		return nil, err
	}
	walletRepo, err := connRepo[WalletTransactionRepository](u, repoargs.WalletTransactionRepoName)
	if err != nil {
		return nil, err
	}
	purchaseRepo, err := connRepo[PurchaseRepository](u, repoargs.PurchaseRepoName)
	if err != nil {
		return nil, err
	}
	return &UserService{
		uow:            u,
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		purchaseRepo:   purchaseRepo,
		jwtTokenSecret: jwtTokenSecret,
		psswd:          psswd,
	}, nil
}

type RegisterUserArgs struct {
	Username string
	Password string
}

// Register создает юзера и генерирует для него jwt токен. Занятый логин - domain.ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, string, error) {
	password, hashErr := s.psswd.HashPassword(args.Password)
	if hashErr != nil {
		return nil, "", fmt.Errorf("registering user: %s", hashErr.Error())
	}

	user, createErr := s.userRepo.CreateUser(ctx, repoargs.CreateUser{
		Username: args.Username,
		Password: password,
		Role:     domain.RoleUser,
	})
	if createErr != nil {
		return nil, "", fmt.Errorf("registering user: %w", createErr)
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("registering user: %w", tokenErr)
	}
	return user, token, nil
}

type LoginUserArgs struct {
	Username string
	Password string
}

// Login аутентифицирует юзера по паре логин/пароль. Возвращает domain.ErrRecordNotFound для неизвестного
// логина и domain.ErrPasswordMissMatch для неверного пароля.
func (s *UserService) Login(ctx context.Context, args LoginUserArgs) (*domain.User, string, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, args.Username)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	if !s.psswd.ComparePassword(args.Password, user.Password) {
		return nil, "", fmt.Errorf("login: %w", domain.ErrPasswordMissMatch)
	}
	token, tokenErr := tokens.GenerateUserJWT(user.ID, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("login: %w", tokenErr)
	}
	return user, token, nil
}

// IsAdmin проверяет роль юзера.
func (s *UserService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("checking admin role: %w", err)
	}
	return user.IsAdmin(), nil
}

type UserActivity struct {
	User         *domain.User
	Transactions []domain.WalletTransaction
	Purchases    []domain.Purchase
}

// Activity история кошелька и покупок юзера.
func (s *UserService) Activity(ctx context.Context, userID int64) (*UserActivity, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user activity: %w", err)
	}
	transactions, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user activity: %w", err)
	}
	purchases, err := s.purchaseRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user activity: %w", err)
	}
	return &UserActivity{
		User:         user,
		Transactions: transactions,
		Purchases:    purchases,
	}, nil
}
