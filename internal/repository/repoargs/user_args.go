package repoargs

import "github.com/fsdevblog/gamestore/internal/domain"

type CreateUser struct {
	Username string
	Password string
	Role     domain.RoleType
}
