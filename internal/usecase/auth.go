package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/security"
)

type Auth struct {
	users UserRepo
	now   func() time.Time
}

func NewAuth(users UserRepo) *Auth {
	return &Auth{users: users, now: time.Now}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role // defaults to CASHIER
}

func (uc *Auth) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, invalid("name is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, invalid("a valid email is required")
	}
	if len(in.Password) < 6 {
		return nil, invalid("password must be at least 6 characters")
	}
	if in.Role == "" {
		in.Role = entity.RoleCashier
	}
	if _, ok := entity.ParseRole(string(in.Role)); !ok {
		return nil, invalid("unknown role %q", in.Role)
	}

	if existing, err := uc.users.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    uc.now().UTC(),
	}
	if err := uc.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials. Bad email and bad password return the same
// error so the response does not leak which one was wrong.
func (uc *Auth) Login(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	if !security.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (uc *Auth) CurrentUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
