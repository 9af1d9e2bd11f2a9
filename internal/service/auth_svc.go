package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iFredsz/nikhu-booking/internal/domain"
	"github.com/iFredsz/nikhu-booking/internal/repository"
	"github.com/iFredsz/nikhu-booking/pkg/auth"
)

var ErrBadCredentials = errors.New("bad_credentials")

type AuthSvc struct {
	repo      *repository.UserRepo
	accessTTL time.Duration
}

func NewAuthSvc(r *repository.UserRepo, accessTTL time.Duration) *AuthSvc {
	return &AuthSvc{repo: r, accessTTL: accessTTL}
}

func (s *AuthSvc) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: email, PasswordHash: string(hash), Name: name, Role: domain.RoleCustomer}
	return u, s.repo.Create(ctx, u)
}

func (s *AuthSvc) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrBadCredentials
	}
	access, err := auth.CreateAccessToken(u.ID, string(u.Role), u.Name, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return u, access, nil
}
