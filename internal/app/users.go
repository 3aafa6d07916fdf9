package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"huski_bookings/internal/domain"
)

const bcryptCost = 10

// Registration is the register payload after HTTP-layer validation.
type Registration struct {
	Name     string
	Email    string
	Password string
	Address  *string
	Phone    *string
}

// UserService owns the account lifecycle: users are created unverified,
// become verified through a mailed activation token, and can rotate their
// password through a mailed, time-boxed reset link.
type UserService struct {
	repo    domain.UserRepository
	mailer  domain.Mailer
	tokens  *TokenService
	baseURL string
}

func NewUserService(r domain.UserRepository, m domain.Mailer, t *TokenService, baseURL string) *UserService {
	return &UserService{repo: r, mailer: m, tokens: t, baseURL: baseURL}
}

// Register creates an unverified account and mails the activation link.
func (s *UserService) Register(ctx context.Context, reg Registration) error {
	if _, err := s.repo.UserByEmail(ctx, reg.Email); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcryptCost)
	if err != nil {
		return err
	}
	id, err := s.repo.CreateUser(ctx, domain.User{
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: string(hash),
		Address:      reg.Address,
		Phone:        reg.Phone,
		Role:         "user",
	})
	if err != nil {
		return err
	}

	token, err := s.tokens.Activation(id, reg.Email)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/activationemail/%s", s.baseURL, token)
	if err := s.mailer.SendActivation(ctx, reg.Email, reg.Name, url); err != nil {
		return fmt.Errorf("send activation mail: %w", err)
	}
	return nil
}

// Activate verifies the account behind the token and returns a session
// token so the user is logged in right away.
func (s *UserService) Activate(ctx context.Context, activationToken string) (string, domain.User, error) {
	id, err := s.tokens.ParseActivation(activationToken)
	if err != nil {
		return "", domain.User{}, err
	}
	if err := s.repo.MarkVerified(ctx, id); err != nil {
		return "", domain.User{}, err
	}
	u, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return "", domain.User{}, err
	}
	session, err := s.tokens.Session(u.ID, u.Role)
	return session, u, err
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	u, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	if !u.IsVerified {
		return "", domain.User{}, domain.ErrNotVerified
	}
	session, err := s.tokens.Session(u.ID, u.Role)
	return session, u, err
}

// ForgotPassword mails a reset link. The token is bound to the user's
// current password hash, so it dies the moment the password changes.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := s.tokens.Reset(u.ID, u.Email, u.PasswordHash)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/resetPage/%d/%s", s.baseURL, u.ID, token)
	return s.mailer.SendPasswordReset(ctx, u.Email, link)
}

// VerifyReset reports whether a reset link is still usable.
func (s *UserService) VerifyReset(ctx context.Context, userID int64, token string) error {
	u, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.tokens.VerifyReset(token, u.ID, u.PasswordHash)
}

// ResetPassword rotates the password after re-checking the token.
func (s *UserService) ResetPassword(ctx context.Context, userID int64, token, password string) error {
	u, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.tokens.VerifyReset(token, u.ID, u.PasswordHash); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return err
	}
	log.Info().Int64("user", u.ID).Msg("password changed")
	return nil
}

func (s *UserService) Users(ctx context.Context) ([]domain.User, error) {
	return s.repo.AllUsers(ctx)
}

// UpdateUser applies a partial update; a plaintext password in upd is
// hashed here before it reaches storage.
func (s *UserService) UpdateUser(ctx context.Context, id int64, upd domain.UserUpdate) error {
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcryptCost)
		if err != nil {
			return err
		}
		h := string(hash)
		upd.Password = &h
	}
	return s.repo.UpdateUser(ctx, id, upd)
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}
