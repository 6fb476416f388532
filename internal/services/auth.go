package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"task-tracker/internal/database"
	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
)

type LoginResult struct {
	Token     string
	ExpiresIn int64
	User      *models.User
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error)
}

type AuthServiceImpl struct {
	users      repositories.UserRepository
	tokens     *TokenManager
	bcryptCost int
	logger     zerolog.Logger
}

func NewAuthService(users repositories.UserRepository, tokens *TokenManager, bcryptCost int, logger zerolog.Logger) *AuthServiceImpl {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", invalid("Password is too long")
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, invalid("Email/password required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !VerifyPassword(user.Password, password) {
		s.logger.Info().Str("email", email).Msg("login rejected")
		return nil, newError(ErrUnauthorized, "Wrong credentials!")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", user.Email).Str("role", user.Role).Msg("login succeeded")
	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user,
	}, nil
}

// Register creates a developer account. Admins are only created out of band.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.create(ctx, name, email, password, models.RoleDeveloper)
}

func (s *AuthServiceImpl) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.create(ctx, name, email, password, models.RoleAdmin)
}

func (s *AuthServiceImpl) create(ctx context.Context, name, email, password, role string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, invalid("All fields required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, invalid("Email exists")
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, name, email, hashed, role)
	if errors.Is(err, database.ErrDuplicate) {
		return nil, invalid("Email exists")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", user.Email).Str("role", user.Role).Msg("account created")
	return user, nil
}

// ResetPassword replaces the password of the account with email. There is
// no ownership proof; the endpoint is expected to sit behind rate limiting.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, email, newPassword string) error {
	if email == "" || newPassword == "" {
		return invalid("Email and new password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return invalid("No user found with that email")
	}

	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if _, err := s.users.Save(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Str("email", user.Email).Msg("password reset")
	return nil
}
