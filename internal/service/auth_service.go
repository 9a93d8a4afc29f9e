package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/auth"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Session is the result of a successful sign-in.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	users  repository.UserRepository
	logins repository.LoginRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repository.UserRepository, logins repository.LoginRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, logins: logins, tokens: tokens}
}

func (s *AuthService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return s.CreateUser(ctx, in.Email, in.Password, in.Name, RoleStaff)
}

// CreateUser stores a user with a bcrypt hash of password. A taken email
// fails with ErrAlreadyExists.
func (s *AuthService) CreateUser(ctx context.Context, email, password, name, role string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return nil, domain.NewValidationError("password", "must have at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           newID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn checks credentials and issues a session token. Every attempt is
// recorded, successful or not.
func (s *AuthService) SignIn(ctx context.Context, in domain.SignInInput, client domain.ClientInfo) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := domain.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, in.Password) {
		var userID *string
		if user != nil {
			userID = &user.ID
		}
		s.record(ctx, userID, in.Email, false, domain.LoginReasonSignIn, client)
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	s.record(ctx, &user.ID, user.Email, true, domain.LoginReasonSignIn, client)

	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// SignOut records the logout. Tokens are stateless and stay valid until
// they expire.
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims, client domain.ClientInfo) {
	s.record(ctx, &claims.UserID, claims.Email, true, domain.LoginReasonSignOut, client)
}

// Authenticate resolves a bearer token to its claims.
func (s *AuthService) Authenticate(raw string) (*auth.Claims, error) {
	return s.tokens.Verify(raw)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
	}
	return user, err
}

func (s *AuthService) record(ctx context.Context, userID *string, email string, success bool, reason string, client domain.ClientInfo) {
	event := &domain.LoginEvent{
		UserID:    userID,
		Email:     email,
		Success:   success,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Reason:    reason,
	}
	if err := s.logins.Record(ctx, event); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to record login event")
	}
}
