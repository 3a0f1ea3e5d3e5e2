package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/novadent/novadent_backend/pkg/identity"
	"github.com/novadent/novadent_backend/pkg/store"
)

var (
	ErrValidation         = errors.New("invalid login request")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Clinic staff sign in with short usernames; the identity provider only
// knows emails. user_lookup maps one to the other and is readable with
// the anon key so the resolution can happen before authentication.
const lookupTable = "user_lookup"

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Service interface {
	Login(ctx context.Context, db *store.Session, req LoginRequest) (*identity.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Session, error)
}

type authService struct {
	idp *identity.Client
}

func New(idp *identity.Client) Service {
	return &authService{idp: idp}
}

func (s *authService) Login(ctx context.Context, db *store.Session, req LoginRequest) (*identity.Session, error) {
	ident := strings.TrimSpace(req.Email)
	if ident == "" {
		ident = strings.TrimSpace(req.Username)
	}
	if ident == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	email := ident
	if !emailRe.MatchString(ident) {
		resolved, err := s.resolveUsername(ctx, db, ident)
		if err != nil {
			return nil, err
		}
		email = resolved
	}

	sess, err := s.idp.SignInWithPassword(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return sess, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*identity.Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrValidation)
	}
	sess, err := s.idp.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return sess, nil
}

func (s *authService) resolveUsername(ctx context.Context, db *store.Session, username string) (string, error) {
	var row struct {
		Email string `json:"email"`
	}
	err := db.From(lookupTable).Select("email").Eq("username", username).Single().Get(ctx, &row)
	if err != nil {
		if store.IsNotFound(err) {
			// Same answer as a wrong password; do not leak which
			// usernames exist.
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("resolve username: %w", err)
	}
	if row.Email == "" {
		return "", ErrInvalidCredentials
	}
	return row.Email, nil
}
