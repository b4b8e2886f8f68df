package service

import (
	"context"
	"fmt"
	"time"

	"orgregistry/internal/auth"
	"orgregistry/internal/model"
	"orgregistry/internal/repository"
	"orgregistry/pkg/util"

	"github.com/rs/zerolog"
)

// TokenIssuer signs tokens carrying the given claims for ttl.
type TokenIssuer interface {
	IssueToken(claims auth.Claims, ttl time.Duration) (string, error)
}

// AuthService authenticates organization admins
type AuthService struct {
	orgs     repository.IOrgRepository
	admins   repository.IAdminRepository
	hasher   Hasher
	tokens   TokenIssuer
	ttl      time.Duration
	recorder Recorder
}

// NewAuthService creates a new auth service. hasher must be the one the
// OrgService writes with.
func NewAuthService(store *repository.Store, hasher Hasher, tokens TokenIssuer, ttl time.Duration) *AuthService {
	return &AuthService{
		orgs:     store.Orgs,
		admins:   store.Admins,
		hasher:   hasher,
		tokens:   tokens,
		ttl:      ttl,
		recorder: nopRecorder{},
	}
}

// WithRecorder reports login outcomes to r.
func (s *AuthService) WithRecorder(r Recorder) *AuthService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Authenticate verifies the admin's password and issues a bearer token.
// Emails are not unique; admins sharing one are tried oldest first and the
// first verifying admin that owns an organization wins. Verifying admins
// left behind without one do not block the login.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (_ *model.TokenResponse, err error) {
	start := time.Now()
	defer func() { s.recorder.ObserveOperation("login", Outcome(err), time.Since(start)) }()

	email = util.NormalizeEmail(email)
	candidates, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	var (
		admin    *model.Admin
		org      *model.Organization
		verified bool
	)
	for _, a := range candidates {
		if !s.hasher.Verify(password, a.PasswordHash) {
			continue
		}
		verified = true

		owned, err := s.orgs.FindByAdmin(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("lookup organization: %w", err)
		}
		if owned == nil {
			zerolog.Ctx(ctx).Warn().Str("admin_id", a.ID.Hex()).Msg("admin has no organization")
			continue
		}
		admin, org = a, owned
		break
	}
	if !verified {
		return nil, ErrInvalidCredentials
	}
	if org == nil {
		return nil, ErrOrgNotFound
	}

	token, err := s.tokens.IssueToken(auth.Claims{
		AdminID: admin.ID.Hex(),
		OrgID:   org.ID.Hex(),
		OrgName: org.OrganizationName,
	}, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("admin_id", admin.ID.Hex()).
		Str("org_id", org.ID.Hex()).
		Msg("admin authenticated")
	return &model.TokenResponse{AccessToken: token, TokenType: auth.TokenType}, nil
}
