package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/pkg/cryptox"
	"github.com/rentfuse/rentfuse/pkg/httpx"
)

// DirectoryService is the user-directory boundary: credential verification at
// login and account creation. Everything past it works with Principal values
// only.
type DirectoryService struct {
	Store store.Store
	Audit *AuditService
	Clock func() time.Time
}

func (s *DirectoryService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

// Login verifies an email/password pair. Unknown email and wrong password
// both return ErrInvalidCredentials so responses cannot enumerate accounts.
func (s *DirectoryService) Login(ctx context.Context, email, password string) (domain.Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	fail := func() (domain.Principal, error) {
		s.Audit.Emit(domain.AuditEvent{
			Category:  domain.AuditCategorySecurity,
			Action:    domain.AuditUserLoginFailed,
			Details:   map[string]any{"email": email},
			Severity:  domain.AuditSeverityWarning,
			IPAddress: httpx.ClientAddrFromContext(ctx),
		})
		return domain.Principal{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail()
		}
		return domain.Principal{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return fail()
	}

	s.Audit.Emit(domain.AuditEvent{
		Category:  domain.AuditCategoryAuth,
		Action:    domain.AuditUserLogin,
		UserID:    &user.ID,
		IPAddress: httpx.ClientAddrFromContext(ctx),
	})

	return user.Principal, nil
}

// Register creates a new directory record with the default role.
func (s *DirectoryService) Register(ctx context.Context, email, password string) (domain.Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Principal{}, err
	}

	now := s.now()
	id, err := s.Store.Users().Create(ctx, domain.User{
		Principal:    domain.Principal{Email: email, Role: domain.RoleUser},
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Principal{}, ErrEmailTaken
		}
		return domain.Principal{}, err
	}

	s.Audit.Emit(domain.AuditEvent{
		Category:  domain.AuditCategoryAuth,
		Action:    domain.AuditUserRegistered,
		UserID:    &id,
		IPAddress: httpx.ClientAddrFromContext(ctx),
	})

	return domain.Principal{ID: id, Email: email, Role: domain.RoleUser}, nil
}

// FindByID resolves a principal by id.
func (s *DirectoryService) FindByID(ctx context.Context, id int64) (domain.Principal, error) {
	return s.Store.Users().GetByID(ctx, id)
}
