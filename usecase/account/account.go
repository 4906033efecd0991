package account

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/repository"
	"github.com/fastygo/storecore/usecase"
)

// UseCase owns storefront customer records. Sessions are issued by the
// storefront; this only creates users and checks credentials.
type UseCase struct {
	users  repository.UserRepository
	cost   int
	newID  func() string
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		cost:   bcrypt.DefaultCost,
		newID:  uuid.NewString,
		logger: logger.Named("account"),
	}
}

// Signup registers a customer with a bcrypt password hash and a fresh userid.
func (uc *UseCase) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Invalid("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "password cannot be hashed", err)
	}

	user := &domain.User{
		UserID:       uc.newID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, usecase.StoreError("create user", err)
	}

	uc.logger.Info("user signed up", zap.String("userid", user.UserID))
	return user, nil
}

// Authenticate verifies credentials and backfills a missing userid on
// legacy rows.
func (uc *UseCase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Invalid("email and password are required")
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, usecase.StoreError("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrBadCredentials
	}
	return uc.ensureUserID(ctx, user)
}

// Provision creates the customer on a federated first login, or returns the
// existing record. created reports whether a new row was written.
func (uc *UseCase) Provision(ctx context.Context, name, email string) (user *domain.User, created bool, err error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, false, domain.Invalid("email is required")
	}

	existing, err := uc.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user, err = uc.ensureUserID(ctx, existing)
		return user, false, err
	case !domain.IsDomainError(err, domain.ErrCodeNotFound):
		return nil, false, usecase.StoreError("load user", err)
	}

	// federated users never log in with a password; store an unguessable one
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), uc.cost)
	if err != nil {
		return nil, false, domain.WrapError(domain.ErrCodeInternal, "hash placeholder password", err)
	}
	user = &domain.User{
		UserID:       uc.newID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			// lost a race with a concurrent first login
			existing, err := uc.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, false, usecase.StoreError("load user", err)
			}
			user, err = uc.ensureUserID(ctx, existing)
			return user, false, err
		}
		return nil, false, usecase.StoreError("create user", err)
	}

	uc.logger.Info("user provisioned", zap.String("userid", user.UserID))
	return user, true, nil
}

func (uc *UseCase) ensureUserID(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.HasUserID() {
		return user, nil
	}
	userID := uc.newID()
	if err := uc.users.SetUserID(ctx, user.Email, userID); err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, usecase.StoreError("backfill userid", err)
		}
		// backfilled concurrently; read the winner
		fresh, err := uc.users.GetByEmail(ctx, user.Email)
		if err != nil {
			return nil, usecase.StoreError("load user", err)
		}
		return fresh, nil
	}
	uc.logger.Info("backfilled userid", zap.String("userid", userID))
	user.UserID = userID
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
