package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

// minPasswordLen is the shortest password accepted on registration and
// profile updates.
const minPasswordLen = 5

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingField indicates email or password was empty on authentication.
	ErrMissingField = errors.New("email and password are required")
	// ErrEmailRequired indicates registration was attempted without an email.
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordTooShort indicates the password is under the minimum length.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", minPasswordLen)
	// ErrUserAlreadyExists is returned when registering with an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidToken indicates a missing, unknown or expired auth token.
	ErrInvalidToken = errors.New("invalid token")
)

// ProfileUpdate carries the externally mutable user fields. Nil means leave
// the field unchanged.
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// UserService describes user lifecycle and authentication operations.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	CurrentUser(ctx context.Context, tokenKey string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.User, error)
	RevokeToken(ctx context.Context, tokenKey string) error
}

type userService struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	bcryptCost int
	tokenTTL   time.Duration // zero means tokens never expire
}

func NewUserService(users repository.UserRepository, tokens repository.TokenRepository, bcryptCost int, tokenTTL time.Duration) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		tokenTTL:   tokenTTL,
	}
}

// normalizeEmail lowercases the whole address. The stored email is always the
// normalized form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.createUser(ctx, email, password, name, false)
}

func (s *userService) CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	return s.createUser(ctx, email, password, "", true)
}

func (s *userService) createUser(ctx context.Context, email, password, name string, superuser bool) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = id

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrMissingField
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(ctx, user.ID)
}

// issueToken reuses a live token for the user or mints a fresh one, replacing
// any expired row.
func (s *userService) issueToken(ctx context.Context, userID int64) (string, error) {
	existing, err := s.tokens.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if !existing.Expired(time.Now().UTC()) {
			return existing.Key, nil
		}
		if err := s.tokens.Delete(ctx, existing.Key); err != nil {
			return "", err
		}
	case !errors.Is(err, repository.ErrNotFound):
		return "", err
	}

	key, err := newTokenKey()
	if err != nil {
		return "", err
	}

	token := &domain.Token{
		Key:    key,
		UserID: userID,
	}
	if s.tokenTTL > 0 {
		expires := time.Now().UTC().Add(s.tokenTTL)
		token.ExpiresAt = &expires
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return "", err
	}
	return key, nil
}

// newTokenKey returns 40 hex characters from a CSPRNG.
func newTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *userService) CurrentUser(ctx context.Context, tokenKey string) (*domain.User, error) {
	if strings.TrimSpace(tokenKey) == "" {
		return nil, ErrInvalidToken
	}

	token, err := s.tokens.GetByKey(ctx, tokenKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if token.Expired(time.Now().UTC()) {
		_ = s.tokens.Delete(ctx, token.Key)
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	return sanitizeUser(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Password != nil {
		if len(*update.Password) < minPasswordLen {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) RevokeToken(ctx context.Context, tokenKey string) error {
	if strings.TrimSpace(tokenKey) == "" {
		return ErrInvalidToken
	}
	return s.tokens.Delete(ctx, tokenKey)
}

// VerifyPassword reports whether candidate matches the user's stored hash.
// bcrypt's comparison is constant-time.
func VerifyPassword(user *domain.User, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(candidate)) == nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}
