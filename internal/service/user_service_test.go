package service

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository. A hand-written fake keeps the
// tests free of database setup and easy to read.
type fakeUserRepo struct {
	users   map[int64]*domain.User
	byEmail map[string]int64
	nextID  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
		nextID:  1,
	}
}

func (f *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	if _, exists := f.byEmail[user.Email]; exists {
		return 0, fmt.Errorf("insert user: %w", repository.ErrDuplicate)
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	clone := *user
	f.users[user.ID] = &clone
	f.byEmail[user.Email] = user.ID
	return user.ID, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	clone := *f.users[id]
	return &clone, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	stored, ok := f.users[user.ID]
	if !ok {
		return fmt.Errorf("update user: %w", repository.ErrNotFound)
	}
	delete(f.byEmail, stored.Email)
	user.UpdatedAt = time.Now().UTC()
	clone := *user
	f.users[user.ID] = &clone
	f.byEmail[user.Email] = user.ID
	return nil
}

// fakeTokenRepo is an in-memory TokenRepository.
type fakeTokenRepo struct {
	byKey  map[string]*domain.Token
	byUser map[int64]string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{
		byKey:  make(map[string]*domain.Token),
		byUser: make(map[int64]string),
	}
}

func (f *fakeTokenRepo) Init(ctx context.Context) error { return nil }

func (f *fakeTokenRepo) Create(ctx context.Context, token *domain.Token) error {
	if _, exists := f.byKey[token.Key]; exists {
		return fmt.Errorf("insert token: %w", repository.ErrDuplicate)
	}
	if _, exists := f.byUser[token.UserID]; exists {
		return fmt.Errorf("insert token: %w", repository.ErrDuplicate)
	}
	token.CreatedAt = time.Now().UTC()
	clone := *token
	f.byKey[token.Key] = &clone
	f.byUser[token.UserID] = token.Key
	return nil
}

func (f *fakeTokenRepo) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	token, ok := f.byKey[key]
	if !ok {
		return nil, fmt.Errorf("token: %w", repository.ErrNotFound)
	}
	clone := *token
	return &clone, nil
}

func (f *fakeTokenRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Token, error) {
	key, ok := f.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("token: %w", repository.ErrNotFound)
	}
	clone := *f.byKey[key]
	return &clone, nil
}

func (f *fakeTokenRepo) Delete(ctx context.Context, key string) error {
	if token, ok := f.byKey[key]; ok {
		delete(f.byUser, token.UserID)
		delete(f.byKey, key)
	}
	return nil
}

func newTestUserService(t *testing.T) (UserService, *fakeUserRepo, *fakeTokenRepo) {
	t.Helper()
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	return NewUserService(users, tokens, bcrypt.MinCost, 0), users, tokens
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	user, err := svc.Register(context.Background(), "Apshuk12@GMAIL.COM", "loremipsum", "")
	require.NoError(t, err)
	assert.Equal(t, "apshuk12@gmail.com", user.Email)
	assert.Empty(t, user.PasswordHash, "hash must never leave the service")

	stored, err := users.GetByEmail(context.Background(), "apshuk12@gmail.com")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(stored, "loremipsum"))
}

func TestRegister_EmailRequired(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "", "loremipsum", "")
	require.ErrorIs(t, err, ErrEmailRequired)
}

func TestRegister_PasswordTooShort(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "abc@gmail.com", "isA", "")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	// Nothing may be persisted on a failed registration.
	_, err = users.GetByEmail(context.Background(), "abc@gmail.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "abc@gmail.com", "isAwesome", "Apoorva")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "abc@gmail.com", "isAwesome", "Apoorva")
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegister_DefaultFlags(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	user, err := svc.Register(context.Background(), "plain@example.com", "isAwesome", "")
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.IsStaff)
	assert.False(t, stored.IsSuperuser)
}

func TestCreateSuperuser(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	user, err := svc.CreateSuperuser(context.Background(), "apshuk14@gmail.com", "apoorva@17")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
}

func TestVerifyPassword(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	created, err := svc.Register(context.Background(), "apshuk14@gmail.com", "apoorva@17", "")
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(stored, "apoorva@17"))
	assert.False(t, VerifyPassword(stored, "anything-else"))
}

func TestAuthenticate_IssuesToken(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "abc@gmail.com", "isAwesome", "")
	require.NoError(t, err)

	token, err := svc.Authenticate(context.Background(), "abc@gmail.com", "isAwesome")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{40}$`), token)

	// A second login reuses the live token instead of minting another.
	again, err := svc.Authenticate(context.Background(), "ABC@gmail.com", "isAwesome")
	require.NoError(t, err)
	assert.Equal(t, token, again)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "abc@gmail.com", "abc@123", "Lorem")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "abc@gmail.com", "wrong@123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Authenticate(context.Background(), "abc@gmail.com", "abc@123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_MissingFields(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Authenticate(context.Background(), "abc@gmail.com", "")
	require.ErrorIs(t, err, ErrMissingField)

	_, err = svc.Authenticate(context.Background(), "", "abc@123")
	require.ErrorIs(t, err, ErrMissingField)
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	created, err := svc.Register(context.Background(), "sleepy@example.com", "isAwesome", "")
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, users.Update(context.Background(), stored))

	_, err = svc.Authenticate(context.Background(), "sleepy@example.com", "isAwesome")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_ReplacesExpiredToken(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewUserService(users, tokens, bcrypt.MinCost, time.Minute)

	_, err := svc.Register(context.Background(), "ttl@example.com", "isAwesome", "")
	require.NoError(t, err)

	first, err := svc.Authenticate(context.Background(), "ttl@example.com", "isAwesome")
	require.NoError(t, err)

	// Force the stored token into the past.
	expired := time.Now().UTC().Add(-time.Hour)
	tokens.byKey[first].ExpiresAt = &expired

	second, err := svc.Authenticate(context.Background(), "ttl@example.com", "isAwesome")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = svc.CurrentUser(context.Background(), first)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	created, err := svc.Register(context.Background(), "me@example.com", "isAwesome", "Apoorva")
	require.NoError(t, err)
	token, err := svc.Authenticate(context.Background(), "me@example.com", "isAwesome")
	require.NoError(t, err)

	user, err := svc.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "me@example.com", user.Email)
	assert.Equal(t, "Apoorva", user.Name)
	assert.Empty(t, user.PasswordHash)
}

func TestCurrentUser_InvalidToken(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.CurrentUser(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.CurrentUser(context.Background(), "deadbeef")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	created, err := svc.Register(context.Background(), "abc@gmail.com", "isAwesome", "Old Name")
	require.NoError(t, err)

	name := "apoorva"
	password := "isAwesomeAgain"
	updated, err := svc.UpdateProfile(context.Background(), created.ID, ProfileUpdate{
		Name:     &name,
		Password: &password,
	})
	require.NoError(t, err)
	assert.Equal(t, "apoorva", updated.Name)

	// Read-after-write: the new credentials work immediately.
	stored, err := users.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "apoorva", stored.Name)
	assert.True(t, VerifyPassword(stored, "isAwesomeAgain"))
	assert.False(t, VerifyPassword(stored, "isAwesome"))
}

func TestUpdateProfile_ShortPasswordRejected(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	created, err := svc.Register(context.Background(), "abc@gmail.com", "isAwesome", "")
	require.NoError(t, err)

	short := "abc"
	_, err = svc.UpdateProfile(context.Background(), created.ID, ProfileUpdate{Password: &short})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	stored, err := users.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(stored, "isAwesome"), "old password must survive a rejected update")
}

func TestRevokeToken(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "bye@example.com", "isAwesome", "")
	require.NoError(t, err)
	token, err := svc.Authenticate(context.Background(), "bye@example.com", "isAwesome")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(context.Background(), token))

	_, err = svc.CurrentUser(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
