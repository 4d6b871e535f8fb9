package service_test

import (
	"context"
	"testing"
	"time"

	"tiktask/internal/auth"
	"tiktask/internal/models/user"
	rep "tiktask/internal/repository"
	"tiktask/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return tm
}

func TestRegister(t *testing.T) {
	users := new(MockUserRepository)
	svc := service.NewAuthService(users, newTokenManager(t))

	users.On("UserByUsername", mock.Anything, "alice").Return(nil, rep.ErrNotFound)
	users.On("UserByEmail", mock.Anything, "alice@example.com").Return(nil, rep.ErrNotFound)
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		// пароль должен уйти в БД уже захешированным
		return u.Username == "alice" && u.Role == user.RoleUser &&
			u.Password != "secret123" && auth.CheckPassword(u.Password, "secret123")
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*user.User).ID = 11
	}).Return(nil)

	token, created, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret123")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(11), created.ID)
	users.AssertExpectations(t)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantMsg  string
	}{
		{"missing username", "", "a@b.com", "secret123", "All fields are required"},
		{"missing email", "alice", "", "secret123", "All fields are required"},
		{"missing password", "alice", "a@b.com", "", "All fields are required"},
		{"short password", "alice", "a@b.com", "12345", "Password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			svc := service.NewAuthService(users, newTokenManager(t))

			_, _, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)

			var be *service.BusinessError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, service.CodeValidation, be.Code)
			assert.Equal(t, tt.wantMsg, be.Message)
			users.AssertNotCalled(t, "CreateUser")
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := new(MockUserRepository)
	svc := service.NewAuthService(users, newTokenManager(t))

	users.On("UserByUsername", mock.Anything, "alice").
		Return(&user.User{ID: 1, Username: "alice"}, nil)

	_, _, err := svc.Register(context.Background(), "alice", "new@example.com", "secret123")

	var be *service.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, service.CodeAlreadyExists, be.Code)
	assert.Equal(t, "Username already exists", be.Message)
}

func TestRegisterDuplicateRace(t *testing.T) {
	users := new(MockUserRepository)
	svc := service.NewAuthService(users, newTokenManager(t))

	// предварительные проверки прошли, вставка упёрлась в уникальный индекс
	users.On("UserByUsername", mock.Anything, "alice").Return(nil, rep.ErrNotFound)
	users.On("UserByEmail", mock.Anything, "alice@example.com").Return(nil, rep.ErrNotFound)
	users.On("CreateUser", mock.Anything, mock.Anything).
		Return(&rep.DuplicateError{Field: "email"})

	_, _, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret123")

	var be *service.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, service.CodeAlreadyExists, be.Code)
}

func TestLogin(t *testing.T) {
	users := new(MockUserRepository)
	svc := service.NewAuthService(users, newTokenManager(t))

	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	users.On("UserByUsername", mock.Anything, "alice").
		Return(&user.User{ID: 1, Username: "alice", Password: hash, Role: user.RoleUser}, nil)

	token, u, err := svc.Login(context.Background(), "alice", "secret123")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", u.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	svc := service.NewAuthService(users, newTokenManager(t))

	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	users.On("UserByUsername", mock.Anything, "alice").
		Return(&user.User{ID: 1, Username: "alice", Password: hash}, nil)

	_, _, err = svc.Login(context.Background(), "alice", "wrong")

	var be *service.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, service.CodeInvalidCredentials, be.Code)
	assert.Equal(t, "Invalid credentials", be.Message)
}

func TestLoginUnknownUser(t *testing.T) {
	users := new(MockUserRepository)
	svc := service.NewAuthService(users, newTokenManager(t))

	users.On("UserByUsername", mock.Anything, "ghost").Return(nil, rep.ErrNotFound)

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")

	var be *service.BusinessError
	require.ErrorAs(t, err, &be)
	// неизвестный пользователь неотличим от неверного пароля
	assert.Equal(t, service.CodeInvalidCredentials, be.Code)
}

func TestSeedAdminCreatesOnce(t *testing.T) {
	users := new(MockUserRepository)
	svc := service.NewAuthService(users, newTokenManager(t))

	users.On("UserByUsername", mock.Anything, "admin").Return(nil, rep.ErrNotFound)
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.Username == "admin" && u.Role == user.RoleAdmin && u.Email == "admin@tiktask.com"
	})).Return(nil)

	require.NoError(t, svc.SeedAdmin(context.Background()))
	users.AssertExpectations(t)
}

func TestSeedAdminSkipsExisting(t *testing.T) {
	users := new(MockUserRepository)
	svc := service.NewAuthService(users, newTokenManager(t))

	users.On("UserByUsername", mock.Anything, "admin").
		Return(&user.User{ID: 1, Username: "admin", Role: user.RoleAdmin}, nil)

	require.NoError(t, svc.SeedAdmin(context.Background()))
	users.AssertNotCalled(t, "CreateUser")
}
