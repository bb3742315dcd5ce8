package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/luxtrip/go-busline/internal/identity/application"
	"github.com/luxtrip/go-busline/internal/identity/domain"
	"github.com/luxtrip/go-busline/internal/identity/infrastructure"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
	pkgInfra "github.com/luxtrip/go-busline/pkg/infrastructure"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, fields map[string]interface{})  {}
func (nopLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {}
func (nopLogger) Warn(ctx context.Context, msg string, fields map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {}

type staticSigner struct{}

func (staticSigner) Sign(user domain.User) (string, error) {
	return "signed:" + user.Email, nil
}

func newEventBus() pkgApp.EventBus[pkgDomain.Event[string], string] {
	return pkgInfra.NewSimpleEventBus[pkgDomain.Event[string], string](nopLogger{})
}

func Test_RegisterUser_Success(t *testing.T) {
	repo := infrastructure.NewInMemoryUserRepository()
	handler := application.NewRegisterUserHandler(newEventBus(), repo, nopLogger{})

	user, err := handler.Handle(context.Background(), application.NewRegisterUserCommand(application.RegisterUserData{
		Name:     "Jane Rider",
		Email:    "jane@example.com",
		Password: "secret123",
	}))
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "Jane Rider", user.Name)
	assert.NotEqual(t, "secret123", user.PasswordHash, "password must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func Test_RegisterUser_MissingFields(t *testing.T) {
	repo := infrastructure.NewInMemoryUserRepository()
	handler := application.NewRegisterUserHandler(newEventBus(), repo, nopLogger{})

	_, err := handler.Handle(context.Background(), application.NewRegisterUserCommand(application.RegisterUserData{
		Email: "jane@example.com",
	}))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name", "password"}, verr.Fields)
}

func Test_RegisterUser_DuplicateEmail(t *testing.T) {
	repo := infrastructure.NewInMemoryUserRepository()
	handler := application.NewRegisterUserHandler(newEventBus(), repo, nopLogger{})

	data := application.RegisterUserData{Name: "Jane", Email: "jane@example.com", Password: "secret123"}

	_, err := handler.Handle(context.Background(), application.NewRegisterUserCommand(data))
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), application.NewRegisterUserCommand(data))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func Test_Authenticate_Success(t *testing.T) {
	repo := infrastructure.NewInMemoryUserRepository()
	register := application.NewRegisterUserHandler(newEventBus(), repo, nopLogger{})
	_, err := register.Handle(context.Background(), application.NewRegisterUserCommand(application.RegisterUserData{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	}))
	require.NoError(t, err)

	handler := application.NewAuthenticateHandler(repo, staticSigner{}, nopLogger{})

	token, err := handler.Handle(context.Background(), application.NewAuthenticateQuery(application.CredentialsData{
		Email:    "jane@example.com",
		Password: "secret123",
	}))
	require.NoError(t, err)
	assert.Equal(t, "signed:jane@example.com", token)
}

func Test_Authenticate_WrongPassword(t *testing.T) {
	repo := infrastructure.NewInMemoryUserRepository()
	register := application.NewRegisterUserHandler(newEventBus(), repo, nopLogger{})
	_, err := register.Handle(context.Background(), application.NewRegisterUserCommand(application.RegisterUserData{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	}))
	require.NoError(t, err)

	handler := application.NewAuthenticateHandler(repo, staticSigner{}, nopLogger{})

	_, err = handler.Handle(context.Background(), application.NewAuthenticateQuery(application.CredentialsData{
		Email:    "jane@example.com",
		Password: "wrong",
	}))
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
}

func Test_Authenticate_UnknownUser(t *testing.T) {
	repo := infrastructure.NewInMemoryUserRepository()
	handler := application.NewAuthenticateHandler(repo, staticSigner{}, nopLogger{})

	_, err := handler.Handle(context.Background(), application.NewAuthenticateQuery(application.CredentialsData{
		Email:    "ghost@example.com",
		Password: "whatever",
	}))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func Test_FindUsers(t *testing.T) {
	repo := infrastructure.NewInMemoryUserRepository()
	register := application.NewRegisterUserHandler(newEventBus(), repo, nopLogger{})
	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := register.Handle(context.Background(), application.NewRegisterUserCommand(application.RegisterUserData{
			Name: "User", Email: email, Password: "secret123",
		}))
		require.NoError(t, err)
	}

	handler := application.NewFindUsersHandler(repo, nopLogger{})

	users, err := handler.Handle(context.Background(), application.NewFindUsersQuery(application.FindUsersData{}))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)

	id := users[1].ID
	users, err = handler.Handle(context.Background(), application.NewFindUsersQuery(application.FindUsersData{UserID: &id}))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "b@example.com", users[0].Email)

	missing := 9999
	_, err = handler.Handle(context.Background(), application.NewFindUsersQuery(application.FindUsersData{UserID: &missing}))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
