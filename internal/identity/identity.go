package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luxtrip/go-busline/internal/identity/application"
	"github.com/luxtrip/go-busline/internal/identity/domain"
	"github.com/luxtrip/go-busline/internal/identity/infrastructure"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
)

type IdentitySlice struct {
	httpHandler *infrastructure.IdentityHTTPHandler
	tokens      *infrastructure.JWTManager
}

func NewIdentitySlice(
	commandBus pkgApp.CommandBus[pkgDomain.Command[application.RegisterUserData], application.RegisterUserData, domain.User],
	authBus pkgApp.QueryBus[pkgDomain.Query[application.CredentialsData], application.CredentialsData, string],
	usersBus pkgApp.QueryBus[pkgDomain.Query[application.FindUsersData], application.FindUsersData, []domain.User],
	eventBus pkgApp.EventBus[pkgDomain.Event[string], string],
	repository domain.UserRepository,
	tokens *infrastructure.JWTManager,
	logger pkgApp.AppLogger,
) *IdentitySlice {
	commandBus.RegisterHandler("RegisterUser", application.NewRegisterUserHandler(eventBus, repository, logger))
	authBus.RegisterHandler("Authenticate", application.NewAuthenticateHandler(repository, tokens, logger))
	usersBus.RegisterHandler("FindUsers", application.NewFindUsersHandler(repository, logger))
	eventBus.RegisterHandler("UserRegistered", application.NewUserRegisteredEventHandler(logger))

	return &IdentitySlice{
		httpHandler: infrastructure.NewIdentityHTTPHandler(commandBus, authBus, usersBus),
		tokens:      tokens,
	}
}

func (s *IdentitySlice) RegisterRoutes(router *chi.Mux) {
	s.httpHandler.RegisterRoutes(router, s.tokens.RequireAuth)
}

// RequireAuth exposes the slice's auth gate so other slices can protect
// their routes with the same bearer-token check.
func (s *IdentitySlice) RequireAuth(next http.Handler) http.Handler {
	return s.tokens.RequireAuth(next)
}
