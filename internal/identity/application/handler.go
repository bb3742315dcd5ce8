package application

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/luxtrip/go-busline/internal/identity/domain"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
)

// TokenSigner issues a bearer credential for an authenticated user.
type TokenSigner interface {
	Sign(user domain.User) (string, error)
}

type registerUserHandler struct {
	eventBus   pkgApp.EventBus[pkgDomain.Event[string], string]
	repository domain.UserRepository
	logger     pkgApp.AppLogger
}

func (h *registerUserHandler) Handle(ctx context.Context, command pkgDomain.Command[RegisterUserData]) (domain.User, error) {
	if ctx.Err() != nil {
		return domain.User{}, ctx.Err()
	}

	data := command.Payload()

	var missing []string
	if data.Name == "" {
		missing = append(missing, "name")
	}
	if data.Email == "" {
		missing = append(missing, "email")
	}
	if data.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return domain.User{}, &domain.ValidationError{Fields: missing}
	}

	if _, err := h.repository.FindByEmail(ctx, data.Email); err == nil {
		pkgApp.LogWarn(ctx, h.logger, "registration attempt for existing user", map[string]interface{}{
			"email": data.Email,
		})
		return domain.User{}, domain.ErrEmailTaken
	} else if err != domain.ErrUserNotFound {
		pkgApp.LogError(ctx, h.logger, "error looking up user", err, map[string]interface{}{
			"email": data.Email,
		})
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error hashing password", err, nil)
		return domain.User{}, err
	}

	user, err := h.repository.Save(ctx, domain.User{
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error saving user", err, map[string]interface{}{
			"email": data.Email,
		})
		return domain.User{}, err
	}

	event := NewUserRegisteredEvent(user.Email)
	if err := h.eventBus.Publish(ctx, event); err != nil {
		pkgApp.LogError(ctx, h.logger, "error publishing event", err, nil)
		return domain.User{}, err
	}

	pkgApp.LogInfo(ctx, h.logger, "new user registered", map[string]interface{}{
		"email": user.Email,
	})
	return user, nil
}

func NewRegisterUserHandler(eventBus pkgApp.EventBus[pkgDomain.Event[string], string], repo domain.UserRepository, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[RegisterUserData], RegisterUserData, domain.User] {
	return &registerUserHandler{
		eventBus:   eventBus,
		repository: repo,
		logger:     logger,
	}
}

type authenticateHandler struct {
	repository domain.UserRepository
	signer     TokenSigner
	logger     pkgApp.AppLogger
}

func (h *authenticateHandler) Handle(ctx context.Context, query pkgDomain.Query[CredentialsData]) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	data := query.Payload()

	user, err := h.repository.FindByEmail(ctx, data.Email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			pkgApp.LogWarn(ctx, h.logger, "login attempt for non-existing user", map[string]interface{}{
				"email": data.Email,
			})
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(data.Password)); err != nil {
		pkgApp.LogWarn(ctx, h.logger, "invalid password attempt", map[string]interface{}{
			"email": data.Email,
		})
		return "", domain.ErrInvalidPassword
	}

	token, err := h.signer.Sign(user)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error signing token", err, nil)
		return "", err
	}

	pkgApp.LogInfo(ctx, h.logger, "user logged in", map[string]interface{}{
		"email": user.Email,
	})
	return token, nil
}

func NewAuthenticateHandler(repo domain.UserRepository, signer TokenSigner, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[CredentialsData], CredentialsData, string] {
	return &authenticateHandler{
		repository: repo,
		signer:     signer,
		logger:     logger,
	}
}

type findUsersHandler struct {
	repository domain.UserRepository
	logger     pkgApp.AppLogger
}

func (h *findUsersHandler) Handle(ctx context.Context, query pkgDomain.Query[FindUsersData]) ([]domain.User, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	data := query.Payload()

	if data.UserID != nil {
		user, err := h.repository.FindByID(ctx, *data.UserID)
		if err != nil {
			if err != domain.ErrUserNotFound {
				pkgApp.LogError(ctx, h.logger, "error finding user", err, map[string]interface{}{
					"user_id": *data.UserID,
				})
			}
			return nil, err
		}
		return []domain.User{user}, nil
	}

	users, err := h.repository.FindAll(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error listing users", err, nil)
		return nil, err
	}
	return users, nil
}

func NewFindUsersHandler(repo domain.UserRepository, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindUsersData], FindUsersData, []domain.User] {
	return &findUsersHandler{
		repository: repo,
		logger:     logger,
	}
}

type userRegisteredEventHandler struct {
	logger pkgApp.AppLogger
}

func (h *userRegisteredEventHandler) Handle(ctx context.Context, event pkgDomain.Event[string]) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	pkgApp.LogInfo(ctx, h.logger, "user registered", map[string]interface{}{
		"email": event.Payload(),
	})
	return nil
}

func NewUserRegisteredEventHandler(logger pkgApp.AppLogger) pkgApp.EventHandler[pkgDomain.Event[string], string] {
	return &userRegisteredEventHandler{logger: logger}
}
