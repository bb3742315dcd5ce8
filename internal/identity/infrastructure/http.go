package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luxtrip/go-busline/internal/identity/application"
	"github.com/luxtrip/go-busline/internal/identity/domain"
	pkgApp "github.com/luxtrip/go-busline/pkg/application"
	pkgDomain "github.com/luxtrip/go-busline/pkg/domain"
)

const requestTimeout = 10 * time.Second

type IdentityHTTPHandler struct {
	commandBus pkgApp.CommandBus[pkgDomain.Command[application.RegisterUserData], application.RegisterUserData, domain.User]
	authBus    pkgApp.QueryBus[pkgDomain.Query[application.CredentialsData], application.CredentialsData, string]
	usersBus   pkgApp.QueryBus[pkgDomain.Query[application.FindUsersData], application.FindUsersData, []domain.User]
}

func NewIdentityHTTPHandler(
	commandBus pkgApp.CommandBus[pkgDomain.Command[application.RegisterUserData], application.RegisterUserData, domain.User],
	authBus pkgApp.QueryBus[pkgDomain.Query[application.CredentialsData], application.CredentialsData, string],
	usersBus pkgApp.QueryBus[pkgDomain.Query[application.FindUsersData], application.FindUsersData, []domain.User],
) *IdentityHTTPHandler {
	return &IdentityHTTPHandler{
		commandBus: commandBus,
		authBus:    authBus,
		usersBus:   usersBus,
	}
}

func (h *IdentityHTTPHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var data application.RegisterUserData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Invalid request"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, err := h.commandBus.Dispatch(ctx, application.NewRegisterUserCommand(data)); err != nil {
		writeIdentityError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "User registered successfully"})
}

func (h *IdentityHTTPHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var data application.CredentialsData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Invalid request"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	token, err := h.authBus.Dispatch(ctx, application.NewAuthenticateQuery(data))
	if err != nil {
		writeIdentityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token})
}

func (h *IdentityHTTPHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	users, err := h.usersBus.Dispatch(ctx, application.NewFindUsersQuery(application.FindUsersData{}))
	if err != nil {
		writeIdentityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *IdentityHTTPHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Invalid user id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	users, err := h.usersBus.Dispatch(ctx, application.NewFindUsersQuery(application.FindUsersData{UserID: &id}))
	if err != nil {
		writeIdentityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users[0])
}

// RegisterRoutes mounts the auth and user routes. requireAuth gates the
// user listing routes; register and login stay public.
func (h *IdentityHTTPHandler) RegisterRoutes(router chi.Router, requireAuth func(http.Handler) http.Handler) {
	router.Post("/api/auth/register", h.HandleRegister)
	router.Post("/api/auth/login", h.HandleLogin)

	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/api/users", h.HandleListUsers)
		r.Get("/api/users/{id}", h.HandleGetUser)
	})
}

func writeIdentityError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message":        "Missing required fields",
			"missing_fields": validationErr.Fields,
		})
	case errors.Is(err, domain.ErrEmailTaken):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "User already exists"})
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "No user found"})
	case errors.Is(err, domain.ErrInvalidPassword):
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"message": "Invalid password"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"message": "Server Error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
