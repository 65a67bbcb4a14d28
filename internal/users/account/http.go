// Copyright (c) 2026 Gritsos. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/platform/middleware"
	requestutil "github.com/gritsos/gritsos-api/internal/platform/request"
	"github.com/gritsos/gritsos-api/internal/platform/respond"
	"github.com/gritsos/gritsos-api/internal/users/auth"
)

// anyMethod allows both token and password authentication.
var anyMethod = []auth.Method{auth.MethodToken, auth.MethodPassword}

// Handler implements the HTTP layer for the user endpoints.
type Handler struct {
	accountService *Service
	authenticator  middleware.Authenticator
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, authenticator middleware.Authenticator) *Handler {
	return &Handler{accountService: service, authenticator: authenticator}
}

// Routes returns a [chi.Router] serving the user endpoints, mounted at /user.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.Authenticate(handler.authenticator, 0, anyMethod...)).Get("/", handler.getUser)
	router.With(middleware.Authenticate(handler.authenticator, 1, anyMethod...)).Post("/", handler.createUser)
	router.With(middleware.Authenticate(handler.authenticator, 0, anyMethod...)).Post("/token", handler.rotateToken)

	return router
}

// # User Endpoints

/*
GET /user.

Description: Returns the caller, or the principal named by the 'user' or
'username' parameter (in that order). Reading another principal requires a
password-authenticated caller.

Response:
  - 200: Principal: {username, token}
  - 403: ErrForbidden: Caller is not privileged
  - 404: ErrNotFound: Unknown username
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	principal, err := handler.accountService.Lookup(request.Context(), auth.PrincipalFrom(request.Context()), targetUsername(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}

/*
POST /user.

Description: Creates a level 0 principal named by 'user' (or 'username').
Without 'user_password' the principal can only authenticate with its token.

Response:
  - 201: Principal: {username, token}
  - 400: ErrBadRequest: No username given
  - 403: ErrForbidden: Caller is not privileged
  - 409: ErrConflict: Username already taken
*/
func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	username := targetUsername(request)
	if username == "" {
		respond.Error(writer, request, apperr.BadRequest(MessageUsernameRequired))
		return
	}

	principal, err := handler.accountService.Create(
		request.Context(),
		auth.PrincipalFrom(request.Context()),
		username,
		requestutil.FormValue(request, FieldUserPassword),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, principal)
}

/*
POST /user/token.

Description: Rotates the caller's token and returns the new one.

Response:
  - 200: Principal: {username, token}
*/
func (handler *Handler) rotateToken(writer http.ResponseWriter, request *http.Request) {
	principal, err := handler.accountService.RotateToken(request.Context(), auth.PrincipalFrom(request.Context()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}

// # Helpers

// targetUsername reads 'user', then 'username'. Empty values count as absent.
func targetUsername(request *http.Request) string {
	for _, key := range []string{auth.FieldUser, auth.FieldUsername} {
		if value := requestutil.FormValue(request, key); value != nil && *value != "" {
			return *value
		}
	}
	return ""
}
