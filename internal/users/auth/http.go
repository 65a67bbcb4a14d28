// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"net/http"
	"strings"

	"github.com/gritsos/gritsos-api/internal/platform/constants"
	requestutil "github.com/gritsos/gritsos-api/internal/platform/request"
)

const bearerPrefix = "Bearer "

// requestCredentials reads credentials from an HTTP request.
type requestCredentials struct {
	request *http.Request
}

// RequestCredentials adapts request to a [CredentialSource].
//
// The token comes from the Token header, or from "Authorization: Bearer"
// when that header is missing. Username and password come from the query
// string or the form body.
func RequestCredentials(request *http.Request) CredentialSource {
	return requestCredentials{request: request}
}

// Token implements CredentialSource.
func (credentials requestCredentials) Token() (string, bool) {
	if token := credentials.request.Header.Get(constants.HeaderToken); token != "" {
		return token, true
	}

	authorization := credentials.request.Header.Get(constants.HeaderAuthorization)
	if token, ok := strings.CutPrefix(authorization, bearerPrefix); ok && token != "" {
		return token, true
	}

	return "", false
}

// Value implements CredentialSource.
func (credentials requestCredentials) Value(key string) (string, bool) {
	value := requestutil.FormValue(credentials.request, key)
	if value == nil {
		return "", false
	}
	return *value, true
}
