// Copyright (c) 2026 Gritsos. All rights reserved.

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides the router's parameter extraction and the form parsing rules behind
small helpers that report failures as [apperr.AppError].
*/
package requestutil

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
)

// maxFormMemory bounds the in-memory part of multipart bodies.
const maxFormMemory = 1 << 20

/*
IntParam retrieves a named URL parameter and parses it as a base-10 integer.

Returns:
  - int64: The parsed value
  - error: apperr.BadRequest if the parameter is not numeric
*/
func IntParam(request *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil {
		return 0, apperr.BadRequest("Invalid " + name)
	}
	return value, nil
}

/*
FormValue returns a request parameter from the query string or the body form
and reports whether the key was present at all.

A key sent with an empty value is present. Presence is what credential
selection keys on, so an empty password still selects password
authentication and then fails verification.

Parameters:
  - request: *http.Request
  - key: string

Returns:
  - *string: nil when the key is absent, otherwise the first value
*/
func FormValue(request *http.Request, key string) *string {
	if request.Form == nil {
		_ = request.ParseMultipartForm(maxFormMemory)
	}

	values, ok := request.Form[key]
	if !ok || len(values) == 0 {
		return nil
	}

	value := values[0]
	return &value
}
