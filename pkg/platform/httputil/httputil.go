// Package httputil centralizes JSON response writing so handlers map domain
// errors to transport errors in one place.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "markpart/pkg/domain-errors"
)

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto an HTTP error response. The description is
// forwarded for client-caused errors; internal errors return only the code
// so nothing about the failure leaks.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body.ErrorDescription = de.Description
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
