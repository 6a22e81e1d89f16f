package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
)

// envelope is the uniform success body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// errorBody is the uniform failure body. Details and RequestID are omitted when unset.
type errorBody struct {
	Success   bool                      `json:"success"`
	Error     string                    `json:"error"`
	Message   string                    `json:"message"`
	Details   nullable.Nullable[string] `json:"details,omitempty"`
	RequestID nullable.Nullable[string] `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	writeErrorDetails(w, r, status, title, message, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, status int, title, message string, details *string) {
	er := errorBody{Error: title, Message: message}
	if details != nil {
		er.Details = nullable.NewNullableWithValue(*details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.RequestID = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}
