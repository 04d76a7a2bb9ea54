package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError serializes any error as a structured JSON failure using
// the AppError mapping; unknown errors become 500 INTERNAL_ERROR.
func WriteError(w http.ResponseWriter, err error) error {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = Internal("An unexpected error occurred", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())

	return json.NewEncoder(w).Encode(ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
