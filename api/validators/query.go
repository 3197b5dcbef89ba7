package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
)

// PathParam returns a trimmed URL parameter from the chi route context.
func PathParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

// RequirePathParam is PathParam that fails with a validation error when the
// parameter is blank.
func RequirePathParam(r *http.Request, key, message string) (string, error) {
	value := PathParam(r, key)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]string{key: "is required"})
	}
	return value, nil
}
