package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/logging"
	"github.com/davidpoza/dps-toggl-api/utils"
	"github.com/davidpoza/dps-toggl-api/validation"
)

// respondError is the single boundary mapping the error taxonomy to HTTP.
// Informational outcomes are deliberately success-shaped (200 with an error
// body); Internal errors are logged in full and returned generic.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.KindOf(err)

	var status int
	switch kind {
	case apperrors.BadRequest:
		status = http.StatusBadRequest
	case apperrors.Unauthorized:
		status = http.StatusUnauthorized
	case apperrors.Forbidden:
		status = http.StatusForbidden
	case apperrors.NotFound:
		status = http.StatusNotFound
	case apperrors.Conflict:
		status = http.StatusConflict
	case apperrors.Informational:
		status = http.StatusOK
	default:
		status = http.StatusInternalServerError
		logging.Logger.Errorf("Event ID: UNHANDLED_ERROR, Description: %s %s from %s failed: %v", r.Method, r.URL.Path, utils.GetIP(r), err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": apperrors.MessageOf(err)},
	})
}

func respondData(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"data": payload})
}

// decodeValidated reads the body, checks it against a named schema and
// decodes it into dst. Schema violations come back as one BadRequest.
func decodeValidated(v *validation.Validator, r *http.Request, schemaName string, dst interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to read request body", err)
	}
	violations, err := v.Validate(body, schemaName)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "schema validation failed", err)
	}
	if len(violations) > 0 {
		messages := make([]string, 0, len(violations))
		for _, violation := range violations {
			if violation.Field == "" || violation.Field == "(root)" {
				messages = append(messages, violation.Message)
				continue
			}
			messages = append(messages, fmt.Sprintf("%s: %s", violation.Field, violation.Message))
		}
		return apperrors.New(apperrors.BadRequest, strings.Join(messages, "; "))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.Wrap(apperrors.BadRequest, "malformed request body", err)
	}
	return nil
}
