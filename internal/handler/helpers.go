package handler

import (
	"fmt"
	"net/http"
	"strconv"

	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
)

// parseIntParam parses an integer query parameter, falling back to def when absent.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return 0, &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("invalid %s: must be a non-negative integer", name),
			StatusCode: http.StatusBadRequest,
		}
	}
	return val, nil
}

func parseBoolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("invalid %s: must be a boolean", name),
			StatusCode: http.StatusBadRequest,
		}
	}
	return val, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
