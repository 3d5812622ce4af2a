package http

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "roombook/pkg/errors"
)

// QueryInt reads an integer query parameter in [0, maxValue], falling back
// to def when it is absent.
func QueryInt(r *http.Request, name string, def, maxValue int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, s))
	}
	if v > maxValue {
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s parameter must be at most %d", name, maxValue))
	}
	return v, nil
}
