package validators

import (
	"net/http"
)

// QueryParam returns the first value of key and whether the key was sent at
// all, so ?email= (present, empty) differs from no email key.
func QueryParam(r *http.Request, key string) (string, bool) {
	values, ok := r.URL.Query()[key]
	if !ok {
		return "", false
	}
	if len(values) == 0 {
		return "", true
	}
	return values[0], true
}
