package validators

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

// DecodeJSONBody decodes the request body into dest. An empty body leaves
// dest untouched so the service reports each missing field; unknown fields
// are ignored.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "JSON parse error - "+err.Error())
	}
	return nil
}
