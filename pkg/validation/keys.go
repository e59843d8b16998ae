package validation

import (
	"strings"

	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/google/uuid"
)

const (
	MsgEmailParamMissing = "Email parameter is missing"
	MsgIDParamMissing    = "Id parameter is missing"
	MsgIDParamInvalid    = "Id parameter is not a valid UUID"
)

// RequireEmail trims an email lookup key and rejects it when nothing is left.
func RequireEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", pkgerrors.Validation(MsgEmailParamMissing)
	}
	return email, nil
}

// ParseID turns an id lookup key into a UUID, rejecting empty and malformed keys.
func ParseID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, pkgerrors.Validation(MsgIDParamMissing)
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, MsgIDParamInvalid)
	}
	return id, nil
}

// Failed wraps field errors into the 400 error returned by every write.
func Failed(errs types.FieldErrors) error {
	return pkgerrors.Validation("validation failed").WithDetails(errs)
}
