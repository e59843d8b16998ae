package types

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

type SuccessEnvelope struct {
	Result string `json:"result"`
	Data   any    `json:"data"`
}

// ErrorEnvelope carries either a plain message or a field -> messages map.
type ErrorEnvelope struct {
	Result  string `json:"result"`
	Message any    `json:"message"`
}

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Empty reports whether no field has been flagged.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}
