package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// DecimalInput decodes a request amount sent as a JSON number or string.
// Decoding never fails; callers inspect Present, Null and Invalid instead so
// a malformed amount becomes a field-level validation message.
type DecimalInput struct {
	Present bool
	Null    bool
	Invalid bool
	Value   decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DecimalInput) UnmarshalJSON(data []byte) error {
	*d = DecimalInput{Present: true}

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		d.Null = true
		return nil
	}

	raw := string(trimmed)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var quoted string
		if err := json.Unmarshal(trimmed, &quoted); err != nil {
			d.Invalid = true
			return nil
		}
		raw = strings.TrimSpace(quoted)
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		d.Invalid = true
		return nil
	}
	d.Value = value
	return nil
}

// NewDecimalInput builds a present, valid input; used by tests and seeds.
func NewDecimalInput(value string) DecimalInput {
	return DecimalInput{Present: true, Value: decimal.RequireFromString(value)}
}
