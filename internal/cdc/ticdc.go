package cdc

import (
	"encoding/json"
)

// Operation is the row change kind carried by a TiCDC message.
type Operation string

const (
	OperationInsert  Operation = "INSERT"
	OperationUpdate  Operation = "UPDATE"
	OperationDelete  Operation = "DELETE"
	OperationUnknown Operation = "UNKNOWN"
)

// Change is a decoded row change.
type Change struct {
	Operation Operation
	Data      any
}

// ParseTiCDC decodes a TiCDC simple-protocol message. Column maps under "c",
// "u" or "d" are flattened to their "v" values; anything else is returned as
// parsed with OperationUnknown.
func ParseTiCDC(raw []byte) (Change, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Change{}, err
	}
	return Classify(parsed), nil
}

// Classify inspects an already decoded message.
func Classify(parsed any) Change {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return Change{Operation: OperationUnknown, Data: parsed}
	}
	for _, candidate := range []struct {
		key string
		op  Operation
	}{
		{"c", OperationInsert},
		{"u", OperationUpdate},
		{"d", OperationDelete},
	} {
		if row, ok := obj[candidate.key].(map[string]any); ok {
			return Change{Operation: candidate.op, Data: columnValues(row)}
		}
	}
	return Change{Operation: OperationUnknown, Data: parsed}
}

func columnValues(row map[string]any) map[string]any {
	values := make(map[string]any, len(row))
	for column, meta := range row {
		if m, ok := meta.(map[string]any); ok {
			values[column] = m["v"]
			continue
		}
		values[column] = nil
	}
	return values
}
