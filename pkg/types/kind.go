// Package types defines the shared model vocabulary used across the Hashcol
// engine: property value kinds and SQL storage type specs.
package types

import (
	"fmt"
	"strings"
)

// PropertyKind classifies the declared value type of a model property.
type PropertyKind string

const (
	// KindBytes is a fixed- or variable-length byte sequence. Only
	// properties of this kind may carry a computed-hash declaration.
	KindBytes PropertyKind = "bytes"

	KindString  PropertyKind = "string"
	KindInt64   PropertyKind = "int64"
	KindFloat64 PropertyKind = "float64"
	KindBool    PropertyKind = "bool"
	KindTime    PropertyKind = "time"
)

// ParseKind parses a property kind token from a model declaration file.
// Matching is case-insensitive.
func ParseKind(token string) (PropertyKind, error) {
	switch PropertyKind(strings.ToLower(strings.TrimSpace(token))) {
	case KindBytes:
		return KindBytes, nil
	case KindString:
		return KindString, nil
	case KindInt64:
		return KindInt64, nil
	case KindFloat64:
		return KindFloat64, nil
	case KindBool:
		return KindBool, nil
	case KindTime:
		return KindTime, nil
	default:
		return "", fmt.Errorf("unknown property kind: %q", token)
	}
}

// IsBytes reports whether the kind is a byte-sequence kind.
func (k PropertyKind) IsBytes() bool {
	return k == KindBytes
}

// SQLType returns the default SQL Server storage type for the kind.
// Computed-hash columns override this with a fixed-width BINARY type.
func (k PropertyKind) SQLType() string {
	switch k {
	case KindBytes:
		return "VARBINARY(MAX)"
	case KindString:
		return "NVARCHAR(MAX)"
	case KindInt64:
		return "BIGINT"
	case KindFloat64:
		return "FLOAT"
	case KindBool:
		return "BIT"
	case KindTime:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}
