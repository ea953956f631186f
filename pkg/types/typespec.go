package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TypeSpec describes a concrete SQL storage type for a column.
// Width is in bytes and only meaningful for fixed-width binary types.
type TypeSpec struct {
	Name  string `json:"name"`
	Width int    `json:"width,omitempty"`
}

// SQL renders the type spec as a SQL Server type string, e.g. "BINARY(32)".
func (t TypeSpec) SQL() string {
	if t.Width > 0 {
		return fmt.Sprintf("%s(%d)", t.Name, t.Width)
	}
	return t.Name
}

// FixedBinary returns the fixed-width binary type spec for the given width.
func FixedBinary(width int) TypeSpec {
	return TypeSpec{Name: "BINARY", Width: width}
}

var binaryTypeRe = regexp.MustCompile(`^\s*(?i:binary)\s*\(\s*(\d+)\s*\)\s*$`)

// ParseBinary parses an explicit "BINARY(n)" type string supplied by the
// user. Returns false if the string is not a fixed-width binary type.
func ParseBinary(s string) (TypeSpec, bool) {
	m := binaryTypeRe.FindStringSubmatch(s)
	if m == nil {
		return TypeSpec{}, false
	}
	width, err := strconv.Atoi(m[1])
	if err != nil || width <= 0 {
		return TypeSpec{}, false
	}
	return FixedBinary(width), true
}

// Equal reports whether two type specs denote the same storage type.
// Type names compare case-insensitively, matching SQL Server semantics.
func (t TypeSpec) Equal(other TypeSpec) bool {
	return strings.EqualFold(t.Name, other.Name) && t.Width == other.Width
}
