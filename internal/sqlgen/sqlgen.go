// Package sqlgen renders computed-hash descriptors into SQL Server storage
// types and generated-column expressions. Rendering is pure and
// deterministic: the same descriptor yields a byte-identical string every
// time, which is what keeps repeated migration runs diff-free.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/hashcol/hashcol/internal/descriptor"
	"github.com/hashcol/hashcol/internal/errors"
	"github.com/hashcol/hashcol/pkg/types"
)

// sourceDelimiter separates converted source values inside the hash input.
// Known limitation: the delimiter is not escaped, so two different source
// tuples whose values contain '|' at the boundary can concatenate to the
// same text and therefore the same hash.
const sourceDelimiter = "|"

// StorageType returns the fixed-width binary type sized exactly to the
// descriptor's algorithm output width.
func StorageType(d descriptor.Descriptor) types.TypeSpec {
	return types.FixedBinary(d.Width())
}

// Expression builds the generated-column expression: each source column is
// converted to NVARCHAR(MAX), NULL-coalesced to the empty string, joined in
// declared order with the delimiter, and fed to HASHBYTES.
func Expression(d descriptor.Descriptor) string {
	parts := make([]string, len(d.SourceColumns))
	for i, src := range d.SourceColumns {
		parts[i] = fmt.Sprintf("ISNULL(CONVERT(NVARCHAR(MAX), %s), N'')", Quote(src))
	}
	joined := strings.Join(parts, fmt.Sprintf(" + '%s' + ", sourceDelimiter))
	return fmt.Sprintf("HASHBYTES('%s', %s)", d.Algorithm, joined)
}

// ColumnDefinition renders the full computed-column clause for a CREATE or
// ADD COLUMN statement, marked PERSISTED so the value is materialized on
// write rather than recomputed per read.
func ColumnDefinition(d descriptor.Descriptor) string {
	return fmt.Sprintf("%s AS (%s) PERSISTED", Quote(d.TargetColumn), Expression(d))
}

// CheckStorageType verifies a user-supplied explicit column type against the
// width the descriptor requires. An explicit type is allowed only when it is
// exactly BINARY(width); anything else is fatal at render time.
func CheckStorageType(d descriptor.Descriptor, explicit string) error {
	if strings.TrimSpace(explicit) == "" {
		return nil
	}
	want := StorageType(d)
	got, ok := types.ParseBinary(explicit)
	if !ok || !got.Equal(want) {
		return errors.Newf(errors.ErrCategoryRender, errors.CodeIncompatibleStorageType,
			"column %q: explicit type %q is incompatible with computed hash %s (expected %s)",
			d.TargetColumn, explicit, d.Algorithm, want.SQL())
	}
	return nil
}

// Quote wraps an identifier in SQL Server bracket quoting.
func Quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}
