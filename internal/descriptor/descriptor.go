// Package descriptor defines the computed-hash descriptor and the
// normalization rules that turn a raw declaration into a validated one.
package descriptor

import (
	"strings"

	"github.com/hashcol/hashcol/internal/algorithm"
	"github.com/hashcol/hashcol/internal/errors"
	"github.com/hashcol/hashcol/pkg/types"
)

// Descriptor is the normalized declaration that a column's value equals a
// hash of its sibling columns. Source order is semantically significant: it
// changes the hash input, so it is preserved exactly as declared.
type Descriptor struct {
	TargetColumn  string
	Algorithm     algorithm.Algorithm
	SourceColumns []string
}

// Normalize turns a raw declaration into a validated Descriptor.
//
// targetKind is the declared value type of the target property; anything
// other than a byte sequence fails before a descriptor is created. The
// algorithm token is case-folded and matched against the registry. The
// source list is checked for emptiness and duplicates but never reordered
// or deduplicated.
func Normalize(targetColumn string, targetKind types.PropertyKind, token string, sources []string) (Descriptor, error) {
	if !targetKind.IsBytes() {
		return Descriptor{}, errors.Newf(errors.ErrCategoryValidation, errors.CodeInvalidTargetType,
			"column %q: computed hash requires a byte-sequence property, got %s", targetColumn, targetKind)
	}

	alg, err := algorithm.Parse(token)
	if err != nil {
		return Descriptor{}, err
	}

	d := Descriptor{
		TargetColumn:  targetColumn,
		Algorithm:     alg,
		SourceColumns: append([]string(nil), sources...),
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Validate enforces the descriptor invariants: non-empty, duplicate-free
// source list. It is idempotent, so it is safe to run again whenever a
// descriptor is re-materialized from annotation state.
func (d Descriptor) Validate() error {
	if len(d.SourceColumns) == 0 {
		return errors.Newf(errors.ErrCategoryValidation, errors.CodeEmptySourceList,
			"column %q: computed hash requires at least one source column", d.TargetColumn)
	}

	seen := make(map[string]bool, len(d.SourceColumns))
	for _, src := range d.SourceColumns {
		if strings.TrimSpace(src) == "" {
			return errors.Newf(errors.ErrCategoryValidation, errors.CodeEmptySourceList,
				"column %q: source column name is empty", d.TargetColumn)
		}
		if seen[src] {
			return errors.Newf(errors.ErrCategoryValidation, errors.CodeDuplicateSource,
				"column %q: duplicate source column %q", d.TargetColumn, src)
		}
		seen[src] = true
	}
	return nil
}

// Equal reports whether two descriptors would render identical SQL:
// same algorithm and same source columns in the same order.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.TargetColumn != other.TargetColumn || d.Algorithm != other.Algorithm {
		return false
	}
	if len(d.SourceColumns) != len(other.SourceColumns) {
		return false
	}
	for i := range d.SourceColumns {
		if d.SourceColumns[i] != other.SourceColumns[i] {
			return false
		}
	}
	return true
}

// Width returns the storage width in bytes, always derived from the current
// algorithm and never cached independently.
func (d Descriptor) Width() int {
	return d.Algorithm.Width()
}
