// Package annotation implements the three-entry key/value contract between
// declared intent and schema operations. The triplet (is-computed flag,
// algorithm token, delimited source list) is the only channel other
// components may depend on.
package annotation

import (
	"strings"

	"github.com/hashcol/hashcol/internal/algorithm"
	"github.com/hashcol/hashcol/internal/descriptor"
	"github.com/hashcol/hashcol/internal/errors"
)

// Annotation keys written to a column's annotation map.
const (
	KeyComputed  = "hashcol:computed"
	KeyAlgorithm = "hashcol:algorithm"
	KeySources   = "hashcol:sources"
)

// sourceSeparator joins source column names in the annotation value.
// Column identifiers cannot contain commas, so the join is unambiguous.
const sourceSeparator = ","

// Encode writes the descriptor's annotation triplet into the store,
// overwriting any previous hash declaration (last writer wins).
func Encode(d descriptor.Descriptor, store map[string]string) {
	store[KeyComputed] = "true"
	store[KeyAlgorithm] = d.Algorithm.String()
	store[KeySources] = strings.Join(d.SourceColumns, sourceSeparator)
}

// Clear removes the annotation triplet from the store.
func Clear(store map[string]string) {
	delete(store, KeyComputed)
	delete(store, KeyAlgorithm)
	delete(store, KeySources)
}

// Decode re-materializes a descriptor from annotation state. Returns
// ok=false when the column carries no hash declaration. Annotation state may
// have been hand-edited or externally mutated, so the decoded descriptor is
// re-validated; inconsistent state fails with MALFORMED_ANNOTATION.
func Decode(targetColumn string, store map[string]string) (descriptor.Descriptor, bool, error) {
	flag, present := store[KeyComputed]
	if !present {
		// A partial triplet without the flag is hand-edited state.
		if _, ok := store[KeyAlgorithm]; ok {
			return descriptor.Descriptor{}, false, malformed(targetColumn, "algorithm set without computed flag")
		}
		if _, ok := store[KeySources]; ok {
			return descriptor.Descriptor{}, false, malformed(targetColumn, "sources set without computed flag")
		}
		return descriptor.Descriptor{}, false, nil
	}

	if flag != "true" {
		return descriptor.Descriptor{}, false, malformed(targetColumn, "computed flag must be \"true\", got "+flag)
	}

	token, ok := store[KeyAlgorithm]
	if !ok {
		return descriptor.Descriptor{}, false, malformed(targetColumn, "missing algorithm annotation")
	}
	alg, err := algorithm.Parse(token)
	if err != nil {
		return descriptor.Descriptor{}, false, errors.Wrap(errors.ErrCategoryAnnotation, errors.CodeMalformedAnnotation,
			"column "+targetColumn+": invalid algorithm annotation", err)
	}

	raw, ok := store[KeySources]
	if !ok {
		return descriptor.Descriptor{}, false, malformed(targetColumn, "missing sources annotation")
	}

	var sources []string
	if raw != "" {
		sources = strings.Split(raw, sourceSeparator)
	}

	d := descriptor.Descriptor{
		TargetColumn:  targetColumn,
		Algorithm:     alg,
		SourceColumns: sources,
	}
	if err := d.Validate(); err != nil {
		return descriptor.Descriptor{}, false, errors.Wrap(errors.ErrCategoryAnnotation, errors.CodeMalformedAnnotation,
			"column "+targetColumn+": annotation state fails validation", err)
	}
	return d, true, nil
}

func malformed(column, detail string) *errors.HashcolError {
	return errors.NewAnnotationError("column " + column + ": " + detail)
}
