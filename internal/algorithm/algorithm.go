// Package algorithm defines the closed set of hash algorithms the engine can
// render into HASHBYTES expressions, with their output widths and security
// classification.
package algorithm

import (
	"strings"

	"github.com/hashcol/hashcol/internal/errors"
)

// Algorithm identifies a supported hash algorithm. The set is fixed at build
// time; raw text is only accepted at the Parse boundary.
type Algorithm int

const (
	// Legacy 128-bit algorithms. Kept for migration compatibility with
	// pre-existing schemas; flagged insecure.
	MD2 Algorithm = iota
	MD4
	MD5

	// SHA1 is the legacy 160-bit algorithm, also insecure.
	SHA1

	// SHA2_256 and SHA2_512 are the recommended algorithms.
	SHA2_256
	SHA2_512
)

// entry maps an algorithm to its canonical HASHBYTES token, output width in
// bytes, and security classification.
type entry struct {
	token  string
	width  int
	secure bool
}

var registry = map[Algorithm]entry{
	MD2:      {token: "MD2", width: 16, secure: false},
	MD4:      {token: "MD4", width: 16, secure: false},
	MD5:      {token: "MD5", width: 16, secure: false},
	SHA1:     {token: "SHA1", width: 20, secure: false},
	SHA2_256: {token: "SHA2_256", width: 32, secure: true},
	SHA2_512: {token: "SHA2_512", width: 64, secure: true},
}

// byToken is the case-folded lookup used by Parse.
var byToken = func() map[string]Algorithm {
	m := make(map[string]Algorithm, len(registry))
	for a, e := range registry {
		m[strings.ToUpper(e.token)] = a
	}
	return m
}()

// Parse matches a raw algorithm token against the registry. Matching is
// case-insensitive; an unrecognized token fails with UNKNOWN_ALGORITHM.
func Parse(token string) (Algorithm, error) {
	a, ok := byToken[strings.ToUpper(strings.TrimSpace(token))]
	if !ok {
		return 0, errors.Newf(errors.ErrCategoryValidation, errors.CodeUnknownAlgorithm,
			"unknown hash algorithm %q (supported: %s)", token, supportedTokens())
	}
	return a, nil
}

// All returns every registered algorithm in a stable order.
func All() []Algorithm {
	return []Algorithm{MD2, MD4, MD5, SHA1, SHA2_256, SHA2_512}
}

// String returns the canonical upper-case HASHBYTES token.
func (a Algorithm) String() string {
	return registry[a].token
}

// Width returns the algorithm's output width in bytes. This is the single
// source of truth for the computed column's storage width.
func (a Algorithm) Width() int {
	return registry[a].width
}

// Secure reports whether the algorithm is considered cryptographically
// secure. Insecure algorithms remain usable; callers should warn, not fail.
func (a Algorithm) Secure() bool {
	return registry[a].secure
}

func supportedTokens() string {
	tokens := make([]string, 0, len(registry))
	for _, a := range All() {
		tokens = append(tokens, registry[a].token)
	}
	return strings.Join(tokens, ", ")
}
