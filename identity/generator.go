// Package identity derives content-addressed test identities.
//
// A test's identity is a deterministic SHA-256 digest over its fully
// qualified name and a canonical rendering of its parameters. Two runs of
// the same logical test — on different machines, in different orders, in
// different processes — produce the same hash. The backend keys all
// historical trend analysis on this hash, so determinism here is a hard
// invariant: no randomness, no machine-specific data, no map iteration
// order may leak into the digest.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/xping/xping-go/errors"
)

// TestIdentity is the stable, cross-run identifier for one logical test.
type TestIdentity struct {
	// Hash is the 64-character lowercase hex SHA-256 of
	// "{fullyQualifiedName}|{canonicalParameters}".
	Hash string `json:"hash"`

	FullyQualifiedName string `json:"fully_qualified_name"`
	Package            string `json:"package"`
	Type               string `json:"type"`
	Method             string `json:"method"`
	Assembly           string `json:"assembly"` // owning module/binary name

	DisplayName        string `json:"display_name,omitempty"`
	ParameterSignature string `json:"parameter_signature,omitempty"`
	SourceFile         string `json:"source_file,omitempty"`
	SourceLine         int    `json:"source_line,omitempty"`
}

// Option customizes identity generation.
type Option func(*request)

type request struct {
	parameters  []any
	displayName string
	sourceFile  string
	sourceLine  int
}

// WithParameters attaches the test's parameter values. They are
// canonicalized and folded into the hash, so parameterized cases get
// distinct identities.
func WithParameters(params ...any) Option {
	return func(r *request) { r.parameters = params }
}

// WithDisplayName attaches a human-readable name. Display names do not
// participate in the hash: renaming a test's display must not orphan its
// history.
func WithDisplayName(name string) Option {
	return func(r *request) { r.displayName = name }
}

// WithSource attaches the source location. Not hashed, for the same
// reason as display names: moving a test file must not change identity.
func WithSource(file string, line int) Option {
	return func(r *request) {
		r.sourceFile = file
		r.sourceLine = line
	}
}

// Generator derives test identities and failure-grouping hashes.
type Generator struct{}

// NewGenerator creates an identity generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate derives the identity for one test.
//
// fullyQualifiedName must split into at least {package}.{type}.{method}:
// fewer than three non-empty dot-separated segments is an error, because
// the backend's grouping UI needs all three levels.
func (g *Generator) Generate(fullyQualifiedName, assembly string, opts ...Option) (TestIdentity, error) {
	segments := strings.Split(fullyQualifiedName, ".")
	if len(segments) < 3 {
		return TestIdentity{}, errors.Newf(
			"fully qualified name %q must have at least package, type and method segments",
			fullyQualifiedName)
	}
	for _, seg := range segments {
		if seg == "" {
			return TestIdentity{}, errors.Newf(
				"fully qualified name %q contains an empty segment", fullyQualifiedName)
		}
	}

	var r request
	for _, opt := range opts {
		opt(&r)
	}

	signature := canonicalParameters(r.parameters)

	// The pipe separator keeps "a.b.c" + params "d" distinct from
	// "a.b.cd" with no params.
	sum := sha256.Sum256([]byte(fullyQualifiedName + "|" + signature))

	method := segments[len(segments)-1]
	typeName := segments[len(segments)-2]
	pkg := strings.Join(segments[:len(segments)-2], ".")

	return TestIdentity{
		Hash:               hex.EncodeToString(sum[:]),
		FullyQualifiedName: fullyQualifiedName,
		Package:            pkg,
		Type:               typeName,
		Method:             method,
		Assembly:           assembly,
		DisplayName:        r.displayName,
		ParameterSignature: signature,
		SourceFile:         r.sourceFile,
		SourceLine:         r.sourceLine,
	}, nil
}

// HashText returns the lowercase hex SHA-256 of a string's UTF-8 bytes.
// Used for error-message and stack-trace grouping: the backend clusters
// recurring failures by hash without depending on message equality.
// Empty input returns the empty string so optional fields stay optional.
func HashText(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
