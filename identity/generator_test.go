package identity_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xping/xping-go/identity"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerate_Deterministic(t *testing.T) {
	gen := identity.NewGenerator()

	first, err := gen.Generate("shop.Checkout.PaysWithCard", "shop-tests",
		identity.WithParameters("visa", 42, 19.99))
	require.NoError(t, err)

	// Same inputs, repeated calls, fresh generator: identical hash
	for i := 0; i < 5; i++ {
		again, err := identity.NewGenerator().Generate("shop.Checkout.PaysWithCard", "shop-tests",
			identity.WithParameters("visa", 42, 19.99))
		require.NoError(t, err)
		assert.Equal(t, first.Hash, again.Hash, "hash must be stable across calls and generators")
	}

	assert.Regexp(t, hexHash, first.Hash, "hash must be 64 lowercase hex chars")
}

func TestGenerate_ParametersForkIdentity(t *testing.T) {
	gen := identity.NewGenerator()

	a, err := gen.Generate("shop.Checkout.PaysWithCard", "shop-tests", identity.WithParameters("visa"))
	require.NoError(t, err)
	b, err := gen.Generate("shop.Checkout.PaysWithCard", "shop-tests", identity.WithParameters("amex"))
	require.NoError(t, err)
	bare, err := gen.Generate("shop.Checkout.PaysWithCard", "shop-tests")
	require.NoError(t, err)

	assert.NotEqual(t, a.Hash, b.Hash, "different parameters must produce different identities")
	assert.NotEqual(t, a.Hash, bare.Hash, "parameterized and bare cases must differ")
}

func TestGenerate_DisplayNameAndSourceDoNotAffectHash(t *testing.T) {
	gen := identity.NewGenerator()

	plain, err := gen.Generate("shop.Checkout.PaysWithCard", "shop-tests")
	require.NoError(t, err)
	decorated, err := gen.Generate("shop.Checkout.PaysWithCard", "shop-tests",
		identity.WithDisplayName("pays with card"),
		identity.WithSource("checkout_test.go", 120))
	require.NoError(t, err)

	assert.Equal(t, plain.Hash, decorated.Hash,
		"renaming or moving a test must not orphan its history")
	assert.Equal(t, "pays with card", decorated.DisplayName)
	assert.Equal(t, 120, decorated.SourceLine)
}

func TestGenerate_SegmentDerivation(t *testing.T) {
	gen := identity.NewGenerator()

	id, err := gen.Generate("example.com/pkg.sub.Suite.Method", "pkg")
	require.NoError(t, err)

	assert.Equal(t, "Method", id.Method)
	assert.Equal(t, "Suite", id.Type)
	assert.Equal(t, "example.com/pkg.sub", id.Package)
}

func TestGenerate_RejectsShortNames(t *testing.T) {
	gen := identity.NewGenerator()

	tests := []struct {
		name string
		fqn  string
	}{
		{"no dots", "JustAMethod"},
		{"one segment pair", "Suite.Method"},
		{"empty segment", "pkg..Method"},
		{"trailing dot", "pkg.Suite."},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(tt.fqn, "pkg")
			assert.Error(t, err, "fqn %q must be rejected", tt.fqn)
		})
	}
}

func TestGenerate_CanonicalParameterKinds(t *testing.T) {
	gen := identity.NewGenerator()

	when := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	// Each case hashed twice: canonical rendering must be stable even
	// for kinds with unstable native iteration (maps).
	cases := [][]any{
		{nil},
		{true, false},
		{int64(-7), uint64(7)},
		{3.14159, float32(2.5)},
		{when},
		{[]string{"a", "b", "c"}},
		{map[string]int{"x": 1, "y": 2, "z": 3}},
	}

	for _, params := range cases {
		a, err := gen.Generate("pkg.Suite.Case", "pkg", identity.WithParameters(params...))
		require.NoError(t, err)
		b, err := gen.Generate("pkg.Suite.Case", "pkg", identity.WithParameters(params...))
		require.NoError(t, err)
		assert.Equal(t, a.Hash, b.Hash, "params %v must hash stably", params)
	}
}

type cardBrand string

func (b cardBrand) String() string { return string(b) }

func TestGenerate_StringerRendersAsItsOwnForm(t *testing.T) {
	gen := identity.NewGenerator()

	viaStringer, err := gen.Generate("shop.Checkout.PaysWithCard", "shop-tests",
		identity.WithParameters(cardBrand("visa")))
	require.NoError(t, err)
	viaString, err := gen.Generate("shop.Checkout.PaysWithCard", "shop-tests",
		identity.WithParameters("visa"))
	require.NoError(t, err)

	assert.Equal(t, viaString.Hash, viaStringer.Hash,
		"a Stringer canonicalizes to its bare String(), not a type-prefixed form")
}

func TestHashText(t *testing.T) {
	assert.Empty(t, identity.HashText(""), "empty input stays empty so optional fields stay optional")

	h := identity.HashText("assertion failed: want 3, got 4")
	assert.Regexp(t, hexHash, h)
	assert.Equal(t, h, identity.HashText("assertion failed: want 3, got 4"))
	assert.NotEqual(t, h, identity.HashText("assertion failed: want 3, got 5"))
}
