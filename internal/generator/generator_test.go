package generator

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/scoring"
)

func seeded() *Generator {
	return New(rand.New(rand.NewPCG(1, 2)))
}

// fixedRand returns queued values and repeats the last one.
type fixedRand struct {
	ints   []int
	floats []float64
}

func (f *fixedRand) IntN(n int) int {
	v := f.ints[0]
	if len(f.ints) > 1 {
		f.ints = f.ints[1:]
	}
	return v % n
}

func (f *fixedRand) Float64() float64 {
	v := f.floats[0]
	if len(f.floats) > 1 {
		f.floats = f.floats[1:]
	}
	return v
}

func TestGeneratePassword_LengthAndPool(t *testing.T) {
	t.Parallel()
	g := seeded()

	for _, tc := range []struct {
		symbols, numbers bool
	}{{true, true}, {true, false}, {false, true}, {false, false}} {
		pool := Pool(tc.symbols, tc.numbers)
		for _, n := range []int{1, 8, 16, 64} {
			pw, err := g.GeneratePassword(n, tc.symbols, tc.numbers)
			require.NoError(t, err)
			require.Len(t, pw, n)
			for _, r := range pw {
				require.True(t, strings.ContainsRune(pool, r), "%q not in pool", r)
			}
		}
	}

	pw, err := g.GeneratePassword(200, false, false)
	require.NoError(t, err)
	require.False(t, strings.ContainsAny(pw, digits+scoring.Symbols))
}

func TestGeneratePassword_InvalidLength(t *testing.T) {
	t.Parallel()
	g := seeded()
	for _, n := range []int{0, -1} {
		_, err := g.GeneratePassword(n, true, true)
		require.ErrorIs(t, err, errs.ErrInvalidLength)
	}
}

func TestGeneratePassword_DefaultSource(t *testing.T) {
	t.Parallel()
	g := New(nil)
	a, err := g.GeneratePassword(DefaultPasswordLength, true, true)
	require.NoError(t, err)
	b, err := g.GeneratePassword(DefaultPasswordLength, true, true)
	require.NoError(t, err)
	require.Len(t, a, DefaultPasswordLength)
	require.NotEqual(t, a, b)
}

func TestGenerateFakeIdentity(t *testing.T) {
	t.Parallel()
	g := seeded()
	phone := regexp.MustCompile(`^\+1 \([1-9]\d{2}\) [1-9]\d{2}-[1-9]\d{3}$`)
	address := regexp.MustCompile(`^([1-9]\d{0,3}) (Main|Oak|Pine|Elm|Cedar) St$`)

	for range 200 {
		id := g.GenerateFakeIdentity()

		parts := strings.Split(id.Name, " ")
		require.Len(t, parts, 2)
		require.Contains(t, firstNames, parts[0])
		require.Contains(t, lastNames, parts[1])

		local, domain, ok := strings.Cut(id.Email, "@")
		require.True(t, ok)
		require.Equal(t, strings.ToLower(parts[0])+"."+strings.ToLower(parts[1]), local)
		require.Contains(t, emailDomains, domain)

		require.Regexp(t, phone, id.Phone)
		require.Regexp(t, address, id.Address)
		require.Contains(t, cities, id.City)

		zip, err := strconv.Atoi(id.ZipCode)
		require.NoError(t, err)
		require.GreaterOrEqual(t, zip, 10000)
		require.LessOrEqual(t, zip, 99999)
	}
}

func TestGenerateFakeIdentity_Bounds(t *testing.T) {
	t.Parallel()

	lo := New(&fixedRand{ints: []int{0}}).GenerateFakeIdentity()
	require.Equal(t, "Alex Smith", lo.Name)
	require.Equal(t, "alex.smith@gmail.com", lo.Email)
	require.Equal(t, "+1 (100) 100-1000", lo.Phone)
	require.Equal(t, "1 Main St", lo.Address)
	require.Equal(t, "10000", lo.ZipCode)

	hi := New(&fixedRand{ints: []int{1<<30 - 1}}).GenerateFakeIdentity()
	require.Regexp(t, `^\+1 \(\d{3}\) \d{3}-\d{4}$`, hi.Phone)
}

func TestGenerateMaskedEmail(t *testing.T) {
	t.Parallel()
	g := seeded()
	re := regexp.MustCompile(`^(temp|secure|private|anon|safe)[0-9a-z]{6}@(tempmail\.com|guerrillamail\.com|10minutemail\.com)$`)
	for range 100 {
		require.Regexp(t, re, g.GenerateMaskedEmail())
	}
}

func TestCheckBreaches(t *testing.T) {
	t.Parallel()

	none := New(&fixedRand{floats: []float64{0.6}}).CheckBreaches("a@b.c")
	require.NotNil(t, none)
	require.Empty(t, none)

	all := New(&fixedRand{floats: []float64{0.99}}).CheckBreaches("a@b.c")
	require.Equal(t, knownBreaches, all)

	some := New(&fixedRand{floats: []float64{0.9, 0.1, 0.7, 0.2, 0.5}}).CheckBreaches("a@b.c")
	require.Equal(t, []Breach{knownBreaches[0], knownBreaches[2]}, some)

	g := seeded()
	for range 50 {
		got := g.CheckBreaches("x@y.z")
		require.LessOrEqual(t, len(got), len(knownBreaches))
		for _, b := range got {
			require.Contains(t, knownBreaches, b)
		}
	}
}
