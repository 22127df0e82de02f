package jsonmodem

import (
	"errors"
	"math/rand"
	"os"
	"strconv"
	"testing"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/yaml"

	"github.com/flitsinc/jsonmodem/valuebuilder"
)

// TestMain allows pinning property-test tunables (the iteration count) in a
// local, untracked .env.test file instead of editing source. The random seed
// is derived from each document's length and is not read from the
// environment.
func TestMain(m *testing.M) {
	if err := godotenv.Load(".env.test"); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}
	os.Exit(m.Run())
}

// fuzzIterations returns how many chunk-split trials per document the P3
// property test runs, overridable via JSONMODEM_FUZZ_ITERATIONS (typically
// set in .env.test).
func fuzzIterations() int {
	if n, err := strconv.Atoi(os.Getenv("JSONMODEM_FUZZ_ITERATIONS")); err == nil && n > 0 {
		return n
	}
	return 8
}

// reparse runs a document through json-iterator (encoding/json-compatible)
// non-incrementally, the reference this package's P4 (round-trip) property
// compares against.
func reparse(t *testing.T, doc string) any {
	t.Helper()
	var v any
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(doc, &v))
	return normalizeNumbers(v)
}

// normalizeNumbers converts json-iterator's json.Number-free float64/int
// distinction away so it compares equal to valuebuilder.Value.Native(),
// which always uses float64.
func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = normalizeNumbers(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = normalizeNumbers(vv)
		}
		return out
	case int:
		return float64(x)
	}
	return v
}

func buildDocument(t *testing.T, doc string) valuebuilder.Value {
	t.Helper()
	p := New[valuebuilder.Value, valuebuilder.StrBuf, valuebuilder.ArrBuf, valuebuilder.ObjBuf](
		valuebuilder.Std{}, WithNonScalarValueMode(NonScalarValueModeRoots), WithStringValueMode(StringValueModeValues))
	events, err := collect(t, p, doc)
	require.NoError(t, err)
	for _, ev := range events {
		switch e := ev.(type) {
		case ObjectEnd[valuebuilder.Value]:
			if e.HasValue {
				return e.Value
			}
		case ArrayEnd[valuebuilder.Value]:
			if e.HasValue {
				return e.Value
			}
		case Null:
			if len(e.Path) == 0 {
				return valuebuilder.Std{}.NewNull()
			}
		case Bool:
			if len(e.Path) == 0 {
				return valuebuilder.Std{}.NewBool(e.Value)
			}
		case Number:
			if len(e.Path) == 0 {
				v, numErr := valuebuilder.Std{}.NewNumber(e.RawLexeme, e.IsFloat)
				require.NoError(t, numErr)
				return v
			}
		case String[valuebuilder.Value]:
			if e.IsFinal && len(e.Path) == 0 {
				return e.Value
			}
		}
	}
	t.Fatalf("no root value observed for %q", doc)
	return valuebuilder.Value{}
}

// TestPropertyRoundTripAgainstReferenceParser is P4: a jsonmodem parse and a
// json-iterator parse of the same document must agree once normalized to the
// same number representation.
func TestPropertyRoundTripAgainstReferenceParser(t *testing.T) {
	docs := []string{
		`{"a":1,"b":[1,2,3],"c":{"d":null,"e":true,"f":"x"}}`,
		`[1,2.5,-3,"s",null,false,{"k":[1,[2,3],{}]}]`,
		`{"unicode":"é😀"}`,
	}
	for _, doc := range docs {
		got := buildDocument(t, doc).Native()
		want := reparse(t, doc)
		require.Equal(t, want, got, doc)
	}
}

// Each document is split in two at fuzzIterations() randomly chosen points,
// and the trials run concurrently via errgroup (P3, chunk-invariance):
// however a document is chunked, the final built value must be identical.
func TestPropertyChunkInvarianceConcurrent(t *testing.T) {
	docs := []string{
		`{"items":[1,2,3,4,5],"meta":{"ok":true,"count":5}}`,
		`["a","bb","ccc",{"x":1},[1,[2,[3]]]]`,
	}

	var g errgroup.Group
	for _, doc := range docs {
		doc := doc
		reference := buildDocument(t, doc).Native()
		rng := rand.New(rand.NewSource(int64(len(doc))))
		for trial := 0; trial < fuzzIterations(); trial++ {
			splitAt := 0
			if len(doc) > 1 {
				splitAt = rng.Intn(len(doc)-1) + 1
			}
			g.Go(func() error {
				p := New[valuebuilder.Value, valuebuilder.StrBuf, valuebuilder.ArrBuf, valuebuilder.ObjBuf](
					valuebuilder.Std{}, WithNonScalarValueMode(NonScalarValueModeRoots))
				events, err := collect(t, p, doc[:splitAt], doc[splitAt:])
				if err != nil {
					return err
				}
				got := lastRootValue(events).Native()
				if !assert.ObjectsAreEqual(reference, got) {
					t.Errorf("chunk split at %d produced a different value for %q", splitAt, doc)
				}
				return nil
			})
		}
	}
	require.NoError(t, g.Wait())
}

func lastRootValue(events []ParseEvent) valuebuilder.Value {
	for i := len(events) - 1; i >= 0; i-- {
		switch e := events[i].(type) {
		case ObjectEnd[valuebuilder.Value]:
			if e.HasValue {
				return e.Value
			}
		case ArrayEnd[valuebuilder.Value]:
			if e.HasValue {
				return e.Value
			}
		}
	}
	return valuebuilder.Value{}
}

// TestGoldenYAMLSnapshot marshals a reconstructed document through
// sigs.k8s.io/yaml for a stable golden fixture comparison.
func TestGoldenYAMLSnapshot(t *testing.T) {
	v := buildDocument(t, `{"a":1,"b":"two","c":[true,false,null]}`)
	out, err := yaml.Marshal(v.Native())
	require.NoError(t, err)
	assert.YAMLEq(t, `
a: 1
b: two
c:
- true
- false
- null
`, string(out))
}
