package plugin

import (
	"cmp"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"nucore/internal/diag"
	"nucore/internal/source"
	"nucore/internal/trace"
	"nucore/internal/types"
	"nucore/internal/value"
)

type point struct{ X, Y int64 }

var pointShape = types.ClosedRecord(types.F("x", types.Int()), types.F("y", types.Int()))

func pointCaps() Capabilities {
	return Capabilities{
		Declared: pointShape,
		Encode: func(p any) ([]byte, error) {
			pt, ok := p.(point)
			if !ok {
				return nil, fmt.Errorf("not a point: %T", p)
			}
			return msgpack.Marshal(pt)
		},
		Decode: func(b []byte) (any, error) {
			var pt point
			if err := msgpack.Unmarshal(b, &pt); err != nil {
				return nil, err
			}
			return pt, nil
		},
		ToBaseValue: func(p any, sp source.Span) (value.Value, error) {
			pt, ok := p.(point)
			if !ok {
				return value.Value{}, errors.New("not a point")
			}
			return value.MakeRecord(value.MustRecord(
				[]string{"x", "y"},
				[]value.Value{value.MakeInt(pt.X, sp), value.MakeInt(pt.Y, sp)},
			), sp), nil
		},
		Compare: func(a, b any) value.Ordering {
			pa, pb := a.(point), b.(point)
			if c := cmp.Compare(pa.X, pb.X); c != 0 {
				return value.Ordering(c)
			}
			return value.Ordering(cmp.Compare(pa.Y, pb.Y))
		},
		Display: func(p any) string {
			pt := p.(point)
			return fmt.Sprintf("(%d, %d)", pt.X, pt.Y)
		},
	}
}

func newPointRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r := NewRegistry(opts...)
	require.NoError(t, r.Register("point", pointCaps()))
	r.Seal()
	return r
}

func makePoint(x, y int64, sp source.Span) value.Value {
	return value.MakeCustom(value.NewCustom("point", pointShape, point{x, y}), sp)
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("point", pointCaps()))
	require.NoError(t, r.Register("area", pointCaps()))

	err := r.Register("point", pointCaps())
	assert.True(t, diag.HasCode(err, diag.PluginDuplicateType))

	caps := pointCaps()
	caps.Decode = nil
	caps.ToBaseValue = nil
	err = r.Register("half", caps)
	assert.True(t, diag.HasCode(err, diag.PluginMissingCapability))
	assert.Contains(t, err.Error(), "missing decode, to-base-value")

	err = r.Register("", pointCaps())
	assert.True(t, diag.HasCode(err, diag.PluginMalformedEnvelope))

	assert.False(t, r.Sealed())
	r.Seal()
	r.Seal()
	assert.True(t, r.Sealed())
	err = r.Register("late", pointCaps())
	assert.True(t, diag.HasCode(err, diag.PluginRegistrySealed))

	assert.Equal(t, []string{"area", "point"}, r.Tags())
	_, ok := r.Lookup("half")
	assert.False(t, ok)
}

func TestRegistryOptionalCapabilities(t *testing.T) {
	r := NewRegistry()
	caps := pointCaps()
	caps.Compare = nil
	caps.Display = nil
	require.NoError(t, r.Register("point", caps))

	a := makePoint(1, 2, source.Unknown)
	b := makePoint(1, 2, source.Unknown)
	assert.Equal(t, value.OrderIncomparable, value.CompareWith(a, b, r))
	assert.Equal(t, value.OrderEqual, value.CompareWith(a, a, r))
	assert.Equal(t, "<point>", a.Display(r))
}

func TestRegistryCustomOps(t *testing.T) {
	r := newPointRegistry(t)
	a := makePoint(1, 2, source.Unknown)
	b := makePoint(1, 3, source.Unknown)

	assert.Equal(t, value.OrderLess, value.CompareWith(a, b, r))
	assert.True(t, value.EqualWith(a, makePoint(1, 2, source.Unknown), r))
	assert.Equal(t, "(1, 2)", a.Display(r))

	path, err := value.ParseCellPath("y")
	require.NoError(t, err)
	got, err := b.FollowCellPathWith(path, r)
	require.NoError(t, err)
	assert.Equal(t, "3", got.String())
}

func TestRegistryTracesEvents(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	r := NewRegistry(WithTracer(ring))
	require.NoError(t, r.Register("point", pointCaps()))
	_ = r.Register("point", pointCaps())
	r.Seal()

	_, err := r.Encode(makePoint(1, 2, source.Unknown))
	require.NoError(t, err)

	names := ring.Names()
	assert.Equal(t, []string{
		"point:register",
		"failure:register",
		"point:seal",
		"begin:encode",
		"end:encode",
	}, names)
}

func TestRegistryConcurrentLookup(t *testing.T) {
	r := newPointRegistry(t)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := makePoint(int64(i), 0, source.Unknown)
			env, err := r.Encode(v)
			assert.NoError(t, err)
			got, err := r.Decode(env)
			assert.NoError(t, err)
			assert.True(t, value.EqualWith(v, got, r))
		}()
	}
	wg.Wait()
}
