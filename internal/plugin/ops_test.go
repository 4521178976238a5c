package plugin

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nucore/internal/diag"
	"nucore/internal/source"
	"nucore/internal/types"
	"nucore/internal/value"
)

var at = source.MustSpan(10, 18)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := newPointRegistry(t)
	v := makePoint(3, -4, at)

	env, err := r.Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "point", env.TypeTag)
	assert.Equal(t, at, env.Span)
	assert.Equal(t, ProtocolVersion, env.Version)
	require.NotNil(t, env.Fallback)
	assert.Equal(t, "{x: 3, y: -4}", env.Fallback.String())

	got, err := r.Decode(env)
	require.NoError(t, err)
	assert.True(t, value.EqualWith(v, got, r))
	assert.Equal(t, at, got.Span())

	c, ok := got.AsCustom()
	require.True(t, ok)
	orig, _ := v.AsCustom()
	assert.Equal(t, orig.ID(), c.ID())
	assert.True(t, types.Equal(pointShape, c.Declared))
}

func TestEncodeRejects(t *testing.T) {
	r := newPointRegistry(t)

	_, err := r.Encode(value.MakeInt(1, at))
	assert.True(t, diag.HasCode(err, diag.PluginNotCustom))

	ghost := value.MakeCustom(value.NewCustom("ghost", types.Any(), 1), at)
	_, err = r.Encode(ghost)
	require.Error(t, err)
	assert.True(t, diag.HasCode(err, diag.PluginUnknownType))
	assert.Equal(t, at, diag.From(err, source.Unknown).Primary())

	wrong := value.MakeCustom(value.NewCustom("point", pointShape, "not a point"), at)
	_, err = r.Encode(wrong)
	assert.True(t, diag.HasCode(err, diag.PluginEncodeFailed))
}

func TestDecodeErrors(t *testing.T) {
	r := newPointRegistry(t)
	good, err := r.Encode(makePoint(1, 1, at))
	require.NoError(t, err)

	tests := []struct {
		name string
		edit func(e *Envelope)
		code diag.Code
	}{
		{"no tag", func(e *Envelope) { e.TypeTag = "" }, diag.PluginMalformedEnvelope},
		{"no version", func(e *Envelope) { e.Version = "" }, diag.PluginMalformedEnvelope},
		{"bad version", func(e *Envelope) { e.Version = "one" }, diag.PluginMalformedEnvelope},
		{"bad declared type", func(e *Envelope) { e.DeclaredType = types.Custom("") }, diag.PluginMalformedEnvelope},
		{"newer major", func(e *Envelope) { e.Version = "1.0.0" }, diag.PluginIncompatibleVersion},
		{"other minor", func(e *Envelope) { e.Version = "0.2.7" }, diag.PluginIncompatibleVersion},
		{"unknown tag", func(e *Envelope) { e.TypeTag = "ghost" }, diag.PluginUnknownType},
		{"garbage payload", func(e *Envelope) { e.Payload = []byte{0xc1} }, diag.PluginDecodeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := good
			tt.edit(&env)
			_, err := r.Decode(env)
			require.Error(t, err)
			assert.Equal(t, tt.code, diag.CodeOf(err), err.Error())
		})
	}
}

func TestDecodePatchVersionIsCompatible(t *testing.T) {
	r := newPointRegistry(t)
	env, err := r.Encode(makePoint(1, 1, at))
	require.NoError(t, err)
	env.Version = "0.3.17"
	_, err = r.Decode(env)
	assert.NoError(t, err)
}

func TestDecodeAttributesSource(t *testing.T) {
	r := newPointRegistry(t)
	env, err := r.Encode(makePoint(1, 1, at))
	require.NoError(t, err)
	env.Source = "nu_plugin_geo"
	env.ID = uuid.Nil

	got, err := r.Decode(env)
	require.NoError(t, err)
	c, _ := got.AsCustom()
	assert.Equal(t, "nu_plugin_geo", c.Source)
	assert.NotEqual(t, uuid.Nil, c.ID())
}

func TestDecodeOrFallback(t *testing.T) {
	producer := newPointRegistry(t)
	env, err := producer.Encode(makePoint(5, 6, at))
	require.NoError(t, err)

	// хост без плагина
	host := NewRegistry()
	got := host.DecodeOrFallback(env)
	assert.Equal(t, value.KindRecord, got.Kind())
	assert.Equal(t, "{x: 5, y: 6}", got.String())

	env.Fallback = nil
	got = host.DecodeOrFallback(env)
	d, ok := got.AsError()
	require.True(t, ok)
	assert.Equal(t, diag.PluginUnknownType, d.Code)
	assert.Equal(t, at, got.Span())

	// registered types decode normally
	env, _ = producer.Encode(makePoint(5, 6, at))
	assert.Equal(t, value.KindCustom, producer.DecodeOrFallback(env).Kind())
}

func TestDecodeOrFallbackNeverFails(t *testing.T) {
	r := newPointRegistry(t)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("any envelope yields a value", prop.ForAll(
		func(tag string, payload []byte, version string, withFallback bool) bool {
			env := Envelope{TypeTag: tag, Payload: payload, Version: version, Span: at}
			if withFallback {
				fb := value.MakeString("fallback", at)
				env.Fallback = &fb
			}
			v := r.DecodeOrFallback(env)
			switch v.Kind() {
			case value.KindCustom:
				return tag == "point"
			case value.KindString:
				return withFallback
			case value.KindError:
				d, ok := v.AsError()
				return ok && d != nil && !withFallback
			default:
				return false
			}
		},
		gen.OneConstOf("point", "ghost", ""),
		gen.SliceOf(gen.UInt8()),
		gen.OneConstOf(ProtocolVersion, "0.3.1", "2.0.0", "", "x"),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestToBaseValue(t *testing.T) {
	r := newPointRegistry(t)
	tree := value.MakeList(value.NewList(
		makePoint(1, 2, at),
		value.MakeRecord(value.MustRecord(
			[]string{"name", "at"},
			[]value.Value{value.MakeString("home", at), makePoint(3, 4, at)},
		), at),
		value.MakeInt(7, at),
	), at)

	base, err := r.ToBaseValue(tree)
	require.NoError(t, err)
	assert.False(t, containsCustom(base))
	assert.Equal(t, "[{x: 1, y: 2}, {name: home, at: {x: 3, y: 4}}, 7]", base.String())
	assert.True(t, containsCustom(tree), "input must not be modified")

	_, err = NewRegistry().ToBaseValue(tree)
	assert.True(t, diag.HasCode(err, diag.PluginUnknownType))
}

func TestToBaseValueReachesClosureCaptures(t *testing.T) {
	r := newPointRegistry(t)
	cl := value.MakeClosure(value.NewClosure(3,
		value.Capture{VarID: 1, Value: makePoint(5, 6, at)},
		value.Capture{VarID: 2, Value: value.MakeInt(7, at)},
	), at)

	base, err := r.ToBaseValue(cl)
	require.NoError(t, err)
	assert.False(t, containsCustom(base))
	got, ok := base.AsClosure()
	require.True(t, ok)
	assert.EqualValues(t, 3, got.Block)
	require.Len(t, got.Captures, 2)
	assert.EqualValues(t, 1, got.Captures[0].VarID)
	assert.Equal(t, "{x: 5, y: 6}", got.Captures[0].Value.String())
	assert.True(t, containsCustom(cl), "input must not be modified")
}

func TestToBaseValueStopsOnSelfReference(t *testing.T) {
	r := NewRegistry()
	caps := pointCaps()
	caps.ToBaseValue = func(p any, sp source.Span) (value.Value, error) {
		return value.MakeCustom(value.NewCustom("loop", types.Any(), p), sp), nil
	}
	require.NoError(t, r.Register("loop", caps))

	_, err := r.ToBaseValue(value.MakeCustom(value.NewCustom("loop", types.Any(), point{}), at))
	assert.True(t, diag.HasCode(err, diag.PluginEncodeFailed))
}

func containsCustom(v value.Value) bool {
	switch v.Kind() {
	case value.KindCustom:
		return true
	case value.KindRecord:
		rec, _ := v.AsRecord()
		for _, item := range rec.All() {
			if containsCustom(item) {
				return true
			}
		}
	case value.KindList:
		l, _ := v.AsList()
		for item := range l.All() {
			if containsCustom(item) {
				return true
			}
		}
	case value.KindClosure:
		cl, _ := v.AsClosure()
		for _, c := range cl.Captures {
			if containsCustom(c.Value) {
				return true
			}
		}
	}
	return false
}
