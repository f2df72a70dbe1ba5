package value

import (
	"testing"

	"github.com/badger-rl/logreader/internal/schema"
	"github.com/badger-rl/logreader/internal/stream"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *schema.Registry {
	reg := schema.NewRegistry()
	reg.RegisterPrimitive("unsigned int")
	reg.RegisterPrimitive("float")
	err := reg.RegisterRecord("Foo", []struct{ Name, Type string }{
		{"x", "unsigned int"},
	})
	if err != nil {
		panic(err)
	}
	reg.RegisterEnum("Color", []string{"red", "green", "blue"})
	return reg
}

func TestDecodeRecord(t *testing.T) {
	reg := newTestRegistry()
	dec := NewDecoder(reg)
	buf := []byte{42, 0, 0, 0}
	r := stream.New(buf)
	v, err := dec.DecodeBounded(schema.TypeExpr{Base: "Foo"}, r, int64(len(buf)))
	require.NoError(t, err)
	x, ok := v.Field("x")
	require.True(t, ok)
	require.Equal(t, uint32(42), x.Prim)
}

func TestDecodeEnumRoundTrip(t *testing.T) {
	reg := newTestRegistry()
	dec := NewDecoder(reg)
	e, err := reg.EnumOf("Color")
	require.NoError(t, err)
	for i, name := range e.Values {
		r := stream.New([]byte{byte(i)})
		v, err := dec.Decode(schema.TypeExpr{Base: "Color"}, r)
		require.NoError(t, err)
		require.Equal(t, name, v.EnumName)
	}
}

func TestDecodeBadEnum(t *testing.T) {
	reg := newTestRegistry()
	dec := NewDecoder(reg)
	r := stream.New([]byte{7})
	_, err := dec.Decode(schema.TypeExpr{Base: "Color"}, r)
	require.Error(t, err)
}

func TestDecodeFixedArray(t *testing.T) {
	reg := newTestRegistry()
	dec := NewDecoder(reg)
	buf := []byte{
		0, 0, 128, 63, // 1.0f
		0, 0, 0, 64, // 2.0f
	}
	r := stream.New(buf)
	v, err := dec.Decode(schema.TypeExpr{Base: "float", Kind: schema.FixedArray, FixedSize: 2}, r)
	require.NoError(t, err)
	require.Len(t, v.Items, 2)
	require.Equal(t, float32(1.0), v.Items[0].Prim)
	require.Equal(t, float32(2.0), v.Items[1].Prim)
}

func TestDecodeInterlacedCameraImage(t *testing.T) {
	reg := newTestRegistry()
	dec := NewDecoder(reg)
	width, height := uint32(640), uint32(240)
	timestamp := uint32(0x80010203)
	// Interlaced: the pixel payload covers the doubled height.
	buf := make([]byte, 12+int(width)*int(2*height)*2)
	putU32 := func(off int, v uint32) {
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
	putU32(0, width)
	putU32(4, height)
	putU32(8, timestamp)
	r := stream.New(buf)
	v, err := dec.Decode(schema.TypeExpr{Base: TypeCameraImage}, r)
	require.NoError(t, err)
	h, _ := v.Field("height")
	ts, _ := v.Field("timestamp")
	img, _ := v.Field("image")
	require.Equal(t, uint32(480), h.Prim)
	require.Equal(t, uint32(0x00010203), ts.Prim)
	require.Len(t, img.Prim.([]byte), 640*480*2)
}

func TestDecodeFrameSentinelTailBytesMatch(t *testing.T) {
	reg := newTestRegistry()
	dec := NewDecoder(reg)
	body := []byte{1, 0, 0, 0, 'U', 'p', 'p', 'e', 'r'}
	r1 := stream.New(body)
	begin, err := dec.DecodeFrameSentinel(TypeFrameBegin, r1, int64(len(body)))
	require.NoError(t, err)
	name, _ := begin.Field("threadName")
	require.Equal(t, "Upper", name.Prim)
}
