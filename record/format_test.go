package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatGeometry(t *testing.T) {
	tests := []struct {
		name       string
		recordSize int
		headerSize int
		got        func() (int, int)
	}{
		{"node", 17, 17, func() (int, int) { return NodeFormat{}.RecordSize(), NodeFormat{}.HeaderSize() }},
		{"relationship", 61, 61, func() (int, int) { return RelationshipFormat{}.RecordSize(), RelationshipFormat{}.HeaderSize() }},
		{"property", 33, 33, func() (int, int) { return PropertyFormat{}.RecordSize(), PropertyFormat{}.HeaderSize() }},
		{"relationship type", 9, 9, func() (int, int) {
			return RelationshipTypeFormat{}.RecordSize(), RelationshipTypeFormat{}.HeaderSize()
		}},
		{"property index", 13, 13, func() (int, int) {
			return PropertyIndexFormat{}.RecordSize(), PropertyIndexFormat{}.HeaderSize()
		}},
		{"string", 13 + 120, 13, func() (int, int) {
			f := NewDynamicFormat(KindString, 0)
			return f.RecordSize(), f.HeaderSize()
		}},
		{"array", 13 + 60, 13, func() (int, int) {
			f := NewDynamicFormat(KindArray, 60)
			return f.RecordSize(), f.HeaderSize()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, header := tt.got()
			assert.Equal(t, tt.recordSize, size)
			assert.Equal(t, tt.headerSize, header)
		})
	}
}

func TestRelationshipFormat_EncodeDecode(t *testing.T) {
	f := RelationshipFormat{}
	rel := NewRelationship(7)
	rel.SetInUse(true)
	rel.FirstNode = 1
	rel.SecondNode = 2
	rel.Type = 3
	rel.FirstNext = 11
	rel.SecondPrev = 12
	rel.NextProp = 40

	buf := make([]byte, f.RecordSize())
	require.NoError(t, f.Encode(rel, buf))

	got, err := f.Decode(7, buf, false)
	require.NoError(t, err)
	assert.Equal(t, rel, got)
	assert.Equal(t, KindRelationship, got.Kind())
}

func TestDecode_NotInUseNormalises(t *testing.T) {
	f := NodeFormat{}
	n := NewNode(3)
	n.SetInUse(true)
	n.NextRel = 99
	n.NextProp = 100

	buf := make([]byte, f.RecordSize())
	require.NoError(t, f.Encode(n, buf))
	n.SetInUse(false)
	require.NoError(t, f.Encode(n, buf))

	got, err := f.Decode(3, buf, false)
	require.NoError(t, err)
	assert.False(t, got.InUse())
	assert.Equal(t, NoID, got.NextRel, "freed payload must be cleared")

	raw, err := f.Decode(3, buf, true)
	require.NoError(t, err)
	assert.False(t, raw.InUse())
	assert.Equal(t, uint64(99), raw.NextRel, "raw view keeps freed payload")
}

func TestDecode_RawKeepsUnknownFlags(t *testing.T) {
	f := PropertyIndexFormat{}
	buf := make([]byte, f.RecordSize())
	buf[0] = 0x81

	norm, err := f.Decode(0, buf, false)
	require.NoError(t, err)
	assert.True(t, norm.InUse())
	assert.Equal(t, byte(0x01), norm.Flags())

	raw, err := f.Decode(0, buf, true)
	require.NoError(t, err)
	assert.Equal(t, byte(0x81), raw.Flags())

	// Re-encoding a raw record preserves the bits it was read with.
	out := make([]byte, f.RecordSize())
	require.NoError(t, f.Encode(raw, out))
	assert.Equal(t, byte(0x81), out[0])
}

func TestDynamicFormat(t *testing.T) {
	f := NewDynamicFormat(KindString, 16)

	t.Run("round trip", func(t *testing.T) {
		d := NewDynamic(KindString, 5)
		d.SetInUse(true)
		d.StartBlock = true
		d.NextBlock = 6
		d.Data = []byte("hello")

		buf := make([]byte, f.RecordSize())
		require.NoError(t, f.Encode(d, buf))

		got, err := f.Decode(5, buf, false)
		require.NoError(t, err)
		assert.Equal(t, d, got)

		raw, err := f.Decode(5, buf, true)
		require.NoError(t, err)
		assert.Len(t, raw.Data, 16)
		assert.Equal(t, "hello", string(raw.Data[:5]))
	})

	t.Run("oversized data", func(t *testing.T) {
		d := NewDynamic(KindString, 1)
		d.SetInUse(true)
		d.Data = make([]byte, 17)
		assert.Error(t, f.Encode(d, make([]byte, f.RecordSize())))
	})

	t.Run("wrong kind", func(t *testing.T) {
		d := NewDynamic(KindArray, 1)
		err := f.Encode(d, make([]byte, f.RecordSize()))
		assert.ErrorIs(t, err, ErrKindMismatch)
	})

	t.Run("corrupt length", func(t *testing.T) {
		buf := make([]byte, f.RecordSize())
		buf[0] = flagInUse
		le.PutUint32(buf[1:], 1000)

		_, err := f.Decode(2, buf, false)
		assert.ErrorIs(t, err, ErrCorruptRecord)

		raw, err := f.Decode(2, buf, true)
		require.NoError(t, err)
		assert.True(t, raw.InUse())
		assert.True(t, raw.Overlong())
		assert.Len(t, raw.Data, f.BlockSize())

		le.PutUint32(buf[1:], 3)
		raw, err = f.Decode(2, buf, true)
		require.NoError(t, err)
		assert.False(t, raw.Overlong())
	})
}

func TestDecode_ShortBuffer(t *testing.T) {
	_, err := PropertyFormat{}.Decode(0, make([]byte, 4), false)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Relationship", KindRelationship.String())
	assert.Equal(t, "DynamicArray", KindArray.String())
	assert.True(t, KindString.IsDynamic())
	assert.False(t, KindNode.IsDynamic())
	assert.Len(t, Kinds, 7)
}
