package hostmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBase = 0x7100000000
	testHeap = 0x2000000000
)

var testRange = Range{Min: 0x1000000000, Max: 0x8000000000}

func newTestImage(t *testing.T) *Image {
	t.Helper()
	img := NewImage(testBase)
	require.NoError(t, img.Map(testBase, 0x1000))
	require.NoError(t, img.Map(testHeap, 0x1000))
	return img
}

func TestImage_ReadWrite(t *testing.T) {
	img := newTestImage(t)

	require.NoError(t, PutU32(img, testHeap+0x10, 0xDEADBEEF))
	require.NoError(t, PutF32(img, testHeap+0x14, 1220.25))
	require.NoError(t, PutU64(img, testHeap+0x18, 0x0102030405060708))
	require.NoError(t, PutI32(img, testHeap+0x20, -5))
	require.NoError(t, PutU8(img, testHeap+0x24, 7))

	u, err := U32(img, testHeap+0x10)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u)

	f, err := F32(img, testHeap+0x14)
	require.NoError(t, err)
	assert.Equal(t, float32(1220.25), f)

	q, err := U64(img, testHeap+0x18)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), q)

	i, err := I32(img, testHeap+0x20)
	require.NoError(t, err)
	assert.Equal(t, int32(-5), i)

	b, err := U8(img, testHeap+0x24)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), b)

	h, err := U16(img, testHeap+0x10)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), h)
}

func TestImage_Unmapped(t *testing.T) {
	img := newTestImage(t)

	_, err := U32(img, 0x10)
	assert.ErrorIs(t, err, ErrUnmapped)

	// Straddling the end of a region is unmapped too
	_, err = U64(img, testHeap+0x1000-4)
	assert.ErrorIs(t, err, ErrUnmapped)

	img.Unmap(testHeap)
	assert.ErrorIs(t, PutU32(img, testHeap, 1), ErrUnmapped)
}

func TestImage_MapOverlap(t *testing.T) {
	img := newTestImage(t)
	assert.Error(t, img.Map(testHeap+0x800, 0x1000))
}

func TestImage_MainModuleBase(t *testing.T) {
	img := newTestImage(t)
	base, err := img.MainModuleBase()
	require.NoError(t, err)
	assert.Equal(t, uint64(testBase), base)
}

func TestRange_Check(t *testing.T) {
	assert.True(t, testRange.Check(testHeap))
	assert.False(t, testRange.Check(0))
	assert.False(t, testRange.Check(0x8000000000))
	assert.True(t, testRange.Check(0x7FFFFFFFFF))
}

func TestReadChain(t *testing.T) {
	img := newTestImage(t)
	global := uint64(testBase + 0x100)
	manager := uint64(testHeap + 0x200)
	inner := uint64(testHeap + 0x400)

	require.NoError(t, PutU64(img, global, manager))
	require.NoError(t, PutU64(img, manager+0x30, inner))
	require.NoError(t, PutI32(img, inner+0x1C, 4))

	t.Run("resolves", func(t *testing.T) {
		phase, ok := ReadChainI32(img, global, []uint64{0x30, 0x1C}, testRange.Check)
		require.True(t, ok)
		assert.Equal(t, int32(4), phase)

		addr, ok := ReadChain(img, global, []uint64{0x30, 0x1C}, testRange.Check)
		require.True(t, ok)
		assert.Equal(t, inner+0x1C, addr)
	})

	t.Run("no offsets yields the stored pointer", func(t *testing.T) {
		addr, ok := ReadChain(img, global, nil, testRange.Check)
		require.True(t, ok)
		assert.Equal(t, manager, addr)
	})

	t.Run("null intermediate pointer", func(t *testing.T) {
		require.NoError(t, PutU64(img, manager+0x30, 0))
		defer func() { require.NoError(t, PutU64(img, manager+0x30, inner)) }()

		_, ok := ReadChainI32(img, global, []uint64{0x30, 0x1C}, testRange.Check)
		assert.False(t, ok)
	})

	t.Run("implausible root pointer is never followed", func(t *testing.T) {
		require.NoError(t, PutU64(img, global, 0x42))
		defer func() { require.NoError(t, PutU64(img, global, manager)) }()

		_, ok := ReadChainU32(img, global, []uint64{0x30, 0x1C}, testRange.Check)
		assert.False(t, ok)
	})

	t.Run("unmapped target", func(t *testing.T) {
		img.Unmap(testHeap)
		defer func() { require.NoError(t, img.Map(testHeap, 0x1000)) }()

		_, ok := ReadChainI32(img, global, []uint64{0x30, 0x1C}, testRange.Check)
		assert.False(t, ok)
	})

	t.Run("root outside range", func(t *testing.T) {
		_, ok := ReadChain(img, 0x10, []uint64{0x30}, testRange.Check)
		assert.False(t, ok)
	})
}

func TestReadChain_NeverDereferencesRejectedAddress(t *testing.T) {
	img := newTestImage(t)
	global := uint64(testBase + 0x100)
	require.NoError(t, PutU64(img, global, testHeap))
	require.NoError(t, PutU64(img, testHeap+0x30, testHeap+0x800))

	var checked []uint64
	check := func(addr uint64) bool {
		checked = append(checked, addr)
		return addr != testHeap+0x800
	}

	_, ok := ReadChain(img, global, []uint64{0x30, 0x1C}, check)
	assert.False(t, ok)
	assert.Equal(t, []uint64{global, testHeap, testHeap + 0x30, testHeap + 0x800}, checked)
}

func TestObject(t *testing.T) {
	img := newTestImage(t)
	handle := uint64(testHeap + 0x100)
	require.NoError(t, PutF32(img, handle+0x230, 64))
	require.NoError(t, PutU32(img, handle+0x3F8, 16))
	require.NoError(t, PutU8(img, handle+0x4C0, 1))
	require.NoError(t, PutU64(img, handle+0x8, 99))

	obj := Object{Space: img, Handle: handle, Check: testRange.Check}
	assert.True(t, obj.Valid())
	assert.Equal(t, float32(64), obj.F32(0x230))
	assert.Equal(t, uint32(16), obj.U32(0x3F8))
	assert.Equal(t, int32(16), obj.I32(0x3F8))
	assert.Equal(t, uint8(1), obj.U8(0x4C0))
	assert.Equal(t, uint64(99), obj.U64(0x8))

	t.Run("dangling handle reads zero", func(t *testing.T) {
		dangling := Object{Space: img, Handle: testHeap + 0x5000, Check: testRange.Check}
		assert.True(t, dangling.Valid(), "range check is coarse")
		assert.Equal(t, uint32(0), dangling.U32(0x3F8))
	})

	t.Run("implausible handle is never read", func(t *testing.T) {
		bad := Object{Space: img, Handle: 0x20, Check: testRange.Check}
		assert.False(t, bad.Valid())
		assert.Equal(t, float32(0), bad.F32(0x230))
	})
}
