package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_CallOriginal(t *testing.T) {
	tbl := NewTable()
	tbl.Define("add", func(args ...uint64) uint64 { return Arg(args, 0) + Arg(args, 1) })

	assert.Equal(t, uint64(5), tbl.Call("add", 2, 3))
	assert.Equal(t, uint64(0), tbl.Call("missing", 2, 3))
}

func TestTable_InstallWrapsOriginal(t *testing.T) {
	tbl := NewTable()
	var order []string
	tbl.Define("procFrame_", func(args ...uint64) uint64 {
		order = append(order, "orig")
		return 0
	})

	err := tbl.Install("procFrame_", func(orig Func) Func {
		return func(args ...uint64) uint64 {
			order = append(order, "before")
			ret := orig(args...)
			order = append(order, "after")
			return ret
		}
	})
	require.NoError(t, err)

	tbl.Call("procFrame_")
	assert.Equal(t, []string{"before", "orig", "after"}, order)
}

func TestTable_WrappersCompose(t *testing.T) {
	tbl := NewTable()
	tbl.Define("value", func(args ...uint64) uint64 { return 1 })

	double := func(orig Func) Func {
		return func(args ...uint64) uint64 { return orig(args...) * 2 }
	}
	inc := func(orig Func) Func {
		return func(args ...uint64) uint64 { return orig(args...) + 1 }
	}
	require.NoError(t, tbl.Install("value", double))
	require.NoError(t, tbl.Install("value", inc))

	// inc(double(1)) = 3
	assert.Equal(t, uint64(3), tbl.Call("value"))
}

func TestTable_InstallUnknownSymbol(t *testing.T) {
	tbl := NewTable()
	err := tbl.Install("nope", func(orig Func) Func { return orig })
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestArg(t *testing.T) {
	args := []uint64{7}
	assert.Equal(t, uint64(7), Arg(args, 0))
	assert.Equal(t, uint64(0), Arg(args, 1))
}
