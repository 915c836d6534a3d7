package machine_test

import (
	"testing"

	"github.com/archerlang/archer/lang/machine"
	"github.com/stretchr/testify/require"
)

// Array has no literal syntax in the parser (ast.ArrayLit/the ARRAY opcode
// are only reachable from NewArray/NewArrayFrom called by Go code), so it
// is exercised here directly rather than through a script.
func TestArrayIndexingAndMutation(t *testing.T) {
	a := machine.NewArray(3)
	require.Equal(t, 3, a.Len())
	for i := 0; i < 3; i++ {
		v, err := a.GetIndex(machine.Number(i))
		require.NoError(t, err)
		require.Equal(t, machine.Nil{}, v)
	}

	require.NoError(t, a.SetIndex(machine.Number(1), machine.Number(42)))
	v, err := a.GetIndex(machine.Number(1))
	require.NoError(t, err)
	require.Equal(t, machine.Number(42), v)
}

func TestArrayNegativeIndexing(t *testing.T) {
	a := machine.NewArrayFrom([]machine.Value{machine.Number(1), machine.Number(2), machine.Number(3)})
	v, err := a.GetIndex(machine.Number(-1))
	require.NoError(t, err)
	require.Equal(t, machine.Number(3), v)
}

func TestArrayIndexOutOfRange(t *testing.T) {
	a := machine.NewArray(2)
	_, err := a.GetIndex(machine.Number(5))
	require.Error(t, err)
}

func TestArrayLengthField(t *testing.T) {
	a := machine.NewArray(4)
	lengthFn, ok := a.GetField("length")
	require.True(t, ok)
	callable, ok := lengthFn.(machine.Callable)
	require.True(t, ok)
	require.Equal(t, 0, callable.Arity())
}

func TestArrayMakeIteratorWalksElements(t *testing.T) {
	a := machine.NewArrayFrom([]machine.Value{machine.Number(10), machine.Number(20)})
	it := a.MakeIterator()

	var got []machine.Value
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []machine.Value{machine.Number(10), machine.Number(20)}, got)
}

func TestArrayStringFormatsElements(t *testing.T) {
	a := machine.NewArrayFrom([]machine.Value{machine.Number(1), machine.Number(2)})
	require.Equal(t, "array(1, 2)", a.String())
}
