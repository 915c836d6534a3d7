package machine_test

import (
	"testing"

	"github.com/archerlang/archer/lang/machine"
	"github.com/stretchr/testify/require"
)

func TestMapPutGetAndIndex(t *testing.T) {
	m := machine.NewMap(4)
	require.True(t, m.IsEmpty())

	require.NoError(t, m.SetIndex(machine.Intern("a"), machine.Number(1)))
	require.Equal(t, 1, m.Len())

	v, err := m.GetIndex(machine.Intern("a"))
	require.NoError(t, err)
	require.Equal(t, machine.Number(1), v)
}

func TestMapGetIndexMissingKeyIsError(t *testing.T) {
	m := machine.NewMap(1)
	_, err := m.GetIndex(machine.Intern("missing"))
	require.Error(t, err)
}

func TestMapUnhashableKeyIsError(t *testing.T) {
	m := machine.NewMap(1)
	err := m.SetIndex(machine.NewList(nil), machine.Number(1))
	require.Error(t, err)
}

func TestMapContainsKeyAndGetOrDefault(t *testing.T) {
	m := machine.NewMap(1)
	require.NoError(t, m.SetIndex(machine.Intern("k"), machine.Number(7)))

	require.True(t, m.ContainsKey(machine.Intern("k")))
	require.False(t, m.ContainsKey(machine.Intern("other")))

	require.Equal(t, machine.Number(7), m.GetOrDefault(machine.Intern("k"), machine.Number(0)))
	require.Equal(t, machine.Number(0), m.GetOrDefault(machine.Intern("other"), machine.Number(0)))
}

func TestMapPutIfAbsentKeepsExistingValue(t *testing.T) {
	m := machine.NewMap(1)
	require.NoError(t, m.SetIndex(machine.Intern("k"), machine.Number(1)))
	require.NoError(t, m.PutIfAbsent(machine.Intern("k"), machine.Number(2)))

	v, err := m.GetIndex(machine.Intern("k"))
	require.NoError(t, err)
	require.Equal(t, machine.Number(1), v)
}

func TestMapRemoveAndClear(t *testing.T) {
	m := machine.NewMap(1)
	require.NoError(t, m.SetIndex(machine.Intern("k"), machine.Number(1)))

	v, ok := m.Remove(machine.Intern("k"))
	require.True(t, ok)
	require.Equal(t, machine.Number(1), v)
	require.True(t, m.IsEmpty())

	_, ok = m.Remove(machine.Intern("gone"))
	require.False(t, ok)

	require.NoError(t, m.SetIndex(machine.Intern("k"), machine.Number(9)))
	m.Clear()
	require.True(t, m.IsEmpty())
}

func TestMapPutAllMergesEntries(t *testing.T) {
	a := machine.NewMap(1)
	require.NoError(t, a.SetIndex(machine.Intern("a"), machine.Number(1)))
	b := machine.NewMap(1)
	require.NoError(t, b.SetIndex(machine.Intern("b"), machine.Number(2)))

	a.PutAll(b)
	require.Equal(t, 2, a.Len())
	v, err := a.GetIndex(machine.Intern("b"))
	require.NoError(t, err)
	require.Equal(t, machine.Number(2), v)
}

func TestMapMakeIteratorWalksKeys(t *testing.T) {
	m := machine.NewMap(1)
	require.NoError(t, m.SetIndex(machine.Intern("only"), machine.Number(1)))

	it := m.MakeIterator()
	k, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, "only", k.String())

	_, ok = it.Next()
	require.False(t, ok)
}
