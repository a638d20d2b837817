package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDefineGet(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Define(KindHTTPMethod, "GET", "Todo", "list")

	v, ok := s.Get(KindHTTPMethod, "Todo", "list")
	require.True(t, ok)
	assert.Equal(t, "GET", v)

	_, ok = s.Get(KindHTTPMethod, "Todo", "create")
	assert.False(t, ok)
	assert.True(t, s.Has(KindHTTPMethod, "Todo", "list"))
	assert.False(t, s.Has(KindPath, "Todo", "list"))
}

func TestStoreRedefinePanics(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Define(KindPath, "/todos", "Todo", "list")

	assert.Panics(t, func() {
		s.Define(KindPath, "/other", "Todo", "list")
	})
}

func TestStoreKeysAreIndependent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Define(KindPath, "/a", "Todo", "list")
	s.Define(KindPath, "/b", "Todo", "create")
	s.Define(KindPath, "/c", "User", "list")

	v, _ := s.Get(KindPath, "Todo", "list")
	assert.Equal(t, "/a", v)
	v, _ = s.Get(KindPath, "User", "list")
	assert.Equal(t, "/c", v)
}

func TestStoreParamsSortedByIndex(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.AppendParam("Todo", "create", ParamSlot{Index: 2, Source: SourceQuery})
	s.AppendParam("Todo", "create", ParamSlot{Index: 0, Source: SourceContext})
	s.AppendParam("Todo", "create", ParamSlot{Index: 1, Source: SourceBody})

	slots := s.Params("Todo", "create")
	require.Len(t, slots, 3)
	assert.Equal(t, SourceContext, slots[0].Source)
	assert.Equal(t, SourceBody, slots[1].Source)
	assert.Equal(t, SourceQuery, slots[2].Source)
}

func TestStoreParamsEmptyWithoutDeclarations(t *testing.T) {
	t.Parallel()

	s := NewStore()
	assert.Empty(t, s.Params("Todo", "list"))
}
