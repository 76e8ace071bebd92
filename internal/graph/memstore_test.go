package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewMemStore()
	})
}

func TestMemStore_QueryKeepsInsertionOrder(t *testing.T) {
	s := NewMemStore()
	seedSymbols(t, s)

	got, err := s.QuerySymbols(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory", "Factory::make", "helper"}, qualifiedNames(got))
}

func TestMemStore_AddSymbolReplaces(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.AddSymbol(ctx, SymbolNode{Name: "Foo", FilePath: "a.h", Kind: SymbolKindClass}))
	require.NoError(t, s.AddSymbol(ctx, SymbolNode{Name: "Foo", FilePath: "a.h", Kind: SymbolKindStruct}))

	got, err := s.GetSymbol(ctx, "a.h", "Foo")
	require.NoError(t, err)
	assert.Equal(t, SymbolKindStruct, got.Kind)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SymbolCount)
}
