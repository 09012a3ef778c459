package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okrpilot/internal/domain"
)

// countingFetcher counts upstream calls per operation.
type countingFetcher struct {
	maps    int
	graphs  int
	targets int
	krs     int
	fail    error
}

func (f *countingFetcher) Maps(ctx context.Context) ([]domain.MapSummary, error) {
	f.maps++
	if f.fail != nil {
		return nil, f.fail
	}
	return []domain.MapSummary{{ID: 1, Name: "Карта"}}, nil
}

func (f *countingFetcher) MapGraph(ctx context.Context, mapID int) (*domain.MapGraph, error) {
	f.graphs++
	if f.fail != nil {
		return nil, f.fail
	}
	return &domain.MapGraph{Map: domain.MapInfo{ID: mapID}}, nil
}

func (f *countingFetcher) Target(ctx context.Context, targetID int) (*domain.TargetDetail, error) {
	f.targets++
	if f.fail != nil {
		return nil, f.fail
	}
	return &domain.TargetDetail{ID: targetID}, nil
}

func (f *countingFetcher) KeyResults(ctx context.Context, targetID int) ([]domain.KeyResult, error) {
	f.krs++
	if f.fail != nil {
		return nil, f.fail
	}
	return []domain.KeyResult{{Description: "КР", Achievement: "50"}}, nil
}

func TestGetOrFetchMapGraph_MemoizesPerSession(t *testing.T) {
	fetcher := &countingFetcher{}
	c := New(fetcher)
	ctx := context.Background()

	first, err := c.GetOrFetchMapGraph(ctx, "s1", 10)
	require.NoError(t, err)
	second, err := c.GetOrFetchMapGraph(ctx, "s1", 10)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fetcher.graphs)

	// A different session does not share the entry.
	_, err = c.GetOrFetchMapGraph(ctx, "s2", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.graphs)

	// A different map id within the same session fetches again.
	_, err = c.GetOrFetchMapGraph(ctx, "s1", 11)
	require.NoError(t, err)
	assert.Equal(t, 3, fetcher.graphs)
}

func TestGetOrFetchMaps_FetchesOnce(t *testing.T) {
	fetcher := &countingFetcher{}
	c := New(fetcher)
	ctx := context.Background()

	maps, err := c.GetOrFetchMaps(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, maps, 1)

	_, err = c.GetOrFetchMaps(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.maps)
}

func TestGetOrFetchTarget_StoresDetailAndKeyResultsTogether(t *testing.T) {
	fetcher := &countingFetcher{}
	c := New(fetcher)
	ctx := context.Background()

	bundle, err := c.GetOrFetchTarget(ctx, "s1", 114)
	require.NoError(t, err)
	assert.Equal(t, 114, bundle.Target.ID)
	require.Len(t, bundle.KeyResults, 1)

	_, err = c.GetOrFetchTarget(ctx, "s1", 114)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.targets)
	assert.Equal(t, 1, fetcher.krs)
}

func TestEmptySessionUsesDefaultBucket(t *testing.T) {
	fetcher := &countingFetcher{}
	c := New(fetcher)
	ctx := context.Background()

	_, err := c.GetOrFetchMaps(ctx, "")
	require.NoError(t, err)
	_, err = c.GetOrFetchMaps(ctx, DefaultSession)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.maps)
}

func TestFetchFailureIsNotCached(t *testing.T) {
	fetcher := &countingFetcher{fail: errors.New("upstream down")}
	c := New(fetcher)
	ctx := context.Background()

	_, err := c.GetOrFetchMapGraph(ctx, "s1", 1)
	require.Error(t, err)

	fetcher.fail = nil
	graph, err := c.GetOrFetchMapGraph(ctx, "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, graph.Map.ID)
	assert.Equal(t, 2, fetcher.graphs)
}
