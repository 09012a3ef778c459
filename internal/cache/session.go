// Package cache keeps per-session copies of upstream Targets data so a
// conversation does not refetch the same map on every request.
package cache

import (
	"context"
	"sync"

	"okrpilot/internal/domain"
)

// DefaultSession is used when a request carries no session id.
const DefaultSession = "default"

// Fetcher is the slice of the Targets client the cache needs.
type Fetcher interface {
	Maps(ctx context.Context) ([]domain.MapSummary, error)
	MapGraph(ctx context.Context, mapID int) (*domain.MapGraph, error)
	Target(ctx context.Context, targetID int) (*domain.TargetDetail, error)
	KeyResults(ctx context.Context, targetID int) ([]domain.KeyResult, error)
}

// TargetBundle pairs a target with its key results, cached as one unit.
type TargetBundle struct {
	Target     *domain.TargetDetail
	KeyResults []domain.KeyResult
}

type sessionData struct {
	maps    []domain.MapSummary
	hasMaps bool
	graphs  map[int]*domain.MapGraph
	targets map[int]*TargetBundle
}

// SessionCache memoizes upstream reads per session id. Fetches run
// outside the lock, so two concurrent misses may both hit upstream;
// the last write wins.
type SessionCache struct {
	fetcher Fetcher

	mu       sync.Mutex
	sessions map[string]*sessionData
}

// New creates an empty cache backed by the given fetcher.
func New(fetcher Fetcher) *SessionCache {
	return &SessionCache{
		fetcher:  fetcher,
		sessions: make(map[string]*sessionData),
	}
}

func (c *SessionCache) session(id string) *sessionData {
	if id == "" {
		id = DefaultSession
	}
	s, ok := c.sessions[id]
	if !ok {
		s = &sessionData{
			graphs:  make(map[int]*domain.MapGraph),
			targets: make(map[int]*TargetBundle),
		}
		c.sessions[id] = s
	}
	return s
}

// GetOrFetchMaps returns the session's maps listing, fetching it once.
func (c *SessionCache) GetOrFetchMaps(ctx context.Context, session string) ([]domain.MapSummary, error) {
	c.mu.Lock()
	s := c.session(session)
	if s.hasMaps {
		maps := s.maps
		c.mu.Unlock()
		return maps, nil
	}
	c.mu.Unlock()

	maps, err := c.fetcher.Maps(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	s = c.session(session)
	s.maps = maps
	s.hasMaps = true
	c.mu.Unlock()
	return maps, nil
}

// GetOrFetchMapGraph returns the session's cached graph for mapID,
// fetching it on first use.
func (c *SessionCache) GetOrFetchMapGraph(ctx context.Context, session string, mapID int) (*domain.MapGraph, error) {
	c.mu.Lock()
	s := c.session(session)
	if g, ok := s.graphs[mapID]; ok {
		c.mu.Unlock()
		return g, nil
	}
	c.mu.Unlock()

	graph, err := c.fetcher.MapGraph(ctx, mapID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session(session).graphs[mapID] = graph
	c.mu.Unlock()
	return graph, nil
}

// GetOrFetchTarget returns the session's cached target and key results,
// fetching both on first use.
func (c *SessionCache) GetOrFetchTarget(ctx context.Context, session string, targetID int) (*TargetBundle, error) {
	c.mu.Lock()
	s := c.session(session)
	if b, ok := s.targets[targetID]; ok {
		c.mu.Unlock()
		return b, nil
	}
	c.mu.Unlock()

	target, err := c.fetcher.Target(ctx, targetID)
	if err != nil {
		return nil, err
	}
	keyResults, err := c.fetcher.KeyResults(ctx, targetID)
	if err != nil {
		return nil, err
	}

	bundle := &TargetBundle{Target: target, KeyResults: keyResults}
	c.mu.Lock()
	c.session(session).targets[targetID] = bundle
	c.mu.Unlock()
	return bundle, nil
}
