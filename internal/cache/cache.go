// Package cache provides a small TTL cache for top-match query results.
// Entries carry no correctness obligation: staleness within the TTL is
// acceptable, and recalculations invalidate the affected keys.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/talentlink/matchengine/pkg/models"
)

type entry struct {
	results   []models.MatchResult
	expiresAt time.Time
}

// TopMatches caches ranked match lists keyed by query parameters.
type TopMatches struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

func NewTopMatches(ttl time.Duration) *TopMatches {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TopMatches{ttl: ttl, entries: make(map[string]entry)}
}

// CandidateKey builds the cache key for a top-matches-for-candidate query.
func CandidateKey(candidateID int64, minScore float64, limit int) string {
	return fmt.Sprintf("candidate:%d:%.2f:%d", candidateID, minScore, limit)
}

// PositionKey builds the cache key for a top-matches-for-position query.
func PositionKey(positionID int64, minScore float64, limit int) string {
	return fmt.Sprintf("position:%d:%.2f:%d", positionID, minScore, limit)
}

func (c *TopMatches) Get(key string) ([]models.MatchResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.results, true
}

func (c *TopMatches) Set(key string, results []models.MatchResult) {
	c.mu.Lock()
	c.entries[key] = entry{results: results, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// InvalidateCandidate drops every cached query for the candidate.
func (c *TopMatches) InvalidateCandidate(candidateID int64) {
	c.invalidatePrefix(fmt.Sprintf("candidate:%d:", candidateID))
}

// InvalidatePosition drops every cached query for the position.
func (c *TopMatches) InvalidatePosition(positionID int64) {
	c.invalidatePrefix(fmt.Sprintf("position:%d:", positionID))
}

func (c *TopMatches) invalidatePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
