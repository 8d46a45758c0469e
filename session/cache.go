package session

import (
	"context"
	"sync"

	"github.com/i4h/health-companion/fhir"
)

// DocumentCache maps a patient identifier to its fetched and minimized
// clinical document, so repeated logins for the same patient skip the
// refetch. Write-once per key, read-many; safe for concurrent sessions.
type DocumentCache struct {
	mu        sync.RWMutex
	documents map[string]fhir.Bundle
}

func NewDocumentCache() *DocumentCache {
	return &DocumentCache{documents: make(map[string]fhir.Bundle)}
}

// GetOrFetch returns the cached minimized document for patientID, invoking
// fetch and minimizing its result on a miss.
func (c *DocumentCache) GetOrFetch(ctx context.Context, patientID string, fetch func(ctx context.Context) (fhir.Bundle, error)) (fhir.Bundle, error) {
	c.mu.RLock()
	cached, ok := c.documents[patientID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	bundle, err := fetch(ctx)
	if err != nil {
		return fhir.Bundle{}, err
	}

	minimized := fhir.MinimizeBundle(bundle)

	c.mu.Lock()
	// Another session may have fetched meanwhile; first write wins
	if cached, ok := c.documents[patientID]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.documents[patientID] = minimized
	c.mu.Unlock()

	return minimized, nil
}
