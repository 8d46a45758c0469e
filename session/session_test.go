package session

import (
	"context"
	"errors"
	"testing"

	"github.com/i4h/health-companion/fhir"
	"github.com/i4h/health-companion/llm"
	"github.com/stretchr/testify/assert"
)

func TestSessionMessages(t *testing.T) {
	sess := New("p-1", "Alex")
	assert.NotEmpty(t, sess.ID)
	assert.Empty(t, sess.Messages())

	sess.AddMessage("user", "hello")
	sess.Append(llm.Message{Role: "assistant", Content: "hi", ToolCallID: "call_1"})

	messages := sess.Messages()
	assert.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "call_1", messages[1].ToolCallID)

	// Mutating the returned slice must not touch session state
	messages[0].Content = "tampered"
	assert.Equal(t, "hello", sess.Messages()[0].Content)
}

func TestSessionMinimizedDocumentLazy(t *testing.T) {
	sess := New("p-1", "Alex")
	assert.Nil(t, sess.MinimizedDocument())

	sess.SetDocument(fhir.Bundle{
		ResourceType: "Bundle",
		Entry: []fhir.Entry{
			{Resource: fhir.Resource{
				"resourceType": "Condition",
				"id":           "c-1",
				"meta":         map[string]any{"versionId": "3"},
			}},
		},
	})

	minimized := sess.MinimizedDocument()
	assert.NotNil(t, minimized)
	assert.NotContains(t, minimized.Entry[0].Resource, "meta")

	// Second access returns the cached projection
	assert.Same(t, minimized, sess.MinimizedDocument())
}

func TestSessionSetDocumentInvalidatesMinimized(t *testing.T) {
	sess := New("p-1", "Alex")
	sess.SetMinimizedDocument(fhir.Bundle{ResourceType: "Bundle"})
	assert.NotNil(t, sess.MinimizedDocument())

	sess.SetDocument(fhir.Bundle{
		ResourceType: "Bundle",
		Entry: []fhir.Entry{
			{Resource: fhir.Resource{"resourceType": "Patient", "id": "p-1"}},
		},
	})

	minimized := sess.MinimizedDocument()
	assert.Len(t, minimized.Entry, 1)
}

func TestSessionClear(t *testing.T) {
	sess := New("p-1", "Alex")
	sess.AddMessage("user", "hello")
	sess.SetDocument(fhir.Bundle{ResourceType: "Bundle"})

	sess.Clear()

	assert.Empty(t, sess.Messages())
	assert.Nil(t, sess.MinimizedDocument())
}

func TestDocumentCacheGetOrFetch(t *testing.T) {
	cache := NewDocumentCache()

	fetchCount := 0
	fetch := func(ctx context.Context) (fhir.Bundle, error) {
		fetchCount++
		return fhir.Bundle{
			ResourceType: "Bundle",
			Entry: []fhir.Entry{
				{Resource: fhir.Resource{
					"resourceType": "Condition",
					"id":           "c-1",
					"meta":         map[string]any{"versionId": "3"},
				}},
			},
		}, nil
	}

	first, err := cache.GetOrFetch(t.Context(), "p-1", fetch)
	assert.NoError(t, err)
	assert.Equal(t, 1, fetchCount)
	// Cached documents are stored already minimized
	assert.NotContains(t, first.Entry[0].Resource, "meta")

	second, err := cache.GetOrFetch(t.Context(), "p-1", fetch)
	assert.NoError(t, err)
	assert.Equal(t, 1, fetchCount)
	assert.Equal(t, first, second)

	_, err = cache.GetOrFetch(t.Context(), "p-2", fetch)
	assert.NoError(t, err)
	assert.Equal(t, 2, fetchCount)
}

func TestDocumentCacheFetchErrorNotCached(t *testing.T) {
	cache := NewDocumentCache()

	fetchCount := 0
	_, err := cache.GetOrFetch(t.Context(), "p-1", func(ctx context.Context) (fhir.Bundle, error) {
		fetchCount++
		return fhir.Bundle{}, errors.New("fetch failed")
	})
	assert.Error(t, err)

	_, err = cache.GetOrFetch(t.Context(), "p-1", func(ctx context.Context) (fhir.Bundle, error) {
		fetchCount++
		return fhir.Bundle{ResourceType: "Bundle"}, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, fetchCount)
}
