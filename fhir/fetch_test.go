package fhir

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestFetchClient(t *testing.T) *FetchClient {
	t.Setenv("FHIR_USERNAME", "fhir-user")
	t.Setenv("FHIR_PASSWORD", "fhir-pass")

	client, err := NewFetchClient()
	assert.NoError(t, err)
	return client
}

func TestNewFetchClientRequiresCredentials(t *testing.T) {
	t.Setenv("FHIR_USERNAME", "")
	t.Setenv("FHIR_PASSWORD", "")

	_, err := NewFetchClient()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "FHIR_USERNAME")
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "fhir-user", username)
		assert.Equal(t, "fhir-pass", password)
		assert.Equal(t, "application/fhir+json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/fhir+json")
		w.Write([]byte(`{
			"resourceType": "Bundle",
			"type": "searchset",
			"total": 1,
			"entry": [{"resource": {"resourceType": "Patient", "id": "p-1"}}]
		}`))
	}))
	defer server.Close()

	client := newTestFetchClient(t)
	bundle, err := client.Fetch(t.Context(), server.URL)

	assert.NoError(t, err)
	assert.Equal(t, "Bundle", bundle.ResourceType)
	assert.Len(t, bundle.Entry, 1)
	assert.Equal(t, "Patient", bundle.Entry[0].Resource.ResourceType())
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		errContains string
	}{
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			errContains: "authentication failed",
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			errContains: "patient data not found",
		},
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			errContains: "returned error 500",
		},
		{
			name:        "malformed body",
			status:      http.StatusOK,
			body:        "<html>not fhir</html>",
			errContains: "failed to parse FHIR JSON response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestFetchClient(t)
			_, err := client.Fetch(t.Context(), server.URL)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			if tt.status != http.StatusOK {
				// Fetch failures are turn-fatal and always point at support
				assert.Contains(t, err.Error(), "contact technical staff")
			}
		})
	}
}
