package fhir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const fetchTimeout = 30 * time.Second

// FetchClient retrieves a patient's clinical bundle from its FHIR endpoint.
// Endpoint resolution (patient id -> URL) belongs to the caller.
type FetchClient struct {
	username   string
	password   string
	httpClient *http.Client
}

func NewFetchClient() (*FetchClient, error) {
	username := os.Getenv("FHIR_USERNAME")
	password := os.Getenv("FHIR_PASSWORD")

	if username == "" || password == "" {
		return nil, errors.New("FHIR_USERNAME and FHIR_PASSWORD must be set in environment variables")
	}

	return &FetchClient{
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}, nil
}

// Fetch performs an authenticated GET for the bundle at endpoint. Errors are
// turn-fatal: no meaningful conversation can proceed without data context, so
// every message tells the user to contact technical staff.
func (c *FetchClient) Fetch(ctx context.Context, endpoint string) (Bundle, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return Bundle{}, fmt.Errorf("error creating request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/fhir+json")
	req.Header.Set("Content-Type", "application/fhir+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &urlErr) && urlErr.Timeout()) {
			return Bundle{}, errors.New("request timed out, please contact technical staff")
		}
		return Bundle{}, fmt.Errorf("could not connect to FHIR server, please contact technical staff: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Bundle{}, fmt.Errorf("error reading response: %w", err)
		}

		var bundle Bundle
		if err := json.Unmarshal(body, &bundle); err != nil {
			return Bundle{}, fmt.Errorf("failed to parse FHIR JSON response: %w", err)
		}
		return bundle, nil
	case http.StatusUnauthorized:
		return Bundle{}, errors.New("authentication failed, please contact technical staff")
	case http.StatusNotFound:
		return Bundle{}, errors.New("patient data not found, please contact technical staff")
	default:
		return Bundle{}, fmt.Errorf("FHIR server returned error %d, please contact technical staff", resp.StatusCode)
	}
}
