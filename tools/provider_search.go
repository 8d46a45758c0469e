package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-collection-boot/linq"
	"github.com/i4h/health-companion/fhir"
	"github.com/ollama/ollama/api"
)

const (
	ProviderSearchToolName = "search_providers_by_zip"

	providerSearchTimeout = 30 * time.Second
	defaultMaxResults     = 10
	maxResultsCap         = 50
)

// ProviderSearchTool looks up healthcare providers near a ZIP code. When the
// model supplies no ZIP, the tool derives one from the patient's clinical
// document.
type ProviderSearchTool struct {
	username   string
	password   string
	endpoint   string
	httpClient *http.Client
}

// NewProviderSearchTool fails when no credentials are configured; the caller
// registers the tool best-effort and continues with a reduced capability set.
func NewProviderSearchTool(endpoint string) (*ProviderSearchTool, error) {
	username := os.Getenv("PROVIDER_API_USERNAME")
	password := os.Getenv("PROVIDER_API_PASSWORD")

	// Fall back to the FHIR credentials
	if username == "" || password == "" {
		username = os.Getenv("FHIR_USERNAME")
		password = os.Getenv("FHIR_PASSWORD")
	}

	if username == "" || password == "" {
		return nil, errors.New(
			"provider search credentials required: set PROVIDER_API_USERNAME/PROVIDER_API_PASSWORD " +
				"or FHIR_USERNAME/FHIR_PASSWORD environment variables")
	}

	return &ProviderSearchTool{
		username:   username,
		password:   password,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: providerSearchTimeout},
	}, nil
}

func (t *ProviderSearchTool) Name() string {
	return ProviderSearchToolName
}

func (t *ProviderSearchTool) Definition() api.Tool {
	tool := api.Tool{
		Type: "function",
		Function: api.ToolFunction{
			Name: ProviderSearchToolName,
			Description: "Search for healthcare providers by ZIP code. Use this when the user asks about " +
				"finding doctors, providers, or healthcare services. The ZIP code will be automatically " +
				"extracted from the patient's health records if available, or you can use a ZIP code " +
				"provided by the user.",
		},
	}

	tool.Function.Parameters.Type = "object"
	tool.Function.Parameters.Properties = map[string]api.ToolProperty{
		"zip_code": {
			Type: api.PropertyType{"string"},
			Description: "ZIP code to search for. If not provided, the tool will try to extract it from " +
				"the patient's health records. If the user provides a ZIP code, use that value. " +
				"Example: '02142' or '90210'",
		},
		"maxresults": {
			Type:        api.PropertyType{"integer"},
			Description: "Maximum number of results to return. Default is 10, maximum is 50.",
		},
	}
	// Both parameters optional; Required stays nil

	return tool
}

// Execute resolves the ZIP code (argument first, then the clinical document),
// queries the provider API, and formats the records for the chat layer. A
// missing ZIP fails explicit and recoverable, never a best-guess default.
func (t *ProviderSearchTool) Execute(ctx context.Context, args api.ToolCallFunctionArguments, doc *fhir.Bundle) Result {
	zipCode, _ := args["zip_code"].(string)
	zipCode = strings.TrimSpace(zipCode)

	if zipCode == "" && doc != nil {
		zipCode = ExtractZipFromBundle(doc)
	}

	if zipCode == "" {
		return Errorf("ZIP code is required for provider search. " +
			"Please provide a ZIP code or ensure it's in your health records.")
	}

	zipCode = NormalizeZip(zipCode)

	query := url.Values{}
	query.Set("zip", zipCode)
	query.Set("maxresults", strconv.Itoa(maxResults(args)))

	req, err := http.NewRequestWithContext(ctx, "GET", t.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Errorf("unexpected error during provider search: %v", err)
	}
	req.SetBasicAuth(t.username, t.password)
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &urlErr) && urlErr.Timeout()) {
			return Errorf("Provider search request timed out")
		}
		return Errorf("Could not connect to provider search API")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Errorf("Failed to parse provider search response: %v", err)
		}

		var providers []providerRecord
		if err := json.Unmarshal(body, &providers); err != nil {
			return Errorf("Failed to parse provider search response: %v", err)
		}

		formatted := linq.Map(providers, formatProviderForDisplay)
		return Result{
			Success: true,
			Data: ProviderSearchData{
				Providers: formatted,
				Count:     len(formatted),
				ZipCode:   zipCode,
				Summary:   fmt.Sprintf("Found %d provider(s) in ZIP code %s", len(formatted), zipCode),
			},
		}
	case http.StatusUnauthorized:
		return Errorf("Authentication failed for provider search API")
	case http.StatusBadRequest:
		return Errorf("Invalid request to provider search API")
	case http.StatusInternalServerError:
		return Errorf("Provider search server error")
	default:
		return Errorf("Provider search API returned error %d", resp.StatusCode)
	}
}

func maxResults(args api.ToolCallFunctionArguments) int {
	n := defaultMaxResults
	switch v := args["maxresults"].(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	}

	if n < 1 {
		n = 1
	}
	if n > maxResultsCap {
		n = maxResultsCap
	}
	return n
}

// NormalizeZip reduces a postal code to its 5-digit form: any "+4" suffix is
// dropped and short all-digit codes are left-padded with zeros.
func NormalizeZip(zip string) string {
	zip = strings.TrimSpace(strings.SplitN(zip, "-", 2)[0])
	if zip != "" && isDigits(zip) && len(zip) < 5 {
		zip = strings.Repeat("0", 5-len(zip)) + zip
	}
	return zip
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ExtractZipFromBundle scans the document for a Patient record and reads the
// postal code of its first address entry, normalized to 5 digits. Returns ""
// when no postal code is resolvable.
func ExtractZipFromBundle(doc *fhir.Bundle) string {
	if doc == nil {
		return ""
	}

	for _, entry := range doc.Entry {
		if entry.Resource.ResourceType() != "Patient" {
			continue
		}
		if zip := extractZipFromPatient(entry.Resource); zip != "" {
			return zip
		}
	}
	return ""
}

func extractZipFromPatient(patient fhir.Resource) string {
	addresses, ok := patient["address"].([]any)
	if !ok || len(addresses) == 0 {
		return ""
	}

	// First address entry is usually the home address
	first, ok := addresses[0].(map[string]any)
	if !ok {
		return ""
	}

	switch postal := first["postalCode"].(type) {
	case string:
		return NormalizeZip(postal)
	case float64:
		// Numeric postal codes lose leading zeros in JSON; padding restores them
		return NormalizeZip(strconv.FormatFloat(postal, 'f', -1, 64))
	default:
		return ""
	}
}

// ProviderSearchData is the success payload fed back to the model.
type ProviderSearchData struct {
	Providers []ProviderSummary `json:"providers"`
	Count     int               `json:"count"`
	ZipCode   string            `json:"zip_code"`
	Summary   string            `json:"summary"`
}

// ProviderSummary holds the display fields of one provider record.
type ProviderSummary struct {
	Name                string   `json:"name"`
	Specialty           string   `json:"specialty"`
	Address             string   `json:"address"`
	NPI                 string   `json:"npi"`
	AdditionalAddresses []string `json:"additional_addresses,omitempty"`
}

// Provider API wire types
type providerRecord struct {
	Name                       providerName      `json:"Name"`
	PrimarySpecialtyCodedValue providerSpecialty `json:"PrimarySpecialtyCodedValue"`
	Addresses                  []providerAddress `json:"Addresses"`
	NPI                        any               `json:"NPI"`
}

type providerName struct {
	Prefix string `json:"Prefix"`
	First  string `json:"First"`
	Middle string `json:"Middle"`
	Last   string `json:"Last"`
	Suffix string `json:"Suffix"`
}

type providerSpecialty struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

type providerAddress struct {
	AddressLine1 string `json:"AddressLine1"`
	AddressLine2 string `json:"AddressLine2"`
	City         string `json:"City"`
	State        string `json:"State"`
	Zip          string `json:"Zip"`
}

func formatProviderForDisplay(provider providerRecord) ProviderSummary {
	addresses := formatAddresses(provider.Addresses)

	summary := ProviderSummary{
		Name:      formatName(provider.Name),
		Specialty: formatSpecialty(provider.PrimarySpecialtyCodedValue),
		Address:   "Address not available",
		NPI:       formatNPI(provider.NPI),
	}

	if len(addresses) > 0 {
		summary.Address = addresses[0]
	}
	if len(addresses) > 1 {
		summary.AdditionalAddresses = addresses[1:]
	}

	return summary
}

func formatName(name providerName) string {
	var parts []string
	for _, part := range []string{name.Prefix, name.First, name.Middle, name.Last, name.Suffix} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, " ")
}

func formatSpecialty(specialty providerSpecialty) string {
	if specialty.Description != "" {
		return specialty.Description
	}
	if specialty.Code != "" {
		return "Specialty code: " + specialty.Code
	}
	return "Unknown specialty"
}

func formatNPI(npi any) string {
	if npi == nil {
		return "N/A"
	}
	if f, ok := npi.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", npi)
}

func formatAddresses(addresses []providerAddress) []string {
	var formatted []string
	for _, addr := range addresses {
		var parts []string
		if addr.AddressLine1 != "" {
			parts = append(parts, addr.AddressLine1)
		}
		if addr.AddressLine2 != "" {
			parts = append(parts, addr.AddressLine2)
		}

		var location []string
		for _, piece := range []string{addr.City, addr.State, addr.Zip} {
			if piece != "" {
				location = append(location, piece)
			}
		}
		if len(location) > 0 {
			parts = append(parts, strings.Join(location, ", "))
		}

		if len(parts) > 0 {
			formatted = append(formatted, strings.Join(parts, ", "))
		}
	}
	return formatted
}
