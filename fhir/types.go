package fhir

// Bundle is a collection of clinical resources for one patient, matching the
// FHIR Bundle wire shape.
type Bundle struct {
	ResourceType string  `json:"resourceType"`
	Type         string  `json:"type,omitempty"`
	Total        *int    `json:"total,omitempty"`
	Entry        []Entry `json:"entry,omitempty"`
}

type Entry struct {
	FullURL  string   `json:"fullUrl,omitempty"`
	Resource Resource `json:"resource,omitempty"`
}

// Resource is a single clinical record. It is map-backed rather than a fixed
// struct set so that record kinds this package does not model still
// round-trip resourceType and id through minimization.
type Resource map[string]any

// ResourceType returns the record kind, or "" when absent.
func (r Resource) ResourceType() string {
	t, _ := r["resourceType"].(string)
	return t
}

// ID returns the record identifier, or "" when absent.
func (r Resource) ID() string {
	id, _ := r["id"].(string)
	return id
}
