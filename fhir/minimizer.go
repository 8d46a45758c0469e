package fhir

import (
	"github.com/SaiNageswarS/go-collection-boot/linq"
)

// Field allow-lists applied to every record kind.
var (
	dateFields      = []string{"effectiveDateTime", "onsetDateTime", "recordedDate", "date", "period"}
	referenceFields = []string{"subject", "patient", "encounter", "performer", "recorder"}
)

// Kind-specific extras, keyed on resourceType. Kinds outside this table keep
// only the common allow-list.
var kindExtras = map[string]func(src, dst Resource){
	"MedicationStatement": minimizeMedicationStatement,
	"MedicationRequest":   minimizeMedicationRequest,
	"Condition":           minimizeCondition,
	"Observation":         minimizeObservation,
	"Patient":             minimizePatient,
}

// MinimizeBundle projects a clinical bundle down to the field allow-list so
// it fits an LLM context window while keeping the FHIR structure intact.
// Pure and idempotent: minimizing a minimized bundle is the identity.
func MinimizeBundle(bundle Bundle) Bundle {
	resourceType := bundle.ResourceType
	if resourceType == "" {
		resourceType = "Bundle"
	}

	minimized := Bundle{
		ResourceType: resourceType,
		Type:         bundle.Type,
		Total:        bundle.Total,
	}

	// Entries without a resource carry nothing the conversation layer can use
	kept := make([]Entry, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		if entry.Resource != nil {
			kept = append(kept, entry)
		}
	}

	minimized.Entry = linq.Map(kept, func(entry Entry) Entry {
		return Entry{
			FullURL:  entry.FullURL,
			Resource: MinimizeResource(entry.Resource),
		}
	})

	return minimized
}

// MinimizeResource reduces a single record to resourceType, id, status and
// code families, date fields, trimmed references, and the kind-specific
// extras. Unknown kinds still round-trip resourceType and id. Total: a nil
// or empty resource comes back unchanged.
func MinimizeResource(resource Resource) Resource {
	if resource == nil {
		return resource
	}

	minimized := Resource{}
	copyField(resource, minimized, "resourceType")
	copyField(resource, minimized, "id")

	// Status family
	copyField(resource, minimized, "status")
	simplifyInto(resource, minimized, "clinicalStatus")
	simplifyInto(resource, minimized, "verificationStatus")

	// Primary code and value
	simplifyInto(resource, minimized, "code")
	copyField(resource, minimized, "valueQuantity")
	copyField(resource, minimized, "valueString")
	simplifyInto(resource, minimized, "valueCodeableConcept")

	for _, field := range dateFields {
		copyField(resource, minimized, field)
	}

	for _, field := range referenceFields {
		if ref, ok := resource[field].(map[string]any); ok {
			trimmed := map[string]any{}
			copyField(ref, trimmed, "reference")
			copyField(ref, trimmed, "display")
			minimized[field] = trimmed
		}
	}

	if extras, ok := kindExtras[resource.ResourceType()]; ok {
		extras(resource, minimized)
	}

	return minimized
}

// SimplifyCoding collapses a coded concept to its first coding entry reduced
// to (system, code, display), plus any free-text label. A bare coding is
// normalized to the same three-field shape. Anything else passes through
// unchanged, which keeps the projection total.
func SimplifyCoding(value any) any {
	concept, ok := value.(map[string]any)
	if !ok {
		return value
	}

	if codings, ok := concept["coding"].([]any); ok {
		if len(codings) == 0 {
			return value
		}

		primary, ok := codings[0].(map[string]any)
		if !ok {
			return value
		}

		simplified := map[string]any{
			"coding": []any{trimCoding(primary)},
		}
		copyField(concept, simplified, "text")
		return simplified
	}

	// Already a single coding
	if _, hasSystem := concept["system"]; hasSystem {
		return trimCoding(concept)
	}
	if _, hasCode := concept["code"]; hasCode {
		return trimCoding(concept)
	}

	return value
}

func trimCoding(coding map[string]any) map[string]any {
	trimmed := map[string]any{}
	copyField(coding, trimmed, "system")
	copyField(coding, trimmed, "code")
	copyField(coding, trimmed, "display")
	return trimmed
}

func copyField(src, dst map[string]any, field string) {
	if value, ok := src[field]; ok {
		dst[field] = value
	}
}

func simplifyInto(src, dst map[string]any, field string) {
	if value, ok := src[field]; ok {
		dst[field] = SimplifyCoding(value)
	}
}

// limitList bounds a list field to its first n entries; non-list values pass
// through unchanged.
func limitList(value any, n int) any {
	if list, ok := value.([]any); ok && len(list) > n {
		return list[:n:n]
	}
	return value
}

func limitInto(src, dst Resource, field string, n int) {
	if value, ok := src[field]; ok {
		dst[field] = limitList(value, n)
	}
}

func minimizeMedicationStatement(src, dst Resource) {
	simplifyInto(src, dst, "medicationCodeableConcept")
	limitInto(src, dst, "dosage", 1)
}

func minimizeMedicationRequest(src, dst Resource) {
	simplifyInto(src, dst, "medicationCodeableConcept")
	limitInto(src, dst, "dosageInstruction", 1)
}

func minimizeCondition(src, dst Resource) {
	simplifyInto(src, dst, "severity")
	simplifyInto(src, dst, "bodySite")
}

func minimizeObservation(src, dst Resource) {
	simplifyInto(src, dst, "interpretation")
	limitInto(src, dst, "component", 3)
}

func minimizePatient(src, dst Resource) {
	limitInto(src, dst, "name", 1)
	copyField(src, dst, "birthDate")
	copyField(src, dst, "gender")
	// Address stays in the projection: the provider search tool derives the
	// patient's ZIP code from it.
	limitInto(src, dst, "address", 1)
}
