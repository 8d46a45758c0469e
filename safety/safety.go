// Package safety implements the emergency-language interception rule. It runs
// before any model call and cannot be bypassed by tool use or context size.
package safety

import "strings"

// emergencyKeywords is the fixed vocabulary of symptoms, self-harm terms, and
// explicit emergency words that trigger the safety short-circuit.
var emergencyKeywords = []string{
	"chest pain", "heart attack", "can't breathe", "can't breath", "choking",
	"severe pain", "unconscious", "bleeding heavily", "severe bleeding",
	"stroke", "severe headache", "suicide", "self harm", "overdose",
	"severe allergic reaction", "anaphylaxis", "severe burn", "broken bone",
	"severe injury", "emergency", "911", "ambulance", "urgent",
}

const emergencyResponse = "This may be an emergency. Please call 911 immediately."

// CheckEmergency reports whether the input contains emergency language.
// Case-insensitive substring matching; pure, no side effects.
func CheckEmergency(userInput string) bool {
	lowered := strings.ToLower(userInput)
	for _, keyword := range emergencyKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// EmergencyResponse returns the fixed safety message, delivered verbatim in
// place of a model answer.
func EmergencyResponse() string {
	return emergencyResponse
}
