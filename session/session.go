// Package session holds per-conversation state: the message history, the
// patient's clinical document, and its lazily minimized projection. Each
// session owns its history exclusively; turns within a session are serialized.
package session

import (
	"github.com/google/uuid"
	"github.com/i4h/health-companion/fhir"
	"github.com/i4h/health-companion/llm"
)

type Session struct {
	ID          string
	PatientID   string
	PatientName string

	messages  []llm.Message
	document  *fhir.Bundle
	minimized *fhir.Bundle
}

func New(patientID, patientName string) *Session {
	return &Session{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		PatientName: patientName,
	}
}

// AddMessage appends a plain (role, content) entry to the history.
func (s *Session) AddMessage(role, content string) {
	s.Append(llm.Message{Role: role, Content: content})
}

// Append appends a full message, preserving tool metadata.
func (s *Session) Append(msg llm.Message) {
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the history; the session keeps exclusive
// ownership of the backing slice.
func (s *Session) Messages() []llm.Message {
	out := make([]llm.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SetDocument stores the raw clinical bundle and invalidates the cached
// minimized projection.
func (s *Session) SetDocument(bundle fhir.Bundle) {
	s.document = &bundle
	s.minimized = nil
}

// SetMinimizedDocument seeds the minimized projection directly, e.g. from the
// shared patient document cache.
func (s *Session) SetMinimizedDocument(bundle fhir.Bundle) {
	s.minimized = &bundle
}

// MinimizedDocument returns the minimized projection of the session's
// clinical document, computing and caching it on first use. Nil when no
// document has been loaded.
func (s *Session) MinimizedDocument() *fhir.Bundle {
	if s.minimized != nil {
		return s.minimized
	}
	if s.document == nil {
		return nil
	}

	minimized := fhir.MinimizeBundle(*s.document)
	s.minimized = &minimized
	return s.minimized
}

// Clear wipes the conversation history and document state, e.g. at logout.
func (s *Session) Clear() {
	s.messages = nil
	s.document = nil
	s.minimized = nil
}
