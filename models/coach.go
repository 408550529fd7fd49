package models

import "strings"

// EntryKind, transcript girdisinin kimden geldiği.
type EntryKind string

const (
	EntryUser      EntryKind = "user"
	EntryAssistant EntryKind = "assistant"
)

// TranscriptEntry, coach sohbetindeki tek bir mesaj.
type TranscriptEntry struct {
	Kind EntryKind `json:"kind"`
	Text string    `json:"text"`
}

// Transcript, bir sayfa görünümü boyunca biriken sohbet.
// Girdiler her zaman user/assistant çiftleri halinde eklenir.
type Transcript struct {
	Entries []TranscriptEntry
}

// AppendExchange, bir prompt ve yanıtını birlikte ekler.
func (t *Transcript) AppendExchange(prompt, reply string) {
	t.Entries = append(t.Entries,
		TranscriptEntry{Kind: EntryUser, Text: prompt},
		TranscriptEntry{Kind: EntryAssistant, Text: reply},
	)
}

// CoachDraft, AI-Coach formunun ham alanı.
type CoachDraft struct {
	Prompt string
}

// Validate, prompt'un boş olmadığını kontrol eder ve kırpılmış halini döner.
func (d CoachDraft) Validate() (string, error) {
	p := strings.TrimSpace(d.Prompt)
	if p == "" {
		return "", invalid("coach.required")
	}
	return p, nil
}

// CoachRequest, POST /ai-coach gövdesi.
type CoachRequest struct {
	Prompt string `json:"prompt"`
}
