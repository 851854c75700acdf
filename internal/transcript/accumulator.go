// Package transcript keeps each session's running transcript and feeds final
// chunks into the orchestration pipeline.
package transcript

import (
	"strings"
	"sync"
)

// Accumulator holds the final text of every session, oldest first.
type Accumulator struct {
	mu       sync.Mutex
	sessions map[string]*running
}

type running struct {
	text   strings.Builder
	finals int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{sessions: make(map[string]*running)}
}

// Append adds one final chunk and returns how many final chunks the session
// now has together with the last tailChars characters of its transcript.
func (a *Accumulator) Append(sessionID, text string, tailChars int) (int, string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.sessions[sessionID]
	if !ok {
		r = &running{}
		a.sessions[sessionID] = r
	}

	text = strings.TrimSpace(text)
	if text != "" {
		if r.text.Len() > 0 {
			r.text.WriteByte(' ')
		}
		r.text.WriteString(text)
	}
	r.finals++

	return r.finals, tail(r.text.String(), tailChars)
}

// Full returns the session's whole transcript.
func (a *Accumulator) Full(sessionID string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r, ok := a.sessions[sessionID]; ok {
		return r.text.String()
	}
	return ""
}

func (a *Accumulator) Reset(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, sessionID)
}

func (a *Accumulator) ResetAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions = make(map[string]*running)
}

// tail returns the last n runes of s; n <= 0 returns s unchanged.
func tail(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
