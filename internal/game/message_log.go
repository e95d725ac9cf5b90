package game

import "strings"

const logMaxEntries = 60

// MessageEntry is a single toast in the message log.
type MessageEntry struct {
	Frame   int
	Message string
}

// Line joins a multi-line toast into one row for panel display.
func (e MessageEntry) Line() string {
	return strings.Join(strings.Fields(strings.ReplaceAll(e.Message, "\n", " | ")), " ")
}

// MessageLog is a ring buffer of recent toasts, shown in the desktop viewer's
// side panel.
type MessageLog struct {
	entries []MessageEntry
	head    int
	count   int
}

// NewMessageLog creates a message log with a fixed capacity.
func NewMessageLog() *MessageLog {
	return &MessageLog{
		entries: make([]MessageEntry, logMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (ml *MessageLog) Add(frame int, msg string) {
	ml.entries[ml.head] = MessageEntry{Frame: frame, Message: msg}
	ml.head = (ml.head + 1) % logMaxEntries
	if ml.count < logMaxEntries {
		ml.count++
	}
}

// Len is the number of retained entries.
func (ml *MessageLog) Len() int { return ml.count }

// Recent returns entries in chronological order (oldest first).
func (ml *MessageLog) Recent() []MessageEntry {
	result := make([]MessageEntry, ml.count)
	for i := 0; i < ml.count; i++ {
		idx := (ml.head - ml.count + i + logMaxEntries) % logMaxEntries
		result[i] = ml.entries[idx]
	}
	return result
}
