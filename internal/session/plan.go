package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMode is returned for an unsupported scheduling mode.
	ErrUnknownMode = errors.New("session: unknown mode")

	// ErrIncompleteQueue is returned when a queue misses a catalog item.
	ErrIncompleteQueue = errors.New("session: queue is missing catalog items")

	// ErrDuplicateItem is returned when a queue lists an item twice.
	ErrDuplicateItem = errors.New("session: queue contains a duplicate item")
)

// Mode selects the ordering strategy.
type Mode string

const (
	ModePriority Mode = "priority"
	ModeChain    Mode = "chain"
)

// ParseMode validates a mode name. Empty means ModePriority.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModePriority, nil
	case ModePriority, ModeChain:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Queue is the ordered item list for one session.
type Queue struct {
	SessionID string        `json:"sessionId"`
	Mode      Mode          `json:"mode"`
	Items     []string      `json:"items"`
	Debug     DebugSnapshot `json:"debug"`
}

// DebugSnapshot describes the head of a queue. It is reproducible for equal
// inputs and is stored per mode for inspection.
type DebugSnapshot struct {
	Mode Mode         `json:"mode"`
	TopN []DebugEntry `json:"topN"`
}

// DebugEntry is one row of a DebugSnapshot.
type DebugEntry struct {
	Rank     int    `json:"rank"`
	Word     string `json:"word"`
	Position int    `json:"position"`
	Attempts int    `json:"attempts"`
	Category string `json:"category"`
}

// DefaultDebugTopN is the number of entries in a DebugSnapshot.
const DefaultDebugTopN = 10

// DefaultMaxNewPerSession caps boosted-new items per session.
const DefaultMaxNewPerSession = 10
