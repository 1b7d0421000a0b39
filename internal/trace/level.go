package trace

import (
	"fmt"
	"strings"
)

// Level controls which events a tracer writes.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError writes failed spans only.
	LevelError
	LevelBatch
	LevelTemplate
	LevelStage
	LevelDebug
)

var levelNames = [...]string{"off", "error", "batch", "template", "stage", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel maps a level name (case-insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Allows reports whether ev passes the level filter. Failures pass every
// level except off.
func (l Level) Allows(ev *Event) bool {
	switch {
	case l == LevelOff || ev == nil:
		return false
	case ev.Failed:
		return true
	case l == LevelError:
		return false
	case l >= LevelDebug:
		return true
	}
	// LevelBatch..LevelStage совпадают по порядку со ScopeBatch..ScopeStage
	return ev.Scope <= Scope(l-LevelBatch)+ScopeBatch
}
