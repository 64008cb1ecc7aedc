// Package ipc provides inter-process communication between the layoutd
// daemon and the layoutctl client over a Unix socket.
//
// The protocol is newline-delimited JSON: one request object per line,
// one response object back. The socket is owner-only; anyone who can
// open it already owns the session the daemon is correcting.
package ipc

import "layoutd/internal/engine"

// Commands understood by the daemon.
const (
	CmdStatus  = "status"
	CmdEnable  = "enable"
	CmdDisable = "disable"
	CmdToggle  = "toggle"
	CmdStats   = "stats"
	CmdFixLast = "fix-last"
	CmdAddWord = "add-word"
	CmdHistory = "history"
	CmdReload  = "reload"
)

// Request is one client command.
type Request struct {
	Command string `json:"command"`

	// Word and Lang are set for add-word.
	Word string `json:"word,omitempty"`
	Lang string `json:"lang,omitempty"`

	// Limit bounds history responses.
	Limit int `json:"limit,omitempty"`
}

// Response is the daemon's answer.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	Status  *Status               `json:"status,omitempty"`
	Stats   *engine.StatsSnapshot `json:"stats,omitempty"`
	History []HistoryEntry        `json:"history,omitempty"`

	// Applied reports whether fix-last found a deferred word.
	Applied bool `json:"applied,omitempty"`
}

// Status describes the running daemon.
type Status struct {
	Version        string `json:"version"`
	Enabled        bool   `json:"enabled"`
	UptimeSec      int64  `json:"uptime_sec"`
	PID            int    `json:"pid"`
	DeferredWords  int    `json:"deferred_words"`
	EnglishWords   int    `json:"english_words"`
	UkrainianWords int    `json:"ukrainian_words"`

	// DeferredAges lists, oldest first, how many word boundaries each
	// deferred entry has aged. Entries never expire by wall clock, so
	// clients use these to warn about stale deferrals.
	DeferredAges []uint `json:"deferred_ages,omitempty"`
}

// HistoryEntry is one recorded correction.
type HistoryEntry struct {
	Original  string `json:"original"`
	Converted string `json:"converted"`
	Lang      string `json:"lang"`
	Kind      string `json:"kind"`
	Time      string `json:"time"`
}

// Controller is the daemon surface the IPC server drives.
type Controller interface {
	// Status returns the current daemon status.
	Status() Status

	// SetEnabled turns automatic correction on or off.
	SetEnabled(on bool)

	// Enabled reports whether correction is active.
	Enabled() bool

	// Stats returns the engine counters.
	Stats() engine.StatsSnapshot

	// FixLast converts the most recent deferred word. It reports
	// whether a deferred word was found.
	FixLast() bool

	// AddWord adds a word to the personal dictionary.
	AddWord(word, lang string) error

	// History returns the most recent corrections, newest first.
	History(limit int) ([]HistoryEntry, error)

	// Reload re-reads the daemon configuration.
	Reload() error
}
