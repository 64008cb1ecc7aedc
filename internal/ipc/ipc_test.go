package ipc

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"layoutd/internal/engine"
	"layoutd/internal/logging"
)

type fakeController struct {
	mu      sync.Mutex
	enabled bool
	fixed   bool
	words   []string
	reloads int
	badcfg  bool
}

func (f *fakeController) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{Version: "test", Enabled: f.enabled, PID: 1234, DeferredWords: 2}
}

func (f *fakeController) SetEnabled(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = on
}

func (f *fakeController) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeController) Stats() engine.StatsSnapshot {
	return engine.StatsSnapshot{Converted: 7, Deferred: 3}
}

func (f *fakeController) FixLast() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	applied := !f.fixed
	f.fixed = true
	return applied
}

func (f *fakeController) AddWord(word, lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if word == "bad" {
		return fmt.Errorf("rejected")
	}
	f.words = append(f.words, word)
	return nil
}

func (f *fakeController) History(limit int) ([]HistoryEntry, error) {
	return []HistoryEntry{
		{Original: "ghbdsn", Converted: "привіт", Lang: "uk", Kind: "convert"},
	}, nil
}

func (f *fakeController) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.badcfg {
		return fmt.Errorf("config invalid")
	}
	f.reloads++
	return nil
}

func startTestServer(t *testing.T) (*Server, *fakeController, *DialClient) {
	t.Helper()
	ctrl := &fakeController{enabled: true}
	log, err := logging.New(&logging.Config{Level: logging.LevelError, Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}

	sock := filepath.Join(t.TempDir(), "layoutd.sock")
	srv := NewServer(ServerConfig{SocketPath: sock, Timeout: 5 * time.Second}, ctrl, log)
	if err := srv.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	client, err := Dial(sock, 5*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return srv, ctrl, client
}

func TestStatusRoundTrip(t *testing.T) {
	_, _, client := startTestServer(t)

	resp, err := client.Do(Request{Command: CmdStatus})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if resp.Status == nil || !resp.Status.Enabled || resp.Status.PID != 1234 {
		t.Errorf("status = %+v", resp.Status)
	}
}

func TestEnableDisableToggle(t *testing.T) {
	_, ctrl, client := startTestServer(t)

	if _, err := client.Do(Request{Command: CmdDisable}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if ctrl.Enabled() {
		t.Error("still enabled after disable")
	}

	if _, err := client.Do(Request{Command: CmdToggle}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !ctrl.Enabled() {
		t.Error("toggle did not re-enable")
	}
}

func TestStatsAndFixLast(t *testing.T) {
	_, _, client := startTestServer(t)

	resp, err := client.Do(Request{Command: CmdStats})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if resp.Stats == nil || resp.Stats.Converted != 7 {
		t.Errorf("stats = %+v", resp.Stats)
	}

	resp, err = client.Do(Request{Command: CmdFixLast})
	if err != nil {
		t.Fatalf("fix-last: %v", err)
	}
	if !resp.Applied {
		t.Error("first fix-last reported nothing applied")
	}
	resp, err = client.Do(Request{Command: CmdFixLast})
	if err != nil {
		t.Fatalf("second fix-last: %v", err)
	}
	if resp.Applied {
		t.Error("second fix-last reported applied on empty stack")
	}
}

func TestAddWordValidation(t *testing.T) {
	_, ctrl, client := startTestServer(t)

	if _, err := client.Do(Request{Command: CmdAddWord, Word: "layoutd", Lang: "en"}); err != nil {
		t.Fatalf("add-word: %v", err)
	}
	if len(ctrl.words) != 1 || ctrl.words[0] != "layoutd" {
		t.Errorf("words = %v", ctrl.words)
	}

	if _, err := client.Do(Request{Command: CmdAddWord}); err == nil {
		t.Error("empty add-word accepted")
	}
	if _, err := client.Do(Request{Command: CmdAddWord, Word: "bad"}); err == nil {
		t.Error("controller error not surfaced")
	}
}

func TestUnknownCommand(t *testing.T) {
	_, _, client := startTestServer(t)

	if _, err := client.Do(Request{Command: "frobnicate"}); err == nil {
		t.Error("unknown command accepted")
	}
}

func TestHistory(t *testing.T) {
	_, _, client := startTestServer(t)

	resp, err := client.Do(Request{Command: CmdHistory, Limit: 5})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(resp.History) != 1 || resp.History[0].Converted != "привіт" {
		t.Errorf("history = %+v", resp.History)
	}
}

func TestReload(t *testing.T) {
	_, ctrl, client := startTestServer(t)

	if _, err := client.Do(Request{Command: CmdReload}); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if ctrl.reloads != 1 {
		t.Errorf("reloads = %d, want 1", ctrl.reloads)
	}

	ctrl.mu.Lock()
	ctrl.badcfg = true
	ctrl.mu.Unlock()
	if _, err := client.Do(Request{Command: CmdReload}); err == nil {
		t.Error("reload error not surfaced")
	}
}

func TestStopRemovesSocket(t *testing.T) {
	srv, _, _ := startTestServer(t)
	sock := srv.SocketPath()

	if err := srv.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := Dial(sock, 200*time.Millisecond); err == nil {
		t.Error("dial succeeded after stop")
	}
}
