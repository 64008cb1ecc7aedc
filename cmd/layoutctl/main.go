// Command layoutctl is the control CLI for layoutd. It talks to the
// daemon over its Unix control socket.
package main

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"layoutd/internal/config"
	"layoutd/internal/ipc"
)

const version = "0.2.0"

var cli struct {
	Socket  string        `short:"s" help:"Path to the daemon control socket." type:"path"`
	Timeout time.Duration `default:"5s" help:"Request timeout."`

	Status  StatusCmd  `cmd:"" help:"Show daemon status."`
	Enable  EnableCmd  `cmd:"" help:"Enable automatic correction."`
	Disable DisableCmd `cmd:"" help:"Disable automatic correction."`
	Toggle  ToggleCmd  `cmd:"" help:"Toggle automatic correction."`
	Stats   StatsCmd   `cmd:"" help:"Show correction counters."`
	Fix     FixCmd     `cmd:"" help:"Convert the most recent deferred word."`
	AddWord AddWordCmd `cmd:"" name:"add-word" help:"Add a word to the personal dictionary."`
	History HistoryCmd `cmd:"" help:"Show recent corrections."`
	Reload  ReloadCmd  `cmd:"" help:"Ask the daemon to reload its configuration."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("layoutctl"),
		kong.Description("Control utility for layoutd."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

func dial() (*ipc.DialClient, error) {
	path := cli.Socket
	if path == "" {
		path = config.DefaultSocketPath()
	}
	c, err := ipc.Dial(path, cli.Timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon at %s: %w (is layoutd running?)", path, err)
	}
	return c, nil
}

func request(req ipc.Request) (*ipc.Response, error) {
	c, err := dial()
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Do(req)
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("layoutctl %s\n", version)
	return nil
}

// StatusCmd shows the daemon status.
type StatusCmd struct{}

func (s *StatusCmd) Run() error {
	resp, err := request(ipc.Request{Command: ipc.CmdStatus})
	if err != nil {
		return err
	}
	st := resp.Status
	if st == nil {
		return fmt.Errorf("daemon returned no status")
	}
	state := "disabled"
	if st.Enabled {
		state = "enabled"
	}
	fmt.Printf("layoutd %s (pid %d)\n", st.Version, st.PID)
	fmt.Printf("  correction:      %s\n", state)
	fmt.Printf("  uptime:          %s\n", (time.Duration(st.UptimeSec) * time.Second).String())
	fmt.Printf("  deferred words:  %d\n", st.DeferredWords)
	if len(st.DeferredAges) > 0 {
		fmt.Printf("  deferred ages:   %v\n", st.DeferredAges)
	}
	fmt.Printf("  dictionary:      %d en / %d uk\n", st.EnglishWords, st.UkrainianWords)
	return nil
}

// EnableCmd turns correction on.
type EnableCmd struct{}

func (e *EnableCmd) Run() error {
	if _, err := request(ipc.Request{Command: ipc.CmdEnable}); err != nil {
		return err
	}
	fmt.Println("correction enabled")
	return nil
}

// DisableCmd turns correction off.
type DisableCmd struct{}

func (d *DisableCmd) Run() error {
	if _, err := request(ipc.Request{Command: ipc.CmdDisable}); err != nil {
		return err
	}
	fmt.Println("correction disabled")
	return nil
}

// ToggleCmd flips the correction state.
type ToggleCmd struct{}

func (t *ToggleCmd) Run() error {
	resp, err := request(ipc.Request{Command: ipc.CmdToggle})
	if err != nil {
		return err
	}
	if resp.Status != nil && resp.Status.Enabled {
		fmt.Println("correction enabled")
	} else {
		fmt.Println("correction disabled")
	}
	return nil
}

// StatsCmd shows the correction counters.
type StatsCmd struct{}

func (s *StatsCmd) Run() error {
	resp, err := request(ipc.Request{Command: ipc.CmdStats})
	if err != nil {
		return err
	}
	st := resp.Stats
	if st == nil {
		return fmt.Errorf("daemon returned no stats")
	}
	fmt.Printf("converted: %d\n", st.Converted)
	fmt.Printf("deferred:  %d\n", st.Deferred)
	fmt.Printf("resolved:  %d\n", st.Resolved)
	fmt.Printf("kept:      %d\n", st.Kept)
	return nil
}

// FixCmd resolves the most recent deferred word.
type FixCmd struct{}

func (f *FixCmd) Run() error {
	resp, err := request(ipc.Request{Command: ipc.CmdFixLast})
	if err != nil {
		return err
	}
	if resp.Applied {
		fmt.Println("deferred word converted")
	} else {
		fmt.Println("nothing to fix")
	}
	return nil
}

// AddWordCmd adds a word to the personal dictionary.
type AddWordCmd struct {
	Word string `arg:"" help:"Word to add."`
	Lang string `default:"en" help:"Language of the word: en or uk."`
}

func (a *AddWordCmd) Run() error {
	if _, err := request(ipc.Request{Command: ipc.CmdAddWord, Word: a.Word, Lang: a.Lang}); err != nil {
		return err
	}
	fmt.Printf("added %q to the %s dictionary\n", a.Word, a.Lang)
	return nil
}

// ReloadCmd asks the daemon to re-read its config file.
type ReloadCmd struct{}

func (r *ReloadCmd) Run() error {
	if _, err := request(ipc.Request{Command: ipc.CmdReload}); err != nil {
		return err
	}
	fmt.Println("configuration reloaded")
	return nil
}

// HistoryCmd prints recent corrections.
type HistoryCmd struct {
	Limit int `default:"20" help:"Maximum entries to show."`
}

func (h *HistoryCmd) Run() error {
	resp, err := request(ipc.Request{Command: ipc.CmdHistory, Limit: h.Limit})
	if err != nil {
		return err
	}
	if len(resp.History) == 0 {
		fmt.Println("no corrections recorded")
		return nil
	}
	for _, e := range resp.History {
		fmt.Printf("%s  %-10s %s -> %s (%s)\n", e.Time, e.Kind, e.Original, e.Converted, e.Lang)
	}
	return nil
}
