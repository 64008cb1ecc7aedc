// Command layoutd is the keyboard layout correction daemon. It watches
// keystrokes, detects words typed in the wrong layout, and rewrites
// them in place through a virtual keyboard.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"layoutd/internal/config"
	"layoutd/internal/correct"
	"layoutd/internal/decision"
	"layoutd/internal/dictionary"
	"layoutd/internal/engine"
	"layoutd/internal/ipc"
	"layoutd/internal/layout"
	"layoutd/internal/logging"
	"layoutd/internal/platform"
	"layoutd/internal/spell"
)

const version = "0.2.0"

var cli struct {
	Config string `name:"config" short:"c" help:"Path to config file." type:"path"`

	Run         RunCmd         `cmd:"" default:"1" help:"Run the daemon (default)."`
	CheckConfig CheckConfigCmd `cmd:"" name:"check-config" help:"Validate the configuration and exit."`
	Version     VersionCmd     `cmd:"" help:"Print version information."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("layoutd"),
		kong.Description("Keyboard layout correction daemon."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("layoutd %s\n", version)
	return nil
}

// CheckConfigCmd loads and validates the configuration.
type CheckConfigCmd struct{}

func (c *CheckConfigCmd) Run() error {
	path := cli.Config
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.NewLoader(path).Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Printf("%s: OK\n", path)
	return nil
}

// RunCmd runs the daemon until SIGINT or SIGTERM.
type RunCmd struct {
	Device string `help:"Keyboard device path (default: autodetect)." type:"path"`
}

func (r *RunCmd) Run() error {
	cfg, created, err := config.LoadOrCreate(cli.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer log.Close()
	logging.SetDefault(log)

	if created {
		log.Info("wrote default config", "path", config.ConfigPath())
	}
	log.Info("layoutd starting", "version", version, "pid", os.Getpid())

	// Hot-reload: hotkey bindings apply live, everything else needs a
	// restart.
	path := cli.Config
	if path == "" {
		path = config.ConfigPath()
	}
	loader := config.NewLoader(path)

	d, err := newDaemon(cfg, r.Device, log, loader.Reload)
	if err != nil {
		return err
	}
	defer d.Close()

	loader.OnChange(func(next *config.Config) {
		fix, toggle, force, err := next.EngineHotkeys()
		if err != nil {
			log.Warn("reloaded config has bad hotkeys, keeping old bindings", "error", err)
			return
		}
		d.engine.UpdateHotkeys(fix, toggle, force)
		log.Info("config reloaded, hotkeys updated")
	})
	if err := loader.Watch(); err != nil {
		log.Warn("config watch unavailable", "error", err)
	}
	defer loader.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.platform.Source.Run(d.engine.HandleKey)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("keystroke source: %w", err)
		}
		log.Info("keystroke source closed, shutting down")
	}
	return nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	lc := logging.DefaultConfig()
	if cfg.Logging.Level != "" {
		lvl, err := logging.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		lc.Level = lvl
	}
	if cfg.Logging.Format != "" {
		f, err := logging.ParseFormat(cfg.Logging.Format)
		if err != nil {
			return nil, err
		}
		lc.Format = f
	}
	if cfg.Logging.Output != "" {
		lc.Output = cfg.Logging.Output
	}
	if cfg.Logging.FilePath != "" {
		lc.FilePath = cfg.Logging.FilePath
	}
	return logging.New(lc)
}

// daemon owns the wired components for one run.
type daemon struct {
	cfg      *config.Config
	log      *logging.Logger
	store    *dictionary.Store
	oracle   *spell.Oracle
	platform *platform.Platform
	engine   *engine.Engine
	server   *ipc.Server
	started  time.Time

	// reloadCfg re-reads the config file; nil when no loader exists.
	reloadCfg func() error
}

func newDaemon(cfg *config.Config, device string, log *logging.Logger, reload func() error) (*daemon, error) {
	store, err := dictionary.Open(cfg.Dictionary.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open dictionary database: %w", err)
	}

	oracle := spell.NewOracle(store)
	loadWordlist(oracle, layout.EN, cfg.Dictionary.EnglishTag, cfg.Dictionary.EnglishWordlist, log)
	loadWordlist(oracle, layout.UK, cfg.Dictionary.UkrainianTag, cfg.Dictionary.UkrainianWordlist, log)

	mapper := layout.NewMapper()
	if cfg.Dictionary.CustomTablePath != "" {
		doc, err := os.ReadFile(cfg.Dictionary.CustomTablePath)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("read custom table: %w", err)
		}
		mapper, err = layout.NewCustomMapper(doc)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("custom table: %w", err)
		}
	}

	plat, err := platform.New(platform.Config{
		KeyboardDevice:   device,
		LatinLayoutID:    cfg.Layouts.Latin,
		CyrillicLayoutID: cfg.Layouts.Cyrillic,
		Logger:           log,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("platform: %w", err)
	}

	exec := correct.NewExecutor(plat.Switcher, plat.Injector, plat.Document, correct.Options{
		SwitchPollInterval: time.Duration(cfg.Timing.SwitchPollIntervalMs) * time.Millisecond,
		SwitchRetryLimit:   cfg.Timing.SwitchRetryLimit,
		RelocationWindow:   cfg.Timing.RelocationWindowRunes,
	}, log.Logger)

	fix, toggle, force, err := cfg.EngineHotkeys()
	if err != nil {
		plat.Close()
		store.Close()
		return nil, fmt.Errorf("hotkeys: %w", err)
	}

	eng := engine.New(engine.Deps{
		Decision: decision.New(oracle, mapper),
		Mapper:   mapper,
		Executor: exec,
		Switcher: plat.Switcher,
		Document: plat.Document,
		Recorder: store,
		Logger:   log.WithComponent("engine").Logger,
	}, engine.Config{
		FixLast:      fix,
		Toggle:       toggle,
		ForceConvert: force,
		SettleDelay:  time.Duration(cfg.Timing.SettleDelayMs) * time.Millisecond,
		StartEnabled: cfg.StartEnabled,
	})

	d := &daemon{
		cfg:       cfg,
		log:       log,
		store:     store,
		oracle:    oracle,
		platform:  plat,
		engine:    eng,
		started:   time.Now(),
		reloadCfg: reload,
	}

	if cfg.IPC.Enabled {
		d.server = ipc.NewServer(ipc.ServerConfig{
			SocketPath: cfg.IPC.SocketPath,
			Timeout:    time.Duration(cfg.IPC.TimeoutSec) * time.Second,
		}, d, log.WithComponent("ipc"))
		if err := d.server.Start(); err != nil {
			d.Close()
			return nil, fmt.Errorf("ipc server: %w", err)
		}
	}
	return d, nil
}

// loadWordlist is best-effort: a missing wordlist degrades the oracle,
// it does not stop the daemon.
func loadWordlist(oracle *spell.Oracle, lang layout.Lang, tag, path string, log *logging.Logger) {
	if path == "" {
		return
	}
	if err := oracle.LoadFile(lang, tag, path); err != nil {
		log.Warn("wordlist unavailable", "lang", lang.String(), "path", path, "error", err)
		return
	}
	log.Info("wordlist loaded", "lang", lang.String(), "entries", oracle.WordCount(lang))
}

func (d *daemon) Close() {
	if d.server != nil {
		if err := d.server.Stop(); err != nil {
			d.log.Warn("ipc server stop", "error", err)
		}
	}
	d.engine.Close()
	if err := d.platform.Close(); err != nil {
		d.log.Warn("platform close", "error", err)
	}
	if err := d.store.Close(); err != nil {
		d.log.Warn("dictionary close", "error", err)
	}
}

// Controller implementation for the IPC server.

func (d *daemon) Status() ipc.Status {
	entries := d.engine.Ambiguities()
	ages := make([]uint, 0, len(entries))
	for _, e := range entries {
		ages = append(ages, e.WordsAhead)
	}
	return ipc.Status{
		Version:        version,
		Enabled:        d.engine.Enabled(),
		UptimeSec:      int64(time.Since(d.started).Seconds()),
		PID:            os.Getpid(),
		DeferredWords:  len(entries),
		EnglishWords:   d.oracle.WordCount(layout.EN),
		UkrainianWords: d.oracle.WordCount(layout.UK),
		DeferredAges:   ages,
	}
}

func (d *daemon) SetEnabled(on bool) { d.engine.SetEnabled(on) }
func (d *daemon) Enabled() bool      { return d.engine.Enabled() }

func (d *daemon) Stats() engine.StatsSnapshot { return d.engine.StatsSnapshot() }

func (d *daemon) FixLast() bool { return d.engine.FixLast() }

func (d *daemon) AddWord(word, lang string) error {
	return d.store.AddWord(spell.Normalize(word), layout.ParseLang(lang))
}

func (d *daemon) Reload() error {
	if d.reloadCfg == nil {
		return fmt.Errorf("config reload not available")
	}
	return d.reloadCfg()
}

func (d *daemon) History(limit int) ([]ipc.HistoryEntry, error) {
	recs, err := d.store.RecentCorrections(limit)
	if err != nil {
		return nil, err
	}
	out := make([]ipc.HistoryEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, ipc.HistoryEntry{
			Original:  r.Original,
			Converted: r.Converted,
			Lang:      r.Lang,
			Kind:      r.Kind,
			Time:      r.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}
