// Package main is the entry point for the Quill editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/quill/internal/app"
	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/lang"
	"github.com/dshills/quill/internal/runner"
	"github.com/dshills/quill/internal/script"
	"github.com/dshills/quill/internal/surface"
	"github.com/dshills/quill/internal/vcs"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	configPath string
	file       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, stopProvider := langProvider(ctx, cfg, opts.file)
	if stopProvider != nil {
		defer stopProvider()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	surf := surface.NewTerminal(screen)
	editor := app.New(cfg, surf, provider)

	// Ambient components attach after the queue exists.
	editor.Apply(app.ShowStatus{Text: fmt.Sprintf("quill %s", version)})

	tasks := runner.New(editor.Queue(), runner.WithDir(workDir(opts)))
	defer tasks.StopAll()
	editor.SetRunner(tasks)

	var hooks *script.Engine
	if cfg.HooksPath != "" {
		hooks = script.NewEngine(editor.Queue(), script.WithErrorHandler(func(err error) {
			editor.Apply(app.ShowStatus{Text: err.Error()})
		}))
		defer hooks.Close()
		if err := hooks.LoadFile(cfg.HooksPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: hooks: %v\n", err)
			return 1
		}
		editor.SetHooks(hooks)
	}

	if repo, err := vcs.Open(ctx, workDir(opts), editor.Queue()); err == nil {
		editor.SetRepo(repo)
		watcher, werr := vcs.Watch(repo, editor.Scheduler(), editor.RefreshVCS,
			vcs.WithDebounce(cfg.Trigger.VCS()))
		if werr == nil {
			defer watcher.Close()
		}
		editor.RefreshVCS()
	}

	if opts.file != "" {
		if err := openFile(editor, opts.file); err != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		editor.OpenDocument("", []string{""})
	}

	// Signals and terminal input both feed the queue; the drain loop on
	// this goroutine is the only consumer.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		editor.Stop()
	}()

	go pollInput(screen, editor)

	if err := editor.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// pollInput forwards terminal events to the drain loop as queued actions.
func pollInput(screen tcell.Screen, editor *app.App) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlQ {
				editor.Stop()
				return
			}
			key := ev
			editor.Queue().PushAction(func() {
				editor.HandleKey(key)
			})
		case *tcell.EventResize:
			editor.Queue().PushAction(editor.Redraw)
		}
	}
}

// langProvider starts the server configured for the file's language, keyed
// by extension. Returns a nil provider when nothing is configured; language
// commands then report that on the status line.
func langProvider(ctx context.Context, cfg config.Config, file string) (lang.Provider, func()) {
	if file == "" {
		return nil, nil
	}
	id := strings.TrimPrefix(filepath.Ext(file), ".")
	command, ok := cfg.Lang.Servers[id]
	if !ok || len(command) == 0 {
		return nil, nil
	}

	p, err := lang.StartCommand(ctx, command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: language server: %v\n", err)
		return nil, nil
	}
	return p, func() { p.Close() }
}

// openFile loads a file into the editor.
func openFile(editor *app.App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	editor.OpenDocument(path, lines)
	return nil
}

// workDir returns the directory tasks and git run in.
func workDir(opts options) string {
	if opts.file != "" {
		if abs, err := filepath.Abs(opts.file); err == nil {
			return filepath.Dir(abs)
		}
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", defaultConfigPath(), "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", defaultConfigPath(), "Path to configuration file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Quill - terminal text editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: quill [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Quill %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	if args := flag.Args(); len(args) > 0 {
		opts.file = args[0]
	}
	return opts
}

// defaultConfigPath is ~/.config/quill/quill.toml.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "quill.toml"
	}
	return filepath.Join(home, ".config", "quill", "quill.toml")
}
