package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const debugEnv = "VTAB_DEBUG"

// overrides holds the command line flags that replace profile values.
// Only flags given explicitly are applied.
type overrides struct {
	set     map[string]bool
	source  string
	rows    int
	reverse bool
	follow  bool
	format  string
	columns string
}

func (o overrides) apply(p Profile) Profile {
	if o.source != "" {
		p.Source = o.source
	}
	if o.set["rows"] {
		p.VisibleRows = o.rows
	}
	if o.set["reverse"] {
		p.Reversed = o.reverse
	}
	if o.set["follow"] {
		p.Follow = o.follow
	}
	if o.set["format"] {
		p.Format = o.format
	}
	if o.set["columns"] {
		p.Columns = splitColumns(o.columns)
	}
	return p
}

// splitColumns parses a comma separated list of gjson paths
func splitColumns(value string) []string {
	var columns []string
	for _, c := range strings.Split(value, ",") {
		if c = strings.TrimSpace(c); c != "" {
			columns = append(columns, c)
		}
	}
	return columns
}

// setupLogging logs to a file when VTAB_DEBUG names one; otherwise
// everything is discarded. The terminal belongs to the TUI.
func setupLogging() (*slog.Logger, io.Closer, error) {
	path := os.Getenv(debugEnv)
	if path == "" {
		return slog.New(slog.DiscardHandler), nil, nil
	}

	f, err := tea.LogToFile(path, "vtab")
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, f, nil
}

func printUsage(cfgPath string) {
	fmt.Println("Usage: vtab [options] <file|->")
	fmt.Println("\nOptions:")
	fmt.Println("  --profile <name>     Use profile from config")
	fmt.Println("  --rows <n>           Visible rows (0 fits the terminal)")
	fmt.Println("  --reverse            Show the newest record first")
	fmt.Println("  --follow             Append lines written to the file")
	fmt.Println("  --format <name>      plain, markdown or json")
	fmt.Println("  --columns <paths>    Comma separated gjson paths for json")
	fmt.Println("  --theme <name>       Markdown theme")
	fmt.Println("  --list               Print records without TUI")
	fmt.Println("\nExample:")
	fmt.Println("  tail -n 100000 app.log | vtab --reverse -")
	fmt.Println("  vtab --format json --columns time,level,msg --follow app.jsonl")
	if cfgPath != "" {
		fmt.Println("\nConfig:")
		fmt.Printf("  %s\n", cfgPath)
		fmt.Println("  Define profiles with source/format and set default_profile to skip flags.")
	}
}

func main() {
	// Parse flags
	profileName := flag.String("profile", "", "Profile name from config (optional)")
	listOnly := flag.Bool("list", false, "List records without TUI (non-interactive)")
	theme := flag.String("theme", "", "Glamour theme for the markdown format")

	var o overrides
	flag.IntVar(&o.rows, "rows", 0, "Visible rows, 0 fits the terminal")
	flag.BoolVar(&o.reverse, "reverse", false, "Show the newest record first")
	flag.BoolVar(&o.follow, "follow", false, "Append lines written to the source file")
	flag.StringVar(&o.format, "format", "", "Row format: plain, markdown or json")
	flag.StringVar(&o.columns, "columns", "", "Comma separated gjson paths for the json format")
	flag.Parse()

	o.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	if args := flag.Args(); len(args) > 0 {
		o.source = args[0]
	}

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := validateConfig(cfg); err != nil {
		fmt.Printf("Error in %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	name, selected, err := selectProfile(*profileName, cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var base Profile
	if selected != nil {
		base = *selected
	}
	merged := o.apply(base)

	if strings.TrimSpace(merged.Source) == "" {
		printUsage(cfgPath)
		os.Exit(1)
	}

	if *theme != "" {
		cfg.Theme = *theme
	}

	profile, err := resolveProfile(name, merged, cfg.Theme)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := setupLogging()
	if err != nil {
		fmt.Printf("Error opening debug log: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// List mode (non-interactive)
	if *listOnly {
		result := loadSource(profile, nil)
		if result.Error != nil {
			fmt.Printf("Error reading %s: %v\n", profile.Source, result.Error)
			os.Exit(1)
		}

		renderer := newRowRenderer(profile.Format, profile.Columns, profile.Theme, nil)
		if header := renderer.Header(0); header != "" {
			fmt.Println(header)
		}
		for i := range result.Records {
			record := result.Records[i]
			if profile.Reversed {
				record = result.Records[len(result.Records)-1-i]
			}
			fmt.Println(renderer.Render(record, 0))
		}
		os.Exit(0)
	}

	result := RunWithLoader(profile)
	if result.Error != nil {
		if errors.Is(result.Error, errLoadCancelled) {
			os.Exit(0)
		}
		fmt.Printf("Error reading %s: %v\n", profile.Source, result.Error)
		os.Exit(1)
	}
	logger.Info("loaded", "source", profile.Source, "records", len(result.Records), "bytes", result.Offset)

	var (
		tail      *Tail
		watcher   *Watcher
		debouncer *Debouncer
	)
	if profile.Follow {
		watcher, err = NewWatcher(profile.Source)
		if err != nil {
			fmt.Printf("Error watching %s: %v\n", profile.Source, err)
			os.Exit(1)
		}
		defer watcher.Close()

		tail = NewTail(profile.Source, result.Offset, result.Partial)
		debouncer = NewDebouncer(followDebounce)
	}

	m, err := newModel(profile, result.Records, tail, watcher, debouncer, logger)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Run TUI
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if profile.IsStdin() {
		opts = append(opts, tea.WithInputTTY())
	}

	p := tea.NewProgram(m, opts...)
	if debouncer != nil {
		debouncer.SetProgram(p)
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
