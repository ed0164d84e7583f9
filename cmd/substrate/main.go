package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jllopis/substrate/pkg/config"
	"github.com/jllopis/substrate/pkg/coordination"
	"github.com/jllopis/substrate/pkg/core"
	"github.com/jllopis/substrate/pkg/learning"
	"github.com/jllopis/substrate/pkg/memory"
	"github.com/jllopis/substrate/pkg/reasoning"
	"github.com/jllopis/substrate/pkg/substrate"
	"github.com/jllopis/substrate/pkg/telemetry"
)

const version = "dev"

type globalFlags struct {
	ConfigPath string
	Timeout    time.Duration
	JSON       bool
	Reinforce  bool
	Watch      bool
	Help       bool
}

type thoughtRow struct {
	Module     string  `json:"module"`
	Confidence float64 `json:"confidence"`
	Content    any     `json:"content"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		runProcess(ctx, global, args[1:])
	case "status":
		ensureNoArgs(args[1:])
		runStatus(global)
	case "version":
		fmt.Println(version)
	case "help":
		printUsage()
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	flags := globalFlags{
		ConfigPath: getenv("SUBSTRATE_CONFIG", ""),
		Timeout:    30 * time.Second,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--reinforce":
			flags.Reinforce = true
		case arg == "--watch":
			flags.Watch = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--timeout":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --timeout")
			}
			value, err := time.ParseDuration(args[i+1])
			if err != nil {
				return flags, nil, fmt.Errorf("invalid --timeout: %w", err)
			}
			flags.Timeout = value
			i++
		case strings.HasPrefix(arg, "--timeout="):
			value, err := time.ParseDuration(strings.TrimPrefix(arg, "--timeout="))
			if err != nil {
				return flags, nil, fmt.Errorf("invalid --timeout: %w", err)
			}
			flags.Timeout = value
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

func runProcess(ctx context.Context, flags globalFlags, inputs []string) {
	if len(inputs) == 0 {
		fatal(fmt.Errorf("usage: substrate run <input> [input ...]"))
	}

	cfg, shutdown, s := buildSubstrate(flags)
	defer shutdown()

	procCtx, cancel := context.WithTimeout(ctx, flags.Timeout)
	defer cancel()

	rows := make([]thoughtRow, 0, len(inputs))
	for _, input := range inputs {
		thoughts, err := s.ProcessInput(procCtx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "input %q: %v\n", input, err)
		}
		for _, th := range thoughts {
			rows = append(rows, thoughtRow{
				Module:     th.SourceModule,
				Confidence: th.Confidence,
				Content:    th.Content,
			})
		}
	}

	if flags.Reinforce {
		if err := s.Broadcast(procCtx, map[string]any{"reinforce": true}); err != nil {
			fmt.Fprintf(os.Stderr, "reinforce: %v\n", err)
		}
	}

	if flags.JSON {
		printJSON(map[string]any{
			"substrate": cfg.Substrate.Name,
			"thoughts":  rows,
			"status":    s.Status(),
		})
	} else {
		writer := newTabWriter()
		writeRow(writer, "MODULE", "CONFIDENCE", "CONTENT")
		for _, row := range rows {
			writeRow(writer, row.Module, fmt.Sprintf("%.2f", row.Confidence),
				truncate(fmt.Sprintf("%v", row.Content), 80))
		}
		_ = writer.Flush()
		printStatus(s.Status())
	}

	if flags.Watch {
		watchForReload(ctx, flags, cfg, s)
	}
}

// watchForReload keeps the process alive and swaps in the new configuration
// whenever the config file changes. Log level and format take effect on
// reload; stored capacities stay fixed for the lifetime of the process.
func watchForReload(ctx context.Context, flags globalFlags, cfg *config.Config, s *substrate.Substrate) {
	if flags.ConfigPath == "" {
		fatal(fmt.Errorf("--watch requires --config"))
	}

	reloadable := config.NewReloadableConfig(cfg)
	watcher, _, err := config.WatchConfig(ctx, flags.ConfigPath,
		config.WithWatchInterval(1*time.Second))
	if err != nil {
		fatal(err)
	}
	defer watcher.Stop()

	watcher.OnChange(func(next *config.Config) {
		reloadable.Update(next)
		telemetry.ConfigureSlog(os.Stderr, reloadable.Log().Level, reloadable.Log().Format)
		s.SetContext("config_reloaded_at", time.Now().UTC().Format(time.RFC3339))
		if !flags.JSON {
			fmt.Println("[config reloaded]")
		}
	})

	if !flags.JSON {
		fmt.Printf("watching config: %s\n", flags.ConfigPath)
	}
	<-ctx.Done()
}

func runStatus(flags globalFlags) {
	_, shutdown, s := buildSubstrate(flags)
	defer shutdown()

	if flags.JSON {
		printJSON(s.Status())
		return
	}
	printStatus(s.Status())
}

// buildSubstrate loads configuration, configures logging and telemetry, and
// assembles the four cognitive modules.
func buildSubstrate(flags globalFlags) (*config.Config, func(), *substrate.Substrate) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fatal(err)
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	shutdownTelemetry, err := telemetry.InitWithConfig(cfg.Substrate.Name, version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(err)
	}
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
		}
	}

	metrics, err := telemetry.NewMemoryMetrics()
	if err != nil {
		logger.Warn("memory metrics unavailable", "error", err)
		metrics = nil
	}

	mem, err := memory.NewSystem(
		memory.WithSTMCapacity(cfg.Memory.STMCapacity),
		memory.WithLTMCapacity(cfg.Memory.LTMCapacity),
		memory.WithPromotionThreshold(cfg.Memory.PromotionThreshold),
		memory.WithWorkingCapacity(cfg.Memory.WorkingCapacity),
		memory.WithSimilarLimit(cfg.Memory.SimilarLimit),
		memory.WithLogger(logger),
		memory.WithMetrics(metrics),
	)
	if err != nil {
		shutdown()
		fatal(err)
	}

	s := substrate.New(cfg.Substrate.Name, substrate.WithLogger(logger))
	modules := []core.Module{
		mem,
		reasoning.NewEngine(),
		learning.NewEngine(),
		coordination.NewCoordinator(),
	}
	for _, m := range modules {
		if err := s.Register(m); err != nil {
			shutdown()
			fatal(err)
		}
	}
	return cfg, shutdown, s
}

func printStatus(status core.SystemStatus) {
	fmt.Printf("substrate: %s state=%s thoughts=%d context_keys=%d\n",
		status.Name, status.State, status.ThoughtCount, status.ContextKeys)
	writer := newTabWriter()
	writeRow(writer, "MODULE", "STATE")
	for _, m := range status.Modules {
		writeRow(writer, m.Name, string(m.State))
	}
	_ = writer.Flush()
}

func printJSON(value any) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(payload))
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
}

func writeRow(writer *tabwriter.Writer, cols ...string) {
	for i, col := range cols {
		cols[i] = normalizeCell(col)
	}
	fmt.Fprintln(writer, strings.Join(cols, "\t"))
}

func normalizeCell(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return strings.Join(strings.Fields(value), " ")
}

func truncate(value string, limit int) string {
	value = normalizeCell(value)
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}

func printUsage() {
	fmt.Println(`Substrate CLI

Usage:
  substrate [global flags] <command> [args]

Global flags:
  --config <path>      Path to config YAML (or SUBSTRATE_CONFIG)
  --timeout <dur>      Processing timeout (default 30s)
  --json               JSON output
  --reinforce          Send reinforce feedback after processing
  --watch              Stay running after run and reload config on change

Commands:
  run <input> [input ...]   Feed inputs through every cognitive module
  status                    Show substrate and module states
  version
  help`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func ensureNoArgs(args []string) {
	if len(args) > 0 {
		fatal(fmt.Errorf("unexpected args: %v", args))
	}
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
