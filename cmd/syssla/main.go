package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	serveradapter "github.com/mittlund/syssla/internal/adapters/server"
	"github.com/mittlund/syssla/internal/adapters/storage/sqlite"
	"github.com/mittlund/syssla/internal/api"
	"github.com/mittlund/syssla/internal/app"
	"github.com/mittlund/syssla/internal/config"
	"github.com/mittlund/syssla/internal/platform"
	"github.com/mittlund/syssla/internal/session"
	"github.com/mittlund/syssla/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the local HTTP backend flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

// main handles main.
func main() {
	if err := fang.Execute(context.Background(), newRootCmd(os.Stdout, os.Stderr), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// rootOptions carries the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	apiURL     string
	appName    string
	devMode    bool
}

// newRootCmd builds the syssla command tree.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{appName: "syssla"}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("SYSSLA_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("SYSSLA_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:           "syssla",
		Short:         "to-do board with per-task checklists in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&opts.apiURL, "api", "", "backend API base URL")
	root.PersistentFlags().StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	var (
		serveBind string
		serveDB   string
	)
	serve := &cobra.Command{
		Use:   "serve",
		Short: "run the local sqlite-backed HTTP backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, stderr, serveBind, serveDB)
		},
	}
	serve.Flags().StringVar(&serveBind, "http", "", "HTTP listen address")
	serve.Flags().StringVar(&serveDB, "db", "", "path to sqlite database")

	paths := &cobra.Command{
		Use:   "paths",
		Short: "print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runPaths(opts, stdout)
		},
	}

	root.AddCommand(serve, paths)
	return root
}

// runtimeState bundles the resolved startup configuration for one command.
type runtimeState struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
}

// resolveRuntime applies flag, environment and config-file precedence.
func resolveRuntime(opts *rootOptions) (runtimeState, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return runtimeState{}, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("SYSSLA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}

	defaultCfg := config.Default(paths.SessionPath, paths.DBPath)
	cfg, err := config.Load(configPath, defaultCfg)
	if err != nil {
		return runtimeState{}, fmt.Errorf("load config %q: %w", configPath, err)
	}

	apiURL := strings.TrimSpace(opts.apiURL)
	if apiURL == "" {
		apiURL = strings.TrimSpace(os.Getenv("SYSSLA_API_URL"))
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
		if err := cfg.Validate(); err != nil {
			return runtimeState{}, fmt.Errorf("validate api override: %w", err)
		}
	}

	return runtimeState{paths: paths, configPath: configPath, cfg: cfg}, nil
}

// runPaths prints the resolved filesystem locations.
func runPaths(opts *rootOptions, stdout io.Writer) error {
	state, err := resolveRuntime(opts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
	_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
	_, _ = fmt.Fprintf(stdout, "config: %s\n", state.configPath)
	_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", state.paths.DataDir)
	_, _ = fmt.Fprintf(stdout, "session: %s\n", state.cfg.Session.Path)
	_, _ = fmt.Fprintf(stdout, "db: %s\n", state.cfg.Serve.DBPath)
	_, _ = fmt.Fprintf(stdout, "api: %s\n", state.cfg.API.BaseURL)
	return nil
}

// runTUI runs the requested command flow.
func runTUI(_ context.Context, opts *rootOptions, stderr io.Writer) error {
	state, err := resolveRuntime(opts)
	if err != nil {
		return err
	}
	cfg := state.cfg

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
	logger.SetConsoleEnabled(false)
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			// Keep TUI shutdown quiet on the terminal when console logging is intentionally muted.
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", "tui")
	logger.Debug("runtime paths resolved", "config_path", state.configPath, "data_dir", state.paths.DataDir)
	logger.Info("configuration loaded", "config_path", state.configPath, "api_url", cfg.API.BaseURL, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	client := api.NewClient(cfg.API.BaseURL, nil)
	sessions := session.NewStore(cfg.Session.Path)
	svc := app.NewService(client, sessions)
	logger.Debug("application service initialized", "api_url", client.BaseURL(), "session_path", cfg.Session.Path)

	m := tui.NewModel(
		svc,
		tui.WithConfirmDelete(cfg.Confirm.Delete),
		tui.WithLogger(logger.TUISink()),
	)
	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// runServe runs the requested command flow.
func runServe(ctx context.Context, opts *rootOptions, stderr io.Writer, bindFlag, dbFlag string) error {
	state, err := resolveRuntime(opts)
	if err != nil {
		return err
	}
	cfg := state.cfg

	bind := strings.TrimSpace(bindFlag)
	if bind == "" {
		bind = cfg.Serve.Addr
	}
	dbPath := strings.TrimSpace(dbFlag)
	if dbPath == "" {
		dbPath = cfg.Serve.DBPath
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("command flow start", "command", "serve", "http_bind", bind, "db_path", dbPath)

	repo, err := sqlite.Open(dbPath)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", dbPath, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", dbPath, "err", closeErr)
		}
	}()
	logger.Info("sqlite repository ready", "db_path", dbPath, "migrations", "ensured")

	if err := serveCommandRunner(ctx, serveradapter.Config{
		HTTPBind: bind,
	}, serveradapter.Dependencies{
		Store:  repo,
		Logger: logger.consoleSink,
	}); err != nil {
		logger.Error("command flow failed", "command", "serve", "err", err)
		return fmt.Errorf("run serve command: %w", err)
	}
	logger.Info("command flow complete", "command", "serve")
	return nil
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// runtimeLogger fans log events to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	fileSink       *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}

	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// Keep file output parseable and unstyled while preserving styled console logs.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.fileSink = fileLogger
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// TUISink returns the sink the board model may log to without touching the
// terminal the program is drawing on.
func (l *runtimeLogger) TUISink() *charmLog.Logger {
	if l == nil || l.fileSink == nil {
		return charmLog.New(io.Discard)
	}
	return l.fileSink
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil {
		return false
	}
	if sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Debug(msg, keyvals...)
	}
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Info(msg, keyvals...)
	}
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Warn(msg, keyvals...)
	}
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Error(msg, keyvals...)
	}
}

// devLogFilePath resolves a workspace-local dev log file path for the current run day.
func devLogFilePath(configDir, appName string, now time.Time) (string, error) {
	baseDir := strings.TrimSpace(configDir)
	if baseDir == "" {
		baseDir = ".syssla/log"
	}
	if !filepath.IsAbs(baseDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		baseDir = filepath.Join(workspaceRootFrom(cwd), baseDir)
	}
	fileStem := sanitizeLogFileStem(appName)
	fileName := fmt.Sprintf("%s-%s.log", fileStem, now.Format("20060102"))
	return filepath.Join(filepath.Clean(baseDir), fileName), nil
}

// workspaceRootFrom resolves the nearest ancestor workspace marker for stable local log placement.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	dir := start
	for {
		if hasWorkspaceMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// hasWorkspaceMarker reports whether a directory looks like a project workspace root.
func hasWorkspaceMarker(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	return false
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	stem := strings.TrimSpace(appName)
	if stem == "" {
		return "syssla"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem = strings.Trim(replacer.Replace(stem), "-")
	if stem == "" {
		return "syssla"
	}
	return stem
}
