package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/spendviz/internal/store"
	"github.com/theirongolddev/spendviz/internal/web"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type serverRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source"`
}

var (
	flagServeAddr     string
	flagServeLogLevel string
	flagServeDetach   bool
	flagServeState    string
	flagServeLogFile  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and its JSON API over HTTP",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	RunE:  runServeStop,
}

func init() {
	defaultState := filepath.Join(store.DefaultDir(), "server.json")
	defaultLog := filepath.Join(store.DefaultDir(), "server.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServeState, "state-file", defaultState, "Running server state file (pid, address)")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")

	serveCmd.Flags().StringVar(&flagServeLogLevel, "log-level", "", "Request log level: debug, info, warn, error, off")
	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	if flagServeAddr == "" {
		flagServeAddr = cfg.Server.Addr
	}
	if flagServeLogLevel == "" {
		flagServeLogLevel = cfg.Server.LogLevel
	}

	if flagServeDetach {
		return startServerDetached()
	}
	return runServerForeground()
}

// startServerDetached re-runs the current command line without --detach as
// a background process logging to --log-file, pinned to the resolved address.
func startServerDetached() error {
	if err := ensureServerNotRunning(flagServeState); err != nil {
		return err
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create server log directory: %w", err)
	}
	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open server log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	args := append(filterDetachArg(os.Args[1:]), "--addr", flagServeAddr)
	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout, child.Stderr = logf, logf
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started server (pid %d)\n", child.Process.Pid)
	fmt.Printf("  Dashboard: http://%s/\n", flagServeAddr)
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	return nil
}

func runServerForeground() error {
	if err := ensureServerNotRunning(flagServeState); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(flagServeState), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}

	cfg := loadConfig()
	style, err := chartStyle(cfg)
	if err != nil {
		return err
	}
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	state := serverRuntimeState{
		PID:       os.Getpid(),
		Addr:      flagServeAddr,
		StartedAt: time.Now(),
		Source:    src.description,
	}
	if err := writeState(flagServeState, state); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagServeState) }()

	svc := web.New(web.Config{
		Addr:     flagServeAddr,
		LogLevel: flagServeLogLevel,
		Style:    style,
		Source:   src.description,
	}, src.fetcher)

	fmt.Printf("  spendviz listening on http://%s/\n", flagServeAddr)
	fmt.Printf("  Data from %s\n", src.description)
	fmt.Printf("  Stop with: spendviz serve stop --state-file %s\n", flagServeState)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	rs, err := readState(flagServeState)
	if err != nil {
		fmt.Printf("  Server: not running (no state file)\n")
		return nil
	}
	if !processAlive(rs.PID) {
		fmt.Printf("  Server: stale state file (pid %d not alive)\n", rs.PID)
		return nil
	}

	addr := rs.Addr
	if addr == "" {
		addr = loadConfig().Server.Addr
	}

	fmt.Printf("  Server PID: %d\n", rs.PID)
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st web.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Started: %s (%s)\n", st.StartedAt.Local().Format(time.RFC3339), humanize.Time(st.StartedAt))
	fmt.Printf("  Source: %s\n", st.Source)
	fmt.Printf("  Requests: %s\n", humanize.Comma(st.Requests))
	fmt.Printf("  Fetch failures: %s\n", humanize.Comma(st.FetchFailures))
	names := make([]string, 0, len(st.LastErrors))
	for name := range st.LastErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  Last error (%s): %s\n", name, st.LastErrors[name])
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	rs, err := readState(flagServeState)
	if err != nil {
		return errors.New("server is not running")
	}
	pid := rs.PID

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(flagServeState)
			fmt.Printf("  Stopped server (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("server (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureServerNotRunning(stateFile string) error {
	rs, err := readState(stateFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(rs.PID) {
		return fmt.Errorf("server already running (pid %d on %s)", rs.PID, rs.Addr)
	}
	_ = os.Remove(stateFile)
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func writeState(path string, st serverRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (serverRuntimeState, error) {
	var st serverRuntimeState
	//nolint:gosec // state file path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	if st.PID <= 0 {
		return st, fmt.Errorf("invalid pid in %s", path)
	}
	return st, nil
}
