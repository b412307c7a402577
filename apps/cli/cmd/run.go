package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/restlabs/restcheck/packages/core/config"
	"github.com/restlabs/restcheck/packages/core/runner"
	"github.com/restlabs/restcheck/packages/history"
	"github.com/restlabs/restcheck/packages/output"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>",
	Short: "Run API checks from suite files",
	Long: `Run the checks defined in .yaml suite files.

Examples:
  restcheck run circuits.yaml
  restcheck run ./suites/ --env staging
  restcheck run circuits.yaml --filter "circuit*"
  restcheck run circuits.yaml --output junit --output-file report.xml
  restcheck run circuits.yaml --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

// WatchDebounceDelay is the debounce delay for file watch events
const WatchDebounceDelay = 300 * time.Millisecond

var (
	envFlag        string
	configFlag     string
	filterFlag     string
	verboseFlag    bool
	quietFlag      bool
	bailFlag       bool
	timeoutFlag    string
	noColorFlag    bool
	dryRunFlag     bool
	outputFlag     string
	outputFileFlag string
	watchFlag      bool
	proxyFlag      string
	insecureFlag   bool
	rpsFlag        float64
	recordFlag     string
)

func init() {
	runCmd.Flags().StringVarP(&envFlag, "env", "e", getEnvString("RESTCHECK_ENV", ""), "Environment to use (env: RESTCHECK_ENV)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("RESTCHECK_CONFIG", ""), "Path to config file (env: RESTCHECK_CONFIG)")
	runCmd.Flags().StringVarP(&filterFlag, "filter", "f", "", "Run only tests matching name pattern (supports * prefix/suffix)")

	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("RESTCHECK_VERBOSE", false), "Verbose output (env: RESTCHECK_VERBOSE)")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("RESTCHECK_QUIET", false), "Suppress all output except errors (env: RESTCHECK_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("RESTCHECK_NO_COLOR", false), "Disable colored output (env: RESTCHECK_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("RESTCHECK_OUTPUT", "console"), "Output format: console, json, junit (env: RESTCHECK_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("RESTCHECK_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: RESTCHECK_OUTPUT_FILE)")

	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("RESTCHECK_BAIL", false), "Stop on first failure (env: RESTCHECK_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("RESTCHECK_TIMEOUT", "30s"), "Request timeout (e.g., 30s, 1m) (env: RESTCHECK_TIMEOUT)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and show what would run without executing")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run checks")
	runCmd.Flags().Float64Var(&rpsFlag, "rps", 0, "Pace requests at N per second (0 = unlimited)")
	runCmd.Flags().StringVar(&recordFlag, "record", getEnvString("RESTCHECK_HISTORY_DB", ""), "Record run summaries to a SQLite database at path (env: RESTCHECK_HISTORY_DB)")

	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("RESTCHECK_PROXY", ""), "Proxy URL for HTTP requests (env: RESTCHECK_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("RESTCHECK_INSECURE", false), "Disable SSL certificate validation (env: RESTCHECK_INSECURE)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

func newFormatter(w *os.File) Formatter {
	switch strings.ToLower(outputFlag) {
	case "json":
		opts := []output.JSONOption{}
		if w != nil {
			opts = append(opts, output.JSONWithWriter(w))
		}
		return output.NewJSONFormatter(opts...)
	case "junit":
		opts := []output.JUnitOption{}
		if w != nil {
			opts = append(opts, output.JUnitWithWriter(w))
		}
		return output.NewJUnitFormatter(opts...)
	default: // "console"
		opts := []output.ConsoleOption{
			output.WithVerbose(verboseFlag),
			output.WithNoColor(noColorFlag || quietFlag),
		}
		if w != nil {
			opts = append(opts, output.WithWriter(w))
		}
		return output.NewConsoleFormatter(opts...)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	var outWriter *os.File
	var err error
	if outputFileFlag != "" {
		outWriter, err = os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer outWriter.Close()
	}

	formatter := newFormatter(outWriter)
	formatter.FormatHeader(version)

	files, err := collectFiles(args)
	if err != nil {
		formatter.FormatError(err)
		return err
	}

	if len(files) == 0 {
		formatter.FormatError(fmt.Errorf("no .yaml or .yml suite files found"))
		return fmt.Errorf("no files found")
	}

	// Load config from file (if present) and apply CLI overrides
	fileConfig, _ := config.LoadConfig(configFlag)

	proxy := fileConfig.Proxy
	if proxyFlag != "" {
		proxy = proxyFlag
	}

	validateSSL := fileConfig.GetValidateSSL()
	if insecureFlag {
		validateSSL = false
	}

	timeout, err := time.ParseDuration(timeoutFlag)
	if err != nil {
		return fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
	}

	rps := fileConfig.RPS
	if rpsFlag > 0 {
		rps = rpsFlag
	}

	envVars, err := fileConfig.EnvironmentVars(envFlag)
	if err != nil {
		return err
	}

	historyPath := fileConfig.HistoryDB
	if recordFlag != "" {
		historyPath = recordFlag
	}
	var store *history.Store
	if historyPath != "" {
		store, err = history.Open(historyPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	cfg := &runner.Config{
		Environment:    envFlag,
		Verbose:        verboseFlag,
		Timeout:        timeout,
		FollowRedirect: fileConfig.GetFollowRedirects(),
		ValidateSSL:    validateSSL,
		Proxy:          proxy,
		DefaultHeaders: fileConfig.Headers,
		Bail:           bailFlag || fileConfig.GetBail(),
		NameFilter:     filterFlag,
		RPS:            rps,
	}

	r := runner.NewRunner(cfg)
	if len(envVars) > 0 {
		r.Resolver().SetVariables(envVars)
	}
	r.Resolver().SetWarnFunc(func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	})

	runTests := func(formatter Formatter) (int, time.Duration) {
		totalFailed := 0
		startTime := time.Now()

		for _, file := range files {
			if dryRunFlag {
				fmt.Fprintf(cmd.OutOrStdout(), "Would run: %s\n", file)
				continue
			}

			result, err := r.RunFile(file)
			if err != nil {
				formatter.FormatError(err)
				totalFailed++
				if bailFlag {
					break
				}
				continue
			}

			formatter.FormatResult(result)
			totalFailed += result.Failed

			if store != nil {
				if err := store.Save(result); err != nil {
					fmt.Fprintf(os.Stderr, "warning: failed to record run: %v\n", err)
				}
			}

			if bailFlag && result.Failed > 0 {
				break
			}
		}

		return totalFailed, time.Since(startTime)
	}

	totalFailed, totalDuration := runTests(formatter)

	if flushable, ok := formatter.(Flushable); ok {
		if err := flushable.Flush(totalDuration); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	if !watchFlag {
		if totalFailed > 0 {
			os.Exit(1)
		}
		return nil
	}

	// Watch mode: set up file watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				formatter.FormatError(fmt.Errorf("failed to watch %s: %w", dir, err))
			}
			watchedDirs[dir] = true
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Write) && isSuiteFile(event.Name) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running checks...\n\n", event.Name)

					// Accumulating formatters need fresh state per run; the
					// rerun gets its own so the watcher loop never shares one
					// with this goroutine.
					rerunFormatter := newFormatter(nil)

					_, duration := runTests(rerunFormatter)

					if flushable, ok := rerunFormatter.(Flushable); ok {
						_ = flushable.Flush(duration)
					}

					fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isSuiteFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			if isSuiteFile(arg) {
				files = append(files, arg)
			}
		}
	}

	return files, nil
}

func isSuiteFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
