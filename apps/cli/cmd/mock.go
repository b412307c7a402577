package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/restlabs/restcheck/packages/mock"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag    int
	mockDelayFlag   string
	mockVerboseFlag bool
)

var mockCmd = &cobra.Command{
	Use:   "mock <fixtures-file>...",
	Short: "Start a mock server from YAML route fixtures",
	Long: `Start an HTTP mock server that serves canned responses from YAML
route fixtures. Paths may contain {name} parameters, and matched values
are substituted back into the response body.

Examples:
  restcheck mock fixtures.yaml
  restcheck mock fixtures.yaml --port 3000
  restcheck mock fixtures.yaml --port 3000 --delay 100ms
  restcheck mock fixtures.yaml --verbose`,
	Args: cobra.MinimumNArgs(1),
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", getEnvInt("RESTCHECK_MOCK_PORT", 3000), "Port to run the mock server on (env: RESTCHECK_MOCK_PORT)")
	mockCmd.Flags().StringVarP(&mockDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().BoolVarP(&mockVerboseFlag, "verbose", "v", false, "Enable verbose logging")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if mockDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(mockDelayFlag)
		if err != nil {
			return fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err)
		}
	}

	server := mock.NewServer(
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
		mock.WithVerbose(mockVerboseFlag),
	)

	for _, file := range args {
		if err := server.LoadFile(file); err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}
	}

	routes := server.Routes()
	if len(routes) == 0 {
		return fmt.Errorf("no routes found in the provided files")
	}

	fmt.Printf("Loaded %d routes from %d files\n", len(routes), len(args))

	// Graceful shutdown on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down mock server...")
		cancel()
	}()

	return server.StartWithContext(ctx)
}
