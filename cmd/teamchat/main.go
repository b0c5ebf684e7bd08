package main

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/agentworkforce/teamchat/internal/teamstore"
	"github.com/spf13/cobra"
)

// Exit codes per spec.md 7: 0 success, 1 operational error, 2
// configuration/bootstrap/identifier error.
const (
	exitOperational = 1
	exitBootstrap   = 2
)

var store *teamstore.Store

var rootCmd = &cobra.Command{
	Use:   "teamchat",
	Short: "A local-first, file-backed team collaboration control plane",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		store = teamstore.NewStore(dataRootFromEnv())
		store.WarnMalformed = warnMalformedEnabled()
		return nil
	},
}

func main() {
	rootCmd.AddCommand(
		initCmd,
		sendCmd,
		taskAssignCmd,
		taskUpdateCmd,
		readCmd,
		ackCmd,
		statusCmd,
		traceCmd,
		rehydrateCmd,
		doctorCmd,
	)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a teamstore error kind to the exit code taxonomy of
// spec.md 7.
func exitCodeFor(err error) int {
	switch {
	case isBootstrapClass(err):
		return exitBootstrap
	default:
		return exitOperational
	}
}

func isBootstrapClass(err error) bool {
	var idErr *teamstore.IdentifierError
	if errors.As(err, &idErr) {
		return true
	}
	return errors.Is(err, teamstore.ErrBootstrap) || errors.Is(err, teamstore.ErrUnsafeIdentifier)
}

// dataRootFromEnv resolves TEAM_CHAT_DATA_ROOT, defaulting to ./teamchat-data,
// mirroring the teacher's <NAME>_DATA_DIR convention in cmd/relayfile/main.go.
func dataRootFromEnv() string {
	root := os.Getenv("TEAM_CHAT_DATA_ROOT")
	if root == "" {
		root = "./teamchat-data"
	}
	return root
}

func warnMalformedEnabled() bool {
	return os.Getenv("TEAM_CHAT_WARN_MALFORMED") == "1"
}

func staleMinutesFromEnv() int {
	raw := os.Getenv("TEAM_CHAT_STALE_MINUTES")
	if raw == "" {
		return 60
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid TEAM_CHAT_STALE_MINUTES=%q, using fallback 60", raw)
		return 60
	}
	return v
}
