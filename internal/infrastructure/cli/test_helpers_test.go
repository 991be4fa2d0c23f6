package cli

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/laborboard/internal/infrastructure/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func withTempDir(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "laborboard-cli-test-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	return dir, func() {
		_ = os.Chdir(old)
		_ = os.RemoveAll(dir)
	}
}

// quietEnv clears overrides that would leak in from the developer's shell.
func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvStorageDriver, "")
	t.Setenv(config.EnvDashboardAddr, "")
	t.Setenv(config.EnvTimezone, "")
	t.Setenv(config.EnvLogLevel, "error")
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(RootCmd)

	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

// ago formats a timestamp d before now in the layout commands accept.
func ago(d time.Duration) string {
	return time.Now().Add(-d).Format("2006-01-02 15:04")
}
