package app

import (
	"slices"
	"testing"

	"github.com/spf13/cobra"
)

func TestWatchCommand(t *testing.T) {
	if watchCmd.Use != "watch" {
		t.Errorf("expected Use to be 'watch', got '%s'", watchCmd.Use)
	}
	if watchCmd.Short == "" || watchCmd.Long == "" || watchCmd.Example == "" {
		t.Error("expected Short, Long and Example to be set")
	}
	if watchCmd.RunE == nil {
		t.Error("expected RunE to be set")
	}
}

func TestWatchCommandFlags(t *testing.T) {
	tests := []struct {
		flagName     string
		shouldHidden bool
	}{
		{flagName: "daemon"},
		{flagName: "daemon-child", shouldHidden: true},
		{flagName: "pid-file"},
		{flagName: "log-file"},
		{flagName: "stop"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := watchCmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("expected flag '%s' to be registered", tt.flagName)
			}
			if flag.Usage == "" {
				t.Errorf("expected flag '%s' to have usage text", tt.flagName)
			}
			if flag.Hidden != tt.shouldHidden {
				t.Errorf("expected flag '%s' hidden to be %v, got %v", tt.flagName, tt.shouldHidden, flag.Hidden)
			}
		})
	}
}

func TestWatchDaemonAndStopAreExclusive(t *testing.T) {
	setupTestEnv(t)

	_, err := executeCommand(t, "watch", "--daemon", "--stop")
	if err == nil {
		t.Error("watch --daemon --stop should fail")
	}
}

func TestWatchStop_NotRunning(t *testing.T) {
	setupTestEnv(t)
	pidFile := t.TempDir() + "/watch.pid"

	out, err := executeCommand(t, "watch", "--stop", "--pid-file", pidFile)
	if err != nil {
		t.Fatalf("watch --stop error = %v", err)
	}
	if out != "Daemon is not running\n" {
		t.Errorf("output = %q", out)
	}
}

func TestDaemonArgs(t *testing.T) {
	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	cmd := &cobra.Command{Use: "watch"}
	cmd.Flags().AddFlagSet(RootCmd.PersistentFlags())

	if err := cmd.Flags().Parse([]string{"--db", "/tmp/c.db", "--strict"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	watchPIDFile = "/tmp/w.pid"
	watchLogFile = "/tmp/w.log"

	args := daemonArgs(cmd)
	for _, want := range []string{"watch", "--db", "/tmp/c.db", "--strict=true", "/tmp/w.pid", "/tmp/w.log"} {
		if !slices.Contains(args, want) {
			t.Errorf("daemonArgs() = %v, missing %q", args, want)
		}
	}
	if slices.Contains(args, "--prefix") {
		t.Errorf("daemonArgs() = %v, should not forward unset --prefix", args)
	}
}
