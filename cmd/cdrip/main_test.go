package main

import (
	"strings"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	want := []string{"rip", "watch", "discid", "lookup", "inspect", "history", "status", "test-notify", "config"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Fatalf("subcommand %q not registered: %v", name, err)
		}
	}
}

func TestStatusOfflineReportsLocalChecks(t *testing.T) {
	env := setupCLITestEnv(t)
	useFakeDrive(t, nil)

	out, _, err := runCLI(t, []string{"status", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "== Local ==")
	requireContains(t, out, "Library directory")
	requireContains(t, out, "Cover art")
	if strings.Contains(out, "== Network ==") {
		t.Fatalf("offline status probed the network:\n%s", out)
	}
}

func TestTestNotifyDisabled(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications are disabled")
}
