package main

import (
	"os"
	"path/filepath"
	"testing"
)

func runWith(t *testing.T, args ...string) int {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"roomchat"}, args...)
	defer func() { os.Args = saved }()
	return run()
}

func TestRunExitCodes(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	tests := []struct {
		name     string
		args     []string
		expected int
	}{
		{"version", []string{"--version"}, 0},
		{"unknown flag", []string{"--nope"}, 1},
		{"missing motd", []string{"--motd", missing}, 2},
		{"bad bind", []string{"--bind", "127.0.0.1:badport"}, 3},
		{"missing identity", []string{"--bind", "127.0.0.1:0", "-i", missing, "--ssh-bind", "127.0.0.1:0"}, 4},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if actual := runWith(t, test.args...); actual != test.expected {
				t.Errorf("Got: %d; Expected: %d", actual, test.expected)
			}
		})
	}
}
