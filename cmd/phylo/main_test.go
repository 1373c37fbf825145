package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	want := []string{"classify", "validate", "stats", "runs", "audit", "reclassify", "export-registry"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestRootHelp(t *testing.T) {
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"--help"})

	if err := root.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(buf.String(), "taxonomy") {
		t.Errorf("help does not describe the tool:\n%s", buf.String())
	}
}

func TestRootRejectsBadLogLevel(t *testing.T) {
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"runs", "--db", filepath.Join(t.TempDir(), "x.db"), "--log-level", "loud"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}
