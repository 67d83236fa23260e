package cli

import (
	"io"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{
		"render":     false,
		"view":       false,
		"serve":      false,
		"pack":       false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q is not registered", name)
		}
	}
}

func TestRootCommandMetadata(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != "packview" {
		t.Errorf("Use = %q, want %q", root.Use, "packview")
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root must expose a --config flag")
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = "/nonexistent/packview.toml"
	if err := c.loadConfig(); err == nil {
		t.Fatal("an explicit config path that does not exist must fail")
	}
}
