package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/vault"
)

func setupCommandTestVault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("ZETTEL_ROOT_DIR", "")
	t.Setenv("ZETTEL_CONFIG", "")
	t.Setenv("ZETTEL_LOG_LEVEL", "")
	t.Setenv("HOME", dir)

	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("a.md", "---\nscope: project\ntype: main\ncreated: 2024-01-01\nmodified: 2024-01-01\n---\nsee [[b]] and [[website-parser-test|the parser]]\n")
	write("b.md", "no front matter\n")
	write("website-parser-test.md", "---\nsource: https://example.com\nscope: web\ntype: source\ncreated: 2024-01-02\nmodified: 2024-01-03\n---\nParsing websites.\n")
	return dir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "zettel "+Version {
		t.Errorf("version output = %q", out)
	}
}

func TestScanCmd_JSON(t *testing.T) {
	dir := setupCommandTestVault(t)
	out, err := runCommand(t, "--root", dir, "scan", "--json")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var stats vault.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if stats.Total != 3 || stats.Parsed != 2 || stats.ByClass["missing_header"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestScanCmd_NoRoot(t *testing.T) {
	setupCommandTestVault(t)
	t.Chdir(t.TempDir())
	_, err := runCommand(t, "scan")
	var ue *zettelError
	if !errors.As(err, &ue) {
		t.Fatalf("expected user error, got %v", err)
	}
	if !strings.Contains(ue.message, "No vault directory") {
		t.Errorf("message = %q", ue.message)
	}
}

func TestScanCmd_MissingDirectory(t *testing.T) {
	dir := setupCommandTestVault(t)
	_, err := runCommand(t, "--root", filepath.Join(dir, "nope"), "scan")
	if err == nil || !strings.Contains(err.Error(), "Cannot read vault directory") {
		t.Fatalf("expected listing error, got %v", err)
	}
}

func TestFindCmd(t *testing.T) {
	dir := setupCommandTestVault(t)

	out, err := runCommand(t, "--root", dir, "find", "website-parser-test.md")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.Contains(out, "source:   https://example.com") {
		t.Errorf("find output missing metadata:\n%s", out)
	}

	_, err = runCommand(t, "--root", dir, "find", "b.md")
	if err == nil || !strings.Contains(err.Error(), "not found: b.md") {
		t.Errorf("b.md has no header and must not be found, got %v", err)
	}

	_, err = runCommand(t, "--root", dir, "find", "parser")
	if err == nil || !strings.Contains(err.Error(), "website-parser-test.md") {
		t.Errorf("expected a suggestion, got %v", err)
	}
}

func TestFindCmd_LookupFromConfig(t *testing.T) {
	dir := setupCommandTestVault(t)
	cfgDir := filepath.Join(dir, ".zettel")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"),
		[]byte("[vault]\nlookup = \"website-parser-test.md\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "--root", dir, "find")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.Contains(out, "website-parser-test.md") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestShowCmd(t *testing.T) {
	dir := setupCommandTestVault(t)

	out, err := runCommand(t, "--root", dir, "show", "a.md")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "see [b](b) and [the parser](website-parser-test)") {
		t.Errorf("body not normalized: %q", out)
	}

	out, err = runCommand(t, "--root", dir, "show", "--html", "a.md")
	if err != nil {
		t.Fatalf("show --html: %v", err)
	}
	if !strings.Contains(out, `<a href="b">b</a>`) {
		t.Errorf("html output = %q", out)
	}
}

func TestListCmd_FilterAndJSON(t *testing.T) {
	dir := setupCommandTestVault(t)

	out, err := runCommand(t, "--root", dir, "list", "--kind", "source", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var notes []note.Note
	if err := json.Unmarshal([]byte(out), &notes); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(notes) != 1 || notes[0].Name != "website-parser-test.md" || notes[0].Metadata.Kind != note.KindSource {
		t.Errorf("notes = %+v", notes)
	}

	if _, err := runCommand(t, "--root", dir, "list", "--kind", "draft"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestLinksCmd(t *testing.T) {
	dir := setupCommandTestVault(t)
	out, err := runCommand(t, "--root", dir, "links", "website-parser-test.md")
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	backlinks := out[strings.Index(out, "Backlinks"):]
	if !strings.Contains(backlinks, "a.md") {
		t.Errorf("a.md should be a backlink:\n%s", out)
	}
}

func TestSearchCmd(t *testing.T) {
	dir := setupCommandTestVault(t)
	out, err := runCommand(t, "--root", dir, "search", "websites", "--json")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, `"name": "website-parser-test.md"`) {
		t.Errorf("unexpected search output:\n%s", out)
	}

	if _, err := runCommand(t, "--root", dir, "search", "x"); err == nil {
		t.Error("single-character query should be rejected")
	}
}

func TestConfigCmd(t *testing.T) {
	dir := setupCommandTestVault(t)
	out, err := runCommand(t, "--root", dir, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "root_dir") || !strings.Contains(out, dir) {
		t.Errorf("config output:\n%s", out)
	}

	out, err = runCommand(t, "--root", dir, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(dir, ".zettel", "config.toml") {
		t.Errorf("config path = %q", out)
	}
}

func TestUserError_IncludesHint(t *testing.T) {
	err := userError("Something failed", "Try again")
	if !strings.Contains(err.Error(), "Hint: Try again") {
		t.Errorf("Error() = %q", err.Error())
	}
}
