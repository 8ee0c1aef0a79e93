package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/output"
	"github.com/blackwell-systems/brewcat/internal/store"
)

// newPrefix creates a Homebrew prefix with two formulae and one cask.
func newPrefix(t *testing.T) string {
	t.Helper()
	prefix := t.TempDir()

	formula := func(name, version, receipt string) {
		dir := filepath.Join(prefix, brew.CellarDir, name, version)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if receipt != "" {
			if err := os.WriteFile(filepath.Join(dir, brew.ReceiptFile), []byte(receipt), 0644); err != nil {
				t.Fatal(err)
			}
		}
	}
	formula("wget", "1.24.5", `{"installed_on_request": true, "installed_as_dependency": true, "time": 1700000000, "source": {"tap": "homebrew/core"}}`)
	formula("openssl@3", "3.2.1", `{"installed_on_request": false}`)

	if err := os.MkdirAll(filepath.Join(prefix, brew.CaskroomDir, "firefox", "124.0"), 0755); err != nil {
		t.Fatal(err)
	}
	return prefix
}

func TestScanListShowStatus(t *testing.T) {
	setupTestEnv(t)
	prefix := newPrefix(t)
	dbFile := filepath.Join(t.TempDir(), "brewcat.db")

	out, err := executeCommand(t, "scan", "--prefix", prefix, "--db", dbFile)
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}
	for _, want := range []string{"Scanned 3 packages", "2 formulae, 1 casks (2 requested)", "Added (3)"} {
		if !strings.Contains(out, want) {
			t.Errorf("scan output missing %q\nGot:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "scan", "--prefix", prefix, "--db", dbFile)
	if err != nil {
		t.Fatalf("second scan error = %v", err)
	}
	if !strings.Contains(out, "No changes since last scan") {
		t.Errorf("rescan should report no changes\nGot:\n%s", out)
	}

	out, err = executeCommand(t, "list", "--db", dbFile, "--format", "json")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	var views []output.PackageView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out)
	}
	if len(views) != 3 {
		t.Errorf("list returned %d packages, want 3", len(views))
	}

	out, err = executeCommand(t, "list", "--db", dbFile, "--dependencies")
	if err != nil {
		t.Fatalf("list --dependencies error = %v", err)
	}
	if !strings.Contains(out, "openssl@3") || strings.Contains(out, "wget") {
		t.Errorf("list --dependencies output:\n%s", out)
	}

	out, err = executeCommand(t, "list", "--db", dbFile, "--kind", "cask")
	if err != nil {
		t.Fatalf("list --kind cask error = %v", err)
	}
	if !strings.Contains(out, "firefox") || strings.Contains(out, "openssl@3") {
		t.Errorf("list --kind cask output:\n%s", out)
	}

	out, err = executeCommand(t, "show", "wget", "--db", dbFile, "--prefix", prefix)
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, want := range []string{"wget", "1.24.5", "requested (also a dependency)", "homebrew/core", "Receipt:"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q\nGot:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "status", "--db", dbFile)
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	for _, want := range []string{"stopped", "2 formulae · 1 casks", "succeeded"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q\nGot:\n%s", want, out)
		}
	}
}

func TestScan_StrictFailureKeepsCatalog(t *testing.T) {
	setupTestEnv(t)
	prefix := newPrefix(t)
	dbFile := filepath.Join(t.TempDir(), "brewcat.db")

	if _, err := executeCommand(t, "scan", "--prefix", prefix, "--db", dbFile); err != nil {
		t.Fatalf("scan error = %v", err)
	}

	if err := os.MkdirAll(filepath.Join(prefix, brew.CellarDir, "jq", "1.7.1"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := executeCommand(t, "scan", "--prefix", prefix, "--db", dbFile, "--strict")
	if !errors.Is(err, brew.MissingManifestError) {
		t.Fatalf("strict scan error = %v, want MissingManifestError", err)
	}
	if msg := FormatError(err); !strings.Contains(msg, "--strict") || !strings.Contains(msg, "jq") {
		t.Errorf("FormatError() = %q, want a hint naming jq and --strict", msg)
	}

	db, err := store.New(dbFile)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	catalog, err := db.LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	if catalog.Len() != 3 {
		t.Errorf("stored catalog has %d packages, want the previous 3", catalog.Len())
	}

	out, err := executeCommand(t, "status", "--db", dbFile)
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "1 new, 0 removed since last scan") {
		t.Errorf("status should report jq as new\nGot:\n%s", out)
	}

	// Lenient mode counts jq as a dependency.
	if _, err := executeCommand(t, "scan", "--prefix", prefix, "--db", dbFile); err != nil {
		t.Fatalf("lenient scan error = %v", err)
	}
}

func TestExecuteCommand_FreshContextPerRun(t *testing.T) {
	setupTestEnv(t)
	prefix := newPrefix(t)
	dbFile := filepath.Join(t.TempDir(), "brewcat.db")

	// The first subtest's context is cancelled when it returns.
	t.Run("first", func(t *testing.T) {
		if _, err := executeCommand(t, "scan", "--prefix", prefix, "--db", dbFile); err != nil {
			t.Fatalf("scan error = %v", err)
		}
	})
	t.Run("second", func(t *testing.T) {
		if _, err := executeCommand(t, "scan", "--prefix", prefix, "--db", dbFile); err != nil {
			t.Fatalf("scan after an earlier run error = %v", err)
		}
	})
}

func TestList_Validation(t *testing.T) {
	setupTestEnv(t)
	dbFile := filepath.Join(t.TempDir(), "brewcat.db")

	tests := []struct {
		name string
		args []string
	}{
		{name: "bad kind", args: []string{"list", "--db", dbFile, "--kind", "bottle"}},
		{name: "bad format", args: []string{"list", "--db", dbFile, "--format", "xml"}},
		{name: "exclusive origins", args: []string{"list", "--db", dbFile, "--intentional", "--dependencies"}},
		{name: "extra args", args: []string{"list", "--db", dbFile, "wget"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(t, tt.args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestList_EmptyCatalog(t *testing.T) {
	setupTestEnv(t)
	dbFile := filepath.Join(t.TempDir(), "brewcat.db")

	out, err := executeCommand(t, "list", "--db", dbFile)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "No packages found") {
		t.Errorf("list output = %q", out)
	}
}

func TestStatus_NoDatabase(t *testing.T) {
	setupTestEnv(t)
	dbFile := filepath.Join(t.TempDir(), "missing", "brewcat.db")

	out, err := executeCommand(t, "status", "--db", dbFile)
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "not created yet") {
		t.Errorf("status output = %q", out)
	}
}

func TestHintFor_CoversEveryKind(t *testing.T) {
	kinds := []brew.ErrorKind{
		brew.AccessError,
		brew.FilteringError,
		brew.NoVersionsInstalled,
		brew.NotAFolder,
		brew.ManifestDecodeError,
		brew.MissingManifestError,
		brew.UnexpectedFolderError,
		brew.MalformedStructure,
	}
	for _, kind := range kinds {
		err := &brew.LoadError{Kind: kind, Package: "wget"}
		if hintFor(err) == "" {
			t.Errorf("no hint for %v", kind)
		}
	}

	if hintFor(store.ErrNotInitialized) == "" {
		t.Error("no hint for ErrNotInitialized")
	}
	if hintFor(errors.New("boom")) != "" {
		t.Error("unrelated errors should have no hint")
	}
}

func TestFilterPackages(t *testing.T) {
	pkgs := []brew.Package{
		{Identity: brew.Identity{Name: "wget", Kind: brew.KindFormula}, InstalledIntentionally: true},
		{Identity: brew.Identity{Name: "openssl@3", Kind: brew.KindFormula}},
		{Identity: brew.Identity{Name: "firefox", Kind: brew.KindCask}, InstalledIntentionally: true},
	}
	formula := brew.KindFormula

	tests := []struct {
		name   string
		kind   *brew.Kind
		origin string
		want   int
	}{
		{name: "all", want: 3},
		{name: "formulae", kind: &formula, want: 2},
		{name: "intentional", origin: "intentional", want: 2},
		{name: "dependencies", origin: "dependencies", want: 1},
		{name: "intentional formulae", kind: &formula, origin: "intentional", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterPackages(pkgs, tt.kind, tt.origin); len(got) != tt.want {
				t.Errorf("filterPackages() returned %d packages, want %d", len(got), tt.want)
			}
		})
	}
}
