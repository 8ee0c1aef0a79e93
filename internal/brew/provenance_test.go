package brew

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeVersionDir creates <dir>/<root>/<name>/<version> and returns its path.
func makeVersionDir(t *testing.T, root, name, version string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), root, name, version)
	if err := os.MkdirAll(p, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	return p
}

func writeReceipt(t *testing.T, versionDir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(versionDir, ReceiptFile), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestResolveProvenance_Formula(t *testing.T) {
	tests := []struct {
		name     string
		receipt  string // "" means no receipt file
		strict   bool
		want     bool
		wantKind ErrorKind
	}{
		{name: "installed on request", receipt: `{"installed_on_request": true}`, want: true},
		{name: "installed as dependency", receipt: `{"installed_on_request": false, "installed_as_dependency": true}`, want: false},
		{name: "extra fields ignored", receipt: `{"homebrew_version":"4.2.0","installed_on_request":true,"source":{"tap":"homebrew/core"}}`, want: true},
		{name: "malformed json", receipt: `{"installed_on_request": tru`, wantKind: ManifestDecodeError},
		{name: "type mismatch", receipt: `{"installed_on_request": "yes"}`, wantKind: ManifestDecodeError},
		{name: "missing key", receipt: `{"installed_as_dependency": false}`, wantKind: ManifestDecodeError},
		{name: "missing receipt lenient", want: false},
		{name: "missing receipt strict", strict: true, wantKind: MissingManifestError},
		{name: "strict with receipt", receipt: `{"installed_on_request": true}`, strict: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := makeVersionDir(t, CellarDir, "wget", "1.24.5")
			if tt.receipt != "" {
				writeReceipt(t, dir, tt.receipt)
			}

			got, err := ResolveProvenance(RootCellar, "wget", dir, tt.strict)
			if tt.wantKind != 0 {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("ResolveProvenance() error = %v, want kind %s", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveProvenance() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveProvenance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveProvenance_CaskAlwaysIntentional(t *testing.T) {
	receipts := []string{"", `{"installed_on_request": false}`, `not json`}

	for _, receipt := range receipts {
		dir := makeVersionDir(t, CaskroomDir, "firefox", "124.0")
		if receipt != "" {
			writeReceipt(t, dir, receipt)
		}
		for _, strict := range []bool{false, true} {
			got, err := ResolveProvenance(RootCaskroom, "firefox", dir, strict)
			if err != nil {
				t.Fatalf("ResolveProvenance(cask, receipt=%q, strict=%v) error: %v", receipt, strict, err)
			}
			if !got {
				t.Errorf("ResolveProvenance(cask, receipt=%q, strict=%v) = false, want true", receipt, strict)
			}
		}
	}
}

func TestResolveProvenance_ContainerAsVersionPath(t *testing.T) {
	for _, container := range []string{CellarDir, CaskroomDir} {
		for _, root := range []RootKind{RootCellar, RootCaskroom} {
			dir := filepath.Join(t.TempDir(), container)
			if err := os.MkdirAll(dir, 0755); err != nil {
				t.Fatal(err)
			}
			writeReceipt(t, dir, `{"installed_on_request": true}`)

			_, err := ResolveProvenance(root, "broken", dir, false)
			if !errors.Is(err, MalformedStructure) {
				t.Errorf("ResolveProvenance(%s, %s) error = %v, want MalformedStructure", root.DirName(), container, err)
			}
		}
	}
}

func TestResolveProvenance_UnknownRoot(t *testing.T) {
	dir := makeVersionDir(t, "Kegs", "wget", "1.0")
	_, err := ResolveProvenance(RootUnknown, "wget", dir, false)
	if !errors.Is(err, UnexpectedFolderError) {
		t.Fatalf("ResolveProvenance() error = %v, want UnexpectedFolderError", err)
	}
}

func TestReadReceipt(t *testing.T) {
	dir := makeVersionDir(t, CellarDir, "git", "2.44.0")
	writeReceipt(t, dir, `{"installed_on_request":true,"time":1700000000,"source":{"tap":"homebrew/core"}}`)

	r, err := ReadReceipt(dir)
	if err != nil {
		t.Fatalf("ReadReceipt() error: %v", err)
	}
	if r.Tap() != "homebrew/core" {
		t.Errorf("Tap() = %q, want homebrew/core", r.Tap())
	}
	if r.InstalledAt().Unix() != 1700000000 {
		t.Errorf("InstalledAt() = %v, want unix 1700000000", r.InstalledAt())
	}

	empty := &Receipt{}
	if empty.Tap() != "" || !empty.InstalledAt().IsZero() {
		t.Error("empty receipt should have no tap and zero install time")
	}
}
