package brew

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseSearchOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name:   "plain list with trailing newline",
			output: "wget\nwget2\n",
			want:   []string{"wget", "wget2"},
		},
		{
			name:   "no trailing newline keeps last result",
			output: "wget\nwget2",
			want:   []string{"wget", "wget2"},
		},
		{
			name:   "section headers and blank lines",
			output: "==> Formulae\nfirefoxpwa\n\n==> Casks\nfirefox\nfirefox@beta\n",
			want:   []string{"firefoxpwa", "firefox", "firefox@beta"},
		},
		{
			name:   "hint lines skipped",
			output: "If you meant \"wgte\" specifically:\nwget\n",
			want:   []string{"wget"},
		},
		{
			name:   "empty output",
			output: "",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSearchOutput(tt.output)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSearchOutput() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseInfoOutput(t *testing.T) {
	formula := []byte(`{"formulae":[{"name":"jq","full_name":"jq","tap":"homebrew/core","installed":[{"version":"1.7.1","installed_on_request":true}]}],"casks":[]}`)
	pkg, err := parseInfoOutput(formula, "jq")
	if err != nil {
		t.Fatalf("parseInfoOutput(formula) error: %v", err)
	}
	if pkg.Kind != KindFormula || pkg.Name != "jq" || pkg.Tap != "homebrew/core" {
		t.Errorf("unexpected formula detail: %+v", pkg)
	}
	if !pkg.InstalledIntentionally {
		t.Error("InstalledIntentionally = false, want true")
	}
	if len(pkg.Versions) != 0 {
		t.Errorf("detail records carry no versions, got %v", pkg.Versions)
	}

	cask := []byte(`{"formulae":[],"casks":[{"token":"rectangle","full_token":"rectangle","tap":"homebrew/cask","installed":null}]}`)
	pkg, err = parseInfoOutput(cask, "rectangle")
	if err != nil {
		t.Fatalf("parseInfoOutput(cask) error: %v", err)
	}
	if pkg.Kind != KindCask || pkg.Name != "rectangle" {
		t.Errorf("unexpected cask detail: %+v", pkg)
	}

	if _, err := parseInfoOutput([]byte(`{"formulae":[],"casks":[]}`), "ghost"); err == nil {
		t.Error("parseInfoOutput(empty) should fail")
	}
	if _, err := parseInfoOutput([]byte(`not json`), "x"); err == nil {
		t.Error("parseInfoOutput(invalid) should fail")
	}
}

func TestResolvePrefix_Configured(t *testing.T) {
	prefix := t.TempDir()
	if _, err := ResolvePrefix(t.Context(), prefix); err == nil {
		t.Error("ResolvePrefix() should fail when the prefix has no Cellar")
	}

	if err := os.MkdirAll(filepath.Join(prefix, CellarDir), 0755); err != nil {
		t.Fatal(err)
	}
	got, err := ResolvePrefix(t.Context(), prefix)
	if err != nil {
		t.Fatalf("ResolvePrefix() error: %v", err)
	}
	if got != prefix {
		t.Errorf("ResolvePrefix() = %q, want %q", got, prefix)
	}

	cellar, caskroom := StoreRoots(prefix)
	if filepath.Base(cellar) != CellarDir || filepath.Base(caskroom) != CaskroomDir {
		t.Errorf("StoreRoots() = %q, %q", cellar, caskroom)
	}
}
