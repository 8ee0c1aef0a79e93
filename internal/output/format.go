package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/brewcat/internal/brew"
)

// Format selects how list-style commands print their results.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
	}
}

// PackageView is the serialized form of a package record. Unknown values
// are omitted rather than written as zero.
type PackageView struct {
	Name                   string     `json:"name" yaml:"name"`
	Kind                   string     `json:"kind" yaml:"kind"`
	Versions               []string   `json:"versions" yaml:"versions"`
	InstalledIntentionally bool       `json:"installed_intentionally" yaml:"installed_intentionally"`
	InstalledOn            *time.Time `json:"installed_on,omitempty" yaml:"installed_on,omitempty"`
	SizeBytes              *int64     `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	Tap                    string     `json:"tap,omitempty" yaml:"tap,omitempty"`
}

// NewPackageView converts a package record for serialization.
func NewPackageView(pkg brew.Package) PackageView {
	v := PackageView{
		Name:                   pkg.Name,
		Kind:                   pkg.Kind.String(),
		Versions:               pkg.Versions,
		InstalledIntentionally: pkg.InstalledIntentionally,
		SizeBytes:              pkg.SizeBytes,
		Tap:                    pkg.Tap,
	}
	if v.Versions == nil {
		v.Versions = []string{}
	}
	if !pkg.InstalledOn.IsZero() {
		t := pkg.InstalledOn.UTC()
		v.InstalledOn = &t
	}
	return v
}

// PackageViews converts a slice of package records.
func PackageViews(pkgs []brew.Package) []PackageView {
	views := make([]PackageView, 0, len(pkgs))
	for _, pkg := range pkgs {
		views = append(views, NewPackageView(pkg))
	}
	return views
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// WritePackages writes pkgs in the requested format.
func WritePackages(w io.Writer, format Format, pkgs []brew.Package) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, PackageViews(pkgs))
	case FormatYAML:
		return WriteYAML(w, PackageViews(pkgs))
	default:
		_, err := io.WriteString(w, RenderPackageTable(pkgs))
		return err
	}
}
