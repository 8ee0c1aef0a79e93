// Package output renders catalog data for the terminal.
//
// Tables are plain text with optional ANSI color (disabled when stdout is
// not a TTY or NO_COLOR is set). Structured output for scripting is written
// as JSON or YAML through the same package views.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/scanner"
	"github.com/blackwell-systems/brewcat/internal/store"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderPackageTable renders packages in the order given.
func RenderPackageTable(packages []brew.Package) string {
	if len(packages) == 0 {
		return "No packages found.\n"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%-24s %-8s %-18s %-10s %-16s %s\n",
		"Package", "Kind", "Version", "Size", "Installed", "Origin")
	sb.WriteString(strings.Repeat("─", 90))
	sb.WriteString("\n")

	for _, pkg := range packages {
		origin := padRight(formatOrigin(pkg), 10)
		if pkg.InstalledIntentionally {
			origin = colorize(colorGreen, origin)
		} else {
			origin = colorize(colorGray, origin)
		}

		fmt.Fprintf(&sb, "%-24s %-8s %-18s %-10s %-16s %s\n",
			truncate(pkg.Name, 24),
			pkg.Kind,
			truncate(formatVersions(pkg.Versions), 18),
			formatSize(pkg.SizeBytes),
			formatInstalled(pkg),
			strings.TrimRight(origin, " "))
	}

	return sb.String()
}

// RenderPackageSummary renders a one-line count of formulae, casks and
// requested installs plus the total size.
func RenderPackageSummary(packages []brew.Package) string {
	var formulae, casks, requested int
	var total uint64
	for _, pkg := range packages {
		switch pkg.Kind {
		case brew.KindFormula:
			formulae++
		case brew.KindCask:
			casks++
		}
		if pkg.InstalledIntentionally {
			requested++
		}
		total += uint64(pkg.Size())
	}
	return fmt.Sprintf("%d formulae, %d casks (%d requested) · %s\n",
		formulae, casks, requested, humanize.IBytes(total))
}

// RenderPackageDetail renders every field of one package. receipt is the
// formula's install receipt and may be nil.
func RenderPackageDetail(pkg brew.Package, receipt *brew.Receipt) string {
	var sb strings.Builder

	row := func(label, value string) {
		fmt.Fprintf(&sb, "%-12s %s\n", label+":", value)
	}

	row("Package", pkg.Name)
	row("Kind", pkg.Kind.String())
	if len(pkg.Versions) == 0 {
		row("Versions", "not installed")
	} else {
		row("Versions", strings.Join(pkg.Versions, ", "))
	}

	origin := formatOrigin(pkg)
	if pkg.InstalledIntentionally && receipt != nil && receipt.InstalledAsDependency {
		origin += " (also a dependency)"
	}
	row("Origin", origin)
	row("Installed", formatInstalled(pkg))
	if pkg.SizeBytes != nil {
		row("Size", fmt.Sprintf("%s (%s bytes)", formatSize(pkg.SizeBytes), humanize.Comma(*pkg.SizeBytes)))
	} else {
		row("Size", "unknown")
	}

	tap := pkg.Tap
	if receipt != nil {
		if t := receipt.Tap(); t != "" {
			tap = t
		}
		if at := receipt.InstalledAt(); !at.IsZero() {
			row("Receipt", fmt.Sprintf("%s (%s)", at.Format(time.DateTime), humanize.Time(at)))
		}
	}
	if tap != "" {
		row("Tap", tap)
	}

	return sb.String()
}

// RenderChanges renders the difference between the previous and the new
// catalog after a scan.
func RenderChanges(changes scanner.Changes) string {
	if changes.Empty() {
		return "No changes since last scan.\n"
	}

	var sb strings.Builder
	section := func(title, color, marker string, pkgs []brew.Package) {
		if len(pkgs) == 0 {
			return
		}
		fmt.Fprintf(&sb, "%s (%d):\n", title, len(pkgs))
		for _, pkg := range pkgs {
			fmt.Fprintf(&sb, "  %s %s %s\n", colorize(color, marker), pkg.Identity, formatVersions(pkg.Versions))
		}
	}

	section("Added", colorGreen, "+", changes.Added)
	section("Updated", colorYellow, "~", changes.Updated)
	section("Removed", colorRed, "-", changes.Removed)
	return sb.String()
}

// RenderScanRuns renders scan history, newest first.
func RenderScanRuns(runs []*store.ScanRun) string {
	if len(runs) == 0 {
		return "No scans recorded.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-16s %-10s %-9s %-10s %s\n", "Started", "Status", "Packages", "Duration", "Error")
	sb.WriteString(strings.Repeat("─", 70))
	sb.WriteString("\n")

	for _, run := range runs {
		status := padRight(run.Status, 10)
		switch run.Status {
		case store.RunSucceeded:
			status = colorize(colorGreen, status)
		case store.RunFailed:
			status = colorize(colorRed, status)
		}

		duration := "-"
		if d := run.Duration(); d > 0 {
			duration = d.Round(time.Millisecond).String()
		}

		fmt.Fprintf(&sb, "%-16s %s %-9d %-10s %s\n",
			humanize.Time(run.StartedAt),
			status,
			run.PackageCount,
			duration,
			truncate(run.Error, 40))
	}
	return sb.String()
}

func formatOrigin(pkg brew.Package) string {
	if pkg.InstalledIntentionally {
		return "requested"
	}
	return "dependency"
}

// formatVersions shows the first version and how many others are kept.
func formatVersions(versions []string) string {
	switch len(versions) {
	case 0:
		return "-"
	case 1:
		return versions[0]
	default:
		return fmt.Sprintf("%s (+%d)", versions[0], len(versions)-1)
	}
}

func formatInstalled(pkg brew.Package) string {
	if pkg.InstalledOn.IsZero() {
		return "unknown"
	}
	return humanize.Time(pkg.InstalledOn)
}

// formatSize renders a byte count in IEC units, or "-" when unknown.
func formatSize(size *int64) string {
	if size == nil {
		return "-"
	}
	return humanize.IBytes(uint64(*size))
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
