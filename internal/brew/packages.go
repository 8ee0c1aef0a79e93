package brew

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// brewInfoOutput represents the structure of `brew info --json=v2` output
type brewInfoOutput struct {
	Formulae []brewFormulaInfo `json:"formulae"`
	Casks    []brewCaskInfo    `json:"casks"`
}

// brewFormulaInfo represents detailed formula information
type brewFormulaInfo struct {
	Name      string                 `json:"name"`
	FullName  string                 `json:"full_name"`
	Tap       string                 `json:"tap"`
	Installed []brewInstalledVersion `json:"installed"`
}

// brewInstalledVersion represents an installed keg
type brewInstalledVersion struct {
	Version            string `json:"version"`
	InstalledOnRequest bool   `json:"installed_on_request"`
}

// brewCaskInfo represents detailed cask information
type brewCaskInfo struct {
	Token     string  `json:"token"`
	FullToken string  `json:"full_token"`
	Tap       string  `json:"tap"`
	Installed *string `json:"installed"`
}

// runBrew runs brew with args and returns stdout. stderr is folded into the
// error so callers can show it.
func runBrew(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "brew", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, fmt.Errorf("brew %s failed: %w (stderr: %s)", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return output, fmt.Errorf("brew %s failed: %w", args[0], err)
	}
	return output, nil
}

// GetBrewPrefix returns the Homebrew installation prefix reported by brew.
func GetBrewPrefix(ctx context.Context) (string, error) {
	output, err := runBrew(ctx, "--prefix")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// DefaultPrefix returns the conventional Homebrew prefix for the running platform.
func DefaultPrefix() string {
	switch {
	case runtime.GOOS == "darwin" && runtime.GOARCH == "arm64":
		return "/opt/homebrew"
	case runtime.GOOS == "darwin":
		return "/usr/local"
	default:
		return "/home/linuxbrew/.linuxbrew"
	}
}

// ResolvePrefix returns configured if set, otherwise asks brew, otherwise
// falls back to DefaultPrefix. The returned prefix must contain a Cellar.
func ResolvePrefix(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return checkPrefix(configured)
	}
	if prefix, err := GetBrewPrefix(ctx); err == nil && prefix != "" {
		return checkPrefix(prefix)
	} else if err != nil {
		logger().Debug("brew --prefix unavailable, using platform default", "error", err)
	}
	return checkPrefix(DefaultPrefix())
}

func checkPrefix(prefix string) (string, error) {
	if !IsDirectory(filepath.Join(prefix, CellarDir)) {
		return "", fmt.Errorf("no %s found under Homebrew prefix %s", CellarDir, prefix)
	}
	return prefix, nil
}

// StoreRoots returns the Cellar and Caskroom paths under prefix.
func StoreRoots(prefix string) (cellar, caskroom string) {
	return filepath.Join(prefix, CellarDir), filepath.Join(prefix, CaskroomDir)
}

// GetPackageInfo asks brew for a package that is not in the local catalog.
// The result is a detail record: it carries no versions.
func GetPackageInfo(ctx context.Context, name string, kind Kind) (*Package, error) {
	flag := "--formula"
	if kind == KindCask {
		flag = "--cask"
	}
	output, err := runBrew(ctx, "info", "--json=v2", flag, name)
	if err != nil {
		return nil, err
	}
	return parseInfoOutput(output, name)
}

func parseInfoOutput(output []byte, name string) (*Package, error) {
	var infoOutput brewInfoOutput
	if err := json.Unmarshal(output, &infoOutput); err != nil {
		return nil, fmt.Errorf("failed to parse brew info output: %w", err)
	}

	if len(infoOutput.Formulae) > 0 {
		formula := infoOutput.Formulae[0]
		pkg := NewDetailPackage(formula.Name, KindFormula)
		pkg.Tap = formula.Tap
		if len(formula.Installed) > 0 {
			pkg.InstalledIntentionally = formula.Installed[0].InstalledOnRequest
		}
		return &pkg, nil
	}

	if len(infoOutput.Casks) > 0 {
		cask := infoOutput.Casks[0]
		pkg := NewDetailPackage(cask.Token, KindCask)
		pkg.Tap = cask.Tap
		pkg.InstalledIntentionally = true
		return &pkg, nil
	}

	return nil, fmt.Errorf("package %s not found", name)
}

// Search runs `brew search` restricted to one kind and returns matching names.
func Search(ctx context.Context, query string, kind Kind) ([]string, error) {
	flag := "--formula"
	if kind == KindCask {
		flag = "--cask"
	}
	output, err := runBrew(ctx, "search", flag, query)
	if err != nil {
		// brew exits non-zero with empty stderr when nothing matches
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(strings.TrimSpace(string(exitErr.Stderr))) == 0 {
			return []string{}, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("brew not found in PATH: %w", err)
		}
		return nil, err
	}
	return ParseSearchOutput(string(output)), nil
}

// ParseSearchOutput splits brew search output into package names. Blank
// lines, "==>" section headers and hint lines are skipped wherever they
// appear rather than assuming a fixed trailing line.
func ParseSearchOutput(output string) []string {
	names := []string{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "==>") {
			continue
		}
		if strings.ContainsAny(line, " \t") {
			// "If you meant ..." and similar hints
			continue
		}
		names = append(names, line)
	}
	return names
}
