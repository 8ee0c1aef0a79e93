package brew

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ReceiptFile is the per-version metadata file Homebrew writes for formulae.
const ReceiptFile = "INSTALL_RECEIPT.json"

// Receipt is the subset of INSTALL_RECEIPT.json brewcat reads.
type Receipt struct {
	// InstalledOnRequest is a pointer so a missing key can be told apart from false.
	InstalledOnRequest    *bool          `json:"installed_on_request"`
	InstalledAsDependency bool           `json:"installed_as_dependency"`
	Time                  int64          `json:"time,omitempty"`
	Source                *receiptSource `json:"source,omitempty"`
}

type receiptSource struct {
	Tap string `json:"tap"`
}

// Tap returns the tap the formula was installed from, or "".
func (r *Receipt) Tap() string {
	if r.Source == nil {
		return ""
	}
	return r.Source.Tap
}

// InstalledAt returns the install time recorded in the receipt, or zero.
func (r *Receipt) InstalledAt() time.Time {
	if r.Time <= 0 {
		return time.Time{}
	}
	return time.Unix(r.Time, 0)
}

// ParseReceipt decodes receipt bytes. A receipt without installed_on_request
// is rejected: it cannot answer the only question brewcat asks of it.
func ParseReceipt(data []byte) (*Receipt, error) {
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.InstalledOnRequest == nil {
		return nil, errors.New("installed_on_request key not found")
	}
	return &r, nil
}

// ReadReceipt reads and decodes the receipt in versionDir.
func ReadReceipt(versionDir string) (*Receipt, error) {
	data, err := os.ReadFile(filepath.Join(versionDir, ReceiptFile))
	if err != nil {
		return nil, err
	}
	r, err := ParseReceipt(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ReceiptFile, err)
	}
	return r, nil
}

// ResolveProvenance reports whether a package was installed on request.
//
// Casks are always intentional. Formulae consult the receipt of the first
// version; a missing receipt fails under strict mode and counts as a
// dependency install otherwise.
func ResolveProvenance(root RootKind, name, firstVersionPath string, strict bool) (bool, error) {
	if base := filepath.Base(firstVersionPath); base == CellarDir || base == CaskroomDir {
		return false, &LoadError{Kind: MalformedStructure, Package: name, Path: firstVersionPath}
	}

	switch root {
	case RootCaskroom:
		return true, nil

	case RootCellar:
		receiptPath := filepath.Join(firstVersionPath, ReceiptFile)
		data, err := os.ReadFile(receiptPath)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return false, &LoadError{Kind: AccessError, Package: name, Path: receiptPath, Err: err}
			}
			if strict {
				return false, &LoadError{Kind: MissingManifestError, Package: name, Path: receiptPath}
			}
			logger().Debug("install receipt missing, assuming dependency", "package", name, "path", receiptPath)
			return false, nil
		}

		receipt, err := ParseReceipt(data)
		if err != nil {
			return false, &LoadError{Kind: ManifestDecodeError, Package: name, Path: receiptPath, Err: err}
		}
		return *receipt.InstalledOnRequest, nil

	default:
		return false, &LoadError{Kind: UnexpectedFolderError, Package: name, Path: filepath.Dir(filepath.Dir(firstVersionPath))}
	}
}
