package brew

import (
	"errors"
	"fmt"
)

// ErrorKind classifies package loading failures. It implements error so a
// kind can be used directly as an errors.Is target:
//
//	if errors.Is(err, brew.NoVersionsInstalled) { ... }
type ErrorKind int

const (
	// AccessError: a store root or package directory could not be read.
	AccessError ErrorKind = iota + 1
	// FilteringError: the store root listing was unusable.
	FilteringError
	// NoVersionsInstalled: a package directory has no version directories.
	NoVersionsInstalled
	// NotAFolder: a store root entry is not a directory.
	NotAFolder
	// ManifestDecodeError: INSTALL_RECEIPT.json exists but cannot be decoded.
	ManifestDecodeError
	// MissingManifestError: INSTALL_RECEIPT.json is absent under strict policy.
	MissingManifestError
	// UnexpectedFolderError: the store root is neither Cellar nor Caskroom.
	UnexpectedFolderError
	// MalformedStructure: a version path is the store container itself.
	MalformedStructure
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case AccessError:
		return "AccessError"
	case FilteringError:
		return "FilteringError"
	case NoVersionsInstalled:
		return "NoVersionsInstalled"
	case NotAFolder:
		return "NotAFolder"
	case ManifestDecodeError:
		return "ManifestDecodeError"
	case MissingManifestError:
		return "MissingManifestError"
	case UnexpectedFolderError:
		return "UnexpectedFolderError"
	case MalformedStructure:
		return "MalformedStructure"
	default:
		return "Unknown"
	}
}

func (k ErrorKind) Error() string {
	return k.String()
}

// ErrDuplicateIdentity is returned when two catalogs being merged share a package.
var ErrDuplicateIdentity = errors.New("duplicate package identity")

// LoadError is the single error type produced while loading packages from
// disk. Package and Path are filled when the failure is tied to an entry.
type LoadError struct {
	Kind    ErrorKind
	Package string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	var msg string
	switch e.Kind {
	case AccessError:
		msg = fmt.Sprintf("cannot read %s", e.Path)
	case FilteringError:
		msg = fmt.Sprintf("cannot list packages in %s", e.Path)
	case NoVersionsInstalled:
		msg = fmt.Sprintf("package %s has no installed versions", e.Package)
	case NotAFolder:
		msg = fmt.Sprintf("package %s is not a folder: %s", e.Package, e.Path)
	case ManifestDecodeError:
		msg = fmt.Sprintf("cannot decode install receipt of %s at %s", e.Package, e.Path)
	case MissingManifestError:
		msg = fmt.Sprintf("install receipt of %s is missing at %s", e.Package, e.Path)
	case UnexpectedFolderError:
		msg = fmt.Sprintf("unexpected store root %s", e.Path)
	case MalformedStructure:
		msg = fmt.Sprintf("malformed package structure for %s at %s", e.Package, e.Path)
	default:
		msg = fmt.Sprintf("package loading failed (%d)", int(e.Kind))
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap returns the wrapped error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind or a LoadError of the same kind.
func (e *LoadError) Is(target error) bool {
	switch t := target.(type) {
	case ErrorKind:
		return e.Kind == t
	case *LoadError:
		return e.Kind == t.Kind
	}
	return false
}

// KindOf extracts the ErrorKind from err, if err wraps a *LoadError.
func KindOf(err error) (ErrorKind, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return 0, false
}
