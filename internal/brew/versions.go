package brew

import "os"

// EnumerateVersions lists the version directories of a package directory in
// filesystem enumeration order. ok is false when packageDir cannot be read;
// an empty slice with ok == true means the folder exists but holds no
// versions, which callers treat as NoVersionsInstalled.
func EnumerateVersions(packageDir string) (versions []string, ok bool) {
	entries, err := os.ReadDir(packageDir)
	if err != nil {
		return nil, false
	}

	versions = make([]string, 0, len(entries))
	for _, entry := range entries {
		if isHidden(entry.Name()) {
			continue
		}
		versions = append(versions, entry.Name())
	}
	return versions, true
}
