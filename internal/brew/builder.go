package brew

import (
	"context"
	"path/filepath"
)

// BuildPackage assembles a package record from the facts gathered by a scan.
// Creation time and size are best-effort and left empty when unreadable.
func BuildPackage(ctx context.Context, name string, root RootKind, packageDir string, versions []string, intentional bool) Package {
	kind, _ := root.PackageKind()
	return Package{
		Identity:               Identity{Name: name, Kind: kind},
		InstalledOn:            CreationTime(packageDir),
		Versions:               versions,
		InstalledIntentionally: intentional,
		SizeBytes:              RecursiveSize(ctx, packageDir),
	}
}

// VersionPath returns the path of a version directory inside packageDir.
func VersionPath(packageDir, version string) string {
	return filepath.Join(packageDir, version)
}
