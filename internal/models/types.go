package models

// PackageChange represents a package whose manifest version was bumped in a diff
type PackageChange struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	PackageDir string `json:"package_dir"`
}

// Release represents a detected release with its changelog section
type Release struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Changelog string `json:"changelog"`
}

// NewRelease builds a release for a detected package change
func NewRelease(change PackageChange, changelog string) Release {
	return Release{
		Name:      change.Name,
		Version:   change.Version,
		Changelog: changelog,
	}
}
