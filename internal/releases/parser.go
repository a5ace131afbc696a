package releases

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/moeryomenko/detect-releases/internal/models"
	"github.com/moeryomenko/detect-releases/internal/utils"
)

var (
	removedVersionPattern = regexp.MustCompile(`^-\s*"version":\s*"([^"]+)"`)
	addedVersionPattern   = regexp.MustCompile(`^\+\s*"version":\s*"([^"]+)"`)
)

// manifest holds the package.json fields the parser needs
type manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// VersionChangeParser detects package version bumps in a unified diff
type VersionChangeParser struct {
	projectPath string
	filePattern *regexp.Regexp
	logger      *utils.Logger
}

// NewVersionChangeParser creates a parser matching <packagesDir>/<name>/<manifestFile>
// diff headers. Manifests are read relative to projectPath.
func NewVersionChangeParser(projectPath, packagesDir, manifestFile string, logger *utils.Logger) *VersionChangeParser {
	pattern := `^diff --git a/(` + regexp.QuoteMeta(packagesDir) + `/[^/]+/` + regexp.QuoteMeta(manifestFile) + `)`
	return &VersionChangeParser{
		projectPath: projectPath,
		filePattern: regexp.MustCompile(pattern),
		logger:      logger,
	}
}

// Parse scans the diff and returns changes in the order they appear.
// A manifest contributes at most one change: the first removed version
// followed by an added version.
func (p *VersionChangeParser) Parse(diff string) ([]models.PackageChange, error) {
	var changes []models.PackageChange

	currentFile := ""
	removedVersion := ""

	for _, line := range strings.Split(diff, "\n") {
		if match := p.filePattern.FindStringSubmatch(line); match != nil {
			currentFile = match[1]
			removedVersion = ""
			continue
		}

		if currentFile == "" {
			continue
		}

		if match := removedVersionPattern.FindStringSubmatch(line); match != nil {
			if removedVersion == "" {
				removedVersion = match[1]
			}
			continue
		}

		match := addedVersionPattern.FindStringSubmatch(line)
		if match == nil || removedVersion == "" {
			continue
		}

		change, err := p.newChange(currentFile, match[1])
		if err != nil {
			return nil, err
		}
		p.logger.Info("Detected %s: %s -> %s", change.Name, removedVersion, change.Version)
		changes = append(changes, change)

		currentFile = ""
		removedVersion = ""
	}

	return changes, nil
}

// newChange reads the manifest at manifestPath to get the declared package name
func (p *VersionChangeParser) newChange(manifestPath, version string) (models.PackageChange, error) {
	m, err := p.readManifest(manifestPath)
	if err != nil {
		return models.PackageChange{}, err
	}

	return models.PackageChange{
		Name:       m.Name,
		Version:    version,
		PackageDir: path.Dir(manifestPath),
	}, nil
}

func (p *VersionChangeParser) readManifest(manifestPath string) (*manifest, error) {
	fullPath := filepath.Join(p.projectPath, filepath.FromSlash(manifestPath))

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", manifestPath, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", manifestPath, err)
	}
	return &m, nil
}
