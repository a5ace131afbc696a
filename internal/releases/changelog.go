package releases

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/moeryomenko/detect-releases/internal/models"
)

var sectionHeadingPattern = regexp.MustCompile(`^##\s+(.+)$`)

// ExtractChangelogEntry returns the body of the "## <version>" section of a
// Markdown changelog, without the heading. A heading matches when its text is
// the version or the version followed by a space ("## 1.2.0 (2024-01-01)").
// Returns "" when no section matches.
func ExtractChangelogEntry(content, version string) string {
	inSection := false
	var entry []string

	for _, line := range strings.Split(content, "\n") {
		if match := sectionHeadingPattern.FindStringSubmatch(line); match != nil {
			if isVersionHeading(strings.TrimSpace(match[1]), version) {
				inSection = true
				continue
			}
			if inSection {
				break
			}
		}

		if inSection {
			entry = append(entry, line)
		}
	}

	return strings.TrimSpace(strings.Join(entry, "\n"))
}

func isVersionHeading(header, version string) bool {
	return header == version || strings.HasPrefix(header, version+" ")
}

// ChangelogReader loads changelog sections from package directories
type ChangelogReader struct {
	projectPath string
	fileName    string
}

// NewChangelogReader creates a reader for <projectPath>/<packageDir>/<fileName>
func NewChangelogReader(projectPath, fileName string) *ChangelogReader {
	return &ChangelogReader{
		projectPath: projectPath,
		fileName:    fileName,
	}
}

// Read returns the changelog section for the change's version
func (r *ChangelogReader) Read(change models.PackageChange) (string, error) {
	changelogPath := filepath.Join(r.projectPath, filepath.FromSlash(change.PackageDir), r.fileName)

	content, err := os.ReadFile(changelogPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", changelogPath, err)
	}

	return ExtractChangelogEntry(string(content), change.Version), nil
}
