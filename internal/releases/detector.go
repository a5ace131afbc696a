package releases

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/moeryomenko/detect-releases/internal/models"
	"github.com/moeryomenko/detect-releases/internal/utils"
)

// Detector coordinates diff retrieval, version detection and changelog extraction
type Detector struct {
	diffs      DiffSource
	parser     *VersionChangeParser
	changelogs *ChangelogReader
	logger     *utils.Logger
}

// NewDetector creates a new release detector
func NewDetector(
	diffs DiffSource,
	parser *VersionChangeParser,
	changelogs *ChangelogReader,
	logger *utils.Logger,
) *Detector {
	return &Detector{
		diffs:      diffs,
		parser:     parser,
		changelogs: changelogs,
		logger:     logger,
	}
}

// Detect returns one release per version bump found in the PR diff,
// in diff order. A missing changelog yields an empty changelog, not an error.
func (d *Detector) Detect(prNumber string) ([]models.Release, error) {
	diff, err := d.diffs.Diff(prNumber)
	if err != nil {
		return nil, err
	}

	changes, err := d.parser.Parse(diff)
	if err != nil {
		return nil, fmt.Errorf("failed to parse version changes: %w", err)
	}

	d.logger.Info("Found %d version changes", len(changes))

	releases := make([]models.Release, 0, len(changes))
	for _, change := range changes {
		changelog, err := d.changelogs.Read(change)
		if err != nil {
			d.logger.Warn("Could not read changelog for %s: %v", change.Name, err)
			changelog = ""
		}

		releases = append(releases, models.NewRelease(change, changelog))
	}

	return releases, nil
}

// WriteReleases writes releases as an indented JSON array
func WriteReleases(w io.Writer, releases []models.Release) error {
	if releases == nil {
		releases = []models.Release{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	// Changelogs are Markdown; keep <, > and & readable.
	enc.SetEscapeHTML(false)

	if err := enc.Encode(releases); err != nil {
		return fmt.Errorf("failed to write releases: %w", err)
	}
	return nil
}
