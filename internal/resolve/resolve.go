// Package resolve selects target visit folders from the date-prefixed naming
// convention YYYYMMDD_<restaurant name>.
package resolve

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/blogpipe/internal/model"
	"github.com/sells-group/blogpipe/internal/storage"
)

var (
	// ErrNoVisitFolders means nothing under the input root matched the
	// naming pattern.
	ErrNoVisitFolders = eris.New("resolve: no visit folders match the naming pattern")

	// ErrNotEnoughFolders means the requested latest-N count exceeds the
	// available matches.
	ErrNotEnoughFolders = eris.New("resolve: fewer matching folders than requested")
)

var folderNameRE = regexp.MustCompile(`^(\d{8})_(.+)$`)

// ParseFolderName parses a YYYYMMDD_<name> folder name. Restaurant names are
// NFC-normalized; Korean names uploaded from macOS arrive decomposed.
// Malformed names (including impossible dates such as day 32) return an error.
func ParseFolderName(folderName string) (model.VisitFolder, error) {
	m := folderNameRE.FindStringSubmatch(folderName)
	if m == nil {
		return model.VisitFolder{}, eris.Errorf("resolve: invalid folder name format: %s", folderName)
	}

	visitDate := m[1]
	if _, err := time.Parse("20060102", visitDate); err != nil {
		return model.VisitFolder{}, eris.Wrapf(err, "resolve: invalid visit date in %s", folderName)
	}

	name := strings.TrimSpace(norm.NFC.String(m[2]))
	if name == "" {
		return model.VisitFolder{}, eris.Errorf("resolve: empty restaurant name in %s", folderName)
	}

	return model.VisitFolder{
		FolderName:     folderName,
		VisitDate:      visitDate,
		RestaurantName: name,
	}, nil
}

// ListVisitFolders lists the input root and returns every directory whose name
// parses as a visit folder. Non-matching entries are silently discarded.
func ListVisitFolders(ctx context.Context, backend storage.Backend, inputRoot string) ([]model.VisitFolder, error) {
	entries, err := backend.List(ctx, inputRoot)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: list input root")
	}

	var folders []model.VisitFolder
	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}
		folder, err := ParseFolderName(entry.Name)
		if err != nil {
			continue
		}
		folder.SourceID = entry.ID
		folders = append(folders, folder)
	}
	return folders, nil
}

// SelectLatest sorts candidates by visit date descending and returns the top
// N. The tie-break on equal dates is folder name, for deterministic output.
func SelectLatest(folders []model.VisitFolder, latest int) ([]model.VisitFolder, error) {
	if latest < 1 {
		return nil, eris.Errorf("resolve: latest must be >= 1, got %d", latest)
	}
	if len(folders) == 0 {
		return nil, ErrNoVisitFolders
	}
	if latest > len(folders) {
		return nil, eris.Wrapf(ErrNotEnoughFolders, "requested %d, found %d", latest, len(folders))
	}

	sorted := make([]model.VisitFolder, len(folders))
	copy(sorted, folders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].VisitDate != sorted[j].VisitDate {
			return sorted[i].VisitDate > sorted[j].VisitDate
		}
		return sorted[i].FolderName < sorted[j].FolderName
	})
	return sorted[:latest], nil
}
