package timetable

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jheinrich-dev/campusplan/internal/errors"
	"github.com/jheinrich-dev/campusplan/internal/jsonfile"
	"github.com/jheinrich-dev/campusplan/internal/validate"
	"golang.org/x/sync/errgroup"
)

// Store reads and writes per-student timetable files below root.
// Layout: <root>/<seminarGroupId>/<studentId>.json
type Store struct {
	root string
}

// NewStore creates a store rooted at dir (usually <data>/timetables).
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// ListSeminarGroupIDs returns the ids of all seminar groups that have a
// timetable directory. Entries that do not pass the seminar-group validator
// are skipped. A missing root is an empty result, not an error.
func (s *Store) ListSeminarGroupIDs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.NewStorageError("list", s.root, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !validate.SeminarGroupID(entry.Name()) {
			continue
		}
		ids = append(ids, entry.Name())
	}
	return ids, nil
}

// LoadAllTimetables reads every student timetable of the given seminar
// group. Files are read concurrently; any unreadable or malformed file
// fails the whole load.
func (s *Store) LoadAllTimetables(ctx context.Context, seminarGroupID string) ([]Timetable, error) {
	dir := filepath.Join(s.root, seminarGroupID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewStorageError("list", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}

	// Each goroutine writes its own slot, so no locking is needed.
	timetables := make([]Timetable, len(names))

	g, _ := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			path := filepath.Join(dir, name)
			var tt Timetable
			if err := jsonfile.Read(path, &tt); err != nil {
				return errors.NewStorageError("read", path, err)
			}
			timetables[i] = tt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return timetables, nil
}

// SaveTimetable overwrites the timetable file of one student, creating the
// group directory when needed.
func (s *Store) SaveTimetable(tt Timetable, studentID, seminarGroupID string) error {
	path := filepath.Join(s.root, seminarGroupID, studentID+".json")
	if err := jsonfile.WriteAtomic(path, tt); err != nil {
		return errors.NewStorageError("write", path, err)
	}
	return nil
}
