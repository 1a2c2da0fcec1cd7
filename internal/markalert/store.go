package markalert

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jheinrich-dev/campusplan/internal/errors"
	"github.com/jheinrich-dev/campusplan/internal/jsonfile"
)

// Store reads and writes bot subscription data below root
// (usually <data>/mark_alerts):
//
//	<root>/users/<chatId>.json                subscribed exams per chat
//	<root>/exam_distributions/<key>.json      last distribution snapshot
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) usersDir() string {
	return filepath.Join(s.root, "users")
}

func (s *Store) subscriberPath(chatID int64) string {
	return filepath.Join(s.usersDir(), strconv.FormatInt(chatID, 10)+".json")
}

func (s *Store) snapshotPath(exam Exam) string {
	return filepath.Join(s.root, "exam_distributions", exam.Key()+".json")
}

// LoadSubscribers returns the exam lists of all subscribed chats.
// Loading is best effort: an unreadable directory yields an empty map and
// files that are not well-formed subscriber files are skipped.
func (s *Store) LoadSubscribers() map[int64][]Exam {
	subscribers := make(map[int64][]Exam)

	entries, err := os.ReadDir(s.usersDir())
	if err != nil {
		return subscribers
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		chatID, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), ".json"), 10, 64)
		if err != nil {
			continue
		}
		var exams []Exam
		if err := jsonfile.Read(filepath.Join(s.usersDir(), entry.Name()), &exams); err != nil {
			continue
		}
		subscribers[chatID] = exams
	}
	return subscribers
}

// LoadSubscriber returns the subscribed exams of one chat.
// A missing file is an empty list, not an error.
func (s *Store) LoadSubscriber(chatID int64) ([]Exam, error) {
	path := s.subscriberPath(chatID)
	var exams []Exam
	if err := jsonfile.Read(path, &exams); err != nil {
		if os.IsNotExist(err) {
			return []Exam{}, nil
		}
		return nil, errors.NewStorageError("read", path, err)
	}
	return exams, nil
}

// SaveSubscriber overwrites the subscribed exam list of one chat.
func (s *Store) SaveSubscriber(chatID int64, exams []Exam) error {
	if exams == nil {
		exams = []Exam{}
	}
	path := s.subscriberPath(chatID)
	if err := jsonfile.WriteAtomic(path, exams); err != nil {
		return errors.NewStorageError("write", path, err)
	}
	return nil
}

// LoadSnapshot returns the last persisted distribution of an exam, or nil
// when none exists yet.
func (s *Store) LoadSnapshot(exam Exam) (Distribution, error) {
	path := s.snapshotPath(exam)
	var dist Distribution
	if err := jsonfile.Read(path, &dist); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStorageError("read", path, err)
	}
	return dist, nil
}

// SaveSnapshot overwrites the persisted distribution of an exam.
func (s *Store) SaveSnapshot(exam Exam, dist Distribution) error {
	path := s.snapshotPath(exam)
	if err := jsonfile.WriteAtomic(path, dist); err != nil {
		return errors.NewStorageError("write", path, err)
	}
	return nil
}
