package timetable

import (
	"context"
	"fmt"

	"github.com/jheinrich-dev/campusplan/internal/logger"
	"github.com/jheinrich-dev/campusplan/internal/sliceutil"
)

// Service exposes the derived views over stored timetables: seminar group
// list, module catalog, per-module block info and calendar rendering.
// The catalog is re-derived on every call; at dozens of students per group
// that is cheaper than keeping an invalidation scheme correct.
type Service struct {
	store *Store
	log   *logger.Logger
}

// NewService creates a timetable service on top of the given store.
func NewService(store *Store, log *logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log.WithModule("timetable"),
	}
}

// SeminarGroupIDs lists all known seminar group ids.
func (s *Service) SeminarGroupIDs() ([]string, error) {
	ids, err := s.store.ListSeminarGroupIDs()
	if err != nil {
		s.log.WithError(err).Error("Seminar group ids couldn't be loaded")
		return nil, fmt.Errorf("seminar group ids couldn't be loaded")
	}
	return ids, nil
}

// loadBlocks flattens every student timetable of a group into one block list.
func (s *Service) loadBlocks(ctx context.Context, seminarGroupID string) ([]Block, error) {
	timetables, err := s.store.LoadAllTimetables(ctx, seminarGroupID)
	if err != nil {
		return nil, err
	}
	var blocks []Block
	for _, tt := range timetables {
		blocks = append(blocks, tt...)
	}
	return blocks, nil
}

// Modules derives the module catalog of a seminar group: one entry per
// distinct module code in first-seen order. Groups lists the distinct
// sub-group labels of the module and is omitted when the module has none.
func (s *Service) Modules(ctx context.Context, seminarGroupID string) ([]Module, error) {
	blocks, err := s.loadBlocks(ctx, seminarGroupID)
	if err != nil {
		s.log.WithError(err).WithField("seminar_group", seminarGroupID).
			Error("Modules couldn't be loaded")
		return nil, fmt.Errorf("modules couldn't be loaded")
	}

	codes := make([]string, 0, len(blocks))
	for _, b := range blocks {
		codes = append(codes, b.Title)
	}

	modules := make([]Module, 0)
	for _, code := range sliceutil.Distinct(codes) {
		var name string
		var groups []string
		for _, b := range blocks {
			if b.Title != code {
				continue
			}
			if name == "" {
				name = b.Description
			}
			if g := ExtractGroup(b); g != NoGroup {
				groups = append(groups, g)
			}
		}
		modules = append(modules, Module{
			Code:   code,
			Name:   name,
			Groups: sliceutil.Distinct(groups),
		})
	}
	return modules, nil
}

// HasGroups reports whether the given module of a seminar group carries at
// least one sub-group.
func (s *Service) HasGroups(ctx context.Context, seminarGroupID, moduleCode string) (bool, error) {
	modules, err := s.Modules(ctx, seminarGroupID)
	if err != nil {
		return false, err
	}
	for _, m := range modules {
		if m.Code == moduleCode {
			return len(m.Groups) > 0, nil
		}
	}
	return false, nil
}

// ModuleInfo returns the deduplicated blocks of one module. When group is
// non-empty only blocks of that sub-group are kept; ungrouped sessions are
// always included alongside the selected group's sessions.
func (s *Service) ModuleInfo(ctx context.Context, seminarGroupID, moduleCode, group string) ([]Block, error) {
	blocks, err := s.loadBlocks(ctx, seminarGroupID)
	if err != nil {
		s.log.WithError(err).WithField("seminar_group", seminarGroupID).
			Error("Module info couldn't be loaded")
		return nil, fmt.Errorf("module info couldn't be loaded")
	}

	filtered := make([]Block, 0)
	for _, b := range blocks {
		if b.Title != moduleCode {
			continue
		}
		if group != "" {
			if g := ExtractGroup(b); g != group && g != NoGroup {
				continue
			}
		}
		filtered = append(filtered, b)
	}
	return sliceutil.Deduplicate(filtered, identity), nil
}
