package timetable

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jheinrich-dev/campusplan/internal/errors"
	"github.com/jheinrich-dev/campusplan/internal/sliceutil"
)

const calendarTimezone = "Europe/Berlin"

// FilterBlocks applies the ignore/show filter to a block list. The two
// modes are mutually exclusive; supplying both is a client error. A filter
// term matches a block by its bare module code or by its "code|group" key.
// Terms that match nothing are silent no-ops.
func FilterBlocks(blocks []Block, ignored, showed []string) ([]Block, error) {
	isIgnoring := len(ignored) > 0
	isShowing := len(showed) > 0

	if isIgnoring && isShowing {
		return nil, errors.ErrConflictingFilters
	}

	switch {
	case isIgnoring:
		ignoredSet := make(map[string]bool, len(ignored))
		for _, key := range ignored {
			ignoredSet[key] = true
		}
		kept := make([]Block, 0, len(blocks))
		for _, b := range blocks {
			if ignoredSet[b.Title] || ignoredSet[FilterKey(b)] {
				continue
			}
			kept = append(kept, b)
		}
		return kept, nil

	case isShowing:
		showedSet := make(map[string]bool, len(showed))
		for _, key := range showed {
			showedSet[key] = true
		}
		kept := make([]Block, 0, len(blocks))
		for _, b := range blocks {
			if showedSet[b.Title] || showedSet[FilterKey(b)] {
				kept = append(kept, b)
			}
		}
		return kept, nil

	default:
		return blocks, nil
	}
}

// FilteredBlocks loads all blocks of a seminar group, deduplicates them by
// identity and applies the ignore/show filter.
func (s *Service) FilteredBlocks(ctx context.Context, seminarGroupID string, ignored, showed []string) ([]Block, error) {
	blocks, err := s.loadBlocks(ctx, seminarGroupID)
	if err != nil {
		s.log.WithError(err).WithField("seminar_group", seminarGroupID).
			Error("Failed to load timetable")
		return nil, fmt.Errorf("failed to load timetable")
	}
	return FilterBlocks(sliceutil.Deduplicate(blocks, identity), ignored, showed)
}

// RenderCalendar renders the filtered timetable of a seminar group as an
// iCalendar document. In show mode every event is marked transparent/free:
// explicitly selected modules are additions layered onto a base calendar
// and must not surface as conflicts. Otherwise events are opaque/busy.
func (s *Service) RenderCalendar(ctx context.Context, seminarGroupID string, ignored, showed []string) (string, error) {
	blocks, err := s.FilteredBlocks(ctx, seminarGroupID, ignored, showed)
	if err != nil {
		return "", err
	}
	isShowing := len(showed) > 0

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName("Stundenplan " + seminarGroupID)
	cal.SetXWRTimezone(calendarTimezone)

	now := time.Now()
	for i, b := range blocks {
		group := ExtractGroup(b)

		summary := b.Description
		if group != NoGroup {
			summary = group + " | " + b.Description
		}
		description := fmt.Sprintf("Modul: %s\nDozent: %s", b.Title, b.Instructor)
		if b.Remarks != "" {
			description += "\nBemerkungen: " + b.Remarks
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%d-%d@campusplan", b.Title, b.Start, i))
		event.SetDtStampTime(now)
		if b.AllDay {
			event.SetAllDayStartAt(time.Unix(b.Start, 0))
			event.SetAllDayEndAt(time.Unix(b.End, 0))
		} else {
			event.SetStartAt(time.Unix(b.Start, 0))
			event.SetEndAt(time.Unix(b.End, 0))
		}
		event.SetSummary(summary)
		event.SetLocation(b.Room)
		event.SetDescription(description)

		// TRANSP for Google/Apple, X-MICROSOFT-CDO-BUSYSTATUS for Outlook.
		if isShowing {
			event.SetProperty(ics.ComponentProperty("TRANSP"), "TRANSPARENT")
			event.SetProperty(ics.ComponentProperty("X-MICROSOFT-CDO-BUSYSTATUS"), "FREE")
		} else {
			event.SetProperty(ics.ComponentProperty("TRANSP"), "OPAQUE")
			event.SetProperty(ics.ComponentProperty("X-MICROSOFT-CDO-BUSYSTATUS"), "BUSY")
		}
	}

	return cal.Serialize(), nil
}

// TodayBlocks returns the filtered blocks whose start falls inside the
// local calendar day containing now.
func (s *Service) TodayBlocks(ctx context.Context, seminarGroupID string, ignored, showed []string) ([]Block, error) {
	blocks, err := s.FilteredBlocks(ctx, seminarGroupID, ignored, showed)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	today := make([]Block, 0)
	for _, b := range blocks {
		start := time.Unix(b.Start, 0)
		if start.After(dayStart) && start.Before(dayEnd) {
			today = append(today, b)
		}
	}
	return today, nil
}

// ImportTimetable persists one student's timetable, overwriting any
// previous import.
func (s *Service) ImportTimetable(tt Timetable, studentID, seminarGroupID string) error {
	if err := s.store.SaveTimetable(tt, studentID, seminarGroupID); err != nil {
		s.log.WithError(err).WithFields(map[string]any{
			"student":       studentID,
			"seminar_group": seminarGroupID,
		}).Error("Failed to save timetable")
		return fmt.Errorf("failed to save timetable")
	}
	s.log.WithFields(map[string]any{
		"student":       studentID,
		"seminar_group": seminarGroupID,
		"blocks":        len(tt),
	}).Info("Timetable saved")
	return nil
}
