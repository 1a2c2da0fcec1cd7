package timetable

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/jheinrich-dev/campusplan/internal/errors"
)

func TestFilterBlocks(t *testing.T) {
	t.Parallel()

	blocks := []Block{
		{Title: "5CS-PT1-00", Description: "Programmiertechniken 1"},
		{Title: "5CS-MA1-00", Description: "Mathematik 1", Remarks: "Gruppe A"},
		{Title: "5CS-MA1-00", Description: "Mathematik 1", Remarks: "Gruppe B"},
		{Title: "5CS-SE1-00", Description: "Software Engineering 1"},
	}

	t.Run("both filters rejected", func(t *testing.T) {
		t.Parallel()
		_, err := FilterBlocks(blocks, []string{"5CS-PT1-00"}, []string{"5CS-SE1-00"})
		if !errors.Is(err, apperrors.ErrConflictingFilters) {
			t.Errorf("err = %v, want ErrConflictingFilters", err)
		}
	})

	t.Run("ignore by bare code", func(t *testing.T) {
		t.Parallel()
		got, err := FilterBlocks(blocks, []string{"5CS-MA1-00"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, b := range got {
			if b.Title == "5CS-MA1-00" {
				t.Errorf("ignored module still present: %+v", b)
			}
		}
		if len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("ignore by code|group pair", func(t *testing.T) {
		t.Parallel()
		got, err := FilterBlocks(blocks, []string{"5CS-MA1-00|A"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		for _, b := range got {
			if FilterKey(b) == "5CS-MA1-00|A" {
				t.Errorf("ignored group still present: %+v", b)
			}
		}
	})

	t.Run("show keeps only matches", func(t *testing.T) {
		t.Parallel()
		got, err := FilterBlocks(blocks, nil, []string{"5CS-MA1-00|B", "5CS-PT1-00"})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		for _, b := range got {
			if b.Title != "5CS-PT1-00" && FilterKey(b) != "5CS-MA1-00|B" {
				t.Errorf("unexpected block kept: %+v", b)
			}
		}
	})

	t.Run("unknown filter terms are no-ops", func(t *testing.T) {
		t.Parallel()
		got, err := FilterBlocks(blocks, []string{"9XX-NOPE-99"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(blocks) {
			t.Errorf("len = %d, want %d", len(got), len(blocks))
		}
	})

	t.Run("no filters keep everything", func(t *testing.T) {
		t.Parallel()
		got, err := FilterBlocks(blocks, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(blocks) {
			t.Errorf("len = %d, want %d", len(got), len(blocks))
		}
	})
}

func TestService_RenderCalendar(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	seedGroup(t, svc)
	ctx := context.Background()

	t.Run("renders events with German field labels", func(t *testing.T) {
		ics, err := svc.RenderCalendar(ctx, "CS23-2", nil, nil)
		if err != nil {
			t.Fatalf("RenderCalendar() error = %v", err)
		}

		if !strings.Contains(ics, "BEGIN:VCALENDAR") || !strings.Contains(ics, "END:VCALENDAR") {
			t.Error("output is not a calendar document")
		}
		if !strings.Contains(ics, "Stundenplan CS23-2") {
			t.Error("calendar name missing")
		}
		if !strings.Contains(ics, "Modul: 5CS-PT1-00") {
			t.Error("module code missing from description")
		}
		if !strings.Contains(ics, "Dozent: Meier") {
			t.Error("instructor missing from description")
		}
		// Grouped block summaries carry the group prefix.
		if !strings.Contains(ics, "A | Mathematik 1") {
			t.Error("grouped summary missing")
		}
		// Identical blocks from two students collapse into one event.
		if got := strings.Count(ics, "Programmiertechniken 1"); got != 1 {
			t.Errorf("Programmiertechniken 1 appears %d times, want 1", got)
		}
		if !strings.Contains(ics, "TRANSP:OPAQUE") {
			t.Error("unfiltered events must be opaque")
		}
	})

	t.Run("ignore filter removes module events", func(t *testing.T) {
		ics, err := svc.RenderCalendar(ctx, "CS23-2", []string{"5CS-MA1-00"}, nil)
		if err != nil {
			t.Fatalf("RenderCalendar() error = %v", err)
		}
		if strings.Contains(ics, "Mathematik 1") {
			t.Error("ignored module still rendered")
		}
		if !strings.Contains(ics, "X-MICROSOFT-CDO-BUSYSTATUS:BUSY") {
			t.Error("ignore mode events must be busy")
		}
	})

	t.Run("show filter marks events transparent", func(t *testing.T) {
		ics, err := svc.RenderCalendar(ctx, "CS23-2", nil, []string{"5CS-PT1-00"})
		if err != nil {
			t.Fatalf("RenderCalendar() error = %v", err)
		}
		if strings.Contains(ics, "Mathematik 1") {
			t.Error("unselected module rendered in show mode")
		}
		if !strings.Contains(ics, "TRANSP:TRANSPARENT") {
			t.Error("show mode events must be transparent")
		}
		if !strings.Contains(ics, "X-MICROSOFT-CDO-BUSYSTATUS:FREE") {
			t.Error("show mode events must be free")
		}
	})

	t.Run("conflicting filters rejected", func(t *testing.T) {
		_, err := svc.RenderCalendar(ctx, "CS23-2", []string{"a"}, []string{"b"})
		if !errors.Is(err, apperrors.ErrConflictingFilters) {
			t.Errorf("err = %v, want ErrConflictingFilters", err)
		}
	})
}

func TestService_TodayBlocks(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	now := time.Now()
	// Anchor at local midday so the test cannot straddle a day boundary.
	noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	today := Timetable{
		{Title: "5CS-PT1-00", Description: "Programmiertechniken 1", Start: noon.Unix(), End: noon.Add(90 * time.Minute).Unix()},
	}
	other := Timetable{
		{Title: "5CS-MA1-00", Description: "Mathematik 1", Start: noon.AddDate(0, 0, -2).Unix(), End: noon.AddDate(0, 0, -2).Add(time.Hour).Unix()},
		{Title: "5CS-SE1-00", Description: "Software Engineering 1", Start: noon.AddDate(0, 0, 3).Unix(), End: noon.AddDate(0, 0, 3).Add(time.Hour).Unix()},
	}
	if err := svc.store.SaveTimetable(today, "s111111", "CS23-2"); err != nil {
		t.Fatal(err)
	}
	if err := svc.store.SaveTimetable(other, "s222222", "CS23-2"); err != nil {
		t.Fatal(err)
	}

	blocks, err := svc.TodayBlocks(context.Background(), "CS23-2", nil, nil)
	if err != nil {
		t.Fatalf("TodayBlocks() error = %v", err)
	}
	if len(blocks) != 1 || blocks[0].Title != "5CS-PT1-00" {
		t.Errorf("TodayBlocks() = %v, want only today's block", blocks)
	}
}

func TestService_ImportTimetable(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	tt := Timetable{{Title: "5CS-PT1-00", Description: "Programmiertechniken 1"}}

	if err := svc.ImportTimetable(tt, "s123456", "CS23-2"); err != nil {
		t.Fatalf("ImportTimetable() error = %v", err)
	}

	loaded, err := svc.store.LoadAllTimetables(context.Background(), "CS23-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0][0].Title != "5CS-PT1-00" {
		t.Errorf("persisted timetable = %v", loaded)
	}
}
