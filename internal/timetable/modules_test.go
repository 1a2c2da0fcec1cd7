package timetable

import (
	"context"
	"io"
	"testing"

	"github.com/jheinrich-dev/campusplan/internal/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := NewStore(t.TempDir())
	return NewService(store, logger.NewWithWriter("error", io.Discard))
}

func seedGroup(t *testing.T, svc *Service) {
	t.Helper()
	// Two students sharing one module; one module with sub-groups.
	first := Timetable{
		{Title: "5CS-PT1-00", Description: "Programmiertechniken 1", Start: 100, End: 200, Instructor: "Meier"},
		{Title: "5CS-MA1-00", Description: "Mathematik 1", Start: 300, End: 400, Remarks: "Gruppe A"},
		{Title: "5CS-MA1-00", Description: "Mathematik 1", Start: 500, End: 600, Remarks: "Gruppe B"},
	}
	second := Timetable{
		// Identical to the first student's block: must collapse.
		{Title: "5CS-PT1-00", Description: "Programmiertechniken 1", Start: 100, End: 200, Instructor: "Meier"},
		{Title: "5CS-MA1-00", Description: "Mathematik 1", Start: 700, End: 800},
	}
	if err := svc.store.SaveTimetable(first, "s111111", "CS23-2"); err != nil {
		t.Fatal(err)
	}
	if err := svc.store.SaveTimetable(second, "s222222", "CS23-2"); err != nil {
		t.Fatal(err)
	}
}

func TestService_Modules(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	seedGroup(t, svc)

	modules, err := svc.Modules(context.Background(), "CS23-2")
	if err != nil {
		t.Fatalf("Modules() error = %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("Modules() returned %d entries, want 2", len(modules))
	}

	byCode := make(map[string]Module)
	for _, m := range modules {
		byCode[m.Code] = m
	}

	pt1, ok := byCode["5CS-PT1-00"]
	if !ok {
		t.Fatal("missing module 5CS-PT1-00")
	}
	if pt1.Name != "Programmiertechniken 1" {
		t.Errorf("PT1 name = %q", pt1.Name)
	}
	if len(pt1.Groups) != 0 {
		t.Errorf("PT1 groups = %v, want none", pt1.Groups)
	}

	ma1, ok := byCode["5CS-MA1-00"]
	if !ok {
		t.Fatal("missing module 5CS-MA1-00")
	}
	if len(ma1.Groups) != 2 || ma1.Groups[0] != "A" || ma1.Groups[1] != "B" {
		t.Errorf("MA1 groups = %v, want [A B]", ma1.Groups)
	}
}

func TestService_HasGroups(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	seedGroup(t, svc)
	ctx := context.Background()

	if got, err := svc.HasGroups(ctx, "CS23-2", "5CS-MA1-00"); err != nil || !got {
		t.Errorf("HasGroups(MA1) = %v, %v, want true", got, err)
	}
	if got, err := svc.HasGroups(ctx, "CS23-2", "5CS-PT1-00"); err != nil || got {
		t.Errorf("HasGroups(PT1) = %v, %v, want false", got, err)
	}
	if got, err := svc.HasGroups(ctx, "CS23-2", "5CS-XX1-00"); err != nil || got {
		t.Errorf("HasGroups(unknown) = %v, %v, want false", got, err)
	}
}

func TestService_ModuleInfo(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	seedGroup(t, svc)
	ctx := context.Background()

	t.Run("without group filter deduplicates shared blocks", func(t *testing.T) {
		blocks, err := svc.ModuleInfo(ctx, "CS23-2", "5CS-PT1-00", "")
		if err != nil {
			t.Fatalf("ModuleInfo() error = %v", err)
		}
		if len(blocks) != 1 {
			t.Errorf("ModuleInfo() returned %d blocks, want 1 (identical blocks collapse)", len(blocks))
		}
	})

	t.Run("group filter keeps selected group and ungrouped sessions", func(t *testing.T) {
		blocks, err := svc.ModuleInfo(ctx, "CS23-2", "5CS-MA1-00", "A")
		if err != nil {
			t.Fatalf("ModuleInfo() error = %v", err)
		}
		// Gruppe A block plus the ungrouped block; Gruppe B is dropped.
		if len(blocks) != 2 {
			t.Fatalf("ModuleInfo() returned %d blocks, want 2", len(blocks))
		}
		for _, b := range blocks {
			if g := ExtractGroup(b); g != "A" && g != NoGroup {
				t.Errorf("unexpected group %q in filtered result", g)
			}
		}
	})
}
