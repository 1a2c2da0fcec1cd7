package sliceutil

import (
	"testing"
)

type testItem struct {
	ID   string
	Name string
}

func TestDeduplicate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		items   []testItem
		keyFunc func(testItem) string
		want    []testItem
	}{
		{
			name: "No duplicates",
			items: []testItem{
				{ID: "1", Name: "A"},
				{ID: "2", Name: "B"},
				{ID: "3", Name: "C"},
			},
			keyFunc: func(t testItem) string { return t.ID },
			want: []testItem{
				{ID: "1", Name: "A"},
				{ID: "2", Name: "B"},
				{ID: "3", Name: "C"},
			},
		},
		{
			name: "With duplicates - preserve first",
			items: []testItem{
				{ID: "1", Name: "A"},
				{ID: "2", Name: "B"},
				{ID: "1", Name: "C"},
				{ID: "3", Name: "D"},
			},
			keyFunc: func(t testItem) string { return t.ID },
			want: []testItem{
				{ID: "1", Name: "A"},
				{ID: "2", Name: "B"},
				{ID: "3", Name: "D"},
			},
		},
		{
			name:    "Nil slice",
			items:   nil,
			keyFunc: func(t testItem) string { return t.ID },
			want:    []testItem{},
		},
		{
			name:    "Empty slice",
			items:   []testItem{},
			keyFunc: func(t testItem) string { return t.ID },
			want:    []testItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Deduplicate(tt.items, tt.keyFunc)
			if len(got) != len(tt.want) {
				t.Fatalf("Deduplicate() length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Deduplicate()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDistinct(t *testing.T) {
	t.Parallel()

	t.Run("strings preserve first-occurrence order", func(t *testing.T) {
		t.Parallel()
		got := Distinct([]string{"5CS-PT1-00", "5CS-SE1-00", "5CS-PT1-00", "5CS-DB1-00"})
		want := []string{"5CS-PT1-00", "5CS-SE1-00", "5CS-DB1-00"}

		if len(got) != len(want) {
			t.Fatalf("Distinct() length = %d, want %d", len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("Distinct()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("nil input yields empty output", func(t *testing.T) {
		t.Parallel()
		got := Distinct[string](nil)
		if got == nil || len(got) != 0 {
			t.Errorf("Distinct(nil) = %v, want empty slice", got)
		}
	})
}
