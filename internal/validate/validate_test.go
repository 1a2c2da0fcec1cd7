package validate

import "testing"

func TestSeminarGroupID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  bool
	}{
		{"CS23-2", true},
		{"WI21-1", true},
		{"cs23-2", false},
		{"CS23-3", false},
		{"CS23", false},
		{"CS-2", false},
		{"", false},
		{"../etc", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := SeminarGroupID(tt.input); got != tt.want {
				t.Errorf("SeminarGroupID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStudentID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  bool
	}{
		{"s123456", true},
		{"s1", true},
		{"s12a", false},
		{"123456", false},
		{"S123456", false},
		{"", false},
		{"s123/..", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := StudentID(tt.input); got != tt.want {
				t.Errorf("StudentID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestModuleCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  bool
	}{
		{"5CS-PT1-00", true},
		{"5CS-WPF2-12", true},
		{"CS-PT1-00", false},
		{"5cs-PT1-00", false},
		{"5CS-PT1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ModuleCode(tt.input); got != tt.want {
				t.Errorf("ModuleCode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGroupName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  bool
	}{
		{"A", true},
		{"2b", true},
		{"", false},
		{"A B", false},
		{"A|B", false},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			t.Parallel()
			if got := GroupName(tt.input); got != tt.want {
				t.Errorf("GroupName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
