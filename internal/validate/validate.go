// Package validate provides regex guards for externally supplied identifiers.
// Every identifier that ends up in a filesystem path must pass its validator
// first; this is the only directory-traversal protection in the request path.
package validate

import "regexp"

var (
	seminarGroupIDRegex = regexp.MustCompile(`^[A-Z]+\d+-[12]$`)
	studentIDRegex      = regexp.MustCompile(`^s\d+$`)
	moduleCodeRegex     = regexp.MustCompile(`^\d[A-Z]+-\w+-\d+$`)
	groupNameRegex      = regexp.MustCompile(`^\w+$`)
)

// SeminarGroupID reports whether s is a well-formed seminar group id, e.g. "CS23-2".
func SeminarGroupID(s string) bool {
	return seminarGroupIDRegex.MatchString(s)
}

// StudentID reports whether s is a well-formed student id, e.g. "s123456".
func StudentID(s string) bool {
	return studentIDRegex.MatchString(s)
}

// ModuleCode reports whether s is a well-formed Campus Dual module code, e.g. "5CS-PT1-00".
func ModuleCode(s string) bool {
	return moduleCodeRegex.MatchString(s)
}

// GroupName reports whether s is a well-formed sub-group name.
func GroupName(s string) bool {
	return groupNameRegex.MatchString(s)
}
