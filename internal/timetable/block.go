// Package timetable holds the class-schedule domain: block model, per-group
// file store, derived module catalog and iCalendar rendering.
package timetable

import "regexp"

// NoGroup is returned by ExtractGroup for blocks without an embedded
// sub-group label.
const NoGroup = "no group"

var groupRegex = regexp.MustCompile(`Gruppe (\w+)`)

// Block is one scheduled timetable entry as imported from Campus Dual.
// Title carries the module code, Description the human-readable module name.
// Start and End are epoch seconds. The remaining fields are display data
// that is stored and passed through unmodified.
type Block struct {
	Title       string `json:"title"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	AllDay      bool   `json:"allDay"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Editable    bool   `json:"editable"`
	Room        string `json:"room"`
	SRoom       string `json:"sroom"`
	Instructor  string `json:"instructor"`
	SInstructor string `json:"sinstructor"`
	Remarks     string `json:"remarks"`
}

// Timetable is the ordered block list of one student within one seminar group.
type Timetable []Block

// Module is one derived catalog entry for a seminar group.
type Module struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Groups []string `json:"groups,omitempty"`
}

// ExtractGroup returns the sub-group label embedded in the block's remarks
// ("Gruppe <name>"), or NoGroup when no label is present.
func ExtractGroup(b Block) string {
	if b.Remarks == "" {
		return NoGroup
	}
	match := groupRegex.FindStringSubmatch(b.Remarks)
	if match == nil {
		return NoGroup
	}
	return match[1]
}

// FilterKey returns the key an ignore/show filter term is matched against:
// "<code>|<group>" for grouped blocks, the bare module code otherwise.
func FilterKey(b Block) string {
	group := ExtractGroup(b)
	if group == NoGroup {
		return b.Title
	}
	return b.Title + "|" + group
}

// Block is a struct of comparable fields, so identity for deduplication is
// plain field-by-field equality. identity exists to make that key function
// explicit at the dedup call sites.
func identity(b Block) Block { return b }
