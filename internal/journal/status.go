package journal

import "strings"

// Status is the normalized persisted status of an Entry.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// DisplayStatus is the three-state classification shown to users.
type DisplayStatus string

const (
	DisplayOpen       DisplayStatus = "open"
	DisplayInProgress DisplayStatus = "in_progress"
	DisplayComplete   DisplayStatus = "complete"
)

// NormalizeStatus maps any stored status to in_progress or complete.
// Only the exact literal "complete" is complete; "draft", "" and
// anything unknown are in_progress.
func NormalizeStatus(raw string) Status {
	if raw == string(StatusComplete) {
		return StatusComplete
	}
	return StatusInProgress
}

// HasContent reports whether the entry carries non-blank writing.
func HasContent(e *Entry) bool {
	return e != nil && strings.TrimSpace(e.Content) != ""
}

// DisplayStatusOf classifies an entry, nil meaning no entry for the week.
// Blank content is always Open, whatever the stored status says.
func DisplayStatusOf(e *Entry) DisplayStatus {
	if !HasContent(e) {
		return DisplayOpen
	}
	if NormalizeStatus(e.Status) == StatusComplete {
		return DisplayComplete
	}
	return DisplayInProgress
}

// ToggleComplete flips complete <-> in_progress. It reports false and
// leaves the entry untouched when there is nothing written to complete.
func ToggleComplete(e *Entry) (Status, bool) {
	if !HasContent(e) {
		if e == nil {
			return StatusInProgress, false
		}
		return NormalizeStatus(e.Status), false
	}

	next := StatusComplete
	if NormalizeStatus(e.Status) == StatusComplete {
		next = StatusInProgress
	}
	e.Status = string(next)
	return next, true
}
