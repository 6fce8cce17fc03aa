package tasks

import (
	"github.com/femiolat/blastr/internal/models"
)

// Session holds the mutable client state for one upload lifecycle: the preview
// rows, the selection, and the job identifiers. A new upload always creates a
// fresh Session; fields are never merged across uploads.
//
// Selection is keyed by the stable contact id rather than list position, so
// reordering a rendered view cannot corrupt the target resolution.
//
// Session is confined to the event loop that owns it (CLI action or TUI
// update function) and is not safe for concurrent use.
type Session struct {
	jobID     string
	sendJobID string
	rows      []models.Contact
	selected  map[string]bool
}

// NewSession creates a session for a freshly fetched preview with an empty selection.
func NewSession(jobID string, rows []models.Contact) *Session {
	return &Session{
		jobID:    jobID,
		rows:     rows,
		selected: make(map[string]bool, len(rows)),
	}
}

// JobID returns the upload job id this session's preview belongs to.
func (s *Session) JobID() string { return s.jobID }

// Rows returns the preview rows in backend order.
func (s *Session) Rows() []models.Contact { return s.rows }

// Count returns the number of preview rows.
func (s *Session) Count() int { return len(s.rows) }

// SetSendJob records the send job id once a send has been accepted.
func (s *Session) SetSendJob(id string) { s.sendJobID = id }

// SendJobID returns the most recently accepted send job id, if any.
func (s *Session) SendJobID() string { return s.sendJobID }

// SelectAll marks every row as selected.
func (s *Session) SelectAll() {
	for _, row := range s.rows {
		s.selected[row.ID] = true
	}
}

// DeselectAll clears the selection.
func (s *Session) DeselectAll() {
	clear(s.selected)
}

// Toggle flips the selection flag for the row with the given id and returns
// the new state. Unknown ids are ignored and report false.
func (s *Session) Toggle(id string) bool {
	if !s.has(id) {
		return false
	}
	s.selected[id] = !s.selected[id]
	return s.selected[id]
}

// Selected reports whether the row with the given id is selected.
func (s *Session) Selected(id string) bool {
	return s.selected[id]
}

// SelectedCount returns the number of selected rows.
func (s *Session) SelectedCount() int {
	n := 0
	for _, row := range s.rows {
		if s.selected[row.ID] {
			n++
		}
	}
	return n
}

// ResolveTargets resolves the selection into a concrete target list.
//
// With useAll, the full preview sequence is returned regardless of selection
// state. Otherwise the result is the ordered subsequence of selected rows,
// preserving backend order with no gaps.
func (s *Session) ResolveTargets(useAll bool) []models.Contact {
	if useAll {
		targets := make([]models.Contact, len(s.rows))
		copy(targets, s.rows)
		return targets
	}

	targets := make([]models.Contact, 0, len(s.rows))
	for _, row := range s.rows {
		if s.selected[row.ID] {
			targets = append(targets, row)
		}
	}
	return targets
}

func (s *Session) has(id string) bool {
	for _, row := range s.rows {
		if row.ID == id {
			return true
		}
	}
	return false
}
