package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/tasks"
)

var _ list.Item = contactItem{}

// contactItem wraps [models.Contact] to implement [list.Item].
//
// Selection state lives on the session; the item reads it at render time so a
// toggle never requires rebuilding the list.
type contactItem struct {
	contact models.Contact
	session *tasks.Session
}

func (i contactItem) FilterValue() string { return i.contact.Fullname }

func (i contactItem) Title() string {
	marker := "[ ]"
	if i.session != nil && i.session.Selected(i.contact.ID) {
		marker = "[x]"
	}
	return fmt.Sprintf("%s %s", marker, i.contact.Fullname)
}

func (i contactItem) Description() string {
	return i.contact.Phone
}
