package listing

import (
	"net/http"
	"net/url"

	"github.com/hopebridge/hopebridge/internal/dataview"
)

// Links builds the URLs of one mounted resource.
type Links struct {
	Base string
}

// AdminLinks are the links of the admin resource name.
func AdminLinks(name string) Links {
	return Links{Base: "/admin/" + name}
}

// Show is the detail page of id.
func (l Links) Show(id string) string {
	return l.Base + "/" + url.PathEscape(id)
}

// ViewAction links to the detail page.
func (l Links) ViewAction(id string) dataview.Action {
	return dataview.Action{Label: "View", Href: l.Show(id), Method: http.MethodGet}
}

// DeleteAction posts to the delete route after confirmation.
func (l Links) DeleteAction(id string) dataview.Action {
	return dataview.Action{
		Label:   "Delete",
		Href:    l.Show(id) + "/delete",
		Method:  http.MethodPost,
		Confirm: "Delete this entry?",
		Danger:  true,
	}
}

// RowActions are the standard View and, when deletable, Delete actions.
func (l Links) RowActions(id string, deletable bool) []dataview.Action {
	actions := []dataview.Action{l.ViewAction(id)}
	if deletable {
		actions = append(actions, l.DeleteAction(id))
	}
	return actions
}
