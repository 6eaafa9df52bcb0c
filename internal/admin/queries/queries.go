// Package queries is the admin listing of contact form queries.
package queries

import (
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
)

const (
	Name = "queries"
	Path = "/queries"
)

// Query is a message sent through the public contact form.
type Query struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Resource builds the queries listing over src.
func Resource(src listing.Source[Query]) listing.Resource[Query] {
	links := listing.AdminLinks(Name)
	table := dataview.MustNew(dataview.Config[Query]{
		Title: "Queries",
		Columns: []dataview.Column[Query]{
			listing.TextColumn("Name", func(q Query) string { return q.Name }),
			listing.TextColumn("Email", func(q Query) string { return q.Email }),
			listing.TextColumn("Subject", func(q Query) string { return q.Subject }),
			listing.StatusColumn("Status", func(q Query) string { return q.Status }),
			listing.DateColumn("Received", func(q Query) time.Time { return q.CreatedAt }),
		},
		Filters: []dataview.Filter[Query]{
			listing.StatusFilter(func(q Query) string { return q.Status },
				dataview.Option{Value: "open", Label: "Open"},
				dataview.Option{Value: "resolved", Label: "Resolved"},
			),
		},
		ID:      func(q Query) string { return q.ID },
		RowLink: func(q Query) string { return links.Show(q.ID) },
		Actions: func(q Query) []dataview.Action { return links.RowActions(q.ID, true) },
	})
	return listing.Resource[Query]{
		Name:      Name,
		Source:    src,
		Table:     table,
		Deletable: true,
		Links:     links,
		Detail: func(q Query) []listing.Field {
			return append(listing.ColumnFields(table, q), listing.Field{Label: "Message", Value: q.Message})
		},
	}
}
