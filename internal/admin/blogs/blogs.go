// Package blogs is the admin listing of blog posts.
package blogs

import (
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
)

const (
	Name = "blogs"
	Path = "/blogs"
)

// Blog is one published or draft post.
type Blog struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Views       int       `json:"views"`
	Excerpt     string    `json:"excerpt"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Resource builds the blogs listing over src.
func Resource(src listing.Source[Blog]) listing.Resource[Blog] {
	links := listing.AdminLinks(Name)
	table := dataview.MustNew(dataview.Config[Blog]{
		Title: "Blogs",
		Columns: []dataview.Column[Blog]{
			listing.TextColumn("Title", func(b Blog) string { return b.Title }),
			listing.TextColumn("Author", func(b Blog) string { return b.Author }),
			listing.TextColumn("Category", func(b Blog) string { return b.Category }),
			listing.StatusColumn("Status", func(b Blog) string { return b.Status }),
			{Header: "Views", Accessor: func(b Blog) any { return b.Views }, NoSearch: true},
			listing.DateColumn("Published", func(b Blog) time.Time { return b.PublishedAt }),
		},
		Filters: []dataview.Filter[Blog]{
			listing.StatusFilter(func(b Blog) string { return b.Status },
				dataview.Option{Value: "published", Label: "Published"},
				dataview.Option{Value: "draft", Label: "Draft"},
			),
			{Key: "category", Label: "Category", Options: listing.Options("News", "Stories", "Events", "Updates"), Value: func(b Blog) any { return b.Category }},
		},
		ID:      func(b Blog) string { return b.ID },
		RowLink: func(b Blog) string { return links.Show(b.ID) },
		Actions: func(b Blog) []dataview.Action { return links.RowActions(b.ID, true) },
	})
	return listing.Resource[Blog]{
		Name:      Name,
		Source:    src,
		Table:     table,
		Deletable: true,
		Links:     links,
		Detail: func(b Blog) []listing.Field {
			return append(listing.ColumnFields(table, b), listing.Field{Label: "Excerpt", Value: b.Excerpt})
		},
	}
}
