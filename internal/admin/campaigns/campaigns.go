// Package campaigns is the admin listing of fundraising campaigns.
package campaigns

import (
	"fmt"
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
)

const (
	// Name is the URL segment and audit entity.
	Name = "campaigns"
	// Path is the API collection.
	Path = "/campaigns"
)

// Categories offered by the platform.
var Categories = []string{"Medical", "Education", "Disaster Relief", "Animal Welfare", "Environment"}

// Campaign is one fundraising campaign.
type Campaign struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Goal      float64   `json:"goalAmount"`
	Raised    float64   `json:"raisedAmount"`
	Donors    int       `json:"donorCount"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
}

// Progress is the share of the goal raised, in whole percent.
func (c Campaign) Progress() int {
	if c.Goal <= 0 {
		return 0
	}
	return int(c.Raised * 100 / c.Goal)
}

// Resource builds the campaigns listing over src.
func Resource(src listing.Source[Campaign]) listing.Resource[Campaign] {
	links := listing.AdminLinks(Name)
	table := dataview.MustNew(dataview.Config[Campaign]{
		Title: "Campaigns",
		Columns: []dataview.Column[Campaign]{
			listing.TextColumn("Title", func(c Campaign) string { return c.Title }),
			listing.TextColumn("Category", func(c Campaign) string { return c.Category }),
			listing.MoneyColumn("Goal", func(c Campaign) float64 { return c.Goal }),
			listing.MoneyColumn("Raised", func(c Campaign) float64 { return c.Raised }),
			{
				Header:   "Progress",
				Accessor: func(c Campaign) any { return c.Progress() },
				Render:   func(v any, _ Campaign) any { return fmt.Sprintf("%d%%", v) },
				NoSearch: true,
			},
			listing.StatusColumn("Status", func(c Campaign) string { return c.Status }),
			listing.DateColumn("Ends", func(c Campaign) time.Time { return c.EndDate }),
		},
		Filters: []dataview.Filter[Campaign]{
			listing.StatusFilter(func(c Campaign) string { return c.Status },
				dataview.Option{Value: "active", Label: "Active"},
				dataview.Option{Value: "completed", Label: "Completed"},
				dataview.Option{Value: "paused", Label: "Paused"},
			),
			{Key: "category", Label: "Category", Options: listing.Options(Categories...), Value: func(c Campaign) any { return c.Category }},
		},
		ID:      func(c Campaign) string { return c.ID },
		RowLink: func(c Campaign) string { return links.Show(c.ID) },
		Actions: func(c Campaign) []dataview.Action { return links.RowActions(c.ID, true) },
	})
	return listing.Resource[Campaign]{
		Name:      Name,
		Source:    src,
		Table:     table,
		Deletable: true,
		Links:     links,
		Detail: func(c Campaign) []listing.Field {
			fields := listing.ColumnFields(table, c)
			return append(fields,
				listing.Field{Label: "Donors", Value: c.Donors},
				listing.Field{Label: "Created", Value: c.CreatedAt},
			)
		},
	}
}
