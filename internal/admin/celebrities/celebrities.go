// Package celebrities is the admin listing of celebrity ambassadors.
package celebrities

import (
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
)

const (
	Name = "celebrities"
	Path = "/celebrities"
)

// Celebrity is an ambassador endorsing a campaign.
type Celebrity struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Profession string    `json:"profession"`
	Campaign   string    `json:"campaignTitle"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Resource builds the celebrities listing over src.
func Resource(src listing.Source[Celebrity]) listing.Resource[Celebrity] {
	links := listing.AdminLinks(Name)
	return listing.Resource[Celebrity]{
		Name:      Name,
		Source:    src,
		Deletable: true,
		Links:     links,
		Table: dataview.MustNew(dataview.Config[Celebrity]{
			Title: "Celebrities",
			Columns: []dataview.Column[Celebrity]{
				listing.TextColumn("Name", func(c Celebrity) string { return c.Name }),
				listing.TextColumn("Profession", func(c Celebrity) string { return c.Profession }),
				listing.TextColumn("Campaign", func(c Celebrity) string { return c.Campaign }),
				listing.StatusColumn("Status", func(c Celebrity) string { return c.Status }),
				listing.DateColumn("Added", func(c Celebrity) time.Time { return c.CreatedAt }),
			},
			Filters: []dataview.Filter[Celebrity]{
				listing.StatusFilter(func(c Celebrity) string { return c.Status },
					dataview.Option{Value: "active", Label: "Active"},
					dataview.Option{Value: "inactive", Label: "Inactive"},
				),
			},
			ID:      func(c Celebrity) string { return c.ID },
			RowLink: func(c Celebrity) string { return links.Show(c.ID) },
			Actions: func(c Celebrity) []dataview.Action { return links.RowActions(c.ID, true) },
		}),
	}
}
