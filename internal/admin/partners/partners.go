// Package partners is the admin listing of partner organisations.
package partners

import (
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
)

const (
	Name = "partners"
	Path = "/partners"
)

// Partner is an organisation issuing coupons or co-running campaigns.
type Partner struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Contact  string    `json:"contactEmail"`
	Website  string    `json:"website"`
	JoinedAt time.Time `json:"createdAt"`
}

// Resource builds the partners listing over src.
func Resource(src listing.Source[Partner]) listing.Resource[Partner] {
	links := listing.AdminLinks(Name)
	return listing.Resource[Partner]{
		Name:      Name,
		Source:    src,
		Deletable: true,
		Links:     links,
		Table: dataview.MustNew(dataview.Config[Partner]{
			Title: "Partners",
			Columns: []dataview.Column[Partner]{
				listing.TextColumn("Name", func(p Partner) string { return p.Name }),
				listing.TextColumn("Type", func(p Partner) string { return p.Type }),
				listing.TextColumn("Contact", func(p Partner) string { return p.Contact }),
				listing.TextColumn("Website", func(p Partner) string { return p.Website }),
				listing.DateColumn("Joined", func(p Partner) time.Time { return p.JoinedAt }),
			},
			Filters: []dataview.Filter[Partner]{
				{Key: "type", Label: "Type", Options: []dataview.Option{
					{Value: "corporate", Label: "Corporate"},
					{Value: "ngo", Label: "NGO"},
					{Value: "government", Label: "Government"},
				}, Value: func(p Partner) any { return p.Type }},
			},
			ID:      func(p Partner) string { return p.ID },
			RowLink: func(p Partner) string { return links.Show(p.ID) },
			Actions: func(p Partner) []dataview.Action { return links.RowActions(p.ID, true) },
		}),
	}
}
