// Package volunteers is the admin listing of volunteer applications.
package volunteers

import (
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
)

const (
	Name = "volunteers"
	Path = "/volunteers"
)

// Volunteer is one volunteer application.
type Volunteer struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	Skills    []string  `json:"skills"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"createdAt"`
}

// Resource builds the volunteers listing over src.
func Resource(src listing.Source[Volunteer]) listing.Resource[Volunteer] {
	links := listing.AdminLinks(Name)
	return listing.Resource[Volunteer]{
		Name:      Name,
		Source:    src,
		Deletable: true,
		Links:     links,
		Table: dataview.MustNew(dataview.Config[Volunteer]{
			Title: "Volunteers",
			Columns: []dataview.Column[Volunteer]{
				listing.TextColumn("Name", func(v Volunteer) string { return v.Name }),
				listing.TextColumn("Email", func(v Volunteer) string { return v.Email }),
				listing.TextColumn("Phone", func(v Volunteer) string { return v.Phone }),
				listing.TextColumn("City", func(v Volunteer) string { return v.City }),
				{Header: "Skills", Accessor: func(v Volunteer) any { return v.Skills }},
				listing.StatusColumn("Status", func(v Volunteer) string { return v.Status }),
				listing.DateColumn("Applied", func(v Volunteer) time.Time { return v.AppliedAt }),
			},
			Filters: []dataview.Filter[Volunteer]{
				listing.StatusFilter(func(v Volunteer) string { return v.Status },
					dataview.Option{Value: "pending", Label: "Pending"},
					dataview.Option{Value: "approved", Label: "Approved"},
					dataview.Option{Value: "rejected", Label: "Rejected"},
				),
			},
			ID:      func(v Volunteer) string { return v.ID },
			RowLink: func(v Volunteer) string { return links.Show(v.ID) },
			Actions: func(v Volunteer) []dataview.Action { return links.RowActions(v.ID, true) },
		}),
	}
}
