package donor

import (
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
)

// Event is an upcoming fundraising or volunteering event.
type Event struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Venue      string    `json:"venue"`
	City       string    `json:"city"`
	Kind       string    `json:"type"`
	StartsAt   time.Time `json:"startsAt"`
	Seats      int       `json:"seats"`
	Registered int       `json:"registeredCount"`
}

// SeatsLeft is never negative.
func (e Event) SeatsLeft() int {
	return max(e.Seats-e.Registered, 0)
}

func registerPath(id string) string {
	return "/donor/events/" + id + "/register"
}

func eventsTable() *dataview.Table[Event] {
	return dataview.MustNew(dataview.Config[Event]{
		Title: "Upcoming events",
		Columns: []dataview.Column[Event]{
			listing.TextColumn("Event", func(e Event) string { return e.Title }),
			listing.TextColumn("Venue", func(e Event) string { return e.Venue }),
			listing.TextColumn("City", func(e Event) string { return e.City }),
			listing.DateColumn("Date", func(e Event) time.Time { return e.StartsAt }),
			{Header: "Seats left", Accessor: func(e Event) any { return e.SeatsLeft() }, NoSearch: true},
		},
		Filters: []dataview.Filter[Event]{{
			Key:   "type",
			Label: "Type",
			Options: []dataview.Option{
				{Value: "fundraiser", Label: "Fundraiser"},
				{Value: "volunteering", Label: "Volunteering"},
				{Value: "awareness", Label: "Awareness"},
			},
			Value: func(e Event) any { return e.Kind },
		}},
		Options: dataview.Options{DisableExport: true},
		ID:      func(e Event) string { return e.ID },
		RowLink: func(e Event) string { return registerPath(e.ID) },
		Actions: func(e Event) []dataview.Action {
			if e.SeatsLeft() == 0 {
				return nil
			}
			return []dataview.Action{{Label: "Register", Href: registerPath(e.ID), Method: "GET"}}
		},
	})
}
