package donor

import (
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/coupons"
	"github.com/hopebridge/hopebridge/internal/admin/donations"
	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/view"
)

func couponsTable() *dataview.Table[coupons.Coupon] {
	return dataview.MustNew(dataview.Config[coupons.Coupon]{
		Title:   "My coupons",
		Columns: coupons.Columns(),
		Filters: []dataview.Filter[coupons.Coupon]{coupons.StatusFilter()},
		ID:      func(c coupons.Coupon) string { return c.ID },
	})
}

func donationsTable() *dataview.Table[donations.Donation] {
	return dataview.MustNew(dataview.Config[donations.Donation]{
		Title: "My donations",
		Columns: []dataview.Column[donations.Donation]{
			listing.TextColumn("Campaign", func(d donations.Donation) string { return d.Campaign }),
			listing.MoneyColumn("Amount", func(d donations.Donation) float64 { return d.Amount }),
			listing.StatusColumn("Status", func(d donations.Donation) string { return d.Status }),
			listing.DateColumn("Date", func(d donations.Donation) time.Time { return d.CreatedAt }),
		},
		Filters: []dataview.Filter[donations.Donation]{donations.StatusFilter()},
		ID:      func(d donations.Donation) string { return d.ID },
	})
}

// Summary totals the successful donations of a donor.
type Summary struct {
	Total     string
	Count     int
	Campaigns int
}

// Summarize totals rows. Only successful donations count.
func Summarize(rows []donations.Donation) Summary {
	var total float64
	count := 0
	seen := make(map[string]struct{})
	for _, d := range rows {
		if d.Status != "success" {
			continue
		}
		total += d.Amount
		count++
		seen[d.Campaign] = struct{}{}
	}
	return Summary{Total: view.Money(total), Count: count, Campaigns: len(seen)}
}
