// Package donations is the admin listing of donations. Donations are
// financial records and cannot be deleted from the console.
package donations

import (
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
)

const (
	Name = "donations"
	Path = "/donations"
)

// Donation is one payment towards a campaign.
type Donation struct {
	ID            string    `json:"_id"`
	DonorName     string    `json:"donorName"`
	DonorEmail    string    `json:"donorEmail"`
	Campaign      string    `json:"campaignTitle"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PaymentMethods accepted by the payment gateway.
var PaymentMethods = []dataview.Option{
	{Value: "upi", Label: "UPI"},
	{Value: "card", Label: "Card"},
	{Value: "netbanking", Label: "Net banking"},
	{Value: "wallet", Label: "Wallet"},
}

// StatusFilter is shared with the donor campaign tracking page.
func StatusFilter() dataview.Filter[Donation] {
	return listing.StatusFilter(func(d Donation) string { return d.Status },
		dataview.Option{Value: "success", Label: "Success"},
		dataview.Option{Value: "pending", Label: "Pending"},
		dataview.Option{Value: "failed", Label: "Failed"},
	)
}

// Resource builds the donations listing over src.
func Resource(src listing.Source[Donation]) listing.Resource[Donation] {
	links := listing.AdminLinks(Name)
	return listing.Resource[Donation]{
		Name:   Name,
		Source: src,
		Links:  links,
		Table: dataview.MustNew(dataview.Config[Donation]{
			Title: "Donations",
			Columns: []dataview.Column[Donation]{
				listing.TextColumn("Donor", func(d Donation) string { return d.DonorName }),
				listing.TextColumn("Email", func(d Donation) string { return d.DonorEmail }),
				listing.TextColumn("Campaign", func(d Donation) string { return d.Campaign }),
				listing.MoneyColumn("Amount", func(d Donation) float64 { return d.Amount }),
				listing.TextColumn("Method", func(d Donation) string { return d.PaymentMethod }),
				listing.StatusColumn("Status", func(d Donation) string { return d.Status }),
				listing.TextColumn("Transaction", func(d Donation) string { return d.TransactionID }),
				listing.DateColumn("Date", func(d Donation) time.Time { return d.CreatedAt }),
			},
			Filters: []dataview.Filter[Donation]{
				StatusFilter(),
				{Key: "paymentMethod", Label: "Payment method", Options: PaymentMethods, Value: func(d Donation) any { return d.PaymentMethod }},
			},
			ID:      func(d Donation) string { return d.ID },
			RowLink: func(d Donation) string { return links.Show(d.ID) },
			Actions: func(d Donation) []dataview.Action { return links.RowActions(d.ID, false) },
		}),
	}
}
