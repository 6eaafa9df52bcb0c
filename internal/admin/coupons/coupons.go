// Package coupons is the admin listing of partner coupons.
package coupons

import (
	"fmt"
	"time"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/view"
)

const (
	Name = "coupons"
	Path = "/coupons"
)

// Coupon types.
const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

// Coupon is a reward issued to donors by a partner.
type Coupon struct {
	ID         string    `json:"_id"`
	Code       string    `json:"code"`
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	Partner    string    `json:"partnerName"`
	Status     string    `json:"status"`
	RedeemedBy string    `json:"redeemedBy"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Discount renders the coupon value by type.
func (c Coupon) Discount() string {
	if c.Type == TypePercentage {
		return fmt.Sprintf("%g%%", c.Value)
	}
	return view.Money(c.Value)
}

// Columns are shared with the donor coupon dashboard.
func Columns() []dataview.Column[Coupon] {
	return []dataview.Column[Coupon]{
		listing.TextColumn("Code", func(c Coupon) string { return c.Code }),
		listing.TextColumn("Partner", func(c Coupon) string { return c.Partner }),
		{Header: "Discount", Accessor: func(c Coupon) any { return c.Discount() }},
		listing.StatusColumn("Status", func(c Coupon) string { return c.Status }),
		listing.DateColumn("Expires", func(c Coupon) time.Time { return c.ExpiresAt }),
	}
}

// StatusFilter is shared with the donor coupon dashboard.
func StatusFilter() dataview.Filter[Coupon] {
	return listing.StatusFilter(func(c Coupon) string { return c.Status },
		dataview.Option{Value: "active", Label: "Active"},
		dataview.Option{Value: "redeemed", Label: "Redeemed"},
		dataview.Option{Value: "expired", Label: "Expired"},
	)
}

// Resource builds the coupons listing over src.
func Resource(src listing.Source[Coupon]) listing.Resource[Coupon] {
	links := listing.AdminLinks(Name)
	columns := append(Columns()[:2:2],
		listing.TextColumn("Type", func(c Coupon) string { return c.Type }),
	)
	columns = append(columns, Columns()[2:]...)
	table := dataview.MustNew(dataview.Config[Coupon]{
		Title:   "Coupons",
		Columns: columns,
		Filters: []dataview.Filter[Coupon]{
			StatusFilter(),
			{Key: "type", Label: "Type", Options: []dataview.Option{
				{Value: TypePercentage, Label: "Percentage"},
				{Value: TypeFixed, Label: "Fixed amount"},
			}, Value: func(c Coupon) any { return c.Type }},
		},
		ID:      func(c Coupon) string { return c.ID },
		RowLink: func(c Coupon) string { return links.Show(c.ID) },
		Actions: func(c Coupon) []dataview.Action { return links.RowActions(c.ID, true) },
	})
	return listing.Resource[Coupon]{
		Name:      Name,
		Source:    src,
		Table:     table,
		Deletable: true,
		Links:     links,
		Detail: func(c Coupon) []listing.Field {
			return append(listing.ColumnFields(table, c), listing.Field{Label: "Redeemed by", Value: c.RedeemedBy})
		},
	}
}
