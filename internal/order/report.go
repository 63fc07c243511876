package order

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/hvmc-store-backend/internal/user"
)

const exportTimeLayout = "02/01/2006 15:04"

// ExportRow is the flat per-order record used by staff exports.
type ExportRow struct {
	ID            int
	Reference     string
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	ClientWilaya  string
	CreatedAt     time.Time
	IsSent        bool
	DeliveryPrice decimal.Decimal
	ItemsSubtotal decimal.Decimal
	TotalPrice    decimal.Decimal
	ItemCount     int
	Items         string
}

var exportHeader = []string{
	"ID", "Reference", "Client", "Email", "Phone", "Wilaya", "Created At", "Sent",
	"Delivery Price", "Items Subtotal", "Total", "Item Count", "Products",
}

// BuildExportRows flattens orders. Linked clients are looked up once each; a
// client that cannot be loaded falls back to the guest fields.
func BuildExportRows(ctx context.Context, clients ClientReader, orders []Order) []ExportRow {
	cache := map[int]*user.User{}
	rows := make([]ExportRow, 0, len(orders))
	for _, o := range orders {
		row := ExportRow{
			ID:            o.ID,
			Reference:     o.Reference.String(),
			CreatedAt:     o.CreatedAt,
			IsSent:        o.IsSent,
			DeliveryPrice: o.DeliveryPrice,
			ItemsSubtotal: o.ItemsSubtotal(),
			TotalPrice:    o.TotalPrice,
			ItemCount:     len(o.Items),
			Items:         describeItems(o.Items),
		}

		var client *user.User
		if o.ClientID != nil && clients != nil {
			client = lookupClient(ctx, clients, cache, *o.ClientID)
		}
		if client != nil {
			row.ClientName = client.DisplayName()
			row.ClientEmail = client.Email
			row.ClientPhone = client.Phone
			row.ClientWilaya = client.Wilaya
		} else {
			row.ClientName = o.Guest.Name
			if row.ClientName == "" {
				row.ClientName = "Guest"
			}
			row.ClientEmail = o.Guest.Email
			row.ClientPhone = o.Guest.Phone
			row.ClientWilaya = o.Guest.Wilaya
		}
		rows = append(rows, row)
	}
	return rows
}

func lookupClient(ctx context.Context, clients ClientReader, cache map[int]*user.User, id int) *user.User {
	if u, ok := cache[id]; ok {
		return u
	}
	u, err := clients.GetByID(ctx, id)
	if err != nil {
		log.Printf("[order] export: client %d unavailable: %v", id, err)
		cache[id] = nil
		return nil
	}
	cache[id] = &u
	return &u
}

func describeItems(items []LineItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (x%d)", it.ProductName, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		sent := "No"
		if r.IsSent {
			sent = "Yes"
		}
		record := []string{
			strconv.Itoa(r.ID),
			r.Reference,
			r.ClientName,
			r.ClientEmail,
			r.ClientPhone,
			r.ClientWilaya,
			r.CreatedAt.Format(exportTimeLayout),
			sent,
			r.DeliveryPrice.StringFixed(2),
			r.ItemsSubtotal.StringFixed(2),
			r.TotalPrice.StringFixed(2),
			strconv.Itoa(r.ItemCount),
			r.Items,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
