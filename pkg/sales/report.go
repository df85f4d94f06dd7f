// Package sales turns order history into the admin sales dashboard.
package sales

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// DefaultDays is the dashboard window.
const DefaultDays = 30

const recentLimit = 5

const dayLayout = "2006-01-02"

// Sale is one order line counted as revenue.
type Sale struct {
	Date        string          `json:"date"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Amount      decimal.Decimal `json:"amount"`
	at          time.Time
}

// Day is the revenue of one calendar day (UTC).
type Day struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// TopProduct is the best seller by revenue.
type TopProduct struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Sales decimal.Decimal `json:"sales"`
}

// Report is the dashboard payload.
type Report struct {
	Days   []Day           `json:"days"`
	Total  decimal.Decimal `json:"total"`
	Orders int             `json:"orders"`
	Max    decimal.Decimal `json:"max_daily"`
	Top    *TopProduct     `json:"top_product"`
	Recent []Sale          `json:"recent"`
}

// Build aggregates orders over the days ending at now. Orders counts the
// orders placed in that window. Cancelled orders are ignored. Products resolve line ids to names.
func Build(orders []models.Order, products []models.Product, now time.Time, days int) Report {
	if days <= 0 {
		days = DefaultDays
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	sales := collect(orders, names)

	r := Report{Total: decimal.Zero, Max: decimal.Zero, Days: make([]Day, days), Recent: []Sale{}}
	index := make(map[string]int, days)
	today := now.UTC()
	for i := 0; i < days; i++ {
		d := today.AddDate(0, 0, i-days+1).Format(dayLayout)
		r.Days[i] = Day{Date: d, Amount: decimal.Zero}
		index[d] = i
	}

	for _, o := range orders {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		if _, ok := index[o.CreatedAt.UTC().Format(dayLayout)]; ok {
			r.Orders++
		}
	}

	byProduct := map[string]decimal.Decimal{}
	for _, s := range sales {
		if i, ok := index[s.Date]; ok {
			r.Days[i].Amount = r.Days[i].Amount.Add(s.Amount)
			r.Total = r.Total.Add(s.Amount)
		}
		byProduct[s.ProductID] = byProduct[s.ProductID].Add(s.Amount)
	}
	for _, d := range r.Days {
		if d.Amount.GreaterThan(r.Max) {
			r.Max = d.Amount
		}
	}

	r.Top = top(byProduct, names)

	if len(sales) > recentLimit {
		sales = sales[:recentLimit]
	}
	r.Recent = append(r.Recent, sales...)
	return r
}

// collect flattens orders into sales, newest first.
func collect(orders []models.Order, names map[string]string) []Sale {
	var out []Sale
	for _, o := range orders {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		for _, it := range o.Items {
			pid := it.ProductID()
			name := names[pid]
			if name == "" {
				name = it.Name
			}
			if name == "" {
				name = "Unknown Product"
			}
			out = append(out, Sale{
				Date:        o.CreatedAt.UTC().Format(dayLayout),
				OrderID:     o.ID,
				ProductID:   pid,
				ProductName: name,
				Amount:      decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))),
				at:          o.CreatedAt,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.After(out[j].at) })
	return out
}

func top(byProduct map[string]decimal.Decimal, names map[string]string) *TopProduct {
	var best *TopProduct
	for id, amount := range byProduct {
		if !amount.IsPositive() {
			continue
		}
		if _, known := names[id]; !known {
			continue
		}
		if best == nil || amount.GreaterThan(best.Sales) || (amount.Equal(best.Sales) && id < best.ID) {
			best = &TopProduct{ID: id, Name: names[id], Sales: amount}
		}
	}
	return best
}
