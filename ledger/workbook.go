package ledger

import (
	"io"
	"time"

	"github.com/tealeg/xlsx"
)

// WriteWorkbook exports the ledger with one sheet listing every order line
// under its customer and one sheet of per-day totals.
func WriteWorkbook(w io.Writer, groups []UserGroup, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	file := xlsx.NewFile()

	orders, err := file.AddSheet("Khata")
	if err != nil {
		return err
	}
	header := orders.AddRow()
	for _, h := range []string{"Customer", "Email", "Order ID", "Date", "Status", "Item", "Quantity", "Unit", "Price", "Line Total", "Order Total"} {
		header.AddCell().SetValue(h)
	}

	var all []orderRef
	for _, g := range groups {
		for _, o := range g.Orders {
			all = append(all, orderRef{date: o.Date, total: o.Total})
			for _, it := range o.Items {
				row := orders.AddRow()
				row.AddCell().SetValue(g.User.Name)
				row.AddCell().SetValue(g.User.Email)
				row.AddCell().SetValue(o.OrderID)
				row.AddCell().SetValue(o.Date.In(loc).Format("2006-01-02 15:04"))
				row.AddCell().SetValue(string(o.Status))
				row.AddCell().SetValue(it.Product.Name.En)
				row.AddCell().SetFloat(it.Quantity)
				row.AddCell().SetValue(string(it.Product.Unit))
				row.AddCell().SetFloat(it.Product.Price)
				row.AddCell().SetFloat(it.Product.Price * it.Quantity)
				row.AddCell().SetFloat(o.Total)
			}
		}
	}

	days, err := file.AddSheet("Daily Totals")
	if err != nil {
		return err
	}
	header = days.AddRow()
	header.AddCell().SetValue("Date")
	header.AddCell().SetValue("Orders")
	header.AddCell().SetValue("Total")
	for _, d := range dailyTotals(all, loc) {
		row := days.AddRow()
		row.AddCell().SetValue(d.day)
		row.AddCell().SetInt(d.count)
		row.AddCell().SetFloat(d.total)
	}
	return file.Write(w)
}

type orderRef struct {
	date  time.Time
	total float64
}

type dayTotal struct {
	day   string
	count int
	total float64
}

func dailyTotals(refs []orderRef, loc *time.Location) []dayTotal {
	index := make(map[string]int)
	var out []dayTotal
	for _, r := range refs {
		day := r.date.In(loc).Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(out)
			index[day] = i
			out = append(out, dayTotal{day: day})
		}
		out[i].count++
		out[i].total += r.total
	}
	return out
}
