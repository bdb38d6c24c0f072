// Package ledger builds the Khata views over orders: newest first, grouped by
// customer or by calendar day.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/Kariqs/goutam-store/models"
	"github.com/shopspring/decimal"
)

const dateLayout = "02/01/2006"

type UserGroup struct {
	User   models.UserProfile `json:"user"`
	Orders []models.Order     `json:"orders"`
	Total  float64            `json:"total"`
}

type DateGroup struct {
	Date   string         `json:"date"`
	Label  string         `json:"label"`
	Orders []models.Order `json:"orders"`
	Total  float64        `json:"total"`
}

// SortNewestFirst sorts orders by date, newest first. Orders placed at the
// same instant keep their relative order.
func SortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date.After(orders[j].Date)
	})
}

// GroupByUser groups orders by owner in first-seen order. Owners missing from
// users get a placeholder profile so that no order is dropped.
func GroupByUser(orders []models.Order, users map[string]models.UserProfile) []UserGroup {
	index := make(map[string]int)
	var groups []UserGroup
	for _, o := range orders {
		i, ok := index[o.UserID]
		if !ok {
			u, found := users[o.UserID]
			if !found {
				u = models.UnknownUser(o.UserID)
			}
			i = len(groups)
			index[o.UserID] = i
			groups = append(groups, UserGroup{User: u})
		}
		groups[i].Orders = append(groups[i].Orders, o)
	}
	for i := range groups {
		groups[i].Total = sum(groups[i].Orders)
	}
	return groups
}

// GroupByDate groups orders by calendar day in loc, in first-seen order.
func GroupByDate(orders []models.Order, loc *time.Location, lang string) []DateGroup {
	if loc == nil {
		loc = time.UTC
	}
	index := make(map[string]int)
	var groups []DateGroup
	for _, o := range orders {
		day := o.Date.In(loc).Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DateGroup{Date: day, Label: DateLabel(o.Date, loc, lang)})
		}
		groups[i].Orders = append(groups[i].Orders, o)
	}
	for i := range groups {
		groups[i].Total = sum(groups[i].Orders)
	}
	return groups
}

func DateLabel(t time.Time, loc *time.Location, lang string) string {
	if loc == nil {
		loc = time.UTC
	}
	d := t.In(loc).Format(dateLayout)
	if lang == "hi" {
		return "दिनांक: " + d
	}
	return "Date: " + d
}

// FilterByUserName keeps groups whose customer name contains term, ignoring case.
func FilterByUserName(groups []UserGroup, term string) []UserGroup {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return groups
	}
	var out []UserGroup
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.User.Name), term) {
			out = append(out, g)
		}
	}
	return out
}

func sum(orders []models.Order) float64 {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(decimal.NewFromFloat(o.Total))
	}
	f, _ := total.Round(2).Float64()
	return f
}
