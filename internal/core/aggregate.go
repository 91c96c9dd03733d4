package core

import "sort"

// Aggregation works on already-fetched expense slices and never touches
// storage. All sums are exact cent arithmetic.

// CategoryTotal is an amount summed under one category label.
type CategoryTotal struct {
	Category string
	Total    Money
}

// MonthTotal is an amount summed under one "YYYY-MM" key.
type MonthTotal struct {
	Month string
	Total Money
}

// SumByCategory groups by category with exact, case-sensitive string match.
func SumByCategory(records []Expense) map[string]Money {
	totals := make(map[string]Money, len(records))
	for _, e := range records {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

// SumByMonth groups by the year-month of the spent-on date.
func SumByMonth(records []Expense) map[string]Money {
	totals := make(map[string]Money, len(records))
	for _, e := range records {
		key := e.SpentOn.YearMonth()
		totals[key] = totals[key].Add(e.Amount)
	}
	return totals
}

// GrandTotal sums all amounts; zero for an empty slice.
func GrandTotal(records []Expense) Money {
	var total Money
	for _, e := range records {
		total = total.Add(e.Amount)
	}
	return total
}

// TopCategory returns the category with the largest summed total, or false
// when there are no records. Ties break to the alphabetically first category
// so repeated calls over the same data agree.
func TopCategory(records []Expense) (CategoryTotal, bool) {
	totals := SumByCategory(records)
	if len(totals) == 0 {
		return CategoryTotal{}, false
	}
	var top CategoryTotal
	first := true
	for category, total := range totals {
		switch {
		case first, total.Cents > top.Total.Cents:
			top = CategoryTotal{Category: category, Total: total}
			first = false
		case total.Cents == top.Total.Cents && category < top.Category:
			top.Category = category
			top.Total = total
		}
	}
	return top, true
}

// CategoryTotals flattens SumByCategory into a slice sorted by category name,
// the stable order the API responds with.
func CategoryTotals(records []Expense) []CategoryTotal {
	totals := SumByCategory(records)
	out := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		out = append(out, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// MonthTotals flattens SumByMonth into a slice in ascending chronological
// order; the "YYYY-MM" key form makes lexical order chronological.
func MonthTotals(records []Expense) []MonthTotal {
	totals := SumByMonth(records)
	out := make([]MonthTotal, 0, len(totals))
	for month, total := range totals {
		out = append(out, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
