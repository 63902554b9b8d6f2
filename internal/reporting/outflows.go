package reporting

import (
	"sort"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
)

// Outflows are the batch-external cash movements that reduce net profit.
type Outflows struct {
	Expenses  []domain.Expense
	Interests []domain.InterestPayment
	Losses    []domain.Loss
}

// Within keeps the records dated inside r.
func (o Outflows) Within(r domain.DateRange) Outflows {
	var out Outflows
	for _, e := range o.Expenses {
		if r.ContainsDate(e.ExpenseDate) {
			out.Expenses = append(out.Expenses, e)
		}
	}
	for _, i := range o.Interests {
		if r.ContainsDate(i.PaymentDate) {
			out.Interests = append(out.Interests, i)
		}
	}
	for _, l := range o.Losses {
		if r.ContainsDate(l.LossDate) {
			out.Losses = append(out.Losses, l)
		}
	}
	return out
}

type Group struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type Tally struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type GroupedTally struct {
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
	Groups []Group         `json:"groups"`
}

type OutflowTotals struct {
	Expenses  decimal.Decimal `json:"expenses"`
	Interests decimal.Decimal `json:"interests"`
	Losses    decimal.Decimal `json:"losses"`
	Total     decimal.Decimal `json:"total"`
}

func (o Outflows) expenseTally() Tally {
	t := Tally{Total: decimal.Zero, Count: len(o.Expenses)}
	for _, e := range o.Expenses {
		t.Total = t.Total.Add(e.Amount)
	}
	return t
}

func (o Outflows) interestTally() GroupedTally {
	g := newGrouper()
	for _, i := range o.Interests {
		g.add(i.Source, i.Amount)
	}
	return g.tally()
}

func (o Outflows) lossTally() GroupedTally {
	g := newGrouper()
	for _, l := range o.Losses {
		g.add(l.Reason, l.Amount)
	}
	return g.tally()
}

// Totals sums each outflow category and the overall total.
func (o Outflows) Totals() OutflowTotals {
	t := OutflowTotals{
		Expenses:  o.expenseTally().Total,
		Interests: o.interestTally().Total,
		Losses:    o.lossTally().Total,
	}
	t.Total = t.Expenses.Add(t.Interests).Add(t.Losses)
	return t
}

type grouper struct {
	order  []string
	groups map[string]*Group
}

func newGrouper() *grouper {
	return &grouper{groups: map[string]*Group{}}
}

func (g *grouper) add(key string, amount decimal.Decimal) {
	group, ok := g.groups[key]
	if !ok {
		group = &Group{Key: key, Total: decimal.Zero}
		g.groups[key] = group
		g.order = append(g.order, key)
	}
	group.Total = group.Total.Add(amount)
	group.Count++
}

// tally returns groups sorted by total descending, then key.
func (g *grouper) tally() GroupedTally {
	t := GroupedTally{Total: decimal.Zero, Groups: make([]Group, 0, len(g.order))}
	for _, key := range g.order {
		group := g.groups[key]
		t.Total = t.Total.Add(group.Total)
		t.Count += group.Count
		t.Groups = append(t.Groups, *group)
	}
	sort.SliceStable(t.Groups, func(i, j int) bool {
		if c := t.Groups[i].Total.Cmp(t.Groups[j].Total); c != 0 {
			return c > 0
		}
		return t.Groups[i].Key < t.Groups[j].Key
	})
	return t
}
