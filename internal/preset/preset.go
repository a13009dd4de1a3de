// Package preset defines recurring transactions: templates that pre-fill part
// of a draft so the conversation skips straight to what is still missing.
package preset

import (
	"time"

	"github.com/m3rciful/expensebot/internal/txn"
)

// Preset is a named template for a transaction type.
type Preset struct {
	Key   string
	Name  string
	Emoji string
	Type  txn.Type
	// Fields are pre-filled into the draft.
	Fields txn.Draft
	// CurrentMonth pre-fills the month with the month of the start date.
	CurrentMonth bool
}

var catalog = []Preset{
	{
		Key: "lunch-office", Name: "Lunch Office", Emoji: "🍱", Type: txn.Variable,
		Fields: txn.Draft{Category: "Survival", ShoppingGroup: "Food"},
	},
	{
		Key: "internet", Name: "Internet Bill", Emoji: "🌐", Type: txn.Fixed,
		Fields:       txn.Draft{Item: "Internet", Account: "BCA", Description: "Monthly internet"},
		CurrentMonth: true,
	},
	{
		Key: "electricity", Name: "Electricity Bill", Emoji: "💡", Type: txn.Fixed,
		Fields:       txn.Draft{Item: "Listrik", Account: "BNI", Description: "Monthly electricity"},
		CurrentMonth: true,
	},
}

// All returns the catalog in menu order.
func All() []Preset {
	out := make([]Preset, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a preset by key.
func Lookup(key string) (Preset, bool) {
	for _, p := range catalog {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// Seed returns the fields a conversation started at now begins with.
func (p Preset) Seed(now time.Time) txn.Draft {
	d := p.Fields
	if p.CurrentMonth {
		d.Month = txn.MonthName(now)
	}
	return d
}

// Flow returns the step sequence of the preset with its seeded steps locked.
func (p Preset) Flow(now time.Time) (txn.Flow, bool) {
	m, ok := txn.ModuleFor(p.Type)
	if !ok {
		return txn.Flow{}, false
	}
	return txn.Flow{Module: m, Preset: p.Key, Locked: p.Seed(now)}, true
}

// Label is the button text of the preset.
func (p Preset) Label() string {
	return p.Emoji + " " + p.Name
}
