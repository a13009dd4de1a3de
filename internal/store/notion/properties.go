package notion

import (
	"sort"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/m3rciful/expensebot/internal/txn"
)

// Property names of the date and month columns.
const (
	propDate  = "Date"
	propMonth = "Month"
)

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{Text: &notionapi.Text{Content: s}}}
}

func plain(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, t := range rt {
		switch {
		case t.PlainText != "":
			b.WriteString(t.PlainText)
		case t.Text != nil:
			b.WriteString(t.Text.Content)
		}
	}
	return b.String()
}

func day(s string) *notionapi.Date {
	t, err := time.Parse(txn.DateLayout, s)
	if err != nil {
		return nil
	}
	d := notionapi.Date(t)
	return &d
}

// encode builds the property map of a new page.
func encode(e txn.Entry, titleProp string) notionapi.Properties {
	props := notionapi.Properties{
		titleProp: notionapi.TitleProperty{Title: richText(e.Title)},
	}
	if d := day(e.Date); d != nil {
		props[propDate] = notionapi.DateProperty{Date: &notionapi.DateObject{Start: d}}
	}
	if e.Month != "" {
		props[propMonth] = notionapi.SelectProperty{Select: notionapi.Option{Name: e.Month}}
	}
	for _, p := range e.Properties {
		switch {
		case p.Kind == txn.KindNumber:
			props[p.Name] = notionapi.NumberProperty{Number: float64(p.Number)}
		case p.Link != "":
			props[p.Name] = notionapi.RelationProperty{Relation: []notionapi.Relation{{ID: notionapi.PageID(p.Link)}}}
		default:
			props[p.Name] = notionapi.SelectProperty{Select: notionapi.Option{Name: p.Text}}
		}
	}
	return props
}

// pageTitle returns the text of the first title property of a page.
func pageTitle(p notionapi.Properties) string {
	for _, v := range p {
		if t, ok := deref(v).(notionapi.TitleProperty); ok {
			return plain(t.Title)
		}
	}
	return ""
}

// decode turns a page back into an entry. label resolves related page ids to
// their display names.
func decode(p notionapi.Page, t txn.Type, titleProp string, label func(id string) string) txn.Entry {
	e := txn.Entry{ID: string(p.ID), Type: t}
	for name, v := range p.Properties {
		switch prop := deref(v).(type) {
		case notionapi.TitleProperty:
			if name == titleProp {
				e.Title = plain(prop.Title)
			}
		case notionapi.DateProperty:
			if name == propDate && prop.Date != nil && prop.Date.Start != nil {
				e.Date = time.Time(*prop.Date.Start).Format(txn.DateLayout)
			}
		case notionapi.SelectProperty:
			if name == propMonth {
				e.Month = prop.Select.Name
				continue
			}
			e.Properties = append(e.Properties, txn.Property{Name: name, Kind: txn.KindSelect, Text: prop.Select.Name})
		case notionapi.NumberProperty:
			e.Properties = append(e.Properties, txn.Property{Name: name, Kind: txn.KindNumber, Number: int64(prop.Number)})
		case notionapi.RelationProperty:
			out := txn.Property{Name: name, Kind: txn.KindSelect}
			if len(prop.Relation) > 0 {
				out.Link = string(prop.Relation[0].ID)
				out.Text = label(out.Link)
			}
			e.Properties = append(e.Properties, out)
		}
	}
	sort.Slice(e.Properties, func(i, j int) bool { return e.Properties[i].Name < e.Properties[j].Name })
	return e
}

// deref turns the pointer properties the SDK decodes into values.
func deref(v notionapi.Property) notionapi.Property {
	switch p := v.(type) {
	case *notionapi.TitleProperty:
		return *p
	case *notionapi.DateProperty:
		return *p
	case *notionapi.SelectProperty:
		return *p
	case *notionapi.NumberProperty:
		return *p
	case *notionapi.RelationProperty:
		return *p
	}
	return v
}
