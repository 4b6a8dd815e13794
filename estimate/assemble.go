package estimate

import (
	"github.com/abaevpavel/pdfer-base/currency"
	"github.com/abaevpavel/pdfer-base/formula"
	"github.com/abaevpavel/pdfer-base/model"
)

// CustomCatalogID marks hand-authored items.
const CustomCatalogID = "Custom"

// Result is an assembled document ready for rendering.
type Result struct {
	Document    *model.Document
	CustomItems []*model.Item
	Failures    []formula.EvalFailure
	ItemCount   int
}

// Assemble resolves doc in place: category totals get their grouped display
// form, formulas in item text are evaluated against the square footage, and
// custom items are collected in document order.
func Assemble(doc *model.Document) *Result {
	if doc == nil {
		doc = &model.Document{}
	}

	for i := range doc.Categories {
		doc.Categories[i].TotalFormatted = currency.Grouped(doc.Categories[i].Total)
	}

	resolver := &formula.Resolver{Env: formula.Env{Scalar: SquareFootage(doc)}}
	count := 0
	for item := range Items(doc.Categories) {
		count++
		item.LongDescription = resolver.Resolve(item.LongDescription)
		item.InternalInstructions = resolver.Resolve(item.InternalInstructions)
		item.InternalNotes = resolver.Resolve(item.InternalNotes)
	}

	return &Result{
		Document:    doc,
		CustomItems: CustomItems(doc.Categories),
		Failures:    resolver.Failures,
		ItemCount:   count,
	}
}

// SquareFootage returns the scalar formulas see: the first estimate info's
// squareFootage, or zero when it is absent or not a number.
func SquareFootage(doc *model.Document) formula.Number {
	if len(doc.EstimatesInfo) == 0 {
		return formula.Int(0)
	}
	if n, ok := formula.NumberOf(doc.EstimatesInfo[0].SquareFootage); ok {
		return n
	}
	return formula.Int(0)
}

// CustomItems returns the items whose catalog id is exactly "Custom".
func CustomItems(categories []model.Category) []*model.Item {
	var custom []*model.Item
	for item := range Items(categories) {
		if IsCustom(item) {
			custom = append(custom, item)
		}
	}
	return custom
}

// IsCustom reports whether item was authored by hand rather than picked from
// the catalog.
func IsCustom(item *model.Item) bool {
	id, ok := item.CatelogID.(string)
	return ok && id == CustomCatalogID
}
