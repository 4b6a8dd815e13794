// Package estimate resolves an estimate document into report-ready form.
package estimate

import (
	"iter"

	"github.com/abaevpavel/pdfer-base/model"
)

// Items yields every item of every subcategory of every category in source
// order. Items point into categories, so callers may update them in place.
// The sequence can be ranged over any number of times.
func Items(categories []model.Category) iter.Seq[*model.Item] {
	return func(yield func(*model.Item) bool) {
		for ci := range categories {
			subcategories := categories[ci].Subcategories
			for si := range subcategories {
				items := subcategories[si].Items
				for ii := range items {
					if !yield(&items[ii]) {
						return
					}
				}
			}
		}
	}
}
