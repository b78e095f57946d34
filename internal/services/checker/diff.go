package checker

import "github.com/Houeta/catalog-flow/internal/models"

// DetectChanges compares two snapshots of the same product and returns the differences
// in a fixed order: title, description, added variants (in current order), then
// availability and price changes per previous variant (in previous order).
// Removed variants are not reported.
func DetectChanges(previous, current models.Product) []models.Change {
	var changes []models.Change

	if previous.Title != current.Title {
		changes = append(changes, models.TitleChanged{Old: previous.Title, New: current.Title})
	}

	if previous.BodyHTML != current.BodyHTML {
		changes = append(changes, models.DescriptionChanged{Old: previous.BodyHTML, New: current.BodyHTML})
	}

	oldMap := variantsByID(previous.Variants)
	newMap := variantsByID(current.Variants)

	for _, v := range current.Variants {
		if _, found := oldMap[v.ID]; !found {
			changes = append(changes, models.VariantAdded{Variant: v})
		}
	}

	for _, oldVariant := range previous.Variants {
		newVariant, found := newMap[oldVariant.ID]
		if !found {
			continue
		}

		if oldVariant.Available != newVariant.Available {
			changes = append(changes, models.VariantAvailabilityChanged{
				VariantID:    oldVariant.ID,
				OldAvailable: oldVariant.Available,
				NewAvailable: newVariant.Available,
			})
		}

		if oldVariant.Price != newVariant.Price {
			changes = append(changes, models.VariantPriceChanged{
				VariantID: oldVariant.ID,
				OldPrice:  oldVariant.Price,
				NewPrice:  newVariant.Price,
			})
		}
	}

	return changes
}

// variantsByID indexes variants by id. On duplicate ids the last one wins.
func variantsByID(variants []models.Variant) map[int64]models.Variant {
	m := make(map[int64]models.Variant, len(variants))
	for _, v := range variants {
		m[v.ID] = v
	}
	return m
}
