package models

// ChangeKind names the type of a detected change.
type ChangeKind string

const (
	KindTitle               ChangeKind = "title"
	KindDescription         ChangeKind = "description"
	KindVariantPrice        ChangeKind = "variant_price"
	KindVariantAvailability ChangeKind = "variant_availability"
	KindVariantAdded        ChangeKind = "variant_added"
)

// Change is one detected difference between two snapshots of the same product.
// The set of implementations is closed: TitleChanged, DescriptionChanged,
// VariantPriceChanged, VariantAvailabilityChanged and VariantAdded.
type Change interface {
	Kind() ChangeKind
	change()
}

// TitleChanged - the product title differs.
type TitleChanged struct {
	Old string
	New string
}

// DescriptionChanged - the raw description HTML differs.
type DescriptionChanged struct {
	Old string
	New string
}

// VariantPriceChanged - a variant present in both snapshots has a different price string.
type VariantPriceChanged struct {
	VariantID int64
	OldPrice  string
	NewPrice  string
}

// VariantAvailabilityChanged - a variant present in both snapshots flipped availability.
type VariantAvailabilityChanged struct {
	VariantID    int64
	OldAvailable bool
	NewAvailable bool
}

// VariantAdded - a variant appeared that the previous snapshot did not have.
type VariantAdded struct {
	Variant Variant
}

func (TitleChanged) Kind() ChangeKind               { return KindTitle }
func (DescriptionChanged) Kind() ChangeKind         { return KindDescription }
func (VariantPriceChanged) Kind() ChangeKind        { return KindVariantPrice }
func (VariantAvailabilityChanged) Kind() ChangeKind { return KindVariantAvailability }
func (VariantAdded) Kind() ChangeKind               { return KindVariantAdded }

func (TitleChanged) change()               {}
func (DescriptionChanged) change()         {}
func (VariantPriceChanged) change()        {}
func (VariantAvailabilityChanged) change() {}
func (VariantAdded) change()               {}

// ProductChange - a change together with the current snapshot of the product it belongs to.
type ProductChange struct {
	Product Product
	Change  Change
}
