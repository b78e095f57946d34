package notification

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Houeta/catalog-flow/internal/models"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// Style keys. Availability changes are keyed by the direction of the flip.
const (
	StyleTitle        = string(models.KindTitle)
	StyleDescription  = string(models.KindDescription)
	StylePrice        = string(models.KindVariantPrice)
	StyleVariantAdded = string(models.KindVariantAdded)
	StyleInStock      = string(models.KindVariantAvailability) + ":in_stock"
	StyleOutOfStock   = string(models.KindVariantAvailability) + ":out_of_stock"
)

const defaultCurrency = "GBP"

// Style is the priority and tag set attached to one kind of change.
type Style struct {
	Priority Priority
	Tags     []string
}

// DefaultStyles returns the stock style table.
func DefaultStyles() map[string]Style {
	return map[string]Style{
		StyleTitle:        {Priority: PriorityDefault, Tags: []string{"title", "womans_hat"}},
		StyleDescription:  {Priority: PriorityLow, Tags: []string{"description", "womans_clothes"}},
		StylePrice:        {Priority: PriorityHigh, Tags: []string{"price", "loudspeaker"}},
		StyleVariantAdded: {Priority: PriorityDefault, Tags: []string{"variant", "new"}},
		StyleInStock:      {Priority: PriorityMax, Tags: []string{"availability", "rotating_light"}},
		StyleOutOfStock:   {Priority: PriorityLow, Tags: []string{"availability", "rotating_light"}},
	}
}

// Formatter renders changes as notifications. It is safe for concurrent use.
type Formatter struct {
	baseURL  *url.URL
	currency string
	styles   map[string]Style
	md       *htmltomarkdown.Converter
	policy   *bluemonday.Policy
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithCurrency sets the currency code printed next to prices.
func WithCurrency(code string) FormatterOption {
	return func(f *Formatter) {
		if code != "" {
			f.currency = code
		}
	}
}

// WithStyles overrides entries of the default style table.
func WithStyles(styles map[string]Style) FormatterOption {
	return func(f *Formatter) {
		for k, s := range styles {
			f.styles[k] = s
		}
	}
}

// NewFormatter creates a Formatter that links notifications to product pages under baseURL.
func NewFormatter(baseURL *url.URL, opts ...FormatterOption) *Formatter {
	f := &Formatter{
		baseURL:  baseURL,
		currency: defaultCurrency,
		styles:   DefaultStyles(),
		md: htmltomarkdown.NewConverter(
			htmltomarkdown.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		policy: bluemonday.UGCPolicy(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Format renders a single change of product.
func (f *Formatter) Format(change models.Change, product models.Product) Notification {
	var n Notification

	switch c := change.(type) {
	case models.TitleChanged:
		n.Title = "Product Title Changed"
		n.Message = fmt.Sprintf("Changed from '%s' to '%s'", c.Old, c.New)
	case models.DescriptionChanged:
		n.Title = "Product Description Changed"
		n.Message = fmt.Sprintf("Changed from:\n%s\nto:\n%s", f.toMarkdown(c.Old), f.toMarkdown(c.New))
	case models.VariantPriceChanged:
		n.Title = fmt.Sprintf("Price Update for Variant %d", c.VariantID)
		n.Message = fmt.Sprintf("Price changed from %s %s to %s %s", c.OldPrice, f.currency, c.NewPrice, f.currency)
		if delta, ok := priceDelta(c.OldPrice, c.NewPrice); ok {
			n.Message += fmt.Sprintf("\nDifference: %s %s", delta, f.currency)
		}
	case models.VariantAvailabilityChanged:
		n.Title = fmt.Sprintf("Variant %d Availability Update", c.VariantID)
		n.Message = fmt.Sprintf("Availability changed from %s to %s", stockLabel(c.OldAvailable), stockLabel(c.NewAvailable))
	case models.VariantAdded:
		n.Title = "New Variant Added: " + c.Variant.Title
		n.Message = fmt.Sprintf("New variant added with price: %s %s", c.Variant.Price, f.currency)
	}

	style := f.styles[styleKey(change)]
	n.Priority = style.Priority
	n.Tags = append([]string(nil), style.Tags...)
	n.Click = f.ProductURL(product.Handle)

	return n
}

// ProductURL returns the storefront page of the product with the given handle.
func (f *Formatter) ProductURL(handle string) string {
	if f.baseURL == nil {
		return ""
	}
	return f.baseURL.ResolveReference(&url.URL{Path: "/products/" + handle}).String()
}

func styleKey(change models.Change) string {
	if c, ok := change.(models.VariantAvailabilityChanged); ok {
		if c.NewAvailable {
			return StyleInStock
		}
		return StyleOutOfStock
	}
	return string(change.Kind())
}

func stockLabel(available bool) string {
	if available {
		return "In Stock"
	}
	return "Out of Stock"
}

// priceDelta returns the signed difference new-old when both prices are decimals
// and the amounts differ.
func priceDelta(oldPrice, newPrice string) (string, bool) {
	o, err := decimal.NewFromString(oldPrice)
	if err != nil {
		return "", false
	}
	n, err := decimal.NewFromString(newPrice)
	if err != nil {
		return "", false
	}

	delta := n.Sub(o)
	if delta.IsZero() {
		return "", false
	}

	places := max(-o.Exponent(), -n.Exponent(), 0)
	s := delta.StringFixed(places)
	if delta.Sign() > 0 {
		s = "+" + s
	}
	return s, true
}

// toMarkdown sanitizes description html and converts it to markdown. Falls back to the
// plain text content when conversion fails or yields nothing.
func (f *Formatter) toMarkdown(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	clean := f.policy.Sanitize(html)
	result, err := f.md.ConvertString(clean)
	if err == nil && strings.TrimSpace(result) != "" {
		return strings.TrimSpace(result)
	}

	return plainText(clean)
}

func plainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
