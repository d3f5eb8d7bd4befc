package v1

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/go-playground/validator"
)

const (
	// MaxFilterLength bounds every free text filter field.
	MaxFilterLength = 128
)

var (
	validate = validator.New()
)

// Filters narrows the asset listing. An empty field is unset and is never
// sent to the API.
type Filters struct {
	Search    string `yaml:"search,omitempty" validate:"max=128"`
	Category  string `yaml:"category,omitempty" validate:"max=128"`
	MinPrice  string `yaml:"minPrice,omitempty" validate:"max=32"`
	MaxPrice  string `yaml:"maxPrice,omitempty" validate:"max=32"`
	Condition string `yaml:"condition,omitempty" validate:"max=128"`
}

// FilterPatch is a partial update of Filters. Nil fields keep their value.
type FilterPatch struct {
	Search    *string
	Category  *string
	MinPrice  *string
	MaxPrice  *string
	Condition *string
}

func WithSearch(s string) FilterPatch    { return FilterPatch{Search: &s} }
func WithCategory(s string) FilterPatch  { return FilterPatch{Category: &s} }
func WithMinPrice(s string) FilterPatch  { return FilterPatch{MinPrice: &s} }
func WithMaxPrice(s string) FilterPatch  { return FilterPatch{MaxPrice: &s} }
func WithCondition(s string) FilterPatch { return FilterPatch{Condition: &s} }

// Merge returns f with every non-nil field of p applied.
func (f Filters) Merge(p FilterPatch) Filters {
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.MinPrice != nil {
		f.MinPrice = *p.MinPrice
	}
	if p.MaxPrice != nil {
		f.MaxPrice = *p.MaxPrice
	}
	if p.Condition != nil {
		f.Condition = *p.Condition
	}
	return f
}

func (f Filters) IsEmpty() bool { return f == Filters{} }

// Query encodes the set fields using the listing endpoint's parameter names.
func (f Filters) Query() url.Values {
	q := url.Values{}
	for k, v := range map[string]string{
		"search":    f.Search,
		"category":  f.Category,
		"minPrice":  f.MinPrice,
		"maxPrice":  f.MaxPrice,
		"condition": f.Condition,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// Validate checks field lengths and that any price bound parses as a finite,
// non-negative number, with the minimum not above the maximum.
func (f Filters) Validate() error {
	if err := validate.Struct(f); err != nil {
		return err
	}

	lo, err := parsePrice("minimum", f.MinPrice)
	if err != nil {
		return err
	}
	hi, err := parsePrice("maximum", f.MaxPrice)
	if err != nil {
		return err
	}
	if f.MinPrice != "" && f.MaxPrice != "" && lo > hi {
		return fmt.Errorf("minimum price %s is above maximum price %s", f.MinPrice, f.MaxPrice)
	}
	return nil
}

func parsePrice(name, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s price %q: %w", name, s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid %s price %q: must be a non-negative number", name, s)
	}
	return v, nil
}
