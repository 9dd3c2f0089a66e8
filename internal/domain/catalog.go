package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownService is returned when a service id is not part of the catalog.
var ErrUnknownService = errors.New("unknown service")

// ServiceOffering is a purchasable catalog entry. Price is in whole USD;
// zero means the offering is priced on request.
type ServiceOffering struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       int64    `json:"price" yaml:"price"`
	Duration    string   `json:"duration" yaml:"duration"`
	Features    []string `json:"features" yaml:"features"`
}

// IsCustomPriced reports whether the offering has no list price.
func (s ServiceOffering) IsCustomPriced() bool {
	return s.Price == 0
}

// Catalog is the immutable set of service offerings, kept in catalog order.
type Catalog struct {
	offerings []ServiceOffering
	index     map[string]int
}

// NewCatalog builds a catalog, rejecting empty ids, duplicate ids and
// negative prices.
func NewCatalog(offerings []ServiceOffering) (*Catalog, error) {
	c := &Catalog{
		offerings: make([]ServiceOffering, 0, len(offerings)),
		index:     make(map[string]int, len(offerings)),
	}
	for i, o := range offerings {
		if o.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: empty id", i)
		}
		if _, dup := c.index[o.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, o.ID)
		}
		if o.Price < 0 {
			return nil, fmt.Errorf("catalog entry %q: negative price %d", o.ID, o.Price)
		}
		c.index[o.ID] = len(c.offerings)
		c.offerings = append(c.offerings, o)
	}
	return c, nil
}

// All returns a copy of every offering in catalog order.
func (c *Catalog) All() []ServiceOffering {
	out := make([]ServiceOffering, len(c.offerings))
	copy(out, c.offerings)
	return out
}

// Len returns the number of offerings.
func (c *Catalog) Len() int {
	return len(c.offerings)
}

// Lookup returns the offering with the given id.
func (c *Catalog) Lookup(id string) (ServiceOffering, bool) {
	i, ok := c.index[id]
	if !ok {
		return ServiceOffering{}, false
	}
	return c.offerings[i], true
}

// Contains reports whether id is a catalog entry.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Filter returns the offerings whose id is in ids, in catalog order.
// Unknown ids are ignored.
func (c *Catalog) Filter(ids []string) []ServiceOffering {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]ServiceOffering, 0, len(want))
	for _, o := range c.offerings {
		if _, ok := want[o.ID]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Total sums the price of every catalog entry whose id is in ids. Each
// offering is counted once.
func (c *Catalog) Total(ids []string) int64 {
	var total int64
	for _, o := range c.Filter(ids) {
		total += o.Price
	}
	return total
}
