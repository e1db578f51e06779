// Package catalog defines the study items the scheduler orders and loads
// them from JSON or XLSX files.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidCatalog is returned (wrapped) when a catalog fails validation.
var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

// Item is one word, grammar point or concept.
type Item struct {
	Word          string   `json:"word"`
	RelatedFields []string `json:"relatedFields,omitempty"`
	Meaning       string   `json:"meaning,omitempty"`
	Etymology     string   `json:"etymology,omitempty"`
	Difficulty    float64  `json:"difficulty,omitempty"`
}

// Catalog is an ordered item list. Order is significant: it breaks ties in
// relation ranking, cluster membership and boosting.
type Catalog struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Items   []Item `json:"items"`
}

// New builds a catalog from items with a normalized version.
func New(name, version string, items []Item) (*Catalog, error) {
	c := &Catalog{Name: name, Version: version, Items: items}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Words returns the item identifiers in catalog order.
func (c *Catalog) Words() []string {
	words := make([]string, len(c.Items))
	for i, it := range c.Items {
		words[i] = it.Word
	}
	return words
}

// Index returns a lookup from word to its position in Items.
func (c *Catalog) Index() map[string]int {
	idx := make(map[string]int, len(c.Items))
	for i, it := range c.Items {
		idx[it.Word] = i
	}
	return idx
}

// Lookup returns the item with the given word.
func (c *Catalog) Lookup(word string) (Item, bool) {
	for _, it := range c.Items {
		if it.Word == word {
			return it, true
		}
	}
	return Item{}, false
}

// Fingerprint identifies the catalog contents. Two catalogs with equal
// fingerprints produce the same relationship graph.
func (c *Catalog) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00", c.Version)
	// Items holds only strings, slices and floats, so Marshal cannot fail.
	data, _ := json.Marshal(c.Items)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (c *Catalog) normalize() error {
	v := strings.TrimSpace(c.Version)
	if v == "" {
		v = "v0.0.0"
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: version %q is not semver", ErrInvalidCatalog, c.Version)
	}
	c.Version = semver.Canonical(v)

	for i := range c.Items {
		it := &c.Items[i]
		it.Word = strings.TrimSpace(it.Word)
		fields := it.RelatedFields[:0]
		for _, f := range it.RelatedFields {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		it.RelatedFields = fields
	}
	return nil
}

// Validate checks structural rules and returns every violation in one error.
func Validate(c *Catalog) error {
	var errs []string

	seen := make(map[string]int, len(c.Items))
	for i, it := range c.Items {
		if it.Word == "" {
			errs = append(errs, fmt.Sprintf("item %d: empty word", i))
			continue
		}
		if prev, dup := seen[it.Word]; dup {
			errs = append(errs, fmt.Sprintf("item %d: duplicate word %q (first at %d)", i, it.Word, prev))
			continue
		}
		seen[it.Word] = i
		if it.Difficulty < 0 {
			errs = append(errs, fmt.Sprintf("item %q: negative difficulty %g", it.Word, it.Difficulty))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidCatalog, strings.Join(errs, "\n  "))
	}
	return nil
}
