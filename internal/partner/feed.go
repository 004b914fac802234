package partner

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Feed is the partner price list exchanged over YAML, both for import and
// for export.
type Feed struct {
	Shop       string         `json:"shop" yaml:"shop" validate:"required,max=50"`
	Categories []FeedCategory `json:"categories" yaml:"categories" validate:"dive"`
	Goods      []FeedGood     `json:"goods" yaml:"goods" validate:"dive"`
}

type FeedCategory struct {
	ID   uint   `json:"id" yaml:"id" validate:"required"`
	Name string `json:"name" yaml:"name" validate:"required,max=40"`
}

// FeedGood is one offer of the shop. ID is the shop's own identifier.
type FeedGood struct {
	ID         uint              `json:"id" yaml:"id" validate:"required"`
	Category   uint              `json:"category" yaml:"category" validate:"required"`
	Model      string            `json:"model" yaml:"model" validate:"max=80"`
	Name       string            `json:"name" yaml:"name" validate:"required,max=80"`
	Price      uint              `json:"price" yaml:"price"`
	PriceRRC   uint              `json:"price_rrc" yaml:"price_rrc"`
	Quantity   uint              `json:"quantity" yaml:"quantity"`
	Parameters map[string]string `json:"parameters" yaml:"parameters" validate:"dive,keys,required,max=40,endkeys,max=100"`
}

// rawGood mirrors FeedGood but keeps parameter values untyped, since feeds
// mix numbers and strings there.
type rawGood struct {
	ID         uint                   `yaml:"id"`
	Category   uint                   `yaml:"category"`
	Model      string                 `yaml:"model"`
	Name       string                 `yaml:"name"`
	Price      uint                   `yaml:"price"`
	PriceRRC   uint                   `yaml:"price_rrc"`
	Quantity   uint                   `yaml:"quantity"`
	Parameters map[string]interface{} `yaml:"parameters"`
}

type rawFeed struct {
	Shop       string         `yaml:"shop"`
	Categories []FeedCategory `yaml:"categories"`
	Goods      []rawGood      `yaml:"goods"`
}

// ParseFeed decodes a YAML document into a Feed. It does not validate it.
func ParseFeed(data []byte) (*Feed, error) {
	var raw rawFeed
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse partner feed")
	}

	feed := &Feed{
		Shop:       raw.Shop,
		Categories: raw.Categories,
		Goods:      make([]FeedGood, 0, len(raw.Goods)),
	}
	for _, g := range raw.Goods {
		good := FeedGood{
			ID:         g.ID,
			Category:   g.Category,
			Model:      g.Model,
			Name:       g.Name,
			Price:      g.Price,
			PriceRRC:   g.PriceRRC,
			Quantity:   g.Quantity,
			Parameters: make(map[string]string, len(g.Parameters)),
		}
		for name, value := range g.Parameters {
			good.Parameters[name] = formatValue(value)
		}
		feed.Goods = append(feed.Goods, good)
	}
	return feed, nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// Validate checks the feed with the given validator and also makes sure that
// every good references a category declared in the feed.
func (f *Feed) Validate(v *validator.Validate) error {
	if err := v.Struct(f); err != nil {
		return err
	}
	known := make(map[uint]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		known[c.ID] = struct{}{}
	}
	for i, g := range f.Goods {
		if _, ok := known[g.Category]; !ok {
			return errors.Errorf("goods[%d]: unknown category %d", i, g.Category)
		}
	}
	return nil
}

// Marshal encodes the feed as YAML with goods ordered by id.
func (f *Feed) Marshal() ([]byte, error) {
	sorted := *f
	sorted.Goods = append([]FeedGood(nil), f.Goods...)
	sort.Slice(sorted.Goods, func(i, j int) bool { return sorted.Goods[i].ID < sorted.Goods[j].ID })
	sorted.Categories = append([]FeedCategory(nil), f.Categories...)
	sort.Slice(sorted.Categories, func(i, j int) bool { return sorted.Categories[i].ID < sorted.Categories[j].ID })

	out, err := yaml.Marshal(&sorted)
	if err != nil {
		return nil, errors.Wrap(err, "marshal partner feed")
	}
	return out, nil
}
