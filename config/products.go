package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Product is one configured search: what to look for and how to judge a hit.
// Loaded once at startup and immutable for the run.
type Product struct {
	Name       string `mapstructure:"name" validate:"required"`
	SearchTerm string `mapstructure:"search_term" validate:"required"`
	Criteria   string `mapstructure:"criteria"`
}

// LoadProducts reads the products file (yaml or json, decided by extension).
// A missing or empty products list is a configuration error: the run should
// fail before any scraping starts.
func LoadProducts(path string) ([]Product, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read products file %q: %w", path, err)
	}

	var products []Product
	if err := v.UnmarshalKey("products", &products); err != nil {
		return nil, fmt.Errorf("parse products file %q: %w", path, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products configured in %q", path)
	}

	validate := validator.New()
	for i := range products {
		if err := validate.Struct(products[i]); err != nil {
			return nil, fmt.Errorf("invalid product at index %d: %w", i, err)
		}
		if strings.TrimSpace(products[i].Criteria) == "" {
			products[i].Criteria = fmt.Sprintf("Must be a %s", products[i].Name)
		}
	}

	return products, nil
}

// FilterProducts keeps products whose name contains the filter,
// case-insensitive. An empty filter keeps everything.
func FilterProducts(products []Product, filter string) []Product {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return products
	}

	var out []Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), filter) {
			out = append(out, p)
		}
	}
	return out
}
