// Package fundjson turns fund composition feeds into look-through rows.
// Providers publish holdings as JSON of wildly different shapes, so a
// Mapping of jsonpath expressions describes where each field lives.
package fundjson

import (
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/bytedance/sonic"
	invest "github.com/miluoalbert/invest-master"
	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

// Mapping locates the holdings of one provider's JSON document. Items must
// select the holdings array; the field paths are evaluated against each
// item. Optional fields left empty are skipped.
type Mapping struct {
	Items          string `yaml:"items"`
	Ticker         string `yaml:"ticker"`
	Name           string `yaml:"name"`
	Weight         string `yaml:"weight"`
	Sector         string `yaml:"sector"`
	Region         string `yaml:"region"`
	Country        string `yaml:"country"`
	Currency       string `yaml:"currency"`
	PercentWeights bool   `yaml:"percent_weights"` // weights given as 7.2 instead of 0.072
}

// Parse decodes a provider document and extracts the composition of the
// parent fund on the report date.
func Parse(doc []byte, parent string, reportDate date.Date, mapping Mapping) ([]invest.Component, error) {
	var root any
	if err := sonic.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("invalid holdings document for %s: %w", parent, err)
	}

	jval, err := jsonpath.Get(mapping.Items, root)
	if err != nil {
		return nil, fmt.Errorf("holdings of %s: path %q: %w", parent, mapping.Items, err)
	}
	items, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("holdings of %s: path %q is not an array", parent, mapping.Items)
	}

	comps := make([]invest.Component, 0, len(items))
	for i, item := range items {
		ticker, err := stringAt(item, mapping.Ticker)
		if err != nil {
			return nil, fmt.Errorf("holding #%d of %s: %w", i+1, parent, err)
		}
		weight, err := weightAt(item, mapping.Weight)
		if err != nil {
			return nil, fmt.Errorf("holding #%d of %s: %w", i+1, parent, err)
		}
		if mapping.PercentWeights {
			weight = weight.Div(decimal.NewFromInt(100))
		}

		comp := invest.Component{
			Parent:     parent,
			ReportDate: reportDate,
			Underlying: ticker,
			Weight:     weight,
		}
		comp.Name, _ = stringAt(item, mapping.Name)
		comp.Sector, _ = stringAt(item, mapping.Sector)
		comp.Region, _ = stringAt(item, mapping.Region)
		comp.Country, _ = stringAt(item, mapping.Country)
		comp.Currency, _ = stringAt(item, mapping.Currency)
		comps = append(comps, comp)
	}
	return comps, nil
}

// stringAt evaluates a jsonpath against one holdings item. An empty path is
// not an error, just an absent field.
func stringAt(item any, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	jval, err := jsonpath.Get(path, item)
	if err != nil {
		return "", fmt.Errorf("path %q: %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list of one
	// answer or a single answer
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("path %q: %v is not a string", path, jval)
	}
	return s, nil
}

// weightAt reads a weight that providers serve either as a number or as a
// numeric string.
func weightAt(item any, path string) (decimal.Decimal, error) {
	if path == "" {
		return decimal.Decimal{}, fmt.Errorf("mapping has no weight path")
	}
	jval, err := jsonpath.Get(path, item)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("path %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		w, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("path %q: %q is not a number", path, v)
		}
		return w, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("path %q: %v is not a number", path, jval)
	}
}
