package invest

import (
	"fmt"
	"maps"
	"slices"

	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

// DefaultMaxDepth bounds look-through recursion when the caller does not.
const DefaultMaxDepth = 4

// compositionEpsilon is the tolerance on the sum of resolved effective
// weights: beyond it the composition data is considered stale or incomplete.
var compositionEpsilon = decimal.NewFromFloat(0.005)

// Component is one look-through row: on a report date, the parent fund held
// the underlying at the given weight. Underlying may be free text that does
// not reference any declared asset; such rows are terminal leaves carrying
// only their own descriptive dimensions.
type Component struct {
	Parent     string
	ReportDate date.Date
	Underlying string
	Name       string
	Weight     decimal.Decimal
	Sector     string
	Region     string
	Country    string
	Currency   string
}

// Dimensions are the descriptive axes of an exposure.
type Dimensions struct {
	Sector   string
	Region   string
	Country  string
	Currency string
}

func (d Dimensions) dims() Dimensions { return d }

func (c Component) dims() Dimensions {
	return Dimensions{Sector: c.Sector, Region: c.Region, Country: c.Country, Currency: c.Currency}
}

// empty reports whether no axis is set.
func (d Dimensions) empty() bool { return d == Dimensions{} }

// Compositions indexes look-through rows by parent and report date, so the
// most recent known composition of a fund can be found for any date.
type Compositions struct {
	byParent map[string]*date.History[[]Component]
}

// NewCompositions returns an empty composition index.
func NewCompositions() *Compositions {
	return &Compositions{byParent: make(map[string]*date.History[[]Component])}
}

// Append records component rows. Within one (parent, report date) snapshot
// the underlying is unique: a duplicate row overwrites the previous one.
func (c *Compositions) Append(comps ...Component) {
	for _, comp := range comps {
		h, ok := c.byParent[comp.Parent]
		if !ok {
			h = new(date.History[[]Component])
			c.byParent[comp.Parent] = h
		}
		snapshot, _ := h.Get(comp.ReportDate)
		if i := slices.IndexFunc(snapshot, func(x Component) bool { return x.Underlying == comp.Underlying }); i >= 0 {
			snapshot[i] = comp
		} else {
			snapshot = append(snapshot, comp)
		}
		h.Append(comp.ReportDate, snapshot)
	}
}

// Parents returns the sorted tickers that have at least one composition snapshot.
func (c *Compositions) Parents() []string {
	return slices.Sorted(maps.Keys(c.byParent))
}

// Has reports whether the ticker is decomposable at all.
func (c *Compositions) Has(ticker string) bool {
	_, ok := c.byParent[ticker]
	return ok
}

// AsOf returns the most recent snapshot of the parent at or before 'on',
// and its report date. When the only known snapshots are later than 'on',
// the earliest one is returned: a known composition, even a late one, beats
// treating a fund as opaque.
func (c *Compositions) AsOf(parent string, on date.Date) ([]Component, date.Date, bool) {
	h, ok := c.byParent[parent]
	if !ok || h.Len() == 0 {
		return nil, date.Date{}, false
	}
	if day, snapshot, ok := h.DateAsOf(on); ok {
		return snapshot, day, true
	}
	day, snapshot := h.Earliest()
	return snapshot, day, true
}

// Exposure is one resolved underlying: its effective weight relative to the
// parent (1.0 = the whole position) and its descriptive dimensions.
type Exposure struct {
	Ticker string
	Name   string
	Weight decimal.Decimal
	Dims   Dimensions
}

// Exposures is the result of resolving a parent into its ultimate
// underlyings. The list keeps first-encountered order, duplicates across
// branches already merged.
type Exposures struct {
	Parent   string
	Date     date.Date
	List     []Exposure
	Warnings []Warning
}

// TotalWeight sums the effective weights. For a parent with complete
// composition data it should be within compositionEpsilon of 1.
func (e *Exposures) TotalWeight() decimal.Decimal {
	total := decimal.Decimal{}
	for _, x := range e.List {
		total = total.Add(x.Weight)
	}
	return total
}

// Get returns the exposure of one underlying ticker.
func (e *Exposures) Get(ticker string) (Exposure, bool) {
	for _, x := range e.List {
		if x.Ticker == ticker {
			return x, true
		}
	}
	return Exposure{}, false
}

// Resolver recursively expands fund holdings into ultimate underlying
// exposures. It memoizes per (ticker, report date) within its own lifetime:
// one resolver is meant to serve one evaluation run.
type Resolver struct {
	comps    *Compositions
	market   *MarketData
	maxDepth int
	memo     map[memoKey]*memoEntry
}

type memoKey struct {
	ticker     string
	reportDate date.Date
}

type memoEntry struct {
	list     []Exposure
	warnings []Warning
	height   int // nesting levels consumed below this node
}

// NewResolver returns a resolver bounded to maxDepth nesting levels
// (values below one fall back to DefaultMaxDepth).
func NewResolver(comps *Compositions, market *MarketData, maxDepth int) *Resolver {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{
		comps:    comps,
		market:   market,
		maxDepth: maxDepth,
		memo:     make(map[memoKey]*memoEntry),
	}
}

// Resolve expands the parent held on 'on' into its ultimate underlyings.
//
// A parent with no composition data resolves to itself at weight 1. Cyclic
// structures are truncated where a ticker reappears on the recursion path
// and surfaced as CyclicComposition warnings. When the resolved weights of
// a decomposable parent stray beyond tolerance from 1.0 a CompositionDrift
// warning is attached; both warnings are non-fatal.
func (r *Resolver) Resolve(parent string, on date.Date) (*Exposures, error) {
	if parent == "" {
		return nil, fmt.Errorf("cannot resolve exposure of an empty ticker")
	}
	acc := newExposureAcc()
	path := []string{parent}
	decomposed, _, _ := r.resolve(parent, on, path, 1, one, acc)

	result := &Exposures{
		Parent:   parent,
		Date:     on,
		List:     acc.list,
		Warnings: acc.warnings,
	}
	if decomposed {
		if drift := result.TotalWeight().Sub(one).Abs(); drift.GreaterThan(compositionEpsilon) {
			result.Warnings = append(result.Warnings, Warning{
				Kind:   CompositionDrift,
				Ticker: parent,
				Detail: fmt.Sprintf("effective weights sum to %s", result.TotalWeight()),
			})
		}
	}
	return result, nil
}

// exposureAcc merges exposures across branches, keeping first-encountered
// order and detecting dimension disagreements.
type exposureAcc struct {
	list     []Exposure
	index    map[string]int
	warnings []Warning
	seen     map[Warning]bool
}

func newExposureAcc() *exposureAcc {
	return &exposureAcc{index: make(map[string]int), seen: make(map[Warning]bool)}
}

// add merges one contribution. Duplicate underlyings across branches sum
// their weights; on dimension disagreement the first encountered wins and a
// DimensionConflict warning is recorded.
func (a *exposureAcc) add(x Exposure) {
	i, ok := a.index[x.Ticker]
	if !ok {
		a.index[x.Ticker] = len(a.list)
		a.list = append(a.list, x)
		return
	}
	kept := &a.list[i]
	kept.Weight = kept.Weight.Add(x.Weight)
	if kept.Name == "" {
		kept.Name = x.Name
	}
	switch {
	case kept.Dims.empty():
		kept.Dims = x.Dims
	case !x.Dims.empty() && x.Dims != kept.Dims:
		a.warnings = append(a.warnings, Warning{
			Kind:   DimensionConflict,
			Ticker: x.Ticker,
			Detail: fmt.Sprintf("paths disagree, keeping %+v", kept.Dims),
		})
	}
}

// warn records a warning once; memoized subtrees replay into several
// branches but their warnings describe the same structure.
func (a *exposureAcc) warn(w Warning) {
	if a.seen[w] {
		return
	}
	a.seen[w] = true
	a.warnings = append(a.warnings, w)
}

// assetDims builds terminal dimensions from the asset catalog, for parents
// and underlyings that have no component row of their own.
func (r *Resolver) assetDims(ticker string) (name string, dims Dimensions) {
	if asset := r.market.Get(ticker); asset != nil {
		return asset.Name, Dimensions{
			Sector:   asset.SubClass,
			Currency: asset.Currency,
		}
	}
	return "", Dimensions{}
}

// resolve expands 'ticker' held at effective weight 'scale' into acc.
//
// 'path' is the explicit recursion path used for local cycle detection, and
// depth counts nesting levels consumed (the top-level call is depth 1).
// It reports whether the ticker was decomposed, whether the subtree was
// resolved purely (free of cycle truncation and depth cutoff, hence safe to
// memoize and reuse) and the subtree height: the number of decomposition
// levels it consumed, zero for a terminal leaf.
func (r *Resolver) resolve(ticker string, on date.Date, path []string, depth int, scale decimal.Decimal, acc *exposureAcc) (decomposed, pure bool, height int) {
	components, reportDate, ok := r.comps.AsOf(ticker, on)
	if !ok {
		// a plain asset with no decomposition data is its own terminal exposure
		name, dims := r.assetDims(ticker)
		acc.add(Exposure{Ticker: ticker, Name: name, Weight: scale, Dims: dims})
		return false, true, 0
	}

	// A memoized subtree is only valid where enough depth budget remains to
	// replay its full height.
	key := memoKey{ticker: ticker, reportDate: reportDate}
	if entry, ok := r.memo[key]; ok && depth+entry.height-1 <= r.maxDepth {
		for _, x := range entry.list {
			acc.add(Exposure{Ticker: x.Ticker, Name: x.Name, Weight: x.Weight.Mul(scale), Dims: x.Dims})
		}
		for _, w := range entry.warnings {
			acc.warn(w)
		}
		return true, true, entry.height
	}

	// resolve into a fresh accumulator so the subtree can be memoized
	sub := newExposureAcc()
	pure = true
	height = 1

	for _, comp := range components {
		child := comp.Underlying
		childDims := comp.dims()

		switch {
		case slices.Contains(path, child):
			// reported cyclic holding: stop descending, emit terminal
			sub.add(Exposure{Ticker: child, Name: comp.Name, Weight: comp.Weight, Dims: childDims})
			sub.warn(Warning{
				Kind:   CyclicComposition,
				Ticker: child,
				Detail: fmt.Sprintf("cycle via %v truncated", path),
			})
			pure = false
		case r.comps.Has(child) && depth < r.maxDepth:
			_, childPure, childHeight := r.resolve(child, on, append(path, child), depth+1, comp.Weight, sub)
			pure = pure && childPure
			if 1+childHeight > height {
				height = 1 + childHeight
			}
		case r.comps.Has(child):
			// depth limit reached: the fund stays unexpanded at its weight
			sub.add(Exposure{Ticker: child, Name: comp.Name, Weight: comp.Weight, Dims: childDims})
			pure = false
		default:
			// terminal underlying; free-text tickers keep only the row's dimensions
			if childDims.empty() {
				_, childDims = r.assetDims(child)
			}
			sub.add(Exposure{Ticker: child, Name: comp.Name, Weight: comp.Weight, Dims: childDims})
		}
	}

	if pure {
		r.memo[key] = &memoEntry{
			list:     slices.Clone(sub.list),
			warnings: slices.Clone(sub.warnings),
			height:   height,
		}
	}

	for _, x := range sub.list {
		acc.add(Exposure{Ticker: x.Ticker, Name: x.Name, Weight: x.Weight.Mul(scale), Dims: x.Dims})
	}
	for _, w := range sub.warnings {
		acc.warn(w)
	}
	return true, pure, height
}
