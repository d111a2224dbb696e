// Package invest values a personal multi-currency investment ledger at a
// point in time and aggregates its true underlying exposures.
//
// The core functionalities include:
//   - Currency Normalization: converting amounts between currencies using
//     as-of exchange rates, with direct, inverse and one-hop cross lookups
//     through a base currency.
//   - Position Valuation: replaying the transaction journal up to a date to
//     reconstruct quantities and average cost bases, then pricing every
//     position with the freshest market close available.
//   - Look-Through Resolution: recursively decomposing funds into their
//     reported underlying components so that overlapping holdings across
//     funds are merged into a single exposure per underlying.
//   - Rebalancing Evaluation: comparing the resolved exposures against a
//     target allocation strategy and flagging entries that drifted beyond
//     their tolerance.
//
// Market data, exchange rates and fund compositions are plain in-memory
// tables; the pgstore subpackage loads them from PostgreSQL, and the invest
// command-line tool renders the reports.
package invest
