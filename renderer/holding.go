// Package renderer turns valuation and analysis reports into markdown.
package renderer

import (
	"bytes"
	"fmt"

	invest "github.com/miluoalbert/invest-master"
	md "github.com/nao1215/markdown"
)

// HoldingMarkdown renders a point-in-time valuation: every security
// position, every cash balance and the total, all in the base currency.
func HoldingMarkdown(v *invest.Valuation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Holdings on %s", v.Date))

	if len(v.Positions) > 0 {
		doc.H2("Securities")
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft,
			},
			Header: []string{"Account", "Ticker", "Quantity", "Price", "Value", "Price Date"},
		}
		for _, pos := range v.Positions {
			priceDate := pos.PriceDate.String()
			if pos.Source == invest.PriceStale {
				priceDate += " (stale)"
			}
			table.Rows = append(table.Rows, []string{
				pos.Account,
				pos.Ticker,
				pos.Quantity.String(),
				pos.Price.String(),
				pos.Value.String(),
				priceDate,
			})
		}
		doc.Table(table)
	}

	if len(v.Cash) > 0 {
		doc.H2("Cash")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
			Header:    []string{"Account", "Currency", "Balance", "Value"},
		}
		for _, cash := range v.Cash {
			table.Rows = append(table.Rows, []string{
				cash.Account,
				cash.Currency,
				cash.Balance.String(),
				cash.Value.String(),
			})
		}
		doc.Table(table)
	}

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Value"), md.Bold(v.TotalValue.String())},
	})

	issuesSection(doc, v.Issues)
	return doc.String()
}

// issuesSection lists positions that could not be valued.
func issuesSection(doc *md.Markdown, issues []invest.Issue) {
	if len(issues) == 0 {
		return
	}
	doc.H2("Issues")
	var lines []string
	for _, issue := range issues {
		lines = append(lines, issue.String())
	}
	doc.BulletList(lines...)
}

// warningsSection lists data-quality warnings raised during resolution.
func warningsSection(doc *md.Markdown, warnings []invest.Warning) {
	if len(warnings) == 0 {
		return
	}
	doc.H2("Warnings")
	var lines []string
	for _, warning := range warnings {
		lines = append(lines, warning.String())
	}
	doc.BulletList(lines...)
}
