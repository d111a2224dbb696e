package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	invest "github.com/miluoalbert/invest-master"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the headline numbers of a valuation and its
// breakdowns by class, currency and account.
func SummaryMarkdown(v *invest.Valuation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	s := v.Summarize()
	doc.H1(fmt.Sprintf("Portfolio Summary on %s", s.Date))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Value"), md.Bold(s.TotalValue.String())},
		Rows: [][]string{
			{"Securities", s.SecurityValue.String()},
			{"Cash", s.CashValue.String()},
			{"Positions", strconv.Itoa(s.Positions)},
			{"Accounts", strconv.Itoa(s.Accounts)},
		},
	}
	if s.StalePrices > 0 {
		table.Rows = append(table.Rows, []string{"Stale prices", strconv.Itoa(s.StalePrices)})
	}
	doc.Table(table)

	distributionSection(doc, "By Asset Class", v.ByClass())
	distributionSection(doc, "By Currency", v.ByCurrency())
	distributionSection(doc, "By Account", v.ByAccount())

	issuesSection(doc, v.Issues)
	return doc.String()
}

func distributionSection(doc *md.Markdown, title string, dist []invest.Distribution) {
	if len(dist) == 0 {
		return
	}
	doc.H2(title)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Key", "Value", "Weight"},
	}
	for _, d := range dist {
		table.Rows = append(table.Rows, []string{d.Key, d.Value.String(), d.Weight.String()})
	}
	doc.Table(table)
}
