package renderer

import (
	"bytes"
	"fmt"

	invest "github.com/miluoalbert/invest-master"
	md "github.com/nao1215/markdown"
)

// RebalanceMarkdown renders a drift report: each target against its actual
// look-through exposure, plus whatever the strategy leaves unallocated.
func RebalanceMarkdown(r *invest.RebalanceReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Rebalancing %q on %s", r.Strategy, r.Date))
	doc.PlainTextf("Portfolio value: %s", r.TotalValue)

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft,
		},
		Header: []string{"Key", "Type", "Target", "Actual", "Drift", "Value", "Action"},
	}
	for _, entry := range r.Entries {
		action := ""
		if entry.ActionNeeded {
			action = "rebalance"
		}
		table.Rows = append(table.Rows, []string{
			entry.Key,
			entry.Type.String(),
			invest.WeightPercent(entry.TargetWeight).String(),
			invest.WeightPercent(entry.ActualWeight).String(),
			invest.WeightPercent(entry.Drift).SignedString(),
			entry.Value.String(),
			action,
		})
	}
	doc.Table(table)

	if len(r.Unallocated) > 0 {
		doc.H2("Unallocated")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
			Header:    []string{"Key", "Weight", "Value"},
		}
		for _, entry := range r.Unallocated {
			table.Rows = append(table.Rows, []string{
				entry.Key,
				invest.WeightPercent(entry.ActualWeight).String(),
				entry.Value.String(),
			})
		}
		doc.Table(table)
	}

	warningsSection(doc, r.Warnings)
	issuesSection(doc, r.Issues)
	return doc.String()
}
