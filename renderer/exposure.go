package renderer

import (
	"bytes"
	"fmt"

	invest "github.com/miluoalbert/invest-master"
	md "github.com/nao1215/markdown"
)

// ExposureMarkdown renders the look-through decomposition of one fund.
func ExposureMarkdown(e *invest.Exposures) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Exposure of %s on %s", e.Parent, e.Date))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft},
		Header:    []string{"Underlying", "Name", "Weight", "Sector"},
	}
	for _, x := range e.List {
		table.Rows = append(table.Rows, []string{
			x.Ticker,
			x.Name,
			invest.WeightPercent(x.Weight).String(),
			x.Dims.Sector,
		})
	}
	doc.Table(table)

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Weight"), md.Bold(invest.WeightPercent(e.TotalWeight()).String())},
	})

	warningsSection(doc, e.Warnings)
	return doc.String()
}
