package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/streetsignal/streetsignal/internal/model"
)

// WriteXLSX writes the results table as an XLSX workbook at path.
func WriteXLSX(path string, results []model.Result, topN int) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	appendRow(sheet, Header(topN))
	for _, r := range results {
		appendRow(sheet, Row(r, topN))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}

func appendRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
