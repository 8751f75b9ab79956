// Package export renders job results as CSV or XLSX tables, one row per
// district.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/streetsignal/streetsignal/internal/model"
)

// Header returns the column names for a topN-wide export.
func Header(topN int) []string {
	cols := []string{"District"}
	for i := 1; i <= topN; i++ {
		cols = append(cols, "Street "+strconv.Itoa(i), "Count "+strconv.Itoa(i))
	}
	return append(cols, "Total POIs", "Total Streets", "Status", "Notes")
}

// Row renders one Result. Street/count columns are padded to topN; failed
// districts emit empty street cells, zero counts and the error in Notes.
func Row(r model.Result, topN int) []string {
	cols := []string{r.District}
	for i := 0; i < topN; i++ {
		if i < len(r.Top) {
			cols = append(cols, r.Top[i].Name, strconv.Itoa(r.Top[i].Count))
		} else {
			cols = append(cols, "", "0")
		}
	}

	status := "Error"
	if r.Success {
		status = "Success"
	}
	return append(cols,
		strconv.Itoa(r.TotalPOIs),
		strconv.Itoa(r.TotalStreets),
		status,
		r.Error,
	)
}

// WriteCSV writes the results table to w.
func WriteCSV(w io.Writer, results []model.Result, topN int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(topN)); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range results {
		if err := cw.Write(Row(r, topN)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", r.District)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
