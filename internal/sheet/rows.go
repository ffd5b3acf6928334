package sheet

import (
	"bytes"
	"encoding/csv"
	"strings"

	appLog "makersite/internal/log"
)

// Column names as they appear in the spreadsheet header row.
// 実際のスプレッドシート列名に合わせている。
const (
	ColName        = "名称"
	ColLocation    = "場所"
	ColRegion      = "地域"
	ColDateFrom    = "から"
	ColDateTo      = "まで"
	ColURL         = "URL"
	ColDescription = "備考"
)

// Row is one data row keyed by header column name. Values are raw cell
// text; Get trims surrounding whitespace.
type Row map[string]string

// Get returns the trimmed cell value for the given column, or "" when
// the column is absent.
func (r Row) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// ParseRows decodes the CSV export into ordered rows. The first record
// is the header; rows whose cells are all empty are dropped. Ragged
// records (short rows) are tolerated: missing cells read as "".
func ParseRows(body []byte) ([]Row, error) {
	if len(body) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(body))
	// Sheets exports can have trailing columns on some rows only.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)

	for _, rec := range records[1:] {
		row := make(Row, len(header))
		empty := true
		for i, col := range header {
			var v string
			if i < len(rec) {
				v = rec[i]
			}
			row[strings.TrimSpace(col)] = v
			if strings.TrimSpace(v) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	appLog.Info("sheet rows parsed", "row_count", len(rows))
	return rows, nil
}
