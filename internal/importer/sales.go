package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/kosarica/insight-service/internal/analytics"
)

// SalesRow is one sales record tagged with the store it belongs to.
type SalesRow struct {
	StoreID string `json:"store_id"`
	analytics.SalesRecord
}

var salesColumns = map[string][]string{
	"store_id": {"store_id", "store"},
	"date":     {"date", "timestamp", "sold_at", "datetime"},
	"category": {"category"},
	"amount":   {"amount", "revenue", "sales"},
	"units":    {"units", "qty", "quantity"},
}

var requiredSalesColumns = []string{"store_id", "date", "category", "amount", "units"}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseSales reads sales history. Timestamps without a zone are read as UTC.
func ParseSales(content []byte, format Format) (Result[SalesRow], error) {
	t, err := readTable(content, format)
	if err != nil {
		return Result[SalesRow]{}, err
	}
	cols, err := resolveColumns(t.header, salesColumns, requiredSalesColumns)
	if err != nil {
		return Result[SalesRow]{}, err
	}

	res := Result[SalesRow]{
		Rows:      make([]SalesRow, 0, len(t.rows)),
		Errors:    []RowError{},
		TotalRows: len(t.rows),
	}
	for i, row := range t.rows {
		rec, rowErr := parseSalesRow(cols, row, i+2)
		if rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
			continue
		}
		res.Rows = append(res.Rows, rec)
	}
	return res, nil
}

func parseSalesRow(cols columns, row []string, rowNum int) (SalesRow, *RowError) {
	storeID := cols.get(row, "store_id")
	if storeID == "" {
		return SalesRow{}, &RowError{Row: rowNum, Field: "store_id", Message: "required"}
	}
	category := cols.get(row, "category")
	if category == "" {
		return SalesRow{}, &RowError{Row: rowNum, Field: "category", Message: "required"}
	}

	rawDate := cols.get(row, "date")
	date, ok := parseDate(rawDate)
	if !ok {
		return SalesRow{}, &RowError{Row: rowNum, Field: "date", Message: "unrecognised date", Value: rawDate}
	}

	rawAmount := cols.get(row, "amount")
	amount, err := strconv.ParseFloat(strings.ReplaceAll(rawAmount, ",", ""), 64)
	if err != nil || amount < 0 {
		return SalesRow{}, &RowError{Row: rowNum, Field: "amount", Message: "must be a non-negative number", Value: rawAmount}
	}

	rawUnits := cols.get(row, "units")
	units, err := strconv.Atoi(rawUnits)
	if err != nil || units < 0 {
		return SalesRow{}, &RowError{Row: rowNum, Field: "units", Message: "must be a non-negative integer", Value: rawUnits}
	}

	return SalesRow{
		StoreID: storeID,
		SalesRecord: analytics.SalesRecord{
			Date:     date,
			Category: category,
			Amount:   amount,
			Units:    units,
		},
	}, nil
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// GroupByStore splits imported rows into per-store series.
func GroupByStore(rows []SalesRow) map[string][]analytics.SalesRecord {
	out := make(map[string][]analytics.SalesRecord)
	for _, r := range rows {
		out[r.StoreID] = append(out[r.StoreID], r.SalesRecord)
	}
	return out
}
