package importer

import (
	"strconv"
	"strings"

	"github.com/kosarica/insight-service/internal/chains"
	"github.com/kosarica/insight-service/internal/stores"
)

var storeColumns = map[string][]string{
	"store_id":      {"store_id", "id", "store code"},
	"name":          {"name", "store name"},
	"chain":         {"chain", "brand", "retailer"},
	"latitude":      {"latitude", "lat"},
	"longitude":     {"longitude", "lon", "lng"},
	"address":       {"address"},
	"city":          {"city"},
	"state":         {"state"},
	"pincode":       {"pincode", "pin", "postal code", "zip"},
	"size_sqft":     {"size_sqft", "sqft", "size"},
	"opening_hours": {"opening_hours", "hours"},
	"is_active":     {"is_active", "active", "status"},
}

var requiredStoreColumns = []string{"store_id", "chain", "latitude", "longitude"}

// ParseStores reads a store catalogue. Rows with an unknown chain, bad
// coordinates or a repeated store ID are reported and skipped.
func ParseStores(content []byte, format Format) (Result[stores.Store], error) {
	t, err := readTable(content, format)
	if err != nil {
		return Result[stores.Store]{}, err
	}
	cols, err := resolveColumns(t.header, storeColumns, requiredStoreColumns)
	if err != nil {
		return Result[stores.Store]{}, err
	}

	res := Result[stores.Store]{
		Rows:      make([]stores.Store, 0, len(t.rows)),
		Errors:    []RowError{},
		TotalRows: len(t.rows),
	}
	seen := make(map[string]bool, len(t.rows))

	for i, row := range t.rows {
		rowNum := i + 2
		s, rowErr := parseStoreRow(cols, row, rowNum)
		if rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
			continue
		}
		if seen[s.StoreID] {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Field: "store_id", Message: "duplicate store id", Value: s.StoreID})
			continue
		}
		seen[s.StoreID] = true
		res.Rows = append(res.Rows, s)
	}
	return res, nil
}

func parseStoreRow(cols columns, row []string, rowNum int) (stores.Store, *RowError) {
	id := cols.get(row, "store_id")
	if id == "" {
		return stores.Store{}, &RowError{Row: rowNum, Field: "store_id", Message: "required"}
	}

	rawChain := cols.get(row, "chain")
	chain, ok := chains.Canonical(rawChain)
	if !ok {
		return stores.Store{}, &RowError{Row: rowNum, Field: "chain", Message: "unknown chain", Value: rawChain}
	}

	lat, err := strconv.ParseFloat(cols.get(row, "latitude"), 64)
	if err != nil {
		return stores.Store{}, &RowError{Row: rowNum, Field: "latitude", Message: "not a number", Value: cols.get(row, "latitude")}
	}
	lon, err := strconv.ParseFloat(cols.get(row, "longitude"), 64)
	if err != nil {
		return stores.Store{}, &RowError{Row: rowNum, Field: "longitude", Message: "not a number", Value: cols.get(row, "longitude")}
	}

	sqft := 0
	if raw := cols.get(row, "size_sqft"); raw != "" {
		f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return stores.Store{}, &RowError{Row: rowNum, Field: "size_sqft", Message: "not a number", Value: raw}
		}
		sqft = int(f)
	}

	name := cols.get(row, "name")
	if name == "" {
		name = id
	}

	s := stores.Store{
		StoreID: id,
		Name:    name,
		Chain:   chain,
		Location: stores.GeoLocation{
			Latitude:  lat,
			Longitude: lon,
			Address:   cols.get(row, "address"),
			City:      cols.get(row, "city"),
			State:     cols.get(row, "state"),
			Pincode:   cols.get(row, "pincode"),
		},
		SizeSqft:     sqft,
		OpeningHours: cols.get(row, "opening_hours"),
		IsActive:     parseActive(cols.get(row, "is_active")),
	}
	if err := s.Validate(); err != nil {
		return stores.Store{}, &RowError{Row: rowNum, Message: err.Error()}
	}
	return s, nil
}

// parseActive treats a blank cell as active.
func parseActive(raw string) bool {
	switch strings.ToLower(raw) {
	case "", "1", "true", "yes", "y", "active", "open":
		return true
	default:
		return false
	}
}
