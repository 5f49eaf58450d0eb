package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/nse-data/internal/fault"
)

// requiredHeaders is the bit-exact header set expected from upstream CSVs.
var requiredHeaders = []string{
	"Ticker", "Date", "Time", "LTP", "BuyPrice", "BuyQty",
	"SellPrice", "SellQty", "LTQ", "OpenInterest",
}

// timestampLayout parses the combined Date and Time columns.
const timestampLayout = "02/01/2006 15:04:05"

// symbolSuffix is stripped from Ticker before use as the symbol.
const symbolSuffix = ".NSE"

// Row is one validated ingestion row.
type Row struct {
	Symbol          string
	Timestamp       time.Time
	LastTradedPrice float64
	BuyPrice        float64
	BuyQty          int64
	SellPrice       float64
	SellQty         int64
	RemainingQty    int64
	OpenInterest    int64
}

// Batch is one unit of ingestion work, typically one source file.
type Batch struct {
	Name string
	Rows []Row
}

// ParseCSV reads one upstream CSV into a Batch. A missing required header
// rejects the whole input with a Validation failure; a malformed row names
// its line number.
func ParseCSV(name string, r io.Reader) (Batch, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return Batch{}, fault.Validation("csv %s is empty", name)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range requiredHeaders {
		if _, ok := cols[required]; !ok {
			return Batch{}, fault.Validation("csv %s missing required header %q", name, required)
		}
	}

	batch := Batch{Name: name}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Batch{}, fmt.Errorf("read csv record: %w", err)
		}
		line++

		row, err := parseRecord(cols, record)
		if err != nil {
			return Batch{}, fault.Validation("csv %s line %d: %v", name, line, err)
		}
		batch.Rows = append(batch.Rows, row)
	}

	return batch, nil
}

func parseRecord(cols map[string]int, record []string) (Row, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	symbol := strings.TrimSuffix(field("Ticker"), symbolSuffix)
	if symbol == "" {
		return Row{}, fmt.Errorf("empty Ticker")
	}

	ts, err := time.ParseInLocation(timestampLayout, field("Date")+" "+field("Time"), time.UTC)
	if err != nil {
		return Row{}, fmt.Errorf("parse timestamp: %v", err)
	}

	row := Row{Symbol: symbol, Timestamp: ts}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"LTP", &row.LastTradedPrice},
		{"BuyPrice", &row.BuyPrice},
		{"SellPrice", &row.SellPrice},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(field(f.name), 64)
		if err != nil {
			return Row{}, fmt.Errorf("parse %s: %v", f.name, err)
		}
		*f.dst = v
	}

	ints := []struct {
		name string
		dst  *int64
	}{
		{"BuyQty", &row.BuyQty},
		{"SellQty", &row.SellQty},
		{"LTQ", &row.RemainingQty},
		{"OpenInterest", &row.OpenInterest},
	}
	for _, f := range ints {
		v, err := strconv.ParseInt(field(f.name), 10, 64)
		if err != nil {
			return Row{}, fmt.Errorf("parse %s: %v", f.name, err)
		}
		*f.dst = v
	}

	return row, nil
}
