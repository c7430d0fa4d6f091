package bvt

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Fixed column layout of a BVT sheet export. Layout detection heuristics
// are out of scope; exports must use this order.
const (
	colCategory1 = 0
	colCategory2 = 1
	colCategory3 = 2
	colCheck     = 3
	colResult    = 4

	minColumns = 4
)

// LoadCases reads BVT rows from a CSV file.
func LoadCases(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bvt sheet: %w", err)
	}
	defer f.Close()

	cases, err := ParseCases(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cases, nil
}

// ParseCases reads BVT rows from CSV data. A header row (detected by a
// non-empty first cell that is not a category, conventionally "대분류" or
// "category") is skipped; rows with an empty check cell are skipped.
func ParseCases(r io.Reader) ([]Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var cases []Case
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		if len(record) < minColumns {
			continue
		}
		c := Case{
			Category1: strings.TrimSpace(record[colCategory1]),
			Category2: strings.TrimSpace(record[colCategory2]),
			Category3: strings.TrimSpace(record[colCategory3]),
			Check:     strings.TrimSpace(record[colCheck]),
		}
		if len(record) > colResult {
			c.Result = strings.TrimSpace(record[colResult])
		}
		if c.Check == "" {
			continue
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	head := strings.ToLower(strings.TrimSpace(record[0]))
	return head == "category" || head == "category1" || head == "대분류"
}
