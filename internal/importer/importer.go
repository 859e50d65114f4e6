package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV files and inserts/updates products. A row
// with a key starts a product; following rows without a key add options to it.
//
//	key,name,description,currency,imageUrl,option.key,option.name,option.price
//	taxi-lamp,Click & Go,,NOK,,complete,Complete lamp,3480.00
//	,,,,,topOnly,Top only,2500.00
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	ID       string
	Key      string
	Name     string
	Desc     string
	Currency string
	ImageURL string
	Options  []domain.ProductOption
}

// Run parses CSV rows and upserts products grouped by product key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if row == nil {
			continue
		}

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows belong to the current product.
		if current == nil {
			return imported, fmt.Errorf("line %d: option row before any product", line)
		}
		current.Options = append(current.Options, row.Options...)
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Key == "" || row.Name == "" || len(row.Options) == 0 {
		return fmt.Errorf("invalid product row (missing required fields) for key %q", row.Key)
	}
	if row.ID != "" && len(row.ID) != 36 {
		return fmt.Errorf("invalid id for key %q: %s", row.Key, row.ID)
	}
	currency := row.Currency
	if currency == "" {
		currency = "NOK"
	}

	p := domain.Product{
		ID:          row.ID,
		Key:         row.Key,
		Name:        row.Name,
		Description: row.Desc,
		Currency:    strings.ToUpper(currency),
		ImageURL:    row.ImageURL,
		Options:     row.Options,
	}

	_, err := i.productRepo.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	key := pick(record, index, "key")
	optKey := pick(record, index, "option.key")
	if key == "" && optKey == "" {
		return nil, nil
	}

	row := &csvRow{
		ID:       pick(record, index, "id"),
		Key:      key,
		Name:     pick(record, index, "name"),
		Desc:     pick(record, index, "description"),
		Currency: pick(record, index, "currency"),
		ImageURL: pick(record, index, "imageUrl"),
	}
	if optKey != "" {
		cents, err := parsePrice(pick(record, index, "option.price"))
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", optKey, err)
		}
		row.Options = []domain.ProductOption{{
			Key:        optKey,
			Name:       pick(record, index, "option.name"),
			PriceCents: cents,
		}}
	}
	return row, nil
}

// parsePrice converts a major-unit amount such as "3480.00" into minor units.
func parsePrice(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("price required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() || minor.IsNegative() {
		return 0, fmt.Errorf("price %q must be non-negative with at most two decimals", s)
	}
	return minor.IntPart(), nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
