package excel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"backoffice/internal/domain"
)

const (
	colProduct  = "product"
	colQuantity = "quantity"
	colUnitCost = "unit_cost"
)

var headerAliases = map[string]string{
	"product":        colProduct,
	"product name":   colProduct,
	"slug":           colProduct,
	"producto":       colProduct,
	"nombre":         colProduct,
	"referencia":     colProduct,
	"quantity":       colQuantity,
	"qty":            colQuantity,
	"cantidad":       colQuantity,
	"unidades":       colQuantity,
	"unit cost":      colUnitCost,
	"cost":           colUnitCost,
	"costo":          colUnitCost,
	"costo unitario": colUnitCost,
	"precio compra":  colUnitCost,
}

// ParseBatchItems reads the first sheet of an xlsx workbook into import rows.
// The header row must name a product, quantity and unit cost column; blank
// product cells end up skipped.
func ParseBatchItems(reader io.Reader) ([]domain.BatchItemImportRow, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	for _, required := range []string{colProduct, colQuantity, colUnitCost} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := make([]domain.BatchItemImportRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		line := index + 1
		product := strings.TrimSpace(readCell(cells, colMap[colProduct]))
		if product == "" {
			continue
		}

		qty, err := parseInt(readCell(cells, colMap[colQuantity]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid quantity: %w", line, err)
		}
		if qty <= 0 {
			return nil, fmt.Errorf("row %d invalid quantity: must be greater than 0", line)
		}

		cost, err := parseMoney(readCell(cells, colMap[colUnitCost]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid unit_cost: %w", line, err)
		}
		if cost.IsNegative() {
			return nil, fmt.Errorf("row %d invalid unit_cost: cannot be negative", line)
		}

		result = append(result, domain.BatchItemImportRow{
			Row:      line,
			Product:  product,
			Quantity: qty,
			UnitCost: cost,
		})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	return result, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		canonical, ok := headerAliases[normalizeHeader(col)]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	return strings.Join(strings.Fields(value), " ")
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseInt(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	asFloat, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.Mod(asFloat, 1) != 0 {
		return 0, fmt.Errorf("must be an integer")
	}
	return int(asFloat), nil
}

// parseMoney accepts peso amounts written either way round: "$ 1.200.000",
// "1.200", "1.200.000,50", "1,200,000.50" and "1200000.50". A lone separator
// followed by exactly three digits groups thousands; otherwise it marks the
// decimals. When both separators appear the last one marks the decimals.
func parseMoney(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "$")
	value = strings.Join(strings.Fields(value), "")
	if value == "" {
		return decimal.Zero, fmt.Errorf("value is empty")
	}

	dot, comma := strings.LastIndex(value, "."), strings.LastIndex(value, ",")
	switch {
	case dot >= 0 && comma >= 0:
		thousands, decimals := ",", "."
		if comma > dot {
			thousands, decimals = ".", ","
		}
		value = strings.ReplaceAll(value, thousands, "")
		value = strings.Replace(value, decimals, ".", 1)
	case dot >= 0:
		value = normalizeSeparator(value, ".")
	case comma >= 0:
		value = normalizeSeparator(value, ",")
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number")
	}
	return parsed, nil
}

// normalizeSeparator rewrites value, which contains sep as its only
// separator, into plain decimal notation.
func normalizeSeparator(value, sep string) string {
	parts := strings.Split(value, sep)
	if len(parts) > 2 {
		return strings.Join(parts, "")
	}
	whole, frac := parts[0], parts[1]
	grouped := len(frac) == 3 && len(whole) >= 1 && len(whole) <= 3 && strings.TrimLeft(whole, "-") != "0"
	if grouped {
		return whole + frac
	}
	return whole + "." + frac
}
