package boq

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ImportRow is one normalized line from a bulk BOQ upload, ready for the
// upsert keyed on (projectID, itemDescription).
type ImportRow struct {
	Description       string
	Unit              string
	Quantity          decimal.Decimal
	MaterialUnitPrice decimal.Decimal
	LaborUnitPrice    decimal.Decimal
}

// ImportResult reports what a bulk parse produced. Skipped counts data rows
// dropped for having no resolvable description; they are not errors.
type ImportResult struct {
	Rows    []ImportRow
	Skipped int
}

// recognized header names, uppercased
var descriptionHeaders = []string{"ITEM DESCRIPTION", "DESCRIPTION", "ITEM", "MATERIAL NAME"}

const (
	headerUnit              = "UNIT"
	headerQuantity          = "QUANTITY"
	headerMaterialUnitCost  = "MATERIAL UNIT COST"
	headerMaterialTotalCost = "MATERIAL TOTAL COST"
	headerLaborUnitCost     = "LABOR UNIT COST"
	headerLaborTotalCost    = "LABOR TOTAL COST"
)

// ParseBulkImport parses a user-supplied delimited file into import rows.
// The delimiter is detected per file, quoted cells are honored, and numeric
// cells are coerced best-effort: malformed numbers default rather than fail.
func ParseBulkImport(content string) ImportResult {
	result := ImportResult{}

	lines := splitLines(content)
	if len(lines) < 2 {
		return result
	}

	header := stripBOM(lines[0])
	delimiter := DetectDelimiter(header)
	columns := buildColumnMap(SplitCells(header, delimiter))

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := SplitCells(line, delimiter)
		row, ok := parseBulkImportRow(cells, columns)
		if !ok {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

// DetectDelimiter picks the cell separator for a file from its header line:
// semicolon when the line has semicolons and no commas, comma otherwise.
func DetectDelimiter(headerLine string) rune {
	if strings.ContainsRune(headerLine, ';') && !strings.ContainsRune(headerLine, ',') {
		return ';'
	}
	return ','
}

// SplitCells splits one line on the delimiter, honoring double-quoted
// fields. Quotes toggle an in-quotes state; a delimiter inside quotes is
// literal text.
func SplitCells(line string, delimiter rune) []string {
	var cells []string
	var cell strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == delimiter && !inQuotes:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	return cells
}

type columnMap struct {
	description       int
	unit              int
	quantity          int
	materialUnitCost  int
	materialTotalCost int
	laborUnitCost     int
	laborTotalCost    int
}

func buildColumnMap(headers []string) columnMap {
	cols := columnMap{
		description:       -1,
		unit:              -1,
		quantity:          -1,
		materialUnitCost:  -1,
		materialTotalCost: -1,
		laborUnitCost:     -1,
		laborTotalCost:    -1,
	}
	for i, raw := range headers {
		name := strings.ToUpper(strings.TrimSpace(raw))
		switch name {
		case headerUnit:
			cols.unit = i
		case headerQuantity:
			cols.quantity = i
		case headerMaterialUnitCost:
			cols.materialUnitCost = i
		case headerMaterialTotalCost:
			cols.materialTotalCost = i
		case headerLaborUnitCost:
			cols.laborUnitCost = i
		case headerLaborTotalCost:
			cols.laborTotalCost = i
		default:
			if cols.description == -1 {
				for _, alias := range descriptionHeaders {
					if name == alias {
						cols.description = i
						break
					}
				}
			}
		}
	}
	return cols
}

// parseBulkImportRow normalizes one data row. It returns false when the
// resolved description is empty, which callers count as skipped.
func parseBulkImportRow(cells []string, cols columnMap) (ImportRow, bool) {
	row := ImportRow{
		Quantity:          decimal.NewFromInt(1),
		MaterialUnitPrice: decimal.Zero,
		LaborUnitPrice:    decimal.Zero,
	}

	row.Description = resolveDescription(cells, cols.description)
	if row.Description == "" {
		return ImportRow{}, false
	}

	row.Unit = cellAt(cells, cols.unit)

	if qty, ok := parseNumericCell(cellAt(cells, cols.quantity)); ok && qty.IsPositive() {
		row.Quantity = qty
	}

	row.MaterialUnitPrice = resolveUnitCost(
		cellAt(cells, cols.materialUnitCost),
		cellAt(cells, cols.materialTotalCost),
		row.Quantity,
	)
	row.LaborUnitPrice = resolveUnitCost(
		cellAt(cells, cols.laborUnitCost),
		cellAt(cells, cols.laborTotalCost),
		row.Quantity,
	)
	return row, true
}

// resolveDescription applies the misaligned-row heuristic: a description
// that parses as a short number is replaced by the first cell containing
// an alphabetic character.
func resolveDescription(cells []string, idx int) string {
	desc := cellAt(cells, idx)
	if desc == "" {
		return ""
	}
	if _, numeric := parseNumericCell(desc); !numeric || len(desc) >= 6 {
		return desc
	}
	for _, cell := range cells {
		if containsAlpha(cell) {
			return strings.TrimSpace(cell)
		}
	}
	return ""
}

// resolveUnitCost prefers the unit-cost cell; when it is absent or zero and
// a total is present, the unit cost is derived as total / quantity.
func resolveUnitCost(unitCell, totalCell string, quantity decimal.Decimal) decimal.Decimal {
	if unit, ok := parseNumericCell(unitCell); ok && !unit.IsZero() {
		return unit
	}
	total, ok := parseNumericCell(totalCell)
	if !ok || total.IsZero() || !quantity.IsPositive() {
		return decimal.Zero
	}
	return total.DivRound(quantity, 4)
}

func parseNumericCell(cell string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func containsAlpha(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func splitLines(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

func stripBOM(line string) string {
	return strings.TrimPrefix(line, "\uFEFF")
}
