package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/netip"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies the tabular encoding of an export file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from a file name. Anything that is not an
// Excel workbook is treated as CSV.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// requiredColumns must all be present in the header row (case-insensitive).
var requiredColumns = []string{"subnet", "account", "region"}

// tagColumnNames are accepted names for the tag column (case-insensitive).
var tagColumnNames = []string{"tag", "tags"}

// Parser turns a raw tabular export into canonical network records.
type Parser struct{}

// NewParser creates a new inventory parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a tabular export and returns the canonical records in input
// row order. File-level problems (missing columns) abort the parse with a
// ValidationError listing every missing column. Rows with an empty subnet
// are silently skipped; rows with an invalid subnet are excluded and
// reported in ParseResult.Skipped.
func (p *Parser) Parse(r io.Reader, format Format) (*ParseResult, error) {
	rows, err := readRows(r, format)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &ValidationError{Problems: []string{"file has no header row"}}
	}

	header := rows[0]
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	for i, row := range rows[1:] {
		subnet := strings.TrimSpace(cellAt(row, cols.subnet))
		if subnet == "" {
			continue
		}

		canonical, err := canonicalSubnet(subnet)
		if err != nil {
			// Row 1 is the header, so data rows start at 2
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}

		result.Records = append(result.Records, NetworkRecord{
			Subnet:    canonical,
			Account:   strings.TrimSpace(cellAt(row, cols.account)),
			Region:    strings.TrimSpace(cellAt(row, cols.region)),
			Tags:      ParseTags(cellAt(row, cols.tag)),
			RawFields: rawFields(header, row),
		})
	}

	return result, nil
}

// columnIndexes locates the resolved positions of the required columns.
type columnIndexes struct {
	subnet  int
	account int
	region  int
	tag     int
}

// resolveColumns normalizes headers (trim, case-insensitive) and locates the
// required columns plus the tag column. All missing columns are reported
// together.
func resolveColumns(header []string) (*columnIndexes, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, exists := byName[name]; !exists {
			byName[name] = i
		}
	}

	var problems []string
	indexes := &columnIndexes{subnet: -1, account: -1, region: -1, tag: -1}

	for _, required := range requiredColumns {
		idx, ok := byName[required]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing required column: %s", required))
			continue
		}
		switch required {
		case "subnet":
			indexes.subnet = idx
		case "account":
			indexes.account = idx
		case "region":
			indexes.region = idx
		}
	}

	for _, tagName := range tagColumnNames {
		if idx, ok := byName[tagName]; ok {
			indexes.tag = idx
			break
		}
	}
	if indexes.tag < 0 {
		problems = append(problems, "missing TAG column for extended attributes")
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return indexes, nil
}

// canonicalSubnet validates a subnet and returns its canonical CIDR form.
// Only IPv4 prefixes in [8,32] are accepted; multicast and otherwise
// reserved ranges are rejected.
func canonicalSubnet(s string) (string, error) {
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return "", fmt.Errorf("invalid subnet %q", s)
	}
	if !prefix.Addr().Is4() {
		return "", fmt.Errorf("subnet %q is not an IPv4 network", s)
	}
	if prefix.Bits() < 8 || prefix.Bits() > 32 {
		return "", fmt.Errorf("subnet %q prefix length must be between /8 and /32", s)
	}

	masked := prefix.Masked()
	addr := masked.Addr()
	if addr.IsMulticast() || addr.IsLoopback() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return "", fmt.Errorf("subnet %q is in a reserved range", s)
	}

	return masked.String(), nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// rawFields keeps the full original row keyed by trimmed header name.
func rawFields(header, row []string) map[string]string {
	fields := make(map[string]string, len(header))
	for i, h := range header {
		fields[strings.TrimSpace(h)] = cellAt(row, i)
	}
	return fields
}

// readRows loads the whole table into memory. Exports are bounded in
// practice (tens of thousands of rows), so streaming is not worth the
// complexity here.
func readRows(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(r)
	default:
		return readCSV(r)
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}
