package worktable

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"mdprep/internal/logging"
)

// Load reads the work table at path and returns its valid rows in order.
// Rows with missing or non-integer ids are skipped with a warning; problems
// that make the whole table unusable return an error wrapping ErrTable.
func Load(path string, logger *slog.Logger) ([]WorkItem, error) {
	logger = logging.NewComponentLogger(logger, "worktable")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrTable, path, err)
	}

	decoded, err := decodeTable(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTable, path, err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrTable, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s contains no header row", ErrTable, path)
	}

	columns, renamed, err := resolveColumns(records[0])
	if err != nil {
		return nil, err
	}
	if len(renamed) > 0 {
		logger.Info("mapped table columns case-insensitively", logging.Any("columns", renamed))
	}

	items := make([]WorkItem, 0, len(records)-1)
	for i, record := range records[1:] {
		// Header is row 1, so the first data row is row 2.
		row := i + 2

		sample, ok := cell(record, columns[ColumnSample])
		cidA, okA := cell(record, columns[ColumnCompoundA])
		cidB, okB := cell(record, columns[ColumnCompoundB])
		if !ok || !okA || !okB {
			logger.Warn("row has missing values, skipping", logging.Int("row", row))
			continue
		}

		sampleID, err := parseID(sample)
		if err != nil {
			logger.Warn("row has invalid sample id, skipping",
				logging.Int("row", row), logging.String("sample", sample))
			continue
		}
		compoundA, errA := parseID(cidA)
		compoundB, errB := parseID(cidB)
		if errA != nil || errB != nil {
			logger.Warn("row has invalid compound id, skipping",
				logging.Int("row", row),
				logging.String("cid_a", cidA), logging.String("cid_b", cidB))
			continue
		}

		items = append(items, WorkItem{SampleID: sampleID, CompoundA: compoundA, CompoundB: compoundB})
	}

	logger.Info("work table loaded", logging.Int("rows", len(records)-1), logging.Int("valid", len(items)))
	return items, nil
}

// decodeTable decodes the table bytes to UTF-8: a BOM-aware pass first
// (handles UTF-8-sig and UTF-16 exports from spreadsheet tools), then plain
// UTF-8, then gives up.
func decodeTable(raw []byte) ([]byte, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(encoding.UTF8Validator), raw)
	if err == nil {
		return decoded, nil
	}
	if utf8.Valid(raw) {
		return raw, nil
	}
	return nil, fmt.Errorf("unrecognized text encoding: %w", err)
}

// resolveColumns maps canonical column names to their index in the header.
// Exact matches win; otherwise a case-insensitive match is accepted and
// reported in the returned rename map.
func resolveColumns(header []string) (map[string]int, map[string]string, error) {
	byExact := make(map[string]int, len(header))
	byLower := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := byExact[name]; !seen {
			byExact[name] = i
		}
		lower := strings.ToLower(name)
		if _, seen := byLower[lower]; !seen {
			byLower[lower] = i
		}
	}

	columns := make(map[string]int, 3)
	renamed := make(map[string]string)
	var missing []string
	for _, canonical := range []string{ColumnSample, ColumnCompoundA, ColumnCompoundB} {
		if idx, ok := byExact[canonical]; ok {
			columns[canonical] = idx
			continue
		}
		if idx, ok := byLower[strings.ToLower(canonical)]; ok {
			columns[canonical] = idx
			renamed[strings.TrimSpace(header[idx])] = canonical
			continue
		}
		missing = append(missing, canonical)
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: missing required columns %v", ErrTable, missing)
	}
	return columns, renamed, nil
}

func cell(record []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(record) {
		return "", false
	}
	value := strings.TrimSpace(record[idx])
	return value, value != ""
}

// parseID accepts integers and integer-valued floats ("42", "42.0"); anything
// else is rejected.
func parseID(value string) (int64, error) {
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", value)
	}
	if f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, fmt.Errorf("not an integer: %q", value)
	}
	return int64(f), nil
}
