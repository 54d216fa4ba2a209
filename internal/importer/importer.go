package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/preptrack/internal/database"
	"github.com/example/preptrack/pkg/models"
)

// ImportConfig defines how to read a taxonomy file
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	NameColumn       string // Column with the topic name
	CategoryColumn   string // Column with the category (dsa/apti/cs/dev)
	ImportanceColumn string // Column with the importance score
	ParentColumn     string // Column with the parent topic name (optional)
	SheetName        string // Name of the sheet to import
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		NameColumn:       "A",
		CategoryColumn:   "B",
		ImportanceColumn: "C",
		ParentColumn:     "D",
		SheetName:        "Sheet1",
		StartRow:         2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Errors         []string
}

// ImportTopics loads a topic taxonomy from an Excel or CSV file. Existing
// topics (matched on name and category) get their importance and parent
// updated, new ones are created.
func ImportTopics(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, config)
	}
	return importFromExcel(ctx, config)
}

func importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	imp := newImport(config)
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		imp.processRow(ctx, row, i+1)
	}
	return imp.result, nil
}

func importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	imp := newImport(config)
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		imp.processRow(ctx, row, rowNum)
	}
	return imp.result, nil
}

type topicImport struct {
	config ImportConfig
	repo   *database.TopicRepository
	result *ImportResult
	// known maps "name|category" to topic ID for parent resolution
	known map[string]int64
}

func newImport(config ImportConfig) *topicImport {
	return &topicImport{
		config: config,
		repo:   database.NewTopicRepository(),
		result: &ImportResult{Errors: make([]string, 0)},
		known:  make(map[string]int64),
	}
}

func (imp *topicImport) processRow(ctx context.Context, row []string, rowNum int) {
	imp.result.TotalProcessed++
	if err := imp.importRow(ctx, row); err != nil {
		imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
	}
}

func (imp *topicImport) importRow(ctx context.Context, row []string) error {
	name := strings.TrimSpace(cell(row, imp.config.NameColumn))
	if name == "" {
		return fmt.Errorf("topic name cannot be empty")
	}

	category := models.Category(strings.ToUpper(strings.TrimSpace(cell(row, imp.config.CategoryColumn))))
	if !models.IsValidCategory(string(category)) {
		return fmt.Errorf("unknown category %q", category)
	}

	importance, err := parseImportance(cell(row, imp.config.ImportanceColumn))
	if err != nil {
		return err
	}

	topic := &models.Topic{
		Name:            name,
		Category:        category,
		ImportanceScore: importance,
	}

	parentName := strings.TrimSpace(cell(row, imp.config.ParentColumn))
	if parentName != "" {
		parentID, err := imp.resolveParent(ctx, parentName, category)
		if err != nil {
			return err
		}
		topic.ParentID = sql.NullInt64{Int64: parentID, Valid: true}
	}

	existing, err := imp.repo.FindByName(ctx, name, category)
	if err != nil {
		return err
	}

	if err := imp.repo.Upsert(ctx, topic); err != nil {
		return err
	}
	imp.known[key(name, category)] = topic.ID

	if existing != nil {
		imp.result.Updated++
	} else {
		imp.result.Created++
	}
	return nil
}

// resolveParent finds the parent topic within the same category. Parents
// must appear before their children in the file or already exist.
func (imp *topicImport) resolveParent(ctx context.Context, parentName string, category models.Category) (int64, error) {
	if id, ok := imp.known[key(parentName, category)]; ok {
		return id, nil
	}
	parent, err := imp.repo.FindByName(ctx, parentName, category)
	if err != nil {
		return 0, err
	}
	if parent == nil {
		return 0, fmt.Errorf("parent topic %q not found", parentName)
	}
	imp.known[key(parentName, category)] = parent.ID
	return parent.ID, nil
}

func key(name string, category models.Category) string {
	return strings.ToLower(name) + "|" + string(category)
}

func parseImportance(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 5, nil // middle of the 0-10 scale
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid importance %q", s)
	}
	if val < 0 {
		val = 0
	}
	if val > 10 {
		val = 10
	}
	return val, nil
}

func cell(row []string, column string) string {
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
