// Package importer loads vocabulary content from Excel or CSV files into
// the topic/word tables, where lesson assembly and review item creation
// pick it up.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lexibot/internal/apperrors"
	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/pkg/models"
)

// Config defines where the file is and how its columns map to word fields.
// Columns are Excel-style letters ("A", "B", ...).
type Config struct {
	FilePath            string
	WordColumn          string
	TranslationColumn   string
	DescriptionColumn   string
	TopicColumn         string
	DifficultyColumn    string
	PronunciationColumn string
	ExamplesColumn      string
	SheetName           string
	StartRow            int // 1-based first data row
}

// DefaultConfig returns the default column mapping
func DefaultConfig(path string) Config {
	return Config{
		FilePath:            path,
		WordColumn:          "A",
		TranslationColumn:   "B",
		DescriptionColumn:   "C",
		TopicColumn:         "D",
		DifficultyColumn:    "E",
		PronunciationColumn: "F",
		ExamplesColumn:      "G",
		SheetName:           "Sheet1",
		StartRow:            2, // skip the header row
	}
}

// Result holds the outcome of an import run. Row-level failures are
// collected and the import continues.
type Result struct {
	TotalProcessed int
	TopicsCreated  int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer writes imported vocabulary through the word and topic repositories
type Importer struct {
	topics *database.TopicRepository
	words  *database.WordRepository
}

// New creates an importer over the given repositories
func New(topics *database.TopicRepository, words *database.WordRepository) *Importer {
	return &Importer{topics: topics, words: words}
}

// ImportWords imports vocabulary from an Excel or CSV file, chosen by
// file extension
func (im *Importer) ImportWords(ctx context.Context, config Config) (*Result, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return im.importFromCSV(ctx, config)
	}
	return im.importFromExcel(ctx, config)
}

func (im *Importer) importFromExcel(ctx context.Context, config Config) (*Result, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &Result{Errors: []string{}}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		record := wordRecord{
			word:          cell(row, config.WordColumn),
			translation:   cell(row, config.TranslationColumn),
			description:   cell(row, config.DescriptionColumn),
			topic:         cell(row, config.TopicColumn),
			difficulty:    cell(row, config.DifficultyColumn),
			pronunciation: cell(row, config.PronunciationColumn),
			examples:      cell(row, config.ExamplesColumn),
		}
		if err := im.upsertWord(ctx, record, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func (im *Importer) importFromCSV(ctx context.Context, config Config) (*Result, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := &Result{Errors: []string{}}
	rowNum := 0
	currentTopic := ""

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		// A row with only the first field filled is a topic header
		if len(row) >= 2 && strings.TrimSpace(row[0]) != "" && strings.TrimSpace(row[1]) == "" {
			currentTopic = strings.Trim(strings.TrimSpace(row[0]), "\"")
			continue
		}
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			result.Skipped++
			continue
		}

		result.TotalProcessed++
		record := wordRecord{
			word:        strings.TrimSpace(row[0]),
			translation: strings.TrimSpace(row[1]),
			topic:       currentTopic,
		}
		if len(row) > 2 {
			record.description = strings.TrimSpace(row[2])
		}
		if err := im.upsertWord(ctx, record, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

type wordRecord struct {
	word          string
	translation   string
	description   string
	topic         string
	difficulty    string
	pronunciation string
	examples      string
}

// upsertWord creates or updates one vocabulary word under its topic
func (im *Importer) upsertWord(ctx context.Context, record wordRecord, result *Result) error {
	word := strings.TrimSpace(record.word)
	translation := strings.TrimSpace(record.translation)
	if word == "" || translation == "" {
		result.Skipped++
		return nil
	}

	topicName := strings.TrimSpace(record.topic)
	if topicName == "" {
		topicName = "General"
	}
	topic, err := im.topics.GetByName(ctx, topicName)
	if errors.Is(err, apperrors.ErrNotFound) {
		topic = &models.Topic{Name: topicName}
		if err := im.topics.Create(ctx, topic); err != nil {
			return fmt.Errorf("topic %q: %w", topicName, err)
		}
		result.TopicsCreated++
	} else if err != nil {
		return fmt.Errorf("topic %q: %w", topicName, err)
	}

	difficulty := 1
	if d, err := strconv.Atoi(strings.TrimSpace(record.difficulty)); err == nil && d >= 1 && d <= 5 {
		difficulty = d
	}

	existing, err := im.words.GetByTextAndTopic(ctx, word, topic.ID)
	if err == nil {
		existing.Translation = translation
		existing.Description = record.description
		existing.Examples = record.examples
		existing.Difficulty = difficulty
		existing.Pronunciation = record.pronunciation
		if err := im.words.Update(ctx, existing); err != nil {
			return err
		}
		result.Updated++
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	if err := im.words.Create(ctx, &models.Word{
		Word:          word,
		Translation:   translation,
		Description:   record.description,
		Examples:      record.examples,
		TopicID:       topic.ID,
		Difficulty:    difficulty,
		Pronunciation: record.pronunciation,
	}); err != nil {
		return err
	}
	result.Created++
	return nil
}

// cell returns the value of an Excel-lettered column in a row, or ""
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// columnToIndex converts an Excel column letter ("A", "B", "AA") to a
// zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	idx := 0
	for _, c := range column {
		if c < 'A' || c > 'Z' {
			return -1
		}
		idx = idx*26 + int(c-'A') + 1
	}
	return idx - 1
}
