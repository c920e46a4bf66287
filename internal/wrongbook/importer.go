package wrongbook

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	apperrors "github.com/lexiboost/lexiboost/internal/errors"
	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/repository"
)

// ImportResult summarizes one CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer loads wrongbook entries from CSV files. Each imported word gets a
// review record that is due immediately, so it surfaces in the next session.
type Importer struct {
	words    repository.WordRepository
	progress repository.ProgressRepository
	now      func() time.Time
}

func NewImporter(words repository.WordRepository, progress repository.ProgressRepository, now func() time.Time) *Importer {
	if now == nil {
		now = time.Now
	}
	return &Importer{words: words, progress: progress, now: now}
}

// ImportCSV reads words from the first column of a CSV stream and adds them to
// the user's wrongbook. A leading "word" header row is skipped, as are blank
// cells and words already present in the wrongbook.
func (i *Importer) ImportCSV(ctx context.Context, userID int64, r io.Reader) (*ImportResult, error) {
	log := logger.FromContext(ctx).WithPrefix("wrongbook-import")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &ImportResult{}
	now := i.now()
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewBadRequestError("malformed CSV: " + err.Error())
		}
		row++

		if len(record) == 0 {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(record[0]))
		if word == "" {
			result.Skipped++
			continue
		}
		if row == 1 && word == "word" {
			continue
		}

		w, err := i.words.GetOrCreate(ctx, word)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		added, err := i.progress.AddToWrongbook(ctx, userID, w.ID, now)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if added {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	log.Info("wrongbook import finished: user_id=%d imported=%d skipped=%d", userID, result.Imported, result.Skipped)
	return result, nil
}
