package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"mockchat/internal/model"
	"mockchat/internal/repository"
)

// Reporter is the aggregation query behind activity reports.
type Reporter interface {
	Report(from, to time.Time, trainerName string) ([]repository.ReportRow, error)
}

type ReportService struct {
	reporter Reporter
}

func NewReportService(reporter Reporter) *ReportService {
	return &ReportService{reporter: reporter}
}

// Generate returns report rows for conversations started in [from, to].
// Admins see every trainer; anyone else only their own conversations.
func (s *ReportService) Generate(from, to time.Time, viewerName, viewerRole string) ([]repository.ReportRow, error) {
	if to.Before(from) {
		return nil, ErrInvalidInput
	}

	trainerName := viewerName
	if viewerRole == model.RoleAdmin {
		trainerName = ""
	}
	return s.reporter.Report(from, to, trainerName)
}

// WriteCSV renders report rows in the layout the reporting UI imports.
func WriteCSV(w io.Writer, rows []repository.ReportRow) error {
	writer := csv.NewWriter(w)

	header := []string{"Trainer", "Agent", "Start Time", "End Time", "Duration (seconds)", "Message Count"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header failed: %w", err)
	}

	const timeLayout = "2006-01-02 15:04:05"
	for _, row := range rows {
		endTime := ""
		if row.EndTime != nil {
			endTime = row.EndTime.Format(timeLayout)
		}
		record := []string{
			row.TrainerName,
			row.AssociateName,
			row.StartTime.Format(timeLayout),
			endTime,
			strconv.FormatInt(row.DurationSeconds, 10),
			strconv.FormatInt(row.MessageCount, 10),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row failed: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv failed: %w", err)
	}
	return nil
}
