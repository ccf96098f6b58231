package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

type EpisodeRecord struct {
	Episode   int
	Outcome   string
	Moves     int
	Credited  int
	TableSize int
	WinRate   float64
}

var header = []string{"episode", "outcome", "moves", "credited", "table_size", "win_rate"}

// Writer streams episode records as CSV.
type Writer struct {
	csv         *csv.Writer
	wroteHeader bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

func (w *Writer) Write(record EpisodeRecord) error {
	if !w.wroteHeader {
		if err := w.csv.Write(header); err != nil {
			return fmt.Errorf("failed to write episode header: %w", err)
		}
		w.wroteHeader = true
	}

	row := []string{
		strconv.Itoa(record.Episode),
		record.Outcome,
		strconv.Itoa(record.Moves),
		strconv.Itoa(record.Credited),
		strconv.Itoa(record.TableSize),
		strconv.FormatFloat(record.WinRate, 'f', 4, 64),
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write episode row: %w", err)
	}

	return nil
}

// Flush writes buffered rows and reports any earlier write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
