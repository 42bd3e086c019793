package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportCSV writes one flattened row per persisted summary to w: timestamp,
// the given contact fields in order, outcome, topics joined, lead columns,
// notes. With zero records the output is header-only. Records missing a
// contact field get an empty cell, never a dropped column.
func (s *Store) ExportCSV(w io.Writer, contactFields []string) error {
	records, err := s.ListSummaries()
	if err != nil {
		return fmt.Errorf("list summaries: %w", err)
	}

	cw := csv.NewWriter(w)

	header := append([]string{"date", "session_id"}, contactFields...)
	header = append(header, "outcome", "topics_discussed", "lead_score", "lead_priority", "notes")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.Timestamp.Format(time.DateTime),
			rec.SessionID,
		}
		for _, field := range contactFields {
			row = append(row, rec.Contact[field])
		}
		row = append(row,
			string(rec.Outcome),
			strings.Join(rec.Topics, "; "),
			fmt.Sprintf("%d", rec.Lead.Score),
			rec.Lead.Priority,
			rec.Notes,
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
