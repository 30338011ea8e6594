package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_name", "trip_destination",
	"day", "time_slot", "title", "category", "place_name",
	"start_time", "end_time", "booked",
}

// ExportTrip implements GET /trips/{tripID}/export.
// It returns one row per planned activity, with trip fields repeated on
// every row. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	rows, err := s.exporter.Export(r.Context(), tripID)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": exportRowsToJSON(rows)})
}

// exportRow is the JSON wire shape of a domain.ExportRow.
type exportRow struct {
	TripID          string     `json:"trip_id"`
	TripName        string     `json:"trip_name"`
	TripDestination string     `json:"trip_destination,omitempty"`
	Day             string     `json:"day,omitempty"`
	TimeSlot        string     `json:"time_slot,omitempty"`
	Title           string     `json:"title,omitempty"`
	Category        string     `json:"category,omitempty"`
	PlaceName       string     `json:"place_name,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Booked          bool       `json:"booked"`
}

func exportRowsToJSON(rows []domain.ExportRow) []exportRow {
	out := make([]exportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, exportRow{
			TripID:          r.TripID,
			TripName:        r.TripName,
			TripDestination: r.TripDestination,
			Day:             r.Day,
			TimeSlot:        r.TimeSlot,
			Title:           r.Title,
			Category:        r.Category,
			PlaceName:       r.PlaceName,
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			Booked:          r.Booked,
		})
	}
	return out
}

// writeCSV encodes the rows as CSV and writes them with the right headers.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	// csv.Writer against a bytes.Buffer cannot fail to write.
	_ = cw.Write(csvHeaders)
	for _, r := range rows {
		_ = cw.Write(csvRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// csvRecord encodes a domain.ExportRow as a flat string slice.
// Nil time pointers are encoded as empty strings.
func csvRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		r.TripName,
		r.TripDestination,
		r.Day,
		r.TimeSlot,
		r.Title,
		r.Category,
		r.PlaceName,
		formatOptionalTime(r.StartTime),
		formatOptionalTime(r.EndTime),
		strconv.FormatBool(r.Booked),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
