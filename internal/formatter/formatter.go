// package formatter exports upload history to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
)

// Format names an export format accepted by `history list --format`.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat resolves a --format value; "md" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text", "":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (json, csv, markdown, txt)", shared.ErrInvalidFlag, s)
}

// Export renders sessions in format.
func Export(format Format, sessions []*models.Session) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportJSON(sessions)
	case FormatCSV:
		return ExportCSV(sessions)
	case FormatMarkdown:
		return ExportMarkdown(sessions)
	case FormatText:
		return ExportText(sessions)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
}

// sessionRecord is the exported shape of a [models.Session].
type sessionRecord struct {
	ID          string    `json:"id"`
	Sequence    int       `json:"sequence"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type,omitempty"`
	TaskID      string    `json:"task_id,omitempty"`
	Status      string    `json:"status"`
	LineCount   int       `json:"line_count"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRecord(s *models.Session) sessionRecord {
	return sessionRecord{
		ID:          s.ID(),
		Sequence:    s.Sequence(),
		FileName:    s.FileName(),
		FileSize:    s.FileSize(),
		ContentType: s.ContentType(),
		TaskID:      s.TaskID().String(),
		Status:      string(s.Status()),
		LineCount:   s.LineCount(),
		Error:       s.ErrorMessage(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
}

// ExportJSON converts sessions to an indented JSON array
func ExportJSON(sessions []*models.Session) ([]byte, error) {
	records := make([]sessionRecord, 0, len(sessions))
	for _, s := range sessions {
		records = append(records, toRecord(s))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sessions: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportCSV converts sessions to CSV format with columns: Sequence, ID, File, Size, Type, Task, Status, Lines, Error, Created
func ExportCSV(sessions []*models.Session) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "ID", "File", "Size", "Type", "Task", "Status", "Lines", "Error", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range sessions {
		record := []string{
			strconv.Itoa(s.Sequence()),
			s.ID(),
			s.FileName(),
			strconv.FormatInt(s.FileSize(), 10),
			s.ContentType(),
			s.TaskID().String(),
			string(s.Status()),
			strconv.Itoa(s.LineCount()),
			s.ErrorMessage(),
			s.CreatedAt().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportMarkdown converts sessions to a Markdown table
func ExportMarkdown(sessions []*models.Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Upload History\n\n")
	fmt.Fprintf(&buf, "**Sessions**: %d\n\n", len(sessions))

	if len(sessions) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | File | Size | Task | Status | Lines | Created |\n")
	buf.WriteString("|---|------|------|------|--------|-------|---------|\n")
	for _, s := range sessions {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s | %d | %s |\n",
			s.Sequence(),
			escapeCell(s.FileName()),
			FormatSize(s.FileSize()),
			orDash(s.TaskID().String()),
			statusCell(s),
			s.LineCount(),
			s.CreatedAt().Format(time.DateTime),
		)
	}

	return buf.Bytes(), nil
}

// ExportText converts sessions to plain text, one line per session
func ExportText(sessions []*models.Session) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Sessions: %d\n\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(&buf, "#%d %s (%s) %s", s.Sequence(), s.FileName(), FormatSize(s.FileSize()), s.Status())
		if task := s.TaskID(); task != "" {
			fmt.Fprintf(&buf, " task=%s lines=%d", task, s.LineCount())
		}
		if msg := s.ErrorMessage(); msg != "" {
			fmt.Fprintf(&buf, " error=%q", msg)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// WriteExport renders sessions in format and writes them to path.
func WriteExport(format Format, sessions []*models.Session, path string) error {
	data, err := Export(format, sessions)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// FormatSize renders a byte count with a binary unit (B, KiB, MiB, GiB).
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMG"[exp])
}

func statusCell(s *models.Session) string {
	if msg := s.ErrorMessage(); msg != "" {
		return fmt.Sprintf("%s: %s", s.Status(), escapeCell(msg))
	}
	return string(s.Status())
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
