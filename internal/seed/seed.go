// Package seed loads users from CSV snapshots and writes the table back out in the same format.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"userapi/internal/database"
	"userapi/internal/model"
	"userapi/internal/repository"
	"userapi/internal/schema"
)

// DefaultPageSize is used by Export when no positive page size is given.
const DefaultPageSize = 100

var (
	importHeader = []string{"name", "email", "phone", "note"}
	exportHeader = []string{"id", "name", "email", "phone", "note"}
)

// ErrHeader is returned when the first CSV record is not the import header.
var ErrHeader = errors.New("seed: csv header must be name,email,phone,note")

// RowError records why one CSV row was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Report summarizes an import run.
type Report struct {
	Created int
	Skipped int
	Errors  []RowError
}

// Import reads a CSV snapshot from r and creates one user per valid row.
// Rows that fail validation are skipped and listed in the report. The first
// persistence failure stops the run and is returned with the partial report.
func Import(ctx context.Context, s database.Session, users repository.UserRepository, r io.Reader) (Report, error) {
	var rep Report

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return rep, ErrHeader
	}
	if err != nil {
		return rep, fmt.Errorf("seed: read header: %w", err)
	}
	if !isHeader(header, importHeader) {
		return rep, ErrHeader
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rep, nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rep.skip(pe.StartLine, pe.Err)
				continue
			}
			return rep, fmt.Errorf("seed: read csv: %w", err)
		}

		line, _ := cr.FieldPos(0)
		if len(rec) != len(importHeader) {
			rep.skip(line, fmt.Errorf("expected %d fields, got %d", len(importHeader), len(rec)))
			continue
		}

		data, err := schema.UserCreate{Name: rec[0], Email: rec[1], Phone: rec[2], Note: rec[3]}.Validate()
		if err != nil {
			rep.skip(line, err)
			continue
		}
		if _, err := users.Create(ctx, s, data); err != nil {
			return rep, fmt.Errorf("seed: line %d: %w", line, err)
		}
		rep.Created++
	}
}

func (r *Report) skip(line int, err error) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Line: line, Err: err})
}

// Export pages through every stored user in storage order and writes them to w as CSV.
// It returns the number of data rows written.
func Export(ctx context.Context, s database.Session, users repository.UserRepository, w io.Writer, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("seed: write header: %w", err)
	}

	written := 0
	for offset := 0; ; offset += pageSize {
		page, err := users.ReadMany(ctx, s, pageSize, offset)
		if err != nil {
			return written, fmt.Errorf("seed: read page at offset %d: %w", offset, err)
		}
		for _, u := range page {
			if err := cw.Write(record(u)); err != nil {
				return written, fmt.Errorf("seed: write row: %w", err)
			}
			written++
		}
		if len(page) < pageSize {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("seed: flush: %w", err)
	}
	return written, nil
}

func record(u model.User) []string {
	return []string{strconv.FormatInt(u.ID, 10), u.Name, u.Email, u.Phone, u.Note}
}

func isHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		name := strings.TrimSpace(got[i])
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if !strings.EqualFold(name, want[i]) {
			return false
		}
	}
	return true
}
