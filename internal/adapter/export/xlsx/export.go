// Package xlsx renders stored extraction results as an Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/pkg/textx"
)

const (
	SheetProfiles   = "Profiles"
	SheetExperience = "Experience"
	SheetEducation  = "Education"
)

// Lister is the read side of a profile repository.
type Lister interface {
	List(ctx context.Context, limit int) ([]domain.RunResult, error)
}

// Service produces XLSX bytes for stored profiles.
type Service struct {
	repo   Lister
	logger *slog.Logger
}

func NewService(repo Lister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Export writes up to limit results, newest first, into a workbook with one
// sheet for profiles and one each for experience and education rows.
func (s *Service) Export(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()
	runs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("op=xlsx.Export: list: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes Profiles
	if err := f.SetSheetName("Sheet1", SheetProfiles); err != nil {
		return nil, fmt.Errorf("op=xlsx.Export: %w", err)
	}
	for _, name := range []string{SheetExperience, SheetEducation} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("op=xlsx.Export: %w", err)
		}
	}

	profiles := newSheetWriter(f, SheetProfiles, "ID", "Created", "Filename", "Method", "Used OCR",
		"First Name", "Last Name", "Full Name", "Email", "Phone", "Location", "Skills")
	experience := newSheetWriter(f, SheetExperience, "Profile ID", "Company", "Position", "Duration", "Location", "Responsibilities")
	education := newSheetWriter(f, SheetEducation, "Profile ID", "Institution", "Degree", "Year")

	for _, r := range runs {
		p := r.Profile
		profiles.row(r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.Filename, string(r.Outcome.Method),
			r.Outcome.UsedFallback || r.Outcome.Method == domain.MethodImageOcr,
			p.FirstName, p.LastName, p.FullName, p.Email, p.Phone, p.Location, strings.Join(p.Skills, ", "))
		for _, e := range p.Experience {
			experience.row(r.ID, e.Company, e.Position, e.Duration, e.Location, textx.Truncate(e.Responsibilities, 500))
		}
		for _, e := range p.Education {
			education.row(r.ID, e.Institution, e.Degree, e.Year)
		}
	}
	for _, w := range []*sheetWriter{profiles, experience, education} {
		if w.err != nil {
			return nil, fmt.Errorf("op=xlsx.Export: %w", w.err)
		}
	}

	_ = f.SetColWidth(SheetProfiles, "A", "A", 38)
	_ = f.SetColWidth(SheetProfiles, "B", "E", 20)
	_ = f.SetColWidth(SheetProfiles, "F", "K", 24)
	_ = f.SetColWidth(SheetProfiles, "L", "L", 60)
	_ = f.SetColWidth(SheetExperience, "F", "F", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("op=xlsx.Export: write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		slog.Int("rows", len(runs)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string, headers ...string) *sheetWriter {
	w := &sheetWriter{f: f, sheet: sheet, next: 1}
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	w.row(cells...)
	return w
}

func (w *sheetWriter) row(values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		w.err = err
		return
	}
	w.next++
}
