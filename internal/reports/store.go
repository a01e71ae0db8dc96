package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/YadurajManu/bolonyay-server/internal/database"
	"github.com/YadurajManu/bolonyay-server/internal/document"
	"github.com/YadurajManu/bolonyay-server/pkg/logger"
)

// Store persists generated documents: the physical PDF under the reports
// directory and its metadata record together.
type Store struct {
	db  *gorm.DB
	dir string
	log *logger.Logger
}

func NewStore(db *gorm.DB, dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &Store{db: db, dir: dir, log: log.With("service", "reports")}, nil
}

// Save writes the PDF and its metadata record. The filename embeds the
// case number and a timestamp so repeated generations never collide.
func (s *Store) Save(ctx context.Context, pdf []byte, record *database.CaseRecord, tmpl document.Template, pageCount int) (*database.SavedReport, error) {
	filename := fmt.Sprintf("%s_%s.pdf", sanitize(record.CaseNumber), time.Now().Format("20060102_150405"))
	fullPath := filepath.Join(s.dir, filename)

	if err := os.WriteFile(fullPath, pdf, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report file: %w", err)
	}

	report := &database.SavedReport{
		CaseID:       record.ID,
		CaseNumber:   record.CaseNumber,
		CaseType:     record.CaseType,
		Title:        fmt.Sprintf("%s - %s", tmpl.Title(), record.CaseNumber),
		FilePath:     fullPath,
		FileSize:     int64(len(pdf)),
		TemplateName: string(tmpl),
		Language:     record.Language,
		PageCount:    pageCount,
		Tags:         database.StringList{string(tmpl), record.CaseType, record.Language},
		Summary:      record.CaseDetails,
	}

	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		// Keep file and record together: a failed record write removes
		// the orphaned file.
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}

	s.log.Info("Report saved",
		"reportID", report.ID,
		"caseNumber", record.CaseNumber,
		"pages", pageCount,
		"size", report.FileSize,
	)

	return report, nil
}

// List returns all reports, newest first. The index is self-healing: any
// record whose backing file is gone is dropped from storage before the
// listing is returned.
func (s *Store) List(ctx context.Context) ([]database.SavedReport, error) {
	var all []database.SavedReport
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]database.SavedReport, 0, len(all))
	for _, r := range all {
		if _, err := os.Stat(r.FilePath); err != nil {
			s.log.Warn("Dropping report with missing file", "reportID", r.ID, "path", r.FilePath)
			if err := s.db.WithContext(ctx).Delete(&database.SavedReport{}, "id = ?", r.ID).Error; err != nil {
				s.log.Error("Failed to drop stale report record", "reportID", r.ID, "error", err)
			}
			continue
		}
		reports = append(reports, r)
	}

	return reports, nil
}

// Get returns one report and records the access.
func (s *Store) Get(ctx context.Context, id string) (*database.SavedReport, error) {
	var report database.SavedReport
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("report %s not found", id)
	}

	now := time.Now()
	report.LastAccessedAt = &now
	if err := s.db.WithContext(ctx).Save(&report).Error; err != nil {
		s.log.Error("Failed to record report access", "reportID", id, "error", err)
	}

	return &report, nil
}

// ReadFile returns the PDF bytes for a report and marks it downloaded.
func (s *Store) ReadFile(ctx context.Context, id string) (*database.SavedReport, []byte, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(report.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read report file: %w", err)
	}

	if !report.Downloaded {
		report.Downloaded = true
		if err := s.db.WithContext(ctx).Save(report).Error; err != nil {
			s.log.Error("Failed to mark report downloaded", "reportID", id, "error", err)
		}
	}

	return report, data, nil
}

// Delete removes the file and the record. After it returns, the path no
// longer exists and the report no longer lists.
func (s *Store) Delete(ctx context.Context, id string) error {
	var report database.SavedReport
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return fmt.Errorf("report %s not found", id)
	}

	if err := os.Remove(report.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove report file: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&database.SavedReport{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete report record: %w", err)
	}

	s.log.Info("Report deleted", "reportID", id, "path", report.FilePath)
	return nil
}

// Search filters the listing by case-insensitive substring over title,
// case number, case type, and tags.
func (s *Store) Search(ctx context.Context, query string) ([]database.SavedReport, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}

	matches := make([]database.SavedReport, 0, len(all))
	for _, r := range all {
		if matchesQuery(&r, q) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

func matchesQuery(r *database.SavedReport, q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) ||
		strings.Contains(strings.ToLower(r.CaseNumber), q) ||
		strings.Contains(strings.ToLower(r.CaseType), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// sanitize keeps filenames shell and filesystem safe.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
