// Package store persists jobs and the company watch list in a relational database.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/spigell/job-research/internal/jobs"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type jobRow struct {
	ID             uint      `gorm:"primaryKey"`
	JobID          string    `gorm:"column:job_id;uniqueIndex;not null"`
	Company        string    `gorm:"not null;index:idx_jobs_company"`
	Title          string    `gorm:"not null"`
	URL            string    `gorm:"not null"`
	Description    string    `gorm:"type:text;not null"`
	Requirements   string    `gorm:"type:text"`
	TechStack      string    `gorm:"column:tech_stack"`
	Location       string
	Remote         bool
	AlignmentScore *int      `gorm:"column:alignment_score"`
	Status         string    `gorm:"not null;index:idx_jobs_status"`
	Priority       string    `gorm:"not null;index:idx_jobs_priority"`
	Notes          *string   `gorm:"type:text"`
	FoundDate      time.Time `gorm:"column:found_date;index:idx_jobs_found_date"`
	LastUpdated    time.Time `gorm:"column:last_updated"`
}

func (jobRow) TableName() string { return "jobs" }

type companyRow struct {
	ID          uint   `gorm:"primaryKey"`
	Company     string `gorm:"uniqueIndex;not null"`
	CareersURL  string `gorm:"column:careers_url;not null"`
	Vendor      string
	Board       string
	LastChecked *time.Time `gorm:"column:last_checked"`
	// no default: gorm would replace an explicit false with it
	Active bool `gorm:"not null"`
}

func (companyRow) TableName() string { return "company_watch" }

// Store is the GORM backed storage boundary.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("sqlite database path is required")
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if err := db.AutoMigrate(&jobRow{}, &companyRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertIfAbsent stores a newly discovered posting. When a job with the same
// identifier exists it is returned untouched and inserted is false.
func (s *Store) InsertIfAbsent(ctx context.Context, p jobs.Posting, now time.Time) (jobs.Job, bool, error) {
	row := toJobRow(jobs.NewJob(p, now.UTC()))

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "job_id"}}, DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return jobs.Job{}, false, fmt.Errorf("insert job %s: %w", row.JobID, res.Error)
	}

	if res.RowsAffected == 0 {
		existing, err := s.Get(ctx, row.JobID)
		return existing, false, err
	}

	return fromJobRow(row), true, nil
}

// Query returns the jobs matching filters, newest discovery first.
func (s *Store) Query(ctx context.Context, f jobs.Filters) ([]jobs.Job, error) {
	q := s.db.WithContext(ctx).Model(&jobRow{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Company != "" {
		q = q.Where("company = ?", f.Company)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", string(f.Priority))
	}
	if f.MinScore > 0 {
		q = q.Where("alignment_score >= ?", f.MinScore)
	}

	var rows []jobRow
	if err := q.Order("found_date DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	result := make([]jobs.Job, 0, len(rows))
	for _, row := range rows {
		result = append(result, fromJobRow(row))
	}
	return result, nil
}

// Get returns a job by its derived identifier.
func (s *Store) Get(ctx context.Context, id string) (jobs.Job, error) {
	var row jobRow
	err := s.db.WithContext(ctx).Where("job_id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return jobs.Job{}, fmt.Errorf("%w: %s", jobs.ErrNotFound, id)
	}
	if err != nil {
		return jobs.Job{}, fmt.Errorf("get job %s: %w", id, err)
	}
	return fromJobRow(row), nil
}

// UpdateStatus changes the status and, when notes is not nil, replaces the notes.
func (s *Store) UpdateStatus(ctx context.Context, id string, status jobs.Status, notes *string, now time.Time) error {
	return s.Transition(ctx, id, status, "", notes, now)
}

// Transition writes status, priority and notes in one statement. An empty
// priority and nil notes are left as stored.
func (s *Store) Transition(ctx context.Context, id string, status jobs.Status, priority jobs.Priority, notes *string, now time.Time) error {
	values := map[string]any{
		"status":       string(status),
		"last_updated": now.UTC(),
	}
	if priority != "" {
		values["priority"] = string(priority)
	}
	if notes != nil {
		values["notes"] = *notes
	}
	return s.update(ctx, id, values)
}

// UpdatePriority changes the priority of a job.
func (s *Store) UpdatePriority(ctx context.Context, id string, priority jobs.Priority, now time.Time) error {
	return s.update(ctx, id, map[string]any{
		"priority":     string(priority),
		"last_updated": now.UTC(),
	})
}

// UpdateScore overwrites the alignment score of a job.
func (s *Store) UpdateScore(ctx context.Context, id string, score int, now time.Time) error {
	return s.update(ctx, id, map[string]any{
		"alignment_score": score,
		"last_updated":    now.UTC(),
	})
}

func (s *Store) update(ctx context.Context, id string, values map[string]any) error {
	res := s.db.WithContext(ctx).Model(&jobRow{}).Where("job_id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update job %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", jobs.ErrNotFound, id)
	}
	return nil
}

func toJobRow(j jobs.Job) jobRow {
	return jobRow{
		JobID:          j.ID,
		Company:        j.Company,
		Title:          j.Title,
		URL:            j.URL,
		Description:    j.Description,
		Requirements:   j.Requirements,
		TechStack:      j.TechStack,
		Location:       j.Location,
		Remote:         j.Remote,
		AlignmentScore: j.AlignmentScore,
		Status:         string(j.Status),
		Priority:       string(j.Priority),
		Notes:          j.Notes,
		FoundDate:      j.FoundDate,
		LastUpdated:    j.LastUpdated,
	}
}

func fromJobRow(r jobRow) jobs.Job {
	return jobs.Job{
		ID:             r.JobID,
		Company:        r.Company,
		Title:          r.Title,
		URL:            r.URL,
		Description:    r.Description,
		Requirements:   r.Requirements,
		TechStack:      r.TechStack,
		Location:       r.Location,
		Remote:         r.Remote,
		AlignmentScore: r.AlignmentScore,
		Status:         jobs.Status(r.Status),
		Priority:       jobs.Priority(r.Priority),
		Notes:          r.Notes,
		FoundDate:      r.FoundDate,
		LastUpdated:    r.LastUpdated,
	}
}
