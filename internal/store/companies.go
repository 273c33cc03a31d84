package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/spigell/job-research/internal/jobs"
)

// SeedCompanies inserts the given companies, ignoring names already present.
func (s *Store) SeedCompanies(ctx context.Context, companies []jobs.CompanyWatch) error {
	if len(companies) == 0 {
		return nil
	}

	rows := make([]companyRow, 0, len(companies))
	for _, c := range companies {
		rows = append(rows, toCompanyRow(c))
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "company"}}, DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("seed companies: %w", err)
	}
	return nil
}

// UpsertCompany adds a company or replaces the existing entry with the same name.
// Replacing clears last_checked.
func (s *Store) UpsertCompany(ctx context.Context, c jobs.CompanyWatch) error {
	row := toCompanyRow(c)
	row.LastChecked = nil

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company"}},
			DoUpdates: clause.AssignmentColumns([]string{"careers_url", "vendor", "board", "last_checked", "active"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert company %s: %w", c.Name, err)
	}
	return nil
}

// ListCompanies returns the watch list ordered by name.
func (s *Store) ListCompanies(ctx context.Context, activeOnly bool) ([]jobs.CompanyWatch, error) {
	q := s.db.WithContext(ctx).Model(&companyRow{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var rows []companyRow
	if err := q.Order("company").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	result := make([]jobs.CompanyWatch, 0, len(rows))
	for _, row := range rows {
		result = append(result, jobs.CompanyWatch{
			Name:        row.Company,
			CareersURL:  row.CareersURL,
			Vendor:      row.Vendor,
			Board:       row.Board,
			LastChecked: row.LastChecked,
			Active:      row.Active,
		})
	}
	return result, nil
}

// TouchCompany records that the company was just scraped.
func (s *Store) TouchCompany(ctx context.Context, name string, now time.Time) error {
	checked := now.UTC()
	res := s.db.WithContext(ctx).Model(&companyRow{}).
		Where("company = ?", name).
		Update("last_checked", &checked)
	if res.Error != nil {
		return fmt.Errorf("touch company %s: %w", name, res.Error)
	}
	return nil
}

func toCompanyRow(c jobs.CompanyWatch) companyRow {
	return companyRow{
		Company:     c.Name,
		CareersURL:  c.CareersURL,
		Vendor:      c.Vendor,
		Board:       c.Board,
		LastChecked: c.LastChecked,
		Active:      c.Active,
	}
}
