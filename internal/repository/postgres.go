package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hcp-crm/internal/interaction"
)

// interactionModel is the hcp_interactions row. updated_at stays NULL until a
// record is edited, so it is mapped without gorm's auto-update tracking.
type interactionModel struct {
	ID                   int64      `gorm:"primaryKey;autoIncrement"`
	HCPName              string     `gorm:"column:hcp_name;size:255;index;not null"`
	Attendees            string     `gorm:"type:text"`
	Date                 time.Time  `gorm:"type:date;not null"`
	Time                 string     `gorm:"size:50"`
	InteractionType      string     `gorm:"size:20;not null"`
	Topics               string     `gorm:"type:text"`
	MaterialsDistributed string     `gorm:"type:text"`
	Outcomes             string     `gorm:"size:20"`
	FollowUp             string     `gorm:"type:text"`
	Summary              string     `gorm:"type:text"`
	CreatedAt            time.Time  `gorm:"autoCreateTime"`
	Modified             *time.Time `gorm:"column:updated_at"`
}

func (interactionModel) TableName() string { return "hcp_interactions" }

func toModel(rec *interaction.Record) (*interactionModel, error) {
	date, err := time.Parse(interaction.DateLayout, rec.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", rec.Date, err)
	}
	created, err := time.Parse(timestampLayout, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", rec.CreatedAt, err)
	}
	return &interactionModel{
		HCPName:              rec.HCPName,
		Attendees:            rec.Attendees,
		Date:                 date,
		Time:                 rec.Time,
		InteractionType:      string(rec.InteractionType),
		Topics:               rec.Topics,
		MaterialsDistributed: rec.MaterialsDistributed,
		Outcomes:             rec.Outcomes,
		FollowUp:             rec.FollowUp,
		Summary:              rec.Summary,
		CreatedAt:            created,
	}, nil
}

func (m *interactionModel) toRecord() interaction.Record {
	rec := interaction.Record{
		ID:                   m.ID,
		HCPName:              m.HCPName,
		Attendees:            m.Attendees,
		Date:                 calendarDate(m.Date),
		Time:                 m.Time,
		InteractionType:      interaction.Type(m.InteractionType),
		Topics:               m.Topics,
		MaterialsDistributed: m.MaterialsDistributed,
		Outcomes:             m.Outcomes,
		FollowUp:             m.FollowUp,
		Summary:              m.Summary,
		CreatedAt:            stamp(m.CreatedAt),
	}
	if m.Modified != nil {
		rec.UpdatedAt = stamp(*m.Modified)
	}
	return rec
}

// calendarDate formats a date column value. lib/pq may hand it back shifted into
// the session time zone; a value that is not at local midnight is read in UTC.
func calendarDate(t time.Time) string {
	if h, m, s := t.Clock(); h != 0 || m != 0 || s != 0 {
		t = t.UTC()
	}
	return t.Format(interaction.DateLayout)
}

// Postgres stores records through gorm on the lib/pq driver.
type Postgres struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&interactionModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate hcp_interactions: %w", err)
	}
	return &Postgres{db: db, now: time.Now}, nil
}

func (p *Postgres) Create(ctx context.Context, rec *interaction.Record) error {
	if err := prepare(rec, p.now()); err != nil {
		return err
	}
	m, err := toModel(rec)
	if err != nil {
		return err
	}
	if err := p.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	rec.ID = m.ID
	return nil
}

func (p *Postgres) List(ctx context.Context) ([]interaction.Record, error) {
	var rows []interactionModel
	if err := p.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return toRecords(rows), nil
}

func (p *Postgres) Get(ctx context.Context, id int64) (*interaction.Record, error) {
	var m interactionModel
	if err := p.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get interaction %d: %w", id, err)
	}
	rec := m.toRecord()
	return &rec, nil
}

func (p *Postgres) FindByHCPName(ctx context.Context, name string) ([]interaction.Record, error) {
	var rows []interactionModel
	pattern := "%" + escapeLike(strings.TrimSpace(name)) + "%"
	if err := p.db.WithContext(ctx).Where("hcp_name ILIKE ?", pattern).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search interactions: %w", err)
	}
	return toRecords(rows), nil
}

func (p *Postgres) MostRecent(ctx context.Context) (*interaction.Record, error) {
	var m interactionModel
	if err := p.db.WithContext(ctx).Order("id DESC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get most recent interaction: %w", err)
	}
	rec := m.toRecord()
	return &rec, nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecords(rows []interactionModel) []interaction.Record {
	out := make([]interaction.Record, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toRecord())
	}
	return out
}
