package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linapoint/resortagents/internal/db"
	"github.com/linapoint/resortagents/internal/domain"
)

type dbMarketingContent struct {
	ID            string         `db:"id"`
	CampaignID    string         `db:"campaign_id"`
	Type          string         `db:"type"`
	Platform      string         `db:"platform"`
	Title         string         `db:"title"`
	Content       string         `db:"content"`
	Status        string         `db:"status"`
	ScheduledTime sql.NullString `db:"scheduled_time"`
	CreatedAt     string         `db:"created_at"`
}

type SQLiteMarketingContentRepo struct {
	db db.DBTX
}

func NewSQLiteMarketingContentRepo(conn db.DBTX) *SQLiteMarketingContentRepo {
	return &SQLiteMarketingContentRepo{db: conn}
}

func (r *SQLiteMarketingContentRepo) Create(ctx context.Context, c *domain.MarketingContentRow) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	row := dbMarketingContent{
		ID:            c.ID,
		CampaignID:    c.CampaignID,
		Type:          c.Type,
		Platform:      c.Platform,
		Title:         c.Title,
		Content:       c.Content,
		Status:        domain.CoalesceStr(c.Status, "draft"),
		ScheduledTime: nullableTime(c.ScheduledTime),
		CreatedAt:     formatTime(c.CreatedAt),
	}
	query := `INSERT INTO marketing_content (id, campaign_id, type, platform, title, content, status,
		scheduled_time, created_at) VALUES (:id, :campaign_id, :type, :platform, :title, :content,
		:status, :scheduled_time, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("inserting marketing content: %w", err)
	}
	return nil
}

func (r *SQLiteMarketingContentRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*domain.MarketingContentRow, error) {
	var rows []dbMarketingContent
	query := `SELECT id, campaign_id, type, platform, title, content, status, scheduled_time, created_at
		FROM marketing_content WHERE campaign_id = ? ORDER BY created_at, rowid`
	if err := r.db.SelectContext(ctx, &rows, query, campaignID); err != nil {
		return nil, fmt.Errorf("listing marketing content: %w", err)
	}
	out := make([]*domain.MarketingContentRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.MarketingContentRow{
			ID:            row.ID,
			CampaignID:    row.CampaignID,
			Type:          row.Type,
			Platform:      row.Platform,
			Title:         row.Title,
			Content:       row.Content,
			Status:        row.Status,
			ScheduledTime: parseNullableTime(row.ScheduledTime),
			CreatedAt:     parseTime(row.CreatedAt),
		})
	}
	return out, nil
}

type dbMarketingLog struct {
	ID         string `db:"id"`
	CampaignID string `db:"campaign_id"`
	AgentName  string `db:"agent_name"`
	Action     string `db:"action"`
	Status     string `db:"status"`
	OutputData string `db:"output_data"`
	CreatedAt  string `db:"created_at"`
}

type SQLiteMarketingLogRepo struct {
	db db.DBTX
}

func NewSQLiteMarketingLogRepo(conn db.DBTX) *SQLiteMarketingLogRepo {
	return &SQLiteMarketingLogRepo{db: conn}
}

func (r *SQLiteMarketingLogRepo) Create(ctx context.Context, l *domain.MarketingAgentLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	row := dbMarketingLog{
		ID:         l.ID,
		CampaignID: l.CampaignID,
		AgentName:  l.AgentName,
		Action:     l.Action,
		Status:     l.Status,
		OutputData: encodeJSON(l.OutputData, "{}"),
		CreatedAt:  formatTime(l.CreatedAt),
	}
	query := `INSERT INTO marketing_agent_logs (id, campaign_id, agent_name, action, status, output_data,
		created_at) VALUES (:id, :campaign_id, :agent_name, :action, :status, :output_data, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("inserting marketing agent log: %w", err)
	}
	return nil
}

func (r *SQLiteMarketingLogRepo) ListByAgent(ctx context.Context, agentName string, limit int) ([]*domain.MarketingAgentLog, error) {
	var rows []dbMarketingLog
	query := `SELECT id, campaign_id, agent_name, action, status, output_data, created_at
		FROM marketing_agent_logs WHERE agent_name = ? ORDER BY created_at DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, agentName, limit); err != nil {
		return nil, fmt.Errorf("listing marketing agent logs: %w", err)
	}
	out := make([]*domain.MarketingAgentLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.MarketingAgentLog{
			ID:         row.ID,
			CampaignID: row.CampaignID,
			AgentName:  row.AgentName,
			Action:     row.Action,
			Status:     row.Status,
			OutputData: decodeJSON[map[string]any](row.OutputData),
			CreatedAt:  parseTime(row.CreatedAt),
		})
	}
	return out, nil
}

type dbSubscriber struct {
	Email           string         `db:"email"`
	FirstName       string         `db:"first_name"`
	Interests       string         `db:"interests"`
	EngagementLevel string         `db:"engagement_level"`
	EmailSentCount  int            `db:"email_sent_count"`
	LastEmailSent   sql.NullString `db:"last_email_sent"`
}

type SQLiteEmailListRepo struct {
	db db.DBTX
}

func NewSQLiteEmailListRepo(conn db.DBTX) *SQLiteEmailListRepo {
	return &SQLiteEmailListRepo{db: conn}
}

func (r *SQLiteEmailListRepo) Upsert(ctx context.Context, s *domain.EmailSubscriber) error {
	row := dbSubscriber{
		Email:           s.Email,
		FirstName:       s.FirstName,
		Interests:       encodeJSON(s.Interests, "[]"),
		EngagementLevel: domain.CoalesceStr(s.EngagementLevel, "new"),
		EmailSentCount:  s.EmailSentCount,
		LastEmailSent:   nullableTime(s.LastEmailSent),
	}
	query := `INSERT INTO marketing_email_list (email, first_name, interests, engagement_level,
		email_sent_count, last_email_sent) VALUES (:email, :first_name, :interests, :engagement_level,
		:email_sent_count, :last_email_sent)
		ON CONFLICT(email) DO UPDATE SET first_name = excluded.first_name, interests = excluded.interests,
		engagement_level = excluded.engagement_level, email_sent_count = excluded.email_sent_count,
		last_email_sent = excluded.last_email_sent`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upserting email subscriber: %w", err)
	}
	return nil
}

func (r *SQLiteEmailListRepo) Get(ctx context.Context, email string) (*domain.EmailSubscriber, error) {
	var row dbSubscriber
	query := `SELECT email, first_name, interests, engagement_level, email_sent_count, last_email_sent
		FROM marketing_email_list WHERE email = ?`
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("email subscriber: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("getting email subscriber: %w", err)
	}
	return &domain.EmailSubscriber{
		Email:           row.Email,
		FirstName:       row.FirstName,
		Interests:       decodeJSON[[]string](row.Interests),
		EngagementLevel: row.EngagementLevel,
		EmailSentCount:  row.EmailSentCount,
		LastEmailSent:   parseNullableTime(row.LastEmailSent),
	}, nil
}
