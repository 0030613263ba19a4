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

type dbCampaign struct {
	ID                  string         `db:"id"`
	Name                string         `db:"name"`
	Objective           string         `db:"objective"`
	TargetAudience      string         `db:"target_audience"`
	KeyMessages         string         `db:"key_messages"`
	Platforms           string         `db:"platforms"`
	Status              string         `db:"status"`
	CreatedBy           string         `db:"created_by"`
	ResearchData        sql.NullString `db:"research_data"`
	GeneratedContent    string         `db:"generated_content"`
	ScheduledPosts      string         `db:"scheduled_posts"`
	EngagementCampaigns string         `db:"engagement_campaigns"`
	Metrics             sql.NullString `db:"metrics"`
	MLInsights          string         `db:"ml_insights"`
	PromptUpdates       string         `db:"prompt_updates"`
	CreatedAt           string         `db:"created_at"`
	UpdatedAt           string         `db:"updated_at"`
}

func (c dbCampaign) toDomain() *domain.Campaign {
	out := &domain.Campaign{
		ID:                  c.ID,
		Name:                c.Name,
		Objective:           c.Objective,
		TargetAudience:      c.TargetAudience,
		KeyMessages:         decodeJSON[[]string](c.KeyMessages),
		Platforms:           decodeJSON[[]string](c.Platforms),
		Status:              domain.CampaignStatus(c.Status),
		CreatedBy:           c.CreatedBy,
		GeneratedContent:    decodeJSON[[]domain.MarketingPost](c.GeneratedContent),
		ScheduledPosts:      decodeJSON[[]domain.ScheduledPost](c.ScheduledPosts),
		EngagementCampaigns: decodeJSON[[]domain.EngagementPlan](c.EngagementCampaigns),
		MLInsights:          decodeJSON[[]string](c.MLInsights),
		PromptUpdates:       decodeJSON[[]string](c.PromptUpdates),
		CreatedAt:           parseTime(c.CreatedAt),
		UpdatedAt:           parseTime(c.UpdatedAt),
	}
	if c.ResearchData.Valid {
		out.ResearchData = decodeJSON[*domain.Research](c.ResearchData.String)
	}
	if c.Metrics.Valid {
		out.Metrics = decodeJSON[*domain.CampaignMetrics](c.Metrics.String)
	}
	return out
}

func fromDomainCampaign(c *domain.Campaign) dbCampaign {
	return dbCampaign{
		ID:                  c.ID,
		Name:                c.Name,
		Objective:           c.Objective,
		TargetAudience:      c.TargetAudience,
		KeyMessages:         encodeJSON(c.KeyMessages, "[]"),
		Platforms:           encodeJSON(c.Platforms, "[]"),
		Status:              string(c.Status),
		CreatedBy:           c.CreatedBy,
		ResearchData:        nullableJSON(c.ResearchData),
		GeneratedContent:    encodeJSON(c.GeneratedContent, "[]"),
		ScheduledPosts:      encodeJSON(c.ScheduledPosts, "[]"),
		EngagementCampaigns: encodeJSON(c.EngagementCampaigns, "[]"),
		Metrics:             nullableJSON(c.Metrics),
		MLInsights:          encodeJSON(c.MLInsights, "[]"),
		PromptUpdates:       encodeJSON(c.PromptUpdates, "[]"),
		CreatedAt:           formatTime(c.CreatedAt),
		UpdatedAt:           formatTime(c.UpdatedAt),
	}
}

const campaignColumns = `id, name, objective, target_audience, key_messages, platforms, status,
	created_by, research_data, generated_content, scheduled_posts, engagement_campaigns, metrics,
	ml_insights, prompt_updates, created_at, updated_at`

type SQLiteCampaignRepo struct {
	db db.DBTX
}

func NewSQLiteCampaignRepo(conn db.DBTX) *SQLiteCampaignRepo {
	return &SQLiteCampaignRepo{db: conn}
}

func (r *SQLiteCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = domain.CampaignDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	query := `INSERT INTO marketing_campaigns (` + campaignColumns + `) VALUES (:id, :name, :objective,
		:target_audience, :key_messages, :platforms, :status, :created_by, :research_data,
		:generated_content, :scheduled_posts, :engagement_campaigns, :metrics, :ml_insights,
		:prompt_updates, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fromDomainCampaign(c)); err != nil {
		return fmt.Errorf("inserting campaign: %w", err)
	}
	return nil
}

func (r *SQLiteCampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	c.UpdatedAt = time.Now().UTC()
	query := `UPDATE marketing_campaigns SET name = :name, objective = :objective,
		target_audience = :target_audience, key_messages = :key_messages, platforms = :platforms,
		status = :status, research_data = :research_data, generated_content = :generated_content,
		scheduled_posts = :scheduled_posts, engagement_campaigns = :engagement_campaigns,
		metrics = :metrics, ml_insights = :ml_insights, prompt_updates = :prompt_updates,
		updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, fromDomainCampaign(c))
	if err != nil {
		return fmt.Errorf("updating campaign: %w", err)
	}
	return expectAffected(res, "campaign")
}

func (r *SQLiteCampaignRepo) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	var row dbCampaign
	if err := r.db.GetContext(ctx, &row, `SELECT `+campaignColumns+` FROM marketing_campaigns WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("campaign: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("getting campaign: %w", err)
	}
	return row.toDomain(), nil
}

// List returns campaigns newest first. An empty status matches all.
func (r *SQLiteCampaignRepo) List(ctx context.Context, status domain.CampaignStatus, limit int) ([]*domain.Campaign, error) {
	if status == "" {
		return r.list(ctx, `SELECT `+campaignColumns+` FROM marketing_campaigns ORDER BY created_at DESC LIMIT ?`, limit)
	}
	return r.list(ctx, `SELECT `+campaignColumns+` FROM marketing_campaigns WHERE status = ? ORDER BY created_at DESC LIMIT ?`,
		string(status), limit)
}

func (r *SQLiteCampaignRepo) ListCreatedSince(ctx context.Context, status domain.CampaignStatus, since time.Time) ([]*domain.Campaign, error) {
	return r.list(ctx, `SELECT `+campaignColumns+` FROM marketing_campaigns WHERE status = ? AND created_at >= ? ORDER BY created_at`,
		string(status), formatTime(since))
}

func (r *SQLiteCampaignRepo) ListUpdatedSince(ctx context.Context, since time.Time) ([]*domain.Campaign, error) {
	return r.list(ctx, `SELECT `+campaignColumns+` FROM marketing_campaigns WHERE updated_at >= ? ORDER BY updated_at`,
		formatTime(since))
}

func (r *SQLiteCampaignRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Campaign, error) {
	var rows []dbCampaign
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	out := make([]*domain.Campaign, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
