package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/linapoint/resortagents/internal/db"
	"github.com/linapoint/resortagents/internal/domain"
)

type dbAgentRun struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	AgentName    string         `db:"agent_name"`
	RequestID    string         `db:"request_id"`
	Status       string         `db:"status"`
	Input        string         `db:"input"`
	Output       string         `db:"output"`
	ErrorMessage string         `db:"error_message"`
	StartedAt    string         `db:"started_at"`
	FinishedAt   sql.NullString `db:"finished_at"`
	DurationMs   int64          `db:"duration_ms"`
}

func rawOrEmpty(m json.RawMessage) string {
	if len(m) == 0 {
		return "{}"
	}
	return string(m)
}

type SQLiteAgentRunRepo struct {
	db db.DBTX
}

func NewSQLiteAgentRunRepo(conn db.DBTX) *SQLiteAgentRunRepo {
	return &SQLiteAgentRunRepo{db: conn}
}

func (r *SQLiteAgentRunRepo) Create(ctx context.Context, run *domain.AgentRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = domain.RunStarted
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	row := dbAgentRun{
		ID:           run.ID,
		UserID:       run.UserID,
		AgentName:    string(run.AgentName),
		RequestID:    run.RequestID,
		Status:       string(run.Status),
		Input:        rawOrEmpty(run.Input),
		Output:       rawOrEmpty(run.Output),
		ErrorMessage: run.ErrorMessage,
		StartedAt:    formatTime(run.StartedAt),
		FinishedAt:   nullableTime(run.FinishedAt),
		DurationMs:   run.DurationMs,
	}
	query := `INSERT INTO agent_runs (id, user_id, agent_name, request_id, status, input, output,
		error_message, started_at, finished_at, duration_ms) VALUES (:id, :user_id, :agent_name,
		:request_id, :status, :input, :output, :error_message, :started_at, :finished_at, :duration_ms)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("inserting agent run: %w", err)
	}
	return nil
}

func (r *SQLiteAgentRunRepo) Finish(ctx context.Context, run *domain.AgentRun) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE agent_runs SET status = ?, output = ?, error_message = ?, finished_at = ?, duration_ms = ? WHERE id = ?`,
		string(run.Status), rawOrEmpty(run.Output), run.ErrorMessage, nullableTime(run.FinishedAt), run.DurationMs, run.ID)
	if err != nil {
		return fmt.Errorf("finishing agent run: %w", err)
	}
	return expectAffected(res, "agent run")
}

func (r *SQLiteAgentRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.AgentRun, error) {
	var rows []dbAgentRun
	query := `SELECT id, user_id, agent_name, request_id, status, input, output, error_message,
		started_at, finished_at, duration_ms FROM agent_runs ORDER BY started_at DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("listing agent runs: %w", err)
	}
	out := make([]*domain.AgentRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.AgentRun{
			ID:           row.ID,
			UserID:       row.UserID,
			AgentName:    domain.AgentName(row.AgentName),
			RequestID:    row.RequestID,
			Status:       domain.AgentRunStatus(row.Status),
			Input:        json.RawMessage(row.Input),
			Output:       json.RawMessage(row.Output),
			ErrorMessage: row.ErrorMessage,
			StartedAt:    parseTime(row.StartedAt),
			FinishedAt:   parseNullableTime(row.FinishedAt),
			DurationMs:   row.DurationMs,
		})
	}
	return out, nil
}

type dbAgentPrompt struct {
	ID         string `db:"id"`
	AgentName  string `db:"agent_name"`
	PromptText string `db:"prompt_text"`
	Active     int    `db:"active"`
	UpdatedAt  string `db:"updated_at"`
}

func (p dbAgentPrompt) toDomain() *domain.AgentPrompt {
	return &domain.AgentPrompt{
		ID:         p.ID,
		AgentName:  p.AgentName,
		PromptText: p.PromptText,
		Active:     intToBool(p.Active),
		UpdatedAt:  parseTime(p.UpdatedAt),
	}
}

type SQLiteAgentPromptRepo struct {
	db db.DBTX
}

func NewSQLiteAgentPromptRepo(conn db.DBTX) *SQLiteAgentPromptRepo {
	return &SQLiteAgentPromptRepo{db: conn}
}

func (r *SQLiteAgentPromptRepo) GetActive(ctx context.Context, agentName string) (*domain.AgentPrompt, error) {
	var row dbAgentPrompt
	query := `SELECT id, agent_name, prompt_text, active, updated_at FROM agent_prompts
		WHERE agent_name = ? AND active = 1 ORDER BY updated_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, agentName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("agent prompt: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("getting agent prompt: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteAgentPromptRepo) ListActive(ctx context.Context) ([]*domain.AgentPrompt, error) {
	var rows []dbAgentPrompt
	query := `SELECT id, agent_name, prompt_text, active, updated_at FROM agent_prompts
		WHERE active = 1 ORDER BY agent_name`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("listing agent prompts: %w", err)
	}
	out := make([]*domain.AgentPrompt, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Activate retires the agent's active prompt and stores text as the new one.
// On a bare connection both writes share a transaction of their own; on a
// transaction handle they join the caller's.
func (r *SQLiteAgentPromptRepo) Activate(ctx context.Context, agentName, text string) (*domain.AgentPrompt, error) {
	conn, ok := r.db.(*sqlx.DB)
	if !ok {
		return activatePrompt(ctx, r.db, agentName, text)
	}
	var p *domain.AgentPrompt
	err := db.NewSQLiteUnitOfWork(conn).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		p, err = activatePrompt(ctx, tx, agentName, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func activatePrompt(ctx context.Context, q db.DBTX, agentName, text string) (*domain.AgentPrompt, error) {
	now := time.Now().UTC()
	if _, err := q.ExecContext(ctx,
		`UPDATE agent_prompts SET active = 0, updated_at = ? WHERE agent_name = ? AND active = 1`,
		formatTime(now), agentName); err != nil {
		return nil, fmt.Errorf("deactivating agent prompts: %w", err)
	}
	p := &domain.AgentPrompt{
		ID:         uuid.New().String(),
		AgentName:  agentName,
		PromptText: text,
		Active:     true,
		UpdatedAt:  now,
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO agent_prompts (id, agent_name, prompt_text, active, updated_at) VALUES (?, ?, ?, 1, ?)`,
		p.ID, p.AgentName, p.PromptText, formatTime(now)); err != nil {
		return nil, fmt.Errorf("inserting agent prompt: %w", err)
	}
	return p, nil
}
