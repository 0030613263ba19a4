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

type dbQuestionnaire struct {
	ID                   string `db:"id"`
	UserID               string `db:"user_id"`
	ReservationID        string `db:"reservation_id"`
	Occasion             string `db:"occasion"`
	RecipientName        string `db:"recipient_name"`
	GiftYouName          string `db:"gift_you_name"`
	KeyMemories          string `db:"key_memories"`
	FavoriteColors       string `db:"favorite_colors"`
	FavoriteSongsArtists string `db:"favorite_songs_artists"`
	Message              string `db:"message"`
	MusicStyle           string `db:"music_style"`
	Mood                 string `db:"mood"`
	CreatedAt            string `db:"created_at"`
}

const questionnaireColumns = `id, user_id, reservation_id, occasion, recipient_name, gift_you_name,
	key_memories, favorite_colors, favorite_songs_artists, message, music_style, mood, created_at`

type SQLiteQuestionnaireRepo struct {
	db db.DBTX
}

func NewSQLiteQuestionnaireRepo(conn db.DBTX) *SQLiteQuestionnaireRepo {
	return &SQLiteQuestionnaireRepo{db: conn}
}

func (r *SQLiteQuestionnaireRepo) Create(ctx context.Context, q *domain.QuestionnaireRow) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	row := dbQuestionnaire{
		ID:                   q.ID,
		UserID:               q.UserID,
		ReservationID:        q.ReservationID,
		Occasion:             q.Occasion,
		RecipientName:        q.RecipientName,
		GiftYouName:          q.GiftYouName,
		KeyMemories:          q.KeyMemories,
		FavoriteColors:       q.FavoriteColors,
		FavoriteSongsArtists: q.FavoriteSongsArtists,
		Message:              q.Message,
		MusicStyle:           q.MusicStyle,
		Mood:                 q.Mood,
		CreatedAt:            formatTime(q.CreatedAt),
	}
	query := `INSERT INTO magic_questionnaire (` + questionnaireColumns + `) VALUES (:id, :user_id,
		:reservation_id, :occasion, :recipient_name, :gift_you_name, :key_memories, :favorite_colors,
		:favorite_songs_artists, :message, :music_style, :mood, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("inserting questionnaire: %w", err)
	}
	return nil
}

func (r *SQLiteQuestionnaireRepo) GetLatest(ctx context.Context, userID, reservationID string) (*domain.QuestionnaireRow, error) {
	var row dbQuestionnaire
	query := `SELECT ` + questionnaireColumns + ` FROM magic_questionnaire
		WHERE user_id = ? AND reservation_id = ? ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, userID, reservationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("questionnaire: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("getting questionnaire: %w", err)
	}
	return &domain.QuestionnaireRow{
		ID:                   row.ID,
		UserID:               row.UserID,
		ReservationID:        row.ReservationID,
		Occasion:             row.Occasion,
		RecipientName:        row.RecipientName,
		GiftYouName:          row.GiftYouName,
		KeyMemories:          row.KeyMemories,
		FavoriteColors:       row.FavoriteColors,
		FavoriteSongsArtists: row.FavoriteSongsArtists,
		Message:              row.Message,
		MusicStyle:           row.MusicStyle,
		Mood:                 row.Mood,
		CreatedAt:            parseTime(row.CreatedAt),
	}, nil
}

type dbMagicContent struct {
	ID                 string `db:"id"`
	UserID             string `db:"user_id"`
	ReservationID      string `db:"reservation_id"`
	ContentType        string `db:"content_type"`
	Title              string `db:"title"`
	Description        string `db:"description"`
	Genre              string `db:"genre"`
	Prompt             string `db:"prompt"`
	MediaURL           string `db:"media_url"`
	DurationSeconds    int    `db:"duration_seconds"`
	FileSizeBytes      int64  `db:"file_size_bytes"`
	Status             string `db:"status"`
	ErrorMessage       string `db:"error_message"`
	GenerationProvider string `db:"generation_provider"`
	ProcessingTimeMs   int64  `db:"processing_time_ms"`
	CreatedAt          string `db:"created_at"`
	UpdatedAt          string `db:"updated_at"`
}

func (c dbMagicContent) toDomain() *domain.MagicContent {
	return &domain.MagicContent{
		ID:                 c.ID,
		UserID:             c.UserID,
		ReservationID:      c.ReservationID,
		ContentType:        domain.ContentType(c.ContentType),
		Title:              c.Title,
		Description:        c.Description,
		Genre:              c.Genre,
		Prompt:             c.Prompt,
		MediaURL:           c.MediaURL,
		DurationSeconds:    c.DurationSeconds,
		FileSizeBytes:      c.FileSizeBytes,
		Status:             domain.ContentStatus(c.Status),
		ErrorMessage:       c.ErrorMessage,
		GenerationProvider: c.GenerationProvider,
		ProcessingTimeMs:   c.ProcessingTimeMs,
		CreatedAt:          parseTime(c.CreatedAt),
		UpdatedAt:          parseTime(c.UpdatedAt),
	}
}

func fromDomainMagicContent(c *domain.MagicContent) dbMagicContent {
	return dbMagicContent{
		ID:                 c.ID,
		UserID:             c.UserID,
		ReservationID:      c.ReservationID,
		ContentType:        string(c.ContentType),
		Title:              c.Title,
		Description:        c.Description,
		Genre:              c.Genre,
		Prompt:             c.Prompt,
		MediaURL:           c.MediaURL,
		DurationSeconds:    c.DurationSeconds,
		FileSizeBytes:      c.FileSizeBytes,
		Status:             string(c.Status),
		ErrorMessage:       c.ErrorMessage,
		GenerationProvider: c.GenerationProvider,
		ProcessingTimeMs:   c.ProcessingTimeMs,
		CreatedAt:          formatTime(c.CreatedAt),
		UpdatedAt:          formatTime(c.UpdatedAt),
	}
}

const magicContentColumns = `id, user_id, reservation_id, content_type, title, description, genre,
	prompt, media_url, duration_seconds, file_size_bytes, status, error_message, generation_provider,
	processing_time_ms, created_at, updated_at`

type SQLiteMagicContentRepo struct {
	db db.DBTX
}

func NewSQLiteMagicContentRepo(conn db.DBTX) *SQLiteMagicContentRepo {
	return &SQLiteMagicContentRepo{db: conn}
}

func (r *SQLiteMagicContentRepo) Create(ctx context.Context, c *domain.MagicContent) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = domain.ContentProcessing
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	query := `INSERT INTO magic_content (` + magicContentColumns + `) VALUES (:id, :user_id,
		:reservation_id, :content_type, :title, :description, :genre, :prompt, :media_url,
		:duration_seconds, :file_size_bytes, :status, :error_message, :generation_provider,
		:processing_time_ms, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fromDomainMagicContent(c)); err != nil {
		return fmt.Errorf("inserting magic content: %w", err)
	}
	return nil
}

func (r *SQLiteMagicContentRepo) Update(ctx context.Context, c *domain.MagicContent) error {
	c.UpdatedAt = time.Now().UTC()
	query := `UPDATE magic_content SET title = :title, description = :description, genre = :genre,
		prompt = :prompt, media_url = :media_url, duration_seconds = :duration_seconds,
		file_size_bytes = :file_size_bytes, status = :status, error_message = :error_message,
		generation_provider = :generation_provider, processing_time_ms = :processing_time_ms,
		updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, fromDomainMagicContent(c))
	if err != nil {
		return fmt.Errorf("updating magic content: %w", err)
	}
	return expectAffected(res, "magic content")
}

func (r *SQLiteMagicContentRepo) GetByID(ctx context.Context, id string) (*domain.MagicContent, error) {
	var row dbMagicContent
	if err := r.db.GetContext(ctx, &row, `SELECT `+magicContentColumns+` FROM magic_content WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("magic content: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("getting magic content: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteMagicContentRepo) ListByUser(ctx context.Context, userID string) ([]*domain.MagicContent, error) {
	var rows []dbMagicContent
	query := `SELECT ` + magicContentColumns + ` FROM magic_content WHERE user_id = ? ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("listing magic content: %w", err)
	}
	out := make([]*domain.MagicContent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
