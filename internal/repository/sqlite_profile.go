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

type dbProfile struct {
	ID            string `db:"id"`
	UserID        string `db:"user_id"`
	FullName      string `db:"full_name"`
	Email         string `db:"email"`
	PhoneNumber   string `db:"phone_number"`
	Birthday      string `db:"birthday"`
	Anniversary   string `db:"anniversary"`
	SpecialEvents string `db:"special_events"`
	MusicStyle    string `db:"music_style"`
	MayaInterests string `db:"maya_interests"`
	Interests     string `db:"interests"`
	ActivityLevel string `db:"activity_level"`
	OptInMagic    int    `db:"opt_in_magic"`
	MagicProfile  string `db:"magic_profile"`
	IsAdmin       int    `db:"is_admin"`
	AccessToken   string `db:"access_token"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
}

func (p dbProfile) toDomain() *domain.Profile {
	return &domain.Profile{
		ID:            p.ID,
		UserID:        p.UserID,
		FullName:      p.FullName,
		Email:         p.Email,
		PhoneNumber:   p.PhoneNumber,
		Birthday:      p.Birthday,
		Anniversary:   p.Anniversary,
		SpecialEvents: decodeJSON[[]domain.SpecialEvent](p.SpecialEvents),
		MusicStyle:    p.MusicStyle,
		MayaInterests: decodeJSON[[]string](p.MayaInterests),
		Interests:     decodeJSON[[]string](p.Interests),
		ActivityLevel: p.ActivityLevel,
		OptInMagic:    intToBool(p.OptInMagic),
		MagicProfile:  p.MagicProfile,
		IsAdmin:       intToBool(p.IsAdmin),
		AccessToken:   p.AccessToken,
		CreatedAt:     parseTime(p.CreatedAt),
		UpdatedAt:     parseTime(p.UpdatedAt),
	}
}

func fromDomainProfile(p *domain.Profile) dbProfile {
	return dbProfile{
		ID:            p.ID,
		UserID:        p.UserID,
		FullName:      p.FullName,
		Email:         p.Email,
		PhoneNumber:   p.PhoneNumber,
		Birthday:      p.Birthday,
		Anniversary:   p.Anniversary,
		SpecialEvents: encodeJSON(p.SpecialEvents, "[]"),
		MusicStyle:    p.MusicStyle,
		MayaInterests: encodeJSON(p.MayaInterests, "[]"),
		Interests:     encodeJSON(p.Interests, "[]"),
		ActivityLevel: p.ActivityLevel,
		OptInMagic:    boolToInt(p.OptInMagic),
		MagicProfile:  p.MagicProfile,
		IsAdmin:       boolToInt(p.IsAdmin),
		AccessToken:   p.AccessToken,
		CreatedAt:     formatTime(p.CreatedAt),
		UpdatedAt:     formatTime(p.UpdatedAt),
	}
}

const profileColumns = `id, user_id, full_name, email, phone_number, birthday, anniversary,
	special_events, music_style, maya_interests, interests, activity_level, opt_in_magic,
	magic_profile, is_admin, access_token, created_at, updated_at`

type SQLiteProfileRepo struct {
	db db.DBTX
}

func NewSQLiteProfileRepo(conn db.DBTX) *SQLiteProfileRepo {
	return &SQLiteProfileRepo{db: conn}
}

func (r *SQLiteProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `INSERT INTO profiles (` + profileColumns + `) VALUES (:id, :user_id, :full_name, :email,
		:phone_number, :birthday, :anniversary, :special_events, :music_style, :maya_interests,
		:interests, :activity_level, :opt_in_magic, :magic_profile, :is_admin, :access_token,
		:created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fromDomainProfile(p)); err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

func (r *SQLiteProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	query := `UPDATE profiles SET full_name = :full_name, email = :email, phone_number = :phone_number,
		birthday = :birthday, anniversary = :anniversary, special_events = :special_events,
		music_style = :music_style, maya_interests = :maya_interests, interests = :interests,
		activity_level = :activity_level, opt_in_magic = :opt_in_magic, magic_profile = :magic_profile,
		is_admin = :is_admin, access_token = :access_token, updated_at = :updated_at
		WHERE user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, fromDomainProfile(p))
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return expectAffected(res, "profile")
}

func (r *SQLiteProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
}

func (r *SQLiteProfileRepo) GetByPhone(ctx context.Context, phone string) (*domain.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE phone_number = ? ORDER BY created_at LIMIT 1`, phone)
}

func (r *SQLiteProfileRepo) GetByAccessToken(ctx context.Context, token string) (*domain.Profile, error) {
	if token == "" {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE access_token = ?`, token)
}

func (r *SQLiteProfileRepo) UpdateMagicProfile(ctx context.Context, userID, summary string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET magic_profile = ?, updated_at = ? WHERE user_id = ?`,
		summary, formatTime(time.Now()), userID)
	if err != nil {
		return fmt.Errorf("updating magic profile: %w", err)
	}
	return expectAffected(res, "profile")
}

func (r *SQLiteProfileRepo) List(ctx context.Context) ([]*domain.Profile, error) {
	var rows []dbProfile
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return mapProfiles(rows), nil
}

func (r *SQLiteProfileRepo) ListProactiveTargets(ctx context.Context, now time.Time) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p
		WHERE p.opt_in_magic = 1 AND p.phone_number <> ''
		AND EXISTS (SELECT 1 FROM reservations r WHERE r.user_id = p.user_id AND r.check_out > ?)
		ORDER BY p.created_at`
	var rows []dbProfile
	if err := r.db.SelectContext(ctx, &rows, query, formatTime(now)); err != nil {
		return nil, fmt.Errorf("listing proactive targets: %w", err)
	}
	return mapProfiles(rows), nil
}

func (r *SQLiteProfileRepo) ListLapsedGuests(ctx context.Context, lastStayBefore time.Time) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p
		WHERE p.email <> ''
		AND (SELECT MAX(r.check_out) FROM reservations r
			WHERE r.user_id = p.user_id AND r.status <> 'cancelled') < ?
		ORDER BY p.created_at`
	var rows []dbProfile
	if err := r.db.SelectContext(ctx, &rows, query, formatTime(lastStayBefore)); err != nil {
		return nil, fmt.Errorf("listing lapsed guests: %w", err)
	}
	return mapProfiles(rows), nil
}

func (r *SQLiteProfileRepo) getOne(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	var row dbProfile
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return row.toDomain(), nil
}

func mapProfiles(rows []dbProfile) []*domain.Profile {
	out := make([]*domain.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func expectAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return nil
}
