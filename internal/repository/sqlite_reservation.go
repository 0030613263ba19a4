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

type dbReservation struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Title     string         `db:"title"`
	RoomType  string         `db:"room_type"`
	CheckIn   string         `db:"check_in"`
	CheckOut  string         `db:"check_out"`
	Status    string         `db:"status"`
	AddOns    sql.NullString `db:"add_ons"`
	CreatedAt string         `db:"created_at"`
	UpdatedAt string         `db:"updated_at"`
}

func (r dbReservation) toDomain() *domain.Reservation {
	res := &domain.Reservation{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		RoomType:  r.RoomType,
		CheckIn:   parseTime(r.CheckIn),
		CheckOut:  parseTime(r.CheckOut),
		Status:    domain.ReservationStatus(r.Status),
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
	// NULL add_ons means the reservation predates add-on tracking.
	if r.AddOns.Valid {
		res.AddOns = decodeJSON[[]string](r.AddOns.String)
		if res.AddOns == nil {
			res.AddOns = []string{}
		}
	}
	return res
}

const reservationColumns = `id, user_id, title, room_type, check_in, check_out, status, add_ons, created_at, updated_at`

type SQLiteReservationRepo struct {
	db db.DBTX
}

func NewSQLiteReservationRepo(conn db.DBTX) *SQLiteReservationRepo {
	return &SQLiteReservationRepo{db: conn}
}

func (r *SQLiteReservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	now := time.Now().UTC()
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.Status == "" {
		res.Status = domain.ReservationPending
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	var addOns sql.NullString
	if res.AddOns != nil {
		addOns = sql.NullString{String: encodeJSON(res.AddOns, "[]"), Valid: true}
	}
	row := dbReservation{
		ID:        res.ID,
		UserID:    res.UserID,
		Title:     res.Title,
		RoomType:  res.RoomType,
		CheckIn:   formatTime(res.CheckIn),
		CheckOut:  formatTime(res.CheckOut),
		Status:    string(res.Status),
		AddOns:    addOns,
		CreatedAt: formatTime(res.CreatedAt),
		UpdatedAt: formatTime(res.UpdatedAt),
	}
	query := `INSERT INTO reservations (` + reservationColumns + `) VALUES (:id, :user_id, :title,
		:room_type, :check_in, :check_out, :status, :add_ons, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}
	return nil
}

func (r *SQLiteReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var row dbReservation
	err := r.db.GetContext(ctx, &row, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("getting reservation: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteReservationRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE user_id = ? ORDER BY check_in`, userID)
}

func (r *SQLiteReservationRepo) ListCheckInBetween(ctx context.Context, status domain.ReservationStatus, from, to time.Time) ([]*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE status = ? AND check_in >= ? AND check_in <= ? ORDER BY check_in`
	return r.list(ctx, query, string(status), formatTime(from), formatTime(to))
}

func (r *SQLiteReservationRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC LIMIT ?`, limit)
}

func (r *SQLiteReservationRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Reservation, error) {
	var rows []dbReservation
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	out := make([]*domain.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
