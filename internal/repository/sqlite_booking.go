package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linapoint/resortagents/internal/db"
	"github.com/linapoint/resortagents/internal/domain"
)

type dbPrice struct {
	ID           string  `db:"id"`
	UserID       string  `db:"user_id"`
	RoomType     string  `db:"room_type"`
	CheckInDate  string  `db:"check_in_date"`
	CheckOutDate string  `db:"check_out_date"`
	Location     string  `db:"location"`
	OTAName      string  `db:"ota_name"`
	Price        float64 `db:"price"`
	BeatPrice    float64 `db:"beat_price"`
	URL          string  `db:"url"`
	CreatedAt    string  `db:"created_at"`
}

type SQLitePriceRepo struct {
	db db.DBTX
}

func NewSQLitePriceRepo(conn db.DBTX) *SQLitePriceRepo {
	return &SQLitePriceRepo{db: conn}
}

func (r *SQLitePriceRepo) Create(ctx context.Context, q *domain.PriceQuote) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	row := dbPrice{
		ID:           q.ID,
		UserID:       q.UserID,
		RoomType:     q.RoomType,
		CheckInDate:  q.CheckInDate,
		CheckOutDate: q.CheckOutDate,
		Location:     q.Location,
		OTAName:      q.OTAName,
		Price:        q.Price,
		BeatPrice:    q.BeatPrice,
		URL:          q.URL,
		CreatedAt:    formatTime(q.CreatedAt),
	}
	query := `INSERT INTO prices (id, user_id, room_type, check_in_date, check_out_date, location,
		ota_name, price, beat_price, url, created_at) VALUES (:id, :user_id, :room_type, :check_in_date,
		:check_out_date, :location, :ota_name, :price, :beat_price, :url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("inserting price: %w", err)
	}
	return nil
}

func (r *SQLitePriceRepo) ListRecent(ctx context.Context, limit int) ([]*domain.PriceQuote, error) {
	var rows []dbPrice
	query := `SELECT id, user_id, room_type, check_in_date, check_out_date, location, ota_name,
		price, beat_price, url, created_at FROM prices ORDER BY created_at DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("listing prices: %w", err)
	}
	out := make([]*domain.PriceQuote, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.PriceQuote{
			ID:           row.ID,
			UserID:       row.UserID,
			RoomType:     row.RoomType,
			CheckInDate:  row.CheckInDate,
			CheckOutDate: row.CheckOutDate,
			Location:     row.Location,
			OTAName:      row.OTAName,
			Price:        row.Price,
			BeatPrice:    row.BeatPrice,
			URL:          row.URL,
			CreatedAt:    parseTime(row.CreatedAt),
		})
	}
	return out, nil
}

type dbTourBooking struct {
	ID               string  `db:"id"`
	UserID           string  `db:"user_id"`
	BookingID        string  `db:"booking_id"`
	TourName         string  `db:"tour_name"`
	TourType         string  `db:"tour_type"`
	Price            float64 `db:"price"`
	AffiliateLink    string  `db:"affiliate_link"`
	CommissionEarned float64 `db:"commission_earned"`
	Status           string  `db:"status"`
	PaymentIntent    string  `db:"payment_intent"`
	CreatedAt        string  `db:"created_at"`
	UpdatedAt        string  `db:"updated_at"`
}

func (b dbTourBooking) toDomain() *domain.TourBooking {
	return &domain.TourBooking{
		ID:               b.ID,
		UserID:           b.UserID,
		BookingID:        b.BookingID,
		TourName:         b.TourName,
		TourType:         domain.TourCategory(b.TourType),
		Price:            b.Price,
		AffiliateLink:    b.AffiliateLink,
		CommissionEarned: b.CommissionEarned,
		Status:           domain.TourBookingStatus(b.Status),
		PaymentIntent:    b.PaymentIntent,
		CreatedAt:        parseTime(b.CreatedAt),
		UpdatedAt:        parseTime(b.UpdatedAt),
	}
}

const tourBookingColumns = `id, user_id, booking_id, tour_name, tour_type, price, affiliate_link,
	commission_earned, status, payment_intent, created_at, updated_at`

type SQLiteTourBookingRepo struct {
	db db.DBTX
}

func NewSQLiteTourBookingRepo(conn db.DBTX) *SQLiteTourBookingRepo {
	return &SQLiteTourBookingRepo{db: conn}
}

func (r *SQLiteTourBookingRepo) Create(ctx context.Context, b *domain.TourBooking) error {
	now := time.Now().UTC()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Status == "" {
		b.Status = domain.TourBookingPending
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	row := dbTourBooking{
		ID:               b.ID,
		UserID:           b.UserID,
		BookingID:        b.BookingID,
		TourName:         b.TourName,
		TourType:         string(b.TourType),
		Price:            b.Price,
		AffiliateLink:    b.AffiliateLink,
		CommissionEarned: b.CommissionEarned,
		Status:           string(b.Status),
		PaymentIntent:    b.PaymentIntent,
		CreatedAt:        formatTime(b.CreatedAt),
		UpdatedAt:        formatTime(b.UpdatedAt),
	}
	query := `INSERT INTO tour_bookings (` + tourBookingColumns + `) VALUES (:id, :user_id, :booking_id,
		:tour_name, :tour_type, :price, :affiliate_link, :commission_earned, :status, :payment_intent,
		:created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("inserting tour booking: %w", err)
	}
	return nil
}

func (r *SQLiteTourBookingRepo) ListByBookingID(ctx context.Context, bookingID string) ([]*domain.TourBooking, error) {
	return r.list(ctx, `SELECT `+tourBookingColumns+` FROM tour_bookings WHERE booking_id = ? ORDER BY created_at`, bookingID)
}

func (r *SQLiteTourBookingRepo) ListRecent(ctx context.Context, limit int) ([]*domain.TourBooking, error) {
	return r.list(ctx, `SELECT `+tourBookingColumns+` FROM tour_bookings ORDER BY created_at DESC LIMIT ?`, limit)
}

func (r *SQLiteTourBookingRepo) MarkPaid(ctx context.Context, bookingID, paymentIntent string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tour_bookings SET status = ?, payment_intent = ?, updated_at = ? WHERE booking_id = ? AND status = ?`,
		string(domain.TourBookingPaid), paymentIntent, formatTime(time.Now()), bookingID, string(domain.TourBookingPending))
	if err != nil {
		return 0, fmt.Errorf("marking tour bookings paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteTourBookingRepo) list(ctx context.Context, query string, args ...any) ([]*domain.TourBooking, error) {
	var rows []dbTourBooking
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing tour bookings: %w", err)
	}
	out := make([]*domain.TourBooking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
