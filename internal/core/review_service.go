package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Review is customer feedback on a cafe.
type Review struct {
	ID           int       `json:"id"`
	CafeID       int       `json:"cafe_id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewService records and lists customer reviews.
type ReviewService interface {
	CreateReview(ctx context.Context, cafeID int, customerName string, rating int, comment string) (*Review, error)
	GetReviews(ctx context.Context, cafeID int) ([]Review, decimal.Decimal, error)
}

type reviewService struct {
	pool *pgxpool.Pool
}

func NewReviewService(pool *pgxpool.Pool) ReviewService {
	return &reviewService{pool: pool}
}

func (s *reviewService) CreateReview(ctx context.Context, cafeID int, customerName string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	if customerName == "" {
		customerName = "Anonymous"
	}
	r := &Review{CafeID: cafeID, CustomerName: customerName, Rating: rating, Comment: comment}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO reviews (cafe_id, customer_name, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		cafeID, customerName, rating, comment,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return r, nil
}

// GetReviews returns reviews newest first plus the average rating
// (zero when there are none).
func (s *reviewService) GetReviews(ctx context.Context, cafeID int) ([]Review, decimal.Decimal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, cafe_id, customer_name, rating, comment, created_at
		FROM reviews
		WHERE cafe_id = $1
		ORDER BY created_at DESC`,
		cafeID,
	)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	total := decimal.Zero
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.CafeID, &r.CustomerName, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, decimal.Zero, fmt.Errorf("failed to scan review: %w", err)
		}
		total = total.Add(decimal.NewFromInt(int64(r.Rating)))
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("review row iteration error: %w", err)
	}

	avg := decimal.Zero
	if len(reviews) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(reviews)))).Round(2)
	}
	return reviews, avg, nil
}
