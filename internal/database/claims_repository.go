package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/claim-ranker/internal/domain"
)

// ErrClaimNotFound is returned when a claim id has no row.
var ErrClaimNotFound = errors.New("claim not found")

// DefaultRecentLimit bounds GetRecent when the caller passes no limit.
const DefaultRecentLimit = 20

// openWindow is the lookback used by GetOpenLastHour.
const openWindow = time.Hour

// claimColumns lists the claims table columns in scan order.
var claimColumns = []string{
	"id", "raw_text", "language", "translated_text",
	"sentiment_label", "sentiment_score", "category", "category_source",
	"priority", "status", "fail_reason", "resolution",
	"created_at", "updated_at",
}

// ClaimsRepository handles database operations for claims.
type ClaimsRepository struct {
	db *sqlx.DB
}

// NewClaimsRepository creates a new claims repository.
func NewClaimsRepository(db *sqlx.DB) *ClaimsRepository {
	return &ClaimsRepository{db: db}
}

// Insert persists a completed claim. The claim already carries its id
// and timestamps; the pipeline owns both.
func (r *ClaimsRepository) Insert(ctx context.Context, claim *domain.Claim) error {
	query := `
		INSERT INTO claims (id, raw_text, language, translated_text,
			sentiment_label, sentiment_score, category, category_source,
			priority, status, fail_reason, resolution, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		claim.ID,
		claim.RawText,
		claim.Language,
		claim.TranslatedText,
		claim.SentimentLabel,
		claim.SentimentScore,
		claim.Category,
		claim.CategorySource,
		claim.Priority,
		claim.Status,
		claim.FailReason,
		claim.Resolution,
		claim.CreatedAt,
		claim.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}

	return nil
}

// GetRecent returns the most recently created claims, newest first.
// A non-positive limit falls back to DefaultRecentLimit.
func (r *ClaimsRepository) GetRecent(ctx context.Context, limit int) ([]domain.Claim, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query, args, err := sq.Select(claimColumns...).
		From("claims").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent query: %w", err)
	}

	return r.selectClaims(ctx, query, args)
}

// GetByStatus returns claims with the given processing status, newest first.
func (r *ClaimsRepository) GetByStatus(ctx context.Context, status domain.Status) ([]domain.Claim, error) {
	query, args, err := sq.Select(claimColumns...).
		From("claims").
		Where(sq.Eq{"status": status}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build status query: %w", err)
	}

	return r.selectClaims(ctx, query, args)
}

// GetByTimeRange returns claims created within [start, end], oldest first.
func (r *ClaimsRepository) GetByTimeRange(ctx context.Context, start, end time.Time) ([]domain.Claim, error) {
	query, args, err := sq.Select(claimColumns...).
		From("claims").
		Where(sq.GtOrEq{"created_at": start}).
		Where(sq.LtOrEq{"created_at": end}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build range query: %w", err)
	}

	return r.selectClaims(ctx, query, args)
}

// GetOpenLastHour returns open claims created in the last hour, newest first.
func (r *ClaimsRepository) GetOpenLastHour(ctx context.Context) ([]domain.Claim, error) {
	since := time.Now().Add(-openWindow)

	query, args, err := sq.Select(claimColumns...).
		From("claims").
		Where(sq.Eq{"resolution": domain.ResolutionOpen}).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build open claims query: %w", err)
	}

	return r.selectClaims(ctx, query, args)
}

// CloseByID marks a claim's resolution closed. Closing an already
// closed claim is a no-op success; an unknown id returns
// ErrClaimNotFound.
func (r *ClaimsRepository) CloseByID(ctx context.Context, id string) error {
	query := `UPDATE claims SET resolution = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, domain.ResolutionClosed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to close claim: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}

	return nil
}

// Count returns the total number of stored claims.
func (r *ClaimsRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM claims`

	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count claims: %w", err)
	}

	return count, nil
}

func (r *ClaimsRepository) selectClaims(ctx context.Context, query string, args []any) ([]domain.Claim, error) {
	var claims []domain.Claim
	if err := r.db.SelectContext(ctx, &claims, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	return claims, nil
}
