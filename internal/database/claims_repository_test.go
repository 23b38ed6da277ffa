//nolint:testpackage // Testing internal repository requires same package access
package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/claim-ranker/internal/domain"
)

func newMockRepo(t *testing.T) (*ClaimsRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}

	sqlxDB := sqlx.NewDb(db, "sqlite3")
	return NewClaimsRepository(sqlxDB), mock, func() { _ = sqlxDB.Close() }
}

func claimRows() *sqlmock.Rows {
	return sqlmock.NewRows(claimColumns)
}

func addClaimRow(rows *sqlmock.Rows, id string, status domain.Status, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, "my bag was damaged", "en", "my bag was damaged",
		"negative", -0.8, "damage", "local",
		5, status, "", "open",
		createdAt, createdAt,
	)
}

func TestClaimsRepository_Insert(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	claim := &domain.Claim{
		ID:             "claim-1",
		RawText:        "Мой багаж был повреждён",
		Language:       "ru",
		TranslatedText: "My baggage was damaged",
		SentimentLabel: "negative",
		SentimentScore: -0.8,
		Category:       "damage",
		CategorySource: "local",
		Priority:       5,
		Status:         domain.StatusStored,
		Resolution:     domain.ResolutionOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	mock.ExpectExec("INSERT INTO claims").
		WithArgs(
			"claim-1", "Мой багаж был повреждён", "ru", "My baggage was damaged",
			"negative", -0.8, "damage", "local",
			5, "stored", "", "open",
			now, now,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	insertErr := repo.Insert(context.Background(), claim)
	if insertErr != nil {
		t.Errorf("Insert() error = %v", insertErr)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestClaimsRepository_GetRecent(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := claimRows()
	addClaimRow(rows, "claim-2", domain.StatusStored, base.Add(time.Minute))
	addClaimRow(rows, "claim-1", domain.StatusStored, base)

	mock.ExpectQuery("SELECT (.+) FROM claims ORDER BY created_at DESC LIMIT 2").
		WillReturnRows(rows)

	claims, queryErr := repo.GetRecent(context.Background(), 2)
	if queryErr != nil {
		t.Fatalf("GetRecent() error = %v", queryErr)
	}

	if len(claims) != 2 {
		t.Fatalf("GetRecent() returned %d claims, want 2", len(claims))
	}

	if claims[0].ID != "claim-2" {
		t.Errorf("claims[0].ID = %q, want %q", claims[0].ID, "claim-2")
	}

	if claims[0].Priority != 5 {
		t.Errorf("claims[0].Priority = %d, want 5", claims[0].Priority)
	}
}

func TestClaimsRepository_GetRecent_DefaultLimit(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery("SELECT (.+) FROM claims ORDER BY created_at DESC LIMIT 20").
		WillReturnRows(claimRows())

	_, queryErr := repo.GetRecent(context.Background(), 0)
	if queryErr != nil {
		t.Fatalf("GetRecent() error = %v", queryErr)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestClaimsRepository_GetByStatus(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := claimRows()
	addClaimRow(rows, "claim-3", domain.StatusFailed, base)

	mock.ExpectQuery("SELECT (.+) FROM claims WHERE status = \\?").
		WithArgs("failed").
		WillReturnRows(rows)

	claims, queryErr := repo.GetByStatus(context.Background(), domain.StatusFailed)
	if queryErr != nil {
		t.Fatalf("GetByStatus() error = %v", queryErr)
	}

	if len(claims) != 1 {
		t.Fatalf("GetByStatus() returned %d claims, want 1", len(claims))
	}

	if claims[0].Status != domain.StatusFailed {
		t.Errorf("claims[0].Status = %q, want %q", claims[0].Status, domain.StatusFailed)
	}
}

func TestClaimsRepository_GetByTimeRange(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	rows := claimRows()
	addClaimRow(rows, "claim-1", domain.StatusStored, start.Add(time.Hour))
	addClaimRow(rows, "claim-2", domain.StatusStored, start.Add(2*time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM claims WHERE created_at >= \\? AND created_at <= \\? ORDER BY created_at ASC").
		WithArgs(start, end).
		WillReturnRows(rows)

	claims, queryErr := repo.GetByTimeRange(context.Background(), start, end)
	if queryErr != nil {
		t.Fatalf("GetByTimeRange() error = %v", queryErr)
	}

	if len(claims) != 2 {
		t.Fatalf("GetByTimeRange() returned %d claims, want 2", len(claims))
	}

	if claims[0].ID != "claim-1" {
		t.Errorf("claims[0].ID = %q, want %q", claims[0].ID, "claim-1")
	}
}

func TestClaimsRepository_GetOpenLastHour(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	rows := claimRows()
	addClaimRow(rows, "claim-1", domain.StatusStored, time.Now().Add(-10*time.Minute))

	mock.ExpectQuery("SELECT (.+) FROM claims WHERE resolution = \\? AND created_at >= \\?").
		WithArgs(domain.ResolutionOpen, sqlmock.AnyArg()).
		WillReturnRows(rows)

	claims, queryErr := repo.GetOpenLastHour(context.Background())
	if queryErr != nil {
		t.Fatalf("GetOpenLastHour() error = %v", queryErr)
	}

	if len(claims) != 1 {
		t.Fatalf("GetOpenLastHour() returned %d claims, want 1", len(claims))
	}

	if claims[0].Resolution != domain.ResolutionOpen {
		t.Errorf("claims[0].Resolution = %q, want open", claims[0].Resolution)
	}
}

func TestClaimsRepository_CloseByID(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec("UPDATE claims SET resolution").
		WithArgs(domain.ResolutionClosed, sqlmock.AnyArg(), "claim-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	closeErr := repo.CloseByID(context.Background(), "claim-1")
	if closeErr != nil {
		t.Errorf("CloseByID() error = %v", closeErr)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestClaimsRepository_CloseByID_NotFound(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec("UPDATE claims SET resolution").
		WithArgs(domain.ResolutionClosed, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	closeErr := repo.CloseByID(context.Background(), "missing")
	if !errors.Is(closeErr, ErrClaimNotFound) {
		t.Errorf("CloseByID() error = %v, want ErrClaimNotFound", closeErr)
	}
}

func TestClaimsRepository_Count(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, countErr := repo.Count(context.Background())
	if countErr != nil {
		t.Fatalf("Count() error = %v", countErr)
	}

	if count != 7 {
		t.Errorf("Count() = %d, want 7", count)
	}
}
