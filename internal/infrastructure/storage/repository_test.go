package storage

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
)

const columns = "id,input_text,classifier_label,classifier_confidence,corpus_confidence,final_verdict,third_party_verdict,articles_analyzed_count,trusted_source_count,created_at"

func sampleRecord() domain.AnalysisRecord {
	return domain.AnalysisRecord{
		ID:                    "a-1",
		InputText:             "NASA rover finds water on Mars",
		ClassifierLabel:       domain.LabelReal,
		ClassifierConfidence:  0.91,
		CorpusConfidence:      0.82,
		FinalVerdict:          domain.VerdictTrue,
		ThirdPartyVerdict:     domain.ThirdPartyTrue,
		ArticlesAnalyzedCount: 42,
		TrustedSourceCount:    7,
		CreatedAt:             time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAnalysisPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	rec := sampleRecord()
	query := "INSERT INTO analyses (" + columns + ") VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) ON CONFLICT (id) DO NOTHING"
	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs("a-1", rec.InputText, "real", 0.91, 0.82, "True", "True", 42, 7, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSQLRepository(db, config.DriverPostgres)
	if err := repo.SaveAnalysis(context.Background(), rec); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveAnalysisSQLitePlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	query := "INSERT INTO analyses (" + columns + ") VALUES (?,?,?,?,?,?,?,?,?,?) ON CONFLICT (id) DO NOTHING"
	mock.ExpectExec(regexp.QuoteMeta(query)).WillReturnError(errors.New("database is locked"))

	repo := NewSQLRepository(db, config.DriverSQLite)
	if err := repo.SaveAnalysis(context.Background(), sampleRecord()); err == nil {
		t.Fatalf("expected error to propagate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecentAnalyses(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	rec := sampleRecord()
	rows := sqlmock.NewRows([]string{
		"id", "input_text", "classifier_label", "classifier_confidence", "corpus_confidence",
		"final_verdict", "third_party_verdict", "articles_analyzed_count", "trusted_source_count", "created_at",
	}).AddRow(rec.ID, rec.InputText, "real", 0.91, 0.82, "True", "True", 42, 7, rec.CreatedAt)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + strings.ReplaceAll(columns, ",", ", ") + " FROM analyses ORDER BY created_at DESC LIMIT 5")).
		WillReturnRows(rows)

	repo := NewSQLRepository(db, config.DriverPostgres)
	got, err := repo.RecentAnalyses(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentAnalyses: %v", err)
	}
	if len(got) != 1 || got[0] != rec {
		t.Fatalf("unexpected records %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNilDatabaseIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewSQLRepository(nil, config.DriverSQLite)
	if err := repo.SaveAnalysis(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("SaveAnalysis on nil db: %v", err)
	}
	got, err := repo.RecentAnalyses(context.Background(), 3)
	if err != nil || len(got) != 0 {
		t.Fatalf("RecentAnalyses on nil db = %v, %v", got, err)
	}
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS analyses")).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
