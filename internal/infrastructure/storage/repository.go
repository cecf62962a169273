package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

const analysesTable = "analyses"

var analysisColumns = []string{
	"id",
	"input_text",
	"classifier_label",
	"classifier_confidence",
	"corpus_confidence",
	"final_verdict",
	"third_party_verdict",
	"articles_analyzed_count",
	"trusted_source_count",
	"created_at",
}

// SQLRepository persists analysis records into Postgres or SQLite.
type SQLRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.AnalysisRepository = (*SQLRepository)(nil)

// NewSQLRepository wires a sql.DB implementation for the given driver.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == config.DriverPostgres {
		placeholder = sq.Dollar
	}
	return &SQLRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// SaveAnalysis inserts the record; a repeated ID is ignored.
func (r *SQLRepository) SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert(analysesTable).
		Columns(analysisColumns...).
		Values(
			rec.ID,
			rec.InputText,
			string(rec.ClassifierLabel),
			rec.ClassifierConfidence,
			rec.CorpusConfidence,
			string(rec.FinalVerdict),
			string(rec.ThirdPartyVerdict),
			rec.ArticlesAnalyzedCount,
			rec.TrustedSourceCount,
			rec.CreatedAt.UTC(),
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// RecentAnalyses returns up to limit records, newest first.
func (r *SQLRepository) RecentAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if r.db == nil {
		return []domain.AnalysisRecord{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query, args, err := r.builder.
		Select(analysisColumns...).
		From(analysesTable).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	result := make([]domain.AnalysisRecord, 0, limit)
	for rows.Next() {
		var (
			rec                        domain.AnalysisRecord
			label, verdict, thirdParty string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.InputText,
			&label,
			&rec.ClassifierConfidence,
			&rec.CorpusConfidence,
			&verdict,
			&thirdParty,
			&rec.ArticlesAnalyzedCount,
			&rec.TrustedSourceCount,
			&rec.CreatedAt,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec.ClassifierLabel = domain.ClassifierLabel(label)
		rec.FinalVerdict = domain.Verdict(verdict)
		rec.ThirdPartyVerdict = domain.ThirdPartyVerdict(thirdParty)
		result = append(result, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}
