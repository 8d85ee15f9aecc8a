package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/outline"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
)

const (
	DefaultMaxOpenConns    = 16
	DefaultMaxIdleConns    = 4
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultPingTimeout     = 5 * time.Second
)

// Open connects to Postgres and checks the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db           *sqlx.DB
	metadataSink metadata.MetadataSink
}

func NewPostgresStore(db *sqlx.DB, metadataSink metadata.MetadataSink) *PostgresStore {
	return &PostgresStore{
		db:           db,
		metadataSink: metadataSink,
	}
}

// Migrate applies Schema.
func (s *PostgresStore) Migrate(ctx context.Context) failure.ClassifiedError {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return s.fail("PostgresStore.Migrate", document.Key{}, ErrCauseWriteFailure, err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, key document.Key) (bool, failure.ClassifiedError) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM documents WHERE source = $1 AND id = $2)`,
		string(key.Source), key.ID,
	)
	if err != nil {
		return false, s.fail("PostgresStore.Exists", key, ErrCauseQueryFailure, err)
	}
	return exists, nil
}

const upsertDocument = `
	INSERT INTO documents (source, id, collection, title, subtitle, serial_number, doc_type,
		issuing_authority, applicable_information, publication_decision, state, sector,
		issuance_date, effective_date, expiration_date, gazette_date, adoption_date,
		publication_date, application_date, body_html, attachments)
	VALUES (:source, :id, :collection, :title, :subtitle, :serial_number, :doc_type,
		:issuing_authority, :applicable_information, :publication_decision, :state, :sector,
		:issuance_date, :effective_date, :expiration_date, :gazette_date, :adoption_date,
		:publication_date, :application_date, :body_html, :attachments)
	ON CONFLICT (source, id)
	DO UPDATE SET
		collection = EXCLUDED.collection,
		title = EXCLUDED.title,
		subtitle = EXCLUDED.subtitle,
		serial_number = EXCLUDED.serial_number,
		doc_type = EXCLUDED.doc_type,
		issuing_authority = EXCLUDED.issuing_authority,
		applicable_information = EXCLUDED.applicable_information,
		publication_decision = EXCLUDED.publication_decision,
		state = EXCLUDED.state,
		sector = EXCLUDED.sector,
		issuance_date = EXCLUDED.issuance_date,
		effective_date = EXCLUDED.effective_date,
		expiration_date = EXCLUDED.expiration_date,
		gazette_date = EXCLUDED.gazette_date,
		adoption_date = EXCLUDED.adoption_date,
		publication_date = EXCLUDED.publication_date,
		application_date = EXCLUDED.application_date,
		body_html = EXCLUDED.body_html,
		attachments = EXCLUDED.attachments,
		updated_at = NOW()
`

func (s *PostgresStore) Save(ctx context.Context, doc *document.Document) failure.ClassifiedError {
	row, err := toDocumentRow(doc)
	if err != nil {
		return s.fail("PostgresStore.Save", doc.Key(), ErrCauseEncoding, err)
	}
	if _, err := s.db.NamedExecContext(ctx, upsertDocument, row); err != nil {
		return s.fail("PostgresStore.Save", doc.Key(), ErrCauseWriteFailure, err)
	}
	return nil
}

func (s *PostgresStore) SaveOutline(ctx context.Context, key document.Key, articles []outline.Article) failure.ClassifiedError {
	rows := make([]articleRow, 0, len(articles))
	for i, a := range articles {
		row, err := toArticleRow(key, i, a)
		if err != nil {
			return s.fail("PostgresStore.SaveOutline", key, ErrCauseEncoding, err)
		}
		rows = append(rows, row)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return s.fail("PostgresStore.SaveOutline", key, ErrCauseWriteFailure, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM articles WHERE source = $1 AND document_id = $2`,
		string(key.Source), key.ID,
	); err != nil {
		return s.fail("PostgresStore.SaveOutline", key, ErrCauseWriteFailure, err)
	}

	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO articles (source, document_id, seq, number, name, body, position)
			VALUES (:source, :document_id, :seq, :number, :name, :body, :position)`,
			row,
		); err != nil {
			return s.fail("PostgresStore.SaveOutline", key, ErrCauseWriteFailure, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.fail("PostgresStore.SaveOutline", key, ErrCauseWriteFailure, err)
	}
	return nil
}

func (s *PostgresStore) EdgeExists(ctx context.Context, edge document.Edge) (bool, failure.ClassifiedError) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM edges
			WHERE source = $1 AND space = $2 AND source_id = $3 AND target_id = $4 AND label = $5
		)`,
		string(edge.Source), string(edge.Space), edge.SourceID, edge.TargetID, edge.Label,
	)
	if err != nil {
		return false, s.fail("PostgresStore.EdgeExists", document.Key{Source: edge.Source, ID: edge.SourceID}, ErrCauseQueryFailure, err)
	}
	return exists, nil
}

func (s *PostgresStore) SaveEdge(ctx context.Context, edge document.Edge) (bool, failure.ClassifiedError) {
	result, err := s.db.NamedExecContext(ctx, `
		INSERT INTO edges (source, space, source_id, target_id, label)
		VALUES (:source, :space, :source_id, :target_id, :label)
		ON CONFLICT DO NOTHING`,
		toEdgeRow(edge),
	)
	if err != nil {
		return false, s.fail("PostgresStore.SaveEdge", document.Key{Source: edge.Source, ID: edge.SourceID}, ErrCauseWriteFailure, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, s.fail("PostgresStore.SaveEdge", document.Key{Source: edge.Source, ID: edge.SourceID}, ErrCauseWriteFailure, err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) Get(ctx context.Context, key document.Key) (*document.Document, failure.ClassifiedError) {
	var row documentRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+documentColumns+` FROM documents WHERE source = $1 AND id = $2`,
		string(key.Source), key.ID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &StorageError{
			Message:   fmt.Sprintf("document %s", key),
			Retryable: false,
			Cause:     ErrCauseNotFound,
		}
	}
	if err != nil {
		return nil, s.fail("PostgresStore.Get", key, ErrCauseQueryFailure, err)
	}

	doc, err := row.toDocument()
	if err != nil {
		return nil, s.fail("PostgresStore.Get", key, ErrCauseEncoding, err)
	}
	if err := s.loadOutlines(ctx, key.Source, []*document.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*document.Document, failure.ClassifiedError) {
	where := []string{"source = $1"}
	args := []any{string(filter.Source)}
	if filter.IssuedFrom != nil {
		args = append(args, *filter.IssuedFrom)
		where = append(where, fmt.Sprintf("issuance_date >= $%d", len(args)))
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY issuance_date DESC NULLS LAST, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, s.fail("PostgresStore.List", document.Key{Source: filter.Source}, ErrCauseQueryFailure, err)
	}

	docs := make([]*document.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDocument()
		if err != nil {
			return nil, s.fail("PostgresStore.List", document.Key{Source: filter.Source, ID: row.ID}, ErrCauseEncoding, err)
		}
		docs = append(docs, doc)
	}
	if err := s.loadOutlines(ctx, filter.Source, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *PostgresStore) Edges(ctx context.Context, key document.Key) ([]document.Edge, failure.ClassifiedError) {
	var rows []edgeRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT source, space, source_id, target_id, label FROM edges
		WHERE source = $1 AND source_id = $2
		ORDER BY space, target_id, label`,
		string(key.Source), key.ID,
	)
	if err != nil {
		return nil, s.fail("PostgresStore.Edges", key, ErrCauseQueryFailure, err)
	}
	edges := make([]document.Edge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, row.toEdge())
	}
	return edges, nil
}

// loadOutlines fills the Outline of docs with one query.
func (s *PostgresStore) loadOutlines(ctx context.Context, source document.Source, docs []*document.Document) failure.ClassifiedError {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(docs))
	byID := make(map[string]*document.Document, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
		byID[doc.ID] = doc
	}

	var rows []articleRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT source, document_id, seq, number, name, body, position FROM articles
		WHERE source = $1 AND document_id = ANY($2)
		ORDER BY document_id, seq`,
		string(source), pq.Array(ids),
	)
	if err != nil {
		return s.fail("PostgresStore.loadOutlines", document.Key{Source: source}, ErrCauseQueryFailure, err)
	}
	for _, row := range rows {
		article, err := row.toArticle()
		if err != nil {
			return s.fail("PostgresStore.loadOutlines", document.Key{Source: source, ID: row.DocumentID}, ErrCauseEncoding, err)
		}
		if doc, ok := byID[row.DocumentID]; ok {
			doc.Outline = append(doc.Outline, article)
		}
	}
	return nil
}

func (s *PostgresStore) fail(action string, key document.Key, cause StorageErrorCause, err error) *StorageError {
	storageErr := &StorageError{
		Message:   err.Error(),
		Retryable: cause == ErrCauseQueryFailure || cause == ErrCauseWriteFailure,
		Cause:     cause,
	}
	s.metadataSink.RecordError(
		time.Now(),
		"storage",
		action,
		mapStorageErrorToMetadataCause(storageErr),
		storageErr.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSource, string(key.Source)),
			metadata.NewAttr(metadata.AttrDocumentID, key.ID),
		},
	)
	return storageErr
}
