// Package sqlite persists vector indices to disk. Each ingested source
// gets its own directory containing a single index.db file; the store
// round-trips the in-memory index through it.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

const dbFileName = "index.db"

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	position INTEGER PRIMARY KEY,
	id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	source TEXT NOT NULL,
	content TEXT NOT NULL,
	chunk_position INTEGER NOT NULL,
	embedding BLOB NOT NULL
)`

// Store reads and writes per-source index databases.
type Store struct{}

var _ driven.IndexStore = (*Store)(nil)

// NewStore creates an index store.
func NewStore() *Store {
	return &Store{}
}

// Exists reports whether dir contains a persisted index.
func (s *Store) Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, dbFileName))
	return err == nil && !info.IsDir()
}

// Persist writes the index to dir/index.db, replacing any previous
// contents. The directory is created if needed.
func (s *Store) Persist(ctx context.Context, dir string, index driven.VectorIndex) error {
	mem, ok := index.(*memory.Index)
	if !ok {
		return fmt.Errorf("%w: cannot persist %T", domain.ErrInvalidInput, index)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	db, err := openDB(dir)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating chunks table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (position, id, document_id, source, content, chunk_position, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	chunks := mem.Chunks()
	vectors := mem.Vectors()
	for i, chunk := range chunks {
		blob := float32SliceToBytes(vectors[i])
		if _, err := stmt.ExecContext(ctx, i, chunk.ID, chunk.DocumentID,
			chunk.Source, chunk.Content, chunk.Position, blob); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load rebuilds an index from dir/index.db. Returns ErrNotFound when no
// index has been persisted there.
func (s *Store) Load(ctx context.Context, dir string) (driven.VectorIndex, error) {
	if !s.Exists(dir) {
		return nil, fmt.Errorf("index at %s: %w", dir, domain.ErrNotFound)
	}

	db, err := openDB(dir)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT id, document_id, source, content, chunk_position, embedding
		FROM chunks ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var blob []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Source,
			&chunk.Content, &chunk.Position, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(blob)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	index := memory.New()
	if err := index.Add(chunks); err != nil {
		return nil, fmt.Errorf("rebuilding index: %w", err)
	}
	return index, nil
}

func openDB(dir string) (*sql.DB, error) {
	dbPath := filepath.Join(dir, dbFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	return db, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
