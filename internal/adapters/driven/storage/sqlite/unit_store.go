package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// unitStore implements driven.UnitStore.
type unitStore struct {
	store *Store
}

var _ driven.UnitStore = (*unitStore)(nil)

// SaveUnits stores units in one transaction.
func (u *unitStore) SaveUnits(ctx context.Context, units []domain.RetrievalUnit) error {
	tx, err := u.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertUnits(ctx, tx, units); err != nil {
		return err
	}
	return tx.Commit()
}

// ListUnits returns all units ordered by insertion sequence.
func (u *unitStore) ListUnits(ctx context.Context) ([]domain.RetrievalUnit, error) {
	rows, err := u.store.db.QueryContext(ctx, `
		SELECT id, document_name, position, sequence, text, embedding
		FROM units ORDER BY sequence
	`)
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	defer rows.Close()

	var units []domain.RetrievalUnit
	for rows.Next() {
		var unit domain.RetrievalUnit
		var blob []byte
		if err := rows.Scan(&unit.ID, &unit.DocumentName, &unit.Position,
			&unit.Sequence, &unit.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		unit.Embedding = bytesToFloat32Slice(blob)
		units = append(units, unit)
	}
	return units, rows.Err()
}

// DeleteByDocument removes all units cut from a document.
func (u *unitStore) DeleteByDocument(ctx context.Context, documentName string) error {
	_, err := u.store.db.ExecContext(ctx, "DELETE FROM units WHERE document_name = ?", documentName)
	if err != nil {
		return fmt.Errorf("deleting units for %s: %w", documentName, err)
	}
	return nil
}

// ReplaceAll atomically replaces the whole unit set.
func (u *unitStore) ReplaceAll(ctx context.Context, units []domain.RetrievalUnit) error {
	tx, err := u.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM units"); err != nil {
		return fmt.Errorf("clearing units: %w", err)
	}
	if err := insertUnits(ctx, tx, units); err != nil {
		return err
	}
	return tx.Commit()
}

// Clear removes every unit.
func (u *unitStore) Clear(ctx context.Context) error {
	_, err := u.store.db.ExecContext(ctx, "DELETE FROM units")
	if err != nil {
		return fmt.Errorf("clearing units: %w", err)
	}
	return nil
}

func insertUnits(ctx context.Context, tx *sql.Tx, units []domain.RetrievalUnit) error {
	for _, unit := range units {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO units (id, document_name, position, sequence, text, embedding)
			VALUES (?, ?, ?, ?, ?, ?)
		`, unit.ID, unit.DocumentName, unit.Position, unit.Sequence,
			unit.Text, float32SliceToBytes(unit.Embedding))
		if err != nil {
			return fmt.Errorf("inserting unit %s: %w", unit.ID, err)
		}
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
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
