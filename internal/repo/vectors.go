package repo

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/qmd-project/qmd/internal/store"
)

// VectorHit is one KNN match joined back to its content_vectors row.
type VectorHit struct {
	Hash     string
	Seq      int
	Pos      int
	Model    string
	Distance float64
}

// Vectors manages embedded chunk vectors: the vectors_vec KNN table and
// its paired content_vectors metadata rows.
type Vectors interface {
	// EnsureVecTable creates or recreates vectors_vec sized to
	// dimensions. Callers must re-embed if the dimension changed.
	EnsureVecTable(dimensions int) error
	// Insert writes (hash, seq, pos, model, now) to content_vectors and
	// ("{hash}_{seq}", embedding) to vectors_vec.
	Insert(hash string, seq, pos int, model string, embedding []float32) error
	// HasVector reports whether (hash, seq=0, model) has been embedded.
	HasVector(hash string, model string) (bool, error)
	// SearchVectors runs a KNN query against embedding, optionally
	// restricted to hashes of active documents in collectionID, joined
	// back to content_vectors for (hash, seq, pos, model).
	SearchVectors(embedding []float32, k int, collectionID *int64) ([]VectorHit, error)
	// PurgeModel deletes every content_vectors/vectors_vec row for model.
	PurgeModel(model string) error
	// Truncate drops vectors_vec and clears content_vectors entirely,
	// used by the embedder's force-rebuild path.
	Truncate() error
	// VecTableExists reports whether vectors_vec has been created.
	VecTableExists() (bool, error)
}

type vectorsRepo struct {
	s *store.Store
}

// NewVectors returns the SQLite-backed Vectors repository.
func NewVectors(s *store.Store) Vectors {
	return &vectorsRepo{s: s}
}

func (r *vectorsRepo) EnsureVecTable(dimensions int) error {
	return r.s.EnsureVecTable(dimensions)
}

func (r *vectorsRepo) VecTableExists() (bool, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	var name string
	err := r.s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='vectors_vec'`).Scan(&name)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return false, nil
		}
		return false, fmt.Errorf("vectors exists check: %w", err)
	}
	return true, nil
}

func (r *vectorsRepo) Insert(hash string, seq, pos int, model string, embedding []float32) error {
	r.s.Lock()
	defer r.s.Unlock()

	tx, err := r.s.DB().Begin()
	if err != nil {
		return fmt.Errorf("vectors insert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(sqliteTimeLayout)
	_, err = tx.Exec(`
		INSERT INTO content_vectors (hash, seq, pos, model, embedded_at) VALUES (?, ?, ?, ?, ?)
	`, hash, seq, pos, model, now)
	if err != nil {
		return fmt.Errorf("vectors insert content_vectors: %w", err)
	}

	hashSeq := fmt.Sprintf("%s_%d", hash, seq)
	_, err = tx.Exec(`
		INSERT INTO vectors_vec (hash_seq, embedding) VALUES (?, ?)
	`, hashSeq, serializeEmbedding(embedding))
	if err != nil {
		return fmt.Errorf("vectors insert vectors_vec: %w", err)
	}

	return tx.Commit()
}

func (r *vectorsRepo) HasVector(hash, model string) (bool, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	var exists bool
	err := r.s.DB().QueryRow(`
		SELECT EXISTS(SELECT 1 FROM content_vectors WHERE hash = ? AND seq = 0 AND model = ?)
	`, hash, model).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("vectors has vector: %w", err)
	}
	return exists, nil
}

// SearchVectors requests more than k from the vec index when a
// collection filter is applied, since sqlite-vec applies the MATCH/k
// clause before any post-filtering: the teacher's own Search hits the
// same limitation and compensates with a 10x overfetch capped at 1000.
func (r *vectorsRepo) SearchVectors(embedding []float32, k int, collectionID *int64) ([]VectorHit, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	kForVec := k
	if collectionID != nil {
		kForVec = k * 10
		if kForVec > 1000 {
			kForVec = 1000
		}
	}

	query := `
		SELECT cv.hash, cv.seq, cv.pos, cv.model, v.distance
		FROM vectors_vec v
		JOIN content_vectors cv ON cv.hash || '_' || cv.seq = v.hash_seq
	`
	args := []any{}

	if collectionID != nil {
		query += `
			JOIN documents d ON d.hash = cv.hash AND d.active = 1
			WHERE d.collection_id = ? AND v.embedding MATCH ? AND k = ?
		`
		args = append(args, *collectionID, serializeEmbedding(embedding), kForVec)
	} else {
		query += `
			WHERE v.embedding MATCH ? AND k = ?
		`
		args = append(args, serializeEmbedding(embedding), kForVec)
	}

	query += " ORDER BY v.distance ASC LIMIT ?"
	args = append(args, k)

	rows, err := r.s.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("vectors search: %w", err)
	}
	defer rows.Close()

	var out []VectorHit
	for rows.Next() {
		var h VectorHit
		if err := rows.Scan(&h.Hash, &h.Seq, &h.Pos, &h.Model, &h.Distance); err != nil {
			return nil, fmt.Errorf("vectors search scan: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *vectorsRepo) PurgeModel(model string) error {
	r.s.Lock()
	defer r.s.Unlock()

	tx, err := r.s.DB().Begin()
	if err != nil {
		return fmt.Errorf("vectors purge model: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		DELETE FROM vectors_vec WHERE hash_seq IN (
			SELECT hash || '_' || seq FROM content_vectors WHERE model = ?
		)
	`, model)
	if err != nil {
		return fmt.Errorf("vectors purge model vec table: %w", err)
	}

	_, err = tx.Exec("DELETE FROM content_vectors WHERE model = ?", model)
	if err != nil {
		return fmt.Errorf("vectors purge model content_vectors: %w", err)
	}

	return tx.Commit()
}

func (r *vectorsRepo) Truncate() error {
	r.s.Lock()
	defer r.s.Unlock()

	tx, err := r.s.DB().Begin()
	if err != nil {
		return fmt.Errorf("vectors truncate: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM content_vectors"); err != nil {
		return fmt.Errorf("vectors truncate content_vectors: %w", err)
	}
	if _, err := tx.Exec("DROP TABLE IF EXISTS vectors_vec"); err != nil {
		return fmt.Errorf("vectors truncate vectors_vec: %w", err)
	}

	return tx.Commit()
}

// serializeEmbedding converts a float32 slice to little-endian bytes
// for sqlite-vec.
func serializeEmbedding(embedding []float32) []byte {
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
