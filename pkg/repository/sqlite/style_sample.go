package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

type styleSampleRepository struct {
	db *sql.DB
}

func newStyleSampleRepository(db *sql.DB) *styleSampleRepository {
	return &styleSampleRepository{db: db}
}

func (r *styleSampleRepository) Append(ctx context.Context, userID types.UserID, samples []*model.StyleSample) ([]*model.StyleSample, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction", goerr.V("userID", userID))
	}
	defer func() { _ = tx.Rollback() }()

	var nextSeq int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq) + 1, 0) FROM style_samples WHERE user_id = ?",
		string(userID),
	).Scan(&nextSeq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read next sequence", goerr.V("userID", userID))
	}

	now := time.Now().UTC()
	created := make([]*model.StyleSample, 0, len(samples))
	for i, s := range samples {
		embedding, err := json.Marshal(s.Embedding)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode embedding", goerr.V("userID", userID))
		}

		c := &model.StyleSample{
			UserID:    userID,
			Text:      s.Text,
			Embedding: s.Embedding,
			Seq:       nextSeq + i,
			CreatedAt: now,
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO style_samples (user_id, seq, text, embedding, created_at) VALUES (?, ?, ?, ?, ?)",
			string(userID), c.Seq, c.Text, string(embedding), c.CreatedAt,
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to insert style sample", goerr.V("userID", userID))
		}
		created = append(created, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit style sample append", goerr.V("userID", userID))
	}

	return created, nil
}

func (r *styleSampleRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.StyleSample, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id, seq, text, embedding, created_at FROM style_samples WHERE user_id = ? ORDER BY seq",
		string(userID),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query style samples", goerr.V("userID", userID))
	}
	defer func() { _ = rows.Close() }()

	samples := make([]*model.StyleSample, 0)
	for rows.Next() {
		var s model.StyleSample
		var uid, embedding string
		if err := rows.Scan(&uid, &s.Seq, &s.Text, &embedding, &s.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan style sample", goerr.V("userID", userID))
		}
		s.UserID = types.UserID(uid)
		if err := json.Unmarshal([]byte(embedding), &s.Embedding); err != nil {
			return nil, goerr.Wrap(err, "failed to decode embedding", goerr.V("userID", userID))
		}
		samples = append(samples, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate style samples", goerr.V("userID", userID))
	}

	return samples, nil
}
