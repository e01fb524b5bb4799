package history

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS hand_records (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	hand_index    INTEGER NOT NULL,
	action        TEXT NOT NULL,
	player_cards  TEXT[] NOT NULL,
	player_total  INTEGER NOT NULL,
	soft          BOOLEAN NOT NULL,
	upcard        TEXT NOT NULL,
	running_count INTEGER NOT NULL,
	true_count    DOUBLE PRECISION NOT NULL,
	bet           DOUBLE PRECISION NOT NULL,
	camouflage    DOUBLE PRECISION NOT NULL,
	insurance     BOOLEAN NOT NULL,
	forced        BOOLEAN NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS hand_records_session ON hand_records (session_id, created_at);

CREATE TABLE IF NOT EXISTS shuffle_records (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	indicator     TEXT NOT NULL,
	cards_seen    INTEGER NOT NULL,
	penetration   DOUBLE PRECISION NOT NULL,
	running_count INTEGER NOT NULL,
	reset         BOOLEAN NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS shuffle_records_session ON shuffle_records (session_id, created_at);
`

type pgRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) Repo {
	return &pgRepo{db: db}
}

// EnsureSchema 建表，可重复执行
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (r *pgRepo) SaveHand(ctx context.Context, rec HandRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hand_records (id, session_id, hand_index, action, player_cards, player_total, soft,
			upcard, running_count, true_count, bet, camouflage, insurance, forced, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rec.ID, rec.SessionID, rec.HandIndex, rec.Action, pq.Array(rec.PlayerCards), rec.PlayerTotal, rec.Soft,
		rec.Upcard, rec.RunningCount, rec.TrueCount, rec.Bet, rec.Camouflage, rec.Insurance, rec.Forced, rec.CreatedAt,
	)
	return err
}

func (r *pgRepo) SaveShuffle(ctx context.Context, rec ShuffleRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shuffle_records (id, session_id, indicator, cards_seen, penetration, running_count, reset, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.SessionID, rec.Indicator, rec.CardsSeen, rec.Penetration, rec.RunningCount, rec.Reset, rec.CreatedAt,
	)
	return err
}

func (r *pgRepo) Hands(ctx context.Context, session string, limit int) ([]HandRecord, error) {
	// LIMIT NULL 等价于不限制
	n := sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
	rows, err := r.db.QueryContext(ctx, `
		SELECT * FROM (
			SELECT id, session_id, hand_index, action, player_cards, player_total, soft, upcard,
				running_count, true_count, bet, camouflage, insurance, forced, created_at
			FROM hand_records WHERE session_id = $1
			ORDER BY created_at DESC, id DESC LIMIT $2
		) recent ORDER BY created_at, id`, session, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HandRecord
	for rows.Next() {
		var h HandRecord
		if err := rows.Scan(&h.ID, &h.SessionID, &h.HandIndex, &h.Action, pq.Array(&h.PlayerCards), &h.PlayerTotal,
			&h.Soft, &h.Upcard, &h.RunningCount, &h.TrueCount, &h.Bet, &h.Camouflage, &h.Insurance, &h.Forced,
			&h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *pgRepo) Shuffles(ctx context.Context, session string) ([]ShuffleRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, indicator, cards_seen, penetration, running_count, reset, created_at
		FROM shuffle_records WHERE session_id = $1 ORDER BY created_at, id`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShuffleRecord
	for rows.Next() {
		var s ShuffleRecord
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Indicator, &s.CardsSeen, &s.Penetration, &s.RunningCount,
			&s.Reset, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *pgRepo) DeleteSession(ctx context.Context, session string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM hand_records WHERE session_id = $1`, session); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shuffle_records WHERE session_id = $1`, session); err != nil {
		return err
	}
	return tx.Commit()
}
