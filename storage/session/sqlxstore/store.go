package sqlxstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS web_session (
	sid        TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	profile    JSONB NOT NULL,
	expires_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL
)`

type row struct {
	SID       string        `db:"sid"`
	Token     string        `db:"token"`
	Profile   profileColumn `db:"profile"`
	ExpiresAt sql.NullTime  `db:"expires_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// profileColumn stores a Profile as JSONB.
type profileColumn struct {
	session.Profile
}

var (
	_ driver.Valuer = profileColumn{}
	_ sql.Scanner   = (*profileColumn)(nil)
)

func (c profileColumn) Value() (driver.Value, error) {
	data, err := json.Marshal(c.Profile)
	if err != nil {
		return nil, errors.Wrap(err, "encoding profile")
	}
	return data, nil
}

func (c *profileColumn) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		c.Profile = session.Profile{}
		return nil
	default:
		return errors.Errorf("unsupported profile column type %T", src)
	}
	return errors.Wrap(json.Unmarshal(data, &c.Profile), "decoding profile")
}

// Open connects to postgres and makes sure the session table exists.
func Open(ctx context.Context, conf core.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", conf.URL)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating web_session table")
	}
	return db, nil
}

// Provider hands out postgres backed Stores, one row per browser session.
type Provider struct {
	db  *sqlx.DB
	ttl time.Duration
}

var _ session.Provider = (*Provider)(nil)

func NewProvider(db *sqlx.DB, ttl time.Duration) *Provider {
	return &Provider{db: db, ttl: ttl}
}

func (p *Provider) For(sid string) session.Store {
	return &store{db: p.db, sid: sid, ttl: p.ttl}
}

// Purge deletes expired sessions.
func (p *Provider) Purge(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM web_session WHERE expires_at IS NOT NULL AND expires_at < $1`, nowFunc().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "purging sessions")
	}
	return res.RowsAffected()
}

var nowFunc = time.Now // mockable

type store struct {
	db  *sqlx.DB
	sid string
	ttl time.Duration
}

func (s *store) Save(ctx context.Context, credential string, profile session.Profile) error {
	now := nowFunc().UTC()
	var expiresAt sql.NullTime
	if s.ttl > 0 {
		expiresAt = sql.NullTime{Time: now.Add(s.ttl), Valid: true}
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO web_session (sid, token, profile, expires_at, updated_at)
		VALUES (:sid, :token, :profile, :expires_at, :updated_at)
		ON CONFLICT (sid) DO UPDATE
		SET token = EXCLUDED.token, profile = EXCLUDED.profile,
		    expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`,
		row{
			SID:       s.sid,
			Token:     credential,
			Profile:   profileColumn{profile},
			ExpiresAt: expiresAt,
			UpdatedAt: now,
		},
	)
	return errors.Wrap(err, "saving session")
}

func (s *store) Load(ctx context.Context) (string, *session.Profile, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `
		SELECT sid, token, profile, expires_at, updated_at FROM web_session
		WHERE sid = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		s.sid, nowFunc().UTC(),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil, nil
		}
		return "", nil, errors.Wrap(err, "loading session")
	}
	profile := r.Profile.Profile
	return r.Token, &profile, nil
}

func (s *store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM web_session WHERE sid = $1`, s.sid)
	return errors.Wrap(err, "clearing session")
}
