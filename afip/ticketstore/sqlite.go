package ticketstore

import (
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	_ "modernc.org/sqlite"

	"github.com/afipar/go-afip-client/afip/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
	service     TEXT NOT NULL,
	cuit        TEXT NOT NULL,
	environment TEXT NOT NULL,
	token       TEXT NOT NULL,
	sign        TEXT NOT NULL,
	expiration  TEXT NOT NULL,
	PRIMARY KEY (service, cuit, environment)
)`

// SQLite keeps tickets in an embedded database, for deployments where
// several workers share one cache through a common volume.
type SQLite struct {
	db    *sql.DB
	clock func() time.Time
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open ticket db")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init ticket db")
	}
	return &SQLite{db: db, clock: time.Now}, nil
}

func (s *SQLite) Get(key Key) (*model.AuthTicket, bool) {
	row := s.db.QueryRow(
		`SELECT token, sign, expiration FROM tickets
		 WHERE service = ? AND cuit = ? AND environment = ?`,
		key.Service, key.Cuit, key.Environment)

	var token, sign, exp string
	if err := row.Scan(&token, &sign, &exp); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.WithField("key", key.String()).Debugf("ticket db read failed: %v", err)
		}
		return nil, false
	}

	expiration, err := time.Parse(time.RFC3339, exp)
	if err != nil {
		// corrupt row, treat as absent
		return nil, false
	}

	t := &model.AuthTicket{
		Token:      token,
		Sign:       sign,
		Cuit:       key.Cuit,
		Expiration: expiration,
	}
	if !t.ValidAt(s.clock()) {
		return nil, false
	}
	return t, true
}

func (s *SQLite) Put(key Key, t *model.AuthTicket) error {
	_, err := s.db.Exec(
		`INSERT INTO tickets (service, cuit, environment, token, sign, expiration)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (service, cuit, environment) DO UPDATE
		 SET token = excluded.token, sign = excluded.sign, expiration = excluded.expiration`,
		key.Service, key.Cuit, key.Environment,
		t.Token, t.Sign, t.Expiration.Format(time.RFC3339))
	return err
}

func (s *SQLite) Evict(key Key) error {
	_, err := s.db.Exec(
		`DELETE FROM tickets WHERE service = ? AND cuit = ? AND environment = ?`,
		key.Service, key.Cuit, key.Environment)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }
