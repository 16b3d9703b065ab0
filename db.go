package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var (
	errNoMatches   = errors.New("no conversations matched the given input")
	errManyMatches = errors.New("multiple conversations matched the given input")
)

func openDB(dsn string) (*convoDB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping db: %w", err)
	}
	if _, err := db.Exec(`
		create table if not exists conversations(
			id string not null primary key,
			title string not null,
			updated_at datetime not null default current_timestamp
		);
	`); err != nil {
		return nil, fmt.Errorf("could not migrate db: %w", err)
	}
	return &convoDB{db: db}, nil
}

// convoDB is the conversation index: it maps conversation IDs to titles and
// timestamps, while the transcripts themselves live in the cache.
type convoDB struct {
	db *sqlx.DB
}

// Close closes the underlying db.
func (c *convoDB) Close() error {
	return c.db.Close() //nolint:wrapcheck
}

type dbConvo struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (c *convoDB) Save(id, title string) error {
	if id == "" || title == "" {
		return fmt.Errorf("could not save conversation: missing id or title")
	}
	if _, err := c.db.Exec(`
		update conversations
		set title = $2, updated_at = current_timestamp
		where id = $1
	`, id, title); err != nil {
		return fmt.Errorf("could not save conversation: %w", err)
	}
	if _, err := c.db.Exec(`
		insert or ignore into conversations (id, title)
		values ($1, $2)
	`, id, title); err != nil {
		return fmt.Errorf("could not save conversation: %w", err)
	}
	return nil
}

func (c *convoDB) Delete(id string) error {
	if _, err := c.db.Exec(`
		delete from conversations
		where id = $1
	`, id); err != nil {
		return fmt.Errorf("could not delete conversation: %w", err)
	}
	return nil
}

func (c *convoDB) FindHEAD() (*dbConvo, error) {
	var convo dbConvo
	if err := c.db.Get(&convo, `
		select * from conversations
		order by updated_at desc
		limit 1
	`); err != nil {
		return nil, fmt.Errorf("could not find last conversation: %w", err)
	}
	return &convo, nil
}

// Find resolves user input to a conversation: an ID prefix of at least
// convIDMinLen hex chars, or an exact title.
func (c *convoDB) Find(in string) (*dbConvo, error) {
	var convos []dbConvo
	var err error
	if len(in) < convIDMinLen {
		err = c.db.Select(&convos, `select * from conversations where title = $1`, in)
	} else {
		err = c.db.Select(&convos, `
			select * from conversations
			where id like $1 or title = $2
		`, in+"%", in)
	}
	if err != nil {
		return nil, fmt.Errorf("could not find conversation: %w", err)
	}
	if len(convos) > 1 {
		ids := make([]string, 0, len(convos))
		for _, convo := range convos {
			ids = append(ids, convo.ID[:convIDShort])
		}
		return nil, fmt.Errorf("%w %q: %s", errManyMatches, in, strings.Join(ids, ", "))
	}
	if len(convos) == 1 {
		return &convos[0], nil
	}
	return nil, errNoMatches
}

func (c *convoDB) List() ([]dbConvo, error) {
	var convos []dbConvo
	if err := c.db.Select(&convos, `
		select * from conversations
		order by updated_at desc
	`); err != nil {
		return convos, fmt.Errorf("could not list conversations: %w", err)
	}
	return convos, nil
}
