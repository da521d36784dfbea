// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

const (
	DriverSqlite   = "sqlite3"
	DriverPostgres = "postgres"
)

//go:embed sql
var migrationFiles embed.FS

var ErrContactNotMatched = errors.New("history has no matched contact")

// Persistence is the CRM datastore. All access goes through a single connection.
type Persistence struct {
	db        *sqlx.DB
	importRun string
	l         *logrus.Logger
}

func NewPersistence(driver, datasource string) (*Persistence, error) {
	sqlDriver, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(sqlDriver, datasource)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	l := log.Logger(log.LOG_PERSISTENCE)
	l.WithFields(logrus.Fields{"driver": driver}).Info("Connected")

	if driver == DriverSqlite {
		_, err = db.Exec(`PRAGMA journal_mode=WAL`)
		if err != nil {
			return nil, fmt.Errorf("could not set journal mode: %w", err)
		}
		_, err = db.Exec(`PRAGMA synchronous=normal`)
		if err != nil {
			return nil, fmt.Errorf("could not set synchronous mode: %w", err)
		}
		_, err = db.Exec(`PRAGMA foreign_keys=on`)
		if err != nil {
			return nil, fmt.Errorf("could not enable foreign keys: %w", err)
		}
	}

	migrationSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "sql/" + driver,
	}

	appliedMigrations, err := migrate.Exec(db.DB, driver, migrationSource, migrate.Up)
	if err != nil {
		return nil, fmt.Errorf("could not migrate to newest version: %w", err)
	}

	l.WithField("migrations", appliedMigrations).Debug("Executed migrations")

	return &Persistence{
		db:        db,
		importRun: uuid.NewString(),
		l:         l,
	}, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverSqlite:
		return "sqlite3", nil
	case DriverPostgres:
		return "pgx", nil
	}
	return "", fmt.Errorf("unknown database driver %q", driver)
}

// ImportRun identifies the histories saved through this connection.
func (p *Persistence) ImportRun() string {
	return p.importRun
}

func (p *Persistence) Close() error {
	err := p.db.Close()
	if err != nil {
		return fmt.Errorf("could not close db: %w", err)
	}
	p.l.Info("Disconnected")
	return nil
}

func (p *Persistence) FindContactsByEmail(email string) ([]*domain.Contact, error) {
	dbContacts := []struct {
		Id    int64
		Name  string
		Email string
	}{}

	err := p.db.Select(
		&dbContacts,
		p.db.Rebind(`SELECT id, name, email FROM contacts WHERE lower(email) = ?`),
		strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	contacts := []*domain.Contact{}
	for _, c := range dbContacts {
		contacts = append(contacts, &domain.Contact{Id: c.Id, Name: c.Name, Email: c.Email})
	}

	return contacts, nil
}

func (p *Persistence) AllContacts() ([]*domain.Contact, error) {
	contacts := []*domain.Contact{}
	err := p.db.Select(&contacts, `SELECT id, name, email FROM contacts ORDER BY name, email`)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}
	return contacts, nil
}

func (p *Persistence) AddContact(name, email string) (int64, error) {
	var id int64
	err := p.db.Get(
		&id,
		p.db.Rebind(`INSERT INTO contacts (name, email) VALUES (?, ?) RETURNING id`),
		name,
		strings.TrimSpace(email),
	)
	if err != nil {
		return 0, fmt.Errorf("could not save contact: %w", err)
	}

	p.l.WithFields(logrus.Fields{"id": id, "email": email}).Info("Persisted contact")
	return id, nil
}

// SaveHistory inserts h in its own transaction unless a history of the same message for the same
// contact already exists. It returns the id and whether the history existed.
func (p *Persistence) SaveHistory(h *domain.History) (int64, bool, error) {
	contact := h.ContactInfo()
	if contact.Id == nil {
		return 0, false, ErrContactNotMatched
	}
	key := h.Key()

	tx, err := p.db.BeginTxx(context.TODO(), nil)
	if err != nil {
		return 0, false, fmt.Errorf("could not start transaction: %w", err)
	}

	var id int64
	err = tx.Get(
		&id,
		tx.Rebind(`SELECT id FROM histories WHERE mailidhash = ? AND contactemail = ?`),
		key.MailIdHash,
		key.Contact,
	)
	if err == nil {
		return id, true, txEnd(tx, nil)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, txEnd(tx, fmt.Errorf("could not query db: %w", err))
	}

	err = tx.Get(
		&id,
		tx.Rebind(`INSERT INTO histories
			(contactid, contactemail, tasktype, result, description, notes, date, loggedby, challenge, thank, massmailing, sourceid, mailidhash, importrun)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		*contact.Id,
		key.Contact,
		h.TaskType,
		string(h.Result),
		h.Description,
		h.Notes,
		h.Date.UTC(),
		h.LoggedBy,
		h.Challenge,
		h.Thank,
		h.MassMailing,
		h.SourceId(),
		key.MailIdHash,
		p.importRun,
	)
	if err != nil {
		return 0, false, txEnd(tx, fmt.Errorf("could not save history: %w", err))
	}

	err = txEnd(tx, nil)
	if err != nil {
		return 0, false, err
	}

	p.l.WithFields(logrus.Fields{"id": id, "contact": key.Contact}).Debug("Persisted history")
	return id, false, nil
}

func (p *Persistence) RecentHistories(limit int) ([]*domain.SavedHistory, error) {
	histories := []*domain.SavedHistory{}
	err := p.db.Select(
		&histories,
		p.db.Rebind(`SELECT id, contactid, contactemail, result, description, date, loggedby, thank, sourceid, importrun
			FROM histories ORDER BY id DESC LIMIT ?`),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}
	return histories, nil
}

// FolderState returns nil when the folder has not been imported before.
func (p *Persistence) FolderState(sourceId, folder string) (*domain.FolderState, error) {
	dbFolder := struct {
		SourceId    string
		Name        string
		UidValidity uint32
		LastUid     uint32
	}{}

	err := p.db.Get(
		&dbFolder,
		p.db.Rebind(`SELECT sourceid, name, uidvalidity, lastuid FROM folders WHERE sourceid = ? AND name = ?`),
		sourceId,
		folder,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	return &domain.FolderState{
		SourceId:    dbFolder.SourceId,
		Folder:      dbFolder.Name,
		UidValidity: dbFolder.UidValidity,
		LastUid:     dbFolder.LastUid,
	}, nil
}

func (p *Persistence) SaveFolderState(state domain.FolderState) error {
	_, err := p.db.Exec(
		p.db.Rebind(`INSERT INTO folders (sourceid, name, uidvalidity, lastuid) VALUES (?, ?, ?, ?)
			ON CONFLICT (sourceid, name) DO UPDATE SET uidvalidity = excluded.uidvalidity, lastuid = excluded.lastuid`),
		state.SourceId,
		state.Folder,
		state.UidValidity,
		state.LastUid,
	)
	if err != nil {
		return fmt.Errorf("could not save folder: %w", err)
	}

	p.l.WithFields(logrus.Fields{"source": state.SourceId, "folder": state.Folder, "uidvalidity": state.UidValidity, "lastuid": state.LastUid}).Info("Persisted folder")
	return nil
}

func txEnd(tx *sqlx.Tx, err error) error {
	if err == nil {
		err = tx.Commit()
		if err != nil {
			return fmt.Errorf("could not commit tx: %w", err)
		}
	} else {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			errStr := err.Error()
			return fmt.Errorf("%s, could not rollback tx: %w", errStr, rollbackErr)
		} else {
			return err
		}
	}

	return nil
}
