// SPDX-License-Identifier: GPL-3.0-or-later
package mailsource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/log"
	"github.com/CrawX/go-imap-historian/mail"

	"github.com/sirupsen/logrus"
)

type State int

const (
	StateDisconnected = State(iota)
	StateConnecting
	StateConnected
	StateFetching
	StateCompleted
	StateStopped
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFetching:
		return "fetching"
	case StateCompleted:
		return "completed"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	}
	return "unknown"
}

var ErrAlreadyImporting = errors.New("import already running")

type pendingMail struct {
	mailIdHash string
	// seen is set once the message was marked in the seen filter.
	seen bool
}

type Enqueuer interface {
	Enqueue(env *domain.Envelope)
}

// CompletionNotifier is told when a source finished fetching.
type CompletionNotifier interface {
	SourceCompleted(sourceId string)
}

// MailSource traverses the messages of one mailbox folder once and feeds them into the queue from
// its own goroutine.
type MailSource struct {
	settings *domain.SourceSettings
	account  Account
	dial     domain.ImapDialer
	queue    Enqueuer
	notifier CompletionNotifier

	configuration *configuration

	mu         sync.Mutex
	state      State
	conn       domain.ImapConnector
	password   string
	folderOpen bool
	uids       []uint32
	cursor     int
	validity   uint32
	lastUid    uint32
	moved      map[uint32]bool
	// pending holds the messages taken from the folder that the import service has not handled yet.
	pending map[uint32]*pendingMail
	done    chan struct{}

	stop           atomic.Bool
	importComplete atomic.Bool

	l *logrus.Logger
}

func NewMailSource(settings *domain.SourceSettings, account Account, dial domain.ImapDialer, queue Enqueuer, notifier CompletionNotifier, configFunc ...ConfigFunc) (*MailSource, error) {
	config := &configuration{}
	for _, f := range configFunc {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &MailSource{
		settings:      settings,
		account:       account.Defaults(),
		dial:          dial,
		queue:         queue,
		notifier:      notifier,
		configuration: config,
		moved:         map[uint32]bool{},
		pending:       map[uint32]*pendingMail{},
		l:             log.Logger(log.LOG_SOURCE),
	}, nil
}

func (s *MailSource) Id() string {
	return s.settings.Id
}

func (s *MailSource) Settings() *domain.SourceSettings {
	return s.settings
}

func (s *MailSource) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *MailSource) logger() *logrus.Entry {
	return s.l.WithFields(logrus.Fields{"source": s.settings.Nickname, "folder": s.account.Folder})
}

// Connect opens the session and, with selectFolder, the folder to traverse. A password that was
// prompted for or read from the keyring is forgotten when the connection fails.
func (s *MailSource) Connect(selectFolder bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		if selectFolder && !s.folderOpen {
			if err := s.openFolder(); err != nil {
				s.state = StateError
				return &domain.ConnectionError{Source: s.settings.Nickname, Err: err}
			}
		}
		return nil
	}

	s.state = StateConnecting
	password, interactive, err := s.lookupPassword()
	if err != nil {
		s.state = StateError
		return &domain.ConnectionError{Source: s.settings.Nickname, Err: err}
	}

	conn, err := s.dial(s.account.Host, s.account.User, password)
	if err != nil {
		return s.connectFailed(interactive, fmt.Errorf("could not log in to %s: %w", s.account.Host, err))
	}
	s.conn = conn

	if selectFolder {
		if err := s.openFolder(); err != nil {
			if cerr := conn.Close(); cerr != nil {
				s.logger().WithField("error", cerr).Warn("Could not close connection")
			}
			s.conn = nil
			return s.connectFailed(interactive, err)
		}
	}

	if interactive && s.configuration.Credentials != nil {
		if err := s.configuration.Credentials.SetPassword(s.settings.Id, password); err != nil {
			s.logger().WithField("error", err).Warn("Could not store password")
		}
	}

	s.state = StateConnected
	s.logger().WithFields(logrus.Fields{"host": s.account.Host, "messages": len(s.uids)}).Info("Connected")
	return nil
}

func (s *MailSource) connectFailed(interactive bool, err error) error {
	s.state = StateError
	if interactive {
		s.password = ""
		if s.configuration.Credentials != nil {
			if ferr := s.configuration.Credentials.ForgetPassword(s.settings.Id); ferr != nil {
				s.logger().WithField("error", ferr).Warn("Could not forget stored password")
			}
		}
	}

	s.logger().WithField("error", err).Error("Could not connect")
	return &domain.ConnectionError{Source: s.settings.Nickname, Err: err}
}

// lookupPassword returns the configured password, then a password remembered in this session or
// stored in the keyring, and finally prompts for one. interactive is false only for a configured password.
func (s *MailSource) lookupPassword() (string, bool, error) {
	if len(s.account.Password) > 0 {
		return s.account.Password, false, nil
	}
	if len(s.password) > 0 {
		return s.password, true, nil
	}

	if s.configuration.Credentials != nil {
		stored, err := s.configuration.Credentials.Password(s.settings.Id)
		if err != nil {
			s.logger().WithField("error", err).Warn("Could not read stored password")
		} else if len(stored) > 0 {
			s.password = stored
			return stored, true, nil
		}
	}

	if s.configuration.Prompter == nil {
		return "", false, fmt.Errorf("no password available for %s", s.account.User)
	}

	prompted, err := s.configuration.Prompter.PromptPassword(s.settings.Id, s.account.User)
	if err != nil {
		return "", false, fmt.Errorf("could not prompt for password: %w", err)
	}
	s.password = prompted
	return prompted, true, nil
}

func (s *MailSource) openFolder() error {
	validity, err := s.conn.Select(s.account.Folder)
	if err != nil {
		return fmt.Errorf("could not select folder %s: %w", s.account.Folder, err)
	}

	uids, err := s.conn.ListUids()
	if err != nil {
		return fmt.Errorf("could not list mails in %s: %w", s.account.Folder, err)
	}

	if s.configuration.FolderStates != nil {
		state, err := s.configuration.FolderStates.FolderState(s.settings.Id, s.account.Folder)
		if err != nil {
			return fmt.Errorf("could not load folder state: %w", err)
		}
		uids = newUids(uids, state, validity)
	}

	s.uids = uids
	s.cursor = 0
	s.validity = validity
	s.lastUid = 0
	s.pending = map[uint32]*pendingMail{}
	s.folderOpen = true
	return nil
}

// newUids drops the uids up to the last imported one while the folder's uidvalidity is unchanged.
func newUids(uids []uint32, state *domain.FolderState, validity uint32) []uint32 {
	if state == nil || state.UidValidity != validity {
		return uids
	}

	result := []uint32{}
	for _, uid := range uids {
		if uid > state.LastUid {
			result = append(result, uid)
		}
	}
	return result
}

func (s *MailSource) HasNextMessage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folderOpen && s.cursor < len(s.uids)
}

// GetNextMessage fetches the message at the cursor and advances it, also when fetching fails.
// Calling it without an open folder or past the last message is an error.
func (s *MailSource) GetNextMessage() (*domain.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.folderOpen || s.conn == nil {
		return nil, domain.ErrFolderNotOpen
	}
	if s.cursor >= len(s.uids) {
		return nil, domain.ErrNoMoreMessages
	}

	uid := s.uids[s.cursor]
	s.cursor++
	if uid > s.lastUid {
		s.lastUid = uid
	}

	raw, err := s.conn.FetchMail(uid)
	if err != nil {
		return nil, fmt.Errorf("could not fetch mail %d: %w", uid, err)
	}

	msg, err := mail.ParseMessage(raw.RawMail)
	if err != nil {
		return nil, fmt.Errorf("could not parse mail %d: %w", uid, err)
	}

	return &domain.Envelope{
		SourceId:   s.settings.Id,
		Folder:     s.account.Folder,
		Uid:        uid,
		MailIdHash: msg.MailIdHash,
		From:       msg.From,
		To:         msg.To,
		Subject:    msg.Subject,
		Body:       msg.Body,
		Date:       msg.Date,
	}, nil
}

// GetMessageCount returns the number of messages to traverse in the open folder.
func (s *MailSource) GetMessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uids)
}

// StartImportService starts the fetch goroutine. The source has to be connected with an open folder.
func (s *MailSource) StartImportService(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFetching {
		return ErrAlreadyImporting
	}
	if !s.folderOpen {
		return domain.ErrFolderNotOpen
	}

	s.stop.Store(false)
	s.importComplete.Store(false)
	s.done = make(chan struct{})
	s.state = StateFetching

	go s.fetch(ctx, s.done)
	return nil
}

// StopImportService asks the fetch goroutine to stop after the current message.
func (s *MailSource) StopImportService() {
	s.stop.Store(true)
}

func (s *MailSource) stopping(ctx context.Context) bool {
	return s.stop.Load() || ctx.Err() != nil
}

func (s *MailSource) fetch(ctx context.Context, done chan struct{}) {
	logger := s.logger()
	logger.WithField("messages", s.GetMessageCount()).Info("Fetching mails")

	enqueued, failed := 0, 0
	for s.HasNextMessage() && !s.stopping(ctx) {
		ok, err := s.fetchOne(ctx)
		if err != nil {
			failed++
			logger.WithField("error", err).Warn("Could not fetch mail, skipping")
			continue
		}
		if ok {
			enqueued++
		}
	}

	stopped := s.stopping(ctx)
	s.finish(stopped)
	logger.WithFields(logrus.Fields{"enqueued": enqueued, "failed": failed, "stopped": stopped}).Info("Fetching done")
	close(done)
}

// fetchOne enqueues the next message and reports whether it did. A message dropped because of a stop
// stays pending, so the folder state does not pass it.
func (s *MailSource) fetchOne(ctx context.Context) (enqueued bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetching panicked: %v", r)
		}
	}()

	if s.configuration.Limiter != nil {
		if err := s.configuration.Limiter.Wait(ctx); err != nil {
			return false, nil
		}
	}

	env, err := s.GetNextMessage()
	if err != nil {
		return false, err
	}
	pending := s.track(env)

	if s.stopping(ctx) {
		return false, nil
	}

	if s.configuration.Seen != nil {
		isNew, err := s.configuration.Seen.IsNew(ctx, env.MailIdHash)
		if err != nil {
			s.logger().WithField("error", err).Warn("Could not check seen filter")
		} else if !isNew {
			s.logger().WithFields(logrus.Fields{"uid": env.Uid, "subject": mail.ShortSubject(env.Subject)}).Debug("Mail seen before, skipping")
			s.untrack(env.Uid)
			return false, nil
		} else {
			s.mu.Lock()
			pending.seen = true
			s.mu.Unlock()
		}
	}

	if s.stopping(ctx) {
		s.forgetSeen(context.Background(), pending)
		return false, nil
	}

	s.queue.Enqueue(env)
	return true, nil
}

func (s *MailSource) track(env *domain.Envelope) *pendingMail {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &pendingMail{mailIdHash: env.MailIdHash}
	s.pending[env.Uid] = p
	return p
}

func (s *MailSource) untrack(uid uint32) *pendingMail {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pending[uid]
	delete(s.pending, uid)
	return p
}

// forgetSeen removes the seen mark of a message that was not imported, so the next import fetches it
// again.
func (s *MailSource) forgetSeen(ctx context.Context, p *pendingMail) {
	if s.configuration.Seen == nil || p == nil {
		return
	}

	s.mu.Lock()
	seen := p.seen
	p.seen = false
	s.mu.Unlock()
	if !seen {
		return
	}

	if err := s.configuration.Seen.Forget(ctx, p.mailIdHash); err != nil {
		s.logger().WithField("error", err).Warn("Could not forget seen mail")
	}
}

// MessageHandled records that the import service processed the message of env. A message that was
// not imported is forgotten by the seen filter.
func (s *MailSource) MessageHandled(env *domain.Envelope, imported bool) {
	p := s.untrack(env.Uid)
	if imported || p == nil {
		return
	}
	s.forgetSeen(context.Background(), p)
}

// folderState returns the state to record for the folder: the highest traversed uid below every
// message still pending.
func (s *MailSource) folderState() domain.FolderState {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastUid := s.lastUid
	for uid := range s.pending {
		if uid-1 < lastUid {
			lastUid = uid - 1
		}
	}
	return domain.FolderState{SourceId: s.settings.Id, Folder: s.account.Folder, UidValidity: s.validity, LastUid: lastUid}
}

func (s *MailSource) saveFolderState() {
	if s.configuration.FolderStates == nil {
		return
	}

	state := s.folderState()
	if state.LastUid == 0 {
		return
	}
	if s.configuration.DryRun {
		s.logger().WithField("lastUid", state.LastUid).Info("Not saving folder state due to dry-run")
		return
	}

	if err := s.configuration.FolderStates.SaveFolderState(state); err != nil {
		s.logger().WithField("error", err).Error("Could not save folder state")
	}
}

// Checkpoint records the folder state up to the last message the import service handled and forgets
// the seen marks of messages it never got to. It is called once the import service stopped.
func (s *MailSource) Checkpoint(ctx context.Context) {
	s.saveFolderState()

	s.mu.Lock()
	dropped := make([]*pendingMail, 0, len(s.pending))
	for _, p := range s.pending {
		dropped = append(dropped, p)
	}
	s.mu.Unlock()

	for _, p := range dropped {
		s.forgetSeen(ctx, p)
	}
	if len(dropped) > 0 {
		s.logger().WithField("messages", len(dropped)).Warn("Messages were not imported and are fetched again by the next import")
	}
}

// finish marks the source import-complete, records the folder state and disconnects before telling
// the notifier. Sources with a processed folder stay connected to move imported messages.
func (s *MailSource) finish(stopped bool) {
	s.importComplete.Store(true)

	s.mu.Lock()
	if stopped {
		s.state = StateStopped
	} else {
		s.state = StateCompleted
	}
	s.mu.Unlock()

	s.saveFolderState()

	if len(s.settings.ProcessedFolder) == 0 {
		if err := s.Disconnect(); err != nil {
			s.logger().WithField("error", err).Warn("Could not disconnect")
		}
	}

	if s.notifier != nil {
		s.notifier.SourceCompleted(s.settings.Id)
	}
}

func (s *MailSource) IsImportComplete() bool {
	return s.importComplete.Load()
}

// Done is closed when the running fetch goroutine finished. It is nil before the first start.
func (s *MailSource) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// MarkImported moves the message of env to the processed folder, if one is configured. Each message
// is moved once, no matter how many histories it produced.
func (s *MailSource) MarkImported(env *domain.Envelope) error {
	folder := s.settings.ProcessedFolder
	if len(folder) == 0 || env.Folder != s.account.Folder {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.moved[env.Uid] {
		return nil
	}
	if s.conn == nil {
		return fmt.Errorf("could not move mail %d: %w", env.Uid, domain.ErrFolderNotOpen)
	}

	notReady, err := s.conn.MoveReady()
	if err != nil {
		return fmt.Errorf("could not check for move readiness: %w", err)
	}
	if notReady != nil {
		return fmt.Errorf("folder %s is not ready for moving: %w", s.account.Folder, notReady)
	}

	err = s.conn.Move([]uint32{env.Uid}, folder)
	if err != nil {
		return fmt.Errorf("could not move mail %d to %s: %w", env.Uid, folder, err)
	}
	s.moved[env.Uid] = true
	s.logger().WithFields(logrus.Fields{"uid": env.Uid, "destination": folder}).Debug("Moved imported mail")
	return nil
}

func (s *MailSource) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	s.folderOpen = false
	s.uids = nil
	s.cursor = 0
	s.moved = map[uint32]bool{}
	if s.state != StateError {
		s.state = StateDisconnected
	}
	if err != nil {
		return fmt.Errorf("could not close connection: %w", err)
	}
	return nil
}
