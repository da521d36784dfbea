// SPDX-License-Identifier: GPL-3.0-or-later
package importservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/events"
	"github.com/CrawX/go-imap-historian/log"
	"github.com/CrawX/go-imap-historian/mail"
	"github.com/CrawX/go-imap-historian/model"

	"github.com/sirupsen/logrus"
)

type State int

const (
	StateIdle = State(iota)
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

var (
	ErrAlreadyRunning = errors.New("import service already running")
	ErrRunning        = errors.New("import service is running")
)

type MessageQueue interface {
	Enqueue(env *domain.Envelope)
	Dequeue(timeout time.Duration) *domain.Envelope
	Reset()
}

type HistoryConverter interface {
	Convert(env *domain.Envelope) ([]*domain.History, error)
}

// ImportService consumes the message queue, converts each message and saves the resulting histories.
type ImportService struct {
	queue     MessageQueue
	converter HistoryConverter
	store     domain.HistoryStore
	histories *model.HistoryList
	model     *model.EmailModel
	bus       *events.Bus

	configuration *configuration

	mu    sync.Mutex
	state State
	done  chan struct{}

	stop  atomic.Bool
	drain atomic.Bool

	l *logrus.Logger
}

func NewImportService(queue MessageQueue, converter HistoryConverter, store domain.HistoryStore, histories *model.HistoryList, emailModel *model.EmailModel, bus *events.Bus, configFunc ...ConfigFunc) (*ImportService, error) {
	config := defaultConfiguration()
	for _, f := range configFunc {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &ImportService{
		queue:         queue,
		converter:     converter,
		store:         store,
		histories:     histories,
		model:         emailModel,
		bus:           bus,
		configuration: config,
		l:             log.Logger(log.LOG_IMPORT),
	}, nil
}

func (s *ImportService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start switches the importing indicator on and starts the consumer goroutine.
func (s *ImportService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrAlreadyRunning
	}

	s.stop.Store(false)
	s.drain.Store(false)
	s.done = make(chan struct{})
	s.state = StateRunning
	s.model.StartImporting()

	go s.consume(s.done)
	s.l.WithField("dryrun", s.configuration.DryRun).Info("Import service started")
	return nil
}

// Stop returns immediately. The consumer finishes the history it is working on and exits.
func (s *ImportService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning || s.state == StateDraining {
		s.state = StateStopped
	}
	s.stop.Store(true)
}

// StopWhenDrained lets the consumer work off the queue and exit once it is empty.
func (s *ImportService) StopWhenDrained() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		s.state = StateDraining
	}
	s.drain.Store(true)
}

// IsStopped reports whether the consumer goroutine is not running.
func (s *ImportService) IsStopped() bool {
	return s.State() == StateIdle
}

// Wait blocks until the consumer goroutine exited or ctx is done.
func (s *ImportService) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset clears the queue and the history list for a new import.
func (s *ImportService) Reset() error {
	if !s.IsStopped() {
		return ErrRunning
	}
	s.queue.Reset()
	s.histories.Reset()
	return nil
}

func (s *ImportService) consume(done chan struct{}) {
	processed := 0
	for !s.stop.Load() {
		env := s.queue.Dequeue(s.configuration.PollInterval)
		if env == nil {
			if s.drain.Load() {
				break
			}
			continue
		}

		s.process(env)
		processed++
	}

	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()

	s.l.WithField("messages", processed).Info("Import service stopped")
	s.bus.Publish(events.ImportServiceStopped{})
	close(done)
}

func (s *ImportService) process(env *domain.Envelope) {
	logger := s.l.WithFields(logrus.Fields{"source": env.SourceId, "uid": env.Uid, "subject": mail.ShortSubject(env.Subject)})

	histories, err := s.convert(env)
	if err != nil {
		logger.WithField("error", err).Error("Could not convert mail")
		s.report(err, map[string]string{"source": env.SourceId})
		s.handled(env, false, false, logger)
		return
	}

	for i, h := range histories {
		if s.stop.Load() {
			logger.WithField("remaining", len(histories)-i).Warn("Stopped before all histories of the mail were imported")
			return
		}
		s.importHistory(h)
	}

	imported := s.imported(histories)
	s.handled(env, imported, imported && len(histories) > 0, logger)
}

// imported reports whether every history of a mail is in the CRM now. A mail without histories has
// nothing left to import.
func (s *ImportService) imported(histories []*domain.History) bool {
	if s.configuration.DryRun {
		return false
	}
	for _, h := range histories {
		status := h.Status()
		if status != domain.StatusAdded && status != domain.StatusExists {
			return false
		}
	}
	return true
}

// handled tells the source of env that the mail was processed and, with move, moves it to the
// processed folder.
func (s *ImportService) handled(env *domain.Envelope, imported, move bool, logger *logrus.Entry) {
	source, ok := s.model.Source(env.SourceId)
	if !ok {
		return
	}

	if move {
		if err := source.MarkImported(env); err != nil {
			logger.WithField("error", err).Warn("Could not mark mail as imported")
		}
	}
	source.MessageHandled(env, imported)
}

func (s *ImportService) convert(env *domain.Envelope) (histories []*domain.History, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("converting panicked: %v", r)
		}
	}()

	return s.converter.Convert(env)
}

// importHistory saves h unless conversion already gave it a final status and adds it to the
// history list. Histories that already existed are only listed when the envelope asks for it.
func (s *ImportService) importHistory(h *domain.History) {
	logger := s.l.WithFields(logrus.Fields{"source": h.SourceId(), "contact": h.ContactInfo().Info})

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("importing history panicked: %v", r)
			h.Fail(err)
			logger.WithField("error", err).Error("Could not import history")
			s.report(err, s.tags(h))
			s.histories.Add(h)
		}
	}()

	if h.Status() == domain.StatusNone {
		s.save(h, logger)
	}

	status := h.Status()
	logger = logger.WithField("status", status)
	if status == domain.StatusExists && h.Envelope != nil && !h.Envelope.AddExistingHistory() {
		logger.Debug("History exists, not listing it again")
		return
	}

	logger.Debug("Imported history")
	s.histories.Add(h)
}

func (s *ImportService) save(h *domain.History, logger *logrus.Entry) {
	if s.configuration.DryRun {
		logger.Info("Not saving history due to dry-run")
		return
	}

	id, existed, err := s.store.SaveHistory(h)
	if err != nil {
		h.Fail(fmt.Errorf("could not save history: %w", err))
		logger.WithField("error", err).Error("Could not save history")
		return
	}
	h.MarkPersisted(id, existed)
}

func (s *ImportService) tags(h *domain.History) map[string]string {
	return map[string]string{"source": h.SourceId(), "contact": h.ContactInfo().Info}
}

func (s *ImportService) report(err error, tags map[string]string) {
	if s.configuration.Reporter != nil {
		s.configuration.Reporter.Report(err, tags)
	}
}

// Reprocess removes the histories of contact from the history list and queues their mails again,
// typically after the contact has been added to the CRM. Histories that exist by now are not listed
// again. It returns the number of mails queued.
func (s *ImportService) Reprocess(contact domain.ContactInfo, sourceId string) int {
	removed := s.histories.RemoveContact(contact, sourceId)

	queued := map[*domain.Envelope]bool{}
	for _, h := range removed {
		env := h.Envelope
		if env == nil || queued[env] {
			continue
		}
		queued[env] = true
		env.SetAddExistingHistory(false)
		s.queue.Enqueue(env)
	}

	s.l.WithFields(logrus.Fields{"contact": contact.Info, "histories": len(removed), "mails": len(queued)}).Info("Reprocessing contact")
	return len(queued)
}
