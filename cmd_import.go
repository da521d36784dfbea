// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CrawX/go-imap-historian/config"
	"github.com/CrawX/go-imap-historian/converter"
	"github.com/CrawX/go-imap-historian/credential"
	"github.com/CrawX/go-imap-historian/dedup"
	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/events"
	"github.com/CrawX/go-imap-historian/imapconnection"
	"github.com/CrawX/go-imap-historian/importservice"
	"github.com/CrawX/go-imap-historian/log"
	"github.com/CrawX/go-imap-historian/mail"
	"github.com/CrawX/go-imap-historian/mailsource"
	"github.com/CrawX/go-imap-historian/matcher"
	"github.com/CrawX/go-imap-historian/model"
	"github.com/CrawX/go-imap-historian/persistence"
	"github.com/CrawX/go-imap-historian/queue"
	"github.com/CrawX/go-imap-historian/reporter"

	"github.com/badoux/checkmail"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	release            = "go-imap-historian"
	sourceStopTimeout  = 30 * time.Second
	eventSubscriberBuf = 256
)

var addContacts bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import mails from all enabled sources, once or on the configured schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := openDatabase(conf)
		if err != nil {
			return err
		}
		defer p.Close()

		ctx := cmd.Context()
		pl, err := newPipeline(ctx, conf, p, addContacts)
		if err != nil {
			return err
		}
		defer pl.close()

		if len(strings.TrimSpace(conf.Schedule)) == 0 {
			return pl.run(ctx)
		}
		return pl.schedule(ctx, conf.Schedule)
	},
}

func init() {
	importCmd.Flags().BoolVar(&addContacts, "add-contacts", false, "add unknown contacts to the CRM and import their mails again")
}

type contactAdder interface {
	AddContact(name, email string) (int64, error)
}

// pipeline wires the sources, the queue and the import service of one configuration.
type pipeline struct {
	bus       *events.Bus
	model     *model.EmailModel
	histories *model.HistoryList
	service   *importservice.ImportService
	sources   []*mailsource.MailSource
	reporter  domain.ErrorReporter
	seen      *dedup.Filter

	// contacts is set when unknown contacts are added to the CRM after an import.
	contacts contactAdder
	dryRun   bool

	// serialConnect is set when a source may prompt for its password.
	serialConnect bool

	stopEvents func()
	l          *logrus.Logger
}

func newPipeline(ctx context.Context, conf *config.Config, p *persistence.Persistence, addContacts bool) (*pipeline, error) {
	pl := &pipeline{
		bus:    events.NewBus(),
		dryRun: conf.DryRun,
		l:      log.Logger(log.LOG_MAIN),
	}
	if addContacts {
		pl.contacts = p
	}
	pl.stopEvents = logEvents(pl.bus, pl.l)

	q := queue.NewMessageQueue(pl.bus)
	pl.model = model.NewEmailModel(pl.bus)
	pl.histories = model.NewHistoryList(pl.bus)

	pl.reporter = reporter.NewLogReporter()
	if len(conf.SentryDsn) > 0 {
		sentryReporter, err := reporter.NewSentryReporter(conf.SentryDsn, release)
		if err != nil {
			return nil, err
		}
		pl.reporter = sentryReporter
	}

	converterConfigs := []converter.ConfigFunc{converter.GlobalIgnore(conf.GlobalIgnore)}
	if conf.AutoThank {
		converterConfigs = append(converterConfigs, converter.AutoThank(conf.AutoThankSubjects))
	}
	conv, err := converter.NewConverter(pl.model, matcher.NewContactMatcher(p), converterConfigs...)
	if err != nil {
		return nil, fmt.Errorf("could not create converter: %w", err)
	}

	serviceConfigs := []importservice.ConfigFunc{importservice.ReportErrors(pl.reporter)}
	if conf.DryRun {
		serviceConfigs = append(serviceConfigs, importservice.DryRun())
	}
	pl.service, err = importservice.NewImportService(q, conv, p, pl.histories, pl.model, pl.bus, serviceConfigs...)
	if err != nil {
		return nil, fmt.Errorf("could not create import service: %w", err)
	}

	var credentials domain.CredentialStore
	keyringStore, err := credential.NewKeyringStore()
	if err != nil {
		pl.l.WithField("error", err).Warn("Keyring not available, passwords will not be stored")
	} else {
		credentials = keyringStore
	}

	if len(conf.RedisUrl) > 0 {
		pl.seen, err = dedup.Connect(ctx, conf.RedisUrl)
		if err != nil {
			return nil, err
		}
	}

	for _, sc := range conf.EnabledSources() {
		settings, err := sc.Settings()
		if err != nil {
			return nil, err
		}

		sourceConfigs := []mailsource.ConfigFunc{
			mailsource.Credentials(credentials, credential.Prompter{}),
			mailsource.FetchRate(sc.FetchRate),
		}
		if sc.SinceLastImport {
			sourceConfigs = append(sourceConfigs, mailsource.SinceLastImport(p))
		}
		if conf.DryRun {
			sourceConfigs = append(sourceConfigs, mailsource.DryRun())
		}
		if pl.seen != nil {
			sourceConfigs = append(sourceConfigs, mailsource.SkipSeen(pl.seen))
		}

		source, err := mailsource.NewMailSource(settings, sc.Account(), imapconnection.Dial, q, pl.model, sourceConfigs...)
		if err != nil {
			return nil, fmt.Errorf("could not create source %s: %w", sc.Nickname, err)
		}

		pl.model.Register(settings, source)
		pl.sources = append(pl.sources, source)
		if len(sc.Password) == 0 {
			pl.serialConnect = true
		}
	}

	return pl, nil
}

func (pl *pipeline) close() {
	pl.reporter.Flush()
	if pl.seen != nil {
		pl.seen.Close()
	}
	pl.stopEvents()
}

// schedule runs an import now and then on every tick of expr until ctx is done.
func (pl *pipeline) schedule(ctx context.Context, expr string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(expr, func() {
		if err := pl.run(ctx); err != nil {
			pl.l.WithField("error", err).Error("Scheduled import failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not schedule import: %w", err)
	}

	err = pl.run(ctx)
	if err != nil {
		return err
	}

	c.Start()
	pl.l.WithField("schedule", expr).Info("Waiting for next scheduled import")
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// run imports from every source once. The import service stops after the queue is drained and the
// sources are checkpointed and disconnected only after that, so imported mails can still be moved and
// mails the service never got to are fetched again by the next run.
func (pl *pipeline) run(ctx context.Context) error {
	err := pl.service.Reset()
	if err != nil {
		return err
	}
	err = pl.service.Start()
	if err != nil {
		return err
	}

	pl.startSources(ctx)

	err = pl.model.WaitImported(ctx)
	if err != nil {
		pl.l.Warn("Stopping import")
		pl.stopSources()
		pl.service.Stop()
	} else {
		pl.service.StopWhenDrained()
	}

	if werr := pl.service.Wait(context.Background()); werr != nil {
		pl.l.WithField("error", werr).Error("Could not wait for import service")
	}
	if err == nil && pl.contacts != nil {
		if aerr := pl.addUnknownContacts(); aerr != nil {
			pl.l.WithField("error", aerr).Error("Could not import mails of added contacts")
		}
	}
	pl.checkpointSources()
	pl.disconnectSources()
	pl.summary()

	return err
}

func (pl *pipeline) startSources(ctx context.Context) {
	g := &errgroup.Group{}
	if pl.serialConnect {
		g.SetLimit(1)
	}

	for _, source := range pl.sources {
		source := source
		g.Go(func() error {
			err := source.Connect(true)
			if err == nil {
				err = source.StartImportService(ctx)
			}
			if err != nil {
				pl.l.WithFields(logrus.Fields{"source": source.Settings().Nickname, "error": err}).Error("Could not import from source")
				pl.model.SourceCompleted(source.Id())
			}
			return nil
		})
	}

	g.Wait()
}

func (pl *pipeline) stopSources() {
	for _, source := range pl.sources {
		source.StopImportService()
	}

	timeout := time.After(sourceStopTimeout)
	for _, source := range pl.sources {
		done := source.Done()
		if done == nil {
			continue
		}
		select {
		case <-done:
		case <-timeout:
			pl.l.WithField("source", source.Settings().Nickname).Warn("Source did not stop in time")
			return
		}
	}
}

// addUnknownContacts adds the contacts no history could be matched to and imports their mails again.
func (pl *pipeline) addUnknownContacts() error {
	contacts := unknownContacts(pl.histories)
	if len(contacts) == 0 {
		return nil
	}
	if pl.dryRun {
		pl.l.WithField("contacts", len(contacts)).Info("Not adding contacts due to dry-run")
		return nil
	}

	queued := 0
	for _, c := range contacts {
		address := strings.TrimSpace(c.Info)
		logger := pl.l.WithFields(logrus.Fields{"name": c.Name, "email": address})
		if err := checkmail.ValidateFormat(address); err != nil {
			logger.WithField("error", err).Warn("Not adding contact with invalid address")
			continue
		}

		id, err := pl.contacts.AddContact(c.Name, address)
		if err != nil {
			logger.WithField("error", err).Error("Could not add contact")
			continue
		}
		logger.WithField("id", id).Info("Added contact")
		queued += pl.service.Reprocess(c, "")
	}
	if queued == 0 {
		return nil
	}

	err := pl.service.Start()
	if err != nil {
		return err
	}
	pl.service.StopWhenDrained()
	err = pl.service.Wait(context.Background())
	pl.model.SetImporting(false)
	return err
}

// unknownContacts returns each contact of an unmatched history once, named after the first of its
// histories that carries a name.
func unknownContacts(histories *model.HistoryList) []domain.ContactInfo {
	seen := map[string]bool{}
	result := []domain.ContactInfo{}
	for _, h := range histories.All() {
		if h.Status() != domain.StatusContactNotFound {
			continue
		}
		contact := h.ContactInfo()
		if seen[contact.Key()] {
			continue
		}
		seen[contact.Key()] = true

		for _, other := range histories.ByContact(contact, "") {
			if name := other.ContactInfo().Name; len(name) > 0 {
				contact.Name = name
				break
			}
		}
		if len(contact.Name) == 0 {
			contact.Name = strings.TrimSpace(contact.Info)
		}
		result = append(result, contact)
	}
	return result
}

func (pl *pipeline) checkpointSources() {
	for _, source := range pl.sources {
		source.Checkpoint(context.Background())
	}
}

func (pl *pipeline) disconnectSources() {
	for _, source := range pl.sources {
		if err := source.Disconnect(); err != nil {
			pl.l.WithFields(logrus.Fields{"source": source.Settings().Nickname, "error": err}).Warn("Could not disconnect")
		}
	}
}

func (pl *pipeline) summary() {
	counts := pl.histories.CountByStatus()
	fields := logrus.Fields{}
	for status, count := range counts {
		fields[strings.ToLower(status.String())] = count
	}
	pl.l.WithFields(fields).Info("Import finished")

	all := pl.histories.All()
	perSource := countBySource(pl.model.SourceIds(), all)
	for _, id := range pl.model.SourceIds() {
		pl.l.WithFields(logrus.Fields{"source": id, "histories": perSource[id]}).Info("Source imported")
	}

	for _, h := range all {
		status := h.Status()
		if status == domain.StatusAdded || status == domain.StatusExists {
			continue
		}
		logger := pl.l.WithFields(historyFields(h))
		if status == domain.StatusError {
			logger.WithField("error", h.Cause()).Error("History not imported")
		} else {
			logger.Warn("History not imported")
		}
	}
}

// countBySource counts the histories of every registered source, including sources without any.
func countBySource(sourceIds []string, histories []*domain.History) map[string]int {
	counts := make(map[string]int, len(sourceIds))
	for _, id := range sourceIds {
		counts[id] = 0
	}
	for _, h := range histories {
		if _, ok := counts[h.SourceId()]; ok {
			counts[h.SourceId()]++
		}
	}
	return counts
}

func historyFields(h *domain.History) logrus.Fields {
	return logrus.Fields{
		"source":  h.SourceId(),
		"contact": h.ContactInfo().Info,
		"subject": mail.ShortSubject(h.Description),
		"status":  h.Status(),
	}
}

// logEvents logs pipeline events at debug level until the returned function is called.
func logEvents(bus *events.Bus, l *logrus.Logger) func() {
	ch, unsubscribe := bus.Subscribe(eventSubscriberBuf)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range ch {
			l.WithFields(eventFields(e)).Debug(e.Name())
		}
	}()

	return func() {
		unsubscribe()
		<-done
		if dropped := bus.Dropped(); dropped > 0 {
			l.WithField("dropped", dropped).Debug("Events were dropped")
		}
	}
}

func eventFields(e events.Event) logrus.Fields {
	switch e := e.(type) {
	case events.ImportingChanged:
		return logrus.Fields{"old": e.Old, "new": e.New}
	case events.MessageEnqueued:
		return logrus.Fields{"source": e.Envelope.SourceId, "uid": e.Envelope.Uid, "subject": mail.ShortSubject(e.Envelope.Subject)}
	case events.HistoryAdded:
		return historyFields(e.History)
	case events.ContactRemoved:
		return logrus.Fields{"contact": e.Contact.Info, "source": e.SourceId}
	}
	return logrus.Fields{}
}
