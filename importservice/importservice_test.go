// SPDX-License-Identifier: GPL-3.0-or-later
package importservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/domain/mocks"
	"github.com/CrawX/go-imap-historian/events"
	"github.com/CrawX/go-imap-historian/log"
	"github.com/CrawX/go-imap-historian/model"
	"github.com/CrawX/go-imap-historian/queue"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const TEST_SOURCE = "work"

// fakeConverter turns every envelope into one received history per recipient address and lets the
// test decide which contacts are matched.
type fakeConverter struct {
	mu      sync.Mutex
	matched map[string]int64
	calls   int
}

func (f *fakeConverter) Convert(env *domain.Envelope) ([]*domain.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if env.Subject == "ignored" {
		return nil, nil
	}
	if env.Subject == "broken" {
		return nil, errors.New("unknown mail source")
	}

	histories := []*domain.History{}
	for _, to := range env.To {
		h := domain.NewHistory(env, 1)
		h.Result = domain.ResultDone
		h.Contact = domain.ContactInfo{Info: to.Address}
		if id, ok := f.matched[to.Address]; ok {
			h.Matched(id, to.Address)
		} else {
			h.SetStatusIfNone(domain.StatusContactNotFound)
		}
		histories = append(histories, h)
	}
	return histories, nil
}

func (f *fakeConverter) match(address string, id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matched[address] = id
}

type fakeSource struct {
	mu      sync.Mutex
	marked  []uint32
	handled map[uint32]bool
}

func (f *fakeSource) MarkImported(env *domain.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, env.Uid)
	return nil
}

func (f *fakeSource) MessageHandled(env *domain.Envelope, imported bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handled[env.Uid] = imported
}

type fixture struct {
	ctrl      *gomock.Controller
	store     *mocks.MockHistoryStore
	queue     *queue.MessageQueue
	converter *fakeConverter
	histories *model.HistoryList
	model     *model.EmailModel
	source    *fakeSource
	bus       *events.Bus
	service   *ImportService
}

func setup(t *testing.T, cfg *configuration) *fixture {
	ctrl := gomock.NewController(t)
	bus := events.NewBus()

	settings, err := domain.NewSourceSettings(TEST_SOURCE, "Work", 1, nil, nil, "")
	require.NoError(t, err)

	f := &fixture{
		ctrl:      ctrl,
		store:     mocks.NewMockHistoryStore(ctrl),
		queue:     queue.NewMessageQueue(bus),
		converter: &fakeConverter{matched: map[string]int64{}},
		histories: model.NewHistoryList(bus),
		model:     model.NewEmailModel(bus),
		source:    &fakeSource{handled: map[uint32]bool{}},
		bus:       bus,
	}
	f.model.Register(settings, f.source)

	if cfg == nil {
		cfg = defaultConfiguration()
	}
	cfg.PollInterval = 5 * time.Millisecond

	f.service = &ImportService{
		queue:         f.queue,
		converter:     f.converter,
		store:         f.store,
		histories:     f.histories,
		model:         f.model,
		bus:           bus,
		configuration: cfg,
		l:             log.NullLogger(),
	}
	return f
}

func envelope(uid uint32, subject string, to ...string) *domain.Envelope {
	env := &domain.Envelope{
		SourceId:   TEST_SOURCE,
		Uid:        uid,
		MailIdHash: fmt.Sprintf("hash%d", uid),
		Subject:    subject,
	}
	for _, a := range to {
		env.To = append(env.To, domain.Address{Address: a})
	}
	return env
}

func (f *fixture) drain(t *testing.T) {
	f.service.StopWhenDrained()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.service.Wait(ctx))
	assert.True(t, f.service.IsStopped())
}

func statuses(histories []*domain.History) []domain.Status {
	result := []domain.Status{}
	for _, h := range histories {
		result = append(result, h.Status())
	}
	return result
}

func TestNewImportService(t *testing.T) {
	log.InitDiscardLogging()
	tests := []struct {
		name string
		cfgs []ConfigFunc
		err  string
	}{
		{"ok", []ConfigFunc{DryRun(), PollInterval(time.Second)}, ""},
		{"interval", []ConfigFunc{PollInterval(0)}, "error applying configuration: PollInterval must be positive"},
		{"reporter", []ConfigFunc{ReportErrors(nil)}, "error applying configuration: ErrorReporter cannot be null"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service, err := NewImportService(nil, nil, nil, nil, nil, nil, tc.cfgs...)
			if len(tc.err) == 0 {
				assert.NotNil(t, service)
				assert.NoError(t, err)
			} else {
				assert.Nil(t, service)
				assert.EqualError(t, err, tc.err)
			}
		})
	}
}

func TestImportService_PersistenceFailureDoesNotAbort(t *testing.T) {
	f := setup(t, nil)
	defer f.ctrl.Finish()

	f.converter.match("a@x.com", 1)
	f.converter.match("b@x.com", 2)
	f.converter.match("c@x.com", 3)

	saveErr := errors.New("disk I/O error")
	gomock.InOrder(
		f.store.EXPECT().SaveHistory(gomock.Any()).Return(int64(10), false, nil),
		f.store.EXPECT().SaveHistory(gomock.Any()).Return(int64(0), false, saveErr),
		f.store.EXPECT().SaveHistory(gomock.Any()).Return(int64(12), false, nil),
	)

	f.queue.Enqueue(envelope(1, "one", "a@x.com"))
	f.queue.Enqueue(envelope(2, "two", "b@x.com"))
	f.queue.Enqueue(envelope(3, "three", "c@x.com"))

	require.NoError(t, f.service.Start())
	assert.True(t, f.model.IsImporting())
	f.drain(t)

	listed := f.histories.All()
	require.Len(t, listed, 3)
	assert.Equal(t, []domain.Status{domain.StatusAdded, domain.StatusError, domain.StatusAdded}, statuses(listed))
	assert.Equal(t, int64(10), *listed[0].CrmId)
	assert.ErrorIs(t, listed[1].Cause(), saveErr)
	assert.Nil(t, listed[1].CrmId)
	assert.Equal(t, int64(12), *listed[2].CrmId)
	assert.Equal(t, []uint32{1, 3}, f.source.marked)
	assert.Equal(t, map[uint32]bool{1: true, 2: false, 3: true}, f.source.handled)
}

func TestImportService_FinalStatusesAreNotSaved(t *testing.T) {
	f := setup(t, nil)
	defer f.ctrl.Finish()

	f.converter.match("a@x.com", 1)
	f.store.EXPECT().SaveHistory(gomock.Any()).Return(int64(10), true, nil)

	f.queue.Enqueue(envelope(1, "mail", "a@x.com", "unknown@x.com"))
	f.queue.Enqueue(envelope(2, "ignored", "a@x.com"))
	f.queue.Enqueue(envelope(3, "broken", "a@x.com"))

	require.NoError(t, f.service.Start())
	f.drain(t)

	assert.Equal(t, []domain.Status{domain.StatusExists, domain.StatusContactNotFound}, statuses(f.histories.All()))
	assert.Equal(t, 3, f.converter.calls)
	assert.Empty(t, f.source.marked, "mails with unmatched contacts or without histories stay")
	assert.Equal(t, map[uint32]bool{1: false, 2: true, 3: false}, f.source.handled)
}

func TestImportService_ExistingNotListedWhenReprocessing(t *testing.T) {
	f := setup(t, nil)
	defer f.ctrl.Finish()

	f.store.EXPECT().SaveHistory(gomock.Any()).Return(int64(10), true, nil)

	env := envelope(1, "mail", "a@x.com")
	env.SetAddExistingHistory(false)
	f.converter.match("a@x.com", 1)
	f.queue.Enqueue(env)

	require.NoError(t, f.service.Start())
	f.drain(t)

	assert.Equal(t, 0, f.histories.Len())
	assert.Equal(t, []uint32{1}, f.source.marked, "existing mails are moved as well")
}

func TestImportService_DryRun(t *testing.T) {
	f := setup(t, &configuration{DryRun: true})
	defer f.ctrl.Finish()

	f.converter.match("a@x.com", 1)
	f.queue.Enqueue(envelope(1, "mail", "a@x.com"))

	require.NoError(t, f.service.Start())
	f.drain(t)

	assert.Equal(t, []domain.Status{domain.StatusNone}, statuses(f.histories.All()))
	assert.Empty(t, f.source.marked)
	assert.Equal(t, map[uint32]bool{1: false}, f.source.handled)
}

func TestImportService_Stop(t *testing.T) {
	f := setup(t, nil)
	defer f.ctrl.Finish()

	ch, unsubscribe := f.bus.Subscribe(64)
	defer unsubscribe()

	f.converter.match("a@x.com", 1)
	f.converter.match("b@x.com", 2)

	saving := make(chan struct{})
	release := make(chan struct{})
	f.store.EXPECT().SaveHistory(gomock.Any()).DoAndReturn(func(h *domain.History) (int64, bool, error) {
		close(saving)
		<-release
		return 10, false, nil
	})

	f.queue.Enqueue(envelope(1, "mail", "a@x.com", "b@x.com"))
	f.queue.Enqueue(envelope(2, "mail", "a@x.com"))

	require.NoError(t, f.service.Start())
	assert.ErrorIs(t, f.service.Start(), ErrAlreadyRunning)

	<-saving
	f.service.Stop()
	assert.Equal(t, StateStopped, f.service.State())
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.service.Wait(ctx))

	assert.Equal(t, []domain.Status{domain.StatusAdded}, statuses(f.histories.All()), "the current history is finished")
	assert.Equal(t, 1, f.queue.Size())
	assert.Empty(t, f.source.marked, "a partly imported mail is not moved")
	assert.Empty(t, f.source.handled, "a partly imported mail is not reported as processed")

	stopped := false
	for !stopped {
		select {
		case e := <-ch:
			_, stopped = e.(events.ImportServiceStopped)
		case <-time.After(5 * time.Second):
			t.Fatal("no stop event")
		}
	}
}

type panicConverter struct{}

func (panicConverter) Convert(env *domain.Envelope) ([]*domain.History, error) {
	panic("nil map")
}

func TestImportService_PanicIsReported(t *testing.T) {
	f := setup(t, nil)
	defer f.ctrl.Finish()

	reporter := mocks.NewMockErrorReporter(f.ctrl)
	f.service.configuration.Reporter = reporter
	f.service.converter = panicConverter{}

	reporter.EXPECT().
		Report(gomock.Any(), gomock.Eq(map[string]string{"source": TEST_SOURCE})).
		Do(func(err error, tags map[string]string) {
			assert.EqualError(t, err, "converting panicked: nil map")
		})

	f.queue.Enqueue(envelope(1, "mail", "a@x.com"))
	require.NoError(t, f.service.Start())
	f.drain(t)
}

func TestImportService_Reprocess(t *testing.T) {
	f := setup(t, nil)
	defer f.ctrl.Finish()

	ch, unsubscribe := f.bus.Subscribe(64)
	defer unsubscribe()

	f.converter.match("a@x.com", 1)
	gomock.InOrder(
		f.store.EXPECT().SaveHistory(gomock.Any()).Return(int64(10), false, nil),
		f.store.EXPECT().SaveHistory(gomock.Any()).Return(int64(10), true, nil),
		f.store.EXPECT().SaveHistory(gomock.Any()).Return(int64(11), false, nil),
	)

	f.queue.Enqueue(envelope(1, "mail", "a@x.com", "new@x.com"))
	require.NoError(t, f.service.Start())
	f.drain(t)
	require.Equal(t, []domain.Status{domain.StatusAdded, domain.StatusContactNotFound}, statuses(f.histories.All()))

	f.converter.match("new@x.com", 2)
	queued := f.service.Reprocess(domain.ContactInfo{Info: "NEW@x.com"}, "")
	assert.Equal(t, 1, queued)
	assert.Equal(t, 1, f.histories.Len())

	require.NoError(t, f.service.Start())
	f.drain(t)

	listed := f.histories.All()
	require.Len(t, listed, 2)
	assert.Equal(t, "a@x.com", listed[0].ContactInfo().Info)
	assert.Equal(t, "new@x.com", listed[1].ContactInfo().Info)
	assert.Equal(t, domain.StatusAdded, listed[1].Status())

	removed := false
	for !removed {
		select {
		case e := <-ch:
			_, removed = e.(events.ContactRemoved)
		case <-time.After(5 * time.Second):
			t.Fatal("no contact removed event")
		}
	}
}

func TestImportService_Reset(t *testing.T) {
	f := setup(t, nil)
	defer f.ctrl.Finish()

	f.histories.Add(domain.NewHistory(envelope(1, "mail"), 1))
	f.queue.Enqueue(envelope(2, "mail"))

	assert.NoError(t, f.service.Reset())
	assert.Equal(t, 0, f.histories.Len())
	assert.True(t, f.queue.IsEmpty())

	require.NoError(t, f.service.Start())
	assert.ErrorIs(t, f.service.Reset(), ErrRunning)
	f.drain(t)
}
