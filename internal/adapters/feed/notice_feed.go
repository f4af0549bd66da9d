package feed

import (
	"context"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/repository"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

const (
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	refreshTimeout               = 10 * time.Second
	keepAliveInterval            = 90 * time.Second
)

// NoticeFeed turns PostgreSQL notifications on the notice channel into full
// program snapshots for every watcher of that program.
type NoticeFeed struct {
	notices ports.NoticeRepository
	log     zerolog.Logger

	mu       sync.Mutex
	watchers map[string]map[*watcher]struct{}
	// seq orders store reads; a watcher never takes a snapshot read
	// before the one it already holds.
	seq uint64
}

type watcher struct {
	ch   chan []domain.Notice
	last uint64
}

var _ ports.NoticeFeed = (*NoticeFeed)(nil)

func NewNoticeFeed(notices ports.NoticeRepository, log zerolog.Logger) *NoticeFeed {
	return &NoticeFeed{
		notices:  notices,
		log:      log.With().Str("component", "notice-feed").Logger(),
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

// Listen opens a pq.Listener on the notice channel and runs the feed until
// ctx is cancelled.
func (f *NoticeFeed) Listen(ctx context.Context, dbURL string) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			f.log.Error().Err(err).Msg("listener error")
		}
	}
	listener := pq.NewListener(dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(repository.NoticeChannel); err != nil {
		return err
	}
	f.log.Info().Str("channel", repository.NoticeChannel).Msg("listening for notice changes")

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				if err := listener.Ping(); err != nil {
					f.log.Warn().Err(err).Msg("listener ping failed")
				}
			}
		}
	}()

	return f.Run(ctx, listener.Notify)
}

// Run consumes notifications. A nil notification means the connection was
// re-established and changes may have been missed, so all programs refresh.
func (f *NoticeFeed) Run(ctx context.Context, notifications <-chan *pq.Notification) error {
	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				f.closeAll()
				return nil
			}
			if n == nil {
				f.log.Warn().Msg("listener reconnected, refreshing all programs")
				for _, program := range f.programs() {
					f.refresh(ctx, program)
				}
				continue
			}
			f.refresh(ctx, n.Extra)
		}
	}
}

// Watch registers a watcher for program and sends it the current snapshot.
func (f *NoticeFeed) Watch(ctx context.Context, program string) (<-chan []domain.Notice, func(), error) {
	w := &watcher{ch: make(chan []domain.Notice, 1)}

	f.mu.Lock()
	set, ok := f.watchers[program]
	if !ok {
		set = make(map[*watcher]struct{})
		f.watchers[program] = set
	}
	set[w] = struct{}{}
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() { f.remove(program, w) })
	}

	snapshot, err := f.notices.ListNoticesByProgram(ctx, program)
	if err != nil {
		release()
		return nil, nil, err
	}
	f.mu.Lock()
	if _, live := f.watchers[program][w]; live {
		w.offer(seq, snapshot)
	}
	f.mu.Unlock()

	f.log.Debug().Str("program", program).Msg("watcher added")
	return w.ch, release, nil
}

func (f *NoticeFeed) refresh(ctx context.Context, program string) {
	f.mu.Lock()
	n := len(f.watchers[program])
	f.seq++
	seq := f.seq
	f.mu.Unlock()
	if n == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	snapshot, err := f.notices.ListNoticesByProgram(ctx, program)
	if err != nil {
		f.log.Error().Err(err).Str("program", program).Msg("refresh failed")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for w := range f.watchers[program] {
		w.offer(seq, snapshot)
	}
}

// Watchers returns the number of open watchers of program.
func (f *NoticeFeed) Watchers(program string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers[program])
}

func (f *NoticeFeed) programs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.watchers))
	for p := range f.watchers {
		out = append(out, p)
	}
	return out
}

func (f *NoticeFeed) remove(program string, w *watcher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.watchers[program]
	if !ok {
		return
	}
	if _, ok := set[w]; !ok {
		return
	}
	delete(set, w)
	close(w.ch)
	if len(set) == 0 {
		delete(f.watchers, program)
	}
}

func (f *NoticeFeed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for program, set := range f.watchers {
		for w := range set {
			close(w.ch)
		}
		delete(f.watchers, program)
	}
}

// offer delivers snapshot unless w already received one from a later read.
// Callers hold f.mu.
func (w *watcher) offer(seq uint64, snapshot []domain.Notice) {
	if seq <= w.last {
		return
	}
	w.last = seq
	deliver(w.ch, snapshot)
}

// deliver replaces a pending snapshot with the newer one. Callers hold f.mu.
func deliver(ch chan []domain.Notice, snapshot []domain.Notice) {
	select {
	case ch <- snapshot:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snapshot:
	default:
	}
}
