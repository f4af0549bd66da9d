package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// NoticeDateLayout is fixed width in UTC, so lexical and chronological order agree.
const NoticeDateLayout = "2006-01-02T15:04:05.000Z07:00"

type NoticeService struct {
	notices     ports.NoticeRepository
	enrollments ports.EnrollmentRepository
	feed        ports.NoticeFeed
	now         func() time.Time
}

var _ ports.NoticeService = (*NoticeService)(nil)

func NewNoticeService(notices ports.NoticeRepository, enrollments ports.EnrollmentRepository, feed ports.NoticeFeed) *NoticeService {
	return &NoticeService{
		notices:     notices,
		enrollments: enrollments,
		feed:        feed,
		now:         time.Now,
	}
}

// Send stores a notice from educator. target is domain.TargetAll for a
// program-wide broadcast or the enrollment id of a single parent.
func (s *NoticeService) Send(ctx context.Context, educator domain.Identity, text, target string) (*domain.Notice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError(domain.FieldError{Field: "text", Message: "this field is required"})
	}
	target = strings.TrimSpace(target)
	if target == "" {
		target = domain.TargetAll
	}

	notice := domain.Notice{
		ID:      uuid.NewString(),
		Text:    text,
		Program: domain.NormalizeProgram(educator.Program),
		Sender:  educator.Name,
		Date:    s.now().UTC().Format(NoticeDateLayout),
		Type:    domain.NoticeBroadcast,
	}

	if target != domain.TargetAll {
		recipient, err := s.enrollments.FindEnrollmentByID(ctx, target)
		if err != nil {
			return nil, domain.StoreError("find recipient", err)
		}
		if recipient == nil || !strings.EqualFold(recipient.Program, notice.Program) {
			return nil, domain.NewValidationError(domain.FieldError{Field: "target", Message: "is not a parent in your program"})
		}
		notice.Type = domain.NoticePrivate
		notice.RecipientID = &recipient.ID
	}

	payload, err := json.Marshal(ports.NoticePostedEvent{
		NoticeID:    notice.ID,
		Program:     notice.Program,
		Type:        string(notice.Type),
		RecipientID: notice.RecipientID,
		Sender:      notice.Sender,
	})
	if err != nil {
		return nil, err
	}
	event := ports.OutboxEvent{
		ID:        uuid.NewString(),
		Type:      ports.EventNoticePosted,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}

	if err := s.notices.CreateNotice(ctx, notice, event); err != nil {
		return nil, domain.StoreError("create notice", err)
	}
	return &notice, nil
}

// List returns the notices the viewer may read, newest first.
func (s *NoticeService) List(ctx context.Context, viewer domain.Identity) ([]domain.Notice, error) {
	all, err := s.notices.ListNoticesByProgram(ctx, domain.NormalizeProgram(viewer.Program))
	if err != nil {
		return nil, domain.StoreError("list notices", err)
	}
	return Visible(all, viewer.ID), nil
}

// Visible keeps broadcasts and notices addressed to parentID, newest first.
// It holds no state so it can be rerun on every snapshot.
func Visible(notices []domain.Notice, parentID string) []domain.Notice {
	out := make([]domain.Notice, 0, len(notices))
	for _, n := range notices {
		if n.VisibleTo(parentID) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return noticeNewer(out[i].Date, out[j].Date)
	})
	return out
}

// noticeNewer orders by parsed time and falls back to string comparison
// when either date does not parse.
func noticeNewer(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA != nil || errB != nil {
		return a > b
	}
	return ta.After(tb)
}

// Subscribe opens a live view on the viewer's notices. Every snapshot from
// the feed is filtered again; only the latest view is kept if the reader lags.
func (s *NoticeService) Subscribe(ctx context.Context, viewer domain.Identity) (ports.NoticeSubscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	snapshots, release, err := s.feed.Watch(ctx, domain.NormalizeProgram(viewer.Program))
	if err != nil {
		cancel()
		return nil, domain.StoreError("watch notices", err)
	}

	sub := &noticeSubscription{
		updates: make(chan []domain.Notice, 1),
		cancel:  cancel,
		release: release,
		done:    make(chan struct{}),
	}
	go sub.run(ctx, snapshots, viewer.ID)
	return sub, nil
}

type noticeSubscription struct {
	updates chan []domain.Notice
	cancel  context.CancelFunc
	release func()
	done    chan struct{}
	once    sync.Once
}

func (s *noticeSubscription) run(ctx context.Context, snapshots <-chan []domain.Notice, parentID string) {
	defer close(s.done)
	defer close(s.updates)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			s.push(Visible(snap, parentID))
		}
	}
}

// push replaces an unread view with the newer one.
func (s *noticeSubscription) push(view []domain.Notice) {
	for {
		select {
		case s.updates <- view:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

func (s *noticeSubscription) Updates() <-chan []domain.Notice { return s.updates }

// Close releases the feed. It is safe to call more than once.
func (s *noticeSubscription) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		s.release()
	})
}
