package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
	"github.com/AchilleasB/kinder/nursery-service/internal/mocks"
)

func ptr(s string) *string { return &s }

func TestVisible(t *testing.T) {
	notices := []domain.Notice{
		{ID: "n1", Type: domain.NoticeBroadcast, Date: "2024-03-01T09:00:00.000Z"},
		{ID: "n2", Type: domain.NoticePrivate, RecipientID: ptr("p1"), Date: "2024-03-03T09:00:00.000Z"},
		{ID: "n3", Type: domain.NoticePrivate, RecipientID: ptr("p2"), Date: "2024-03-04T09:00:00.000Z"},
		{ID: "n4", Type: domain.NoticeBroadcast, Date: "2024-03-02T09:00:00.000Z"},
	}

	tests := []struct {
		parent string
		want   []string
	}{
		{parent: "p1", want: []string{"n2", "n4", "n1"}},
		{parent: "p2", want: []string{"n3", "n4", "n1"}},
		{parent: "p3", want: []string{"n4", "n1"}},
	}
	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			got := Visible(notices, tt.parent)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d notices, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.want[i], got[i].ID)
				}
			}
		})
	}
}

func TestVisible_OrdersByTimeAcrossOffsets(t *testing.T) {
	notices := []domain.Notice{
		{ID: "early", Type: domain.NoticeBroadcast, Date: "2024-03-01T10:00:00+02:00"},
		{ID: "late", Type: domain.NoticeBroadcast, Date: "2024-03-01T09:00:00Z"},
	}
	got := Visible(notices, "p1")
	if got[0].ID != "late" {
		t.Errorf("expected late first, got %s", got[0].ID)
	}
}

func newNotices() (*NoticeService, *mocks.MockRepository, *mocks.MockNoticeFeed) {
	repo := mocks.NewMockRepository()
	repo.SeedEnrollment(mocks.TestEnrollment("p1", "Ada", "a@example.com", "preschool"))
	repo.SeedEnrollment(mocks.TestEnrollment("p9", "Xena", "x@example.com", "infant"))
	feed := mocks.NewMockNoticeFeed()
	svc := NewNoticeService(repo, repo, feed)
	svc.now = func() time.Time { return testDay }
	return svc, repo, feed
}

func TestNoticeService_Send(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		target     string
		wantType   domain.NoticeType
		wantErrFld string
	}{
		{name: "broadcast_by_default", text: "Trip on Friday", target: "", wantType: domain.NoticeBroadcast},
		{name: "broadcast_explicit", text: "Trip on Friday", target: "all", wantType: domain.NoticeBroadcast},
		{name: "private_to_parent", text: "Bring a coat", target: "p1", wantType: domain.NoticePrivate},
		{name: "empty_text", text: "   ", target: "all", wantErrFld: "text"},
		{name: "parent_in_other_program", text: "Hi", target: "p9", wantErrFld: "target"},
		{name: "unknown_parent", text: "Hi", target: "nobody", wantErrFld: "target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newNotices()
			n, err := svc.Send(context.Background(), testEducator, tt.text, tt.target)
			if tt.wantErrFld != "" {
				if _, ok := fieldsOf(t, err)[tt.wantErrFld]; !ok {
					t.Errorf("expected error on %s, got %v", tt.wantErrFld, err)
				}
				if len(repo.CreateNoticeCalls) != 0 {
					t.Error("expected nothing stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Type != tt.wantType || n.Program != "preschool" || n.Sender != "Mia" {
				t.Errorf("unexpected notice %+v", n)
			}
			if n.Date != "2024-03-04T08:30:00.000Z" {
				t.Errorf("unexpected date %q", n.Date)
			}
			if tt.wantType == domain.NoticePrivate && (n.RecipientID == nil || *n.RecipientID != "p1") {
				t.Errorf("expected recipient p1, got %v", n.RecipientID)
			}
			outbox := repo.Outbox()
			if len(outbox) != 1 || outbox[0].Type != ports.EventNoticePosted {
				t.Errorf("expected a notice.posted event, got %+v", outbox)
			}
		})
	}
}

func TestNoticeService_List(t *testing.T) {
	svc, repo, _ := newNotices()
	repo.SeedNotice(domain.Notice{ID: "b", Program: "preschool", Type: domain.NoticeBroadcast, Date: "2024-03-01T00:00:00.000Z"})
	repo.SeedNotice(domain.Notice{ID: "mine", Program: "preschool", Type: domain.NoticePrivate, RecipientID: ptr("p1"), Date: "2024-03-02T00:00:00.000Z"})
	repo.SeedNotice(domain.Notice{ID: "theirs", Program: "preschool", Type: domain.NoticePrivate, RecipientID: ptr("p2"), Date: "2024-03-03T00:00:00.000Z"})
	repo.SeedNotice(domain.Notice{ID: "infant", Program: "infant", Type: domain.NoticeBroadcast, Date: "2024-03-04T00:00:00.000Z"})

	got, err := svc.List(context.Background(), domain.Identity{ID: "p1", Role: domain.RoleParent, Program: "preschool"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "mine" || got[1].ID != "b" {
		t.Errorf("unexpected notices %+v", got)
	}
}

func TestNoticeService_ListStoreFailure(t *testing.T) {
	svc, repo, _ := newNotices()
	repo.ListNoticesError = errors.New("down")
	if _, err := svc.List(context.Background(), domain.Identity{ID: "p1", Program: "preschool"}); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func receive(t *testing.T, ch <-chan []domain.Notice) []domain.Notice {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("updates closed")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
	return nil
}

func TestNoticeService_SubscribeRefiltersEverySnapshot(t *testing.T) {
	svc, _, feed := newNotices()
	parent := domain.Identity{ID: "p1", Role: domain.RoleParent, Program: "preschool"}

	sub, err := svc.Subscribe(context.Background(), parent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sub.Close()

	if first := receive(t, sub.Updates()); len(first) != 0 {
		t.Fatalf("expected empty initial view, got %d", len(first))
	}

	feed.Publish("preschool", []domain.Notice{
		{ID: "b", Type: domain.NoticeBroadcast, Date: "2024-03-01T00:00:00.000Z"},
		{ID: "other", Type: domain.NoticePrivate, RecipientID: ptr("p2"), Date: "2024-03-02T00:00:00.000Z"},
	})
	view := receive(t, sub.Updates())
	if len(view) != 1 || view[0].ID != "b" {
		t.Errorf("expected only the broadcast, got %+v", view)
	}

	feed.Publish("preschool", []domain.Notice{
		{ID: "b", Type: domain.NoticeBroadcast, Date: "2024-03-01T00:00:00.000Z"},
		{ID: "mine", Type: domain.NoticePrivate, RecipientID: ptr("p1"), Date: "2024-03-05T00:00:00.000Z"},
	})
	view = receive(t, sub.Updates())
	if len(view) != 2 || view[0].ID != "mine" {
		t.Errorf("expected private notice first, got %+v", view)
	}
}

func TestNoticeService_SubscribeCloseReleasesFeed(t *testing.T) {
	svc, _, feed := newNotices()
	sub, err := svc.Subscribe(context.Background(), domain.Identity{ID: "p1", Program: "preschool"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feed.Watchers("preschool") != 1 {
		t.Fatalf("expected 1 watcher, got %d", feed.Watchers("preschool"))
	}

	sub.Close()
	sub.Close()

	if feed.Watchers("preschool") != 0 {
		t.Errorf("expected watcher released, got %d", feed.Watchers("preschool"))
	}
	if feed.ReleasedCount != 1 {
		t.Errorf("expected one release, got %d", feed.ReleasedCount)
	}
	for range sub.Updates() {
	}
}

func TestNoticeService_SubscribeWatchFailure(t *testing.T) {
	svc, _, feed := newNotices()
	feed.WatchError = errors.New("listener down")
	if _, err := svc.Subscribe(context.Background(), domain.Identity{ID: "p1", Program: "preschool"}); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
