package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/mentamind-backend/internal/data/repos"
	"github.com/yungbote/mentamind-backend/internal/data/repos/testutil"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
)

type activityFunc func(ctx context.Context) (int64, error)

func (f activityFunc) ActiveCount(ctx context.Context) (int64, error) { return f(ctx) }

func TestCommunityStats(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	now := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)
	testutil.SeedPost(t, ctx, db, "a", "yesterday", now.Add(-16*time.Hour))
	testutil.SeedPost(t, ctx, db, "a", "this morning", now.Add(-6*time.Hour))
	testutil.SeedPost(t, ctx, db, "b", "just now", now.Add(-time.Minute))

	cases := []struct {
		name       string
		activity   ActivityCounter
		wantOnline int64
	}{
		{"active identities", activityFunc(func(context.Context) (int64, error) { return 7, nil }), 150 + 14 + 3},
		{"activity unavailable", activityFunc(func(context.Context) (int64, error) { return 0, errors.New("down") }), 150 + 3},
		{"no activity source", nil, 150 + 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewStatsService(log, repos.NewPostRepo(db, log), tc.activity, nil).(*statsService)
			svc.now = func() time.Time { return now }
			svc.jitter = func() int64 { return 3 }

			got, err := svc.Community(dbctx.Context{Ctx: ctx})
			if err != nil {
				t.Fatalf("Community: %v", err)
			}
			if got.PostsToday != 2 {
				t.Fatalf("PostsToday got=%d want=2", got.PostsToday)
			}
			if got.OnlineCount != tc.wantOnline {
				t.Fatalf("OnlineCount got=%d want=%d", got.OnlineCount, tc.wantOnline)
			}
		})
	}
}

func TestCommunityStatsJitterRange(t *testing.T) {
	svc := NewStatsService(testutil.Logger(t), nil, nil, nil).(*statsService)
	for i := 0; i < 200; i++ {
		if j := svc.jitter(); j < 0 || j >= onlineJitter {
			t.Fatalf("jitter out of range: %d", j)
		}
	}
}
