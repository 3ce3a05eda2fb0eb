package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

const (
	testTrainerID = int64(7)
	testUserID    = int64(42)
	testAdminID   = int64(1)
)

var (
	premiumUser  = models.Caller{ID: testUserID, Role: models.RoleUser, MembershipPlan: "premium"}
	basicUser    = models.Caller{ID: 43, Role: models.RoleUser, MembershipPlan: "basic"}
	otherUser    = models.Caller{ID: 44, Role: models.RoleUser, MembershipPlan: "premium"}
	owningCoach  = models.Caller{ID: testTrainerID, Role: models.RoleTrainer}
	otherTrainer = models.Caller{ID: 8, Role: models.RoleTrainer}
	adminCaller  = models.Caller{ID: testAdminID, Role: models.RoleAdmin}
)

type sequentialRooms struct {
	mu sync.Mutex
	n  int
}

func (r *sequentialRooms) Issue() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return fmt.Sprintf("room_test_%d", r.n), nil
}

type publishedEvent struct {
	event      models.SessionEvent
	recipients []int64
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishSessionEvent(event models.SessionEvent, recipients ...int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{event: event, recipients: recipients})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.event.Type)
	}
	return types
}

type testEnv struct {
	sessions *SessionService
	trainers *TrainerService
	store    *memory.SessionStore
	roster   *memory.TrainerStore
	events   *recordingPublisher
	clock    *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)}
	store := memory.NewSessionStore().WithClock(clock.Now)
	roster := memory.NewTrainerStore()
	events := &recordingPublisher{}

	sessions := NewSessionService(
		store,
		roster,
		NewMembershipPolicy([]string{"premium"}),
		&sequentialRooms{},
		events,
		nil,
	)
	sessions.now = clock.Now

	env := &testEnv{
		sessions: sessions,
		trainers: NewTrainerService(roster, nil, nil),
		store:    store,
		roster:   roster,
		events:   events,
		clock:    clock,
	}
	env.addTrainer(t, testTrainerID, "Tina Trainer")
	return env
}

func (e *testEnv) addTrainer(t *testing.T, id int64, name string, slots ...models.AvailabilitySlot) {
	t.Helper()
	ctx := context.Background()
	_, err := e.roster.Create(ctx, repository.CreateTrainerInput{ID: id, FullName: name})
	require.NoError(t, err)
	if len(slots) > 0 {
		_, err = e.roster.UpdateAvailability(ctx, id, slots)
		require.NoError(t, err)
	}
}

// book requests a session for caller and advances the clock so creation
// times are strictly increasing.
func (e *testEnv) book(t *testing.T, caller models.Caller, date, slotTime string) *models.SessionDetail {
	t.Helper()
	detail, err := e.sessions.RequestSession(context.Background(), caller, RequestSessionInput{
		TrainerID:     testTrainerID,
		ScheduledDate: date,
		ScheduledTime: slotTime,
	})
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	return detail
}

// seed creates a session for testUserID and forces it into status.
func (e *testEnv) seed(t *testing.T, date string, status models.SessionStatus) *models.Session {
	t.Helper()
	detail := e.book(t, premiumUser, date, "10:00")
	if status == models.StatusPending {
		return &detail.Session
	}
	forced, err := e.sessions.ForceStatus(context.Background(), adminCaller, detail.ID, string(status))
	require.NoError(t, err)
	return &forced.Session
}
