package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(value string) *string {
	return &value
}

func TestRequestSessionCreatesPendingSession(t *testing.T) {
	env := newTestEnv(t)

	detail, err := env.sessions.RequestSession(context.Background(), premiumUser, RequestSessionInput{
		TrainerID:     testTrainerID,
		ScheduledDate: "2025-06-01",
		ScheduledTime: "9:30",
		UserMessage:   strPtr("  focus on mobility  "),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, detail.Status)
	assert.Equal(t, testUserID, detail.UserID)
	assert.Equal(t, testTrainerID, detail.TrainerID)
	assert.Equal(t, "09:30", detail.ScheduledTime)
	assert.Equal(t, models.DefaultSessionDurationMinutes, detail.DurationMinutes)
	require.NotNil(t, detail.UserMessage)
	assert.Equal(t, "focus on mobility", *detail.UserMessage)
	assert.Empty(t, detail.RoomID)
	require.NotNil(t, detail.Trainer)
	assert.Equal(t, "Tina Trainer", detail.Trainer.FullName)

	require.Len(t, env.events.events, 1)
	assert.Equal(t, "session.pending", env.events.events[0].event.Type)
	assert.ElementsMatch(t, []int64{testUserID, testTrainerID}, env.events.events[0].recipients)
}

func TestRequestSessionRejections(t *testing.T) {
	valid := func() RequestSessionInput {
		return RequestSessionInput{TrainerID: testTrainerID, ScheduledDate: "2025-06-01", ScheduledTime: "10:00"}
	}

	tests := []struct {
		name    string
		caller  models.Caller
		mutate  func(*RequestSessionInput)
		wantErr error
	}{
		{"basic plan", basicUser, nil, ErrMembershipRequired},
		{"missing plan", models.Caller{ID: 50, Role: models.RoleUser}, nil, ErrMembershipRequired},
		{"trainer cannot book", owningCoach, nil, ErrForbidden},
		{"admin cannot book", adminCaller, nil, ErrForbidden},
		{"missing trainer id", premiumUser, func(in *RequestSessionInput) { in.TrainerID = 0 }, ErrInvalidInput},
		{"self booking", premiumUser, func(in *RequestSessionInput) { in.TrainerID = testUserID }, ErrInvalidInput},
		{"bad date", premiumUser, func(in *RequestSessionInput) { in.ScheduledDate = "01/06/2025" }, ErrInvalidInput},
		{"impossible date", premiumUser, func(in *RequestSessionInput) { in.ScheduledDate = "2025-02-30" }, ErrInvalidInput},
		{"bad time", premiumUser, func(in *RequestSessionInput) { in.ScheduledTime = "25:00" }, ErrInvalidInput},
		{"negative duration", premiumUser, func(in *RequestSessionInput) { in.DurationMinutes = -5 }, ErrInvalidInput},
		{"duration too long", premiumUser, func(in *RequestSessionInput) { in.DurationMinutes = 241 }, ErrInvalidInput},
		{"blank message", premiumUser, func(in *RequestSessionInput) { in.UserMessage = strPtr("   ") }, ErrInvalidInput},
		{"long message", premiumUser, func(in *RequestSessionInput) { in.UserMessage = strPtr(strings.Repeat("a", 1001)) }, ErrInvalidInput},
		{"unknown trainer", premiumUser, func(in *RequestSessionInput) { in.TrainerID = 404 }, ErrTrainerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			input := valid()
			if tt.mutate != nil {
				tt.mutate(&input)
			}

			_, err := env.sessions.RequestSession(context.Background(), tt.caller, input)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, env.store.Len())
			assert.Empty(t, env.events.types())
		})
	}
}

func TestRequestSessionMembershipCheckedBeforeInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sessions.RequestSession(context.Background(), basicUser, RequestSessionInput{})
	assert.ErrorIs(t, err, ErrMembershipRequired)
}

func TestRequestSessionHonoursPublishedAvailability(t *testing.T) {
	env := newTestEnv(t)
	env.addTrainer(t, 9, "Sam Schedule", models.AvailabilitySlot{Day: "sunday", Time: "10:00"})

	// 2025-06-01 is a Sunday, 2025-06-02 a Monday.
	_, err := env.sessions.RequestSession(context.Background(), premiumUser, RequestSessionInput{
		TrainerID:     9,
		ScheduledDate: "2025-06-02",
		ScheduledTime: "10:00",
	})
	require.ErrorIs(t, err, ErrSlotNotOffered)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.sessions.RequestSession(context.Background(), premiumUser, RequestSessionInput{
		TrainerID:     9,
		ScheduledDate: "2025-06-01",
		ScheduledTime: "11:00",
	})
	require.ErrorIs(t, err, ErrSlotNotOffered)

	detail, err := env.sessions.RequestSession(context.Background(), premiumUser, RequestSessionInput{
		TrainerID:     9,
		ScheduledDate: "2025-06-01",
		ScheduledTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), detail.TrainerID)
}

func TestRequestSessionConflict(t *testing.T) {
	env := newTestEnv(t)
	env.book(t, premiumUser, "2025-06-01", "10:00")

	_, err := env.sessions.RequestSession(context.Background(), otherUser, RequestSessionInput{
		TrainerID:     testTrainerID,
		ScheduledDate: "2025-06-01",
		ScheduledTime: "10:00",
	})
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "slot already booked")
	assert.Equal(t, 1, env.store.Len())

	// A different slot or trainer is unaffected.
	env.book(t, otherUser, "2025-06-01", "11:00")
}

func TestRequestSessionSlotFreedByRejection(t *testing.T) {
	env := newTestEnv(t)
	first := env.book(t, premiumUser, "2025-06-01", "10:00")

	_, err := env.sessions.Transition(context.Background(), owningCoach, first.ID, "rejected")
	require.NoError(t, err)

	second := env.book(t, premiumUser, "2025-06-01", "10:00")
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRequestSessionConcurrentSameSlot(t *testing.T) {
	env := newTestEnv(t)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			caller := models.Caller{ID: userID, Role: models.RoleUser, MembershipPlan: "premium"}
			_, err := env.sessions.RequestSession(context.Background(), caller, RequestSessionInput{
				TrainerID:     testTrainerID,
				ScheduledDate: "2025-06-01",
				ScheduledTime: "10:00",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, ErrConflict):
				conflicts++
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, env.store.Len())
}

func TestHasConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.book(t, premiumUser, "2025-06-01", "10:00")

	taken, err := env.sessions.HasConflict(ctx, testTrainerID, "2025-06-01", "10:00")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = env.sessions.HasConflict(ctx, testTrainerID, "2025-06-01", "11:00")
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = env.sessions.HasConflict(ctx, testTrainerID, "tomorrow", "10:00")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.sessions.HasConflict(ctx, 0, "2025-06-01", "10:00")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetSessionVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	booked := env.book(t, premiumUser, "2025-06-01", "10:00")

	for _, caller := range []models.Caller{premiumUser, owningCoach, adminCaller} {
		detail, err := env.sessions.GetSession(ctx, caller, booked.ID)
		require.NoError(t, err)
		assert.Equal(t, booked.ID, detail.ID)
	}

	for _, caller := range []models.Caller{otherUser, otherTrainer} {
		_, err := env.sessions.GetSession(ctx, caller, booked.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	}

	_, err := env.sessions.GetSession(ctx, adminCaller, 12345)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMembershipPolicy(t *testing.T) {
	policy := NewMembershipPolicy([]string{" Premium ", "elite", ""})

	assert.True(t, policy.Eligible("premium"))
	assert.True(t, policy.Eligible("ELITE"))
	assert.False(t, policy.Eligible("basic"))
	assert.False(t, policy.Eligible(""))
}

func TestBookingLifecycleScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	input := RequestSessionInput{TrainerID: testTrainerID, ScheduledDate: "2025-06-01", ScheduledTime: "17:00"}

	booked, err := env.sessions.RequestSession(ctx, premiumUser, input)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booked.Status)
	assert.Empty(t, booked.RoomID)

	approved, err := env.sessions.Transition(ctx, owningCoach, booked.ID, "approved")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.NotEmpty(t, approved.RoomID)

	_, err = env.sessions.RequestSession(ctx, otherUser, input)
	require.ErrorIs(t, err, ErrConflict)

	completed, err := env.sessions.Transition(ctx, owningCoach, booked.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	retry, err := env.sessions.RequestSession(ctx, otherUser, input)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, retry.Status)
}

func TestRequestSessionMessageLimitCountsCharacters(t *testing.T) {
	env := newTestEnv(t)
	input := RequestSessionInput{
		TrainerID:     testTrainerID,
		ScheduledDate: "2025-06-01",
		ScheduledTime: "10:00",
		UserMessage:   strPtr(strings.Repeat("é", 1000)),
	}

	detail, err := env.sessions.RequestSession(context.Background(), premiumUser, input)
	require.NoError(t, err)
	require.NotNil(t, detail.UserMessage)
	assert.Equal(t, 1000, utf8.RuneCountInString(*detail.UserMessage))

	input.ScheduledTime = "11:00"
	input.UserMessage = strPtr(strings.Repeat("é", 1001))
	_, err = env.sessions.RequestSession(context.Background(), premiumUser, input)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
