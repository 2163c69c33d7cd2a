package application

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/course-subscription-api/pkg/mailer/templates"
)

func TestSubscribeUser_Idempotent(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "alice@example.com")
	ctx := context.Background()

	first, err := f.enroll.SubscribeUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, first.Subscribed)

	second, err := f.enroll.SubscribeUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, second.Subscribed)

	assert.Equal(t, []string{templates.Welcome, templates.SubscriptionActivated}, f.pub.templates())
}

func TestSubscribeUser_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.enroll.SubscribeUser(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.enroll.SubscribeUser(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddCourseToUser_Idempotent(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "alice@example.com")
	c := f.course(t, "Go Basics")
	ctx := context.Background()

	got, err := f.enroll.AddCourseToUser(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, got.CourseIDs)

	got, err = f.enroll.AddCourseToUser(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, got.CourseIDs)

	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, stored.CourseIDs)
	assert.Equal(t, []string{templates.Welcome, templates.CourseEnrolled}, f.pub.templates())
	assert.Equal(t, "Go Basics", f.pub.jobs[1].Data["CourseTitle"])
}

func TestAddCourseToUser_CanonicalizesID(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "alice@example.com")
	c := f.course(t, "Go Basics")
	ctx := context.Background()

	_, err := f.enroll.AddCourseToUser(ctx, u.ID, c.ID)
	require.NoError(t, err)
	got, err := f.enroll.AddCourseToUser(ctx, u.ID, "{"+c.ID+"}")
	require.NoError(t, err)
	assert.Len(t, got.CourseIDs, 1)
}

func TestAddCourseToUser_InvalidIDLeavesUserUntouched(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "alice@example.com")
	ctx := context.Background()

	_, err := f.enroll.AddCourseToUser(ctx, u.ID, "definitely-not-an-id")
	require.ErrorIs(t, err, ErrInvalidCourseID)

	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CourseIDs)
}

func TestAddCourseToUser_DoesNotRequireExistingCourse(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "alice@example.com")
	dangling := uuid.NewString()

	got, err := f.enroll.AddCourseToUser(context.Background(), u.ID, dangling)
	require.NoError(t, err)
	assert.Equal(t, []string{dangling}, got.CourseIDs)
}

func TestAddCourseToUser_ConcurrentCallsAddOnce(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "alice@example.com")
	c := f.course(t, "Go Basics")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.enroll.AddCourseToUser(ctx, u.ID, c.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, stored.CourseIDs)
}

func TestFindUserWithCourses_KeepsOrderDropsDangling(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "alice@example.com")
	a := f.course(t, "A")
	b := f.course(t, "B")
	ctx := context.Background()

	for _, id := range []string{b.ID, uuid.NewString(), a.ID} {
		_, err := f.enroll.AddCourseToUser(ctx, u.ID, id)
		require.NoError(t, err)
	}

	got, err := f.enroll.FindUserWithCourses(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Courses, 2)
	assert.Equal(t, "B", got.Courses[0].Title)
	assert.Equal(t, "A", got.Courses[1].Title)
	assert.Len(t, got.CourseIDs, 3)
	assert.Empty(t, got.Password)
}

func TestFindUserWithCourses_NoCourses(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "alice@example.com")

	got, err := f.enroll.FindUserWithCourses(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Courses)
	assert.Empty(t, got.Courses)
}
