package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	"github.com/oksasatya/course-subscription-api/internal/infrastructure/memory"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
	"github.com/oksasatya/course-subscription-api/pkg/mailer"
)

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

func (p *fakePublisher) templates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, j.Template)
	}
	return out
}

type fixture struct {
	store  *memory.Store
	pub    *fakePublisher
	creds  *CredentialStore
	auth   *AuthService
	enroll *EnrollmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	pub := &fakePublisher{}
	notifier := NewNotifier(pub, "courses-test", helpers.NewNopLogger())
	creds := NewCredentialStore(store.Users())
	return &fixture{
		store:  store,
		pub:    pub,
		creds:  creds,
		auth:   NewAuthService(creds, helpers.NewJWTManager("test-secret", time.Hour), notifier, nil),
		enroll: NewEnrollmentService(creds, store.Courses(), notifier, nil),
	}
}

func (f *fixture) signup(t *testing.T, email string) *entity.User {
	t.Helper()
	u, err := f.auth.Signup(context.Background(), SignupInput{FirstName: "Alice", Email: email, Password: "Passw0rd#"})
	require.NoError(t, err)
	return u
}

func (f *fixture) course(t *testing.T, title string) *entity.Course {
	t.Helper()
	c := &entity.Course{Title: title}
	require.NoError(t, f.store.Courses().Create(context.Background(), c))
	return c
}
