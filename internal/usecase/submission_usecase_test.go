package usecase

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"skill-intake/internal/domain/skill"
	"skill-intake/internal/domain/submission"
	"skill-intake/internal/repository"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type memState struct {
	users      map[string]submission.User
	skills     map[string]int64
	userSkills [][2]int64
	nextUser   int64
	nextSkill  int64
}

func (s memState) clone() memState {
	return memState{
		users:      maps.Clone(s.users),
		skills:     maps.Clone(s.skills),
		userSkills: slices.Clone(s.userSkills),
		nextUser:   s.nextUser,
		nextSkill:  s.nextSkill,
	}
}

// memStore is an in-memory UnitOfWork and SubmissionQueryRepository. Do
// restores the previous state when fn fails.
type memStore struct {
	mu    sync.Mutex
	state memState

	createErr error
	attachErr error
	upserts   []string
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		users:  map[string]submission.User{},
		skills: map[string]int64{},
	}}
}

func (m *memStore) Do(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	repos := repository.TxRepositories{Users: memUsers{m}, Skills: memSkills{m}, UserSkills: memUserSkills{m}}
	if err := fn(ctx, repos); err != nil {
		m.state = snapshot
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *memStore) ListSubmissions(_ context.Context, limit, offset int) ([]submission.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := slices.Collect(maps.Values(m.state.users))
	slices.SortFunc(users, func(a, b submission.User) int { return int(a.ID - b.ID) })

	out := make([]submission.Submission, 0)
	for i, u := range users {
		if i < offset || len(out) >= limit {
			continue
		}
		out = append(out, submission.Submission{User: u, Skills: m.skillNames(u.ID)})
	}
	return out, nil
}

func (m *memStore) skillNames(userID int64) []string {
	byID := map[int64]string{}
	for name, id := range m.state.skills {
		byID[id] = name
	}
	out := make([]string, 0)
	for _, us := range m.state.userSkills {
		if us[0] == userID {
			out = append(out, byID[us[1]])
		}
	}
	return out
}

type memUsers struct{ m *memStore }

func (r memUsers) FindByEmailForUpdate(_ context.Context, email string) (submission.User, error) {
	u, ok := r.m.state.users[email]
	if !ok {
		return submission.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (r memUsers) Create(_ context.Context, u submission.User) (submission.User, error) {
	if r.m.createErr != nil {
		return submission.User{}, r.m.createErr
	}
	if _, ok := r.m.state.users[u.Email]; ok {
		return submission.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	r.m.state.nextUser++
	u.ID = r.m.state.nextUser
	r.m.state.users[u.Email] = u
	return u, nil
}

type memSkills struct{ m *memStore }

func (r memSkills) GetAllSkills(context.Context) ([]skill.Skill, error) {
	out := make([]skill.Skill, 0, len(r.m.state.skills))
	for name, id := range r.m.state.skills {
		out = append(out, skill.Skill{ID: id, Name: name})
	}
	slices.SortFunc(out, func(a, b skill.Skill) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r memSkills) Upsert(_ context.Context, name string) (skill.Skill, error) {
	r.m.upserts = append(r.m.upserts, name)
	if id, ok := r.m.state.skills[name]; ok {
		return skill.Skill{ID: id, Name: name}, nil
	}
	r.m.state.nextSkill++
	r.m.state.skills[name] = r.m.state.nextSkill
	return skill.Skill{ID: r.m.state.nextSkill, Name: name}, nil
}

type memUserSkills struct{ m *memStore }

func (r memUserSkills) Attach(_ context.Context, userID, skillID int64) (bool, error) {
	if r.m.attachErr != nil {
		return false, r.m.attachErr
	}
	pair := [2]int64{userID, skillID}
	if slices.Contains(r.m.state.userSkills, pair) {
		return false, nil
	}
	r.m.state.userSkills = append(r.m.state.userSkills, pair)
	return true, nil
}

func (r memUserSkills) SkillNamesByUserID(_ context.Context, userID int64) ([]string, error) {
	return r.m.skillNames(userID), nil
}

type fakeCache struct {
	entries map[string]any
	deleted []string
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]any{}} }

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	switch dst := out.(type) {
	case *[]submission.Submission:
		*dst = v.([]submission.Submission)
	case *int64:
		*dst = v.(int64)
	}
	return true, nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	n, _ := c.entries[key].(int64)
	n++
	c.entries[key] = n
	return n, nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

type notification struct {
	outcome string
	sub     submission.Submission
	added   []string
}

type fakeNotifier struct{ got []notification }

func (n *fakeNotifier) NotifySubmission(outcome string, s submission.Submission, added []string) {
	n.got = append(n.got, notification{outcome: outcome, sub: s, added: added})
}

func newTestUsecase(store *memStore) (*Submission, *fakeCache, *fakeNotifier) {
	cache := newFakeCache()
	notifier := &fakeNotifier{}
	uc := NewSubmissionUsecase(store, store, SubmissionOptions{Cache: cache, Notifier: notifier})
	return uc, cache, notifier
}

func ada(skills ...string) submission.Input {
	return submission.Input{Username: "ada", Email: "Ada@Example.com", Location: "London", Skills: skills}
}

func TestSubmit_NewEmailCreatesWithNormalizedSkills(t *testing.T) {
	store := newMemStore()
	uc, _, notifier := newTestUsecase(store)

	res, err := uc.Submit(context.Background(), ada("Go, SQL", " go ", "Docker"))
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, res.Outcome)
	require.Equal(t, "ada@example.com", res.Submission.User.Email)
	require.NotZero(t, res.Submission.User.ID)
	if diff := cmp.Diff([]string{"go", "sql", "docker"}, res.Submission.Skills); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, res.Submission.Skills, res.AddedSkills)

	require.Len(t, notifier.got, 1)
	require.Equal(t, "created", notifier.got[0].outcome)
}

func TestSubmit_SameSubmissionTwiceIsRejected(t *testing.T) {
	store := newMemStore()
	uc, _, notifier := newTestUsecase(store)
	ctx := context.Background()

	_, err := uc.Submit(ctx, ada("go", "sql"))
	require.NoError(t, err)

	_, err = uc.Submit(ctx, ada("SQL"))
	require.ErrorIs(t, err, ErrSubmissionExists)
	require.Equal(t, 1, store.rollbacks)
	require.Len(t, notifier.got, 1)
}

func TestSubmit_CoreFieldMismatchIsRejected(t *testing.T) {
	store := newMemStore()
	uc, _, _ := newTestUsecase(store)
	ctx := context.Background()

	_, err := uc.Submit(ctx, ada("go"))
	require.NoError(t, err)

	in := ada("rust")
	in.Location = "Paris"
	_, err = uc.Submit(ctx, in)
	require.ErrorIs(t, err, ErrUserMismatch)

	page, err := uc.ListSubmissions(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, []string{"go"}, page.Items[0].Skills)
	require.Equal(t, "London", page.Items[0].User.Location)
}

func TestSubmit_MergeAttachesOnlyNewSkills(t *testing.T) {
	store := newMemStore()
	uc, _, notifier := newTestUsecase(store)
	ctx := context.Background()

	_, err := uc.Submit(ctx, ada("go", "sql"))
	require.NoError(t, err)

	res, err := uc.Submit(ctx, ada("docker, go", "AWS"))
	require.NoError(t, err)
	require.Equal(t, OutcomeMerged, res.Outcome)
	if diff := cmp.Diff([]string{"go", "sql", "docker", "aws"}, res.Submission.Skills); diff != "" {
		t.Fatalf("merged skills mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"docker", "aws"}, res.AddedSkills)

	require.Len(t, store.state.userSkills, 4)
	require.Len(t, notifier.got, 2)
	require.Equal(t, "merged", notifier.got[1].outcome)
}

func TestSubmit_SharedSkillsAreUpsertedOnce(t *testing.T) {
	store := newMemStore()
	uc, _, _ := newTestUsecase(store)
	ctx := context.Background()

	_, err := uc.Submit(ctx, ada("go"))
	require.NoError(t, err)
	_, err = uc.Submit(ctx, submission.Input{Username: "bob", Email: "bob@example.com", Skills: []string{"GO"}})
	require.NoError(t, err)

	require.Len(t, store.state.skills, 1)
}

func TestSubmit_InvalidInput(t *testing.T) {
	store := newMemStore()
	uc, _, _ := newTestUsecase(store)

	_, err := uc.Submit(context.Background(), submission.Input{Username: "ada", Email: "nope"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, submission.ErrInvalid)
	require.Zero(t, store.commits+store.rollbacks)
}

func TestSubmit_UniqueViolationIsConflict(t *testing.T) {
	store := newMemStore()
	store.createErr = &pgconn.PgError{Code: "23505"}
	uc, _, _ := newTestUsecase(store)

	_, err := uc.Submit(context.Background(), ada("go"))
	require.ErrorIs(t, err, ErrConflict)
}

func TestSubmit_StoreErrorRollsBackAndIsInternal(t *testing.T) {
	store := newMemStore()
	store.attachErr = errors.New("connection reset")
	uc, cache, notifier := newTestUsecase(store)

	_, err := uc.Submit(context.Background(), ada("go"))
	require.ErrorIs(t, err, ErrInternal)
	require.ErrorContains(t, err, "connection reset")

	require.Empty(t, store.state.users)
	require.Empty(t, store.state.skills)
	require.Empty(t, cache.deleted)
	require.Empty(t, notifier.got)
}

func TestListSubmissions_CacheReadThroughAndInvalidation(t *testing.T) {
	store := newMemStore()
	uc, cache, _ := newTestUsecase(store)
	ctx := context.Background()

	_, err := uc.Submit(ctx, ada("go"))
	require.NoError(t, err)

	page, err := uc.ListSubmissions(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, repository.DefaultListLimit, page.Limit)
	require.Contains(t, cache.entries, SubmissionsListCacheKey(1, repository.DefaultListLimit, 0))

	_, err = uc.Submit(ctx, submission.Input{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)
	require.NotContains(t, cache.entries, SubmissionsListCacheKey(1, repository.DefaultListLimit, 0))
	require.Equal(t, int64(2), cache.entries[SubmissionsGenerationKey])
	require.Equal(t, SubmissionsListCachePattern(), cache.deleted[len(cache.deleted)-1])

	page, err = uc.ListSubmissions(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "ada@example.com", page.Items[0].User.Email)
	require.NotNil(t, page.Items[1].Skills)
}

// writeDuringRead commits a submission after the page has been read from the
// store but before the use case writes it to the cache.
type writeDuringRead struct {
	store *memStore
	write func()
}

func (q *writeDuringRead) ListSubmissions(ctx context.Context, limit, offset int) ([]submission.Submission, error) {
	items, err := q.store.ListSubmissions(ctx, limit, offset)
	if q.write != nil {
		write := q.write
		q.write = nil
		write()
	}
	return items, err
}

func TestListSubmissions_WriteDuringReadIsNotCachedStale(t *testing.T) {
	store := newMemStore()
	queries := &writeDuringRead{store: store}
	cache := newFakeCache()
	uc := NewSubmissionUsecase(store, queries, SubmissionOptions{Cache: cache})
	ctx := context.Background()

	_, err := uc.Submit(ctx, ada("go"))
	require.NoError(t, err)

	queries.write = func() {
		_, err := uc.Submit(ctx, ada("go", "rust"))
		require.NoError(t, err)
	}
	page, err := uc.ListSubmissions(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"go"}, page.Items[0].Skills)

	page, err = uc.ListSubmissions(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"go", "rust"}, page.Items[0].Skills)
}

func TestSubmit_UpsertsSkillsInSortedOrderAttachesInSubmissionOrder(t *testing.T) {
	store := newMemStore()
	uc, _, _ := newTestUsecase(store)
	ctx := context.Background()

	res, err := uc.Submit(ctx, ada("sql", "go", "docker"))
	require.NoError(t, err)
	require.Equal(t, []string{"docker", "go", "sql"}, store.upserts)
	require.Equal(t, []string{"sql", "go", "docker"}, res.Submission.Skills)

	page, err := uc.ListSubmissions(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"sql", "go", "docker"}, page.Items[0].Skills)
}

func TestListSubmissions_InvalidPaging(t *testing.T) {
	uc, _, _ := newTestUsecase(newMemStore())

	_, err := uc.ListSubmissions(context.Background(), -1, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = uc.ListSubmissions(context.Background(), 10, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListSubmissions_NeverDuplicatesSkills(t *testing.T) {
	store := newMemStore()
	uc, _, _ := newTestUsecase(store)
	ctx := context.Background()

	_, err := uc.Submit(ctx, ada("go", "sql"))
	require.NoError(t, err)
	_, err = uc.Submit(ctx, ada("go", "rust"))
	require.NoError(t, err)

	page, err := uc.ListSubmissions(ctx, 5000, 0)
	require.NoError(t, err)
	require.Equal(t, repository.MaxListLimit, page.Limit)
	require.Len(t, page.Items, 1)
	require.Equal(t, []string{"go", "sql", "rust"}, page.Items[0].Skills)
}

func TestSkillUsecase_ListSkills(t *testing.T) {
	store := newMemStore()
	uc, _, _ := newTestUsecase(store)
	_, err := uc.Submit(context.Background(), ada("sql", "go"))
	require.NoError(t, err)

	skills, err := NewSkillUsecase(memSkills{store}).ListSkills(context.Background())
	require.NoError(t, err)
	require.Len(t, skills, 2)
	require.Equal(t, "go", skills[0].Name)
}
