package active

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLabels is an in-memory label store for a set of repositories.
type fakeLabels struct {
	labeled     map[domain.IssueRef]map[string]bool
	created     map[string]bool // repo/label
	projectRepo map[string][]string
	failRemove  map[domain.IssueRef]error
	failAdd     error
	failList    error
}

func newFakeLabels() *fakeLabels {
	return &fakeLabels{
		labeled:     make(map[domain.IssueRef]map[string]bool),
		created:     make(map[string]bool),
		projectRepo: make(map[string][]string),
		failRemove:  make(map[domain.IssueRef]error),
	}
}

func (f *fakeLabels) label(repo string, issue int, name string) {
	ref := domain.IssueRef{Repo: repo, Number: issue}
	if f.labeled[ref] == nil {
		f.labeled[ref] = make(map[string]bool)
	}
	f.labeled[ref][name] = true
}

func (f *fakeLabels) EnsureLabel(_ context.Context, repo, name, _ string) error {
	f.created[repo+"/"+name] = true
	return nil
}

func (f *fakeLabels) AddLabel(_ context.Context, repo string, issue int, name string) error {
	if f.failAdd != nil {
		return f.failAdd
	}
	f.label(repo, issue, name)
	return nil
}

func (f *fakeLabels) RemoveLabel(_ context.Context, repo string, issue int, name string) error {
	ref := domain.IssueRef{Repo: repo, Number: issue}
	if err := f.failRemove[ref]; err != nil {
		return err
	}
	delete(f.labeled[ref], name)
	return nil
}

func (f *fakeLabels) IssuesWithLabel(_ context.Context, repo, name string) ([]int, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	var out []int
	for _, ref := range f.holders(name) {
		if ref.Repo == repo {
			out = append(out, ref.Number)
		}
	}
	return out, nil
}

func (f *fakeLabels) ProjectIssuesWithLabel(_ context.Context, projectID, name string) ([]domain.IssueRef, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	repos := make(map[string]bool)
	for _, r := range f.projectRepo[projectID] {
		repos[r] = true
	}
	var out []domain.IssueRef
	for _, ref := range f.holders(name) {
		if repos[ref.Repo] {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (f *fakeLabels) holders(name string) []domain.IssueRef {
	var out []domain.IssueRef
	for ref, names := range f.labeled {
		if names[name] {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func ref(repo string, n int) domain.IssueRef {
	return domain.IssueRef{Repo: repo, Number: n}
}

const testLabel = "@alice:active"

func TestLabelName(t *testing.T) {
	assert.Equal(t, "@alice:active", LabelName("alice"))
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"", ScopeRepo, false},
		{"repo", ScopeRepo, false},
		{"Project", ScopeProject, false},
		{"org", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownScope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransfer_RepoScopeLeavesSingleHolder(t *testing.T) {
	labels := newFakeLabels()
	labels.label("acme/api", 7, testLabel)
	labels.label("acme/api", 8, testLabel)
	labels.label("acme/web", 3, testLabel)

	res, err := New(labels, nil).Transfer(context.Background(), Request{
		Target: ref("acme/api", 42), Scope: ScopeRepo, Label: testLabel,
	})
	require.NoError(t, err)

	assert.True(t, res.Added)
	assert.ElementsMatch(t, []domain.IssueRef{ref("acme/api", 7), ref("acme/api", 8)}, res.RemovedFrom)
	assert.True(t, labels.created["acme/api/"+testLabel])

	holders, _ := labels.IssuesWithLabel(context.Background(), "acme/api", testLabel)
	assert.Equal(t, []int{42}, holders)
	webHolders, _ := labels.IssuesWithLabel(context.Background(), "acme/web", testLabel)
	assert.Equal(t, []int{3}, webHolders, "repo scope does not touch other repositories")
}

func TestTransfer_ProjectScopeSpansRepositories(t *testing.T) {
	labels := newFakeLabels()
	labels.projectRepo["PVT_1"] = []string{"acme/api", "acme/web"}
	labels.label("acme/web", 3, testLabel)
	labels.label("other/repo", 1, testLabel)

	res, err := New(labels, nil).Transfer(context.Background(), Request{
		Target: ref("acme/api", 42), Scope: ScopeProject, Label: testLabel, ProjectID: "PVT_1",
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.IssueRef{ref("acme/web", 3)}, res.RemovedFrom)
	assert.Equal(t, []domain.IssueRef{ref("acme/api", 42), ref("other/repo", 1)}, labels.holders(testLabel))
}

func TestTransfer_ProjectScopeRequiresProject(t *testing.T) {
	_, err := New(newFakeLabels(), nil).Transfer(context.Background(), Request{
		Target: ref("acme/api", 1), Scope: ScopeProject, Label: testLabel,
	})
	assert.ErrorIs(t, err, ErrNoProject)
}

func TestTransfer_AlreadyHolder(t *testing.T) {
	labels := newFakeLabels()
	labels.label("acme/api", 42, testLabel)

	res, err := New(labels, nil).Transfer(context.Background(), Request{
		Target: ref("acme/api", 42), Label: testLabel,
	})
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.Empty(t, res.RemovedFrom)
}

func TestTransfer_TargetMatchesHolderIgnoringCase(t *testing.T) {
	labels := newFakeLabels()
	labels.projectRepo["PVT_1"] = []string{"Acme/API"}
	labels.label("Acme/API", 42, testLabel)

	res, err := New(labels, nil).Transfer(context.Background(), Request{
		Target: ref("acme/api", 42), Scope: ScopeProject, Label: testLabel, ProjectID: "PVT_1",
	})
	require.NoError(t, err)

	assert.False(t, res.Added)
	assert.Empty(t, res.RemovedFrom)
	assert.Equal(t, []domain.IssueRef{ref("Acme/API", 42)}, labels.holders(testLabel))
}

func TestTransfer_PartialRemovalStillLabelsTarget(t *testing.T) {
	labels := newFakeLabels()
	labels.label("acme/api", 7, testLabel)
	labels.label("acme/api", 8, testLabel)
	labels.failRemove[ref("acme/api", 7)] = errors.New("forbidden")

	res, err := New(labels, zap.NewNop().Sugar()).Transfer(context.Background(), Request{
		Target: ref("acme/api", 42), Scope: ScopeRepo, Label: testLabel,
	})
	require.NoError(t, err)

	assert.True(t, res.Added)
	assert.True(t, res.Partial())
	require.Len(t, res.Failed, 1)
	assert.Equal(t, ref("acme/api", 7), res.Failed[0].Ref)
	assert.Equal(t, []domain.IssueRef{ref("acme/api", 8)}, res.RemovedFrom)
}

func TestTransfer_HolderLookupFailureStillLabelsTarget(t *testing.T) {
	labels := newFakeLabels()
	labels.failList = errors.New("rate limited")

	res, err := New(labels, nil).Transfer(context.Background(), Request{
		Target: ref("acme/api", 42), Label: testLabel,
	})
	assert.Error(t, err)
	assert.True(t, res.Added)
	assert.True(t, labels.labeled[ref("acme/api", 42)][testLabel])
}

func TestTransfer_AddFailure(t *testing.T) {
	labels := newFakeLabels()
	labels.failAdd = errors.New("boom")

	_, err := New(labels, nil).Transfer(context.Background(), Request{
		Target: ref("acme/api", 42), Label: testLabel,
	})
	assert.Error(t, err)
}

type labelMock struct{ mock.Mock }

var _ LabelService = (*labelMock)(nil)

func (m *labelMock) EnsureLabel(ctx context.Context, repo, name, color string) error {
	return m.Called(ctx, repo, name, color).Error(0)
}

func (m *labelMock) AddLabel(ctx context.Context, repo string, issue int, name string) error {
	return m.Called(ctx, repo, issue, name).Error(0)
}

func (m *labelMock) RemoveLabel(ctx context.Context, repo string, issue int, name string) error {
	return m.Called(ctx, repo, issue, name).Error(0)
}

func (m *labelMock) IssuesWithLabel(ctx context.Context, repo, name string) ([]int, error) {
	args := m.Called(ctx, repo, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *labelMock) ProjectIssuesWithLabel(ctx context.Context, projectID, name string) ([]domain.IssueRef, error) {
	args := m.Called(ctx, projectID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IssueRef), args.Error(1)
}

func TestTransfer_CallSequence(t *testing.T) {
	ctx := context.Background()
	m := &labelMock{}
	m.On("EnsureLabel", ctx, "acme/api", testLabel, "ff0000").Return(errors.New("validation failed"))
	m.On("IssuesWithLabel", ctx, "acme/api", testLabel).Return([]int{5, 5, 42}, nil)
	m.On("RemoveLabel", ctx, "acme/api", 5, testLabel).Return(nil).Once()

	res, err := New(m, nil).Transfer(ctx, Request{
		Target: ref("acme/api", 42), Scope: ScopeRepo, Label: testLabel, Color: "ff0000",
	})
	require.NoError(t, err)

	assert.False(t, res.Added)
	assert.Equal(t, []domain.IssueRef{ref("acme/api", 5)}, res.RemovedFrom)
	m.AssertExpectations(t)
	m.AssertNotCalled(t, "AddLabel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
