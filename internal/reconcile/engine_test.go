package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-radar/internal/types"
)

type fakeJobStore struct {
	jobs []types.JobSummary
	err  error
}

func (f *fakeJobStore) GetJobsSince(ctx context.Context, since time.Time) ([]types.JobSummary, error) {
	return f.jobs, f.err
}

type fakeCompanyStore struct {
	profiles map[uuid.UUID]*types.CompanyProfile
	gets     int
	upserts  int
	getErr   map[uuid.UUID]error
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{
		profiles: make(map[uuid.UUID]*types.CompanyProfile),
		getErr:   make(map[uuid.UUID]error),
	}
}

func (f *fakeCompanyStore) GetCompanyProfile(ctx context.Context, id uuid.UUID) (*types.CompanyProfile, error) {
	f.gets++
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	if p, ok := f.profiles[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeCompanyStore) UpsertCompanyProfile(ctx context.Context, profile *types.CompanyProfile) error {
	f.upserts++
	copied := *profile
	f.profiles[profile.ID] = &copied
	return nil
}

type fakeExtractor struct {
	items []types.HierarchyItem
	calls int
}

func (f *fakeExtractor) ExtractHierarchy(ctx context.Context, companyName, division string) []types.HierarchyItem {
	f.calls++
	return f.items
}

func summaryFor(company, division string) types.JobSummary {
	return types.JobSummary{
		ID:            uuid.New(),
		ProviderJobID: "p-" + company,
		CompanyID:     types.CompanyID(company),
		CompanyName:   company,
		JobTitle:      "Data Engineer",
		Division:      division,
		UpdatedAt:     time.Now(),
	}
}

func newTestEngine(t *testing.T, jobs *fakeJobStore, companies *fakeCompanyStore, ex *fakeExtractor) *Engine {
	t.Helper()
	e, err := NewEngine(jobs, companies, ex, time.Hour)
	require.NoError(t, err)
	return e
}

func TestNewEngineNilCollaborators(t *testing.T) {
	_, err := NewEngine(nil, newFakeCompanyStore(), &fakeExtractor{}, 0)
	assert.Error(t, err)
	_, err = NewEngine(&fakeJobStore{}, nil, &fakeExtractor{}, 0)
	assert.Error(t, err)
	_, err = NewEngine(&fakeJobStore{}, newFakeCompanyStore(), nil, 0)
	assert.Error(t, err)
}

func TestUpdateCompanyProfilesNothingToReconcile(t *testing.T) {
	e := newTestEngine(t, &fakeJobStore{}, newFakeCompanyStore(), &fakeExtractor{})
	assert.False(t, e.UpdateCompanyProfiles(context.Background()))
}

func TestUpdateCompanyProfilesFalseOnLoadFailure(t *testing.T) {
	e := newTestEngine(t, &fakeJobStore{err: fmt.Errorf("down")}, newFakeCompanyStore(), &fakeExtractor{})
	assert.False(t, e.UpdateCompanyProfiles(context.Background()))
}

func TestUpdateCompanyProfilesCreatesProfile(t *testing.T) {
	job := summaryFor("Acme Inc", "Enterprise Data")
	companies := newFakeCompanyStore()
	ex := &fakeExtractor{items: []types.HierarchyItem{
		{Name: "Jordan Ruiz", Title: " Chief Data Officer "},
		{Name: "unknown", Title: "VP"},
	}}
	e := newTestEngine(t, &fakeJobStore{jobs: []types.JobSummary{job}}, companies, ex)

	assert.True(t, e.UpdateCompanyProfiles(context.Background()))

	profile := companies.profiles[job.CompanyID]
	require.NotNil(t, profile)
	assert.Equal(t, "Acme Inc", profile.CompanyName)
	assert.Equal(t, "Enterprise Data", profile.Division)
	// Extraction output passes through the name filter before the merge.
	require.Len(t, profile.Hierarchy, 1)
	assert.Equal(t, "Jordan Ruiz", profile.Hierarchy[0].Name)
	assert.Equal(t, "Chief Data Officer", profile.Hierarchy[0].Title)
}

func TestUpdateCompanyProfilesMergesWithoutOverwriting(t *testing.T) {
	job := summaryFor("Acme Inc", "New Division Label")
	companies := newFakeCompanyStore()
	companies.profiles[job.CompanyID] = &types.CompanyProfile{
		ID:          job.CompanyID,
		CompanyName: "Acme Inc",
		Division:    "Enterprise Data",
		Hierarchy:   []types.HierarchyItem{{Name: "Jordan Ruiz", Title: "CDO"}},
	}

	e := newTestEngine(t, &fakeJobStore{jobs: []types.JobSummary{job}}, companies, &fakeExtractor{})
	assert.True(t, e.UpdateCompanyProfiles(context.Background()))

	profile := companies.profiles[job.CompanyID]
	assert.Equal(t, "Enterprise Data", profile.Division, "existing division never blindly overwritten")
	assert.Len(t, profile.Hierarchy, 1)
}

func TestUpdateCompanyProfilesFillsEmptyDivision(t *testing.T) {
	job := summaryFor("Acme Inc", "Enterprise Data")
	companies := newFakeCompanyStore()
	companies.profiles[job.CompanyID] = &types.CompanyProfile{
		ID:          job.CompanyID,
		CompanyName: "Acme Inc",
		Hierarchy:   []types.HierarchyItem{{Name: "Jordan Ruiz", Title: "CDO"}},
		UpdatedAt:   time.Now().Add(-time.Hour),
	}

	e := newTestEngine(t, &fakeJobStore{jobs: []types.JobSummary{job}}, companies, &fakeExtractor{})
	assert.True(t, e.UpdateCompanyProfiles(context.Background()))
	assert.Equal(t, "Enterprise Data", companies.profiles[job.CompanyID].Division)
}

func TestUpdateCompanyProfilesIdempotent(t *testing.T) {
	job := summaryFor("Acme Inc", "Enterprise Data")
	companies := newFakeCompanyStore()
	ex := &fakeExtractor{items: []types.HierarchyItem{{Name: "Jordan Ruiz", Title: "CDO"}}}
	e := newTestEngine(t, &fakeJobStore{jobs: []types.JobSummary{job}}, companies, ex)

	require.True(t, e.UpdateCompanyProfiles(context.Background()))
	writesAfterFirst := companies.upserts

	require.True(t, e.UpdateCompanyProfiles(context.Background()))
	assert.Equal(t, writesAfterFirst, companies.upserts, "second run over unchanged input writes nothing")
}

func TestUpdateCompanyProfilesContinuesPastFailure(t *testing.T) {
	good := summaryFor("Acme Inc", "Enterprise Data")
	bad := summaryFor("Beta Corp", "IT")
	companies := newFakeCompanyStore()
	companies.getErr[bad.CompanyID] = fmt.Errorf("connection reset")

	e := newTestEngine(t, &fakeJobStore{jobs: []types.JobSummary{bad, good}}, companies, &fakeExtractor{})
	assert.True(t, e.UpdateCompanyProfiles(context.Background()))
	assert.NotNil(t, companies.profiles[good.CompanyID], "one bad record does not abort the batch")
}

func TestUpdateCompanyProfilesGroupsJobsByCompany(t *testing.T) {
	jobs := []types.JobSummary{
		summaryFor("Acme Inc", ""),
		summaryFor("Acme Inc", "Enterprise Data"),
		summaryFor("Acme Inc", "Cloud Platform"),
		summaryFor("Beta Corp", "IT"),
	}
	companies := newFakeCompanyStore()
	ex := &fakeExtractor{}

	e := newTestEngine(t, &fakeJobStore{jobs: jobs}, companies, ex)
	assert.True(t, e.UpdateCompanyProfiles(context.Background()))

	// Two companies in the window means two profile loads and two
	// extraction attempts, regardless of how many jobs each posted.
	assert.Equal(t, 2, companies.gets)
	assert.Equal(t, 2, ex.calls)

	profile := companies.profiles[jobs[0].CompanyID]
	require.NotNil(t, profile)
	assert.Equal(t, "Enterprise Data", profile.Division, "first non-empty division in the group wins")
}

func TestUpdateCompanyProfilesExtractsOncePerExistingCompany(t *testing.T) {
	jobs := []types.JobSummary{
		summaryFor("Acme Inc", "Enterprise Data"),
		summaryFor("Acme Inc", "Enterprise Data"),
		summaryFor("Acme Inc", "Enterprise Data"),
	}
	companies := newFakeCompanyStore()
	companies.profiles[jobs[0].CompanyID] = &types.CompanyProfile{
		ID:          jobs[0].CompanyID,
		CompanyName: "Acme Inc",
		Division:    "Enterprise Data",
	}
	ex := &fakeExtractor{}

	e := newTestEngine(t, &fakeJobStore{jobs: jobs}, companies, ex)
	assert.True(t, e.UpdateCompanyProfiles(context.Background()))

	assert.Equal(t, 1, companies.gets)
	assert.Equal(t, 1, ex.calls, "an empty hierarchy is retried once per company per pass, not per job")
}

func TestUpdateCompanyProfilesSkipsExtractionWhenHierarchyPresent(t *testing.T) {
	job := summaryFor("Acme Inc", "")
	companies := newFakeCompanyStore()
	companies.profiles[job.CompanyID] = &types.CompanyProfile{
		ID:          job.CompanyID,
		CompanyName: "Acme Inc",
		Division:    "Enterprise Data",
		Hierarchy:   []types.HierarchyItem{{Name: "Jordan Ruiz", Title: "CDO"}},
	}
	ex := &fakeExtractor{}

	e := newTestEngine(t, &fakeJobStore{jobs: []types.JobSummary{job}}, companies, ex)
	assert.True(t, e.UpdateCompanyProfiles(context.Background()))
	assert.Zero(t, ex.calls, "profiles with hierarchy data never re-extract")
}
