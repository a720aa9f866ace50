package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kbdomain "supportmail-backend/internal/knowledge/domain"
)

// fakeEntryRepo is an in-memory EntryRepository
type fakeEntryRepo struct {
	entries map[string]*kbdomain.Entry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: map[string]*kbdomain.Entry{}}
}

func entryKey(category kbdomain.Category, key string) string {
	return string(category) + "/" + key
}

func (f *fakeEntryRepo) GetAll() ([]*kbdomain.Entry, error) {
	var out []*kbdomain.Entry
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEntryRepo) GetByCategory(category kbdomain.Category) ([]*kbdomain.Entry, error) {
	var out []*kbdomain.Entry
	for _, e := range f.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) Upsert(category kbdomain.Category, key, value string) (*kbdomain.Entry, error) {
	entry := &kbdomain.Entry{Category: category, Key: key, Value: value}
	f.entries[entryKey(category, key)] = entry
	return entry, nil
}

func (f *fakeEntryRepo) Delete(category kbdomain.Category, key string) error {
	delete(f.entries, entryKey(category, key))
	return nil
}

func (f *fakeEntryRepo) Count() (int64, error) {
	return int64(len(f.entries)), nil
}

func TestBuildContextMatchesKeys(t *testing.T) {
	repo := newFakeEntryRepo()
	repo.Upsert(kbdomain.CategoryPolicies, "refund_policy", "Refunds take 5-7 business days.")
	repo.Upsert(kbdomain.CategoryProducts, "pro_plan", "The Pro plan includes API access.")
	uc := NewKnowledgeUsecase(repo)

	context := uc.BuildContext("Question about refund policy", "Do I qualify?")

	assert.Contains(t, context, "refund policy: Refunds take 5-7 business days.")
	assert.NotContains(t, context, "Pro plan")
}

func TestBuildContextUnderscoreNormalization(t *testing.T) {
	repo := newFakeEntryRepo()
	repo.Upsert(kbdomain.CategoryCommonIssues, "password_reset", "Use the forgot password link.")
	uc := NewKnowledgeUsecase(repo)

	// "password reset" in the message matches the underscored key
	context := uc.BuildContext("Help", "I need a password reset")

	assert.Contains(t, context, "password reset: Use the forgot password link.")
}

func TestBuildContextNoMatch(t *testing.T) {
	repo := newFakeEntryRepo()
	repo.Upsert(kbdomain.CategoryPolicies, "refund_policy", "Refunds take 5-7 business days.")
	uc := NewKnowledgeUsecase(repo)

	context := uc.BuildContext("Unrelated", "Nothing relevant here")

	assert.Equal(t, NoMatchMarker, context)
}

func TestBuildContextCaseInsensitive(t *testing.T) {
	repo := newFakeEntryRepo()
	repo.Upsert(kbdomain.CategoryProducts, "pro_plan", "The Pro plan includes API access.")
	uc := NewKnowledgeUsecase(repo)

	context := uc.BuildContext("PRO PLAN question", "")

	assert.Contains(t, context, "The Pro plan includes API access.")
}

func TestSetRejectsUnknownCategory(t *testing.T) {
	uc := NewKnowledgeUsecase(newFakeEntryRepo())

	_, err := uc.Set(kbdomain.Category("gossip"), "key", "value")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown knowledge category")
}

func TestSetRejectsEmptyKey(t *testing.T) {
	uc := NewKnowledgeUsecase(newFakeEntryRepo())

	_, err := uc.Set(kbdomain.CategoryProducts, "   ", "value")

	require.Error(t, err)
}

func TestSetUpserts(t *testing.T) {
	repo := newFakeEntryRepo()
	uc := NewKnowledgeUsecase(repo)

	_, err := uc.Set(kbdomain.CategoryProducts, "starter_plan", "v1")
	require.NoError(t, err)
	_, err = uc.Set(kbdomain.CategoryProducts, "starter_plan", "v2")
	require.NoError(t, err)

	count, _ := repo.Count()
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "v2", repo.entries[entryKey(kbdomain.CategoryProducts, "starter_plan")].Value)
}

func TestGetAllGroupsByCategory(t *testing.T) {
	repo := newFakeEntryRepo()
	repo.Upsert(kbdomain.CategoryProducts, "pro_plan", "API access")
	repo.Upsert(kbdomain.CategoryPolicies, "refund_policy", "30 days")
	uc := NewKnowledgeUsecase(repo)

	all, err := uc.GetAll()

	require.NoError(t, err)
	assert.Equal(t, "API access", all[kbdomain.CategoryProducts]["pro_plan"])
	assert.Equal(t, "30 days", all[kbdomain.CategoryPolicies]["refund_policy"])
	// Empty categories are present, not missing
	assert.NotNil(t, all[kbdomain.CategoryCommonIssues])
}

func TestSeedDefaultsOnlyWhenEmpty(t *testing.T) {
	repo := newFakeEntryRepo()

	require.NoError(t, SeedDefaults(repo))
	count, _ := repo.Count()
	assert.Greater(t, count, int64(0))

	repo.Upsert(kbdomain.CategoryPolicies, "refund_policy", "customized")
	require.NoError(t, SeedDefaults(repo))
	assert.Equal(t, "customized", repo.entries[entryKey(kbdomain.CategoryPolicies, "refund_policy")].Value)
}

func TestDefaultEntriesCoverAllCategories(t *testing.T) {
	for _, cat := range kbdomain.Categories() {
		entries, ok := defaultEntries[cat]
		assert.True(t, ok, "no defaults for %s", cat)
		assert.NotEmpty(t, entries)
		for key := range entries {
			assert.False(t, strings.Contains(key, " "), "key %q has spaces", key)
		}
	}
}
