package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/way-19/consulting19/internal/domain"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

func setupTestRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func sampleWizard() *domain.Wizard {
	now := time.Now().UTC().Truncate(time.Millisecond)
	w := domain.NewWizard("wiz-001", "visitor-001", domain.VariantStandard, now)
	w.Form.CompanyName = "Acme Ltd"
	w.Form.SelectedServiceIDs = []string{"consulting"}
	return w
}

// ---------------------------------------------------------------------------
// WizardRepository
// ---------------------------------------------------------------------------

func TestWizardRepository_SaveAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewWizardRepository(client, 48*time.Hour)
	ctx := context.Background()

	w := sampleWizard()
	require.NoError(t, repo.Save(ctx, w))

	got, err := repo.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, "Acme Ltd", got.Form.CompanyName)
	assert.Equal(t, []string{"consulting"}, got.Form.SelectedServiceIDs)
	assert.Equal(t, domain.StatusStep, got.Status)
	assert.Equal(t, 48*time.Hour, mr.TTL("wizard:"+w.ID))
}

func TestWizardRepository_Get_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewWizardRepository(client, time.Hour)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWizardRepository_Get_Expired(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewWizardRepository(client, time.Hour)
	ctx := context.Background()

	w := sampleWizard()
	require.NoError(t, repo.Save(ctx, w))
	mr.FastForward(2 * time.Hour)

	_, err := repo.Get(ctx, w.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWizardRepository_Get_CorruptData(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewWizardRepository(client, time.Hour)

	require.NoError(t, mr.Set("wizard:bad", "{not json"))

	_, err := repo.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal wizard")
}

func TestWizardRepository_SaveIfVersion_NewDraft(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewWizardRepository(client, time.Hour)
	ctx := context.Background()

	w := sampleWizard()
	ok, err := repo.SaveIfVersion(ctx, w, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, w.Version)

	got, err := repo.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestWizardRepository_SaveIfVersion_Success(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewWizardRepository(client, time.Hour)
	ctx := context.Background()

	w := sampleWizard()
	ok, err := repo.SaveIfVersion(ctx, w, 0)
	require.NoError(t, err)
	require.True(t, ok)

	w.Form.Email = "jane@acme.com"
	ok, err = repo.SaveIfVersion(ctx, w, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "jane@acme.com", got.Form.Email)
}

func TestWizardRepository_SaveIfVersion_Mismatch(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewWizardRepository(client, time.Hour)
	ctx := context.Background()

	w := sampleWizard()
	_, err := repo.SaveIfVersion(ctx, w, 0)
	require.NoError(t, err)

	stale := sampleWizard()
	stale.Form.CompanyName = "Stale Co"
	ok, err := repo.SaveIfVersion(ctx, stale, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, stale.Version)

	got, err := repo.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.Form.CompanyName)
}

func TestWizardRepository_SaveIfVersion_MissingKeyWithVersion(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewWizardRepository(client, time.Hour)
	ctx := context.Background()

	w := sampleWizard()
	ok, err := repo.SaveIfVersion(ctx, w, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Get(ctx, w.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWizardRepository_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewWizardRepository(client, time.Hour)
	ctx := context.Background()

	w := sampleWizard()
	require.NoError(t, repo.Save(ctx, w))
	require.NoError(t, repo.Delete(ctx, w.ID))
	assert.False(t, mr.Exists("wizard:"+w.ID))

	// Deleting again is not an error.
	assert.NoError(t, repo.Delete(ctx, w.ID))
}

// ---------------------------------------------------------------------------
// SubmitLock
// ---------------------------------------------------------------------------

func TestSubmitLock_AcquireRelease(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewSubmitLock(client)
	ctx := context.Background()

	token, ok, err := lock.Acquire(ctx, "wiz-001", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	second, ok, err := lock.Acquire(ctx, "wiz-001", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, second)

	held, err := lock.Held(ctx, "wiz-001")
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, time.Minute, mr.TTL("wizard:lock:wiz-001"))

	require.NoError(t, lock.Release(ctx, "wiz-001", token))
	held, err = lock.Held(ctx, "wiz-001")
	require.NoError(t, err)
	assert.False(t, held)
}

func TestSubmitLock_Expires(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewSubmitLock(client)
	ctx := context.Background()

	_, ok, err := lock.Acquire(ctx, "wiz-001", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	_, ok, err = lock.Acquire(ctx, "wiz-001", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubmitLock_ReleaseIgnoresExpiredHolder(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewSubmitLock(client)
	ctx := context.Background()

	first, ok, err := lock.Acquire(ctx, "wiz-001", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	second, ok, err := lock.Acquire(ctx, "wiz-001", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, first, second)

	// The first attempt finishing late must not free the second's lock.
	require.NoError(t, lock.Release(ctx, "wiz-001", first))
	held, err := lock.Held(ctx, "wiz-001")
	require.NoError(t, err)
	assert.True(t, held)

	require.NoError(t, lock.Release(ctx, "wiz-001", second))
	held, err = lock.Held(ctx, "wiz-001")
	require.NoError(t, err)
	assert.False(t, held)
}

// ---------------------------------------------------------------------------
// PreferenceRepository
// ---------------------------------------------------------------------------

func TestPreferenceRepository_GetSet(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewPreferenceRepository(client, 24*time.Hour)
	ctx := context.Background()

	v, err := repo.Get(ctx, "visitor-001", "consulting19-language")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, repo.Set(ctx, "visitor-001", "consulting19-language", "tr"))

	v, err = repo.Get(ctx, "visitor-001", "consulting19-language")
	require.NoError(t, err)
	assert.Equal(t, "tr", v)
	assert.Equal(t, 24*time.Hour, mr.TTL("prefs:visitor-001"))

	// Other visitors are isolated.
	v, err = repo.Get(ctx, "visitor-002", "consulting19-language")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestPreferenceRepository_RedisDown(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewPreferenceRepository(client, time.Hour)
	require.NoError(t, client.Close())

	_, err := repo.Get(context.Background(), "visitor-001", "k")
	assert.Error(t, err)
	assert.Error(t, repo.Set(context.Background(), "visitor-001", "k", "v"))
}

// ---------------------------------------------------------------------------
// ComparisonRepository
// ---------------------------------------------------------------------------

func TestComparisonRepository_SaveAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewComparisonRepository(client, time.Hour)
	ctx := context.Background()

	s := &domain.ComparisonSelection{Country: "georgia", PackageIDs: []string{"georgia-llc", "georgia-ibc"}, Viewing: true}
	require.NoError(t, repo.Save(ctx, "visitor-001", s))
	assert.True(t, mr.Exists("comparison:visitor-001:georgia"))

	got, err := repo.Get(ctx, "visitor-001", "GEORGIA")
	require.NoError(t, err)
	assert.Equal(t, s.PackageIDs, got.PackageIDs)
	assert.True(t, got.Viewing)
}

func TestComparisonRepository_Get_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewComparisonRepository(client, time.Hour)

	_, err := repo.Get(context.Background(), "visitor-001", "georgia")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestComparisonRepository_Get_NullPackages(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewComparisonRepository(client, time.Hour)

	raw, err := json.Marshal(map[string]any{"country": "georgia", "package_ids": nil})
	require.NoError(t, err)
	require.NoError(t, mr.Set("comparison:visitor-001:georgia", string(raw)))

	got, err := repo.Get(context.Background(), "visitor-001", "georgia")
	require.NoError(t, err)
	assert.NotNil(t, got.PackageIDs)
	assert.Empty(t, got.PackageIDs)
}
