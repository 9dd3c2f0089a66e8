package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/way-19/consulting19/internal/domain"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

type mockComparisonRepo struct {
	mock.Mock
}

func (m *mockComparisonRepo) Get(ctx context.Context, visitorID, country string) (*domain.ComparisonSelection, error) {
	args := m.Called(ctx, visitorID, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComparisonSelection), args.Error(1)
}

func (m *mockComparisonRepo) Save(ctx context.Context, visitorID string, s *domain.ComparisonSelection) error {
	args := m.Called(ctx, visitorID, s)
	return args.Error(0)
}

func newComparisonService(t *testing.T, repo *mockComparisonRepo) *ComparisonService {
	t.Helper()
	return NewComparisonService(repo, testBundle(t), newTestLogger())
}

func TestComparisonService_Get_Empty(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	repo.On("Get", mock.Anything, visitor, "georgia").
		Return(nil, apperrors.NotFound("comparison", "georgia"))

	v, err := svc.Get(context.Background(), visitor, "Georgia")
	require.NoError(t, err)
	assert.Equal(t, "georgia", v.Country)
	assert.Empty(t, v.PackageIDs)
	assert.NotNil(t, v.PackageIDs)
	assert.False(t, v.Viewing)
	assert.Equal(t, domain.MaxComparison, v.MaxSelection)
}

func TestComparisonService_Get_UnknownCountry(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	_, err := svc.Get(context.Background(), visitor, "atlantis")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestComparisonService_Get_RepoError(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	repo.On("Get", mock.Anything, visitor, "georgia").Return(nil, errors.New("redis down"))

	_, err := svc.Get(context.Background(), visitor, "georgia")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get comparison")
}

func TestComparisonService_Toggle_Add(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	repo.On("Get", mock.Anything, visitor, "georgia").
		Return(nil, apperrors.NotFound("comparison", "georgia"))
	repo.On("Save", mock.Anything, visitor, mock.MatchedBy(func(s *domain.ComparisonSelection) bool {
		return len(s.PackageIDs) == 1 && s.PackageIDs[0] == "georgia-llc"
	})).Return(nil)

	v, err := svc.Toggle(context.Background(), visitor, "georgia", "georgia-llc")
	require.NoError(t, err)
	assert.Equal(t, []string{"georgia-llc"}, v.PackageIDs)
	require.Len(t, v.Selected, 1)
	assert.Equal(t, int64(1500), v.Selected[0].Price)
	require.NotNil(t, v.Changed)
	assert.True(t, *v.Changed)
	repo.AssertExpectations(t)
}

func TestComparisonService_Toggle_FourthPickIgnored(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	stored := &domain.ComparisonSelection{
		Country:    "georgia",
		PackageIDs: []string{"georgia-llc", "georgia-ibc", "georgia-ie"},
	}
	repo.On("Get", mock.Anything, visitor, "georgia").Return(stored, nil)

	v, err := svc.Toggle(context.Background(), visitor, "georgia", "georgia-banking")
	require.NoError(t, err)
	assert.Len(t, v.PackageIDs, 3)
	assert.True(t, v.LimitReached)
	require.NotNil(t, v.Changed)
	assert.False(t, *v.Changed)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestComparisonService_Toggle_UnknownPackage(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	repo.On("Get", mock.Anything, visitor, "georgia").
		Return(nil, apperrors.NotFound("comparison", "georgia"))

	_, err := svc.Toggle(context.Background(), visitor, "georgia", "usa-delaware-llc")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestComparisonService_Toggle_RemoveLastLeavesView(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	stored := &domain.ComparisonSelection{Country: "georgia", PackageIDs: []string{"georgia-ie"}, Viewing: true}
	repo.On("Get", mock.Anything, visitor, "georgia").Return(stored, nil)
	repo.On("Save", mock.Anything, visitor, mock.Anything).Return(nil)

	v, err := svc.Toggle(context.Background(), visitor, "georgia", "georgia-ie")
	require.NoError(t, err)
	assert.Empty(t, v.PackageIDs)
	assert.False(t, v.Viewing)
	assert.Nil(t, v.Matrix)
}

func TestComparisonService_EnterView(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	stored := &domain.ComparisonSelection{Country: "georgia", PackageIDs: []string{"georgia-llc", "georgia-ie"}}
	repo.On("Get", mock.Anything, visitor, "georgia").Return(stored, nil)
	repo.On("Save", mock.Anything, visitor, mock.Anything).Return(nil)

	v, err := svc.EnterView(context.Background(), visitor, "georgia")
	require.NoError(t, err)
	assert.True(t, v.Viewing)
	require.NotEmpty(t, v.Matrix)
	assert.Equal(t, "Company registration", v.Matrix[0].Feature)
	assert.Equal(t, []bool{true, false}, v.Matrix[0].Included)
	assert.Equal(t, len(v.Features), len(v.Matrix))
	assert.Nil(t, v.Changed)
}

func TestComparisonService_EnterView_Empty(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	repo.On("Get", mock.Anything, visitor, "georgia").
		Return(nil, apperrors.NotFound("comparison", "georgia"))

	_, err := svc.EnterView(context.Background(), visitor, "georgia")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestComparisonService_ExitView(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	stored := &domain.ComparisonSelection{Country: "georgia", PackageIDs: []string{"georgia-llc"}, Viewing: true}
	repo.On("Get", mock.Anything, visitor, "georgia").Return(stored, nil)
	repo.On("Save", mock.Anything, visitor, mock.MatchedBy(func(s *domain.ComparisonSelection) bool {
		return !s.Viewing
	})).Return(nil)

	v, err := svc.ExitView(context.Background(), visitor, "georgia")
	require.NoError(t, err)
	assert.False(t, v.Viewing)
	assert.Equal(t, []string{"georgia-llc"}, v.PackageIDs)
}

func TestComparisonService_PrunesWithdrawnPackages(t *testing.T) {
	repo := new(mockComparisonRepo)
	svc := newComparisonService(t, repo)

	stored := &domain.ComparisonSelection{Country: "georgia", PackageIDs: []string{"georgia-old", "georgia-llc"}}
	repo.On("Get", mock.Anything, visitor, "georgia").Return(stored, nil)

	v, err := svc.Get(context.Background(), visitor, "georgia")
	require.NoError(t, err)
	assert.Equal(t, []string{"georgia-llc"}, v.PackageIDs)
}
