package submission

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/way-19/consulting19/internal/domain"
	apperrors "github.com/way-19/consulting19/pkg/errors"
	"github.com/way-19/consulting19/pkg/httpclient"
)

// --- Mocks ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domain.ServiceOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.ServiceOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceOrder), args.Error(1)
}

func (m *mockOrderRepository) GetByWizardID(ctx context.Context, wizardID string) (*domain.ServiceOrder, error) {
	args := m.Called(ctx, wizardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceOrder), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishOrderSubmitted(ctx context.Context, o *domain.ServiceOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// --- Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleOrder() *domain.ServiceOrder {
	return &domain.ServiceOrder{
		ID:        "order-001",
		WizardID:  "wiz-001",
		VisitorID: "visitor-001",
		Variant:   domain.VariantStandard,
		Status:    domain.OrderStatusReceived,
		Form: domain.OrderForm{
			CompanyName:        "Şirket Kuruluşu Ltd",
			Email:              "jane@acme.com",
			SelectedServiceIDs: []string{"consulting"},
		},
		Services:   []domain.ServiceOffering{{ID: "consulting", Name: "Business Consulting", Price: 2000}},
		TotalPrice: 2000,
		Currency:   "USD",
		CreatedAt:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

var orderNumberPattern = regexp.MustCompile(`^C19-\d{8}-[0-9A-F]{6}$`)

func TestNewOrderNumber_Format(t *testing.T) {
	n := NewOrderNumber(time.Date(2026, 3, 10, 23, 0, 0, 0, time.FixedZone("X", -3*3600)))
	assert.Regexp(t, orderNumberPattern, n)
	// Dates are taken in UTC.
	assert.Contains(t, n, "C19-20260311-")
	assert.NotEqual(t, n, NewOrderNumber(time.Now()))
}

// --- StoreSubmitter ---

func TestStoreSubmitter_Success(t *testing.T) {
	repo := new(mockOrderRepository)
	pub := new(mockPublisher)
	s := NewStoreSubmitter(repo, pub, newTestLogger())
	ctx := context.Background()
	order := sampleOrder()

	repo.On("Create", ctx, order).Return(nil)
	pub.On("PublishOrderSubmitted", ctx, order).Return(nil)

	res, err := s.Submit(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, "store", s.Name())
	assert.Regexp(t, orderNumberPattern, res.Reference)
	assert.Equal(t, res.Reference, order.OrderNumber)
	assert.Equal(t, "sirket-kurulusu-ltd", order.CompanySlug)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestStoreSubmitter_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(mockOrderRepository)
	pub := new(mockPublisher)
	s := NewStoreSubmitter(repo, pub, newTestLogger())
	ctx := context.Background()
	order := sampleOrder()

	repo.On("Create", ctx, order).Return(nil)
	pub.On("PublishOrderSubmitted", ctx, order).Return(errors.New("broker down"))

	res, err := s.Submit(ctx, order)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Reference)
}

func TestStoreSubmitter_ExistingOrderForWizard(t *testing.T) {
	repo := new(mockOrderRepository)
	pub := new(mockPublisher)
	s := NewStoreSubmitter(repo, pub, newTestLogger())
	ctx := context.Background()
	order := sampleOrder()

	repo.On("Create", ctx, order).Return(apperrors.Conflict("an order for wizard wiz-001 already exists"))
	repo.On("GetByWizardID", ctx, "wiz-001").Return(&domain.ServiceOrder{OrderNumber: "C19-20260310-AAAAAA"}, nil)

	res, err := s.Submit(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, "C19-20260310-AAAAAA", res.Reference)
	pub.AssertNotCalled(t, "PublishOrderSubmitted", mock.Anything, mock.Anything)
}

func TestStoreSubmitter_StoreError(t *testing.T) {
	repo := new(mockOrderRepository)
	pub := new(mockPublisher)
	s := NewStoreSubmitter(repo, pub, newTestLogger())
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(errors.New("connection refused"))

	_, err := s.Submit(ctx, sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store order")
}

// --- APISubmitter ---

func newBreakerClient() *httpclient.CircuitBreakerClient {
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return httpclient.NewCircuitBreakerClient(httpclient.New(cfg), httpclient.DefaultCircuitBreakerConfig(orderAPIService), nil, newTestLogger())
}

func TestAPISubmitter_Success(t *testing.T) {
	var (
		gotKey  string
		gotBody orderRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(httpclient.IdempotencyKeyHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_number":"EXT-42"}}`))
	}))
	defer srv.Close()

	s := NewAPISubmitter(newBreakerClient(), srv.URL+"/")
	order := sampleOrder()

	res, err := s.Submit(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "api", s.Name())
	assert.Equal(t, "EXT-42", res.Reference)
	assert.Equal(t, "EXT-42", order.OrderNumber)
	assert.Equal(t, "wiz-001", gotKey)
	assert.Equal(t, int64(2000), gotBody.TotalPrice)
	assert.Equal(t, []string{"consulting"}, gotBody.Form.SelectedServiceIDs)
}

func TestAPISubmitter_ValidationRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID","message":"email rejected"}}`))
	}))
	defer srv.Close()

	_, err := NewAPISubmitter(newBreakerClient(), srv.URL).Submit(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "email rejected")
}

func TestAPISubmitter_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewAPISubmitter(newBreakerClient(), srv.URL).Submit(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestAPISubmitter_MissingReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	_, err := NewAPISubmitter(newBreakerClient(), srv.URL).Submit(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reference")
}
