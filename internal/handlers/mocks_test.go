package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/core/services"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/SscSPs/mymoney_app/internal/handlers"
	"github.com/SscSPs/mymoney_app/internal/platform/config"
	"github.com/SscSPs/mymoney_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	return m.Called(ctx, accountID, userID).Error(0)
}

func (m *MockAccountService) SetInitialBalance(ctx context.Context, accountID string, balanceInitial decimal.Decimal, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, balanceInitial, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) AuthorizeAccountAccess(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockLedgerService) CreateTransaction(ctx context.Context, accountID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	return m.Called(ctx, transactionID, userID).Error(0)
}

func (m *MockLedgerService) BulkDeleteTransactions(ctx context.Context, transactionIDs []string, userID string) (int, error) {
	args := m.Called(ctx, transactionIDs, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerService) BulkReconcileTransactions(ctx context.Context, transactionIDs []string, reconciled bool, userID string) (int, error) {
	args := m.Called(ctx, transactionIDs, reconciled, userID)
	return args.Int(0), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock SchedulerService ---
type MockSchedulerService struct {
	mock.Mock
}

func (m *MockSchedulerService) GetSchedulerByID(ctx context.Context, schedulerID string, userID string) (*domain.Scheduler, error) {
	args := m.Called(ctx, schedulerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scheduler), args.Error(1)
}

func (m *MockSchedulerService) ListSchedulersByAccount(ctx context.Context, accountID string, userID string, limit int, offset int) ([]domain.Scheduler, error) {
	args := m.Called(ctx, accountID, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Scheduler), args.Error(1)
}

func (m *MockSchedulerService) GetSchedulerSummaries(ctx context.Context, accountID string, userID string) ([]domain.SchedulerSummary, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SchedulerSummary), args.Error(1)
}

func (m *MockSchedulerService) CreateScheduler(ctx context.Context, accountID string, req dto.CreateSchedulerRequest, userID string) (*domain.Scheduler, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scheduler), args.Error(1)
}

func (m *MockSchedulerService) UpdateScheduler(ctx context.Context, schedulerID string, req dto.UpdateSchedulerRequest, userID string) (*domain.Scheduler, error) {
	args := m.Called(ctx, schedulerID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scheduler), args.Error(1)
}

func (m *MockSchedulerService) DeleteScheduler(ctx context.Context, schedulerID string, userID string) error {
	return m.Called(ctx, schedulerID, userID).Error(0)
}

func (m *MockSchedulerService) ResetScheduler(ctx context.Context, schedulerID string, userID string) (*domain.Scheduler, error) {
	args := m.Called(ctx, schedulerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scheduler), args.Error(1)
}

func (m *MockSchedulerService) CloneScheduler(ctx context.Context, schedulerID string, userID string) (domain.CloneResult, error) {
	args := m.Called(ctx, schedulerID, userID)
	return args.Get(0).(domain.CloneResult), args.Error(1)
}

func (m *MockSchedulerService) ProcessAwaiting(ctx context.Context, limit int) (domain.ProcessReport, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).(domain.ProcessReport), args.Error(1)
}

var _ portssvc.SchedulerSvcFacade = (*MockSchedulerService)(nil)

// --- Mock TagService ---
type MockTagService struct {
	mock.Mock
}

func (m *MockTagService) CreateTag(ctx context.Context, req dto.CreateTagRequest, userID string) (*domain.Tag, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tag), args.Error(1)
}

func (m *MockTagService) ListTags(ctx context.Context, userID string) ([]domain.Tag, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tag), args.Error(1)
}

func (m *MockTagService) UpdateTag(ctx context.Context, tagID string, req dto.UpdateTagRequest, userID string) (*domain.Tag, error) {
	args := m.Called(ctx, tagID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tag), args.Error(1)
}

func (m *MockTagService) DeleteTag(ctx context.Context, tagID string, userID string) error {
	return m.Called(ctx, tagID, userID).Error(0)
}

func (m *MockTagService) EnsureTagOwner(ctx context.Context, tagID string, userID string) error {
	return m.Called(ctx, tagID, userID).Error(0)
}

var _ portssvc.TagSvcFacade = (*MockTagService)(nil)

// --- Shared router fixture ---

const testUserID = "0b6f1f0e-6a43-4a0c-9d7e-3c1f7a4f2b11"

// routerSuite wires the real routes and auth middleware around mocked services.
type routerSuite struct {
	suite.Suite
	router        *gin.Engine
	cfg           *config.Config
	mockAccount   *MockAccountService
	mockLedger    *MockLedgerService
	mockScheduler *MockSchedulerService
	mockTag       *MockTagService
}

func (s *routerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cfg = &config.Config{
		IsProduction:      true,
		JWTSecret:         "test-secret-key-that-is-long-enough",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "mymoney-test",
		Locale:            "en-US",
	}
	s.mockAccount = new(MockAccountService)
	s.mockLedger = new(MockLedgerService)
	s.mockScheduler = new(MockSchedulerService)
	s.mockTag = new(MockTagService)

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, s.cfg, &portssvc.ServiceContainer{
		Account:   s.mockAccount,
		Ledger:    s.mockLedger,
		Scheduler: s.mockScheduler,
		Tag:       s.mockTag,
		Auth:      services.NewAuthService(s.cfg, nil),
	})
}

// generateTestToken creates a signed access token for userID.
func (s *routerSuite) generateTestToken(userID string) string {
	token, _, err := utils.GenerateJWT(userID, s.cfg.JWTSecret, time.Hour, s.cfg.JWTIssuer, time.Now())
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

// do sends an authenticated request and returns the recorder.
func (s *routerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.generateTestToken(testUserID))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *routerSuite) TearDownTest() {
	s.mockAccount.AssertExpectations(s.T())
	s.mockLedger.AssertExpectations(s.T())
	s.mockScheduler.AssertExpectations(s.T())
	s.mockTag.AssertExpectations(s.T())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
