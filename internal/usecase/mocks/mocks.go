package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu       sync.RWMutex
	wallets  map[string]*domain.Wallet
	security map[string]domain.SecuritySettings

	CreateFunc           func(ctx context.Context, wallet *domain.Wallet, settings domain.SecuritySettings) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error)
	UpdateMoneyFunc      func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet, updatedAt time.Time) error
	GetSecurityFunc      func(ctx context.Context, id string) (domain.SecuritySettings, error)
	UpdateSecurityFunc   func(ctx context.Context, id string, settings domain.SecuritySettings, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Wallet, error)
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets:  make(map[string]*domain.Wallet),
		security: make(map[string]domain.SecuritySettings),
	}
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *domain.Wallet, settings domain.SecuritySettings) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, wallet, settings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.ID] = wallet
	m.security[wallet.ID] = settings
	return nil
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[id]; ok {
		return w, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockWalletRepository) UpdateMoney(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet, updatedAt time.Time) error {
	if m.UpdateMoneyFunc != nil {
		return m.UpdateMoneyFunc(ctx, tx, wallet, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallets[wallet.ID]; !ok {
		return domain.ErrWalletNotFound
	}
	wallet.UpdatedAt = updatedAt
	m.wallets[wallet.ID] = wallet
	return nil
}

func (m *MockWalletRepository) GetSecurity(ctx context.Context, id string) (domain.SecuritySettings, error) {
	if m.GetSecurityFunc != nil {
		return m.GetSecurityFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.security[id]; ok {
		return s, nil
	}
	return domain.SecuritySettings{}, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) UpdateSecurity(ctx context.Context, id string, settings domain.SecuritySettings, updatedAt time.Time) error {
	if m.UpdateSecurityFunc != nil {
		return m.UpdateSecurityFunc(ctx, id, settings, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallets[id]; !ok {
		return domain.ErrWalletNotFound
	}
	m.security[id] = settings
	return nil
}

func (m *MockWalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.wallets))
	for id := range m.wallets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var wallets []*domain.Wallet
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(wallets) >= limit {
			break
		}
		wallets = append(wallets, m.wallets[id])
	}
	return wallets, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	order        []string

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, completedAt *time.Time) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
	m.order = append(m.order, t.ID)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, completedAt *time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, completedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = status
	t.CompletedAt = completedAt
	return nil
}

func (m *MockTransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	// most recent first
	for i := len(m.order) - 1; i >= 0; i-- {
		t := m.transactions[m.order[i]]
		if t.WalletID == walletID {
			out = append(out, t)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *MockTransactionRepository) ListByWalletAndType(ctx context.Context, walletID string, typ domain.TransactionType, limit, offset int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for i := len(m.order) - 1; i >= 0; i-- {
		t := m.transactions[m.order[i]]
		if t.WalletID == walletID && t.Type == typ {
			out = append(out, t)
		}
	}
	return paginate(out, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// MockEscrowRepository is a mock implementation of EscrowRepository.
type MockEscrowRepository struct {
	mu      sync.RWMutex
	escrows map[string]*domain.Escrow
	order   []string

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, escrow *domain.Escrow) error
	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, escrow *domain.Escrow, updatedAt time.Time) error
}

func NewMockEscrowRepository() *MockEscrowRepository {
	return &MockEscrowRepository{
		escrows: make(map[string]*domain.Escrow),
	}
}

func (m *MockEscrowRepository) Create(ctx context.Context, tx usecase.Transaction, escrow *domain.Escrow) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, escrow)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.escrows[escrow.ID] = escrow
	m.order = append(m.order, escrow.ID)
	return nil
}

func (m *MockEscrowRepository) GetByID(ctx context.Context, id string) (*domain.Escrow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.escrows[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEscrowNotFound
}

func (m *MockEscrowRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Escrow, error) {
	return m.GetByID(ctx, id)
}

func (m *MockEscrowRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, escrow *domain.Escrow, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, escrow, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.escrows[escrow.ID]; !ok {
		return domain.ErrEscrowNotFound
	}
	m.escrows[escrow.ID] = escrow
	return nil
}

func (m *MockEscrowRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Escrow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Escrow
	for i := len(m.order) - 1; i >= 0; i-- {
		e := m.escrows[m.order[i]]
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *MockEscrowRepository) ListActiveByWallet(ctx context.Context, walletID string) ([]*domain.Escrow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Escrow
	for i := len(m.order) - 1; i >= 0; i-- {
		e := m.escrows[m.order[i]]
		if e.WalletID == walletID && e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

// MockMethodRepository is a mock implementation of MethodRepository.
type MockMethodRepository struct {
	mu      sync.RWMutex
	methods map[string]*domain.PaymentMethod
	order   []string

	CreateFunc func(ctx context.Context, method *domain.PaymentMethod) error
	DeleteFunc func(ctx context.Context, id string) error
}

func NewMockMethodRepository() *MockMethodRepository {
	return &MockMethodRepository{
		methods: make(map[string]*domain.PaymentMethod),
	}
}

func (m *MockMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, method)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Mirrors the partial unique index on (wallet_id) WHERE is_default.
	if method.IsDefault {
		for _, pm := range m.methods {
			if pm.WalletID == method.WalletID && pm.IsDefault {
				return fmt.Errorf("duplicate default method for wallet %s", method.WalletID)
			}
		}
	}
	m.methods[method.ID] = method
	m.order = append(m.order, method.ID)
	return nil
}

func (m *MockMethodRepository) GetByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if pm, ok := m.methods[id]; ok {
		return pm, nil
	}
	return nil, domain.ErrMethodNotFound
}

func (m *MockMethodRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.methods[id]; !ok {
		return domain.ErrMethodNotFound
	}
	delete(m.methods, id)
	for i, mid := range m.order {
		if mid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockMethodRepository) List(ctx context.Context, walletID string) ([]*domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PaymentMethod
	for _, id := range m.order {
		pm := m.methods[id]
		if pm.WalletID == walletID {
			out = append(out, pm)
		}
	}
	return out, nil
}

func (m *MockMethodRepository) SetDefault(ctx context.Context, walletID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.methods[id]; !ok {
		return domain.ErrMethodNotFound
	}
	for _, pm := range m.methods {
		if pm.WalletID == walletID {
			pm.IsDefault = pm.ID == id
		}
	}
	return nil
}

func (m *MockMethodRepository) ClearDefault(ctx context.Context, walletID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pm := range m.methods {
		if pm.WalletID == walletID {
			pm.IsDefault = false
		}
	}
	return nil
}

func (m *MockMethodRepository) SetVerified(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pm, ok := m.methods[id]
	if !ok {
		return domain.ErrMethodNotFound
	}
	pm.Verified = true
	return nil
}

func (m *MockMethodRepository) GetDefault(ctx context.Context, walletID string) (*domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pm := range m.methods {
		if pm.WalletID == walletID && pm.IsDefault {
			return pm, nil
		}
	}
	return nil, domain.ErrMethodNotFound
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			out = append(out, e)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.Events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.Events = kept
	return nil
}

// ByType returns the recorded events with the given event type.
func (m *MockOutboxRepository) ByType(eventType string) []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	Logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.Logs {
		if filter.WalletID != "" && l.WalletID != filter.WalletID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// MockTransaction is a mock database transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock transaction manager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator generates deterministic IDs for tests.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%06d", m.counter)
}

// MockVerificationStore is an in-memory VerificationStore.
type MockVerificationStore struct {
	mu         sync.Mutex
	codes      map[string]domain.PendingCode
	progress   map[string][]domain.Channel
	clearances map[string]string
}

func NewMockVerificationStore() *MockVerificationStore {
	return &MockVerificationStore{
		codes:      make(map[string]domain.PendingCode),
		progress:   make(map[string][]domain.Channel),
		clearances: make(map[string]string),
	}
}

func codeKey(walletID string, channel domain.Channel) string {
	return walletID + ":" + string(channel)
}

func opKey(walletID string, op domain.OperationKind) string {
	return walletID + ":" + string(op)
}

func (m *MockVerificationStore) PutCode(ctx context.Context, walletID string, channel domain.Channel, code domain.PendingCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[codeKey(walletID, channel)] = code
	return nil
}

func (m *MockVerificationStore) GetCode(ctx context.Context, walletID string, channel domain.Channel) (*domain.PendingCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.codes[codeKey(walletID, channel)]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *MockVerificationStore) DeleteCode(ctx context.Context, walletID string, channel domain.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, codeKey(walletID, channel))
	return nil
}

func (m *MockVerificationStore) PutProgress(ctx context.Context, walletID string, op domain.OperationKind, steps []domain.Channel, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[opKey(walletID, op)] = steps
	return nil
}

func (m *MockVerificationStore) GetProgress(ctx context.Context, walletID string, op domain.OperationKind) ([]domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress[opKey(walletID, op)], nil
}

func (m *MockVerificationStore) DeleteProgress(ctx context.Context, walletID string, op domain.OperationKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.progress, opKey(walletID, op))
	return nil
}

func (m *MockVerificationStore) PutClearance(ctx context.Context, walletID string, op domain.OperationKind, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearances[opKey(walletID, op)] = token
	return nil
}

func (m *MockVerificationStore) ConsumeClearance(ctx context.Context, walletID string, op domain.OperationKind, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := opKey(walletID, op)
	if m.clearances[key] != token || token == "" {
		return false, nil
	}
	delete(m.clearances, key)
	return true, nil
}

// MockCodeSender records delivered codes.
type MockCodeSender struct {
	mu        sync.Mutex
	Delivered []DeliveredCode

	DeliverFunc func(ctx context.Context, channel domain.Channel, destination, code string) error
}

type DeliveredCode struct {
	Channel     domain.Channel
	Destination string
	Code        string
}

func NewMockCodeSender() *MockCodeSender {
	return &MockCodeSender{}
}

func (m *MockCodeSender) Deliver(ctx context.Context, channel domain.Channel, destination, code string) error {
	if m.DeliverFunc != nil {
		return m.DeliverFunc(ctx, channel, destination, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delivered = append(m.Delivered, DeliveredCode{Channel: channel, Destination: destination, Code: code})
	return nil
}

// LastCode returns the most recently delivered code, or empty.
func (m *MockCodeSender) LastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Delivered) == 0 {
		return ""
	}
	return m.Delivered[len(m.Delivered)-1].Code
}

// MockDailySpendTracker is an in-memory DailySpendTracker.
type MockDailySpendTracker struct {
	mu    sync.Mutex
	spend map[string]decimal.Decimal

	AddFunc     func(ctx context.Context, walletID string, day time.Time, amount decimal.Decimal) error
	SpentOnFunc func(ctx context.Context, walletID string, day time.Time) (decimal.Decimal, error)
}

func NewMockDailySpendTracker() *MockDailySpendTracker {
	return &MockDailySpendTracker{
		spend: make(map[string]decimal.Decimal),
	}
}

func spendKey(walletID string, day time.Time) string {
	return walletID + ":" + day.UTC().Format("2006-01-02")
}

func (m *MockDailySpendTracker) Add(ctx context.Context, walletID string, day time.Time, amount decimal.Decimal) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, walletID, day, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := spendKey(walletID, day)
	m.spend[key] = m.spend[key].Add(amount)
	return nil
}

func (m *MockDailySpendTracker) SpentOn(ctx context.Context, walletID string, day time.Time) (decimal.Decimal, error) {
	if m.SpentOnFunc != nil {
		return m.SpentOnFunc(ctx, walletID, day)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spend[spendKey(walletID, day)], nil
}
