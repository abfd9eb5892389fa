package mocks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

var (
	_ usecase.LedgerStore          = (*MockLedgerStore)(nil)
	_ usecase.PendingCreditTracker = (*MockPendingCreditTracker)(nil)
	_ usecase.UserRepository       = (*MockUserRepository)(nil)
	_ usecase.IDGenerator          = (*MockIDGenerator)(nil)
	_ usecase.TokenIssuer          = (*MockTokenIssuer)(nil)
	_ usecase.IdempotencyStore     = (*MockIdempotencyStore)(nil)
)

// MockLedgerStore is an in-memory LedgerStore. Each balance has its own lock,
// so it enforces the same per-key serialization as the real stores.
type MockLedgerStore struct {
	mu       sync.RWMutex
	balances map[domain.BalanceKey]decimal.Decimal
	txs      map[string]*domain.Transaction
	txOrder  []string
	keyLocks sync.Map

	// GetBalanceCalls counts GetBalance invocations.
	GetBalanceCalls atomic.Int64

	GetBalanceFunc        func(ctx context.Context, username string, currency domain.Currency) (decimal.Decimal, error)
	AdjustBalanceFunc     func(ctx context.Context, username string, currency domain.Currency, delta decimal.Decimal) (decimal.Decimal, error)
	RecordTransactionFunc func(ctx context.Context, tx *domain.Transaction) (string, error)
	ApplyFunc             func(ctx context.Context, batch domain.LedgerBatch) error
}

func NewMockLedgerStore() *MockLedgerStore {
	return &MockLedgerStore{
		balances: make(map[domain.BalanceKey]decimal.Decimal),
		txs:      make(map[string]*domain.Transaction),
	}
}

// SetBalance seeds a balance.
func (m *MockLedgerStore) SetBalance(username string, currency domain.Currency, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[domain.BalanceKey{Username: username, Currency: currency}] = amount
}

// Balance reads a balance without counting it as a GetBalance call.
func (m *MockLedgerStore) Balance(username string, currency domain.Currency) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[domain.BalanceKey{Username: username, Currency: currency}]
}

// HasBalanceRow reports whether a row exists for the key.
func (m *MockLedgerStore) HasBalanceRow(username string, currency domain.Currency) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.balances[domain.BalanceKey{Username: username, Currency: currency}]
	return ok
}

// Transactions returns every recorded transaction in insertion order.
func (m *MockLedgerStore) Transactions() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, 0, len(m.txOrder))
	for _, id := range m.txOrder {
		out = append(out, m.txs[id])
	}
	return out
}

func (m *MockLedgerStore) lockKey(key domain.BalanceKey) func() {
	v, _ := m.keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (m *MockLedgerStore) GetBalance(ctx context.Context, username string, currency domain.Currency) (decimal.Decimal, error) {
	m.GetBalanceCalls.Add(1)
	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(ctx, username, currency)
	}
	return m.Balance(username, currency), nil
}

func (m *MockLedgerStore) EnsureBalance(ctx context.Context, username string, currency domain.Currency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domain.BalanceKey{Username: username, Currency: currency}
	if _, ok := m.balances[key]; !ok {
		m.balances[key] = decimal.Zero
	}
	return nil
}

func (m *MockLedgerStore) ListBalances(ctx context.Context, username string) ([]*domain.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var balances []*domain.Balance
	for key, amount := range m.balances {
		if key.Username == username {
			balances = append(balances, &domain.Balance{Username: username, Currency: key.Currency, Amount: amount})
		}
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Currency < balances[j].Currency })
	return balances, nil
}

func (m *MockLedgerStore) AdjustBalance(ctx context.Context, username string, currency domain.Currency, delta decimal.Decimal) (decimal.Decimal, error) {
	if m.AdjustBalanceFunc != nil {
		return m.AdjustBalanceFunc(ctx, username, currency, delta)
	}
	key := domain.BalanceKey{Username: username, Currency: currency}
	unlock := m.lockKey(key)
	defer unlock()
	return m.adjust(key, delta)
}

func (m *MockLedgerStore) adjust(key domain.BalanceKey, delta decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.balances[key].Add(delta)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrInsufficientFunds, key)
	}
	m.balances[key] = next
	return next, nil
}

func (m *MockLedgerStore) RecordTransaction(ctx context.Context, tx *domain.Transaction) (string, error) {
	if m.RecordTransactionFunc != nil {
		return m.RecordTransactionFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.insertLocked(tx); err != nil {
		return "", err
	}
	return tx.ID, nil
}

func (m *MockLedgerStore) insertLocked(tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if _, exists := m.txs[tx.ID]; exists {
		return fmt.Errorf("duplicate transaction id %s", tx.ID)
	}
	m.txs[tx.ID] = tx
	m.txOrder = append(m.txOrder, tx.ID)
	return nil
}

func (m *MockLedgerStore) Apply(ctx context.Context, batch domain.LedgerBatch) error {
	if m.ApplyFunc != nil {
		return m.ApplyFunc(ctx, batch)
	}

	keys := make([]domain.BalanceKey, 0, len(batch.Adjustments))
	seen := make(map[domain.BalanceKey]bool)
	for _, adj := range batch.Adjustments {
		if !seen[adj.Key] {
			seen[adj.Key] = true
			keys = append(keys, adj.Key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, key := range keys {
		unlock := m.lockKey(key)
		defer unlock()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[domain.BalanceKey]decimal.Decimal, len(keys))
	for _, adj := range batch.Adjustments {
		current, ok := next[adj.Key]
		if !ok {
			current = m.balances[adj.Key]
		}
		current = current.Add(adj.Delta)
		if current.IsNegative() {
			return fmt.Errorf("%w: %s", domain.ErrInsufficientFunds, adj.Key)
		}
		next[adj.Key] = current
	}
	for _, tx := range batch.Transactions {
		if err := tx.Validate(); err != nil {
			return err
		}
		if _, exists := m.txs[tx.ID]; exists {
			return fmt.Errorf("duplicate transaction id %s", tx.ID)
		}
	}

	for key, amount := range next {
		m.balances[key] = amount
	}
	for _, tx := range batch.Transactions {
		if err := m.insertLocked(tx); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockLedgerStore) GetTransaction(ctx context.Context, username, txid string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tx, ok := m.txs[txid]; ok && tx.Username == username {
		return tx, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockLedgerStore) ListTransactions(ctx context.Context, username string, offset, limit int) ([]*domain.Transaction, error) {
	all, _ := m.ListAllTransactions(ctx, username)
	if offset >= len(all) {
		return []*domain.Transaction{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockLedgerStore) ListAllTransactions(ctx context.Context, username string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txs []*domain.Transaction
	for _, id := range m.txOrder {
		if tx := m.txs[id]; tx.Username == username {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

// MockPendingCreditTracker is an in-memory PendingCreditTracker with expiry.
type MockPendingCreditTracker struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	now     func() time.Time

	RegisterFunc func(ctx context.Context, credit *domain.PendingCredit, ttl time.Duration) error
	ConsumeFunc  func(ctx context.Context, correlationID string) (*domain.PendingCredit, error)
}

type pendingEntry struct {
	credit    domain.PendingCredit
	expiresAt time.Time
}

func NewMockPendingCreditTracker() *MockPendingCreditTracker {
	return &MockPendingCreditTracker{
		entries: make(map[string]pendingEntry),
		now:     time.Now,
	}
}

// SetClock replaces the tracker's clock.
func (m *MockPendingCreditTracker) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Len returns the number of live entries.
func (m *MockPendingCreditTracker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if m.now().Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (m *MockPendingCreditTracker) Register(ctx context.Context, credit *domain.PendingCredit, ttl time.Duration) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, credit, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[credit.CorrelationID] = pendingEntry{credit: *credit, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MockPendingCreditTracker) Consume(ctx context.Context, correlationID string) (*domain.PendingCredit, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, correlationID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[correlationID]
	if !ok {
		return nil, domain.ErrPendingCreditNotFound
	}
	delete(m.entries, correlationID)
	if !m.now().Before(e.expiresAt) {
		return nil, domain.ErrPendingCreditNotFound
	}
	credit := e.credit
	return &credit, nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc        func(ctx context.Context, user *domain.User) error
	GetByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return domain.ErrUserExists
	}
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[username]; ok {
		u := *user
		return &u, nil
	}
	return nil, domain.ErrUserNotFound
}

// MockTokenIssuer is a mock implementation of TokenIssuer.
type MockTokenIssuer struct {
	GenerateFunc func(username string) (string, time.Time, error)
}

func (m *MockTokenIssuer) Generate(username string) (string, time.Time, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(username)
	}
	return "token-" + username, time.Unix(1700000000, 0).UTC(), nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
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
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
