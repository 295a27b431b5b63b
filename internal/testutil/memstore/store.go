// Package memstore in-memory хранилище с семантикой репозиториев PostgreSQL.
// Используется в тестах usecase и handler: те же sentinel-ошибки, те же условные
// переходы. Транзакции выполняются параллельно, как READ COMMITTED: запись
// строки держит её блокировку до конца транзакции, GetByIDForUpdate берёт ту же
// блокировку, откат отменяет только записи своей транзакции.
// Чтение без блокировки видит незафиксированные записи.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

// Store общее состояние всех таблиц
type Store struct {
	mu sync.Mutex

	bookings map[string]domain.Booking
	slots    map[string]domain.CapacitySlot
	keys     map[string]domain.IdempotencyRecord
	payments map[string]domain.Payment
	events   map[string]domain.WebhookEvent

	failures map[string]error
	delays   map[string]time.Duration

	rowLocks map[string]*sync.Mutex
	commits  int
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		bookings: make(map[string]domain.Booking),
		slots:    make(map[string]domain.CapacitySlot),
		keys:     make(map[string]domain.IdempotencyRecord),
		payments: make(map[string]domain.Payment),
		events:   make(map[string]domain.WebhookEvent),
		failures: make(map[string]error),
		delays:   make(map[string]time.Duration),
		rowLocks: make(map[string]*sync.Mutex),
	}
}

// FailNext следующий вызов операции op (например "UpsertPaymentStatus") вернёт err
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// failure вызывается под s.mu
func (s *Store) failure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

// Delay каждое чтение op ("GetBookingForUpdate", "GetSlot") после выборки
// засыпает на d. Расширяет окно между чтением и записью в тестах гонок.
func (s *Store) Delay(op string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[op] = d
}

func (s *Store) pause(op string) {
	s.mu.Lock()
	d := s.delays[op]
	s.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
}

// Commits количество успешно завершённых транзакций
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

type txKey struct{}

// tx состояние одной транзакции. Используется только горутиной, которая её ведёт.
type tx struct {
	held map[string]*sync.Mutex
	undo []func()
}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

func (s *Store) rowLock(row string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[row]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[row] = l
	}
	return l
}

// lockRow блокировка строки: в транзакции держится до commit/rollback,
// вне транзакции снимается возвращённой функцией.
// Вызывается без s.mu: ожидание чужой блокировки не должно держать хранилище.
func (s *Store) lockRow(ctx context.Context, row string) func() {
	t := txFrom(ctx)
	if t != nil {
		if _, ok := t.held[row]; ok {
			return func() {}
		}
	}

	l := s.rowLock(row)
	l.Lock()

	if t == nil {
		return l.Unlock
	}
	t.held[row] = l
	return func() {}
}

// tryLockRow SKIP LOCKED: false, если строку держит другая транзакция.
// Вызывается под s.mu. unlock != nil только вне транзакции.
func (s *Store) tryLockRow(ctx context.Context, row string) (ok bool, unlock func()) {
	t := txFrom(ctx)
	if t != nil {
		if _, held := t.held[row]; held {
			return true, nil
		}
	}

	l, exists := s.rowLocks[row]
	if !exists {
		l = &sync.Mutex{}
		s.rowLocks[row] = l
	}
	if !l.TryLock() {
		return false, nil
	}
	if t == nil {
		return true, l.Unlock
	}
	t.held[row] = l
	return true, nil
}

// putRow записывает строку и запоминает прежнее значение для отката.
// Вызывается под s.mu, блокировка строки уже взята.
func putRow[V any](ctx context.Context, table map[string]V, key string, value V) {
	if t := txFrom(ctx); t != nil {
		prev, existed := table[key]
		t.undo = append(t.undo, func() {
			if existed {
				table[key] = prev
			} else {
				delete(table, key)
			}
		})
	}
	table[key] = value
}

// deleteRow удаляет строку с запоминанием для отката. Вызывается под s.mu.
func deleteRow[V any](ctx context.Context, table map[string]V, key string) {
	prev, existed := table[key]
	if !existed {
		return
	}
	if t := txFrom(ctx); t != nil {
		t.undo = append(t.undo, func() { table[key] = prev })
	}
	delete(table, key)
}

// TxManager транзакции над хранилищем с блокировками строк
type TxManager struct {
	store *Store
}

// TxManager менеджер транзакций над этим хранилищем
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// Do выполняет fn как одну транзакцию. Вложенный вызов переиспользует внешнюю.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	t := &tx{held: make(map[string]*sync.Mutex)}
	err := fn(context.WithValue(ctx, txKey{}, t))

	m.store.mu.Lock()
	if err != nil {
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
	} else {
		m.store.commits++
	}
	m.store.mu.Unlock()

	for _, l := range t.held {
		l.Unlock()
	}
	return err
}
