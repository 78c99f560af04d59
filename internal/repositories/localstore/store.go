package localstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Store implements repositories.Store on top of plain JSON files, one
// file per record kind. It is the offline fallback when the primary
// backend is unreachable, and the whole dataset of each kind is read
// and rewritten per operation. Writes go to a temp file first and are
// renamed into place so a crash never leaves a half-written file.
type Store struct {
	dir    string
	mu     sync.RWMutex
	logger *logrus.Logger

	invoices  *invoiceRepository
	customers *customerRepository
	users     *userRepository
	settings  *settingsRepository
	state     *stateRepository
}

// NewStore creates a Store rooted at dir, creating it if needed
func NewStore(dir string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, repositories.ConnectionError(err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, repositories.ConnectionError(err)
	}

	s := &Store{
		dir:    absDir,
		logger: logger,
	}
	s.invoices = &invoiceRepository{store: s}
	s.customers = &customerRepository{store: s}
	s.users = &userRepository{store: s}
	s.settings = &settingsRepository{store: s}
	s.state = &stateRepository{store: s}
	return s, nil
}

// Invoices returns the invoice repository
func (s *Store) Invoices() repositories.InvoiceRepository { return s.invoices }

// Customers returns the customer repository
func (s *Store) Customers() repositories.CustomerRepository { return s.customers }

// Users returns the user repository
func (s *Store) Users() repositories.UserRepository { return s.users }

// Settings returns the settings repository
func (s *Store) Settings() repositories.SettingsRepository { return s.settings }

// State returns the state repository
func (s *Store) State() repositories.StateRepository { return s.state }

// Ping verifies the directory is writable
func (s *Store) Ping(ctx context.Context) error {
	probe := filepath.Join(s.dir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return repositories.ConnectionError(err)
	}
	os.Remove(probe)
	return nil
}

// Close is a no-op for file-backed storage
func (s *Store) Close() error {
	return nil
}

func (s *Store) filePath(kind string) string {
	return filepath.Join(s.dir, kind+".json")
}

// readFile loads and decodes one kind's file into v. A missing file
// leaves v untouched so callers start from their zero value.
func (s *Store) readFile(kind string, v interface{}) error {
	data, err := os.ReadFile(s.filePath(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return repositories.NewRepositoryError("read", kind, "", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return repositories.NewRepositoryError("decode", kind, "", err)
	}
	return nil
}

// writeFile encodes v and atomically replaces the kind's file
func (s *Store) writeFile(kind string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return repositories.NewRepositoryError("encode", kind, "", err)
	}

	path := s.filePath(kind)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return repositories.NewRepositoryError("write", kind, "", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return repositories.NewRepositoryError("write", kind, "", err)
	}

	s.logger.WithFields(logrus.Fields{
		"kind": kind,
		"file": path,
		"size": len(data),
	}).Debug("Local store file written")

	return nil
}

// invoiceRepository implements repositories.InvoiceRepository

type invoiceRepository struct {
	store *Store
}

func (r *invoiceRepository) load() ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	if err := r.store.readFile("invoices", &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) save(invoices []*models.Invoice) error {
	return r.store.writeFile("invoices", invoices)
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return repositories.ValidationError("invoice", invoice.ID, err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	invoices, err := r.load()
	if err != nil {
		return err
	}
	for _, existing := range invoices {
		if existing.ID == invoice.ID {
			return repositories.DuplicateError("invoice", "id", invoice.ID)
		}
	}

	return r.save(append(invoices, invoice))
}

func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	invoices, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, invoice := range invoices {
		if invoice.ID == id {
			return invoice, nil
		}
	}
	return nil, repositories.NotFoundError("invoice", id)
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return repositories.ValidationError("invoice", invoice.ID, err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	invoices, err := r.load()
	if err != nil {
		return err
	}
	for i, existing := range invoices {
		if existing.ID == invoice.ID {
			invoices[i] = invoice
			return r.save(invoices)
		}
	}
	return repositories.NotFoundError("invoice", invoice.ID)
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	invoices, err := r.load()
	if err != nil {
		return err
	}
	for i, invoice := range invoices {
		if invoice.ID == id {
			return r.save(append(invoices[:i], invoices[i+1:]...))
		}
	}
	return repositories.NotFoundError("invoice", id)
}

func (r *invoiceRepository) List(ctx context.Context, filters map[string]interface{}) ([]*models.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	invoices, err := r.load()
	if err != nil {
		return nil, err
	}

	var out []*models.Invoice
	for _, invoice := range invoices {
		if matchesInvoice(invoice, filters) {
			out = append(out, invoice)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	matched, err := r.List(ctx, filters)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (r *invoiceRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *invoiceRepository) DeleteAll(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save([]*models.Invoice{})
}

func matchesInvoice(invoice *models.Invoice, filters map[string]interface{}) bool {
	for field, value := range filters {
		switch field {
		case "status":
			if string(invoice.Status) != toString(value) {
				return false
			}
		case "transaction_type":
			if string(invoice.TransactionType) != toString(value) {
				return false
			}
		case "sales_rep":
			if invoice.SalesRep != toString(value) {
				return false
			}
		case "customer_name":
			if invoice.CustomerName != toString(value) {
				return false
			}
		case "archived":
			archived, _ := value.(bool)
			if invoice.Archived != archived {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case models.InvoiceStatus:
		return string(s)
	case models.TransactionType:
		return string(s)
	default:
		return ""
	}
}

// customerRepository implements repositories.CustomerRepository

type customerRepository struct {
	store *Store
}

func (r *customerRepository) load() ([]*models.Customer, error) {
	var customers []*models.Customer
	if err := r.store.readFile("customers", &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) save(customers []*models.Customer) error {
	return r.store.writeFile("customers", customers)
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := customer.Validate(); err != nil {
		return repositories.ValidationError("customer", customer.ID, err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	customers, err := r.load()
	if err != nil {
		return err
	}
	for _, existing := range customers {
		if existing.ID == customer.ID {
			return repositories.DuplicateError("customer", "id", customer.ID)
		}
	}

	return r.save(append(customers, customer))
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	customers, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, customer := range customers {
		if customer.ID == id {
			return customer, nil
		}
	}
	return nil, repositories.NotFoundError("customer", id)
}

func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	if err := customer.Validate(); err != nil {
		return repositories.ValidationError("customer", customer.ID, err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	customers, err := r.load()
	if err != nil {
		return err
	}
	for i, existing := range customers {
		if existing.ID == customer.ID {
			customers[i] = customer
			return r.save(customers)
		}
	}
	return repositories.NotFoundError("customer", customer.ID)
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	customers, err := r.load()
	if err != nil {
		return err
	}
	for i, customer := range customers {
		if customer.ID == id {
			return r.save(append(customers[:i], customers[i+1:]...))
		}
	}
	return repositories.NotFoundError("customer", id)
}

func (r *customerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	customers, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].Name < customers[j].Name
	})
	return customers, nil
}

func (r *customerRepository) Search(ctx context.Context, query string, limit int) ([]*models.Customer, error) {
	if limit <= 0 {
		limit = 50
	}

	customers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var out []*models.Customer
	for _, customer := range customers {
		if strings.Contains(strings.ToLower(customer.GetSearchableText()), needle) {
			out = append(out, customer)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *customerRepository) Count(ctx context.Context) (int64, error) {
	customers, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(customers)), nil
}

func (r *customerRepository) DeleteAll(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save([]*models.Customer{})
}

// userRepository implements repositories.UserRepository

type userRepository struct {
	store *Store
}

func (r *userRepository) load() ([]*models.User, error) {
	var users []*models.User
	if err := r.store.readFile("users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) save(users []*models.User) error {
	return r.store.writeFile("users", users)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return repositories.ValidationError("user", user.ID, err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	for _, existing := range users {
		if existing.ID == user.ID {
			return repositories.DuplicateError("user", "id", user.ID)
		}
		if existing.Username == user.Username {
			return repositories.DuplicateError("user", "username", user.Username)
		}
	}

	return r.save(append(users, user))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repositories.NotFoundError("user", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, repositories.NotFoundError("user", username)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return repositories.ValidationError("user", user.ID, err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	for i, existing := range users {
		if existing.ID == user.ID {
			users[i] = user
			return r.save(users)
		}
	}
	return repositories.NotFoundError("user", user.ID)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	for i, user := range users {
		if user.ID == id {
			return r.save(append(users[:i], users[i+1:]...))
		}
	}
	return repositories.NotFoundError("user", id)
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.User
	for _, user := range users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *userRepository) DeleteByRole(ctx context.Context, role models.Role) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	kept := users[:0]
	for _, user := range users {
		if user.Role != role {
			kept = append(kept, user)
		}
	}
	return r.save(kept)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	users, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}

// settingsRepository implements repositories.SettingsRepository

type settingsRepository struct {
	store *Store
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var settings *models.Settings
	if err := r.store.readFile("settings", &settings); err != nil {
		return nil, err
	}
	if settings == nil {
		return models.DefaultSettings(), nil
	}
	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	if err := settings.Validate(); err != nil {
		return repositories.ValidationError("settings", "", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.writeFile("settings", settings)
}

// stateRepository implements repositories.StateRepository

type stateRepository struct {
	store *Store
}

func (r *stateRepository) load() (map[string]string, error) {
	state := make(map[string]string)
	if err := r.store.readFile("state", &state); err != nil {
		return nil, err
	}
	return state, nil
}

func (r *stateRepository) Get(ctx context.Context, key string) (string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	state, err := r.load()
	if err != nil {
		return "", err
	}
	value, ok := state[key]
	if !ok {
		return "", repositories.NotFoundError("state", key)
	}
	return value, nil
}

func (r *stateRepository) Set(ctx context.Context, key, value string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	state, err := r.load()
	if err != nil {
		return err
	}
	state[key] = value
	return r.store.writeFile("state", state)
}

func (r *stateRepository) Delete(ctx context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	state, err := r.load()
	if err != nil {
		return err
	}
	delete(state, key)
	return r.store.writeFile("state", state)
}
