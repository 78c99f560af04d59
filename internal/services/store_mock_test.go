package services

import (
	"context"
	"sort"
	"strings"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"
)

// mockStore is an in-memory repositories.Store for service tests. Set
// failErr to make every operation fail, simulating an unreachable
// backend.
type mockStore struct {
	failErr   error
	invoices  map[string]*models.Invoice
	customers map[string]*models.Customer
	users     map[string]*models.User
	settings  *models.Settings
	state     map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{
		invoices:  make(map[string]*models.Invoice),
		customers: make(map[string]*models.Customer),
		users:     make(map[string]*models.User),
		state:     make(map[string]string),
	}
}

func (m *mockStore) Invoices() repositories.InvoiceRepository   { return &mockInvoices{m} }
func (m *mockStore) Customers() repositories.CustomerRepository { return &mockCustomers{m} }
func (m *mockStore) Users() repositories.UserRepository         { return &mockUsers{m} }
func (m *mockStore) Settings() repositories.SettingsRepository  { return &mockSettings{m} }
func (m *mockStore) State() repositories.StateRepository        { return &mockState{m} }

func (m *mockStore) Ping(ctx context.Context) error {
	return m.failErr
}

func (m *mockStore) Close() error { return nil }

type mockInvoices struct{ s *mockStore }

func (r *mockInvoices) Create(ctx context.Context, invoice *models.Invoice) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	if _, ok := r.s.invoices[invoice.ID]; ok {
		return repositories.DuplicateError("invoice", "id", invoice.ID)
	}
	copied := *invoice
	r.s.invoices[invoice.ID] = &copied
	return nil
}

func (r *mockInvoices) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	invoice, ok := r.s.invoices[id]
	if !ok {
		return nil, repositories.NotFoundError("invoice", id)
	}
	copied := *invoice
	return &copied, nil
}

func (r *mockInvoices) Update(ctx context.Context, invoice *models.Invoice) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	if _, ok := r.s.invoices[invoice.ID]; !ok {
		return repositories.NotFoundError("invoice", invoice.ID)
	}
	copied := *invoice
	r.s.invoices[invoice.ID] = &copied
	return nil
}

func (r *mockInvoices) Delete(ctx context.Context, id string) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	if _, ok := r.s.invoices[id]; !ok {
		return repositories.NotFoundError("invoice", id)
	}
	delete(r.s.invoices, id)
	return nil
}

func (r *mockInvoices) List(ctx context.Context, filters map[string]interface{}) ([]*models.Invoice, error) {
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	var out []*models.Invoice
	for _, invoice := range r.s.invoices {
		if status, ok := filters["status"]; ok && string(invoice.Status) != status.(string) {
			continue
		}
		copied := *invoice
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockInvoices) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	list, err := r.List(ctx, filters)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *mockInvoices) Exists(ctx context.Context, id string) (bool, error) {
	if r.s.failErr != nil {
		return false, r.s.failErr
	}
	_, ok := r.s.invoices[id]
	return ok, nil
}

func (r *mockInvoices) DeleteAll(ctx context.Context) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	r.s.invoices = make(map[string]*models.Invoice)
	return nil
}

type mockCustomers struct{ s *mockStore }

func (r *mockCustomers) Create(ctx context.Context, customer *models.Customer) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	if _, ok := r.s.customers[customer.ID]; ok {
		return repositories.DuplicateError("customer", "id", customer.ID)
	}
	copied := *customer
	r.s.customers[customer.ID] = &copied
	return nil
}

func (r *mockCustomers) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	customer, ok := r.s.customers[id]
	if !ok {
		return nil, repositories.NotFoundError("customer", id)
	}
	copied := *customer
	return &copied, nil
}

func (r *mockCustomers) Update(ctx context.Context, customer *models.Customer) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	if _, ok := r.s.customers[customer.ID]; !ok {
		return repositories.NotFoundError("customer", customer.ID)
	}
	copied := *customer
	r.s.customers[customer.ID] = &copied
	return nil
}

func (r *mockCustomers) Delete(ctx context.Context, id string) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	if _, ok := r.s.customers[id]; !ok {
		return repositories.NotFoundError("customer", id)
	}
	delete(r.s.customers, id)
	return nil
}

func (r *mockCustomers) List(ctx context.Context) ([]*models.Customer, error) {
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	var out []*models.Customer
	for _, customer := range r.s.customers {
		copied := *customer
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *mockCustomers) Search(ctx context.Context, query string, limit int) ([]*models.Customer, error) {
	customers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Customer
	for _, customer := range customers {
		if strings.Contains(strings.ToLower(customer.GetSearchableText()), strings.ToLower(query)) {
			out = append(out, customer)
		}
	}
	return out, nil
}

func (r *mockCustomers) Count(ctx context.Context) (int64, error) {
	customers, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(customers)), nil
}

func (r *mockCustomers) DeleteAll(ctx context.Context) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	r.s.customers = make(map[string]*models.Customer)
	return nil
}

type mockUsers struct{ s *mockStore }

func (r *mockUsers) Create(ctx context.Context, user *models.User) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	if _, ok := r.s.users[user.ID]; ok {
		return repositories.DuplicateError("user", "id", user.ID)
	}
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r *mockUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	user, ok := r.s.users[id]
	if !ok {
		return nil, repositories.NotFoundError("user", id)
	}
	copied := *user
	return &copied, nil
}

func (r *mockUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	for _, user := range r.s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.NotFoundError("user", username)
}

func (r *mockUsers) Update(ctx context.Context, user *models.User) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	if _, ok := r.s.users[user.ID]; !ok {
		return repositories.NotFoundError("user", user.ID)
	}
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r *mockUsers) Delete(ctx context.Context, id string) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	if _, ok := r.s.users[id]; !ok {
		return repositories.NotFoundError("user", id)
	}
	delete(r.s.users, id)
	return nil
}

func (r *mockUsers) List(ctx context.Context) ([]*models.User, error) {
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	var out []*models.User
	for _, user := range r.s.users {
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *mockUsers) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
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

func (r *mockUsers) DeleteByRole(ctx context.Context, role models.Role) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	for id, user := range r.s.users {
		if user.Role == role {
			delete(r.s.users, id)
		}
	}
	return nil
}

func (r *mockUsers) Count(ctx context.Context) (int64, error) {
	users, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}

type mockSettings struct{ s *mockStore }

func (r *mockSettings) Get(ctx context.Context) (*models.Settings, error) {
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	if r.s.settings == nil {
		return models.DefaultSettings(), nil
	}
	copied := *r.s.settings
	return &copied, nil
}

func (r *mockSettings) Save(ctx context.Context, settings *models.Settings) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	copied := *settings
	r.s.settings = &copied
	return nil
}

type mockState struct{ s *mockStore }

func (r *mockState) Get(ctx context.Context, key string) (string, error) {
	if r.s.failErr != nil {
		return "", r.s.failErr
	}
	value, ok := r.s.state[key]
	if !ok {
		return "", repositories.NotFoundError("state", key)
	}
	return value, nil
}

func (r *mockState) Set(ctx context.Context, key, value string) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	r.s.state[key] = value
	return nil
}

func (r *mockState) Delete(ctx context.Context, key string) error {
	if r.s.failErr != nil {
		return r.s.failErr
	}
	delete(r.s.state, key)
	return nil
}
