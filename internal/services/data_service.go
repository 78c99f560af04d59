package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"
)

// dataService implements the DataService interface over a primary store
// with a local fallback. Once the primary fails with a connection
// error the service switches wholesale to the local store; it does not
// flip back mid-session, so a degraded session stays consistent.
type dataService struct {
	primary  repositories.Store
	local    repositories.Store
	logger   *logrus.Logger
	validate *validator.Validate

	mu   sync.RWMutex
	mode StorageMode
}

// NewDataService creates a new data service. The local store may equal
// the primary when no fallback is configured.
func NewDataService(primary, local repositories.Store, logger *logrus.Logger) DataService {
	if logger == nil {
		logger = logrus.New()
	}
	return &dataService{
		primary:  primary,
		local:    local,
		logger:   logger,
		validate: validator.New(),
		mode:     ModeRemote,
	}
}

// Mode reports which backend served the most recent operation
func (s *dataService) Mode() StorageMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// ActiveStore exposes the backend currently in use
func (s *dataService) ActiveStore() repositories.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mode == ModeLocal {
		return s.local
	}
	return s.primary
}

// run executes fn against the active store, falling back to the local
// store when the primary is unreachable
func (s *dataService) run(op string, fn func(store repositories.Store) error) error {
	store := s.ActiveStore()
	err := fn(store)
	if err == nil || store == s.local {
		return err
	}

	if !repositories.IsUnavailable(err) {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"operation": op,
		"error":     err.Error(),
	}).Warn("Primary store unreachable, falling back to local store")

	s.mu.Lock()
	s.mode = ModeLocal
	s.mu.Unlock()

	return fn(s.local)
}

// Invoice operations

func (s *dataService) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*models.Invoice, error) {
	if req == nil {
		return nil, fmt.Errorf("create invoice request cannot be nil")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var invoice *models.Invoice
	err := s.run("create_invoice", func(store repositories.Store) error {
		customer, err := store.Customers().GetByID(ctx, req.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to load customer: %w", err)
		}

		taxRate := req.TaxRate
		if taxRate == nil {
			settings, err := store.Settings().Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			taxRate = &settings.TaxRate
		}

		invoice = models.NewInvoice()
		invoice.Date = req.Date
		invoice.PONumber = req.PONumber
		invoice.SalesRep = req.SalesRep
		if req.TransactionType != "" {
			invoice.TransactionType = req.TransactionType
		}
		invoice.Items = req.Items
		invoice.ShippingCost = req.ShippingCost
		invoice.AdditionalInfo = req.AdditionalInfo
		invoice.TaxRate = *taxRate
		invoice.SetCustomerSnapshot(customer)
		invoice.CalculateTotals()

		return store.Invoices().Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *dataService) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	if id == "" {
		return nil, fmt.Errorf("invoice ID cannot be empty")
	}

	var invoice *models.Invoice
	err := s.run("get_invoice", func(store repositories.Store) error {
		var err error
		invoice, err = store.Invoices().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *dataService) UpdateInvoice(ctx context.Context, id string, req *UpdateInvoiceRequest) (*models.Invoice, error) {
	if id == "" {
		return nil, fmt.Errorf("invoice ID cannot be empty")
	}
	if req == nil {
		return nil, fmt.Errorf("update invoice request cannot be nil")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var invoice *models.Invoice
	err := s.run("update_invoice", func(store repositories.Store) error {
		var err error
		invoice, err = store.Invoices().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Date != nil {
			invoice.Date = *req.Date
		}
		if req.PONumber != nil {
			invoice.PONumber = *req.PONumber
		}
		if req.SalesRep != nil {
			invoice.SalesRep = *req.SalesRep
		}
		if req.TransactionType != nil {
			invoice.TransactionType = *req.TransactionType
		}
		if req.Items != nil {
			invoice.Items = *req.Items
		}
		if req.ShippingCost != nil {
			invoice.ShippingCost = *req.ShippingCost
		}
		if req.AdditionalInfo != nil {
			invoice.AdditionalInfo = *req.AdditionalInfo
		}
		if req.Status != nil {
			invoice.Status = *req.Status
		}
		if req.TaxRate != nil {
			invoice.TaxRate = *req.TaxRate
		}
		if req.Archived != nil {
			invoice.Archived = *req.Archived
		}

		invoice.CalculateTotals()
		invoice.UpdateTimestamp()

		return store.Invoices().Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *dataService) DeleteInvoice(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("invoice ID cannot be empty")
	}
	return s.run("delete_invoice", func(store repositories.Store) error {
		return store.Invoices().Delete(ctx, id)
	})
}

func (s *dataService) ListInvoices(ctx context.Context, filters *InvoiceFilters) ([]*models.Invoice, error) {
	filterMap := map[string]interface{}{}
	if filters != nil {
		if filters.Status != nil {
			filterMap["status"] = string(*filters.Status)
		}
		if filters.TransactionType != nil {
			filterMap["transaction_type"] = string(*filters.TransactionType)
		}
		if filters.SalesRep != nil {
			filterMap["sales_rep"] = *filters.SalesRep
		}
		if filters.Archived != nil {
			filterMap["archived"] = *filters.Archived
		}
	}

	var invoices []*models.Invoice
	err := s.run("list_invoices", func(store repositories.Store) error {
		var err error
		invoices, err = store.Invoices().List(ctx, filterMap)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// Customer operations

func (s *dataService) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error) {
	if req == nil {
		return nil, fmt.Errorf("create customer request cannot be nil")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	customer := models.NewCustomer(req.Name)
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.AccountsPayableEmail = req.AccountsPayableEmail
	customer.BillToAddress = req.BillToAddress
	customer.ShipToAddress = req.ShipToAddress

	err := s.run("create_customer", func(store repositories.Store) error {
		return store.Customers().Create(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *dataService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	if id == "" {
		return nil, fmt.Errorf("customer ID cannot be empty")
	}

	var customer *models.Customer
	err := s.run("get_customer", func(store repositories.Store) error {
		var err error
		customer, err = store.Customers().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *dataService) UpdateCustomer(ctx context.Context, id string, req *UpdateCustomerRequest) (*models.Customer, error) {
	if id == "" {
		return nil, fmt.Errorf("customer ID cannot be empty")
	}
	if req == nil {
		return nil, fmt.Errorf("update customer request cannot be nil")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var customer *models.Customer
	err := s.run("update_customer", func(store repositories.Store) error {
		var err error
		customer, err = store.Customers().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			customer.Name = *req.Name
		}
		if req.Email != nil {
			customer.Email = *req.Email
		}
		if req.Phone != nil {
			customer.Phone = *req.Phone
		}
		if req.AccountsPayableEmail != nil {
			customer.AccountsPayableEmail = *req.AccountsPayableEmail
		}
		if req.BillToAddress != nil {
			customer.BillToAddress = *req.BillToAddress
		}
		if req.ShipToAddress != nil {
			customer.ShipToAddress = *req.ShipToAddress
		}
		customer.UpdateTimestamp()

		return store.Customers().Update(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *dataService) DeleteCustomer(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("customer ID cannot be empty")
	}
	// Invoices keep their customer snapshot, so deletion is safe
	return s.run("delete_customer", func(store repositories.Store) error {
		return store.Customers().Delete(ctx, id)
	})
}

func (s *dataService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	var customers []*models.Customer
	err := s.run("list_customers", func(store repositories.Store) error {
		var err error
		customers, err = store.Customers().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *dataService) SearchCustomers(ctx context.Context, query string, limit int) ([]*models.Customer, error) {
	var customers []*models.Customer
	err := s.run("search_customers", func(store repositories.Store) error {
		var err error
		customers, err = store.Customers().Search(ctx, query, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// User operations

func (s *dataService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if req == nil {
		return nil, fmt.Errorf("create user request cannot be nil")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Only salesmen can be created at runtime; the office and admin
	// accounts come from configuration
	user := models.NewUser(req.Username, req.Name, models.RoleSalesman)
	user.Email = req.Email
	user.Phone = req.Phone
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	err := s.run("create_user", func(store repositories.Store) error {
		return store.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *dataService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	var user *models.User
	err := s.run("get_user", func(store repositories.Store) error {
		var err error
		user, err = store.Users().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *dataService) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}
	if req == nil {
		return nil, fmt.Errorf("update user request cannot be nil")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user *models.User
	err := s.run("update_user", func(store repositories.Store) error {
		var err error
		user, err = store.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.Phone != nil {
			user.Phone = *req.Phone
		}
		if req.Password != nil {
			if err := user.SetPassword(*req.Password); err != nil {
				return err
			}
		}
		user.UpdateTimestamp()

		return store.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *dataService) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	return s.run("delete_user", func(store repositories.Store) error {
		user, err := store.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user.IsFixed() {
			return repositories.ValidationError("user", id,
				fmt.Errorf("the %s account cannot be deleted", user.Role))
		}
		return store.Users().Delete(ctx, id)
	})
}

func (s *dataService) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := s.run("list_users", func(store repositories.Store) error {
		var err error
		users, err = store.Users().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Settings operations

func (s *dataService) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings *models.Settings
	err := s.run("get_settings", func(store repositories.Store) error {
		var err error
		settings, err = store.Settings().Get(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *dataService) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*models.Settings, error) {
	if req == nil {
		return nil, fmt.Errorf("update settings request cannot be nil")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var settings *models.Settings
	err := s.run("update_settings", func(store repositories.Store) error {
		var err error
		settings, err = store.Settings().Get(ctx)
		if err != nil {
			return err
		}
		if req.TaxRate != nil {
			settings.TaxRate = *req.TaxRate
		}
		return store.Settings().Save(ctx, settings)
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadAll gathers every record kind in one pass, for export
func (s *dataService) LoadAll(ctx context.Context) (*models.SnapshotData, error) {
	data := &models.SnapshotData{}

	err := s.run("load_all", func(store repositories.Store) error {
		invoices, err := store.Invoices().List(ctx, nil)
		if err != nil {
			return err
		}
		customers, err := store.Customers().List(ctx)
		if err != nil {
			return err
		}
		users, err := store.Users().List(ctx)
		if err != nil {
			return err
		}
		settings, err := store.Settings().Get(ctx)
		if err != nil {
			return err
		}

		data.Invoices = make([]models.Invoice, 0, len(invoices))
		for _, invoice := range invoices {
			data.Invoices = append(data.Invoices, *invoice)
		}
		data.Customers = make([]models.Customer, 0, len(customers))
		for _, customer := range customers {
			data.Customers = append(data.Customers, *customer)
		}
		data.Users = make([]models.User, 0, len(users))
		for _, user := range users {
			data.Users = append(data.Users, *user)
		}
		data.Settings = *settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
