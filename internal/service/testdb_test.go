package service

import (
	"testing"

	"autoshop/internal/model"
	"autoshop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB builds an in-memory sqlite database with a hand-written schema.
// The models carry postgres defaults (gen_random_uuid) that sqlite cannot
// evaluate, so the schema is spelled out instead of auto-migrated; ids come
// from the BeforeCreate hooks.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			surname TEXT,
			email TEXT NOT NULL UNIQUE,
			phone TEXT,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE vehicles (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			make TEXT NOT NULL,
			model TEXT NOT NULL,
			year INTEGER,
			license_plate TEXT,
			vin TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE services (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			base_price NUMERIC NOT NULL,
			duration_min INTEGER,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE spare_parts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			article TEXT,
			unit TEXT DEFAULT 'pcs',
			price NUMERIC NOT NULL,
			stock_quantity INTEGER DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE service_requests (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			vehicle_id TEXT NOT NULL,
			service_id TEXT,
			desired_date DATETIME,
			comment TEXT,
			status TEXT NOT NULL DEFAULT 'NEW',
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE work_orders (
			id TEXT PRIMARY KEY,
			number TEXT NOT NULL UNIQUE,
			client_id TEXT NOT NULL,
			vehicle_id TEXT NOT NULL,
			request_id TEXT UNIQUE,
			responsible_worker_id TEXT,
			status TEXT NOT NULL DEFAULT 'DRAFT',
			planned_date DATETIME,
			completed_date DATETIME,
			total_labor_cost NUMERIC NOT NULL DEFAULT 0,
			total_parts_cost NUMERIC NOT NULL DEFAULT 0,
			total_cost NUMERIC NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE work_order_service_lines (
			id TEXT PRIMARY KEY,
			work_order_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			price NUMERIC NOT NULL,
			total NUMERIC NOT NULL,
			created_at DATETIME
		);`,
		`CREATE TABLE work_order_part_lines (
			id TEXT PRIMARY KEY,
			work_order_id TEXT NOT NULL,
			part_id TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			price NUMERIC NOT NULL,
			total NUMERIC NOT NULL,
			created_at DATETIME
		);`,
		`CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			action TEXT NOT NULL,
			entity_id TEXT,
			entity_name TEXT,
			details TEXT,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

// testEnv bundles the repositories and services under test against one db.
type testEnv struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	vehicleRepo repository.VehicleRepository
	serviceRepo repository.ServiceRepository
	partRepo    repository.SparePartRepository
	requestRepo repository.ServiceRequestRepository
	orderRepo   repository.WorkOrderRepository
	auditRepo   repository.AuditRepository

	workOrders WorkOrderService
	reports    ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)

	env := &testEnv{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		vehicleRepo: repository.NewVehicleRepository(db),
		serviceRepo: repository.NewServiceRepository(db),
		partRepo:    repository.NewSparePartRepository(db),
		requestRepo: repository.NewServiceRequestRepository(db),
		orderRepo:   repository.NewWorkOrderRepository(db),
		auditRepo:   repository.NewAuditRepository(db),
	}

	tx := repository.NewTransactionManager(db)
	env.workOrders = NewWorkOrderService(env.orderRepo, env.requestRepo, env.userRepo, env.serviceRepo, env.partRepo, env.auditRepo, tx, nil)
	env.reports = NewReportService(env.orderRepo, env.requestRepo)
	return env
}

func (e *testEnv) seedUser(t *testing.T, role string) *model.User {
	t.Helper()
	user := &model.User{
		ID:       uuid.New(),
		Name:     "Test",
		Surname:  "User",
		Email:    uuid.NewString() + "@example.com",
		Phone:    "+10000000000",
		Password: "x",
		Role:     role,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedVehicle(t *testing.T, ownerID uuid.UUID) *model.Vehicle {
	t.Helper()
	vehicle := &model.Vehicle{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Make:         "Toyota",
		Model:        "Corolla",
		LicensePlate: "A123BC",
	}
	if err := e.db.Create(vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return vehicle
}

func (e *testEnv) seedCatalogService(t *testing.T, name, price string, active bool) *model.Service {
	t.Helper()
	item := &model.Service{
		ID:        uuid.New(),
		Name:      name,
		BasePrice: mustDecimal(t, price),
		IsActive:  active,
	}
	if err := e.db.Create(item).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return item
}

func (e *testEnv) seedSparePart(t *testing.T, name, price string, active bool) *model.SparePart {
	t.Helper()
	item := &model.SparePart{
		ID:       uuid.New(),
		Name:     name,
		Unit:     "pcs",
		Price:    mustDecimal(t, price),
		IsActive: active,
	}
	if err := e.db.Create(item).Error; err != nil {
		t.Fatalf("seed spare part: %v", err)
	}
	return item
}

func (e *testEnv) seedRequest(t *testing.T, clientID, vehicleID uuid.UUID, status string) *model.ServiceRequest {
	t.Helper()
	request := &model.ServiceRequest{
		ID:        uuid.New(),
		ClientID:  clientID,
		VehicleID: vehicleID,
		Status:    status,
	}
	if err := e.db.Create(request).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return request
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}
