package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"autoshop/internal/model"
	"autoshop/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (e *testEnv) seedCompletedOrder(t *testing.T, clientID, vehicleID uuid.UUID, number, total string, completedAt time.Time) *model.WorkOrder {
	t.Helper()
	amount := mustDecimal(t, total)
	order := &model.WorkOrder{
		ID:             uuid.New(),
		Number:         number,
		ClientID:       clientID,
		VehicleID:      vehicleID,
		Status:         model.WorkOrderStatusCompleted,
		CompletedDate:  &completedAt,
		TotalLaborCost: amount,
		TotalCost:      amount,
	}
	if err := e.db.Create(order).Error; err != nil {
		t.Fatalf("seed completed order: %v", err)
	}
	return order
}

func (e *testEnv) seedServiceLine(t *testing.T, orderID, serviceID uuid.UUID, quantity int, price string) {
	t.Helper()
	p := mustDecimal(t, price)
	line := &model.WorkOrderServiceLine{
		ID:          uuid.New(),
		WorkOrderID: orderID,
		ServiceID:   serviceID,
		Quantity:    quantity,
		Price:       p,
		Total:       p.Mul(decimal.NewFromInt(int64(quantity))),
	}
	if err := e.db.Create(line).Error; err != nil {
		t.Fatalf("seed service line: %v", err)
	}
}

func TestFinancialReport_InclusiveBoundsAndRevenue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)

	// First instant of the from day and last minute of the to day are in;
	// one minute past the to day is out.
	env.seedCompletedOrder(t, client.ID, vehicle.ID, "WO-000001", "100.00",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	env.seedCompletedOrder(t, client.ID, vehicle.ID, "WO-000002", "200.00",
		time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC))
	env.seedCompletedOrder(t, client.ID, vehicle.ID, "WO-000003", "400.00",
		time.Date(2026, 4, 1, 0, 1, 0, 0, time.UTC))

	// Draft orders never count regardless of dates.
	draft := &model.WorkOrder{
		ID: uuid.New(), Number: "WO-000004", ClientID: client.ID, VehicleID: vehicle.ID,
		Status: model.WorkOrderStatusDraft, TotalCost: mustDecimal(t, "999.00"),
	}
	if err := env.db.Create(draft).Error; err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	report, err := env.reports.GetFinancialReport(ctx, "2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if report.CompletedOrders != 2 {
		t.Errorf("completed orders = %d, want 2", report.CompletedOrders)
	}
	if report.Revenue != "300.00" {
		t.Errorf("revenue = %q, want 300.00", report.Revenue)
	}
	if len(report.WorkOrders) != 2 {
		t.Errorf("detailed orders = %d, want 2", len(report.WorkOrders))
	}
}

func TestFinancialReport_EmptyPeriod(t *testing.T) {
	env := newTestEnv(t)

	report, err := env.reports.GetFinancialReport(context.Background(), "2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if report.Revenue != "0.00" {
		t.Errorf("revenue = %q, want 0.00", report.Revenue)
	}
	if report.CompletedOrders != 0 || report.IncomingRequests != 0 {
		t.Errorf("counters not zero: %d orders, %d requests", report.CompletedOrders, report.IncomingRequests)
	}
	if len(report.Services) != 0 || len(report.Parts) != 0 {
		t.Errorf("breakdowns not empty")
	}
}

func TestFinancialReport_InvalidPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct{ from, to string }{
		{"2026-03-31", "2026-03-01"}, // reversed
		{"", "2026-03-01"},           // missing from
		{"2026-03-01", ""},           // missing to
		{"31-03-2026", "2026-03-31"}, // wrong layout
	}
	for _, tc := range cases {
		if _, err := env.reports.GetFinancialReport(ctx, tc.from, tc.to); apperror.KindOf(err) != apperror.KindBadRequest {
			t.Errorf("from=%q to=%q: err = %v, want bad request", tc.from, tc.to, err)
		}
	}
}

func TestFinancialReport_UsageBreakdownRankedByQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	oilChange := env.seedCatalogService(t, "Oil change", "250.00", true)
	wash := env.seedCatalogService(t, "Wash", "30.00", true)

	when := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	orderA := env.seedCompletedOrder(t, client.ID, vehicle.ID, "WO-000001", "0.00", when)
	orderB := env.seedCompletedOrder(t, client.ID, vehicle.ID, "WO-000002", "0.00", when)

	env.seedServiceLine(t, orderA.ID, oilChange.ID, 1, "250.00")
	env.seedServiceLine(t, orderA.ID, wash.ID, 2, "30.00")
	env.seedServiceLine(t, orderB.ID, wash.ID, 3, "30.00")

	// A line pointing at a catalog row that no longer exists still counts,
	// under the unknown marker.
	env.seedServiceLine(t, orderB.ID, uuid.New(), 1, "15.00")

	report, err := env.reports.GetFinancialReport(ctx, "2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if len(report.Services) != 3 {
		t.Fatalf("service rows = %d, want 3", len(report.Services))
	}
	if report.Services[0].Name != "Wash" || report.Services[0].Quantity != 5 {
		t.Errorf("top row = %s x%d, want Wash x5", report.Services[0].Name, report.Services[0].Quantity)
	}
	if report.Services[0].Total != "150.00" {
		t.Errorf("wash total = %q, want 150.00", report.Services[0].Total)
	}
	if report.Services[0].UnitPrice != "30.00" {
		t.Errorf("wash unit price = %q, want 30.00", report.Services[0].UnitPrice)
	}

	var unknown *model.ReportUsageRow
	for i := range report.Services {
		if report.Services[i].Name == "unknown" {
			unknown = &report.Services[i]
		}
	}
	if unknown == nil {
		t.Fatal("deleted catalog item missing from breakdown")
	}
	if unknown.Total != "15.00" || unknown.Service != nil {
		t.Errorf("unknown row = %+v", unknown)
	}
}

func TestFinancialReport_CountsIncomingRequestsByCreation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)

	inside := &model.ServiceRequest{
		ID: uuid.New(), ClientID: client.ID, VehicleID: vehicle.ID,
		Status: model.RequestStatusNew, CreatedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	outside := &model.ServiceRequest{
		ID: uuid.New(), ClientID: client.ID, VehicleID: vehicle.ID,
		Status: model.RequestStatusNew, CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	for _, r := range []*model.ServiceRequest{inside, outside} {
		if err := env.db.Create(r).Error; err != nil {
			t.Fatalf("seed request: %v", err)
		}
	}

	report, err := env.reports.GetFinancialReport(ctx, "2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if report.IncomingRequests != 1 {
		t.Errorf("incoming requests = %d, want 1", report.IncomingRequests)
	}
	if len(report.ServiceRequests) != 1 || report.ServiceRequests[0].ID != inside.ID.String() {
		t.Errorf("detailed requests = %+v", report.ServiceRequests)
	}
}

func TestFinancialReportCSV_Format(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	wash := env.seedCatalogService(t, "Wash; premium", "30.00", true)

	when := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	order := env.seedCompletedOrder(t, client.ID, vehicle.ID, "WO-000001", "60.00", when)
	env.seedServiceLine(t, order.ID, wash.ID, 2, "30.00")

	report, err := env.reports.GetFinancialReport(ctx, "2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	var buf bytes.Buffer
	if err := env.reports.WriteFinancialReportCSV(&buf, report); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "\uFEFF") {
		t.Error("missing UTF-8 BOM")
	}
	if !strings.Contains(out, "Revenue;60.00\r\n") {
		t.Errorf("revenue row missing or wrong delimiter:\n%s", out)
	}
	// A name containing the delimiter must come out quoted.
	if !strings.Contains(out, `"Wash; premium";2;30.00;60.00`) {
		t.Errorf("quoted usage row missing:\n%s", out)
	}
	if !strings.Contains(out, "WO-000001;COMPLETED;") {
		t.Errorf("order row missing:\n%s", out)
	}
	if strings.Contains(strings.TrimPrefix(out, "\uFEFF"), "\n") && !strings.Contains(out, "\r\n") {
		t.Error("expected CRLF line endings")
	}
}
