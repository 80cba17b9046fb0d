package service

import (
	"context"
	"testing"

	"autoshop/internal/model"
	"autoshop/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateFromRequest_AssignsSequentialNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)

	for i, want := range []string{"WO-000001", "WO-000002", "WO-000003"} {
		request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)

		order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID: request.ID.String(),
		})
		if err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
		if order.Number != want {
			t.Errorf("order %d number = %q, want %q", i, order.Number, want)
		}
		if order.Status != model.WorkOrderStatusDraft {
			t.Errorf("order %d status = %q, want DRAFT", i, order.Status)
		}
		if order.TotalCost != "0.00" {
			t.Errorf("order %d total = %q, want 0.00", i, order.TotalCost)
		}
		if order.RequestID == nil || *order.RequestID != request.ID.String() {
			t.Errorf("order %d request binding lost", i)
		}
	}
}

func TestCreateFromRequest_RetriesOnNumberCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)

	// Two existing orders occupy exactly the numbers count+1 and count+2
	// would produce, so the next creation collides twice before landing.
	for _, number := range []string{"WO-000003", "WO-000004"} {
		taken := &model.WorkOrder{
			ID:        uuid.New(),
			Number:    number,
			ClientID:  client.ID,
			VehicleID: vehicle.ID,
			Status:    model.WorkOrderStatusDraft,
		}
		if err := env.db.Create(taken).Error; err != nil {
			t.Fatalf("seed colliding order %s: %v", number, err)
		}
	}

	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
		RequestID: request.ID.String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Number != "WO-000005" {
		t.Errorf("number = %q, want WO-000005 after two collision retries", order.Number)
	}

	// Each attempt commits on its own; a retry after an aborted attempt must
	// not leave the audit entry of the losing insert behind.
	var auditCount int64
	if err := env.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionCreateWorkOrder).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit entries: %v", err)
	}
	if auditCount != 1 {
		t.Errorf("audit entries = %d, want 1", auditCount)
	}
}

func TestCreateFromRequest_Validations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)

	t.Run("missing request", func(t *testing.T) {
		_, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID: uuid.NewString(),
		})
		if apperror.KindOf(err) != apperror.KindNotFound {
			t.Errorf("err = %v, want not found", err)
		}
	})

	t.Run("cancelled request", func(t *testing.T) {
		request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusCancelled)
		_, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID: request.ID.String(),
		})
		if apperror.KindOf(err) != apperror.KindBadRequest {
			t.Errorf("err = %v, want bad request", err)
		}
	})

	t.Run("duplicate order for request", func(t *testing.T) {
		request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
		if _, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID: request.ID.String(),
		}); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID: request.ID.String(),
		})
		if apperror.KindOf(err) != apperror.KindBadRequest {
			t.Errorf("err = %v, want bad request", err)
		}
	})

	t.Run("client as responsible worker", func(t *testing.T) {
		request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
		_, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID:           request.ID.String(),
			ResponsibleWorkerID: client.ID.String(),
		})
		if apperror.KindOf(err) != apperror.KindBadRequest {
			t.Errorf("err = %v, want bad request", err)
		}
	})

	t.Run("unknown responsible worker", func(t *testing.T) {
		request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
		_, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID:           request.ID.String(),
			ResponsibleWorkerID: uuid.NewString(),
		})
		if apperror.KindOf(err) != apperror.KindNotFound {
			t.Errorf("err = %v, want not found", err)
		}
	})
}

func TestCreateFromRequest_PlannedDateSemantics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)

	t.Run("explicit wall clock value", func(t *testing.T) {
		request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
		value := "2026-03-15T09:30"
		order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID:   request.ID.String(),
			PlannedDate: &value,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if order.PlannedDate == nil || (*order.PlannedDate)[:16] != "2026-03-15T09:30" {
			t.Errorf("planned date = %v, want 2026-03-15T09:30", order.PlannedDate)
		}
	})

	t.Run("empty string clears the date", func(t *testing.T) {
		request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
		value := ""
		order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID:   request.ID.String(),
			PlannedDate: &value,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if order.PlannedDate != nil {
			t.Errorf("planned date = %v, want nil", *order.PlannedDate)
		}
	})

	t.Run("garbage value rejected", func(t *testing.T) {
		request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
		value := "next tuesday"
		_, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{
			RequestID:   request.ID.String(),
			PlannedDate: &value,
		})
		if apperror.KindOf(err) != apperror.KindBadRequest {
			t.Errorf("err = %v, want bad request", err)
		}
	})
}

func TestUpdateStatus_StampsCompletedDateOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	completed, err := env.workOrders.UpdateStatus(ctx, admin.ID.String(), order.ID, UpdateWorkOrderStatusRequest{Status: model.WorkOrderStatusCompleted})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.CompletedDate == nil {
		t.Fatal("completed date not stamped")
	}
	first := *completed.CompletedDate

	// Reopen and complete again; the original stamp must survive.
	if _, err := env.workOrders.UpdateStatus(ctx, admin.ID.String(), order.ID, UpdateWorkOrderStatusRequest{Status: model.WorkOrderStatusInProgress}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again, err := env.workOrders.UpdateStatus(ctx, admin.ID.String(), order.ID, UpdateWorkOrderStatusRequest{Status: model.WorkOrderStatusCompleted})
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if again.CompletedDate == nil || *again.CompletedDate != first {
		t.Errorf("completed date changed on re-completion: %v -> %v", first, again.CompletedDate)
	}
}

func TestLedger_AddLinesRecomputesTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
	oilChange := env.seedCatalogService(t, "Oil change", "250.00", true)
	filter := env.seedSparePart(t, "Oil filter", "10.00", true)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	order, err = env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{
		ServiceID: oilChange.ID.String(),
	})
	if err != nil {
		t.Fatalf("add service line: %v", err)
	}
	if len(order.Services) != 1 || order.Services[0].Quantity != 1 {
		t.Fatalf("quantity should default to 1, got %+v", order.Services)
	}
	if order.TotalLaborCost != "250.00" {
		t.Errorf("labor = %q, want 250.00", order.TotalLaborCost)
	}

	order, err = env.workOrders.AddPartLine(ctx, admin.ID.String(), order.ID, AddPartLineRequest{
		PartID:   filter.ID.String(),
		Quantity: 2,
	})
	if err != nil {
		t.Fatalf("add part line: %v", err)
	}
	if order.TotalPartsCost != "20.00" {
		t.Errorf("parts = %q, want 20.00", order.TotalPartsCost)
	}
	if order.TotalCost != "270.00" {
		t.Errorf("total = %q, want 270.00", order.TotalCost)
	}

	// Removing the part line drops the parts bucket back to zero.
	order, err = env.workOrders.DeletePartLine(ctx, admin.ID.String(), order.ID, order.Parts[0].ID)
	if err != nil {
		t.Fatalf("delete part line: %v", err)
	}
	if order.TotalPartsCost != "0.00" || order.TotalCost != "250.00" {
		t.Errorf("after delete: parts = %q total = %q, want 0.00 / 250.00", order.TotalPartsCost, order.TotalCost)
	}
}

func TestLedger_TotalsAccumulateAcrossDistinctLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
	diagnostics := env.seedCatalogService(t, "Diagnostics", "100.00", true)
	balancing := env.seedCatalogService(t, "Wheel balancing", "50.00", true)
	valveCap := env.seedSparePart(t, "Valve cap", "20.00", true)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 100.00 x1 + 50.00 x3 labor, 20.00 x1 parts, added one line at a time.
	if _, err := env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{ServiceID: diagnostics.ID.String()}); err != nil {
		t.Fatalf("add diagnostics: %v", err)
	}
	order, err = env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{ServiceID: balancing.ID.String(), Quantity: 3})
	if err != nil {
		t.Fatalf("add balancing: %v", err)
	}
	if order.TotalLaborCost != "250.00" {
		t.Errorf("labor after two service lines = %q, want 250.00", order.TotalLaborCost)
	}

	order, err = env.workOrders.AddPartLine(ctx, admin.ID.String(), order.ID, AddPartLineRequest{PartID: valveCap.ID.String(), Quantity: 1})
	if err != nil {
		t.Fatalf("add part: %v", err)
	}
	if len(order.Services) != 2 || len(order.Parts) != 1 {
		t.Fatalf("line counts = %d services / %d parts, want 2 / 1", len(order.Services), len(order.Parts))
	}
	if order.TotalLaborCost != "250.00" || order.TotalPartsCost != "20.00" || order.TotalCost != "270.00" {
		t.Errorf("totals = %s/%s/%s, want 250.00/20.00/270.00",
			order.TotalLaborCost, order.TotalPartsCost, order.TotalCost)
	}
}

func TestLedger_PriceSnapshotSurvivesCatalogChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
	diagnostics := env.seedCatalogService(t, "Diagnostics", "100.00", true)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	order, err = env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{ServiceID: diagnostics.ID.String()})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}

	// Catalog reprice after the fact.
	if err := env.db.Model(&model.Service{}).Where("id = ?", diagnostics.ID).Update("base_price", decimal.RequireFromString("999.99")).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}

	reloaded, err := env.workOrders.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Services[0].Price != "100.00" || reloaded.TotalCost != "100.00" {
		t.Errorf("snapshot lost: price = %q total = %q", reloaded.Services[0].Price, reloaded.TotalCost)
	}
}

func TestLedger_InactiveCatalogItemsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
	retired := env.seedCatalogService(t, "Retired service", "50.00", false)
	retiredPart := env.seedSparePart(t, "Retired part", "5.00", false)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{ServiceID: retired.ID.String()}); apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("inactive service: err = %v, want not found", err)
	}
	if _, err := env.workOrders.AddPartLine(ctx, admin.ID.String(), order.ID, AddPartLineRequest{PartID: retiredPart.ID.String()}); apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("inactive part: err = %v, want not found", err)
	}
}

func TestLedger_CompletedOrderIsFrozen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
	wash := env.seedCatalogService(t, "Wash", "30.00", true)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	order, err = env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{ServiceID: wash.ID.String()})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := env.workOrders.UpdateStatus(ctx, admin.ID.String(), order.ID, UpdateWorkOrderStatusRequest{Status: model.WorkOrderStatusCompleted}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{ServiceID: wash.ID.String()}); apperror.KindOf(err) != apperror.KindBadRequest {
		t.Errorf("add on completed: err = %v, want bad request", err)
	}
	if _, err := env.workOrders.DeleteServiceLine(ctx, admin.ID.String(), order.ID, order.Services[0].ID); apperror.KindOf(err) != apperror.KindBadRequest {
		t.Errorf("delete on completed: err = %v, want bad request", err)
	}
}

func TestLedger_DeleteLineFromWrongOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	wash := env.seedCatalogService(t, "Wash", "30.00", true)

	requestA := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
	requestB := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)

	orderA, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: requestA.ID.String()})
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	orderB, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: requestB.ID.String()})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}

	orderA, err = env.workOrders.AddServiceLine(ctx, admin.ID.String(), orderA.ID, AddServiceLineRequest{ServiceID: wash.ID.String()})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}

	// A's row addressed through B must read as missing, not as deletable.
	if _, err := env.workOrders.DeleteServiceLine(ctx, admin.ID.String(), orderB.ID, orderA.Services[0].ID); apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("err = %v, want not found", err)
	}

	reloaded, err := env.workOrders.GetByID(ctx, orderA.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Services) != 1 {
		t.Errorf("line was deleted through the wrong order")
	}
}

func TestBulkUpdate_ReplacesLineSetsAtomically(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	worker := env.seedUser(t, model.RoleWorker)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)

	oilChange := env.seedCatalogService(t, "Oil change", "250.00", true)
	diagnostics := env.seedCatalogService(t, "Diagnostics", "100.00", true)
	filter := env.seedSparePart(t, "Oil filter", "10.00", true)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	order, err = env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{ServiceID: oilChange.ID.String()})
	if err != nil {
		t.Fatalf("seed line: %v", err)
	}

	status := model.WorkOrderStatusInProgress
	workerID := worker.ID.String()
	services := []ServiceLineInput{
		{ServiceID: diagnostics.ID.String(), Quantity: 2},
	}
	parts := []PartLineInput{
		{PartID: filter.ID.String(), Quantity: 3},
	}

	order, err = env.workOrders.UpdateWorkOrder(ctx, admin.ID.String(), order.ID, UpdateWorkOrderRequest{
		Status:              &status,
		ResponsibleWorkerID: &workerID,
		Services:            &services,
		Parts:               &parts,
	})
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}

	if order.Status != model.WorkOrderStatusInProgress {
		t.Errorf("status = %q", order.Status)
	}
	if order.ResponsibleWorkerID == nil || *order.ResponsibleWorkerID != workerID {
		t.Errorf("worker not assigned")
	}
	if len(order.Services) != 1 || order.Services[0].ServiceID != diagnostics.ID.String() {
		t.Fatalf("service lines not replaced: %+v", order.Services)
	}
	if order.TotalLaborCost != "200.00" || order.TotalPartsCost != "30.00" || order.TotalCost != "230.00" {
		t.Errorf("totals = %s/%s/%s, want 200.00/30.00/230.00", order.TotalLaborCost, order.TotalPartsCost, order.TotalCost)
	}
}

func TestBulkUpdate_AllOrNothingOnBadCatalogRef(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)

	oilChange := env.seedCatalogService(t, "Oil change", "250.00", true)
	retired := env.seedCatalogService(t, "Retired", "50.00", false)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	order, err = env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{ServiceID: oilChange.ID.String()})
	if err != nil {
		t.Fatalf("seed line: %v", err)
	}

	services := []ServiceLineInput{
		{ServiceID: oilChange.ID.String()},
		{ServiceID: retired.ID.String()},
	}
	_, err = env.workOrders.UpdateWorkOrder(ctx, admin.ID.String(), order.ID, UpdateWorkOrderRequest{Services: &services})
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}

	// The existing lines and totals must be untouched.
	reloaded, err := env.workOrders.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Services) != 1 || reloaded.TotalCost != "250.00" {
		t.Errorf("order mutated by failed bulk update: %d lines, total %s", len(reloaded.Services), reloaded.TotalCost)
	}
}

func TestBulkUpdate_EmptyPayloadRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = env.workOrders.UpdateWorkOrder(ctx, admin.ID.String(), order.ID, UpdateWorkOrderRequest{})
	if apperror.KindOf(err) != apperror.KindBadRequest {
		t.Errorf("err = %v, want bad request", err)
	}
}

func TestBulkUpdate_EmptySliceWipesLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)
	wash := env.seedCatalogService(t, "Wash", "30.00", true)

	order, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	order, err = env.workOrders.AddServiceLine(ctx, admin.ID.String(), order.ID, AddServiceLineRequest{ServiceID: wash.ID.String()})
	if err != nil {
		t.Fatalf("seed line: %v", err)
	}

	services := []ServiceLineInput{}
	order, err = env.workOrders.UpdateWorkOrder(ctx, admin.ID.String(), order.ID, UpdateWorkOrderRequest{Services: &services})
	if err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if len(order.Services) != 0 || order.TotalCost != "0.00" {
		t.Errorf("lines not wiped: %d lines, total %s", len(order.Services), order.TotalCost)
	}
}

func TestCreateWritesAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	client := env.seedUser(t, model.RoleClient)
	vehicle := env.seedVehicle(t, client.ID)
	request := env.seedRequest(t, client.ID, vehicle.ID, model.RequestStatusNew)

	if _, err := env.workOrders.CreateFromRequest(ctx, admin.ID.String(), CreateWorkOrderRequest{RequestID: request.ID.String()}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var count int64
	if err := env.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionCreateWorkOrder).Count(&count).Error; err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if count != 1 {
		t.Errorf("audit entries = %d, want 1", count)
	}
}
