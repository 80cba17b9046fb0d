package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"autoshop/internal/model"
	"autoshop/internal/repository"
	"autoshop/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const reportDateLayout = "2006-01-02"

// unknownItemName marks usage rows whose catalog record was deleted after
// the order completed; the frozen line snapshots still count.
const unknownItemName = "unknown"

type ReportService interface {
	GetFinancialReport(ctx context.Context, from, to string) (model.FinancialReport, error)
	WriteFinancialReportCSV(w io.Writer, report model.FinancialReport) error
}

type reportService struct {
	orderRepo   repository.WorkOrderRepository
	requestRepo repository.ServiceRequestRepository
}

func NewReportService(orderRepo repository.WorkOrderRepository, requestRepo repository.ServiceRequestRepository) ReportService {
	return &reportService{orderRepo: orderRepo, requestRepo: requestRepo}
}

// GetFinancialReport aggregates orders completed within [from, to], both
// bounds inclusive, plus the requests created in the same window. Sums run
// over decimals in memory rather than SQL so cents stay exact.
func (s *reportService) GetFinancialReport(ctx context.Context, from, to string) (model.FinancialReport, error) {
	fromDate, toDate, err := parseReportPeriod(from, to)
	if err != nil {
		return model.FinancialReport{}, err
	}

	orders, err := s.orderRepo.ListCompletedBetween(ctx, fromDate, toDate)
	if err != nil {
		return model.FinancialReport{}, apperror.Internal("Failed to fetch completed work orders", err)
	}

	incomingCount, err := s.requestRepo.CountCreatedBetween(ctx, fromDate, toDate)
	if err != nil {
		return model.FinancialReport{}, apperror.Internal("Failed to count service requests", err)
	}

	requests, err := s.requestRepo.ListCreatedBetween(ctx, fromDate, toDate)
	if err != nil {
		return model.FinancialReport{}, apperror.Internal("Failed to fetch service requests", err)
	}

	report := model.FinancialReport{
		Period:           model.ReportPeriod{From: from, To: to},
		CompletedOrders:  int64(len(orders)),
		IncomingRequests: incomingCount,
	}

	revenue := decimal.Zero
	serviceUsage := make(map[uuid.UUID]*usageAccumulator)
	partUsage := make(map[uuid.UUID]*usageAccumulator)

	for i := range orders {
		order := &orders[i]
		revenue = revenue.Add(order.TotalCost)

		for _, line := range order.ServiceLines {
			acc := serviceUsage[line.ServiceID]
			if acc == nil {
				acc = &usageAccumulator{id: line.ServiceID, name: unknownItemName}
				if line.Service != nil {
					acc.name = line.Service.Name
					acc.service = toReportService(line.Service)
				}
				serviceUsage[line.ServiceID] = acc
			}
			acc.quantity += line.Quantity
			acc.total = acc.total.Add(line.Total)
		}

		for _, line := range order.PartLines {
			acc := partUsage[line.PartID]
			if acc == nil {
				acc = &usageAccumulator{id: line.PartID, name: unknownItemName}
				if line.Part != nil {
					acc.name = line.Part.Name
					acc.part = toReportPart(line.Part)
				}
				partUsage[line.PartID] = acc
			}
			acc.quantity += line.Quantity
			acc.total = acc.total.Add(line.Total)
		}

		report.WorkOrders = append(report.WorkOrders, toReportWorkOrderRow(order))
	}

	report.Revenue = revenue.StringFixed(2)
	report.Services = rankUsage(serviceUsage)
	report.Parts = rankUsage(partUsage)

	report.ServiceRequests = make([]model.ReportRequestRow, 0, len(requests))
	for i := range requests {
		report.ServiceRequests = append(report.ServiceRequests, toReportRequestRow(&requests[i]))
	}

	return report, nil
}

func parseReportPeriod(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, apperror.BadRequest("Both from and to dates are required")
	}

	fromDate, err := time.Parse(reportDateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.BadRequest("Invalid from date, expected YYYY-MM-DD")
	}

	toDate, err := time.Parse(reportDateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.BadRequest("Invalid to date, expected YYYY-MM-DD")
	}

	if fromDate.After(toDate) {
		return time.Time{}, time.Time{}, apperror.BadRequest("from date must not be after to date")
	}

	// Inclusive upper bound: extend to the last instant of the to day.
	toEnd := toDate.Add(24*time.Hour - time.Nanosecond)
	return fromDate, toEnd, nil
}

type usageAccumulator struct {
	id       uuid.UUID
	name     string
	quantity int
	total    decimal.Decimal
	service  *model.ReportService
	part     *model.ReportPart
}

// rankUsage orders breakdown rows most-used first; name breaks ties so the
// output is stable.
func rankUsage(usage map[uuid.UUID]*usageAccumulator) []model.ReportUsageRow {
	rows := make([]model.ReportUsageRow, 0, len(usage))
	for _, acc := range usage {
		unitPrice := decimal.Zero
		if acc.quantity > 0 {
			unitPrice = acc.total.Div(decimal.NewFromInt(int64(acc.quantity))).Round(2)
		}
		rows = append(rows, model.ReportUsageRow{
			ID:        acc.id.String(),
			Name:      acc.name,
			Quantity:  acc.quantity,
			UnitPrice: unitPrice.StringFixed(2),
			Total:     acc.total.StringFixed(2),
			Service:   acc.service,
			Part:      acc.part,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity > rows[j].Quantity
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func toReportService(s *model.Service) *model.ReportService {
	return &model.ReportService{
		ID:          s.ID.String(),
		Name:        s.Name,
		Description: s.Description,
		BasePrice:   s.BasePrice.StringFixed(2),
		DurationMin: s.DurationMin,
		IsActive:    s.IsActive,
	}
}

func toReportPart(p *model.SparePart) *model.ReportPart {
	return &model.ReportPart{
		ID:            p.ID.String(),
		Name:          p.Name,
		Article:       p.Article,
		Unit:          p.Unit,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	}
}

func toReportWorkOrderRow(order *model.WorkOrder) model.ReportWorkOrderRow {
	row := model.ReportWorkOrderRow{
		ID:            order.ID.String(),
		Number:        order.Number,
		Status:        order.Status,
		ServicesCount: len(order.ServiceLines),
		PartsCount:    len(order.PartLines),
		ServicesTotal: order.TotalLaborCost.StringFixed(2),
		PartsTotal:    order.TotalPartsCost.StringFixed(2),
		TotalCost:     order.TotalCost.StringFixed(2),
	}

	if order.PlannedDate != nil {
		row.PlannedDate = formatTime(*order.PlannedDate)
	}
	if order.CompletedDate != nil {
		row.CompletedDate = formatTime(*order.CompletedDate)
	}
	if order.Client != nil {
		row.ClientName = order.Client.FullName()
		row.ClientPhone = order.Client.Phone
	}
	if order.Vehicle != nil {
		row.Vehicle = order.Vehicle.Describe()
	}
	if order.Request != nil {
		ref := &model.ReportRequestRef{
			ID:        order.Request.ID.String(),
			Status:    order.Request.Status,
			CreatedAt: formatTime(order.Request.CreatedAt),
		}
		if order.Request.DesiredDate != nil {
			ref.DesiredDate = formatTime(*order.Request.DesiredDate)
		}
		row.Request = ref
	}

	return row
}

func toReportRequestRow(request *model.ServiceRequest) model.ReportRequestRow {
	row := model.ReportRequestRow{
		ID:        request.ID.String(),
		Status:    request.Status,
		CreatedAt: formatTime(request.CreatedAt),
		Comment:   request.Comment,
	}
	if request.DesiredDate != nil {
		row.DesiredDate = formatTime(*request.DesiredDate)
	}
	if request.Client != nil {
		row.ClientName = request.Client.FullName()
		row.ClientPhone = request.Client.Phone
	}
	if request.Vehicle != nil {
		row.Vehicle = request.Vehicle.Describe()
	}
	return row
}

// WriteFinancialReportCSV renders the report as a spreadsheet-friendly CSV:
// UTF-8 BOM so Excel detects the encoding, semicolon delimiter, CRLF line
// endings. The report is fully computed before the first byte is written.
func (s *reportService) WriteFinancialReportCSV(w io.Writer, report model.FinancialReport) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	sections := [][]string{
		{"Financial report", fmt.Sprintf("%s - %s", report.Period.From, report.Period.To)},
		{},
		{"Revenue", report.Revenue},
		{"Completed orders", strconv.FormatInt(report.CompletedOrders, 10)},
		{"Incoming requests", strconv.FormatInt(report.IncomingRequests, 10)},
		{},
		{"Services"},
		{"Name", "Quantity", "Unit price", "Total"},
	}
	for _, record := range sections {
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	for _, row := range report.Services {
		if err := cw.Write([]string{row.Name, strconv.Itoa(row.Quantity), row.UnitPrice, row.Total}); err != nil {
			return err
		}
	}

	for _, record := range [][]string{
		{},
		{"Spare parts"},
		{"Name", "Quantity", "Unit price", "Total"},
	} {
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	for _, row := range report.Parts {
		if err := cw.Write([]string{row.Name, strconv.Itoa(row.Quantity), row.UnitPrice, row.Total}); err != nil {
			return err
		}
	}

	for _, record := range [][]string{
		{},
		{"Work orders"},
		{"Number", "Status", "Client", "Phone", "Vehicle", "Services total", "Parts total", "Total", "Completed"},
	} {
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	for _, row := range report.WorkOrders {
		record := []string{
			row.Number, row.Status, row.ClientName, row.ClientPhone, row.Vehicle,
			row.ServicesTotal, row.PartsTotal, row.TotalCost, row.CompletedDate,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	for _, record := range [][]string{
		{},
		{"Service requests"},
		{"Created", "Status", "Client", "Phone", "Vehicle", "Desired date", "Comment"},
	} {
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	for _, row := range report.ServiceRequests {
		record := []string{
			row.CreatedAt, row.Status, row.ClientName, row.ClientPhone, row.Vehicle,
			row.DesiredDate, row.Comment,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
