package model

// FinancialReport aggregates completed work orders and incoming service
// requests over one period. Monetary fields are decimal strings, never
// floats, so exports carry exact cents.
type FinancialReport struct {
	Period           ReportPeriod         `json:"period"`
	Revenue          string               `json:"revenue"`
	CompletedOrders  int64                `json:"completed_orders"`
	IncomingRequests int64                `json:"incoming_requests"`
	Services         []ReportUsageRow     `json:"services"`
	Parts            []ReportUsageRow     `json:"parts"`
	WorkOrders       []ReportWorkOrderRow `json:"work_orders_detailed"`
	ServiceRequests  []ReportRequestRow   `json:"service_requests_detailed"`
}

type ReportPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReportUsageRow is one catalog item grouped over the completed-order
// population. Catalog is nil when the item was deleted since; Name then
// falls back to a literal unknown marker.
type ReportUsageRow struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Quantity  int            `json:"quantity"`
	UnitPrice string         `json:"unit_price"` // total / quantity, display only
	Total     string         `json:"total"`
	Service   *ReportService `json:"service,omitempty"`
	Part      *ReportPart    `json:"part,omitempty"`
}

// ReportService is the current catalog record attached to a usage row.
type ReportService struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BasePrice   string `json:"base_price"`
	DurationMin *int   `json:"duration_min"`
	IsActive    bool   `json:"is_active"`
}

// ReportPart is the current catalog record attached to a usage row.
type ReportPart struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Article       string `json:"article"`
	Unit          string `json:"unit"`
	Price         string `json:"price"`
	StockQuantity int    `json:"stock_quantity"`
	IsActive      bool   `json:"is_active"`
}

// ReportWorkOrderRow is one completed order flattened for export.
type ReportWorkOrderRow struct {
	ID            string            `json:"id"`
	Number        string            `json:"number"`
	Status        string            `json:"status"`
	PlannedDate   string            `json:"planned_date"`
	CompletedDate string            `json:"completed_date"`
	ClientName    string            `json:"client_name"`
	ClientPhone   string            `json:"client_phone"`
	Vehicle       string            `json:"vehicle"`
	ServicesCount int               `json:"services_count"`
	PartsCount    int               `json:"parts_count"`
	ServicesTotal string            `json:"services_total"`
	PartsTotal    string            `json:"parts_total"`
	TotalCost     string            `json:"total_cost"`
	Request       *ReportRequestRef `json:"request,omitempty"`
}

// ReportRequestRef flattens the originating request of a completed order.
type ReportRequestRef struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	DesiredDate string `json:"desired_date"`
	CreatedAt   string `json:"created_at"`
}

// ReportRequestRow is one incoming service request flattened for export.
type ReportRequestRow struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	DesiredDate string `json:"desired_date"`
	CreatedAt   string `json:"created_at"`
	Comment     string `json:"comment"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	Vehicle     string `json:"vehicle"`
}
