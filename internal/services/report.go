package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"time"

	"online-bookstore/internal/events"
	"online-bookstore/internal/repositories"

	"github.com/shopspring/decimal"
)

// ReportStore provides the order data reporting reads, plus the daily
// aggregate writes the event subscriber performs
type ReportStore interface {
	GetSalesRows(dateFrom, dateTo *time.Time) ([]*repositories.SalesRow, error)
	GetTopBooks(limit int) ([]*repositories.TopBook, error)
	UpsertDailyStats(day time.Time, orders, booksSold int, revenue decimal.Decimal, cancelled int) error
}

// SalesSummary aggregates committed order lines over a date range
type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalItems   int             `json:"total_items"`
	TotalOrders  int             `json:"total_orders"`
}

// ReportService produces sales reports for admins. The daily sales_stats
// table is maintained by subscribing to order events, not by hooks inside
// the checkout path.
type ReportService struct {
	store ReportStore
}

// NewReportService creates a new report service
func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// Subscribe registers the service's event handlers on the bus
func (s *ReportService) Subscribe(bus *events.Bus) {
	bus.SubscribeOrderCreated(s.onOrderCreated)
	bus.SubscribeOrderStatusChanged(s.onOrderStatusChanged)
}

func (s *ReportService) onOrderCreated(event events.OrderCreated) {
	day := event.CreatedAt.Truncate(24 * time.Hour)
	if err := s.store.UpsertDailyStats(day, 1, event.BooksSold, event.TotalAmount, 0); err != nil {
		log.Printf("failed to update daily sales stats for order %d: %v", event.OrderID, err)
	}
}

func (s *ReportService) onOrderStatusChanged(event events.OrderStatusChanged) {
	if event.To != "cancelled" {
		return
	}
	day := event.ChangedAt.Truncate(24 * time.Hour)
	if err := s.store.UpsertDailyStats(day, 0, 0, decimal.Zero, 1); err != nil {
		log.Printf("failed to record cancellation for order %d: %v", event.OrderID, err)
	}
}

// GetSalesSummary aggregates order lines in a date range with exact
// decimal arithmetic
func (s *ReportService) GetSalesSummary(dateFrom, dateTo *time.Time) (*SalesSummary, error) {
	rows, err := s.store.GetSalesRows(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	summary := &SalesSummary{TotalRevenue: decimal.Zero}
	orders := make(map[int]bool)
	for _, row := range rows {
		summary.TotalRevenue = summary.TotalRevenue.Add(row.Price.Mul(decimal.NewFromInt(int64(row.Quantity))))
		summary.TotalItems += row.Quantity
		orders[row.OrderID] = true
	}
	summary.TotalOrders = len(orders)

	return summary, nil
}

// WriteSalesCSV streams the sales rows for a date range as CSV. Prices are
// written with their exact two-decimal representation.
func (s *ReportService) WriteSalesCSV(w io.Writer, dateFrom, dateTo *time.Time) error {
	rows, err := s.store.GetSalesRows(dateFrom, dateTo)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"order_id", "book_id", "book_title", "price", "quantity", "created_at"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			fmt.Sprintf("%d", row.OrderID),
			fmt.Sprintf("%d", row.BookID),
			row.BookTitle,
			row.Price.StringFixed(2),
			fmt.Sprintf("%d", row.Quantity),
			row.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// GetTopBooks retrieves the best-selling books
func (s *ReportService) GetTopBooks(limit int) ([]*repositories.TopBook, error) {
	return s.store.GetTopBooks(limit)
}
