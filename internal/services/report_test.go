package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"online-bookstore/internal/events"
	"online-bookstore/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReportStore serves canned sales rows and records stat upserts
type fakeReportStore struct {
	rows    []*repositories.SalesRow
	top     []*repositories.TopBook
	upserts []statsUpsert
}

type statsUpsert struct {
	day       time.Time
	orders    int
	booksSold int
	revenue   decimal.Decimal
	cancelled int
}

func (f *fakeReportStore) GetSalesRows(dateFrom, dateTo *time.Time) ([]*repositories.SalesRow, error) {
	var out []*repositories.SalesRow
	for _, row := range f.rows {
		if dateFrom != nil && row.CreatedAt.Before(*dateFrom) {
			continue
		}
		if dateTo != nil && !row.CreatedAt.Before(*dateTo) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeReportStore) GetTopBooks(limit int) ([]*repositories.TopBook, error) {
	if limit < len(f.top) {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakeReportStore) UpsertDailyStats(day time.Time, orders, booksSold int, revenue decimal.Decimal, cancelled int) error {
	f.upserts = append(f.upserts, statsUpsert{day, orders, booksSold, revenue, cancelled})
	return nil
}

func salesFixture() []*repositories.SalesRow {
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 15, 30, 0, 0, time.UTC)
	return []*repositories.SalesRow{
		{OrderID: 1, BookID: 10, BookTitle: "Dune", Price: decimal.RequireFromString("10.99"), Quantity: 2, CreatedAt: day1},
		{OrderID: 1, BookID: 11, BookTitle: "Database Internals", Price: decimal.RequireFromString("49.99"), Quantity: 1, CreatedAt: day1},
		{OrderID: 2, BookID: 10, BookTitle: "Dune", Price: decimal.RequireFromString("10.99"), Quantity: 1, CreatedAt: day2},
	}
}

func TestGetSalesSummary(t *testing.T) {
	service := NewReportService(&fakeReportStore{rows: salesFixture()})

	summary, err := service.GetSalesSummary(nil, nil)
	require.NoError(t, err)

	// 2*10.99 + 49.99 + 10.99 = 82.96
	assert.True(t, summary.TotalRevenue.Equal(decimal.RequireFromString("82.96")),
		"revenue = %s, want 82.96", summary.TotalRevenue)
	assert.Equal(t, 4, summary.TotalItems)
	assert.Equal(t, 2, summary.TotalOrders)
}

func TestGetSalesSummaryDateFiltered(t *testing.T) {
	service := NewReportService(&fakeReportStore{rows: salesFixture()})

	from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	summary, err := service.GetSalesSummary(&from, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalOrders)
	assert.Equal(t, 1, summary.TotalItems)
	assert.True(t, summary.TotalRevenue.Equal(decimal.RequireFromString("10.99")))
}

func TestWriteSalesCSV(t *testing.T) {
	service := NewReportService(&fakeReportStore{rows: salesFixture()})

	var buf bytes.Buffer
	require.NoError(t, service.WriteSalesCSV(&buf, nil, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus three rows")

	assert.Equal(t, []string{"order_id", "book_id", "book_title", "price", "quantity", "created_at"}, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Dune", records[1][2])
	assert.Equal(t, "10.99", records[1][3], "prices keep two decimal places")
	assert.Equal(t, "2", records[1][4])
	assert.Equal(t, "49.99", records[2][3])
}

func TestReportSubscriberFoldsOrderEvents(t *testing.T) {
	store := &fakeReportStore{}
	service := NewReportService(store)
	bus := events.NewBus()
	service.Subscribe(bus)

	createdAt := time.Date(2024, 3, 1, 9, 45, 0, 0, time.UTC)
	bus.PublishOrderCreated(events.OrderCreated{
		OrderID:     5,
		UserID:      7,
		TotalAmount: decimal.RequireFromString("25.00"),
		BooksSold:   3,
		CreatedAt:   createdAt,
	})

	require.Len(t, store.upserts, 1)
	up := store.upserts[0]
	assert.Equal(t, 1, up.orders)
	assert.Equal(t, 3, up.booksSold)
	assert.True(t, up.revenue.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, 0, up.cancelled)
	assert.Equal(t, createdAt.Truncate(24*time.Hour), up.day)
}

func TestReportSubscriberCountsCancellations(t *testing.T) {
	store := &fakeReportStore{}
	service := NewReportService(store)
	bus := events.NewBus()
	service.Subscribe(bus)

	bus.PublishOrderStatusChanged(events.OrderStatusChanged{
		OrderID:   5,
		From:      "processing",
		To:        "cancelled",
		ChangedAt: time.Now(),
	})
	bus.PublishOrderStatusChanged(events.OrderStatusChanged{
		OrderID:   6,
		From:      "processing",
		To:        "shipped",
		ChangedAt: time.Now(),
	})

	require.Len(t, store.upserts, 1, "only cancellations touch the stats")
	assert.Equal(t, 1, store.upserts[0].cancelled)
	assert.Equal(t, 0, store.upserts[0].orders)
}
