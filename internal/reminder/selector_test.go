package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/car"
	"github.com/CarLogiLine/CarLogiLine/internal/client"
	"github.com/CarLogiLine/CarLogiLine/internal/invoice"
	"github.com/CarLogiLine/CarLogiLine/internal/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&client.Client{}, &car.Car{}, &invoice.Invoice{}, &payment.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedClient(t *testing.T, db *gorm.DB, name string) *client.Client {
	t.Helper()
	c := &client.Client{ID: uuid.NewString(), Name: name, Email: name + "@example.com"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func seedInvoice(t *testing.T, db *gorm.DB, clientID string, status invoice.Status, due time.Time, amount string) *invoice.Invoice {
	t.Helper()
	inv := &invoice.Invoice{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		IssueDate: due.AddDate(0, 0, -14),
		DueDate:   due,
		Amount:    dec(amount),
		Status:    status,
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return inv
}

func seedCarPayment(t *testing.T, db *gorm.DB, clientID string, status payment.Status, due time.Time, amountDue, amountPaid string) *payment.Payment {
	t.Helper()
	c := &car.Car{ID: uuid.NewString(), VIN: uuid.NewString()[:17], ClientID: clientID}
	car.RecomputeTotal(c)
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed car: %v", err)
	}
	p := &payment.Payment{
		ID:          uuid.NewString(),
		CarID:       &c.ID,
		AmountDue:   dec(amountDue),
		AmountPaid:  dec(amountPaid),
		DueDate:     &due,
		Status:      status,
		PaymentType: payment.TypeTransfer,
	}
	p.Normalize()
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return p
}

func TestSelectOverdueClients(t *testing.T) {
	db := setupTestDB(t)
	sel := NewSelector(db)
	ctx := context.Background()
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	byInvoice := seedClient(t, db, "Alpha")
	seedInvoice(t, db, byInvoice.ID, invoice.StatusUnpaid, today.AddDate(0, 0, -3), "500.00")

	byPayment := seedClient(t, db, "Bravo")
	seedCarPayment(t, db, byPayment.ID, payment.StatusPending, today.AddDate(0, 0, -1), "300.00", "100.00")

	settled := seedClient(t, db, "Charlie")
	seedInvoice(t, db, settled.ID, invoice.StatusPaid, today.AddDate(0, 0, -3), "500.00")

	notDueYet := seedClient(t, db, "Delta")
	seedInvoice(t, db, notDueYet.ID, invoice.StatusUnpaid, today.AddDate(0, 0, 10), "500.00")

	got, err := sel.SelectOverdueClients(ctx, today)
	if err != nil {
		t.Fatalf("SelectOverdueClients: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(got))
	}
	if got[0].ID != byInvoice.ID || got[1].ID != byPayment.ID {
		t.Fatalf("expected [Alpha Bravo], got [%s %s]", got[0].Name, got[1].Name)
	}
}

func TestSelectOverdueClientsDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	sel := NewSelector(db)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	c := seedClient(t, db, "Alpha")
	seedInvoice(t, db, c.ID, invoice.StatusOverdue, today.AddDate(0, 0, -3), "500.00")
	seedCarPayment(t, db, c.ID, payment.StatusOverdue, today.AddDate(0, 0, -1), "300.00", "0.00")

	got, err := sel.SelectOverdueClients(context.Background(), today)
	if err != nil {
		t.Fatalf("SelectOverdueClients: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 client after dedup, got %d", len(got))
	}
}

func TestSelectOverdueClientsIgnoresContainerPayments(t *testing.T) {
	db := setupTestDB(t)
	sel := NewSelector(db)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	due := today.AddDate(0, 0, -1)

	seedClient(t, db, "Alpha")
	contID := uuid.NewString()
	p := &payment.Payment{
		ID:          uuid.NewString(),
		ContainerID: &contID,
		AmountDue:   dec("300.00"),
		DueDate:     &due,
		Status:      payment.StatusPending,
		PaymentType: payment.TypeTransfer,
	}
	p.Normalize()
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	got, err := sel.SelectOverdueClients(context.Background(), today)
	if err != nil {
		t.Fatalf("SelectOverdueClients: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("container payments have no client, expected none, got %d", len(got))
	}
}

func TestOutstandingFor(t *testing.T) {
	db := setupTestDB(t)
	sel := NewSelector(db)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	c := seedClient(t, db, "Alpha")
	seedInvoice(t, db, c.ID, invoice.StatusUnpaid, today.AddDate(0, 0, -3), "500.00")
	seedCarPayment(t, db, c.ID, payment.StatusPending, today.AddDate(0, 0, -1), "300.00", "100.00")

	ob, err := sel.OutstandingFor(context.Background(), c.ID, today)
	if err != nil {
		t.Fatalf("OutstandingFor: %v", err)
	}
	if ob.Cleared() {
		t.Fatalf("expected obligations, got cleared")
	}
	if ob.Invoices != 1 || ob.Payments != 1 {
		t.Fatalf("expected 1 invoice + 1 payment, got %d/%d", ob.Invoices, ob.Payments)
	}
	if !ob.Amount.Equal(dec("700.00")) {
		t.Fatalf("expected outstanding 700.00 (invoice + payment balance), got %s", ob.Amount)
	}
}

func TestOutstandingForCleared(t *testing.T) {
	db := setupTestDB(t)
	sel := NewSelector(db)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	c := seedClient(t, db, "Alpha")
	seedInvoice(t, db, c.ID, invoice.StatusPaid, today.AddDate(0, 0, -3), "500.00")

	ob, err := sel.OutstandingFor(context.Background(), c.ID, today)
	if err != nil {
		t.Fatalf("OutstandingFor: %v", err)
	}
	if !ob.Cleared() {
		t.Fatalf("expected cleared, got %+v", ob)
	}
}
