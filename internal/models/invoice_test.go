package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceMarkOverdueIfDue(t *testing.T) {
	today := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	pastDue := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	notDue := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   string
		due      time.Time
		expected string
		changed  bool
	}{
		{"pending past due flips", InvoiceStatusPending, pastDue, InvoiceStatusOverdue, true},
		{"pending due today stays", InvoiceStatusPending, today, InvoiceStatusPending, false},
		{"pending not due stays", InvoiceStatusPending, notDue, InvoiceStatusPending, false},
		{"in review never flips", InvoiceStatusInReview, pastDue, InvoiceStatusInReview, false},
		{"paid never flips", InvoiceStatusPaid, pastDue, InvoiceStatusPaid, false},
		{"overdue stays overdue", InvoiceStatusOverdue, pastDue, InvoiceStatusOverdue, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.changed, inv.MarkOverdueIfDue(today))
			assert.Equal(t, tt.expected, inv.Status)
		})
	}
}

func TestInvoiceIsPastDueIgnoresTimeOfDay(t *testing.T) {
	inv := &Invoice{DueDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}

	lateSameDay := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	assert.False(t, inv.IsPastDue(lateSameDay))

	loc := time.FixedZone("UTC-3", -3*60*60)
	nextDayLocal := time.Date(2024, 3, 11, 0, 30, 0, 0, loc)
	assert.True(t, inv.IsPastDue(nextDayLocal))
}

func TestInvoiceOverdueDays(t *testing.T) {
	inv := &Invoice{Status: InvoiceStatusOverdue, DueDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 22, inv.OverdueDays(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	inv.Status = InvoiceStatusPaid
	assert.Equal(t, 0, inv.OverdueDays(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}
