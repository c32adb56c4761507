package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonContext(body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	notes := "pago en caja"
	tests := []struct {
		name        string
		body        string
		expected    BulkPaymentRequest
		expectError bool
	}{
		{
			name:     "wrapped under payment",
			body:     `{"payment": {"guardian_id": 7, "invoice_ids": [3, 4], "method": "cash"}}`,
			expected: BulkPaymentRequest{GuardianID: 7, InvoiceIDs: []uint{3, 4}, Method: "cash"},
		},
		{
			name:     "flat",
			body:     `{"guardian_id": 7, "invoice_ids": [5], "method": "bank_transfer", "reference": "TRX-88", "notes": "pago en caja"}`,
			expected: BulkPaymentRequest{GuardianID: 7, InvoiceIDs: []uint{5}, Method: "bank_transfer", Reference: "TRX-88", Notes: &notes},
		},
		{
			name:     "other top level keys fall back to flat",
			body:     `{"club": "norte", "guardian_id": 2, "method": "card"}`,
			expected: BulkPaymentRequest{GuardianID: 2, Method: "card"},
		},
		{
			name:        "flat with wrong type",
			body:        `{"guardian_id": 7, "invoice_ids": "3,4"}`,
			expectError: true,
		},
		{
			name:        "wrapped with wrong type",
			body:        `{"payment": {"guardian_id": "siete"}}`,
			expectError: true,
		},
		{
			name:        "wrapped value is not an object",
			body:        `{"payment": "cash"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req BulkPaymentRequest
			err := BindNestedOrFlat(jsonContext(tt.body), "payment", &req)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req)
		})
	}
}

func TestBindOptional(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		body        string
		expected    RejectPaymentRequest
		expectError bool
	}{
		{name: "empty body", body: "", expected: RejectPaymentRequest{}},
		{name: "whitespace only", body: "  \n\t ", expected: RejectPaymentRequest{}},
		{name: "wrapped reason", body: `{"payment": {"reason": "comprobante ilegible"}}`, expected: RejectPaymentRequest{Reason: "comprobante ilegible"}},
		{name: "flat reason", body: `{"reason": "monto incorrecto"}`, expected: RejectPaymentRequest{Reason: "monto incorrecto"}},
		{name: "malformed", body: `{"reason":`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req RejectPaymentRequest
			err := bindOptional(jsonContext(tt.body), "payment", &req)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req)
		})
	}
}

func TestBindOptionalWithoutBody(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", nil)
	c.Request.Body = nil

	var req GenerateRequest
	require.NoError(t, bindOptional(c, "generation", &req))
	assert.Equal(t, GenerateRequest{}, req)
}
