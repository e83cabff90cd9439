package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/optional"
)

func TestInvoiceService_CreateValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"X": "1"})

	tests := []struct {
		name  string
		input CreateInvoiceInput
		field string
	}{
		{"missing issue date", CreateInvoiceInput{DueDate: day("2024-03-31")}, "issue_date"},
		{"missing due date", CreateInvoiceInput{IssueDate: day("2024-03-01")}, "due_date"},
		{"due before issue", CreateInvoiceInput{IssueDate: day("2024-03-10"), DueDate: day("2024-03-01")}, "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			in.PrincipalID, in.CompanyID, in.ClientID = ten.userID, ten.companyID, ten.clientID
			_, err := h.invoices.CreateInvoice(ctx, &in)
			appErr := apperror.GetAppError(err)
			require.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Errors[0].Field)
		})
	}
	assert.Empty(t, h.store.invoices)
}

func TestInvoiceService_UpdateClientAndDates(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"X": "1"})

	other, err := h.clients.CreateClient(ctx, &CreateClientInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		Name:        "Second",
		Email:       "second@acme.test",
	})
	require.NoError(t, err)

	inv, err := h.invoices.CreateInvoice(ctx, &CreateInvoiceInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-03-01"),
		DueDate:     day("2024-03-31"),
	})
	require.NoError(t, err)

	updated, err := h.invoices.UpdateInvoice(ctx, &UpdateInvoiceInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		InvoiceID:   inv.ID,
		ClientID:    optional.Some(other.ID),
		DueDate:     optional.Some(day("2024-04-30")),
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.ClientID)
	assert.Equal(t, day("2024-03-01"), updated.IssueDate)
	assert.Equal(t, day("2024-04-30"), updated.DueDate)
	assert.Equal(t, inv.InvoiceNumber, updated.InvoiceNumber)

	_, err = h.invoices.UpdateInvoice(ctx, &UpdateInvoiceInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		InvoiceID:   inv.ID,
		DueDate:     optional.Some(day("2024-02-01")),
	})
	assert.True(t, apperror.HasKind(err, apperror.KindValidation))
	assert.Equal(t, day("2024-04-30"), h.store.invoices[inv.ID].DueDate)

	_, err = h.invoices.UpdateInvoice(ctx, &UpdateInvoiceInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		InvoiceID:   inv.ID,
		ClientID:    optional.Some(uuid.New()),
	})
	assert.ErrorIs(t, err, apperror.ErrClientNotFound)
	assert.Equal(t, other.ID, h.store.invoices[inv.ID].ClientID)
}

func TestInvoiceService_ItemsChangeRecomputesStatus(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"X": "10"})

	inv, err := h.invoices.CreateInvoice(ctx, &CreateInvoiceInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-03-01"),
		DueDate:     day("2024-03-31"),
		Items:       []LineItemInput{{ProductID: ten.products["X"], Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = h.payments.RecordPayment(ctx, &RecordPaymentInput{
		PrincipalID:  ten.userID,
		CompanyID:    ten.companyID,
		InvoiceID:    inv.ID,
		PaymentInput: PaymentInput{Amount: dec("10"), PaidOn: day("2024-03-02")},
	})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, h.store.invoices[inv.ID].Status)

	updated, err := h.invoices.UpdateInvoice(ctx, &UpdateInvoiceInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		InvoiceID:   inv.ID,
		Items:       optional.Some([]LineItemInput{{ProductID: ten.products["X"], Quantity: 3}}),
	})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPartial, updated.Status)
	assert.True(t, dec("30").Equal(updated.TotalDue()))
}

func TestInvoiceService_DeleteRemovesItemsAndPayments(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"X": "10"})

	inv, err := h.invoices.CreateInvoice(ctx, &CreateInvoiceInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-03-01"),
		DueDate:     day("2024-03-31"),
		Items:       []LineItemInput{{ProductID: ten.products["X"], Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = h.payments.RecordPayment(ctx, &RecordPaymentInput{
		PrincipalID:  ten.userID,
		CompanyID:    ten.companyID,
		InvoiceID:    inv.ID,
		PaymentInput: PaymentInput{Amount: dec("4"), PaidOn: day("2024-03-02")},
	})
	require.NoError(t, err)

	require.NoError(t, h.invoices.DeleteInvoice(ctx, ten.userID, ten.companyID, inv.ID))
	assert.Empty(t, h.store.invoices)
	assert.Empty(t, h.store.invoiceItems)
	assert.Empty(t, h.store.payments)

	_, err = h.invoices.GetInvoice(ctx, ten.userID, ten.companyID, inv.ID)
	assert.ErrorIs(t, err, apperror.ErrInvoiceNotFound)
}

func TestInvoiceService_ListFilters(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"X": "10"})

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		inv, err := h.invoices.CreateInvoice(ctx, &CreateInvoiceInput{
			PrincipalID: ten.userID,
			CompanyID:   ten.companyID,
			ClientID:    ten.clientID,
			IssueDate:   day("2024-03-01"),
			DueDate:     day("2024-03-31"),
			Items:       []LineItemInput{{ProductID: ten.products["X"], Quantity: 1}},
		})
		require.NoError(t, err)
		ids = append(ids, inv.ID)
	}
	_, err := h.payments.RecordPayment(ctx, &RecordPaymentInput{
		PrincipalID:  ten.userID,
		CompanyID:    ten.companyID,
		InvoiceID:    ids[1],
		PaymentInput: PaymentInput{Amount: dec("10"), PaidOn: day("2024-03-02")},
	})
	require.NoError(t, err)

	paid := enum.InvoiceStatusPaid
	res, err := h.invoices.ListInvoices(ctx, &ListInvoicesInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		Status:      &paid,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, ids[1], res.Items[0].ID)
	assert.Equal(t, int64(1), res.Pagination.Total)

	all, err := h.invoices.ListInvoices(ctx, &ListInvoicesInput{PrincipalID: ten.userID, CompanyID: ten.companyID})
	require.NoError(t, err)
	assert.Len(t, all.Items, 3)
}

func TestInvoiceService_NotifyAfterCommit(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"X": "12.50"})

	inv, err := h.invoices.CreateInvoice(ctx, &CreateInvoiceInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-03-01"),
		DueDate:     day("2024-03-31"),
		Items:       []LineItemInput{{ProductID: ten.products["X"], Quantity: 2}},
		Notify:      true,
	})
	require.NoError(t, err)
	require.Len(t, h.notifier.sent, 1)
	sent := h.notifier.sent[0]
	assert.Equal(t, "billing@acme.test", sent.to)
	assert.Equal(t, inv.InvoiceNumber, sent.notice.InvoiceNumber)
	assert.Equal(t, "25.00", sent.notice.AmountDue)
	assert.Equal(t, "USD", sent.notice.Currency)
	assert.Equal(t, "2024-03-31", sent.notice.DueDate)
}

func TestInvoiceService_NotifyFailureKeepsInvoice(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"X": "10"})
	h.notifier.err = errors.New("smtp: connection refused")

	inv, err := h.invoices.CreateInvoice(ctx, &CreateInvoiceInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-03-01"),
		DueDate:     day("2024-03-31"),
		Items:       []LineItemInput{{ProductID: ten.products["X"], Quantity: 1}},
		Notify:      true,
	})
	require.NoError(t, err)
	assert.Contains(t, h.store.invoices, inv.ID)
	assert.Len(t, h.store.invoiceItems, 1)

	snap := h.store.snapshot()
	err = h.invoices.SendInvoice(ctx, ten.userID, ten.companyID, inv.ID)
	assert.True(t, apperror.HasKind(err, apperror.KindNotification))
	assert.Equal(t, snap.invoices, h.store.invoices)
	assert.Equal(t, snap.payments, h.store.payments)

	h.notifier.err = nil
	require.NoError(t, h.invoices.SendInvoice(ctx, ten.userID, ten.companyID, inv.ID))
	assert.Len(t, h.notifier.sent, 1)
}
