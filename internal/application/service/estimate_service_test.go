package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/optional"
)

func TestEstimateService_CreateAndNumber(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"A": "4", "B": "1.25"})

	est, err := h.estimates.CreateEstimate(ctx, &CreateEstimateInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-05-01"),
		Items: []LineItemInput{
			{ProductID: ten.products["A"], Quantity: 2},
			{ProductID: ten.products["B"], Quantity: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "EST-0001", est.EstimateNumber)
	assert.Equal(t, enum.EstimateStatusDraft, est.Status)
	assert.True(t, dec("13").Equal(est.TotalAmount))
	assert.Len(t, est.Items, 2)
	assert.Equal(t, 0, h.store.companies[ten.companyID].NextInvoiceNumber)
}

func TestEstimateService_Validation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", nil)
	expiry := day("2024-04-01")

	_, err := h.estimates.CreateEstimate(ctx, &CreateEstimateInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-05-01"),
		ExpiryDate:  &expiry,
	})
	assert.True(t, apperror.HasKind(err, apperror.KindValidation))

	_, err = h.estimates.CreateEstimate(ctx, &CreateEstimateInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-05-01"),
		Status:      enum.EstimateStatus(9),
	})
	assert.True(t, apperror.HasKind(err, apperror.KindValidation))
	assert.Empty(t, h.store.estimates)
}

func TestEstimateService_UpdateStatus(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", nil)

	est, err := h.estimates.CreateEstimate(ctx, &CreateEstimateInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-05-01"),
	})
	require.NoError(t, err)

	got, err := h.estimates.UpdateEstimateStatus(ctx, ten.userID, ten.companyID, est.ID, enum.EstimateStatusSent)
	require.NoError(t, err)
	assert.Equal(t, enum.EstimateStatusSent, got.Status)
	assert.Equal(t, enum.EstimateStatusSent, h.store.estimates[est.ID].Status)

	_, err = h.estimates.UpdateEstimateStatus(ctx, ten.userID, ten.companyID, est.ID, enum.EstimateStatus(-1))
	assert.True(t, apperror.HasKind(err, apperror.KindValidation))

	updated, err := h.estimates.UpdateEstimate(ctx, &UpdateEstimateInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		EstimateID:  est.ID,
		Status:      optional.Some(enum.EstimateStatusAccepted),
		ExpiryDate:  optional.Some[*time.Time](nil),
	})
	require.NoError(t, err)
	assert.Equal(t, enum.EstimateStatusAccepted, updated.Status)
	assert.Nil(t, updated.ExpiryDate)
}

func TestEstimateService_Delete(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"A": "4"})

	est, err := h.estimates.CreateEstimate(ctx, &CreateEstimateInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-05-01"),
		Items:       []LineItemInput{{ProductID: ten.products["A"], Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, h.estimates.DeleteEstimate(ctx, ten.userID, ten.companyID, est.ID))
	assert.Empty(t, h.store.estimates)
	assert.Empty(t, h.store.estimateItems)

	err = h.estimates.DeleteEstimate(ctx, ten.userID, ten.companyID, est.ID)
	assert.ErrorIs(t, err, apperror.ErrEstimateNotFound)
}

func TestEstimateService_ConvertToInvoice(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ten := h.seedTenant("owner@acme.test", map[string]string{"A": "4", "B": "10"})

	est, err := h.estimates.CreateEstimate(ctx, &CreateEstimateInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ClientID:    ten.clientID,
		IssueDate:   day("2024-05-01"),
		Status:      enum.EstimateStatusAccepted,
		Items: []LineItemInput{
			{ProductID: ten.products["A"], Quantity: 2},
			{ProductID: ten.products["B"], Quantity: 1},
		},
	})
	require.NoError(t, err)

	_, err = h.products.UpdateProduct(ctx, &UpdateProductInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		ProductID:   ten.products["B"],
		Price:       optional.Some(dec("11")),
	})
	require.NoError(t, err)

	inv, err := h.estimates.ConvertToInvoice(ctx, &ConvertEstimateInput{
		PrincipalID: ten.userID,
		CompanyID:   ten.companyID,
		EstimateID:  est.ID,
		IssueDate:   day("2024-05-10"),
		DueDate:     day("2024-06-10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", inv.InvoiceNumber)
	assert.Equal(t, ten.clientID, inv.ClientID)
	assert.Equal(t, enum.InvoiceStatusUnpaid, inv.Status)
	assert.Len(t, inv.Items, 2)
	assert.True(t, dec("19").Equal(inv.TotalDue()))

	stored := h.store.estimates[est.ID]
	assert.Equal(t, enum.EstimateStatusAccepted, stored.Status)
	assert.True(t, dec("18").Equal(stored.TotalAmount))
	assert.Equal(t, 1, h.store.companies[ten.companyID].NextEstimateNumber)
}
