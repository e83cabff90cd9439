package service

import (
	"context"
	"fmt"

	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/internal/metrics"
	"github.com/sangkips/invoicer-api/pkg/apperror"
)

// DocumentNumberAllocator hands out per-company, per-kind sequential numbers.
// Call it inside the transaction that inserts the numbered document so the
// counter advance and the insert commit or roll back together.
type DocumentNumberAllocator struct {
	companyRepo repository.CompanyRepository
}

// NewDocumentNumberAllocator creates a new allocator
func NewDocumentNumberAllocator(companyRepo repository.CompanyRepository) *DocumentNumberAllocator {
	return &DocumentNumberAllocator{companyRepo: companyRepo}
}

// Next advances the company's counter for kind and returns the formatted number.
func (a *DocumentNumberAllocator) Next(ctx context.Context, company *entity.Company, kind enum.DocumentKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}

	n, err := a.companyRepo.NextDocumentNumber(ctx, company.ID, kind)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", apperror.ErrCompanyNotFound
	}

	switch kind {
	case enum.DocumentKindInvoice:
		company.NextInvoiceNumber = n
	case enum.DocumentKindEstimate:
		company.NextEstimateNumber = n
	}
	metrics.DocumentsNumbered.WithLabelValues(string(kind)).Inc()

	return FormatDocumentNumber(kind, n), nil
}

// FormatDocumentNumber renders n as PREFIX-0001. Numbers past 9999 grow wider.
func FormatDocumentNumber(kind enum.DocumentKind, n int) string {
	return fmt.Sprintf("%s-%04d", kind.Prefix(), n)
}
