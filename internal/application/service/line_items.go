package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
)

// LineItemInput is one requested (product, quantity) entry.
type LineItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// PricedLine is a LineItemInput resolved against the company's catalogue.
type PricedLine struct {
	Product  *entity.Product
	Quantity int
}

func (l PricedLine) UnitPrice() decimal.Decimal {
	return l.Product.Price
}

func (l PricedLine) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SumLines totals quantity x price.
func SumLines(lines []PricedLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

// LineItemSetReconciler replaces the whole line-item set of an invoice or
// estimate. Validation runs in Price, before anything is written.
type LineItemSetReconciler struct {
	productRepo  repository.ProductRepository
	invoiceRepo  repository.InvoiceRepository
	estimateRepo repository.EstimateRepository
}

// NewLineItemSetReconciler creates a new reconciler
func NewLineItemSetReconciler(
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	estimateRepo repository.EstimateRepository,
) *LineItemSetReconciler {
	return &LineItemSetReconciler{
		productRepo:  productRepo,
		invoiceRepo:  invoiceRepo,
		estimateRepo: estimateRepo,
	}
}

// Price checks quantities and resolves every product against the company.
// Any unknown or foreign product fails the whole set with ProductNotFound.
func (r *LineItemSetReconciler) Price(ctx context.Context, companyID uuid.UUID, targets []LineItemInput) ([]PricedLine, error) {
	var fieldErrs []apperror.FieldError
	ids := make([]uuid.UUID, 0, len(targets))
	seen := make(map[uuid.UUID]bool, len(targets))
	for i, t := range targets {
		if t.Quantity < 1 {
			fieldErrs = append(fieldErrs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be at least 1",
			})
		}
		if !seen[t.ProductID] {
			seen[t.ProductID] = true
			ids = append(ids, t.ProductID)
		}
	}
	if len(fieldErrs) > 0 {
		return nil, apperror.NewValidationError(fieldErrs)
	}

	products, err := r.productRepo.GetByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]PricedLine, 0, len(targets))
	for _, t := range targets {
		p, ok := byID[t.ProductID]
		if !ok || p.CompanyID != companyID {
			return nil, apperror.ErrProductNotFound
		}
		lines = append(lines, PricedLine{Product: p, Quantity: t.Quantity})
	}
	return lines, nil
}

// ReplaceInvoiceItems makes the invoice's rows match lines exactly and leaves
// invoice.Items holding the new set with products attached.
func (r *LineItemSetReconciler) ReplaceInvoiceItems(ctx context.Context, invoice *entity.Invoice, lines []PricedLine) error {
	existing, err := r.invoiceRepo.ListItems(ctx, invoice.ID)
	if err != nil {
		return err
	}

	type key struct {
		product  uuid.UUID
		quantity int
	}
	have := make([]key, len(existing))
	for i, it := range existing {
		have[i] = key{it.ProductID, it.Quantity}
	}
	want := make([]key, len(lines))
	for i, l := range lines {
		want[i] = key{l.Product.ID, l.Quantity}
	}

	plan := planReplace(have, want)

	deleteIDs := make([]uuid.UUID, 0, len(plan.remove))
	for _, i := range plan.remove {
		deleteIDs = append(deleteIDs, existing[i].ID)
	}
	inserts := make([]entity.InvoiceItem, 0, len(plan.add))
	for _, i := range plan.add {
		inserts = append(inserts, entity.InvoiceItem{
			ID:        uuid.New(),
			InvoiceID: invoice.ID,
			ProductID: lines[i].Product.ID,
			CompanyID: invoice.CompanyID,
			Quantity:  lines[i].Quantity,
		})
	}

	if err := r.invoiceRepo.ApplyItems(ctx, invoice.ID, deleteIDs, inserts); err != nil {
		return err
	}

	items := make([]entity.InvoiceItem, 0, len(lines))
	for _, i := range plan.keep {
		it := existing[i]
		it.Product = lines[plan.keptAs[i]].Product
		items = append(items, it)
	}
	for j, i := range plan.add {
		it := inserts[j]
		it.Product = lines[i].Product
		items = append(items, it)
	}
	invoice.Items = items
	return nil
}

// ReplaceEstimateItems snapshots each line's current price into the rows,
// stores the new total and returns it.
func (r *LineItemSetReconciler) ReplaceEstimateItems(ctx context.Context, estimate *entity.Estimate, lines []PricedLine) (decimal.Decimal, error) {
	existing, err := r.estimateRepo.ListItems(ctx, estimate.ID)
	if err != nil {
		return decimal.Zero, err
	}

	type key struct {
		product   uuid.UUID
		quantity  int
		unitPrice string
	}
	have := make([]key, len(existing))
	for i, it := range existing {
		have[i] = key{it.ProductID, it.Quantity, it.UnitPrice.StringFixed(2)}
	}
	want := make([]key, len(lines))
	for i, l := range lines {
		want[i] = key{l.Product.ID, l.Quantity, l.UnitPrice().StringFixed(2)}
	}

	plan := planReplace(have, want)

	deleteIDs := make([]uuid.UUID, 0, len(plan.remove))
	for _, i := range plan.remove {
		deleteIDs = append(deleteIDs, existing[i].ID)
	}
	inserts := make([]entity.EstimateItem, 0, len(plan.add))
	for _, i := range plan.add {
		inserts = append(inserts, entity.EstimateItem{
			ID:         uuid.New(),
			EstimateID: estimate.ID,
			ProductID:  lines[i].Product.ID,
			CompanyID:  estimate.CompanyID,
			Quantity:   lines[i].Quantity,
			UnitPrice:  lines[i].UnitPrice(),
		})
	}

	total := SumLines(lines)
	if err := r.estimateRepo.ApplyItems(ctx, estimate.ID, deleteIDs, inserts, total); err != nil {
		return decimal.Zero, err
	}

	items := make([]entity.EstimateItem, 0, len(lines))
	for _, i := range plan.keep {
		it := existing[i]
		it.Product = lines[plan.keptAs[i]].Product
		items = append(items, it)
	}
	for j, i := range plan.add {
		it := inserts[j]
		it.Product = lines[i].Product
		items = append(items, it)
	}
	estimate.Items = items
	estimate.TotalAmount = total
	return total, nil
}

// replacePlan says which existing rows survive, which go, and which targets
// need a new row. keptAs maps a kept existing index to the target it satisfies.
type replacePlan struct {
	keep   []int
	remove []int
	add    []int
	keptAs map[int]int
}

// planReplace matches existing rows to targets as multisets of keys. After
// applying the plan the stored rows equal want, and a second run with the
// same want is a no-op.
func planReplace[K comparable](have, want []K) replacePlan {
	pool := make(map[K][]int, len(have))
	for i, k := range have {
		pool[k] = append(pool[k], i)
	}

	plan := replacePlan{keptAs: make(map[int]int)}
	for j, k := range want {
		if idx := pool[k]; len(idx) > 0 {
			plan.keep = append(plan.keep, idx[0])
			plan.keptAs[idx[0]] = j
			pool[k] = idx[1:]
			continue
		}
		plan.add = append(plan.add, j)
	}
	for i := range have {
		if _, kept := plan.keptAs[i]; !kept {
			plan.remove = append(plan.remove, i)
		}
	}
	return plan
}
