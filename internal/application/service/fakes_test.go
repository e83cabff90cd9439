package service

import (
	"context"
	"errors"
	"maps"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/email"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// memStore is an in-memory database behind every repository interface.
// Rows are stored without associations, like the real tables.
type memStore struct {
	users         map[uuid.UUID]entity.User
	companies     map[uuid.UUID]entity.Company
	clients       map[uuid.UUID]entity.Client
	products      map[uuid.UUID]entity.Product
	invoices      map[uuid.UUID]entity.Invoice
	invoiceItems  map[uuid.UUID]entity.InvoiceItem
	estimates     map[uuid.UUID]entity.Estimate
	estimateItems map[uuid.UUID]entity.EstimateItem
	payments      map[uuid.UUID]entity.Payment

	clock time.Time

	// failApply makes the next ApplyItems call fail after its writes.
	failApply error
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]entity.User{},
		companies:     map[uuid.UUID]entity.Company{},
		clients:       map[uuid.UUID]entity.Client{},
		products:      map[uuid.UUID]entity.Product{},
		invoices:      map[uuid.UUID]entity.Invoice{},
		invoiceItems:  map[uuid.UUID]entity.InvoiceItem{},
		estimates:     map[uuid.UUID]entity.Estimate{},
		estimateItems: map[uuid.UUID]entity.EstimateItem{},
		payments:      map[uuid.UUID]entity.Payment{},
		clock:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick gives every insert a distinct, increasing CreatedAt.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memSnapshot struct {
	users         map[uuid.UUID]entity.User
	companies     map[uuid.UUID]entity.Company
	clients       map[uuid.UUID]entity.Client
	products      map[uuid.UUID]entity.Product
	invoices      map[uuid.UUID]entity.Invoice
	invoiceItems  map[uuid.UUID]entity.InvoiceItem
	estimates     map[uuid.UUID]entity.Estimate
	estimateItems map[uuid.UUID]entity.EstimateItem
	payments      map[uuid.UUID]entity.Payment
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		users:         maps.Clone(s.users),
		companies:     maps.Clone(s.companies),
		clients:       maps.Clone(s.clients),
		products:      maps.Clone(s.products),
		invoices:      maps.Clone(s.invoices),
		invoiceItems:  maps.Clone(s.invoiceItems),
		estimates:     maps.Clone(s.estimates),
		estimateItems: maps.Clone(s.estimateItems),
		payments:      maps.Clone(s.payments),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.users = snap.users
	s.companies = snap.companies
	s.clients = snap.clients
	s.products = snap.products
	s.invoices = snap.invoices
	s.invoiceItems = snap.invoiceItems
	s.estimates = snap.estimates
	s.estimateItems = snap.estimateItems
	s.payments = snap.payments
}

// memTx rolls the whole store back when fn fails.
type memTx struct{ s *memStore }

type memTxKey struct{}

func (t memTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	snap := t.s.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// users

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.CreatedAt = r.tick()
	r.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

// companies

type memCompanies struct{ *memStore }

func (r memCompanies) Create(_ context.Context, c *entity.Company) error {
	c.CreatedAt = r.tick()
	r.companies[c.ID] = *c
	return nil
}

func (r memCompanies) Update(_ context.Context, c *entity.Company) error {
	stored, ok := r.companies[c.ID]
	if !ok {
		return nil
	}
	stored.Name, stored.Email, stored.Phone = c.Name, c.Email, c.Phone
	stored.Address, stored.TaxNumber, stored.Currency = c.Address, c.TaxNumber, c.Currency
	r.companies[c.ID] = stored
	return nil
}

func (r memCompanies) GetByOwner(_ context.Context, userID, companyID uuid.UUID) (*entity.Company, error) {
	c, ok := r.companies[companyID]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	return &c, nil
}

func (r memCompanies) ListByOwner(_ context.Context, userID uuid.UUID) ([]entity.Company, error) {
	var out []entity.Company
	for _, c := range r.companies {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memCompanies) NextDocumentNumber(_ context.Context, companyID uuid.UUID, kind enum.DocumentKind) (int, error) {
	c, ok := r.companies[companyID]
	if !ok {
		return 0, nil
	}
	var n int
	switch kind {
	case enum.DocumentKindInvoice:
		c.NextInvoiceNumber++
		n = c.NextInvoiceNumber
	case enum.DocumentKindEstimate:
		c.NextEstimateNumber++
		n = c.NextEstimateNumber
	default:
		return 0, errors.New("unknown kind")
	}
	r.companies[companyID] = c
	return n, nil
}

// clients

type memClients struct{ *memStore }

func (r memClients) emailTaken(c *entity.Client) bool {
	for _, other := range r.clients {
		if other.ID != c.ID && other.CompanyID == c.CompanyID && other.Email == c.Email {
			return true
		}
	}
	return false
}

func (r memClients) Create(_ context.Context, c *entity.Client) error {
	if r.emailTaken(c) {
		return repository.ErrDuplicate
	}
	c.CreatedAt = r.tick()
	r.clients[c.ID] = *c
	return nil
}

func (r memClients) Update(_ context.Context, c *entity.Client) error {
	if r.emailTaken(c) {
		return repository.ErrDuplicate
	}
	stored := *c
	stored.Company = entity.Company{}
	r.clients[c.ID] = stored
	return nil
}

func (r memClients) Delete(_ context.Context, companyID, id uuid.UUID) error {
	for _, inv := range r.invoices {
		if inv.ClientID == id {
			return repository.ErrReferenced
		}
	}
	for _, est := range r.estimates {
		if est.ClientID == id {
			return repository.ErrReferenced
		}
	}
	if c, ok := r.clients[id]; ok && c.CompanyID == companyID {
		delete(r.clients, id)
	}
	return nil
}

func (r memClients) GetByID(_ context.Context, companyID, id uuid.UUID) (*entity.Client, error) {
	c, ok := r.clients[id]
	if !ok || c.CompanyID != companyID {
		return nil, nil
	}
	return &c, nil
}

func (r memClients) GetByEmail(_ context.Context, companyID uuid.UUID, email string) (*entity.Client, error) {
	for _, c := range r.clients {
		if c.CompanyID == companyID && c.Email == email {
			return &c, nil
		}
	}
	return nil, nil
}

func (r memClients) List(_ context.Context, companyID uuid.UUID, params *repository.ClientFilterParams) ([]entity.Client, int64, error) {
	var out []entity.Client
	for _, c := range r.clients {
		if c.CompanyID != companyID {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Email), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, params.Pagination), int64(len(out)), nil
}

// products

type memProducts struct{ *memStore }

func (r memProducts) Create(_ context.Context, p *entity.Product) error {
	p.CreatedAt = r.tick()
	r.products[p.ID] = *p
	return nil
}

func (r memProducts) Update(_ context.Context, p *entity.Product) error {
	stored := *p
	stored.Company = entity.Company{}
	r.products[p.ID] = stored
	return nil
}

func (r memProducts) Delete(_ context.Context, companyID, id uuid.UUID) error {
	for _, it := range r.invoiceItems {
		if it.ProductID == id {
			return repository.ErrReferenced
		}
	}
	for _, it := range r.estimateItems {
		if it.ProductID == id {
			return repository.ErrReferenced
		}
	}
	if p, ok := r.products[id]; ok && p.CompanyID == companyID {
		delete(r.products, id)
	}
	return nil
}

func (r memProducts) GetByID(_ context.Context, companyID, id uuid.UUID) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) GetByIDs(_ context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok && p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) List(_ context.Context, companyID uuid.UUID, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	var out []entity.Product
	for _, p := range r.products {
		if p.CompanyID == companyID && strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, params.Pagination), int64(len(out)), nil
}

// invoices

type memInvoices struct{ *memStore }

func stripInvoice(inv entity.Invoice) entity.Invoice {
	inv.Company = entity.Company{}
	inv.Client = nil
	inv.Items = nil
	inv.Payments = nil
	return inv
}

func (r memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	for _, other := range r.invoices {
		if other.CompanyID == inv.CompanyID && other.InvoiceNumber == inv.InvoiceNumber {
			return repository.ErrDuplicate
		}
	}
	inv.CreatedAt = r.tick()
	r.invoices[inv.ID] = stripInvoice(*inv)
	return nil
}

func (r memInvoices) Update(_ context.Context, inv *entity.Invoice) error {
	stored, ok := r.invoices[inv.ID]
	if !ok {
		return nil
	}
	stored.ClientID, stored.IssueDate, stored.DueDate, stored.Notes = inv.ClientID, inv.IssueDate, inv.DueDate, inv.Notes
	r.invoices[inv.ID] = stored
	return nil
}

func (r memInvoices) Delete(_ context.Context, companyID, id uuid.UUID) error {
	for pid, p := range r.payments {
		if p.InvoiceID == id {
			delete(r.payments, pid)
		}
	}
	for iid, it := range r.invoiceItems {
		if it.InvoiceID == id {
			delete(r.invoiceItems, iid)
		}
	}
	if inv, ok := r.invoices[id]; ok && inv.CompanyID == companyID {
		delete(r.invoices, id)
	}
	return nil
}

func (r memInvoices) load(inv entity.Invoice) entity.Invoice {
	if c, ok := r.clients[inv.ClientID]; ok {
		inv.Client = &c
	}
	items, _ := r.ListItems(context.Background(), inv.ID)
	for i := range items {
		if p, ok := r.products[items[i].ProductID]; ok {
			items[i].Product = &p
		}
	}
	inv.Items = items
	inv.Payments, _ = memPayments{r.memStore}.ListByInvoice(context.Background(), inv.ID)
	return inv
}

func (r memInvoices) GetByID(_ context.Context, companyID, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.CompanyID != companyID {
		return nil, nil
	}
	loaded := r.load(inv)
	return &loaded, nil
}

func (r memInvoices) List(_ context.Context, companyID uuid.UUID, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var out []entity.Invoice
	for _, inv := range r.invoices {
		if inv.CompanyID != companyID {
			continue
		}
		if params.Status != nil && inv.Status != *params.Status {
			continue
		}
		if params.ClientID != nil && inv.ClientID != *params.ClientID {
			continue
		}
		out = append(out, r.load(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return page(out, params.Pagination), int64(len(out)), nil
}

func (r memInvoices) UpdateStatus(_ context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	if inv, ok := r.invoices[id]; ok {
		inv.Status = status
		r.invoices[id] = inv
	}
	return nil
}

func (r memInvoices) ListItems(_ context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error) {
	var out []entity.InvoiceItem
	for _, it := range r.invoiceItems {
		if it.InvoiceID == invoiceID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memInvoices) ApplyItems(_ context.Context, invoiceID uuid.UUID, deleteIDs []uuid.UUID, inserts []entity.InvoiceItem) error {
	for _, id := range deleteIDs {
		if it, ok := r.invoiceItems[id]; ok && it.InvoiceID == invoiceID {
			delete(r.invoiceItems, id)
		}
	}
	for _, it := range inserts {
		it.CreatedAt = r.tick()
		it.Product = nil
		r.invoiceItems[it.ID] = it
	}
	if err := r.failApply; err != nil {
		r.failApply = nil
		return err
	}
	return nil
}

// estimates

type memEstimates struct{ *memStore }

func stripEstimate(est entity.Estimate) entity.Estimate {
	est.Company = entity.Company{}
	est.Client = nil
	est.Items = nil
	return est
}

func (r memEstimates) Create(_ context.Context, est *entity.Estimate) error {
	est.CreatedAt = r.tick()
	r.estimates[est.ID] = stripEstimate(*est)
	return nil
}

func (r memEstimates) Update(_ context.Context, est *entity.Estimate) error {
	stored, ok := r.estimates[est.ID]
	if !ok {
		return nil
	}
	stored.ClientID, stored.IssueDate, stored.ExpiryDate = est.ClientID, est.IssueDate, est.ExpiryDate
	stored.Notes, stored.Status = est.Notes, est.Status
	r.estimates[est.ID] = stored
	return nil
}

func (r memEstimates) Delete(_ context.Context, companyID, id uuid.UUID) error {
	for iid, it := range r.estimateItems {
		if it.EstimateID == id {
			delete(r.estimateItems, iid)
		}
	}
	if est, ok := r.estimates[id]; ok && est.CompanyID == companyID {
		delete(r.estimates, id)
	}
	return nil
}

func (r memEstimates) load(est entity.Estimate) entity.Estimate {
	if c, ok := r.clients[est.ClientID]; ok {
		est.Client = &c
	}
	items, _ := r.ListItems(context.Background(), est.ID)
	for i := range items {
		if p, ok := r.products[items[i].ProductID]; ok {
			items[i].Product = &p
		}
	}
	est.Items = items
	return est
}

func (r memEstimates) GetByID(_ context.Context, companyID, id uuid.UUID) (*entity.Estimate, error) {
	est, ok := r.estimates[id]
	if !ok || est.CompanyID != companyID {
		return nil, nil
	}
	loaded := r.load(est)
	return &loaded, nil
}

func (r memEstimates) List(_ context.Context, companyID uuid.UUID, params *repository.EstimateFilterParams) ([]entity.Estimate, int64, error) {
	var out []entity.Estimate
	for _, est := range r.estimates {
		if est.CompanyID != companyID {
			continue
		}
		if params.Status != nil && est.Status != *params.Status {
			continue
		}
		if params.ClientID != nil && est.ClientID != *params.ClientID {
			continue
		}
		out = append(out, r.load(est))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EstimateNumber < out[j].EstimateNumber })
	return page(out, params.Pagination), int64(len(out)), nil
}

func (r memEstimates) UpdateStatus(_ context.Context, id uuid.UUID, status enum.EstimateStatus) error {
	if est, ok := r.estimates[id]; ok {
		est.Status = status
		r.estimates[id] = est
	}
	return nil
}

func (r memEstimates) ListItems(_ context.Context, estimateID uuid.UUID) ([]entity.EstimateItem, error) {
	var out []entity.EstimateItem
	for _, it := range r.estimateItems {
		if it.EstimateID == estimateID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memEstimates) ApplyItems(_ context.Context, estimateID uuid.UUID, deleteIDs []uuid.UUID, inserts []entity.EstimateItem, total decimal.Decimal) error {
	for _, id := range deleteIDs {
		if it, ok := r.estimateItems[id]; ok && it.EstimateID == estimateID {
			delete(r.estimateItems, id)
		}
	}
	for _, it := range inserts {
		it.CreatedAt = r.tick()
		it.Product = nil
		r.estimateItems[it.ID] = it
	}
	if est, ok := r.estimates[estimateID]; ok {
		est.TotalAmount = total
		r.estimates[estimateID] = est
	}
	if err := r.failApply; err != nil {
		r.failApply = nil
		return err
	}
	return nil
}

// payments

type memPayments struct{ *memStore }

func (r memPayments) Create(_ context.Context, p *entity.Payment) error {
	p.CreatedAt = r.tick()
	r.payments[p.ID] = *p
	return nil
}

func (r memPayments) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.payments, id)
	return nil
}

func (r memPayments) GetByID(_ context.Context, invoiceID, id uuid.UUID) (*entity.Payment, error) {
	p, ok := r.payments[id]
	if !ok || p.InvoiceID != invoiceID {
		return nil, nil
	}
	return &p, nil
}

func (r memPayments) ListByInvoice(_ context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	var out []entity.Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaidOn.Equal(out[j].PaidOn) {
			return out[i].PaidOn.Before(out[j].PaidOn)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r memPayments) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	payments, _ := r.ListByInvoice(ctx, invoiceID)
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

// analytics

type memAnalytics struct{ *memStore }

func (r memAnalytics) LedgerRows(_ context.Context, companyID uuid.UUID) ([]repository.LedgerRow, error) {
	var out []repository.LedgerRow
	for _, p := range r.payments {
		inv, ok := r.invoices[p.InvoiceID]
		if !ok || inv.CompanyID != companyID || p.CompanyID != companyID {
			continue
		}
		client := r.clients[inv.ClientID]
		out = append(out, repository.LedgerRow{
			PaymentID:  p.ID,
			ClientID:   client.ID,
			ClientName: client.Name,
			Amount:     p.Amount,
			PaidOn:     p.PaidOn,
		})
	}
	return out, nil
}

func (r memAnalytics) InvoiceStatusCounts(_ context.Context, companyID uuid.UUID) ([]repository.StatusCount, error) {
	counts := map[enum.InvoiceStatus]int64{}
	for _, inv := range r.invoices {
		if inv.CompanyID == companyID {
			counts[inv.Status]++
		}
	}
	var out []repository.StatusCount
	for s, n := range counts {
		out = append(out, repository.StatusCount{Status: s, Count: n})
	}
	return out, nil
}

func page[T any](rows []T, p *pagination.PaginationParams) []T {
	if p == nil {
		return rows
	}
	start := p.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + p.PerPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// memCache is a map-backed repository.Cache that ignores TTLs.
type memCache struct {
	data map[string][]byte
	gets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.gets++
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) Incr(_ context.Context, key string) (int64, error) {
	var n int64
	if v, ok := c.data[key]; ok {
		var err error
		if n, err = strconv.ParseInt(string(v), 10, 64); err != nil {
			return 0, err
		}
	}
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

type sentNotice struct {
	to     string
	notice email.InvoiceNotice
}

type fakeNotifier struct {
	sent []sentNotice
	err  error
}

func (n *fakeNotifier) SendInvoiceReady(to string, notice email.InvoiceNotice) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotice{to: to, notice: notice})
	return nil
}

// harness wires every service over one memStore.
type harness struct {
	store     *memStore
	cache     *memCache
	notifier  *fakeNotifier
	scope     *TenantScope
	users     *UserService
	companies *CompanyService
	clients   *ClientService
	products  *ProductService
	invoices  *InvoiceService
	estimates *EstimateService
	payments  *PaymentService
	dashboard *DashboardService
}

func newHarness() *harness {
	s := newMemStore()
	tx := memTx{s}
	users, companies, clients := memUsers{s}, memCompanies{s}, memClients{s}
	products, invoices, estimates, payments := memProducts{s}, memInvoices{s}, memEstimates{s}, memPayments{s}

	scope := NewTenantScope(users, companies, clients, products, invoices, estimates, payments)
	numbers := NewDocumentNumberAllocator(companies)
	items := NewLineItemSetReconciler(products, invoices, estimates)
	ledger := NewPaymentLedger(invoices, payments, products)
	cache := newMemCache()
	dashboard := NewDashboardService(scope, memAnalytics{s}, cache)
	notifier := &fakeNotifier{}

	return &harness{
		store:     s,
		cache:     cache,
		notifier:  notifier,
		scope:     scope,
		users:     NewUserService(scope, users),
		companies: NewCompanyService(tx, scope, companies),
		clients:   NewClientService(tx, scope, clients),
		products:  NewProductService(tx, scope, products),
		invoices:  NewInvoiceService(tx, scope, numbers, items, ledger, invoices, notifier, dashboard),
		estimates: NewEstimateService(tx, scope, numbers, items, ledger, estimates, invoices, dashboard),
		payments:  NewPaymentService(tx, scope, ledger, dashboard),
		dashboard: dashboard,
	}
}

// tenant is one user with one company, a client and a product catalogue.
type tenant struct {
	userID    uuid.UUID
	companyID uuid.UUID
	clientID  uuid.UUID
	products  map[string]uuid.UUID
}

func (h *harness) seedTenant(email string, prices map[string]string) tenant {
	ctx := context.Background()
	user, err := h.users.EnsureUser(ctx, email, "Owner")
	if err != nil {
		panic(err)
	}
	company, err := h.companies.CreateCompany(ctx, &CreateCompanyInput{PrincipalID: user.ID, Name: "Acme " + email})
	if err != nil {
		panic(err)
	}
	client, err := h.clients.CreateClient(ctx, &CreateClientInput{
		PrincipalID: user.ID,
		CompanyID:   company.ID,
		Name:        "Client of " + email,
		Email:       "billing@" + strings.SplitN(email, "@", 2)[1],
	})
	if err != nil {
		panic(err)
	}

	t := tenant{userID: user.ID, companyID: company.ID, clientID: client.ID, products: map[string]uuid.UUID{}}
	for name, price := range prices {
		p, err := h.products.CreateProduct(ctx, &CreateProductInput{
			PrincipalID: user.ID,
			CompanyID:   company.ID,
			Name:        name,
			Price:       decimal.RequireFromString(price),
		})
		if err != nil {
			panic(err)
		}
		t.products[name] = p.ID
	}
	return t
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
