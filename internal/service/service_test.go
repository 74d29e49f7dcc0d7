package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/zyvex/zyvex-go/internal/credentials"
	"github.com/zyvex/zyvex-go/internal/gateway"
	"github.com/zyvex/zyvex-go/internal/payments"
)

// fakePaymentStore is an in-memory PaymentStore mirroring the real store's
// terminal-state transition rules.
type fakePaymentStore struct {
	records  map[string]*payments.Record
	putCalls int
	putErr   error
	getErr   error
	markErr  error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{records: map[string]*payments.Record{}}
}

func (f *fakePaymentStore) Put(ctx context.Context, rec payments.Record) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	if _, exists := f.records[rec.OrderID]; exists {
		return payments.ErrDuplicateOrder
	}
	cp := rec
	f.records[rec.OrderID] = &cp
	return nil
}

func (f *fakePaymentStore) Get(ctx context.Context, orderID string) (*payments.Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[orderID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakePaymentStore) MarkCompleted(ctx context.Context, orderID, paymentID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	rec, ok := f.records[orderID]
	if !ok {
		return errors.New("record not found")
	}
	samePid := rec.Status == payments.StatusCompleted && rec.PaymentID == paymentID
	if rec.Status != payments.StatusCreated && !samePid {
		return payments.ErrStatusMismatch
	}
	rec.Status = payments.StatusCompleted
	rec.PaymentID = paymentID
	return nil
}

func (f *fakePaymentStore) MarkFailed(ctx context.Context, orderID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	rec, ok := f.records[orderID]
	if !ok {
		return errors.New("record not found")
	}
	if rec.Status != payments.StatusCreated && rec.Status != payments.StatusFailed {
		return payments.ErrStatusMismatch
	}
	rec.Status = payments.StatusFailed
	return nil
}

func (f *fakePaymentStore) completed(recipient string) []payments.Record {
	var recs []payments.Record
	for _, rec := range f.records {
		if rec.Recipient == recipient && rec.Status == payments.StatusCompleted {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs
}

func (f *fakePaymentStore) ListCompleted(ctx context.Context, recipient string, limit int32) ([]payments.Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	recs := f.completed(recipient)
	if len(recs) > int(limit) {
		recs = recs[:limit]
	}
	return recs, nil
}

func (f *fakePaymentStore) TotalsCompleted(ctx context.Context, recipient string) (int64, int64, error) {
	if f.getErr != nil {
		return 0, 0, f.getErr
	}
	var count, amount int64
	for _, rec := range f.completed(recipient) {
		count++
		amount += rec.Amount
	}
	return count, amount, nil
}

// fakeCredStore is an in-memory CredentialStore.
type fakeCredStore struct {
	creds    map[string]*credentials.Credentials
	getCalls int
	lastGet  string
	getErr   error
}

func newFakeCredStore() *fakeCredStore {
	return &fakeCredStore{creds: map[string]*credentials.Credentials{}}
}

func (f *fakeCredStore) Upsert(ctx context.Context, userID, keyID, keySecret string) (*credentials.Credentials, error) {
	creds := &credentials.Credentials{UserID: userID, KeyID: keyID, KeySecret: keySecret, CreatedAt: time.Now()}
	f.creds[userID] = creds
	return creds, nil
}

func (f *fakeCredStore) Get(ctx context.Context, userID string) (*credentials.Credentials, error) {
	f.getCalls++
	f.lastGet = userID
	if f.getErr != nil {
		return nil, f.getErr
	}
	creds, ok := f.creds[userID]
	if !ok {
		return nil, nil
	}
	return creds, nil
}

// fakeGateway records order-creation calls and returns a canned order.
type fakeGateway struct {
	calls   int
	err     error
	lastReq gateway.OrderRequest
	orderID string
}

func (f *fakeGateway) CreateOrder(ctx context.Context, keyID, keySecret string, req gateway.OrderRequest) (*gateway.Order, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	id := f.orderID
	if id == "" {
		id = "order_fake1"
	}
	return &gateway.Order{ID: id, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt}, nil
}

// fakeMetrics counts outcome ticks.
type fakeMetrics struct {
	outcomes []string
}

func (f *fakeMetrics) RecordOutcome(ctx context.Context, outcome string) error {
	f.outcomes = append(f.outcomes, outcome)
	return nil
}

type fixture struct {
	svc     *Service
	store   *fakePaymentStore
	creds   *fakeCredStore
	gateway *fakeGateway
	metrics *fakeMetrics
}

func newFixture() *fixture {
	store := newFakePaymentStore()
	creds := newFakeCredStore()
	gw := &fakeGateway{}
	metrics := &fakeMetrics{}
	return &fixture{
		svc:     New(store, creds, gw, metrics),
		store:   store,
		creds:   creds,
		gateway: gw,
		metrics: metrics,
	}
}
