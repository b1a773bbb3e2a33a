package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/renolink/RenoLink/app/models"
	"github.com/renolink/RenoLink/internal/pkg/entitlements"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"
)

type fakeRepo struct {
	events          map[string]*models.BillingWebhookEvent
	contractorSubs  map[string]*models.ContractorSubscription
	categorySubs    map[string]*models.CategorySubscription
	users           map[uint]*models.User
	transactions    []models.Transaction
	notifications   []models.Notification
	quotas          []models.TierQuota
	notificationErr error
	nextID          uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:         map[string]*models.BillingWebhookEvent{},
		contractorSubs: map[string]*models.ContractorSubscription{},
		categorySubs:   map[string]*models.CategorySubscription{},
		users:          map[uint]*models.User{},
	}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if stored, ok := f.events[key]; ok {
		return false, stored, nil
	}
	event.ID = f.id()
	f.events[key] = event
	return true, event, nil
}

func (f *fakeRepo) MarkWebhookProcessed(id uint, processingError string) error {
	for _, e := range f.events {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpsertContractorSubscription(sub *models.ContractorSubscription) error {
	if existing, ok := f.contractorSubs[sub.StripeSubscriptionID]; ok {
		sub.ID = existing.ID
		sub.LeadsThisMonth = existing.LeadsThisMonth
		sub.CompAccess = existing.CompAccess
	} else {
		sub.ID = f.id()
	}
	sub.UpdatedAt = time.Now()
	f.contractorSubs[sub.StripeSubscriptionID] = sub
	return nil
}

func (f *fakeRepo) GetContractorSubscriptionByStripeID(stripeSubscriptionID string) (*models.ContractorSubscription, error) {
	if sub, ok := f.contractorSubs[stripeSubscriptionID]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListContractorSubscriptionsByUser(userID uint) ([]models.ContractorSubscription, error) {
	var subs []models.ContractorSubscription
	for _, sub := range f.contractorSubs {
		if sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (f *fakeRepo) SaveContractorSubscription(sub *models.ContractorSubscription) error {
	sub.UpdatedAt = time.Now()
	f.contractorSubs[sub.StripeSubscriptionID] = sub
	return nil
}

func (f *fakeRepo) GetCategorySubscriptionByStripeID(stripeSubscriptionID string) (*models.CategorySubscription, error) {
	if sub, ok := f.categorySubs[stripeSubscriptionID]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListCategorySubscriptionsByUser(userID uint) ([]models.CategorySubscription, error) {
	var subs []models.CategorySubscription
	for _, sub := range f.categorySubs {
		if sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (f *fakeRepo) SaveCategorySubscription(sub *models.CategorySubscription) error {
	f.categorySubs[sub.StripeSubscriptionID] = sub
	return nil
}

func (f *fakeRepo) GetUserByID(userID uint) (*models.User, error) {
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetUserByStripeCustomerID(stripeCustomerID string) (*models.User, error) {
	for _, sub := range f.contractorSubs {
		if sub.StripeCustomerID == stripeCustomerID {
			return f.GetUserByID(sub.UserID)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) TransactionExists(stripeInvoiceID, status string) (bool, error) {
	for _, txn := range f.transactions {
		if txn.StripeInvoiceID == stripeInvoiceID && txn.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateTransaction(txn *models.Transaction) error {
	txn.ID = f.id()
	f.transactions = append(f.transactions, *txn)
	return nil
}

func (f *fakeRepo) CreateNotification(notification *models.Notification) error {
	if f.notificationErr != nil {
		return f.notificationErr
	}
	notification.ID = f.id()
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeRepo) ListActiveTierQuotas() ([]models.TierQuota, error) {
	return f.quotas, nil
}

func rawEvent(eventType string, object interface{}) stripe.Event {
	raw, err := json.Marshal(object)
	if err != nil {
		panic(err)
	}
	return stripe.Event{
		ID:   "evt_test",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestRecordWebhookEventDeduplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	in := WebhookEventInput{
		Provider:        ProviderStripe,
		ProviderEventID: "evt_123",
		EventType:       EventInvoicePaid,
		PayloadJSON:     `{"id":"evt_123"}`,
	}

	created, first, err := svc.RecordWebhookEvent(ctx, in)
	if err != nil {
		t.Fatalf("RecordWebhookEvent: %v", err)
	}
	if !created {
		t.Fatalf("first delivery must be recorded as new")
	}

	created, second, err := svc.RecordWebhookEvent(ctx, in)
	if err != nil {
		t.Fatalf("RecordWebhookEvent redelivery: %v", err)
	}
	if created {
		t.Fatalf("redelivery must not be recorded as new")
	}
	if first.ID != second.ID {
		t.Fatalf("redelivery must resolve to the stored event")
	}
}

func TestRecordWebhookEventHashesMissingID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, stored, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    ProviderStripe,
		PayloadJSON: `{"some":"payload"}`,
	})
	if err != nil {
		t.Fatalf("RecordWebhookEvent: %v", err)
	}
	if !created {
		t.Fatalf("expected event to be created")
	}
	if stored.ProviderEventID == "" {
		t.Fatalf("missing event id must be replaced by a payload hash")
	}

	created, _, err = svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    ProviderStripe,
		PayloadJSON: `{"some":"payload"}`,
	})
	if err != nil {
		t.Fatalf("RecordWebhookEvent: %v", err)
	}
	if created {
		t.Fatalf("same payload must hash to the same event id")
	}
}

func TestApplyEventUnknownTypeIsNoop(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	if err := svc.ApplyEvent(context.Background(), rawEvent("customer.created", map[string]string{"id": "cus_1"})); err != nil {
		t.Fatalf("unknown event type must be acknowledged, got %v", err)
	}
}

func TestCheckoutCompletedCreatesSubscription(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &models.User{ID: 7, Role: models.ROLE_CONTRACTOR}
	svc := NewService(repo)

	event := rawEvent(EventCheckoutCompleted, map[string]interface{}{
		"id":                  "cs_1",
		"client_reference_id": "7",
		"customer":            map[string]string{"id": "cus_1"},
		"subscription":        map[string]string{"id": "sub_1"},
		"metadata":            map[string]string{"tier": "renovation"},
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	sub, ok := repo.contractorSubs["sub_1"]
	if !ok {
		t.Fatalf("expected subscription record to be created")
	}
	if sub.UserID != 7 || sub.Tier != models.TierRenovation || sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected one welcome notification, got %d", len(repo.notifications))
	}
}

func TestCheckoutUnknownUserIsIgnored(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	event := rawEvent(EventCheckoutCompleted, map[string]interface{}{
		"id":                  "cs_1",
		"client_reference_id": "42",
		"subscription":        map[string]string{"id": "sub_1"},
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown user must be a graceful no-op, got %v", err)
	}
	if len(repo.contractorSubs) != 0 {
		t.Fatalf("no subscription may be created for an unknown user")
	}
}

func TestSubscriptionUpdatedSyncsStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, Tier: models.TierHandyman,
		Status: models.SubscriptionStatusActive, StripeSubscriptionID: "sub_1",
		CanClaimLeads: true, CanViewLeads: true,
	}
	svc := NewService(repo)

	event := rawEvent(EventSubscriptionUpdated, map[string]interface{}{
		"id":       "sub_1",
		"status":   "past_due",
		"customer": map[string]string{"id": "cus_1"},
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	sub := repo.contractorSubs["sub_1"]
	if sub.Status != models.SubscriptionStatusPastDue {
		t.Fatalf("status = %s, want past_due", sub.Status)
	}
	if sub.CanClaimLeads {
		t.Fatalf("past_due must stop lead claiming")
	}
	if !sub.CanViewLeads {
		t.Fatalf("past_due keeps lead viewing")
	}
}

func TestSubscriptionUpdatedUnknownRecordIsNoop(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	event := rawEvent(EventSubscriptionUpdated, map[string]interface{}{
		"id":     "sub_missing",
		"status": "active",
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown subscription must be a graceful no-op, got %v", err)
	}
	if len(repo.contractorSubs) != 0 {
		t.Fatalf("no record may be created without user attribution")
	}
}

func TestSubscriptionCreatedCategoryScoped(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	event := rawEvent(EventSubscriptionCreated, map[string]interface{}{
		"id":       "sub_cat",
		"status":   "active",
		"metadata": map[string]string{"user_id": "7", "category": "plumbing"},
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	catSub, ok := repo.categorySubs["sub_cat"]
	if !ok {
		t.Fatalf("expected a category subscription record")
	}
	if catSub.UserID != 7 || catSub.Category != "plumbing" || catSub.Status != models.SubscriptionStatusActive {
		t.Fatalf("unexpected category subscription: %+v", catSub)
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("creation must notify the subscriber")
	}
}

func TestOutOfOrderUpdatedThenCreatedConverges(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	updated := rawEvent(EventSubscriptionUpdated, map[string]interface{}{
		"id":     "sub_1",
		"status": "active",
	})
	if err := svc.ApplyEvent(ctx, updated); err != nil {
		t.Fatalf("early updated event must no-op, got %v", err)
	}
	if len(repo.contractorSubs) != 0 {
		t.Fatalf("no record may exist before the creating event")
	}

	created := rawEvent(EventSubscriptionCreated, map[string]interface{}{
		"id":       "sub_1",
		"status":   "active",
		"metadata": map[string]string{"user_id": "7", "tier": "general"},
	})
	if err := svc.ApplyEvent(ctx, created); err != nil {
		t.Fatalf("creating event: %v", err)
	}

	late := rawEvent(EventSubscriptionUpdated, map[string]interface{}{
		"id":     "sub_1",
		"status": "past_due",
	})
	if err := svc.ApplyEvent(ctx, late); err != nil {
		t.Fatalf("converging update: %v", err)
	}
	if repo.contractorSubs["sub_1"].Status != models.SubscriptionStatusPastDue {
		t.Fatalf("state must converge once the base record exists")
	}
}

func TestSubscriptionUpdatedIsSilent(t *testing.T) {
	repo := newFakeRepo()
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, Tier: models.TierHandyman,
		Status: models.SubscriptionStatusActive, StripeSubscriptionID: "sub_1",
	}
	svc := NewService(repo)

	event := rawEvent(EventSubscriptionUpdated, map[string]interface{}{
		"id":                   "sub_1",
		"status":               "active",
		"cancel_at_period_end": true,
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}
	if len(repo.notifications) != 0 {
		t.Fatalf("updated events sync silently, got %d notifications", len(repo.notifications))
	}
	if !repo.contractorSubs["sub_1"].CancelAtPeriodEnd {
		t.Fatalf("cancel_at_period_end must be synced")
	}
}

func TestSubscriptionDeletedRevokesAccess(t *testing.T) {
	repo := newFakeRepo()
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, Tier: models.TierGeneral,
		Status: models.SubscriptionStatusActive, StripeSubscriptionID: "sub_1",
		CanClaimLeads: true, CanViewLeads: true,
	}
	svc := NewService(repo)

	event := rawEvent(EventSubscriptionDeleted, map[string]interface{}{
		"id":          "sub_1",
		"status":      "canceled",
		"canceled_at": time.Now().Unix(),
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	sub := repo.contractorSubs["sub_1"]
	if sub.Status != models.SubscriptionStatusCanceled {
		t.Fatalf("status = %s, want canceled", sub.Status)
	}
	if sub.CanClaimLeads || sub.CanViewLeads {
		t.Fatalf("cancellation must revoke claiming and viewing")
	}
	if sub.CanceledAt == nil {
		t.Fatalf("canceled_at must be recorded")
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected a cancellation notification")
	}
}

func TestInvoicePaidResetsLeadCounterOnNewPeriod(t *testing.T) {
	oldStart := time.Now().AddDate(0, -1, 0).UTC().Truncate(time.Second)
	newStart := time.Now().UTC().Truncate(time.Second)

	repo := newFakeRepo()
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, Tier: models.TierHandyman,
		Status: models.SubscriptionStatusActive, StripeSubscriptionID: "sub_1",
		CurrentPeriodStart: &oldStart, LeadsThisMonth: 4,
		CanClaimLeads: true, CanViewLeads: true,
	}
	svc := NewService(repo)

	event := rawEvent(EventInvoicePaid, map[string]interface{}{
		"id":           "in_1",
		"amount_paid":  4900,
		"currency":     "cad",
		"period_start": newStart.Unix(),
		"period_end":   newStart.AddDate(0, 1, 0).Unix(),
		"subscription": map[string]string{"id": "sub_1"},
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	if len(repo.transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(repo.transactions))
	}
	txn := repo.transactions[0]
	if txn.Amount != 49.00 || txn.Status != models.TransactionStatusCompleted {
		t.Fatalf("unexpected transaction: %+v", txn)
	}

	sub := repo.contractorSubs["sub_1"]
	if sub.LeadsThisMonth != 0 {
		t.Fatalf("new billing period must reset the lead counter, got %d", sub.LeadsThisMonth)
	}
	if sub.CurrentPeriodStart == nil || !sub.CurrentPeriodStart.Equal(newStart) {
		t.Fatalf("period start not advanced: %v", sub.CurrentPeriodStart)
	}
}

func TestInvoicePaidSamePeriodKeepsCounter(t *testing.T) {
	start := time.Now().UTC().Truncate(time.Second)

	repo := newFakeRepo()
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, Tier: models.TierHandyman,
		Status: models.SubscriptionStatusActive, StripeSubscriptionID: "sub_1",
		CurrentPeriodStart: &start, LeadsThisMonth: 4,
		CanClaimLeads: true, CanViewLeads: true,
	}
	svc := NewService(repo)

	event := rawEvent(EventInvoicePaid, map[string]interface{}{
		"id":           "in_1",
		"amount_paid":  4900,
		"currency":     "cad",
		"period_start": start.Unix(),
		"subscription": map[string]string{"id": "sub_1"},
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	if got := repo.contractorSubs["sub_1"].LeadsThisMonth; got != 4 {
		t.Fatalf("same-period invoice must not reset the counter, got %d", got)
	}
}

func TestInvoicePaidRedeliveryIsSkipped(t *testing.T) {
	repo := newFakeRepo()
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, StripeSubscriptionID: "sub_1",
		Status: models.SubscriptionStatusActive,
	}
	repo.transactions = append(repo.transactions, models.Transaction{
		StripeInvoiceID: "in_1",
		Status:          models.TransactionStatusCompleted,
	})
	svc := NewService(repo)

	event := rawEvent(EventInvoicePaid, map[string]interface{}{
		"id":           "in_1",
		"amount_paid":  4900,
		"subscription": map[string]string{"id": "sub_1"},
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	if len(repo.transactions) != 1 {
		t.Fatalf("redelivered invoice must not create a second transaction")
	}
}

func TestInvoiceFailedThenPaidRecordsBoth(t *testing.T) {
	repo := newFakeRepo()
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, StripeSubscriptionID: "sub_1",
		Status: models.SubscriptionStatusActive, CanClaimLeads: true, CanViewLeads: true,
	}
	svc := NewService(repo)
	ctx := context.Background()

	failed := rawEvent(EventInvoiceFailed, map[string]interface{}{
		"id":           "in_1",
		"amount_due":   4900,
		"subscription": map[string]string{"id": "sub_1"},
	})
	if err := svc.ApplyEvent(ctx, failed); err != nil {
		t.Fatalf("failed invoice: %v", err)
	}

	sub := repo.contractorSubs["sub_1"]
	if sub.Status != models.SubscriptionStatusPastDue || sub.CanClaimLeads {
		t.Fatalf("failed payment must mark past_due and stop claiming: %+v", sub)
	}

	paid := rawEvent(EventInvoicePaid, map[string]interface{}{
		"id":           "in_1",
		"amount_paid":  4900,
		"subscription": map[string]string{"id": "sub_1"},
	})
	if err := svc.ApplyEvent(ctx, paid); err != nil {
		t.Fatalf("retried invoice: %v", err)
	}

	if len(repo.transactions) != 2 {
		t.Fatalf("a failed then succeeded invoice must yield two transactions, got %d", len(repo.transactions))
	}
	if repo.contractorSubs["sub_1"].Status != models.SubscriptionStatusActive {
		t.Fatalf("successful retry must restore active status")
	}
}

func TestNotificationFailureDoesNotPropagate(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &models.User{ID: 7, Role: models.ROLE_CONTRACTOR}
	repo.notificationErr = fmt.Errorf("notification table unavailable")
	svc := NewService(repo)

	event := rawEvent(EventCheckoutCompleted, map[string]interface{}{
		"id":                  "cs_1",
		"client_reference_id": "7",
		"subscription":        map[string]string{"id": "sub_1"},
		"metadata":            map[string]string{"tier": "handyman"},
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("side effect failure must not fail the event, got %v", err)
	}
	if _, ok := repo.contractorSubs["sub_1"]; !ok {
		t.Fatalf("core state change must survive a side effect failure")
	}
}

func TestTrialWillEndNotifies(t *testing.T) {
	repo := newFakeRepo()
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, StripeSubscriptionID: "sub_1",
		Status: models.SubscriptionStatusTrialing,
	}
	svc := NewService(repo)

	event := rawEvent(EventTrialWillEnd, map[string]interface{}{
		"id":     "sub_1",
		"status": "trialing",
	})
	if err := svc.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected a trial reminder notification")
	}
	if repo.contractorSubs["sub_1"].Status != models.SubscriptionStatusTrialing {
		t.Fatalf("trial reminder must not change subscription state")
	}
}

func TestResolveEntitlementsPrefersTierSubscription(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &models.User{ID: 7, Role: models.ROLE_CONTRACTOR}
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, Tier: models.TierRenovation,
		Status: models.SubscriptionStatusActive, StripeSubscriptionID: "sub_1",
	}
	repo.categorySubs["sub_old"] = &models.CategorySubscription{
		ID: 2, UserID: 7, Category: "plumbing",
		Status: models.SubscriptionStatusCanceled, StripeSubscriptionID: "sub_old",
	}
	svc := NewService(repo)

	ent, err := svc.ResolveEntitlements(context.Background(), 7)
	if err != nil {
		t.Fatalf("ResolveEntitlements: %v", err)
	}
	if ent.Tier != entitlements.TierRenovation || !ent.IsPro {
		t.Fatalf("tier subscription must win over legacy rows: %+v", ent)
	}
	if ent.CategoryLimit != 10 {
		t.Fatalf("category limit = %d, want 10", ent.CategoryLimit)
	}
}

func TestResolveEntitlementsLegacyFallback(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &models.User{ID: 7, Role: models.ROLE_CONTRACTOR}
	repo.categorySubs["sub_old"] = &models.CategorySubscription{
		ID: 1, UserID: 7, Category: "roofing",
		Status: models.SubscriptionStatusActive, StripeSubscriptionID: "sub_old",
	}
	svc := NewService(repo)

	ent, err := svc.ResolveEntitlements(context.Background(), 7)
	if err != nil {
		t.Fatalf("ResolveEntitlements: %v", err)
	}
	if !ent.IsPro || !ent.CanAcceptJobs {
		t.Fatalf("active legacy category row must entitle the user: %+v", ent)
	}
}

func TestResolveEntitlementsUsesQuotaTable(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &models.User{ID: 7, Role: models.ROLE_CONTRACTOR}
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, Tier: models.TierHandyman,
		Status: models.SubscriptionStatusActive, StripeSubscriptionID: "sub_1",
	}
	repo.quotas = []models.TierQuota{
		{Tier: models.TierHandyman, CategoryLimit: 7, FeaturesJSON: `["browse_jobs"]`, IsActive: true},
	}
	svc := NewService(repo)

	ent, err := svc.ResolveEntitlements(context.Background(), 7)
	if err != nil {
		t.Fatalf("ResolveEntitlements: %v", err)
	}
	if ent.CategoryLimit != 7 {
		t.Fatalf("quota table must override defaults, got limit %d", ent.CategoryLimit)
	}
}

func TestResolveEntitlementsCompAccess(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &models.User{ID: 7, Role: models.ROLE_CONTRACTOR}
	repo.contractorSubs["sub_1"] = &models.ContractorSubscription{
		ID: 1, UserID: 7, Tier: models.TierHandyman,
		Status: models.SubscriptionStatusCanceled, StripeSubscriptionID: "sub_1",
		CompAccess: true,
	}
	svc := NewService(repo)

	ent, err := svc.ResolveEntitlements(context.Background(), 7)
	if err != nil {
		t.Fatalf("ResolveEntitlements: %v", err)
	}
	if !ent.IsPro || ent.CategoryLimit != entitlements.UnlimitedCategories {
		t.Fatalf("comp access must grant unlimited entitlements: %+v", ent)
	}
}
