package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/renolink/RenoLink/app/models"
	"github.com/renolink/RenoLink/internal/pkg/entitlements"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"
)

// Service reconciles provider webhook events against local subscription state.
type Service struct {
	repo    Repository
	effects *Dispatcher
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, effects: NewDispatcher(repo)}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordWebhookEvent persists webhook payloads idempotently. The bool result
// reports whether this delivery is the first one seen for the event id.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		CorrelationID:   in.CorrelationID,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ApplyEvent routes a verified Stripe event through the state machine. Events
// referencing records we do not know are logged and acknowledged, never
// errored: Stripe retries are for our outages, not for data we never had.
func (s *Service) ApplyEvent(ctx context.Context, event stripe.Event) error {
	switch string(event.Type) {
	case EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case EventSubscriptionCreated:
		return s.handleSubscriptionCreated(ctx, event)
	case EventSubscriptionUpdated:
		return s.handleSubscriptionUpdated(ctx, event)
	case EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, event)
	case EventInvoicePaid:
		return s.handleInvoicePaid(ctx, event)
	case EventInvoiceFailed:
		return s.handleInvoiceFailed(ctx, event)
	case EventTrialWillEnd:
		return s.handleTrialWillEnd(ctx, event)
	default:
		log.Printf("[Billing] ignoring unhandled event type: %s", event.Type)
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	_ = ctx
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}

	userID := userIDFromCheckout(&session)
	if userID == 0 {
		log.Printf("[Billing] checkout %s carries no user reference, ignoring", session.ID)
		return nil
	}
	if _, err := s.repo.GetUserByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Billing] checkout %s references unknown user %d, ignoring", session.ID, userID)
			return nil
		}
		return err
	}

	subscriptionID := ""
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}
	if subscriptionID == "" {
		log.Printf("[Billing] checkout %s is not a subscription checkout, ignoring", session.ID)
		return nil
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}

	tier := entitlements.ParseTier(session.Metadata["tier"])
	sub := &models.ContractorSubscription{
		UserID:               userID,
		Tier:                 string(tier),
		Status:               models.SubscriptionStatusActive,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: subscriptionID,
		CanClaimLeads:        true,
		CanViewLeads:         true,
	}
	if err := s.repo.UpsertContractorSubscription(sub); err != nil {
		return err
	}

	s.effects.Notify(userID, models.NotificationTypeSubscription,
		"Subscription activated",
		fmt.Sprintf("Your %s plan is now active. Welcome aboard!", tier),
		"contractor_subscription", subscriptionID)
	return nil
}

// handleSubscriptionCreated establishes the base record for a provider
// subscription. Category-scoped creations land in the legacy model; a
// redelivery for a known id only refreshes period bounds.
func (s *Service) handleSubscriptionCreated(ctx context.Context, event stripe.Event) error {
	_ = ctx
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	status := MapStripeStatus(stripeSub.Status)
	periodStart := unixTime(stripeSub.CurrentPeriodStart)
	periodEnd := unixTime(stripeSub.CurrentPeriodEnd)

	if catSub, err := s.repo.GetCategorySubscriptionByStripeID(stripeSub.ID); err == nil {
		catSub.CurrentPeriodStart = periodStart
		catSub.CurrentPeriodEnd = periodEnd
		catSub.NextBillingDate = periodEnd
		return s.repo.SaveCategorySubscription(catSub)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing, err := s.repo.GetContractorSubscriptionByStripeID(stripeSub.ID); err == nil {
		existing.CurrentPeriodStart = periodStart
		existing.CurrentPeriodEnd = periodEnd
		return s.repo.SaveContractorSubscription(existing)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	userID := parseUserID(stripeSub.Metadata["user_id"])
	if userID == 0 {
		log.Printf("[Billing] created subscription %s carries no user metadata, ignoring", stripeSub.ID)
		return nil
	}

	if category := strings.TrimSpace(stripeSub.Metadata["category"]); category != "" {
		catSub := &models.CategorySubscription{
			UserID:               userID,
			Category:             category,
			MonthlyPrice:         monthlyPriceFromItems(&stripeSub),
			Status:               status,
			StripeSubscriptionID: stripeSub.ID,
			CurrentPeriodStart:   periodStart,
			CurrentPeriodEnd:     periodEnd,
			NextBillingDate:      periodEnd,
			CanClaimLeads:        isEntitlingStatus(status),
			CanViewLeads:         status != models.SubscriptionStatusCanceled,
		}
		if err := s.repo.SaveCategorySubscription(catSub); err != nil {
			return err
		}
		s.effects.Notify(userID, models.NotificationTypeSubscription,
			"Category subscription started",
			fmt.Sprintf("You are now receiving %s leads in your area.", category),
			"category_subscription", stripeSub.ID)
		return nil
	}

	tier := entitlements.ParseTier(stripeSub.Metadata["tier"])
	if tier == entitlements.TierNone {
		tier = tierFromPrice(&stripeSub)
	}
	customerID := ""
	if stripeSub.Customer != nil {
		customerID = stripeSub.Customer.ID
	}
	sub := &models.ContractorSubscription{
		UserID:               userID,
		Tier:                 string(tier),
		Status:               status,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: stripeSub.ID,
		BillingInterval:      intervalFromPrice(&stripeSub),
		CurrentPeriodStart:   periodStart,
		CurrentPeriodEnd:     periodEnd,
		CancelAtPeriodEnd:    stripeSub.CancelAtPeriodEnd,
		CanClaimLeads:        isEntitlingStatus(status),
		CanViewLeads:         status != models.SubscriptionStatusCanceled,
	}
	if err := s.repo.UpsertContractorSubscription(sub); err != nil {
		return err
	}
	s.effects.Notify(userID, models.NotificationTypeSubscription,
		"Subscription started",
		fmt.Sprintf("Your %s plan subscription has started.", tier),
		"contractor_subscription", stripeSub.ID)
	return nil
}

// handleSubscriptionUpdated is a silent last-write-wins sync of status,
// period bounds and cancellation bookkeeping.
func (s *Service) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	_ = ctx
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	status := MapStripeStatus(stripeSub.Status)
	periodStart := unixTime(stripeSub.CurrentPeriodStart)
	periodEnd := unixTime(stripeSub.CurrentPeriodEnd)
	canceledAt := unixTime(stripeSub.CanceledAt)

	// Legacy per-category rows share the provider id space with tier rows;
	// whichever matches is the record this event belongs to.
	if catSub, err := s.repo.GetCategorySubscriptionByStripeID(stripeSub.ID); err == nil {
		catSub.Status = status
		catSub.CurrentPeriodStart = periodStart
		catSub.CurrentPeriodEnd = periodEnd
		catSub.NextBillingDate = periodEnd
		catSub.CanClaimLeads = isEntitlingStatus(status)
		catSub.CanViewLeads = status != models.SubscriptionStatusCanceled
		return s.repo.SaveCategorySubscription(catSub)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	sub, err := s.repo.GetContractorSubscriptionByStripeID(stripeSub.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Out-of-order delivery: the creating event has not arrived yet.
			// State converges once it does.
			log.Printf("[Billing] updated subscription %s has no local record yet, ignoring", stripeSub.ID)
			return nil
		}
		return err
	}

	if t := entitlements.ParseTier(stripeSub.Metadata["tier"]); t != entitlements.TierNone {
		sub.Tier = string(t)
	} else if t := tierFromPrice(&stripeSub); t != entitlements.TierNone {
		sub.Tier = string(t)
	}
	if stripeSub.Customer != nil {
		sub.StripeCustomerID = stripeSub.Customer.ID
	}
	if interval := intervalFromPrice(&stripeSub); interval != models.BillingIntervalUnknown {
		sub.BillingInterval = interval
	}
	sub.Status = status
	sub.CurrentPeriodStart = periodStart
	sub.CurrentPeriodEnd = periodEnd
	sub.CancelAtPeriodEnd = stripeSub.CancelAtPeriodEnd
	sub.CanceledAt = canceledAt
	sub.CanClaimLeads = isEntitlingStatus(status)
	sub.CanViewLeads = status != models.SubscriptionStatusCanceled
	return s.repo.SaveContractorSubscription(sub)
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	_ = ctx
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	canceledAt := unixTime(stripeSub.CanceledAt)
	if canceledAt == nil {
		now := time.Now()
		canceledAt = &now
	}

	if catSub, err := s.repo.GetCategorySubscriptionByStripeID(stripeSub.ID); err == nil {
		catSub.Status = models.SubscriptionStatusCanceled
		catSub.CanClaimLeads = false
		catSub.CanViewLeads = false
		if err := s.repo.SaveCategorySubscription(catSub); err != nil {
			return err
		}
		s.effects.Notify(catSub.UserID, models.NotificationTypeSubscription,
			"Subscription canceled",
			fmt.Sprintf("Your %s category subscription has been canceled.", catSub.Category),
			"category_subscription", stripeSub.ID)
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	sub, err := s.repo.GetContractorSubscriptionByStripeID(stripeSub.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Billing] deleted subscription %s has no local record, ignoring", stripeSub.ID)
			return nil
		}
		return err
	}

	sub.Status = models.SubscriptionStatusCanceled
	sub.CanceledAt = canceledAt
	sub.CanClaimLeads = false
	sub.CanViewLeads = false
	if err := s.repo.SaveContractorSubscription(sub); err != nil {
		return err
	}

	s.effects.Notify(sub.UserID, models.NotificationTypeSubscription,
		"Subscription canceled",
		"Your subscription has been canceled. You can resubscribe at any time.",
		"contractor_subscription", stripeSub.ID)
	return nil
}

func (s *Service) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	_ = ctx
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}

	subscriptionID := invoiceSubscriptionID(&invoice)
	if subscriptionID == "" {
		log.Printf("[Billing] invoice %s is not tied to a subscription, ignoring", invoice.ID)
		return nil
	}

	// Redelivery guard: one completed transaction per invoice, ever.
	exists, err := s.repo.TransactionExists(invoice.ID, models.TransactionStatusCompleted)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("[Billing] invoice %s already recorded as completed, skipping", invoice.ID)
		return nil
	}

	periodStart := unixTime(invoice.PeriodStart)
	periodEnd := unixTime(invoice.PeriodEnd)

	if catSub, err := s.repo.GetCategorySubscriptionByStripeID(subscriptionID); err == nil {
		return s.applyPaidInvoiceToCategory(catSub, &invoice, subscriptionID, periodStart, periodEnd)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	sub, err := s.repo.GetContractorSubscriptionByStripeID(subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Billing] invoice %s references unknown subscription %s, ignoring", invoice.ID, subscriptionID)
			return nil
		}
		return err
	}

	txn := &models.Transaction{
		UserID:                sub.UserID,
		Type:                  models.TransactionTypeSubscription,
		Amount:                float64(invoice.AmountPaid) / 100,
		Currency:              string(invoice.Currency),
		Status:                models.TransactionStatusCompleted,
		PeriodStart:           periodStart,
		PeriodEnd:             periodEnd,
		StripeInvoiceID:       invoice.ID,
		StripeSubscriptionID:  subscriptionID,
		StripePaymentIntentID: invoicePaymentIntentID(&invoice),
	}
	if err := s.repo.CreateTransaction(txn); err != nil {
		return err
	}

	// The monthly lead counter only resets when the invoice opens a new
	// billing period. A redelivered or backfilled invoice for the current
	// period must not hand out a fresh quota.
	if startsNewPeriod(sub.CurrentPeriodStart, periodStart) {
		sub.LeadsThisMonth = 0
		sub.CurrentPeriodStart = periodStart
		sub.CurrentPeriodEnd = periodEnd
	}
	sub.Status = models.SubscriptionStatusActive
	sub.CanClaimLeads = true
	sub.CanViewLeads = true
	if err := s.repo.SaveContractorSubscription(sub); err != nil {
		return err
	}

	s.effects.Notify(sub.UserID, models.NotificationTypePayment,
		"Payment received",
		fmt.Sprintf("Your payment of $%.2f was processed successfully.", txn.Amount),
		"transaction", invoice.ID)
	return nil
}

func (s *Service) applyPaidInvoiceToCategory(catSub *models.CategorySubscription, invoice *stripe.Invoice, subscriptionID string, periodStart, periodEnd *time.Time) error {
	txn := &models.Transaction{
		UserID:                catSub.UserID,
		Type:                  models.TransactionTypeSubscription,
		Amount:                float64(invoice.AmountPaid) / 100,
		Currency:              string(invoice.Currency),
		Status:                models.TransactionStatusCompleted,
		Category:              catSub.Category,
		PeriodStart:           periodStart,
		PeriodEnd:             periodEnd,
		StripeInvoiceID:       invoice.ID,
		StripeSubscriptionID:  subscriptionID,
		StripePaymentIntentID: invoicePaymentIntentID(invoice),
	}
	if err := s.repo.CreateTransaction(txn); err != nil {
		return err
	}

	if startsNewPeriod(catSub.CurrentPeriodStart, periodStart) {
		catSub.LeadsThisMonth = 0
		catSub.CurrentPeriodStart = periodStart
		catSub.CurrentPeriodEnd = periodEnd
		catSub.NextBillingDate = periodEnd
	}
	catSub.Status = models.SubscriptionStatusActive
	catSub.CanClaimLeads = true
	catSub.CanViewLeads = true
	if err := s.repo.SaveCategorySubscription(catSub); err != nil {
		return err
	}

	s.effects.Notify(catSub.UserID, models.NotificationTypePayment,
		"Payment received",
		fmt.Sprintf("Your payment of $%.2f for %s was processed successfully.", txn.Amount, catSub.Category),
		"transaction", invoice.ID)
	return nil
}

func (s *Service) handleInvoiceFailed(ctx context.Context, event stripe.Event) error {
	_ = ctx
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}

	subscriptionID := invoiceSubscriptionID(&invoice)
	if subscriptionID == "" {
		log.Printf("[Billing] failed invoice %s is not tied to a subscription, ignoring", invoice.ID)
		return nil
	}

	exists, err := s.repo.TransactionExists(invoice.ID, models.TransactionStatusFailed)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("[Billing] invoice %s already recorded as failed, skipping", invoice.ID)
		return nil
	}

	userID := uint(0)
	category := ""
	if catSub, catErr := s.repo.GetCategorySubscriptionByStripeID(subscriptionID); catErr == nil {
		catSub.Status = models.SubscriptionStatusPastDue
		catSub.CanClaimLeads = false
		if err := s.repo.SaveCategorySubscription(catSub); err != nil {
			return err
		}
		userID = catSub.UserID
		category = catSub.Category
	} else if !errors.Is(catErr, gorm.ErrRecordNotFound) {
		return catErr
	} else {
		sub, subErr := s.repo.GetContractorSubscriptionByStripeID(subscriptionID)
		if subErr != nil {
			if errors.Is(subErr, gorm.ErrRecordNotFound) {
				log.Printf("[Billing] failed invoice %s references unknown subscription %s, ignoring", invoice.ID, subscriptionID)
				return nil
			}
			return subErr
		}
		sub.Status = models.SubscriptionStatusPastDue
		sub.CanClaimLeads = false
		if err := s.repo.SaveContractorSubscription(sub); err != nil {
			return err
		}
		userID = sub.UserID
	}

	txn := &models.Transaction{
		UserID:               userID,
		Type:                 models.TransactionTypeSubscription,
		Amount:               float64(invoice.AmountDue) / 100,
		Currency:             string(invoice.Currency),
		Status:               models.TransactionStatusFailed,
		Category:             category,
		StripeInvoiceID:      invoice.ID,
		StripeSubscriptionID: subscriptionID,
	}
	if err := s.repo.CreateTransaction(txn); err != nil {
		return err
	}

	s.effects.Notify(userID, models.NotificationTypePayment,
		"Payment failed",
		"We could not process your payment. Please update your payment method to keep claiming leads.",
		"transaction", invoice.ID)
	return nil
}

func (s *Service) handleTrialWillEnd(ctx context.Context, event stripe.Event) error {
	_ = ctx
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	sub, err := s.repo.GetContractorSubscriptionByStripeID(stripeSub.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Billing] trial reminder for unknown subscription %s, ignoring", stripeSub.ID)
			return nil
		}
		return err
	}

	s.effects.Notify(sub.UserID, models.NotificationTypeSubscription,
		"Trial ending soon",
		"Your trial ends in three days. Add a payment method to keep your plan.",
		"contractor_subscription", stripeSub.ID)
	return nil
}

// SubscriberStateForUser assembles the entitlement input for a user: the
// newest tier subscription when one exists, else the legacy category rows.
func (s *Service) SubscriberStateForUser(ctx context.Context, userID uint) (entitlements.SubscriberState, error) {
	_ = ctx
	state := entitlements.SubscriberState{Kind: entitlements.KindTier, Tier: entitlements.TierNone}
	if userID == 0 {
		return state, errors.New("user_id is required")
	}

	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return state, err
	}

	subs, err := s.repo.ListContractorSubscriptionsByUser(userID)
	if err != nil {
		return state, err
	}

	var best *models.ContractorSubscription
	for i := range subs {
		sub := &subs[i]
		if sub.CompAccess {
			state.CompAccess = true
		}
		if best == nil || subRank(sub) > subRank(best) ||
			(subRank(sub) == subRank(best) && sub.UpdatedAt.After(best.UpdatedAt)) {
			best = sub
		}
	}
	if user.Role == models.ROLE_ADMIN {
		state.CompAccess = true
	}

	if best != nil {
		state.Tier = entitlements.ParseTier(best.Tier)
		state.Status = best.Status
		return state, nil
	}

	catSubs, err := s.repo.ListCategorySubscriptionsByUser(userID)
	if err != nil {
		return state, err
	}
	if len(catSubs) == 0 {
		return state, nil
	}

	state.Kind = entitlements.KindCategory
	for _, cs := range catSubs {
		state.CategorySubs = append(state.CategorySubs, entitlements.CategoryState{
			Category:      cs.Category,
			Status:        cs.Status,
			CanClaimLeads: cs.CanClaimLeads,
			CanViewLeads:  cs.CanViewLeads,
		})
	}
	return state, nil
}

// ResolveEntitlements computes the current capability set for a user using
// the quota table when available, shipped defaults otherwise.
func (s *Service) ResolveEntitlements(ctx context.Context, userID uint) (entitlements.Entitlements, error) {
	state, err := s.SubscriberStateForUser(ctx, userID)
	if err != nil {
		return entitlements.Entitlements{}, err
	}
	return entitlements.Resolve(state, s.entitlementConfig()), nil
}

func (s *Service) entitlementConfig() entitlements.Config {
	quotas, err := s.repo.ListActiveTierQuotas()
	if err != nil || len(quotas) == 0 {
		return entitlements.DefaultConfig()
	}

	cfg := entitlements.Config{
		Quotas:   make(map[entitlements.Tier]int, len(quotas)),
		Features: make(map[entitlements.Tier][]string, len(quotas)),
	}
	for _, q := range quotas {
		tier := entitlements.Tier(strings.ToLower(strings.TrimSpace(q.Tier)))
		cfg.Quotas[tier] = q.CategoryLimit

		var features []string
		if q.FeaturesJSON != "" {
			if err := json.Unmarshal([]byte(q.FeaturesJSON), &features); err != nil {
				log.Printf("[Billing] bad features json for tier %s: %v", q.Tier, err)
			}
		}
		cfg.Features[tier] = features
	}
	return cfg
}

// subRank orders subscriptions so the healthiest one wins reconciliation.
func subRank(sub *models.ContractorSubscription) int {
	base := 0
	if isEntitlingStatus(sub.Status) {
		base = 100
	} else if sub.Status == models.SubscriptionStatusPastDue {
		base = 50
	}
	return base + entitlements.TierRank(entitlements.ParseTier(sub.Tier))
}

// startsNewPeriod reports whether the invoice period begins after what we
// have stored, i.e. the invoice opens a fresh billing cycle.
func startsNewPeriod(stored, invoiceStart *time.Time) bool {
	if invoiceStart == nil {
		return false
	}
	if stored == nil {
		return true
	}
	return invoiceStart.After(*stored)
}

func unixTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

func parseUserID(raw string) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

func userIDFromCheckout(session *stripe.CheckoutSession) uint {
	if id := parseUserID(session.ClientReferenceID); id != 0 {
		return id
	}
	return parseUserID(session.Metadata["user_id"])
}

func tierFromPrice(sub *stripe.Subscription) entitlements.Tier {
	if sub.Items == nil {
		return entitlements.TierNone
	}
	for _, item := range sub.Items.Data {
		if item.Price == nil {
			continue
		}
		if t := entitlements.ParseTier(item.Price.LookupKey); t != entitlements.TierNone {
			return t
		}
		if t := entitlements.ParseTier(item.Price.Nickname); t != entitlements.TierNone {
			return t
		}
		if t := entitlements.ParseTier(item.Price.Metadata["tier"]); t != entitlements.TierNone {
			return t
		}
	}
	return entitlements.TierNone
}

func intervalFromPrice(sub *stripe.Subscription) string {
	if sub.Items == nil {
		return models.BillingIntervalUnknown
	}
	for _, item := range sub.Items.Data {
		if item.Price != nil && item.Price.Recurring != nil {
			return normalizeInterval(string(item.Price.Recurring.Interval))
		}
	}
	return models.BillingIntervalUnknown
}

func monthlyPriceFromItems(sub *stripe.Subscription) float64 {
	if sub.Items == nil {
		return 0
	}
	for _, item := range sub.Items.Data {
		if item.Price != nil && item.Price.UnitAmount > 0 {
			return float64(item.Price.UnitAmount) / 100
		}
	}
	return 0
}

func invoiceSubscriptionID(invoice *stripe.Invoice) string {
	if invoice.Subscription != nil {
		return invoice.Subscription.ID
	}
	return ""
}

func invoicePaymentIntentID(invoice *stripe.Invoice) string {
	if invoice.PaymentIntent != nil {
		return invoice.PaymentIntent.ID
	}
	return ""
}
