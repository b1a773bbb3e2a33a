package leadintake

import (
	"context"
	"errors"
	"testing"

	"github.com/renolink/RenoLink/app/models"
)

type fakeRepo struct {
	users           map[string]*models.User
	leads           []*models.Lead
	referrals       []models.AffiliateReferral
	notifications   []models.Notification
	notificationErr error
	referralErr     error
	leadErr         error
	nextID          uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*models.User{}}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) FindOrCreateHomeowner(email, name, phone string) (*models.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	user := &models.User{
		ID:     f.id(),
		Name:   name,
		Email:  email,
		Phone:  phone,
		Role:   models.ROLE_HOMEOWNER,
		Status: models.STATUS_ACTIVE,
	}
	f.users[email] = user
	return user, nil
}

func (f *fakeRepo) CreateLead(lead *models.Lead) error {
	if f.leadErr != nil {
		return f.leadErr
	}
	lead.ID = f.id()
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeRepo) CreateAffiliateReferral(ref *models.AffiliateReferral) error {
	if f.referralErr != nil {
		return f.referralErr
	}
	f.referrals = append(f.referrals, *ref)
	return nil
}

func (f *fakeRepo) CreateNotification(notification *models.Notification) error {
	if f.notificationErr != nil {
		return f.notificationErr
	}
	f.notifications = append(f.notifications, *notification)
	return nil
}

func validInput() SubmitInput {
	return SubmitInput{
		PostalCode:  "M5V 2T6",
		ProjectType: "Kitchen Renovation",
		Title:       "Redo kitchen",
		Description: "Replace cabinets and counters",
		Budget:      "$10,000+",
	}
}

func homeownerIdentity() Identity {
	return Identity{Email: "jamie@example.com", Name: "Jamie Tremblay"}
}

func blockedReason(t *testing.T, err error) *BlockedError {
	t.Helper()
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected a blocked error, got %v", err)
	}
	return blocked
}

func TestSubmitCreatesLeadAndLazyProfile(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, NewMemoryWindowStore())

	result, err := svc.Submit(context.Background(), validInput(), homeownerIdentity(), "203.0.113.1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Lead == nil || result.Lead.ID == 0 {
		t.Fatalf("expected a persisted lead")
	}
	if result.Lead.Status != models.LeadStatusOpen || !result.Lead.Published {
		t.Fatalf("new lead must be open and published: %+v", result.Lead)
	}
	if result.Lead.PostalCode != "M5V 2T6" {
		t.Fatalf("postal code = %q", result.Lead.PostalCode)
	}
	if !estimateFormatRe.MatchString(result.Estimate) {
		t.Fatalf("estimate %q does not match $X,XXX - $Y,YYY", result.Estimate)
	}

	user, ok := repo.users["jamie@example.com"]
	if !ok {
		t.Fatalf("expected lazy homeowner profile creation")
	}
	if user.Role != models.ROLE_HOMEOWNER {
		t.Fatalf("lazy profile role = %s", user.Role)
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected a confirmation notification")
	}
}

func TestSubmitReusesExistingHomeowner(t *testing.T) {
	repo := newFakeRepo()
	repo.users["jamie@example.com"] = &models.User{
		ID: 42, Email: "jamie@example.com", Role: models.ROLE_HOMEOWNER, Status: models.STATUS_ACTIVE,
	}
	svc := NewService(repo, NewMemoryWindowStore())

	result, err := svc.Submit(context.Background(), validInput(), homeownerIdentity(), "203.0.113.1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Lead.HomeownerID != 42 {
		t.Fatalf("lead must attach to the existing profile, got homeowner %d", result.Lead.HomeownerID)
	}
	if len(repo.users) != 1 {
		t.Fatalf("no duplicate profile may be created")
	}
}

func TestSubmitHoneypotShortCircuits(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, NewMemoryWindowStore())

	in := validInput()
	in.Website = "x"
	// Garbage postal code proves the honeypot fires before validation.
	in.PostalCode = "12345"

	_, err := svc.Submit(context.Background(), in, homeownerIdentity(), "203.0.113.1")
	blocked := blockedReason(t, err)
	if blocked.Reason != BlockHoneypot {
		t.Fatalf("reason = %s, want honeypot", blocked.Reason)
	}
	if len(blocked.FieldErrors) != 0 {
		t.Fatalf("honeypot block must not leak field errors")
	}
	if len(repo.leads) != 0 || len(repo.users) != 0 {
		t.Fatalf("trapped submission must leave no trace")
	}

	// A trapped hit must not consume rate limit budget either.
	for i := 0; i < DefaultSubmissionLimit; i++ {
		if _, err := svc.Submit(context.Background(), validInput(), homeownerIdentity(), "203.0.113.1"); err != nil {
			t.Fatalf("submission %d should still fit the window: %v", i+1, err)
		}
	}
}

func TestSubmitRateLimitBlocksSixth(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, NewMemoryWindowStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Submit(ctx, validInput(), homeownerIdentity(), "203.0.113.9"); err != nil {
			t.Fatalf("submission %d should pass: %v", i+1, err)
		}
	}

	_, err := svc.Submit(ctx, validInput(), homeownerIdentity(), "203.0.113.9")
	blocked := blockedReason(t, err)
	if blocked.Reason != BlockRateLimit {
		t.Fatalf("sixth submission in window must be rate limited, got %s", blocked.Reason)
	}

	// A different source is unaffected.
	if _, err := svc.Submit(ctx, validInput(), homeownerIdentity(), "203.0.113.10"); err != nil {
		t.Fatalf("other source must not share the window: %v", err)
	}
}

func TestSubmitInvalidPostalCode(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, NewMemoryWindowStore())

	in := validInput()
	in.PostalCode = "12345"

	_, err := svc.Submit(context.Background(), in, homeownerIdentity(), "203.0.113.1")
	blocked := blockedReason(t, err)
	if blocked.Reason != BlockValidation {
		t.Fatalf("reason = %s, want validation", blocked.Reason)
	}
	if _, ok := blocked.FieldErrors["postalCode"]; !ok {
		t.Fatalf("expected a postalCode field error, got %v", blocked.FieldErrors)
	}
	if len(repo.leads) != 0 {
		t.Fatalf("invalid submission must not persist")
	}
}

func TestSubmitMissingFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, NewMemoryWindowStore())

	_, err := svc.Submit(context.Background(), SubmitInput{}, homeownerIdentity(), "203.0.113.1")
	blocked := blockedReason(t, err)
	if blocked.Reason != BlockValidation {
		t.Fatalf("reason = %s, want validation", blocked.Reason)
	}
	for _, field := range []string{"postalCode", "projectType", "title", "description"} {
		if _, ok := blocked.FieldErrors[field]; !ok {
			t.Fatalf("expected an error for %s, got %v", field, blocked.FieldErrors)
		}
	}
}

func TestSubmitContractorRoleBlocked(t *testing.T) {
	repo := newFakeRepo()
	repo.users["pro@example.com"] = &models.User{
		ID: 9, Email: "pro@example.com", Role: models.ROLE_CONTRACTOR, Status: models.STATUS_ACTIVE,
	}
	svc := NewService(repo, NewMemoryWindowStore())

	_, err := svc.Submit(context.Background(), validInput(), Identity{Email: "pro@example.com"}, "203.0.113.1")
	blocked := blockedReason(t, err)
	if blocked.Reason != BlockInvalidRole {
		t.Fatalf("reason = %s, want invalid_role", blocked.Reason)
	}
	if len(repo.leads) != 0 {
		t.Fatalf("contractor accounts must not submit leads")
	}
}

func TestSubmitSideEffectFailuresSwallowed(t *testing.T) {
	repo := newFakeRepo()
	repo.notificationErr = errors.New("notification table unavailable")
	repo.referralErr = errors.New("referral table unavailable")
	svc := NewService(repo, NewMemoryWindowStore())

	in := validInput()
	in.AffiliateCode = "PARTNER10"

	result, err := svc.Submit(context.Background(), in, homeownerIdentity(), "203.0.113.1")
	if err != nil {
		t.Fatalf("side effect failures must not fail the submission, got %v", err)
	}
	if result.Lead == nil || result.Lead.ID == 0 {
		t.Fatalf("lead must persist despite side effect failures")
	}
	if result.Lead.AffiliateCode != "PARTNER10" {
		t.Fatalf("affiliate code must be stored on the lead")
	}
}

func TestSubmitCaptchaRejection(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, NewMemoryWindowStore())
	svc.SetCaptchaVerifier(func(token string) (bool, error) {
		return token == "good", nil
	})

	in := validInput()
	in.CaptchaToken = "bad"
	_, err := svc.Submit(context.Background(), in, homeownerIdentity(), "203.0.113.1")
	blocked := blockedReason(t, err)
	if blocked.Reason != BlockValidation {
		t.Fatalf("bad captcha must block with validation, got %s", blocked.Reason)
	}

	in.CaptchaToken = "good"
	if _, err := svc.Submit(context.Background(), in, homeownerIdentity(), "203.0.113.1"); err != nil {
		t.Fatalf("good captcha must pass: %v", err)
	}
}
