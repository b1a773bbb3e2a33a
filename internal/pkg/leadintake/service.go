package leadintake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/renolink/RenoLink/app/models"
	"gorm.io/gorm"
)

// Defaults for the fixed submission window.
const (
	DefaultSubmissionLimit  = 5
	DefaultSubmissionWindow = 10 * time.Minute
)

// Block reasons returned to the client for rejected submissions. These are
// expected traffic, never logged as errors.
const (
	BlockHoneypot    = "honeypot"
	BlockRateLimit   = "rate_limit"
	BlockValidation  = "validation"
	BlockInvalidRole = "invalid_role"
)

// BlockedError is a guardrail rejection with a machine-readable reason and,
// for validation failures, a per-field message map.
type BlockedError struct {
	Reason      string
	FieldErrors map[string]string
}

func (e *BlockedError) Error() string {
	return "submission blocked: " + e.Reason
}

// CaptchaVerifier checks a captcha token. Optional; nil skips the step.
type CaptchaVerifier func(token string) (bool, error)

// Identity is the authenticated submitter as resolved by the session or
// identity provider. A local profile is created lazily from it.
type Identity struct {
	Email string
	Name  string
	Phone string
}

// SubmitInput is one raw lead submission as received from the public form.
type SubmitInput struct {
	PostalCode  string `validate:"required,ca_postal"`
	ProjectType string `validate:"required,max=100"`
	Title       string `validate:"required,min=3,max=200"`
	Description string `validate:"required,min=10"`
	Budget      string `validate:"max=50"`
	PhotosJSON  string `validate:"-"`

	// Website is the honeypot field. Humans never see it; anything in it
	// marks the submission as bot traffic.
	Website string `validate:"-"`

	CaptchaToken  string `validate:"-"`
	AffiliateCode string `validate:"max=100"`
}

// SubmitResult is what the public endpoint renders on success.
type SubmitResult struct {
	Lead     *models.Lead
	Estimate string
}

// Service runs the submission guardrail pipeline.
type Service struct {
	repo          Repository
	limiter       *Limiter
	verifyCaptcha CaptchaVerifier
}

// NewService creates a lead intake service with the default window limits.
func NewService(repo Repository, store WindowStore) *Service {
	return &Service{
		repo:    repo,
		limiter: NewLimiter(store, DefaultSubmissionLimit, DefaultSubmissionWindow),
	}
}

// NewServiceFromDB creates a lead intake service from a GORM DB handle with
// a process-local rate limit window.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewMemoryWindowStore())
}

// SetCaptchaVerifier enables captcha checking for non-trapped submissions.
func (s *Service) SetCaptchaVerifier(verify CaptchaVerifier) {
	s.verifyCaptcha = verify
}

// Submit runs the guardrail pipeline in its fixed order: honeypot, rate
// limit, field validation, identity, persistence. Each stage only runs when
// every stage before it passed, so a filled honeypot short-circuits before
// any counting or validation happens.
func (s *Service) Submit(ctx context.Context, in SubmitInput, identity Identity, sourceID string) (*SubmitResult, error) {
	_ = ctx

	if in.Website != "" {
		log.Printf("[LeadIntake] honeypot tripped from %s, blocking", sourceID)
		return nil, &BlockedError{Reason: BlockHoneypot}
	}

	if !s.limiter.Allow("leadintake:src:" + sourceID) {
		return nil, &BlockedError{Reason: BlockRateLimit}
	}

	if s.verifyCaptcha != nil {
		ok, err := s.verifyCaptcha(in.CaptchaToken)
		if err != nil || !ok {
			return nil, &BlockedError{Reason: BlockValidation, FieldErrors: map[string]string{
				"captcha": "captcha verification failed",
			}}
		}
	}

	if fieldErrs := validateSubmission(&in); fieldErrs != nil {
		return nil, &BlockedError{Reason: BlockValidation, FieldErrors: fieldErrs}
	}

	homeowner, err := s.repo.FindOrCreateHomeowner(identity.Email, identity.Name, identity.Phone)
	if err != nil {
		return nil, err
	}
	if !homeowner.IsHomeowner() {
		return nil, &BlockedError{Reason: BlockInvalidRole}
	}

	lead := &models.Lead{
		HomeownerID:   homeowner.ID,
		PostalCode:    NormalizePostalCode(in.PostalCode),
		Category:      in.ProjectType,
		Title:         in.Title,
		Description:   in.Description,
		Budget:        in.Budget,
		Status:        models.LeadStatusOpen,
		Published:     true,
		PhotosJSON:    in.PhotosJSON,
		Estimate:      GenerateEstimate(in.ProjectType, in.Description, in.PostalCode),
		AffiliateCode: in.AffiliateCode,
	}
	if err := s.repo.CreateLead(lead); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, fmt.Errorf("this project request already exists")
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, fmt.Errorf("your account could not be linked to this request, please sign in again")
		default:
			return nil, err
		}
	}

	s.runSideEffects(lead, homeowner)

	return &SubmitResult{Lead: lead, Estimate: lead.Estimate}, nil
}

// runSideEffects fires the post-persistence extras. The lead is already
// saved; nothing here may surface as a submission failure.
func (s *Service) runSideEffects(lead *models.Lead, homeowner *models.User) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[LeadIntake] side effect panicked for lead %d: %v", lead.ID, r)
		}
	}()

	if lead.AffiliateCode != "" {
		ref := &models.AffiliateReferral{LeadID: lead.ID, Code: lead.AffiliateCode}
		if err := s.repo.CreateAffiliateReferral(ref); err != nil {
			log.Printf("[LeadIntake] failed to record affiliate referral for lead %d: %v", lead.ID, err)
		}
	}

	notification := &models.Notification{
		UserID:        homeowner.ID,
		Type:          models.NotificationTypeLead,
		Title:         "Project request received",
		Message:       fmt.Sprintf("We received your %s project request. Contractors in your area will be in touch.", lead.Category),
		ReferenceType: "lead",
		ReferenceID:   fmt.Sprintf("%d", lead.ID),
	}
	if err := s.repo.CreateNotification(notification); err != nil {
		log.Printf("[LeadIntake] failed to notify homeowner %d: %v", homeowner.ID, err)
	}
}
