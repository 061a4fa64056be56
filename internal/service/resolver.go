package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/orbitdesk/portal/internal/audit"
	"github.com/orbitdesk/portal/internal/erp"
	"github.com/orbitdesk/portal/internal/notify"
	"github.com/orbitdesk/portal/internal/session"
)

// ErrMissingContact indicates that neither email nor phone was supplied.
var ErrMissingContact = errors.New("email or phone number required")

// Lookup-path provenance tags.
const (
	SourceByID    = "employee_by_id"
	SourceByEmail = "employee_by_email"
)

// DeniedReason is the machine-readable access-denied cause.
type DeniedReason string

const (
	ReasonNotFound         DeniedReason = "not_found"
	ReasonInactive         DeniedReason = "inactive"
	ReasonSearchFailed     DeniedReason = "search_failed"
	ReasonEmployeeInactive DeniedReason = "employee_inactive"
)

// AccessDeniedError carries the policy rejection back to the transport.
type AccessDeniedError struct {
	Reason  DeniedReason
	Message string
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + string(e.Reason)
}

func denied(reason DeniedReason, message string) *AccessDeniedError {
	return &AccessDeniedError{Reason: reason, Message: message}
}

// Directory is the employee-directory surface the resolver depends on.
type Directory interface {
	SearchByCell(ctx context.Context, cell string) ([]erp.EmployeeSummary, error)
	SearchByEmail(ctx context.Context, email string) ([]erp.EmployeeSummary, error)
	Get(ctx context.Context, id string) (*erp.Employee, error)
}

// SubscriberSync is the notification-service surface. All calls are
// best-effort from the resolver's point of view.
type SubscriberSync interface {
	CreateSubscriber(ctx context.Context, profile notify.Profile) error
	UpdateSubscriber(ctx context.Context, externalID string, contact notify.Contact) error
	AttachDeviceToken(ctx context.Context, externalID, playerID string) error
}

// AuditRecorder persists sign-in events. Best-effort as well.
type AuditRecorder interface {
	RecordSignIn(ctx context.Context, event audit.SignInEvent) error
}

// ResolveInput mirrors the resolver endpoint's request body.
type ResolveInput struct {
	Email          string
	PhoneNumber    string
	AuthProvider   string
	PlayerID       string
	SubscriptionID string
}

// ResolveResult is the successful resolution payload.
type ResolveResult struct {
	User       session.User
	Token      string
	UserSource string
}

// Resolver federates an identity-provider principal against the
// employee directory and enforces the active-status policy.
type Resolver struct {
	dir         Directory
	subscribers SubscriberSync
	auditor     AuditRecorder
	orgDomain   string
	callingCode string
	now         func() time.Time
}

// NewResolver creates the resolver. subscribers and auditor may be nil,
// in which case the corresponding sync is skipped.
func NewResolver(dir Directory, subscribers SubscriberSync, auditor AuditRecorder, orgDomain, callingCode string) *Resolver {
	return &Resolver{
		dir:         dir,
		subscribers: subscribers,
		auditor:     auditor,
		orgDomain:   orgDomain,
		callingCode: callingCode,
		now:         time.Now,
	}
}

// Resolve maps an email and/or phone to exactly one active employee,
// mints the session token and synchronizes the subscriber profile.
func (r *Resolver) Resolve(ctx context.Context, in ResolveInput) (*ResolveResult, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	phone := NormalizePhone(in.PhoneNumber, r.callingCode)

	if email == "" && phone == "" {
		return nil, ErrMissingContact
	}

	provider := strings.TrimSpace(in.AuthProvider)
	if provider == "" {
		if phone != "" && email == "" {
			provider = session.ProviderPhone
		} else {
			provider = session.ProviderEmail
		}
	}

	result, err := r.resolveEmployee(ctx, email, phone, provider)
	r.recordOutcome(ctx, provider, result, err)
	if err != nil {
		return nil, err
	}

	r.syncSubscriber(ctx, result.User, in.PlayerID)

	return result, nil
}

func (r *Resolver) resolveEmployee(ctx context.Context, email, phone, provider string) (*ResolveResult, error) {
	var (
		record *erp.Employee
		source string
	)

	if email == "" {
		// Phone-only path: search first so an inactive or missing
		// record is rejected before the full fetch.
		summaries, err := r.dir.SearchByCell(ctx, phone)
		if err != nil {
			log.Warn().Err(err).Msg("resolver: cell search failed")
			return nil, denied(ReasonSearchFailed, "Could not verify your account. Please try again later.")
		}
		if len(summaries) == 0 {
			return nil, denied(ReasonNotFound, "No employee record matches this phone number.")
		}
		if summaries[0].Status != erp.StatusActive {
			return nil, denied(ReasonInactive, "Your employee record is not active.")
		}

		record, err = r.dir.Get(ctx, summaries[0].ID)
		if err != nil {
			log.Warn().Err(err).Str("employee", summaries[0].ID).Msg("resolver: fetch by id failed")
			return nil, denied(ReasonSearchFailed, "Could not verify your account. Please try again later.")
		}
		source = SourceByID
	} else {
		summaries, err := r.dir.SearchByEmail(ctx, email)
		if err != nil {
			log.Warn().Err(err).Msg("resolver: email search failed")
			return nil, denied(ReasonSearchFailed, "Could not verify your account. Please try again later.")
		}
		if len(summaries) == 0 {
			return nil, denied(ReasonNotFound, "No employee record matches this email.")
		}
		// The summary status is always fresh; the full record may be
		// served from the cache. Reject here so a deactivation takes
		// effect immediately.
		if summaries[0].Status != erp.StatusActive {
			return nil, denied(ReasonInactive, "Your employee record is not active.")
		}

		record, err = r.dir.Get(ctx, summaries[0].ID)
		if err != nil {
			log.Warn().Err(err).Str("employee", summaries[0].ID).Msg("resolver: fetch by id failed")
			return nil, denied(ReasonSearchFailed, "Could not verify your account. Please try again later.")
		}
		source = SourceByEmail
	}

	if !record.Active() {
		return nil, denied(ReasonEmployeeInactive, "Your employee record is not active.")
	}

	user := r.buildUser(record, phone, provider)
	token := session.MintToken(user.UID, r.now())

	return &ResolveResult{User: user, Token: token, UserSource: source}, nil
}

func (r *Resolver) buildUser(record *erp.Employee, phone, provider string) session.User {
	email := strings.TrimSpace(record.CompanyEmail)
	if email == "" {
		// Phone-only employees may lack a company email; synthesize a
		// placeholder from the identifier so downstream consumers
		// always receive one.
		email = fmt.Sprintf("%s@%s", strings.ToLower(record.ID), r.orgDomain)
	}

	displayName := strings.TrimSpace(record.FirstName)
	if displayName == "" {
		displayName = strings.TrimSpace(record.EmployeeName)
	}
	if displayName == "" {
		displayName = record.ID
	}

	cell := strings.TrimSpace(record.CellNumber)
	if cell == "" {
		cell = phone
	}

	role := strings.TrimSpace(record.Designation)
	if role == "" {
		role = "Employee"
	}

	return session.User{
		UID:          record.ID,
		Email:        email,
		PhoneNumber:  cell,
		DisplayName:  displayName,
		Role:         role,
		OrgRoleID:    record.Grade,
		AuthProvider: provider,
		Org: session.OrgProperties{
			Organization:  record.Company,
			AccessLevel:   record.Grade,
			EmployeeID:    record.ID,
			Department:    record.Department,
			Designation:   record.Designation,
			DateOfJoining: record.DateOfJoining,
			DateOfBirth:   record.DateOfBirth,
		},
	}
}

// syncSubscriber keeps the notification profile in step with the
// directory record. Never fails the authentication response.
func (r *Resolver) syncSubscriber(ctx context.Context, user session.User, playerID string) {
	if r.subscribers == nil {
		return
	}
	employeeID := user.Org.EmployeeID
	if employeeID == "" {
		return
	}

	contact := notify.Contact{
		Email: user.Email,
		Phone: user.PhoneNumber,
		Name:  user.DisplayName,
	}

	if err := r.subscribers.CreateSubscriber(ctx, notify.Profile{ExternalID: employeeID, Contact: contact}); err != nil {
		log.Warn().Err(err).Str("employee", employeeID).Msg("resolver: subscriber create failed")
	}
	if err := r.subscribers.UpdateSubscriber(ctx, employeeID, contact); err != nil {
		log.Warn().Err(err).Str("employee", employeeID).Msg("resolver: subscriber update failed")
	}
	if playerID != "" {
		if err := r.subscribers.AttachDeviceToken(ctx, employeeID, playerID); err != nil {
			log.Warn().Err(err).Str("employee", employeeID).Msg("resolver: device token attach failed")
		}
	}
}

func (r *Resolver) recordOutcome(ctx context.Context, provider string, result *ResolveResult, resolveErr error) {
	if r.auditor == nil {
		return
	}

	event := audit.SignInEvent{
		ID:           uuid.New(),
		OccurredAt:   r.now().UTC(),
		AuthProvider: provider,
		Success:      resolveErr == nil,
	}
	if result != nil {
		event.UserSource = &result.UserSource
		event.EmployeeID = &result.User.Org.EmployeeID
	}
	var deniedErr *AccessDeniedError
	if errors.As(resolveErr, &deniedErr) {
		reason := string(deniedErr.Reason)
		event.DenyReason = &reason
	}

	if err := r.auditor.RecordSignIn(ctx, event); err != nil {
		log.Warn().Err(err).Msg("resolver: audit record failed")
	}
}

// NormalizePhone strips whitespace, a leading "+" and the configured
// country calling code. The prefix is only removed when digits remain
// beyond a national number, so local numbers starting with the same
// digits are left alone.
func NormalizePhone(raw, callingCode string) string {
	phone := strings.Join(strings.Fields(raw), "")
	phone = strings.TrimPrefix(phone, "+")
	if callingCode != "" && len(phone) > 10 && strings.HasPrefix(phone, callingCode) {
		phone = phone[len(callingCode):]
	}
	return phone
}
