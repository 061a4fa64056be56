package service

import (
	"context"
	"errors"
	"testing"

	"github.com/orbitdesk/portal/internal/audit"
	"github.com/orbitdesk/portal/internal/erp"
	"github.com/orbitdesk/portal/internal/notify"
	"github.com/orbitdesk/portal/internal/session"
)

type stubDirectory struct {
	summaries  []erp.EmployeeSummary
	searchErr  error
	record     *erp.Employee
	getErr     error
	cellCalls  []string
	emailCalls []string
	getCalls   []string
}

func (s *stubDirectory) SearchByCell(ctx context.Context, cell string) ([]erp.EmployeeSummary, error) {
	s.cellCalls = append(s.cellCalls, cell)
	return s.summaries, s.searchErr
}

func (s *stubDirectory) SearchByEmail(ctx context.Context, email string) ([]erp.EmployeeSummary, error) {
	s.emailCalls = append(s.emailCalls, email)
	return s.summaries, s.searchErr
}

func (s *stubDirectory) Get(ctx context.Context, id string) (*erp.Employee, error) {
	s.getCalls = append(s.getCalls, id)
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.record, nil
}

type stubSubscribers struct {
	createErr   error
	updateErr   error
	attachErr   error
	createCalls []notify.Profile
	updateCalls []string
	attachCalls []string
}

func (s *stubSubscribers) CreateSubscriber(ctx context.Context, profile notify.Profile) error {
	s.createCalls = append(s.createCalls, profile)
	return s.createErr
}

func (s *stubSubscribers) UpdateSubscriber(ctx context.Context, externalID string, contact notify.Contact) error {
	s.updateCalls = append(s.updateCalls, externalID)
	return s.updateErr
}

func (s *stubSubscribers) AttachDeviceToken(ctx context.Context, externalID, playerID string) error {
	s.attachCalls = append(s.attachCalls, playerID)
	return s.attachErr
}

type stubAuditor struct {
	events []audit.SignInEvent
}

func (s *stubAuditor) RecordSignIn(ctx context.Context, event audit.SignInEvent) error {
	s.events = append(s.events, event)
	return nil
}

func activeEmployee() *erp.Employee {
	return &erp.Employee{
		ID:            "HR-EMP-00042",
		EmployeeName:  "Asha Nair",
		FirstName:     "Asha",
		CompanyEmail:  "asha@org.com",
		CellNumber:    "9876543210",
		Status:        erp.StatusActive,
		Company:       "Orbitdesk",
		Department:    "Engineering",
		Designation:   "Developer",
		Grade:         "L3",
		DateOfJoining: "2021-04-01",
		DateOfBirth:   "1994-11-20",
	}
}

func TestResolveMissingContact(t *testing.T) {
	dir := &stubDirectory{}
	r := NewResolver(dir, nil, nil, "org.com", "91")

	_, err := r.Resolve(context.Background(), ResolveInput{})
	if !errors.Is(err, ErrMissingContact) {
		t.Fatalf("expected ErrMissingContact, got %v", err)
	}
	if len(dir.cellCalls)+len(dir.emailCalls)+len(dir.getCalls) != 0 {
		t.Fatal("no directory lookup may happen without contact info")
	}
}

func TestResolvePhoneNotFound(t *testing.T) {
	dir := &stubDirectory{}
	r := NewResolver(dir, nil, nil, "org.com", "91")

	_, err := r.Resolve(context.Background(), ResolveInput{PhoneNumber: "+919876543210"})
	var deniedErr *AccessDeniedError
	if !errors.As(err, &deniedErr) || deniedErr.Reason != ReasonNotFound {
		t.Fatalf("expected not_found denial, got %v", err)
	}
	if len(dir.getCalls) != 0 {
		t.Fatal("no fetch by identifier may follow a miss")
	}
}

func TestResolvePhoneInactiveBeforeFetch(t *testing.T) {
	dir := &stubDirectory{
		summaries: []erp.EmployeeSummary{{ID: "HR-EMP-00042", Status: "Left"}},
	}
	r := NewResolver(dir, nil, nil, "org.com", "91")

	_, err := r.Resolve(context.Background(), ResolveInput{PhoneNumber: "9876543210"})
	var deniedErr *AccessDeniedError
	if !errors.As(err, &deniedErr) || deniedErr.Reason != ReasonInactive {
		t.Fatalf("expected inactive denial, got %v", err)
	}
	if len(dir.getCalls) != 0 {
		t.Fatal("inactive summary must be rejected before the full fetch")
	}
}

func TestResolveEmailInactiveBeforeFetch(t *testing.T) {
	// The full record may come back Active from the cache; the fresh
	// search summary decides.
	dir := &stubDirectory{
		summaries: []erp.EmployeeSummary{{ID: "HR-EMP-00042", Status: "Left"}},
		record:    activeEmployee(),
	}
	r := NewResolver(dir, nil, nil, "org.com", "91")

	_, err := r.Resolve(context.Background(), ResolveInput{Email: "asha@org.com"})
	var deniedErr *AccessDeniedError
	if !errors.As(err, &deniedErr) || deniedErr.Reason != ReasonInactive {
		t.Fatalf("expected inactive denial, got %v", err)
	}
	if len(dir.getCalls) != 0 {
		t.Fatal("inactive summary must be rejected before the full fetch")
	}
}

func TestResolveSearchFailed(t *testing.T) {
	dir := &stubDirectory{searchErr: errors.New("boom")}
	r := NewResolver(dir, nil, nil, "org.com", "91")

	_, err := r.Resolve(context.Background(), ResolveInput{Email: "asha@org.com"})
	var deniedErr *AccessDeniedError
	if !errors.As(err, &deniedErr) || deniedErr.Reason != ReasonSearchFailed {
		t.Fatalf("expected search_failed denial, got %v", err)
	}
}

func TestResolveFetchedRecordInactive(t *testing.T) {
	record := activeEmployee()
	record.Status = "Suspended"
	dir := &stubDirectory{
		summaries: []erp.EmployeeSummary{{ID: record.ID, Status: erp.StatusActive}},
		record:    record,
	}
	r := NewResolver(dir, nil, nil, "org.com", "91")

	_, err := r.Resolve(context.Background(), ResolveInput{Email: "asha@org.com"})
	var deniedErr *AccessDeniedError
	if !errors.As(err, &deniedErr) || deniedErr.Reason != ReasonEmployeeInactive {
		t.Fatalf("expected employee_inactive denial, got %v", err)
	}
}

func TestResolvePhonePathSynthesizesEmail(t *testing.T) {
	record := activeEmployee()
	record.CompanyEmail = ""
	dir := &stubDirectory{
		summaries: []erp.EmployeeSummary{{ID: record.ID, Status: erp.StatusActive}},
		record:    record,
	}
	r := NewResolver(dir, nil, nil, "org.com", "91")

	result, err := r.Resolve(context.Background(), ResolveInput{PhoneNumber: "+919876543210"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.UserSource != SourceByID {
		t.Fatalf("expected %s, got %s", SourceByID, result.UserSource)
	}
	if result.User.Email != "hr-emp-00042@org.com" {
		t.Fatalf("expected synthesized email, got %s", result.User.Email)
	}
	if result.User.AuthProvider != session.ProviderPhone {
		t.Fatalf("expected phone provider, got %s", result.User.AuthProvider)
	}
	if dir.cellCalls[0] != "9876543210" {
		t.Fatalf("expected normalized cell search, got %s", dir.cellCalls[0])
	}
}

func TestResolveEmailNotFound(t *testing.T) {
	dir := &stubDirectory{}
	r := NewResolver(dir, nil, nil, "org.com", "91")

	_, err := r.Resolve(context.Background(), ResolveInput{Email: "a@org.com", AuthProvider: session.ProviderMicrosoft})
	var deniedErr *AccessDeniedError
	if !errors.As(err, &deniedErr) || deniedErr.Reason != ReasonNotFound {
		t.Fatalf("expected not_found denial, got %v", err)
	}
}

func TestResolveEmailPath(t *testing.T) {
	record := activeEmployee()
	dir := &stubDirectory{
		summaries: []erp.EmployeeSummary{{ID: record.ID, Status: erp.StatusActive}},
		record:    record,
	}
	subs := &stubSubscribers{}
	auditor := &stubAuditor{}
	r := NewResolver(dir, subs, auditor, "org.com", "91")

	result, err := r.Resolve(context.Background(), ResolveInput{
		Email:        "Asha@Org.com",
		AuthProvider: session.ProviderMicrosoft,
		PlayerID:     "player-1",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.UserSource != SourceByEmail {
		t.Fatalf("expected %s, got %s", SourceByEmail, result.UserSource)
	}
	if result.User.UID != record.ID || result.User.Email != "asha@org.com" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if result.User.Org.EmployeeID != record.ID || result.User.Org.Department != "Engineering" {
		t.Fatalf("unexpected org bag: %+v", result.User.Org)
	}
	if dir.emailCalls[0] != "asha@org.com" {
		t.Fatalf("email must be lowercased before the search, got %s", dir.emailCalls[0])
	}
	if result.Token == "" {
		t.Fatal("expected a minted token")
	}
	if uid, ok := session.TokenUID(result.Token); !ok || uid != record.ID {
		t.Fatalf("token must encode the uid, got %q", result.Token)
	}

	if len(subs.createCalls) != 1 || len(subs.updateCalls) != 1 {
		t.Fatalf("expected create+update sync, got %d/%d", len(subs.createCalls), len(subs.updateCalls))
	}
	if len(subs.attachCalls) != 1 || subs.attachCalls[0] != "player-1" {
		t.Fatalf("expected device token attach, got %v", subs.attachCalls)
	}
	if len(auditor.events) != 1 || !auditor.events[0].Success {
		t.Fatalf("expected one successful audit event, got %+v", auditor.events)
	}
}

func TestResolveIdempotent(t *testing.T) {
	record := activeEmployee()
	dir := &stubDirectory{
		summaries: []erp.EmployeeSummary{{ID: record.ID, Status: erp.StatusActive}},
		record:    record,
	}
	// Second create fails with "already exists"; the resolver must not care.
	subs := &stubSubscribers{createErr: errors.New("conflict: subscriber exists")}
	r := NewResolver(dir, subs, nil, "org.com", "91")

	in := ResolveInput{Email: "asha@org.com"}
	first, err := r.Resolve(context.Background(), in)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), in)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if first.User.UID != second.User.UID ||
		first.User.Email != second.User.Email ||
		first.User.DisplayName != second.User.DisplayName {
		t.Fatalf("resolutions differ: %+v vs %+v", first.User, second.User)
	}
}

func TestResolveSyncFailureDoesNotPropagate(t *testing.T) {
	record := activeEmployee()
	dir := &stubDirectory{
		summaries: []erp.EmployeeSummary{{ID: record.ID, Status: erp.StatusActive}},
		record:    record,
	}
	subs := &stubSubscribers{
		createErr: errors.New("down"),
		updateErr: errors.New("down"),
		attachErr: errors.New("down"),
	}
	r := NewResolver(dir, subs, nil, "org.com", "91")

	if _, err := r.Resolve(context.Background(), ResolveInput{Email: "asha@org.com", PlayerID: "p"}); err != nil {
		t.Fatalf("subscriber sync failures must be swallowed, got %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+919876543210", "9876543210"},
		{"919876543210", "9876543210"},
		{"9876543210", "9876543210"},
		{" +91 98765 43210 ", "9876543210"},
		{"9198765432", "9198765432"}, // local number starting with the calling code
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizePhone(tc.in, "91"); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
