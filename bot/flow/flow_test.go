package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/bairolabs/bairo/bot/contract"
)

type fakeStore struct {
	existing    []contractx.Inquiry
	existsErr   error
	registerErr error
	appended    []contractx.Inquiry
}

func (f *fakeStore) Exists(ctx context.Context, mobile, email string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, inq := range append(f.existing, f.appended...) {
		if inq.Mobile == mobile || inq.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Append(ctx context.Context, inq *contractx.Inquiry) error {
	f.appended = append(f.appended, *inq)
	return nil
}

func (f *fakeStore) Register(ctx context.Context, inq *contractx.Inquiry) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	ok, err := f.Exists(ctx, inq.Mobile, inq.Email)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: mobile=%s", contractx.ErrDuplicateContact, inq.Mobile)
	}
	return f.Append(ctx, inq)
}

func (f *fakeStore) ListAll(ctx context.Context) ([]contractx.Inquiry, error) {
	return append([]contractx.Inquiry(nil), f.appended...), nil
}

type fakeResponder struct {
	reply string
	err   error
	calls int
}

func (f *fakeResponder) Respond(ctx context.Context, history []contractx.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestFlow(t *testing.T, store contractx.InquiryStore, opts ...Option) *Flow {
	t.Helper()
	f, err := New(store, opts...)
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	return f
}

func advanceOK(t *testing.T, f *Flow, s contractx.Session, utterance string) Result {
	t.Helper()
	res, err := f.Advance(context.Background(), s, utterance)
	if err != nil {
		t.Fatalf("advance(%q) at %s: %v", utterance, s.Step, err)
	}
	return res
}

func TestGreetingTriggerAdvances(t *testing.T) {
	t.Parallel()

	f := newTestFlow(t, &fakeStore{})
	res := advanceOK(t, f, contractx.NewSession(), "I want course info")
	if res.Next != contractx.StepName {
		t.Fatalf("trigger word must advance to name, got %s", res.Next)
	}
}

func TestGreetingNonTriggerStays(t *testing.T) {
	t.Parallel()

	f := newTestFlow(t, &fakeStore{})
	res := advanceOK(t, f, contractx.NewSession(), "what's the weather")
	if res.Next != contractx.StepGreeting {
		t.Fatalf("non-trigger must keep greeting, got %s", res.Next)
	}
	if res.Message != msgHelpOffer {
		t.Fatalf("unexpected help offer: %q", res.Message)
	}
}

func TestGreetingExtraTriggers(t *testing.T) {
	t.Parallel()

	f := newTestFlow(t, &fakeStore{}, WithGreetingTriggers("hi", "hello"))
	res := advanceOK(t, f, contractx.NewSession(), "hello there")
	if res.Next != contractx.StepName {
		t.Fatalf("extended trigger must advance, got %s", res.Next)
	}
}

func TestInvalidMobileDoesNotAdvance(t *testing.T) {
	t.Parallel()

	f := newTestFlow(t, &fakeStore{})
	session := contractx.Session{Step: contractx.StepMobile, Draft: contractx.Inquiry{Name: "Asha"}}

	res := advanceOK(t, f, session, "12345")
	if res.Next != contractx.StepMobile {
		t.Fatalf("invalid mobile must re-prompt, got next=%s", res.Next)
	}
	if res.Draft.Mobile != "" {
		t.Fatalf("draft must stay unchanged, got mobile=%q", res.Draft.Mobile)
	}
	if res.Message != msgInvalidMobile {
		t.Fatalf("unexpected error copy: %q", res.Message)
	}
}

func TestInvalidEmailDoesNotAdvance(t *testing.T) {
	t.Parallel()

	f := newTestFlow(t, &fakeStore{})
	session := contractx.Session{
		Step:  contractx.StepEmail,
		Draft: contractx.Inquiry{Name: "Asha", Mobile: "9876543210"},
	}

	res := advanceOK(t, f, session, "test@example")
	if res.Next != contractx.StepEmail {
		t.Fatalf("invalid email must re-prompt, got next=%s", res.Next)
	}
	if res.Draft.Email != "" {
		t.Fatalf("draft must stay unchanged, got email=%q", res.Draft.Email)
	}
}

func TestDuplicateContactEndsWithoutCommit(t *testing.T) {
	t.Parallel()

	store := &fakeStore{existing: []contractx.Inquiry{{Mobile: "9876543210", Email: "old@test.com"}}}
	f := newTestFlow(t, store)
	session := contractx.Session{
		Step:  contractx.StepEmail,
		Draft: contractx.Inquiry{Name: "Asha", Mobile: "9876543210"},
	}

	res := advanceOK(t, f, session, "asha@test.com")
	if res.Next != contractx.StepComplete {
		t.Fatalf("duplicate must terminate the session, got next=%s", res.Next)
	}
	if res.Committed {
		t.Fatal("duplicate must not commit")
	}
	if len(store.appended) != 0 {
		t.Fatalf("append must not be called, got %d records", len(store.appended))
	}
	if !strings.Contains(res.Message, "inquired with us before") {
		t.Fatalf("unexpected duplicate copy: %q", res.Message)
	}
}

func TestStoreOutageSurfacesDistinctly(t *testing.T) {
	t.Parallel()

	store := &fakeStore{existsErr: fmt.Errorf("%w: disk gone", contractx.ErrStoreUnavailable)}
	f := newTestFlow(t, store)
	session := contractx.Session{
		Step:  contractx.StepEmail,
		Draft: contractx.Inquiry{Name: "Asha", Mobile: "9876543210"},
	}

	res, err := f.Advance(context.Background(), session, "asha@test.com")
	if !errors.Is(err, contractx.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if res.Next != contractx.StepEmail {
		t.Fatalf("outage must keep the session on email, got %s", res.Next)
	}
	if res.Message == "" || strings.Contains(res.Message, "disk gone") {
		t.Fatalf("user copy must be human-readable, got %q", res.Message)
	}
}

func TestCourseStepCommitsExactlyOnce(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newTestFlow(t, store, WithNow(func() time.Time { return fixed }))
	session := contractx.Session{
		Step: contractx.StepCourse,
		Draft: contractx.Inquiry{
			Name: "Asha", Mobile: "9876543210", Email: "asha@test.com", Status: "Student",
		},
	}

	res := advanceOK(t, f, session, "autocad")
	if res.Next != contractx.StepComplete || !res.Committed {
		t.Fatalf("course step must commit and complete: %+v", res)
	}
	if len(store.appended) != 1 {
		t.Fatalf("expected exactly one append, got %d", len(store.appended))
	}
	rec := store.appended[0]
	if rec.Name != "Asha" || rec.Mobile != "9876543210" || rec.Email != "asha@test.com" || rec.Status != "Student" {
		t.Fatalf("committed record incomplete: %+v", rec)
	}
	if len(rec.Courses) == 0 || rec.Courses[0] != "AutoCAD" {
		t.Fatalf("unexpected courses: %v", rec.Courses)
	}
	if !rec.CreatedAt.Equal(fixed) {
		t.Fatalf("commit timestamp not taken from clock: %v", rec.CreatedAt)
	}
}

func TestCourseStepHollowDraftResets(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	f := newTestFlow(t, store)
	session := contractx.Session{Step: contractx.StepCourse}

	res := advanceOK(t, f, session, "autocad")
	if res.Next != contractx.StepGreeting {
		t.Fatalf("hollow draft must reset, got %s", res.Next)
	}
	if len(store.appended) != 0 {
		t.Fatal("hollow draft must never reach the store")
	}
}

func TestCourseStepDomainQuestionConsultsResponder(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	responder := &fakeResponder{reply: "Fees depend on the course; the centre will share a quote."}
	f := newTestFlow(t, store, WithResponder(responder))
	session := contractx.Session{
		Step: contractx.StepCourse,
		Draft: contractx.Inquiry{
			Name: "Asha", Mobile: "9876543210", Email: "asha@test.com", Status: "Student",
		},
	}

	res := advanceOK(t, f, session, "what is the fee for autocad")
	if responder.calls != 1 {
		t.Fatalf("responder must be consulted once, got %d", responder.calls)
	}
	if !strings.Contains(res.Message, "fees structure") {
		t.Fatalf("canned fee answer missing: %q", res.Message)
	}
	if !strings.Contains(res.Message, responder.reply) {
		t.Fatalf("responder reply missing: %q", res.Message)
	}
	if !res.Committed || len(store.appended) != 1 {
		t.Fatal("domain question must still resolve courses and commit")
	}
	if store.appended[0].Courses[0] != "AutoCAD" {
		t.Fatalf("unexpected courses: %v", store.appended[0].Courses)
	}
}

func TestGatewayOutageSubstitutesFixedCopy(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	responder := &fakeResponder{err: fmt.Errorf("%w: timeout", contractx.ErrGatewayUnavailable)}
	f := newTestFlow(t, store, WithResponder(responder))
	session := contractx.Session{
		Step: contractx.StepCourse,
		Draft: contractx.Inquiry{
			Name: "Asha", Mobile: "9876543210", Email: "asha@test.com", Status: "Student",
		},
	}

	res := advanceOK(t, f, session, "how much does the python course cost")
	if !strings.Contains(res.Message, "7845821665") {
		t.Fatalf("fallback contact line missing: %q", res.Message)
	}
	if strings.Contains(res.Message, "timeout") {
		t.Fatalf("raw gateway error leaked to the user: %q", res.Message)
	}
	if !res.Committed {
		t.Fatal("gateway outage must not block the commit")
	}
}

func TestCommitRaceReportsDuplicate(t *testing.T) {
	t.Parallel()

	store := &fakeStore{registerErr: fmt.Errorf("%w: raced", contractx.ErrDuplicateContact)}
	f := newTestFlow(t, store)
	session := contractx.Session{
		Step: contractx.StepCourse,
		Draft: contractx.Inquiry{
			Name: "Asha", Mobile: "9876543210", Email: "asha@test.com", Status: "Student",
		},
	}

	res := advanceOK(t, f, session, "autocad")
	if res.Committed || len(store.appended) != 0 {
		t.Fatal("raced commit must not record")
	}
	if res.Next != contractx.StepComplete {
		t.Fatalf("raced commit still terminates the session, got %s", res.Next)
	}
}

func TestExitIntentEndsAnywhere(t *testing.T) {
	t.Parallel()

	f := newTestFlow(t, &fakeStore{})
	for _, utterance := range []string{"bye", "EXIT", "quit", "Thank You", "  bye  "} {
		session := contractx.Session{Step: contractx.StepMobile, Draft: contractx.Inquiry{Name: "Asha"}}
		res := advanceOK(t, f, session, utterance)
		if res.Next != contractx.StepComplete {
			t.Fatalf("exit intent %q must end the session, got %s", utterance, res.Next)
		}
		if res.Message != msgFarewell {
			t.Fatalf("unexpected farewell for %q: %q", utterance, res.Message)
		}
	}

	// A sentence merely containing an intent word is not an exit.
	res := advanceOK(t, f, contractx.Session{Step: contractx.StepName}, "goodbye my name is Asha")
	if res.Next != contractx.StepMobile {
		t.Fatalf("partial match must not exit, got %s", res.Next)
	}
}

func TestCompleteStepResets(t *testing.T) {
	t.Parallel()

	f := newTestFlow(t, &fakeStore{})
	res := advanceOK(t, f, contractx.Session{Step: contractx.StepComplete, Draft: contractx.Inquiry{Name: "Asha"}}, "anything")
	if res.Next != contractx.StepGreeting {
		t.Fatalf("complete step must reset to greeting, got %s", res.Next)
	}
	if res.Draft.Name != "" {
		t.Fatalf("reset must clear the draft, got %+v", res.Draft)
	}
}

func TestEndToEndWalk(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	f := newTestFlow(t, store)

	session := contractx.NewSession()
	steps := []struct {
		utterance string
		next      contractx.Step
	}{
		{"I want course info", contractx.StepName},
		{"Asha", contractx.StepMobile},
		{"9876543210", contractx.StepEmail},
		{"asha@test.com", contractx.StepStatus},
		{"Student", contractx.StepCourse},
		{"autocad", contractx.StepComplete},
	}

	for _, step := range steps {
		res := advanceOK(t, f, session, step.utterance)
		if res.Next != step.next {
			t.Fatalf("utterance %q: expected step %s, got %s", step.utterance, step.next, res.Next)
		}
		session = contractx.Session{Step: res.Next, Draft: res.Draft}
	}

	if len(store.appended) != 1 {
		t.Fatalf("expected exactly one commit, got %d", len(store.appended))
	}
	rec := store.appended[0]
	if !rec.Complete() {
		t.Fatalf("committed record missing fields: %+v", rec)
	}
	if rec.Name != "Asha" || rec.Mobile != "9876543210" || rec.Email != "asha@test.com" || rec.Status != "Student" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
