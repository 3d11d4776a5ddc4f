// Package flow implements the conversation state machine that walks a
// visitor through the enquiry questions, validates contact fields, and
// commits the finished enquiry exactly once.
package flow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	catalogx "github.com/bairolabs/bairo/bot/catalog"
	contractx "github.com/bairolabs/bairo/bot/contract"
	gatewayx "github.com/bairolabs/bairo/bot/gateway"
	validatex "github.com/bairolabs/bairo/bot/validate"
)

const defaultContact = "7845821665"

// defaultTriggers are the greeting words that start the guided flow.
// The console variant extends them with plain salutations.
var defaultTriggers = []string{"course", "enquire", "information"}

// exitIntents end the session from any step when they match the whole
// utterance.
var exitIntents = map[string]struct{}{
	"bye":       {},
	"exit":      {},
	"quit":      {},
	"thank you": {},
}

// Flow drives one conversation turn at a time. It holds no session
// state itself; callers thread a contract.Session through Advance.
type Flow struct {
	store     contractx.InquiryStore
	responder contractx.Responder
	triggers  []string
	contact   string
	now       func() time.Time
}

// Option customizes a Flow.
type Option func(*Flow)

// WithResponder attaches the fallback responder consulted for domain
// questions at the course step. Without it the fixed contact line is
// used.
func WithResponder(r contractx.Responder) Option {
	return func(f *Flow) {
		f.responder = r
	}
}

// WithGreetingTriggers appends extra trigger words to the greeting
// matcher.
func WithGreetingTriggers(words ...string) Option {
	return func(f *Flow) {
		for _, w := range words {
			if trimmed := strings.ToLower(strings.TrimSpace(w)); trimmed != "" {
				f.triggers = append(f.triggers, trimmed)
			}
		}
	}
}

// WithContact overrides the centre's phone number in outgoing copy.
func WithContact(contact string) Option {
	return func(f *Flow) {
		if trimmed := strings.TrimSpace(contact); trimmed != "" {
			f.contact = trimmed
		}
	}
}

// WithNow overrides the commit timestamp source, mainly for tests.
func WithNow(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

// New builds a Flow over the given store.
func New(store contractx.InquiryStore, opts ...Option) (*Flow, error) {
	if store == nil {
		return nil, errors.New("inquiry store is required")
	}
	f := &Flow{
		store:    store,
		triggers: append([]string(nil), defaultTriggers...),
		contact:  defaultContact,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Result is the outcome of one conversation turn.
type Result struct {
	Message   string
	Next      contractx.Step
	Draft     contractx.Inquiry
	Committed bool
}

// Advance feeds one utterance into the state machine and returns the
// reply, the next step, and the updated draft. Invalid input re-prompts
// in place; no input ever produces a panic or a raw fault for the user.
//
// A non-nil error accompanies a usable Result only for store outages,
// so callers can log the outage while still showing Result.Message.
func (f *Flow) Advance(ctx context.Context, session contractx.Session, utterance string) (Result, error) {
	utterance = strings.TrimSpace(utterance)

	if isExitIntent(utterance) {
		return Result{Message: msgFarewell, Next: contractx.StepComplete, Draft: session.Draft}, nil
	}

	switch session.Step {
	case contractx.StepGreeting, "":
		return f.advanceGreeting(session, utterance), nil
	case contractx.StepName:
		return f.advanceName(session, utterance), nil
	case contractx.StepMobile:
		return f.advanceMobile(session, utterance), nil
	case contractx.StepEmail:
		return f.advanceEmail(ctx, session, utterance)
	case contractx.StepStatus:
		return f.advanceStatus(session, utterance), nil
	case contractx.StepCourse:
		return f.advanceCourse(ctx, session, utterance)
	default:
		// Complete or unknown: start over with a clean draft.
		return Result{Message: msgReset, Next: contractx.StepGreeting}, nil
	}
}

func isExitIntent(utterance string) bool {
	_, ok := exitIntents[strings.ToLower(utterance)]
	return ok
}

func (f *Flow) advanceGreeting(session contractx.Session, utterance string) Result {
	lowered := strings.ToLower(utterance)
	for _, trigger := range f.triggers {
		if strings.Contains(lowered, trigger) {
			return Result{Message: msgAskName, Next: contractx.StepName, Draft: session.Draft}
		}
	}
	return Result{Message: msgHelpOffer, Next: contractx.StepGreeting, Draft: session.Draft}
}

func (f *Flow) advanceName(session contractx.Session, utterance string) Result {
	if utterance == "" {
		return Result{Message: msgAskName, Next: contractx.StepName, Draft: session.Draft}
	}
	session.Draft.Name = utterance
	return Result{Message: msgAskMobile, Next: contractx.StepMobile, Draft: session.Draft}
}

func (f *Flow) advanceMobile(session contractx.Session, utterance string) Result {
	if !validatex.IsValidMobile(utterance) {
		return Result{Message: msgInvalidMobile, Next: contractx.StepMobile, Draft: session.Draft}
	}
	session.Draft.Mobile = utterance
	return Result{Message: msgAskEmail, Next: contractx.StepEmail, Draft: session.Draft}
}

func (f *Flow) advanceEmail(ctx context.Context, session contractx.Session, utterance string) (Result, error) {
	if !validatex.IsValidEmail(utterance) {
		return Result{Message: msgInvalidEmail, Next: contractx.StepEmail, Draft: session.Draft}, nil
	}

	exists, err := f.store.Exists(ctx, session.Draft.Mobile, utterance)
	if err != nil {
		// The outage is surfaced to the caller; the visitor just
		// gets asked to retry. Never treated as "no match".
		log.Error().Err(err).Msg("contact lookup failed")
		return Result{Message: msgStoreDown, Next: contractx.StepEmail, Draft: session.Draft}, err
	}
	if exists {
		log.Info().Str("mobile", session.Draft.Mobile).Msg("duplicate enquiry blocked")
		return Result{Message: msgDuplicate, Next: contractx.StepComplete, Draft: session.Draft}, nil
	}

	session.Draft.Email = utterance
	return Result{Message: msgAskStatus, Next: contractx.StepStatus, Draft: session.Draft}, nil
}

func (f *Flow) advanceStatus(session contractx.Session, utterance string) Result {
	if utterance == "" {
		return Result{Message: msgAskStatus, Next: contractx.StepStatus, Draft: session.Draft}
	}
	session.Draft.Status = utterance
	return Result{Message: catalogx.Listing(), Next: contractx.StepCourse, Draft: session.Draft}
}

func (f *Flow) advanceCourse(ctx context.Context, session contractx.Session, utterance string) (Result, error) {
	var segments []string

	if topic, ok := gatewayx.ClassifyTopic(utterance); ok {
		segments = append(segments, gatewayx.Canned(topic))
		segments = append(segments, f.consult(ctx, utterance))
	}

	session.Draft.Courses = catalogx.Resolve(utterance)
	session.Draft.CreatedAt = f.now().UTC()

	// A client-supplied step token can point here with a hollow draft;
	// nothing incomplete may ever reach the store.
	if !session.Draft.Complete() {
		return Result{Message: msgReset, Next: contractx.StepGreeting}, nil
	}

	if err := f.store.Register(ctx, &session.Draft); err != nil {
		switch {
		case errors.Is(err, contractx.ErrDuplicateContact):
			// Lost a race against a concurrent session with the
			// same contact.
			log.Info().Str("mobile", session.Draft.Mobile).Msg("duplicate enquiry blocked at commit")
			return Result{Message: msgDuplicate, Next: contractx.StepComplete, Draft: session.Draft}, nil
		default:
			log.Error().Err(err).Msg("enquiry commit failed")
			return Result{Message: msgStoreDown, Next: contractx.StepCourse, Draft: session.Draft}, err
		}
	}

	log.Info().
		Str("mobile", session.Draft.Mobile).
		Strs("courses", session.Draft.Courses).
		Msg("enquiry recorded")

	segments = append(segments, thankYouMessage(f.contact))
	return Result{
		Message:   strings.Join(segments, "\n\n"),
		Next:      contractx.StepComplete,
		Draft:     session.Draft,
		Committed: true,
	}, nil
}

// consult asks the responder about a domain question; a gateway outage
// degrades to the fixed contact line, never to a raw error.
func (f *Flow) consult(ctx context.Context, utterance string) string {
	if f.responder == nil {
		return gatewayFallbackMessage(f.contact)
	}
	reply, err := f.responder.Respond(ctx, []contractx.Message{
		{Role: contractx.RoleAssistant, Content: catalogx.Listing()},
		{Role: contractx.RoleUser, Content: utterance},
	})
	if err != nil {
		log.Warn().Err(err).Msg("fallback responder unavailable")
		return gatewayFallbackMessage(f.contact)
	}
	return reply
}
