// Package services – GenerationService
//
// This file implements the generation orchestrator: it validates input,
// renders the instruction template, invokes the hosted chat-completion
// client, post-processes the generated text, and persists the Prompt and
// Response rows in one transaction. It also owns partial prompt updates.
//
// Failure semantics are at-most-once: a persistence failure after a
// successful provider call loses the generated text and the client must
// resubmit. Nothing is written when validation or generation fails.
//
// Observability: public methods are OpenTelemetry-instrumented and outcomes
// feed a Prometheus counter.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/theendpage/go-farewell-backend/internal/domain"
	"github.com/theendpage/go-farewell-backend/internal/genai"
	"github.com/theendpage/go-farewell-backend/internal/repo"
)

// genRequests counts generation attempts by outcome
// (ok | invalid | generation_failed | persistence_failed).
var genRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_requests_total",
		Help: "Total number of farewell generation attempts by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(genRequests)
}

// GenerationInput carries a farewell-generation request. Scenario, Tone, and
// Message are required; everything else is optional. A nil or unknown UserID
// is replaced with the configured fallback owner.
type GenerationInput struct {
	Title          string
	Scenario       string
	Tone           string
	Message        string
	UserID         *uint
	IncludeGifs    bool
	FreshStart     bool
	ImageFile      *string
	BackgroundFile *string
}

// PromptUpdate is a partial patch for an existing prompt. Nil fields are
// left untouched; set fields overwrite, including explicit zero values
// (empty title, false flag). Presence is what matters, not truthiness.
type PromptUpdate struct {
	Title      *string
	Scenario   *string
	Tone       *string
	Message    *string
	FreshStart *bool
	UserID     *uint
}

// GenerationService coordinates the render → generate → persist pipeline.
type GenerationService struct {
	DB        *gorm.DB
	Generator genai.Generator
	Policy    Policy

	// FallbackUserID owns prompts whose request carried no usable idUser.
	FallbackUserID uint
	// MaxMessageRunes caps the user message length; 0 disables the guard.
	MaxMessageRunes int

	// Title derivation config, used when the request carries no title.
	TitleLocale language.Tag
	TitleMaxLen int
}

// Generate runs the full pipeline and returns the persisted prompt and
// response. Validation happens before any external call: an invalid request
// performs zero network calls and zero writes.
func (s *GenerationService) Generate(ctx context.Context, in GenerationInput) (*domain.Prompt, *domain.Response, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(attribute.String("tone", in.Tone)),
	)
	defer span.End()

	in.Scenario = strings.TrimSpace(in.Scenario)
	in.Tone = strings.TrimSpace(in.Tone)
	in.Message = strings.TrimSpace(in.Message)
	if in.Scenario == "" || in.Tone == "" || in.Message == "" {
		genRequests.WithLabelValues("invalid").Inc()
		return nil, nil, ErrMissingField
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(in.Message) > s.MaxMessageRunes {
		genRequests.WithLabelValues("invalid").Inc()
		return nil, nil, ErrMessageTooLong
	}

	owner := s.resolveOwner(ctx, in.UserID)

	rendered := genai.RenderPrompt(in.Tone, in.Title, in.Message)
	raw, err := s.Generator.Generate(ctx, rendered)
	if err != nil {
		genRequests.WithLabelValues("generation_failed").Inc()
		return nil, nil, err
	}
	text := cleanGenerated(raw)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = s.clipTitle(s.deriveTitle(in.Message))
	}

	content, err := json.Marshal(text)
	if err != nil {
		return nil, nil, err
	}

	var (
		prompt   *domain.Prompt
		response *domain.Response
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p := &domain.Prompt{
			Title:          title,
			Scenario:       in.Scenario,
			Tone:           in.Tone,
			Message:        in.Message,
			FreshStart:     in.FreshStart,
			IncludeGifs:    in.IncludeGifs,
			ImageFile:      in.ImageFile,
			BackgroundFile: in.BackgroundFile,
			UserID:         owner,
		}
		if err := repo.CreatePrompt(ctx, tx, p); err != nil {
			return err
		}
		r, err := repo.CreateResponse(ctx, tx, p.ID, datatypes.JSON(content))
		if err != nil {
			return err
		}
		prompt, response = p, r
		return nil
	})
	if err != nil {
		genRequests.WithLabelValues("persistence_failed").Inc()
		return nil, nil, err
	}

	genRequests.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.Int("prompt.id", int(prompt.ID)))
	return prompt, response, nil
}

// Modify patches an existing prompt. Only fields present in the update are
// written; the rest keep their stored values (last write wins, no optimistic
// concurrency check). Returns the updated prompt.
func (s *GenerationService) Modify(ctx context.Context, actorID, id uint, upd PromptUpdate) (*domain.Prompt, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "Modify",
		trace.WithAttributes(attribute.Int("prompt.id", int(id))),
	)
	defer span.End()

	if s.Policy != nil {
		if err := s.Policy.Allow(ctx, actorID, ActionModifyPrompt, id); err != nil {
			return nil, err
		}
	}

	if _, err := repo.GetPrompt(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}

	cols := map[string]any{}
	if upd.Title != nil {
		cols["reaction"] = *upd.Title
	}
	if upd.Scenario != nil {
		cols["cas"] = *upd.Scenario
	}
	if upd.Tone != nil {
		cols["ton"] = *upd.Tone
	}
	if upd.Message != nil {
		cols["message"] = *upd.Message
	}
	if upd.FreshStart != nil {
		cols["nouveaudepart"] = *upd.FreshStart
	}
	if upd.UserID != nil {
		cols["idUser"] = *upd.UserID
	}

	if err := repo.UpdatePrompt(ctx, s.DB, id, cols); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}
	return repo.GetPrompt(ctx, s.DB, id)
}

// resolveOwner returns the requested user id when it references an existing
// user, otherwise the fallback id. Lookup errors also fall back; ownership
// is best-effort by design.
func (s *GenerationService) resolveOwner(ctx context.Context, userID *uint) uint {
	if userID == nil || *userID == 0 {
		return s.FallbackUserID
	}
	exists, err := repo.UserExists(ctx, s.DB, *userID)
	if err != nil || !exists {
		return s.FallbackUserID
	}
	return *userID
}

// cleanGenerated trims whitespace and strips a single pair of wrapping
// quotes the model sometimes adds despite instructions.
func cleanGenerated(raw string) string {
	s := strings.TrimSpace(raw)
	if utf8.RuneCountInString(s) >= 2 {
		runes := []rune(s)
		first, last := runes[0], runes[len(runes)-1]
		symmetric := first == last && (first == '"' || first == '\'')
		paired := (first == '“' && last == '”') || (first == '«' && last == '»')
		if symmetric || paired {
			s = strings.TrimSpace(string(runes[1 : len(runes)-1]))
		}
	}
	return s
}

// deriveTitle builds a compact title from the user message: first few
// non-stopword tokens, title-cased for the configured locale.
func (s *GenerationService) deriveTitle(message string) string {
	toks := titleWordRE.FindAllString(strings.ToLower(message), -1)
	if len(toks) == 0 {
		return ""
	}
	caser := cases.Title(s.titleLocaleOrDefault())
	out := make([]string, 0, 6)
	for _, w := range toks {
		if _, skip := titleStopWords[w]; skip {
			continue
		}
		out = append(out, caser.String(w))
		if len(out) >= 6 {
			break
		}
	}
	return strings.Join(out, " ")
}

// clipTitle truncates a derived title to the configured maximum rune length.
func (s *GenerationService) clipTitle(title string) string {
	max := s.TitleMaxLen
	if max <= 0 {
		max = 60
	}
	if utf8.RuneCountInString(title) > max {
		return string([]rune(title)[:max])
	}
	return title
}

func (s *GenerationService) titleLocaleOrDefault() language.Tag {
	if s.TitleLocale == language.Und {
		return language.English
	}
	return s.TitleLocale
}

// titleWordRE extracts letters with optional trailing digits.
var titleWordRE = regexp.MustCompile(`[\p{L}]+[\p{N}]*`)

// titleStopWords keeps derived titles compact.
var titleStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {}, "were": {},
	"i": {}, "my": {}, "you": {}, "your": {}, "we": {},
}
