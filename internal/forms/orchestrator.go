package forms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FieldKind classifies a form control for question/option discovery and
// value write-back.
type FieldKind string

const (
	KindText          FieldKind = "text"
	KindTextArea      FieldKind = "textarea"
	KindSelect        FieldKind = "select"
	KindRadio         FieldKind = "radio"
	KindCheckbox      FieldKind = "checkbox"
	KindCheckboxGroup FieldKind = "checkbox-group"
	KindDate          FieldKind = "date"
	KindTypeahead     FieldKind = "typeahead"
	KindUnknown       FieldKind = "unknown"
)

// Element is the capability surface required from a DOM node. Implemented by
// the external browser-automation layer; the engine never depends on a
// concrete automation library type.
type Element interface {
	TagName() string
	Attribute(name string) string
	Text() string
	Value() string
	SetValue(value string) error
	Click() error
	Visible() bool
	Find(selector string) (Element, bool)
	FindAll(selector string) []Element
}

// Page resolves selectors outside the field's own subtree, needed for
// label[for] lookups.
type Page interface {
	Find(selector string) (Element, bool)
}

// FieldState is the terminal state of one field in one pass.
type FieldState string

const (
	StateAnswered   FieldState = "answered"
	StateUnresolved FieldState = "unresolved"
	StateSkipped    FieldState = "skipped"
)

// FieldResult reports what happened to a single form field.
type FieldResult struct {
	Question  string
	Kind      FieldKind
	Answer    string
	State     FieldState
	FromCache bool
}

// FillContext carries per-form inputs into field resolution. Job context is
// explicit here rather than process state so nothing leaks between postings.
type FillContext struct {
	JobDescription string
	JobKeywords    []string
	// ErrorContext is the page's validation message when re-filling a field
	// that was rejected on submit. It bypasses the cache; the corrected
	// answer overwrites the stale record.
	ErrorContext string
}

// selectPlaceholder is the placeholder entry select controls render before a
// real choice is made. It is neither an option nor an existing value.
const selectPlaceholder = "Select an option"

// checkboxSkipTexts marks consent/marketing checkboxes that must stay
// untouched rather than be answered.
var checkboxSkipTexts = []string{
	"mark this job as a top choice",
	"mark as top choice",
	"add to top choice",
	"flag as a top choice",
	"newsletter",
	"subscribe",
	"marketing",
	"promotional",
	"communications",
	"emails",
}

// Orchestrator drives the per-field resolution sequence: cache lookup, option
// resolution, AI fallback, then the UI write through the element itself.
type Orchestrator struct {
	matcher   *Matcher
	generator *Generator
	resolver  *OptionResolver
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrchestrator(matcher *Matcher, generator *Generator, resolver *OptionResolver, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		matcher:   matcher,
		generator: generator,
		resolver:  resolver,
		logger:    logger,
		now:       time.Now,
	}
}

// DetectKind classifies the field element.
func DetectKind(el Element) FieldKind {
	switch strings.ToLower(el.TagName()) {
	case "fieldset":
		if _, ok := el.Find(`input[type="checkbox"]`); ok {
			return KindCheckboxGroup
		}
		if _, ok := el.Find(`input[type="radio"]`); ok {
			return KindRadio
		}
		return KindUnknown
	case "select":
		return KindSelect
	case "textarea":
		return KindTextArea
	case "input":
		switch strings.ToLower(el.Attribute("type")) {
		case "checkbox":
			return KindCheckbox
		case "radio":
			return KindRadio
		case "date":
			return KindDate
		case "", "text", "email", "tel", "url", "number":
			if el.Attribute("role") == "combobox" || el.Attribute("aria-autocomplete") != "" {
				return KindTypeahead
			}
			return KindText
		default:
			return KindUnknown
		}
	default:
		return KindUnknown
	}
}

// QuestionText extracts the human question for a field, probing in order:
// fieldset legend, label[for], aria-label, placeholder, then a generic
// fallback naming the field kind.
func (o *Orchestrator) QuestionText(page Page, el Element, kind FieldKind) string {
	if kind == KindCheckboxGroup || (kind == KindRadio && strings.EqualFold(el.TagName(), "fieldset")) {
		if legend, ok := el.Find("legend"); ok {
			if text := strings.TrimSpace(legend.Text()); text != "" {
				return text
			}
		}
	}

	if id := el.Attribute("id"); id != "" && page != nil {
		if label, ok := page.Find(fmt.Sprintf(`label[for=%q]`, id)); ok {
			if text := strings.TrimSpace(label.Text()); text != "" {
				return text
			}
		}
	}

	if text := strings.TrimSpace(el.Attribute("aria-label")); text != "" {
		return text
	}
	if text := strings.TrimSpace(el.Attribute("placeholder")); text != "" {
		return text
	}

	o.logger.Debug("no label found for field", zap.String("kind", string(kind)))
	return string(kind) + " field"
}

// OptionsOf discovers the choices a field presents. Empty for open inputs.
func (o *Orchestrator) OptionsOf(page Page, el Element, kind FieldKind) []string {
	switch kind {
	case KindSelect:
		var options []string
		for _, opt := range el.FindAll("option") {
			text := strings.TrimSpace(opt.Text())
			if text == "" || text == selectPlaceholder {
				continue
			}
			options = append(options, text)
		}
		return options
	case KindRadio, KindCheckboxGroup:
		selector := `input[type="radio"]`
		if kind == KindCheckboxGroup {
			selector = `input[type="checkbox"]`
		}
		var options []string
		for _, input := range el.FindAll(selector) {
			if label := o.inputLabel(page, el, input); label != "" {
				options = append(options, label)
			}
		}
		return options
	default:
		return nil
	}
}

// inputLabel finds the display label for one grouped input: label[for] inside
// the group, then page-wide, then the value attribute.
func (o *Orchestrator) inputLabel(page Page, group, input Element) string {
	if id := input.Attribute("id"); id != "" {
		selector := fmt.Sprintf(`label[for=%q]`, id)
		if label, ok := group.Find(selector); ok {
			if text := strings.TrimSpace(label.Text()); text != "" {
				return text
			}
		}
		if page != nil {
			if label, ok := page.Find(selector); ok {
				if text := strings.TrimSpace(label.Text()); text != "" {
					return text
				}
			}
		}
	}
	return strings.TrimSpace(input.Attribute("value"))
}

// shouldSkipCheckbox reports whether a lone checkbox is an optional
// marketing/preference toggle that must be left alone.
func (o *Orchestrator) shouldSkipCheckbox(page Page, el Element) bool {
	label := ""
	if id := el.Attribute("id"); id != "" && page != nil {
		if l, ok := page.Find(fmt.Sprintf(`label[for=%q]`, id)); ok {
			label = strings.ToLower(strings.TrimSpace(l.Text()))
		}
	}
	if label == "" {
		label = strings.ToLower(strings.TrimSpace(el.Attribute("aria-label")))
	}
	if label == "" {
		return false
	}

	for _, skip := range checkboxSkipTexts {
		if strings.Contains(label, skip) {
			o.logger.Info("skipping optional checkbox", zap.String("label", label))
			return true
		}
	}
	if strings.Contains(label, "top choice") && strings.Contains(label, "optional") {
		o.logger.Info("skipping optional top-choice checkbox", zap.String("label", label))
		return true
	}
	return false
}

// FillField runs the full per-field sequence and writes the answer back
// through the element. The returned result is informational; a failed field
// never aborts the pass.
func (o *Orchestrator) FillField(ctx context.Context, page Page, el Element, fill FillContext) FieldResult {
	kind := DetectKind(el)
	result := FieldResult{Kind: kind}

	if kind == KindCheckbox && o.shouldSkipCheckbox(page, el) {
		result.State = StateSkipped
		return result
	}

	if o.hasExistingValue(el, kind) && fill.ErrorContext == "" {
		o.logger.Debug("field already has a value, skipping", zap.String("kind", string(kind)))
		result.State = StateSkipped
		return result
	}

	result.Question = o.QuestionText(page, el, kind)
	options := o.OptionsOf(page, el, kind)

	answer, fromCache, ok := o.Resolve(ctx, result.Question, options, fill)
	if !ok && kind == KindDate {
		// Date pickers reject free text anyway; today is the conventional
		// safe default for "earliest start" style questions.
		answer, ok = o.now().Format("01/02/2006"), true
	}
	if !ok {
		result.State = StateUnresolved
		return result
	}
	result.Answer = answer
	result.FromCache = fromCache

	if err := o.applyAnswer(page, el, kind, answer); err != nil {
		o.logger.Warn("writing answer to field failed",
			zap.String("question", result.Question),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		result.State = StateUnresolved
		return result
	}

	result.State = StateAnswered
	o.logger.Info("answered form field",
		zap.String("question", result.Question),
		zap.String("kind", string(kind)),
		zap.String("answer", answer),
		zap.Bool("from_cache", fromCache),
	)
	return result
}

// Resolve runs cache lookup then AI fallback for one question. fromCache
// distinguishes a store hit from a generated answer.
func (o *Orchestrator) Resolve(ctx context.Context, question string, options []string, fill FillContext) (answer string, fromCache, ok bool) {
	if answer, ok := o.matcher.Match(MatchRequest{
		Question:     question,
		Options:      options,
		ErrorContext: fill.ErrorContext,
		JobKeywords:  fill.JobKeywords,
	}); ok {
		return answer, true, true
	}

	answer, ok = o.generator.Generate(ctx, GenerateRequest{
		Question:       question,
		Options:        options,
		ErrorContext:   fill.ErrorContext,
		JobDescription: fill.JobDescription,
		Persist:        true,
	})
	return answer, false, ok
}

func (o *Orchestrator) hasExistingValue(el Element, kind FieldKind) bool {
	switch kind {
	case KindCheckbox, KindRadio, KindCheckboxGroup:
		return el.Attribute("checked") != ""
	default:
		value := strings.TrimSpace(el.Value())
		return value != "" && value != selectPlaceholder
	}
}

func (o *Orchestrator) applyAnswer(page Page, el Element, kind FieldKind, answer string) error {
	switch kind {
	case KindSelect:
		return el.SetValue(answer)
	case KindRadio, KindCheckboxGroup:
		return o.clickGroupedInput(page, el, kind, answer)
	case KindCheckbox:
		if !answerIsAffirmative(answer) {
			return nil
		}
		return el.Click()
	default:
		return el.SetValue(answer)
	}
}

// clickGroupedInput clicks the radio/checkbox whose label matches the answer.
func (o *Orchestrator) clickGroupedInput(page Page, group Element, kind FieldKind, answer string) error {
	selector := `input[type="radio"]`
	if kind == KindCheckboxGroup {
		selector = `input[type="checkbox"]`
	}
	for _, input := range group.FindAll(selector) {
		if strings.EqualFold(strings.TrimSpace(o.inputLabel(page, group, input)), strings.TrimSpace(answer)) {
			return input.Click()
		}
	}
	return fmt.Errorf("no input labeled %q in group", answer)
}
