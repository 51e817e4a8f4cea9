package forms

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeElement struct {
	tag      string
	attrs    map[string]string
	text     string
	value    string
	children map[string][]*fakeElement

	setValues []string
	clicked   int
}

func (f *fakeElement) TagName() string { return f.tag }

func (f *fakeElement) Attribute(name string) string { return f.attrs[name] }

func (f *fakeElement) Text() string { return f.text }

func (f *fakeElement) Value() string { return f.value }

func (f *fakeElement) SetValue(value string) error {
	f.setValues = append(f.setValues, value)
	return nil
}

func (f *fakeElement) Click() error {
	f.clicked++
	return nil
}

func (f *fakeElement) Visible() bool { return true }

func (f *fakeElement) Find(selector string) (Element, bool) {
	matches := f.children[selector]
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

func (f *fakeElement) FindAll(selector string) []Element {
	var out []Element
	for _, match := range f.children[selector] {
		out = append(out, match)
	}
	return out
}

type fakePage struct {
	elements map[string]*fakeElement
}

func (f *fakePage) Find(selector string) (Element, bool) {
	el, ok := f.elements[selector]
	return el, ok
}

func labelSelector(id string) string {
	return fmt.Sprintf(`label[for=%q]`, id)
}

func newTestOrchestrator(t *testing.T, completion Completion) (*Orchestrator, *Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "responses.json")
	store := OpenStore([]string{path}, zap.NewNop())
	resolver := NewOptionResolver(DefaultThresholds(), zap.NewNop())
	matcher := NewMatcher(store, resolver, DefaultThresholds(), zap.NewNop())
	generator := NewGenerator(completion, store, resolver, nil, "", zap.NewNop(), 0)
	return NewOrchestrator(matcher, generator, resolver, zap.NewNop()), store
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		el   *fakeElement
		want FieldKind
	}{
		{&fakeElement{tag: "select"}, KindSelect},
		{&fakeElement{tag: "textarea"}, KindTextArea},
		{&fakeElement{tag: "input", attrs: map[string]string{"type": "text"}}, KindText},
		{&fakeElement{tag: "input", attrs: map[string]string{}}, KindText},
		{&fakeElement{tag: "input", attrs: map[string]string{"type": "checkbox"}}, KindCheckbox},
		{&fakeElement{tag: "input", attrs: map[string]string{"type": "radio"}}, KindRadio},
		{&fakeElement{tag: "input", attrs: map[string]string{"type": "date"}}, KindDate},
		{&fakeElement{tag: "input", attrs: map[string]string{"type": "text", "role": "combobox"}}, KindTypeahead},
		{&fakeElement{tag: "fieldset", children: map[string][]*fakeElement{
			`input[type="checkbox"]`: {{tag: "input"}},
		}}, KindCheckboxGroup},
		{&fakeElement{tag: "fieldset", children: map[string][]*fakeElement{
			`input[type="radio"]`: {{tag: "input"}},
		}}, KindRadio},
		{&fakeElement{tag: "div"}, KindUnknown},
	}
	for _, tc := range cases {
		if got := DetectKind(tc.el); got != tc.want {
			t.Fatalf("DetectKind(%s) = %q, want %q", tc.el.tag, got, tc.want)
		}
	}
}

func TestFillFieldSkipsPrefilled(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubCompletion{answer: "should not be called"})

	el := &fakeElement{tag: "input", attrs: map[string]string{"type": "text"}, value: "already answered"}
	result := o.FillField(context.Background(), &fakePage{}, el, FillContext{})

	if result.State != StateSkipped {
		t.Fatalf("expected skip, got %q", result.State)
	}
	if len(el.setValues) != 0 {
		t.Fatalf("prefilled field must not be written: %v", el.setValues)
	}
}

func TestFillFieldSkipsMarketingCheckbox(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubCompletion{answer: "Yes"})

	el := &fakeElement{tag: "input", attrs: map[string]string{"type": "checkbox", "id": "follow"}}
	page := &fakePage{elements: map[string]*fakeElement{
		labelSelector("follow"): {tag: "label", text: "Subscribe to our newsletter"},
	}}

	result := o.FillField(context.Background(), page, el, FillContext{})
	if result.State != StateSkipped {
		t.Fatalf("expected skip, got %q", result.State)
	}
	if el.clicked != 0 {
		t.Fatal("marketing checkbox must not be clicked")
	}
}

func TestFillFieldSelectFromCache(t *testing.T) {
	o, store := newTestOrchestrator(t, &stubCompletion{err: fmt.Errorf("must not be called")})
	store.Put("are you legally authorized to work?", "Yes", nil, SourceManual)

	el := &fakeElement{
		tag:   "select",
		attrs: map[string]string{"id": "auth"},
		children: map[string][]*fakeElement{
			"option": {
				{tag: "option", text: selectPlaceholder},
				{tag: "option", text: "Yes"},
				{tag: "option", text: "No"},
			},
		},
	}
	page := &fakePage{elements: map[string]*fakeElement{
		labelSelector("auth"): {tag: "label", text: "Are you legally authorized to work?"},
	}}

	result := o.FillField(context.Background(), page, el, FillContext{})
	if result.State != StateAnswered {
		t.Fatalf("expected answered, got %q", result.State)
	}
	if !result.FromCache {
		t.Fatal("expected a cache hit")
	}
	if result.Answer != "Yes" {
		t.Fatalf("unexpected answer: %q", result.Answer)
	}
	if len(el.setValues) != 1 || el.setValues[0] != "Yes" {
		t.Fatalf("unexpected writes: %v", el.setValues)
	}
}

func TestFillFieldRadioViaGenerator(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubCompletion{answer: "No"})

	yes := &fakeElement{tag: "input", attrs: map[string]string{"type": "radio", "id": "opt-yes", "value": "Yes"}}
	no := &fakeElement{tag: "input", attrs: map[string]string{"type": "radio", "id": "opt-no", "value": "No"}}
	group := &fakeElement{
		tag: "fieldset",
		children: map[string][]*fakeElement{
			`input[type="radio"]`: {yes, no},
			"legend":              {{tag: "legend", text: "Do you require sponsorship?"}},
			labelSelector("opt-yes"): {{tag: "label", text: "Yes"}},
			labelSelector("opt-no"):  {{tag: "label", text: "No"}},
		},
	}

	result := o.FillField(context.Background(), &fakePage{}, group, FillContext{})
	if result.State != StateAnswered {
		t.Fatalf("expected answered, got %q", result.State)
	}
	if result.FromCache {
		t.Fatal("expected a generated answer")
	}
	if no.clicked != 1 || yes.clicked != 0 {
		t.Fatalf("wrong input clicked: yes=%d no=%d", yes.clicked, no.clicked)
	}
	if result.Question != "Do you require sponsorship?" {
		t.Fatalf("unexpected question: %q", result.Question)
	}
}

func TestFillFieldErrorRetryOverwritesCachedAnswer(t *testing.T) {
	o, store := newTestOrchestrator(t, &stubCompletion{answer: "7"})
	store.Put("how many years of java experience do you have?", "seven", nil, SourceAIGenerated)

	el := &fakeElement{
		tag:   "input",
		attrs: map[string]string{"type": "text", "aria-label": "How many years of Java experience do you have?"},
	}
	result := o.FillField(context.Background(), &fakePage{}, el, FillContext{
		ErrorContext: "Enter a whole number",
	})

	if result.State != StateAnswered || result.Answer != "7" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.FromCache {
		t.Fatal("error retry must not be served from cache")
	}

	rec, ok := store.Get("how many years of java experience do you have?")
	if !ok {
		t.Fatal("record missing after retry")
	}
	if rec.Answer != "7" {
		t.Fatalf("corrected answer not persisted, store still holds %q", rec.Answer)
	}
	if len(el.setValues) != 1 || el.setValues[0] != "7" {
		t.Fatalf("unexpected writes: %v", el.setValues)
	}
}

func TestFillFieldUnresolvedWithoutOptions(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubCompletion{err: fmt.Errorf("network down")})

	el := &fakeElement{tag: "input", attrs: map[string]string{"type": "text", "aria-label": "Tell us about yourself"}}
	result := o.FillField(context.Background(), &fakePage{}, el, FillContext{})

	if result.State != StateUnresolved {
		t.Fatalf("expected unresolved, got %q", result.State)
	}
}

func TestFillFieldDateDefaultsToToday(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubCompletion{err: fmt.Errorf("network down")})
	o.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }

	el := &fakeElement{tag: "input", attrs: map[string]string{"type": "date", "aria-label": "Earliest start date"}}
	result := o.FillField(context.Background(), &fakePage{}, el, FillContext{})

	if result.State != StateAnswered {
		t.Fatalf("expected answered, got %q", result.State)
	}
	if result.Answer != "09/01/2026" {
		t.Fatalf("unexpected date: %q", result.Answer)
	}
	if len(el.setValues) != 1 || el.setValues[0] != "09/01/2026" {
		t.Fatalf("unexpected writes: %v", el.setValues)
	}
}

func TestQuestionTextFallbacks(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubCompletion{})

	el := &fakeElement{tag: "input", attrs: map[string]string{"type": "text", "placeholder": "Phone number"}}
	if got := o.QuestionText(&fakePage{}, el, KindText); got != "Phone number" {
		t.Fatalf("placeholder fallback failed: %q", got)
	}

	bare := &fakeElement{tag: "input", attrs: map[string]string{"type": "text"}}
	if got := o.QuestionText(&fakePage{}, bare, KindText); got != "text field" {
		t.Fatalf("generic fallback failed: %q", got)
	}
}
