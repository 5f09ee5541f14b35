package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fetchforms/pkg/dom"
)

type stubDriver struct {
	titles     []string
	texts      []string
	secrets    []string
	paragraphs []string
	toggles    []bool
	chosen     []string
	chosenMany [][]string
	paths      [][]string

	messages  []string
	questions map[string]Question
	choices   map[string][]dom.Choice
}

func (s *stubDriver) record(kind string, q Question) {
	s.messages = append(s.messages, kind+":"+q.message())
	if s.questions == nil {
		s.questions = map[string]Question{}
	}
	s.questions[q.Name] = q
}

func (s *stubDriver) recordChoices(q Question, choices []dom.Choice) {
	if s.choices == nil {
		s.choices = map[string][]dom.Choice{}
	}
	s.choices[q.Name] = choices
}

func (s *stubDriver) Announce(_ context.Context, title string) error {
	s.titles = append(s.titles, title)
	return nil
}

func (s *stubDriver) Text(_ context.Context, q Question) (string, error) {
	s.record("text", q)
	if len(s.texts) == 0 {
		return "", errors.New("no text scripted")
	}
	val := s.texts[0]
	s.texts = s.texts[1:]
	return val, nil
}

func (s *stubDriver) Secret(_ context.Context, q Question) (string, error) {
	s.record("secret", q)
	if len(s.secrets) == 0 {
		return "", errors.New("no secret scripted")
	}
	val := s.secrets[0]
	s.secrets = s.secrets[1:]
	return val, nil
}

func (s *stubDriver) Paragraph(_ context.Context, q Question) (string, error) {
	s.record("paragraph", q)
	if len(s.paragraphs) == 0 {
		return "", errors.New("no paragraph scripted")
	}
	val := s.paragraphs[0]
	s.paragraphs = s.paragraphs[1:]
	return val, nil
}

func (s *stubDriver) Toggle(_ context.Context, q Question, _ bool) (bool, error) {
	s.record("toggle", q)
	if len(s.toggles) == 0 {
		return false, errors.New("no toggle scripted")
	}
	val := s.toggles[0]
	s.toggles = s.toggles[1:]
	return val, nil
}

func (s *stubDriver) Choose(_ context.Context, q Question, choices []dom.Choice) (string, error) {
	s.record("choose", q)
	s.recordChoices(q, choices)
	if len(s.chosen) == 0 {
		return "", errors.New("no choice scripted")
	}
	val := s.chosen[0]
	s.chosen = s.chosen[1:]
	return val, nil
}

func (s *stubDriver) ChooseMany(_ context.Context, q Question, choices []dom.Choice) ([]string, error) {
	s.record("many", q)
	s.recordChoices(q, choices)
	if len(s.chosenMany) == 0 {
		return nil, errors.New("no choices scripted")
	}
	val := s.chosenMany[0]
	s.chosenMany = s.chosenMany[1:]
	return val, nil
}

func (s *stubDriver) Paths(_ context.Context, q Question, _ bool) ([]string, error) {
	s.record("paths", q)
	if len(s.paths) == 0 {
		return nil, errors.New("no paths scripted")
	}
	val := s.paths[0]
	s.paths = s.paths[1:]
	return val, nil
}

const profileForm = `<form id="profile" method="post" action="/test/post">
<input type="hidden" name="csrf" value="abc">
<label for="nick">Nickname</label>
<input id="nick" name="nick" value="ada" required minlength="2" maxlength="12" placeholder="your handle">
<input type="password" name="secret">
<textarea name="bio" title="A few words">hi</textarea>
<label><input type="radio" name="plan" value="free" checked> Free tier</label>
<label><input type="radio" name="plan" value="pro"> Pro tier</label>
<input type="checkbox" name="tags" value="a">
<input type="checkbox" name="tags" value="b">
<input type="checkbox" name="tags" value="c">
<label>I agree <input type="checkbox" name="terms"></label>
<select name="lang"><option value="en">English</option><option value="es">Spanish</option><option value="tlh" disabled>Klingon</option></select>
<select name="days" multiple><option>mon</option><option>tue</option><option>wed</option></select>
<input type="file" name="docs" multiple>
<input name="locked" disabled>
<button type="submit" name="go" value="1">Go</button>
</form>`

func TestFill_WritesAnswersIntoForm(t *testing.T) {
	doc, err := dom.ParseString(profileForm, "http://example.test/")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form := doc.Forms()[0]

	driver := &stubDriver{
		texts:      []string{"grace"},
		secrets:    []string{"hunter2"},
		paragraphs: []string{"hello"},
		chosen:     []string{"pro", "es"},
		chosenMany: [][]string{{"a", "c"}, {"tue", "wed"}},
		toggles:    []bool{true},
		paths:      [][]string{{"a.txt", "b.txt"}},
	}
	files := map[string][]byte{"a.txt": []byte("A"), "b.txt": []byte("B")}
	f := New(WithDriver(driver), WithFileReader(func(path string) ([]byte, error) {
		data, ok := files[path]
		if !ok {
			return nil, errors.New("missing")
		}
		return data, nil
	}))

	asked, err := f.Fill(context.Background(), form)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	wantAsked := []string{"nick", "secret", "bio", "plan", "tags", "terms", "lang", "days", "docs"}
	if diff := cmp.Diff(wantAsked, asked); diff != "" {
		t.Fatalf("asked mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`Form "profile": POST http://example.test/test/post`}, driver.titles); diff != "" {
		t.Fatalf("title mismatch (-want +got):\n%s", diff)
	}
	wantMessages := []string{
		"text:Nickname",
		"secret:secret",
		"paragraph:bio",
		"choose:plan",
		"many:tags",
		"toggle:I agree",
		"choose:lang",
		"many:days",
		"paths:docs",
	}
	if diff := cmp.Diff(wantMessages, driver.messages); diff != "" {
		t.Fatalf("prompt mismatch (-want +got):\n%s", diff)
	}

	entries, err := form.Entries(nil)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.Name+"="+e.Value.String())
	}
	want := []string{
		"csrf=abc",
		"nick=grace",
		"secret=hunter2",
		"bio=hello",
		"plan=pro",
		"tags=a",
		"tags=c",
		"terms=on",
		"lang=es",
		"days=tue",
		"days=wed",
		"docs=a.txt",
		"docs=b.txt",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_QuestionsFollowTheMarkup(t *testing.T) {
	doc, err := dom.ParseString(profileForm, "http://example.test/")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	driver := &stubDriver{
		texts:      []string{"grace"},
		secrets:    []string{""},
		paragraphs: []string{"hi"},
		chosen:     []string{"free", "en"},
		chosenMany: [][]string{nil, nil},
		toggles:    []bool{false},
		paths:      [][]string{nil},
	}
	if _, err := New(WithDriver(driver)).Fill(context.Background(), doc.Forms()[0]); err != nil {
		t.Fatalf("fill: %v", err)
	}

	wantNick := Question{
		Name:      "nick",
		Label:     "Nickname",
		Help:      "your handle",
		Default:   "ada",
		Required:  true,
		MinLength: 2,
		MaxLength: 12,
	}
	if diff := cmp.Diff(wantNick, driver.questions["nick"]); diff != "" {
		t.Fatalf("nick question mismatch (-want +got):\n%s", diff)
	}
	if got := driver.questions["bio"]; got.Help != "A few words" || got.Default != "hi" {
		t.Fatalf("bio question = %+v", got)
	}

	wantPlan := []dom.Choice{
		{Value: "free", Label: "Free tier", Selected: true},
		{Value: "pro", Label: "Pro tier"},
	}
	if diff := cmp.Diff(wantPlan, driver.choices["plan"]); diff != "" {
		t.Fatalf("plan choices mismatch (-want +got):\n%s", diff)
	}
	wantLang := []dom.Choice{
		{Value: "en", Label: "English", Selected: true},
		{Value: "es", Label: "Spanish"},
	}
	if diff := cmp.Diff(wantLang, driver.choices["lang"]); diff != "" {
		t.Fatalf("lang choices mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_StopsOnAbort(t *testing.T) {
	doc, err := dom.ParseString(`<form><input name="a"><input name="b"></form>`, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	driver := &stubDriver{texts: []string{"x"}}
	f := New(WithDriver(driver))

	asked, err := f.Fill(context.Background(), doc.Forms()[0])
	if err == nil {
		t.Fatalf("expected an error once the script runs out")
	}
	if diff := cmp.Diff([]string{"a"}, asked); diff != "" {
		t.Fatalf("asked mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Form: GET (no action)"}, driver.titles); diff != "" {
		t.Fatalf("title mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplayNames_DisambiguatesRepeatedLabels(t *testing.T) {
	choices := []dom.Choice{
		{Value: "1", Label: "Same"},
		{Value: "2", Label: "Same"},
		{Value: "3"},
	}
	want := []string{"Same [1]", "Same [2]", "3"}
	if diff := cmp.Diff(want, displayNames(choices)); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}
	describe := describeValue(choices)
	if got := describe("Same [2]", 1); got != "2" {
		t.Fatalf("description = %q, want the value", got)
	}
	if got := describe("3", 2); got != "" {
		t.Fatalf("description = %q, want none for value-only choices", got)
	}
}
