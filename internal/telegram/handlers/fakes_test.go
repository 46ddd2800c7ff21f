package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/config"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/integration/pdf"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
	"github.com/futig/lab-assistant/internal/pkg/validator"
	"github.com/futig/lab-assistant/internal/repository"
	"github.com/futig/lab-assistant/internal/telegram/keyboard"
	"github.com/futig/lab-assistant/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeChannel struct {
	mu       sync.Mutex
	nextID   int
	sent     []entity.OutgoingMessage
	edits    []string
	deleted  []int
	docs     []string
	typing   int
	download []byte
	dlErr    error
	dlCalls  int
	editErr  error
}

func (c *fakeChannel) Send(_ context.Context, msg entity.OutgoingMessage) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.sent = append(c.sent, msg)
	return 1000 + c.nextID, nil
}

func (c *fakeChannel) Edit(_ context.Context, _ int64, _ int, text string, _ *tgbotapi.InlineKeyboardMarkup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editErr != nil {
		return c.editErr
	}
	c.edits = append(c.edits, text)
	return nil
}

func (c *fakeChannel) Delete(_ context.Context, _ int64, messageID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, messageID)
	return nil
}

func (c *fakeChannel) SendDocument(_ context.Context, _ int64, name string, _ []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, name)
	return nil
}

func (c *fakeChannel) AnswerCallback(context.Context, string, string) error {
	return nil
}

func (c *fakeChannel) SendTyping(context.Context, int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing++
	return nil
}

func (c *fakeChannel) DownloadFile(context.Context, string, int64) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dlCalls++
	return c.download, c.dlErr
}

func (c *fakeChannel) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, m := range c.sent {
		out = append(out, m.Text)
	}
	return out
}

func (c *fakeChannel) last() entity.OutgoingMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return entity.OutgoingMessage{}
	}
	return c.sent[len(c.sent)-1]
}

type memStorage struct {
	mu       sync.Mutex
	sessions map[int64]state.Session
}

func (m *memStorage) Get(_ context.Context, userID int64) (*state.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memStorage) Set(_ context.Context, s *state.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = *s
	return nil
}

func (m *memStorage) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

type fakeStructurer struct {
	values entity.AnalysisValues
	err    error
	input  string
}

func (f *fakeStructurer) Structure(_ context.Context, text string) (entity.AnalysisValues, error) {
	f.input = text
	return f.values.Clone(), f.err
}

type fakeExtractor struct {
	result pdf.Result
	err    error
}

func (f *fakeExtractor) Extract(context.Context, []byte) (pdf.Result, error) {
	return f.result, f.err
}

type fakeComposer struct {
	calls   int
	profile *entity.Profile
	values  entity.AnalysisValues
}

func (f *fakeComposer) ComposeAndSend(_ context.Context, _ int64, profile *entity.Profile, values entity.AnalysisValues, _ any) error {
	f.calls++
	f.profile = profile
	f.values = values
	return nil
}

type fakeReports struct {
	report *formatter.Report
}

func (f *fakeReports) Get(int64) (formatter.Report, error) {
	if f.report == nil {
		return formatter.Report{}, entity.ErrReportNotFound
	}
	return *f.report, nil
}

type fakeLinks struct{ url string }

func (f fakeLinks) FormURL(int64, int64) string { return f.url }

type fakeConsultant struct {
	answer string
	err    error
}

func (f *fakeConsultant) Answer(context.Context, string) (string, error) {
	return f.answer, f.err
}

const (
	testUser int64 = 42
	testChat int64 = 4200
)

type harness struct {
	deps       *Deps
	channel    *fakeChannel
	structurer *fakeStructurer
	extractor  *fakeExtractor
	composer   *fakeComposer
	reports    *fakeReports
	consultant *fakeConsultant
	store      *repository.FileStore
	dataDir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	h := &harness{
		channel:    &fakeChannel{},
		structurer: &fakeStructurer{},
		extractor:  &fakeExtractor{},
		composer:   &fakeComposer{},
		reports:    &fakeReports{},
		consultant: &fakeConsultant{},
		store:      repository.NewFileStore(dir),
		dataDir:    dir,
	}
	h.deps = &Deps{
		Channel:    h.channel,
		States:     state.NewManager(&memStorage{sessions: map[int64]state.Session{}}),
		Keyboard:   keyboard.NewBuilder(),
		Profiles:   h.store,
		Structurer: h.structurer,
		Composer:   h.composer,
		Extractor:  h.extractor,
		Validator: validator.NewValidator(config.IntakeConfig{
			MaxPDFSize:    10 * 1024 * 1024,
			MaxTextLength: 15000,
			PDFWorkers:    1,
		}),
		Catalog:    catalog.Default(),
		Reports:    h.reports,
		Formatters: formatter.NewFactory(),
		FormLinks:  fakeLinks{url: "https://example.org/form?t=abc"},
		Consultant: h.consultant,
	}
	return h
}

func (h *harness) setState(t *testing.T, st state.State, data *state.StateData) {
	t.Helper()
	if err := h.deps.States.Save(context.Background(), testUser, st, data); err != nil {
		t.Fatalf("save state: %v", err)
	}
}

func (h *harness) state(t *testing.T) (state.State, *state.StateData) {
	t.Helper()
	ctx := context.Background()
	st, err := h.deps.States.GetState(ctx, testUser)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	data, err := h.deps.States.GetStateData(ctx, testUser)
	if err != nil {
		t.Fatalf("get state data: %v", err)
	}
	return st, data
}

func (h *harness) register(t *testing.T) {
	t.Helper()
	err := h.store.SaveProfile(context.Background(), &entity.Profile{
		UserID:    testUser,
		FirstName: "Анна",
		RegistrationData: entity.RegistrationData{
			Gender: entity.GenderFemale,
			Age:    30,
		},
	})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
}

func textEvent(text string) *Event {
	return &Event{Kind: EventText, UserID: testUser, ChatID: testChat, MessageID: 7, Text: text}
}

func callbackEvent(action, value string) *Event {
	return &Event{
		Kind:         EventCallback,
		UserID:       testUser,
		ChatID:       testChat,
		MessageID:    8,
		CallbackData: keyboard.EncodeCallback(action, value),
		CallbackID:   "cb",
	}
}

func documentEvent(mime string, size int64) *Event {
	return &Event{
		Kind:      EventDocument,
		UserID:    testUser,
		ChatID:    testChat,
		MessageID: 9,
		Document:  &Document{FileID: "file", FileName: "analysis.pdf", MimeType: mime, Size: size},
	}
}
