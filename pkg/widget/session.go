// Package widget models the chat widget client: the session state machine,
// the display-name store and the HTTP client for the relay.
package widget

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"Zelvix/models"
	utils "Zelvix/pkg/utills"
)

const (
	ChangeNameCommand = "/change-name"

	ChatFailedText   = "Sorry, something went wrong. Please try again later."
	UploadFailedText = "Failed to upload file. Please try again."
)

var (
	ErrClosed          = errors.New("widget is closed")
	ErrAwaitingName    = errors.New("display name required")
	ErrNotAwaitingName = errors.New("widget is not asking for a name")
)

// State of the widget session.
type State int

const (
	Closed State = iota
	OpenAwaitingName
	OpenActive
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenAwaitingName:
		return "awaiting-name"
	case OpenActive:
		return "active"
	}
	return "unknown"
}

// ValidationError carries the message shown next to the name input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Option func(*Session)

// WithObserver registers fn to receive every appended message. fn runs
// outside the session lock, one call at a time.
func WithObserver(fn func(models.ChatMessage)) Option {
	return func(s *Session) { s.observer = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is one widget instance. The transcript is append-only and follows
// completion order when sends and uploads overlap.
type Session struct {
	cfg      *models.WidgetConfig
	store    Store
	relay    Relay
	observer func(models.ChatMessage)
	now      func() time.Time

	mu        sync.Mutex
	state     State
	renaming  bool
	name      string
	messages  []models.ChatMessage
	typing    int
	uploading int
	notifyMu  sync.Mutex
}

func NewSession(cfg *models.WidgetConfig, store Store, relay Relay, opts ...Option) *Session {
	if cfg == nil {
		cfg = &models.WidgetConfig{}
	}
	if store == nil {
		store = NewMemoryStore("")
	}
	s := &Session{cfg: cfg, store: store, relay: relay, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

// Typing reports whether a chat call is in flight.
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing > 0
}

// Uploading reports whether an upload is in flight.
func (s *Session) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading > 0
}

// appendLocked adds a message; the caller passes the result to notify after
// unlocking.
func (s *Session) appendLocked(sender, text string) models.ChatMessage {
	m := models.ChatMessage{Sender: sender, Text: text, Time: s.now()}
	s.messages = append(s.messages, m)
	return m
}

func (s *Session) notify(msgs ...models.ChatMessage) {
	if s.observer == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	for _, m := range msgs {
		s.observer(m)
	}
}

// Open shows the widget. A cached name goes straight to OpenActive with the
// welcome-back greeting; otherwise the name prompt is shown. Greetings are
// only added to an empty transcript.
func (s *Session) Open() {
	name, err := s.store.Get()
	if err != nil {
		log.Printf("[widget] read stored name: %v", err)
		name = ""
	}

	s.mu.Lock()
	if s.state != Closed {
		s.mu.Unlock()
		return
	}
	var added []models.ChatMessage
	if name != "" && !s.renaming {
		s.name = name
		s.state = OpenActive
		if len(s.messages) == 0 {
			added = append(added, s.appendLocked(models.SenderBot,
				Render(s.cfg.WelcomeMessages.WelcomeBack, map[string]string{"userName": name})))
		}
	} else {
		s.state = OpenAwaitingName
		if len(s.messages) == 0 {
			added = append(added, s.appendLocked(models.SenderBot,
				Render(s.cfg.WelcomeMessages.AskName, map[string]string{"botName": s.cfg.BotName})))
		}
	}
	s.mu.Unlock()
	s.notify(added...)
}

// Close hides the widget; the transcript is kept.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == OpenAwaitingName {
		s.renaming = true
	}
	s.state = Closed
}

// SubmitName validates and stores a display name. An invalid name returns a
// *ValidationError and leaves the state unchanged.
func (s *Session) SubmitName(ctx context.Context, name string) error {
	s.mu.Lock()
	switch s.state {
	case Closed:
		s.mu.Unlock()
		return ErrClosed
	case OpenActive:
		s.mu.Unlock()
		return ErrNotAwaitingName
	}
	s.mu.Unlock()

	if msg := utils.ValidateName(name); msg != "" {
		return &ValidationError{Message: msg}
	}
	name = strings.TrimSpace(name)
	if err := s.store.Set(name); err != nil {
		return err
	}

	s.mu.Lock()
	// the widget may have been closed while the name was being stored
	if s.state != OpenAwaitingName {
		s.mu.Unlock()
		return ErrClosed
	}
	s.name = name
	s.state = OpenActive
	s.renaming = false
	m := s.appendLocked(models.SenderBot,
		Render(s.cfg.WelcomeMessages.NameConfirmation, map[string]string{"userName": name}))
	s.mu.Unlock()
	s.notify(m)

	if starter, ok := s.relay.(SessionStarter); ok {
		if err := starter.StartSession(ctx, name); err != nil {
			log.Printf("[widget] start session: %v", err)
		}
	}
	return nil
}

// Send handles one line of input. Blank input is ignored and /change-name
// reopens the name prompt. Other text is appended at once and then relayed
// as "<name>: <text>"; a failed relay call appends ChatFailedText.
func (s *Session) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if strings.EqualFold(trimmed, ChangeNameCommand) {
		s.state = OpenAwaitingName
		s.mu.Unlock()
		return nil
	}
	userMsg := s.appendLocked(models.SenderUser, text)
	if s.state == OpenAwaitingName {
		s.mu.Unlock()
		s.notify(userMsg)
		return ErrAwaitingName
	}
	s.typing++
	outgoing := trimmed
	if s.name != "" {
		outgoing = s.name + ": " + trimmed
	}
	s.mu.Unlock()
	s.notify(userMsg)

	reply, err := s.relay.Chat(ctx, outgoing)
	if err != nil {
		log.Printf("[widget] chat failed: %v", err)
		reply = ChatFailedText
	}

	s.mu.Lock()
	s.typing--
	botMsg := s.appendLocked(models.SenderBot, reply)
	s.mu.Unlock()
	s.notify(botMsg)
	return nil
}

// Upload relays a file. The "Uploaded: <name>" message is appended first,
// then the preview (with the file URL) or UploadFailedText.
func (s *Session) Upload(ctx context.Context, fileName string, body io.Reader) error {
	s.mu.Lock()
	switch s.state {
	case Closed:
		s.mu.Unlock()
		return ErrClosed
	case OpenAwaitingName:
		s.mu.Unlock()
		return ErrAwaitingName
	}
	userMsg := s.appendLocked(models.SenderUser, "Uploaded: "+fileName)
	userMsg.FileName = fileName
	s.messages[len(s.messages)-1] = userMsg
	s.uploading++
	s.mu.Unlock()
	s.notify(userMsg)

	res, err := s.relay.Upload(ctx, fileName, body)

	s.mu.Lock()
	s.uploading--
	var botMsg models.ChatMessage
	if err != nil {
		log.Printf("[widget] upload failed: %v", err)
		botMsg = s.appendLocked(models.SenderBot, UploadFailedText)
	} else {
		botMsg = s.appendLocked(models.SenderBot, res.Preview)
		botMsg.FileURL = res.FileURL
		s.messages[len(s.messages)-1] = botMsg
	}
	s.mu.Unlock()
	s.notify(botMsg)
	return nil
}
