package contact

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ziadkadry99/folio/internal/generation"
	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/ui"
)

// SelectorForm is the form whose submit events the Form handles.
const SelectorForm = "#contact-form"

// DefaultMessageTTL is how long a form message stays on screen.
const DefaultMessageTTL = 5 * time.Second

type messageKey int

const (
	msgRequired messageKey = iota
	msgInvalidEmail
	msgSending
	msgSent
	msgRejected
	msgNetwork
)

var formMessages = map[locale.Locale]map[messageKey]string{
	locale.ES: {
		msgRequired:     "Por favor, completa todos los campos.",
		msgInvalidEmail: "Por favor, introduce un correo electrónico válido.",
		msgSending:      "Enviando mensaje...",
		msgSent:         "¡Mensaje enviado! Te responderé lo antes posible.",
		msgRejected:     "No se pudo enviar el mensaje. Inténtalo de nuevo.",
		msgNetwork:      "Error de conexión. Comprueba tu red e inténtalo de nuevo.",
	},
	locale.EN: {
		msgRequired:     "Please fill in all fields.",
		msgInvalidEmail: "Please enter a valid email address.",
		msgSending:      "Sending message...",
		msgSent:         "Message sent! I'll get back to you as soon as possible.",
		msgRejected:     "The message could not be sent. Please try again.",
		msgNetwork:      "Connection error. Check your network and try again.",
	},
}

// Surface shows form feedback.
type Surface interface {
	ShowMessage(m ui.Message)
	ClearMessage(region ui.Region)
	ResetForm(selector string)
}

// LocaleSource reports the language messages should be shown in.
type LocaleSource interface {
	Current() locale.Locale
}

// Form validates and submits the contact form and shows transient feedback.
type Form struct {
	channel Channel
	surface Surface
	binder  ui.Binder
	lang    LocaleSource
	ttl     time.Duration
	logger  *log.Logger

	// shown tags the message on screen so an old timer never clears a newer
	// message.
	shown generation.Counter

	mu     sync.Mutex
	timer  *time.Timer
	unbind func()
}

// NewForm creates a Form. A non-positive ttl uses DefaultMessageTTL.
func NewForm(channel Channel, surface Surface, binder ui.Binder, lang LocaleSource, ttl time.Duration, logger *log.Logger) *Form {
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Form{channel: channel, surface: surface, binder: binder, lang: lang, ttl: ttl, logger: logger}
}

// Bind attaches the form's submit handler.
func (f *Form) Bind() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unbind != nil {
		return
	}
	f.unbind = f.binder.Bind(SelectorForm, func(ctx context.Context, ev ui.Event) {
		fields := Fields{Name: ev.Data["name"], Email: ev.Data["email"], Message: ev.Data["message"]}
		if err := f.Submit(ctx, fields); err != nil {
			f.logger.Printf("contact: form: %v", err)
		}
	})
}

// Submit validates fields, hands them to the channel and shows the outcome.
// The returned error is one of the package sentinels.
func (f *Form) Submit(ctx context.Context, fields Fields) error {
	fields = fields.Trimmed()
	if err := Validate(fields); err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			f.show(ui.KindError, msgInvalidEmail, true)
		} else {
			f.show(ui.KindError, msgRequired, true)
		}
		return err
	}

	f.show(ui.KindInfo, msgSending, false)
	outcome := f.channel.Submit(ctx, fields)
	switch outcome {
	case OK:
		f.surface.ResetForm(SelectorForm)
		f.show(ui.KindSuccess, msgSent, true)
	case Rejected:
		f.show(ui.KindError, msgRejected, true)
	default:
		f.show(ui.KindError, msgNetwork, true)
	}
	return outcome.Err()
}

// Close removes the binding and cancels a pending clear.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unbind != nil {
		f.unbind()
		f.unbind = nil
	}
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *Form) show(kind ui.MessageKind, key messageKey, transient bool) {
	texts, ok := formMessages[f.lang.Current()]
	if !ok {
		texts = formMessages[locale.Default]
	}
	tag := f.shown.Next()
	f.surface.ShowMessage(ui.Message{Region: ui.RegionContact, Kind: kind, Text: texts[key]})

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if !transient {
		return
	}
	f.timer = time.AfterFunc(f.ttl, func() {
		if f.shown.IsCurrent(tag) {
			f.surface.ClearMessage(ui.RegionContact)
		}
	})
}
