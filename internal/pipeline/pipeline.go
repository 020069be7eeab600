// Package pipeline turns completed network operations into notifications.
// It observes every operation dispatched through the request cache: failed
// operations and fulfilled mutations each produce exactly one notification,
// and an unauthorized status additionally logs the user out.
package pipeline

import (
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/brkygngr/banking-client/internal/cache"
	"github.com/brkygngr/banking-client/internal/notify"
	"github.com/brkygngr/banking-client/pkg/logger"
)

const defaultDuration = 6 * time.Second

// TokenClearer logs the user out when the server rejects their token.
type TokenClearer interface {
	Clear()
}

// Config wires the pipeline's collaborators.
type Config struct {
	Notifications *notify.Store
	// Tokens is cleared on unauthorized outcomes. May be nil.
	Tokens TokenClearer
	// Duration is the display duration of produced notifications.
	// Defaults to six seconds.
	Duration time.Duration
	Logger   *logger.Logger
}

// Pipeline implements cache.Listener.
type Pipeline struct {
	notifications *notify.Store
	tokens        TokenClearer
	duration      time.Duration
	log           *logger.Logger
}

// New builds a pipeline.
func New(cfg Config) *Pipeline {
	duration := cfg.Duration
	if duration <= 0 {
		duration = defaultDuration
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("outcome-pipeline")
	}
	return &Pipeline{
		notifications: cfg.Notifications,
		tokens:        cfg.Tokens,
		duration:      duration,
		log:           log,
	}
}

var _ cache.Listener = (*Pipeline)(nil)

// OperationCompleted classifies one completed operation. Pure reads are
// silent on success; everything else produces exactly one notification.
func (p *Pipeline) OperationCompleted(outcome cache.Outcome) {
	if outcome.Err != nil {
		p.rejected(outcome)
		return
	}
	if outcome.Method != http.MethodGet {
		p.fulfilled(outcome)
	}
}

func (p *Pipeline) rejected(outcome cache.Outcome) {
	prob := outcome.Err
	p.notifications.Show("Failure", p.failureBody(outcome), notify.SeverityFailure, p.duration)

	// The logout must land after the notification is queued so the UI can
	// render the failure before routing back to login.
	if prob.Status == http.StatusUnauthorized && p.tokens != nil {
		p.log.WithFields(map[string]interface{}{
			"operation": outcome.ID,
			"endpoint":  outcome.Endpoint,
		}).Warn("unauthorized response, clearing token")
		p.tokens.Clear()
	}
}

// failureBody extracts a human-readable message from the rejection payload.
// Structured API errors carry {code, errors, timestamp}; anything else
// falls back to the transport error text.
func (p *Pipeline) failureBody(outcome cache.Outcome) string {
	prob := outcome.Err
	body := prob.Body
	if len(body) == 0 || !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return prob.Message
	}

	parsed := gjson.ParseBytes(body)
	code := parsed.Get("code").String()
	var messages []string
	for _, item := range parsed.Get("errors").Array() {
		messages = append(messages, item.String())
	}
	if code == "" && len(messages) == 0 {
		messages = []string{outcome.Endpoint + " " + prob.Message}
	}
	return strings.TrimSpace(code + " " + strings.Join(messages, ", "))
}

func (p *Pipeline) fulfilled(outcome cache.Outcome) {
	body := strings.TrimSpace(outcome.Endpoint + " " + outcome.Args)
	p.notifications.Show("Success", body, notify.SeveritySuccess, p.duration)
}
