package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultChannelTimeout = 15 * time.Second
	defaultPushIcon       = "/icon-192x192.png"
	defaultPushBadge      = "/badge-72x72.png"
	defaultPushURL        = "/notifications"

	ReasonQuietHours = "quiet_hours"
)

// Options tune the dispatcher.
type Options struct {
	// Location is the timezone quiet hours are evaluated in.
	Location *time.Location
	// ChannelTimeout bounds each channel task.
	ChannelTimeout time.Duration
	// AppBaseURL is used to build absolute links in emails.
	AppBaseURL string
	PushIcon   string
	PushBadge  string
}

// Deps are the collaborators of the dispatcher. Any sender may be nil, in
// which case attempts on that channel are logged as failed.
type Deps struct {
	Preferences   PreferencesReader
	Subscriptions SubscriptionReader
	Contacts      ContactReader
	Logs          LogWriter
	InApp         InAppWriter
	Publisher     Publisher

	Email EmailSender
	Text  TextSender
	Push  PushSender

	Logger *zap.Logger
	Now    func() time.Time
}

// Dispatcher fans a notification event out to the user's channels.
type Dispatcher struct {
	deps Deps
	opts Options
	log  *zap.Logger
	now  func() time.Time
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(deps Deps, opts Options) *Dispatcher {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ChannelTimeout <= 0 {
		opts.ChannelTimeout = defaultChannelTimeout
	}
	if opts.PushIcon == "" {
		opts.PushIcon = defaultPushIcon
	}
	if opts.PushBadge == "" {
		opts.PushBadge = defaultPushBadge
	}

	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Dispatcher{deps: deps, opts: opts, log: l.Named("notification"), now: now}
}

// ChannelOutcome is the result of one channel attempt.
type ChannelOutcome struct {
	Channel           Channel   `json:"channel"`
	Status            LogStatus `json:"status"`
	Provider          string    `json:"provider,omitempty"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	Error             string    `json:"error,omitempty"`
	Logged            bool      `json:"logged"`

	// Push fan-out counters, zero for other channels.
	PushAttempted int `json:"push_attempted,omitempty"`
	PushDelivered int `json:"push_delivered,omitempty"`
	PushFailed    int `json:"push_failed,omitempty"`
}

// DispatchResult aggregates what happened during one Send.
type DispatchResult struct {
	UserID     string             `json:"user_id"`
	Type       Type               `json:"type"`
	Suppressed bool               `json:"suppressed"`
	Reason     string             `json:"reason,omitempty"`
	Outcomes   []ChannelOutcome   `json:"outcomes"`
	InApp      *InAppNotification `json:"in_app,omitempty"`
	InAppError string             `json:"in_app_error,omitempty"`
}

// Outcome returns the outcome for ch, if that channel was attempted.
func (r *DispatchResult) Outcome(ch Channel) (ChannelOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Channel == ch {
			return o, true
		}
	}
	return ChannelOutcome{}, false
}

// Attempted lists the channels that were attempted.
func (r *DispatchResult) Attempted() []Channel {
	out := make([]Channel, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out = append(out, o.Channel)
	}
	return out
}

// Send delivers ev to every enabled channel and creates the in-app
// notification. It waits for all channels to settle and never panics or
// returns an error: every failure is recorded in the result and the logs.
func (d *Dispatcher) Send(ctx context.Context, ev Event) (res *DispatchResult) {
	ev.Priority = ev.Priority.OrDefault()
	res = &DispatchResult{UserID: ev.UserID, Type: ev.Type, Outcomes: []ChannelOutcome{}}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("dispatch panicked",
				zap.String("user_id", ev.UserID),
				zap.String("type", string(ev.Type)),
				zap.Any("panic", r),
			)
		}
	}()

	prefs := d.loadPreferences(ctx, ev.UserID)

	quiet, err := prefs.QuietHours().Contains(d.now(), d.opts.Location)
	if err != nil {
		d.log.Warn("ignoring invalid quiet hours",
			zap.String("user_id", ev.UserID),
			zap.String("start", prefs.QuietHoursStart),
			zap.String("end", prefs.QuietHoursEnd),
			zap.Error(err),
		)
	}
	if quiet {
		res.Suppressed = true
		res.Reason = ReasonQuietHours
		d.log.Info("notification suppressed by quiet hours",
			zap.String("user_id", ev.UserID),
			zap.String("type", string(ev.Type)),
		)
		return res
	}

	channels := prefs.EnabledChannels(CategoryOf(ev.Type))
	outcomes := make([]ChannelOutcome, len(channels))

	var wg sync.WaitGroup
	for i, ch := range channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			outcomes[i] = d.runChannel(ctx, ch, ev, prefs)
		}(i, ch)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		res.InApp, res.InAppError = d.createInApp(ctx, ev)
	}()

	wg.Wait()
	res.Outcomes = outcomes

	d.log.Debug("notification dispatched",
		zap.String("user_id", ev.UserID),
		zap.String("type", string(ev.Type)),
		zap.Any("channels", res.Attempted()),
	)
	return res
}

// Submit runs Send in the background, detached from the caller's
// cancellation, so the triggering request never waits on delivery.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) {
	bg := context.WithoutCancel(ctx)
	go d.Send(bg, ev)
}

// Enqueue validates ev and submits it. It lets the dispatcher stand in for
// the queue when no broker is configured.
func (d *Dispatcher) Enqueue(ctx context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	d.Submit(ctx, ev)
	return nil
}

func (d *Dispatcher) loadPreferences(ctx context.Context, userID string) *Preferences {
	if d.deps.Preferences == nil {
		return DefaultPreferences(userID)
	}

	prefs, err := d.deps.Preferences.GetPreferences(ctx, userID)
	if err != nil {
		d.log.Warn("failed to load preferences, using defaults",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return DefaultPreferences(userID)
	}
	if prefs == nil {
		return DefaultPreferences(userID)
	}
	return prefs
}

// attempt is the channel-level result before it is logged.
type attempt struct {
	channel   Channel
	err       error
	provider  string
	messageID string
	data      map[string]any

	pushAttempted, pushDelivered, pushFailed int
}

func (d *Dispatcher) runChannel(ctx context.Context, ch Channel, ev Event, prefs *Preferences) (out ChannelOutcome) {
	logCtx := context.WithoutCancel(ctx)
	ctx, cancel := context.WithTimeout(ctx, d.opts.ChannelTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out = d.record(logCtx, ev, attempt{channel: ch, err: fmt.Errorf("panic: %v", r)})
		}
	}()

	var a attempt
	switch ch {
	case ChannelEmail:
		a = d.deliverEmail(ctx, ev, prefs)
	case ChannelSMS, ChannelWhatsApp:
		a = d.deliverText(ctx, ch, ev, prefs)
	case ChannelPush:
		a = d.deliverPush(ctx, ev)
	default:
		a = attempt{channel: ch, err: fmt.Errorf("unsupported channel %q", ch)}
	}
	return d.record(logCtx, ev, a)
}

func (d *Dispatcher) deliverEmail(ctx context.Context, ev Event, prefs *Preferences) attempt {
	a := attempt{channel: ChannelEmail}

	to := strings.TrimSpace(prefs.EmailAddress)
	if to == "" {
		to = d.contact(ctx, ev.UserID).Email
	}
	if to == "" {
		a.err = fmt.Errorf("no email address on file")
		return a
	}
	if d.deps.Email == nil {
		a.err = fmt.Errorf("email provider not configured")
		return a
	}
	a.provider = d.deps.Email.Provider()

	html, err := RenderEmail(EmailContent{
		Title:     ev.Title,
		Body:      ev.Body,
		ActionURL: ev.ActionURL,
		BaseURL:   d.opts.AppBaseURL,
	})
	if err != nil {
		a.err = err
		return a
	}

	id, err := d.deps.Email.SendEmail(ctx, to, ev.Title, html)
	if err != nil {
		a.err = err
		return a
	}
	a.messageID = id
	return a
}

func (d *Dispatcher) deliverText(ctx context.Context, ch Channel, ev Event, prefs *Preferences) attempt {
	a := attempt{channel: ch}

	to := strings.TrimSpace(prefs.PhoneNumber)
	if ch == ChannelWhatsApp {
		if wa := strings.TrimSpace(prefs.WhatsAppNumber); wa != "" {
			to = wa
		}
	}
	if to == "" {
		to = d.contact(ctx, ev.UserID).Phone
	}
	if to == "" {
		a.err = fmt.Errorf("no %s number on file", ch)
		return a
	}
	if d.deps.Text == nil {
		a.err = fmt.Errorf("%s provider not configured", ch)
		return a
	}
	a.provider = d.deps.Text.Provider()

	id, err := d.deps.Text.SendText(ctx, to, textBody(ev, d.opts.AppBaseURL), ch)
	if err != nil {
		a.err = err
		return a
	}
	a.messageID = id
	return a
}

func (d *Dispatcher) deliverPush(ctx context.Context, ev Event) attempt {
	a := attempt{channel: ChannelPush}

	if d.deps.Subscriptions == nil {
		a.err = fmt.Errorf("push subscriptions unavailable")
		return a
	}
	subs, err := d.deps.Subscriptions.ListActive(ctx, ev.UserID)
	if err != nil {
		a.err = fmt.Errorf("load push subscriptions: %w", err)
		return a
	}
	if len(subs) == 0 {
		a.err = fmt.Errorf("no push subscriptions registered")
		return a
	}
	if d.deps.Push == nil {
		a.err = fmt.Errorf("push provider not configured")
		return a
	}
	a.provider = d.deps.Push.Provider()

	payload := BuildPushPayload(ev, d.opts.PushIcon, d.opts.PushBadge)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errMsg []string
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(sub DeviceToken) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					errMsg = append(errMsg, fmt.Sprintf("device %d: panic: %v", sub.ID, r))
					mu.Unlock()
				}
			}()
			if err := d.deps.Push.SendPush(ctx, sub, payload); err != nil {
				mu.Lock()
				errMsg = append(errMsg, fmt.Sprintf("device %d: %v", sub.ID, err))
				mu.Unlock()
			}
		}(sub)
	}
	wg.Wait()

	a.pushAttempted = len(subs)
	a.pushFailed = len(errMsg)
	a.pushDelivered = a.pushAttempted - a.pushFailed
	a.data = map[string]any{
		"push_attempted": a.pushAttempted,
		"push_delivered": a.pushDelivered,
		"push_failed":    a.pushFailed,
	}
	if len(errMsg) > 0 {
		a.data["push_errors"] = errMsg
		d.log.Warn("push delivery partially failed",
			zap.String("user_id", ev.UserID),
			zap.Int("attempted", a.pushAttempted),
			zap.Int("failed", a.pushFailed),
		)
	}
	return a
}

func (d *Dispatcher) contact(ctx context.Context, userID string) Contact {
	if d.deps.Contacts == nil {
		return Contact{}
	}
	c, err := d.deps.Contacts.GetContact(ctx, userID)
	if err != nil {
		d.log.Debug("contact lookup failed", zap.String("user_id", userID), zap.Error(err))
		return Contact{}
	}
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	return c
}

// record writes the log entry for an attempt. Log-store failures are
// swallowed.
func (d *Dispatcher) record(ctx context.Context, ev Event, a attempt) ChannelOutcome {
	now := d.now()
	entry := &LogEntry{
		UserID:            ev.UserID,
		Type:              ev.Type,
		Channel:           a.channel,
		Priority:          ev.Priority.OrDefault(),
		Title:             ev.Title,
		Body:              ev.Body,
		Data:              mergeData(ev.Data, a.data),
		Provider:          a.provider,
		ProviderMessageID: a.messageID,
		RelatedEntityType: ev.RelatedEntityType,
		RelatedEntityID:   ev.RelatedEntityID,
	}

	out := ChannelOutcome{
		Channel:           a.channel,
		Provider:          a.provider,
		ProviderMessageID: a.messageID,
		PushAttempted:     a.pushAttempted,
		PushDelivered:     a.pushDelivered,
		PushFailed:        a.pushFailed,
	}

	if a.err != nil {
		msg := a.err.Error()
		entry.Status = LogStatusFailed
		entry.FailedAt = &now
		entry.ErrorMessage = &msg
		out.Status = LogStatusFailed
		out.Error = msg
	} else {
		entry.Status = LogStatusSent
		entry.SentAt = &now
		out.Status = LogStatusSent
	}

	if d.deps.Logs == nil {
		return out
	}
	if err := d.deps.Logs.Append(ctx, entry); err != nil {
		d.log.Warn("failed to write notification log",
			zap.String("user_id", ev.UserID),
			zap.String("channel", string(a.channel)),
			zap.Error(err),
		)
		return out
	}
	out.Logged = true
	return out
}

func (d *Dispatcher) createInApp(ctx context.Context, ev Event) (n *InAppNotification, errMsg string) {
	defer func() {
		if r := recover(); r != nil {
			n = nil
			errMsg = fmt.Sprintf("panic: %v", r)
			d.log.Error("in-app notification panicked", zap.String("user_id", ev.UserID), zap.Any("panic", r))
		}
	}()

	if d.deps.InApp == nil {
		return nil, "in-app store not configured"
	}

	n = newInApp(ev)
	if err := d.deps.InApp.Create(ctx, n); err != nil {
		d.log.Error("failed to create in-app notification",
			zap.String("user_id", ev.UserID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
		return nil, err.Error()
	}

	if d.deps.Publisher != nil {
		d.deps.Publisher.PublishNotification(ev.UserID, n)
	}
	return n, ""
}

// PushPayload is what a device receives.
type PushPayload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon"`
	Badge string         `json:"badge"`
	Data  map[string]any `json:"data"`
}

// BuildPushPayload builds the push body for ev. data.url defaults to the
// notifications page; event data is merged on top.
func BuildPushPayload(ev Event, icon, badge string) PushPayload {
	url := ev.ActionURL
	if url == "" {
		url = defaultPushURL
	}
	data := map[string]any{"url": url}
	for k, v := range ev.Data {
		data[k] = v
	}
	return PushPayload{
		Title: ev.Title,
		Body:  ev.Body,
		Icon:  icon,
		Badge: badge,
		Data:  data,
	}
}

func textBody(ev Event, baseURL string) string {
	var b strings.Builder
	b.WriteString(ev.Title)
	if ev.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(ev.Body)
	}
	if link := absoluteURL(baseURL, ev.ActionURL); link != "" && baseURL != "" {
		b.WriteString("\n\n")
		b.WriteString(link)
	}
	return b.String()
}

func mergeData(base, extra map[string]any) map[string]any {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
