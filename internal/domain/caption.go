package domain

import (
	"strings"
	"time"
)

// Caption layouts.
const (
	// HeaderLayout renders the full reference date and time, e.g.
	// "Thursday, March 14, 2024 10:00:00 AM".
	HeaderLayout = "Monday, January 2, 2006 3:04:05 PM"

	// LineLayout renders the short local time of a zone line, e.g. "10:00 AM".
	LineLayout = "3:04 PM"

	// DefaultTitle follows the header timestamp.
	DefaultTitle = "Space Observation System"

	// DefaultFooter is the observatory link closing every caption.
	DefaultFooter = "http://sosrff.tsu.ru"

	// Placeholder stands in for the time of a zone that failed to resolve.
	Placeholder = "--:--"
)

// SectionMarkers label the four images of a batch, in media order.
var SectionMarkers = []string{
	"🌌 A Resonances",
	"〽️ B Frequencies",
	"🔉 C Amplitudes",
	"❓ D Q-factors",
}

// ConversionPolicy decides how a failed zone conversion is rendered.
type ConversionPolicy int

const (
	// PolicyPlaceholder keeps the line and prints Placeholder instead of a time.
	PolicyPlaceholder ConversionPolicy = iota

	// PolicySkip drops the line of the failed zone only.
	PolicySkip
)

// String returns the configuration name of the policy.
func (p ConversionPolicy) String() string {
	switch p {
	case PolicyPlaceholder:
		return "placeholder"
	case PolicySkip:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseConversionPolicy maps a configuration value to a policy.
func ParseConversionPolicy(s string) (ConversionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "placeholder":
		return PolicyPlaceholder, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyPlaceholder, NewInvalidConfigError("schedule.on_zone_error", s, "must be one of: placeholder skip")
	}
}

// CaptionComposer renders the publish caption. The zero value is not usable; use NewCaptionComposer.
type CaptionComposer struct {
	title  string
	footer string
	policy ConversionPolicy
}

// CaptionOption customizes a CaptionComposer.
type CaptionOption func(*CaptionComposer)

// WithTitle overrides the header title.
func WithTitle(title string) CaptionOption {
	return func(c *CaptionComposer) { c.title = title }
}

// WithFooter overrides the closing link. An empty footer removes the footer block.
func WithFooter(footer string) CaptionOption {
	return func(c *CaptionComposer) { c.footer = footer }
}

// WithPolicy selects how failed conversions are rendered.
func WithPolicy(p ConversionPolicy) CaptionOption {
	return func(c *CaptionComposer) { c.policy = p }
}

// NewCaptionComposer creates a composer with the default title, footer and placeholder policy.
func NewCaptionComposer(opts ...CaptionOption) *CaptionComposer {
	c := &CaptionComposer{
		title:  DefaultTitle,
		footer: DefaultFooter,
		policy: PolicyPlaceholder,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Policy returns the configured conversion policy.
func (c *CaptionComposer) Policy() ConversionPolicy {
	return c.policy
}

// Compose builds the caption. Zone lines follow the order of conversions exactly.
func (c *CaptionComposer) Compose(reference time.Time, conversions []ZoneConversion, quote string) string {
	var b strings.Builder

	b.WriteString(reference.Format(HeaderLayout))
	b.WriteString(" - ")
	b.WriteString(c.title)
	b.WriteString("\n\n")

	b.WriteString("🌜 ")
	b.WriteString(strings.TrimSpace(quote))
	b.WriteString("\n\n")

	for _, marker := range SectionMarkers {
		b.WriteString(marker)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')

	for _, conv := range conversions {
		line, ok := c.zoneLine(conv)
		if !ok {
			continue
		}

		b.WriteString(line)
		b.WriteByte('\n')
	}

	if c.footer != "" {
		b.WriteByte('\n')
		b.WriteString(c.footer)
	}

	return strings.TrimRight(b.String(), "\n")
}

// zoneLine renders "<flag> <time> <label> <offset>". The bool is false when the line is skipped.
func (c *CaptionComposer) zoneLine(conv ZoneConversion) (string, bool) {
	parts := make([]string, 0, 4)
	if conv.Zone.Flag != "" {
		parts = append(parts, conv.Zone.Flag)
	}

	if !conv.OK() {
		if c.policy == PolicySkip {
			return "", false
		}

		parts = append(parts, Placeholder, conv.Zone.Label)

		return strings.Join(parts, " "), true
	}

	parts = append(parts, conv.Local.Format(LineLayout), conv.Zone.Label, OffsetLabel(conv.Local))

	return strings.Join(parts, " "), true
}
