// Package chat implements the FAQ assistant: an ordered list of keyword rules
// mapped to canned answers, with a random fallback pool.
package chat

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cleanexit/cleanexit/internal/model"
)

// Topics reported alongside each reply.
const (
	TopicPricing     = "pricing"
	TopicCompliance  = "compliance"
	TopicMobile      = "mobile"
	TopicCloud       = "cloud"
	TopicEmergency   = "emergency"
	TopicCertificate = "certificate"
	TopicDefault     = "default"
)

// Rule maps any of its keywords to a response. Keywords are lower case and
// matched as substrings of the lower-cased message, or as whole words when
// WholeWord is set.
type Rule struct {
	Topic     string
	Keywords  []string
	Response  string
	WholeWord bool
}

// Matches reports whether the lower-cased message triggers the rule.
func (r Rule) Matches(lower string) bool {
	for _, kw := range r.Keywords {
		if r.WholeWord {
			if containsWord(lower, kw) {
				return true
			}
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether kw occurs in s with no letter or digit
// directly before or after it.
func containsWord(s, kw string) bool {
	if kw == "" {
		return false
	}
	for offset := 0; offset <= len(s)-len(kw); {
		i := strings.Index(s[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(kw)

		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(s) || !isWordRune(after)) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Reply is a responder answer together with the topic that produced it.
type Reply struct {
	Topic string
	Text  string
}

// Responder answers messages. It holds no per-conversation state and is safe
// for concurrent use.
type Responder struct {
	rules    []Rule
	defaults []string
	intn     func(n int) int
}

// Option configures a Responder.
type Option func(*Responder)

// WithRandom replaces the source used to pick default replies.
// intn must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(r *Responder) {
		r.intn = intn
	}
}

// WithPlans renders the pricing answer from the given catalog.
func WithPlans(plans []model.Plan) Option {
	return func(r *Responder) {
		if len(plans) == 0 {
			return
		}
		for i := range r.rules {
			if r.rules[i].Topic == TopicPricing {
				r.rules[i].Response = PricingResponse(plans)
			}
		}
	}
}

// New returns a Responder with the built-in rule set.
func New(opts ...Option) *Responder {
	r := &Responder{
		rules:    Rules(),
		defaults: DefaultResponses(),
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond returns the answer text for message.
func (r *Responder) Respond(message string) string {
	return r.Reply(message).Text
}

// Reply returns the first matching rule's answer, or a random default.
// Rules are evaluated in declaration order.
func (r *Responder) Reply(message string) Reply {
	lower := strings.ToLower(message)
	for _, rule := range r.rules {
		if rule.Matches(lower) {
			return Reply{Topic: rule.Topic, Text: rule.Response}
		}
	}
	return Reply{Topic: TopicDefault, Text: r.defaults[r.intn(len(r.defaults))]}
}

var planTaglines = map[string]string{
	model.PlanStarter:  "perfect for individuals",
	model.PlanPro:      "great for businesses",
	model.PlanAdvanced: "enterprise solution",
}

var numberWords = []string{"zero", "one", "two", "three", "four", "five", "six"}

// PricingResponse describes the plan catalog in one message.
func PricingResponse(plans []model.Plan) string {
	items := make([]string, 0, len(plans))
	for _, p := range plans {
		price := fmt.Sprintf("₹%d", p.Price)
		if p.Price > 0 {
			price += "/month"
		}
		if tag, ok := planTaglines[p.Name]; ok {
			price += " - " + tag
		}
		items = append(items, fmt.Sprintf("%s (%s)", p.Name, price))
	}

	count := fmt.Sprint(len(plans))
	if len(plans) < len(numberWords) {
		count = numberWords[len(plans)]
	}

	return fmt.Sprintf("We offer %s subscription plans: %s. Each plan includes different device limits and features. "+
		"Would you like me to explain the differences between these plans?", count, joinList(items))
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
