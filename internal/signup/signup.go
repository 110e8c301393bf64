// Package signup validates and sanitizes registration form submissions.
//
// A submission passes through a fixed list of stages: structural validation
// of the raw values, markup sanitization of every field, a check that stops
// processing when validation failed, and finally the per-field clean-up that
// produces the values to store. Sanitization runs even for invalid input so
// the values echoed back into the form are never live markup.
package signup

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldComment = "comment"

	MaxNameLength    = 128
	MaxCommentLength = 400
)

var phoneRegex = regexp.MustCompile(`^[0-9]{3}-?[0-9]{4}$`)

// Submission holds the three form fields.
type Submission struct {
	Name    string
	Phone   string
	Comment string
}

type FieldError struct {
	Field   string
	Message string
}

// Result is the outcome of Process. Form carries the values to redisplay;
// Registration carries the values to persist and is only set when Valid.
type Result struct {
	Form         Submission
	Registration Submission
	Errors       []FieldError
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Messages returns the error messages in the order they were raised.
func (r Result) Messages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return msgs
}

// HasError reports whether field failed any rule.
func (r Result) HasError(field string) bool {
	for _, e := range r.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

type rule struct {
	field   string
	message string
	ok      func(Submission) bool
}

var rules = []rule{
	{FieldName, "Name must not be empty", func(s Submission) bool {
		return s.Name != ""
	}},
	{FieldName, "Name may be at most 128 characters", func(s Submission) bool {
		return utf8.RuneCountInString(s.Name) <= MaxNameLength
	}},
	{FieldPhone, "Phone number must not be empty", func(s Submission) bool {
		return s.Phone != ""
	}},
	{FieldPhone, "Phone number must be of the form 000-0000 or 0000000", func(s Submission) bool {
		return phoneRegex.MatchString(s.Phone)
	}},
	{FieldComment, "Comment may be at most 400 characters", func(s Submission) bool {
		return utf8.RuneCountInString(s.Comment) <= MaxCommentLength
	}},
}

// state is threaded through the stages. Stages return false to stop.
type state struct {
	values Submission
	result Result
}

type stage struct {
	name string
	run  func(*state) bool
}

// Stage order is significant; see the package comment.
var stages = []stage{
	{"validate", validate},
	{"strip-markup", stripMarkup},
	{"check", check},
	{"clean", clean},
}

// StageNames lists the pipeline stages in execution order.
func StageNames() []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

// Process runs in through every stage and returns the structured outcome.
func Process(in Submission) Result {
	st := &state{values: in}
	for _, s := range stages {
		if !s.run(st) {
			break
		}
	}
	return st.result
}

func validate(st *state) bool {
	for _, r := range rules {
		if !r.ok(st.values) {
			st.result.Errors = append(st.result.Errors, FieldError{Field: r.field, Message: r.message})
		}
	}
	return true
}

// markupPolicy keeps inline formatting and drops everything else, including
// images and links. Script and style contents are dropped with their tags.
var markupPolicy = newMarkupPolicy()

func newMarkupPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong", "u", "s", "br", "p", "ul", "ol", "li", "code", "pre", "blockquote")
	return p
}

// The sanitizer decodes entities in text and re-encodes them. Escaping
// ampersands first means the decode in clean undoes only what the sanitizer
// added and entities typed into the name survive as text.
var ampEscaper = strings.NewReplacer("&", "&amp;")

func stripMarkup(st *state) bool {
	st.values = Submission{
		Name:    markupPolicy.Sanitize(ampEscaper.Replace(st.values.Name)),
		Phone:   markupPolicy.Sanitize(st.values.Phone),
		Comment: markupPolicy.Sanitize(st.values.Comment),
	}
	st.result.Form = st.values
	return true
}

func check(st *state) bool {
	return st.result.Valid()
}

// clean decodes the entities the markup sanitizer produced before escaping
// the name, so stored names are escaped exactly once. A name that was only
// markup or whitespace is rejected here, after sanitization.
func clean(st *state) bool {
	name := strings.TrimSpace(html.UnescapeString(st.values.Name))
	if name == "" {
		st.result.Errors = append(st.result.Errors, FieldError{Field: FieldName, Message: "Name must not be empty"})
		return false
	}
	st.values.Name = EscapeText(name)
	st.values.Phone = strings.ReplaceAll(st.values.Phone, "-", "")
	st.result.Registration = st.values
	return true
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// EscapeText replaces every character with meaning in HTML markup or
// attribute values by its entity.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}
