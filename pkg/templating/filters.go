package templating

import (
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/flosch/pongo2/v6"
	"github.com/ncruces/go-strftime"
)

// Default strftime patterns for the date and time filters. The filter
// registry is shared by every environment, so these defaults are
// process-wide: initFormats applies them once, from the first
// environment constructed, and later calls are no-ops.
var (
	dateFormat  = "%B %d, %Y"
	timeFormat  = "%H:%M"
	formatsOnce sync.Once
)

func initFormats(date, timeOfDay string) {
	formatsOnce.Do(func() {
		if date != "" {
			dateFormat = date
		}
		if timeOfDay != "" {
			timeFormat = timeOfDay
		}
	})
}

func init() {
	// These shadow pongo2's Django builtins with the semantics this
	// package documents (strftime formats, humanize-backed output).
	pongo2.ReplaceFilter("date", filterDate)
	pongo2.ReplaceFilter("default_if_none", filterDefaultIfNone)
	pongo2.ReplaceFilter("floatformat", filterFloatformat)
	pongo2.ReplaceFilter("linebreaks", filterLinebreaks)
	pongo2.ReplaceFilter("pluralize", filterPluralize)
	pongo2.ReplaceFilter("time", filterTime)
	pongo2.ReplaceFilter("truncatewords", filterTruncatewords)

	pongo2.RegisterFilter("intcomma", filterIntcomma)
	pongo2.RegisterFilter("timesince", filterTimesince)
	pongo2.RegisterFilter("timeuntil", filterTimeuntil)
}

// asTime unwraps a filter input into a time.Time.
func asTime(in *pongo2.Value) (time.Time, error) {
	switch t := in.Interface().(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		return *t, nil
	default:
		return time.Time{}, fmt.Errorf("expected a time.Time, got %T", in.Interface())
	}
}

// filterDate formats a time.Time with a strftime pattern, falling back
// to the environment's configured date format.
func filterDate(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, err := asTime(in)
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:date", OrigError: err}
	}
	format := dateFormat
	if !param.IsNil() {
		format = param.String()
	}
	return pongo2.AsValue(strftime.Format(format, t)), nil
}

// filterTime is filterDate with the configured time format as fallback.
func filterTime(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, err := asTime(in)
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:time", OrigError: err}
	}
	format := timeFormat
	if !param.IsNil() {
		format = param.String()
	}
	return pongo2.AsValue(strftime.Format(format, t)), nil
}

// filterDefaultIfNone substitutes the parameter only when the input is
// nil. False, zero and the empty string pass through unchanged.
func filterDefaultIfNone(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return param, nil
	}
	return in, nil
}

// filterFloatformat rounds a float to the requested number of decimal
// places. A negative parameter (the default is -1) keeps |d| places but
// drops the fraction entirely when the rounded value is integral, so
// 34.00001 renders as "34" while 34.23234 renders as "34.2".
func filterFloatformat(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	val := in.Float()

	places := -1
	if !param.IsNil() {
		places = param.Integer()
	}
	prec := places
	if prec < 0 {
		prec = -prec
	}

	out := strconv.FormatFloat(val, 'f', prec, 64)
	if places < 0 {
		if rounded, err := strconv.ParseFloat(out, 64); err == nil && rounded == math.Trunc(rounded) {
			out = strconv.FormatFloat(rounded, 'f', 0, 64)
		}
	}
	return pongo2.AsValue(out), nil
}

// filterIntcomma inserts thousands separators, e.g. 1234567 becomes
// "1,234,567". Floats keep their fraction.
func filterIntcomma(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch {
	case in.IsFloat():
		return pongo2.AsValue(humanize.Commaf(in.Float())), nil
	case in.IsNumber():
		return pongo2.AsValue(humanize.Comma(int64(in.Integer()))), nil
	default:
		return nil, &pongo2.Error{
			Sender:    "filter:intcomma",
			OrigError: fmt.Errorf("expected a number, got %T", in.Interface()),
		}
	}
}

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// filterLinebreaks converts plain text into HTML: blank lines start a
// new <p> paragraph, single newlines become <br>. The text is escaped
// first and the result is marked safe.
func filterLinebreaks(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	text := strings.ReplaceAll(in.String(), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = html.EscapeString(text)

	paragraphs := paragraphBreak.Split(text, -1)
	for i, p := range paragraphs {
		paragraphs[i] = "<p>" + strings.ReplaceAll(p, "\n", "<br>") + "</p>"
	}
	return pongo2.AsSafeValue(strings.Join(paragraphs, "\n\n")), nil
}

// filterPluralize returns a plural suffix based on its input count. The
// optional parameter is either the plural suffix ("es") or a
// "singular,plural" pair ("y,ies"); the default is ""/"s". Lists and
// other countables are measured by length.
func filterPluralize(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	singular, plural := "", "s"
	if !param.IsNil() {
		parts := strings.SplitN(param.String(), ",", 2)
		if len(parts) == 2 {
			singular, plural = parts[0], parts[1]
		} else {
			plural = parts[0]
		}
	}

	var count float64
	switch {
	case in.IsNumber():
		count = in.Float()
	case in.CanSlice():
		count = float64(in.Len())
	default:
		return nil, &pongo2.Error{
			Sender:    "filter:pluralize",
			OrigError: fmt.Errorf("expected a number or a countable, got %T", in.Interface()),
		}
	}

	if count == 1 {
		return pongo2.AsValue(singular), nil
	}
	return pongo2.AsValue(plural), nil
}

// filterTimesince renders how long ago a time was, as a bare magnitude
// like "2 hours".
func filterTimesince(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, err := asTime(in)
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:timesince", OrigError: err}
	}
	return pongo2.AsValue(strings.TrimSpace(humanize.RelTime(t, time.Now(), "", ""))), nil
}

// filterTimeuntil renders how far away a future time is, as a bare
// magnitude like "2 days".
func filterTimeuntil(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, err := asTime(in)
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:timeuntil", OrigError: err}
	}
	return pongo2.AsValue(strings.TrimSpace(humanize.RelTime(time.Now(), t, "", ""))), nil
}

// filterTruncatewords keeps the first N whitespace-separated words and
// appends " …" when anything was cut.
func filterTruncatewords(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if param.IsNil() {
		return nil, &pongo2.Error{
			Sender:    "filter:truncatewords",
			OrigError: errors.New("requires a word-count parameter"),
		}
	}
	n := param.Integer()
	if n <= 0 {
		return pongo2.AsValue(""), nil
	}

	words := strings.Fields(in.String())
	if len(words) <= n {
		return in, nil
	}
	return pongo2.AsValue(strings.Join(words[:n], " ") + " …"), nil
}
