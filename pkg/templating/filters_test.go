package templating

import (
	"strings"
	"testing"
	"time"
)

func TestDateTimeFilters(t *testing.T) {
	env := setupTestEnv(t)
	ts := time.Date(2009, time.November, 10, 23, 4, 5, 0, time.UTC)
	ctx := Context{"t": ts, "tp": &ts}

	assertRender(t, env, `{{ t|date:"%Y-%m-%d" }}`, "2009-11-10", ctx)
	assertRender(t, env, `{{ t|date }}`, "November 10, 2009", ctx)
	assertRender(t, env, `{{ t|time }}`, "23:04", ctx)
	assertRender(t, env, `{{ t|time:"%H:%M:%S" }}`, "23:04:05", ctx)

	// Pointer input unwraps to the same result.
	assertRender(t, env, `{{ tp|date:"%Y" }}`, "2009", ctx)

	if _, err := env.RenderString(`{{ "notatime"|date }}`, nil); err == nil {
		t.Error("expected an error for a non-time input to date")
	}
}

func TestFloatformatFilter(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"DefaultRounds", `{{ 34.23234|floatformat }}`, "34.2"},
		{"DefaultDropsZeroFraction", `{{ 34.00001|floatformat }}`, "34"},
		{"FixedPlaces", `{{ 34.26|floatformat:3 }}`, "34.260"},
		{"NegativeKeepsFraction", `{{ 34.26|floatformat:"-3" }}`, "34.260"},
		{"NegativeDropsFraction", `{{ 34.0|floatformat:"-3" }}`, "34"},
		{"ZeroPlaces", `{{ 34.6|floatformat:0 }}`, "35"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertRender(t, env, tc.src, tc.want, nil)
		})
	}
}

func TestIntcommaFilter(t *testing.T) {
	env := setupTestEnv(t)

	assertRender(t, env, `{{ 1234567|intcomma }}`, "1,234,567", nil)
	assertRender(t, env, `{{ 999|intcomma }}`, "999", nil)
	assertRender(t, env, `{{ n|intcomma }}`, "-1,234,567", Context{"n": -1234567})
	assertRender(t, env, `{{ 1234567.89|intcomma }}`, "1,234,567.89", nil)

	if _, err := env.RenderString(`{{ "abc"|intcomma }}`, nil); err == nil {
		t.Error("expected an error for a non-numeric input to intcomma")
	}
}

func TestLinebreaksFilter(t *testing.T) {
	env := setupTestEnv(t)

	assertRender(t, env,
		`{{ s|linebreaks }}`,
		"<p>first</p>\n\n<p>second line<br>more</p>",
		Context{"s": "first\n\nsecond line\nmore"})

	// CRLF input normalizes, markup in the text is escaped exactly once.
	assertRender(t, env,
		`{{ s|linebreaks }}`,
		"<p>&lt;b&gt; &amp; &lt;/b&gt;<br>x</p>",
		Context{"s": "<b> & </b>\r\nx"})
}

func TestPluralizeFilter(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"ZeroPlural", `vote{{ 0|pluralize }}`, "votes"},
		{"OneSingular", `vote{{ 1|pluralize }}`, "vote"},
		{"CustomPlural", `bus{{ 2|pluralize:"es" }}`, "buses"},
		{"PairPlural", `cherr{{ 2|pluralize:"y,ies" }}`, "cherries"},
		{"PairSingular", `cherr{{ 1|pluralize:"y,ies" }}`, "cherry"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertRender(t, env, tc.src, tc.want, nil)
		})
	}

	assertRender(t, env, `item{{ items|pluralize }}`, "items", Context{"items": []string{"a", "b"}})

	if _, err := env.RenderString(`{{ t|pluralize }}`, Context{"t": time.Now()}); err == nil {
		t.Error("expected an error for an uncountable input")
	}
}

func TestDefaultIfNoneFilter(t *testing.T) {
	env := setupTestEnv(t)

	assertRender(t, env, `{{ x|default_if_none:"fallback" }}`, "fallback", Context{"x": nil})
	assertRender(t, env, `{{ 0|default_if_none:"fallback" }}`, "0", nil)
	assertRender(t, env, `{{ ""|default_if_none:"fallback" }}`, "", nil)
}

func TestHumanTimeFilters(t *testing.T) {
	env := setupTestEnv(t)

	past := time.Now().Add(-2*time.Hour - 2*time.Minute)
	assertRender(t, env, `{{ t|timesince }}`, "2 hours", Context{"t": past})

	future := time.Now().Add(49 * time.Hour)
	assertRender(t, env, `{{ t|timeuntil }}`, "2 days", Context{"t": future})
}

func TestTruncatewordsFilter(t *testing.T) {
	env := setupTestEnv(t)

	assertRender(t, env, `{{ "the quick brown fox"|truncatewords:2 }}`, "the quick …", nil)
	assertRender(t, env, `{{ "short"|truncatewords:10 }}`, "short", nil)

	if _, err := env.RenderString(`{{ "x"|truncatewords }}`, nil); err == nil {
		t.Error("expected an error when the word count is missing")
	}
}

func TestMarkdownFilter(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("RendersHTML", func(t *testing.T) {
		out := renderString(t, env, `{{ s|markdown }}`, Context{"s": "**hi**"})
		if !strings.Contains(out, "<strong>hi</strong>") {
			t.Errorf("markdown output missing strong tag: %q", out)
		}
	})

	t.Run("EscapesEntitiesOnce", func(t *testing.T) {
		out := renderString(t, env, `{{ s|markdown }}`, Context{"s": "Tom & Jerry"})
		if strings.Count(out, "&amp;") != 1 || strings.Contains(out, "&amp;amp;") {
			t.Errorf("expected a single &amp; in %q", out)
		}
	})

	t.Run("SafeInputNotDoubleEscaped", func(t *testing.T) {
		// A value already marked safe is unwrapped to plain text before
		// rendering, so its entities still appear exactly once.
		out := renderString(t, env, `{{ s|safe|markdown }}`, Context{"s": "Tom & Jerry"})
		if strings.Count(out, "&amp;") != 1 || strings.Contains(out, "&amp;amp;") {
			t.Errorf("expected a single &amp; in %q", out)
		}
	})

	t.Run("SanitizesRawHTML", func(t *testing.T) {
		out := renderString(t, env, `{{ s|markdown }}`, Context{"s": "<script>alert(1)</script> hi"})
		if strings.Contains(out, "<script") {
			t.Errorf("script tag survived sanitization: %q", out)
		}
	})
}

func TestMarkdownTag(t *testing.T) {
	env := setupTestEnv(t)

	out := renderString(t, env, `{% markdown %}# {{ title }}{% endmarkdown %}`, Context{"title": "Release notes"})
	if !strings.Contains(out, "<h1>Release notes</h1>") {
		t.Errorf("markdown tag output = %q", out)
	}

	if _, err := env.RenderString(`{% markdown %}# x`, nil); err == nil {
		t.Error("expected a parse error for a missing endmarkdown")
	}
}
