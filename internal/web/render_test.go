package web

import (
	"bytes"
	"html"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func render(t *testing.T, p Page) string {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, p))
	return buf.String()
}

func TestRender_EmptyForm(t *testing.T) {
	out := render(t, Page{})
	require.Contains(t, out, `<form action="ask" method="post">`)
	require.Contains(t, out, `name="question"`)
	require.NotContains(t, out, `class="answer"`)
	require.NotContains(t, out, `class="error"`)
}

// The form action is relative so a page served under an API Gateway stage
// posts back under the same stage.
func TestRender_FormActionKeepsPathPrefix(t *testing.T) {
	out := render(t, Page{})
	m := regexp.MustCompile(`<form action="([^"]*)"`).FindStringSubmatch(out)
	require.Len(t, m, 2)

	cases := []struct{ page, want string }{
		{"https://example.com/", "/ask"},
		{"https://example.com/ask", "/ask"},
		{"https://abc.execute-api.example.com/prod/", "/prod/ask"},
		{"https://abc.execute-api.example.com/prod/ask", "/prod/ask"},
	}
	for _, tc := range cases {
		base, err := url.Parse(tc.page)
		require.NoError(t, err)
		action, err := url.Parse(m[1])
		require.NoError(t, err)
		require.Equal(t, tc.want, base.ResolveReference(action).Path, "page=%s", tc.page)
	}
}

func TestRender_QuestionAndAnswer(t *testing.T) {
	out := render(t, Page{Question: "2+2?", Answer: "4"})
	unescaped := html.UnescapeString(out)
	require.Contains(t, unescaped, `<p class="question">2+2?</p>`)
	require.Contains(t, unescaped, `<p class="answer">4</p>`)
	require.Contains(t, unescaped, `name="question" required>2+2?</textarea>`)
}

func TestRender_Error(t *testing.T) {
	out := render(t, Page{Question: "2+2?", Error: "The answer service could not be reached."})
	require.Contains(t, out, `The answer service could not be reached.`)
	require.NotContains(t, out, `class="answer"`)
}

func TestRender_EscapesUserInput(t *testing.T) {
	out := render(t, Page{Question: `<script>alert(1)</script>`, Answer: `<b>bold</b>`})
	require.NotContains(t, out, `<script>alert(1)</script>`)
	require.NotContains(t, out, `<b>bold</b>`)
	require.Contains(t, out, `&lt;script&gt;`)
}
