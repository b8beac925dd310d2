package document

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/annotator"
)

const page = `<!DOCTYPE html>
<html><head><title> Deals </title></head>
<body>
<p id="p" onclick="steal()">Headphones for $100 today</p>
<script>track("$5")</script>
</body></html>`

func annotate(t *testing.T, src string, mode models.PresentationMode) string {
	t.Helper()
	root, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	annotator.New(annotator.Options{
		Mode:   mode,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).Scan(root)
	md, err := Markdown(root, "")
	require.NoError(t, err)
	return md
}

func TestParseAndRender(t *testing.T) {
	root, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Deals", Title(root))

	out, err := RenderString(root)
	require.NoError(t, err)
	assert.Contains(t, out, `<p id="p" onclick="steal()">Headphones for $100 today</p>`)
}

func TestLoad_Sanitize(t *testing.T) {
	root, err := Load(strings.NewReader(page), LoadOptions{Sanitize: true})
	require.NoError(t, err)

	doc := goquery.NewDocumentFromNode(root)
	assert.Equal(t, 0, doc.Find("script").Length())
	p := doc.Find("#p")
	require.Equal(t, 1, p.Length())
	_, hasHandler := p.Attr("onclick")
	assert.False(t, hasHandler)
	assert.Equal(t, "Headphones for $100 today", p.Text())
	// Head and body are rebuilt by the parser
	assert.Equal(t, 1, doc.Find("head").Length())
}

func TestSanitize_KeepsAnnotationMarkup(t *testing.T) {
	out := Sanitize(`<span class="timecost-badge" data-timecost-price="$5">1h0m</span>`)
	assert.Contains(t, out, `class="timecost-badge"`)
	assert.Contains(t, out, `data-timecost-price="$5"`)
}

func TestLoad_Readable(t *testing.T) {
	var body strings.Builder
	body.WriteString(`<html><head><title>Review: the best kettle</title></head><body>`)
	body.WriteString(`<nav><a href="/">Home</a> <a href="/deals">Deals</a></nav><article><h1>The best kettle</h1>`)
	for i := 0; i < 6; i++ {
		body.WriteString(`<p>This kettle boils a litre of water in under three minutes, keeps it warm for an hour, `)
		body.WriteString(`and at $45 it costs less than most of its competitors in this category of appliances.</p>`)
	}
	body.WriteString(`</article><footer>Copyright</footer></body></html>`)

	root, err := Load(strings.NewReader(body.String()), LoadOptions{Readable: true, URL: "https://shop.test/kettle"})
	require.NoError(t, err)

	doc := goquery.NewDocumentFromNode(root)
	assert.NotEmpty(t, Title(root))
	assert.Contains(t, doc.Find("body").Text(), "at $45 it costs")
	assert.NotContains(t, doc.Find("body").Text(), "Copyright")
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name string
		mode models.PresentationMode
		want string
		not  string
	}{
		{"default", models.ModeDefault, "Headphones for $100 (1d6h) today", ""},
		{"comfortable", models.ModeComfortable, "Headphones for $100 (1d6h) today", ""},
		{"compact", models.ModeCompact, "Headphones for 1d6h today", "$100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := annotate(t, page, tt.mode)
			assert.Contains(t, md, tt.want)
			assert.NotContains(t, md, "timecost")
			if tt.not != "" {
				assert.NotContains(t, md, tt.not)
			}
		})
	}
}

func TestMarkdown_DoesNotModifyInput(t *testing.T) {
	root, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	annotator.New(annotator.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}).Scan(root)
	before, err := RenderString(root)
	require.NoError(t, err)

	_, err = Markdown(root, "https://shop.test/")
	require.NoError(t, err)

	after, err := RenderString(root)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestClone(t *testing.T) {
	root, err := Parse(strings.NewReader(`<p class="a">x<b>y</b></p>`))
	require.NoError(t, err)
	c := Clone(root)

	want, _ := RenderString(root)
	got, _ := RenderString(c)
	assert.Equal(t, want, got)

	goquery.NewDocumentFromNode(c).Find("b").Remove()
	again, _ := RenderString(root)
	assert.Equal(t, want, again)
}
