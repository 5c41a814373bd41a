package page

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"htmlbox/pkg/config"
	"htmlbox/pkg/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	page := `<html><head><link rel="stylesheet" href="style.css"></head>
<body style="margin: 0">
<div id="box"></div>
<img id="pic" src="pic.png">
<script>document.getElementById("box").style.height = "30px";</script>
</body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"),
		[]byte("#box { background-color: #ff0000; width: 50px; height: 10px }"), 0o644))

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for x := 0; x < 20; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "pic.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return filepath.Join(dir, "index.html")
}

func countPixels(c *render.Canvas, want color.RGBA) int {
	n := 0
	for x := 0; x < c.Width(); x++ {
		for y := 0; y < c.Height(); y++ {
			if c.Pixel(x, y) == want {
				n++
			}
		}
	}
	return n
}

func newRenderer() *Renderer {
	cfg := config.NewDefaultConfig()
	cfg.Images.Workers = 2
	return NewRenderer(*cfg, nil)
}

func TestOpenAndRender(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := newRenderer().Open(ctx, writeFixture(t))
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()

	c, err := p.Render(ctx, 200, 0)
	require.NoError(t, err)
	assert.Equal(t, 200, c.Width())
	assert.GreaterOrEqual(t, c.Height(), 40)

	red := color.RGBA{R: 255, A: 255}
	assert.Equal(t, red, c.Pixel(10, 25), "linked sheet colours the box and the script stretched it")
	assert.Equal(t, 50*30, countPixels(c, red))

	pic := p.Doc.ElementByID("pic")
	require.NotNil(t, pic)
	complete, failed := pic.ImageLoaded()
	assert.True(t, complete)
	assert.False(t, failed)
	assert.Equal(t, 20*10, countPixels(c, color.RGBA{B: 255, A: 255}))
}

func TestRenderFixedViewport(t *testing.T) {
	ctx := context.Background()
	p, err := newRenderer().Parse(ctx, `<body style="margin:0; padding:1px; background-color: lime"><p>hi</p></body>`, t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()

	c, err := p.Render(ctx, 120, 80)
	require.NoError(t, err)
	assert.Equal(t, 80, c.Height())
	assert.Equal(t, color.RGBA{G: 255, A: 255}, c.Pixel(1, 1))
}

func TestMissingImageStillRenders(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := newRenderer().Parse(ctx, `<img id="i" src="missing.png">`, t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()

	_, err = p.Render(ctx, 100, 100)
	require.NoError(t, err)
	complete, failed := p.Doc.ElementByID("i").ImageLoaded()
	assert.True(t, complete)
	assert.True(t, failed)
}

func TestScriptsDisabled(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Script.Enabled = false
	p, err := NewRenderer(*cfg, nil).Parse(context.Background(),
		`<p id="p">a</p><script>document.getElementById("p").textContent = "b"</script>`, "")
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()

	assert.Equal(t, "a", p.Doc.ElementByID("p").Children()[0].Text())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := newRenderer().Open(context.Background(), filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}
