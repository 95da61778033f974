// Command screensinkdemo exercises the tile cache against a synthetic
// Mandelbrot producer and writes the resulting image and coverage mask
// to PNG files.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"os"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/screensink"
	"github.com/gogpu/screensink/resultcache"
)

// config holds the demo's command-line parameters, split out from main so
// argument parsing can be tested without running the whole demo.
type config struct {
	width, height int
	tileSize      int
	maxTiles      int
	async         bool
	output        string
	maskPath      string
}

func parseConfig(args []string) (config, error) {
	fs := flag.NewFlagSet("screensinkdemo", flag.ContinueOnError)
	cfg := config{}
	fs.IntVar(&cfg.width, "width", 800, "image width")
	fs.IntVar(&cfg.height, "height", 600, "image height")
	fs.IntVar(&cfg.tileSize, "tile-size", 64, "tile width and height")
	fs.IntVar(&cfg.maxTiles, "max-tiles", 256, "maximum cached tiles (-1 for unlimited)")
	fs.BoolVar(&cfg.async, "async", true, "queue tiles to the background dispatcher instead of painting inline")
	fs.StringVar(&cfg.output, "output", "demo.png", "output image path")
	fs.StringVar(&cfg.maskPath, "mask", "demo-mask.png", "coverage mask output path")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("screensinkdemo: %v", err)
	}

	var producer screensink.Producer = &mandelbrotProducer{width: cfg.width, height: cfg.height}
	producer = resultcache.Wrap(producer, 4096, nil)

	out := &demoOutput{}
	mask := &demoOutput{}

	var notify screensink.NotifyFunc
	var queue *screensink.NotifyQueue
	if cfg.async {
		queue = screensink.NewNotifyQueue()
		notify = queue.Notify
	}

	if _, err := screensink.NewSinkScreen(producer, out, mask, cfg.tileSize, cfg.tileSize, cfg.maxTiles, 0, notify, nil); err != nil {
		log.Fatalf("screensinkdemo: NewSinkScreen: %v", err)
	}

	full := screensink.Rect{Left: 0, Top: 0, Width: cfg.width, Height: cfg.height}
	outBuf := screensink.NewPixelBuffer(screensink.RGBA8, 0, 0, cfg.width, cfg.height)
	maskBuf := screensink.NewPixelBuffer(screensink.Gray8, 0, 0, cfg.width, cfg.height)

	for attempt := 0; attempt < 64; attempt++ {
		if err := out.Fill(&screensink.Region{Valid: full, Buf: outBuf}); err != nil {
			log.Fatalf("screensinkdemo: fill: %v", err)
		}
		if err := mask.Fill(&screensink.Region{Valid: full, Buf: maskBuf}); err != nil {
			log.Fatalf("screensinkdemo: mask fill: %v", err)
		}

		if !cfg.async {
			break
		}
		events := queue.Drain()
		if fullyPainted(maskBuf) {
			log.Printf("screensinkdemo: converged after %d polls, %d notify events on last poll", attempt+1, len(events))
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := savePNG(cfg.output, imageFromRGBA(outBuf)); err != nil {
		log.Fatalf("screensinkdemo: save output: %v", err)
	}
	if err := savePNG(cfg.maskPath, imageFromGray(maskBuf)); err != nil {
		log.Fatalf("screensinkdemo: save mask: %v", err)
	}

	out.Close()
	mask.Close()

	log.Printf("screensinkdemo: wrote %s and %s (%dx%d, tile %d, max_tiles %d)\n",
		cfg.output, cfg.maskPath, cfg.width, cfg.height, cfg.tileSize, cfg.maxTiles)
}

// fullyPainted reports whether every byte of a coverage mask buffer is
// 0xFF, meaning the whole requested area has been painted at least once.
func fullyPainted(maskBuf *screensink.PixelBuffer) bool {
	for _, b := range maskBuf.Pix() {
		if b != 0xFF {
			return false
		}
	}
	return true
}

func imageFromRGBA(buf *screensink.PixelBuffer) image.Image {
	return screensink.RGBAView(buf)
}

// imageFromGray builds an image.Gray view over a Gray8 mask buffer
// without copying. draw.Draw below is used to widen it for inspection
// tools that prefer RGBA.
func imageFromGray(buf *screensink.PixelBuffer) image.Image {
	area := buf.Area()
	gray := &image.Gray{
		Pix:    buf.Pix(),
		Stride: buf.Stride(),
		Rect:   image.Rect(area.Left, area.Top, area.Right(), area.Bottom()),
	}
	rgba := image.NewRGBA(gray.Rect)
	draw.Draw(rgba, rgba.Bounds(), gray, image.Point{}, draw.Src)
	return rgba
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// demoOutput is a minimal screensink.Output: it records the filler the
// Render registers and calls it on demand, with no concurrency of its
// own beyond what the caller provides.
type demoOutput struct {
	desc    screensink.Descriptor
	filler  screensink.FillFunc
	closers []func()
}

func (d *demoOutput) SetDescriptor(desc screensink.Descriptor) { d.desc = desc }
func (d *demoOutput) RegisterFiller(fn screensink.FillFunc)    { d.filler = fn }
func (d *demoOutput) OnClose(fn func())                        { d.closers = append(d.closers, fn) }

func (d *demoOutput) Fill(region *screensink.Region) error {
	return d.filler(region)
}

func (d *demoOutput) Close() {
	for _, fn := range d.closers {
		fn()
	}
}

// mandelbrotProducer computes the classic escape-time fractal, chosen as
// a demo workload because it is deterministic, has no external
// dependencies, and is expensive enough per-pixel to make tile caching
// visibly worthwhile.
type mandelbrotProducer struct {
	width, height int
}

func (p *mandelbrotProducer) Describe() screensink.Descriptor {
	return screensink.Descriptor{Width: p.width, Height: p.height, Format: screensink.RGBA8}
}

func (p *mandelbrotProducer) Compute(buf *screensink.PixelBuffer, area screensink.Rect) error {
	pix := buf.Pix()
	for y := 0; y < area.Height; y++ {
		py := area.Top + y
		for x := 0; x < area.Width; x++ {
			px := area.Left + x
			r, g, b := mandelbrotColor(px, py, p.width, p.height)
			off := buf.RowAddr(px, py)
			pix[off+0] = r
			pix[off+1] = g
			pix[off+2] = b
			pix[off+3] = 255
		}
	}
	return nil
}

func mandelbrotColor(px, py, width, height int) (byte, byte, byte) {
	x0 := (float64(px)/float64(width))*3.5 - 2.5
	y0 := (float64(py)/float64(height))*2.0 - 1.0

	var x, y float64
	const maxIter = 100
	iter := 0
	for x*x+y*y <= 4 && iter < maxIter {
		xTemp := x*x - y*y + x0
		y = 2*x*y + y0
		x = xTemp
		iter++
	}

	if iter == maxIter {
		return 0, 0, 0
	}
	t := float64(iter) / float64(maxIter)
	r := byte(9 * (1 - t) * t * t * t * 255)
	g := byte(15 * (1 - t) * (1 - t) * t * t * 255)
	b := byte(8.5 * (1 - t) * (1 - t) * (1 - t) * t * 255)
	return r, g, b
}
