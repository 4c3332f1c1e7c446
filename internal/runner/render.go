package runner

import (
	"fmt"
	"io"

	"github.com/IKKNIGHT/PureBlocks/internal/host"
	"github.com/IKKNIGHT/PureBlocks/internal/surface/pdfsurface"
	"github.com/IKKNIGHT/PureBlocks/internal/surface/raster"
	"github.com/IKKNIGHT/PureBlocks/internal/surface/record"
)

func canvasSize(d record.Drawing) (int, int, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return 0, 0, fmt.Errorf("drawing has no canvas size")
	}
	return d.Width, d.Height, nil
}

// WritePNG replays d onto a raster canvas and encodes it as PNG.
func WritePNG(w io.Writer, d record.Drawing, fontSize float64) error {
	width, height, err := canvasSize(d)
	if err != nil {
		return err
	}
	bg, err := host.ParseColor(d.Background)
	if err != nil {
		return fmt.Errorf("drawing background: %w", err)
	}
	cv := raster.New(width, height, bg, raster.WithFontSize(fontSize))
	if err := record.Replay(d.Commands, cv); err != nil {
		return err
	}
	return cv.WritePNG(w)
}

// WritePDF replays d onto a one-page PDF.
func WritePDF(w io.Writer, d record.Drawing, fontSize float64) error {
	width, height, err := canvasSize(d)
	if err != nil {
		return err
	}
	bg, err := host.ParseColor(d.Background)
	if err != nil {
		return fmt.Errorf("drawing background: %w", err)
	}
	doc := pdfsurface.New(width, height, bg, fontSize)
	if err := record.Replay(d.Commands, doc); err != nil {
		return err
	}
	return doc.Output(w)
}
