// Command atlasdump bakes a font into a glyph atlas without a GPU and writes
// the atlas surface as a PNG, printing where each glyph landed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"text/tabwriter"

	"tetris/internal/config"
	"tetris/internal/graphics"
	"tetris/internal/graphics/atlas"
	"tetris/internal/logging"
)

func main() {
	fontPath := flag.String("font", "", "TrueType/OpenType font (default Go Regular)")
	out := flag.String("o", "atlas.png", "output PNG path")
	size := flag.Int("size", config.GetAtlas().InitialSize, "atlas edge in pixels")
	pointSize := flag.Float64("pointsize", config.GetAtlas().PointSize, "glyph rasterization size")
	charset := flag.String("charset", "", "characters to bake (default built-in set)")
	logLevel := flag.String("loglevel", "warn", "log level: debug, info, warn, error")
	logDir := flag.String("logdir", os.TempDir(), "log directory")
	flag.Parse()

	config.SetAtlasSize(*size, config.GetAtlas().MaxSize)
	config.SetPointSize(*pointSize)
	config.SetCharset(*charset)

	lg, closeLog, err := logging.New(*logLevel, *logDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(*fontPath, *out, lg); err != nil {
		lg.Error("atlasdump", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(fontPath, out string, lg *slog.Logger) error {
	cfg := config.GetAtlas()
	a, err := atlas.New(image.Pt(cfg.InitialSize, cfg.InitialSize),
		atlas.WithCharset(cfg.Charset),
		atlas.WithPointSize(cfg.PointSize),
		atlas.WithFontParser(graphics.ParseFont),
		atlas.WithLogger(lg))
	if err != nil {
		return err
	}
	defer a.Close()
	data, err := graphics.ReadFont(fontPath)
	if err != nil {
		return err
	}
	for {
		err := a.LoadFont("font", data)
		if err == nil {
			break
		}
		next := a.Size().Mul(2)
		if !errors.Is(err, atlas.ErrGlyphDoesNotFit) || next.X > cfg.MaxSize {
			return fmt.Errorf("bake %d glyphs at %gpt: %w", len([]rune(cfg.Charset)), cfg.PointSize, err)
		}
		if err := a.Grow(next); err != nil {
			return err
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, a.Surface().Image()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return writeTable(os.Stdout, a, cfg.Charset)
}

func writeTable(w *os.File, a *atlas.Atlas, charset string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "char\tx\ty\tw\th\tadvance\tbearing\t")
	for _, c := range charset {
		g, err := a.Glyph("font", c)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%q\t%d\t%d\t%d\t%d\t%d\t%d,%d\t\n",
			c, g.AtlasX, g.AtlasY, g.Width, g.Height, g.AdvanceX, g.BearingX, g.BearingY)
	}
	return tw.Flush()
}
