package main

import (
	"flag"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"tetris/internal/config"
	"tetris/internal/graphics"
	"tetris/internal/graphics/backend/glbackend"
	"tetris/internal/graphics/renderer"
	"tetris/internal/input"
	"tetris/internal/logging"
	"tetris/internal/profiling"
)

const uiFont = "ui"

func init() {
	runtime.LockOSThread()
}

func main() {
	width := flag.Int("width", config.GetRender().WindowWidth, "window width in pixels")
	height := flag.Int("height", config.GetRender().WindowHeight, "window height in pixels")
	shaderPath := flag.String("shader", "", "shader file with a \"# frag\" line between the stages (default built-in)")
	fontPath := flag.String("font", "", "TrueType/OpenType font for text (default Go Regular)")
	atlasSize := flag.Int("atlas", config.GetAtlas().InitialSize, "initial glyph atlas edge in pixels")
	pointSize := flag.Float64("pointsize", config.GetAtlas().PointSize, "glyph rasterization size")
	logLevel := flag.String("loglevel", "info", "log level: debug, info, warn, error")
	logDir := flag.String("logdir", "", "log directory (default user config dir)")
	glDebug := flag.Bool("gldebug", false, "check glGetError after GL calls")
	fps := flag.Int("fps", 0, "frame rate cap, 0 for vsync only")
	imageCache := flag.Int("imagecache", config.GetRender().ImageCacheSize, "decoded images kept in memory")
	flag.Parse()

	config.SetWindowSize(*width, *height)
	config.SetShaderPath(*shaderPath)
	config.SetAtlasSize(*atlasSize, config.GetAtlas().MaxSize)
	config.SetPointSize(*pointSize)
	config.SetFPSLimit(*fps)
	config.SetImageCacheSize(*imageCache)

	lg, closeLog, err := logging.New(*logLevel, *logDir)
	if err != nil {
		panic(err)
	}
	defer closeLog()

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		panic(err)
	}

	gb := glbackend.New(lg)
	gb.Debug = *glDebug
	r, err := renderer.New(gb, renderer.WithLogger(lg))
	if err != nil {
		panic(err)
	}
	if err := r.Setup(); err != nil {
		lg.Error("renderer setup", slog.Any("error", err))
		panic(err)
	}
	defer r.Destroy()

	fontData, err := graphics.ReadFont(*fontPath)
	if err != nil {
		panic(err)
	}
	if err := r.LoadFont(uiFont, fontData); err != nil {
		panic(err)
	}

	// The framebuffer can differ from the window size on high-DPI displays.
	fbw, fbh := window.GetFramebufferSize()
	r.SetViewport(fbw, fbh)
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.SetViewport(width, height)
	})

	g := newGame(time.Now().UnixNano())
	im := input.NewInputManager()
	im.SetKeyCallback(window)
	runGameLoop(window, r, g, im, lg)
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	s := config.GetRender()
	window, err := glfw.CreateWindow(s.WindowWidth, s.WindowHeight, "tetris", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}
	glfw.SwapInterval(1)
	return window, nil
}

func applyInput(window *glfw.Window, im *input.InputManager, g *game) {
	for range im.Drain(input.ActionMoveLeft) {
		g.move(-1, 0)
	}
	for range im.Drain(input.ActionMoveRight) {
		g.move(1, 0)
	}
	for range im.Drain(input.ActionSoftDrop) {
		g.move(0, 1)
	}
	for range im.Drain(input.ActionRotate) {
		g.rotate()
	}
	if im.Drain(input.ActionHardDrop) > 0 {
		g.drop()
	}
	if im.Drain(input.ActionRestart) > 0 {
		g.reset()
	}
	if im.Drain(input.ActionQuit) > 0 {
		window.SetShouldClose(true)
	}
}

func runGameLoop(window *glfw.Window, r *renderer.BatchRenderer, g *game, im *input.InputManager, lg *slog.Logger) {
	limiter := NewFPSLimiter()
	lastTick := time.Now()
	lastReport := time.Now()
	frames := 0

	for !window.ShouldClose() {
		profiling.ResetFrame()
		applyInput(window, im, g)
		if time.Since(lastTick) >= g.interval() {
			g.step()
			lastTick = time.Now()
		}

		drawGame(r, g)
		r.Draw()
		frames++

		func() { defer profiling.Track("glfw.SwapBuffers")(); window.SwapBuffers() }()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		limiter.Wait()

		if time.Since(lastReport) >= 5*time.Second {
			lg.Info("frame stats", slog.Int("frames", frames), slog.String("top", profiling.TopN(3)),
				slog.Any("counters", profiling.Counters()))
			frames = 0
			lastReport = time.Now()
		}
	}
}

const (
	cellSize = 18
	boardX   = 20
	boardY   = 20
)

var pieceColors = [...]mgl32.Vec4{
	{0.2, 0.2, 0.25, 1},
	{0.0, 0.9, 0.9, 1},
	{0.9, 0.9, 0.0, 1},
	{0.7, 0.0, 0.9, 1},
	{0.0, 0.9, 0.0, 1},
	{0.9, 0.0, 0.0, 1},
	{0.0, 0.3, 0.9, 1},
	{0.9, 0.5, 0.0, 1},
}

func drawGame(r *renderer.BatchRenderer, g *game) {
	r.SetFill(mgl32.Vec4{0.15, 0.15, 0.18, 1})
	r.Rect(boardX-2, boardY-2, boardWidth*cellSize+4, boardHeight*cellSize+4)

	for y := 0; y < boardHeight; y++ {
		for x := 0; x < boardWidth; x++ {
			r.SetFill(pieceColors[g.board[y][x]])
			r.Rect(boardX+float32(x*cellSize), boardY+float32(y*cellSize), cellSize-1, cellSize-1)
		}
	}
	r.SetFill(pieceColors[g.current.kind])
	for _, c := range g.current.cells() {
		if c.Y < 0 {
			continue
		}
		r.Rect(boardX+float32(c.X*cellSize), boardY+float32(c.Y*cellSize), cellSize-1, cellSize-1)
	}

	r.SetFill(mgl32.Vec4{1, 1, 1, 1})
	textX := float32(boardX + boardWidth*cellSize + 24)
	status := fmt.Sprintf("score %d\nlines %d", g.score, g.lines)
	if g.over {
		status += "\ngame over\nR to restart"
	}
	if err := r.Text(uiFont, status, textX, boardY+48); err != nil {
		panic(err)
	}
}
