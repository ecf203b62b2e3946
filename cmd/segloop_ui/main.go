package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cbegin/segloop-go"
	"github.com/cbegin/segloop-go/internal/decode"
	"github.com/cbegin/segloop-go/internal/device"
	"github.com/cbegin/segloop-go/internal/pcm"
	"github.com/cbegin/segloop-go/internal/selection"
	"github.com/cbegin/segloop-go/internal/stage"
)

const (
	windowW    = 1280
	windowH    = 640
	minWindowW = 960
	minWindowH = 520

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale

	repeatMin = 1
	repeatMax = 20
)

var (
	bgColor     = color.RGBA{192, 192, 192, 255}
	panelColor  = color.RGBA{192, 192, 192, 255}
	borderColor = color.RGBA{128, 128, 128, 255}

	bevelLight  = color.RGBA{255, 255, 255, 255}
	bevelDarker = color.RGBA{64, 64, 64, 255}

	sunkenBgColor   = color.RGBA{24, 24, 32, 255}
	highlightColor  = color.RGBA{0, 0, 128, 255}
	sliderFillColor = color.RGBA{0, 0, 128, 255}

	waveColor     = color.RGBA{80, 200, 255, 220}
	waveAxisColor = color.RGBA{40, 44, 58, 140}
	tickColor     = color.RGBA{70, 76, 96, 255}
	selectColor   = color.RGBA{200, 48, 48, 90}
	dragColor     = color.RGBA{200, 48, 48, 50}
)

type navEntry struct {
	name  string
	path  string
	isDir bool
}

type game struct {
	out     *device.Output
	buf     *pcm.Buffer
	session *segloop.Session
	tracker *selection.Tracker

	peaks  [][2]float32
	peaksW int

	// Transient drag overlay, fed by the tracker's redraw callback.
	dragStart, dragEnd float64
	dragging           bool
	waveMouseDown      bool

	repeat        int
	draggingSlide bool

	status    string
	statusErr bool

	cwd        string
	nav        []navEntry
	navScroll  int
	loadedPath string

	frameTick        int
	lastNavPath      string
	lastNavClickTick int

	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame(initialPath string) (*game, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if initialPath != "" {
		cwd = filepath.Dir(initialPath)
	}
	g := &game{
		out:       device.New(),
		repeat:    5,
		status:    "Select an audio file",
		cwd:       cwd,
		textCache: make(map[string]*ebiten.Image, 1024),
		viewW:     windowW,
		viewH:     windowH,
	}
	if err := g.refreshNav(); err != nil {
		g.setError(err.Error())
	}
	if initialPath != "" {
		if err := g.loadFile(initialPath); err != nil {
			g.setError(err.Error())
		}
	}
	return g, nil
}

func (g *game) Update() error {
	g.frameTick++
	g.stepPlayback()
	g.handleKeys()
	g.handleMouse()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()

	g.drawSunkenPanel(screen, l.nav)
	g.drawSunkenPanel(screen, l.wave)
	g.drawButton(screen, l.loop, g.loopButtonLabel())
	g.drawButton(screen, l.playAll, "Play All")
	g.drawRepeatSlider(screen, l.repeat)
	g.drawSunkenPanel(screen, l.status)

	g.drawText(screen, "Files", l.nav.Min.X+8, l.nav.Min.Y+8)
	g.drawNavigator(screen, l.nav)
	g.drawWaveform(screen, l.wave)
	g.drawStatus(screen, l.status)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	if outsideW < minWindowW {
		outsideW = minWindowW
	}
	if outsideH < minWindowH {
		outsideH = minWindowH
	}
	g.viewW = outsideW
	g.viewH = outsideH
	return outsideW, outsideH
}

func (g *game) Close() {
	if g.session != nil {
		g.session.Cancel()
	}
	stage.Sweep(os.TempDir())
}

// stepPlayback advances the active session by one tick per frame. The
// frame loop is the event pump; at ~60 fps a frame is close to the
// session's nominal poll interval.
func (g *game) stepPlayback() {
	if g.session == nil || g.session.State() != segloop.StatePlaying {
		return
	}
	done, err := g.session.Step()
	if !done {
		return
	}
	g.tracker.SetBlocked(false)
	if err != nil {
		g.setError(err.Error())
		return
	}
	switch g.session.Result() {
	case segloop.ResultCancelled:
		g.setStatus("Playback stopped")
	default:
		g.setStatus("Playback " + g.session.Result().String())
	}
}

func (g *game) playing() bool {
	return g.session != nil && g.session.State() != segloop.StateIdle
}

func (g *game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && g.playing() {
		g.session.Cancel()
		g.setStatus("Stopping...")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.playSelection()
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case pointInRect(mx, my, l.loop):
			if g.playing() {
				g.session.Cancel()
			} else {
				g.playSelection()
			}
		case pointInRect(mx, my, l.playAll):
			g.playAll()
		case pointInRect(mx, my, l.repeat):
			g.draggingSlide = true
			g.updateRepeatFromMouse(mx, l.repeat)
		case pointInRect(mx, my, l.nav):
			g.clickNavigator(my, l.nav)
		case pointInRect(mx, my, l.wave) && g.tracker != nil:
			g.waveMouseDown = true
			g.tracker.PointerDown(g.timeAt(mx, l.wave))
		}
	}

	if g.waveMouseDown && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && g.tracker != nil {
		g.tracker.PointerMove(g.timeAt(mx, l.wave))
	}
	if g.waveMouseDown && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.waveMouseDown = false
		g.dragging = false
		if g.tracker != nil {
			if gesture, ok := g.tracker.PointerUp(g.timeAt(mx, l.wave)); ok {
				g.finishGesture(gesture)
			}
		}
	}

	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.draggingSlide = false
	}
	if g.draggingSlide {
		g.updateRepeatFromMouse(mx, l.repeat)
	}

	_, wy := ebiten.Wheel()
	if wy != 0 && pointInRect(mx, my, l.nav) {
		g.navScroll -= int(wy * 2)
		if g.navScroll < 0 {
			g.navScroll = 0
		}
	}
}

func (g *game) finishGesture(gesture selection.Gesture) {
	if gesture.AutoPlay {
		g.setStatus(fmt.Sprintf("Tap at %.2fs: playing %.2fs to %.2fs", gesture.Start, gesture.Start, gesture.End))
		g.startRequest(segloop.Request{Start: gesture.Start, End: gesture.End, Repeat: gesture.Repeat})
		return
	}
	g.setStatus(fmt.Sprintf("Selected %.2fs to %.2fs (Space loops x%d)", gesture.Start, gesture.End, g.repeat))
}

func (g *game) playSelection() {
	if g.tracker == nil || g.playing() {
		return
	}
	start, end, ok := g.tracker.Selection()
	if !ok {
		g.setError("No selection: drag over the waveform first")
		return
	}
	g.startRequest(segloop.Request{Start: start, End: end, Repeat: g.repeat})
}

func (g *game) playAll() {
	if g.buf == nil || g.playing() {
		return
	}
	g.startRequest(segloop.Request{Start: 0, End: g.buf.Duration(), Repeat: 1})
}

func (g *game) startRequest(req segloop.Request) {
	if g.session == nil || g.playing() {
		return
	}
	if err := g.session.Start(req); err != nil {
		g.setError(err.Error())
		return
	}
	g.tracker.SetBlocked(true)
}

type uiLayout struct {
	nav, wave             image.Rectangle
	loop, playAll, repeat image.Rectangle
	status                image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	w, h := g.viewW, g.viewH
	if w < minWindowW {
		w = minWindowW
	}
	if h < minWindowH {
		h = minWindowH
	}

	pad := 20
	rowH := 44
	statusH := 40

	statusTop := h - pad - statusH
	controlsTop := statusTop - 8 - rowH

	navW := 280
	navRect := image.Rect(pad, pad, pad+navW, controlsTop-12)

	rightX := navRect.Max.X + 12
	waveRect := image.Rect(rightX, pad, w-pad, controlsTop-12)

	loopRect := image.Rect(pad, controlsTop, pad+150, controlsTop+rowH)
	playAllRect := image.Rect(pad+162, controlsTop, pad+312, controlsTop+rowH)
	repRight := pad + 324 + 320
	if repRight > w-pad {
		repRight = w - pad
	}
	repeatRect := image.Rect(pad+324, controlsTop, repRight, controlsTop+rowH)
	statusRect := image.Rect(pad, statusTop, w-pad, statusTop+statusH)

	return uiLayout{
		nav: navRect, wave: waveRect,
		loop: loopRect, playAll: playAllRect, repeat: repeatRect,
		status: statusRect,
	}
}

func (g *game) waveInner(rect image.Rectangle) image.Rectangle {
	return image.Rect(rect.Min.X+8, rect.Min.Y+8, rect.Max.X-8, rect.Max.Y-8)
}

// timeAt maps a cursor x position to seconds on the waveform's time axis.
func (g *game) timeAt(mx int, rect image.Rectangle) float64 {
	if g.buf == nil {
		return 0
	}
	inner := g.waveInner(rect)
	frac := clamp(float64(mx-inner.Min.X)/float64(inner.Dx()), 0, 1)
	return frac * g.buf.Duration()
}

func (g *game) drawWaveform(screen *ebiten.Image, rect image.Rectangle) {
	inner := g.waveInner(rect)
	width, height := inner.Dx(), inner.Dy()
	if g.buf == nil || width <= 2 || height <= 4 {
		if g.buf == nil {
			g.drawText(screen, "No file loaded", rect.Min.X+12, rect.Min.Y+12)
		}
		return
	}

	if g.peaksW != width {
		g.peaks = g.buf.MonoPeaks(width)
		g.peaksW = width
	}

	midY := inner.Min.Y + height/2
	gain := float64(height/2 - 2)

	ebitenutil.DrawRect(screen, float64(inner.Min.X), float64(midY), float64(width), 1, waveAxisColor)
	g.drawTimeTicks(screen, inner)

	for px, p := range g.peaks {
		top := midY - int(float64(p[1])*gain)
		bottom := midY - int(float64(p[0])*gain)
		if bottom <= top {
			bottom = top + 1
		}
		ebitenutil.DrawRect(screen, float64(inner.Min.X+px), float64(top), 1, float64(bottom-top), waveColor)
	}

	// Committed selection overlay; transient drag overlay while selecting.
	if start, end, ok := g.tracker.Selection(); ok {
		g.drawRangeOverlay(screen, inner, start, end, selectColor)
	}
	if g.dragging {
		g.drawRangeOverlay(screen, inner, g.dragStart, g.dragEnd, dragColor)
	}

	if g.playing() {
		label := fmt.Sprintf("Repetition %d", g.session.CurrentRepetition())
		g.drawText(screen, label, inner.Min.X+6, inner.Min.Y+6)
	}
}

func (g *game) drawTimeTicks(screen *ebiten.Image, inner image.Rectangle) {
	dur := g.buf.Duration()
	if dur <= 0 {
		return
	}
	step := 5.0
	for dur/step > 40 {
		step *= 2
	}
	for t := step; t < dur; t += step {
		x := inner.Min.X + int(t/dur*float64(inner.Dx()))
		ebitenutil.DrawRect(screen, float64(x), float64(inner.Max.Y-8), 1, 8, tickColor)
	}
}

func (g *game) drawRangeOverlay(screen *ebiten.Image, inner image.Rectangle, start, end float64, col color.Color) {
	dur := g.buf.Duration()
	if dur <= 0 {
		return
	}
	if start > end {
		start, end = end, start
	}
	x0 := inner.Min.X + int(clamp(start/dur, 0, 1)*float64(inner.Dx()))
	x1 := inner.Min.X + int(clamp(end/dur, 0, 1)*float64(inner.Dx()))
	if x1 <= x0 {
		x1 = x0 + 2
	}
	ebitenutil.DrawRect(screen, float64(x0), float64(inner.Min.Y), float64(x1-x0), float64(inner.Dy()), col)
}

func (g *game) drawNavigator(screen *ebiten.Image, rect image.Rectangle) {
	label := g.cwd
	if g.loadedPath != "" {
		label = g.cwd + "  [" + filepath.Base(g.loadedPath) + "]"
	}
	maxChars := max(8, (rect.Dx()-16)/charW)
	g.drawText(screen, shortenMiddle(label, maxChars), rect.Min.X+8, rect.Min.Y+8+lineH)

	top := rect.Min.Y + 12 + (lineH * 2)
	maxLines := (rect.Dy() - (lineH * 2) - 18) / lineH
	if maxLines < 1 {
		maxLines = 1
	}
	if g.navScroll > len(g.nav)-1 {
		g.navScroll = max(0, len(g.nav)-1)
	}

	for i := 0; i < maxLines; i++ {
		idx := g.navScroll + i
		if idx < 0 || idx >= len(g.nav) {
			break
		}
		entry := g.nav[idx]
		y := top + i*lineH
		if g.loadedPath != "" && !entry.isDir && samePath(entry.path, g.loadedPath) {
			ebitenutil.DrawRect(screen, float64(rect.Min.X+6), float64(y-2), float64(rect.Dx()-12), float64(lineH+2), highlightColor)
		}
		txt := entry.name
		if entry.isDir && entry.name != ".." {
			txt += "/"
		}
		g.drawText(screen, shortenEnd(txt, maxChars-1), rect.Min.X+10, y)
	}
}

func (g *game) clickNavigator(my int, rect image.Rectangle) {
	top := rect.Min.Y + 12 + (lineH * 2)
	row := (my - top) / lineH
	if row < 0 {
		return
	}
	idx := g.navScroll + row
	if idx < 0 || idx >= len(g.nav) {
		return
	}
	entry := g.nav[idx]
	if entry.isDir {
		g.cwd = entry.path
		g.navScroll = 0
		if err := g.refreshNav(); err != nil {
			g.setError(err.Error())
			return
		}
		g.setStatus("Directory: " + g.cwd)
		return
	}

	doubleClickSame := samePath(entry.path, g.lastNavPath) && (g.frameTick-g.lastNavClickTick) <= 18
	g.lastNavPath = entry.path
	g.lastNavClickTick = g.frameTick

	if err := g.loadFile(entry.path); err != nil {
		g.setError(err.Error())
		return
	}
	if doubleClickSame {
		g.playAll()
		return
	}
	g.setStatus("Loaded " + filepath.Base(entry.path))
}

func (g *game) refreshNav() error {
	items, err := os.ReadDir(g.cwd)
	if err != nil {
		return err
	}
	supported := map[string]bool{}
	for _, ext := range decode.Extensions() {
		supported["."+ext] = true
	}

	dirs := make([]navEntry, 0)
	files := make([]navEntry, 0)
	parent := filepath.Dir(g.cwd)
	if parent != g.cwd {
		dirs = append(dirs, navEntry{name: "..", path: parent, isDir: true})
	}
	for _, it := range items {
		name := it.Name()
		full := filepath.Join(g.cwd, name)
		if it.IsDir() {
			dirs = append(dirs, navEntry{name: name, path: full, isDir: true})
			continue
		}
		if supported[strings.ToLower(filepath.Ext(name))] {
			files = append(files, navEntry{name: name, path: full, isDir: false})
		}
	}
	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].name == ".." {
			return true
		}
		if dirs[j].name == ".." {
			return false
		}
		return strings.ToLower(dirs[i].name) < strings.ToLower(dirs[j].name)
	})
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].name) < strings.ToLower(files[j].name)
	})
	g.nav = append(dirs, files...)
	return nil
}

func (g *game) loadFile(path string) error {
	if g.playing() {
		g.session.Cancel()
		return errors.New("stopping current playback, try again")
	}
	buf, err := segloop.Load(path)
	if err != nil {
		return err
	}
	g.buf = buf
	g.peaksW = 0
	g.loadedPath = path
	g.cwd = filepath.Dir(path)

	g.tracker = selection.New(buf.Duration(), selection.DefaultConfig())
	g.tracker.SetOnDrag(func(start, end float64) {
		g.dragging = true
		g.dragStart, g.dragEnd = start, end
	})
	g.session = segloop.NewSession(buf, g.out,
		segloop.WithOnRepetition(func(rep, total int) {
			g.setStatus(fmt.Sprintf("Repetition %d/%d", rep, total))
		}))
	return g.refreshNav()
}

func (g *game) loopButtonLabel() string {
	if g.playing() {
		return "Stop (Esc)"
	}
	return fmt.Sprintf("Loop x%d", g.repeat)
}

func (g *game) drawRepeatSlider(screen *ebiten.Image, rect image.Rectangle) {
	g.drawPanel(screen, rect)
	g.drawText(screen, fmt.Sprintf("Rep %d", g.repeat), rect.Min.X+8, rect.Min.Y+8)

	trackX := rect.Min.X + 110
	trackW := rect.Dx() - 126
	trackY := rect.Min.Y + rect.Dy()/2 - 4
	if trackW < 20 {
		return
	}
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), float64(trackW), 8, bevelDarker)
	frac := float64(g.repeat-repeatMin) / float64(repeatMax-repeatMin)
	fillW := int(float64(trackW) * frac)
	if fillW > 2 {
		ebitenutil.DrawRect(screen, float64(trackX+1), float64(trackY+1), float64(fillW-1), 6, sliderFillColor)
	}
	knobX := trackX + fillW - 5
	if knobX < trackX-5 {
		knobX = trackX - 5
	}
	if knobX > trackX+trackW-5 {
		knobX = trackX + trackW - 5
	}
	knobRect := image.Rect(knobX, trackY-4, knobX+10, trackY+12)
	ebitenutil.DrawRect(screen, float64(knobRect.Min.X), float64(knobRect.Min.Y), float64(knobRect.Dx()), float64(knobRect.Dy()), panelColor)
	drawBorder(screen, knobRect)
}

func (g *game) updateRepeatFromMouse(mx int, rect image.Rectangle) {
	trackX := rect.Min.X + 110
	trackW := rect.Dx() - 126
	if trackW <= 0 {
		return
	}
	frac := clamp(float64(mx-trackX)/float64(trackW), 0, 1)
	g.repeat = repeatMin + int(frac*float64(repeatMax-repeatMin)+0.5)
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	msg := "Status: " + g.status
	if g.statusErr {
		msg = "Status: ERROR - " + g.status
	}
	maxChars := max(8, (rect.Dx()-16)/charW)
	g.drawText(screen, shortenEnd(msg, maxChars), rect.Min.X+8, rect.Min.Y+6)
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func (g *game) drawPanel(screen *ebiten.Image, rect image.Rectangle) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), panelColor)
	drawBorder(screen, rect)
}

func (g *game) drawSunkenPanel(screen *ebiten.Image, rect image.Rectangle) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), sunkenBgColor)
	drawSunkenBorder(screen, rect)
}

func (g *game) drawButton(screen *ebiten.Image, rect image.Rectangle, label string) {
	g.drawPanel(screen, rect)
	labelW := len([]rune(label)) * charW
	x := rect.Min.X + (rect.Dx()-labelW)/2
	y := rect.Min.Y + (rect.Dy()-lineH)/2
	g.drawText(screen, label, x, y)
}

// drawBorder draws a raised 3D bevel (highlight top/left, shadow bottom/right).
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, bevelLight)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, borderColor)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, borderColor)
}

// drawSunkenBorder draws a sunken 3D bevel (shadow top/left, highlight bottom/right).
func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, borderColor)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, borderColor)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelLight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelLight)
	ebitenutil.DrawRect(screen, x+1, y+1, w-3, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+2, 1, h-4, bevelDarker)
}

func (g *game) drawText(screen *ebiten.Image, msg string, x int, y int) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		w := max(1, len([]rune(msg))*7)
		img = ebiten.NewImage(w, 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 3000 {
			g.textCache = make(map[string]*ebiten.Image, 1024)
		}
		g.textCache[msg] = img
	}
	opS := &ebiten.DrawImageOptions{}
	opS.GeoM.Scale(textScale, textScale)
	opS.GeoM.Translate(float64(x+2), float64(y+2))
	opS.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, opS)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func shortenEnd(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return string(r[:max(0, maxChars)])
	}
	return string(r[:maxChars-3]) + "..."
}

func shortenMiddle(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 7 {
		return shortenEnd(s, maxChars)
	}
	left := (maxChars - 3) / 2
	right := maxChars - 3 - left
	return string(r[:left]) + "..." + string(r[len(r)-right:])
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

func main() {
	var initialPath string
	if len(os.Args) > 1 {
		p, err := filepath.Abs(os.Args[1])
		if err != nil {
			log.Fatalf("resolve %q: %v", os.Args[1], err)
		}
		initialPath = p
	}

	stage.Sweep(os.TempDir())

	g, err := newGame(initialPath)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("segloop")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
