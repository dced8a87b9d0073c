// Command gbaview is a minimal fyne.io/fyne/v2 frame viewer and ten-key
// input front end. It drives the Host API in-process (no HTTP hop),
// standing in for "a host driver" the way the teacher's gui/ package
// stands in for a driver of vm.VM, without reimplementing the excluded
// multi-panel debugger GUI: this window shows exactly one thing, the
// rendered frame, plus keyboard input.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/advanceemu/gba/internal/cart"
	"github.com/advanceemu/gba/internal/emu"
	"github.com/advanceemu/gba/internal/loader"
	"github.com/advanceemu/gba/internal/ppu"
)

var (
	romPath  = flag.String("rom", "", "path to a .gba ROM image (or a .zip containing one)")
	biosPath = flag.String("bios", "", "path to a BIOS image (optional; skips straight to the cartridge entry point when empty)")
)

func main() {
	flag.Parse()
	if *romPath == "" {
		log.Fatal("gbaview: -rom is required")
	}

	rom, err := loader.LoadROM(*romPath)
	if err != nil {
		log.Fatalf("gbaview: %v", err)
	}
	bios, err := loader.LoadBIOS(*biosPath)
	if err != nil {
		log.Fatalf("gbaview: %v", err)
	}

	c, _, err := loader.LoadCartridge(rom, loader.DefaultTitleDB, cart.BackupNone)
	if err != nil {
		log.Fatalf("gbaview: %v", err)
	}

	m := emu.New(c, bios)
	m.Reset()

	a := app.New()
	w := a.NewWindow("gbaview")

	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	frame := canvas.NewImageFromImage(img)
	frame.FillMode = canvas.ImageFillOriginal
	frame.ScaleMode = canvas.ImageScalePixels
	w.SetContent(frame)
	w.Resize(fyne.NewSize(float32(ppu.ScreenWidth*2), float32(ppu.ScreenHeight*2)))

	bindInput(w, m)

	go func() {
		ticker := time.NewTicker(16 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := m.RunToVBlank(); err != nil {
				log.Printf("gbaview: %v", err)
				return
			}
			drawFrame(img, m)
			frame.Refresh()
		}
	}()

	w.ShowAndRun()
}

func drawFrame(img *image.RGBA, m *emu.Machine) {
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			img.Set(x, y, bgr555ToRGBA(m.PPU.Framebuf[y][x]))
		}
	}
}

// bgr555ToRGBA expands a 5-bit-per-channel BGR555 pixel (the GBA's
// native format) into 8-bit-per-channel color.RGBA.
func bgr555ToRGBA(px uint16) color.RGBA {
	r := uint8(px&0x1F) << 3
	g := uint8((px>>5)&0x1F) << 3
	b := uint8((px>>10)&0x1F) << 3
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// keyMap translates fyne desktop key names to the ten GBA input bits.
var keyMap = map[fyne.KeyName]emu.Key{
	fyne.KeyZ:          emu.KeyA,
	fyne.KeyX:          emu.KeyB,
	fyne.KeyRightShift: emu.KeySelect,
	fyne.KeyReturn:     emu.KeyStart,
	fyne.KeyRight:      emu.KeyRight,
	fyne.KeyLeft:       emu.KeyLeft,
	fyne.KeyUp:         emu.KeyUp,
	fyne.KeyDown:       emu.KeyDown,
	fyne.KeyA:          emu.KeyL,
	fyne.KeyS:          emu.KeyR,
}

// bindInput wires key-down/key-up to SetKey; fyne's desktop.Canvas is
// the one interface that reports both edges (the plain Canvas only
// reports "typed" runes, which can't represent held movement keys).
func bindInput(w fyne.Window, m *emu.Machine) {
	dc, ok := w.Canvas().(desktop.Canvas)
	if !ok {
		return
	}
	dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
		if k, ok := keyMap[ev.Name]; ok {
			m.SetKey(k, true)
		}
	})
	dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
		if k, ok := keyMap[ev.Name]; ok {
			m.SetKey(k, false)
		}
	})
}
