package video

// lineBuffer holds the row being composed.
type lineBuffer struct {
	pixels [Width]uint8
	// bgColor is the raw color index (0-3) of the background or window under each pixel.
	bgColor [Width]uint8
	// bgPriority is the CGB attribute bit giving the background priority over sprites.
	bgPriority [Width]bool

	sprites [spriteCount]Sprite
}

func (l *lineBuffer) clear() {
	l.pixels = [Width]uint8{}
	l.bgColor = [Width]uint8{}
	l.bgPriority = [Width]bool{}
}

// drawLine composes the current line and hands it to the drawer.
func (g *GPU) drawLine() {
	if g.drawer == nil {
		return
	}

	if g.cfg.FrameSkip && !g.frameSkipCount {
		return
	}

	// odd frames draw odd lines, even frames even lines
	if g.cfg.Interlace && g.interlaceCount == (g.ly&1 == 1) {
		if g.windowVisible() {
			g.windowLine++
		}
		return
	}

	g.line.clear()

	// the background cannot be switched off in color mode, LCDC bit 0 only
	// takes away its priority over sprites
	if g.cfg.Color || g.lcdc&bgEnable != 0 {
		g.drawBackground()
	}

	if g.windowVisible() {
		g.drawWindow()
		g.windowLine++
	}

	if g.lcdc&objEnable != 0 {
		g.drawSprites()
	}

	g.drawer.DrawLine(&g.line.pixels, g.ly)
}

func (g *GPU) drawBackground() {
	mapBase := tileMapLow
	if g.lcdc&bgMapHigh != 0 {
		mapBase = tileMapHigh
	}

	y := g.ly + g.scy
	for x := 0; x < Width; x++ {
		color, attr := g.mapPixel(mapBase, uint8(x)+g.scx, y)
		g.plotBackground(x, color, attr)
	}
}

func (g *GPU) drawWindow() {
	mapBase := tileMapLow
	if g.lcdc&windowMapHigh != 0 {
		mapBase = tileMapHigh
	}

	start := max(int(g.wx)-7, 0)
	for x := start; x < Width; x++ {
		color, attr := g.mapPixel(mapBase, uint8(x+7-int(g.wx)), g.windowLine)
		g.plotBackground(x, color, attr)
	}
}

func (g *GPU) plotBackground(x int, color, attr uint8) {
	g.line.bgColor[x] = color

	if g.cfg.Color {
		g.line.pixels[x] = (attr&attrPalette)<<2 + color
		g.line.bgPriority[x] = attr&attrPriority != 0
		return
	}

	g.line.pixels[x] = g.bgPalette[color]
	if g.cfg.TaggedPalette {
		g.line.pixels[x] |= TagBG
	}
}

// drawSprites draws from lowest to highest priority so that the winner ends on top.
func (g *GPU) drawSprites() {
	sprites := g.spritesForLine(g.line.sprites[:])
	height := g.spriteHeight()
	vram := g.mem.VRAM()

	for i := len(sprites) - 1; i >= 0; i-- {
		sprite := sprites[i]
		if !sprite.onScreen() {
			continue
		}

		row := sprite.row(vram, g.ly, height, g.cfg.Color)
		flipX := sprite.Flags&flagFlipX != 0

		for col := 0; col < 8; col++ {
			x := int(sprite.X) - 8 + col
			if x < 0 || x >= Width {
				continue
			}

			color := row.Pixel(col, flipX)
			if color == 0 || !g.spriteVisible(x, sprite.Flags) {
				continue
			}

			g.plotSprite(x, color, sprite.Flags)
		}
	}
}

// spriteVisible arbitrates an opaque sprite pixel against the background at x.
func (g *GPU) spriteVisible(x int, flags uint8) bool {
	bgOpaque := g.line.bgColor[x] != 0

	if g.cfg.Color {
		if g.lcdc&bgEnable == 0 {
			return true
		}
		if g.line.bgPriority[x] && bgOpaque {
			return false
		}
	}

	return !(flags&flagBehindBG != 0 && bgOpaque)
}

func (g *GPU) plotSprite(x int, color, flags uint8) {
	if g.cfg.Color {
		g.line.pixels[x] = ObjectPaletteBase + (flags&flagPalette)<<2 + color
		return
	}

	if flags&flagOBP1 != 0 {
		color += 4
	}
	g.line.pixels[x] = g.spPalette[color]
	if g.cfg.TaggedPalette {
		g.line.pixels[x] |= flags & TagOBJ1
	}
}
