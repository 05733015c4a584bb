package render

// Bevel colors around a shrunk view window.
const (
	bevelLight  = RampGray + 4
	bevelShadow = RampGray + 12
)

// FillBackScreen tiles a flat over the back buffer above the status bar and
// bevels the edge of the view window. It does nothing for a full screen
// view. A nil tile fills with the bevel shadow color.
func FillBackScreen(cv *Canvas, tile []byte) {
	vx, vy, vw, vh := cv.View()
	if vw == cv.Width && vh == cv.Height {
		return
	}
	bottom := cv.Height - StatusBarHeight(cv.Height)
	for y := range bottom {
		row := cv.Back[y*cv.Pitch : y*cv.Pitch+cv.Width]
		if tile == nil {
			for x := range row {
				row[x] = bevelShadow
			}
			continue
		}
		src := tile[(y&(FlatSize-1))*FlatSize:]
		for x := range row {
			row[x] = src[x&(FlatSize-1)]
		}
	}

	// lit from the bottom right
	cv.Fill(cv.Back, vx-1, vy-1, vw+2, 1, bevelShadow)
	cv.Fill(cv.Back, vx-1, vy, 1, vh, bevelShadow)
	cv.Fill(cv.Back, vx-1, vy+vh, vw+2, 1, bevelLight)
	cv.Fill(cv.Back, vx+vw, vy, 1, vh, bevelLight)
}

// DrawViewBorder copies the margins around the view window from the back
// buffer onto the screen.
func DrawViewBorder(cv *Canvas) {
	vx, vy, vw, vh := cv.View()
	if vw == cv.Width && vh == cv.Height {
		return
	}
	bottom := cv.Height - StatusBarHeight(cv.Height)

	cv.CopyRect(0, 0, cv.Width, vy)
	cv.CopyRect(0, vy+vh, cv.Width, bottom-vy-vh)
	cv.CopyRect(0, vy, vx, vh)
	cv.CopyRect(vx+vw, vy, cv.Width-vx-vw, vh)
}

// FillBezel tiles a flat beside a status bar narrower than the surface.
func FillBezel(cv *Canvas, tile []byte, barWidth int) {
	if barWidth >= cv.Width || tile == nil {
		return
	}
	sbar := StatusBarHeight(cv.Height)
	left := (cv.Width - barWidth) / 2
	right := left + barWidth
	for y := cv.Height - sbar; y < cv.Height; y++ {
		row := cv.Screen[y*cv.Pitch : y*cv.Pitch+cv.Width]
		src := tile[(y&(FlatSize-1))*FlatSize:]
		for x := range row {
			if x < left || x >= right {
				row[x] = src[x&(FlatSize-1)]
			}
		}
	}
}

func (r *Renderer) fillBackScreen() {
	var tile []byte
	if f := r.mats.Flat(r.cfg.BorderFlat); f != nil {
		tile = f.Pixels
	}
	FillBackScreen(r.canvas, tile)
}

func (r *Renderer) drawViewBorder() {
	DrawViewBorder(r.canvas)
}
