// Package camera maps a screen viewport onto a clip region with pan and zoom.
package camera

import (
	"math"

	"github.com/pthm-cable/xnoise/noisemap"
)

// Zoom limits. At zoom 1 the whole region fills the viewport.
const (
	MinZoom = 1.0
	MaxZoom = 64.0
)

// Camera tracks a window onto a clip region. X and Y are the view centre in
// region units; screen y grows downward while region y grows upward.
type Camera struct {
	X, Y float64
	Zoom float64

	ViewportW float64
	ViewportH float64

	// Region is the full extent that can be viewed.
	Region noisemap.Bounds
	// WrapX lets the view pan past the horizontal edges, as for longitude.
	WrapX bool
}

// New returns a camera centred on region at zoom 1.
func New(viewportW, viewportH float64, region noisemap.Bounds, wrapX bool) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Region:    region,
		WrapX:     wrapX,
	}
	c.Reset()
	return c
}

// ForProjection returns a camera over the standard region of p. Cylindrical
// and spherical views wrap horizontally.
func ForProjection(viewportW, viewportH float64, p noisemap.Projection) *Camera {
	return New(viewportW, viewportH, noisemap.StandardBounds(p), p != noisemap.Planar)
}

// unitsPerPixel returns the region size of one screen pixel on each axis.
func (c *Camera) unitsPerPixel() (float64, float64) {
	ux := (c.Region.XMax - c.Region.XMin) / (c.ViewportW * c.Zoom)
	uy := (c.Region.YMax - c.Region.YMin) / (c.ViewportH * c.Zoom)
	return ux, uy
}

// ScreenToRegion converts a viewport position to region coordinates.
func (c *Camera) ScreenToRegion(sx, sy float64) (u, v float64) {
	ux, uy := c.unitsPerPixel()
	u = c.X + (sx-c.ViewportW/2)*ux
	v = c.Y - (sy-c.ViewportH/2)*uy
	if c.WrapX {
		u = c.wrap(u)
	}
	return u, v
}

// RegionToScreen converts region coordinates to a viewport position. With
// WrapX the nearest horizontal copy of u is used.
func (c *Camera) RegionToScreen(u, v float64) (sx, sy float64) {
	ux, uy := c.unitsPerPixel()
	du := u - c.X
	if c.WrapX {
		du = wrappedDelta(u, c.X, c.Region.XMax-c.Region.XMin)
	}
	sx = c.ViewportW/2 + du/ux
	sy = c.ViewportH/2 - (v-c.Y)/uy
	return sx, sy
}

// Contains reports whether a viewport position lies inside the viewport.
func (c *Camera) Contains(sx, sy float64) bool {
	return sx >= 0 && sx < c.ViewportW && sy >= 0 && sy < c.ViewportH
}

// Visible returns the clip region currently in view. With WrapX the
// horizontal edges may fall outside the region; angles past the seam are
// valid input to the curved projections.
func (c *Camera) Visible() noisemap.Bounds {
	halfW := (c.Region.XMax - c.Region.XMin) / c.Zoom / 2
	halfH := (c.Region.YMax - c.Region.YMin) / c.Zoom / 2
	return noisemap.Bounds{
		XMin: c.X - halfW,
		XMax: c.X + halfW,
		YMin: c.Y - halfH,
		YMax: c.Y + halfH,
	}
}

// Resize updates the viewport size after a window resize.
func (c *Camera) Resize(w, h float64) {
	c.ViewportW = w
	c.ViewportH = h
}

// Pan moves the view by a drag of (dx,dy) screen pixels. Dragging right
// moves the content right, so the centre moves left.
func (c *Camera) Pan(dx, dy float64) {
	ux, uy := c.unitsPerPixel()
	c.X -= dx * ux
	c.Y += dy * uy
	c.clampCentre()
}

// SetZoom sets the zoom level within [MinZoom, MaxZoom].
func (c *Camera) SetZoom(z float64) {
	c.Zoom = clamp(z, MinZoom, MaxZoom)
	c.clampCentre()
}

// ZoomBy multiplies the zoom by factor, keeping the region point under
// (sx,sy) fixed on screen.
func (c *Camera) ZoomBy(factor, sx, sy float64) {
	u, v := c.ScreenToRegion(sx, sy)
	c.Zoom = clamp(c.Zoom*factor, MinZoom, MaxZoom)
	nu, nv := c.ScreenToRegion(sx, sy)
	du := u - nu
	if c.WrapX {
		du = wrappedDelta(u, nu, c.Region.XMax-c.Region.XMin)
	}
	c.X += du
	c.Y += v - nv
	c.clampCentre()
}

// Reset centres the view on the region at zoom 1.
func (c *Camera) Reset() {
	c.X = (c.Region.XMin + c.Region.XMax) / 2
	c.Y = (c.Region.YMin + c.Region.YMax) / 2
	c.Zoom = 1
}

// clampCentre keeps the visible area inside the region, except horizontally
// with WrapX where the centre wraps instead.
func (c *Camera) clampCentre() {
	halfW := (c.Region.XMax - c.Region.XMin) / c.Zoom / 2
	halfH := (c.Region.YMax - c.Region.YMin) / c.Zoom / 2
	if c.WrapX {
		c.X = c.wrap(c.X)
	} else {
		c.X = clamp(c.X, c.Region.XMin+halfW, c.Region.XMax-halfW)
	}
	c.Y = clamp(c.Y, c.Region.YMin+halfH, c.Region.YMax-halfH)
}

// wrap folds u into [XMin, XMax).
func (c *Camera) wrap(u float64) float64 {
	size := c.Region.XMax - c.Region.XMin
	return c.Region.XMin + mod(u-c.Region.XMin, size)
}

// wrappedDelta computes the shortest signed distance from 'from' to 'to'
// on a circle of the given size.
func wrappedDelta(to, from, size float64) float64 {
	d := mod(to-from, size)
	if d > size/2 {
		d -= size
	}
	return d
}

// mod computes the positive modulo.
func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
