package sink

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"cogentcore.org/core/math32"

	"github.com/binpack3d/packview/pkg/scene"
)

const itemInteractionCSS = `
    .item { transition: stroke-width 0.15s ease; stroke: #222; stroke-width: 0.5; }
    .item.highlight { stroke-width: 2.5; }
    .item-label { visibility: hidden; font: 12px sans-serif; }
    .item-label.highlight { visibility: visible; }`

const itemInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.item').forEach(g => g.classList.toggle('highlight', g.dataset.item === id));
      document.querySelectorAll('.item-label').forEach(t => t.classList.toggle('highlight', t.dataset.item === id));
    }
    function clearHighlight() {
      document.querySelectorAll('.item, .item-label').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.item').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.item));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// Isometric projection basis: +X runs right and down, +Z left and down,
// +Y straight up.
const (
	isoCos float32 = 0.8660254
	isoSin float32 = 0.5

	svgMargin = 24.0
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width  float64
	title  string
	script bool
	stats  bool
}

// WithSVGWidth sets the output pixel width (default 800).
func WithSVGWidth(w float64) SVGOption {
	return func(r *svgRenderer) {
		if w > 0 {
			r.width = w
		}
	}
}

// WithSVGTitle adds a title line above the scene.
func WithSVGTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithoutSVGScript omits the hover-highlight script, producing a static
// image suitable for embedding where scripts are stripped.
func WithoutSVGScript() SVGOption { return func(r *svgRenderer) { r.script = false } }

// WithoutSVGStats omits the summary footer.
func WithoutSVGStats() SVGOption { return func(r *svgRenderer) { r.stats = false } }

// RenderSVG projects the generation isometrically and renders it as an
// interactive SVG. Items carry hover highlighting mirroring the live
// viewer's picking behavior; decorations are inert.
func RenderSVG(gen *scene.Generation, opts ...SVGOption) []byte {
	r := svgRenderer{width: 800, script: true, stats: true}
	for _, opt := range opts {
		opt(&r)
	}

	v := newSVGView(gen, r.width)

	headerH := 0.0
	if r.title != "" {
		headerH = 28
	}
	footerH := 0.0
	if r.stats {
		footerH = 24
	}
	totalH := v.height + headerH + footerH

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, totalH, r.width, totalH)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", itemInteractionCSS)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="18" font-family="sans-serif" font-size="16" font-weight="bold">%s</text>`+"\n",
			svgMargin, escapeXML(r.title))
	}

	fmt.Fprintf(&buf, `  <g transform="translate(0,%.1f)">`+"\n", headerH)
	renderScene(&buf, gen, v)
	buf.WriteString("  </g>\n")

	if r.stats {
		s := gen.Stats
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="12" fill="#555">%d packed, %d unpacked, %.1f%% utilization</text>`+"\n",
			svgMargin, totalH-8, s.PackedCount, s.UnpackedCount, s.Utilization)
	}

	if r.script {
		fmt.Fprintf(&buf, "  <script>//<![CDATA[%s\n  //]]></script>\n", itemInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// svgView maps projected scene coordinates onto the SVG canvas.
type svgView struct {
	scale   float64
	offsetU float32
	offsetV float32
	height  float64
}

type projected struct{ u, v float32 }

func project(p math32.Vector3) projected {
	return projected{
		u: (p.X - p.Z) * isoCos,
		v: (p.X+p.Z)*isoSin - p.Y,
	}
}

// newSVGView computes the projection bounds over every scene point and fits
// them into the target width.
func newSVGView(gen *scene.Generation, width float64) svgView {
	minU, minV := math32.Infinity, math32.Infinity
	maxU, maxV := -math32.Infinity, -math32.Infinity
	extend := func(p math32.Vector3) {
		pr := project(p)
		minU = math32.Min(minU, pr.u)
		maxU = math32.Max(maxU, pr.u)
		minV = math32.Min(minV, pr.v)
		maxV = math32.Max(maxV, pr.v)
	}

	for _, p := range scenePoints(gen) {
		extend(p)
	}
	if minU > maxU {
		minU, maxU, minV, maxV = 0, 1, 0, 1
	}

	scale := (width - 2*svgMargin) / float64(maxU-minU)
	return svgView{
		scale:   scale,
		offsetU: minU,
		offsetV: minV,
		height:  float64(maxV-minV)*scale + 2*svgMargin,
	}
}

func (v svgView) place(p math32.Vector3) (float64, float64) {
	pr := project(p)
	return float64(pr.u-v.offsetU)*v.scale + svgMargin,
		float64(pr.v-v.offsetV)*v.scale + svgMargin
}

// scenePoints returns every world-space point that contributes to the
// projection bounds.
func scenePoints(gen *scene.Generation) []math32.Vector3 {
	var pts []math32.Vector3
	addBox := func(b math32.Box3) {
		pts = append(pts,
			b.Min, b.Max,
			math32.Vec3(b.Max.X, b.Min.Y, b.Min.Z),
			math32.Vec3(b.Min.X, b.Max.Y, b.Min.Z),
			math32.Vec3(b.Min.X, b.Min.Y, b.Max.Z),
			math32.Vec3(b.Max.X, b.Max.Y, b.Min.Z),
			math32.Vec3(b.Max.X, b.Min.Y, b.Max.Z),
			math32.Vec3(b.Min.X, b.Max.Y, b.Max.Z),
		)
	}

	if gen.Volume != nil {
		addBox(gen.Volume.Bounds)
	}
	if gen.AreaFloor != nil && gen.Area != nil {
		addBox(gen.Area.Bounds())
	}
	for _, m := range gen.Items {
		addBox(m.Bounds)
	}
	for _, l := range gen.BoundaryRects {
		pts = append(pts, l.Points...)
	}
	return pts
}

func renderScene(buf *bytes.Buffer, gen *scene.Generation, v svgView) {
	// Back-to-front: translucent container volume, floor decorations,
	// outlines, then depth-sorted solid boxes.
	if gen.Volume != nil {
		renderBoxFaces(buf, v, gen.Volume, "decor", "")
	}
	if gen.AreaFloor != nil {
		renderBoxFaces(buf, v, gen.AreaFloor, "decor", "")
	}
	if gen.Wireframe != nil {
		renderLine(buf, v, gen.Wireframe, 1)
	}
	if gen.AreaOutline != nil {
		renderLine(buf, v, gen.AreaOutline, 1)
	}
	for _, l := range gen.BoundaryRects {
		renderLine(buf, v, l, 0.5)
	}

	boxes := make([]*scene.Mesh, 0, len(gen.Items)+len(gen.CornerMarkers))
	boxes = append(boxes, gen.CornerMarkers...)
	boxes = append(boxes, gen.Items...)
	slices.SortStableFunc(boxes, func(a, b *scene.Mesh) int {
		if c := cmp.Compare(a.Center.X+a.Center.Z, b.Center.X+b.Center.Z); c != 0 {
			return c
		}
		return cmp.Compare(a.Center.Y, b.Center.Y)
	})
	for _, m := range boxes {
		class, item := "decor", ""
		if m.Pickable {
			class, item = "item", m.ItemID
		}
		renderBoxFaces(buf, v, m, class, item)
	}

	// Hover labels come last so they draw over everything.
	for _, m := range gen.Items {
		if !m.Pickable {
			continue
		}
		md, ok := gen.MetadataFor(m)
		if !ok {
			continue
		}
		x, y := v.place(math32.Vec3(m.Bounds.Min.X, m.Bounds.Max.Y, m.Bounds.Min.Z))
		fmt.Fprintf(buf, `    <text class="item-label" data-item="%s" x="%.1f" y="%.1f">%s</text>`+"\n",
			escapeXML(m.ItemID), x, y-6, escapeXML(md.Name))
	}
}

// renderBoxFaces draws the three visible faces of an axis-aligned box: the
// top, the +X face (right), and the +Z face (left). Side faces are darkened
// for depth cueing.
func renderBoxFaces(buf *bytes.Buffer, v svgView, m *scene.Mesh, class, itemID string) {
	b := m.Bounds
	top := []math32.Vector3{
		math32.Vec3(b.Min.X, b.Max.Y, b.Min.Z),
		math32.Vec3(b.Max.X, b.Max.Y, b.Min.Z),
		math32.Vec3(b.Max.X, b.Max.Y, b.Max.Z),
		math32.Vec3(b.Min.X, b.Max.Y, b.Max.Z),
	}
	right := []math32.Vector3{
		math32.Vec3(b.Max.X, b.Max.Y, b.Min.Z),
		math32.Vec3(b.Max.X, b.Max.Y, b.Max.Z),
		math32.Vec3(b.Max.X, b.Min.Y, b.Max.Z),
		math32.Vec3(b.Max.X, b.Min.Y, b.Min.Z),
	}
	left := []math32.Vector3{
		math32.Vec3(b.Min.X, b.Max.Y, b.Max.Z),
		math32.Vec3(b.Max.X, b.Max.Y, b.Max.Z),
		math32.Vec3(b.Max.X, b.Min.Y, b.Max.Z),
		math32.Vec3(b.Min.X, b.Min.Y, b.Max.Z),
	}

	color := m.Material.Color
	opacity := m.Material.Opacity

	attrs := fmt.Sprintf(`class="%s"`, class)
	if itemID != "" {
		attrs = fmt.Sprintf(`class="%s" data-item="%s"`, class, escapeXML(itemID))
	}

	fmt.Fprintf(buf, "    <g %s>\n", attrs)
	renderFace(buf, v, top, color, opacity)
	renderFace(buf, v, right, darken(color, 0.65), opacity)
	renderFace(buf, v, left, darken(color, 0.82), opacity)
	buf.WriteString("    </g>\n")
}

func renderFace(buf *bytes.Buffer, v svgView, corners []math32.Vector3, color string, opacity float32) {
	var pts bytes.Buffer
	for i, c := range corners {
		if i > 0 {
			pts.WriteByte(' ')
		}
		x, y := v.place(c)
		fmt.Fprintf(&pts, "%.1f,%.1f", x, y)
	}
	fmt.Fprintf(buf, `      <polygon points="%s" fill="%s" fill-opacity="%.2f"/>`+"\n",
		pts.String(), color, opacity)
}

func renderLine(buf *bytes.Buffer, v svgView, l *scene.Line, width float64) {
	if len(l.Points) == 0 {
		return
	}
	var pts bytes.Buffer
	for i, p := range l.Points {
		if i > 0 {
			pts.WriteByte(' ')
		}
		x, y := v.place(p)
		fmt.Fprintf(&pts, "%.1f,%.1f", x, y)
	}
	fmt.Fprintf(buf, `    <polyline points="%s" fill="none" stroke="%s" stroke-width="%.1f"/>`+"\n",
		pts.String(), l.Color, width)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// darken scales each RGB channel of a hex color toward black. Unparseable
// colors fall back to grey so rendering never fails on bad input.
func darken(hex string, factor float64) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return "#808080"
	}
	scale := func(c int) int { return int(float64(c) * factor) }
	return fmt.Sprintf("#%02X%02X%02X", scale(r), scale(g), scale(b))
}

func parseHex(s string) (r, g, b int, ok bool) {
	if len(s) == 4 && s[0] == '#' {
		s = fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3])
	}
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, false
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, false
	}
	return r, g, b, true
}
