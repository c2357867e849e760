package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/RectFit/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes one page per entry showing the polygon, the fitted
// rectangle and a stats line, followed by a summary table.
func ExportPDF(path string, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no results to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, e := range entries {
		pdf.AddPage()
		renderResultPage(pdf, e, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, entries)

	return pdf.OutputFileAndClose(path)
}

// renderResultPage draws a single fit result on the current PDF page.
func renderResultPage(pdf *fpdf.Fpdf, e Entry, num int) {
	r := e.Result.Rectangle

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Result %d: %s", num, e.Label)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Area: %.1f | Coverage: %.1f%% | Angle: %.2f deg | Size: %.1f x %.1f | Method: %s",
		r.Area, e.Coverage(), r.AngleDeg, r.Width, r.Height, e.Result.Method)
	if e.Result.Truncated {
		stats += " | truncated"
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	vp := newViewport(e.Outline, marginLeft, drawAreaTop, drawWidth, drawHeight)

	// Polygon (slab color)
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Polygon(toPDFPoints(vp, e.Outline), "FD")

	// Rectangle
	pdf.SetFillColor(76, 175, 80)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	pdf.Polygon(toPDFPoints(vp, r.Outline()), "FD")

	// Center marker
	cx, cy := vp.apply(r.Center)
	pdf.SetDrawColor(200, 0, 0)
	pdf.Line(cx-2, cy, cx+2, cy)
	pdf.Line(cx, cy-2, cx, cy+2)

	drawDimensionAnnotations(pdf, e.Outline, vp)
}

func toPDFPoints(vp viewport, o model.Outline) []fpdf.PointType {
	pts := make([]fpdf.PointType, len(o))
	for i, p := range o {
		x, y := vp.apply(p)
		pts[i] = fpdf.PointType{X: x, Y: y}
	}
	return pts
}

// drawDimensionAnnotations adds the polygon's bounding box size below and
// to the left of the drawing.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, o model.Outline, vp viewport) {
	min, max := o.BoundingBox()
	canvasW := (max.X - min.X) * vp.scale

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f", max.X-min.X)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(vp.offsetX+(canvasW-wLabelW)/2, vp.offsetY+vp.height+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f", max.Y-min.Y)
	pdf.TransformBegin()
	pdf.TransformRotate(90, vp.offsetX-3, vp.offsetY+vp.height/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(vp.offsetX-3-hLabelW/2, vp.offsetY+vp.height/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// renderSummaryPage draws the final summary table.
func renderSummaryPage(pdf *fpdf.Fpdf, entries []Entry) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Inscribed Rectangle Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	colWidths := []float64{15, 60, 40, 40, 30, 30, 52}
	headers := []string{"#", "Region", "Size", "Area", "Coverage", "Angle", "Method"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, e := range entries {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		r := e.Result.Rectangle
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			e.Label,
			fmt.Sprintf("%.1f x %.1f", r.Width, r.Height),
			fmt.Sprintf("%.1f", r.Area),
			fmt.Sprintf("%.1f%%", e.Coverage()),
			fmt.Sprintf("%.2f", r.AngleDeg),
			string(e.Result.Method),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by RectFit", "", 0, "C", false, 0, "")
}
