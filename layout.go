package wordquiz

import (
	"bytes"
	"strconv"

	"codeberg.org/go-pdf/fpdf"
)

// Fixed page geometry, in points. A4 portrait, two lanes per grid row, each
// lane an index box + prompt box + answer box with fixed gaps between them.
const (
	pageMargin = 20.0
	indexBoxW  = 40.0
	boxH       = 40.0
	boxGap     = 12.0
	boxRadius  = 6.0
	boxPadding = 4.0
	titleH     = 24.0
	titleGap   = 8.0
)

// LayoutEngine renders a sampled row set into one paginated PDF. It is
// stateless apart from the style value it was built with; Render may be
// called any number of times.
type LayoutEngine struct {
	styles StyleConfig
}

// NewLayoutEngine creates a layout engine with the given styles.
func NewLayoutEngine(styles StyleConfig) *LayoutEngine {
	return &LayoutEngine{styles: styles}
}

// Render lays the rows out on a two-lane bordered grid and returns the
// finished document bytes.
//
// Lane assignment is by sequence parity: row i goes left when i is even,
// right when odd; a trailing unpaired row sits alone in the left lane. The
// index box shows the record's original number when it has one, the prompt
// box shows the mode's question field, and the answer box shows the answer
// field only when withAnswers is set. Either way the answer box is drawn, so
// question and answer sheets align for double-sided printing. The title is
// drawn once, at the top of the first page.
func (le *LayoutEngine) Render(rows SampledSet, mode QuizMode, withAnswers bool, title string) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle(title, true)

	family := le.styles.Font.Family
	if len(le.styles.Font.TTF) > 0 {
		pdf.AddUTF8FontFromBytes(family, "", le.styles.Font.TTF)
	}

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	usable := pageW - 2*pageMargin
	// Two lanes: 2 index boxes, 4 text boxes, 5 gaps inside the lanes plus
	// the gap between the lanes.
	textW := (usable - 2*indexBoxW - 5*boxGap) / 4
	laneW := indexBoxW + boxGap + textW + boxGap + textW
	leftX := pageMargin
	rightX := pageMargin + laneW + boxGap

	pdf.SetFont(family, "", le.styles.TitleSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, titleH, title, "", 1, "C", false, 0, "")

	y := pageMargin + titleH + titleGap
	for i, r := range rows {
		x := leftX
		if i%2 == 1 {
			x = rightX
		} else if y+boxH > pageH-pageMargin {
			pdf.AddPage()
			y = pageMargin
		}
		le.drawLane(pdf, x, y, textW, r, mode, withAnswers)
		if i%2 == 1 {
			y += boxH
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, &RenderError{Err: err}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Err: err}
	}
	return buf.Bytes(), nil
}

func (le *LayoutEngine) drawLane(pdf *fpdf.Fpdf, x, y, textW float64, r WordRecord, mode QuizMode, withAnswers bool) {
	family := le.styles.Font.Family
	pdf.SetDrawColor(0, 0, 255)
	pdf.SetLineWidth(0.5)

	pdf.RoundedRect(x, y, indexBoxW, boxH, boxRadius, "1234", "D")
	if r.HasNumber {
		pdf.SetFont(family, "", le.styles.IndexSize)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(x, y)
		pdf.CellFormat(indexBoxW, boxH, strconv.Itoa(r.Number), "", 0, "C", false, 0, "")
	}

	qx := x + indexBoxW + boxGap
	pdf.RoundedRect(qx, y, textW, boxH, boxRadius, "1234", "D")
	pdf.SetFont(family, "", le.styles.QuestionSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(qx+boxPadding, y)
	pdf.CellFormat(textW-2*boxPadding, boxH, mode.QuestionText(r), "", 0, "L", false, 0, "")

	ax := qx + textW + boxGap
	pdf.RoundedRect(ax, y, textW, boxH, boxRadius, "1234", "D")
	if withAnswers {
		c := le.styles.AnswerColor
		pdf.SetFont(family, "", le.styles.AnswerSize)
		pdf.SetTextColor(c[0], c[1], c[2])
		pdf.SetXY(ax+boxPadding, y)
		pdf.CellFormat(textW-2*boxPadding, boxH, mode.AnswerText(r), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}
