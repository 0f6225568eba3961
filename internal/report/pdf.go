package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

const utf8Family = "report"

// ExamPDF writes rep as an A4 PDF. With fontPath set, text is drawn with that
// UTF-8 TrueType font; otherwise Helvetica with a cp1252 translation is used,
// which cannot show non-Latin letters.
func ExamPDF(w io.Writer, rep ExamReport, fontPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", fontPath)
		pdf.AddUTF8Font(utf8Family, "B", fontPath)
		family = utf8Family
		tr = func(s string) string { return s }
	}
	pdf.SetTitle(tr(rep.Title), fontPath != "")
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.MultiCell(0, 10, tr(rep.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(family, "", 11)
	status := "in progress"
	if rep.FinishedAt != nil {
		status = "finished " + rep.FinishedAt.Format("2006-01-02 15:04")
	}
	info := fmt.Sprintf("User: %s\nStarted: %s\nStatus: %s\nScore: %d of %d correct (%d%%), %d answered\n",
		rep.Username,
		rep.CreatedAt.Format("2006-01-02 15:04"),
		status,
		rep.Score.Correct, rep.Score.Total, rep.Score.Percent(), rep.Score.Answered,
	)
	pdf.MultiCell(0, 7, tr(info), "", "L", false)
	pdf.Ln(4)

	for _, r := range rep.Rows {
		mark := "wrong"
		switch {
		case !r.Answered:
			mark = "not answered"
		case r.Correct:
			mark = "correct"
		}
		pdf.SetFont(family, "B", 12)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s (%s)", r.Number, r.Kind.Label(), mark)), "", "L", false)
		pdf.SetFont(family, "", 11)
		pdf.MultiCell(0, 6, tr(r.Prompt), "", "L", false)
		pdf.MultiCell(0, 6, tr("Your answer: "+r.Answer+"\nExpected: "+r.Expected), "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
