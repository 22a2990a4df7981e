package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"volunteerhub/internal/model"
)

// WriteCertificatePDF renders an A4 appreciation certificate for a
// registration record.
func WriteCertificatePDF(w io.Writer, record model.RegistrationRecord) error {
	pdf := fpdf.New("P", "cm", "A4", "")
	pdf.SetTitle("Volunteer Certificate", true)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()

	pdf.SetLineWidth(0.14)
	pdf.Rect(1.2, 1.2, pageWidth-2.4, pageHeight-2.4, "D")

	centeredText := func(y float64, text string) {
		pdf.SetXY(0, y)
		pdf.CellFormat(pageWidth, 1, text, "", 0, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 28)
	centeredText(3.5, "Certificate of Appreciation")

	pdf.SetFont("Helvetica", "", 14)
	centeredText(5.5, "This certificate is proudly presented to")

	pdf.SetFont("Helvetica", "B", 20)
	centeredText(6.7, record.VolunteerName)

	pdf.SetFont("Helvetica", "", 14)
	centeredText(8.1, fmt.Sprintf("For volunteering in: %s", record.EventTitle))
	centeredText(9.3, fmt.Sprintf("Hours credited: %.2f", record.Hours))
	centeredText(10.5, fmt.Sprintf("Event date: %s", record.EventDate))

	pdf.Line(pageWidth/2-4, pageHeight-3.5, pageWidth/2+4, pageHeight-3.5)
	pdf.SetFont("Helvetica", "I", 12)
	centeredText(pageHeight-3.2, "Authorized Signature")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render certificate pdf: %w", err)
	}
	return nil
}
