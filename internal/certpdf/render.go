// Package certpdf renders certificates of erasure as single-page A4 PDFs.
//
// Output is a pure function of the certificate: the document dates are taken
// from the certificate and content streams are left uncompressed, so the same
// record always produces the same bytes and its identifiers can be found with
// a plain text search.
package certpdf

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/cleanexit/cleanexit/internal/model"
)

// Document text.
const (
	Title      = "Certificate of Data Erasure"
	Issuer     = "Cleanexit Certificate Authority"
	Disclaimer = "This certificate confirms that the device listed above underwent compliant data erasure and verification."

	// TimestampLayout formats the wipe instant on the certificate.
	TimestampLayout = "2006-01-02 15:04:05 UTC"
)

// Layout, in points.
const (
	headerHeight = 80
	marginLeft   = 50
	valueX       = 180
	bodyTop      = 120
	rowStep      = 25
	footerGap    = 20
	footerWidth  = 500
	footerLineH  = 12
)

type rgb struct{ r, g, b int }

var (
	headerColor = rgb{29, 78, 216}
	white       = rgb{255, 255, 255}
	bodyColor   = rgb{15, 23, 42}
	footerColor = rgb{100, 116, 139}
)

// Row is one label/value line of the certificate table.
type Row struct {
	Label string
	Value string
	Bold  bool
}

// Rows returns the table printed for cert, in order.
func Rows(cert *model.Certificate) []Row {
	standard := cert.Standard
	if standard == "" {
		standard = model.DefaultStandard
	}
	return []Row{
		{Label: "Certificate ID", Value: cert.CertificateID, Bold: true},
		{Label: "User", Value: cert.Holder()},
		{Label: "Device", Value: cert.DeviceType},
		{Label: "Standard", Value: standard},
		{Label: "Timestamp", Value: cert.WipedAt.UTC().Format(TimestampLayout)},
		{Label: "Signature", Value: cert.Signature},
	}
}

// Render writes the certificate PDF to w.
func Render(w io.Writer, cert *model.Certificate) error {
	if cert == nil || cert.CertificateID == "" {
		return fmt.Errorf("certpdf: certificate id is required")
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)

	stamp := cert.CreatedAt
	if stamp.IsZero() {
		stamp = cert.WipedAt
	}
	stamp = stamp.UTC().Truncate(time.Second)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)

	pdf.SetTitle(cert.CertificateID, false)
	pdf.SetSubject(Title, false)
	pdf.SetAuthor(Issuer, false)
	pdf.SetCreator(Issuer, false)
	pdf.SetAutoPageBreak(false, 0)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	// Header band
	pdf.SetFillColor(headerColor.r, headerColor.g, headerColor.b)
	pdf.Rect(0, 0, pageWidth, headerHeight, "F")

	pdf.SetTextColor(white.r, white.g, white.b)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Text(marginLeft, 45, tr(Title))
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(marginLeft, 65, tr(Issuer))

	// Label/value table
	pdf.SetTextColor(bodyColor.r, bodyColor.g, bodyColor.b)
	y := float64(bodyTop)
	for _, row := range Rows(cert) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(marginLeft, y, tr(row.Label+":"))

		style := ""
		if row.Bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 12)
		pdf.Text(valueX, y, tr(row.Value))
		y += rowStep
	}

	// Footer. MultiCell positions by the top of the first line, Text by its baseline.
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(footerColor.r, footerColor.g, footerColor.b)
	pdf.SetXY(marginLeft, y+footerGap-10)
	pdf.MultiCell(footerWidth, footerLineH, tr(Disclaimer), "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("certpdf: render %s: %w", cert.CertificateID, err)
	}
	return nil
}

// Bytes renders the certificate PDF into memory.
func Bytes(cert *model.Certificate) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, cert); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
