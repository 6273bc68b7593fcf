// Package reports renders completed analyses as PDF documents. Generation is
// deterministic: the same document input always yields the same bytes, so a
// report can be regenerated on demand instead of stored.
package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/formatting"
)

// Verdict bands over the truth score.
const (
	verdictAuthenticMin = 70.0
	verdictUncertainMin = 50.0
)

// Document carries everything the report needs from a completed analysis.
type Document struct {
	ID          uuid.UUID
	FileName    string
	FileType    string
	FileSize    int64
	TruthScore  float64
	AudioScore  *float64
	VideoScore  *float64
	Anomalies   []scoring.Anomaly
	Duration    time.Duration
	CompletedAt time.Time

	// Spectrogram is an optional PNG raster embedded into the report.
	Spectrogram []byte
}

// Verdict maps a truth score to its reading.
func Verdict(score float64) string {
	switch {
	case score >= verdictAuthenticMin:
		return "LIKELY AUTHENTIC"
	case score >= verdictUncertainMin:
		return "UNCERTAIN"
	default:
		return "LIKELY MANIPULATED"
	}
}

// Generate renders the document to PDF bytes. The creation timestamp is
// pinned to the analysis completion time so repeated generation is
// byte-identical.
func Generate(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(doc.CompletedAt.UTC())
	pdf.SetModificationDate(doc.CompletedAt.UTC())
	pdf.SetTitle("Media Authenticity Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Media Authenticity Report")
	pdf.Ln(16)

	writeMetadata(pdf, doc)
	writeScores(pdf, doc)
	writeAnomalies(pdf, doc.Anomalies)

	if len(doc.Spectrogram) > 0 {
		writeSpectrogram(pdf, doc.Spectrogram)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	if err := verify(buf.Bytes()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeMetadata(pdf *fpdf.Fpdf, doc Document) {
	rows := [][2]string{
		{"Analysis ID", doc.ID.String()},
		{"File", doc.FileName},
		{"Type", doc.FileType},
		{"Size", formatting.FormatBytes(doc.FileSize, 1)},
		{"Completed", doc.CompletedAt.UTC().Format(time.RFC3339)},
		{"Analysis Time", doc.Duration.Round(time.Millisecond).String()},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func writeScores(pdf *fpdf.Fpdf, doc Document) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Truth Score: %.1f / 100", doc.TruthScore), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Verdict: %s", Verdict(doc.TruthScore)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, modalityLine("Audio", doc.AudioScore), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, modalityLine("Video", doc.VideoScore), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func modalityLine(label string, score *float64) string {
	if score == nil {
		return fmt.Sprintf("%s: not analyzed", label)
	}
	return fmt.Sprintf("%s: %.1f / 100", label, *score)
}

func writeAnomalies(pdf *fpdf.Fpdf, anomalies []scoring.Anomaly) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Detected Anomalies", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	if len(anomalies) == 0 {
		pdf.CellFormat(0, 6, "No anomalies detected.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	for _, a := range anomalies {
		line := fmt.Sprintf("[%s] %s: %s (confidence %.1f)", a.Severity, a.Type, a.Description, a.Confidence)
		pdf.MultiCell(0, 6, line, "", "L", false)
	}
	pdf.Ln(4)
}

func writeSpectrogram(pdf *fpdf.Fpdf, raster []byte) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Audio Spectrogram", "", 1, "L", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("spectrogram", opts, bytes.NewReader(raster))
	pdf.ImageOptions("spectrogram", pdf.GetX(), pdf.GetY(), 180, 0, true, opts, 0, "")
}

// verify confirms the rendered output is a structurally valid single-page
// document before it is handed to a caller.
func verify(data []byte) error {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if pages < 1 {
		return fmt.Errorf("%w: empty document", ErrRender)
	}
	return nil
}
