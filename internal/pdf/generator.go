package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// PDFGenerator renders assessment summary reports
type PDFGenerator struct {
	logger *zap.Logger
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
	}
}

// AnswerItem is one question/answer pair rendered in the report
type AnswerItem struct {
	Question string
	Answer   string
}

// CategorySection groups a questionnaire category's answers
type CategorySection struct {
	Title string
	Items []AnswerItem
}

// TranscriptLine is one conversation turn rendered in the report appendix
type TranscriptLine struct {
	Role    string
	Content string
}

// ReportData contains all data needed for report generation
type ReportData struct {
	PatientName string
	SessionID   string
	Eligibility string
	BMI         *float64
	Progress    int
	Sections    []CategorySection
	Transcript  []TranscriptLine
}

// Generate creates a PDF report from the provided data
func (g *PDFGenerator) Generate(data *ReportData) ([]byte, error) {
	g.logger.Info("generating assessment report PDF",
		zap.String("session_id", data.SessionID),
		zap.String("eligibility", data.Eligibility),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	g.addTitle(pdf, data)
	g.addEligibilitySummary(pdf, data)
	g.addAnswerSections(pdf, data.Sections)
	g.addTranscript(pdf, data.Transcript)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("assessment report PDF generated",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// addTitle adds the report title and header information
func (g *PDFGenerator) addTitle(pdf *gofpdf.Fpdf, data *ReportData) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "GLP-1 Eligibility Assessment Summary", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	name := data.PatientName
	if name == "" {
		name = "Not provided"
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Patient: %s", name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Session: %s", data.SessionID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *PDFGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

// addEligibilitySummary adds the preliminary eligibility section
func (g *PDFGenerator) addEligibilitySummary(pdf *gofpdf.Fpdf, data *ReportData) {
	g.addSectionHeader(pdf, "Preliminary Eligibility")

	pdf.CellFormat(0, 6, fmt.Sprintf("Classification: %s", data.Eligibility), "", 1, "L", false, 0, "")
	if data.BMI != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("BMI: %g", *data.BMI), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Questionnaire completion: %d%%", data.Progress), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "This classification is a screening signal only. It is not a prescription or a medical diagnosis; a licensed healthcare provider must review the full medical history.", "", "L", false)
	pdf.SetFont("Arial", "", 10)
	pdf.Ln(5)
}

// addAnswerSections adds the per-category answer listing
func (g *PDFGenerator) addAnswerSections(pdf *gofpdf.Fpdf, sections []CategorySection) {
	g.addSectionHeader(pdf, "Reported Answers")

	if len(sections) == 0 {
		pdf.CellFormat(0, 8, "No answers recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, section := range sections {
		if len(section.Items) == 0 {
			continue
		}

		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, section.Title, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)

		for _, item := range section.Items {
			pdf.MultiCell(0, 5, fmt.Sprintf("%s: %s", item.Question, item.Answer), "", "L", false)
		}
		pdf.Ln(3)
	}
	pdf.Ln(2)
}

// addTranscript adds the conversation appendix
func (g *PDFGenerator) addTranscript(pdf *gofpdf.Fpdf, transcript []TranscriptLine) {
	g.addSectionHeader(pdf, "Conversation Transcript")

	if len(transcript) == 0 {
		pdf.CellFormat(0, 8, "No conversation recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, line := range transcript {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 5, line.Role, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 4.5, line.Content, "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(3)
}
