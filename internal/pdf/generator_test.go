package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleReportData() *ReportData {
	bmi := 29.4
	return &ReportData{
		PatientName: "Jane Doe",
		SessionID:   "session-123",
		Eligibility: "eligible",
		BMI:         &bmi,
		Progress:    100,
		Sections: []CategorySection{
			{
				Title: "Personal Information",
				Items: []AnswerItem{
					{Question: "What is your full name?", Answer: "Jane Doe"},
					{Question: "How old are you?", Answer: "45 years"},
				},
			},
			{
				Title: "Medical History",
				Items: []AnswerItem{
					{Question: "Have you been diagnosed with any of the following conditions?", Answer: "Obesity"},
				},
			},
		},
		Transcript: []TranscriptLine{
			{Role: "System", Content: "Welcome to the assessment."},
			{Role: "Assistant", Content: "What is your full name?"},
			{Role: "Patient", Content: "Jane Doe"},
		},
	}
}

func TestPDFGenerator_Generate(t *testing.T) {
	generator := NewPDFGenerator(zap.NewNop())

	pdfBytes, err := generator.Generate(sampleReportData())
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)

	// A well-formed PDF document
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"), "output should start with PDF header")
	assert.Contains(t, string(pdfBytes), "%%EOF", "output should contain PDF trailer")
}

func TestPDFGenerator_Generate_MinimalData(t *testing.T) {
	generator := NewPDFGenerator(zap.NewNop())

	data := &ReportData{
		SessionID:   "session-456",
		Eligibility: "pending",
	}

	pdfBytes, err := generator.Generate(data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"))
}

func TestPDFGenerator_Generate_NoBMI(t *testing.T) {
	generator := NewPDFGenerator(zap.NewNop())

	data := sampleReportData()
	data.BMI = nil

	pdfBytes, err := generator.Generate(data)
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)
}

func TestPDFGenerator_Generate_LongTranscript(t *testing.T) {
	generator := NewPDFGenerator(zap.NewNop())

	data := sampleReportData()
	for i := 0; i < 200; i++ {
		data.Transcript = append(data.Transcript, TranscriptLine{
			Role:    "Patient",
			Content: strings.Repeat("long answer text ", 20),
		})
	}

	// Auto page breaks keep long transcripts renderable
	pdfBytes, err := generator.Generate(data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"))
}
