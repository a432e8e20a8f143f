package services

import (
	"testing"
)

func TestGeneratePayApplicationPDF(t *testing.T) {
	result, err := GeneratePayApplicationPDF(sampleSOVExportData())
	if err != nil {
		t.Fatalf("GeneratePayApplicationPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePayApplicationPDF() returned empty bytes")
	}
	// PDF files start with %PDF
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGeneratePayApplicationPDF_EmptySchedule(t *testing.T) {
	data := NewSOVExportData(nil)
	data.Title = "Empty"

	result, err := GeneratePayApplicationPDF(data)
	if err != nil {
		t.Fatalf("GeneratePayApplicationPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePayApplicationPDF() returned empty bytes")
	}
}

func TestGeneratePayApplicationPDF_ManyLines(t *testing.T) {
	var items []SOVLineItem
	for i := 0; i < 120; i++ {
		items = append(items, SOVLineItem{
			ItemNumber:       "x",
			Description:      "Line",
			ScheduledValue:   d("1000"),
			CurrentBilled:    d("250"),
			RetainagePercent: d("10"),
		})
	}

	result, err := GeneratePayApplicationPDF(NewSOVExportData(items))
	if err != nil {
		t.Fatalf("GeneratePayApplicationPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePayApplicationPDF() returned empty bytes")
	}
}
