package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"buildledger/services"
)

func sovFilename(data *services.SOVExportData, suffix, ext string) string {
	name := data.Title
	if name == "" {
		name = "SOV"
	}
	return fmt.Sprintf("%s_v%d%s.%s", sanitizeFilename(name), data.Version, suffix, ext)
}

// HandleSOVExportExcel downloads the continuation sheet as a workbook.
// Route: GET /sov/{id}/export/excel
func HandleSOVExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildSOVExportData(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("sov_export: %v", err)
			return e.String(http.StatusNotFound, "Schedule of values not found")
		}

		xlsxBytes, err := services.GenerateSOVExcel(*data)
		if err != nil {
			log.Printf("sov_export: failed to generate Excel: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}
		return sendFile(e, xlsxContentType, sovFilename(data, "", "xlsx"), xlsxBytes)
	}
}

// HandleSOVExportPayApplication downloads the payment application PDF.
// Route: GET /sov/{id}/export/pay-application
func HandleSOVExportPayApplication(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildSOVExportData(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("pay_app_export: %v", err)
			return e.String(http.StatusNotFound, "Schedule of values not found")
		}

		pdfBytes, err := services.GeneratePayApplicationPDF(*data)
		if err != nil {
			log.Printf("pay_app_export: failed to generate PDF: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF")
		}
		suffix := fmt.Sprintf("_Application-%d", data.ApplicationNumber)
		return sendFile(e, "application/pdf", sovFilename(data, suffix, "pdf"), pdfBytes)
	}
}
