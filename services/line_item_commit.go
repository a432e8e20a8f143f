package services

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

const importBatchSize = 100

// ImportResult holds the outcome of a batch import operation.
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Imported   int              `json:"imported"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
	RolledBack bool             `json:"rolled_back"`
}

// ImportRowError represents a failure to insert a specific row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CommitLineItemImport appends parsed line items to an estimate in chunks of
// importBatchSize. Each chunk is saved in its own transaction; a failing row
// rolls back its whole chunk and the remaining chunks still run. New lines
// are ordered after the estimate's existing ones.
func CommitLineItemImport(app core.App, estimateID string, items []LineItem) (*ImportResult, error) {
	col, err := app.FindCollectionByNameOrId("estimate_line_items")
	if err != nil {
		return nil, fmt.Errorf("estimate_line_items collection not found: %w", err)
	}

	last, err := app.FindRecordsByFilter(
		"estimate_line_items",
		"estimate = {:estimateId}",
		"-sort_order",
		1,
		0,
		map[string]any{"estimateId": estimateID},
	)
	if err != nil {
		return nil, fmt.Errorf("load existing line items: %w", err)
	}
	nextSort := 0
	if len(last) > 0 {
		nextSort = last[0].GetInt("sort_order")
	}

	result := &ImportResult{TotalRows: len(items)}

	for chunkStart := 0; chunkStart < len(items); chunkStart += importBatchSize {
		chunkEnd := min(chunkStart+importBatchSize, len(items))
		chunk := items[chunkStart:chunkEnd]

		chunkErrors := insertLineItemChunk(app, col, estimateID, chunk, chunkStart, nextSort+chunkStart)
		if len(chunkErrors) > 0 {
			result.Errors = append(result.Errors, chunkErrors...)
			result.Failed += len(chunk)
			result.RolledBack = true
		} else {
			result.Imported += len(chunk)
		}
	}

	return result, nil
}

// insertLineItemChunk inserts a batch of rows within a RunInTransaction block.
func insertLineItemChunk(
	app core.App,
	col *core.Collection,
	estimateID string,
	items []LineItem,
	startOffset int,
	sortBase int,
) []ImportRowError {
	var chunkErrors []ImportRowError

	err := app.RunInTransaction(func(txApp core.App) error {
		for i, item := range items {
			rowNum := startOffset + i + 2 // 1-indexed + header row

			record := core.NewRecord(col)
			record.Set("estimate", estimateID)
			record.Set("description", item.Description)
			record.Set("quantity", item.Quantity.InexactFloat64())
			record.Set("unit_price", item.UnitPrice.InexactFloat64())
			record.Set("is_optional", item.IsOptional)
			record.Set("section", item.SectionID)
			record.Set("sort_order", sortBase+i+1)

			if err := txApp.Save(record); err != nil {
				chunkErrors = append(chunkErrors, ImportRowError{
					Row:     rowNum,
					Message: fmt.Sprintf("Failed to save: %s", err.Error()),
				})
				return fmt.Errorf("save failed at row %d: %w", rowNum, err)
			}
		}
		return nil
	})

	if err != nil {
		log.Printf("line_item_commit: chunk insert rolled back: %v", err)
		if len(chunkErrors) == 0 {
			chunkErrors = append(chunkErrors, ImportRowError{
				Row:     startOffset + 2,
				Message: fmt.Sprintf("Transaction failed: %s", err.Error()),
			})
		}
	}

	return chunkErrors
}
