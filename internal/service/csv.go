package service

import (
	"fmt"
	"time"

	"github.com/wb-go/wbf/ginext"

	"eventverteiler/internal/csvio"
	"eventverteiler/internal/dto"
	"eventverteiler/pkg/validator"
)

func (s *service) ImportCSV(ctx *ginext.Context) {
	var req dto.CSVImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	parsed, err := csvio.Parse(req.CSVData)
	if err != nil {
		dto.BadResponseError(ctx, dto.CSVError, err.Error())
		return
	}

	// Rows with validation errors abort the import as a whole; partial
	// imports would hide failures in the middle of a file.
	if len(parsed.Errors) > 0 {
		dto.SuccessResponse(ctx, map[string]any{
			"success":      false,
			"errors":       parsed.Errors,
			"valid_events": len(parsed.Events),
			"total_rows":   len(parsed.Events) + len(parsed.Errors),
		})
		return
	}

	imported := 0
	for i := range parsed.Events {
		if _, err := s.repo.CreateEvent(ctx, &parsed.Events[i]); err != nil {
			s.log.Error().Err(err).Int("row", i).Msg("failed to import event from CSV")
			dto.InternalServerError(ctx)
			return
		}
		imported++
	}

	s.log.Info().Int("imported", imported).Msg("CSV import finished")
	dto.SuccessCreatedResponse(ctx, map[string]any{
		"success":  true,
		"imported": imported,
	})
}

func (s *service) ExportCSV(ctx *ginext.Context) {
	events, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load events for export")
		dto.InternalServerError(ctx)
		return
	}

	content, err := csvio.Export(events)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to render CSV export")
		dto.DownstreamError(ctx, dto.CSVError, err.Error())
		return
	}

	dto.SuccessResponse(ctx, map[string]any{
		"csv_content":  content,
		"filename":     fmt.Sprintf("events_export_%s.csv", time.Now().Format("2006-01-02")),
		"total_events": len(events),
	})
}

func (s *service) CSVTemplate(ctx *ginext.Context) {
	dto.SuccessResponse(ctx, map[string]any{
		"csv_content": csvio.Template(),
		"filename":    "events_template.csv",
	})
}
