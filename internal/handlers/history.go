package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/services"
)

type HistoryHandler struct {
	historyService services.HistoryService
}

func NewHistoryHandler(historyService services.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// GetHistory lists a sheet's ledger newest first, optionally filtered by
// ?category= or ?role=.
func (hh *HistoryHandler) GetHistory(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if category := c.Query("category"); category != "" {
		entries, err := hh.historyService.GetHistoryByCategory(ctx, sheetID, category)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"history": entries})
		return
	}
	if role := c.Query("role"); role != "" {
		entries, err := hh.historyService.GetHistoryByRole(ctx, sheetID, role)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"history": entries})
		return
	}
	entries, err := hh.historyService.GetHistory(ctx, sheetID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"history": entries})
}

func (hh *HistoryHandler) GetSummary(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	summary, err := hh.historyService.GetHistorySummary(c.Request.Context(), sheetID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, summary)
}

func (hh *HistoryHandler) GetOriginalState(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	entry, err := hh.historyService.GetOriginalState(c.Request.Context(), sheetID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"entry": entry})
}

func (hh *HistoryHandler) GetDiff(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid history entry id")))
		return
	}
	view, err := hh.historyService.GenerateDiff(c.Request.Context(), sheetID, entryID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, view)
}
