package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/services"
)

type CutSheetHandler struct {
	cutSheetService services.CutSheetService
}

func NewCutSheetHandler(cutSheetService services.CutSheetService) *CutSheetHandler {
	return &CutSheetHandler{cutSheetService: cutSheetService}
}

func sheetIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("sheetId"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid cut sheet id")))
		return uuid.Nil, false
	}
	return id, true
}

func (ch *CutSheetHandler) Create(c *gin.Context) {
	var req struct {
		OrderID uuid.UUID              `json:"order_id"`
		State   services.CutSheetState `json:"state"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	sheet, err := ch.cutSheetService.CreateCutSheet(c.Request.Context(), req.OrderID, req.State)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"cut_sheet": sheet})
}

func (ch *CutSheetHandler) Get(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	view, err := ch.cutSheetService.GetCutSheet(c.Request.Context(), sheetID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, view)
}

func (ch *CutSheetHandler) ListForOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid order id")))
		return
	}
	sheets, err := ch.cutSheetService.ListForOrder(c.Request.Context(), orderID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"cut_sheets": sheets})
}

func (ch *CutSheetHandler) ReplaceItems(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Items []services.CutSheetItemInput `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	if err := ch.cutSheetService.ReplaceItems(c.Request.Context(), sheetID, req.Items); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutSheetHandler) ReplaceSausages(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Sausages []services.SausageInput `json:"sausages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	if err := ch.cutSheetService.ReplaceSausages(c.Request.Context(), sheetID, req.Sausages); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutSheetHandler) Submit(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	if err := ch.cutSheetService.SubmitCutSheet(c.Request.Context(), sheetID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutSheetHandler) UpdateCutParameters(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	var req services.CutParameterUpdates
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	if err := ch.cutSheetService.UpdateCutParameters(c.Request.Context(), sheetID, c.Param("cutId"), req); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutSheetHandler) RemoveCut(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	var req struct {
		CutName string `json:"cut_name"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	if err := ch.cutSheetService.RemoveCut(c.Request.Context(), sheetID, c.Param("cutId"), req.CutName, req.Reason); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutSheetHandler) RestoreCut(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	if err := ch.cutSheetService.RestoreCut(c.Request.Context(), sheetID, c.Param("cutId")); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutSheetHandler) AddCut(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	var req services.AddCutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	if err := ch.cutSheetService.AddCut(c.Request.Context(), sheetID, req); err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"success": true})
}

func (ch *CutSheetHandler) UpdateProcessorNotes(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	if err := ch.cutSheetService.UpdateProcessorNotes(c.Request.Context(), sheetID, req.Notes); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutSheetHandler) UpdateHangingWeight(c *gin.Context) {
	sheetID, ok := sheetIDParam(c)
	if !ok {
		return
	}
	var req struct {
		WeightLbs float64 `json:"weight_lbs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	if err := ch.cutSheetService.UpdateHangingWeight(c.Request.Context(), sheetID, req.WeightLbs); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CutSheetHandler) SaveTemplate(c *gin.Context) {
	var req struct {
		Name  string                 `json:"name"`
		State services.CutSheetState `json:"state"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	templateID, err := ch.cutSheetService.SaveAsTemplate(c.Request.Context(), req.State, req.Name)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"template_id": templateID})
}

func (ch *CutSheetHandler) LoadTemplate(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("templateId"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid template id")))
		return
	}
	state, err := ch.cutSheetService.LoadTemplate(c.Request.Context(), templateID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"state": state})
}

func (ch *CutSheetHandler) ListTemplates(c *gin.Context) {
	templates, err := ch.cutSheetService.ListTemplates(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"templates": templates})
}
