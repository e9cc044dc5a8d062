package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/approval"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/middleware"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// handleExportRequests streams the (filtered) request list as an xlsx
// workbook with the raw approval status normalized for display.
func (router *APIRouter) handleExportRequests(c *gin.Context) {
	claims, _ := middleware.GetCurrentUser(c)

	filter := models.RequestFilter{
		Status: c.Query("status"),
		Limit:  10000,
	}
	if claims.Role == models.RoleRequester {
		filter.RequesterID = claims.UserID
	}

	requests, err := router.requests.List(c.Request.Context(), filter)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Requests"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Subject", "Requester", "Status", "Approval Status", "Priority", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, req := range requests {
		values := []any{
			req.ID,
			req.Subject,
			req.RequesterName,
			req.Status,
			approval.DisplayStatus(approval.NormalizeStatus(req.ApprovalStatus)),
			req.Priority,
			req.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("requests-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		router.logger.Printf("export write: %v", err)
		c.Status(http.StatusInternalServerError)
	}
}
