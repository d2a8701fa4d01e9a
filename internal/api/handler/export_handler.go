package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kojitaniguchi/schedule-arranger/internal/service"
	"github.com/kojitaniguchi/schedule-arranger/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportGrid 导出出欠表为 Excel
// GET /schedules/:scheduleId/export
func (h *ExportHandler) ExportGrid(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportGrid(c.Request.Context(), c.Param("scheduleId"), viewer)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportICal 导出候补日程为 iCalendar
// GET /schedules/:scheduleId/ical
func (h *ExportHandler) ExportICal(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportICal(c.Request.Context(), c.Param("scheduleId"), viewer)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrScheduleNotFound) {
		response.NotFound(c, 20004, "预定不存在")
		return
	}
	response.InternalError(c)
}
