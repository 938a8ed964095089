package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/internal/service"
)

const (
	contentTypeICS  = "text/calendar; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCalendar 导出会议、组会与稿件日期为 iCalendar
// GET /api/v1/export/calendar.ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), userID)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeICS)
}

// ExportManuscripts 导出稿件列表为 Excel
// GET /api/v1/export/manuscripts.xlsx
func (h *ExportHandler) ExportManuscripts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportManuscripts(c.Request.Context(), userID)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeXLSX)
}

// sendFile 设置下载响应头并写出文件
func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
