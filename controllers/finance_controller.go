package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/services"
	"go.uber.org/zap"
)

const (
	financeView  = "/finance/"
	mimePDF      = "application/pdf"
	mimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportedFile = "finance.xlsx"
)

func financeService() *services.FinanceService {
	return services.NewFinanceService(config.GetDB(), config.GetLogger())
}

// FinanceDashboard handles GET /finance/ - every order with paid and remaining amounts
func FinanceDashboard(c *gin.Context) {
	rows, stats, err := financeService().Rows(c.Request.Context(), c.Query("q"), c.Query("status"))
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondView(c, gin.H{
		"rows":   rows,
		"stats":  stats,
		"search": c.Query("q"),
		"status": c.Query("status"),
	})
}

// FinanceAction handles POST /finance/ - edit_invoice, delete_invoice or record_payment
func FinanceAction(c *gin.Context) {
	svc := financeService()
	ctx := c.Request.Context()

	switch {
	case has(c, "edit_invoice"):
		id, err := parseID(c.PostForm("invoice_id"))
		if err != nil {
			respondError(c, err, financeView)
			return
		}
		invoice, notices, err := svc.UpdateInvoice(ctx, id, c.PostForm("amount"), c.PostForm("payment_method"))
		if err != nil {
			respondError(c, err, financeView)
			return
		}
		respondAction(c, http.StatusOK, financeView, notices, invoice)

	case has(c, "delete_invoice"):
		id, err := parseID(c.PostForm("invoice_id"))
		if err != nil {
			respondError(c, err, financeView)
			return
		}
		notices, err := svc.DeleteInvoice(ctx, id)
		if err != nil {
			respondError(c, err, financeView)
			return
		}
		respondAction(c, http.StatusOK, financeView, notices, nil)

	case has(c, "record_payment"):
		id, err := parseID(c.PostForm("order_id"))
		if err != nil {
			respondError(c, err, financeView)
			return
		}
		balance, notices, err := svc.RecordPayment(ctx, id, c.PostForm("paid_amount"))
		if err != nil {
			respondError(c, err, financeView)
			return
		}
		respondAction(c, http.StatusOK, financeView, notices, balance)

	default:
		abortWithError(c, http.StatusBadRequest, services.CodeValidation, "Unknown finance action.", financeView)
	}
}

// ViewInvoice handles GET /finance/invoice/:id/ - JSON by default, the printable page when HTML is accepted
func ViewInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, err, financeView)
		return
	}

	doc, err := financeService().Document(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, financeView)
		return
	}

	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		html, err := services.RenderInvoiceHTML(doc)
		if err != nil {
			respondError(c, err, financeView)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		return
	}

	respondView(c, gin.H{
		"invoice_number": doc.Number(),
		"invoice":        doc,
	})
}

// DownloadInvoicePDF handles GET /finance/invoice/:id/pdf/ - renders the invoice as a PDF attachment.
// Renderer failures send the operator back to the finance view with an error notice.
func DownloadInvoicePDF(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, err, financeView)
		return
	}

	doc, err := financeService().Document(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, financeView)
		return
	}

	html, err := services.RenderInvoiceHTML(doc)
	if err != nil {
		respondError(c, err, financeView)
		return
	}

	renderer := services.GetPDFRenderer()
	if renderer == nil {
		redirectWithNotice(c, financeView, services.Notice{Level: services.NoticeError, Message: "PDF renderer executable not found."})
		return
	}

	pdf, err := renderer.RenderPDF(c.Request.Context(), html)
	if err != nil {
		var toolErr *services.ExternalToolError
		if errors.As(err, &toolErr) {
			config.GetLogger().Warn("invoice pdf export failed", zap.Uint("invoice_id", id), zap.String("code", toolErr.Code), zap.Error(err))
			redirectWithNotice(c, financeView, services.Notice{Level: services.NoticeError, Message: toolErr.Message})
			return
		}
		respondError(c, err, financeView)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.PDFFilename()))
	c.Data(http.StatusOK, mimePDF, pdf)
}

// ExportFinance handles GET /finance/export/ - the finance rows as an xlsx workbook
func ExportFinance(c *gin.Context) {
	rows, _, err := financeService().Rows(c.Request.Context(), c.Query("q"), c.Query("status"))
	if err != nil {
		respondError(c, err, financeView)
		return
	}

	workbook, err := services.ExportFinanceWorkbook(rows)
	if err != nil {
		respondError(c, err, financeView)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportedFile))
	c.Data(http.StatusOK, mimeXLSX, workbook)
}
