package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/kendall-kelly/mill-ops-console/services"
	"github.com/kendall-kelly/mill-ops-console/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type stubRenderer struct {
	pdf  []byte
	err  error
	html []byte
}

func (s *stubRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	s.html = html
	return s.pdf, s.err
}

type FinanceControllerSuite struct {
	suite.Suite
	router   *gin.Engine
	db       *gorm.DB
	client   models.Client
	order    models.Order
	invoice  models.Invoice
	renderer services.PDFRenderer
}

func TestFinanceControllerSuite(t *testing.T) {
	suite.Run(t, new(FinanceControllerSuite))
}

func (s *FinanceControllerSuite) SetupTest() {
	t := s.T()
	s.router, s.db = newTestRouter(t)
	s.client = testutil.CreateClient(t, s.db, "Ali Khan", "Khan Textiles")
	s.order = testutil.CreateOrder(t, s.db, s.client.ID, "ORD-0001", "100")
	s.invoice = testutil.CreateInvoice(t, s.db, s.order.ID, "40")
	s.renderer = services.GetPDFRenderer()
}

func (s *FinanceControllerSuite) TearDownTest() {
	services.SetPDFRenderer(s.renderer)
}

func (s *FinanceControllerSuite) invoices() []models.Invoice {
	var invoices []models.Invoice
	s.Require().NoError(s.db.Where("order_id = ?", s.order.ID).Order("id").Find(&invoices).Error)
	return invoices
}

func (s *FinanceControllerSuite) TestDashboard() {
	other := testutil.CreateOrder(s.T(), s.db, s.client.ID, "ORD-0002", "50")
	testutil.CreateInvoice(s.T(), s.db, other.ID, "50")

	var data struct {
		Rows []struct {
			Order struct {
				OrderCode string `json:"order_id"`
			} `json:"order"`
			Class     string          `json:"class"`
			Remaining decimal.Decimal `json:"remaining"`
		} `json:"rows"`
		Stats services.FinanceStats `json:"stats"`
	}

	w := get(s.router, "/finance/")
	s.Require().Equal(http.StatusOK, w.Code)
	decodeData(s.T(), w, &data)
	s.Require().Len(data.Rows, 2)
	s.Equal(services.ClassPartial, data.Rows[0].Class)
	s.True(data.Rows[0].Remaining.Equal(decimal.NewFromInt(60)))
	s.Equal(services.FinanceStats{Total: 2, Paid: 1, Unpaid: 1}, data.Stats)

	w = get(s.router, "/finance/?status=paid")
	decodeData(s.T(), w, &data)
	s.Require().Len(data.Rows, 1)
	s.Equal("ORD-0002", data.Rows[0].Order.OrderCode)

	w = get(s.router, "/finance/?q=ord-0001")
	decodeData(s.T(), w, &data)
	s.Require().Len(data.Rows, 1)
	s.Equal("ORD-0001", data.Rows[0].Order.OrderCode)
}

func (s *FinanceControllerSuite) TestRecordPayment() {
	w := postForm(s.router, "/finance/", url.Values{
		"record_payment": {""},
		"order_id":       {fmt.Sprint(s.order.ID)},
		"paid_amount":    {"75"},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	env := decode(s.T(), w)
	s.Equal("/finance/", env.Redirect)
	s.Equal("Payment updated successfully.", env.Notices[0].Message)

	invoices := s.invoices()
	s.Require().Len(invoices, 1)
	s.True(invoices[0].Amount.Equal(decimal.NewFromInt(75)))
	s.Equal(models.PaymentMethodCash, invoices[0].PaymentMethod)
}

func (s *FinanceControllerSuite) TestRecordPaymentRejectsOverpayment() {
	w := postForm(s.router, "/finance/", url.Values{
		"record_payment": {""},
		"order_id":       {fmt.Sprint(s.order.ID)},
		"paid_amount":    {"150"},
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Paid amount cannot exceed total invoice amount ($100.00).", decode(s.T(), w).Error.Message)

	invoices := s.invoices()
	s.Require().Len(invoices, 1)
	s.Equal(s.invoice.ID, invoices[0].ID)
	s.True(invoices[0].Amount.Equal(decimal.NewFromInt(40)))
}

func (s *FinanceControllerSuite) TestEditAndDeleteInvoice() {
	w := postForm(s.router, "/finance/", url.Values{
		"edit_invoice":   {""},
		"invoice_id":     {fmt.Sprint(s.invoice.ID)},
		"amount":         {"55"},
		"payment_method": {"wire"},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("Invoice updated successfully.", decode(s.T(), w).Notices[0].Message)

	invoices := s.invoices()
	s.True(invoices[0].Amount.Equal(decimal.NewFromInt(55)))
	s.Equal(models.PaymentMethodCash, invoices[0].PaymentMethod)

	w = postForm(s.router, "/finance/", url.Values{"delete_invoice": {""}, "invoice_id": {fmt.Sprint(s.invoice.ID)}})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Empty(s.invoices())

	w = postForm(s.router, "/finance/", url.Values{"delete_invoice": {""}, "invoice_id": {fmt.Sprint(s.invoice.ID)}})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *FinanceControllerSuite) TestUnknownAction() {
	w := postForm(s.router, "/finance/", url.Values{"order_id": {"1"}})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *FinanceControllerSuite) TestViewInvoice() {
	path := fmt.Sprintf("/finance/invoice/%d/", s.invoice.ID)
	bank := services.BankDetailsFor(s.invoice.ID)

	var data struct {
		Number  string `json:"invoice_number"`
		Invoice struct {
			Bank      services.BankDetails `json:"bank"`
			TotalPaid decimal.Decimal      `json:"total_paid"`
			Remaining decimal.Decimal      `json:"remaining"`
		} `json:"invoice"`
	}
	w := get(s.router, path)
	s.Require().Equal(http.StatusOK, w.Code)
	decodeData(s.T(), w, &data)
	s.Equal(fmt.Sprintf("INV-%d", s.invoice.ID), data.Number)
	s.Equal(bank, data.Invoice.Bank)
	s.True(data.Invoice.TotalPaid.Equal(decimal.NewFromInt(40)))
	s.True(data.Invoice.Remaining.Equal(decimal.NewFromInt(60)))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/html")
	s.Contains(w.Body.String(), bank.IBAN)

	w = get(s.router, "/finance/invoice/999/")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *FinanceControllerSuite) TestDownloadInvoicePDF() {
	renderer := &stubRenderer{pdf: []byte("%PDF-1.7 stub")}
	services.SetPDFRenderer(renderer)

	w := get(s.router, fmt.Sprintf("/finance/invoice/%d/pdf/", s.invoice.ID))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("application/pdf", w.Header().Get("Content-Type"))
	s.Equal(fmt.Sprintf(`attachment; filename="Invoice_INV-%d.pdf"`, s.invoice.ID), w.Header().Get("Content-Disposition"))
	s.Equal([]byte("%PDF-1.7 stub"), w.Body.Bytes())
	s.Contains(string(renderer.html), fmt.Sprintf("INV-%d", s.invoice.ID))
}

func (s *FinanceControllerSuite) TestDownloadInvoicePDFFailureRedirectsWithNotice() {
	services.SetPDFRenderer(&stubRenderer{err: &services.ExternalToolError{
		Code:    services.CodeRendererTimeout,
		Message: "PDF generation timed out.",
	}})

	w := get(s.router, fmt.Sprintf("/finance/invoice/%d/pdf/", s.invoice.ID))
	s.Require().Equal(http.StatusSeeOther, w.Code)
	s.Equal("/finance/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal("flash", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/finance/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal([]services.Notice{{Level: services.NoticeError, Message: "PDF generation timed out."}}, decode(s.T(), w).Notices)

	cleared := w.Result().Cookies()
	s.Require().Len(cleared, 1)
	s.Equal("flash", cleared[0].Name)
	s.Empty(cleared[0].Value)
}

func (s *FinanceControllerSuite) TestDownloadInvoicePDFWithoutRenderer() {
	services.SetPDFRenderer(nil)

	w := get(s.router, fmt.Sprintf("/finance/invoice/%d/pdf/", s.invoice.ID))
	s.Equal(http.StatusSeeOther, w.Code)
	s.Equal("/finance/", w.Header().Get("Location"))
}

func (s *FinanceControllerSuite) TestExport() {
	w := get(s.router, "/finance/export/")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(`attachment; filename="finance.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	s.Require().NoError(err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Finance")
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal([]string{"Order", "Client", "Total", "Paid", "Remaining", "Status"}, rows[0])
	s.Equal([]string{"ORD-0001", "Ali Khan", "100", "40", "60", services.ClassPartial}, rows[1])
}
