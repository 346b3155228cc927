package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/kendall-kelly/mill-ops-console/models"
)

//go:embed templates/invoice.html.tmpl
var templateFS embed.FS

var invoiceTemplate = template.Must(template.ParseFS(templateFS, "templates/invoice.html.tmpl"))

// BankDetails is the account printed on an invoice
type BankDetails struct {
	Name string `json:"bank_name"`
	IBAN string `json:"iban"`
}

var bankDirectory = []BankDetails{
	{Name: "Global Trust Bank", IBAN: "DE89370400440532013000"},
	{Name: "Penta Financial Services", IBAN: "FR1420041010050500013M02606"},
	{Name: "Horizon Capital Bank", IBAN: "GB29NWBK60161331926819"},
	{Name: "Summit National Bank", IBAN: "IT60X0542811101000000123456"},
	{Name: "Vertex Banking, Ltd.", IBAN: "ES9121000418450200051332"},
}

// BankDetailsFor picks the bank account for an invoice. The same id always gets the same account.
func BankDetailsFor(invoiceID uint) BankDetails {
	return bankDirectory[invoiceID%uint(len(bankDirectory))]
}

// InvoiceDocument is everything an invoice view or PDF shows
type InvoiceDocument struct {
	Invoice models.Invoice `json:"invoice"`
	Order   models.Order   `json:"order"`
	Balance
	Bank BankDetails `json:"bank"`
}

// Number is the printed invoice number
func (d *InvoiceDocument) Number() string {
	return fmt.Sprintf("INV-%d", d.Invoice.ID)
}

// PDFFilename is the attachment name of the rendered PDF
func (d *InvoiceDocument) PDFFilename() string {
	return fmt.Sprintf("Invoice_%s.pdf", d.Number())
}

// Document gathers an invoice, its order and client, the order balance and the bank account
func (s *FinanceService) Document(ctx context.Context, invoiceID uint) (*InvoiceDocument, error) {
	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	order, err := s.findOrder(ctx, invoice.OrderID)
	if err != nil {
		return nil, err
	}

	return &InvoiceDocument{
		Invoice: *invoice,
		Order:   *order,
		Balance: ComputeBalance(order.Payment, order.Invoices),
		Bank:    BankDetailsFor(invoice.ID),
	}, nil
}

type invoiceView struct {
	Number        string
	IssuedOn      string
	ClientName    string
	ClientCode    string
	ClientCompany string
	ClientEmail   string
	OrderCode     string
	FabricType    string
	Quantity      string
	Status        string
	OrderTotal    string
	PaymentMethod string
	Amount        string
	TotalPaid     string
	Remaining     string
	BankName      string
	IBAN          string
}

// RenderInvoiceHTML renders the invoice page shared by the HTML view and the PDF export
func RenderInvoiceHTML(doc *InvoiceDocument) ([]byte, error) {
	view := invoiceView{
		Number:        doc.Number(),
		IssuedOn:      doc.Invoice.CreatedAt.Format("January 2, 2006"),
		ClientName:    doc.Order.Client.Name,
		ClientCode:    doc.Order.Client.DisplayCode(),
		ClientCompany: doc.Order.Client.Company,
		ClientEmail:   doc.Order.Client.Email,
		OrderCode:     doc.Order.OrderCode,
		FabricType:    doc.Order.FabricType,
		Quantity:      strconv.Itoa(doc.Order.Quantity),
		Status:        humanize(doc.Order.Status),
		OrderTotal:    money(doc.Order.Payment),
		PaymentMethod: humanize(doc.Invoice.PaymentMethod),
		Amount:        money(doc.Invoice.Amount),
		TotalPaid:     money(doc.TotalPaid),
		Remaining:     money(doc.Remaining),
		BankName:      doc.Bank.Name,
		IBAN:          doc.Bank.IBAN,
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

// humanize turns a snake_case code into "Title case" text
func humanize(code string) string {
	s := strings.ReplaceAll(code, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
