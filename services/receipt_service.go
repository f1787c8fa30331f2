package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/kelechi684/home_fix/configs"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
)

// GenerateSettlementReceipt renders a PDF receipt for a confirmed commission
// payment and uploads it. Best-effort: the settlement itself is already
// committed, a failure here only costs the provider a downloadable receipt.
func GenerateSettlementReceipt(payment models.CommissionPayment) {
	var existing models.SettlementReceipt
	if err := database.DB.Where("commission_payment_id = ?", payment.ID).First(&existing).Error; err == nil {
		return
	}

	var provider models.Provider
	if err := database.DB.Preload("User").First(&provider, "user_id = ?", payment.ProviderID).Error; err != nil {
		log.Printf("🔥 Failed to load provider %s for receipt: %v", payment.ProviderID, err)
		return
	}

	htmlData, err := generateReceiptHTML(&provider, &payment)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt HTML for settlement %s: %v", payment.Reference, err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF for settlement %s: %v", payment.Reference, err)
		return
	}

	uploadURL, err := uploadReceiptToCloudinary(pdfBytes, payment.Reference)
	if err != nil {
		log.Printf("🔥 Failed to upload receipt for settlement %s: %v", payment.Reference, err)
		return
	}

	receipt := models.SettlementReceipt{
		CommissionPaymentID: payment.ID,
		ProviderID:          payment.ProviderID,
		ReceiptURL:          uploadURL,
	}
	if err := database.DB.Create(&receipt).Error; err != nil {
		log.Printf("🔥 Failed to store receipt record for settlement %s: %v", payment.Reference, err)
		return
	}
	log.Printf("✅ Generated settlement receipt for %s", payment.Reference)
}

func generateReceiptHTML(provider *models.Provider, payment *models.CommissionPayment) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	paidAt := time.Now()
	if payment.PaidAt != nil {
		paidAt = *payment.PaidAt
	}

	data := struct {
		ProviderName     string
		Reference        string
		Amount           string
		Method           string
		TransactionCount int
		PaidAt           string
	}{
		ProviderName:     provider.User.FullName,
		Reference:        payment.Reference,
		Amount:           fmt.Sprintf("%.2f", payment.Amount),
		Method:           payment.Method,
		TransactionCount: len(payment.Transactions),
		PaidAt:           paidAt.Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceiptToCloudinary(fileBytes []byte, reference string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", reference, uuid.New().String()),
		Folder:       "home_fix_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
