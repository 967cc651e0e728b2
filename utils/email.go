// utils/email.go
package utils

import (
	"fmt"
	"os"
	"strings"

	"go-storefront/models"

	"github.com/keighl/postmark"
)

// EmailService handles sending transactional emails using Postmark.
type EmailService struct {
	client *postmark.Client
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		panic("POSTMARK_API_TOKEN is not set in environment variables")
	}
	client := postmark.NewClient(apiToken, "")
	return &EmailService{
		client: client,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     os.Getenv("EMAIL_SENDER"),
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("http://localhost:%s/verify?token=%s", os.Getenv("PORT"), token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation after checkout.
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	subject := "Order Confirmation"

	var lines []string
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("%s x %d - $%s", item.ProductName, item.Quantity, item.Price.MulInt(item.Quantity).StringFixed(2)))
	}

	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed and is now being processed.<br><br>%s<br><br>Total: <strong>$%s</strong><br><br>You can track your order status from your account at any time.",
		order.CustomerName,
		order.ID.Hex(),
		strings.Join(lines, "<br>"),
		order.Total.StringFixed(2),
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendStatusUpdateEmail notifies the customer after an admin changes
// the order status.
func (es *EmailService) SendStatusUpdateEmail(toEmail string, order models.Order) error {
	subject := "Order Status Updated"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order (ID: %s) status has been updated to '<strong>%s</strong>'.<br><br>Thank you for shopping with us!",
		order.CustomerName,
		order.ID.Hex(),
		order.Status,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}
