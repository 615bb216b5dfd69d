package utils

import (
	"edupay/config"
	"fmt"
	"log"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends an HTML email through SendGrid. A missing API key turns
// sends into no-ops so local setups and tests stay offline.
func SendEmail(to string, subject string, htmlBody string) error {
	if config.AppConfig.SendGridApiKey == "" {
		log.Printf("[EMAIL] SendGrid key not configured, skipping email to %s", to)
		return nil
	}

	from := mail.NewEmail("EduPay", config.AppConfig.EmailSender)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridApiKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] Error sending email to %s: %v", to, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[EMAIL] SendGrid rejected email to %s: %d %s", to, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid rejected email: status %d", resp.StatusCode)
	}

	return nil
}

// SendReceiptEmail sends the purchase confirmation after a payment settles.
func SendReceiptEmail(to, courseTitle string, baseAmount, finalAmount int64, promoCode string) error {
	discountRow := ""
	if promoCode != "" && finalAmount < baseAmount {
		discountRow = fmt.Sprintf(
			`<p>Промокод <b>%s</b>: скидка %s ₽ (цена без скидки %s ₽)</p>`,
			promoCode, FormatRubles(baseAmount-finalAmount), FormatRubles(baseAmount),
		)
	}

	body := fmt.Sprintf(`
	<html>
	<body style="font-family: Arial, sans-serif; color: #1a1a2e;">
		<h2>Спасибо за покупку!</h2>
		<p>Вы приобрели: <b>%s</b></p>
		%s
		<p>Итого оплачено: <b>%s ₽</b></p>
		<p>Доступ к курсу уже открыт в вашем личном кабинете.</p>
	</body>
	</html>`, courseTitle, discountRow, FormatRubles(finalAmount))

	return SendEmail(to, "Оплата прошла успешно", body)
}

// FormatRubles renders minor units as "1699.00".
func FormatRubles(minorUnits int64) string {
	return fmt.Sprintf("%d.%02d", minorUnits/100, minorUnits%100)
}
