// Файл: pkg/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"
	"strings"

	"metrology-portal/pkg/config"

	"gopkg.in/gomail.v2"
)

// EquipmentLine — одна позиция оборудования в письме-напоминании.
type EquipmentLine struct {
	Name             string
	Type             string
	SerialNumber     string
	RegistryNumber   string
	NextVerification string
	Category         string
}

// ReminderPayload — контракт письма о приближающейся поверке:
// имя пользователя, адрес доставки и полный список его оборудования.
type ReminderPayload struct {
	UserName  string
	Email     string
	Equipment []EquipmentLine
}

type MailerInterface interface {
	SendVerificationReminder(ctx context.Context, payload ReminderPayload) error
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg config.SMTPConfig) MailerInterface {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

var categoryLabels = map[string]string{
	"verification": "Поверка",
	"calibration":  "Калибровка",
	"attestation":  "Аттестация",
}

func (m *Mailer) SendVerificationReminder(ctx context.Context, payload ReminderPayload) error {
	if payload.Email == "" {
		return fmt.Errorf("не указан адрес доставки письма")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", payload.Email)
	msg.SetHeader("Subject", "Напоминание: приближается срок поверки оборудования")
	msg.SetBody("text/html", renderReminderBody(payload))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("ошибка отправки письма на %s: %w", payload.Email, err)
	}
	return nil
}

func renderReminderBody(payload ReminderPayload) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<p>Здравствуйте, %s!</p>", payload.UserName))
	sb.WriteString("<p>В ближайшие две недели истекает срок поверки следующего оборудования:</p>")
	sb.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	sb.WriteString("<tr><th>Наименование</th><th>Тип</th><th>Заводской №</th><th>№ в госреестре</th><th>Дата поверки</th><th>Вид работ</th></tr>")

	for _, item := range payload.Equipment {
		category := item.Category
		if label, ok := categoryLabels[item.Category]; ok {
			category = label
		}
		sb.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			item.Name, item.Type, item.SerialNumber, item.RegistryNumber, item.NextVerification, category,
		))
	}

	sb.WriteString("</table>")
	sb.WriteString("<p>Оставить заявку на поверку можно в личном кабинете портала.</p>")

	return sb.String()
}
