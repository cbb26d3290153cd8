package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/FreightDesk/freight-desk-backend/config"
	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

// EmailSender is the outbound mail surface the intake and pricing flows
// depend on. Split from EmailService so tests can capture sends without a
// Resend key.
type EmailSender interface {
	SendClarificationEmail(ctx context.Context, data types.EmailData) error
	SendQuoteEmail(ctx context.Context, data types.EmailData) error
}

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

type EmailService struct {
	config  *config.EmailConfig
	client  *resend.Client
	metrics *EmailMetrics
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service", "from", cfg.FromAddress)
	client := resend.NewClient(cfg.ResendAPIKey)
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "freightdesk_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "freightdesk_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "freightdesk_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailService{
		config:  cfg,
		client:  client,
		metrics: metrics,
	}
}

// SendClarificationEmail asks a shipper for the fields blocking their load.
// Required template data: Intro, Items (field descriptions), LoadRef.
func (s *EmailService) SendClarificationEmail(ctx context.Context, data types.EmailData) error {
	return s.send(ctx, "clarification", clarificationEmailTemplate,
		[]string{"Intro", "Items", "LoadRef"}, data)
}

// SendQuoteEmail delivers a priced quote to the shipper. Required template
// data: Origin, Destination, Equipment, TotalMiles, QuotedRate, Linehaul,
// FuelSurcharge.
func (s *EmailService) SendQuoteEmail(ctx context.Context, data types.EmailData) error {
	return s.send(ctx, "quote", quoteEmailTemplate,
		[]string{"Origin", "Destination", "Equipment", "TotalMiles", "QuotedRate", "Linehaul", "FuelSurcharge"}, data)
}

func (s *EmailService) send(ctx context.Context, name, templateBody string, requiredFields []string, data types.EmailData) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	for _, field := range requiredFields {
		if _, ok := data.TemplateData[field]; !ok {
			s.metrics.errorCount.Inc()
			err := fmt.Errorf("missing required template field: %s", field)
			log.Errorw("Invalid template data", "template", name, "error", err)
			return err
		}
	}

	tmpl, err := template.New(name).Parse(templateBody)
	if err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to parse email template", "template", name, "error", err)
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var htmlContent bytes.Buffer
	if err := tmpl.Execute(&htmlContent, data.TemplateData); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "template", name, "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{data.To},
		Subject: data.Subject,
		Html:    htmlContent.String(),
	}

	_, err = s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", logger.MaskEmail(data.To),
			"subject", data.Subject)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Email sent successfully",
		"to", logger.MaskEmail(data.To),
		"subject", data.Subject)

	return nil
}

// Template constants
const clarificationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Additional Information Needed</title>
    <style>
        body {
            font-family: 'sans-serif';
            background-color: #f7f7f7;
            color: #333333;
            margin: 0;
            padding: 20px;
        }
        .container {
            max-width: 600px;
            margin: 20px auto;
            background-color: #ffffff;
            padding: 30px;
            border-radius: 12px;
            box-shadow: 0 4px 8px rgba(0, 0, 0, 0.05);
        }
        h1 {
            color: #1A5E9A;
            font-size: 24px;
            margin-bottom: 20px;
        }
        p {
            font-size: 16px;
            line-height: 1.6;
        }
        ul {
            font-size: 16px;
            line-height: 1.8;
        }
        .footer {
            margin-top: 25px;
            font-size: 13px;
            color: #777777;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Additional Information Needed</h1>
        <p>{{.Intro}}</p>
        <ul>
        {{range .Items}}<li>{{.}}</li>
        {{end}}</ul>
        <p>Simply reply to this email with the details above and we'll get your load moving.</p>
        <p class="footer">Reference: {{.LoadRef}}</p>
    </div>
</body>
</html>`

const quoteEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Your Freight Quote</title>
    <style>
        body {
            font-family: 'sans-serif';
            background-color: #f7f7f7;
            color: #333333;
            margin: 0;
            padding: 20px;
        }
        .container {
            max-width: 600px;
            margin: 20px auto;
            background-color: #ffffff;
            padding: 30px;
            border-radius: 12px;
            box-shadow: 0 4px 8px rgba(0, 0, 0, 0.05);
        }
        h1 {
            color: #1A5E9A;
            font-size: 24px;
        }
        .rate {
            font-size: 28px;
            font-weight: bold;
            color: #1A5E9A;
            margin: 20px 0;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            font-size: 15px;
        }
        td {
            padding: 6px 0;
            border-bottom: 1px solid #eeeeee;
        }
        .footer {
            margin-top: 25px;
            font-size: 13px;
            color: #777777;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Your Freight Quote</h1>
        <p>Thank you for your freight quote request. We're pleased to provide the following rate:</p>
        <table>
            <tr><td>Origin</td><td>{{.Origin}}</td></tr>
            <tr><td>Destination</td><td>{{.Destination}}</td></tr>
            <tr><td>Equipment</td><td>{{.Equipment}}</td></tr>
            <tr><td>Distance</td><td>{{.TotalMiles}} miles</td></tr>
        </table>
        <p class="rate">QUOTED RATE: ${{.QuotedRate}}</p>
        <p>This all-inclusive rate includes:</p>
        <table>
            <tr><td>Linehaul</td><td>${{.Linehaul}}</td></tr>
            <tr><td>Fuel Surcharge</td><td>${{.FuelSurcharge}}</td></tr>
            {{range $name, $amount := .Accessorials}}<tr><td>{{$name}}</td><td>${{$amount}}</td></tr>
            {{end}}</table>
        <p>Rate is valid for 24 hours and subject to carrier availability. Ready to book? Simply reply to this email.</p>
        <p class="footer">Quote generated by FreightDesk</p>
    </div>
</body>
</html>`
