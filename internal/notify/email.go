package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"mathclash/internal/config"
	"mathclash/internal/models"
)

// EmailService sends operational notifications via Amazon SES: the daily
// top digest and the monthly prize announcement, both addressed to the
// configured admin.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	adminEmail string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. If SES_FROM_EMAIL is not
// configured the service is created disabled and all sends become no-ops.
func NewEmailService(cfg *config.Config) (*EmailService, error) {
	debug := cfg.Debug()
	if cfg.SESFromEmail == "" || cfg.AdminEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL or ADMIN_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", cfg.SESFromEmail, cfg.AWSRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(awsCfg),
		fromEmail:  cfg.SESFromEmail,
		fromName:   cfg.SESFromName,
		adminEmail: cfg.AdminEmail,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendDailyDigest mails the admin the daily leaderboard snapshot.
func (s *EmailService) SendDailyDigest(ctx context.Context, day time.Time, entries []models.DailyEntry) error {
	if !s.enabled {
		log.Println("Skipping email send (service disabled): daily digest")
		return nil
	}

	subject := fmt.Sprintf("Daily top for %s", day.Format("2006-01-02"))

	var lines []string
	if len(entries) == 0 {
		lines = append(lines, "No activity recorded today.")
	}
	for i, e := range entries {
		name := e.DisplayName
		if name == "" {
			name = e.Username
		}
		lines = append(lines, fmt.Sprintf("%d. %s — %d points", i+1, name, e.Points))
	}
	textBody := fmt.Sprintf("Daily top for %s\n\n%s\n", day.Format("2006-01-02"), strings.Join(lines, "\n"))

	return s.sendEmail(ctx, s.adminEmail, subject, textBody)
}

// SendPrizeAnnouncement mails the admin the monthly winner.
func (s *EmailService) SendPrizeAnnouncement(ctx context.Context, month time.Time, winner models.RatingEntry) error {
	if !s.enabled {
		log.Println("Skipping email send (service disabled): prize announcement")
		return nil
	}

	name := winner.DisplayName
	if name == "" {
		name = winner.Username
	}
	subject := fmt.Sprintf("Monthly winner for %s", month.Format("January 2006"))
	textBody := fmt.Sprintf("Winner for %s: %s with %d points (%d/%d correct, %.1f%% accuracy).\n",
		month.Format("January 2006"), name, winner.TotalPoints,
		winner.TotalCorrect, winner.TotalAttempts, winner.Accuracy)

	return s.sendEmail(ctx, s.adminEmail, subject, textBody)
}

// sendEmail sends a plain-text email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending email: to=%s, subject=%s", toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
