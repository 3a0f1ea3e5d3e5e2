// Package sms sends appointment notifications via sms.ir templates.
package sms

import (
	"context"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"
	"github.com/nyaruka/phonenumbers"

	"github.com/novadent/novadent_backend/config"
)

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	client            *smsir.Client
	enabled           bool
	region            string
	confirmTemplateID string
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	region := cfg.Region
	if region == "" {
		region = "IN"
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	return &Client{
		client:            client,
		enabled:           true,
		region:            region,
		confirmTemplateID: cfg.SMSIR.ConfirmTemplateID,
	}, nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// SendAppointmentConfirmation notifies a patient of their (re)scheduled
// slot. The template needs "date" and "time" parameters. If SMS is
// disabled, this is a no-op and returns nil.
func (c *Client) SendAppointmentConfirmation(ctx context.Context, phone, date, timeSlot string) error {
	if !c.enabled {
		return nil
	}

	if phone == "" {
		return fmt.Errorf("phone number is required")
	}
	if c.confirmTemplateID == "" {
		return fmt.Errorf("confirmation template ID is required")
	}

	normalized, err := c.NormalizePhone(phone)
	if err != nil {
		return err
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     normalized,
		TemplateID: c.confirmTemplateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: "date", Value: date},
			{Key: "time", Value: timeSlot},
		},
	}

	_, err = c.client.Verification.UltraFastSend(ctx, req)
	if err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}

	return nil
}

// NormalizePhone parses a caller-supplied phone number against the clinic's
// default region and formats it as E.164.
func (c *Client) NormalizePhone(phone string) (string, error) {
	region := c.region
	if region == "" {
		region = "IN"
	}
	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("parse phone %q: %w", phone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", phone)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
