package sms

import (
	"context"
	"testing"

	"github.com/novadent/novadent_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	client, err := NewFromConfig(config.SMSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestNewFromConfig_EnabledWithoutAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:            "",
			ConfirmTemplateID: "tmpl",
		},
	}
	if _, err := NewFromConfig(cfg); err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestSendAppointmentConfirmation_DisabledClient(t *testing.T) {
	client := &Client{enabled: false}

	err := client.SendAppointmentConfirmation(context.Background(), "9876543210", "2025-03-01", "09:00")
	if err != nil {
		t.Errorf("Expected no error for disabled client, got: %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	client := &Client{enabled: true, region: "IN"}

	tests := []struct {
		name    string
		phone   string
		want    string
		wantErr bool
	}{
		{"national format", "9876543210", "+919876543210", false},
		{"already E.164", "+919876543210", "+919876543210", false},
		{"garbage", "not-a-phone", "", true},
		{"too short", "12", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.NormalizePhone(tt.phone)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizePhone(%q) expected error, got %q", tt.phone, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) failed: %v", tt.phone, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}
