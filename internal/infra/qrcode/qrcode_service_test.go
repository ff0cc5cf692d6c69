package qrcode

import (
	"testing"

	"mlm/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReferralQRService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewReferralQRService("https://shop.example.com", tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestNew_NilQRCodeConfig(t *testing.T) {
	service := New(&config.Config{})

	assert.Equal(t, "http://localhost:3000/signup?ref=ABC123", service.ReferralLink("ABC123"))
}

func TestReferralQRService_ReferralLink(t *testing.T) {
	service := NewReferralQRService("https://shop.example.com/", 256, "M")

	assert.Equal(t, "https://shop.example.com/signup?ref=ABC123", service.ReferralLink("ABC123"))
	assert.Equal(t, "https://shop.example.com/signup?ref=a+b%26c", service.ReferralLink("a b&c"))
}

func TestReferralQRService_GenerateReferralQR(t *testing.T) {
	service := NewReferralQRService("https://shop.example.com", 256, "M")

	qrBytes, err := service.GenerateReferralQR("ABC123")
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)

	// PNG magic number
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, qrBytes[:4])
}

func TestReferralQRService_GenerateReferralQR_DifferentSizes(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Small QR", 128},
		{"Medium QR", 256},
		{"Large QR", 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewReferralQRService("https://shop.example.com", tt.size, "M")

			qrBytes, err := service.GenerateReferralQR("ABC123")
			require.NoError(t, err)
			assert.NotEmpty(t, qrBytes)
		})
	}
}

func TestReferralQRService_GenerateReferralQR_EmptyCode(t *testing.T) {
	service := NewReferralQRService("https://shop.example.com", 256, "M")

	_, err := service.GenerateReferralQR("  ")
	assert.ErrorContains(t, err, "referral code is required")
}

func TestReferralQRService_ParseReferralLink(t *testing.T) {
	service := NewReferralQRService("https://shop.example.com", 256, "M")

	tests := []struct {
		name    string
		link    string
		want    string
		wantErr string
	}{
		{name: "generated link", link: service.ReferralLink("ABC123"), want: "ABC123"},
		{name: "trailing slash", link: "https://other.example.com/signup/?ref=XYZ", want: "XYZ"},
		{name: "escaped code", link: "https://shop.example.com/signup?ref=a+b%26c", want: "a b&c"},
		{name: "wrong path", link: "https://shop.example.com/login?ref=ABC123", wantErr: "invalid referral link path"},
		{name: "missing code", link: "https://shop.example.com/signup", wantErr: "no ref parameter"},
		{name: "unparseable", link: "://bad", wantErr: "failed to parse referral link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := service.ParseReferralLink(tt.link)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}
