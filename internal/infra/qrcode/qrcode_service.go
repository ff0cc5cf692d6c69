package qrcode

import (
	"fmt"
	"net/url"
	"strings"

	"mlm/config"
	"mlm/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

const (
	defaultSize    = 256
	defaultBaseURL = "http://localhost:3000"
	signupPath     = "/signup"
	referralParam  = "ref"
)

type referralQRService struct {
	baseURL              string
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// New builds the referral QR service from configuration.
func New(cfg *config.Config) service.ReferralQRService {
	qr := cfg.QRCode
	if qr == nil {
		qr = &config.QRCodeConfig{}
	}

	return NewReferralQRService(qr.BaseURL, qr.Size, qr.ErrorCorrectionLevel)
}

// NewReferralQRService creates a new referral QR service instance
func NewReferralQRService(baseURL string, size int, errorCorrectionLevel string) service.ReferralQRService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &referralQRService{
		baseURL:              strings.TrimRight(baseURL, "/"),
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// ReferralLink returns {baseUrl}/signup?ref={code}.
func (s *referralQRService) ReferralLink(code string) string {
	query := url.Values{referralParam: []string{code}}

	return s.baseURL + signupPath + "?" + query.Encode()
}

// GenerateReferralQR renders the signup link of a referral code as PNG
func (s *referralQRService) GenerateReferralQR(code string) ([]byte, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("referral code is required")
	}

	qrCode, err := qrcode.New(s.ReferralLink(code), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseReferralLink extracts the referral code from a scanned signup link
func (s *referralQRService) ParseReferralLink(link string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", fmt.Errorf("failed to parse referral link: %w", err)
	}

	if !strings.HasSuffix(strings.TrimRight(parsed.Path, "/"), signupPath) {
		return "", fmt.Errorf("invalid referral link path: %s", parsed.Path)
	}

	code := strings.TrimSpace(parsed.Query().Get(referralParam))
	if code == "" {
		return "", fmt.Errorf("referral link has no %s parameter", referralParam)
	}

	return code, nil
}
