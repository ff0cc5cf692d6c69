package service

import (
	"context"

	"github.com/google/uuid"
)

// ProofUpload is a payment proof file received from a customer.
type ProofUpload struct {
	UserID      uuid.UUID
	Filename    string
	ContentType string
	Data        []byte
}

// ProofStorage keeps payment-proof files and hands back an opaque reference.
// The core never inspects the content again.
type ProofStorage interface {
	// Upload stores the file and returns its reference URL.
	Upload(ctx context.Context, upload *ProofUpload) (string, error)

	// Close releases the underlying bucket.
	Close() error
}

// ReferralQRService renders and parses referral links.
type ReferralQRService interface {
	// GenerateReferralQR renders a PNG QR code for the signup link of a referral code.
	GenerateReferralQR(code string) ([]byte, error)

	// ReferralLink returns the signup link a QR code points to.
	ReferralLink(code string) string

	// ParseReferralLink extracts the referral code from a signup link.
	ParseReferralLink(link string) (string, error)
}
