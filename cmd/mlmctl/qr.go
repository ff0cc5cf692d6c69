package main

import (
	"fmt"
	"os"

	"mlm/config"
	"mlm/internal/infra/qrcode"

	"github.com/pkg/errors"
)

func writeReferralQR(cfg *config.Config, code, output string) error {
	qr := qrcode.New(cfg)

	png, err := qr.GenerateReferralQR(code)
	if err != nil {
		return errors.Wrap(err, "failed to render referral QR")
	}

	if err := os.WriteFile(output, png, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", output)
	}

	fmt.Printf("%s -> %s\n", qr.ReferralLink(code), output)

	return nil
}
