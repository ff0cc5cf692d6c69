package main

import (
	"flag"
	"fmt"
	"os"

	"mlm/config"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - token: Issue an access token for local testing
// - qr:    Render the referral QR code of a code to a PNG file

func main() {
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	qrCmd := flag.NewFlagSet("qr", flag.ExitOnError)

	tokenUser := tokenCmd.String("user", "", "User id (uuid); a random one when empty")
	tokenRole := tokenCmd.String("role", "customer", "Role claim (customer or admin)")

	qrCode := qrCmd.String("code", "", "Referral code")
	qrOutput := qrCmd.String("output", "referral.png", "Output PNG file")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	flags := ctlFlags{
		Token: tokenFlags{
			cmd:  tokenCmd,
			user: tokenUser,
			role: tokenRole,
		},
		QR: qrFlags{
			cmd:    qrCmd,
			code:   qrCode,
			output: qrOutput,
		},
	}

	if err := runSubcommand(&flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type ctlFlags struct {
	Token tokenFlags
	QR    qrFlags
}

type tokenFlags struct {
	cmd  *flag.FlagSet
	user *string
	role *string
}

type qrFlags struct {
	cmd    *flag.FlagSet
	code   *string
	output *string
}

func runSubcommand(flags *ctlFlags) error {
	switch os.Args[1] {
	case "token":
		return handleToken(flags)
	case "qr":
		return handleQR(flags)
	default:
		printUsage()

		return errors.New("unknown subcommand")
	}
}

func handleToken(flags *ctlFlags) error {
	if err := flags.Token.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrap(err, "failed to parse token flags")
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	token, userID, err := issueToken(cfg, *flags.Token.user, *flags.Token.role)
	if err != nil {
		return err
	}

	fmt.Printf("user: %s\n", userID)
	fmt.Println(token)

	return nil
}

func handleQR(flags *ctlFlags) error {
	if err := flags.QR.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrap(err, "failed to parse qr flags")
	}

	if *flags.QR.code == "" {
		return errors.New("--code flag is required for qr command")
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	return writeReferralQR(cfg, *flags.QR.code, *flags.QR.output)
}

func printUsage() {
	fmt.Println("Usage: mlmctl <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  token    Issue an access token signed with the configured secret")
	fmt.Println("  qr       Render a referral QR code to a PNG file")
	fmt.Println("")
	fmt.Println("Use 'mlmctl <command> -h' for more information about a command.")
}
