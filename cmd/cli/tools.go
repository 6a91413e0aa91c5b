package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/and161185/mobicure/internal/scoring"
	"github.com/and161185/mobicure/internal/service"
)

type toolCmd func(ts *service.ToolsService, args []string) error

var toolCommands = map[string]toolCmd{
	"gen-password":  cmdGenPassword,
	"strength":      cmdStrength,
	"risk":          cmdRisk,
	"fake-identity": cmdFakeIdentity,
	"mask-email":    cmdMaskEmail,
	"breaches":      cmdBreaches,
	"json":          cmdFormatJSON,
	"qr":            cmdQR,
}

func bandString(b scoring.Band) string {
	switch b {
	case scoring.BandStrong:
		return color.GreenString(string(b))
	case scoring.BandMedium:
		return color.YellowString(string(b))
	}
	return color.RedString(string(b))
}

func levelString(l scoring.Level) string {
	switch l {
	case scoring.LevelLow:
		return color.GreenString(string(l))
	case scoring.LevelMedium:
		return color.YellowString(string(l))
	}
	return color.RedString(string(l))
}

func mark(ok bool) string {
	if ok {
		return color.GreenString("✓")
	}
	return color.RedString("✗")
}

func cmdGenPassword(ts *service.ToolsService, args []string) error {
	fs := flag.NewFlagSet("gen-password", flag.ContinueOnError)
	length := fs.Int("length", 0, "length (default 16)")
	symbols := fs.Bool("symbols", true, "include symbols")
	numbers := fs.Bool("numbers", true, "include digits")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pw, err := ts.GeneratePassword(*length, *symbols, *numbers)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, pw)
	return nil
}

// cmdStrength rates a password given by flag or typed at a hidden prompt.
func cmdStrength(ts *service.ToolsService, args []string) error {
	fs := flag.NewFlagSet("strength", flag.ContinueOnError)
	pw := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pw == "" {
		s, err := promptSecret("Password: ")
		if err != nil {
			return err
		}
		*pw = s
	}
	st := ts.ScorePassword(*pw)
	fmt.Fprintf(stdout, "score: %d/%d %s\n", st.Score, len(scoring.Criteria), bandString(st.Band()))
	for _, c := range scoring.Criteria {
		fmt.Fprintf(stdout, "  %s %s\n", mark(st.Satisfied[c]), c)
	}
	return nil
}

// cmdRisk scores the privacy questionnaire.
func cmdRisk(ts *service.ToolsService, args []string) error {
	fs := flag.NewFlagSet("risk", flag.ContinueOnError)
	var f scoring.RiskFactors
	fs.BoolVar(&f.HasTwoFactor, "2fa", false, "two-factor authentication is enabled")
	fs.IntVar(&f.WeakPasswordCount, "weak-passwords", 0, "number of weak passwords")
	fs.BoolVar(&f.UsesPublicWifi, "public-wifi", false, "uses public Wi-Fi")
	fs.IntVar(&f.SocialMediaAccountCount, "social-media", 0, "number of social media accounts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r := ts.ScoreRisk(f)
	fmt.Fprintf(stdout, "risk score: %d (%s)\n", r.Score, levelString(scoring.RiskLevel(r.Score)))
	for _, reason := range r.Reasons {
		fmt.Fprintf(stdout, "  %s %s\n", color.YellowString("!"), reason)
	}
	return nil
}

func cmdFakeIdentity(ts *service.ToolsService, _ []string) error {
	printJSON(ts.FakeIdentity())
	return nil
}

func cmdMaskEmail(ts *service.ToolsService, _ []string) error {
	fmt.Fprintln(stdout, ts.MaskedEmail())
	return nil
}

// cmdBreaches runs the simulated breach lookup.
func cmdBreaches(ts *service.ToolsService, args []string) error {
	fs := flag.NewFlagSet("breaches", flag.ContinueOnError)
	email := fs.String("email", "", "email to check")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !strings.Contains(*email, "@") {
		return errors.New("need -email")
	}
	found := ts.CheckBreaches(*email)
	if len(found) == 0 {
		fmt.Fprintln(stdout, mark(true), "no known breaches")
		return nil
	}
	for _, b := range found {
		fmt.Fprintf(stdout, "%s %s (%d) %s records\n", mark(false), b.Name, b.Year, b.Records)
	}
	return nil
}

// cmdFormatJSON re-indents JSON read from a file or stdin.
func cmdFormatJSON(ts *service.ToolsService, args []string) error {
	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	file := fs.String("file", "-", "input file ('-'=stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	b, err := readAll(*file)
	if err != nil {
		return err
	}
	out, err := ts.FormatJSON(string(b))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}

func cmdQR(ts *service.ToolsService, args []string) error {
	fs := flag.NewFlagSet("qr", flag.ContinueOnError)
	text := fs.String("text", "", "text to encode")
	size := fs.Int("size", 0, "image size in pixels (default 200)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := ts.QRCode(*text, *size)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, u)
	return nil
}
