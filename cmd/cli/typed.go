// cmd/cli/typed.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/term"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/mobicure/internal/backup"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/scoring"
	grpcserver "github.com/and161185/mobicure/internal/server/grpc"
	"github.com/and161185/mobicure/internal/service"
	"github.com/and161185/mobicure/internal/tools"
)

type remoteCmd func(ctx context.Context, r remote, args []string) error

var remoteCommands = map[string]remoteCmd{
	"login":        cmdLogin,
	"logout":       cmdLogout,
	"list":         cmdList,
	"show":         cmdShow,
	"add-password": cmdAddPassword,
	"add-note":     cmdAddNote,
	"add-card":     cmdAddCard,
	"add-identity": cmdAddIdentity,
	"edit":         cmdEdit,
	"rm":           cmdRemove,
	"export":       cmdExport,
	"clear":        cmdClear,
	"settings":     cmdSettings,
	"set":          cmdSet,
	"status":       cmdStatus,
}

// ------- generic helpers -------

var readPassword = term.ReadPassword

func promptSecret(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// tokenExpiry reads exp from an access token without verifying it.
func tokenExpiry(tok string, fallback time.Time) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil || claims.ExpiresAt == nil {
		return fallback
	}
	return claims.ExpiresAt.Time
}

func listRecords(ctx context.Context, cli *grpcserver.Client) ([]model.Record, error) {
	var resp struct {
		Records []model.Record `json:"records"`
	}
	if err := cli.Call(ctx, "ListRecords", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

func findRecord(ctx context.Context, cli *grpcserver.Client, id string) (model.Record, error) {
	recs, err := listRecords(ctx, cli)
	if err != nil {
		return model.Record{}, err
	}
	for _, r := range recs {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Record{}, fmt.Errorf("record %s not found", id)
}

func addRecord(ctx context.Context, r remote, kind model.Kind, title string, payload model.Payload) (model.Record, error) {
	cli, done, err := r(true)
	if err != nil {
		return model.Record{}, err
	}
	defer done()
	var resp struct {
		Record model.Record `json:"record"`
	}
	req := map[string]any{"kind": kind, "title": title, "payload": payload}
	if err := cli.Call(ctx, "AddRecord", req, &resp); err != nil {
		return model.Record{}, err
	}
	fmt.Fprintf(stdout, "added %s %s\n", resp.Record.Kind, resp.Record.ID)
	return resp.Record, nil
}

// masked hides secrets of password and card payloads.
func masked(rec model.Record) model.Record {
	switch p := rec.Payload.(type) {
	case model.PasswordPayload:
		p.Secret = tools.MaskSecret(p.Secret)
		rec.Payload = p
	case model.CardPayload:
		p.Number = tools.MaskCardNumber(p.Number)
		rec.Payload = p
	}
	return rec
}

// ------- validators -------

var reMMYY = regexp.MustCompile(`^\d{2}/\d{2}$`)

func validExp(mmyy string) bool { return reMMYY.MatchString(mmyy) }

func luhn(num string) bool {
	if num == "" {
		return false
	}
	sum, alt := 0, false
	for i := len(num) - 1; i >= 0; i-- {
		c := int(num[i]) - '0'
		if c < 0 || c > 9 {
			return false
		}
		if alt {
			c *= 2
			if c > 9 {
				c -= 9
			}
		}
		sum += c
		alt = !alt
	}
	return sum%10 == 0
}

// parseValue turns "true"/"false" into booleans and keeps anything else as a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// ------- session -------

// cmdLogin signs in and saves the access token.
func cmdLogin(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email")
	name := fs.String("name", "", "display name (defaults to the part before @)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("need -email")
	}

	cli, done, err := r(false)
	if err != nil {
		return err
	}
	defer done()

	var resp struct {
		AccessToken string     `json:"accessToken"`
		User        model.User `json:"user"`
	}
	if err := cli.Call(ctx, "SignIn", map[string]string{"email": *email, "name": *name}, &resp); err != nil {
		return err
	}
	if err := saveToken(resp.AccessToken, tokenExpiry(resp.AccessToken, time.Now().Add(15*time.Minute))); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "signed in as %s <%s>\n", resp.User.Name, resp.User.Email)
	return nil
}

// cmdLogout ends the session on the server and forgets the local token.
func cmdLogout(ctx context.Context, r remote, _ []string) error {
	if cli, done, err := r(true); err == nil {
		defer done()
		if err := cli.Call(ctx, "SignOut", nil, nil); err != nil && status.Code(err) != codes.Unauthenticated {
			return err
		}
	}
	if err := dropToken(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "signed out")
	return nil
}

// ------- vault -------

// cmdList prints id, kind, title and creation time of every record.
func cmdList(ctx context.Context, r remote, _ []string) error {
	cli, done, err := r(true)
	if err != nil {
		return err
	}
	defer done()

	recs, err := listRecords(ctx, cli)
	if err != nil {
		return err
	}
	type row struct{ ID, Kind, Title, CreatedAt string }
	rows := []row{}
	for _, rec := range recs {
		rows = append(rows, row{
			ID:        rec.ID,
			Kind:      string(rec.Kind),
			Title:     rec.Title,
			CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	printJSON(rows)
	return nil
}

// cmdShow prints one record; secrets stay masked unless -reveal is set.
func cmdShow(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.String("id", "", "record id")
	reveal := fs.Bool("reveal", false, "print secrets in clear")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("need -id")
	}

	cli, done, err := r(true)
	if err != nil {
		return err
	}
	defer done()

	rec, err := findRecord(ctx, cli, *id)
	if err != nil {
		return err
	}
	if !*reveal {
		rec = masked(rec)
	}
	printJSON(rec)
	return nil
}

// cmdAddPassword stores site credentials. The secret is prompted for unless given or generated.
func cmdAddPassword(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("add-password", flag.ContinueOnError)
	title := fs.String("title", "", "title")
	user := fs.String("username", "", "username")
	site := fs.String("website", "", "website")
	pass := fs.String("password", "", "password (prompted when empty)")
	gen := fs.Bool("generate", false, "generate a random password")
	length := fs.Int("length", 0, "generated password length")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" || *user == "" {
		return errors.New("need -title and -username")
	}

	switch {
	case *gen:
		pw, err := service.NewToolsService(nil).GeneratePassword(*length, true, true)
		if err != nil {
			return err
		}
		*pass = pw
		fmt.Fprintf(stdout, "generated password: %s\n", pw)
	case *pass == "":
		pw, err := promptSecret("Password: ")
		if err != nil {
			return err
		}
		*pass = pw
	}

	rec, err := addRecord(ctx, r, model.KindPassword, *title, model.PasswordPayload{Username: *user, Secret: *pass, Site: *site})
	if err != nil {
		return err
	}
	if p, ok := rec.Payload.(model.PasswordPayload); ok {
		fmt.Fprintf(stdout, "strength: %s\n", bandString(service.NewToolsService(nil).ScorePassword(p.Secret).Band()))
	}
	return nil
}

// cmdAddNote stores free text from -text or a file.
func cmdAddNote(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("add-note", flag.ContinueOnError)
	title := fs.String("title", "", "title")
	text := fs.String("text", "", "text")
	file := fs.String("file", "", "read text from file ('-'=stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return errors.New("need -title")
	}
	if *file != "" {
		b, err := readAll(*file)
		if err != nil {
			return err
		}
		*text = string(b)
	}
	_, err := addRecord(ctx, r, model.KindNote, *title, model.NotePayload{Body: *text})
	return err
}

// cmdAddCard stores a payment card with basic validation.
func cmdAddCard(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("add-card", flag.ContinueOnError)
	title := fs.String("title", "", "title")
	name := fs.String("name", "", "cardholder")
	number := fs.String("number", "", "card number (digits)")
	exp := fs.String("exp", "", "MM/YY")
	if err := fs.Parse(args); err != nil {
		return err
	}
	num := strings.ReplaceAll(*number, " ", "")
	if *title == "" || num == "" || *exp == "" {
		return errors.New("need -title, -number and -exp")
	}
	if !luhn(num) || !validExp(*exp) {
		return errors.New("invalid card fields")
	}
	_, err := addRecord(ctx, r, model.KindCard, *title, model.CardPayload{Number: num, Expiry: *exp, Holder: *name})
	return err
}

// cmdAddIdentity stores arbitrary key=value document fields.
func cmdAddIdentity(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("add-identity", flag.ContinueOnError)
	title := fs.String("title", "", "title")
	fields := model.IdentityPayload{}
	fs.Func("field", "key=value (repeatable)", func(s string) error {
		k, v, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("bad field %q, want key=value", s)
		}
		fields[strings.TrimSpace(k)] = v
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return errors.New("need -title")
	}
	_, err := addRecord(ctx, r, model.KindIdentity, *title, fields)
	return err
}

// cmdEdit replaces title and/or payload of a record; omitted parts keep their current value.
func cmdEdit(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	id := fs.String("id", "", "record id")
	title := fs.String("title", "", "new title")
	payload := fs.String("payload", "", "new payload JSON, or @file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || (*title == "" && *payload == "") {
		return errors.New("need -id and -title or -payload")
	}

	cli, done, err := r(true)
	if err != nil {
		return err
	}
	defer done()

	var raw json.RawMessage
	switch {
	case strings.HasPrefix(*payload, "@"):
		b, err := readAll(strings.TrimPrefix(*payload, "@"))
		if err != nil {
			return err
		}
		raw = bytes.TrimSpace(b)
	case *payload != "":
		raw = json.RawMessage(*payload)
	}
	if raw != nil && !json.Valid(raw) {
		return errors.New("payload is not valid JSON")
	}
	if *title == "" || raw == nil {
		cur, err := findRecord(ctx, cli, *id)
		if err != nil {
			return err
		}
		if *title == "" {
			*title = cur.Title
		}
		if raw == nil {
			if raw, err = json.Marshal(cur.Payload); err != nil {
				return err
			}
		}
	}

	var resp struct {
		Record model.Record `json:"record"`
	}
	req := map[string]any{"id": *id, "title": *title, "payload": raw}
	if err := cli.Call(ctx, "UpdateRecord", req, &resp); err != nil {
		return err
	}
	printJSON(masked(resp.Record))
	return nil
}

// cmdRemove deletes a record by id.
func cmdRemove(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	id := fs.String("id", "", "record id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("need -id")
	}

	cli, done, err := r(true)
	if err != nil {
		return err
	}
	defer done()

	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := cli.Call(ctx, "DeleteRecord", map[string]string{"id": *id}, &resp); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("record %s not found", *id)
	}
	fmt.Fprintln(stdout, "removed", *id)
	return nil
}

// cmdExport downloads the backup document into dir.
func cmdExport(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dir := fs.String("dir", ".", "target directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cli, done, err := r(true)
	if err != nil {
		return err
	}
	defer done()

	var b model.Backup
	if err := cli.Call(ctx, "ExportBackup", nil, &b); err != nil {
		return err
	}
	data, err := backup.Encode(b)
	if err != nil {
		return err
	}
	loc, err := backup.FileSink{Dir: *dir}.Write(ctx, backup.FileName, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "backup written to", loc)
	return nil
}

// cmdClear wipes the vault, settings and profile. It ends the session.
func cmdClear(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "confirm")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("this erases every record and setting; pass -yes to confirm")
	}

	cli, done, err := r(true)
	if err != nil {
		return err
	}
	defer done()

	if err := cli.Call(ctx, "ClearAll", nil, nil); err != nil {
		return err
	}
	_ = dropToken()
	fmt.Fprintln(stdout, "all data cleared")
	return nil
}

// cmdSettings prints the current preferences.
func cmdSettings(ctx context.Context, r remote, _ []string) error {
	cli, done, err := r(true)
	if err != nil {
		return err
	}
	defer done()

	var st model.Settings
	if err := cli.Call(ctx, "GetSettings", nil, &st); err != nil {
		return err
	}
	printJSON(st)
	return nil
}

// cmdSet changes one preference.
func cmdSet(ctx context.Context, r remote, args []string) error {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	key := fs.String("key", "", "setting name, e.g. darkMode")
	value := fs.String("value", "", "true, false, or a retention option")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" || *value == "" {
		return errors.New("need -key and -value")
	}

	cli, done, err := r(true)
	if err != nil {
		return err
	}
	defer done()

	var st model.Settings
	req := map[string]any{"key": *key, "value": parseValue(*value)}
	if err := cli.Call(ctx, "UpdateSetting", req, &st); err != nil {
		return err
	}
	printJSON(st)
	return nil
}

// cmdStatus prints the vault size and the risk estimate.
func cmdStatus(ctx context.Context, r remote, _ []string) error {
	cli, done, err := r(true)
	if err != nil {
		return err
	}
	defer done()

	var d model.Dashboard
	if err := cli.Call(ctx, "GetDashboard", nil, &d); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "vault items: %d\nrisk: %d%% %s\n", d.VaultItems, d.RiskLevel, levelString(scoring.Level(d.RiskBand)))
	return nil
}
