// Command mc is a CLI client for the Mobicure dashboard service.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	grpcserver "github.com/and161185/mobicure/internal/server/grpc"
	"github.com/and161185/mobicure/internal/service"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "mobicure")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mobicure")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", errors.New("not signed in (run: mc login -email ...)")
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("session expired (login required)")
	}
	return tf.AccessToken, nil
}

func dropToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ---- grpc dial ----

func loadTLS(caPath string, skipVerify bool) (credentials.TransportCredentials, error) {
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

func dial(addr, caPath string, skipVerify, plaintext bool) (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()
	if !plaintext {
		var err error
		if creds, err = loadTLS(caPath, skipVerify); err != nil {
			return nil, err
		}
	}
	return grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
}

// remote opens a client; with auth set it also attaches the saved token.
type remote func(auth bool) (*grpcserver.Client, func(), error)

func newRemote(connect func() (*grpc.ClientConn, error)) remote {
	return func(auth bool) (*grpcserver.Client, func(), error) {
		var tok string
		if auth {
			var err error
			if tok, err = loadToken(); err != nil {
				return nil, nil, err
			}
		}
		cc, err := connect()
		if err != nil {
			return nil, nil, err
		}
		c := grpcserver.NewClient(cc)
		c.SetToken(tok)
		return c, func() { _ = cc.Close() }, nil
	}
}

// ---- utils ----

var stdout io.Writer = os.Stdout

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `mc CLI
Usage:
  mc [-addr HOST:PORT] [-cacert file | -insecure | -plaintext] <cmd> [args]

Session:
  login       -email <addr> [-name <name>]       (saves token)
  logout

Vault:
  list
  show          -id <id> [-reveal]
  add-password  -title <t> -username <u> [-website <url>] [-password <p> | -generate]
  add-note      -title <t> (-text <s> | -file <path|->)
  add-card      -title <t> -number <digits> -exp MM/YY -name <holder>
  add-identity  -title <t> -field key=value ...
  edit          -id <id> -title <t> -payload <json|@file>
  rm            -id <id>
  export        [-dir <path>]
  clear         -yes
  settings
  set           -key <name> -value <v>
  status                                         (vault size and risk estimate)

Tools (offline):
  gen-password  [-length 16] [-symbols=true] [-numbers=true]
  strength      [-password <p>]                  (prompts when omitted)
  risk          [-2fa] [-weak-passwords] [-public-wifi] [-social-media]
  fake-identity
  mask-email
  breaches      -email <addr>
  json          [-file <path|->]
  qr            -text <s> [-size 200]
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands and configures TLS for RPC calls.
func main() {
	// global flags
	addr := flag.String("addr", "localhost:8443", "server addr")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	skipVerify := flag.Bool("insecure", false, "skip cert verify (dev)")
	plaintext := flag.Bool("plaintext", false, "connect without TLS (dev)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r := newRemote(func() (*grpc.ClientConn, error) {
		return dial(*addr, *caPath, *skipVerify, *plaintext)
	})

	var err error
	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "mc %s (%s)\n", version, buildDate)
	case "help":
		usage()
	default:
		h, ok := remoteCommands[cmd]
		if ok {
			err = h(ctx, r, args)
			break
		}
		t, ok := toolCommands[cmd]
		if !ok {
			usage()
		}
		err = t(service.NewToolsService(nil), args)
	}
	if err != nil {
		fail(err)
	}
}

// ---- helpers ----

func fail(err error) {
	if s, ok := status.FromError(err); ok {
		fmt.Fprintf(os.Stderr, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
