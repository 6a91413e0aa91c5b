// Package config handles configuration for the server binary,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/and161185/mobicure/internal/backup"
)

// Storage backends for the slot repository.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

var storages = []string{StorageMemory, StorageFile, StorageSQLite, StoragePostgres}

// Config holds runtime settings for the server.
type Config struct {
	GRPCAddr    string
	HTTPAddr    string // empty disables the HTTP API
	Storage     string
	DataDir     string // file backend root
	SQLitePath  string
	DatabaseDSN string
	JWTKey      string
	AccessTTL   time.Duration
	Passphrase  string // non-empty seals the vault slot
	TLSCert     string
	TLSKey      string
	Dev         bool
	BackupDir   string
	S3          backup.S3Config
}

// Duration accepts "15m" style strings in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration: %s", b)
	}
	*d = Duration(n)
	return nil
}

// fileConfig is the JSON file layout. Absent keys keep the current value.
type fileConfig struct {
	GRPCAddr    *string          `json:"grpc_addr"`
	HTTPAddr    *string          `json:"http_addr"`
	Storage     *string          `json:"storage"`
	DataDir     *string          `json:"data_dir"`
	SQLitePath  *string          `json:"sqlite_path"`
	DatabaseDSN *string          `json:"database_dsn"`
	JWTKey      *string          `json:"jwt_key"`
	AccessTTL   *Duration        `json:"access_ttl"`
	Passphrase  *string          `json:"passphrase"`
	TLSCert     *string          `json:"tls_cert"`
	TLSKey      *string          `json:"tls_key"`
	Dev         *bool            `json:"dev"`
	BackupDir   *string          `json:"backup_dir"`
	S3          *backup.S3Config `json:"s3"`
}

// Defaults returns development defaults. JWTKey has none and must be supplied.
func Defaults() Config {
	return Config{
		GRPCAddr:   ":8443",
		Storage:    StorageFile,
		DataDir:    "data",
		SQLitePath: "mobicure.db",
		AccessTTL:  15 * time.Minute,
		S3:         backup.S3Config{Region: "us-east-1"},
	}
}

// Load applies defaults, then the JSON file named by -c (if any), then the flags.
func Load(args []string) (*Config, error) {
	cfg := Defaults()

	pre := flag.NewFlagSet("config", flag.ContinueOnError)
	pre.SetOutput(discard{})
	path := pre.String("c", "", "")
	_ = pre.Parse(filterArgs(args, "-c", "--c"))
	if *path != "" {
		if err := cfg.overlayFile(*path); err != nil {
			return nil, err
		}
	}

	fs := flag.NewFlagSet("mobicure-server", flag.ContinueOnError)
	fs.String("c", "", "JSON config file")
	fs.StringVar(&cfg.GRPCAddr, "addr", cfg.GRPCAddr, "gRPC listen address")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address (empty disables)")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "slot storage: memory, file, sqlite, postgres")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the file storage")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "SQLite database path")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTKey, "jwt-key", cfg.JWTKey, "HS256 signing key (required)")
	fs.DurationVar(&cfg.AccessTTL, "access-ttl", cfg.AccessTTL, "access token TTL")
	fs.StringVar(&cfg.Passphrase, "passphrase", cfg.Passphrase, "seal the vault slot with this passphrase")
	fs.StringVar(&cfg.TLSCert, "tls-cert", cfg.TLSCert, "TLS certificate (PEM)")
	fs.StringVar(&cfg.TLSKey, "tls-key", cfg.TLSKey, "TLS private key (PEM)")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "enable server reflection (dev only)")
	fs.StringVar(&cfg.BackupDir, "backup-dir", cfg.BackupDir, "write a backup here on shutdown (empty disables)")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "S3 bucket for backups (empty disables)")
	fs.StringVar(&cfg.S3.Prefix, "s3-prefix", cfg.S3.Prefix, "S3 key prefix")
	fs.StringVar(&cfg.S3.Region, "s3-region", cfg.S3.Region, "S3 region")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "S3-compatible endpoint")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// Validate checks required and enumerated fields.
func (c *Config) Validate() error {
	if c.JWTKey == "" {
		return errors.New("missing jwt signing key (-jwt-key)")
	}
	if !slices.Contains(storages, c.Storage) {
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.Storage == StoragePostgres && c.DatabaseDSN == "" {
		return errors.New("postgres storage needs -dsn")
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("tls-cert and tls-key go together")
	}
	return nil
}

func (c *Config) overlayFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f fileConfig
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	set(&c.GRPCAddr, f.GRPCAddr)
	set(&c.HTTPAddr, f.HTTPAddr)
	set(&c.Storage, f.Storage)
	set(&c.DataDir, f.DataDir)
	set(&c.SQLitePath, f.SQLitePath)
	set(&c.DatabaseDSN, f.DatabaseDSN)
	set(&c.JWTKey, f.JWTKey)
	set(&c.Passphrase, f.Passphrase)
	set(&c.TLSCert, f.TLSCert)
	set(&c.TLSKey, f.TLSKey)
	set(&c.Dev, f.Dev)
	set(&c.BackupDir, f.BackupDir)
	set(&c.S3, f.S3)
	if f.AccessTTL != nil {
		c.AccessTTL = time.Duration(*f.AccessTTL)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// filterArgs keeps only the named flags and their values.
func filterArgs(args []string, names ...string) []string {
	out := []string{}
	for i := 0; i < len(args); i++ {
		a := args[i]
		for _, n := range names {
			switch {
			case a == n && i+1 < len(args):
				out = append(out, a, args[i+1])
				i++
			case len(a) > len(n) && a[:len(n)+1] == n+"=":
				out = append(out, a)
			}
		}
	}
	return out
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
