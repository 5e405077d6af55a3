package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"marketplace-entitlements/internal/domain/model"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	CookieName string        `yaml:"cookie_name"`
	Secure     bool          `yaml:"secure"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	ElevatedURL string `yaml:"elevated_url"` // service-role DSN for the single-retry path
	MaxConns    int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type CheckoutConfig struct {
	DashboardURL string `yaml:"dashboard_url"` // success/cancel URLs are built from this
}

type WorkerConfig struct {
	StatsInterval time.Duration `yaml:"stats_interval"`
}

// Env carries the values that arrive via process environment rather than the
// config file: payment price IDs per (tier, cadence), the admin allow-list,
// and secrets. Loaded once and injected; nothing reads the environment ad hoc.
type Env struct {
	AdminEmails      string `envconfig:"ADMIN_ALLOWLIST_EMAILS"`
	AdminEmailDomain string `envconfig:"ADMIN_EMAIL_DOMAIN"`

	StripeSecretKey    string `envconfig:"STRIPE_SECRET_KEY"`
	AdminSessionSecret string `envconfig:"ADMIN_SESSION_SECRET"`
	AdminPassword      string `envconfig:"ADMIN_PASSWORD"`

	PriceConsumerStarterMonthly string `envconfig:"PRICE_CONSUMER_STARTER_MONTHLY"`
	PriceConsumerStarterAnnual  string `envconfig:"PRICE_CONSUMER_STARTER_ANNUAL"`
	PriceConsumerPlusMonthly    string `envconfig:"PRICE_CONSUMER_PLUS_MONTHLY"`
	PriceConsumerPlusAnnual     string `envconfig:"PRICE_CONSUMER_PLUS_ANNUAL"`
	PriceConsumerVIPMonthly     string `envconfig:"PRICE_CONSUMER_VIP_MONTHLY"`
	PriceConsumerVIPAnnual      string `envconfig:"PRICE_CONSUMER_VIP_ANNUAL"`

	PriceVendorStarterMonthly    string `envconfig:"PRICE_VENDOR_STARTER_MONTHLY"`
	PriceVendorStarterAnnual     string `envconfig:"PRICE_VENDOR_STARTER_ANNUAL"`
	PriceVendorProMonthly        string `envconfig:"PRICE_VENDOR_PRO_MONTHLY"`
	PriceVendorProAnnual         string `envconfig:"PRICE_VENDOR_PRO_ANNUAL"`
	PriceVendorEnterpriseMonthly string `envconfig:"PRICE_VENDOR_ENTERPRISE_MONTHLY"`
	PriceVendorEnterpriseAnnual  string `envconfig:"PRICE_VENDOR_ENTERPRISE_ANNUAL"`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Worker   WorkerConfig   `yaml:"worker"`

	Env     Env           `yaml:"-"`
	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, overlays the environment section, and fills
// defaults. Secrets never live in the file.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Env); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	// defaults
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 15 * time.Second
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9090
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Admin.CookieName == "" {
		cfg.Admin.CookieName = "admin_session"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Worker.StatsInterval <= 0 {
		cfg.Worker.StatsInterval = time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// AdminAllowlist is the injected admin override configuration. Matching is
// case-insensitive with surrounding whitespace ignored.
type AdminAllowlist struct {
	Emails       []string
	DomainSuffix string
}

// Allowlist parses the comma-separated admin email list and domain suffix.
func (e Env) Allowlist() AdminAllowlist {
	var emails []string
	for _, raw := range strings.Split(e.AdminEmails, ",") {
		if v := strings.ToLower(strings.TrimSpace(raw)); v != "" {
			emails = append(emails, v)
		}
	}
	return AdminAllowlist{
		Emails:       emails,
		DomainSuffix: strings.ToLower(strings.TrimSpace(e.AdminEmailDomain)),
	}
}

// Matches reports whether the email is an allow-listed admin.
func (a AdminAllowlist) Matches(email string) bool {
	v := strings.ToLower(strings.TrimSpace(email))
	if v == "" {
		return false
	}
	for _, e := range a.Emails {
		if v == e {
			return true
		}
	}
	if a.DomainSuffix != "" {
		suffix := a.DomainSuffix
		if !strings.HasPrefix(suffix, "@") {
			suffix = "@" + suffix
		}
		if strings.HasSuffix(v, suffix) {
			return true
		}
	}
	return false
}

// ConsumerPriceIDs maps consumer plan keys to externally configured price IDs.
// Unset combinations are simply absent; the catalog skips and diagnoses them.
func (e Env) ConsumerPriceIDs() map[string]string {
	m := map[string]string{
		model.PlanKey(model.PlanFamilyConsumer, model.TierStarter, model.IntervalMonth): e.PriceConsumerStarterMonthly,
		model.PlanKey(model.PlanFamilyConsumer, model.TierStarter, model.IntervalYear):  e.PriceConsumerStarterAnnual,
		model.PlanKey(model.PlanFamilyConsumer, model.TierPlus, model.IntervalMonth):    e.PriceConsumerPlusMonthly,
		model.PlanKey(model.PlanFamilyConsumer, model.TierPlus, model.IntervalYear):     e.PriceConsumerPlusAnnual,
		model.PlanKey(model.PlanFamilyConsumer, model.TierVIP, model.IntervalMonth):     e.PriceConsumerVIPMonthly,
		model.PlanKey(model.PlanFamilyConsumer, model.TierVIP, model.IntervalYear):      e.PriceConsumerVIPAnnual,
	}
	prune(m)
	return m
}

// VendorPriceIDs maps vendor plan keys to externally configured price IDs.
func (e Env) VendorPriceIDs() map[string]string {
	m := map[string]string{
		model.PlanKey(model.PlanFamilyVendor, model.TierStarter, model.IntervalMonth):    e.PriceVendorStarterMonthly,
		model.PlanKey(model.PlanFamilyVendor, model.TierStarter, model.IntervalYear):     e.PriceVendorStarterAnnual,
		model.PlanKey(model.PlanFamilyVendor, model.TierPro, model.IntervalMonth):        e.PriceVendorProMonthly,
		model.PlanKey(model.PlanFamilyVendor, model.TierPro, model.IntervalYear):         e.PriceVendorProAnnual,
		model.PlanKey(model.PlanFamilyVendor, model.TierEnterprise, model.IntervalMonth): e.PriceVendorEnterpriseMonthly,
		model.PlanKey(model.PlanFamilyVendor, model.TierEnterprise, model.IntervalYear):  e.PriceVendorEnterpriseAnnual,
	}
	prune(m)
	return m
}

func prune(m map[string]string) {
	for k, v := range m {
		if strings.TrimSpace(v) == "" {
			delete(m, k)
		}
	}
}
