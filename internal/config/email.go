package config

import "strings"

// EmailConfig carries outbound SMTP notification settings.
type EmailConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig carries the SMTP transport settings.
type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	AuthType   string `mapstructure:"auth_type"`
	TLS        bool   `mapstructure:"tls"`
	TLSMode    string `mapstructure:"tls_mode"`
	SkipVerify bool   `mapstructure:"skip_verify"`
}

// EffectiveTLSMode normalizes the TLS mode for outbound SMTP connections.
// Supported values: "none", "starttls", "smtps" (implicit TLS).
// If TLSMode is empty we fall back to the legacy TLS boolean flag.
func (c *EmailConfig) EffectiveTLSMode() string {
	if c == nil {
		return "none"
	}
	mode := strings.ToLower(strings.TrimSpace(c.SMTP.TLSMode))
	switch mode {
	case "", "auto":
		if c.SMTP.TLS {
			return "starttls"
		}
		return "none"
	case "starttls", "tls":
		return "starttls"
	case "smtps", "implicit", "tls_implicit":
		return "smtps"
	case "none", "off", "disabled":
		return "none"
	default:
		// Unknown value; fall back to boolean for backward compatibility
		if c.SMTP.TLS {
			return "starttls"
		}
		return "none"
	}
}
