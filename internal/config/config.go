package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v4"
)

// Config is the top-level application configuration.
type Config struct {
	LogLevel string  `yaml:"log_level"`
	Mailbox  Mailbox `yaml:"mailbox"`
	Discord  Discord `yaml:"discord"`
	Forward  Forward `yaml:"forward"`
}

// Mailbox describes the monitored email account.
type Mailbox struct {
	Protocol            string `yaml:"protocol"` // "imap" or "pop3"
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	Username            string `yaml:"username"`
	Password            string `yaml:"password"`
	UseTLS              bool   `yaml:"use_tls"`
	IMAPFolder          string `yaml:"imap_folder"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
}

// Discord holds the delivery channel configuration.
type Discord struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// Forward controls how messages are turned into Discord posts.
type Forward struct {
	AnonymizeSender bool `yaml:"anonymize_sender"`
	RenderPDF       bool `yaml:"render_pdf"`

	// MarkSeenOnFailure decides what happens when delivery to Discord
	// fails: true marks the email seen anyway (no duplicate posts, the
	// message is lost), false leaves it unseen so the next tick retries.
	MarkSeenOnFailure bool `yaml:"mark_seen_on_failure"`
}

// PollInterval returns the poll interval as a time.Duration.
func (m *Mailbox) PollInterval() time.Duration {
	if m.PollIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(m.PollIntervalSeconds) * time.Second
}

// GetIMAPFolder returns the IMAP folder name, defaulting to "INBOX".
func (m *Mailbox) GetIMAPFolder() string {
	if m.IMAPFolder == "" {
		return "INBOX"
	}
	return m.IMAPFolder
}

// Load reads and parses a YAML configuration file. Values may reference
// environment variables with ${VAR} syntax; they are expanded before
// parsing so secrets can stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	cfg := &Config{
		LogLevel: "info",
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	m := &c.Mailbox
	if m.Protocol != "pop3" && m.Protocol != "imap" {
		return fmt.Errorf("mailbox.protocol must be pop3 or imap")
	}
	if m.Host == "" {
		return fmt.Errorf("mailbox.host is required")
	}
	if m.Port == 0 {
		return fmt.Errorf("mailbox.port is required")
	}
	if m.Username == "" {
		return fmt.Errorf("mailbox.username is required")
	}
	if m.Password == "" {
		return fmt.Errorf("mailbox.password is required")
	}
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if c.Discord.ChannelID == "" {
		return fmt.Errorf("discord.channel_id is required")
	}
	return nil
}
