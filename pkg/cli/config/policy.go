package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// ChatPolicy tunes the conversational surface: greeting, scripted replies,
// and attachment acceptance rules. All fields are optional; zero values keep
// the built-in defaults.
type ChatPolicy struct {
	Greeting            string   `toml:"greeting"`
	AckLines            []string `toml:"ack_lines"`
	ImageAckFormat      string   `toml:"image_ack_format"`
	MaxAttachmentBytes  int64    `toml:"max_attachment_bytes"`
	AllowedMimePrefixes []string `toml:"allowed_mime_prefixes"`
}

// Policy holds the CLI flag pointing at a TOML chat policy file
type Policy struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to TOML chat policy file",
			Category:    "Policy",
			Sources:     cli.EnvVars("QUILL_POLICY"),
			Destination: &p.path,
		},
	}
}

// Configure loads the policy file. Returns nil when no file is configured.
func (p *Policy) Configure() (*ChatPolicy, error) {
	if p.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", p.path))
	}

	var policy ChatPolicy
	if err := toml.Unmarshal(data, &policy); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy file", goerr.V("path", p.path))
	}
	return &policy, nil
}
