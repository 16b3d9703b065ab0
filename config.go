package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

const defaultEndpoint = "http://localhost:8494/api/chat"

var help = map[string]string{
	"endpoint":  "Relay endpoint that streams the chat responses.",
	"model":     "Default model to request, passed through to the relay.",
	"system":    "System prompt prepended to every conversation.",
	"settings":  "Open settings in your $EDITOR.",
	"continue":  "Continue the last conversation or the one matching the given title or ID.",
	"list":      "Lists saved conversations.",
	"delete":    "Deletes a saved conversation with the given title or ID.",
	"title":     "Saves the conversation with the given title.",
	"no-save":   "Do not save the conversation.",
	"help":      "Show help and exit.",
	"version":   "Show version and exit.",
	"addr":      "Address for the relay to listen on.",
	"serve":     "Run the relay between the chat client and the completions API.",
	"cachepath": "Directory in which transcripts and the conversation index are kept.",
}

// Config holds the main configuration and is mapped to the YAML settings file.
type Config struct {
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	Model     string `yaml:"default-model" env:"MODEL"`
	System    string `yaml:"system-prompt" env:"SYSTEM_PROMPT"`
	CachePath string `yaml:"cache-path" env:"CACHE_PATH"`

	SettingsPath string `yaml:"-"`

	Settings bool   `yaml:"-"`
	Continue string `yaml:"-"`
	Title    string `yaml:"-"`
	List     bool   `yaml:"-"`
	Delete   string `yaml:"-"`
	NoSave   bool   `yaml:"-"`
	Version  bool   `yaml:"-"`
}

func ensureConfig() (Config, error) {
	var c Config
	sp, err := xdg.ConfigFile(filepath.Join("parley", "parley.yml"))
	if err != nil {
		return c, parleyError{err, "Could not find settings path."}
	}
	c.SettingsPath = sp

	dir := filepath.Dir(sp)
	if dirErr := os.MkdirAll(dir, 0o700); dirErr != nil {
		return c, parleyError{dirErr, "Could not create config directory."}
	}

	if dirErr := writeConfigFile(sp); dirErr != nil {
		return c, dirErr
	}
	content, err := os.ReadFile(sp)
	if err != nil {
		return c, parleyError{err, "Could not read settings file."}
	}
	if err := yaml.Unmarshal(content, &c); err != nil {
		return c, parleyError{err, "Could not parse settings file."}
	}

	if err := env.ParseWithOptions(&c, env.Options{Prefix: "PARLEY_"}); err != nil {
		return c, parleyError{err, "Could not parse environment into settings file."}
	}

	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.CachePath == "" {
		c.CachePath = filepath.Join(xdg.DataHome, "parley")
	}
	if err := os.MkdirAll(c.CachePath, 0o700); err != nil {
		return c, parleyError{err, "Could not create cache directory."}
	}

	return c, nil
}

func writeConfigFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return createConfigFile(path)
	} else if err != nil {
		return parleyError{err, "Could not stat path."}
	}
	return nil
}

func createConfigFile(path string) error {
	tmpl := template.Must(template.New("config").Parse(configTemplate))

	f, err := os.Create(path)
	if err != nil {
		return parleyError{err, "Could not create configuration file."}
	}
	defer func() { _ = f.Close() }()

	m := struct {
		Help map[string]string
	}{
		Help: help,
	}
	if err := tmpl.Execute(f, m); err != nil {
		return parleyError{err, "Could not render template."}
	}
	return nil
}

func openSettings(c Config) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		fmt.Println(c.SettingsPath)
		return nil
	}
	cmd := exec.Command(editor, c.SettingsPath)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return parleyError{err, "Could not open settings in your editor."}
	}
	return nil
}
