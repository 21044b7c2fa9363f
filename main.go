package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"keynet/pkg/keynet"
)

// https://spec.torproject.org/tor-spec (identity key sizing)
// https://spec.torproject.org/rend-spec-v3 (address encoding)

var appVersion = "0.0.0"

func main() {
	app := &cli.App{
		Name:    "keynet",
		Usage:   "Bind a public service identity to a relay ed25519 key",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "key-dir",
				Aliases: []string{"k"},
				Usage:   "Directory holding the daemon-format identity key files",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file location",
				Value:   "keynet.toml",
			},
			&cli.StringFlag{
				Name:    "verbosity",
				Aliases: []string{"vv"},
				Usage:   "Minimum verbosity level for logging. Available in ascending order: debug, info, warning, error, critical). The default is info.",
				Value:   "info",
			},
		},
		Action: setupAction,
		Commands: []*cli.Command{
			{
				Name:  "setup",
				Usage: "Establish the identity and print the address label",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pem-out", Usage: "Where to write the PKCS#8 TLS signing key"},
					&cli.StringFlag{Name: "rsa-key", Usage: "Where to keep the fingerprint-matched RSA identity key"},
					&cli.IntFlag{Name: "rsa-max-attempts", Usage: "Ceiling on the RSA fingerprint search"},
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Throw away any existing identity and generate a new one"},
				},
				Action: setupAction,
			},
			{
				Name:   "export-pem",
				Usage:  "Re-export the TLS signing key from an existing key directory",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "pem-out", Usage: "Where to write the PKCS#8 TLS signing key"}},
				Action: exportPemAction,
			},
			{
				Name:   "check",
				Usage:  "Verify the stored key pair is mutually consistent",
				Action: checkAction,
			},
			{
				Name:   "refresh",
				Usage:  "Recompute the label from the public key file (run after the daemon's first start)",
				Action: refreshAction,
			},
			{
				Name:    "generate-config",
				Aliases: []string{"g"},
				Usage:   "generate a keynet.toml file",
				Action:  generateConfigAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func applyVerbosity(c *cli.Context) {
	logLvl := logrus.InfoLevel
	switch c.String("verbosity") {
	case "debug":
		logLvl = logrus.DebugLevel
	case "info":
		logLvl = logrus.InfoLevel
	case "warning":
		logLvl = logrus.WarnLevel
	case "error":
		logLvl = logrus.ErrorLevel
	case "critical":
		logLvl = logrus.FatalLevel
	}
	logrus.SetLevel(logLvl)
}

// resolveConfig merges flag values over the config file over the defaults.
func resolveConfig(c *cli.Context) keynet.ConfigData {
	cfg := keynet.DefaultConfig()
	configPath, _ := filepath.Abs(c.String("config"))
	if fileExists(configPath) {
		fileCfg, err := keynet.LoadConfigFile(configPath)
		if err != nil {
			logrus.Fatalf("Unable to parse config file %s: %v", configPath, err)
		}
		if fileCfg.KeyDirectory != "" {
			cfg.KeyDirectory = fileCfg.KeyDirectory
		}
		if fileCfg.PemPath != "" {
			cfg.PemPath = fileCfg.PemPath
		}
		if fileCfg.RSAKeyPath != "" {
			cfg.RSAKeyPath = fileCfg.RSAKeyPath
		}
		if fileCfg.RSAMaxAttempts > 0 {
			cfg.RSAMaxAttempts = fileCfg.RSAMaxAttempts
		}
		logrus.Debugf("Loaded config %s: %s", configPath, cfg)
	}
	if v := c.String("key-dir"); v != "" {
		cfg.KeyDirectory = v
	}
	if v := c.String("pem-out"); v != "" {
		cfg.PemPath = v
	}
	if v := c.String("rsa-key"); v != "" {
		cfg.RSAKeyPath = v
	}
	if v := c.Int("rsa-max-attempts"); v > 0 {
		cfg.RSAMaxAttempts = v
	}
	return cfg
}

func setupAction(c *cli.Context) error {
	applyVerbosity(c)
	cfg := resolveConfig(c)
	logrus.Warnf("Initializing keynet identity (version: %s)...", appVersion)
	label, err := keynet.Setup(keynet.SetupParams{
		KeyDir:          cfg.KeyDirectory,
		PemPath:         cfg.PemPath,
		RSAKeyPath:      cfg.RSAKeyPath,
		ForceRegenerate: c.Bool("force"),
		RSAMaxAttempts:  cfg.RSAMaxAttempts,
	})
	if err != nil {
		return err
	}
	fmt.Println(label)
	return nil
}

func exportPemAction(c *cli.Context) error {
	applyVerbosity(c)
	cfg := resolveConfig(c)
	if err := keynet.ExportPEM(cfg.KeyDirectory, cfg.PemPath); err != nil {
		return err
	}
	logrus.Infof("Wrote TLS signing key to %s", cfg.PemPath)
	return nil
}

func checkAction(c *cli.Context) error {
	applyVerbosity(c)
	cfg := resolveConfig(c)
	if err := keynet.Check(cfg.KeyDirectory); err != nil {
		return err
	}
	logrus.Infof("Key pair in %s is consistent", cfg.KeyDirectory)
	return nil
}

func refreshAction(c *cli.Context) error {
	applyVerbosity(c)
	cfg := resolveConfig(c)
	label, err := keynet.RefreshLabel(cfg.KeyDirectory)
	if err != nil {
		return err
	}
	fmt.Println(label)
	return nil
}

func fileExists(filePath string) bool {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return false
	}
	return true
}

func generateConfigAction(c *cli.Context) error {
	configFilePath, _ := filepath.Abs(c.String("config"))
	if fileExists(configFilePath) {
		logrus.Fatalf("config file %s already exists", configFilePath)
	}
	configFile, err := os.Create(configFilePath)
	if err != nil {
		logrus.Fatal(err)
	}
	defer configFile.Close()
	if err := toml.NewEncoder(configFile).Encode(keynet.DefaultConfig()); err != nil {
		logrus.Fatal(err)
	}
	logrus.Warnf("Wrote config file %s", configFilePath)
	return nil
}
