package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/agiangrant/strut/config"
)

// Init writes the default configuration.
func Init(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	output := fs.String("o", "strut.toml", "Config file to write (.toml or .yaml)")
	force := fs.Bool("force", false, "Overwrite an existing file")
	fs.Parse(args)

	if _, err := os.Stat(*output); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", *output)
	}
	if err := config.Default().Save(*output); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *output)
	return nil
}

// Check validates a configuration file and prints the effective settings.
func Check(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	format := fs.String("format", "toml", "Output format: toml or yaml")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: strut check [-format toml|yaml] <config>")
	}

	cfg, err := loadConfig(fs.Arg(0))
	if err != nil {
		return err
	}
	data, err := cfg.Marshal(config.Format(*format))
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}

// loadConfig returns the defaults for an empty path.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
