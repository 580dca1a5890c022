package main

import (
	"crypto/rand"
	"math/big"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/padctl/padctl/internal/config"
	"github.com/padctl/padctl/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a padctl.json with a freshly generated PIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing padctl.json")

	return cmd
}

func runInit(force bool) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	path := filepath.Join(wd, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Newf(errors.CategoryCLI, "%s already exists", path).
			WithSuggestion("pass --force to overwrite it")
	}

	cfg := config.Default()
	cfg.PIN, err = generatePIN(6)
	if err != nil {
		return err
	}
	if err := cfg.Save(wd); err != nil {
		return err
	}

	success("wrote %s", path)
	info("pairing PIN: %s", cfg.PIN)
	return nil
}

// generatePIN returns n random decimal digits.
func generatePIN(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(v.Int64())
	}
	return string(digits), nil
}
