// catalogcheck validates a role catalog YAML file before it is deployed, or dumps
// the built-in catalog as a starting point for one.
//
//	catalogcheck --file catalog.yaml
//	catalogcheck --dump > catalog.yaml
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/sopatech/rolegate/internal/roles"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var filePath string
	var dump bool

	flagSet := pflag.NewFlagSet("catalogcheck", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&filePath, "file", "f", "", "role catalog YAML file to validate")
	flagSet.BoolVar(&dump, "dump", false, "write the built-in catalog as YAML to stdout")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}

	switch {
	case dump && filePath != "":
		return errors.New("--dump and --file are mutually exclusive")
	case dump:
		return roles.WriteDefinition(stdout, roles.DefaultDefinition())
	case filePath == "":
		return errors.New("--file is required (or --dump)")
	}

	c, err := roles.LoadCatalogFile(filePath)
	if err != nil {
		return err
	}
	privileged := 0
	for _, r := range c.PlatformRoles() {
		if c.IsPrivileged(r) {
			privileged++
		}
	}
	fmt.Fprintf(stdout, "%s: ok (%d platform roles, %d privileged, %d event roles)\n",
		filePath, len(c.PlatformRoles()), privileged, len(c.EventRoles()))
	return nil
}
