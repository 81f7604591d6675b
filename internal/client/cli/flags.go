package cli

import (
	"flag"
	"fmt"
	"strings"
)

func (c *Cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.io)
	return fs
}

// parseWithID разбирает "<id> [flags]" и "[flags] <id>"
func parseWithID(fs *flag.FlagSet, args []string) (string, error) {
	var id string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, args = args[0], args[1:]
	}

	if err := fs.Parse(args); err != nil {
		return "", err
	}

	if id == "" {
		id = fs.Arg(0)
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("missing post id. Usage: classifieds %s <id>", fs.Name())
	}
	return id, nil
}

// setFlags возвращает имена флагов, явно указанных в командной строке
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}
