// Package flagx lets the config layers of projectshelf-server and
// projectshelf-cli pick their own flags out of os.Args without tripping over
// flags that belong to someone else (go test, the JSON config switch).
package flagx

import (
	"flag"
	"io"
	"strings"
)

// ConfigFileFlags are the switches naming a JSON config file.
var ConfigFileFlags = []string{"-c", "-config"}

// FilterArgs keeps the flags listed in allowed, together with their values.
// A value is either joined with "=" (-a=:8080) or the next argument when that
// argument does not start with "-" (-a :8080). Everything else is dropped.
//
//	FilterArgs([]string{"-a", ":3200", "-test.v", "-d", "postgres://..."}, []string{"-a", "-d"})
//	// []string{"-a", ":3200", "-d", "postgres://..."}
func FilterArgs(args []string, allowed []string) []string {
	keep := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		keep[f] = true
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, joined := strings.Cut(arg, "="); joined && strings.HasPrefix(arg, "-") {
			if keep[name] {
				filtered = append(filtered, arg)
			}
			continue
		}

		if !keep[arg] {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// ConfigFile returns the JSON config path given with -c or -config in args,
// or "" when there is none. The last occurrence wins.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to a JSON config file")
	fs.StringVar(&path, "c", "", "path to a JSON config file (shorthand)")
	_ = fs.Parse(FilterArgs(args, ConfigFileFlags))

	return path
}
