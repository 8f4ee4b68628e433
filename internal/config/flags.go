package config

import (
	"flag"
	"io"
	"strings"
)

var knownFlags = []string{
	"-c", "-config", "-api", "-web", "-store", "-timeout", "-log", "-log-level",
}

// splitArgs separates the flags named in allowed (and their values) from
// everything else. Both "-flag value" and "-flag=value" forms are accepted,
// as are double-dash spellings.
func splitArgs(args []string, allowed []string) (flags, rest []string) {
	known := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		known[f] = struct{}{}
	}
	flags = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name := arg
		if strings.HasPrefix(name, "--") {
			name = name[1:]
		}
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			n := strings.SplitN(name, "=", 2)[0]
			if _, ok := known[n]; ok {
				flags = append(flags, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}
		if _, ok := known[name]; ok {
			flags = append(flags, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		rest = append(rest, arg)
	}
	return flags, rest
}

// configFilePath extracts -c/-config. explicit is false when neither is set.
func configFilePath(args []string) (path string, explicit bool, err error) {
	flags, _ := splitArgs(args, []string{"-c", "-config"})
	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	if err := fs.Parse(flags); err != nil {
		return "", false, err
	}
	return path, path != "", nil
}

// parseFlags overlays cfg with command-line flags and returns the
// arguments that are not configuration flags.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	flags, rest := splitArgs(args, knownFlags)

	fs := flag.NewFlagSet("taskflow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var ignored string
	fs.StringVar(&ignored, "config", "", "path to config file")
	fs.StringVar(&ignored, "c", "", "path to config file (short)")
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "TaskFlow API base URL")
	fs.StringVar(&cfg.WebURL, "web", cfg.WebURL, "TaskFlow web UI URL")
	fs.StringVar(&cfg.TokenStore, "store", cfg.TokenStore, "token store backend (file or sqlite)")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(flags); err != nil {
		return nil, err
	}
	return rest, nil
}
