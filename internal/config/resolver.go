package config

// ResolvedValue records a configuration value alongside where it came from,
// so --verbose logging can explain precedence decisions to the user.
type ResolvedValue struct {
	Value  string
	Source string // "flag", "config" (env values arrive folded into Config), or "default"
}

// ResolveOptions carries the flag-level inputs to ResolveAll.
type ResolveOptions struct {
	PackagesRootFlag     string
	RegistryFlag         string
	NodeModulesModeFlag  string
	Config               *Config
}

// Resolved holds the fully-resolved configuration values a build needs,
// after applying flag > env > config file > default precedence.
type Resolved struct {
	PackagesRoot    ResolvedValue
	Registry        ResolvedValue
	NodeModulesMode ResolvedValue
}

// ResolveAll resolves configuration with precedence: flag > env (already
// folded into Config by the Loader) > config file > default.
func ResolveAll(opts ResolveOptions) Resolved {
	cfg := opts.Config
	if cfg == nil {
		cfg = &Config{}
	}

	return Resolved{
		PackagesRoot:    resolve(opts.PackagesRootFlag, cfg.PackagesRoot, ""),
		Registry:        resolve(opts.RegistryFlag, cfg.Registry, ""),
		NodeModulesMode: resolve(opts.NodeModulesModeFlag, cfg.NodeModulesMode, DefaultConfig().NodeModulesMode),
	}
}

func resolve(flagVal, configVal, defaultVal string) ResolvedValue {
	if flagVal != "" {
		return ResolvedValue{Value: flagVal, Source: "flag"}
	}
	if configVal != "" {
		return ResolvedValue{Value: configVal, Source: "config"}
	}
	return ResolvedValue{Value: defaultVal, Source: "default"}
}
