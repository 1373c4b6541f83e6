package config

// SiteConfig holds per-portal configuration for a single target host.
// Suspicious portals rarely use standard login markup, so the selectors the
// login step needs are configured here rather than guessed.
type SiteConfig struct {
	// LoginPath is the path of the login page relative to the portal root.
	// When empty, the start URL itself is assumed to present the login form.
	LoginPath string `yaml:"loginPath,omitempty"`

	// EmailSelector is the CSS selector of the account-identifier field.
	// Defaults to `input[type=email], input[name=email]`.
	EmailSelector string `yaml:"emailSelector,omitempty"`

	// PasswordSelector is the CSS selector of the password field.
	// Defaults to `input[type=password]`.
	PasswordSelector string `yaml:"passwordSelector,omitempty"`

	// SubmitSelector is the CSS selector of the submit control.
	// Defaults to `button[type=submit], input[type=submit]`.
	SubmitSelector string `yaml:"submitSelector,omitempty"`

	// Depth overrides the global crawl depth for this portal.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax,
	// e.g. "/admin/*", "*.pdf", "/logout*".
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only URLs matching these patterns are enqueued.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .portalscan configuration file.
type File struct {
	// Sites maps portal hosts to their configurations.
	// Keys are bare hosts without the scheme (e.g., "pay.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains configuration applied to all portals unless
	// overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a portal host, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if siteConfig.LoginPath != "" {
		result.LoginPath = siteConfig.LoginPath
	}
	if siteConfig.EmailSelector != "" {
		result.EmailSelector = siteConfig.EmailSelector
	}
	if siteConfig.PasswordSelector != "" {
		result.PasswordSelector = siteConfig.PasswordSelector
	}
	if siteConfig.SubmitSelector != "" {
		result.SubmitSelector = siteConfig.SubmitSelector
	}
	if siteConfig.Depth != 0 {
		result.Depth = siteConfig.Depth
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}
