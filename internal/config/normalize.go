package config

import (
	"strings"
)

type lookupFunc func(string) (string, bool)

// applyEnv lets environment variables override file values. Empty variables
// are ignored.
func (c *Config) applyEnv(lookup lookupFunc) {
	get := func(k string) (string, bool) {
		v, ok := lookup(k)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get("OPENROUTER_API_KEY"); ok {
		c.LLM.APIKey = v
	}
	if v, ok := get("OPENROUTER_MODEL"); ok {
		c.LLM.Model = v
	}
	if v, ok := get("OPENROUTER_BASE_URL"); ok {
		c.LLM.BaseURL = v
	}
	if v, ok := get("OPENROUTER_ALLOWED_HOSTS"); ok {
		c.LLM.AllowedHosts = strings.Split(v, ",")
	}
	if v, ok := get("OPENAI_API_KEY"); ok {
		c.Vision.APIKey = v
	}
	if v, ok := get("OPENAI_BASE_URL"); ok {
		c.Vision.BaseURL = v
	}
	if v, ok := get("BROLLCUT_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
}

func (c *Config) normalize() error {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	hosts := c.LLM.AllowedHosts[:0:0]
	for _, h := range c.LLM.AllowedHosts {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	c.LLM.AllowedHosts = hosts

	c.Vision.APIKey = strings.TrimSpace(c.Vision.APIKey)
	c.Vision.BaseURL = strings.TrimSpace(c.Vision.BaseURL)
	c.Vision.Model = strings.TrimSpace(c.Vision.Model)
	if c.Vision.Model == "" {
		c.Vision.Model = defaultVisionModel
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}

	for _, p := range []*string{&c.Paths.OutDir, &c.Paths.CacheDir} {
		*p = strings.TrimSpace(*p)
	}
	if c.Paths.OutDir == "" {
		c.Paths.OutDir = "out"
	}
	if c.Paths.CacheDir == "" {
		c.Paths.CacheDir = ".cache"
	}
	for _, p := range []*string{&c.Paths.OutDir, &c.Paths.CacheDir} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}
