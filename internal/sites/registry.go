// Package sites holds the registry of known career sites and loads site
// configs from disk.
package sites

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

//go:embed companies.yaml
var builtinRegistry []byte

// Registry is an ordered, read-only set of site configs keyed by name.
type Registry struct {
	sites []crawler.SiteConfig
	index map[string]int
}

type registryFile struct {
	Sites []crawler.SiteConfig `mapstructure:"sites"`
}

// Builtin returns the registry compiled into the binary.
func Builtin() (*Registry, error) {
	return parseRegistry(builtinRegistry, "yaml")
}

// LoadRegistry reads a registry file (yaml or json). An empty path yields the
// built-in registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return Builtin()
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read site registry %s: %w", path, err)
	}
	return fromViper(v)
}

func parseRegistry(data []byte, format string) (*Registry, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse site registry: %w", err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Registry, error) {
	var file registryFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode site registry: %w", err)
	}
	return NewRegistry(file.Sites...)
}

// NewRegistry validates the sites and indexes them by lower-cased name.
// Names must be present and unique.
func NewRegistry(sites ...crawler.SiteConfig) (*Registry, error) {
	r := &Registry{
		sites: make([]crawler.SiteConfig, 0, len(sites)),
		index: make(map[string]int, len(sites)),
	}
	for _, site := range sites {
		key := normalizeName(site.Name)
		if key == "" {
			return nil, &ValidationError{Site: site.CareersURL, Problems: []string{"name is required in a registry"}}
		}
		if _, dup := r.index[key]; dup {
			return nil, fmt.Errorf("duplicate site %q in registry", site.Name)
		}
		if err := Validate(site); err != nil {
			return nil, err
		}
		r.index[key] = len(r.sites)
		r.sites = append(r.sites, site)
	}
	return r, nil
}

// Lookup finds a site by name, ignoring case and surrounding whitespace.
func (r *Registry) Lookup(name string) (crawler.SiteConfig, bool) {
	i, ok := r.index[normalizeName(name)]
	if !ok {
		return crawler.SiteConfig{}, false
	}
	return r.sites[i], true
}

// Names returns site names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.sites))
	for i, site := range r.sites {
		names[i] = site.Name
	}
	return names
}

// Len returns the number of registered sites.
func (r *Registry) Len() int {
	return len(r.sites)
}

// LoadSiteConfig reads and validates a single site config file (yaml or json).
func LoadSiteConfig(path string) (crawler.SiteConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return crawler.SiteConfig{}, fmt.Errorf("read site config %s: %w", path, err)
	}
	var site crawler.SiteConfig
	if err := v.Unmarshal(&site); err != nil {
		return crawler.SiteConfig{}, fmt.Errorf("decode site config %s: %w", path, err)
	}
	if err := Validate(site); err != nil {
		return crawler.SiteConfig{}, err
	}
	return site, nil
}

// Resolve picks the site to crawl: an explicit config path wins, otherwise
// the company is looked up in the registry.
func Resolve(registry *Registry, company, path string) (crawler.SiteConfig, error) {
	if strings.TrimSpace(path) != "" {
		return LoadSiteConfig(path)
	}
	if strings.TrimSpace(company) == "" {
		return crawler.SiteConfig{}, ErrNoConfig
	}
	if registry != nil {
		if site, ok := registry.Lookup(company); ok {
			return site, nil
		}
	}
	return crawler.SiteConfig{}, fmt.Errorf("%w: %s", ErrSiteNotFound, company)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
