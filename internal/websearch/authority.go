package websearch

import (
	"net/url"
	"strings"

	"github.com/ppiankov/nomos/internal/model"
)

// AuthorityClassifier classifies result URLs into authority tiers
type AuthorityClassifier struct {
	config       *model.AuthorityConfig
	primaryMap   map[string]bool
	secondaryMap map[string]bool
}

// NewAuthorityClassifier creates a new authority classifier
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		def := model.DefaultConfig().Authority
		config = &def
	}

	classifier := &AuthorityClassifier{
		config:       config,
		primaryMap:   make(map[string]bool),
		secondaryMap: make(map[string]bool),
	}

	for _, domain := range config.PrimaryDomains {
		classifier.primaryMap[domain] = true
	}
	for _, domain := range config.SecondaryDomains {
		classifier.secondaryMap[domain] = true
	}

	return classifier
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return model.TierTertiary
	}

	host := parsed.Host

	// Remove port from host
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}

	// Explicit overrides win over everything
	if a.config.DomainMap != nil {
		if tierStr, ok := a.config.DomainMap[host]; ok {
			return model.ParseAuthorityTier(tierStr)
		}
	}

	if matchesDomain(host, a.primaryMap) {
		return model.TierPrimary
	}
	if matchesDomain(host, a.secondaryMap) {
		return model.TierSecondary
	}

	// Any other government or academic host still counts as primary
	if strings.HasSuffix(host, ".govt.nz") || strings.HasSuffix(host, ".ac.nz") {
		return model.TierPrimary
	}

	return model.TierTertiary
}

// matchesDomain reports whether host equals a configured domain or sits
// under one (www.ird.govt.nz matches ird.govt.nz)
func matchesDomain(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
