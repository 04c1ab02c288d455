package preflight

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"leon/internal/config"
	"leon/internal/services"
	"leon/internal/store"
)

// CheckResult represents the result of a preflight check
type CheckResult struct {
	Name    string
	Status  string // "pass", "fail", "warning"
	Message string
	Error   error
}

// Checker performs pre-flight checks before server starts
type Checker struct {
	pinger store.Pinger
	cfg    *config.Config
}

// NewChecker creates a new preflight checker
func NewChecker(pinger store.Pinger, cfg *config.Config) *Checker {
	return &Checker{
		pinger: pinger,
		cfg:    cfg,
	}
}

// RunAll runs all preflight checks and returns results
func (c *Checker) RunAll() []CheckResult {
	log.Println("🔍 Running pre-flight checks...")

	results := []CheckResult{
		c.checkStoreConfiguration(),
		c.checkStoreConnection(),
		c.checkLanguages(),
		c.checkUserAgent(),
		c.checkTranslation(),
		c.checkDenylistFile(),
	}

	// Print summary
	passed := 0
	failed := 0
	warnings := 0

	for _, result := range results {
		switch result.Status {
		case "pass":
			log.Printf("   ✅ %s: %s", result.Name, result.Message)
			passed++
		case "fail":
			log.Printf("   ❌ %s: %s", result.Name, result.Message)
			if result.Error != nil {
				log.Printf("      Error: %v", result.Error)
			}
			failed++
		case "warning":
			log.Printf("   ⚠️  %s: %s", result.Name, result.Message)
			warnings++
		}
	}

	log.Printf("📊 Pre-flight summary: %d passed, %d failed, %d warnings", passed, failed, warnings)

	return results
}

// HasFailures returns true if any check failed
func HasFailures(results []CheckResult) bool {
	for _, result := range results {
		if result.Status == "fail" {
			return true
		}
	}
	return false
}

// checkStoreConnection verifies the document store answers
func (c *Checker) checkStoreConnection() CheckResult {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.pinger.Ping(ctx); err != nil {
		return CheckResult{
			Name:    "Store Connection",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot reach %s store", c.cfg.StoreDriver),
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Store Connection",
		Status:  "pass",
		Message: fmt.Sprintf("%s store reachable", c.cfg.StoreDriver),
	}
}

// checkStoreConfiguration verifies the variables the selected driver needs
func (c *Checker) checkStoreConfiguration() CheckResult {
	switch c.cfg.StoreDriver {
	case config.StoreMongo:
		if c.cfg.MongoURI == "" {
			return CheckResult{
				Name:    "Store Configuration",
				Status:  "fail",
				Message: "MONGODB_URI is required when STORE_DRIVER=mongo",
			}
		}
	case config.StoreSQLite:
		if c.cfg.SQLitePath == "" {
			return CheckResult{
				Name:    "Store Configuration",
				Status:  "fail",
				Message: "SQLITE_PATH is required when STORE_DRIVER=sqlite",
			}
		}
	case config.StoreMemory:
		return CheckResult{
			Name:    "Store Configuration",
			Status:  "warning",
			Message: "In-memory store: data is lost on restart",
		}
	default:
		return CheckResult{
			Name:    "Store Configuration",
			Status:  "fail",
			Message: fmt.Sprintf("Unknown STORE_DRIVER %q (use mongo, sqlite or memory)", c.cfg.StoreDriver),
		}
	}

	return CheckResult{
		Name:    "Store Configuration",
		Status:  "pass",
		Message: fmt.Sprintf("Using %s store", c.cfg.StoreDriver),
	}
}

// checkLanguages validates the wiki language editions
func (c *Checker) checkLanguages() CheckResult {
	if err := services.ValidateLanguage(c.cfg.WikiPrimaryLang); err != nil {
		return CheckResult{
			Name:    "Wiki Languages",
			Status:  "fail",
			Message: "WIKI_PRIMARY_LANG is not a valid language code",
			Error:   err,
		}
	}

	if c.cfg.WikiFallbackLang == "" || c.cfg.WikiFallbackLang == c.cfg.WikiPrimaryLang {
		return CheckResult{
			Name:    "Wiki Languages",
			Status:  "warning",
			Message: "No distinct fallback language, translation fallback disabled",
		}
	}

	if err := services.ValidateLanguage(c.cfg.WikiFallbackLang); err != nil {
		return CheckResult{
			Name:    "Wiki Languages",
			Status:  "fail",
			Message: "WIKI_FALLBACK_LANG is not a valid language code",
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Wiki Languages",
		Status:  "pass",
		Message: fmt.Sprintf("%s with %s fallback", c.cfg.WikiPrimaryLang, c.cfg.WikiFallbackLang),
	}
}

// checkUserAgent warns when wiki requests would go out without contact details
func (c *Checker) checkUserAgent() CheckResult {
	ua := strings.TrimSpace(c.cfg.WikiUserAgent)
	if ua == "" {
		return CheckResult{
			Name:    "Wiki User Agent",
			Status:  "warning",
			Message: fmt.Sprintf("WIKI_USER_AGENT not set, sending %q without contact details", services.DefaultWikiUserAgent),
		}
	}
	if !strings.Contains(ua, "@") && !strings.Contains(ua, "http") {
		return CheckResult{
			Name:    "Wiki User Agent",
			Status:  "warning",
			Message: "WIKI_USER_AGENT has no contact URL or email address",
		}
	}

	return CheckResult{
		Name:    "Wiki User Agent",
		Status:  "pass",
		Message: ua,
	}
}

// checkTranslation verifies the translation provider settings
func (c *Checker) checkTranslation() CheckResult {
	switch c.cfg.TranslateProvider {
	case config.TranslateLibre:
		if c.cfg.TranslateURL == "" {
			return CheckResult{
				Name:    "Translation",
				Status:  "fail",
				Message: "TRANSLATE_URL is required when TRANSLATE_PROVIDER=libre",
			}
		}
	case config.TranslateGoogle:
		if c.cfg.TranslateAPIKey == "" {
			return CheckResult{
				Name:    "Translation",
				Status:  "warning",
				Message: "TRANSLATE_API_KEY not set, using Application Default Credentials",
			}
		}
	case config.TranslateNone:
		return CheckResult{
			Name:    "Translation",
			Status:  "warning",
			Message: "Translation disabled, fallback searches use the original topic",
		}
	default:
		return CheckResult{
			Name:    "Translation",
			Status:  "fail",
			Message: fmt.Sprintf("Unknown TRANSLATE_PROVIDER %q (use libre, google or none)", c.cfg.TranslateProvider),
		}
	}

	return CheckResult{
		Name:    "Translation",
		Status:  "pass",
		Message: fmt.Sprintf("Using %s translation", c.cfg.TranslateProvider),
	}
}

// checkDenylistFile verifies the optional marker file is readable
func (c *Checker) checkDenylistFile() CheckResult {
	if c.cfg.DenylistFile == "" {
		return CheckResult{
			Name:    "Denylist",
			Status:  "pass",
			Message: "Using built-in markers",
		}
	}

	if _, err := os.Stat(c.cfg.DenylistFile); err != nil {
		return CheckResult{
			Name:    "Denylist",
			Status:  "warning",
			Message: fmt.Sprintf("DENYLIST_FILE %s not readable, using built-in markers", c.cfg.DenylistFile),
			Error:   err,
		}
	}

	markers, err := config.LoadDenylist(c.cfg.DenylistFile)
	if err != nil {
		return CheckResult{
			Name:    "Denylist",
			Status:  "fail",
			Message: "DENYLIST_FILE is invalid",
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Denylist",
		Status:  "pass",
		Message: fmt.Sprintf("%d markers loaded from %s", len(markers), c.cfg.DenylistFile),
	}
}
