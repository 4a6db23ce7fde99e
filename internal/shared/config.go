package shared

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./vmexit.db"
	} `yaml:"database"`

	Analysis struct {
		Inventory string `yaml:"inventory"` // path to inventory JSON
		Rules     string `yaml:"rules"`     // path to classification rule catalog
		Workers   int    `yaml:"workers"`   // batch fan-out width; 0 = NumCPU
	} `yaml:"analysis"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./reports"
	} `yaml:"reporting"`

	VCenter struct {
		Host       string `yaml:"host"`
		Username   string `yaml:"username"`
		Password   string `yaml:"password"`
		Datacenter string `yaml:"datacenter"`
		Insecure   bool   `yaml:"insecure"`
	} `yaml:"vcenter"`

	API struct {
		Addr            string `yaml:"addr"`             // ":8080"
		SessionDuration string `yaml:"session_duration"` // Go duration, "12h"
	} `yaml:"api"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./vmexit.db"
	c.Analysis.Rules = "./rules/classification_rules.yaml"
	c.Reporting.OutDir = "./reports"
	c.API.Addr = ":8080"
	c.API.SessionDuration = "12h"
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	return c
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("VMEXIT_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("VMEXIT_RULES"); v != "" {
		c.Analysis.Rules = v
	}
	if v := os.Getenv("VMEXIT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.Workers = n
		}
	}
	if v := os.Getenv("VMEXIT_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("VSPHERE_HOST"); v != "" {
		c.VCenter.Host = v
	}
	if v := os.Getenv("VSPHERE_USERNAME"); v != "" {
		c.VCenter.Username = v
	}
	if v := os.Getenv("VSPHERE_PASSWORD"); v != "" {
		c.VCenter.Password = v
	}
	if v := os.Getenv("VSPHERE_DATACENTER"); v != "" {
		c.VCenter.Datacenter = v
	}
	if v := os.Getenv("VSPHERE_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.VCenter.Insecure = b
		}
	}
	if v := os.Getenv("VMEXIT_API_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("VMEXIT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("VMEXIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return c, nil
}
