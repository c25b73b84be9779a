package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// FileName configuration file looked up beside the executable
const FileName = "config.toml"

// AppConfig application configuration
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Files   FilesConfig   `toml:"files"`
	Admin   AdminConfig   `toml:"admin"`
	Sectors SectorsConfig `toml:"sectors"`
	Slack   SlackConfig   `toml:"slack"`
	Alerts  AlertsConfig  `toml:"alerts"`
}

// ServerConfig HTTP server
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
	// StaticDir built dashboard client served for non-API paths
	StaticDir string `toml:"static_dir"`
	// MaxUploadMB multipart body limit of the upload endpoint
	MaxUploadMB int64 `toml:"max_upload_mb"`
}

// DataConfig data directory layout
type DataConfig struct {
	DataDir      string `toml:"data_dir"`
	DatabaseFile string `toml:"database_file"`
	// DemoFallback serves generated dealers while no data file exists
	DemoFallback bool `toml:"demo_fallback"`
	// BackupUploads keeps the replaced file under backups/ on upload
	BackupUploads bool `toml:"backup_uploads"`
}

// FilesConfig candidate names of the input spreadsheets, in lookup order
type FilesConfig struct {
	Registry []string `toml:"registry"`
	Sales    []string `toml:"sales"`
}

// AdminConfig admin panel credentials
type AdminConfig struct {
	User     string `toml:"user"`
	Password string `toml:"password"`
	// RequireToken makes admin routes demand the bearer token issued at login
	RequireToken bool `toml:"require_token"`
}

// SectorsConfig sector id rules
type SectorsConfig struct {
	Blocked []string `toml:"blocked"`
}

// SlackConfig Slack credentials; normally provided through the environment
type SlackConfig struct {
	BotToken   string `toml:"bot_token"`
	TestUserID string `toml:"test_user_id"`
	BaseURL    string `toml:"base_url"`
}

// AlertsConfig alert scheduler
type AlertsConfig struct {
	Schedule bool   `toml:"schedule"`
	Timezone string `toml:"timezone"`
	PacingMS int    `toml:"pacing_ms"`
}

// LoadConfigInfo metadata about how the config was loaded
type LoadConfigInfo struct {
	Path          string
	Found         bool
	PortSpecified bool
	EnvFiles      []string
}

// DefaultConfig default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        3001,
			DevMode:     false,
			MaxUploadMB: 50,
		},
		Data: DataConfig{
			DataDir:       "data",
			DatabaseFile:  "supervision.db",
			DemoFallback:  true,
			BackupUploads: true,
		},
		Files: FilesConfig{
			Registry: []string{"Segmentos_bd.xlsx", "Segmentos_bd.xls", "Segmentos_bd.csv"},
			Sales:    []string{"vendas_bd.xlsx", "vendas_bd.xls", "vendas_bd.csv"},
		},
		Admin: AdminConfig{
			User: "admin",
		},
		Sectors: SectorsConfig{
			Blocked: []string{"13706", "13707"},
		},
		Slack: SlackConfig{
			BaseURL: "https://supervisiondash.onrender.com",
		},
		Alerts: AlertsConfig{
			Schedule: true,
			Timezone: "America/Maceio",
			PacingMS: 500,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	server, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = server["port"]
	return ok
}

// GetExeDir returns the directory of the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func baseDir() string {
	dir, err := GetExeDir()
	if err != nil {
		return "."
	}
	return dir
}

// LoadConfigWithInfo reads path (config.toml beside the executable when
// empty), then applies .env files and environment overrides. A missing
// file yields the defaults.
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	if path == "" {
		path = filepath.Join(baseDir(), FileName)
	}
	info.Path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, info, err
	default:
		info.Found = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	}

	info.EnvFiles = loadEnvFiles(filepath.Join(filepath.Dir(path), ".env"), ".env")
	if applyEnv(config) {
		info.PortSpecified = true
	}
	return config, info, nil
}

// LoadConfig reads config.toml beside the executable.
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo("")
	return config, err
}

// loadEnvFiles loads the existing .env candidates; variables already set win.
func loadEnvFiles(candidates ...string) []string {
	var loaded []string
	seen := map[string]bool{}
	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if err := godotenv.Load(abs); err == nil {
			loaded = append(loaded, abs)
		}
	}
	return loaded
}

// applyEnv overrides config values from the environment and reports whether
// the port was set.
func applyEnv(c *AppConfig) (portSet bool) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
			portSet = true
		}
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Data.DataDir = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("ADMIN_USER"); v != "" {
		c.Admin.User = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.Admin.Password = v
	}
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv("SLACK_TEST_USER_ID"); v != "" {
		c.Slack.TestUserID = v
	}
	if v := os.Getenv("SLACK_BASE_URL"); v != "" {
		c.Slack.BaseURL = strings.TrimRight(v, "/")
	}
	return portSet
}

// SaveConfig writes config to path.
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = filepath.Join(baseDir(), FileName)
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveDataDir returns the absolute data directory. Relative paths are
// taken from the executable's directory.
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir(), config.Data.DataDir)
}

// EnsureDataDir creates the data directory and its subdirectories.
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	for _, dir := range []string{dataDir, filepath.Join(dataDir, "uploads"), filepath.Join(dataDir, "backups")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}
	return dataDir, nil
}

// GetDataPath joins a path inside the data directory.
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}
