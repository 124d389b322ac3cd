package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "quickbasket",
		Location: "Asia/Jakarta",
		Workdir:  "/var/quickbasket",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1816,
		Secret: "9b6de5cc-quickbasket-b9dd-0129",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "quickbasket",
		User:     "postgres",
		Passwd:   "quickbasket",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/quickbasket/quickbasket.log",
	},
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToInt(v)
	}
}

// LoadConfig loads configuration from the given YAML file, falling back
// to defaults and applying environment overrides last.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(filepath.Clean(cfile)); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("QUICKBASKET_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("QUICKBASKET_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("QUICKBASKET_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("QUICKBASKET_WEB_HOST", &cfg.Web.Host)
	setEnvValue("QUICKBASKET_WEB_SECRET", &cfg.Web.Secret)
	setEnvIntValue("QUICKBASKET_WEB_PORT", &cfg.Web.Port)

	setEnvValue("QUICKBASKET_DB_TYPE", &cfg.Database.Type)
	setEnvValue("QUICKBASKET_DB_HOST", &cfg.Database.Host)
	setEnvValue("QUICKBASKET_DB_NAME", &cfg.Database.Name)
	setEnvValue("QUICKBASKET_DB_USER", &cfg.Database.User)
	setEnvValue("QUICKBASKET_DB_PWD", &cfg.Database.Passwd)
	setEnvIntValue("QUICKBASKET_DB_PORT", &cfg.Database.Port)
	setEnvBoolValue("QUICKBASKET_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("QUICKBASKET_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("QUICKBASKET_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("QUICKBASKET_LOGGER_FILENAME", &cfg.Logger.Filename)

	return cfg
}
