package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = "faceclass.yaml"
	envPrefix = "FACECLASS_"
)

type Config struct {
	DataDir    string        `yaml:"-" validate:"required"`
	DBPath     string        `yaml:"db_path"`
	ReportsDir string        `yaml:"reports_dir"`
	RulesPath  string        `yaml:"rules_path"`
	LogLevel   string        `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error off"`
	Class      ClassConfig   `yaml:"class"`
	Scanner    ScannerConfig `yaml:"scanner"`
}

type ClassConfig struct {
	Label                  string        `yaml:"label" validate:"required"`
	Subject                string        `yaml:"subject"`
	Instructor             string        `yaml:"instructor"`
	Room                   string        `yaml:"room"`
	TotalEnrolled          int           `yaml:"total_enrolled" validate:"gte=0"`
	PlannedDurationMinutes float64       `yaml:"planned_duration_minutes" validate:"gte=0"`
	GoalPercent            float64       `yaml:"goal_percent" validate:"gte=0,lte=100"`
	Roster                 []SeedStudent `yaml:"roster" validate:"dive"`
}

// SeedStudent pre-populates the roster before the first scan. ScannedAt is a
// wall-clock "HH:MM" on the session day; empty means absent.
type SeedStudent struct {
	Name      string `yaml:"name" validate:"required"`
	ScannedAt string `yaml:"scanned_at" validate:"omitempty,datetime=15:04"`
	Avatar    string `yaml:"avatar"`
}

type ScannerConfig struct {
	Resolver     string        `yaml:"resolver" validate:"oneof=simulated device"`
	Latency      time.Duration `yaml:"latency" validate:"gte=0"`
	TickInterval time.Duration `yaml:"tick_interval" validate:"gt=0"`
	Names        []string      `yaml:"names" validate:"dive,required"`
	DeviceDir    string        `yaml:"device_dir"`
	// Device names the manifest entry to use; empty picks the first enabled one.
	Device       string        `yaml:"device"`
}

func Default(dataDir string) Config {
	return Config{
		DataDir:  dataDir,
		LogLevel: "info",
		Class: ClassConfig{
			Label:                  "1TDSPB",
			Subject:                "Desenvolvimento Web Avançado",
			Instructor:             "Prof. Dr. João Silva",
			Room:                   "Lab 204 - Bloco A",
			TotalEnrolled:          32,
			PlannedDurationMinutes: 90,
			GoalPercent:            85,
			Roster: []SeedStudent{
				{Name: "Ana Silva", ScannedAt: "08:15", Avatar: "🧑‍🎓"},
				{Name: "Bruno Costa", ScannedAt: "08:12", Avatar: "👨‍🎓"},
				{Name: "Carla Souza", ScannedAt: "08:18", Avatar: "👩‍🎓"},
				{Name: "Diego Lima", Avatar: "🧑‍🎓"},
				{Name: "Elena Santos", ScannedAt: "08:20", Avatar: "👩‍🎓"},
			},
		},
		Scanner: ScannerConfig{
			Resolver:     "simulated",
			Latency:      2500 * time.Millisecond,
			TickInterval: time.Second,
			Names: []string{
				"João Pedro", "Maria Clara", "Lucas Almeida", "Fernanda Cruz",
				"Rafael Moreira", "Camila Nunes", "Thiago Barbosa", "Juliana Melo",
				"Gabriel Torres", "Beatriz Rocha", "Mateus Cunha", "Larissa Dias",
			},
		},
	}
}

// Load layers defaults, the optional YAML file, the optional .env file in
// dataDir and FACECLASS_* environment variables, then validates the result.
// An empty configPath means dataDir/faceclass.yaml, which may be absent.
func Load(dataDir, configPath string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)

	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(dataDir, FileName)
	}
	if err := cfg.mergeFile(configPath, explicit); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	cfg.derivePaths()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("LOG_LEVEL", &c.LogLevel)
	str("CLASS_LABEL", &c.Class.Label)
	str("RESOLVER", &c.Scanner.Resolver)
	str("DEVICE_DIR", &c.Scanner.DeviceDir)
	str("DEVICE", &c.Scanner.Device)
	str("REPORTS_DIR", &c.ReportsDir)
	str("DB_PATH", &c.DBPath)

	if v, ok := lookup(envPrefix + "TOTAL_ENROLLED"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sTOTAL_ENROLLED: %w", envPrefix, err)
		}
		c.Class.TotalEnrolled = n
	}
	floats := map[string]*float64{
		"DURATION_MINUTES": &c.Class.PlannedDurationMinutes,
		"GOAL_PERCENT":     &c.Class.GoalPercent,
	}
	for key, dst := range floats {
		v, ok := lookup(envPrefix + key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = f
	}
	if v, ok := lookup(envPrefix + "SCAN_LATENCY"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sSCAN_LATENCY: %w", envPrefix, err)
		}
		c.Scanner.Latency = d
	}
	return nil
}

func (c *Config) derivePaths() {
	for _, p := range []*string{&c.DBPath, &c.ReportsDir, &c.RulesPath, &c.Scanner.DeviceDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.DataDir, *p)
		}
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, ".faceclass", "faceclass.db")
	}
	if c.ReportsDir == "" {
		c.ReportsDir = filepath.Join(c.DataDir, "reports")
	}
	if c.RulesPath == "" {
		c.RulesPath = filepath.Join(c.DataDir, "schedules.yaml")
	}
	if c.Scanner.DeviceDir == "" {
		c.Scanner.DeviceDir = filepath.Join(c.DataDir, "devices")
	}
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
