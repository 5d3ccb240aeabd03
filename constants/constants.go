package constants

import (
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTextLimit  = 20
	DefaultAudioLimit = 10
	MaxUploadSize     = 32 << 20

	DefaultStoreURI = "sqlite://./out/contourdex.db"
	DefaultPort     = 8080
)

var ErrMediaPathUnset = xerrors.Message("MEDIA_PATH environment variable is not set")

// Config is the file form of the settings below. Environment variables
// take precedence over anything read from a file.
type Config struct {
	StoreURI         string `yaml:"store_uri"`
	MediaPath        string `yaml:"media_path"`
	MetadataTable    string `yaml:"metadata_table"`
	MetadataEndpoint string `yaml:"metadata_endpoint"`
	MetadataRegion   string `yaml:"metadata_region"`
	Port             int    `yaml:"port"`
	LogLevel         string `yaml:"log_level"`
	FFmpegPath       string `yaml:"ffmpeg_path"`
	FFprobePath      string `yaml:"ffprobe_path"`
	IngestWorkers    int    `yaml:"ingest_workers"`
}

var file Config

// LoadEnv reads .env from the working directory if present.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return xerrors.New("load .env", err)
	}
	return nil
}

// LoadFile reads a YAML config file. An empty path is a no-op.
func LoadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return xerrors.New("read config "+path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return xerrors.New("parse config "+path, err)
	}
	file = c
	return nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

func GetStoreURI() string {
	return getString("STORE_URI", or(file.StoreURI, DefaultStoreURI))
}

func GetMediaDir() (string, error) {
	path := getString("MEDIA_PATH", file.MediaPath)
	if path == "" {
		return "", ErrMediaPathUnset
	}
	return path, nil
}

func GetMetadataTable() string {
	return getString("METADATA_TABLE", file.MetadataTable)
}

func GetMetadataEndpoint() string {
	return getString("METADATA_ENDPOINT", file.MetadataEndpoint)
}

func GetMetadataRegion() string {
	return getString("METADATA_REGION", or(file.MetadataRegion, "us-east-1"))
}

func GetPort() int {
	return getInt("PORT", or(file.Port, DefaultPort))
}

func GetLogLevel() string {
	return getString("LOG_LEVEL", or(file.LogLevel, "info"))
}

func GetFFmpegPath() string {
	return getString("FFMPEG_PATH", or(file.FFmpegPath, "ffmpeg"))
}

func GetFFprobePath() string {
	return getString("FFPROBE_PATH", or(file.FFprobePath, "ffprobe"))
}

func GetIngestWorkers() int {
	return max(getInt("INGEST_WORKERS", or(file.IngestWorkers, runtime.NumCPU()/2)), 1)
}
