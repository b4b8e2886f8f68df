package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server configuration
type ServerConfig struct {
	Port string
	Host string
}

// MongoDB configuration
type MongoConfig struct {
	URI            string
	Database       string
	TimeoutSeconds int
}

// Token configuration
type TokenConfig struct {
	Secret     string
	Algorithm  string
	ExpMinutes int
	Issuer     string
}

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Mongo      MongoConfig
	Token      TokenConfig
	StoreType  string
	BcryptCost int
	LogDebug   bool
}

// Default configuration values
const (
	DefaultServerPort        = "8000"
	DefaultServerHost        = ""
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDB           = "master_db"
	DefaultMongoTimeout      = 10
	DefaultJWTSecret         = "super-secret-key"
	DefaultJWTAlgorithm      = "HS256"
	DefaultJWTExpMinutes     = 60
	DefaultJWTIssuer         = "orgregistry"
	DefaultStoreType         = StoreMongo
	DefaultBcryptCost        = 12
	DefaultLogDebug          = false
	StoreMongo               = "mongo"
	StoreMemory              = "memory"
	OrganizationsCollection  = "organizations"
	AdminsCollection         = "admins"
	PartitionCatalog         = "partition_catalog"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
)

// New returns a new Config with default values overridden from the environment
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", DefaultServerPort),
			Host: getEnv("SERVER_HOST", DefaultServerHost),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", DefaultMongoURI),
			Database:       getEnv("MONGO_DB", DefaultMongoDB),
			TimeoutSeconds: getEnvInt("MONGO_TIMEOUT_SECONDS", DefaultMongoTimeout),
		},
		Token: TokenConfig{
			Secret:     getEnv("JWT_SECRET", DefaultJWTSecret),
			Algorithm:  getEnv("JWT_ALGORITHM", DefaultJWTAlgorithm),
			ExpMinutes: getEnvInt("JWT_EXP_MINUTES", DefaultJWTExpMinutes),
			Issuer:     getEnv("JWT_ISSUER", DefaultJWTIssuer),
		},
		StoreType:  strings.ToLower(getEnv("STORE_TYPE", DefaultStoreType)),
		BcryptCost: getEnvInt("BCRYPT_COST", DefaultBcryptCost),
		LogDebug:   getEnvBool("LOG_DEBUG", DefaultLogDebug),
	}
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Timeout returns the connect and server selection timeout for the Mongo client.
func (c *MongoConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultMongoTimeout * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL returns how long an issued token stays valid.
func (c *TokenConfig) TTL() time.Duration {
	minutes := c.ExpMinutes
	if minutes <= 0 {
		minutes = DefaultJWTExpMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(value) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return defaultValue
}
