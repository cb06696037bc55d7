package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time is used for upload timeout parsing
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Access and refresh tokens are signed with two
// separate secrets and carry separate lifetimes.
type Config struct {
	Env                string        // application environment (e.g. "dev", "prod")
	Port               string        // HTTP port to listen on
	DBUser             string        // database username
	DBPass             string        // database password (optional)
	DBHost             string        // database host address
	DBPort             string        // database port number
	DBName             string        // database name
	DBMaxOpenConns     int           // connection pool ceiling
	DBMaxIdleConns     int           // idle connections kept around
	DBConnMaxLifetime  time.Duration // recycle connections older than this
	AccessTokenSecret  string        // secret used to sign access tokens
	RefreshTokenSecret string        // secret used to sign refresh tokens
	AccessTTLMin       int           // access token time-to-live in minutes
	RefreshTTLDays     int           // refresh token time-to-live in days
	BcryptCost         int           // bcrypt cost for password hashing
	S3Bucket           string        // bucket holding uploaded media
	S3Region           string        // region of the bucket
	S3AccessKey        string        // static access key for the object store
	S3SecretKey        string        // static secret key for the object store
	S3Endpoint         string        // custom endpoint (optional, e.g. MinIO)
	S3PublicBaseURL    string        // base URL prefixed onto stored object keys
	UploadTimeout      time.Duration // per-upload deadline for the media resolver
	AMQPURL            string        // broker URL for media cleanup events (optional)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                must("APP_ENV"),
		Port:               must("APP_PORT"),
		DBUser:             must("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"), // empty allowed
		DBHost:             must("DB_HOST"),
		DBPort:             must("DB_PORT"),
		DBName:             must("DB_NAME"),
		DBMaxOpenConns:     envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:     envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime:  envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		AccessTokenSecret:  must("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: must("REFRESH_TOKEN_SECRET"),
		AccessTTLMin:       mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:     mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:         mustInt("BCRYPT_COST"),
		S3Bucket:           must("S3_BUCKET"),
		S3Region:           must("S3_REGION"),
		S3AccessKey:        must("S3_ACCESS_KEY"),
		S3SecretKey:        must("S3_SECRET_KEY"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),        // empty -> AWS default
		S3PublicBaseURL:    must("S3_PUBLIC_BASE_URL"),
		UploadTimeout:      envDur("UPLOAD_TIMEOUT", 30*time.Second),
		AMQPURL:            os.Getenv("RABBITMQ_URL"), // empty -> cleanup events disabled
	}
}

// AccessTTL returns the access token lifetime as a duration.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMin) * time.Minute
}

// RefreshTTL returns the refresh token lifetime as a duration.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
