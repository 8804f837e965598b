package config // package config loads application configuration from environment variables

import (
    "errors"  // errors matches a missing .env file
    "io/fs"   // fs.ErrNotExist identifies the missing file case
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables

    "github.com/joho/godotenv" // godotenv loads KEY=VALUE pairs from a .env file
)

// Config holds the runtime values every deployment must provide.  Optional
// knobs live in the feature specific loaders (cache, rate limit, seating,
// queue) and fall back to defaults.
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port to listen on
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    JWTSecret string // secret used to verify editor tokens
}

// LoadEnvFile reads variables from the given .env files (".env" when none
// is given) without overriding values already present in the environment.
// A missing file is not an error.
func LoadEnvFile(files ...string) error {
    if len(files) == 0 {
        files = []string{".env"}
    }
    for _, f := range files {
        if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
            return err
        }
    }
    return nil
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:       must("APP_ENV"),
        Port:      must("APP_PORT"),
        DBUser:    must("DB_USER"),
        DBPass:    os.Getenv("DB_PASS"), // empty allowed
        DBHost:    must("DB_HOST"),
        DBPort:    must("DB_PORT"),
        DBName:    must("DB_NAME"),
        JWTSecret: must("JWT_SECRET"),
    }
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

// AccessTTLMinutes is the editor token lifetime from ACCESS_TOKEN_TTL_MIN,
// 60 minutes by default.
func AccessTTLMinutes() int {
    if n := envInt("ACCESS_TOKEN_TTL_MIN", 60); n > 0 {
        return n
    }
    return 60
}
