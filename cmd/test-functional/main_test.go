//go:build functional

package test_functional

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jackc/pgx/v4"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Host        string `mapstructure:"HOST"`
		Port        string `mapstructure:"PORT"`
		StoreDriver string `mapstructure:"STORE_DRIVER"`
		DBHost      string `mapstructure:"DB_HOST"`
		DBPort      string `mapstructure:"DB_PORT"`
		DBUser      string `mapstructure:"DB_USER"`
		DBPassword  string `mapstructure:"DB_PASSWORD"`
		DBName      string `mapstructure:"DB_NAME"`
	}
)

var (
	AppBaseURL url.URL
	// DBConn is only set when the server under test runs on postgres.
	DBConn *pgx.Conn
)

func TestMain(m *testing.M) {
	v := viper.New()
	v.SetEnvPrefix("TEST_RUNNER")

	defaults := map[string]string{
		"HOST":         "0.0.0.0",
		"PORT":         "3000",
		"STORE_DRIVER": "mongo",
		"DB_HOST":      "0.0.0.0",
		"DB_PORT":      "5432",
		"DB_USER":      "user",
		"DB_PASSWORD":  "password",
		"DB_NAME":      "db",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			panic(err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}

	AppBaseURL = url.URL{
		Scheme: "http",
		Host:   cfg.Host + ":" + cfg.Port,
	}

	////////

	pingCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)

	cl := resty.New()
	pingUrl := AppBaseURL
	pingUrl.Path = "/ping"
	pingUrlStr := pingUrl.String()
	for {
		if pingCtx.Err() != nil {
			panic(pingCtx.Err())
		}
		resp, err := cl.R().SetContext(pingCtx).Get(pingUrlStr)
		if err == nil && resp.String() == "pong" {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	cancel()

	fmt.Println("pinged successfully")

	///////

	if cfg.StoreDriver == "postgres" {
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		conn, err := pgx.Connect(context.Background(), dsn)
		if err != nil {
			panic(err)
		}
		DBConn = conn
	}

	code := m.Run()
	if DBConn != nil {
		_ = DBConn.Close(context.Background())
	}
	os.Exit(code)
}

// FlushDB empties the postgres backend. Other backends rely on unique
// usernames instead.
func FlushDB() {
	if DBConn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if _, err := DBConn.Exec(ctx, "TRUNCATE document_tags, documents, profiles, users"); err != nil {
		panic(err)
	}
}
