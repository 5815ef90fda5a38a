package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prairielabs/trackwatch/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

// clearConfigEnvVars resets every variable the loader reads; the Convey tree
// re-executes per leaf, so each branch must start from a clean environment.
func clearConfigEnvVars() {
	vars := []string{
		"TRACKWATCH_CONFIG", "TRACKWATCH_ADDR", "TRACKWATCH_SPORT",
		"TRACKWATCH_DAYS_BACK", "TRACKWATCH_WORKER_COUNT",
		"TRACKWATCH_STATE_BACKEND", "TRACKWATCH_STATE_PATH",
		"TRACKWATCH_REDIS_ADDR", "TRACKWATCH_POSTGRES_DSN",
		"TRACKWATCH_EMAIL__HOST",
	}
	for _, v := range vars {
		_ = os.Unsetenv(v)
	}
}

func TestConfigDefaults(t *testing.T) {
	Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		Convey("Then it should have sensible defaults", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.Sport, ShouldEqual, "tf")
			So(cfg.DaysBack, ShouldEqual, 7)
			So(cfg.StateBackend, ShouldEqual, "file")
			So(cfg.StatePath, ShouldEqual, "seen_results.json")
			So(cfg.DowngradeStalePR, ShouldBeTrue)
			So(cfg.QualifyingSpots, ShouldEqual, 16)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	defer clearConfigEnvVars()

	Convey("Given the config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the defaults survive", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.DaysBack, ShouldEqual, 7)
			})
		})

		Convey("When environment variables override", func() {
			_ = os.Setenv("TRACKWATCH_ADDR", ":8080")
			_ = os.Setenv("TRACKWATCH_DAYS_BACK", "3")
			_ = os.Setenv("TRACKWATCH_STATE_BACKEND", "redis")
			_ = os.Setenv("TRACKWATCH_REDIS_ADDR", "localhost:6379")
			_ = os.Setenv("TRACKWATCH_EMAIL__HOST", "smtp.example.com")

			cfg, err := config.Load(ctx)

			Convey("Then env values win", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.DaysBack, ShouldEqual, 3)
				So(cfg.StateBackend, ShouldEqual, "redis")
				So(cfg.RedisAddr, ShouldEqual, "localhost:6379")
				So(cfg.Email.Host, ShouldEqual, "smtp.example.com")
			})
		})

		Convey("When a YAML file provides values", func() {
			yamlContent := `
addr: ":9090"
sport: "xc"
days_back: 14
worker_count: 4
watched:
  - id: "12345"
    name: "Avery Quinn"
    gender: "W"
`
			path := filepath.Join(t.TempDir(), "config.yaml")
			So(os.WriteFile(path, []byte(yamlContent), 0o644), ShouldBeNil)
			_ = os.Setenv("TRACKWATCH_CONFIG", path)

			cfg, err := config.Load(ctx)

			Convey("Then the file layers over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9090")
				So(cfg.Sport, ShouldEqual, "xc")
				So(cfg.DaysBack, ShouldEqual, 14)
				So(cfg.WorkerCount, ShouldEqual, 4)
				So(cfg.Watched, ShouldHaveLength, 1)
				So(cfg.Watched[0].Name, ShouldEqual, "Avery Quinn")
			})
		})

		Convey("When env overrides the file", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			So(os.WriteFile(path, []byte("addr: \":9090\"\n"), 0o644), ShouldBeNil)
			_ = os.Setenv("TRACKWATCH_CONFIG", path)
			_ = os.Setenv("TRACKWATCH_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			Convey("Then env has the highest precedence", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
			})
		})

		Convey("When validation fails", func() {
			Convey("On an unknown sport", func() {
				_ = os.Setenv("TRACKWATCH_SPORT", "swimming")
				_, err := config.Load(ctx)
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})

			Convey("On a backend missing its settings", func() {
				_ = os.Setenv("TRACKWATCH_STATE_BACKEND", "postgres")
				_, err := config.Load(ctx)
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})

			Convey("On an unknown backend", func() {
				_ = os.Setenv("TRACKWATCH_STATE_BACKEND", "s3")
				_, err := config.Load(ctx)
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}
