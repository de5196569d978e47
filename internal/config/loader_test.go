package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	config "github.com/hrsignal/attrition/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad_Defaults(t *testing.T) {
	Convey("When loading without overrides", t, func() {
		cfg, err := config.Load(context.Background())

		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":8000")
		So(cfg.ModelDir, ShouldEqual, "models")
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ATTRITION_ADDR", ":9100")
	t.Setenv("ATTRITION_MODEL_DIR", "/tmp/attrition-models")
	t.Setenv("ATTRITION_API_KEY", "sekret")

	Convey("When environment variables override defaults", t, func() {
		cfg, err := config.Load(context.Background())

		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":9100")
		So(cfg.ModelDir, ShouldEqual, "/tmp/attrition-models")
		So(cfg.APIKey, ShouldEqual, "sekret")
	})
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9200\"\nmax_batch_size: 250\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ATTRITION_CONFIG", path)

	Convey("When a config file is provided", t, func() {
		cfg, err := config.Load(context.Background())

		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":9200")
		So(cfg.MaxBatchSize, ShouldEqual, 250)
	})
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("ATTRITION_CONFIG", "/nonexistent/config.yaml")

	Convey("When the config file does not exist", t, func() {
		_, err := config.Load(context.Background())

		So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
	})
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("ATTRITION_ADDR", "")

	Convey("When a value fails validation", t, func() {
		_, err := config.Load(context.Background())

		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
	})
}
