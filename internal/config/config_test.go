package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/scout/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DefaultLimit, convey.ShouldEqual, 10)
			convey.So(cfg.MaxLimit, convey.ShouldEqual, 100)
			convey.So(cfg.DefaultAttributes, convey.ShouldResemble, []string{"pace", "shooting", "passing", "dribbling", "defending", "physical"})
			convey.So(cfg.ImportOnStart, convey.ShouldBeTrue)
			convey.So(cfg.RateLimitRequests, convey.ShouldEqual, 0)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When a default attribute is unknown", func() {
			cfg.DefaultAttributes = []string{"pace", "charisma"}

			convey.Convey("Then validation fails", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "attribute")
			})
		})

		convey.Convey("When default attributes use mixed case", func() {
			cfg.DefaultAttributes = []string{" Pace", "SHOOTING "}

			convey.Convey("Then they are normalized", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.DefaultAttributes, convey.ShouldResemble, []string{"pace", "shooting"})
			})
		})

		convey.Convey("When max limit is below the default limit", func() {
			cfg.MaxLimit = 5

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the address is empty", func() {
			cfg.Addr = ""

			convey.Convey("Then validation fails with a clear message", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})
	})
}
