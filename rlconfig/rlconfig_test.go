package rlconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cyberxp/rl"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleYAML = `
hyperParams:
  - key: epsilon
    val: 0.15
  - key: gamma
    val: 0.95
algorithm:
  win: qlearning
trainingDeadline:
  win: 45s
`

func TestFromYAML(t *testing.T) {
	Convey("Given a training config file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		So(os.WriteFile(path, []byte(sampleYAML), 0o644), ShouldBeNil)

		cfg, err := FromYAML(path)
		So(err, ShouldBeNil)

		Convey("Hyperparameters are resolved by key", func() {
			So(cfg.GetHyperParamOrDefault("epsilon", 0.5), ShouldEqual, 0.15)
			So(cfg.GetHyperParamOrDefault("gamma", 0.5), ShouldEqual, 0.95)
		})

		Convey("An unset hyperparameter falls back to the default", func() {
			So(cfg.GetHyperParamOrDefault("alpha", 0.3), ShouldEqual, 0.3)
		})

		Convey("The training deadline parses to a duration", func() {
			So(cfg.WithTrainingDeadline("win", time.Minute), ShouldEqual, 45*time.Second)
		})

		Convey("An unset deadline falls back to the default", func() {
			So(cfg.WithTrainingDeadline("lose", time.Minute), ShouldEqual, time.Minute)
		})

		Convey("ToRLConfig projects hyperparameters onto an RLConfig", func() {
			base := rl.DefaultRLConfig()
			projected := cfg.ToRLConfig(base)
			So(projected.Epsilon, ShouldEqual, 0.15)
			So(projected.DiscountRate, ShouldEqual, 0.95)
			So(projected.FixedStepSize, ShouldEqual, base.FixedStepSize)
		})
	})
}
