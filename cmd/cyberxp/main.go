// Command cyberxp trains a tabular Q-learning agent against one of the
// built-in cyber-systems (tictactoe, gridworld, ledcircuit) and serves a
// live dashboard of its training progress over http and websocket, mirroring
// the original framework's assistant/trainer console tools in a single
// always-on process.
package main

import (
	"context"
	"flag"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cyberxp"
	"cyberxp/rl"
	"cyberxp/rlconfig"
	"cyberxp/server"
	"cyberxp/server/views"

	_ "cyberxp/systems/ledcircuit"
	_ "cyberxp/systems/tictactoe"
)

var (
	dbg         = flag.Bool("debug", false, "enable verbose debug logging")
	systemName  = flag.String("system", "gridworld", "cyber-system to train: tictactoe, gridworld, or ledcircuit")
	configPath  = flag.String("config", "", "optional YAML training config (hyperparameters, training deadline)")
	addr        = flag.String("addr", ":8080", "dashboard listen address")
	episodes    = flag.Int("episodes", 5000, "number of training episodes to run, per worker")
	nworkers    = flag.Int("nworkers", runtime.NumCPU(), "number of independent training workers to run concurrently")
	persistPath = flag.String("persist", "", "optional path to save learned experience as JSON once training stops")
	loadPath    = flag.String("load", "", "optional path to a previously persisted experience JSON to resume from")
)

// TODO: per 12-factor rules these belong in env/config-map, not flag+init.
func init() {
	flag.Parse()
}

func newLogger(debug bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("cyberxp: building logger: %v", err))
	}
	return l.Sugar()
}

func main() {
	log := newLogger(*dbg).With("run", uuid.NewString())
	defer log.Sync()
	cc := cyberxp.NewContext(log)

	if err := run(cc); err != nil {
		log.Fatalw("cyberxp exited with error", "error", err)
	}
}

func run(cc *cyberxp.Context) error {
	log := cc.Log
	trainCfg := &rlconfig.TrainingConfig{}
	if *configPath != "" {
		loaded, err := rlconfig.FromYAML(*configPath)
		if err != nil {
			return err
		}
		trainCfg = loaded
	}
	rlCfg := trainCfg.ToRLConfig(rl.DefaultRLConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if deadline := trainCfg.WithTrainingDeadline(*systemName, 0); deadline > 0 {
		var deadlineCancel context.CancelFunc
		ctx, deadlineCancel = context.WithTimeout(ctx, deadline)
		defer deadlineCancel()
	}

	workers := *nworkers
	if workers < 1 {
		workers = 1
	}

	snapshots := make(chan views.Snapshot)
	initial := views.Snapshot{GoalName: goalName}
	srv := server.NewServer(ctx, *addr, initial, snapshots, log)

	go func() {
		if err := trainAll(ctx, cc, *systemName, workers, rlCfg, snapshots); err != nil {
			log.Errorw("training stopped", "system", *systemName, "error", err)
		}
	}()

	return srv.Serve()
}
