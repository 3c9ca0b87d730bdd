// Command wbcloop drives one whole-body-control model/scene/solver stack at a fixed rate,
// integrates the resulting joint speed commands into its own joint positions, and logs the
// constraint status each cycle. It is a demonstration
// harness, not a production control loop: the robot I/O boundary (where joint_state actually comes
// from, where the computed commands actually go) is left as a no-op.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"go.viam.com/wbc/kinematics"
	"go.viam.com/wbc/logging"
	"go.viam.com/wbc/referenceframe"
	"go.viam.com/wbc/scene"
	"go.viam.com/wbc/solver"
)

func main() {
	app := &cli.App{
		Name:  "wbcloop",
		Usage: "run a whole-body-control cycle loop against a URDF model",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "urdf", Required: true, Usage: "path to the robot's URDF file"},
			&cli.StringFlag{Name: "tip", Required: true, Usage: "end-effector frame name to control"},
			&cli.Float64Flag{Name: "rate-hz", Value: 50, Usage: "control loop rate in Hz"},
			&cli.IntFlag{Name: "cycles", Value: 10, Usage: "number of cycles to run before exiting"},
			&cli.StringFlag{Name: "solver", Value: "hls", Usage: "solver to use: hls or bounded"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log, err := logging.NewLogger("wbcloop")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg := kinematics.RobotModelConfig{URDFPath: c.String("urdf")}
	model, err := kinematics.NewKinematicModel(cfg)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	log.Infof("loaded model with %d joints", model.NoOfJoints())

	sc := scene.NewVelocityScene(model)
	tip := c.String("tip")
	err = sc.Configure([]scene.ConstraintConfig{
		{
			Name:       "ee_pose",
			Type:       scene.CartesianTask,
			Priority:   0,
			Activation: 1,
			Weights:    scene.CartesianWeights(1, 1),
			Root:       model.RootFrame(),
			Tip:        tip,
		},
	})
	if err != nil {
		return fmt.Errorf("configuring scene: %w", err)
	}

	var slv solver.Solver
	switch c.String("solver") {
	case "bounded":
		b := solver.NewBoundedQPSolver()
		if err := b.Configure(nil, model.NoOfJoints()); err != nil {
			return err
		}
		slv = b
	default:
		h := solver.NewHierarchicalLeastSquaresSolver()
		if err := h.Configure(nil, model.NoOfJoints()); err != nil {
			return err
		}
		slv = h
	}

	ctx := c.Context
	rate := time.Duration(float64(time.Second) / c.Float64("rate-hz"))
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	positions := make([]float64, model.NoOfJoints())
	for cycle := 0; cycle < c.Int("cycles"); cycle++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		states := make([]referenceframe.JointState, len(positions))
		ts := referenceframe.NewTimestamp(int64(cycle) * rate.Nanoseconds())
		for i := range positions {
			states[i] = referenceframe.JointState{Position: positions[i], Timestamp: ts}
		}
		joints := referenceframe.NamedVector[referenceframe.JointState]{Names: model.JointNames(), Values: states}
		if err := model.Update(joints, nil); err != nil {
			return fmt.Errorf("updating model: %w", err)
		}

		hqp, err := sc.Update()
		if err != nil {
			return fmt.Errorf("building hqp: %w", err)
		}

		cmd, err := sc.Solve(hqp, slv)
		if err != nil {
			return fmt.Errorf("solving: %w", err)
		}

		for i, v := range cmd.Values {
			positions[i] += v.Speed * rate.Seconds()
		}

		status := sc.UpdateConstraintsStatus()
		log.Infof("cycle %d\n%s", cycle, scene.StatusTable(status))
	}
	return nil
}
