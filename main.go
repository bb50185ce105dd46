// Command online-dmpc runs one distributed-MPC multi-agent trajectory
// simulation from a JSON configuration file and writes the resulting
// trajectory/goal files spec.md §6 names.
//
// Grounded on the teacher's main.go: a single flat package, no
// sub-command or flag library, a minimal os.Args check before
// anything else runs (afb2001-CCOM_planner/main.go reads its grammar
// straight off stdin with fmt.Scanf and never reaches for
// github.com/spf13/pflag or similar; this module's one positional
// config-path argument keeps that same zero-dependency CLI surface).
package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/Shreyas0812/online-dmpc/avoidance"
	"github.com/Shreyas0812/online-dmpc/bezier"
	"github.com/Shreyas0812/online-dmpc/common"
	"github.com/Shreyas0812/online-dmpc/config"
	"github.com/Shreyas0812/online-dmpc/dynamics"
	"github.com/Shreyas0812/online-dmpc/generator"
	"github.com/Shreyas0812/online-dmpc/geometry"
	"github.com/Shreyas0812/online-dmpc/mpc"
	"github.com/Shreyas0812/online-dmpc/reallocation"
	"github.com/Shreyas0812/online-dmpc/simulator"
	"github.com/Shreyas0812/online-dmpc/util"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: online-dmpc <config.json>")
		os.Exit(2)
	}

	c, err := config.Load(os.Args[1])
	util.HandleError(err, util.FatalErr)
	util.Verbose = c.Verbose

	po, pf := c.Po, c.Pf
	if c.Test == "random" {
		rng := rand.New(rand.NewPCG(1, uint64(c.N)))
		var genErr error
		po, genErr = simulator.GenerateRandomPoints(c.N, c.PMin, c.PMax, c.RMin*2, 500, rng)
		util.HandleError(genErr, util.FatalErr)
		pf, genErr = simulator.GenerateRandomPoints(c.Ncmd, c.PMin, c.PMax, c.RMin*2, 500, rng)
		util.HandleError(genErr, util.FatalErr)
	}

	basis := bezier.New(bezier.Params{
		Degree:      c.D,
		NumSegments: c.NumSegments,
		Dim:         c.Dim,
		DegPoly:     c.DegPoly,
		TSegment:    c.TSegment,
	}, c.H, c.KHor)

	var avoider avoidance.Avoider
	if c.CollisionMethod == "ONDemand" {
		avoider = avoidance.NewOnDemand()
	} else {
		avoider = avoidance.NewBVC()
	}

	weights := mpc.Weights{
		SFree: c.SFree, SObs: c.SObs, SRepel: c.SRepel,
		SpdF: c.SpdF, SpdO: c.SpdO, SpdR: c.SpdR,
		LinColl: c.LinColl, QuadColl: c.QuadColl, AccCost: c.AccCost,
	}
	limits := mpc.Limits{PMin: c.PMin, PMax: c.PMax, AMin: c.AMin, AMax: c.AMax}

	// ellipses is sized N, not Ncmd: indices [0,Ncmd) are the commanded
	// agents' own collision geometry, [Ncmd,N) are the uncommanded
	// obstacles' (spec.md §6's order_obs/rmin_obs/height_scaling_obs).
	// Every AgentSolver holds the same full slice but, per
	// avoidance.buildHalfPlanes/mpc.ClassifyMode, only ever indexes its
	// own entry — matching the original's ellipse_vec layout.
	ellipses := make([]geometry.Ellipse, c.N)
	for i := 0; i < c.Ncmd; i++ {
		ellipses[i] = geometry.NewEllipse(c.Order, c.RMin, [3]float64{1, 1, c.HeightScaling})
	}
	for i := c.Ncmd; i < c.N; i++ {
		ellipses[i] = geometry.NewEllipse(c.OrderObs, c.RMinObs, [3]float64{1, 1, c.HeightScalingObs})
	}

	solvers := make([]*mpc.AgentSolver, c.Ncmd)
	integrators := make([]dynamics.DoubleIntegrator, c.Ncmd)
	dynParams := dynamics.Params{ZetaXY: c.ZetaXY, TauXY: c.TauXY, ZetaZ: c.ZetaZ, TauZ: c.TauZ}
	for i := range solvers {
		solvers[i] = mpc.NewAgentSolver(i, basis, avoider, ellipses, weights, limits, po[i])
		integrators[i] = dynamics.New(c.Ts, dynParams)
	}

	goals := make([]common.Goal, c.Ncmd)
	for i, p := range pf {
		switch c.MotionType {
		case "translation":
			goals[i] = common.NewTranslatingGoal(p, [3]float64{c.GoalTranslationVelocity, 0, 0})
		case "circular":
			goals[i] = common.NewCircularGoal(p, c.GoalCircularRadius, c.GoalCircularOmega)
		default:
			goals[i] = common.Goal{Kind: common.Static, Base: p, Radius: c.GoalRegionRadius}
		}
	}

	gen := generator.New(solvers, goals, po[c.Ncmd:])

	var realloc *reallocation.Manager
	if c.ReallocationEnabled {
		mode := reallocation.Reactive
		if c.UsePredictive {
			mode = reallocation.Predictive
		}
		realloc, err = reallocation.New(c.ReallocationPeriod, mode, c.PredictionHorizon, c.Ts, c.Ncmd, c.ReallocationLogPath, c.ReallocationFireAtStart)
		util.HandleError(err, util.FatalErr)
		defer realloc.Close()
	}

	noise := simulator.Noise{StdPosition: c.StdPosition, StdVelocity: c.StdVelocity}
	audit := simulator.CollisionCheck{
		Order:         c.CollisionCheckOrder,
		RMin:          c.CollisionCheckRMin,
		HeightScaling: c.CollisionCheckHeightScaling,
	}

	sim := simulator.New(c.H, c.Ts, integrators, gen, realloc, noise, audit, c.GoalTolerance, po[:c.Ncmd], 1)
	result := sim.Run(c.SimulationDuration)

	fmt.Printf("collision-free: %v (first collision at t=%.3f)\n", result.CollisionFree, result.FirstCollisionAt)
	fmt.Printf("all goals reached: %v\n", result.AllGoalsReached)

	for i, path := range c.OutputTrajectoriesPaths {
		if i > 0 {
			break
		}
		err = config.WriteTrajectories(path, c, sim.Trajectories())
		util.HandleError(err, util.LogErr)
	}
	for i, path := range c.OutputGoalsPaths {
		if i > 0 {
			break
		}
		err = config.WriteGoals(path, sim.GoalHistory())
		util.HandleError(err, util.LogErr)
	}
}
