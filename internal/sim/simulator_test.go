package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/entropic/internal/constraint"
	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/sim"
	"github.com/san-kum/entropic/internal/spectral"
)

func packet(g *dynamo.Grid, x0, sigma, p0 float64) dynamo.Wavefunction {
	a := math.Sqrt(1 / (sigma * math.Sqrt(math.Pi)))
	psi := make(dynamo.Wavefunction, g.N)
	for i, x := range g.X {
		env := a * math.Exp(-(x-x0)*(x-x0)/(2*sigma*sigma))
		psi[i] = complex(env*math.Cos(p0*x), env*math.Sin(p0*x))
	}
	return psi
}

func referenceConfig() *sim.Config {
	return &sim.Config{
		NumSteps:         50,
		DTau:             0.001,
		Alpha:            1.0,
		Temperature:      1.0,
		Mass:             1.0,
		Mode:             sim.ImaginaryTime,
		SnapshotInterval: 200,
	}
}

func mustGrid(n int, length float64) *dynamo.Grid {
	g, err := dynamo.NewGrid(n, length)
	Expect(err).NotTo(HaveOccurred())
	return g
}

func run(g *dynamo.Grid, cfg *sim.Config, psi0 dynamo.Wavefunction) (*sim.Result, error) {
	s, err := sim.New(g, cfg, psi0)
	Expect(err).NotTo(HaveOccurred())
	return s.Run(context.Background())
}

type countingObserver struct {
	steps   []int
	density int
}

func (o *countingObserver) OnStep(d sim.StepDiagnostics) {
	o.steps = append(o.steps, d.Step)
	o.density = len(d.Density)
}

var _ = Describe("Simulator", func() {
	var grid *dynamo.Grid

	BeforeEach(func() {
		grid = mustGrid(256, 20.0)
	})

	Describe("reference scenario", func() {
		It("completes with a full history and unit norm", func() {
			res, err := run(grid, referenceConfig(), packet(grid, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())

			h := res.History
			Expect(res.Steps).To(Equal(50))
			Expect(h.Len()).To(Equal(50))
			for _, seq := range [][]float64{h.Norm, h.Entropy, h.Energy, h.XMean, h.X2Mean, h.Tau, h.Temperature, h.Mu} {
				Expect(seq).To(HaveLen(50))
			}
			Expect(h.Norm[49]).To(BeNumerically("~", 1.0, 1e-9))
			Expect(res.Final).To(HaveLen(256))
			Expect(res.Final.IsValid()).To(BeTrue())
			Expect(h.Snapshots).To(HaveLen(1))
		})
	})

	Describe("single coupled step", func() {
		DescribeTable("matches the update assembled from its parts",
			func(mode sim.Mode) {
				cfg := referenceConfig()
				cfg.Alpha = 1.3
				cfg.Temperature = 0.7
				cfg.Mass = 1.5
				cfg.Mode = mode
				coupling := cfg.Alpha * cfg.Temperature
				psi0 := packet(grid, 0.5, 1.2, 0.3)

				// force from the pre-update log density
				ent0 := spectral.Entropy(psi0, grid.X)
				force := make(dynamo.Wavefunction, grid.N)
				spectral.EntropyForce(force, psi0, ent0.LogRho, coupling)
				kin := spectral.Kinetic(psi0, grid.K)
				mu, err := constraint.ChemicalPotential(psi0, kin, force, grid.X)
				Expect(err).NotTo(HaveOccurred())

				rate := complex(-cfg.DTau, 0)
				if mode == sim.RealTime {
					rate = complex(0, -cfg.DTau)
				}
				want := make(dynamo.Wavefunction, grid.N)
				for i, p := range psi0 {
					want[i] = p + rate*(kin[i]+force[i]-complex(mu, 0)*p)
				}
				spectral.Normalize(want, grid.X)

				// diagnostics from the post-update density
				ent1 := spectral.Entropy(want, grid.X)
				kinetic := spectral.KineticEnergy(want, grid, cfg.Mass)
				potential := spectral.PotentialEnergy(ent1, grid.X, coupling)
				xMean, x2Mean := spectral.Moments(ent1.Rho, grid.X)

				s, err := sim.New(grid, cfg, psi0)
				Expect(err).NotTo(HaveOccurred())
				d, err := s.Step()
				Expect(err).NotTo(HaveOccurred())

				got := s.Wavefunction()
				for i := range want {
					Expect(real(got[i])).To(BeNumerically("~", real(want[i]), 1e-12), "re psi[%d]", i)
					Expect(imag(got[i])).To(BeNumerically("~", imag(want[i]), 1e-12), "im psi[%d]", i)
				}

				Expect(d.Mu).To(BeNumerically("~", mu, 1e-12*math.Abs(mu)))
				Expect(d.Norm).To(BeNumerically("~", 1.0, 1e-12))
				Expect(d.Entropy).To(BeNumerically("~", ent1.S, 1e-12))
				Expect(d.KineticEnergy).To(BeNumerically("~", kinetic, 1e-10*math.Abs(kinetic)))
				Expect(d.PotentialEnergy).To(BeNumerically("~", potential, 1e-12))
				Expect(d.Energy).To(Equal(d.KineticEnergy + d.PotentialEnergy))
				Expect(d.XMean).To(BeNumerically("~", xMean, 1e-12))
				Expect(d.X2Mean).To(BeNumerically("~", x2Mean, 1e-12))

				if mode == sim.ImaginaryTime {
					// the recorded potential is not the one of the initial density
					stale := spectral.PotentialEnergy(ent0, grid.X, coupling)
					Expect(math.Abs(d.PotentialEnergy - stale)).To(BeNumerically(">", 1e-9))
				}
			},
			Entry("imaginary time", sim.ImaginaryTime),
			Entry("real time", sim.RealTime),
		)
	})

	Describe("norm conservation", func() {
		DescribeTable("holds after every step",
			func(mode sim.Mode, p0 float64) {
				cfg := referenceConfig()
				cfg.Mode = mode
				res, err := run(grid, cfg, packet(grid, -2, 1, p0))
				Expect(err).NotTo(HaveOccurred())
				for n, v := range res.History.Norm {
					Expect(v).To(BeNumerically("~", 1.0, 1e-9), "step %d", n)
				}
			},
			Entry("imaginary time", sim.ImaginaryTime, 0.0),
			Entry("real time", sim.RealTime, 0.0),
			Entry("real time with momentum", sim.RealTime, 1.5),
		)
	})

	Describe("reproducibility", func() {
		It("produces identical histories for identical inputs", func() {
			a, err := run(grid, referenceConfig(), packet(grid, 0.5, 1.2, 0.3))
			Expect(err).NotTo(HaveOccurred())
			b, err := run(grid, referenceConfig(), packet(grid, 0.5, 1.2, 0.3))
			Expect(err).NotTo(HaveOccurred())

			Expect(a.History.Energy).To(Equal(b.History.Energy))
			Expect(a.History.Entropy).To(Equal(b.History.Entropy))
			Expect(a.History.XMean).To(Equal(b.History.XMean))
			Expect(a.History.X2Mean).To(Equal(b.History.X2Mean))
			Expect(a.Final).To(Equal(b.Final))
		})
	})

	Describe("snapshot cadence", func() {
		DescribeTable("captures a snapshot when the step is a multiple of the interval",
			func(steps, interval, expected int) {
				cfg := referenceConfig()
				cfg.NumSteps = steps
				cfg.SnapshotInterval = interval
				small := mustGrid(64, 20.0)
				res, err := run(small, cfg, packet(small, 0, 1, 0))
				Expect(err).NotTo(HaveOccurred())

				h := res.History
				Expect(h.Snapshots).To(HaveLen(expected))
				Expect(h.SnapshotSteps).To(HaveLen(expected))
				Expect(h.SnapshotTau).To(HaveLen(expected))
				for i, n := range h.SnapshotSteps {
					Expect(n % interval).To(BeZero())
					Expect(n).To(Equal(i * interval))
					Expect(h.Snapshots[i]).To(HaveLen(64))
				}
			},
			Entry("interval 3 over 10 steps", 10, 3, 4),
			Entry("interval 5 over 10 steps", 10, 5, 2),
			Entry("every step", 10, 1, 10),
			Entry("interval equal to step count", 10, 10, 1),
			Entry("interval beyond step count", 10, 20, 1),
		)

		It("stores independent copies of the state", func() {
			cfg := referenceConfig()
			cfg.NumSteps = 4
			cfg.SnapshotInterval = 2
			res, err := run(grid, cfg, packet(grid, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.History.Snapshots[0]).NotTo(Equal(res.History.Snapshots[1]))
		})
	})

	Describe("time axis", func() {
		It("records tau = n*dtau and the applied temperature", func() {
			cfg := referenceConfig()
			cfg.Temperature = 0.7
			res, err := run(grid, cfg, packet(grid, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())
			for n, tau := range res.History.Tau {
				Expect(tau).To(Equal(float64(n) * cfg.DTau))
				Expect(res.History.Temperature[n]).To(Equal(0.7))
			}
		})
	})

	Describe("zero coupling", func() {
		var cfg *sim.Config
		var wide *dynamo.Grid

		BeforeEach(func() {
			wide = mustGrid(256, 40.0)
			cfg = referenceConfig()
			cfg.Alpha = 0
			cfg.NumSteps = 100
		})

		It("relaxes like free imaginary-time diffusion with the diffusive kinetic term", func() {
			cfg.DiffusiveKinetic = true
			cfg.SortedKQuadrature = true
			res, err := run(wide, cfg, packet(wide, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())

			h := res.History
			for n := 1; n < h.Len(); n++ {
				Expect(h.Energy[n]).To(BeNumerically("<=", h.Energy[n-1]*(1+1e-12)), "energy rose at step %d", n)
				Expect(h.X2Mean[n]).To(BeNumerically(">", h.X2Mean[n-1]), "<x^2> did not spread at step %d", n)
				Expect(h.PotentialEnergy[n]).To(BeZero())
			}
			// sigma^2 grows by one dtau per step: <x^2> = (sigma0^2 + 100*dtau)/2
			Expect(h.X2Mean[h.Len()-1]).To(BeNumerically("~", 0.55, 1e-3))
		})

		It("contracts the packet with the reference kinetic sign", func() {
			res, err := run(wide, cfg, packet(wide, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())

			h := res.History
			for n := 1; n < h.Len(); n++ {
				Expect(h.X2Mean[n]).To(BeNumerically("<", h.X2Mean[n-1]), "<x^2> did not contract at step %d", n)
			}
			Expect(h.X2Mean[h.Len()-1]).To(BeNumerically("~", 0.45, 1e-3))
		})
	})

	Describe("finite-value checking", func() {
		var cfg *sim.Config

		BeforeEach(func() {
			cfg = referenceConfig()
			cfg.NumSteps = 5
			cfg.DTau = 1e300
		})

		It("propagates non-finite values silently by default", func() {
			res, err := run(grid, cfg, packet(grid, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.History.Len()).To(Equal(5))
			Expect(math.IsNaN(res.History.Energy[4])).To(BeTrue())
		})

		It("aborts with the partial history when enabled", func() {
			cfg.CheckFinite = true
			s, err := sim.New(grid, cfg, packet(grid, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(context.Background())
			Expect(errors.Is(err, dynamo.ErrNonFinite)).To(BeTrue())

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(BeNumerically("<=", 1))
			Expect(res).NotTo(BeNil())
			Expect(res.History.Len()).To(Equal(simErr.Step + 1))

			Expect(s.Done()).To(BeTrue())
			_, again := s.Step()
			Expect(again).To(MatchError(err))
		})
	})

	Describe("observers", func() {
		It("are notified once per step with the post-update density", func() {
			cfg := referenceConfig()
			cfg.NumSteps = 7
			s, err := sim.New(grid, cfg, packet(grid, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())

			obs := &countingObserver{}
			s.AddObserver(obs)
			_, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.steps).To(Equal([]int{0, 1, 2, 3, 4, 5, 6}))
			Expect(obs.density).To(Equal(256))
		})
	})

	Describe("stepping", func() {
		It("refuses to step past the last step", func() {
			cfg := referenceConfig()
			cfg.NumSteps = 2
			s, err := sim.New(grid, cfg, packet(grid, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Step()
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Done()).To(BeTrue())
			_, err = s.Step()
			Expect(err).To(MatchError(dynamo.ErrFinished))
		})

		It("does not alias the caller's initial state", func() {
			psi0 := packet(grid, 0, 1, 0)
			orig := psi0.Clone()
			_, err := run(grid, referenceConfig(), psi0)
			Expect(err).NotTo(HaveOccurred())
			Expect(psi0).To(Equal(orig))
		})

		It("stops on a canceled context with the partial result", func() {
			s, err := sim.New(grid, referenceConfig(), packet(grid, 0, 1, 0))
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := s.Run(ctx)
			Expect(errors.Is(err, dynamo.ErrCanceled)).To(BeTrue())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(res.Steps).To(BeZero())
		})
	})

	Describe("validation", func() {
		DescribeTable("rejects invalid configurations",
			func(mutate func(*sim.Config), psiLen int, target error) {
				cfg := referenceConfig()
				mutate(cfg)
				_, err := sim.New(grid, cfg, make(dynamo.Wavefunction, psiLen))
				Expect(errors.Is(err, target)).To(BeTrue(), "got %v", err)
			},
			Entry("zero steps", func(c *sim.Config) { c.NumSteps = 0 }, 256, dynamo.ErrParameterBounds),
			Entry("negative dtau", func(c *sim.Config) { c.DTau = -0.1 }, 256, dynamo.ErrParameterBounds),
			Entry("zero mass", func(c *sim.Config) { c.Mass = 0 }, 256, dynamo.ErrParameterBounds),
			Entry("zero snapshot interval", func(c *sim.Config) { c.SnapshotInterval = 0 }, 256, dynamo.ErrParameterBounds),
			Entry("NaN alpha", func(c *sim.Config) { c.Alpha = math.NaN() }, 256, dynamo.ErrParameterBounds),
			Entry("wrong psi length", func(c *sim.Config) {}, 128, dynamo.ErrDimensionMismatch),
		)
	})
})
