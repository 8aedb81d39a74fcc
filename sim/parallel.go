package sim

import (
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/jfet97/petri/physics"
)

// serialCutoff is the population below which the heading pass runs inline;
// for small flocks the dispatch overhead costs more than it saves.
const serialCutoff = 64

// headingJob asks a worker to fill headings for agents [from, to).
type headingJob struct {
	from, to int
	params   physics.FlockParams
	done     *sync.WaitGroup
}

// headingPool computes desired headings for slices of the flock on persistent
// goroutines. Workers only read the tick-start agent state and write disjoint
// ranges of the headings buffer, so the dispatch WaitGroup is the only
// synchronization needed; the caller applies the buffer single-threaded.
type headingPool struct {
	sim      *Simulation
	headings []physics.Vec

	workers int
	jobs    chan headingJob
	started bool

	scratch [][]int32 // per-worker neighbor query buffers
}

func newHeadingPool(s *Simulation) *headingPool {
	n := runtime.GOMAXPROCS(0)
	p := &headingPool{sim: s, workers: n, scratch: make([][]int32, n)}
	for i := range p.scratch {
		p.scratch[i] = make([]int32, 0, 64)
	}
	return p
}

// start spins up the workers. Called lazily on the first parallel dispatch,
// so headless runs below the cutoff never pay for idle goroutines.
func (p *headingPool) start() {
	if p.started {
		return
	}
	p.jobs = make(chan headingJob, p.workers)
	for w := 0; w < p.workers; w++ {
		go p.run(w, p.jobs)
	}
	p.started = true
}

// stop shuts the workers down. The pool restarts itself if used again.
func (p *headingPool) stop() {
	if !p.started {
		return
	}
	close(p.jobs)
	p.started = false
}

func (p *headingPool) run(worker int, jobs <-chan headingJob) {
	for job := range jobs {
		p.compute(job.from, job.to, worker, job.params)
		job.done.Done()
	}
}

// computeHeadings fills the headings buffer with the desired heading of every
// agent, read against the frozen tick-start state.
func (p *headingPool) computeHeadings(params physics.FlockParams) {
	n := len(p.sim.agents)
	if cap(p.headings) < n {
		p.headings = make([]physics.Vec, n)
	}
	p.headings = p.headings[:n]

	if n < serialCutoff {
		p.compute(0, n, 0, params)
		return
	}
	p.start()

	// At most one chunk per worker, so the buffered channel never blocks.
	chunk := (n + p.workers - 1) / p.workers
	var wg sync.WaitGroup
	for from := 0; from < n; from += chunk {
		to := min(from+chunk, n)
		wg.Add(1)
		p.jobs <- headingJob{from: from, to: to, params: params, done: &wg}
	}
	wg.Wait()
}

// compute fills headings[from:to]. Noise comes from a stream keyed on
// (seed, tick, from), so the result is independent of worker scheduling
// and a reset run replays exactly.
func (p *headingPool) compute(from, to, worker int, params physics.FlockParams) {
	s := p.sim
	rng := rand.New(rand.NewPCG(s.seed^uint64(s.tick), 0x9E3779B97F4A7C15*uint64(from+1)))

	buf := p.scratch[worker]
	for i := from; i < to; i++ {
		buf = s.grid.Neighbors(s.agents[i].Pos, buf[:0])
		p.headings[i] = physics.DesiredHeading(int32(i), s.agents, buf, params, s.box, s.bmode, rng)
	}
	p.scratch[worker] = buf
}
