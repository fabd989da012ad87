package meshing

import (
	"context"
	"fmt"
	"sync"

	"voxelkit/internal/world"
)

// PaddedBlockSize is the edge of the buffer meshed for one block: the block
// plus a one-voxel border on every side.
const PaddedBlockSize = world.BlockSize + 2

// MeshJob represents a meshing job request. Voxels is a padded copy taken
// from the block store, so workers never touch the store itself.
type MeshJob struct {
	Block   world.Vec3i
	Voxels  *world.Buffer
	Channel int
	// Result channel - will be sent the result when done
	ResultChan chan MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Block world.Vec3i
	Mesh  *Mesh
	Error error
}

// WorkerPool manages goroutines for mesh generation.
// Each worker owns a clone of the template mesher.
type WorkerPool struct {
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(template *Mesher, workers int, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		jobQueue: make(chan MeshJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i, template.Clone())
	}

	return pool
}

// SubmitJob submits a mesh generation job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued or ctx is done.
func (p *WorkerPool) SubmitJobBlocking(ctx context.Context, job MeshJob) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return context.Canceled
	}
}

func (p *WorkerPool) worker(id int, mesher *Mesher) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			mesh, err := mesher.Build(job.Voxels, job.Channel)
			if err != nil {
				err = fmt.Errorf("mesh block %v (worker %d): %w", job.Block, id, err)
			}
			result := MeshResult{Block: job.Block, Mesh: mesh, Error: err}

			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// Remesh extracts the padded neighborhood of each block on the calling
// goroutine, meshes them on the pool and returns results in input order.
// The store is only read here, before any job is queued.
func (p *WorkerPool) Remesh(ctx context.Context, store *world.BlockStore, blocks []world.Vec3i, ch int) ([]MeshResult, error) {
	results := make([]MeshResult, len(blocks))
	if len(blocks) == 0 {
		return results, nil
	}

	resultChan := make(chan MeshResult, len(blocks))
	order := make(map[world.Vec3i]int, len(blocks))
	pending := 0
	for i, bpos := range blocks {
		if _, dup := order[bpos]; dup {
			results[i] = MeshResult{Block: bpos, Error: fmt.Errorf("mesh block %v: listed twice", bpos)}
			continue
		}
		buf, err := PaddedCopy(store, bpos, ch)
		if err != nil {
			results[i] = MeshResult{Block: bpos, Error: err}
			continue
		}
		order[bpos] = i
		job := MeshJob{Block: bpos, Voxels: buf, Channel: ch, ResultChan: resultChan}
		if err := p.SubmitJobBlocking(ctx, job); err != nil {
			return results, err
		}
		pending++
	}

	for ; pending > 0; pending-- {
		select {
		case r := <-resultChan:
			results[order[r.Block]] = r
		case <-ctx.Done():
			return results, ctx.Err()
		}
	}
	return results, nil
}

// PaddedCopy copies one channel of a block and its one-voxel border out of
// the store into a fresh buffer ready for Build.
func PaddedCopy(store *world.BlockStore, bpos world.Vec3i, ch int) (*world.Buffer, error) {
	buf := world.NewBuffer(PaddedBlockSize, PaddedBlockSize, PaddedBlockSize)
	min := world.BlockToVoxel(bpos).Sub(world.V3(1, 1, 1))
	if err := store.GetBufferCopy(min, buf, ch); err != nil {
		return nil, fmt.Errorf("mesh block %v: %w", bpos, err)
	}
	return buf, nil
}

// Shutdown stops the workers and waits for them to exit.
func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

// GetQueueLength returns the current number of jobs in the queue
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}

func (p *WorkerPool) Workers() int { return p.workers }
