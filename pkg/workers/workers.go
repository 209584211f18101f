package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/job"
	"github.com/1F47E/go-iconreel/pkg/logger"
	"github.com/1F47E/go-iconreel/pkg/storage"
)

type Worker struct {
	ctx context.Context
}

func NewWorker(ctx context.Context) *Worker {
	return &Worker{ctx: ctx}
}

// WorkerEncode turns rendered frames into pic{n}.png files until jobs is
// closed or the context is done. Every job gets exactly one result.
func (w *Worker) WorkerEncode(i int, jobs <-chan job.JobEnc, results chan<- job.JobEncRes) {
	log := logger.Log.WithField("scope", fmt.Sprintf("WorkerEncode #%d", i))
	log.Debug("started")
	defer log.Debug("finished")

	for {
		select {
		case <-w.ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			log.Debugf("got job %s", j.Print())
			res := w.encode(j)
			if res.Err != nil {
				log.Debugf("frame %d failed: %v", j.FrameNum, res.Err)
			}
			select {
			case results <- res:
			case <-w.ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) encode(j job.JobEnc) job.JobEncRes {
	log := logger.Log.WithField("scope", "worker encode")
	res := job.JobEncRes{FrameNum: j.FrameNum}

	now := time.Now()
	data, err := imaging.Encode(j.Buffer, imaging.PNG)
	if err != nil {
		res.Err = fmt.Errorf("encode frame %d: %w", j.FrameNum, err)
		return res
	}
	log.Debugf("Frame %d encoded. Took time: %s", j.FrameNum, time.Since(now))

	now = time.Now()
	path, err := storage.SaveFrame(j.Dir, j.FrameNum, data)
	if err != nil {
		res.Err = fmt.Errorf("save frame %d: %w", j.FrameNum, err)
		return res
	}
	log.Debugf("Frame %d saved. Took time: %s", j.FrameNum, time.Since(now))

	res.Path = path
	res.Bytes = len(data)
	return res
}
