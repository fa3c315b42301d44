package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/scout/internal/adapters/mq/queue"
	worker "github.com/okian/scout/internal/adapters/mq/worker"
	model "github.com/okian/scout/internal/domain/model"
	logging "github.com/okian/scout/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan model.ImportJob
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan model.ImportJob, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan model.ImportJob { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type mockImporter struct {
	mu     sync.Mutex
	seen   []string
	errs   map[string]error
	result model.ImportResult
	delay  time.Duration
}

func newMockImporter() *mockImporter {
	return &mockImporter{errs: map[string]error{}, result: model.ImportResult{Imported: 3, Skipped: 1, Generation: 2}}
}

func (mi *mockImporter) Import(ctx context.Context, job model.ImportJob) (model.ImportResult, error) {
	if mi.delay > 0 {
		select {
		case <-time.After(mi.delay):
		case <-ctx.Done():
			return model.ImportResult{}, ctx.Err()
		}
	}
	mi.mu.Lock()
	defer mi.mu.Unlock()
	mi.seen = append(mi.seen, job.ID)
	if err, ok := mi.errs[job.ID]; ok {
		return model.ImportResult{}, err
	}
	return mi.result, nil
}

func (mi *mockImporter) processed() []string {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	return append([]string(nil), mi.seen...)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker wired to a tracker", t, func() {
		q := newMockQueue()
		imp := newMockImporter()
		tracker := worker.NewTracker(8)
		w := worker.NewInMemoryWorker(q, imp, tracker,
			worker.WithName("test-worker"),
			worker.WithLogger(logging.Get()),
			worker.WithJobTimeout(time.Second),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job succeeds", func() {
			q.jobs <- model.ImportJob{ID: "job-1", Source: "a.csv"}

			convey.Convey("Then its final status carries the result", func() {
				ok := waitFor(func() bool {
					st, found := tracker.Get("job-1")
					return found && st.State == model.ImportSucceeded
				})
				convey.So(ok, convey.ShouldBeTrue)
				st, _ := tracker.Get("job-1")
				convey.So(st.Result.Imported, convey.ShouldEqual, 3)
				convey.So(st.Result.Generation, convey.ShouldEqual, uint64(2))
				convey.So(st.StartedAt.IsZero(), convey.ShouldBeFalse)
				convey.So(st.FinishedAt.Before(st.StartedAt), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a job fails", func() {
			imp.errs["job-2"] = errors.New("bad file")
			q.jobs <- model.ImportJob{ID: "job-2"}

			convey.Convey("Then the failure is recorded and the loop keeps going", func() {
				ok := waitFor(func() bool {
					st, found := tracker.Get("job-2")
					return found && st.State == model.ImportFailed
				})
				convey.So(ok, convey.ShouldBeTrue)
				st, _ := tracker.Get("job-2")
				convey.So(st.Error, convey.ShouldEqual, "bad file")

				q.jobs <- model.ImportJob{ID: "job-3"}
				convey.So(waitFor(func() bool { return len(imp.processed()) == 2 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shutting down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops and a second call is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker with a short job timeout", t, func() {
		q := newMockQueue()
		imp := newMockImporter()
		imp.delay = time.Second
		tracker := worker.NewTracker(8)
		w := worker.NewInMemoryWorker(q, imp, tracker, worker.WithJobTimeout(20*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When an import runs too long", func() {
			q.jobs <- model.ImportJob{ID: "slow"}

			convey.Convey("Then it is failed with a deadline error", func() {
				ok := waitFor(func() bool {
					st, found := tracker.Get("slow")
					return found && st.State == model.ImportFailed
				})
				convey.So(ok, convey.ShouldBeTrue)
				st, _ := tracker.Get("slow")
				convey.So(st.Error, convey.ShouldContainSubstring, "deadline")
			})
		})
	})

	convey.Convey("Given a running worker", t, func() {
		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, newMockImporter(), nil)
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)

		convey.Convey("When the context is cancelled", func() {
			cancel()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool on a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		imp := newMockImporter()
		tracker := worker.NewTracker(32)

		convey.Convey("When created without a count", func() {
			p := worker.NewPool(0, q, imp, tracker)
			convey.So(p.Size(), convey.ShouldEqual, 1)
		})

		convey.Convey("When jobs are submitted to a single worker", func() {
			p := worker.NewPool(1, q, imp, tracker)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			p.Start(ctx)

			for i := 0; i < 5; i++ {
				convey.So(q.Enqueue(ctx, model.ImportJob{ID: fmt.Sprintf("job-%d", i)}), convey.ShouldBeTrue)
			}

			convey.Convey("Then they run in submission order", func() {
				convey.So(waitFor(func() bool { return len(imp.processed()) == 5 }), convey.ShouldBeTrue)
				convey.So(imp.processed(), convey.ShouldResemble, []string{"job-0", "job-1", "job-2", "job-3", "job-4"})
			})

			convey.Convey("Then shutdown closes the queue", func() {
				convey.So(waitFor(func() bool { return len(imp.processed()) == 5 }), convey.ShouldBeTrue)
				convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the pool shuts down with jobs still queued", func() {
			imp.delay = 100 * time.Millisecond
			p := worker.NewPool(1, q, imp, tracker)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			p.Start(ctx)

			for i := 0; i < 3; i++ {
				job := model.ImportJob{ID: fmt.Sprintf("job-%d", i)}
				tracker.Record(model.ImportStatus{Job: job, State: model.ImportQueued})
				convey.So(q.Enqueue(ctx, job), convey.ShouldBeTrue)
			}
			convey.So(waitFor(func() bool {
				st, _ := tracker.Get("job-0")
				return st.State == model.ImportRunning
			}), convey.ShouldBeTrue)
			err := p.Shutdown(context.Background())

			convey.Convey("Then the running job finishes and the rest are failed", func() {
				convey.So(err, convey.ShouldBeNil)
				st, _ := tracker.Get("job-0")
				convey.So(st.State, convey.ShouldEqual, model.ImportSucceeded)
				for _, id := range []string{"job-1", "job-2"} {
					st, ok := tracker.Get(id)
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(st.State, convey.ShouldEqual, model.ImportFailed)
					convey.So(st.Error, convey.ShouldEqual, worker.ErrPoolShutdown.Error())
					convey.So(st.FinishedAt.IsZero(), convey.ShouldBeFalse)
				}
				convey.So(imp.processed(), convey.ShouldResemble, []string{"job-0"})
			})
		})
	})
}

func TestTracker(t *testing.T) {
	convey.Convey("Given a tracker with room for two jobs", t, func() {
		tr := worker.NewTracker(2)

		convey.Convey("When a job moves through states", func() {
			tr.Record(model.ImportStatus{Job: model.ImportJob{ID: "a"}, State: model.ImportQueued})
			tr.Record(model.ImportStatus{Job: model.ImportJob{ID: "a"}, State: model.ImportRunning})

			convey.Convey("Then only the latest state is kept", func() {
				st, ok := tr.Get("a")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(st.State, convey.ShouldEqual, model.ImportRunning)
				convey.So(tr.Len(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When queued jobs are failed in bulk", func() {
			tr.Record(model.ImportStatus{Job: model.ImportJob{ID: "a"}, State: model.ImportQueued})
			tr.Record(model.ImportStatus{Job: model.ImportJob{ID: "b"}, State: model.ImportSucceeded})
			n := tr.FailQueued("stopped")

			convey.Convey("Then only the queued one changes", func() {
				convey.So(n, convey.ShouldEqual, 1)
				a, _ := tr.Get("a")
				convey.So(a.State, convey.ShouldEqual, model.ImportFailed)
				convey.So(a.Error, convey.ShouldEqual, "stopped")
				b, _ := tr.Get("b")
				convey.So(b.State, convey.ShouldEqual, model.ImportSucceeded)
				convey.So(b.Error, convey.ShouldBeEmpty)
				convey.So(tr.FailQueued("stopped"), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a third job is recorded", func() {
			tr.Record(model.ImportStatus{Job: model.ImportJob{ID: "a"}})
			tr.Record(model.ImportStatus{Job: model.ImportJob{ID: "b"}})
			_, _ = tr.Get("a")
			tr.Record(model.ImportStatus{Job: model.ImportJob{ID: "c"}})

			convey.Convey("Then the oldest is evicted even if it was read", func() {
				_, ok := tr.Get("a")
				convey.So(ok, convey.ShouldBeFalse)
				_, ok = tr.Get("c")
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}
