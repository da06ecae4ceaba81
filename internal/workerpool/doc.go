// Package workerpool runs tasks on a fixed number of workers.
//
// Every worker owns a private resource of type R, acquired once through
// Config.Acquire before the worker starts and handed to each task it runs.
// A dashtrack worker, for instance, owns its own store client and browser
// driver, so no two tasks share a connection concurrently.
//
//	pool, err := workerpool.New(ctx, workerpool.Config[*Resources]{
//	    Workers: 3,
//	    LogFile: "logs/dashtrack-threaded.log",
//	    Acquire: acquireResources,
//	    Release: releaseResources,
//	})
//	...
//	_ = pool.Submit(workerpool.Task[*Resources]{Run: func(ctx context.Context, res *Resources) error {
//	    return order.Save(ctx, res.Store, o)
//	}})
//	_ = pool.Shutdown(ctx, true)
//
// Tasks are claimed in submission order from an unbounded queue, so Submit
// never blocks. A task that returns an error or panics becomes a
// TaskExecutionError, which is logged with the task and worker IDs and
// counted in Stats; the worker then continues with the next task.
package workerpool
