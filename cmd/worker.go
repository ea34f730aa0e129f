package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"admatch/internal/app"
	"admatch/internal/worker"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background job worker",
	Long:  `Starts the asynq worker process that runs coverage audits enqueued by the API or the audit command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get application context: %w", err)
		}
		if err := runWorker(appInstance); err != nil {
			log.WithError(err).Error("worker exited with error")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

// runWorker initializes and runs the asynq worker server.
func runWorker(appInstance *app.App) error {
	cfg := appInstance.Config
	if cfg.Redis.Address == "" {
		return fmt.Errorf("the worker needs redis.address to be set")
	}
	if appInstance.Inventory == nil {
		return fmt.Errorf("the worker needs an inventory (inventory.driver)")
	}

	srv := asynq.NewServer(
		appInstance.RedisClientOpt(),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      cfg.Worker.Queues,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.WithFields(log.Fields{
					"task_id": task.ResultWriter().TaskID(),
					"type":    task.Type(),
				}).WithError(err).Error("asynq task failed")
			}),
			Logger: log.StandardLogger(),
		},
	)

	mux := asynq.NewServeMux()
	worker.RegisterHandlers(mux, worker.Deps{Audits: appInstance.AuditService})

	log.WithFields(log.Fields{
		"concurrency": cfg.Worker.Concurrency,
		"queues":      cfg.Worker.Queues,
	}).Info("starting asynq worker server")
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start asynq server: %w", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Info("shutdown signal received, stopping worker")
	srv.Shutdown()
	log.Info("worker shutdown complete")
	return nil
}
