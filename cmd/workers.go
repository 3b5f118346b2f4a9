/*
Copyright 2025 Posguard Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/posguard/posguard/config"
	redis_db "github.com/posguard/posguard/internal/redis-db"
	"github.com/posguard/posguard/model"
)

const scheduledRunTask = "reconciliation:scheduled"

// processScheduledRun executes the calendar-driven run for one provider. The
// window resolver decides whether the date schedules anything; a skip is a
// normal completion.
func (app *appInstance) processScheduledRun(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("posguard.worker").Start(ctx, "Process Scheduled Reconciliation")
	defer span.End()

	var params model.RunParams
	if err := json.Unmarshal(t.Payload(), &params); err != nil {
		logrus.Error(err)
		return err
	}
	params.Mode = "DEFAULT"

	summary, err := app.guard.Reconcile(ctx, params)
	if err != nil {
		logrus.Errorf("scheduled run for %s failed: %v", params.Provider, err)
		return err
	}
	if summary.Skipped {
		logrus.Infof("nothing scheduled for %s today", params.Provider)
		return nil
	}
	log.Printf(" [*] Reconciliation completed %s (%d rows)", summary.RunID, summary.RowsOut)
	return nil
}

func redisClientOpt(conf *config.Configuration) (asynq.RedisClientOpt, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("error parsing Redis URL: %v", err)
	}
	return asynq.RedisClientOpt{
		Addr:      redisOption.Addr,
		Password:  redisOption.Password,
		DB:        redisOption.DB,
		TLSConfig: redisOption.TLSConfig,
	}, nil
}

// workerCommands defines the "workers" command: an asynq server consuming
// scheduled reconciliation tasks plus the scheduler that emits one task per
// provider on the configured cron.
func workerCommands(app *appInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start reconciliation workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			clientOpt, err := redisClientOpt(conf)
			if err != nil {
				log.Fatal(err)
			}

			scheduler := asynq.NewScheduler(clientOpt, nil)
			for _, provider := range app.guard.Providers() {
				payload, err := json.Marshal(model.RunParams{Provider: provider})
				if err != nil {
					log.Fatal(err)
				}
				entryID, err := scheduler.Register(
					conf.Reconciliation.SchedulerCron,
					asynq.NewTask(scheduledRunTask, payload),
					asynq.MaxRetry(3),
				)
				if err != nil {
					log.Fatalf("could not register schedule for %s: %v", provider, err)
				}
				log.Printf("registered daily schedule for %s (entry %s)", provider, entryID)
			}

			go func() {
				if err := scheduler.Run(); err != nil {
					log.Fatalf("could not run scheduler: %v", err)
				}
			}()

			srv := asynq.NewServer(clientOpt, asynq.Config{
				Concurrency: 1,
				Queues:      map[string]int{"default": 1},
			})

			mux := asynq.NewServeMux()
			mux.HandleFunc(scheduledRunTask, app.processScheduledRun)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
